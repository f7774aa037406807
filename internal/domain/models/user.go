// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User roles.
const (
	RoleAdmin     = "admin"
	RoleCounselor = "counselor"
	RoleMember    = "member"
)

// User represents admins, counselors, and members.
//
// NOTE:
//   - Counselor/member relationships are not embedded on User.
//     Use the counselor_assignments and coverage_grants collections.
type User struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	FullName       string              `bson:"full_name" json:"full_name"`
	FullNameCI     string              `bson:"full_name_ci" json:"full_name_ci"` // lowercase, diacritics-stripped
	Email          string              `bson:"email" json:"email"`
	PasswordHash   []byte              `bson:"password_hash,omitempty" json:"-"`
	Role           string              `bson:"role" json:"role"` // admin | counselor | member
	Status         string              `bson:"status,omitempty" json:"status,omitempty"`
	OrganizationID *primitive.ObjectID `bson:"organization_id,omitempty" json:"organization_id,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
