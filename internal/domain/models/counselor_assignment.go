// internal/domain/models/counselor_assignment.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Assignment statuses.
const (
	AssignmentActive   = "active"
	AssignmentInactive = "inactive"
)

// CounselorAssignment links a counselor (user) to a member within one
// organization. At most one assignment per (member, organization) may be
// active at a time; creating a new one deactivates any existing active row
// first. Assignments are never hard-deleted so history stays auditable.
type CounselorAssignment struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CounselorID    primitive.ObjectID `bson:"counselor_id" json:"counselor_id"`
	MemberID       primitive.ObjectID `bson:"member_id" json:"member_id"`
	OrganizationID primitive.ObjectID `bson:"organization_id" json:"organization_id"`

	Status     string     `bson:"status" json:"status"` // active | inactive
	AssignedAt time.Time  `bson:"assigned_at" json:"assigned_at"`
	EndedAt    *time.Time `bson:"ended_at,omitempty" json:"ended_at,omitempty"`

	// Audit fields
	CreatedByID   primitive.ObjectID `bson:"created_by_id" json:"created_by_id"`
	CreatedByName string             `bson:"created_by_name" json:"created_by_name"`
}
