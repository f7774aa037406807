// internal/domain/models/coverage_grant.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CoverageGrant is a temporary delegation from a primary counselor to a
// backup counselor for one member. Grants are member-scoped, not
// organization-scoped. A grant is live while revoked_at is unset and
// expires_at (when present) is in the future.
type CoverageGrant struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CounselorID primitive.ObjectID `bson:"counselor_id" json:"counselor_id"` // the backup counselor
	MemberID    primitive.ObjectID `bson:"member_id" json:"member_id"`
	GrantedByID primitive.ObjectID `bson:"granted_by_id" json:"granted_by_id"`

	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	ExpiresAt *time.Time `bson:"expires_at,omitempty" json:"expires_at,omitempty"`
	RevokedAt *time.Time `bson:"revoked_at,omitempty" json:"revoked_at,omitempty"`
}

// Live reports whether the grant is currently usable.
func (g CoverageGrant) Live(now time.Time) bool {
	if g.RevokedAt != nil {
		return false
	}
	return g.ExpiresAt == nil || g.ExpiresAt.After(now)
}
