// internal/domain/models/session_share.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionShare is a capability link granting access to one session.
// SharedWithID nil means anyone holding the token may redeem it; when set,
// only that identity (matched by id, or by email at redemption time) may.
// TokenHash stores a bcrypt hash of the share token; the raw token is only
// returned once, at creation.
type SessionShare struct {
	ID              primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	SessionID       primitive.ObjectID  `bson:"session_id" json:"session_id"`
	TokenHash       []byte              `bson:"token_hash" json:"-"`
	SharedWithID    *primitive.ObjectID `bson:"shared_with_id,omitempty" json:"shared_with_id,omitempty"`
	SharedWithEmail string              `bson:"shared_with_email,omitempty" json:"shared_with_email,omitempty"`

	AllowNotesAccess bool       `bson:"allow_notes_access" json:"allow_notes_access"`
	ExpiresAt        *time.Time `bson:"expires_at,omitempty" json:"expires_at,omitempty"`

	CreatedByID primitive.ObjectID `bson:"created_by_id" json:"created_by_id"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}

// Usable reports whether the share can still be redeemed.
func (s SessionShare) Usable(now time.Time) bool {
	return s.ExpiresAt == nil || s.ExpiresAt.After(now)
}
