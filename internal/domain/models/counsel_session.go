// internal/domain/models/counsel_session.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Counseling session statuses.
const (
	SessionOpen   = "open"
	SessionClosed = "closed"
)

// CounselSession is one counseling conversation. It is owned exclusively by
// the member who created it; MemberID is nil for anonymous sessions. Read
// access is extended via shares and counselor roles, but ownership never
// transfers.
type CounselSession struct {
	ID       primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	MemberID *primitive.ObjectID `bson:"member_id,omitempty" json:"member_id,omitempty"`
	Title    string              `bson:"title,omitempty" json:"title,omitempty"`
	Status   string              `bson:"status" json:"status"` // open | closed

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
