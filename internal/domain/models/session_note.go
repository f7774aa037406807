// internal/domain/models/session_note.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Author role labels stamped onto a note at creation time.
const (
	AuthorRoleUser      = "user"      // the session owner
	AuthorRoleCounselor = "counselor" // assigned or coverage counselor
	AuthorRoleViewer    = "viewer"    // anyone else (share recipients, subscribers)
)

// Note lifecycle states. Deletion is a soft transition; DeletedAt records
// when it happened but Lifecycle is what callers branch on.
const (
	NoteActive  = "active"
	NoteDeleted = "deleted"
)

// SessionNote is one annotation attached to a session. AuthorID is immutable
// after creation; only the author may change content/privacy or delete.
type SessionNote struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionID  primitive.ObjectID `bson:"session_id" json:"session_id"`
	AuthorID   primitive.ObjectID `bson:"author_id" json:"author_id"`
	AuthorName string             `bson:"author_name" json:"author_name"`
	AuthorRole string             `bson:"author_role" json:"author_role"` // user | counselor | viewer

	Content   string `bson:"content" json:"content"`
	IsPrivate bool   `bson:"is_private" json:"is_private"`

	Lifecycle string     `bson:"lifecycle" json:"lifecycle"` // active | deleted
	DeletedAt *time.Time `bson:"deleted_at,omitempty" json:"deleted_at,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
