// Package sharepolicy resolves whether a link-share grants an actor access
// to a session, and whether that share permits working with its notes.
//
// A share is redeemable while unexpired, and either names the actor
// (matched by user id, or by email at redemption time) or is open to any
// token holder. When several shares qualify the most permissive wins; see
// shares.Store.FindValid.
package sharepolicy

import (
	"context"

	"github.com/dalemusser/counselhub/internal/app/store/shares"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Resolution is the outcome of a share lookup for one (actor, session) pair.
type Resolution struct {
	// HasAccess indicates a redeemable share exists.
	HasAccess bool
	// AllowNotesAccess mirrors the share's notes flag verbatim.
	AllowNotesAccess bool
	// ShareID identifies the winning share; NilObjectID when HasAccess is false.
	ShareID primitive.ObjectID
}

// WritableNotes reports whether the share both grants access and permits
// note operations.
func (r Resolution) WritableNotes() bool {
	return r.HasAccess && r.AllowNotesAccess
}

// Resolve looks up a redeemable share for the actor on the session.
// actorEmail may be empty; it only widens matching for shares addressed by
// email rather than user id. No mutation occurs.
//
// Returns an error only if a database operation fails.
func Resolve(ctx context.Context, db *mongo.Database, actorID primitive.ObjectID, actorEmail string, sessionID primitive.ObjectID) (Resolution, error) {
	sh, err := shares.New(db).FindValid(ctx, actorID, actorEmail, sessionID)
	if err != nil {
		return Resolution{}, err
	}
	if sh == nil {
		return Resolution{}, nil
	}
	return Resolution{
		HasAccess:        true,
		AllowNotesAccess: sh.AllowNotesAccess,
		ShareID:          sh.ID,
	}, nil
}
