// Package rolepolicy resolves how an actor relates to a member: not at all,
// as their assigned counselor, or as a backup providing coverage.
//
// Resolution rules:
//   - Assignment is organization-scoped and must be active
//   - Coverage is member-scoped (no organization filter) and must be live
//   - Assigned always wins over coverage: an actor who holds both is
//     reported as assigned, never as coverage
//
// The outcome is a single Relationship value produced once and passed down
// to every capability check, so precedence cannot drift between call sites.
package rolepolicy

import (
	"context"

	"github.com/dalemusser/counselhub/internal/app/store/assignments"
	"github.com/dalemusser/counselhub/internal/app/store/coverage"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Relationship is the counselor relationship between an actor and a member.
type Relationship string

const (
	None     Relationship = "none"
	Assigned Relationship = "assigned"
	Coverage Relationship = "coverage"
)

// HasAccess reports whether the relationship grants counselor access at all.
func (r Relationship) HasAccess() bool {
	return r == Assigned || r == Coverage
}

// Resolve determines the actor's counselor relationship to the member.
//
// When orgID is NilObjectID the assignment lookup is skipped entirely
// (assignments are organization-scoped); the coverage check still applies
// because coverage grants are member-scoped. This asymmetry is intentional.
//
// Returns an error only if a database operation fails.
func Resolve(ctx context.Context, db *mongo.Database, actorID, memberID, orgID primitive.ObjectID) (Relationship, error) {
	if orgID != primitive.NilObjectID {
		a, err := assignments.New(db).FindActive(ctx, actorID, memberID, orgID)
		if err != nil {
			return None, err
		}
		if a != nil {
			return Assigned, nil
		}
	}

	g, err := coverage.New(db).FindLive(ctx, actorID, memberID)
	if err != nil {
		return None, err
	}
	if g != nil {
		return Coverage, nil
	}
	return None, nil
}
