// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/counselhub/internal/app/store/assignments"
	"github.com/dalemusser/counselhub/internal/app/store/counselsessions"
	"github.com/dalemusser/counselhub/internal/app/store/coverage"
	"github.com/dalemusser/counselhub/internal/app/store/entitlements"
	"github.com/dalemusser/counselhub/internal/app/store/notes"
	"github.com/dalemusser/counselhub/internal/app/store/organizations"
	"github.com/dalemusser/counselhub/internal/app/store/shares"
	"github.com/dalemusser/counselhub/internal/app/store/users"
	"go.mongodb.org/mongo-driver/mongo"
)

/*
EnsureAll is called at startup. Each store's EnsureIndexes is idempotent.
We aggregate errors so any problem is visible and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	ensure := func(name string, fn func(context.Context) error) {
		if err := fn(ctx); err != nil {
			problems = append(problems, name+": "+err.Error())
		}
	}

	ensure("users", users.New(db).EnsureIndexes)
	ensure("organizations", organizations.New(db).EnsureIndexes)
	ensure("counselor_assignments", assignments.New(db).EnsureIndexes)
	ensure("coverage_grants", coverage.New(db).EnsureIndexes)
	ensure("counsel_sessions", counselsessions.New(db).EnsureIndexes)
	ensure("session_shares", shares.New(db).EnsureIndexes)
	ensure("session_notes", notes.New(db).EnsureIndexes)
	ensure("entitlements", entitlements.New(db).EnsureIndexes)

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}
