// internal/app/features/assignments/handler.go
package assignments

import (
	"github.com/dalemusser/counselhub/internal/app/store/assignments"
	"github.com/dalemusser/counselhub/internal/app/store/coverage"
	"github.com/dalemusser/counselhub/internal/app/store/entitlements"
	"github.com/dalemusser/counselhub/internal/app/store/users"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns the admin endpoints for counselor assignments, coverage
// grants, and subscription entitlements.
type Handler struct {
	DB           *mongo.Database
	Assignments  *assignments.Store
	Coverage     *coverage.Store
	Entitlements *entitlements.Store
	Users        *users.Store
	Validate     *validator.Validate
	Log          *zap.Logger
}

// NewHandler constructs an assignments Handler.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		DB:           db,
		Assignments:  assignments.New(db),
		Coverage:     coverage.New(db),
		Entitlements: entitlements.New(db),
		Users:        users.New(db),
		Validate:     validator.New(validator.WithRequiredStructEnabled()),
		Log:          logger,
	}
}
