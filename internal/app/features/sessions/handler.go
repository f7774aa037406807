// internal/app/features/sessions/handler.go
package sessions

import (
	"github.com/dalemusser/counselhub/internal/app/features/notes"
	"github.com/dalemusser/counselhub/internal/app/store/counselsessions"
	"github.com/dalemusser/counselhub/internal/app/store/shares"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns all session handlers.
type Handler struct {
	DB       *mongo.Database
	Sessions *counselsessions.Store
	Shares   *shares.Store
	Notes    *notes.Service
	Validate *validator.Validate
	Log      *zap.Logger
}

// NewHandler constructs a sessions Handler. The notes service is shared
// with the notes feature so exports filter visibility the same way note
// listing does.
func NewHandler(db *mongo.Database, noteService *notes.Service, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Sessions: counselsessions.New(db),
		Shares:   shares.New(db),
		Notes:    noteService,
		Validate: validator.New(validator.WithRequiredStructEnabled()),
		Log:      logger,
	}
}
