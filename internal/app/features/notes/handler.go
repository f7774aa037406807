// internal/app/features/notes/handler.go
package notes

import (
	"github.com/dalemusser/counselhub/internal/app/system/notify"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns all note handlers.
type Handler struct {
	Service  *Service
	Validate *validator.Validate
	Log      *zap.Logger
}

// NewHandler constructs a notes Handler.
func NewHandler(db *mongo.Database, dispatcher notify.Dispatcher, logger *zap.Logger) *Handler {
	return &Handler{
		Service:  NewService(db, dispatcher, logger),
		Validate: validator.New(validator.WithRequiredStructEnabled()),
		Log:      logger,
	}
}
