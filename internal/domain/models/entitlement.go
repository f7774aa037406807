// internal/domain/models/entitlement.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Entitlement mirrors a user's paid-access state as reported by the billing
// provider. The policy engine treats it as an opaque boolean signal; plan
// names and renewal mechanics live with the provider, not here.
type Entitlement struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID           primitive.ObjectID `bson:"user_id" json:"user_id"`
	HasHistoryAccess bool               `bson:"has_history_access" json:"has_history_access"`
	Plan             string             `bson:"plan,omitempty" json:"plan,omitempty"`
	UpdatedAt        time.Time          `bson:"updated_at" json:"updated_at"`
}
