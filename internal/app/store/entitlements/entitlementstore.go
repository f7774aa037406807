// internal/app/store/entitlements/entitlementstore.go
package entitlements

import (
	"context"
	"time"

	"github.com/dalemusser/counselhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("entitlements")}
}

// EnsureIndexes creates the per-user uniqueness index.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetName("idx_entitlements_user").SetUnique(true),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// HasHistoryAccess reports whether the user currently holds paid history
// access. A missing entitlement record means no access; the policy engine
// treats this as an opaque boolean.
func (s *Store) HasHistoryAccess(ctx context.Context, userID primitive.ObjectID) (bool, error) {
	var e models.Entitlement
	err := s.c.FindOne(ctx, bson.M{"user_id": userID}).Decode(&e)
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return e.HasHistoryAccess, nil
}

// Set upserts the user's entitlement record. Called when the billing
// provider reports a change.
func (s *Store) Set(ctx context.Context, userID primitive.ObjectID, hasAccess bool, plan string) error {
	now := time.Now().UTC()
	_, err := s.c.UpdateOne(ctx,
		bson.M{"user_id": userID},
		bson.M{"$set": bson.M{
			"has_history_access": hasAccess,
			"plan":               plan,
			"updated_at":         now,
		}},
		options.Update().SetUpsert(true),
	)
	return err
}
