// internal/app/store/coverage/coveragestore.go
package coverage

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
	return &Store{c: db.Collection("coverage_grants")}
}

// EnsureIndexes creates the lookup index for live-grant resolution.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "counselor_id", Value: 1}, {Key: "member_id", Value: 1}},
			Options: options.Index().SetName("idx_coverage_counselor_member"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Grant inserts a new coverage grant. If CreatedAt is zero, it is set to now (UTC).
func (s *Store) Grant(ctx context.Context, g models.CoverageGrant) (models.CoverageGrant, error) {
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now().UTC()
	}

	res, err := s.c.InsertOne(ctx, g)
	if err != nil {
		return g, err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		g.ID = oid
	}
	return g, nil
}

// Revoke marks the grant revoked. Revoking an already revoked grant is a no-op.
func (s *Store) Revoke(ctx context.Context, id primitive.ObjectID) error {
	now := time.Now().UTC()
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "revoked_at": nil},
		bson.M{"$set": bson.M{"revoked_at": now}},
	)
	return err
}

// GetByID returns a single grant by its _id.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.CoverageGrant, error) {
	var g models.CoverageGrant
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&g)
	return g, err
}

// FindLive returns a live grant for (backup counselor, member), or nil.
// Coverage grants are member-scoped; there is no organization filter.
func (s *Store) FindLive(ctx context.Context, counselorID, memberID primitive.ObjectID) (*models.CoverageGrant, error) {
	now := time.Now().UTC()
	var g models.CoverageGrant
	err := s.c.FindOne(ctx, bson.M{
		"counselor_id": counselorID,
		"member_id":    memberID,
		"revoked_at":   nil,
		"$or": bson.A{
			bson.M{"expires_at": nil},
			bson.M{"expires_at": bson.M{"$gt": now}},
		},
	}).Decode(&g)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// ListByMember returns all grants for a member, newest first.
func (s *Store) ListByMember(ctx context.Context, memberID primitive.ObjectID) ([]models.CoverageGrant, error) {
	cur, err := s.c.Find(ctx, bson.M{"member_id": memberID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.CoverageGrant
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
