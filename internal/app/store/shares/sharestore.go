// internal/app/store/shares/sharestore.go
package shares

import (
	"context"
	"strings"
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
	return &Store{c: db.Collection("session_shares")}
}

// EnsureIndexes creates the share lookup index.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "session_id", Value: 1}, {Key: "shared_with_id", Value: 1}},
			Options: options.Index().SetName("idx_shares_session"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Create inserts a new share. If CreatedAt is zero, it is set to now (UTC).
func (s *Store) Create(ctx context.Context, sh models.SessionShare) (models.SessionShare, error) {
	if sh.CreatedAt.IsZero() {
		sh.CreatedAt = time.Now().UTC()
	}

	res, err := s.c.InsertOne(ctx, sh)
	if err != nil {
		return sh, err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		sh.ID = oid
	}
	return sh, nil
}

// FindValid returns an unexpired share redeemable by the actor: shared
// directly with them (by id or email) or open to any token holder. When
// several shares qualify, the most permissive wins: write-capable shares
// sort ahead of read-only ones so differing allow_notes_access flags never
// depend on insertion order.
func (s *Store) FindValid(ctx context.Context, actorID primitive.ObjectID, actorEmail string, sessionID primitive.ObjectID) (*models.SessionShare, error) {
	now := time.Now().UTC()

	identity := bson.A{
		bson.M{"shared_with_id": nil},
		bson.M{"shared_with_id": actorID},
	}
	// Addressed shares store the email lowercased; fold the actor's to match.
	if actorEmail != "" {
		identity = append(identity, bson.M{"shared_with_email": strings.ToLower(actorEmail)})
	}

	filter := bson.M{
		"session_id": sessionID,
		"$and": bson.A{
			bson.M{"$or": identity},
			bson.M{"$or": bson.A{
				bson.M{"expires_at": nil},
				bson.M{"expires_at": bson.M{"$gt": now}},
			}},
		},
	}

	var sh models.SessionShare
	err := s.c.FindOne(ctx, filter,
		options.FindOne().SetSort(bson.D{{Key: "allow_notes_access", Value: -1}})).Decode(&sh)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sh, nil
}

// ListRedeemable returns all unexpired shares for a session that name a
// recipient, by user id or by email. Pure bearer shares are excluded: there
// is no identity to notify.
func (s *Store) ListRedeemable(ctx context.Context, sessionID primitive.ObjectID) ([]models.SessionShare, error) {
	now := time.Now().UTC()
	cur, err := s.c.Find(ctx, bson.M{
		"session_id": sessionID,
		"$and": bson.A{
			bson.M{"$or": bson.A{
				bson.M{"shared_with_id": bson.M{"$ne": nil}},
				bson.M{"shared_with_email": bson.M{"$nin": bson.A{nil, ""}}},
			}},
			bson.M{"$or": bson.A{
				bson.M{"expires_at": nil},
				bson.M{"expires_at": bson.M{"$gt": now}},
			}},
		},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.SessionShare
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListBySession returns every share on a session, expired ones included.
// Used by the owner's share-management view and by token redemption, which
// must compare the presented token against each candidate hash.
func (s *Store) ListBySession(ctx context.Context, sessionID primitive.ObjectID) ([]models.SessionShare, error) {
	cur, err := s.c.Find(ctx, bson.M{"session_id": sessionID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.SessionShare
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SetRecipient binds a bearer share to a concrete user. Only applies while
// the share is still unbound; a second claim is a no-op.
func (s *Store) SetRecipient(ctx context.Context, id, userID primitive.ObjectID) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "shared_with_id": nil},
		bson.M{"$set": bson.M{"shared_with_id": userID}},
	)
	return err
}

// Revoke removes a share. The delete is scoped to the session so a share id
// from another session never matches. Shares carry no audit requirement, so
// this is a hard delete. Returns whether a share was removed.
func (s *Store) Revoke(ctx context.Context, sessionID, id primitive.ObjectID) (bool, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "session_id": sessionID})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}
