// internal/app/store/counselsessions/sessionstore.go
package counselsessions

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
	return &Store{c: db.Collection("counsel_sessions")}
}

// EnsureIndexes creates the member-history index.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "member_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_sessions_member"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Create inserts a new session. MemberID may be nil for anonymous sessions.
func (s *Store) Create(ctx context.Context, sess models.CounselSession) (models.CounselSession, error) {
	now := time.Now().UTC()
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = now
	}
	sess.UpdatedAt = now
	if sess.Status == "" {
		sess.Status = models.SessionOpen
	}

	res, err := s.c.InsertOne(ctx, sess)
	if err != nil {
		return sess, err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		sess.ID = oid
	}
	return sess, nil
}

// GetByID returns a session by _id, or nil if it does not exist.
// Missing sessions are a normal policy input, not an error.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.CounselSession, error) {
	var sess models.CounselSession
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&sess)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

// SetStatus updates the session lifecycle status.
func (s *Store) SetStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"status": status, "updated_at": time.Now().UTC()},
	})
	return err
}

// ListByMember returns a member's sessions, newest first.
func (s *Store) ListByMember(ctx context.Context, memberID primitive.ObjectID) ([]models.CounselSession, error) {
	cur, err := s.c.Find(ctx, bson.M{"member_id": memberID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.CounselSession
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
