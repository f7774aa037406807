// internal/app/store/notes/notestore.go
package notes

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
	return &Store{c: db.Collection("session_notes")}
}

// EnsureIndexes creates the per-session listing index.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "session_id", Value: 1}, {Key: "created_at", Value: 1}},
			Options: options.Index().SetName("idx_notes_session"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Create inserts a new note in the active lifecycle state.
func (s *Store) Create(ctx context.Context, n models.SessionNote) (models.SessionNote, error) {
	now := time.Now().UTC()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = now
	}
	n.UpdatedAt = now
	n.Lifecycle = models.NoteActive
	n.DeletedAt = nil

	res, err := s.c.InsertOne(ctx, n)
	if err != nil {
		return n, err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		n.ID = oid
	}
	return n, nil
}

// GetByID returns an active note by _id, or nil if absent or deleted.
// Deleted notes are invisible through this store; callers never see them.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.SessionNote, error) {
	var n models.SessionNote
	err := s.c.FindOne(ctx, bson.M{
		"_id":       id,
		"lifecycle": models.NoteActive,
	}).Decode(&n)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// ListBySession returns all active notes for a session, oldest first.
// No visibility filtering happens here; that is the policy engine's job.
func (s *Store) ListBySession(ctx context.Context, sessionID primitive.ObjectID) ([]models.SessionNote, error) {
	cur, err := s.c.Find(ctx, bson.M{
		"session_id": sessionID,
		"lifecycle":  models.NoteActive,
	}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.SessionNote
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateContent replaces a note's content.
func (s *Store) UpdateContent(ctx context.Context, id primitive.ObjectID, content string) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "lifecycle": models.NoteActive},
		bson.M{"$set": bson.M{"content": content, "updated_at": time.Now().UTC()}},
	)
	return err
}

// SetPrivate flips a note's privacy flag.
func (s *Store) SetPrivate(ctx context.Context, id primitive.ObjectID, private bool) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "lifecycle": models.NoteActive},
		bson.M{"$set": bson.M{"is_private": private, "updated_at": time.Now().UTC()}},
	)
	return err
}

// SoftDelete transitions an active note to deleted, stamping deleted_at.
// Returns false if the note was already deleted or never existed, so a
// second delete cannot overwrite the original timestamp.
func (s *Store) SoftDelete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	now := time.Now().UTC()
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "lifecycle": models.NoteActive},
		bson.M{"$set": bson.M{
			"lifecycle":  models.NoteDeleted,
			"deleted_at": now,
			"updated_at": now,
		}},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}
