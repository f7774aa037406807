// internal/app/store/assignments/assignmentstore.go
package assignments

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
	return &Store{c: db.Collection("counselor_assignments")}
}

// EnsureIndexes creates the indexes this store relies on. The partial unique
// index on (member_id, organization_id) for active rows closes the
// deactivate-then-create race at the storage layer: a concurrent second
// writer gets a duplicate-key error instead of a second active row.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "member_id", Value: 1}, {Key: "organization_id", Value: 1}},
			Options: options.Index().
				SetName("idx_assignments_one_active").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": models.AssignmentActive}),
		},
		{
			Keys:    bson.D{{Key: "counselor_id", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("idx_assignments_counselor"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Create inserts a new active assignment for (counselor, member, organization).
// Any existing active assignment for that member in that organization is
// transitioned to inactive with an ended_at timestamp first, so at most one
// active row exists per (member, organization) afterward.
func (s *Store) Create(ctx context.Context, a models.CounselorAssignment) (models.CounselorAssignment, error) {
	now := time.Now().UTC()

	// Supersede any currently active assignment for this member/org.
	_, err := s.c.UpdateMany(ctx,
		bson.M{
			"member_id":       a.MemberID,
			"organization_id": a.OrganizationID,
			"status":          models.AssignmentActive,
		},
		bson.M{
			"$set": bson.M{
				"status":   models.AssignmentInactive,
				"ended_at": now,
			},
		},
	)
	if err != nil {
		return a, err
	}

	a.Status = models.AssignmentActive
	if a.AssignedAt.IsZero() {
		a.AssignedAt = now
	}
	a.EndedAt = nil

	res, err := s.c.InsertOne(ctx, a)
	if err != nil {
		return a, err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		a.ID = oid
	}
	return a, nil
}

// End transitions the assignment with the given _id to inactive.
// Ending an already inactive assignment is a no-op.
func (s *Store) End(ctx context.Context, id primitive.ObjectID) error {
	now := time.Now().UTC()
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.AssignmentActive},
		bson.M{"$set": bson.M{"status": models.AssignmentInactive, "ended_at": now}},
	)
	return err
}

// GetByID returns a single assignment by its _id.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.CounselorAssignment, error) {
	var a models.CounselorAssignment
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&a)
	return a, err
}

// FindActive returns the active assignment linking this counselor to this
// member within the organization, or nil if none exists.
func (s *Store) FindActive(ctx context.Context, counselorID, memberID, orgID primitive.ObjectID) (*models.CounselorAssignment, error) {
	var a models.CounselorAssignment
	err := s.c.FindOne(ctx, bson.M{
		"counselor_id":    counselorID,
		"member_id":       memberID,
		"organization_id": orgID,
		"status":          models.AssignmentActive,
	}).Decode(&a)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ActiveForMember returns the active assignment for a member within an
// organization regardless of counselor, or nil if the member is unassigned.
func (s *Store) ActiveForMember(ctx context.Context, memberID, orgID primitive.ObjectID) (*models.CounselorAssignment, error) {
	var a models.CounselorAssignment
	err := s.c.FindOne(ctx, bson.M{
		"member_id":       memberID,
		"organization_id": orgID,
		"status":          models.AssignmentActive,
	}).Decode(&a)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ActiveCounselorIDs returns the counselor ids with an active assignment to
// this member across all organizations. Used to build notification
// recipient sets.
func (s *Store) ActiveCounselorIDs(ctx context.Context, memberID primitive.ObjectID) ([]primitive.ObjectID, error) {
	cur, err := s.c.Find(ctx, bson.M{
		"member_id": memberID,
		"status":    models.AssignmentActive,
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var ids []primitive.ObjectID
	for cur.Next(ctx) {
		var a models.CounselorAssignment
		if err := cur.Decode(&a); err != nil {
			return nil, err
		}
		ids = append(ids, a.CounselorID)
	}
	return ids, cur.Err()
}

// ListByCounselor returns all assignments (active and ended) for a counselor.
func (s *Store) ListByCounselor(ctx context.Context, counselorID primitive.ObjectID) ([]models.CounselorAssignment, error) {
	cur, err := s.c.Find(ctx, bson.M{"counselor_id": counselorID},
		options.Find().SetSort(bson.D{{Key: "assigned_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.CounselorAssignment
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CountActive returns the number of active assignments for (member, org).
// Exposed for tests asserting the single-active invariant.
func (s *Store) CountActive(ctx context.Context, memberID, orgID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{
		"member_id":       memberID,
		"organization_id": orgID,
		"status":          models.AssignmentActive,
	})
}
