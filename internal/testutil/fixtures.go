package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/counselhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
// Calls chain: an existing route context is extended, not replaced.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateOrganization creates a test organization with the given name.
func (f *Fixtures) CreateOrganization(ctx context.Context, name string) models.Organization {
	f.t.Helper()

	now := time.Now().UTC()
	org := models.Organization{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		Status:    "active",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("organizations").InsertOne(ctx, org); err != nil {
		f.t.Fatalf("create organization fixture: %v", err)
	}
	return org
}

// CreateUser creates a test user with the given name, email, and role.
func (f *Fixtures) CreateUser(ctx context.Context, name, email, role string, orgID *primitive.ObjectID) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:             primitive.NewObjectID(),
		FullName:       name,
		FullNameCI:     text.Fold(name),
		Email:          email,
		Role:           role,
		Status:         "active",
		OrganizationID: orgID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("create user fixture: %v", err)
	}
	return u
}

// CreateSession creates a counseling session owned by memberID. Pass nil
// for an anonymous session.
func (f *Fixtures) CreateSession(ctx context.Context, memberID *primitive.ObjectID) models.CounselSession {
	f.t.Helper()

	now := time.Now().UTC()
	sess := models.CounselSession{
		ID:        primitive.NewObjectID(),
		MemberID:  memberID,
		Title:     "Test Session",
		Status:    models.SessionOpen,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("counsel_sessions").InsertOne(ctx, sess); err != nil {
		f.t.Fatalf("create session fixture: %v", err)
	}
	return sess
}

// CreateAssignment creates an active counselor assignment.
func (f *Fixtures) CreateAssignment(ctx context.Context, counselorID, memberID, orgID primitive.ObjectID) models.CounselorAssignment {
	f.t.Helper()

	a := models.CounselorAssignment{
		ID:             primitive.NewObjectID(),
		CounselorID:    counselorID,
		MemberID:       memberID,
		OrganizationID: orgID,
		Status:         models.AssignmentActive,
		AssignedAt:     time.Now().UTC(),
	}
	if _, err := f.db.Collection("counselor_assignments").InsertOne(ctx, a); err != nil {
		f.t.Fatalf("create assignment fixture: %v", err)
	}
	return a
}

// CreateCoverageGrant creates a live coverage grant. Pass a nil expiresAt
// for an open-ended grant.
func (f *Fixtures) CreateCoverageGrant(ctx context.Context, counselorID, memberID primitive.ObjectID, expiresAt *time.Time) models.CoverageGrant {
	f.t.Helper()

	g := models.CoverageGrant{
		ID:          primitive.NewObjectID(),
		CounselorID: counselorID,
		MemberID:    memberID,
		GrantedByID: primitive.NewObjectID(),
		CreatedAt:   time.Now().UTC(),
		ExpiresAt:   expiresAt,
	}
	if _, err := f.db.Collection("coverage_grants").InsertOne(ctx, g); err != nil {
		f.t.Fatalf("create coverage grant fixture: %v", err)
	}
	return g
}

// CreateShare creates a session share. sharedWithID may be nil for a bearer
// share; the token hash is derived from the literal token "test-token".
func (f *Fixtures) CreateShare(ctx context.Context, sessionID primitive.ObjectID, sharedWithID *primitive.ObjectID, sharedWithEmail string, allowNotes bool, expiresAt *time.Time) models.SessionShare {
	f.t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("test-token"), bcrypt.MinCost)
	if err != nil {
		f.t.Fatalf("hash share token: %v", err)
	}
	sh := models.SessionShare{
		ID:               primitive.NewObjectID(),
		SessionID:        sessionID,
		TokenHash:        hash,
		SharedWithID:     sharedWithID,
		SharedWithEmail:  sharedWithEmail,
		AllowNotesAccess: allowNotes,
		ExpiresAt:        expiresAt,
		CreatedByID:      primitive.NewObjectID(),
		CreatedAt:        time.Now().UTC(),
	}
	if _, err := f.db.Collection("session_shares").InsertOne(ctx, sh); err != nil {
		f.t.Fatalf("create share fixture: %v", err)
	}
	return sh
}

// CreateNote creates an active note on a session.
func (f *Fixtures) CreateNote(ctx context.Context, sessionID, authorID primitive.ObjectID, authorRole string, isPrivate bool) models.SessionNote {
	f.t.Helper()

	now := time.Now().UTC()
	n := models.SessionNote{
		ID:         primitive.NewObjectID(),
		SessionID:  sessionID,
		AuthorID:   authorID,
		AuthorName: "Test Author",
		AuthorRole: authorRole,
		Content:    "test note content",
		IsPrivate:  isPrivate,
		Lifecycle:  models.NoteActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := f.db.Collection("session_notes").InsertOne(ctx, n); err != nil {
		f.t.Fatalf("create note fixture: %v", err)
	}
	return n
}

// SetEntitlement records whether a user has paid history access.
func (f *Fixtures) SetEntitlement(ctx context.Context, userID primitive.ObjectID, hasAccess bool) {
	f.t.Helper()

	now := time.Now().UTC()
	doc := models.Entitlement{
		ID:               primitive.NewObjectID(),
		UserID:           userID,
		HasHistoryAccess: hasAccess,
		UpdatedAt:        now,
	}
	if _, err := f.db.Collection("entitlements").InsertOne(ctx, doc); err != nil {
		f.t.Fatalf("create entitlement fixture: %v", err)
	}
}
