package sessions_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/counselhub/internal/app/features/notes"
	"github.com/dalemusser/counselhub/internal/app/features/sessions"
	"github.com/dalemusser/counselhub/internal/app/store/shares"
	"github.com/dalemusser/counselhub/internal/app/system/notify"
	"github.com/dalemusser/counselhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// noopDispatcher satisfies notify.Dispatcher for handler tests that do not
// assert on notifications.
type noopDispatcher struct{}

func (noopDispatcher) Dispatch(context.Context, notify.Event) error { return nil }

func newHandler(db *mongo.Database) *sessions.Handler {
	noteHandler := notes.NewHandler(db, noopDispatcher{}, zap.NewNop())
	return sessions.NewHandler(db, noteHandler.Service, zap.NewNop())
}

func TestHandler_Export_MissingSession(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := fixtures.CreateOrganization(ctx, "Org")
	member := fixtures.CreateUser(ctx, "Member", "m1@example.com", "member", &org.ID)
	h := newHandler(db)

	req := httptest.NewRequest(http.MethodGet, "/sessions/x/export", nil)
	req = testutil.WithUser(req, testutil.ForUser(member))
	req = testutil.WithChiURLParam(req, "sessionID", primitive.NewObjectID().Hex())

	rec := httptest.NewRecorder()
	h.Export(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("export of a missing session: got %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestHandler_RevokeShare_OtherSession(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := fixtures.CreateOrganization(ctx, "Org")
	owner := fixtures.CreateUser(ctx, "Owner", "owner@example.com", "member", &org.ID)
	other := fixtures.CreateUser(ctx, "Other", "other@example.com", "member", &org.ID)

	ownSession := fixtures.CreateSession(ctx, &owner.ID)
	otherSession := fixtures.CreateSession(ctx, &other.ID)
	otherShare := fixtures.CreateShare(ctx, otherSession.ID, nil, "invited@example.com", true, nil)

	h := newHandler(db)

	// Owner of one session tries to revoke a share that belongs to someone
	// else's session through their own session URL.
	req := httptest.NewRequest(http.MethodDelete, "/sessions/x/shares/y", nil)
	req = testutil.WithUser(req, testutil.ForUser(owner))
	req = testutil.WithChiURLParam(req, "sessionID", ownSession.ID.Hex())
	req = testutil.WithChiURLParam(req, "shareID", otherShare.ID.Hex())

	rec := httptest.NewRecorder()
	h.RevokeShare(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("cross-session revoke: got %d, want %d", rec.Code, http.StatusNotFound)
	}

	list, err := shares.New(db).ListBySession(ctx, otherSession.ID)
	if err != nil {
		t.Fatalf("ListBySession failed: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected the other session's share to survive, found %d", len(list))
	}
}
