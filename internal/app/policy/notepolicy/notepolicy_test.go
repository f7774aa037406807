package notepolicy_test

import (
	"context"
	"testing"

	"github.com/dalemusser/counselhub/internal/app/policy/notepolicy"
	"github.com/dalemusser/counselhub/internal/domain/models"
	"github.com/dalemusser/counselhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// world is the cast of characters most capability tests need: a member who
// owns a session inside an organization, an assigned counselor, and a
// backup counselor with a live coverage grant.
type world struct {
	db       *mongo.Database
	fixtures *testutil.Fixtures
	org      models.Organization
	member   models.User
	assigned models.User
	backup   models.User
	session  models.CounselSession
}

func newWorld(t *testing.T, ctx context.Context) *world {
	t.Helper()
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)

	org := fixtures.CreateOrganization(ctx, "Org")
	member := fixtures.CreateUser(ctx, "Member One", "m1@example.com", models.RoleMember, &org.ID)
	assigned := fixtures.CreateUser(ctx, "Counselor One", "c1@example.com", models.RoleCounselor, &org.ID)
	backup := fixtures.CreateUser(ctx, "Counselor Two", "c2@example.com", models.RoleCounselor, &org.ID)
	session := fixtures.CreateSession(ctx, &member.ID)

	fixtures.CreateAssignment(ctx, assigned.ID, member.ID, org.ID)
	fixtures.CreateCoverageGrant(ctx, backup.ID, member.ID, nil)

	return &world{
		db:       db,
		fixtures: fixtures,
		org:      org,
		member:   member,
		assigned: assigned,
		backup:   backup,
		session:  session,
	}
}

func actorFor(u models.User) notepolicy.Actor {
	return notepolicy.Actor{ID: u.ID, Email: u.Email}
}

func TestCanCreateNote_SubscribedOwner(t *testing.T) {
	ctx, cancel := testutil.TestContext()
	defer cancel()
	w := newWorld(t, ctx)
	w.fixtures.SetEntitlement(ctx, w.member.ID, true)

	err := notepolicy.CanCreateNote(ctx, w.db, actorFor(w.member), w.session.ID, w.org.ID, false)
	if err != nil {
		t.Fatalf("expected allow, got %v", err)
	}

	role, err := notepolicy.DetermineAuthorRole(ctx, w.db, actorFor(w.member), w.session.ID, w.org.ID)
	if err != nil {
		t.Fatalf("DetermineAuthorRole failed: %v", err)
	}
	if role != models.AuthorRoleUser {
		t.Errorf("author role: got %q, want %q", role, models.AuthorRoleUser)
	}
}

func TestCanCreateNote_UnsubscribedOwner(t *testing.T) {
	ctx, cancel := testutil.TestContext()
	defer cancel()
	w := newWorld(t, ctx)

	err := notepolicy.CanCreateNote(ctx, w.db, actorFor(w.member), w.session.ID, w.org.ID, false)
	reason, ok := notepolicy.IsDenied(err)
	if !ok {
		t.Fatalf("expected denial, got %v", err)
	}
	if reason != notepolicy.ReasonSubscriptionRequired {
		t.Errorf("reason: got %q, want %q", reason, notepolicy.ReasonSubscriptionRequired)
	}
}

func TestCanCreateNote_AssignedCounselorPrivate(t *testing.T) {
	ctx, cancel := testutil.TestContext()
	defer cancel()
	w := newWorld(t, ctx)

	err := notepolicy.CanCreateNote(ctx, w.db, actorFor(w.assigned), w.session.ID, w.org.ID, true)
	if err != nil {
		t.Fatalf("expected assigned counselor to create private notes, got %v", err)
	}
}

func TestCanCreateNote_CoveragePrivateRefused(t *testing.T) {
	ctx, cancel := testutil.TestContext()
	defer cancel()
	w := newWorld(t, ctx)

	err := notepolicy.CanCreateNote(ctx, w.db, actorFor(w.backup), w.session.ID, w.org.ID, true)
	reason, ok := notepolicy.IsDenied(err)
	if !ok {
		t.Fatalf("expected denial, got %v", err)
	}
	if reason != notepolicy.ReasonCoveragePrivate {
		t.Errorf("reason: got %q, want %q", reason, notepolicy.ReasonCoveragePrivate)
	}

	// The same counselor may create a public note.
	if err := notepolicy.CanCreateNote(ctx, w.db, actorFor(w.backup), w.session.ID, w.org.ID, false); err != nil {
		t.Fatalf("expected public note to be allowed, got %v", err)
	}
}

func TestCanCreateNote_CoveragePrivateRefusedDespiteWriteShare(t *testing.T) {
	ctx, cancel := testutil.TestContext()
	defer cancel()
	w := newWorld(t, ctx)

	// A write-capable share must not override the coverage-private rule.
	w.fixtures.CreateShare(ctx, w.session.ID, &w.backup.ID, "", true, nil)

	err := notepolicy.CanCreateNote(ctx, w.db, actorFor(w.backup), w.session.ID, w.org.ID, true)
	reason, ok := notepolicy.IsDenied(err)
	if !ok {
		t.Fatalf("expected denial, got %v", err)
	}
	if reason != notepolicy.ReasonCoveragePrivate {
		t.Errorf("reason: got %q, want %q", reason, notepolicy.ReasonCoveragePrivate)
	}
}

func TestCanCreateNote_ReadOnlyShareUnsubscribed(t *testing.T) {
	ctx, cancel := testutil.TestContext()
	defer cancel()
	w := newWorld(t, ctx)

	u2 := w.fixtures.CreateUser(ctx, "Viewer", "u2@example.com", models.RoleMember, nil)
	w.fixtures.CreateShare(ctx, w.session.ID, &u2.ID, "", false, nil)

	err := notepolicy.CanCreateNote(ctx, w.db, actorFor(u2), w.session.ID, w.org.ID, false)
	reason, ok := notepolicy.IsDenied(err)
	if !ok {
		t.Fatalf("expected denial, got %v", err)
	}
	if reason != notepolicy.ReasonNotesAccessRequired {
		t.Errorf("reason: got %q, want %q", reason, notepolicy.ReasonNotesAccessRequired)
	}
}

func TestCanCreateNote_WriteShare(t *testing.T) {
	ctx, cancel := testutil.TestContext()
	defer cancel()
	w := newWorld(t, ctx)

	u2 := w.fixtures.CreateUser(ctx, "Viewer", "u2@example.com", models.RoleMember, nil)
	w.fixtures.CreateShare(ctx, w.session.ID, &u2.ID, "", true, nil)

	if err := notepolicy.CanCreateNote(ctx, w.db, actorFor(u2), w.session.ID, w.org.ID, false); err != nil {
		t.Fatalf("expected write share to allow note creation, got %v", err)
	}
}

func TestCanCreateNote_SessionNotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	actor := notepolicy.Actor{ID: primitive.NewObjectID()}
	err := notepolicy.CanCreateNote(ctx, db, actor, primitive.NewObjectID(), primitive.NilObjectID, false)
	if err != notepolicy.ErrSessionNotFound {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestCanAccessNotes_OwnerIgnoresSharesAndRoles(t *testing.T) {
	ctx, cancel := testutil.TestContext()
	defer cancel()
	w := newWorld(t, ctx)

	// Owner without subscription is denied even while shares exist for
	// other people: only the subscription signal gates the owner.
	w.fixtures.CreateShare(ctx, w.session.ID, &w.backup.ID, "", true, nil)

	err := notepolicy.CanAccessNotes(ctx, w.db, actorFor(w.member), w.session.ID, w.org.ID)
	reason, ok := notepolicy.IsDenied(err)
	if !ok {
		t.Fatalf("expected denial, got %v", err)
	}
	if reason != notepolicy.ReasonSubscriptionRequired {
		t.Errorf("reason: got %q, want %q", reason, notepolicy.ReasonSubscriptionRequired)
	}

	w.fixtures.SetEntitlement(ctx, w.member.ID, true)
	if err := notepolicy.CanAccessNotes(ctx, w.db, actorFor(w.member), w.session.ID, w.org.ID); err != nil {
		t.Fatalf("expected subscribed owner to read notes, got %v", err)
	}
}

func TestCanAccessNotes_Counselors(t *testing.T) {
	ctx, cancel := testutil.TestContext()
	defer cancel()
	w := newWorld(t, ctx)

	if err := notepolicy.CanAccessNotes(ctx, w.db, actorFor(w.assigned), w.session.ID, w.org.ID); err != nil {
		t.Fatalf("assigned counselor: %v", err)
	}
	if err := notepolicy.CanAccessNotes(ctx, w.db, actorFor(w.backup), w.session.ID, w.org.ID); err != nil {
		t.Fatalf("coverage counselor: %v", err)
	}
}

func TestCanViewNote_PrivateVisibility(t *testing.T) {
	ctx, cancel := testutil.TestContext()
	defer cancel()
	w := newWorld(t, ctx)

	// Private note authored by the assigned counselor.
	counselorNote := w.fixtures.CreateNote(ctx, w.session.ID, w.assigned.ID, models.AuthorRoleCounselor, true)
	// Private note authored by the owner.
	ownerNote := w.fixtures.CreateNote(ctx, w.session.ID, w.member.ID, models.AuthorRoleUser, true)
	// Public note.
	publicNote := w.fixtures.CreateNote(ctx, w.session.ID, w.member.ID, models.AuthorRoleUser, false)

	cases := []struct {
		name  string
		actor notepolicy.Actor
		note  models.SessionNote
		want  bool
	}{
		{"author sees own private note", actorFor(w.assigned), counselorNote, true},
		{"owner sees counselor-authored private note", actorFor(w.member), counselorNote, true},
		{"assigned sees owner's private note", actorFor(w.assigned), ownerNote, true},
		{"coverage blocked from counselor private note", actorFor(w.backup), counselorNote, false},
		{"coverage blocked from owner's private note", actorFor(w.backup), ownerNote, false},
		{"anyone sees public note", actorFor(w.backup), publicNote, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := notepolicy.CanViewNote(ctx, w.db, tc.actor, tc.note, w.org.ID)
			if err != nil {
				t.Fatalf("CanViewNote failed: %v", err)
			}
			if got != tc.want {
				t.Errorf("visible: got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCanEditNote_AuthorOnly(t *testing.T) {
	ctx, cancel := testutil.TestContext()
	defer cancel()
	w := newWorld(t, ctx)

	note := w.fixtures.CreateNote(ctx, w.session.ID, w.member.ID, models.AuthorRoleUser, false)

	got, err := notepolicy.CanEditNote(ctx, w.db, actorFor(w.member), note.ID)
	if err != nil {
		t.Fatalf("author edit: %v", err)
	}
	if got.ID != note.ID {
		t.Errorf("note ID: got %v, want %v", got.ID, note.ID)
	}

	_, err = notepolicy.CanEditNote(ctx, w.db, actorFor(w.assigned), note.ID)
	reason, ok := notepolicy.IsDenied(err)
	if !ok {
		t.Fatalf("expected denial, got %v", err)
	}
	if reason != notepolicy.ReasonNotNoteAuthor {
		t.Errorf("reason: got %q, want %q", reason, notepolicy.ReasonNotNoteAuthor)
	}

	_, err = notepolicy.CanEditNote(ctx, w.db, actorFor(w.member), primitive.NewObjectID())
	if err != notepolicy.ErrNoteNotFound {
		t.Errorf("expected ErrNoteNotFound, got %v", err)
	}
}

func TestCanMakeNotePrivate(t *testing.T) {
	ctx, cancel := testutil.TestContext()
	defer cancel()
	w := newWorld(t, ctx)

	ok, err := notepolicy.CanMakeNotePrivate(ctx, w.db, actorFor(w.assigned), w.session.ID, w.org.ID)
	if err != nil {
		t.Fatalf("CanMakeNotePrivate failed: %v", err)
	}
	if !ok {
		t.Error("expected assigned counselor to qualify")
	}

	ok, err = notepolicy.CanMakeNotePrivate(ctx, w.db, actorFor(w.backup), w.session.ID, w.org.ID)
	if err != nil {
		t.Fatalf("CanMakeNotePrivate failed: %v", err)
	}
	if ok {
		t.Error("expected coverage counselor to be refused")
	}

	// Anonymous sessions are treated permissively.
	anon := w.fixtures.CreateSession(ctx, nil)
	ok, err = notepolicy.CanMakeNotePrivate(ctx, w.db, actorFor(w.backup), anon.ID, w.org.ID)
	if err != nil {
		t.Fatalf("CanMakeNotePrivate failed: %v", err)
	}
	if !ok {
		t.Error("expected ownerless session to be permissive")
	}
}

func TestCanAccessSession(t *testing.T) {
	ctx, cancel := testutil.TestContext()
	defer cancel()
	w := newWorld(t, ctx)

	stranger := w.fixtures.CreateUser(ctx, "Stranger", "s@example.com", models.RoleMember, nil)

	cases := []struct {
		name  string
		actor notepolicy.Actor
		want  bool
	}{
		{"owner", actorFor(w.member), true},
		{"assigned counselor", actorFor(w.assigned), true},
		{"coverage counselor", actorFor(w.backup), true},
		{"stranger", actorFor(stranger), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := notepolicy.CanAccessSession(ctx, w.db, tc.actor, w.session.ID, w.org.ID)
			if err != nil {
				t.Fatalf("CanAccessSession failed: %v", err)
			}
			if got != tc.want {
				t.Errorf("access: got %v, want %v", got, tc.want)
			}
		})
	}

	// A missing session yields false, not an error.
	got, err := notepolicy.CanAccessSession(ctx, w.db, actorFor(w.member), primitive.NewObjectID(), w.org.ID)
	if err != nil {
		t.Fatalf("CanAccessSession failed: %v", err)
	}
	if got {
		t.Error("expected false for missing session")
	}
}

func TestDetermineAuthorRole(t *testing.T) {
	ctx, cancel := testutil.TestContext()
	defer cancel()
	w := newWorld(t, ctx)

	stranger := w.fixtures.CreateUser(ctx, "Stranger", "s@example.com", models.RoleMember, nil)

	cases := []struct {
		name  string
		actor notepolicy.Actor
		want  string
	}{
		{"owner", actorFor(w.member), models.AuthorRoleUser},
		{"assigned counselor", actorFor(w.assigned), models.AuthorRoleCounselor},
		{"coverage counselor", actorFor(w.backup), models.AuthorRoleCounselor},
		{"stranger", actorFor(stranger), models.AuthorRoleViewer},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := notepolicy.DetermineAuthorRole(ctx, w.db, tc.actor, w.session.ID, w.org.ID)
			if err != nil {
				t.Fatalf("DetermineAuthorRole failed: %v", err)
			}
			if got != tc.want {
				t.Errorf("role: got %q, want %q", got, tc.want)
			}
		})
	}

	// Missing session fails open to the least-privileged label.
	got, err := notepolicy.DetermineAuthorRole(ctx, w.db, actorFor(w.member), primitive.NewObjectID(), w.org.ID)
	if err != nil {
		t.Fatalf("DetermineAuthorRole failed: %v", err)
	}
	if got != models.AuthorRoleViewer {
		t.Errorf("role: got %q, want %q", got, models.AuthorRoleViewer)
	}
}
