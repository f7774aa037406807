package notes_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/counselhub/internal/app/features/notes"
	"github.com/dalemusser/counselhub/internal/app/policy/notepolicy"
	"github.com/dalemusser/counselhub/internal/app/system/notify"
	"github.com/dalemusser/counselhub/internal/domain/models"
	"github.com/dalemusser/counselhub/internal/testutil"
	"go.uber.org/zap"
)

// captureDispatcher records every dispatched event and lets tests wait
// for the asynchronous fan-out to finish.
type captureDispatcher struct {
	mu     sync.Mutex
	events []notify.Event
}

func (d *captureDispatcher) Dispatch(_ context.Context, ev notify.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, ev)
	return nil
}

func (d *captureDispatcher) snapshot() []notify.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]notify.Event, len(d.events))
	copy(out, d.events)
	return out
}

// waitFor polls until at least n events arrive or the deadline passes.
func (d *captureDispatcher) waitFor(t *testing.T, n int) []notify.Event {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		evs := d.snapshot()
		if len(evs) >= n {
			return evs
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d notification events, have %d", n, len(d.snapshot()))
	return nil
}

type serviceWorld struct {
	svc      *notes.Service
	disp     *captureDispatcher
	fixtures *testutil.Fixtures
	org      models.Organization
	member   models.User
	assigned models.User
	session  models.CounselSession
}

func newServiceWorld(t *testing.T, ctx context.Context) *serviceWorld {
	t.Helper()
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	disp := &captureDispatcher{}
	svc := notes.NewService(db, disp, zap.NewNop())

	org := fixtures.CreateOrganization(ctx, "Org")
	member := fixtures.CreateUser(ctx, "Member One", "m1@example.com", models.RoleMember, &org.ID)
	assigned := fixtures.CreateUser(ctx, "Counselor One", "c1@example.com", models.RoleCounselor, &org.ID)
	session := fixtures.CreateSession(ctx, &member.ID)
	fixtures.CreateAssignment(ctx, assigned.ID, member.ID, org.ID)
	fixtures.SetEntitlement(ctx, member.ID, true)

	return &serviceWorld{
		svc:      svc,
		disp:     disp,
		fixtures: fixtures,
		org:      org,
		member:   member,
		assigned: assigned,
		session:  session,
	}
}

func actorFor(u models.User) notepolicy.Actor {
	return notepolicy.Actor{ID: u.ID, Email: u.Email}
}

func TestService_CreateNote(t *testing.T) {
	ctx, cancel := testutil.TestContext()
	defer cancel()
	w := newServiceWorld(t, ctx)

	note, err := w.svc.CreateNote(ctx, actorFor(w.assigned), w.org.ID, notes.CreateNoteInput{
		SessionID: w.session.ID,
		Content:   "<p>observations</p><script>alert(1)</script>",
		IsPrivate: false,
	})
	if err != nil {
		t.Fatalf("CreateNote failed: %v", err)
	}

	if note.AuthorRole != models.AuthorRoleCounselor {
		t.Errorf("author role: got %q, want %q", note.AuthorRole, models.AuthorRoleCounselor)
	}
	if note.AuthorName != "Counselor One" {
		t.Errorf("author name: got %q, want %q", note.AuthorName, "Counselor One")
	}
	if strings.Contains(note.Content, "<script>") {
		t.Error("expected script tags to be stripped")
	}
	if !strings.Contains(note.Content, "observations") {
		t.Error("expected content to survive sanitization")
	}

	// The counselor's note notifies the session owner.
	evs := w.disp.waitFor(t, 1)
	if evs[0].RecipientEmail != w.member.Email {
		t.Errorf("recipient: got %q, want %q", evs[0].RecipientEmail, w.member.Email)
	}
	if evs[0].AuthorName != "Counselor One" {
		t.Errorf("event author: got %q, want %q", evs[0].AuthorName, "Counselor One")
	}
}

func TestService_CreateNote_OwnerNotifiesCounselors(t *testing.T) {
	ctx, cancel := testutil.TestContext()
	defer cancel()
	w := newServiceWorld(t, ctx)

	_, err := w.svc.CreateNote(ctx, actorFor(w.member), w.org.ID, notes.CreateNoteInput{
		SessionID: w.session.ID,
		Content:   "my own note",
	})
	if err != nil {
		t.Fatalf("CreateNote failed: %v", err)
	}

	evs := w.disp.waitFor(t, 1)
	if evs[0].RecipientEmail != w.assigned.Email {
		t.Errorf("recipient: got %q, want %q", evs[0].RecipientEmail, w.assigned.Email)
	}
}

func TestService_CreateNote_PrivateSkipsShareRecipients(t *testing.T) {
	ctx, cancel := testutil.TestContext()
	defer cancel()
	w := newServiceWorld(t, ctx)

	guest := w.fixtures.CreateUser(ctx, "Guest", "guest@example.com", models.RoleMember, nil)
	w.fixtures.CreateShare(ctx, w.session.ID, &guest.ID, "", true, nil)

	_, err := w.svc.CreateNote(ctx, actorFor(w.assigned), w.org.ID, notes.CreateNoteInput{
		SessionID: w.session.ID,
		Content:   "private observation",
		IsPrivate: true,
	})
	if err != nil {
		t.Fatalf("CreateNote failed: %v", err)
	}

	evs := w.disp.waitFor(t, 1)
	for _, ev := range evs {
		if ev.RecipientEmail == guest.Email {
			t.Error("share recipient must not be notified of a private note")
		}
	}
}

func TestService_CreateNote_Denied(t *testing.T) {
	ctx, cancel := testutil.TestContext()
	defer cancel()
	w := newServiceWorld(t, ctx)

	stranger := w.fixtures.CreateUser(ctx, "Stranger", "s@example.com", models.RoleMember, nil)

	_, err := w.svc.CreateNote(ctx, actorFor(stranger), w.org.ID, notes.CreateNoteInput{
		SessionID: w.session.ID,
		Content:   "should not land",
	})
	if _, ok := notepolicy.IsDenied(err); !ok {
		t.Fatalf("expected denial, got %v", err)
	}
	if len(w.disp.snapshot()) != 0 {
		t.Error("denied create must not dispatch notifications")
	}
}

func TestService_ListNotes_FiltersPrivate(t *testing.T) {
	ctx, cancel := testutil.TestContext()
	defer cancel()
	w := newServiceWorld(t, ctx)

	backup := w.fixtures.CreateUser(ctx, "Backup", "backup@example.com", models.RoleCounselor, &w.org.ID)
	w.fixtures.CreateCoverageGrant(ctx, backup.ID, w.member.ID, nil)

	w.fixtures.CreateNote(ctx, w.session.ID, w.assigned.ID, models.AuthorRoleCounselor, true)
	public := w.fixtures.CreateNote(ctx, w.session.ID, w.member.ID, models.AuthorRoleUser, false)

	// Coverage counselor sees only the public note.
	visible, err := w.svc.ListNotes(ctx, actorFor(backup), w.session.ID, w.org.ID)
	if err != nil {
		t.Fatalf("ListNotes failed: %v", err)
	}
	if len(visible) != 1 || visible[0].ID != public.ID {
		t.Errorf("expected only the public note, got %d notes", len(visible))
	}

	// The assigned counselor sees both.
	visible, err = w.svc.ListNotes(ctx, actorFor(w.assigned), w.session.ID, w.org.ID)
	if err != nil {
		t.Fatalf("ListNotes failed: %v", err)
	}
	if len(visible) != 2 {
		t.Errorf("expected both notes, got %d", len(visible))
	}
}

func TestService_UpdateNote_PrivateFlip(t *testing.T) {
	ctx, cancel := testutil.TestContext()
	defer cancel()
	w := newServiceWorld(t, ctx)

	note := w.fixtures.CreateNote(ctx, w.session.ID, w.assigned.ID, models.AuthorRoleCounselor, false)

	private := true
	updated, err := w.svc.UpdateNote(ctx, actorFor(w.assigned), w.org.ID, note.ID, notes.UpdateNoteInput{
		IsPrivate: &private,
	})
	if err != nil {
		t.Fatalf("UpdateNote failed: %v", err)
	}
	if !updated.IsPrivate {
		t.Error("expected note to become private")
	}
}

func TestService_UpdateNote_PrivateFlipRefusedForOwner(t *testing.T) {
	ctx, cancel := testutil.TestContext()
	defer cancel()
	w := newServiceWorld(t, ctx)

	// The owner authored a public note; flipping it private requires the
	// assigned-counselor role, which the owner does not hold.
	note := w.fixtures.CreateNote(ctx, w.session.ID, w.member.ID, models.AuthorRoleUser, false)

	private := true
	_, err := w.svc.UpdateNote(ctx, actorFor(w.member), w.org.ID, note.ID, notes.UpdateNoteInput{
		IsPrivate: &private,
	})
	reason, ok := notepolicy.IsDenied(err)
	if !ok {
		t.Fatalf("expected denial, got %v", err)
	}
	if reason != notepolicy.ReasonPrivateRestricted {
		t.Errorf("reason: got %q, want %q", reason, notepolicy.ReasonPrivateRestricted)
	}
}

func TestService_UpdateNote_ContentOnlySkipsPrivateCheck(t *testing.T) {
	ctx, cancel := testutil.TestContext()
	defer cancel()
	w := newServiceWorld(t, ctx)

	// Editing an already-private note does not re-run the privacy check.
	note := w.fixtures.CreateNote(ctx, w.session.ID, w.member.ID, models.AuthorRoleUser, true)

	content := "updated content"
	updated, err := w.svc.UpdateNote(ctx, actorFor(w.member), w.org.ID, note.ID, notes.UpdateNoteInput{
		Content: &content,
	})
	if err != nil {
		t.Fatalf("UpdateNote failed: %v", err)
	}
	if updated.Content != "updated content" {
		t.Errorf("content: got %q", updated.Content)
	}
	if !updated.IsPrivate {
		t.Error("expected privacy to be untouched")
	}
}

func TestService_DeleteNote(t *testing.T) {
	ctx, cancel := testutil.TestContext()
	defer cancel()
	w := newServiceWorld(t, ctx)

	note := w.fixtures.CreateNote(ctx, w.session.ID, w.member.ID, models.AuthorRoleUser, false)

	// Someone else's delete is refused.
	err := w.svc.DeleteNote(ctx, actorFor(w.assigned), note.ID)
	if _, ok := notepolicy.IsDenied(err); !ok {
		t.Fatalf("expected denial, got %v", err)
	}

	if err := w.svc.DeleteNote(ctx, actorFor(w.member), note.ID); err != nil {
		t.Fatalf("DeleteNote failed: %v", err)
	}

	// Deleted notes vanish from listings.
	visible, err := w.svc.ListNotes(ctx, actorFor(w.member), w.session.ID, w.org.ID)
	if err != nil {
		t.Fatalf("ListNotes failed: %v", err)
	}
	if len(visible) != 0 {
		t.Errorf("expected no notes after delete, got %d", len(visible))
	}

	// A second delete reports not-found, not success.
	err = w.svc.DeleteNote(ctx, actorFor(w.member), note.ID)
	if err != notepolicy.ErrNoteNotFound {
		t.Errorf("expected ErrNoteNotFound, got %v", err)
	}
}
