// internal/app/features/notes/service.go
package notes

import (
	"context"
	"strings"
	"time"

	"github.com/dalemusser/counselhub/internal/app/policy/notepolicy"
	"github.com/dalemusser/counselhub/internal/app/store/assignments"
	"github.com/dalemusser/counselhub/internal/app/store/counselsessions"
	notestore "github.com/dalemusser/counselhub/internal/app/store/notes"
	"github.com/dalemusser/counselhub/internal/app/store/shares"
	"github.com/dalemusser/counselhub/internal/app/store/users"
	"github.com/dalemusser/counselhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/counselhub/internal/app/system/notify"
	"github.com/dalemusser/counselhub/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// notifyTimeout bounds the background recipient-expansion and dispatch work
// for a single created note.
const notifyTimeout = 30 * time.Second

// Service orchestrates the note lifecycle: every mutation is gated by the
// policy packages first, then executed against the stores. Notification
// fan-out after creation happens off the request path; its failures are
// logged and never surface to the caller.
type Service struct {
	DB          *mongo.Database
	Notes       *notestore.Store
	Sessions    *counselsessions.Store
	Shares      *shares.Store
	Assignments *assignments.Store
	Users       *users.Store
	Dispatcher  notify.Dispatcher
	Log         *zap.Logger
}

// NewService constructs a note Service backed by db.
func NewService(db *mongo.Database, dispatcher notify.Dispatcher, logger *zap.Logger) *Service {
	return &Service{
		DB:          db,
		Notes:       notestore.New(db),
		Sessions:    counselsessions.New(db),
		Shares:      shares.New(db),
		Assignments: assignments.New(db),
		Users:       users.New(db),
		Dispatcher:  dispatcher,
		Log:         logger,
	}
}

// CreateNoteInput carries the caller-supplied fields for a new note.
type CreateNoteInput struct {
	SessionID primitive.ObjectID
	Content   string
	IsPrivate bool
}

// CreateNote authorizes and persists a new note on a session, stamping the
// author's display name and role label at creation time. On success the
// notification fan-out is handed off to a background goroutine.
func (s *Service) CreateNote(ctx context.Context, actor notepolicy.Actor, orgID primitive.ObjectID, in CreateNoteInput) (models.SessionNote, error) {
	if err := notepolicy.CanCreateNote(ctx, s.DB, actor, in.SessionID, orgID, in.IsPrivate); err != nil {
		return models.SessionNote{}, err
	}

	role, err := notepolicy.DetermineAuthorRole(ctx, s.DB, actor, in.SessionID, orgID)
	if err != nil {
		return models.SessionNote{}, err
	}

	name := s.authorName(ctx, actor)

	note := models.SessionNote{
		SessionID:  in.SessionID,
		AuthorID:   actor.ID,
		AuthorName: name,
		AuthorRole: role,
		Content:    htmlsanitize.Sanitize(strings.TrimSpace(in.Content)),
		IsPrivate:  in.IsPrivate,
	}
	note, err = s.Notes.Create(ctx, note)
	if err != nil {
		return models.SessionNote{}, err
	}

	go s.notifyCreated(context.WithoutCancel(ctx), note)

	return note, nil
}

// ListNotes returns the notes on a session the actor is allowed to see.
// Access to the list is gated coarsely first; private notes are then
// filtered per note.
func (s *Service) ListNotes(ctx context.Context, actor notepolicy.Actor, sessionID, orgID primitive.ObjectID) ([]models.SessionNote, error) {
	if err := notepolicy.CanAccessNotes(ctx, s.DB, actor, sessionID, orgID); err != nil {
		return nil, err
	}

	all, err := s.Notes.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	visible := make([]models.SessionNote, 0, len(all))
	for _, n := range all {
		ok, err := notepolicy.CanViewNote(ctx, s.DB, actor, n, orgID)
		if err != nil {
			return nil, err
		}
		if ok {
			visible = append(visible, n)
		}
	}
	return visible, nil
}

// UpdateNoteInput carries optional changes; nil fields are left untouched.
type UpdateNoteInput struct {
	Content   *string
	IsPrivate *bool
}

// UpdateNote edits a note's content or privacy. Only the author may edit.
// Flipping a public note to private requires the same role check applied at
// creation; flipping private to public does not.
func (s *Service) UpdateNote(ctx context.Context, actor notepolicy.Actor, orgID, noteID primitive.ObjectID, in UpdateNoteInput) (models.SessionNote, error) {
	note, err := notepolicy.CanEditNote(ctx, s.DB, actor, noteID)
	if err != nil {
		return models.SessionNote{}, err
	}

	if in.IsPrivate != nil && *in.IsPrivate && !note.IsPrivate {
		ok, err := notepolicy.CanMakeNotePrivate(ctx, s.DB, actor, note.SessionID, orgID)
		if err != nil {
			return models.SessionNote{}, err
		}
		if !ok {
			return models.SessionNote{}, notepolicy.Denied(notepolicy.ReasonPrivateRestricted)
		}
	}

	if in.Content != nil {
		content := htmlsanitize.Sanitize(strings.TrimSpace(*in.Content))
		if err := s.Notes.UpdateContent(ctx, noteID, content); err != nil {
			return models.SessionNote{}, err
		}
		note.Content = content
	}
	if in.IsPrivate != nil && *in.IsPrivate != note.IsPrivate {
		if err := s.Notes.SetPrivate(ctx, noteID, *in.IsPrivate); err != nil {
			return models.SessionNote{}, err
		}
		note.IsPrivate = *in.IsPrivate
	}
	note.UpdatedAt = time.Now().UTC()

	return *note, nil
}

// DeleteNote soft-deletes a note. Only the author may delete. Deleting an
// already-deleted note is a no-op.
func (s *Service) DeleteNote(ctx context.Context, actor notepolicy.Actor, noteID primitive.ObjectID) error {
	if _, err := notepolicy.CanDeleteNote(ctx, s.DB, actor, noteID); err != nil {
		return err
	}
	_, err := s.Notes.SoftDelete(ctx, noteID)
	return err
}

// authorName resolves the actor's display name, falling back to their email
// when no user record exists.
func (s *Service) authorName(ctx context.Context, actor notepolicy.Actor) string {
	u, err := s.Users.GetByID(ctx, actor.ID)
	if err != nil {
		s.Log.Warn("resolve author name failed", zap.String("author_id", actor.ID.Hex()), zap.Error(err))
		return actor.Email
	}
	if u == nil || u.FullName == "" {
		return actor.Email
	}
	return u.FullName
}

// recipient is one notification target. ID is zero for email-only share
// recipients who have no account yet.
type recipient struct {
	ID    primitive.ObjectID
	Email string
}

// notifyCreated computes the recipient set for a freshly created note and
// dispatches one event per recipient. Runs off the request path; every
// failure here is logged and dropped.
func (s *Service) notifyCreated(ctx context.Context, note models.SessionNote) {
	ctx, cancel := context.WithTimeout(ctx, notifyTimeout)
	defer cancel()

	recipients, err := s.recipientsFor(ctx, note)
	if err != nil {
		s.Log.Warn("note notification: recipient expansion failed",
			zap.String("note_id", note.ID.Hex()), zap.Error(err))
		return
	}

	eventID := uuid.NewString()
	for _, rcpt := range recipients {
		ev := notify.Event{
			EventID:        eventID,
			RecipientID:    rcpt.ID.Hex(),
			RecipientEmail: rcpt.Email,
			AuthorName:     note.AuthorName,
			SessionID:      note.SessionID.Hex(),
			IsPrivate:      note.IsPrivate,
		}
		if rcpt.ID.IsZero() {
			ev.RecipientID = ""
		}
		if err := s.Dispatcher.Dispatch(ctx, ev); err != nil {
			s.Log.Warn("note notification: dispatch failed",
				zap.String("note_id", note.ID.Hex()),
				zap.String("recipient_email", rcpt.Email),
				zap.Error(err))
		}
	}
}

// recipientsFor builds the notification targets for a new note:
//
//   - the session owner, when someone else authored the note
//   - every active counselor for the owner, when the owner authored it
//   - every named or emailed share recipient, for non-private notes
//
// The author is never their own recipient, and each target appears once.
func (s *Service) recipientsFor(ctx context.Context, note models.SessionNote) ([]recipient, error) {
	sess, err := s.Sessions.GetByID(ctx, note.SessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, nil
	}

	seenIDs := make(map[primitive.ObjectID]bool)
	seenEmails := make(map[string]bool)
	var ids []primitive.ObjectID
	var out []recipient

	addID := func(id primitive.ObjectID) {
		if id.IsZero() || id == note.AuthorID || seenIDs[id] {
			return
		}
		seenIDs[id] = true
		ids = append(ids, id)
	}

	if sess.MemberID != nil {
		owner := *sess.MemberID
		if owner == note.AuthorID {
			counselorIDs, err := s.Assignments.ActiveCounselorIDs(ctx, owner)
			if err != nil {
				return nil, err
			}
			for _, id := range counselorIDs {
				addID(id)
			}
		} else {
			addID(owner)
		}
	}

	if !note.IsPrivate {
		redeemable, err := s.Shares.ListRedeemable(ctx, note.SessionID)
		if err != nil {
			return nil, err
		}
		for _, sh := range redeemable {
			switch {
			case sh.SharedWithID != nil:
				addID(*sh.SharedWithID)
			case sh.SharedWithEmail != "":
				email := strings.ToLower(sh.SharedWithEmail)
				if !seenEmails[email] {
					seenEmails[email] = true
					out = append(out, recipient{Email: email})
				}
			}
		}
	}

	if len(ids) > 0 {
		resolved, err := s.Users.GetMany(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, u := range resolved {
			if seenEmails[strings.ToLower(u.Email)] {
				continue
			}
			seenEmails[strings.ToLower(u.Email)] = true
			out = append(out, recipient{ID: u.ID, Email: u.Email})
		}
	}

	return out, nil
}
