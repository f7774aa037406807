// Package notify delivers note-creation notifications as decoupled
// background tasks.
//
// The creating request hands an Event to a Dispatcher and moves on; delivery
// happens on a worker, and delivery failures are logged there, never
// surfaced to the request. Guarantees are deliberately weak: at most one
// best-effort attempt per recipient per event, no ordering, no retry in the
// in-process backend (the asynq backend retries per its own policy, bounded
// low).
package notify

import (
	"context"

	"github.com/dalemusser/counselhub/internal/app/system/mailer"
	"go.uber.org/zap"
)

// Event is one notification fan-out target for a newly created note.
// Payload fields are plain strings so the event serializes cleanly for
// queue backends without dragging domain types along.
type Event struct {
	EventID        string `json:"event_id"`
	RecipientID    string `json:"recipient_id"`
	RecipientEmail string `json:"recipient_email"`
	AuthorName     string `json:"author_name"`
	SessionID      string `json:"session_id"`
	IsPrivate      bool   `json:"is_private"`
}

// Dispatcher hands events off for background delivery. Dispatch must not
// block on delivery; an error return means the handoff itself failed, and
// callers only log it.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev Event) error
}

// Handler processes one event on the worker side.
type Handler func(ctx context.Context, ev Event) error

// EmailHandler returns a Handler that renders and sends the note email for
// an event. Recipients without an email address are skipped silently.
func EmailHandler(sender mailer.Sender, baseURL, siteName string, log *zap.Logger) Handler {
	return func(ctx context.Context, ev Event) error {
		if ev.RecipientEmail == "" {
			return nil
		}
		email := mailer.BuildNoteEmail(mailer.NoteEmailData{
			SiteName:    siteName,
			AuthorName:  ev.AuthorName,
			SessionLink: baseURL + "/sessions/" + ev.SessionID,
			IsPrivate:   ev.IsPrivate,
		})
		email.To = ev.RecipientEmail
		if err := sender.Send(email); err != nil {
			log.Warn("note notification delivery failed",
				zap.String("event_id", ev.EventID),
				zap.String("recipient_id", ev.RecipientID),
				zap.Error(err))
			return err
		}
		return nil
	}
}
