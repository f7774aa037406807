// internal/app/policy/notepolicy/errors.go
package notepolicy

import "errors"

// Not-found conditions. Always surfaced to the caller, never retried.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrNoteNotFound    = errors.New("note not found")
)

// Stable user-facing denial reasons. UI callers branch on these to render
// specific guidance (a "subscribe" prompt reads differently from an "ask
// your counselor" prompt), so the strings must not drift.
const (
	ReasonSubscriptionRequired = "subscription required"
	ReasonCoveragePrivate      = "Coverage counselors cannot create private notes"
	ReasonNotesAccessRequired  = "subscribed users or shared access with note permissions required"
	ReasonNotNoteAuthor        = "only the note author may modify this note"
	ReasonPrivateRestricted    = "only assigned counselors may make notes private"
)

// DeniedError is a permission rule violation. The Reason is one of the
// Reason* constants above.
type DeniedError struct {
	Reason string
}

func (e *DeniedError) Error() string {
	return "permission denied: " + e.Reason
}

// Denied constructs a DeniedError with the given reason.
func Denied(reason string) error {
	return &DeniedError{Reason: reason}
}

// IsDenied reports whether err is a permission denial, and if so returns
// its reason.
func IsDenied(err error) (string, bool) {
	var de *DeniedError
	if errors.As(err, &de) {
		return de.Reason, true
	}
	return "", false
}
