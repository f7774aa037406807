// internal/app/features/sessions/sessions.go
package sessions

import (
	"encoding/json"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/counselhub/internal/app/features/errors"
	"github.com/dalemusser/counselhub/internal/app/policy/notepolicy"
	"github.com/dalemusser/counselhub/internal/app/system/authz"
	"github.com/dalemusser/counselhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// createRequest is the POST body for starting a session.
type createRequest struct {
	Title string `json:"title" validate:"max=200"`
}

// Create handles POST /sessions. The signed-in user becomes the owner.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := authz.ActorCtx(r)
	if !ok {
		uierrors.JSON(w, http.StatusUnauthorized, "sign in required")
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		uierrors.BadRequest(w, "invalid JSON body")
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		uierrors.BadRequest(w, "title too long")
		return
	}

	sess, err := h.Sessions.Create(r.Context(), models.CounselSession{
		MemberID: &userID,
		Title:    strings.TrimSpace(req.Title),
		Status:   models.SessionOpen,
	})
	if err != nil {
		uierrors.Internal(w, h.Log, "create session failed", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(sess)
}

// List handles GET /sessions and returns the caller's own sessions.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := authz.ActorCtx(r)
	if !ok {
		uierrors.JSON(w, http.StatusUnauthorized, "sign in required")
		return
	}

	list, err := h.Sessions.ListByMember(r.Context(), userID)
	if err != nil {
		uierrors.Internal(w, h.Log, "list sessions failed", err)
		return
	}
	if list == nil {
		list = []models.CounselSession{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(struct {
		Sessions []models.CounselSession `json:"sessions"`
	}{Sessions: list})
}

// Show handles GET /sessions/{sessionID}. Access follows the coarse session
// gate: owner, share recipient, or counselor. A session the caller may not
// see is indistinguishable from one that does not exist.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	actor, sessionID, ok := h.requestTarget(w, r)
	if !ok {
		return
	}

	allowed, err := notepolicy.CanAccessSession(r.Context(), h.DB, actor, sessionID, authz.UserOrgID(r))
	if err != nil {
		uierrors.Internal(w, h.Log, "session access check failed", err)
		return
	}
	if !allowed {
		uierrors.NotFound(w, "session not found")
		return
	}

	sess, err := h.Sessions.GetByID(r.Context(), sessionID)
	if err != nil {
		uierrors.Internal(w, h.Log, "load session failed", err)
		return
	}
	if sess == nil {
		uierrors.NotFound(w, "session not found")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(sess)
}

// Close handles POST /sessions/{sessionID}/close. Owner only.
func (h *Handler) Close(w http.ResponseWriter, r *http.Request) {
	actor, sessionID, ok := h.requestTarget(w, r)
	if !ok {
		return
	}

	sess, err := h.Sessions.GetByID(r.Context(), sessionID)
	if err != nil {
		uierrors.Internal(w, h.Log, "load session failed", err)
		return
	}
	if sess == nil {
		uierrors.NotFound(w, "session not found")
		return
	}
	if sess.MemberID == nil || *sess.MemberID != actor.ID {
		uierrors.Forbidden(w, "only the session owner may close it")
		return
	}

	if err := h.Sessions.SetStatus(r.Context(), sessionID, models.SessionClosed); err != nil {
		uierrors.Internal(w, h.Log, "close session failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// exportResponse bundles a session with the notes the caller may see.
type exportResponse struct {
	Session *models.CounselSession `json:"session"`
	Notes   []models.SessionNote   `json:"notes"`
}

// Export handles GET /sessions/{sessionID}/export. Gated like note listing;
// the note set is filtered with the same per-note visibility rules.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	actor, sessionID, ok := h.requestTarget(w, r)
	if !ok {
		return
	}

	visible, err := h.Notes.ListNotes(r.Context(), actor, sessionID, authz.UserOrgID(r))
	if err != nil {
		h.renderError(w, r, "export session failed", err)
		return
	}
	sess, err := h.Sessions.GetByID(r.Context(), sessionID)
	if err != nil {
		uierrors.Internal(w, h.Log, "load session failed", err)
		return
	}
	if sess == nil {
		uierrors.NotFound(w, "session not found")
		return
	}
	if visible == nil {
		visible = []models.SessionNote{}
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="session-`+sessionID.Hex()+`.json"`)
	_ = json.NewEncoder(w).Encode(exportResponse{Session: sess, Notes: visible})
}

// renderError maps policy errors to 403/404 and everything else to 500.
func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	if uierrors.FromPolicy(w, err) {
		h.Log.Info(msg, zap.String("path", r.URL.Path), zap.Error(err))
		return
	}
	uierrors.Internal(w, h.Log, msg, err)
}

// requestTarget extracts the actor and the {sessionID} path parameter,
// writing the error response itself when either is missing.
func (h *Handler) requestTarget(w http.ResponseWriter, r *http.Request) (notepolicy.Actor, primitive.ObjectID, bool) {
	userID, email, ok := authz.ActorCtx(r)
	if !ok {
		uierrors.JSON(w, http.StatusUnauthorized, "sign in required")
		return notepolicy.Actor{}, primitive.NilObjectID, false
	}
	sessionID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "sessionID"))
	if err != nil {
		uierrors.BadRequest(w, "invalid session id")
		return notepolicy.Actor{}, primitive.NilObjectID, false
	}
	return notepolicy.Actor{ID: userID, Email: email}, sessionID, true
}
