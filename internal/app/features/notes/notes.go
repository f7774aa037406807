// internal/app/features/notes/notes.go
package notes

import (
	"encoding/json"
	"net/http"

	uierrors "github.com/dalemusser/counselhub/internal/app/features/errors"
	"github.com/dalemusser/counselhub/internal/app/policy/notepolicy"
	"github.com/dalemusser/counselhub/internal/app/system/authz"
	"github.com/dalemusser/counselhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// createRequest is the POST body for creating a note.
type createRequest struct {
	Content   string `json:"content" validate:"required,max=20000"`
	IsPrivate bool   `json:"is_private"`
}

// updateRequest is the PATCH body for editing a note. Absent fields are
// left unchanged.
type updateRequest struct {
	Content   *string `json:"content,omitempty" validate:"omitempty,max=20000"`
	IsPrivate *bool   `json:"is_private,omitempty"`
}

// Create handles POST /sessions/{sessionID}/notes.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(r)
	if !ok {
		uierrors.JSON(w, http.StatusUnauthorized, "sign in required")
		return
	}
	sessionID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "sessionID"))
	if err != nil {
		uierrors.BadRequest(w, "invalid session id")
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		uierrors.BadRequest(w, "invalid JSON body")
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		uierrors.BadRequest(w, "content is required")
		return
	}

	note, err := h.Service.CreateNote(r.Context(), actor, authz.UserOrgID(r), CreateNoteInput{
		SessionID: sessionID,
		Content:   req.Content,
		IsPrivate: req.IsPrivate,
	})
	if err != nil {
		h.renderError(w, r, "create note failed", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(note)
}

// List handles GET /sessions/{sessionID}/notes.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(r)
	if !ok {
		uierrors.JSON(w, http.StatusUnauthorized, "sign in required")
		return
	}
	sessionID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "sessionID"))
	if err != nil {
		uierrors.BadRequest(w, "invalid session id")
		return
	}

	notes, err := h.Service.ListNotes(r.Context(), actor, sessionID, authz.UserOrgID(r))
	if err != nil {
		h.renderError(w, r, "list notes failed", err)
		return
	}

	if notes == nil {
		notes = []models.SessionNote{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(struct {
		Notes []models.SessionNote `json:"notes"`
	}{Notes: notes})
}

// Update handles PATCH /notes/{noteID}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(r)
	if !ok {
		uierrors.JSON(w, http.StatusUnauthorized, "sign in required")
		return
	}
	noteID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "noteID"))
	if err != nil {
		uierrors.BadRequest(w, "invalid note id")
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		uierrors.BadRequest(w, "invalid JSON body")
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		uierrors.BadRequest(w, "invalid note fields")
		return
	}
	if req.Content == nil && req.IsPrivate == nil {
		uierrors.BadRequest(w, "nothing to update")
		return
	}

	note, err := h.Service.UpdateNote(r.Context(), actor, authz.UserOrgID(r), noteID, UpdateNoteInput{
		Content:   req.Content,
		IsPrivate: req.IsPrivate,
	})
	if err != nil {
		h.renderError(w, r, "update note failed", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(note)
}

// Delete handles DELETE /notes/{noteID}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(r)
	if !ok {
		uierrors.JSON(w, http.StatusUnauthorized, "sign in required")
		return
	}
	noteID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "noteID"))
	if err != nil {
		uierrors.BadRequest(w, "invalid note id")
		return
	}

	if err := h.Service.DeleteNote(r.Context(), actor, noteID); err != nil {
		h.renderError(w, r, "delete note failed", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// renderError maps policy errors to 403/404 and everything else to 500.
func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	if uierrors.FromPolicy(w, err) {
		h.Log.Info(msg, zap.String("path", r.URL.Path), zap.Error(err))
		return
	}
	uierrors.Internal(w, h.Log, msg, err)
}

// requestActor pulls the signed-in identity out of the request context.
func requestActor(r *http.Request) (notepolicy.Actor, bool) {
	id, email, ok := authz.ActorCtx(r)
	if !ok {
		return notepolicy.Actor{}, false
	}
	return notepolicy.Actor{ID: id, Email: email}, true
}
