// internal/app/features/sessions/shares.go
package sessions

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	uierrors "github.com/dalemusser/counselhub/internal/app/features/errors"
	"github.com/dalemusser/counselhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/securecookie"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// newShareToken mints the raw token embedded in a share link.
func newShareToken() (string, error) {
	raw := securecookie.GenerateRandomKey(32)
	if raw == nil {
		return "", errors.New("random source unavailable")
	}
	return hex.EncodeToString(raw), nil
}

// shareRequest is the POST body for creating a share link.
type shareRequest struct {
	SharedWithEmail  string     `json:"shared_with_email" validate:"omitempty,email"`
	AllowNotesAccess bool       `json:"allow_notes_access"`
	ExpiresAt        *time.Time `json:"expires_at"`
}

// shareResponse returns the share plus the raw token. The token is only
// available here; we store a hash.
type shareResponse struct {
	Share models.SessionShare `json:"share"`
	Token string              `json:"token"`
}

// CreateShare handles POST /sessions/{sessionID}/shares. Owner only.
func (h *Handler) CreateShare(w http.ResponseWriter, r *http.Request) {
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
		uierrors.Forbidden(w, "only the session owner may share it")
		return
	}

	var req shareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		uierrors.BadRequest(w, "invalid JSON body")
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		uierrors.BadRequest(w, "invalid share fields")
		return
	}
	if req.ExpiresAt != nil && req.ExpiresAt.Before(time.Now()) {
		uierrors.BadRequest(w, "expires_at is in the past")
		return
	}

	token, err := newShareToken()
	if err != nil {
		uierrors.Internal(w, h.Log, "generate share token failed", err)
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		uierrors.Internal(w, h.Log, "hash share token failed", err)
		return
	}

	share := models.SessionShare{
		SessionID:        sessionID,
		TokenHash:        hash,
		SharedWithEmail:  strings.ToLower(strings.TrimSpace(req.SharedWithEmail)),
		AllowNotesAccess: req.AllowNotesAccess,
		ExpiresAt:        req.ExpiresAt,
		CreatedByID:      actor.ID,
	}
	share, err = h.Shares.Create(r.Context(), share)
	if err != nil {
		uierrors.Internal(w, h.Log, "create share failed", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(shareResponse{Share: share, Token: token})
}

// ListShares handles GET /sessions/{sessionID}/shares. Owner only.
func (h *Handler) ListShares(w http.ResponseWriter, r *http.Request) {
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
		uierrors.Forbidden(w, "only the session owner may list shares")
		return
	}

	list, err := h.Shares.ListBySession(r.Context(), sessionID)
	if err != nil {
		uierrors.Internal(w, h.Log, "list shares failed", err)
		return
	}
	if list == nil {
		list = []models.SessionShare{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(struct {
		Shares []models.SessionShare `json:"shares"`
	}{Shares: list})
}

// RevokeShare handles DELETE /sessions/{sessionID}/shares/{shareID}. Owner only.
func (h *Handler) RevokeShare(w http.ResponseWriter, r *http.Request) {
	actor, sessionID, ok := h.requestTarget(w, r)
	if !ok {
		return
	}
	shareID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "shareID"))
	if err != nil {
		uierrors.BadRequest(w, "invalid share id")
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
		uierrors.Forbidden(w, "only the session owner may revoke shares")
		return
	}

	removed, err := h.Shares.Revoke(r.Context(), sessionID, shareID)
	if err != nil {
		uierrors.Internal(w, h.Log, "revoke share failed", err)
		return
	}
	if !removed {
		uierrors.NotFound(w, "share not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// claimRequest is the POST body for redeeming a share token.
type claimRequest struct {
	Token string `json:"token" validate:"required"`
}

// ClaimShare handles POST /sessions/{sessionID}/shares/claim. The caller
// presents the raw token from the share link; a matching bearer share is
// bound to their account so later access resolves by identity.
func (h *Handler) ClaimShare(w http.ResponseWriter, r *http.Request) {
	actor, sessionID, ok := h.requestTarget(w, r)
	if !ok {
		return
	}

	var req claimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		uierrors.BadRequest(w, "invalid JSON body")
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		uierrors.BadRequest(w, "token is required")
		return
	}

	candidates, err := h.Shares.ListBySession(r.Context(), sessionID)
	if err != nil {
		uierrors.Internal(w, h.Log, "list shares failed", err)
		return
	}

	now := time.Now().UTC()
	for _, sh := range candidates {
		if !sh.Usable(now) {
			continue
		}
		if bcrypt.CompareHashAndPassword(sh.TokenHash, []byte(req.Token)) != nil {
			continue
		}
		// A share addressed to someone else cannot be claimed by a
		// different signed-in user.
		if sh.SharedWithID != nil && *sh.SharedWithID != actor.ID {
			continue
		}
		if sh.SharedWithEmail != "" && !strings.EqualFold(sh.SharedWithEmail, actor.Email) {
			continue
		}
		if sh.SharedWithID == nil {
			if err := h.Shares.SetRecipient(r.Context(), sh.ID, actor.ID); err != nil {
				uierrors.Internal(w, h.Log, "bind share failed", err)
				return
			}
			sh.SharedWithID = &actor.ID
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(sh)
		return
	}

	uierrors.NotFound(w, "share not found")
}
