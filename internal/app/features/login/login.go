// internal/app/features/login/login.go
package login

import (
	"encoding/json"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/counselhub/internal/app/features/errors"
	"github.com/dalemusser/counselhub/internal/app/store/users"
	"github.com/dalemusser/counselhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Handler owns the sign-in and sign-out endpoints.
type Handler struct {
	Users    *users.Store
	Validate *validator.Validate
	Log      *zap.Logger
}

// NewHandler constructs a login Handler.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		Users:    users.New(db),
		Validate: validator.New(validator.WithRequiredStructEnabled()),
		Log:      logger,
	}
}

// MountRoutes mounts the authentication routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/login", h.SignIn)
	r.Post("/logout", h.SignOut)
}

// signInRequest is the POST body for /login.
type signInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SignIn handles POST /login. Invalid email and wrong password get the
// same response, so the endpoint does not leak which accounts exist.
func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		uierrors.BadRequest(w, "invalid JSON body")
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		uierrors.BadRequest(w, "email and password are required")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	u, err := h.Users.GetByEmail(r.Context(), email)
	if err != nil {
		uierrors.Internal(w, h.Log, "user lookup failed", err)
		return
	}
	if u == nil || len(u.PasswordHash) == 0 ||
		bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(req.Password)) != nil {
		h.Log.Info("sign-in rejected", zap.String("email", email))
		uierrors.JSON(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	su := auth.SessionUser{
		ID:    u.ID.Hex(),
		Name:  u.FullName,
		Email: u.Email,
		Role:  u.Role,
	}
	if u.OrganizationID != nil {
		su.OrganizationID = u.OrganizationID.Hex()
	}
	if err := auth.SignIn(w, r, su); err != nil {
		uierrors.Internal(w, h.Log, "session save failed", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(u)
}

// SignOut handles POST /logout.
func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := auth.SignOut(w, r); err != nil {
		uierrors.Internal(w, h.Log, "session clear failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
