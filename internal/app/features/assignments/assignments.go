// internal/app/features/assignments/assignments.go
package assignments

import (
	"encoding/json"
	"net/http"
	"time"

	uierrors "github.com/dalemusser/counselhub/internal/app/features/errors"
	"github.com/dalemusser/counselhub/internal/app/system/authz"
	"github.com/dalemusser/counselhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// assignRequest is the POST body for assigning a counselor to a member.
type assignRequest struct {
	CounselorID    string `json:"counselor_id" validate:"required"`
	MemberID       string `json:"member_id" validate:"required"`
	OrganizationID string `json:"organization_id" validate:"required"`
}

// Assign handles POST /admin/assignments. Creating a new assignment ends
// any existing active assignment for that member in that organization.
func (h *Handler) Assign(w http.ResponseWriter, r *http.Request) {
	_, adminName, adminID, ok := authz.UserCtx(r)
	if !ok {
		uierrors.JSON(w, http.StatusUnauthorized, "sign in required")
		return
	}

	var req assignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		uierrors.BadRequest(w, "invalid JSON body")
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		uierrors.BadRequest(w, "counselor_id, member_id and organization_id are required")
		return
	}

	counselorID, err := primitive.ObjectIDFromHex(req.CounselorID)
	if err != nil {
		uierrors.BadRequest(w, "invalid counselor id")
		return
	}
	memberID, err := primitive.ObjectIDFromHex(req.MemberID)
	if err != nil {
		uierrors.BadRequest(w, "invalid member id")
		return
	}
	orgID, err := primitive.ObjectIDFromHex(req.OrganizationID)
	if err != nil {
		uierrors.BadRequest(w, "invalid organization id")
		return
	}

	counselor, err := h.Users.GetByID(r.Context(), counselorID)
	if err != nil {
		uierrors.Internal(w, h.Log, "load counselor failed", err)
		return
	}
	if counselor == nil || counselor.Role != models.RoleCounselor {
		uierrors.BadRequest(w, "counselor_id does not name a counselor")
		return
	}

	a, err := h.Assignments.Create(r.Context(), models.CounselorAssignment{
		CounselorID:    counselorID,
		MemberID:       memberID,
		OrganizationID: orgID,
		CreatedByID:    adminID,
		CreatedByName:  adminName,
	})
	if err != nil {
		uierrors.Internal(w, h.Log, "create assignment failed", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(a)
}

// End handles POST /admin/assignments/{assignmentID}/end.
func (h *Handler) End(w http.ResponseWriter, r *http.Request) {
	assignmentID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "assignmentID"))
	if err != nil {
		uierrors.BadRequest(w, "invalid assignment id")
		return
	}

	if err := h.Assignments.End(r.Context(), assignmentID); err != nil {
		uierrors.Internal(w, h.Log, "end assignment failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListByCounselor handles GET /admin/assignments?counselor_id=…
func (h *Handler) ListByCounselor(w http.ResponseWriter, r *http.Request) {
	counselorID, err := primitive.ObjectIDFromHex(r.URL.Query().Get("counselor_id"))
	if err != nil {
		uierrors.BadRequest(w, "counselor_id query parameter is required")
		return
	}

	list, err := h.Assignments.ListByCounselor(r.Context(), counselorID)
	if err != nil {
		uierrors.Internal(w, h.Log, "list assignments failed", err)
		return
	}
	if list == nil {
		list = []models.CounselorAssignment{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(struct {
		Assignments []models.CounselorAssignment `json:"assignments"`
	}{Assignments: list})
}

// coverageRequest is the POST body for granting coverage.
type coverageRequest struct {
	CounselorID string     `json:"counselor_id" validate:"required"`
	MemberID    string     `json:"member_id" validate:"required"`
	ExpiresAt   *time.Time `json:"expires_at"`
}

// GrantCoverage handles POST /admin/coverage. Coverage is member-scoped
// and time-bounded; it never displaces the assigned counselor.
func (h *Handler) GrantCoverage(w http.ResponseWriter, r *http.Request) {
	_, _, adminID, ok := authz.UserCtx(r)
	if !ok {
		uierrors.JSON(w, http.StatusUnauthorized, "sign in required")
		return
	}

	var req coverageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		uierrors.BadRequest(w, "invalid JSON body")
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		uierrors.BadRequest(w, "counselor_id and member_id are required")
		return
	}

	counselorID, err := primitive.ObjectIDFromHex(req.CounselorID)
	if err != nil {
		uierrors.BadRequest(w, "invalid counselor id")
		return
	}
	memberID, err := primitive.ObjectIDFromHex(req.MemberID)
	if err != nil {
		uierrors.BadRequest(w, "invalid member id")
		return
	}
	if req.ExpiresAt != nil && req.ExpiresAt.Before(time.Now()) {
		uierrors.BadRequest(w, "expires_at is in the past")
		return
	}

	g, err := h.Coverage.Grant(r.Context(), models.CoverageGrant{
		CounselorID: counselorID,
		MemberID:    memberID,
		GrantedByID: adminID,
		ExpiresAt:   req.ExpiresAt,
	})
	if err != nil {
		uierrors.Internal(w, h.Log, "grant coverage failed", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(g)
}

// RevokeCoverage handles POST /admin/coverage/{grantID}/revoke.
func (h *Handler) RevokeCoverage(w http.ResponseWriter, r *http.Request) {
	grantID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "grantID"))
	if err != nil {
		uierrors.BadRequest(w, "invalid grant id")
		return
	}

	if err := h.Coverage.Revoke(r.Context(), grantID); err != nil {
		uierrors.Internal(w, h.Log, "revoke coverage failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// entitlementRequest is the PUT body for setting a user's history access.
type entitlementRequest struct {
	HasHistoryAccess bool   `json:"has_history_access"`
	Plan             string `json:"plan" validate:"max=100"`
}

// SetEntitlement handles PUT /admin/users/{userID}/entitlement. The billing
// system is external; this endpoint records its outcome.
func (h *Handler) SetEntitlement(w http.ResponseWriter, r *http.Request) {
	userID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "userID"))
	if err != nil {
		uierrors.BadRequest(w, "invalid user id")
		return
	}

	var req entitlementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		uierrors.BadRequest(w, "invalid JSON body")
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		uierrors.BadRequest(w, "invalid entitlement fields")
		return
	}

	if err := h.Entitlements.Set(r.Context(), userID, req.HasHistoryAccess, req.Plan); err != nil {
		uierrors.Internal(w, h.Log, "set entitlement failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
