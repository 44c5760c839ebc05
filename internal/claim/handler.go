package claim

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/frahmantamala/claim-management/internal/identity"
	"github.com/frahmantamala/claim-management/internal/transport"
	"github.com/frahmantamala/claim-management/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	CreateClaim(submitterID int64, dto CreateClaimDTO) (*Claim, error)
	Review(claimID, actingUserID int64, accept bool, comment string) (bool, error)
	GetClaimByID(id, userID int64, userPermissions []string) (*Claim, error)
	GetUserClaims(userID int64, limit, offset int) ([]*Claim, error)
	GetAllClaims(limit, offset int, userPermissions []string) ([]*Claim, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

func (h *Handler) CreateClaim(w http.ResponseWriter, r *http.Request) {
	user, ok := identity.UserFromContext(r.Context())
	if !ok || user == nil {
		h.Logger.Error("CreateClaim: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CreateClaimDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CreateClaim: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.Service.CreateClaim(user.ID, dto)
	if err != nil {
		h.Logger.Error("CreateClaim: service error", "error", err, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("CreateClaim: claim created successfully",
		"claim_id", c.ID,
		"user_id", user.ID,
		"module_code", c.ModuleCode)

	h.WriteJSON(w, http.StatusCreated, NewClaimResponse(c))
}

func (h *Handler) GetClaim(w http.ResponseWriter, r *http.Request) {
	user, ok := identity.UserFromContext(r.Context())
	if !ok || user == nil {
		h.Logger.Error("GetClaim: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	claimID, err := parseID(r)
	if err != nil {
		h.Logger.Error("GetClaim: invalid claim ID", "id", chi.URLParam(r, "id"))
		h.WriteError(w, http.StatusBadRequest, "invalid claim ID")
		return
	}

	c, err := h.Service.GetClaimByID(claimID, user.ID, user.Permissions)
	if err != nil {
		h.Logger.Error("GetClaim: service error", "error", err, "claim_id", claimID, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, NewClaimResponse(c))
}

func (h *Handler) GetAllClaims(w http.ResponseWriter, r *http.Request) {
	user, ok := identity.UserFromContext(r.Context())
	if !ok || user == nil {
		h.Logger.Error("GetAllClaims: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit, offset := paginationParams(r)

	var (
		claims []*Claim
		err    error
	)

	// Reviewers browse every claim; submitters only their own.
	if r.URL.Query().Get("mine") == "true" {
		claims, err = h.Service.GetUserClaims(user.ID, limit, offset)
	} else {
		claims, err = h.Service.GetAllClaims(limit, offset, user.Permissions)
		if err != nil {
			// fall back to the caller's own claims when they lack the
			// reviewer view
			claims, err = h.Service.GetUserClaims(user.ID, limit, offset)
		}
	}

	if err != nil {
		h.Logger.Error("GetAllClaims: service error", "error", err, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"claims": NewClaimResponseSlice(claims),
		"limit":  limit,
		"offset": offset,
	})
}

func (h *Handler) ReviewClaim(w http.ResponseWriter, r *http.Request) {
	user, ok := identity.UserFromContext(r.Context())
	if !ok || user == nil {
		h.Logger.Error("ReviewClaim: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	claimID, err := parseID(r)
	if err != nil {
		h.Logger.Error("ReviewClaim: invalid claim ID", "id", chi.URLParam(r, "id"))
		h.WriteError(w, http.StatusBadRequest, "invalid claim ID")
		return
	}

	var dto ReviewClaimDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("ReviewClaim: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	applied, err := h.Service.Review(claimID, user.ID, *dto.Accept, dto.Comment)
	if err != nil {
		h.Logger.Error("ReviewClaim: service error", "error", err, "claim_id", claimID, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	if !applied {
		h.Logger.Warn("ReviewClaim: review not applied", "claim_id", claimID, "user_id", user.ID)
		h.WriteError(w, http.StatusForbidden, "review could not be applied")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"applied": true})
}

func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func paginationParams(r *http.Request) (limit, offset int) {
	limit = 20
	offset = 0

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}

	return limit, offset
}
