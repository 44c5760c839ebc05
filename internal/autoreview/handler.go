package autoreview

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
	AddRule(reviewerID int64, dto RuleDTO) (*Rule, error)
	GetRule(id, actingUserID int64) (*Rule, error)
	ListRules(reviewerID int64) ([]*Rule, error)
	UpdateRule(id, actingUserID int64, dto RuleDTO) (*Rule, error)
	RemoveRule(id, actingUserID int64) error
	RunAutoReview(reviewerID int64) (int, int, error)
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

func (h *Handler) CreateRule(w http.ResponseWriter, r *http.Request) {
	user, ok := identity.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto RuleDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CreateRule: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rule, err := h.Service.AddRule(user.ID, dto)
	if err != nil {
		h.Logger.Error("CreateRule: service error", "error", err, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, rule)
}

func (h *Handler) GetRule(w http.ResponseWriter, r *http.Request) {
	user, ok := identity.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	ruleID, err := parseID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid rule ID")
		return
	}

	rule, err := h.Service.GetRule(ruleID, user.ID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, rule)
}

func (h *Handler) ListRules(w http.ResponseWriter, r *http.Request) {
	user, ok := identity.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	rules, err := h.Service.ListRules(user.ID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, RulesResponse{Rules: rules})
}

func (h *Handler) UpdateRule(w http.ResponseWriter, r *http.Request) {
	user, ok := identity.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	ruleID, err := parseID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid rule ID")
		return
	}

	var dto RuleDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("UpdateRule: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rule, err := h.Service.UpdateRule(ruleID, user.ID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, rule)
}

func (h *Handler) DeleteRule(w http.ResponseWriter, r *http.Request) {
	user, ok := identity.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	ruleID, err := parseID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid rule ID")
		return
	}

	if err := h.Service.RemoveRule(ruleID, user.ID); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"deleted": true})
}

// RunAutoReview triggers a sweep of the caller's pending queue. Sentinel
// eligible counts surface as structured errors so the UI can show distinct
// messages.
func (h *Handler) RunAutoReview(w http.ResponseWriter, r *http.Request) {
	user, ok := identity.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	eligible, resolved, err := h.Service.RunAutoReview(user.ID)
	if err != nil {
		h.Logger.Error("RunAutoReview: service error", "error", err, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	switch eligible {
	case SentinelNotReviewer:
		h.WriteError(w, http.StatusForbidden, "user holds no reviewer role")
		return
	case SentinelNoRules:
		h.WriteError(w, http.StatusUnprocessableEntity, "no auto-review rules configured")
		return
	}

	h.WriteJSON(w, http.StatusOK, RunResultResponse{
		EligibleCount: eligible,
		ResolvedCount: resolved,
	})
}

func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
