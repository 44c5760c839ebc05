package module

import (
	"net/http"

	"github.com/frahmantamala/claim-management/internal/transport"
)

type ServiceAPI interface {
	GetAllModules() ([]ModuleResponse, error)
	GetModuleByCode(code string) (*Module, error)
	ModuleExists(code string) (bool, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

func (h *Handler) GetModules(w http.ResponseWriter, r *http.Request) {
	modules, err := h.Service.GetAllModules()
	if err != nil {
		h.Logger.Error("GetModules: failed to get modules", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to get modules")
		return
	}

	h.WriteJSON(w, http.StatusOK, ModulesResponse{
		Modules: modules,
	})
}
