package handler

import (
	"net/http"

	"github.com/mcoot/plyr-settlement/internal/api/middleware"
	"github.com/mcoot/plyr-settlement/internal/api/request"
	"github.com/mcoot/plyr-settlement/internal/api/response"
	"github.com/mcoot/plyr-settlement/internal/platform"
)

// GovernanceHandler handles role and configuration endpoints of the router
// and the game rule
type GovernanceHandler struct {
	platform *platform.Platform
}

// NewGovernanceHandler creates a new governance handler
func NewGovernanceHandler(p *platform.Platform) *GovernanceHandler {
	return &GovernanceHandler{platform: p}
}

// GetRouter handles GET /api/v1/router
func (h *GovernanceHandler) GetRouter(w http.ResponseWriter, r *http.Request) {
	state, err := h.platform.RouterState(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.RouterFromModel(state))
}

// ConfigGameRule handles POST /api/v1/router/rules
func (h *GovernanceHandler) ConfigGameRule(w http.ResponseWriter, r *http.Request) {
	caller := middleware.MustGetCaller(r.Context())

	var req request.ConfigRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if err := h.platform.ConfigGameRule(r.Context(), caller, req.Address, req.Enabled); err != nil {
		WriteError(w, err)
		return
	}
	h.GetRouter(w, r)
}

// ConfigRouterOperator handles POST /api/v1/router/operators
func (h *GovernanceHandler) ConfigRouterOperator(w http.ResponseWriter, r *http.Request) {
	caller := middleware.MustGetCaller(r.Context())

	var req request.ConfigRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if err := h.platform.ConfigRouterOperator(r.Context(), caller, req.Address, req.Enabled); err != nil {
		WriteError(w, err)
		return
	}
	h.GetRouter(w, r)
}

// TransferRouterOwnership handles PUT /api/v1/router/owner
func (h *GovernanceHandler) TransferRouterOwnership(w http.ResponseWriter, r *http.Request) {
	caller := middleware.MustGetCaller(r.Context())

	var req request.AddressRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if err := h.platform.TransferRouterOwnership(r.Context(), caller, req.Address); err != nil {
		WriteError(w, err)
		return
	}
	h.GetRouter(w, r)
}

// GetRule handles GET /api/v1/rule
func (h *GovernanceHandler) GetRule(w http.ResponseWriter, r *http.Request) {
	state, err := h.platform.RuleState(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.GameRuleFromModel(state))
}

// ConfigRuleOperator handles POST /api/v1/rule/operators
func (h *GovernanceHandler) ConfigRuleOperator(w http.ResponseWriter, r *http.Request) {
	caller := middleware.MustGetCaller(r.Context())

	var req request.ConfigRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if err := h.platform.ConfigRuleOperator(r.Context(), caller, req.Address, req.Enabled); err != nil {
		WriteError(w, err)
		return
	}
	h.GetRule(w, r)
}

// ConfigPlatformFee handles PUT /api/v1/rule/fee
func (h *GovernanceHandler) ConfigPlatformFee(w http.ResponseWriter, r *http.Request) {
	caller := middleware.MustGetCaller(r.Context())

	var req request.FeeRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if err := h.platform.ConfigPlatformFee(r.Context(), caller, req.Percent); err != nil {
		WriteError(w, err)
		return
	}
	h.GetRule(w, r)
}

// ConfigFeeTo handles PUT /api/v1/rule/fee-to
func (h *GovernanceHandler) ConfigFeeTo(w http.ResponseWriter, r *http.Request) {
	caller := middleware.MustGetCaller(r.Context())

	var req request.AddressRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if err := h.platform.ConfigFeeTo(r.Context(), caller, req.Address); err != nil {
		WriteError(w, err)
		return
	}
	h.GetRule(w, r)
}

// TransferRuleOwnership handles PUT /api/v1/rule/owner
func (h *GovernanceHandler) TransferRuleOwnership(w http.ResponseWriter, r *http.Request) {
	caller := middleware.MustGetCaller(r.Context())

	var req request.AddressRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if err := h.platform.TransferRuleOwnership(r.Context(), caller, req.Address); err != nil {
		WriteError(w, err)
		return
	}
	h.GetRule(w, r)
}
