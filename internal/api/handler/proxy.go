package handler

import (
	"net/http"

	"github.com/mcoot/plyr-settlement/internal/api/middleware"
	"github.com/mcoot/plyr-settlement/internal/api/request"
	"github.com/mcoot/plyr-settlement/internal/api/response"
	"github.com/mcoot/plyr-settlement/internal/platform"
)

// ProxyHandler handles upgrade slot endpoints
type ProxyHandler struct {
	platform *platform.Platform
}

// NewProxyHandler creates a new proxy handler
func NewProxyHandler(p *platform.Platform) *ProxyHandler {
	return &ProxyHandler{platform: p}
}

// Get handles GET /api/v1/proxies/{address}
func (h *ProxyHandler) Get(w http.ResponseWriter, r *http.Request) {
	addr, err := pathAddress(r, "address")
	if err != nil {
		WriteError(w, err)
		return
	}
	slot, err := h.platform.Implementation(r.Context(), addr)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.SlotFromModel(slot))
}

// Upgrade handles POST /api/v1/proxies/{address}/upgrade
func (h *ProxyHandler) Upgrade(w http.ResponseWriter, r *http.Request) {
	caller := middleware.MustGetCaller(r.Context())
	addr, err := pathAddress(r, "address")
	if err != nil {
		WriteError(w, err)
		return
	}

	var req request.UpgradeRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	slot, err := h.platform.UpgradeAndCall(r.Context(), caller, addr, req.Logic, req.InitData)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.SlotFromModel(slot))
}

// ChangeAdmin handles PUT /api/v1/proxies/{address}/admin
func (h *ProxyHandler) ChangeAdmin(w http.ResponseWriter, r *http.Request) {
	caller := middleware.MustGetCaller(r.Context())
	addr, err := pathAddress(r, "address")
	if err != nil {
		WriteError(w, err)
		return
	}

	var req request.AddressRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	slot, err := h.platform.ChangeAdmin(r.Context(), caller, addr, req.Address)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.SlotFromModel(slot))
}
