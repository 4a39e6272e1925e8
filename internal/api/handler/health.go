package handler

import (
	"net/http"

	"github.com/mcoot/plyr-settlement/internal/api/response"
	"github.com/mcoot/plyr-settlement/internal/api/sse"
	"github.com/mcoot/plyr-settlement/internal/platform"
)

// HealthHandler reports liveness. The server is "ok" once it is serving;
// "bootstrapped" says whether settlement calls can succeed yet.
type HealthHandler struct {
	platform *platform.Platform
	stream   *sse.Hub
}

// NewHealthHandler creates a new health handler. stream may be nil.
func NewHealthHandler(p *platform.Platform, stream *sse.Hub) *HealthHandler {
	return &HealthHandler{platform: p, stream: stream}
}

// Get handles GET /api/v1/health
func (h *HealthHandler) Get(w http.ResponseWriter, r *http.Request) {
	resp := response.Health{Status: "ok"}
	if _, err := h.platform.Deployment(); err == nil {
		resp.Bootstrapped = true
	}
	if h.stream != nil {
		resp.StreamClients = h.stream.ClientCount()
	}
	response.JSON(w, http.StatusOK, resp)
}
