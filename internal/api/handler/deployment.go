package handler

import (
	"net/http"

	"github.com/mcoot/plyr-settlement/internal/api/response"
	"github.com/mcoot/plyr-settlement/internal/platform"
)

// DeploymentHandler reports the bootstrapped component addresses
type DeploymentHandler struct {
	platform *platform.Platform
}

// NewDeploymentHandler creates a new deployment handler
func NewDeploymentHandler(p *platform.Platform) *DeploymentHandler {
	return &DeploymentHandler{platform: p}
}

// Get handles GET /api/v1/deployment
func (h *DeploymentHandler) Get(w http.ResponseWriter, r *http.Request) {
	d, err := h.platform.Deployment()
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.DeploymentFromPlatform(d))
}
