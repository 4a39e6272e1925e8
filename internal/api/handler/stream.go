package handler

import (
	"net/http"
	"strings"

	"github.com/mcoot/plyr-settlement/internal/api/sse"
	"github.com/mcoot/plyr-settlement/internal/model"
)

// StreamHandler serves the live event stream
type StreamHandler struct {
	hub *sse.Hub
}

// NewStreamHandler creates a new stream handler
func NewStreamHandler(hub *sse.Hub) *StreamHandler {
	return &StreamHandler{hub: hub}
}

// Stream handles GET /api/v1/events/stream?type=T1,T2
func (h *StreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	var types []model.EventType
	if raw := r.URL.Query().Get("type"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				types = append(types, model.EventType(t))
			}
		}
	}

	sse.ServeSSE(w, r, h.hub, sse.NewClient(r.RemoteAddr, types))
}
