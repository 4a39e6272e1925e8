package handler

import (
	"net/http"
	"strconv"

	"github.com/mcoot/plyr-settlement/internal/api/response"
	"github.com/mcoot/plyr-settlement/internal/events"
	"github.com/mcoot/plyr-settlement/internal/model"
)

const defaultEventLimit = 100

// EventHandler serves the recent committed events
type EventHandler struct {
	recorder *events.Recorder
}

// NewEventHandler creates a new event handler
func NewEventHandler(recorder *events.Recorder) *EventHandler {
	return &EventHandler{recorder: recorder}
}

// List handles GET /api/v1/events?limit=N&type=T
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := defaultEventLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			WriteError(w, invalid("invalid limit %q", raw))
			return
		}
		limit = n
	}

	var evts []model.Event
	if t := r.URL.Query().Get("type"); t != "" {
		evts = h.recorder.OfType(model.EventType(t))
		if len(evts) > limit {
			evts = evts[len(evts)-limit:]
		}
	} else {
		evts = h.recorder.Recent(limit)
	}
	response.List(w, evts, response.EventFromModel)
}
