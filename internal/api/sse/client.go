package sse

import (
	"net/http"
	"time"

	"github.com/mcoot/plyr-settlement/internal/model"
)

const (
	// Time between keepalive comments
	pingPeriod = 15 * time.Second

	// Buffer size for outgoing messages
	sendBufferSize = 256
)

// Client is one connected event stream
type Client struct {
	label       string
	types       map[model.EventType]bool
	send        chan []byte
	connectedAt time.Time
}

// NewClient creates a client receiving only the given event types, or every
// event when types is empty
func NewClient(label string, types []model.EventType) *Client {
	c := &Client{
		label:       label,
		send:        make(chan []byte, sendBufferSize),
		connectedAt: time.Now(),
	}
	if len(types) > 0 {
		c.types = make(map[model.EventType]bool, len(types))
		for _, t := range types {
			c.types[t] = true
		}
	}
	return c
}

func (c *Client) wants(t model.EventType) bool {
	return c.types == nil || c.types[t]
}

// ServeSSE streams events to the client until it disconnects or the hub
// closes
func ServeSSE(w http.ResponseWriter, r *http.Request, hub *Hub, client *Client) {
	rc := http.NewResponseController(w)
	// The stream outlives the server's write timeout
	_ = rc.SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	if !hub.Register(client) {
		http.Error(w, "event stream closed", http.StatusServiceUnavailable)
		return
	}
	defer hub.Unregister(client)

	_, _ = w.Write([]byte("event: connected\ndata: {\"status\":\"connected\"}\n\n"))
	if err := rc.Flush(); err != nil {
		return
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-client.send:
			if !ok {
				return
			}
			if _, err := w.Write(msg); err != nil {
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}

		case <-ticker.C:
			if _, err := w.Write([]byte(": keepalive\n\n")); err != nil {
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}

		case <-r.Context().Done():
			return
		}
	}
}
