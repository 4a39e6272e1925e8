package cli

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/plyr-settlement/internal/api/apierr"
	"github.com/mcoot/plyr-settlement/internal/dependencies/mocks"
	"github.com/mcoot/plyr-settlement/internal/middleware"
	"github.com/mcoot/plyr-settlement/internal/testutil"
)

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *mocks.MockRandom) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	rnd := mocks.NewMockRandom()
	c := NewClient(srv.URL+"/", "tok-123", testutil.Logger(t))
	c.random = rnd
	return c, rnd
}

func TestClientSendsHeadersAndDecodes(t *testing.T) {
	c, rnd := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/rule/fee", r.URL.Path)
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		assert.Equal(t, userAgent, r.Header.Get("User-Agent"))
		assert.Equal(t, "req-1", r.Header.Get(middleware.RequestIDHeader))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]uint64
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, uint64(5), body["percent"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"platform_fee":5}`))
	})
	rnd.QueueString("req-1")

	var result struct {
		PlatformFee uint64 `json:"platform_fee"`
	}
	require.NoError(t, c.Put("/api/v1/rule/fee", map[string]uint64{"percent": 5}, &result))
	assert.Equal(t, uint64(5), result.PlatformFee)
	assert.Zero(t, rnd.Pending())
}

func TestClientReturnsRemoteError(t *testing.T) {
	c, rnd := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(w).Encode(apierr.ErrorResponse{Error: apierr.APIError{
			Code:    apierr.CodeNotOperator,
			Message: "caller is not an operator",
		}})
	})
	rnd.QueueString("req-2")

	err := c.Post("/api/v1/rooms", map[string]string{"game_id": "g1"}, nil)
	require.Error(t, err)

	var re *RemoteError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, http.StatusForbidden, re.Status)
	assert.Equal(t, "req-2", re.RequestID)
	assert.Equal(t, "caller is not an operator (NOT_OPERATOR)", err.Error())
	assert.True(t, IsCode(err, apierr.CodeNotOperator))
	assert.False(t, IsCode(err, apierr.CodeNotOwner))
}

func TestClientNonJSONError(t *testing.T) {
	c, rnd := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream gone", http.StatusBadGateway)
	})
	rnd.QueueString("req-3")

	err := c.Get("/api/v1/health", nil)
	require.Error(t, err)
	assert.Equal(t, "HTTP 502: upstream gone", err.Error())
	assert.False(t, IsCode(err, apierr.CodeInternalError))
}
