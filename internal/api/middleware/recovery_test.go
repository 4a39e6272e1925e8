package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mcoot/plyr-settlement/internal/middleware"
	"github.com/mcoot/plyr-settlement/internal/testutil"
)

func TestRecoveryWritesInternalError(t *testing.T) {
	h := Recovery(testutil.NopLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("ledger invariant broken")
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/rooms/g1/1/pay", nil)
	req.Header.Set(middleware.RequestIDHeader, "abc123")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "INTERNAL_ERROR")
	assert.Equal(t, "abc123", rr.Header().Get(middleware.RequestIDHeader))
}
