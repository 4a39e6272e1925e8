package handler

import (
	"fmt"
	"net/http"

	"github.com/mcoot/plyr-settlement/internal/api/apierr"
)

// WriteError maps err onto its API error code and status
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

// invalid builds an INVALID_REQUEST error for malformed input
func invalid(format string, args ...any) error {
	return apierr.NewInvalidRequestError(fmt.Sprintf(format, args...))
}
