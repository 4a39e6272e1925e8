package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/plyr-settlement/internal/model"
	"github.com/mcoot/plyr-settlement/internal/services/auth"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest  = "INVALID_REQUEST"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeInternalError   = "INTERNAL_ERROR"
	CodeNotBootstrapped = "NOT_BOOTSTRAPPED"

	// Authorization
	CodeNotOperator    = "NOT_OPERATOR"
	CodeNotOwner       = "NOT_OWNER"
	CodeNotRouter      = "NOT_ROUTER"
	CodeNotProxyAdmin  = "NOT_PROXY_ADMIN"
	CodeNotMinter      = "NOT_MINTER"
	CodeRuleNotAllowed = "RULE_NOT_ALLOWED"

	// State conflicts
	CodeAlreadyExists        = "ALREADY_EXISTS"
	CodeAlreadyConfigured    = "ALREADY_CONFIGURED"
	CodeAlreadyInitialized   = "ALREADY_INITIALIZED"
	CodeNotInitialized       = "NOT_INITIALIZED"
	CodeAssetExists          = "ASSET_EXISTS"
	CodeIdentifierCollision  = "IDENTIFIER_COLLISION"
	CodeLogicKindMismatch    = "LOGIC_KIND_MISMATCH"
	CodeInsufficientBalance  = "INSUFFICIENT_BALANCE"
	CodeAmountOverflow       = "AMOUNT_OVERFLOW"
	CodeNativeBalanceNotZero = "NATIVE_COIN_BALANCE_NOT_ZERO"
	CodeTokenBalanceNotZero  = "TOKEN_BALANCE_NOT_ZERO"
	CodeBalanceNotZero       = "BALANCE_NOT_ZERO"
	CodeGameNotEnded         = "GAME_NOT_ENDED"
	CodeRoomEnded            = "ROOM_ENDED"
	CodeNotJoined            = "NOT_JOINED"

	// Invalid input
	CodeZeroAddress     = "ZERO_ADDRESS"
	CodeInvalidAmount   = "INVALID_AMOUNT"
	CodeInvalidFee      = "INVALID_FEE"
	CodeInvalidUsername = "INVALID_USERNAME"
	CodeInvalidGameID   = "INVALID_GAME_ID"
	CodeInvalidDuration = "INVALID_DURATION"
	CodeInvalidAddress  = "INVALID_ADDRESS"
	CodeInvalidSymbol   = "INVALID_SYMBOL"
	CodeUnknownLogic    = "UNKNOWN_LOGIC"

	// Not found
	CodeUserNotFound      = "USER_NOT_FOUND"
	CodeAccountNotFound   = "ACCOUNT_NOT_FOUND"
	CodeRoomNotFound      = "ROOM_NOT_FOUND"
	CodeComponentNotFound = "COMPONENT_NOT_FOUND"
	CodeSlotNotFound      = "SLOT_NOT_FOUND"
	CodeUnknownAsset      = "UNKNOWN_ASSET"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// mapping pairs a sentinel with its status and code. Order matters: the
// balance-not-zero variants must be tested before their shared parent.
type mapping struct {
	target error
	status int
	code   string
}

var mappings = []mapping{
	{auth.ErrInvalidToken, http.StatusUnauthorized, CodeUnauthorized},
	{model.ErrDeploymentNotFound, http.StatusServiceUnavailable, CodeNotBootstrapped},

	{model.ErrNotOperator, http.StatusForbidden, CodeNotOperator},
	{model.ErrNotOwner, http.StatusForbidden, CodeNotOwner},
	{model.ErrNotRouter, http.StatusForbidden, CodeNotRouter},
	{model.ErrNotProxyAdmin, http.StatusForbidden, CodeNotProxyAdmin},
	{model.ErrNotMinter, http.StatusForbidden, CodeNotMinter},
	{model.ErrRuleNotAllowed, http.StatusForbidden, CodeRuleNotAllowed},

	{model.ErrAlreadyExists, http.StatusConflict, CodeAlreadyExists},
	{model.ErrAlreadyConfigured, http.StatusConflict, CodeAlreadyConfigured},
	{model.ErrAlreadyInitialized, http.StatusConflict, CodeAlreadyInitialized},
	{model.ErrNotInitialized, http.StatusConflict, CodeNotInitialized},
	{model.ErrAssetExists, http.StatusConflict, CodeAssetExists},
	{model.ErrIdentifierCollision, http.StatusConflict, CodeIdentifierCollision},
	{model.ErrLogicKindMismatch, http.StatusConflict, CodeLogicKindMismatch},
	{model.ErrInsufficientBalance, http.StatusConflict, CodeInsufficientBalance},
	{model.ErrAmountOverflow, http.StatusConflict, CodeAmountOverflow},
	{model.ErrNativeCoinBalanceNotZero, http.StatusConflict, CodeNativeBalanceNotZero},
	{model.ErrTokenBalanceNotZero, http.StatusConflict, CodeTokenBalanceNotZero},
	{model.ErrBalanceNotZero, http.StatusConflict, CodeBalanceNotZero},
	{model.ErrGameNotEnded, http.StatusConflict, CodeGameNotEnded},
	{model.ErrRoomEnded, http.StatusConflict, CodeRoomEnded},
	{model.ErrNotJoined, http.StatusConflict, CodeNotJoined},

	{model.ErrZeroAddress, http.StatusBadRequest, CodeZeroAddress},
	{model.ErrInvalidAmount, http.StatusBadRequest, CodeInvalidAmount},
	{model.ErrInvalidFee, http.StatusBadRequest, CodeInvalidFee},
	{model.ErrInvalidUsername, http.StatusBadRequest, CodeInvalidUsername},
	{model.ErrInvalidGameID, http.StatusBadRequest, CodeInvalidGameID},
	{model.ErrInvalidDuration, http.StatusBadRequest, CodeInvalidDuration},
	{model.ErrInvalidAddress, http.StatusBadRequest, CodeInvalidAddress},
	{model.ErrInvalidSymbol, http.StatusBadRequest, CodeInvalidSymbol},
	{model.ErrUnknownLogic, http.StatusBadRequest, CodeUnknownLogic},

	{model.ErrUserNotFound, http.StatusNotFound, CodeUserNotFound},
	{model.ErrAccountNotFound, http.StatusNotFound, CodeAccountNotFound},
	{model.ErrRoomNotFound, http.StatusNotFound, CodeRoomNotFound},
	{model.ErrRouterNotFound, http.StatusNotFound, CodeComponentNotFound},
	{model.ErrDirectoryNotFound, http.StatusNotFound, CodeComponentNotFound},
	{model.ErrGameRuleNotFound, http.StatusNotFound, CodeComponentNotFound},
	{model.ErrSlotNotFound, http.StatusNotFound, CodeSlotNotFound},
	{model.ErrUnknownAsset, http.StatusNotFound, CodeUnknownAsset},
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// StatusOf returns the HTTP status err maps to
func StatusOf(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	for _, m := range mappings {
		if errors.Is(err, m.target) {
			return &httpError{m.status, APIError{m.code, err.Error()}}
		}
	}
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
