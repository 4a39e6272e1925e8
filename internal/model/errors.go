package model

import (
	"errors"
	"fmt"
)

// Errors returned by the settlement components. Every failure rejects the
// whole call; none of these are recovered locally.
var (
	// Authorization
	ErrNotOperator   = errors.New("caller is not the operator")
	ErrNotOwner      = errors.New("caller is not the owner")
	ErrNotRouter     = errors.New("caller is not the router")
	ErrNotProxyAdmin = errors.New("caller is not the proxy admin")
	ErrNotMinter     = errors.New("caller is not the asset minter")

	// State conflict
	ErrAlreadyExists      = errors.New("username already exists")
	ErrAlreadyConfigured  = errors.New("game rule is already configured")
	ErrAlreadyInitialized = errors.New("already initialized")
	ErrNotInitialized     = errors.New("not initialized")

	// Preconditions
	ErrZeroAddress         = errors.New("zero address")
	ErrRuleNotAllowed      = errors.New("game rule not allowed")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrBalanceNotZero      = errors.New("balance not zero")
	ErrGameNotEnded        = errors.New("game not ended")
	ErrRoomEnded           = errors.New("game room has ended")
	ErrNotJoined           = errors.New("player has not joined the room")
	ErrAmountOverflow      = errors.New("amount overflow")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrInvalidFee          = errors.New("platform fee must be between 0 and 100")
	ErrInvalidUsername     = errors.New("invalid username")
	ErrInvalidGameID       = errors.New("invalid game id")
	ErrInvalidDuration     = errors.New("duration must be positive")
	ErrInvalidAddress      = errors.New("invalid address")
	ErrUnknownLogic        = errors.New("unknown logic implementation")
	ErrLogicKindMismatch   = errors.New("logic kind does not match slot")
	ErrUnknownAsset        = errors.New("unknown asset")
	ErrAssetExists         = errors.New("asset already registered")
	ErrInvalidSymbol       = errors.New("invalid asset symbol")

	// Not found
	ErrUserNotFound       = errors.New("user not found")
	ErrAccountNotFound    = errors.New("account not found")
	ErrRoomNotFound       = errors.New("game room not found")
	ErrRouterNotFound     = errors.New("router not found")
	ErrDirectoryNotFound  = errors.New("directory not found")
	ErrGameRuleNotFound   = errors.New("game rule not found")
	ErrSlotNotFound       = errors.New("proxy slot not found")
	ErrDeploymentNotFound = errors.New("deployment not found")

	// Consistency
	ErrIdentifierCollision = errors.New("derived identifier collision")
)

// Zero-balance failures on voluntary end. Both match ErrBalanceNotZero.
var (
	ErrNativeCoinBalanceNotZero = fmt.Errorf("native coin %w", ErrBalanceNotZero)
	ErrTokenBalanceNotZero      = fmt.Errorf("token %w", ErrBalanceNotZero)
)
