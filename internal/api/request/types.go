package request

import (
	"encoding/json"

	"github.com/mcoot/plyr-settlement/internal/model"
)

// CreateUserRequest is the request body for POST /users. Mirror binds an
// existing mirror instead of deriving one.
type CreateUserRequest struct {
	Username string         `json:"username"`
	Owner    model.Address  `json:"owner"`
	Mirror   *model.Address `json:"mirror,omitempty"`
	Tier     uint8          `json:"tier"`
}

// ConfigRequest toggles a whitelist or operator entry
type ConfigRequest struct {
	Address model.Address `json:"address"`
	Enabled bool          `json:"enabled"`
}

// AddressRequest carries a single address (ownership, fee recipient, admin)
type AddressRequest struct {
	Address model.Address `json:"address"`
}

// CreateRoomRequest is the request body for POST /rooms
type CreateRoomRequest struct {
	GameID          string `json:"game_id"`
	DurationSeconds uint64 `json:"duration_seconds"`
}

// UsernamesRequest is the request body for join and leave
type UsernamesRequest struct {
	Usernames []string `json:"usernames"`
}

// SettleRequest is the request body for pay and earn. A zero asset means the
// native currency.
type SettleRequest struct {
	Username string        `json:"username"`
	Asset    model.Address `json:"asset"`
	Amount   model.Amount  `json:"amount"`
}

// CloseRequest is the request body for POST /rooms/{game}/{room}/close
type CloseRequest struct {
	Recipient model.Address `json:"recipient"`
}

// FeeRequest is the request body for PUT /rule/fee
type FeeRequest struct {
	Percent uint64 `json:"percent"`
}

// RegisterAssetRequest is the request body for POST /assets
type RegisterAssetRequest struct {
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
}

// AmountRequest is the request body for mint and transfer
type AmountRequest struct {
	To     model.Address `json:"to"`
	Amount model.Amount  `json:"amount"`
}

// UpgradeRequest is the request body for POST /proxies/{address}/upgrade
type UpgradeRequest struct {
	Logic    string          `json:"logic"`
	InitData json.RawMessage `json:"init_data,omitempty"`
}
