package response

import (
	"maps"
	"slices"
	"time"

	"github.com/mcoot/plyr-settlement/internal/model"
	"github.com/mcoot/plyr-settlement/internal/platform"
)

// Health is the liveness report
type Health struct {
	Status        string `json:"status"`
	Bootstrapped  bool   `json:"bootstrapped"`
	StreamClients int    `json:"stream_clients"`
}

// Deployment is the set of bootstrapped component addresses
type Deployment struct {
	Directory model.Address `json:"directory"`
	Router    model.Address `json:"router"`
	GameRule  model.Address `json:"game_rule"`
}

// User is the API representation of a directory entry
type User struct {
	Username  string        `json:"username"`
	Mirror    model.Address `json:"mirror"`
	Owner     model.Address `json:"owner"`
	Tier      uint8         `json:"tier"`
	CreatedAt time.Time     `json:"created_at"`
}

// Mirror is a derived mirror address
type Mirror struct {
	Username string        `json:"username"`
	Mirror   model.Address `json:"mirror"`
}

// Router is the router's role table and whitelist
type Router struct {
	Address   model.Address   `json:"address"`
	Owner     model.Address   `json:"owner"`
	Directory model.Address   `json:"directory"`
	Operators []model.Address `json:"operators"`
	Rules     []RuleEntry     `json:"rules"`
}

// RuleEntry is one whitelist entry
type RuleEntry struct {
	Rule    model.Address `json:"rule"`
	Enabled bool          `json:"enabled"`
}

// GameRule is the rule's configuration
type GameRule struct {
	Address     model.Address     `json:"address"`
	Owner       model.Address     `json:"owner"`
	Router      model.Address     `json:"router"`
	FeeTo       model.Address     `json:"fee_to"`
	PlatformFee uint64            `json:"platform_fee"`
	Operators   []model.Address   `json:"operators"`
	RoomCounts  map[string]uint64 `json:"room_counts"`
}

// Room is the API representation of a room escrow
type Room struct {
	Address    model.Address   `json:"address"`
	Rule       model.Address   `json:"rule"`
	GameID     string          `json:"game_id"`
	RoomNumber uint64          `json:"room_number"`
	Deadline   time.Time       `json:"deadline"`
	Ended      bool            `json:"ended"`
	Closed     bool            `json:"closed"`
	ClosedTo   *model.Address  `json:"closed_to,omitempty"`
	Members    []string        `json:"members"`
	Tokens     []model.Address `json:"tokens"`
	Balances   []Balance       `json:"balances,omitempty"`
}

// RoomAddress is a derived room address
type RoomAddress struct {
	GameID     string        `json:"game_id"`
	RoomNumber uint64        `json:"room_number"`
	Address    model.Address `json:"address"`
}

// RoomCount is the number of rooms created for a game
type RoomCount struct {
	GameID string `json:"game_id"`
	Count  uint64 `json:"count"`
}

// Balance is an asset balance held by an account
type Balance struct {
	Asset   model.Address `json:"asset"`
	Balance model.Amount  `json:"balance"`
}

// Asset is a ledger asset
type Asset struct {
	Address  model.Address `json:"address"`
	Symbol   string        `json:"symbol"`
	Decimals uint8         `json:"decimals"`
	Minter   model.Address `json:"minter"`
}

// Slot is an upgradeable component's proxy record
type Slot struct {
	Address   model.Address `json:"address"`
	Kind      string        `json:"kind"`
	Logic     string        `json:"logic"`
	Admin     model.Address `json:"admin"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// Event is a committed component event
type Event struct {
	Type      string        `json:"type"`
	Emitter   model.Address `json:"emitter"`
	Origin    model.Address `json:"origin"`
	Timestamp time.Time     `json:"timestamp"`
	Payload   any           `json:"payload"`
}

// DeploymentFromPlatform converts a platform deployment
func DeploymentFromPlatform(d *platform.Deployment) Deployment {
	return Deployment{Directory: d.Directory, Router: d.Router, GameRule: d.GameRule}
}

// UserFromModel converts a model user
func UserFromModel(u *model.User) User {
	return User{
		Username:  u.Username,
		Mirror:    u.Mirror,
		Owner:     u.Owner,
		Tier:      u.Tier,
		CreatedAt: u.CreatedAt,
	}
}

// RouterFromModel converts router state. Addresses are sorted so responses
// are stable.
func RouterFromModel(r *model.Router) Router {
	resp := Router{
		Address:   r.Address,
		Owner:     r.Owner,
		Directory: r.Directory,
		Operators: sortedAddresses(r.Operators),
		Rules:     make([]RuleEntry, 0, len(r.Rules)),
	}
	for _, rule := range slices.SortedFunc(maps.Keys(r.Rules), model.Address.Compare) {
		resp.Rules = append(resp.Rules, RuleEntry{Rule: rule, Enabled: r.Rules[rule]})
	}
	return resp
}

// GameRuleFromModel converts game rule state
func GameRuleFromModel(g *model.GameRule) GameRule {
	counts := maps.Clone(g.RoomCounts)
	if counts == nil {
		counts = map[string]uint64{}
	}
	return GameRule{
		Address:     g.Address,
		Owner:       g.Owner,
		Router:      g.Router,
		FeeTo:       g.FeeTo,
		PlatformFee: g.PlatformFee,
		Operators:   sortedAddresses(g.Operators),
		RoomCounts:  counts,
	}
}

// RoomFromModel converts a room
func RoomFromModel(r *model.Room) Room {
	resp := Room{
		Address:    r.Address,
		Rule:       r.Owner,
		GameID:     r.GameID,
		RoomNumber: r.RoomNumber,
		Deadline:   r.Deadline,
		Ended:      r.Ended,
		Closed:     r.Closed,
		Members:    slices.Clone(r.Members),
		Tokens:     slices.Clone(r.Tokens),
	}
	if r.Closed {
		to := r.ClosedTo
		resp.ClosedTo = &to
	}
	if resp.Members == nil {
		resp.Members = []string{}
	}
	if resp.Tokens == nil {
		resp.Tokens = []model.Address{}
	}
	return resp
}

// RoomFromView converts a room with its balances
func RoomFromView(v *platform.RoomView) Room {
	resp := RoomFromModel(v.Room)
	for _, b := range v.Balances {
		resp.Balances = append(resp.Balances, Balance{Asset: b.Asset, Balance: b.Balance})
	}
	return resp
}

// AssetFromModel converts a ledger asset
func AssetFromModel(a *model.Asset) Asset {
	return Asset{Address: a.Address, Symbol: a.Symbol, Decimals: a.Decimals, Minter: a.Minter}
}

// SlotFromModel converts a proxy slot
func SlotFromModel(s *model.Slot) Slot {
	return Slot{
		Address:   s.Address,
		Kind:      string(s.Kind),
		Logic:     s.Logic,
		Admin:     s.Admin,
		UpdatedAt: s.UpdatedAt,
	}
}

// EventFromModel converts a committed event
func EventFromModel(e model.Event) Event {
	return Event{
		Type:      string(e.Type),
		Emitter:   e.Emitter,
		Origin:    e.Origin,
		Timestamp: e.Timestamp,
		Payload:   e.Payload,
	}
}

func sortedAddresses(set map[model.Address]bool) []model.Address {
	out := make([]model.Address, 0, len(set))
	for addr, ok := range set {
		if ok {
			out = append(out, addr)
		}
	}
	slices.SortFunc(out, model.Address.Compare)
	return out
}
