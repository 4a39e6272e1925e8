package model

import (
	"maps"
	"time"
)

// Role names used by the router's role table
type Role string

const (
	RoleAdministrator Role = "administrator"
	RoleOperator      Role = "operator"
)

// DefaultPlatformFee is the percentage taken from earnings unless configured
const DefaultPlatformFee uint64 = 2

// MaxPlatformFee bounds ConfigPlatformFee so earn never pays out more than it holds
const MaxPlatformFee uint64 = 100

// DefaultNameSuffix is appended to usernames before mirror derivation
const DefaultNameSuffix = ".plyr"

// Directory is the persisted state of a directory service
type Directory struct {
	Address     Address
	Owner       Address
	Router      Address
	NameSuffix  string
	Initialized bool
}

// Router is the persisted state of a router: role table and rule whitelist
type Router struct {
	Address     Address
	Owner       Address // the Administrator
	Directory   Address
	Operators   map[Address]bool
	Rules       map[Address]bool
	Initialized bool
}

// IsOperatorOrOwner reports whether addr holds the operator or administrator role
func (r *Router) IsOperatorOrOwner(addr Address) bool {
	return addr == r.Owner || r.Operators[addr]
}

// Clone returns a deep copy
func (r *Router) Clone() *Router {
	c := *r
	c.Operators = maps.Clone(r.Operators)
	c.Rules = maps.Clone(r.Rules)
	return &c
}

// GameRule is the persisted state of a game rule module
type GameRule struct {
	Address     Address
	Owner       Address
	Router      Address
	Directory   Address
	FeeTo       Address
	PlatformFee uint64
	Operators   map[Address]bool
	RoomCounts  map[string]uint64
	Initialized bool
}

// Clone returns a deep copy
func (g *GameRule) Clone() *GameRule {
	c := *g
	c.Operators = maps.Clone(g.Operators)
	c.RoomCounts = maps.Clone(g.RoomCounts)
	return &c
}

// LogicKind identifies which component interface a logic implements
type LogicKind string

const (
	LogicKindDirectory LogicKind = "directory"
	LogicKindRouter    LogicKind = "router"
	LogicKindGameRule  LogicKind = "gamerule"
)

// Slot is the upgrade indirection record: a stable storage address bound to a
// replaceable logic implementation
type Slot struct {
	Address   Address
	Kind      LogicKind
	Logic     string
	Admin     Address
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Deployment names a component address created at bootstrap
type Deployment struct {
	Name    string
	Address Address
}

// Asset is a fungible asset known to the ledger
type Asset struct {
	Address  Address
	Symbol   string
	Decimals uint8
	Minter   Address
}
