// Package contracts declares the component interfaces that upgradeable logic
// implements. Every method takes the storage address (self) the logic runs
// against, so state never belongs to the logic itself.
package contracts

import (
	"time"

	"github.com/mcoot/plyr-settlement/internal/model"
	"github.com/mcoot/plyr-settlement/internal/txn"
)

// Logic is a replaceable implementation bound to storage through a proxy slot
type Logic interface {
	Name() string
	Kind() model.LogicKind
	// Initialize runs once per storage address with JSON init data
	Initialize(c *txn.Call, self model.Address, initData []byte) error
}

// Directory maps usernames to mirror accounts
type Directory interface {
	Logic
	State(c *txn.Call, self model.Address) (*model.Directory, error)
	DeriveMirror(c *txn.Call, self model.Address, username string) (model.Address, error)
	CreateUser(c *txn.Call, self, owner model.Address, username string, tier uint8) (*model.User, error)
	CreateUserWithMirror(c *txn.Call, self, owner, mirror model.Address, username string, tier uint8) (*model.User, error)
	DeleteUser(c *txn.Call, self model.Address, username string) error
	Lookup(c *txn.Call, self model.Address, username string) (*model.User, error)
	MirrorTransfer(c *txn.Call, self model.Address, username string, asset, to model.Address, amount model.Amount) error
}

// Router holds roles and the rule whitelist, and gates rule fund movement
type Router interface {
	Logic
	State(c *txn.Call, self model.Address) (*model.Router, error)
	ConfigGameRule(c *txn.Call, self, rule model.Address, enabled bool) error
	ConfigOperator(c *txn.Call, self, operator model.Address, enabled bool) error
	TransferOwnership(c *txn.Call, self, newOwner model.Address) error
	CreateUser(c *txn.Call, self, owner model.Address, username string, tier uint8) (*model.User, error)
	CreateUserWithMirror(c *txn.Call, self, owner, mirror model.Address, username string, tier uint8) (*model.User, error)
	DeleteUser(c *txn.Call, self model.Address, username string) error
	ComputeMirrorAddress(c *txn.Call, self model.Address, username string) (model.Address, error)
	HasRole(c *txn.Call, self model.Address, role model.Role, addr model.Address) (bool, error)
	IsRuleAllowed(c *txn.Call, self, rule model.Address) (bool, error)
	TransferFromMirror(c *txn.Call, self model.Address, username string, asset, to model.Address, amount model.Amount) error
	ResolveMirror(c *txn.Call, self model.Address, username string) (model.Address, error)
}

// GameRule drives room lifecycles for one game
type GameRule interface {
	Logic
	State(c *txn.Call, self model.Address) (*model.GameRule, error)
	Create(c *txn.Call, self model.Address, gameID string, duration time.Duration) (*model.Room, error)
	Join(c *txn.Call, self model.Address, gameID string, roomNumber uint64, usernames []string) error
	Leave(c *txn.Call, self model.Address, gameID string, roomNumber uint64, usernames []string) error
	Pay(c *txn.Call, self model.Address, gameID string, roomNumber uint64, username string, asset model.Address, amount model.Amount) error
	Earn(c *txn.Call, self model.Address, gameID string, roomNumber uint64, username string, asset model.Address, amount model.Amount) error
	End(c *txn.Call, self model.Address, gameID string, roomNumber uint64) error
	Close(c *txn.Call, self model.Address, gameID string, roomNumber uint64, recipient model.Address) error
	ConfigOperator(c *txn.Call, self, operator model.Address, enabled bool) error
	ConfigPlatformFee(c *txn.Call, self model.Address, percent uint64) error
	ConfigFeeTo(c *txn.Call, self, feeTo model.Address) error
	TransferOwnership(c *txn.Call, self, newOwner model.Address) error
	ComputeRoomAddress(c *txn.Call, self model.Address, gameID string, roomNumber uint64) (model.Address, error)
	GameRoomCount(c *txn.Call, self model.Address, gameID string) (uint64, error)
	Room(c *txn.Call, self model.Address, gameID string, roomNumber uint64) (*model.Room, error)
}

// Resolver turns a storage address into the logic currently bound to it
type Resolver interface {
	Directory(c *txn.Call, addr model.Address) (Directory, error)
	Router(c *txn.Call, addr model.Address) (Router, error)
	GameRule(c *txn.Call, addr model.Address) (GameRule, error)
}
