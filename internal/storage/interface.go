package storage

import (
	"context"

	"github.com/mcoot/plyr-settlement/internal/model"
)

// Storage defines the interface for data persistence. Records are returned
// as copies; mutating a returned value never changes stored state until it
// is saved again.
type Storage interface {
	// Ledger operations
	GetBalance(ctx context.Context, asset, account model.Address) (model.Amount, error)
	SetBalance(ctx context.Context, asset, account model.Address, amount model.Amount) error
	SaveAsset(ctx context.Context, asset *model.Asset) error
	GetAsset(ctx context.Context, addr model.Address) (*model.Asset, error)
	ListAssets(ctx context.Context) ([]*model.Asset, error)

	// Account operations
	SaveAccount(ctx context.Context, account *model.Account) error
	GetAccount(ctx context.Context, addr model.Address) (*model.Account, error)

	// User operations
	SaveUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, directory model.Address, username string) (*model.User, error)
	DeleteUser(ctx context.Context, directory model.Address, username string) error

	// Component state operations
	SaveDirectory(ctx context.Context, d *model.Directory) error
	GetDirectory(ctx context.Context, addr model.Address) (*model.Directory, error)
	SaveRouter(ctx context.Context, r *model.Router) error
	GetRouter(ctx context.Context, addr model.Address) (*model.Router, error)
	SaveGameRule(ctx context.Context, g *model.GameRule) error
	GetGameRule(ctx context.Context, addr model.Address) (*model.GameRule, error)

	// Room operations
	SaveRoom(ctx context.Context, room *model.Room) error
	GetRoom(ctx context.Context, addr model.Address) (*model.Room, error)

	// Upgrade slot and deployment operations
	SaveSlot(ctx context.Context, slot *model.Slot) error
	GetSlot(ctx context.Context, addr model.Address) (*model.Slot, error)
	GetNonce(ctx context.Context, deployer model.Address) (uint64, error)
	SetNonce(ctx context.Context, deployer model.Address, nonce uint64) error
	SaveDeployment(ctx context.Context, d *model.Deployment) error
	GetDeployment(ctx context.Context, name string) (*model.Deployment, error)
	ListDeployments(ctx context.Context) ([]*model.Deployment, error)
}

// Batcher is implemented by backends that can apply a group of writes as one
// atomic unit. fn must only write.
type Batcher interface {
	Batch(ctx context.Context, fn func(Storage) error) error
}
