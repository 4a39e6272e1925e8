package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/mcoot/plyr-settlement/internal/model"
	"github.com/mcoot/plyr-settlement/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	balances    map[balanceKey]model.Amount
	assets      map[model.Address]model.Asset
	accounts    map[model.Address]model.Account
	users       map[userKey]model.User
	directories map[model.Address]model.Directory
	routers     map[model.Address]*model.Router
	gameRules   map[model.Address]*model.GameRule
	rooms       map[model.Address]*model.Room
	slots       map[model.Address]model.Slot
	nonces      map[model.Address]uint64
	deployments map[string]model.Deployment
}

type balanceKey struct {
	asset   model.Address
	account model.Address
}

type userKey struct {
	directory model.Address
	username  string
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		balances:    make(map[balanceKey]model.Amount),
		assets:      make(map[model.Address]model.Asset),
		accounts:    make(map[model.Address]model.Account),
		users:       make(map[userKey]model.User),
		directories: make(map[model.Address]model.Directory),
		routers:     make(map[model.Address]*model.Router),
		gameRules:   make(map[model.Address]*model.GameRule),
		rooms:       make(map[model.Address]*model.Room),
		slots:       make(map[model.Address]model.Slot),
		nonces:      make(map[model.Address]uint64),
		deployments: make(map[string]model.Deployment),
	}
}

// Ensure Storage implements the interfaces
var (
	_ storage.Storage = (*Storage)(nil)
	_ storage.Batcher = (*Storage)(nil)
)

// Batch applies fn directly. Every call is serialised by the executor, so no
// reader can observe a half-applied batch.
func (s *Storage) Batch(ctx context.Context, fn func(storage.Storage) error) error {
	return fn(s)
}

// Ledger operations

func (s *Storage) GetBalance(ctx context.Context, asset, account model.Address) (model.Amount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.balances[balanceKey{asset, account}], nil
}

func (s *Storage) SetBalance(ctx context.Context, asset, account model.Address, amount model.Amount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := balanceKey{asset, account}
	if amount == 0 {
		delete(s.balances, key)
		return nil
	}
	s.balances[key] = amount
	return nil
}

func (s *Storage) SaveAsset(ctx context.Context, asset *model.Asset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assets[asset.Address] = *asset
	return nil
}

func (s *Storage) GetAsset(ctx context.Context, addr model.Address) (*model.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	asset, ok := s.assets[addr]
	if !ok {
		return nil, model.ErrUnknownAsset
	}
	return &asset, nil
}

func (s *Storage) ListAssets(ctx context.Context) ([]*model.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	assets := make([]*model.Asset, 0, len(s.assets))
	for _, a := range s.assets {
		asset := a
		assets = append(assets, &asset)
	}
	slices.SortFunc(assets, func(a, b *model.Asset) int {
		return compareAddress(a.Address, b.Address)
	})
	return assets, nil
}

// Account operations

func (s *Storage) SaveAccount(ctx context.Context, account *model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[account.Address] = *account
	return nil
}

func (s *Storage) GetAccount(ctx context.Context, addr model.Address) (*model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	account, ok := s.accounts[addr]
	if !ok {
		return nil, model.ErrAccountNotFound
	}
	return &account, nil
}

// User operations

func (s *Storage) SaveUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[userKey{user.Directory, user.Username}] = *user
	return nil
}

func (s *Storage) GetUser(ctx context.Context, directory model.Address, username string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[userKey{directory, username}]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	return &user, nil
}

func (s *Storage) DeleteUser(ctx context.Context, directory model.Address, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, userKey{directory, username})
	return nil
}

// Component state operations

func (s *Storage) SaveDirectory(ctx context.Context, d *model.Directory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.directories[d.Address] = *d
	return nil
}

func (s *Storage) GetDirectory(ctx context.Context, addr model.Address) (*model.Directory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.directories[addr]
	if !ok {
		return nil, model.ErrDirectoryNotFound
	}
	return &d, nil
}

func (s *Storage) SaveRouter(ctx context.Context, r *model.Router) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routers[r.Address] = r.Clone()
	return nil
}

func (s *Storage) GetRouter(ctx context.Context, addr model.Address) (*model.Router, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.routers[addr]
	if !ok {
		return nil, model.ErrRouterNotFound
	}
	return r.Clone(), nil
}

func (s *Storage) SaveGameRule(ctx context.Context, g *model.GameRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gameRules[g.Address] = g.Clone()
	return nil
}

func (s *Storage) GetGameRule(ctx context.Context, addr model.Address) (*model.GameRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.gameRules[addr]
	if !ok {
		return nil, model.ErrGameRuleNotFound
	}
	return g.Clone(), nil
}

// Room operations

func (s *Storage) SaveRoom(ctx context.Context, room *model.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[room.Address] = room.Clone()
	return nil
}

func (s *Storage) GetRoom(ctx context.Context, addr model.Address) (*model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[addr]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	return room.Clone(), nil
}

// Upgrade slot and deployment operations

func (s *Storage) SaveSlot(ctx context.Context, slot *model.Slot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots[slot.Address] = *slot
	return nil
}

func (s *Storage) GetSlot(ctx context.Context, addr model.Address) (*model.Slot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	slot, ok := s.slots[addr]
	if !ok {
		return nil, model.ErrSlotNotFound
	}
	return &slot, nil
}

func (s *Storage) GetNonce(ctx context.Context, deployer model.Address) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nonces[deployer], nil
}

func (s *Storage) SetNonce(ctx context.Context, deployer model.Address, nonce uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nonces[deployer] = nonce
	return nil
}

func (s *Storage) SaveDeployment(ctx context.Context, d *model.Deployment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deployments[d.Name] = *d
	return nil
}

func (s *Storage) GetDeployment(ctx context.Context, name string) (*model.Deployment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.deployments[name]
	if !ok {
		return nil, model.ErrDeploymentNotFound
	}
	return &d, nil
}

func (s *Storage) ListDeployments(ctx context.Context) ([]*model.Deployment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	deployments := make([]*model.Deployment, 0, len(s.deployments))
	for _, d := range s.deployments {
		dep := d
		deployments = append(deployments, &dep)
	}
	slices.SortFunc(deployments, func(a, b *model.Deployment) int {
		if a.Name < b.Name {
			return -1
		}
		if a.Name > b.Name {
			return 1
		}
		return 0
	})
	return deployments, nil
}

func compareAddress(a, b model.Address) int {
	for i := range a {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}
