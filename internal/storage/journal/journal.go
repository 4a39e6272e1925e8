// Package journal buffers the writes of a single call over a base store so
// they can be committed together or dropped on failure.
package journal

import (
	"context"
	"slices"
	"strings"

	"github.com/mcoot/plyr-settlement/internal/model"
	"github.com/mcoot/plyr-settlement/internal/storage"
)

type balanceKey struct {
	asset   model.Address
	account model.Address
}

type userKey struct {
	directory model.Address
	username  string
}

// Journal is a write-back overlay. Reads see the call's own writes first,
// then fall through to the base store.
type Journal struct {
	base storage.Storage
	ops  []func(context.Context, storage.Storage) error

	balances    map[balanceKey]model.Amount
	assets      map[model.Address]model.Asset
	accounts    map[model.Address]model.Account
	users       map[userKey]*model.User // nil marks a deletion
	directories map[model.Address]model.Directory
	routers     map[model.Address]*model.Router
	gameRules   map[model.Address]*model.GameRule
	rooms       map[model.Address]*model.Room
	slots       map[model.Address]model.Slot
	nonces      map[model.Address]uint64
	deployments map[string]model.Deployment
}

var _ storage.Storage = (*Journal)(nil)

// New opens an empty journal over base
func New(base storage.Storage) *Journal {
	return &Journal{
		base:        base,
		balances:    make(map[balanceKey]model.Amount),
		assets:      make(map[model.Address]model.Asset),
		accounts:    make(map[model.Address]model.Account),
		users:       make(map[userKey]*model.User),
		directories: make(map[model.Address]model.Directory),
		routers:     make(map[model.Address]*model.Router),
		gameRules:   make(map[model.Address]*model.GameRule),
		rooms:       make(map[model.Address]*model.Room),
		slots:       make(map[model.Address]model.Slot),
		nonces:      make(map[model.Address]uint64),
		deployments: make(map[string]model.Deployment),
	}
}

// Len is the number of buffered writes
func (j *Journal) Len() int {
	return len(j.ops)
}

// Commit replays every buffered write, in order, onto the base store. When
// the base store is a Batcher the writes land as a single batch.
func (j *Journal) Commit(ctx context.Context) error {
	if len(j.ops) == 0 {
		return nil
	}
	apply := func(st storage.Storage) error {
		for _, op := range j.ops {
			if err := op(ctx, st); err != nil {
				return err
			}
		}
		return nil
	}
	if b, ok := j.base.(storage.Batcher); ok {
		return b.Batch(ctx, apply)
	}
	return apply(j.base)
}

func (j *Journal) record(op func(context.Context, storage.Storage) error) {
	j.ops = append(j.ops, op)
}

// Ledger operations

func (j *Journal) GetBalance(ctx context.Context, asset, account model.Address) (model.Amount, error) {
	if v, ok := j.balances[balanceKey{asset, account}]; ok {
		return v, nil
	}
	return j.base.GetBalance(ctx, asset, account)
}

func (j *Journal) SetBalance(ctx context.Context, asset, account model.Address, amount model.Amount) error {
	j.balances[balanceKey{asset, account}] = amount
	j.record(func(ctx context.Context, st storage.Storage) error {
		return st.SetBalance(ctx, asset, account, amount)
	})
	return nil
}

func (j *Journal) SaveAsset(ctx context.Context, asset *model.Asset) error {
	a := *asset
	j.assets[a.Address] = a
	j.record(func(ctx context.Context, st storage.Storage) error {
		return st.SaveAsset(ctx, &a)
	})
	return nil
}

func (j *Journal) GetAsset(ctx context.Context, addr model.Address) (*model.Asset, error) {
	if a, ok := j.assets[addr]; ok {
		return &a, nil
	}
	return j.base.GetAsset(ctx, addr)
}

func (j *Journal) ListAssets(ctx context.Context) ([]*model.Asset, error) {
	base, err := j.base.ListAssets(ctx)
	if err != nil {
		return nil, err
	}
	merged := make(map[model.Address]*model.Asset, len(base)+len(j.assets))
	for _, a := range base {
		merged[a.Address] = a
	}
	for addr, a := range j.assets {
		asset := a
		merged[addr] = &asset
	}
	assets := make([]*model.Asset, 0, len(merged))
	for _, a := range merged {
		assets = append(assets, a)
	}
	slices.SortFunc(assets, func(a, b *model.Asset) int {
		return strings.Compare(a.Address.String(), b.Address.String())
	})
	return assets, nil
}

// Account operations

func (j *Journal) SaveAccount(ctx context.Context, account *model.Account) error {
	a := *account
	j.accounts[a.Address] = a
	j.record(func(ctx context.Context, st storage.Storage) error {
		return st.SaveAccount(ctx, &a)
	})
	return nil
}

func (j *Journal) GetAccount(ctx context.Context, addr model.Address) (*model.Account, error) {
	if a, ok := j.accounts[addr]; ok {
		return &a, nil
	}
	return j.base.GetAccount(ctx, addr)
}

// User operations

func (j *Journal) SaveUser(ctx context.Context, user *model.User) error {
	u := *user
	j.users[userKey{u.Directory, u.Username}] = &u
	j.record(func(ctx context.Context, st storage.Storage) error {
		return st.SaveUser(ctx, &u)
	})
	return nil
}

func (j *Journal) GetUser(ctx context.Context, directory model.Address, username string) (*model.User, error) {
	if u, ok := j.users[userKey{directory, username}]; ok {
		if u == nil {
			return nil, model.ErrUserNotFound
		}
		c := *u
		return &c, nil
	}
	return j.base.GetUser(ctx, directory, username)
}

func (j *Journal) DeleteUser(ctx context.Context, directory model.Address, username string) error {
	j.users[userKey{directory, username}] = nil
	j.record(func(ctx context.Context, st storage.Storage) error {
		return st.DeleteUser(ctx, directory, username)
	})
	return nil
}

// Component state operations

func (j *Journal) SaveDirectory(ctx context.Context, d *model.Directory) error {
	c := *d
	j.directories[c.Address] = c
	j.record(func(ctx context.Context, st storage.Storage) error {
		return st.SaveDirectory(ctx, &c)
	})
	return nil
}

func (j *Journal) GetDirectory(ctx context.Context, addr model.Address) (*model.Directory, error) {
	if d, ok := j.directories[addr]; ok {
		return &d, nil
	}
	return j.base.GetDirectory(ctx, addr)
}

func (j *Journal) SaveRouter(ctx context.Context, r *model.Router) error {
	c := r.Clone()
	j.routers[c.Address] = c
	j.record(func(ctx context.Context, st storage.Storage) error {
		return st.SaveRouter(ctx, c)
	})
	return nil
}

func (j *Journal) GetRouter(ctx context.Context, addr model.Address) (*model.Router, error) {
	if r, ok := j.routers[addr]; ok {
		return r.Clone(), nil
	}
	return j.base.GetRouter(ctx, addr)
}

func (j *Journal) SaveGameRule(ctx context.Context, g *model.GameRule) error {
	c := g.Clone()
	j.gameRules[c.Address] = c
	j.record(func(ctx context.Context, st storage.Storage) error {
		return st.SaveGameRule(ctx, c)
	})
	return nil
}

func (j *Journal) GetGameRule(ctx context.Context, addr model.Address) (*model.GameRule, error) {
	if g, ok := j.gameRules[addr]; ok {
		return g.Clone(), nil
	}
	return j.base.GetGameRule(ctx, addr)
}

// Room operations

func (j *Journal) SaveRoom(ctx context.Context, room *model.Room) error {
	c := room.Clone()
	j.rooms[c.Address] = c
	j.record(func(ctx context.Context, st storage.Storage) error {
		return st.SaveRoom(ctx, c)
	})
	return nil
}

func (j *Journal) GetRoom(ctx context.Context, addr model.Address) (*model.Room, error) {
	if r, ok := j.rooms[addr]; ok {
		return r.Clone(), nil
	}
	return j.base.GetRoom(ctx, addr)
}

// Upgrade slot and deployment operations

func (j *Journal) SaveSlot(ctx context.Context, slot *model.Slot) error {
	c := *slot
	j.slots[c.Address] = c
	j.record(func(ctx context.Context, st storage.Storage) error {
		return st.SaveSlot(ctx, &c)
	})
	return nil
}

func (j *Journal) GetSlot(ctx context.Context, addr model.Address) (*model.Slot, error) {
	if s, ok := j.slots[addr]; ok {
		return &s, nil
	}
	return j.base.GetSlot(ctx, addr)
}

func (j *Journal) GetNonce(ctx context.Context, deployer model.Address) (uint64, error) {
	if n, ok := j.nonces[deployer]; ok {
		return n, nil
	}
	return j.base.GetNonce(ctx, deployer)
}

func (j *Journal) SetNonce(ctx context.Context, deployer model.Address, nonce uint64) error {
	j.nonces[deployer] = nonce
	j.record(func(ctx context.Context, st storage.Storage) error {
		return st.SetNonce(ctx, deployer, nonce)
	})
	return nil
}

func (j *Journal) SaveDeployment(ctx context.Context, d *model.Deployment) error {
	c := *d
	j.deployments[c.Name] = c
	j.record(func(ctx context.Context, st storage.Storage) error {
		return st.SaveDeployment(ctx, &c)
	})
	return nil
}

func (j *Journal) GetDeployment(ctx context.Context, name string) (*model.Deployment, error) {
	if d, ok := j.deployments[name]; ok {
		return &d, nil
	}
	return j.base.GetDeployment(ctx, name)
}

func (j *Journal) ListDeployments(ctx context.Context) ([]*model.Deployment, error) {
	base, err := j.base.ListDeployments(ctx)
	if err != nil {
		return nil, err
	}
	merged := make(map[string]*model.Deployment, len(base)+len(j.deployments))
	for _, d := range base {
		merged[d.Name] = d
	}
	for name, d := range j.deployments {
		dep := d
		merged[name] = &dep
	}
	deployments := make([]*model.Deployment, 0, len(merged))
	for _, d := range merged {
		deployments = append(deployments, d)
	}
	slices.SortFunc(deployments, func(a, b *model.Deployment) int {
		return strings.Compare(a.Name, b.Name)
	})
	return deployments, nil
}
