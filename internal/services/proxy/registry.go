// Package proxy separates the stable storage address other components
// reference from the replaceable logic that runs against it. A slot names
// the current logic and the admin allowed to swap it.
package proxy

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mcoot/plyr-settlement/internal/contracts"
	"github.com/mcoot/plyr-settlement/internal/model"
	"github.com/mcoot/plyr-settlement/internal/txn"
)

// Registry holds the known logic implementations and resolves slots to them
type Registry struct {
	mu     sync.RWMutex
	logics map[string]contracts.Logic
	logger *slog.Logger
}

var _ contracts.Resolver = (*Registry)(nil)

// NewRegistry creates an empty registry
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		logics: make(map[string]contracts.Logic),
		logger: logger,
	}
}

// Register makes logics available for deployment and upgrade by name
func (r *Registry) Register(logics ...contracts.Logic) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range logics {
		if _, ok := r.logics[l.Name()]; ok {
			return fmt.Errorf("logic %q already registered", l.Name())
		}
		r.logics[l.Name()] = l
	}
	return nil
}

// Logic returns a registered logic by name
func (r *Registry) Logic(name string) (contracts.Logic, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.logics[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", model.ErrUnknownLogic, name)
	}
	return l, nil
}

// Deploy allocates a new storage address from the caller's nonce, binds it to
// logicName under admin, and runs the initializer when initData is given
func (r *Registry) Deploy(c *txn.Call, logicName string, admin model.Address, initData []byte) (*model.Slot, error) {
	logic, err := r.Logic(logicName)
	if err != nil {
		return nil, err
	}
	if admin.IsZero() {
		return nil, model.ErrZeroAddress
	}

	addr, err := c.CreateAddress()
	if err != nil {
		return nil, err
	}
	if _, err := c.Store.GetSlot(c.Context(), addr); err == nil {
		return nil, fmt.Errorf("%w: slot %s", model.ErrIdentifierCollision, addr)
	} else if !errors.Is(err, model.ErrSlotNotFound) {
		return nil, err
	}

	slot := &model.Slot{
		Address:   addr,
		Kind:      logic.Kind(),
		Logic:     logic.Name(),
		Admin:     admin,
		CreatedAt: c.Now,
		UpdatedAt: c.Now,
	}
	if err := c.Store.SaveSlot(c.Context(), slot); err != nil {
		return nil, err
	}
	c.Emit(addr, model.EventUpgraded, model.UpgradePayload{Slot: addr, Logic: slot.Logic, Admin: admin})

	if len(initData) > 0 {
		if err := logic.Initialize(c, addr, initData); err != nil {
			return nil, fmt.Errorf("initialize %s at %s: %w", logicName, addr, err)
		}
	}

	r.logger.Info("proxy deployed", "slot", addr, "logic", slot.Logic, "admin", admin)
	return slot, nil
}

// UpgradeAndCall swaps the logic behind addr and, when initData is given,
// runs the new logic's initializer against the unchanged storage
func (r *Registry) UpgradeAndCall(c *txn.Call, addr model.Address, logicName string, initData []byte) (*model.Slot, error) {
	slot, err := c.Store.GetSlot(c.Context(), addr)
	if err != nil {
		return nil, err
	}
	if c.Sender != slot.Admin {
		return nil, model.ErrNotProxyAdmin
	}
	logic, err := r.Logic(logicName)
	if err != nil {
		return nil, err
	}
	if logic.Kind() != slot.Kind {
		return nil, fmt.Errorf("%w: slot is %s, %s is %s", model.ErrLogicKindMismatch, slot.Kind, logicName, logic.Kind())
	}

	previous := slot.Logic
	slot.Logic = logic.Name()
	slot.UpdatedAt = c.Now
	if err := c.Store.SaveSlot(c.Context(), slot); err != nil {
		return nil, err
	}
	c.Emit(addr, model.EventUpgraded, model.UpgradePayload{Slot: addr, Logic: slot.Logic, Admin: slot.Admin})

	if len(initData) > 0 {
		if err := logic.Initialize(c, addr, initData); err != nil {
			return nil, fmt.Errorf("initialize %s at %s: %w", logicName, addr, err)
		}
	}

	r.logger.Info("proxy upgraded", "slot", addr, "from", previous, "to", slot.Logic)
	return slot, nil
}

// ChangeAdmin hands the slot to a new admin
func (r *Registry) ChangeAdmin(c *txn.Call, addr, newAdmin model.Address) (*model.Slot, error) {
	slot, err := c.Store.GetSlot(c.Context(), addr)
	if err != nil {
		return nil, err
	}
	if c.Sender != slot.Admin {
		return nil, model.ErrNotProxyAdmin
	}
	if newAdmin.IsZero() {
		return nil, model.ErrZeroAddress
	}

	slot.Admin = newAdmin
	slot.UpdatedAt = c.Now
	if err := c.Store.SaveSlot(c.Context(), slot); err != nil {
		return nil, err
	}

	c.Emit(addr, model.EventAdminChanged, model.UpgradePayload{Slot: addr, Logic: slot.Logic, Admin: newAdmin})
	return slot, nil
}

// Implementation returns the slot at addr
func (r *Registry) Implementation(c *txn.Call, addr model.Address) (*model.Slot, error) {
	return c.Store.GetSlot(c.Context(), addr)
}

// Directory resolves addr to its current directory logic
func (r *Registry) Directory(c *txn.Call, addr model.Address) (contracts.Directory, error) {
	return resolve[contracts.Directory](r, c, addr, model.LogicKindDirectory)
}

// Router resolves addr to its current router logic
func (r *Registry) Router(c *txn.Call, addr model.Address) (contracts.Router, error) {
	return resolve[contracts.Router](r, c, addr, model.LogicKindRouter)
}

// GameRule resolves addr to its current game rule logic
func (r *Registry) GameRule(c *txn.Call, addr model.Address) (contracts.GameRule, error) {
	return resolve[contracts.GameRule](r, c, addr, model.LogicKindGameRule)
}

func resolve[T contracts.Logic](r *Registry, c *txn.Call, addr model.Address, kind model.LogicKind) (T, error) {
	var zero T
	slot, err := c.Store.GetSlot(c.Context(), addr)
	if err != nil {
		return zero, fmt.Errorf("resolve %s %s: %w", kind, addr, err)
	}
	if slot.Kind != kind {
		return zero, fmt.Errorf("%w: %s is a %s", model.ErrLogicKindMismatch, addr, slot.Kind)
	}
	logic, err := r.Logic(slot.Logic)
	if err != nil {
		return zero, err
	}
	typed, ok := logic.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s does not implement %s", model.ErrLogicKindMismatch, slot.Logic, kind)
	}
	return typed, nil
}

// Initialize runs the current logic's initializer against addr. Only the
// slot admin may call it, and each logic accepts it once per address.
func (r *Registry) Initialize(c *txn.Call, addr model.Address, initData []byte) error {
	slot, err := c.Store.GetSlot(c.Context(), addr)
	if err != nil {
		return err
	}
	if c.Sender != slot.Admin {
		return model.ErrNotProxyAdmin
	}
	logic, err := r.Logic(slot.Logic)
	if err != nil {
		return err
	}
	return logic.Initialize(c, addr, initData)
}
