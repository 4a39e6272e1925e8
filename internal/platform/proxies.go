package platform

import (
	"context"

	"github.com/mcoot/plyr-settlement/internal/model"
	"github.com/mcoot/plyr-settlement/internal/txn"
)

// Implementation returns the upgrade slot at addr
func (p *Platform) Implementation(ctx context.Context, addr model.Address) (*model.Slot, error) {
	var slot *model.Slot
	err := p.exec.View(ctx, model.ZeroAddress, func(c *txn.Call) error {
		var err error
		slot, err = p.registry.Implementation(c, addr)
		return err
	})
	return slot, err
}

// UpgradeAndCall swaps the logic behind addr, optionally initializing it
func (p *Platform) UpgradeAndCall(ctx context.Context, caller, addr model.Address, logic string, initData []byte) (*model.Slot, error) {
	var slot *model.Slot
	err := p.exec.Run(ctx, caller, "upgradeAndCall", func(c *txn.Call) error {
		var err error
		slot, err = p.registry.UpgradeAndCall(c, addr, logic, initData)
		return err
	})
	return slot, err
}

// ChangeAdmin hands a slot to a new admin
func (p *Platform) ChangeAdmin(ctx context.Context, caller, addr, newAdmin model.Address) (*model.Slot, error) {
	var slot *model.Slot
	err := p.exec.Run(ctx, caller, "changeAdmin", func(c *txn.Call) error {
		var err error
		slot, err = p.registry.ChangeAdmin(c, addr, newAdmin)
		return err
	})
	return slot, err
}
