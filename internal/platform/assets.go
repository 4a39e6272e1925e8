package platform

import (
	"context"

	"github.com/mcoot/plyr-settlement/internal/model"
	"github.com/mcoot/plyr-settlement/internal/txn"
)

// RegisterAsset creates a token minted by caller
func (p *Platform) RegisterAsset(ctx context.Context, caller model.Address, symbol string, decimals uint8) (*model.Asset, error) {
	var asset *model.Asset
	err := p.exec.Run(ctx, caller, "registerAsset", func(c *txn.Call) error {
		var err error
		asset, err = p.ledger.RegisterAsset(c, symbol, decimals)
		return err
	})
	return asset, err
}

// Assets lists every registered asset
func (p *Platform) Assets(ctx context.Context) ([]*model.Asset, error) {
	var assets []*model.Asset
	err := p.exec.View(ctx, model.ZeroAddress, func(c *txn.Call) error {
		var err error
		assets, err = p.ledger.Assets(c)
		return err
	})
	return assets, err
}

// Mint creates amount of asset at to; caller must be the asset's minter
func (p *Platform) Mint(ctx context.Context, caller, asset, to model.Address, amount model.Amount) error {
	return p.exec.Run(ctx, caller, "mint", func(c *txn.Call) error {
		return p.ledger.Mint(c, asset, to, amount)
	})
}

// Transfer moves amount of asset from caller to to
func (p *Platform) Transfer(ctx context.Context, caller, asset, to model.Address, amount model.Amount) error {
	return p.exec.Run(ctx, caller, "transfer", func(c *txn.Call) error {
		return p.ledger.Transfer(c, asset, to, amount)
	})
}

// Balance returns account's balance of asset
func (p *Platform) Balance(ctx context.Context, asset, account model.Address) (model.Amount, error) {
	var bal model.Amount
	err := p.exec.View(ctx, model.ZeroAddress, func(c *txn.Call) error {
		var err error
		bal, err = p.ledger.BalanceOf(c, asset, account)
		return err
	})
	return bal, err
}
