// Package ledger holds every fungible balance, native currency included.
// Funds move only out of the calling identity.
package ledger

import (
	"log/slog"
	"strings"

	"github.com/mcoot/plyr-settlement/internal/model"
	"github.com/mcoot/plyr-settlement/internal/txn"
)

// NativeSymbol is the symbol of the native currency
const NativeSymbol = "PLYR"

// NativeDecimals is the precision of the native currency
const NativeDecimals = 18

// Service is the asset primitive used by mirrors and rooms
type Service struct {
	logger *slog.Logger
}

// New creates a new ledger service
func New(logger *slog.Logger) *Service {
	return &Service{logger: logger}
}

// RegisterNative records the native currency with the caller as minter.
// Registering it again is a no-op.
func (s *Service) RegisterNative(c *txn.Call) (*model.Asset, error) {
	if existing, err := c.Store.GetAsset(c.Context(), model.NativeAsset); err == nil {
		return existing, nil
	}
	asset := &model.Asset{
		Address:  model.NativeAsset,
		Symbol:   NativeSymbol,
		Decimals: NativeDecimals,
		Minter:   c.Sender,
	}
	if err := c.Store.SaveAsset(c.Context(), asset); err != nil {
		return nil, err
	}
	c.Emit(asset.Address, model.EventAssetRegistered, model.AssetPayload{Asset: asset.Address, Symbol: asset.Symbol})
	return asset, nil
}

// RegisterAsset creates a new token minted by the caller. The token address is
// allocated from the caller's deployment nonce.
func (s *Service) RegisterAsset(c *txn.Call, symbol string, decimals uint8) (*model.Asset, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return nil, model.ErrInvalidSymbol
	}
	addr, err := c.CreateAddress()
	if err != nil {
		return nil, err
	}
	if _, err := c.Store.GetAsset(c.Context(), addr); err == nil {
		return nil, model.ErrAssetExists
	}

	asset := &model.Asset{
		Address:  addr,
		Symbol:   symbol,
		Decimals: decimals,
		Minter:   c.Sender,
	}
	if err := c.Store.SaveAsset(c.Context(), asset); err != nil {
		return nil, err
	}

	c.Emit(addr, model.EventAssetRegistered, model.AssetPayload{Asset: addr, Symbol: symbol})
	s.logger.Info("asset registered", "asset", addr, "symbol", symbol, "minter", c.Sender)
	return asset, nil
}

// Asset returns a registered asset
func (s *Service) Asset(c *txn.Call, addr model.Address) (*model.Asset, error) {
	return c.Store.GetAsset(c.Context(), addr)
}

// Assets lists every registered asset
func (s *Service) Assets(c *txn.Call) ([]*model.Asset, error) {
	return c.Store.ListAssets(c.Context())
}

// BalanceOf returns the balance of account. Unknown assets read as zero.
func (s *Service) BalanceOf(c *txn.Call, asset, account model.Address) (model.Amount, error) {
	return c.Store.GetBalance(c.Context(), asset, account)
}

// Transfer moves amount of asset from the caller to to. A zero amount is a
// no-op.
func (s *Service) Transfer(c *txn.Call, asset, to model.Address, amount model.Amount) error {
	if to.IsZero() {
		return model.ErrZeroAddress
	}
	if amount == 0 {
		return nil
	}
	if _, err := c.Store.GetAsset(c.Context(), asset); err != nil {
		return err
	}
	if c.Sender == to {
		return nil
	}

	from := c.Sender
	fromBal, err := c.Store.GetBalance(c.Context(), asset, from)
	if err != nil {
		return err
	}
	remaining, err := fromBal.Sub(amount)
	if err != nil {
		return err
	}
	if err := s.credit(c, asset, to, amount); err != nil {
		return err
	}
	if err := c.Store.SetBalance(c.Context(), asset, from, remaining); err != nil {
		return err
	}

	c.Emit(asset, model.EventTransfer, model.TransferPayload{Asset: asset, From: from, To: to, Amount: amount})
	return nil
}

// Mint creates amount of asset at to. Only the asset's minter may mint.
func (s *Service) Mint(c *txn.Call, asset, to model.Address, amount model.Amount) error {
	a, err := c.Store.GetAsset(c.Context(), asset)
	if err != nil {
		return err
	}
	if a.Minter != c.Sender {
		return model.ErrNotMinter
	}
	if to.IsZero() {
		return model.ErrZeroAddress
	}
	if amount == 0 {
		return model.ErrInvalidAmount
	}
	if err := s.credit(c, asset, to, amount); err != nil {
		return err
	}

	c.Emit(asset, model.EventTransfer, model.TransferPayload{Asset: asset, From: model.ZeroAddress, To: to, Amount: amount})
	return nil
}

func (s *Service) credit(c *txn.Call, asset, to model.Address, amount model.Amount) error {
	bal, err := c.Store.GetBalance(c.Context(), asset, to)
	if err != nil {
		return err
	}
	next, err := bal.Add(amount)
	if err != nil {
		return err
	}
	return c.Store.SetBalance(c.Context(), asset, to, next)
}
