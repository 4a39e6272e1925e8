// Package mirror manages the escrow accounts bound to usernames. A mirror
// only sends funds when commanded by its owning directory.
package mirror

import (
	"errors"
	"log/slog"

	"github.com/mcoot/plyr-settlement/internal/model"
	"github.com/mcoot/plyr-settlement/internal/services/ledger"
	"github.com/mcoot/plyr-settlement/internal/txn"
)

// Service materializes mirror accounts and moves their funds
type Service struct {
	ledger *ledger.Service
	logger *slog.Logger
}

// New creates a new mirror service
func New(ledger *ledger.Service, logger *slog.Logger) *Service {
	return &Service{
		ledger: ledger,
		logger: logger,
	}
}

// Materialize records the account at addr as a mirror owned by owner. Funds
// already held at addr are kept and noted on the record. Materializing an
// existing mirror of the same owner returns it unchanged.
func (s *Service) Materialize(c *txn.Call, owner, addr model.Address) (*model.Account, error) {
	existing, err := c.Store.GetAccount(c.Context(), addr)
	switch {
	case err == nil:
		if existing.Kind != model.AccountKindMirror || existing.Owner != owner {
			return nil, model.ErrIdentifierCollision
		}
		return existing, nil
	case !errors.Is(err, model.ErrAccountNotFound):
		return nil, err
	}

	prefunded, err := s.ledger.BalanceOf(c, model.NativeAsset, addr)
	if err != nil {
		return nil, err
	}

	account := &model.Account{
		Address:         addr,
		Owner:           owner,
		Kind:            model.AccountKindMirror,
		PrefundedNative: prefunded,
		CreatedAt:       c.Now,
	}
	if err := c.Store.SaveAccount(c.Context(), account); err != nil {
		return nil, err
	}

	c.Emit(owner, model.EventMirrorMaterialized, model.MirrorMaterializedPayload{Mirror: addr, PrefundedNative: prefunded})
	if prefunded > 0 {
		s.logger.Info("mirror materialized with existing funds", "mirror", addr, "native", prefunded)
	}
	return account, nil
}

// Transfer sends amount of asset out of the mirror. The caller must be the
// directory owning it.
func (s *Service) Transfer(c *txn.Call, account, asset, to model.Address, amount model.Amount) error {
	acct, err := c.Store.GetAccount(c.Context(), account)
	if err != nil {
		return err
	}
	if acct.Kind != model.AccountKindMirror || acct.Owner != c.Sender {
		return model.ErrNotOwner
	}
	return s.ledger.Transfer(c.As(account), asset, to, amount)
}

// Account returns a materialized mirror. An address without an account is
// ErrAccountNotFound; an account of another kind is ErrIdentifierCollision.
func (s *Service) Account(c *txn.Call, addr model.Address) (*model.Account, error) {
	acct, err := c.Store.GetAccount(c.Context(), addr)
	if err != nil {
		return nil, err
	}
	if acct.Kind != model.AccountKindMirror {
		return nil, model.ErrIdentifierCollision
	}
	return acct, nil
}
