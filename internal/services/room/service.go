// Package room implements the per-session escrow. Only the rule that
// created a room may move its funds or change its membership, and an ended
// or closed room accepts no further changes.
package room

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/mcoot/plyr-settlement/internal/derive"
	"github.com/mcoot/plyr-settlement/internal/model"
	"github.com/mcoot/plyr-settlement/internal/services/ledger"
	"github.com/mcoot/plyr-settlement/internal/txn"
)

// Service manages room escrows
type Service struct {
	ledger *ledger.Service
	logger *slog.Logger
}

// New creates a new room service
func New(ledger *ledger.Service, logger *slog.Logger) *Service {
	return &Service{
		ledger: ledger,
		logger: logger,
	}
}

// AssetBalance is one asset held by a room
type AssetBalance struct {
	Asset   model.Address
	Balance model.Amount
}

// Deploy materializes the room numbered roomNumber of gameID, owned by the
// calling rule, at its derived address
func (s *Service) Deploy(c *txn.Call, gameID string, roomNumber uint64, duration time.Duration) (*model.Room, error) {
	owner := c.Sender
	addr := derive.Room(owner, gameID, roomNumber)

	if _, err := c.Store.GetRoom(c.Context(), addr); err == nil {
		return nil, fmt.Errorf("%w: room %s", model.ErrIdentifierCollision, addr)
	} else if !errors.Is(err, model.ErrRoomNotFound) {
		return nil, err
	}
	if _, err := c.Store.GetAccount(c.Context(), addr); err == nil {
		return nil, fmt.Errorf("%w: account %s", model.ErrIdentifierCollision, addr)
	} else if !errors.Is(err, model.ErrAccountNotFound) {
		return nil, err
	}

	prefunded, err := s.ledger.BalanceOf(c, model.NativeAsset, addr)
	if err != nil {
		return nil, err
	}
	account := &model.Account{
		Address:         addr,
		Owner:           owner,
		Kind:            model.AccountKindRoom,
		PrefundedNative: prefunded,
		CreatedAt:       c.Now,
	}
	if err := c.Store.SaveAccount(c.Context(), account); err != nil {
		return nil, err
	}

	room := &model.Room{
		Address:    addr,
		Owner:      owner,
		GameID:     gameID,
		RoomNumber: roomNumber,
		Deadline:   c.Now.Add(duration),
		Members:    []string{},
		Tokens:     []model.Address{},
		CreatedAt:  c.Now,
	}
	if err := c.Store.SaveRoom(c.Context(), room); err != nil {
		return nil, err
	}
	return room, nil
}

// Get returns the room at addr
func (s *Service) Get(c *txn.Call, addr model.Address) (*model.Room, error) {
	return c.Store.GetRoom(c.Context(), addr)
}

// Tokens returns the registered assets in registration order
func (s *Service) Tokens(c *txn.Call, addr model.Address) ([]model.Address, error) {
	room, err := s.Get(c, addr)
	if err != nil {
		return nil, err
	}
	return room.Tokens, nil
}

// IsJoined reports whether username is a member
func (s *Service) IsJoined(c *txn.Call, addr model.Address, username string) (bool, error) {
	room, err := s.Get(c, addr)
	if err != nil {
		return false, err
	}
	return room.IsJoined(username), nil
}

// IsEnded reports whether the room is terminal
func (s *Service) IsEnded(c *txn.Call, addr model.Address) (bool, error) {
	room, err := s.Get(c, addr)
	if err != nil {
		return false, err
	}
	return room.Ended || room.Closed, nil
}

// Balances returns the native balance followed by every registered token
func (s *Service) Balances(c *txn.Call, addr model.Address) ([]AssetBalance, error) {
	room, err := s.Get(c, addr)
	if err != nil {
		return nil, err
	}
	assets := []model.Address{model.NativeAsset}
	for _, t := range room.Tokens {
		if t != model.NativeAsset {
			assets = append(assets, t)
		}
	}

	balances := make([]AssetBalance, 0, len(assets))
	for _, asset := range assets {
		bal, err := s.ledger.BalanceOf(c, asset, addr)
		if err != nil {
			return nil, err
		}
		balances = append(balances, AssetBalance{Asset: asset, Balance: bal})
	}
	return balances, nil
}

// RegisterToken adds asset to the room's token list. Registering twice is a
// no-op.
func (s *Service) RegisterToken(c *txn.Call, addr, asset model.Address) error {
	room, err := s.requireLive(c, addr)
	if err != nil {
		return err
	}
	if room.HasToken(asset) {
		return nil
	}

	room.Tokens = append(room.Tokens, asset)
	if err := c.Store.SaveRoom(c.Context(), room); err != nil {
		return err
	}

	c.Emit(room.Owner, model.EventTokenRegistered, model.TokenRegisteredPayload{Room: addr, Asset: asset})
	return nil
}

// Join adds usernames to the room. Existing members are skipped.
func (s *Service) Join(c *txn.Call, addr model.Address, usernames []string) error {
	room, err := s.requireLive(c, addr)
	if err != nil {
		return err
	}

	var joined []string
	for _, u := range usernames {
		if room.IsJoined(u) || slices.Contains(joined, u) {
			continue
		}
		joined = append(joined, u)
	}
	if len(joined) == 0 {
		return nil
	}

	room.Members = append(room.Members, joined...)
	if err := c.Store.SaveRoom(c.Context(), room); err != nil {
		return err
	}

	for _, u := range joined {
		c.Emit(room.Owner, model.EventPlayerJoined, model.PlayerPayload{GameID: room.GameID, RoomNumber: room.RoomNumber, Username: u})
	}
	return nil
}

// Leave removes usernames from the room. Non-members are skipped.
func (s *Service) Leave(c *txn.Call, addr model.Address, usernames []string) error {
	room, err := s.requireLive(c, addr)
	if err != nil {
		return err
	}

	var left []string
	room.Members = slices.DeleteFunc(room.Members, func(m string) bool {
		if slices.Contains(usernames, m) {
			left = append(left, m)
			return true
		}
		return false
	})
	if len(left) == 0 {
		return nil
	}

	if err := c.Store.SaveRoom(c.Context(), room); err != nil {
		return err
	}

	for _, u := range left {
		c.Emit(room.Owner, model.EventPlayerLeft, model.PlayerPayload{GameID: room.GameID, RoomNumber: room.RoomNumber, Username: u})
	}
	return nil
}

// NativeTransfer sends native currency out of the room
func (s *Service) NativeTransfer(c *txn.Call, addr, to model.Address, amount model.Amount) error {
	return s.Transfer(c, addr, model.NativeAsset, to, amount)
}

// Transfer sends amount of asset out of the room
func (s *Service) Transfer(c *txn.Call, addr, asset, to model.Address, amount model.Amount) error {
	if _, err := s.requireLive(c, addr); err != nil {
		return err
	}
	return s.ledger.Transfer(c.As(addr), asset, to, amount)
}

// End finishes the room voluntarily. Every registered asset must be fully
// drained first.
func (s *Service) End(c *txn.Call, addr model.Address) error {
	room, err := s.requireLive(c, addr)
	if err != nil {
		return err
	}

	for _, asset := range room.Tokens {
		bal, err := s.ledger.BalanceOf(c, asset, addr)
		if err != nil {
			return err
		}
		if bal == 0 {
			continue
		}
		if asset == model.NativeAsset {
			return model.ErrNativeCoinBalanceNotZero
		}
		return fmt.Errorf("%w: %s holds %d", model.ErrTokenBalanceNotZero, asset, bal)
	}

	room.Ended = true
	room.EndedAt = c.Now
	if err := c.Store.SaveRoom(c.Context(), room); err != nil {
		return err
	}

	c.Emit(room.Owner, model.EventGameEnded, model.RoomEndedPayload{GameID: room.GameID, RoomNumber: room.RoomNumber})
	return nil
}

// Close force-finishes the room once its deadline has passed, sweeping the
// native balance and every registered asset to recipient
func (s *Service) Close(c *txn.Call, addr, recipient model.Address) error {
	room, err := s.requireLive(c, addr)
	if err != nil {
		return err
	}
	if c.Now.Before(room.Deadline) {
		return model.ErrGameNotEnded
	}
	if recipient.IsZero() {
		return model.ErrZeroAddress
	}

	assets := []model.Address{model.NativeAsset}
	for _, t := range room.Tokens {
		if t != model.NativeAsset {
			assets = append(assets, t)
		}
	}
	for _, asset := range assets {
		bal, err := s.ledger.BalanceOf(c, asset, addr)
		if err != nil {
			return err
		}
		if bal == 0 {
			continue
		}
		if err := s.ledger.Transfer(c.As(addr), asset, recipient, bal); err != nil {
			return fmt.Errorf("sweep %s: %w", asset, err)
		}
	}

	room.Ended = true
	room.Closed = true
	room.ClosedTo = recipient
	room.EndedAt = c.Now
	if err := c.Store.SaveRoom(c.Context(), room); err != nil {
		return err
	}

	c.Emit(room.Owner, model.EventGameClosed, model.RoomEndedPayload{GameID: room.GameID, RoomNumber: room.RoomNumber, Recipient: recipient})
	s.logger.Info("room closed", "room", addr, "game_id", room.GameID, "room_number", room.RoomNumber, "recipient", recipient)
	return nil
}

func (s *Service) requireLive(c *txn.Call, addr model.Address) (*model.Room, error) {
	room, err := s.Get(c, addr)
	if err != nil {
		return nil, err
	}
	if c.Sender != room.Owner {
		return nil, model.ErrNotOwner
	}
	if room.Ended || room.Closed {
		return nil, model.ErrRoomEnded
	}
	return room, nil
}
