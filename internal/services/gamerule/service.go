// Package gamerule is the first game rule module. It numbers and creates
// rooms per game, manages membership, and settles payments and earnings
// between player mirrors and room escrows through the router.
package gamerule

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mcoot/plyr-settlement/internal/contracts"
	"github.com/mcoot/plyr-settlement/internal/derive"
	"github.com/mcoot/plyr-settlement/internal/model"
	"github.com/mcoot/plyr-settlement/internal/services/ledger"
	"github.com/mcoot/plyr-settlement/internal/services/room"
	"github.com/mcoot/plyr-settlement/internal/txn"
)

// LogicName identifies this implementation in the proxy registry
const LogicName = "gamerule/v1"

// MaxGameIDLength bounds game identifiers in bytes
const MaxGameIDLength = 64

// InitParams is the JSON init data accepted by Initialize
type InitParams struct {
	Owner     model.Address `json:"owner"`
	Router    model.Address `json:"router"`
	FeeTo     model.Address `json:"feeTo"`
	Directory model.Address `json:"directory"`
	Operator  model.Address `json:"operator,omitempty"`
}

// Service is the game rule logic
type Service struct {
	resolver contracts.Resolver
	rooms    *room.Service
	ledger   *ledger.Service
	logger   *slog.Logger
}

var _ contracts.GameRule = (*Service)(nil)

// New creates a new game rule service
func New(resolver contracts.Resolver, rooms *room.Service, ledger *ledger.Service, logger *slog.Logger) *Service {
	return &Service{
		resolver: resolver,
		rooms:    rooms,
		ledger:   ledger,
		logger:   logger,
	}
}

func (s *Service) Name() string          { return LogicName }
func (s *Service) Kind() model.LogicKind { return model.LogicKindGameRule }

// Initialize binds the rule at self to its owner, router, directory and fee
// recipient, with the default platform fee
func (s *Service) Initialize(c *txn.Call, self model.Address, initData []byte) error {
	var params InitParams
	if err := json.Unmarshal(initData, &params); err != nil {
		return fmt.Errorf("decode game rule init: %w", err)
	}
	if params.Owner.IsZero() || params.Router.IsZero() || params.FeeTo.IsZero() || params.Directory.IsZero() {
		return model.ErrZeroAddress
	}

	if existing, err := c.Store.GetGameRule(c.Context(), self); err == nil && existing.Initialized {
		return model.ErrAlreadyInitialized
	} else if err != nil && !errors.Is(err, model.ErrGameRuleNotFound) {
		return err
	}

	g := &model.GameRule{
		Address:     self,
		Owner:       params.Owner,
		Router:      params.Router,
		Directory:   params.Directory,
		FeeTo:       params.FeeTo,
		PlatformFee: model.DefaultPlatformFee,
		Operators:   make(map[model.Address]bool),
		RoomCounts:  make(map[string]uint64),
		Initialized: true,
	}
	if !params.Operator.IsZero() {
		g.Operators[params.Operator] = true
	}
	if err := c.Store.SaveGameRule(c.Context(), g); err != nil {
		return err
	}

	c.Emit(self, model.EventInitialized, model.OwnershipTransferredPayload{NewOwner: params.Owner})
	return nil
}

// State returns the rule's persisted state
func (s *Service) State(c *txn.Call, self model.Address) (*model.GameRule, error) {
	g, err := c.Store.GetGameRule(c.Context(), self)
	if err != nil {
		return nil, err
	}
	if !g.Initialized {
		return nil, model.ErrNotInitialized
	}
	return g, nil
}

// Create opens the next room of gameID. Room numbers start at 1 and are never
// reused.
func (s *Service) Create(c *txn.Call, self model.Address, gameID string, duration time.Duration) (*model.Room, error) {
	g, err := s.requireOperator(c, self)
	if err != nil {
		return nil, err
	}
	if err := validateGameID(gameID); err != nil {
		return nil, err
	}
	if duration <= 0 {
		return nil, model.ErrInvalidDuration
	}

	roomNumber := g.RoomCounts[gameID] + 1
	g.RoomCounts[gameID] = roomNumber

	r, err := s.rooms.Deploy(c.As(self), gameID, roomNumber, duration)
	if err != nil {
		return nil, err
	}
	if err := c.Store.SaveGameRule(c.Context(), g); err != nil {
		return nil, err
	}

	c.Emit(self, model.EventGameRoomCreated, model.GameRoomCreatedPayload{
		GameID:     gameID,
		RoomNumber: roomNumber,
		Room:       r.Address,
		Deadline:   r.Deadline,
	})
	s.logger.Info("game room created", "rule", self, "game_id", gameID, "room_number", roomNumber, "room", r.Address)
	return r, nil
}

// Join adds usernames to a room
func (s *Service) Join(c *txn.Call, self model.Address, gameID string, roomNumber uint64, usernames []string) error {
	if _, err := s.requireOperator(c, self); err != nil {
		return err
	}
	if err := validateUsernames(usernames); err != nil {
		return err
	}
	r, err := s.roomAt(c, self, gameID, roomNumber)
	if err != nil {
		return err
	}
	return s.rooms.Join(c.As(self), r.Address, usernames)
}

// Leave removes usernames from a room
func (s *Service) Leave(c *txn.Call, self model.Address, gameID string, roomNumber uint64, usernames []string) error {
	if _, err := s.requireOperator(c, self); err != nil {
		return err
	}
	if err := validateUsernames(usernames); err != nil {
		return err
	}
	r, err := s.roomAt(c, self, gameID, roomNumber)
	if err != nil {
		return err
	}
	return s.rooms.Leave(c.As(self), r.Address, usernames)
}

// Pay moves amount of asset from username's mirror into the room
func (s *Service) Pay(c *txn.Call, self model.Address, gameID string, roomNumber uint64, username string, asset model.Address, amount model.Amount) error {
	g, err := s.requireOperator(c, self)
	if err != nil {
		return err
	}
	rtr, err := s.allowedRouter(c, g)
	if err != nil {
		return err
	}
	r, err := s.liveMember(c, self, gameID, roomNumber, username)
	if err != nil {
		return err
	}
	if amount == 0 {
		return model.ErrInvalidAmount
	}
	if err := rtr.TransferFromMirror(c.As(self), g.Router, username, asset, r.Address, amount); err != nil {
		return err
	}
	if err := s.rooms.RegisterToken(c.As(self), r.Address, asset); err != nil {
		return err
	}

	c.Emit(self, model.EventPaid, model.SettlementPayload{
		GameID:     gameID,
		RoomNumber: roomNumber,
		Username:   username,
		Asset:      asset,
		Amount:     amount,
	})
	return nil
}

// Earn pays amount of asset out of the room to username's mirror, less the
// platform fee which goes to the fee recipient
func (s *Service) Earn(c *txn.Call, self model.Address, gameID string, roomNumber uint64, username string, asset model.Address, amount model.Amount) error {
	g, err := s.requireOperator(c, self)
	if err != nil {
		return err
	}
	rtr, err := s.allowedRouter(c, g)
	if err != nil {
		return err
	}
	r, err := s.liveMember(c, self, gameID, roomNumber, username)
	if err != nil {
		return err
	}
	if amount == 0 {
		return model.ErrInvalidAmount
	}
	mirrorAddr, err := rtr.ResolveMirror(c.As(self), g.Router, username)
	if err != nil {
		return err
	}

	held, err := s.ledger.BalanceOf(c, asset, r.Address)
	if err != nil {
		return err
	}
	if held < amount {
		return fmt.Errorf("%w: room holds %d, earning %d", model.ErrInsufficientBalance, held, amount)
	}

	fee, payout := SplitFee(amount, g.PlatformFee)
	if fee > 0 {
		if err := s.rooms.Transfer(c.As(self), r.Address, asset, g.FeeTo, fee); err != nil {
			return fmt.Errorf("pay platform fee: %w", err)
		}
	}
	if err := s.rooms.Transfer(c.As(self), r.Address, asset, mirrorAddr, payout); err != nil {
		return fmt.Errorf("pay earnings: %w", err)
	}

	c.Emit(self, model.EventEarned, model.SettlementPayload{
		GameID:     gameID,
		RoomNumber: roomNumber,
		Username:   username,
		Asset:      asset,
		Amount:     payout,
		Fee:        fee,
	})
	return nil
}

// SplitFee divides amount into the platform fee (truncated) and the payout
func SplitFee(amount model.Amount, platformFee uint64) (fee, payout model.Amount) {
	fee = amount.Percent(platformFee)
	return fee, amount - fee
}

// End finishes a drained room
func (s *Service) End(c *txn.Call, self model.Address, gameID string, roomNumber uint64) error {
	if _, err := s.requireOperator(c, self); err != nil {
		return err
	}
	r, err := s.roomAt(c, self, gameID, roomNumber)
	if err != nil {
		return err
	}
	return s.rooms.End(c.As(self), r.Address)
}

// Close force-finishes a room past its deadline, sweeping its funds to
// recipient
func (s *Service) Close(c *txn.Call, self model.Address, gameID string, roomNumber uint64, recipient model.Address) error {
	if _, err := s.requireOperator(c, self); err != nil {
		return err
	}
	r, err := s.roomAt(c, self, gameID, roomNumber)
	if err != nil {
		return err
	}
	return s.rooms.Close(c.As(self), r.Address, recipient)
}

// ConfigOperator grants or revokes the rule's operator role
func (s *Service) ConfigOperator(c *txn.Call, self, operator model.Address, enabled bool) error {
	g, err := s.requireOwner(c, self)
	if err != nil {
		return err
	}
	if operator.IsZero() {
		return model.ErrZeroAddress
	}

	if enabled {
		g.Operators[operator] = true
	} else {
		delete(g.Operators, operator)
	}
	if err := c.Store.SaveGameRule(c.Context(), g); err != nil {
		return err
	}

	c.Emit(self, model.EventOperatorConfigured, model.ConfiguredPayload{Subject: operator, Enabled: enabled})
	return nil
}

// ConfigPlatformFee sets the fee percentage taken from earnings
func (s *Service) ConfigPlatformFee(c *txn.Call, self model.Address, percent uint64) error {
	g, err := s.requireOwner(c, self)
	if err != nil {
		return err
	}
	if percent > model.MaxPlatformFee {
		return fmt.Errorf("%w: %d", model.ErrInvalidFee, percent)
	}

	g.PlatformFee = percent
	if err := c.Store.SaveGameRule(c.Context(), g); err != nil {
		return err
	}

	c.Emit(self, model.EventPlatformFeeChanged, model.FeePayload{PlatformFee: percent, FeeTo: g.FeeTo})
	return nil
}

// ConfigFeeTo sets the platform fee recipient
func (s *Service) ConfigFeeTo(c *txn.Call, self, feeTo model.Address) error {
	g, err := s.requireOwner(c, self)
	if err != nil {
		return err
	}
	if feeTo.IsZero() {
		return model.ErrZeroAddress
	}

	g.FeeTo = feeTo
	if err := c.Store.SaveGameRule(c.Context(), g); err != nil {
		return err
	}

	c.Emit(self, model.EventFeeToChanged, model.FeePayload{PlatformFee: g.PlatformFee, FeeTo: feeTo})
	return nil
}

// TransferOwnership hands rule configuration to newOwner
func (s *Service) TransferOwnership(c *txn.Call, self, newOwner model.Address) error {
	g, err := s.requireOwner(c, self)
	if err != nil {
		return err
	}
	if newOwner.IsZero() {
		return model.ErrZeroAddress
	}

	previous := g.Owner
	g.Owner = newOwner
	if err := c.Store.SaveGameRule(c.Context(), g); err != nil {
		return err
	}

	c.Emit(self, model.EventOwnershipTransferred, model.OwnershipTransferredPayload{PreviousOwner: previous, NewOwner: newOwner})
	return nil
}

// ComputeRoomAddress derives a room's address whether or not it exists
func (s *Service) ComputeRoomAddress(c *txn.Call, self model.Address, gameID string, roomNumber uint64) (model.Address, error) {
	if err := validateGameID(gameID); err != nil {
		return model.Address{}, err
	}
	return derive.Room(self, gameID, roomNumber), nil
}

// GameRoomCount returns how many rooms gameID has had
func (s *Service) GameRoomCount(c *txn.Call, self model.Address, gameID string) (uint64, error) {
	g, err := s.State(c, self)
	if err != nil {
		return 0, err
	}
	return g.RoomCounts[gameID], nil
}

// Room returns a room of gameID
func (s *Service) Room(c *txn.Call, self model.Address, gameID string, roomNumber uint64) (*model.Room, error) {
	return s.roomAt(c, self, gameID, roomNumber)
}

func (s *Service) roomAt(c *txn.Call, self model.Address, gameID string, roomNumber uint64) (*model.Room, error) {
	if err := validateGameID(gameID); err != nil {
		return nil, err
	}
	r, err := s.rooms.Get(c, derive.Room(self, gameID, roomNumber))
	if err != nil {
		return nil, fmt.Errorf("%s #%d: %w", gameID, roomNumber, err)
	}
	return r, nil
}

// allowedRouter resolves the rule's router and fails with ErrRuleNotAllowed
// unless self is whitelisted there. Fund movements check it before anything
// about the room or the user.
func (s *Service) allowedRouter(c *txn.Call, g *model.GameRule) (contracts.Router, error) {
	rtr, err := s.resolver.Router(c, g.Router)
	if err != nil {
		return nil, err
	}
	ok, err := rtr.IsRuleAllowed(c.As(g.Address), g.Router, g.Address)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, model.ErrRuleNotAllowed
	}
	return rtr, nil
}

func (s *Service) liveMember(c *txn.Call, self model.Address, gameID string, roomNumber uint64, username string) (*model.Room, error) {
	r, err := s.roomAt(c, self, gameID, roomNumber)
	if err != nil {
		return nil, err
	}
	if r.Ended || r.Closed {
		return nil, model.ErrRoomEnded
	}
	if !r.IsJoined(username) {
		return nil, fmt.Errorf("%w: %q", model.ErrNotJoined, username)
	}
	return r, nil
}

func (s *Service) requireOwner(c *txn.Call, self model.Address) (*model.GameRule, error) {
	g, err := s.State(c, self)
	if err != nil {
		return nil, err
	}
	if c.Sender != g.Owner {
		return nil, model.ErrNotOwner
	}
	return g, nil
}

func (s *Service) requireOperator(c *txn.Call, self model.Address) (*model.GameRule, error) {
	g, err := s.State(c, self)
	if err != nil {
		return nil, err
	}
	if !g.Operators[c.Sender] {
		return nil, model.ErrNotOperator
	}
	return g, nil
}

func validateGameID(gameID string) error {
	if gameID == "" || len(gameID) > MaxGameIDLength {
		return fmt.Errorf("%w: %q", model.ErrInvalidGameID, gameID)
	}
	return nil
}

func validateUsernames(usernames []string) error {
	for _, u := range usernames {
		if u == "" {
			return model.ErrInvalidUsername
		}
	}
	return nil
}
