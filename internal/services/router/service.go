// Package router is the access-control point of the platform. It holds the
// administrator and operator roles, the rule whitelist, and gates every fund
// movement a rule requests.
package router

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mcoot/plyr-settlement/internal/contracts"
	"github.com/mcoot/plyr-settlement/internal/model"
	"github.com/mcoot/plyr-settlement/internal/txn"
)

// LogicName identifies this implementation in the proxy registry
const LogicName = "router/v1"

// InitParams is the JSON init data accepted by Initialize
type InitParams struct {
	Owner     model.Address `json:"owner"`
	Operator  model.Address `json:"operator,omitempty"`
	Directory model.Address `json:"directory"`
}

// Service is the router logic
type Service struct {
	resolver contracts.Resolver
	logger   *slog.Logger
}

var _ contracts.Router = (*Service)(nil)

// New creates a new router service. The resolver locates the directory logic
// behind the router's directory address on every call.
func New(resolver contracts.Resolver, logger *slog.Logger) *Service {
	return &Service{
		resolver: resolver,
		logger:   logger,
	}
}

func (s *Service) Name() string          { return LogicName }
func (s *Service) Kind() model.LogicKind { return model.LogicKindRouter }

// Initialize sets the administrator, an optional first operator, and the
// directory the router delegates to
func (s *Service) Initialize(c *txn.Call, self model.Address, initData []byte) error {
	var params InitParams
	if err := json.Unmarshal(initData, &params); err != nil {
		return fmt.Errorf("decode router init: %w", err)
	}
	if params.Owner.IsZero() || params.Directory.IsZero() {
		return model.ErrZeroAddress
	}

	if existing, err := c.Store.GetRouter(c.Context(), self); err == nil && existing.Initialized {
		return model.ErrAlreadyInitialized
	} else if err != nil && !errors.Is(err, model.ErrRouterNotFound) {
		return err
	}

	r := &model.Router{
		Address:     self,
		Owner:       params.Owner,
		Directory:   params.Directory,
		Operators:   make(map[model.Address]bool),
		Rules:       make(map[model.Address]bool),
		Initialized: true,
	}
	if !params.Operator.IsZero() {
		r.Operators[params.Operator] = true
	}
	if err := c.Store.SaveRouter(c.Context(), r); err != nil {
		return err
	}

	c.Emit(self, model.EventInitialized, model.OwnershipTransferredPayload{NewOwner: params.Owner})
	return nil
}

// State returns the router's persisted state
func (s *Service) State(c *txn.Call, self model.Address) (*model.Router, error) {
	r, err := c.Store.GetRouter(c.Context(), self)
	if err != nil {
		return nil, err
	}
	if !r.Initialized {
		return nil, model.ErrNotInitialized
	}
	return r, nil
}

// ConfigGameRule adds a whitelist entry. Entries are write-once: configuring
// a rule that already has an entry fails, whatever its flag.
func (s *Service) ConfigGameRule(c *txn.Call, self, rule model.Address, enabled bool) error {
	r, err := s.requireOwner(c, self)
	if err != nil {
		return err
	}
	if rule.IsZero() {
		return model.ErrZeroAddress
	}
	if _, ok := r.Rules[rule]; ok {
		return model.ErrAlreadyConfigured
	}

	r.Rules[rule] = enabled
	if err := c.Store.SaveRouter(c.Context(), r); err != nil {
		return err
	}

	c.Emit(self, model.EventGameConfigured, model.ConfiguredPayload{Subject: rule, Enabled: enabled})
	s.logger.Info("game rule configured", "router", self, "rule", rule, "enabled", enabled)
	return nil
}

// ConfigOperator grants or revokes the operator role
func (s *Service) ConfigOperator(c *txn.Call, self, operator model.Address, enabled bool) error {
	r, err := s.requireOwner(c, self)
	if err != nil {
		return err
	}
	if operator.IsZero() {
		return model.ErrZeroAddress
	}

	if enabled {
		r.Operators[operator] = true
	} else {
		delete(r.Operators, operator)
	}
	if err := c.Store.SaveRouter(c.Context(), r); err != nil {
		return err
	}

	c.Emit(self, model.EventOperatorConfigured, model.ConfiguredPayload{Subject: operator, Enabled: enabled})
	return nil
}

// TransferOwnership hands the administrator role to newOwner
func (s *Service) TransferOwnership(c *txn.Call, self, newOwner model.Address) error {
	r, err := s.requireOwner(c, self)
	if err != nil {
		return err
	}
	if newOwner.IsZero() {
		return model.ErrZeroAddress
	}

	previous := r.Owner
	r.Owner = newOwner
	if err := c.Store.SaveRouter(c.Context(), r); err != nil {
		return err
	}

	c.Emit(self, model.EventOwnershipTransferred, model.OwnershipTransferredPayload{PreviousOwner: previous, NewOwner: newOwner})
	return nil
}

// CreateUser registers username in the directory
func (s *Service) CreateUser(c *txn.Call, self, owner model.Address, username string, tier uint8) (*model.User, error) {
	r, err := s.requireOperator(c, self)
	if err != nil {
		return nil, err
	}
	dir, err := s.resolver.Directory(c, r.Directory)
	if err != nil {
		return nil, err
	}
	return dir.CreateUser(c.As(self), r.Directory, owner, username, tier)
}

// CreateUserWithMirror registers username against an existing mirror
func (s *Service) CreateUserWithMirror(c *txn.Call, self, owner, mirror model.Address, username string, tier uint8) (*model.User, error) {
	r, err := s.requireOperator(c, self)
	if err != nil {
		return nil, err
	}
	dir, err := s.resolver.Directory(c, r.Directory)
	if err != nil {
		return nil, err
	}
	return dir.CreateUserWithMirror(c.As(self), r.Directory, owner, mirror, username, tier)
}

// DeleteUser removes username from the directory
func (s *Service) DeleteUser(c *txn.Call, self model.Address, username string) error {
	r, err := s.requireOperator(c, self)
	if err != nil {
		return err
	}
	dir, err := s.resolver.Directory(c, r.Directory)
	if err != nil {
		return err
	}
	return dir.DeleteUser(c.As(self), r.Directory, username)
}

// ComputeMirrorAddress derives username's mirror without creating anything
func (s *Service) ComputeMirrorAddress(c *txn.Call, self model.Address, username string) (model.Address, error) {
	r, err := s.State(c, self)
	if err != nil {
		return model.Address{}, err
	}
	dir, err := s.resolver.Directory(c, r.Directory)
	if err != nil {
		return model.Address{}, err
	}
	return dir.DeriveMirror(c.As(self), r.Directory, username)
}

// HasRole reports whether addr holds role
func (s *Service) HasRole(c *txn.Call, self model.Address, role model.Role, addr model.Address) (bool, error) {
	r, err := s.State(c, self)
	if err != nil {
		return false, err
	}
	switch role {
	case model.RoleAdministrator:
		return r.Owner == addr, nil
	case model.RoleOperator:
		return r.Operators[addr], nil
	default:
		return false, nil
	}
}

// IsRuleAllowed reports whether rule has an enabled whitelist entry
func (s *Service) IsRuleAllowed(c *txn.Call, self, rule model.Address) (bool, error) {
	r, err := s.State(c, self)
	if err != nil {
		return false, err
	}
	return r.Rules[rule], nil
}

// TransferFromMirror moves funds out of username's mirror on behalf of the
// calling rule
func (s *Service) TransferFromMirror(c *txn.Call, self model.Address, username string, asset, to model.Address, amount model.Amount) error {
	r, err := s.requireRule(c, self)
	if err != nil {
		return err
	}
	dir, err := s.resolver.Directory(c, r.Directory)
	if err != nil {
		return err
	}
	return dir.MirrorTransfer(c.As(self), r.Directory, username, asset, to, amount)
}

// ResolveMirror returns the mirror bound to username for the calling rule
func (s *Service) ResolveMirror(c *txn.Call, self model.Address, username string) (model.Address, error) {
	r, err := s.requireRule(c, self)
	if err != nil {
		return model.Address{}, err
	}
	dir, err := s.resolver.Directory(c, r.Directory)
	if err != nil {
		return model.Address{}, err
	}
	user, err := dir.Lookup(c.As(self), r.Directory, username)
	if err != nil {
		return model.Address{}, err
	}
	return user.Mirror, nil
}

func (s *Service) requireOwner(c *txn.Call, self model.Address) (*model.Router, error) {
	r, err := s.State(c, self)
	if err != nil {
		return nil, err
	}
	if c.Sender != r.Owner {
		return nil, model.ErrNotOwner
	}
	return r, nil
}

func (s *Service) requireOperator(c *txn.Call, self model.Address) (*model.Router, error) {
	r, err := s.State(c, self)
	if err != nil {
		return nil, err
	}
	if !r.IsOperatorOrOwner(c.Sender) {
		return nil, model.ErrNotOperator
	}
	return r, nil
}

// requireRule is checked before anything else on fund-moving entry points
func (s *Service) requireRule(c *txn.Call, self model.Address) (*model.Router, error) {
	r, err := s.State(c, self)
	if err != nil {
		return nil, err
	}
	if !r.Rules[c.Sender] {
		return nil, model.ErrRuleNotAllowed
	}
	return r, nil
}
