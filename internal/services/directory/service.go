// Package directory owns the username to mirror account mapping. Mirror
// addresses are derived, so a username's mirror can be funded before the
// user exists and is unchanged by deleting and recreating the user.
package directory

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/mcoot/plyr-settlement/internal/contracts"
	"github.com/mcoot/plyr-settlement/internal/derive"
	"github.com/mcoot/plyr-settlement/internal/model"
	"github.com/mcoot/plyr-settlement/internal/services/mirror"
	"github.com/mcoot/plyr-settlement/internal/txn"
)

// LogicName identifies this implementation in the proxy registry
const LogicName = "directory/v1"

// MaxUsernameLength bounds usernames in bytes
const MaxUsernameLength = 64

// InitParams is the JSON init data accepted by Initialize
type InitParams struct {
	Owner      model.Address `json:"owner"`
	Router     model.Address `json:"router"`
	NameSuffix string        `json:"nameSuffix,omitempty"`
}

// Service is the directory logic
type Service struct {
	mirrors *mirror.Service
	logger  *slog.Logger
}

var _ contracts.Directory = (*Service)(nil)

// New creates a new directory service
func New(mirrors *mirror.Service, logger *slog.Logger) *Service {
	return &Service{
		mirrors: mirrors,
		logger:  logger,
	}
}

func (s *Service) Name() string          { return LogicName }
func (s *Service) Kind() model.LogicKind { return model.LogicKindDirectory }

// Initialize binds the directory at self to its owner and router
func (s *Service) Initialize(c *txn.Call, self model.Address, initData []byte) error {
	var params InitParams
	if err := json.Unmarshal(initData, &params); err != nil {
		return fmt.Errorf("decode directory init: %w", err)
	}
	if params.Owner.IsZero() || params.Router.IsZero() {
		return model.ErrZeroAddress
	}

	if existing, err := c.Store.GetDirectory(c.Context(), self); err == nil && existing.Initialized {
		return model.ErrAlreadyInitialized
	} else if err != nil && !errors.Is(err, model.ErrDirectoryNotFound) {
		return err
	}

	suffix := params.NameSuffix
	if suffix == "" {
		suffix = model.DefaultNameSuffix
	}
	d := &model.Directory{
		Address:     self,
		Owner:       params.Owner,
		Router:      params.Router,
		NameSuffix:  suffix,
		Initialized: true,
	}
	if err := c.Store.SaveDirectory(c.Context(), d); err != nil {
		return err
	}

	c.Emit(self, model.EventInitialized, model.OwnershipTransferredPayload{NewOwner: params.Owner})
	return nil
}

// State returns the directory's persisted state
func (s *Service) State(c *txn.Call, self model.Address) (*model.Directory, error) {
	d, err := c.Store.GetDirectory(c.Context(), self)
	if err != nil {
		return nil, err
	}
	if !d.Initialized {
		return nil, model.ErrNotInitialized
	}
	return d, nil
}

// DeriveMirror computes the mirror address of username. It does not require
// the user to exist.
func (s *Service) DeriveMirror(c *txn.Call, self model.Address, username string) (model.Address, error) {
	d, err := s.State(c, self)
	if err != nil {
		return model.Address{}, err
	}
	if err := validateUsername(username); err != nil {
		return model.Address{}, err
	}
	return derive.Mirror(self, username, d.NameSuffix), nil
}

// CreateUser registers username and materializes its derived mirror
func (s *Service) CreateUser(c *txn.Call, self, owner model.Address, username string, tier uint8) (*model.User, error) {
	d, err := s.authorize(c, self)
	if err != nil {
		return nil, err
	}
	if err := s.ensureAvailable(c, self, username); err != nil {
		return nil, err
	}

	addr := derive.Mirror(self, username, d.NameSuffix)
	if _, err := s.mirrors.Materialize(c.As(self), self, addr); err != nil {
		return nil, fmt.Errorf("materialize mirror for %q: %w", username, err)
	}

	return s.saveUser(c, self, owner, addr, username, tier)
}

// CreateUserWithMirror registers username against an existing mirror of
// this directory, such as one kept after its user was deleted. Only mirrors
// can be linked: any other address, funded or not, is refused so that its
// balance never comes under the directory's control.
func (s *Service) CreateUserWithMirror(c *txn.Call, self, owner, mirrorAddr model.Address, username string, tier uint8) (*model.User, error) {
	if _, err := s.authorize(c, self); err != nil {
		return nil, err
	}
	if mirrorAddr.IsZero() {
		return nil, model.ErrZeroAddress
	}
	if err := s.ensureAvailable(c, self, username); err != nil {
		return nil, err
	}
	acct, err := s.mirrors.Account(c, mirrorAddr)
	if err != nil {
		return nil, fmt.Errorf("link mirror for %q: %w", username, err)
	}
	if acct.Owner != self {
		return nil, fmt.Errorf("link mirror for %q: %w: owned by %s", username, model.ErrIdentifierCollision, acct.Owner)
	}

	return s.saveUser(c, self, owner, mirrorAddr, username, tier)
}

// DeleteUser removes the username record. The mirror and its funds are kept.
// Deleting an unknown username is a no-op.
func (s *Service) DeleteUser(c *txn.Call, self model.Address, username string) error {
	if _, err := s.authorize(c, self); err != nil {
		return err
	}

	user, err := c.Store.GetUser(c.Context(), self, username)
	if errors.Is(err, model.ErrUserNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := c.Store.DeleteUser(c.Context(), self, username); err != nil {
		return err
	}

	c.Emit(self, model.EventUserDeleted, model.UserPayload{Username: username, Mirror: user.Mirror, Owner: user.Owner, Tier: user.Tier})
	s.logger.Info("user deleted", "directory", self, "username", username)
	return nil
}

// Lookup returns the record for username
func (s *Service) Lookup(c *txn.Call, self model.Address, username string) (*model.User, error) {
	if _, err := s.State(c, self); err != nil {
		return nil, err
	}
	return c.Store.GetUser(c.Context(), self, username)
}

// MirrorTransfer moves funds out of username's mirror. Only the bound router
// may call it.
func (s *Service) MirrorTransfer(c *txn.Call, self model.Address, username string, asset, to model.Address, amount model.Amount) error {
	d, err := s.State(c, self)
	if err != nil {
		return err
	}
	if c.Sender != d.Router {
		return model.ErrNotRouter
	}

	user, err := c.Store.GetUser(c.Context(), self, username)
	if err != nil {
		return err
	}
	return s.mirrors.Transfer(c.As(self), user.Mirror, asset, to, amount)
}

func (s *Service) authorize(c *txn.Call, self model.Address) (*model.Directory, error) {
	d, err := s.State(c, self)
	if err != nil {
		return nil, err
	}
	if c.Sender != d.Router && c.Sender != d.Owner {
		return nil, model.ErrNotRouter
	}
	return d, nil
}

func (s *Service) ensureAvailable(c *txn.Call, self model.Address, username string) error {
	if err := validateUsername(username); err != nil {
		return err
	}
	_, err := c.Store.GetUser(c.Context(), self, username)
	if err == nil {
		return fmt.Errorf("%w: %q", model.ErrAlreadyExists, username)
	}
	if !errors.Is(err, model.ErrUserNotFound) {
		return err
	}
	return nil
}

func (s *Service) saveUser(c *txn.Call, self, owner, mirrorAddr model.Address, username string, tier uint8) (*model.User, error) {
	user := &model.User{
		Directory: self,
		Username:  username,
		Mirror:    mirrorAddr,
		Owner:     owner,
		Tier:      tier,
		CreatedAt: c.Now,
	}
	if err := c.Store.SaveUser(c.Context(), user); err != nil {
		return nil, err
	}

	c.Emit(self, model.EventUserCreated, model.UserPayload{Username: username, Mirror: mirrorAddr, Owner: owner, Tier: tier})
	s.logger.Info("user created", "directory", self, "username", username, "mirror", mirrorAddr)
	return user, nil
}

func validateUsername(username string) error {
	if username == "" || len(username) > MaxUsernameLength || !utf8.ValidString(username) {
		return fmt.Errorf("%w: %q", model.ErrInvalidUsername, username)
	}
	if strings.TrimSpace(username) != username {
		return fmt.Errorf("%w: surrounding whitespace", model.ErrInvalidUsername)
	}
	return nil
}
