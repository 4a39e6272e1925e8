package router

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/plyr-settlement/internal/contracts"
	"github.com/mcoot/plyr-settlement/internal/model"
	"github.com/mcoot/plyr-settlement/internal/services/directory"
	"github.com/mcoot/plyr-settlement/internal/services/ledger"
	"github.com/mcoot/plyr-settlement/internal/services/mirror"
	"github.com/mcoot/plyr-settlement/internal/storage/memory"
	"github.com/mcoot/plyr-settlement/internal/testutil"
	"github.com/mcoot/plyr-settlement/internal/txn"
)

// directoryOnly resolves every directory address to one logic
type directoryOnly struct {
	dir contracts.Directory
}

func (r directoryOnly) Directory(*txn.Call, model.Address) (contracts.Directory, error) {
	return r.dir, nil
}

func (r directoryOnly) Router(*txn.Call, model.Address) (contracts.Router, error) {
	return nil, model.ErrSlotNotFound
}

func (r directoryOnly) GameRule(*txn.Call, model.Address) (contracts.GameRule, error) {
	return nil, model.ErrSlotNotFound
}

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	ledger  *ledger.Service
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

var (
	self     = model.MustParseAddress("0x00000000000000000000000000000000000000a2")
	dirAddr  = model.MustParseAddress("0x00000000000000000000000000000000000000d1")
	owner    = model.MustParseAddress("0x000000000000000000000000000000000000a0a0")
	operator = model.MustParseAddress("0x000000000000000000000000000000000000b0b0")
	rule     = model.MustParseAddress("0x00000000000000000000000000000000000000c1")
	user1    = model.MustParseAddress("0x0000000000000000000000000000000000000001")
	stranger = model.MustParseAddress("0x00000000000000000000000000000000000000e1")
)

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	logger := testutil.NopLogger()
	s.ledger = ledger.New(logger)
	dir := directory.New(mirror.New(s.ledger, logger), logger)
	s.service = New(directoryOnly{dir: dir}, logger)
	s.ctx = context.Background()

	_, err := s.ledger.RegisterNative(s.call(owner))
	s.Require().NoError(err)

	dirInit, _ := json.Marshal(directory.InitParams{Owner: owner, Router: self})
	s.Require().NoError(dir.Initialize(s.call(owner), dirAddr, dirInit))

	routerInit, _ := json.Marshal(InitParams{Owner: owner, Operator: operator, Directory: dirAddr})
	s.Require().NoError(s.service.Initialize(s.call(owner), self, routerInit))
}

func (s *ServiceSuite) call(sender model.Address) *txn.Call {
	return txn.NewCall(s.ctx, sender, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), s.storage)
}

// Deployment tests

func (s *ServiceSuite) TestInitializeSetsRoles() {
	isAdmin, err := s.service.HasRole(s.call(stranger), self, model.RoleAdministrator, owner)
	s.Require().NoError(err)
	s.True(isAdmin)

	isOperator, err := s.service.HasRole(s.call(stranger), self, model.RoleOperator, operator)
	s.Require().NoError(err)
	s.True(isOperator)

	r, err := s.service.State(s.call(stranger), self)
	s.Require().NoError(err)
	s.Equal(dirAddr, r.Directory)
}

func (s *ServiceSuite) TestInitializeOnlyOnce() {
	data, _ := json.Marshal(InitParams{Owner: stranger, Directory: dirAddr})
	s.ErrorIs(s.service.Initialize(s.call(stranger), self, data), model.ErrAlreadyInitialized)
}

// Game rule configuration tests

func (s *ServiceSuite) TestConfigGameRule() {
	c := s.call(owner)
	s.Require().NoError(s.service.ConfigGameRule(c, self, rule, true))
	s.Require().Len(c.Events(), 1)
	s.Equal(model.EventGameConfigured, c.Events()[0].Type)

	allowed, err := s.service.IsRuleAllowed(s.call(stranger), self, rule)
	s.Require().NoError(err)
	s.True(allowed)
}

func (s *ServiceSuite) TestConfigGameRuleOwnerOnly() {
	s.ErrorIs(s.service.ConfigGameRule(s.call(operator), self, rule, true), model.ErrNotOwner)
}

func (s *ServiceSuite) TestConfigGameRuleZeroAddress() {
	s.ErrorIs(s.service.ConfigGameRule(s.call(owner), self, model.ZeroAddress, true), model.ErrZeroAddress)
}

func (s *ServiceSuite) TestConfigGameRuleFirstWriteWins() {
	s.Require().NoError(s.service.ConfigGameRule(s.call(owner), self, rule, true))
	s.ErrorIs(s.service.ConfigGameRule(s.call(owner), self, rule, false), model.ErrAlreadyConfigured)

	allowed, err := s.service.IsRuleAllowed(s.call(stranger), self, rule)
	s.Require().NoError(err)
	s.True(allowed)
}

func (s *ServiceSuite) TestDisabledEntryCannotBeReenabled() {
	s.Require().NoError(s.service.ConfigGameRule(s.call(owner), self, rule, false))
	s.ErrorIs(s.service.ConfigGameRule(s.call(owner), self, rule, true), model.ErrAlreadyConfigured)
}

// Role management tests

func (s *ServiceSuite) TestConfigOperator() {
	s.Require().NoError(s.service.ConfigOperator(s.call(owner), self, stranger, true))
	ok, _ := s.service.HasRole(s.call(owner), self, model.RoleOperator, stranger)
	s.True(ok)

	s.Require().NoError(s.service.ConfigOperator(s.call(owner), self, stranger, false))
	ok, _ = s.service.HasRole(s.call(owner), self, model.RoleOperator, stranger)
	s.False(ok)

	s.ErrorIs(s.service.ConfigOperator(s.call(operator), self, stranger, true), model.ErrNotOwner)
}

func (s *ServiceSuite) TestTransferOwnership() {
	s.ErrorIs(s.service.TransferOwnership(s.call(owner), self, model.ZeroAddress), model.ErrZeroAddress)
	s.Require().NoError(s.service.TransferOwnership(s.call(owner), self, stranger))

	s.ErrorIs(s.service.ConfigGameRule(s.call(owner), self, rule, true), model.ErrNotOwner)
	s.Require().NoError(s.service.ConfigGameRule(s.call(stranger), self, rule, true))
}

// User management tests

func (s *ServiceSuite) TestCreateUserByOperatorOrOwner() {
	_, err := s.service.CreateUser(s.call(operator), self, user1, "user1", 1)
	s.Require().NoError(err)
	_, err = s.service.CreateUser(s.call(owner), self, user1, "user2", 1)
	s.Require().NoError(err)
}

func (s *ServiceSuite) TestCreateUserByStrangerFails() {
	_, err := s.service.CreateUser(s.call(stranger), self, user1, "user1", 1)
	s.ErrorIs(err, model.ErrNotOperator)
}

func (s *ServiceSuite) TestCreateUserWithMirror() {
	kept, err := s.service.CreateUser(s.call(operator), self, user1, "user1", 1)
	s.Require().NoError(err)
	s.Require().NoError(s.service.DeleteUser(s.call(operator), self, "user1"))

	user, err := s.service.CreateUserWithMirror(s.call(operator), self, user1, kept.Mirror, "renamed", 1)
	s.Require().NoError(err)
	s.Equal(kept.Mirror, user.Mirror)

	_, err = s.service.CreateUserWithMirror(s.call(stranger), self, user1, kept.Mirror, "other", 1)
	s.ErrorIs(err, model.ErrNotOperator)
}

func (s *ServiceSuite) TestDeleteUser() {
	s.Require().NoError(s.service.DeleteUser(s.call(operator), self, "user1"))
	s.ErrorIs(s.service.DeleteUser(s.call(stranger), self, "user1"), model.ErrNotOperator)
}

func (s *ServiceSuite) TestComputeMirrorAddressMatchesCreatedUser() {
	computed, err := s.service.ComputeMirrorAddress(s.call(stranger), self, "user1")
	s.Require().NoError(err)

	user, err := s.service.CreateUser(s.call(operator), self, user1, "user1", 1)
	s.Require().NoError(err)
	s.Equal(computed, user.Mirror)
}

// Rule gate tests

func (s *ServiceSuite) TestFundEntryPointsRequireWhitelistedRule() {
	user, err := s.service.CreateUser(s.call(operator), self, user1, "user1", 1)
	s.Require().NoError(err)
	s.Require().NoError(s.ledger.Mint(s.call(owner), model.NativeAsset, user.Mirror, 100))

	err = s.service.TransferFromMirror(s.call(rule), self, "user1", model.NativeAsset, stranger, 10)
	s.ErrorIs(err, model.ErrRuleNotAllowed)
	_, err = s.service.ResolveMirror(s.call(rule), self, "user1")
	s.ErrorIs(err, model.ErrRuleNotAllowed)

	s.Require().NoError(s.service.ConfigGameRule(s.call(owner), self, rule, true))

	s.Require().NoError(s.service.TransferFromMirror(s.call(rule), self, "user1", model.NativeAsset, stranger, 10))
	resolved, err := s.service.ResolveMirror(s.call(rule), self, "user1")
	s.Require().NoError(err)
	s.Equal(user.Mirror, resolved)

	bal, err := s.ledger.BalanceOf(s.call(owner), model.NativeAsset, stranger)
	s.Require().NoError(err)
	s.Equal(model.Amount(10), bal)
}

func (s *ServiceSuite) TestDisabledRuleIsRejectedRegardlessOfBalance() {
	s.Require().NoError(s.service.ConfigGameRule(s.call(owner), self, rule, false))

	err := s.service.TransferFromMirror(s.call(rule), self, "nobody", model.NativeAsset, stranger, 10)
	s.ErrorIs(err, model.ErrRuleNotAllowed)
}
