package directory

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"pgregory.net/rapid"

	"github.com/mcoot/plyr-settlement/internal/derive"
	"github.com/mcoot/plyr-settlement/internal/model"
	"github.com/mcoot/plyr-settlement/internal/services/ledger"
	"github.com/mcoot/plyr-settlement/internal/services/mirror"
	"github.com/mcoot/plyr-settlement/internal/storage/memory"
	"github.com/mcoot/plyr-settlement/internal/testutil"
	"github.com/mcoot/plyr-settlement/internal/txn"
)

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
	self     = model.MustParseAddress("0x00000000000000000000000000000000000000d1")
	owner    = model.MustParseAddress("0x000000000000000000000000000000000000a0a0")
	router   = model.MustParseAddress("0x00000000000000000000000000000000000000a2")
	stranger = model.MustParseAddress("0x00000000000000000000000000000000000000e1")
	linked   = model.MustParseAddress("0x00000000000000000000000000000000000000f1")
	player   = model.MustParseAddress("0x0000000000000000000000000000000000000b0b")
)

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	logger := testutil.NopLogger()
	s.ledger = ledger.New(logger)
	s.service = New(mirror.New(s.ledger, logger), logger)
	s.ctx = context.Background()

	_, err := s.ledger.RegisterNative(s.call(owner))
	s.Require().NoError(err)
	s.Require().NoError(s.service.Initialize(s.call(owner), self, s.initData(InitParams{Owner: owner, Router: router})))
}

func (s *ServiceSuite) call(sender model.Address) *txn.Call {
	return txn.NewCall(s.ctx, sender, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), s.storage)
}

func (s *ServiceSuite) initData(p InitParams) []byte {
	data, err := json.Marshal(p)
	s.Require().NoError(err)
	return data
}

// Initialize tests

func (s *ServiceSuite) TestInitializeOnlyOnce() {
	err := s.service.Initialize(s.call(owner), self, s.initData(InitParams{Owner: owner, Router: router}))
	s.ErrorIs(err, model.ErrAlreadyInitialized)
}

func (s *ServiceSuite) TestInitializeDefaultsSuffix() {
	d, err := s.service.State(s.call(owner), self)
	s.Require().NoError(err)
	s.Equal(model.DefaultNameSuffix, d.NameSuffix)
	s.Equal(router, d.Router)
}

func (s *ServiceSuite) TestInitializeRejectsZeroRouter() {
	other := model.MustParseAddress("0x00000000000000000000000000000000000000d2")
	err := s.service.Initialize(s.call(owner), other, s.initData(InitParams{Owner: owner}))
	s.ErrorIs(err, model.ErrZeroAddress)
}

// CreateUser tests

func (s *ServiceSuite) TestCreateUserMaterializesDerivedMirror() {
	derived, err := s.service.DeriveMirror(s.call(stranger), self, "player1")
	s.Require().NoError(err)
	s.Equal(derive.Mirror(self, "player1", model.DefaultNameSuffix), derived)

	user, err := s.service.CreateUser(s.call(router), self, player, "player1", 1)
	s.Require().NoError(err)
	s.Equal(derived, user.Mirror)
	s.Equal(player, user.Owner)

	acct, err := s.storage.GetAccount(s.ctx, derived)
	s.Require().NoError(err)
	s.Equal(self, acct.Owner)
}

func (s *ServiceSuite) TestCreateUserReconcilesPrefunding() {
	derived, err := s.service.DeriveMirror(s.call(stranger), self, "player1")
	s.Require().NoError(err)
	s.Require().NoError(s.ledger.Mint(s.call(owner), model.NativeAsset, derived, 40))

	_, err = s.service.CreateUser(s.call(router), self, player, "player1", 1)
	s.Require().NoError(err)

	acct, err := s.storage.GetAccount(s.ctx, derived)
	s.Require().NoError(err)
	s.Equal(model.Amount(40), acct.PrefundedNative)

	bal, err := s.ledger.BalanceOf(s.call(owner), model.NativeAsset, derived)
	s.Require().NoError(err)
	s.Equal(model.Amount(40), bal)
}

func (s *ServiceSuite) TestCreateUserTwiceFails() {
	_, err := s.service.CreateUser(s.call(router), self, player, "player1", 1)
	s.Require().NoError(err)

	_, err = s.service.CreateUser(s.call(owner), self, player, "player1", 1)
	s.ErrorIs(err, model.ErrAlreadyExists)
}

func (s *ServiceSuite) TestCreateUserRequiresRouterOrOwner() {
	_, err := s.service.CreateUser(s.call(stranger), self, player, "player1", 1)
	s.ErrorIs(err, model.ErrNotRouter)
}

func (s *ServiceSuite) TestCreateUserRejectsBadUsernames() {
	for _, name := range []string{"", " padded", string(make([]byte, MaxUsernameLength+1))} {
		_, err := s.service.CreateUser(s.call(router), self, player, name, 1)
		s.ErrorIs(err, model.ErrInvalidUsername, "username %q", name)
	}
}

func (s *ServiceSuite) TestCreateUserWithMirrorRelinksKeptMirror() {
	original, err := s.service.CreateUser(s.call(router), self, player, "player1", 1)
	s.Require().NoError(err)
	s.Require().NoError(s.ledger.Mint(s.call(owner), model.NativeAsset, original.Mirror, 9))
	s.Require().NoError(s.service.DeleteUser(s.call(router), self, "player1"))

	user, err := s.service.CreateUserWithMirror(s.call(router), self, player, original.Mirror, "player2", 2)
	s.Require().NoError(err)
	s.Equal(original.Mirror, user.Mirror)

	bal, err := s.ledger.BalanceOf(s.call(owner), model.NativeAsset, user.Mirror)
	s.Require().NoError(err)
	s.Equal(model.Amount(9), bal)

	_, err = s.service.CreateUserWithMirror(s.call(router), self, player, original.Mirror, "player2", 2)
	s.ErrorIs(err, model.ErrAlreadyExists)

	_, err = s.service.CreateUserWithMirror(s.call(router), self, player, model.ZeroAddress, "player3", 2)
	s.ErrorIs(err, model.ErrZeroAddress)
}

func (s *ServiceSuite) TestCreateUserWithMirrorRefusesPlainAddress() {
	s.Require().NoError(s.ledger.Mint(s.call(owner), model.NativeAsset, linked, 500))

	_, err := s.service.CreateUserWithMirror(s.call(router), self, player, linked, "player1", 2)
	s.ErrorIs(err, model.ErrAccountNotFound)

	_, err = s.storage.GetAccount(s.ctx, linked)
	s.ErrorIs(err, model.ErrAccountNotFound, "no mirror record is created")
	_, err = s.storage.GetUser(s.ctx, self, "player1")
	s.ErrorIs(err, model.ErrUserNotFound)

	bal, err := s.ledger.BalanceOf(s.call(owner), model.NativeAsset, linked)
	s.Require().NoError(err)
	s.Equal(model.Amount(500), bal)
}

func (s *ServiceSuite) TestCreateUserWithMirrorCollidesWithRoom() {
	s.Require().NoError(s.storage.SaveAccount(s.ctx, &model.Account{Address: linked, Owner: stranger, Kind: model.AccountKindRoom}))

	_, err := s.service.CreateUserWithMirror(s.call(router), self, player, linked, "player1", 2)
	s.ErrorIs(err, model.ErrIdentifierCollision)
}

func (s *ServiceSuite) TestCreateUserWithMirrorRefusesForeignMirror() {
	otherDir := model.MustParseAddress("0x00000000000000000000000000000000000000d2")
	s.Require().NoError(s.storage.SaveAccount(s.ctx, &model.Account{Address: linked, Owner: otherDir, Kind: model.AccountKindMirror}))

	_, err := s.service.CreateUserWithMirror(s.call(router), self, player, linked, "player1", 2)
	s.ErrorIs(err, model.ErrIdentifierCollision)
}

// DeleteUser tests

func (s *ServiceSuite) TestDeleteUserKeepsMirrorAndFunds() {
	user, err := s.service.CreateUser(s.call(router), self, player, "player1", 1)
	s.Require().NoError(err)
	s.Require().NoError(s.ledger.Mint(s.call(owner), model.NativeAsset, user.Mirror, 9))

	s.Require().NoError(s.service.DeleteUser(s.call(router), self, "player1"))

	_, err = s.service.Lookup(s.call(stranger), self, "player1")
	s.ErrorIs(err, model.ErrUserNotFound)

	bal, err := s.ledger.BalanceOf(s.call(owner), model.NativeAsset, user.Mirror)
	s.Require().NoError(err)
	s.Equal(model.Amount(9), bal)

	again, err := s.service.CreateUser(s.call(router), self, player, "player1", 1)
	s.Require().NoError(err)
	s.Equal(user.Mirror, again.Mirror)
}

func (s *ServiceSuite) TestDeleteMissingUserIsNoop() {
	c := s.call(router)
	s.Require().NoError(s.service.DeleteUser(c, self, "ghost"))
	s.Empty(c.Events())
}

// MirrorTransfer tests

func (s *ServiceSuite) TestMirrorTransferOnlyFromRouter() {
	user, err := s.service.CreateUser(s.call(router), self, player, "player1", 1)
	s.Require().NoError(err)
	s.Require().NoError(s.ledger.Mint(s.call(owner), model.NativeAsset, user.Mirror, 10))

	err = s.service.MirrorTransfer(s.call(owner), self, "player1", model.NativeAsset, stranger, 5)
	s.ErrorIs(err, model.ErrNotRouter)

	s.Require().NoError(s.service.MirrorTransfer(s.call(router), self, "player1", model.NativeAsset, stranger, 5))

	err = s.service.MirrorTransfer(s.call(router), self, "player1", model.NativeAsset, stranger, 6)
	s.ErrorIs(err, model.ErrInsufficientBalance)

	err = s.service.MirrorTransfer(s.call(router), self, "nobody", model.NativeAsset, stranger, 1)
	s.ErrorIs(err, model.ErrUserNotFound)
}

// Property tests

func TestDeriveMatchesCreatedMirror(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		username := rapid.StringMatching(`[a-z][a-z0-9_]{0,20}`).Draw(t, "username")

		store := memory.New()
		logger := testutil.NopLogger()
		svc := New(mirror.New(ledger.New(logger), logger), logger)
		call := func(sender model.Address) *txn.Call {
			return txn.NewCall(context.Background(), sender, time.Unix(0, 0), store)
		}

		data, _ := json.Marshal(InitParams{Owner: owner, Router: router})
		if err := svc.Initialize(call(owner), self, data); err != nil {
			t.Fatal(err)
		}

		first, err := svc.DeriveMirror(call(stranger), self, username)
		if err != nil {
			t.Fatal(err)
		}
		user, err := svc.CreateUser(call(router), self, player, username, 0)
		if err != nil {
			t.Fatal(err)
		}
		second, _ := svc.DeriveMirror(call(stranger), self, username)
		if first != user.Mirror || second != first {
			t.Fatalf("derivation mismatch for %q: %s %s %s", username, first, user.Mirror, second)
		}
	})
}
