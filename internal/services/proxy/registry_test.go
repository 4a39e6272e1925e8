package proxy

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/plyr-settlement/internal/dependencies/mocks"
	"github.com/mcoot/plyr-settlement/internal/events"
	"github.com/mcoot/plyr-settlement/internal/model"
	"github.com/mcoot/plyr-settlement/internal/storage/memory"
	"github.com/mcoot/plyr-settlement/internal/testutil"
	"github.com/mcoot/plyr-settlement/internal/txn"
)

var (
	admin    = model.MustParseAddress("0x000000000000000000000000000000000000ad01")
	stranger = model.MustParseAddress("0x00000000000000000000000000000000000000e1")
)

var errInitRejected = errors.New("init rejected")

// fakeLogic records initializer calls without touching storage
type fakeLogic struct {
	name  string
	kind  model.LogicKind
	inits []model.Address
	fail  bool
}

func (f *fakeLogic) Name() string          { return f.name }
func (f *fakeLogic) Kind() model.LogicKind { return f.kind }

func (f *fakeLogic) Initialize(c *txn.Call, self model.Address, initData []byte) error {
	if f.fail {
		return errInitRejected
	}
	f.inits = append(f.inits, self)
	return nil
}

type RegistrySuite struct {
	suite.Suite
	storage  *memory.Storage
	recorder *events.Recorder
	exec     *txn.Executor
	registry *Registry
	v1       *fakeLogic
	v2       *fakeLogic
	broken   *fakeLogic
	other    *fakeLogic
	ctx      context.Context
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

func (s *RegistrySuite) SetupTest() {
	s.storage = memory.New()
	s.recorder = events.NewRecorder(0)
	clk := mocks.NewMockClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	s.exec = txn.NewExecutor(s.storage, clk, s.recorder, testutil.NopLogger())
	s.registry = NewRegistry(testutil.NopLogger())
	s.ctx = context.Background()

	s.v1 = &fakeLogic{name: "router/v1", kind: model.LogicKindRouter}
	s.v2 = &fakeLogic{name: "router/v2", kind: model.LogicKindRouter}
	s.broken = &fakeLogic{name: "router/broken", kind: model.LogicKindRouter, fail: true}
	s.other = &fakeLogic{name: "directory/v1", kind: model.LogicKindDirectory}
	s.Require().NoError(s.registry.Register(s.v1, s.v2, s.broken, s.other))
}

func (s *RegistrySuite) deploy(initData []byte) *model.Slot {
	var slot *model.Slot
	s.Require().NoError(s.exec.Run(s.ctx, admin, "deploy", func(c *txn.Call) error {
		var err error
		slot, err = s.registry.Deploy(c, s.v1.name, admin, initData)
		return err
	}))
	return slot
}

func (s *RegistrySuite) upgrade(sender, addr model.Address, logic string, initData []byte) error {
	return s.exec.Run(s.ctx, sender, "upgrade", func(c *txn.Call) error {
		_, err := s.registry.UpgradeAndCall(c, addr, logic, initData)
		return err
	})
}

func (s *RegistrySuite) implementation(addr model.Address) *model.Slot {
	var slot *model.Slot
	s.Require().NoError(s.exec.View(s.ctx, stranger, func(c *txn.Call) error {
		var err error
		slot, err = s.registry.Implementation(c, addr)
		return err
	}))
	return slot
}

func (s *RegistrySuite) TestRegisterRejectsDuplicates() {
	s.Error(s.registry.Register(&fakeLogic{name: "router/v1", kind: model.LogicKindRouter}))
}

func (s *RegistrySuite) TestLogicUnknown() {
	_, err := s.registry.Logic("nope")
	s.ErrorIs(err, model.ErrUnknownLogic)
}

func (s *RegistrySuite) TestDeployAllocatesDistinctAddresses() {
	first := s.deploy(nil)
	second := s.deploy(nil)

	s.NotEqual(first.Address, second.Address)
	s.Equal(model.LogicKindRouter, first.Kind)
	s.Equal("router/v1", first.Logic)
	s.Equal(admin, first.Admin)
	s.Empty(s.v1.inits)
	s.Len(s.recorder.OfType(model.EventUpgraded), 2)
}

func (s *RegistrySuite) TestDeployRunsInitializer() {
	slot := s.deploy([]byte(`{}`))
	s.Equal([]model.Address{slot.Address}, s.v1.inits)
}

func (s *RegistrySuite) TestDeployFailedInitializerLeavesNoSlot() {
	err := s.exec.Run(s.ctx, admin, "deploy", func(c *txn.Call) error {
		_, err := s.registry.Deploy(c, s.broken.name, admin, []byte(`{}`))
		return err
	})
	s.ErrorIs(err, errInitRejected)

	nonce, err := s.storage.GetNonce(s.ctx, admin)
	s.Require().NoError(err)
	s.Equal(uint64(0), nonce)
	s.Empty(s.recorder.OfType(model.EventUpgraded))
}

func (s *RegistrySuite) TestDeployRequiresAdmin() {
	err := s.exec.Run(s.ctx, admin, "deploy", func(c *txn.Call) error {
		_, err := s.registry.Deploy(c, s.v1.name, model.ZeroAddress, nil)
		return err
	})
	s.ErrorIs(err, model.ErrZeroAddress)
}

func (s *RegistrySuite) TestUpgradeSwapsLogicKeepingAddress() {
	slot := s.deploy(nil)
	s.Require().NoError(s.upgrade(admin, slot.Address, s.v2.name, []byte(`{}`)))

	s.Equal("router/v2", s.implementation(slot.Address).Logic)
	s.Equal([]model.Address{slot.Address}, s.v2.inits)
}

func (s *RegistrySuite) TestUpgradeRejections() {
	slot := s.deploy(nil)

	s.ErrorIs(s.upgrade(stranger, slot.Address, s.v2.name, nil), model.ErrNotProxyAdmin)
	s.ErrorIs(s.upgrade(admin, slot.Address, "router/v9", nil), model.ErrUnknownLogic)
	s.ErrorIs(s.upgrade(admin, slot.Address, s.other.name, nil), model.ErrLogicKindMismatch)
	s.ErrorIs(s.upgrade(admin, stranger, s.v2.name, nil), model.ErrSlotNotFound)

	s.Equal("router/v1", s.implementation(slot.Address).Logic)
}

func (s *RegistrySuite) TestUpgradeWithFailingInitializerRollsBack() {
	slot := s.deploy(nil)
	s.ErrorIs(s.upgrade(admin, slot.Address, s.broken.name, []byte(`{}`)), errInitRejected)
	s.Equal("router/v1", s.implementation(slot.Address).Logic)
}

func (s *RegistrySuite) TestChangeAdmin() {
	slot := s.deploy(nil)

	err := s.exec.Run(s.ctx, stranger, "change-admin", func(c *txn.Call) error {
		_, err := s.registry.ChangeAdmin(c, slot.Address, stranger)
		return err
	})
	s.ErrorIs(err, model.ErrNotProxyAdmin)

	s.Require().NoError(s.exec.Run(s.ctx, admin, "change-admin", func(c *txn.Call) error {
		_, err := s.registry.ChangeAdmin(c, slot.Address, stranger)
		return err
	}))
	s.Equal(stranger, s.implementation(slot.Address).Admin)
	s.ErrorIs(s.upgrade(admin, slot.Address, s.v2.name, nil), model.ErrNotProxyAdmin)
	s.NoError(s.upgrade(stranger, slot.Address, s.v2.name, nil))
	s.Len(s.recorder.OfType(model.EventAdminChanged), 1)
}

func (s *RegistrySuite) TestInitializeIsAdminOnly() {
	slot := s.deploy(nil)

	err := s.exec.Run(s.ctx, stranger, "init", func(c *txn.Call) error {
		return s.registry.Initialize(c, slot.Address, []byte(`{}`))
	})
	s.ErrorIs(err, model.ErrNotProxyAdmin)
	s.Empty(s.v1.inits)

	s.Require().NoError(s.exec.Run(s.ctx, admin, "init", func(c *txn.Call) error {
		return s.registry.Initialize(c, slot.Address, []byte(`{}`))
	}))
	s.Equal([]model.Address{slot.Address}, s.v1.inits)
}

func (s *RegistrySuite) TestResolveChecksKind() {
	slot := s.deploy(nil)

	err := s.exec.View(s.ctx, stranger, func(c *txn.Call) error {
		_, err := s.registry.Directory(c, slot.Address)
		return err
	})
	s.ErrorIs(err, model.ErrLogicKindMismatch)

	// the fake has the right kind but not the router method set
	err = s.exec.View(s.ctx, stranger, func(c *txn.Call) error {
		_, err := s.registry.Router(c, slot.Address)
		return err
	})
	s.ErrorIs(err, model.ErrLogicKindMismatch)

	err = s.exec.View(s.ctx, stranger, func(c *txn.Call) error {
		_, err := s.registry.GameRule(c, stranger)
		return err
	})
	s.ErrorIs(err, model.ErrSlotNotFound)
}
