package txn

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
)

type ExecutorSuite struct {
	suite.Suite
	store    *memory.Storage
	clock    *mocks.MockClock
	recorder *events.Recorder
	exec     *Executor
	ctx      context.Context
}

func TestExecutorSuite(t *testing.T) {
	suite.Run(t, new(ExecutorSuite))
}

var (
	alice   = model.MustParseAddress("0x00000000000000000000000000000000000a11ce")
	service = model.MustParseAddress("0x00000000000000000000000000000000000000a1")
)

func (s *ExecutorSuite) SetupTest() {
	s.store = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	s.recorder = events.NewRecorder(0)
	s.exec = NewExecutor(s.store, s.clock, s.recorder, testutil.Logger(s.T()))
	s.ctx = context.Background()
}

func (s *ExecutorSuite) TestRunCommitsAndPublishes() {
	err := s.exec.Run(s.ctx, alice, "credit", func(c *Call) error {
		s.Equal(alice, c.Sender)
		s.Equal(s.clock.Now(), c.Now)
		c.Emit(service, model.EventTransfer, nil)
		return c.Store.SetBalance(c.Context(), model.NativeAsset, alice, 5)
	})
	s.Require().NoError(err)

	bal, err := s.store.GetBalance(s.ctx, model.NativeAsset, alice)
	s.Require().NoError(err)
	s.Equal(model.Amount(5), bal)

	evts := s.recorder.Recent(0)
	s.Require().Len(evts, 1)
	s.Equal(s.clock.Now(), evts[0].Timestamp)
}

func (s *ExecutorSuite) TestFailedRunLeavesNoTrace() {
	boom := errors.New("boom")
	err := s.exec.Run(s.ctx, alice, "credit", func(c *Call) error {
		c.Emit(service, model.EventTransfer, nil)
		if err := c.Store.SetBalance(c.Context(), model.NativeAsset, alice, 5); err != nil {
			return err
		}
		return boom
	})
	s.ErrorIs(err, boom)

	bal, err := s.store.GetBalance(s.ctx, model.NativeAsset, alice)
	s.Require().NoError(err)
	s.Equal(model.Amount(0), bal)
	s.Empty(s.recorder.Recent(0))
}

func (s *ExecutorSuite) TestSubCallSeesCallerAsSender() {
	err := s.exec.Run(s.ctx, alice, "nested", func(c *Call) error {
		sub := c.As(service)
		s.Equal(service, sub.Sender)
		s.Equal(alice, sub.Origin)
		sub.Emit(service, model.EventPaid, nil)
		return nil
	})
	s.Require().NoError(err)

	paid := s.recorder.OfType(model.EventPaid)
	s.Require().Len(paid, 1)
	s.Equal(service, paid[0].Emitter)
	s.Equal(alice, paid[0].Origin)
}

func (s *ExecutorSuite) TestViewDiscardsWrites() {
	err := s.exec.View(s.ctx, alice, func(c *Call) error {
		return c.Store.SetBalance(c.Context(), model.NativeAsset, alice, 5)
	})
	s.Require().NoError(err)

	bal, err := s.store.GetBalance(s.ctx, model.NativeAsset, alice)
	s.Require().NoError(err)
	s.Equal(model.Amount(0), bal)
}
