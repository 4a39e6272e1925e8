package factory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/plyr-settlement/internal/model"
)

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.ctx = context.Background()
	_, err := s.app.Bootstrap(s.ctx)
	s.Require().NoError(err)
}

func (s *IntegrationSuite) balance(account model.Address) model.Amount {
	bal, err := s.app.Platform.Balance(s.ctx, model.NativeAsset, account)
	s.Require().NoError(err)
	return bal
}

func (s *IntegrationSuite) eventTypes() []model.EventType {
	var types []model.EventType
	for _, e := range s.app.Recorder.Recent(0) {
		types = append(types, e.Type)
	}
	return types
}

// Test: Complete native settlement from user creation to a voluntary end
func (s *IntegrationSuite) TestCompleteNativeSettlement() {
	p := s.app.Platform

	// Step 1: Create a user and fund its mirror
	user, err := p.CreateUser(s.ctx, TestOperator, model.ZeroAddress, "p1", 0)
	s.Require().NoError(err)
	s.Require().NoError(p.Mint(s.ctx, TestOwner, model.NativeAsset, user.Mirror, 100))

	// Step 2: Open a room and seat the player
	room, err := p.CreateRoom(s.ctx, TestOperator, "g1", 3600*time.Second)
	s.Require().NoError(err)
	s.Equal(uint64(1), room.RoomNumber)
	s.Equal(s.app.MockClock.Now().Add(time.Hour), room.Deadline)
	s.Require().NoError(p.Join(s.ctx, TestOperator, "g1", 1, []string{"p1"}))

	// Step 3: Stake and settle
	s.app.Recorder.Reset()
	s.Require().NoError(p.Pay(s.ctx, TestOperator, "g1", 1, "p1", model.NativeAsset, 100))
	s.Equal(model.Amount(0), s.balance(user.Mirror))
	s.Equal(model.Amount(100), s.balance(room.Address))

	s.Require().NoError(p.Earn(s.ctx, TestOperator, "g1", 1, "p1", model.NativeAsset, 100))
	s.Equal(model.Amount(98), s.balance(user.Mirror))
	s.Equal(model.Amount(2), s.balance(TestFeeTo))
	s.Equal(model.Amount(0), s.balance(room.Address))

	// Step 4: End the drained room
	s.Require().NoError(p.End(s.ctx, TestOperator, "g1", 1))

	s.Equal([]model.EventType{
		model.EventTransfer,
		model.EventTokenRegistered,
		model.EventPaid,
		model.EventTransfer,
		model.EventTransfer,
		model.EventEarned,
		model.EventGameEnded,
	}, s.eventTypes())

	earned := s.app.Recorder.OfType(model.EventEarned)
	s.Require().Len(earned, 1)
	payload, ok := earned[0].Payload.(model.SettlementPayload)
	s.Require().True(ok)
	s.Equal(model.Amount(98), payload.Amount)
	s.Equal(model.Amount(2), payload.Fee)
}

// Test: A room past its deadline is swept by close
func (s *IntegrationSuite) TestCloseAfterDeadline() {
	p := s.app.Platform

	user, err := p.CreateUser(s.ctx, TestOperator, model.ZeroAddress, "p1", 0)
	s.Require().NoError(err)
	s.Require().NoError(p.Mint(s.ctx, TestOwner, model.NativeAsset, user.Mirror, 50))

	room, err := p.CreateRoom(s.ctx, TestOperator, "g1", 10*time.Minute)
	s.Require().NoError(err)
	s.Require().NoError(p.Join(s.ctx, TestOperator, "g1", 1, []string{"p1"}))
	s.Require().NoError(p.Pay(s.ctx, TestOperator, "g1", 1, "p1", model.NativeAsset, 50))

	// Ending is refused while the room holds funds
	s.ErrorIs(p.End(s.ctx, TestOperator, "g1", 1), model.ErrNativeCoinBalanceNotZero)

	s.app.MockClock.Advance(9 * time.Minute)
	s.ErrorIs(p.Close(s.ctx, TestOperator, "g1", 1, TestFeeTo), model.ErrGameNotEnded)

	s.app.MockClock.Advance(time.Minute)
	s.Require().NoError(p.Close(s.ctx, TestOperator, "g1", 1, TestFeeTo))
	s.Equal(model.Amount(50), s.balance(TestFeeTo))
	s.Equal(model.Amount(0), s.balance(room.Address))

	view, err := p.Room(s.ctx, "g1", 1)
	s.Require().NoError(err)
	s.True(view.Room.Closed)
	s.Equal(TestFeeTo, view.Room.ClosedTo)
}

// Test: Rooms are numbered independently per game
func (s *IntegrationSuite) TestGamesNumberIndependently() {
	p := s.app.Platform

	for _, gameID := range []string{"g1", "g1", "g2", "g1"} {
		_, err := p.CreateRoom(s.ctx, TestOperator, gameID, time.Hour)
		s.Require().NoError(err)
	}

	n, err := p.GameRoomCount(s.ctx, "g1")
	s.Require().NoError(err)
	s.Equal(uint64(3), n)
	n, err = p.GameRoomCount(s.ctx, "g2")
	s.Require().NoError(err)
	s.Equal(uint64(1), n)

	a, err := p.ComputeRoomAddress(s.ctx, "g1", 1)
	s.Require().NoError(err)
	b, err := p.ComputeRoomAddress(s.ctx, "g2", 1)
	s.Require().NoError(err)
	s.NotEqual(a, b)
}

// Test: A rejected call publishes nothing
func (s *IntegrationSuite) TestRejectedCallPublishesNoEvents() {
	s.app.Recorder.Reset()

	_, err := s.app.Platform.CreateRoom(s.ctx, TestOwner, "g1", time.Hour)
	s.ErrorIs(err, model.ErrNotOperator)
	_, err = s.app.Platform.CreateUser(s.ctx, TestFeeTo, model.ZeroAddress, "p1", 0)
	s.ErrorIs(err, model.ErrNotOperator)

	s.Empty(s.app.Recorder.Recent(0))
}

// Test: Tokens issued by the app authenticate their caller
func (s *IntegrationSuite) TestTokenRoundTrip() {
	token := s.app.Token(TestOperator)

	caller, err := s.app.AuthService.Verify(token)
	s.Require().NoError(err)
	s.Equal(TestOperator, caller)

	s.app.MockClock.Advance(25 * time.Hour)
	_, err = s.app.AuthService.Verify(token)
	s.Error(err)
}

// Test: A second bootstrap reloads the stored deployment
func (s *IntegrationSuite) TestBootstrapIsIdempotent() {
	first, err := s.app.Platform.Deployment()
	s.Require().NoError(err)

	again, err := s.app.Bootstrap(s.ctx)
	s.Require().NoError(err)
	s.Equal(first, again)
}
