package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/plyr-settlement/internal/dependencies/mocks"
	"github.com/mcoot/plyr-settlement/internal/model"
	"github.com/mcoot/plyr-settlement/internal/testutil"
)

var caller = model.MustParseAddress("0x000000000000000000000000000000000000b0b0")

type ServiceSuite struct {
	suite.Suite
	clock   *mocks.MockClock
	random  *mocks.MockRandom
	service *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.service = New(Config{Secret: "test-secret", TokenTTL: time.Hour}, s.clock, s.random, testutil.NopLogger())
}

func (s *ServiceSuite) TestIssueAndVerify() {
	token, err := s.service.Issue(caller)
	s.Require().NoError(err)
	s.Equal(caller, token.Caller)
	s.Equal(s.clock.Now().Add(time.Hour), token.ExpiresAt)

	verified, err := s.service.Verify(token.Token)
	s.Require().NoError(err)
	s.Equal(caller, verified)
}

func (s *ServiceSuite) TestIssueRejectsZeroCaller() {
	_, err := s.service.Issue(model.ZeroAddress)
	s.ErrorIs(err, ErrZeroCaller)
}

func (s *ServiceSuite) TestVerifyRejectsExpiredToken() {
	token, err := s.service.Issue(caller)
	s.Require().NoError(err)

	s.clock.Advance(time.Hour + time.Second)
	_, err = s.service.Verify(token.Token)
	s.ErrorIs(err, ErrInvalidToken)
}

func (s *ServiceSuite) TestVerifyRejectsOtherSecret() {
	other := New(Config{Secret: "another-secret"}, s.clock, s.random, testutil.NopLogger())
	token, err := other.Issue(caller)
	s.Require().NoError(err)

	_, err = s.service.Verify(token.Token)
	s.ErrorIs(err, ErrInvalidToken)
}

func (s *ServiceSuite) TestVerifyRejectsOtherIssuer() {
	other := New(Config{Secret: "test-secret", Issuer: "someone-else"}, s.clock, s.random, testutil.NopLogger())
	token, err := other.Issue(caller)
	s.Require().NoError(err)

	_, err = s.service.Verify(token.Token)
	s.ErrorIs(err, ErrInvalidToken)
}

func (s *ServiceSuite) TestVerifyRejectsUnsignedToken() {
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Issuer:    DefaultIssuer,
		Subject:   caller.String(),
		ExpiresAt: jwt.NewNumericDate(s.clock.Now().Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	s.Require().NoError(err)

	_, err = s.service.Verify(unsigned)
	s.ErrorIs(err, ErrInvalidToken)
}

func (s *ServiceSuite) TestVerifyRejectsMalformedSubject() {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    DefaultIssuer,
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(s.clock.Now().Add(time.Hour)),
	}).SignedString([]byte("test-secret"))
	s.Require().NoError(err)

	_, err = s.service.Verify(signed)
	s.ErrorIs(err, ErrInvalidToken)
}

func (s *ServiceSuite) TestVerifyRejectsGarbage() {
	_, err := s.service.Verify("not-a-token")
	s.ErrorIs(err, ErrInvalidToken)
}

func (s *ServiceSuite) TestGeneratedSecret() {
	s.random.QueueString("generated-secret-value")
	generated := New(Config{}, s.clock, s.random, testutil.NopLogger())
	s.Zero(s.random.Pending())

	token, err := generated.Issue(caller)
	s.Require().NoError(err)

	verifier := New(Config{Secret: "generated-secret-value"}, s.clock, s.random, testutil.NopLogger())
	verified, err := verifier.Verify(token.Token)
	s.Require().NoError(err)
	s.Equal(caller, verified)
}
