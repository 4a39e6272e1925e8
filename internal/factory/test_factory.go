package factory

import (
	"context"
	"time"

	"github.com/mcoot/plyr-settlement/internal/api/sse"
	"github.com/mcoot/plyr-settlement/internal/dependencies/mocks"
	"github.com/mcoot/plyr-settlement/internal/events"
	"github.com/mcoot/plyr-settlement/internal/model"
	"github.com/mcoot/plyr-settlement/internal/platform"
	"github.com/mcoot/plyr-settlement/internal/services/auth"
	"github.com/mcoot/plyr-settlement/internal/storage/memory"
	"github.com/mcoot/plyr-settlement/internal/testutil"
)

// Well-known test identities
var (
	TestDeployer = model.MustParseAddress("0x00000000000000000000000000000000000000d0")
	TestOwner    = model.MustParseAddress("0x00000000000000000000000000000000000000a1")
	TestOperator = model.MustParseAddress("0x00000000000000000000000000000000000000b2")
	TestFeeTo    = model.MustParseAddress("0x00000000000000000000000000000000000000f3")
)

// TestAuthSecret signs tokens issued by a TestApp
const TestAuthSecret = "test-secret-for-settlement-tokens"

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	recorder := events.NewRecorder(0)
	logger := testutil.NopLogger()
	hub := sse.NewHub(logger)
	go hub.Run()

	authCfg := auth.DefaultConfig()
	authCfg.Secret = TestAuthSecret

	app, err := newWithDependencies(store, mockClock, mockRandom, recorder, events.Multi{recorder, hub}, authCfg, logger)
	if err != nil {
		panic(err)
	}
	app.Stream = hub
	app.closers = append(app.closers, hub)

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}

// Bootstrap deploys the components with the test identities and the default
// platform fee
func (t *TestApp) Bootstrap(ctx context.Context) (*platform.Deployment, error) {
	return t.Platform.Bootstrap(ctx, platform.BootstrapConfig{
		Deployer:    TestDeployer,
		Owner:       TestOwner,
		Operator:    TestOperator,
		FeeTo:       TestFeeTo,
		PlatformFee: model.DefaultPlatformFee,
	})
}

// Token issues a bearer token for caller
func (t *TestApp) Token(caller model.Address) string {
	tok, err := t.AuthService.Issue(caller)
	if err != nil {
		panic(err)
	}
	return tok.Token
}
