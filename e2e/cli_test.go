package e2e_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/plyr-settlement/internal/api"
	"github.com/mcoot/plyr-settlement/internal/api/response"
	"github.com/mcoot/plyr-settlement/internal/factory"
	"github.com/mcoot/plyr-settlement/internal/model"
	"github.com/mcoot/plyr-settlement/internal/platform"
	"github.com/mcoot/plyr-settlement/internal/services/auth"
)

const e2eSecret = "e2e-shared-signing-secret"

var (
	deployer = model.MustParseAddress("0x00000000000000000000000000000000000000d0")
	owner    = model.MustParseAddress("0x00000000000000000000000000000000000000a1")
	operator = model.MustParseAddress("0x00000000000000000000000000000000000000b2")
	feeTo    = model.MustParseAddress("0x00000000000000000000000000000000000000f3")
)

// cliRunner manages CLI binary execution for one identity
type cliRunner struct {
	binaryPath string
	serverURL  string
	tokenFile  string
}

func buildCLI(t *testing.T) string {
	t.Helper()

	// Find project root (where go.mod is)
	projectRoot := findProjectRoot(t)

	// Build the CLI binary
	binaryPath := filepath.Join(t.TempDir(), "settlectl-test")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/settlectl")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	return binaryPath
}

// newCLIRunner signs a token for caller and stores it in a fresh token file
func newCLIRunner(t *testing.T, binaryPath, serverURL string, caller model.Address) *cliRunner {
	t.Helper()

	r := &cliRunner{
		binaryPath: binaryPath,
		serverURL:  serverURL,
		tokenFile:  filepath.Join(t.TempDir(), "token"),
	}
	output, err := r.run("token", "issue", "--address", caller.String(), "--secret", e2eSecret)
	require.NoError(t, err, "output: %s", output)
	return r
}

func (r *cliRunner) run(args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--token-file", r.tokenFile,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func runJSON[T any](t *testing.T, r *cliRunner, args ...string) T {
	t.Helper()
	output, err := r.run(args...)
	require.NoError(t, err, "output: %s", output)

	var v T
	require.NoError(t, json.Unmarshal([]byte(output), &v), "output: %s", output)
	return v
}

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// testServer manages a real HTTP server for e2e tests
type testServer struct {
	addr     string
	shutdown func()
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	// Create application
	app, err := factory.New(factory.Config{
		Logger:     logger,
		AuthConfig: auth.Config{Secret: e2eSecret, TokenTTL: time.Hour},
	})
	require.NoError(t, err)

	_, err = app.Platform.Bootstrap(context.Background(), platform.BootstrapConfig{
		Deployer:    deployer,
		Owner:       owner,
		Operator:    operator,
		FeeTo:       feeTo,
		PlatformFee: model.DefaultPlatformFee,
	})
	require.NoError(t, err)

	router := api.NewRouter(api.RouterConfig{
		Logger:      logger,
		AuthService: app.AuthService,
		Platform:    app.Platform,
		Recorder:    app.Recorder,
		Stream:      app.Stream,
	})
	serverCfg := api.DefaultServerConfig()
	serverCfg.ShutdownTimeout = 5 * time.Second
	server := api.NewServer(router, serverCfg, logger)

	go func() {
		if err := server.Serve(listener); err != nil {
			t.Logf("server error: %v", err)
		}
	}()

	// Wait for server to be ready
	serverURL := "http://" + listener.Addr().String()
	waitForServer(t, serverURL+"/api/v1/health")

	return &testServer{
		addr: serverURL,
		shutdown: func() {
			_ = server.Shutdown(context.Background())
			_ = app.Close()
		},
	}
}

func waitForServer(t *testing.T, url string) {
	t.Helper()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatal("server did not become ready in time")
}

// Tests

func TestCLI_HealthAndDeployment(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, buildCLI(t), ts.addr, operator)

	health := runJSON[struct {
		Status string `json:"status"`
	}](t, cli, "health")
	assert.Equal(t, "ok", health.Status)

	d := runJSON[response.Deployment](t, cli, "deployment")
	assert.False(t, d.Router.IsZero())
	assert.False(t, d.GameRule.IsZero())
}

func TestCLI_TokenIssueRequiresSecret(t *testing.T) {
	binary := buildCLI(t)
	r := &cliRunner{binaryPath: binary, serverURL: "http://127.0.0.1:1", tokenFile: filepath.Join(t.TempDir(), "token")}

	cmd := exec.Command(binary, "--token-file", r.tokenFile, "token", "issue", "--address", operator.String())
	cmd.Env = append(os.Environ(), "SETTLE_JWT_SECRET=")
	output, err := cmd.CombinedOutput()
	assert.Error(t, err)
	assert.Contains(t, string(output), "signing secret")
}

func TestCLI_SettlementFlow(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	binary := buildCLI(t)
	op := newCLIRunner(t, binary, ts.addr, operator)
	admin := newCLIRunner(t, binary, ts.addr, owner)

	// Register a player and fund its mirror
	user := runJSON[response.User](t, op, "user", "create", "p1")
	mirror := runJSON[response.Mirror](t, op, "user", "mirror", "p1")
	assert.Equal(t, user.Mirror, mirror.Mirror)

	runJSON[response.Balance](t, admin, "asset", "mint", "native", user.Mirror.String(), "100")

	// Open a room, seat the player, stake and settle
	room := runJSON[response.Room](t, op, "room", "create", "g1", "--duration", "1h")
	assert.Equal(t, uint64(1), room.RoomNumber)

	room = runJSON[response.Room](t, op, "room", "join", "g1", "1", "p1")
	assert.Equal(t, []string{"p1"}, room.Members)

	room = runJSON[response.Room](t, op, "room", "pay", "g1", "1", "p1", "100")
	require.NotEmpty(t, room.Balances)
	assert.Equal(t, model.Amount(100), room.Balances[0].Balance)

	runJSON[response.Room](t, op, "room", "earn", "g1", "1", "p1", "100")

	balances := runJSON[[]response.Balance](t, op, "asset", "balances", user.Mirror.String())
	require.NotEmpty(t, balances)
	assert.Equal(t, model.Amount(98), balances[0].Balance)

	balances = runJSON[[]response.Balance](t, op, "asset", "balances", feeTo.String())
	require.NotEmpty(t, balances)
	assert.Equal(t, model.Amount(2), balances[0].Balance)

	room = runJSON[response.Room](t, op, "room", "end", "g1", "1")
	assert.True(t, room.Ended)

	// A non-operator is refused
	output, err := admin.run("room", "create", "g1")
	assert.Error(t, err)
	assert.Contains(t, output, "NOT_OPERATOR")
}

func TestCLI_GovernanceCommands(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	binary := buildCLI(t)
	admin := newCLIRunner(t, binary, ts.addr, owner)

	rule := runJSON[response.GameRule](t, admin, "rule", "fee", "5")
	assert.Equal(t, uint64(5), rule.PlatformFee)

	extra := model.MustParseAddress("0x00000000000000000000000000000000000000c4")
	router := runJSON[response.Router](t, admin, "router", "operator", extra.String())
	assert.Contains(t, router.Operators, extra)

	router = runJSON[response.Router](t, admin, "router", "operator", extra.String(), "--disable")
	assert.NotContains(t, router.Operators, extra)

	slot := runJSON[response.Slot](t, admin, "proxy", "show", router.Address.String())
	assert.Equal(t, "router/v1", slot.Logic)

	output, err := admin.run("proxy", "upgrade", router.Address.String(), "router/v1")
	assert.Error(t, err)
	assert.Contains(t, output, "NOT_PROXY_ADMIN")
}
