package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/plyr-settlement/internal/api/handler"
	"github.com/mcoot/plyr-settlement/internal/api/middleware"
	"github.com/mcoot/plyr-settlement/internal/api/sse"
	"github.com/mcoot/plyr-settlement/internal/events"
	"github.com/mcoot/plyr-settlement/internal/platform"
	"github.com/mcoot/plyr-settlement/internal/services/auth"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger      *slog.Logger
	AuthService *auth.Service
	Platform    *platform.Platform
	Recorder    *events.Recorder
	// Stream is optional; without it the live event stream is not served
	Stream *sse.Hub
}

// NewRouter creates a new API router with all routes configured. Reads are
// public; every state change runs as the caller named by the bearer token.
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	deploymentHandler := handler.NewDeploymentHandler(cfg.Platform)
	userHandler := handler.NewUserHandler(cfg.Platform)
	governanceHandler := handler.NewGovernanceHandler(cfg.Platform)
	roomHandler := handler.NewRoomHandler(cfg.Platform)
	assetHandler := handler.NewAssetHandler(cfg.Platform)
	proxyHandler := handler.NewProxyHandler(cfg.Platform)
	eventHandler := handler.NewEventHandler(cfg.Recorder)
	healthHandler := handler.NewHealthHandler(cfg.Platform, cfg.Stream)

	// Create middleware
	authMiddleware := middleware.Auth(cfg.AuthService)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	authed := func(h http.HandlerFunc) http.Handler {
		return authMiddleware(h)
	}

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Health check and deployment (no auth)
	api.HandleFunc("/health", healthHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/deployment", deploymentHandler.Get).Methods(http.MethodGet)

	// Directory routes
	api.Handle("/users", authed(userHandler.Create)).Methods(http.MethodPost)
	api.HandleFunc("/users/{username}", userHandler.Get).Methods(http.MethodGet)
	api.Handle("/users/{username}", authed(userHandler.Delete)).Methods(http.MethodDelete)
	api.HandleFunc("/mirrors/{username}", userHandler.Mirror).Methods(http.MethodGet)

	// Router governance
	api.HandleFunc("/router", governanceHandler.GetRouter).Methods(http.MethodGet)
	api.Handle("/router/rules", authed(governanceHandler.ConfigGameRule)).Methods(http.MethodPost)
	api.Handle("/router/operators", authed(governanceHandler.ConfigRouterOperator)).Methods(http.MethodPost)
	api.Handle("/router/owner", authed(governanceHandler.TransferRouterOwnership)).Methods(http.MethodPut)

	// Game rule governance
	api.HandleFunc("/rule", governanceHandler.GetRule).Methods(http.MethodGet)
	api.Handle("/rule/operators", authed(governanceHandler.ConfigRuleOperator)).Methods(http.MethodPost)
	api.Handle("/rule/fee", authed(governanceHandler.ConfigPlatformFee)).Methods(http.MethodPut)
	api.Handle("/rule/fee-to", authed(governanceHandler.ConfigFeeTo)).Methods(http.MethodPut)
	api.Handle("/rule/owner", authed(governanceHandler.TransferRuleOwnership)).Methods(http.MethodPut)

	// Room routes
	api.Handle("/rooms", authed(roomHandler.Create)).Methods(http.MethodPost)
	api.HandleFunc("/rooms/{game}", roomHandler.Count).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{game}/{room}", roomHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{game}/{room}/address", roomHandler.Address).Methods(http.MethodGet)
	api.Handle("/rooms/{game}/{room}/join", authed(roomHandler.Join)).Methods(http.MethodPost)
	api.Handle("/rooms/{game}/{room}/leave", authed(roomHandler.Leave)).Methods(http.MethodPost)
	api.Handle("/rooms/{game}/{room}/pay", authed(roomHandler.Pay)).Methods(http.MethodPost)
	api.Handle("/rooms/{game}/{room}/earn", authed(roomHandler.Earn)).Methods(http.MethodPost)
	api.Handle("/rooms/{game}/{room}/end", authed(roomHandler.End)).Methods(http.MethodPost)
	api.Handle("/rooms/{game}/{room}/close", authed(roomHandler.Close)).Methods(http.MethodPost)

	// Ledger routes
	api.HandleFunc("/assets", assetHandler.List).Methods(http.MethodGet)
	api.Handle("/assets", authed(assetHandler.Register)).Methods(http.MethodPost)
	api.Handle("/assets/{asset}/mint", authed(assetHandler.Mint)).Methods(http.MethodPost)
	api.Handle("/assets/{asset}/transfer", authed(assetHandler.Transfer)).Methods(http.MethodPost)
	api.HandleFunc("/balances/{account}", assetHandler.Balances).Methods(http.MethodGet)

	// Upgrade slots
	api.HandleFunc("/proxies/{address}", proxyHandler.Get).Methods(http.MethodGet)
	api.Handle("/proxies/{address}/upgrade", authed(proxyHandler.Upgrade)).Methods(http.MethodPost)
	api.Handle("/proxies/{address}/admin", authed(proxyHandler.ChangeAdmin)).Methods(http.MethodPut)

	// Committed events
	api.HandleFunc("/events", eventHandler.List).Methods(http.MethodGet)
	if cfg.Stream != nil {
		api.HandleFunc("/events/stream", handler.NewStreamHandler(cfg.Stream).Stream).Methods(http.MethodGet)
	}

	return r
}
