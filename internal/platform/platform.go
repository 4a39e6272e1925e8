// Package platform exposes every public settlement operation. Each method is
// one atomic call: it resolves the target component through its proxy slot,
// runs it as the given caller, and commits or discards the result as a whole.
package platform

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mcoot/plyr-settlement/internal/contracts"
	"github.com/mcoot/plyr-settlement/internal/model"
	"github.com/mcoot/plyr-settlement/internal/services/directory"
	"github.com/mcoot/plyr-settlement/internal/services/gamerule"
	"github.com/mcoot/plyr-settlement/internal/services/ledger"
	"github.com/mcoot/plyr-settlement/internal/services/mirror"
	"github.com/mcoot/plyr-settlement/internal/services/proxy"
	"github.com/mcoot/plyr-settlement/internal/services/room"
	"github.com/mcoot/plyr-settlement/internal/services/router"
	"github.com/mcoot/plyr-settlement/internal/txn"
)

// Deployment names for the bootstrap manifest
const (
	DeploymentDirectory = "directory"
	DeploymentRouter    = "router"
	DeploymentGameRule  = "gamerule"
)

// Deployment holds the storage addresses of the bootstrapped components
type Deployment struct {
	Directory model.Address `json:"directory"`
	Router    model.Address `json:"router"`
	GameRule  model.Address `json:"gameRule"`
}

// Platform is the entry point for all settlement operations
type Platform struct {
	exec     *txn.Executor
	registry *proxy.Registry
	ledger   *ledger.Service
	rooms    *room.Service
	logger   *slog.Logger

	mu         sync.RWMutex
	deployment *Deployment
}

// New assembles the services and registers the built-in logics
func New(exec *txn.Executor, logger *slog.Logger) (*Platform, error) {
	registry := proxy.NewRegistry(logger)
	ledgerService := ledger.New(logger)
	mirrorService := mirror.New(ledgerService, logger)
	roomService := room.New(ledgerService, logger)

	err := registry.Register(
		directory.New(mirrorService, logger),
		router.New(registry, logger),
		gamerule.New(registry, roomService, ledgerService, logger),
	)
	if err != nil {
		return nil, err
	}

	return &Platform{
		exec:     exec,
		registry: registry,
		ledger:   ledgerService,
		rooms:    roomService,
		logger:   logger,
	}, nil
}

// Registry exposes the logic registry so further implementations can be
// registered for upgrades
func (p *Platform) Registry() *proxy.Registry {
	return p.registry
}

// Deployment returns the bootstrapped component addresses
func (p *Platform) Deployment() (*Deployment, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.deployment == nil {
		return nil, model.ErrDeploymentNotFound
	}
	d := *p.deployment
	return &d, nil
}

func (p *Platform) run(ctx context.Context, caller model.Address, name string, fn func(*txn.Call, *Deployment) error) error {
	d, err := p.Deployment()
	if err != nil {
		return err
	}
	return p.exec.Run(ctx, caller, name, func(c *txn.Call) error {
		return fn(c, d)
	})
}

func (p *Platform) view(ctx context.Context, fn func(*txn.Call, *Deployment) error) error {
	d, err := p.Deployment()
	if err != nil {
		return err
	}
	return p.exec.View(ctx, model.ZeroAddress, func(c *txn.Call) error {
		return fn(c, d)
	})
}

func (p *Platform) resolveDirectory(c *txn.Call, d *Deployment) (contracts.Directory, error) {
	return p.registry.Directory(c, d.Directory)
}

func (p *Platform) resolveRouter(c *txn.Call, d *Deployment) (contracts.Router, error) {
	return p.registry.Router(c, d.Router)
}

func (p *Platform) resolveGameRule(c *txn.Call, d *Deployment) (contracts.GameRule, error) {
	return p.registry.GameRule(c, d.GameRule)
}

func requireDeployment(deps map[string]model.Address, name string) (model.Address, error) {
	addr, ok := deps[name]
	if !ok {
		return model.Address{}, fmt.Errorf("%w: %s", model.ErrDeploymentNotFound, name)
	}
	return addr, nil
}
