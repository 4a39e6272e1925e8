package platform

import (
	"context"
	"encoding/json"

	"github.com/mcoot/plyr-settlement/internal/model"
	"github.com/mcoot/plyr-settlement/internal/services/directory"
	"github.com/mcoot/plyr-settlement/internal/services/gamerule"
	"github.com/mcoot/plyr-settlement/internal/services/router"
	"github.com/mcoot/plyr-settlement/internal/txn"
)

// BootstrapConfig describes the initial deployment
type BootstrapConfig struct {
	// Deployer allocates the component addresses and administers their proxies
	Deployer model.Address
	// Owner is the administrator of the router and the game rule
	Owner model.Address
	// Operator is optional and granted the operator role on both
	Operator    model.Address
	FeeTo       model.Address
	NameSuffix  string
	PlatformFee uint64
}

// Bootstrap deploys and wires the directory, router and game rule, or loads
// them when a deployment manifest already exists
func (p *Platform) Bootstrap(ctx context.Context, cfg BootstrapConfig) (*Deployment, error) {
	if cfg.Deployer.IsZero() || cfg.Owner.IsZero() || cfg.FeeTo.IsZero() {
		return nil, model.ErrZeroAddress
	}
	if cfg.PlatformFee > model.MaxPlatformFee {
		return nil, model.ErrInvalidFee
	}

	var d *Deployment
	err := p.exec.Run(ctx, cfg.Deployer, "bootstrap", func(c *txn.Call) error {
		existing, err := p.loadDeployment(c)
		if err != nil {
			return err
		}
		if existing != nil {
			d = existing
			return nil
		}
		d, err = p.deploy(c, cfg)
		return err
	})
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.deployment = d
	p.mu.Unlock()

	p.logger.Info("platform ready",
		"directory", d.Directory,
		"router", d.Router,
		"gamerule", d.GameRule,
	)
	return d, nil
}

func (p *Platform) loadDeployment(c *txn.Call) (*Deployment, error) {
	deps, err := c.Store.ListDeployments(c.Context())
	if err != nil {
		return nil, err
	}
	if len(deps) == 0 {
		return nil, nil
	}

	byName := make(map[string]model.Address, len(deps))
	for _, dep := range deps {
		byName[dep.Name] = dep.Address
	}
	var d Deployment
	if d.Directory, err = requireDeployment(byName, DeploymentDirectory); err != nil {
		return nil, err
	}
	if d.Router, err = requireDeployment(byName, DeploymentRouter); err != nil {
		return nil, err
	}
	if d.GameRule, err = requireDeployment(byName, DeploymentGameRule); err != nil {
		return nil, err
	}
	return &d, nil
}

func (p *Platform) deploy(c *txn.Call, cfg BootstrapConfig) (*Deployment, error) {
	if _, err := p.ledger.RegisterNative(c.As(cfg.Owner)); err != nil {
		return nil, err
	}

	// The directory and router reference each other, so the directory is
	// initialized once the router address is known
	dirSlot, err := p.registry.Deploy(c, directory.LogicName, cfg.Deployer, nil)
	if err != nil {
		return nil, err
	}
	routerSlot, err := p.registry.Deploy(c, router.LogicName, cfg.Deployer, mustJSON(router.InitParams{
		Owner:     cfg.Owner,
		Operator:  cfg.Operator,
		Directory: dirSlot.Address,
	}))
	if err != nil {
		return nil, err
	}
	err = p.registry.Initialize(c, dirSlot.Address, mustJSON(directory.InitParams{
		Owner:      cfg.Owner,
		Router:     routerSlot.Address,
		NameSuffix: cfg.NameSuffix,
	}))
	if err != nil {
		return nil, err
	}
	ruleSlot, err := p.registry.Deploy(c, gamerule.LogicName, cfg.Deployer, mustJSON(gamerule.InitParams{
		Owner:     cfg.Owner,
		Router:    routerSlot.Address,
		FeeTo:     cfg.FeeTo,
		Directory: dirSlot.Address,
		Operator:  cfg.Operator,
	}))
	if err != nil {
		return nil, err
	}

	rtr, err := p.registry.Router(c, routerSlot.Address)
	if err != nil {
		return nil, err
	}
	if err := rtr.ConfigGameRule(c.As(cfg.Owner), routerSlot.Address, ruleSlot.Address, true); err != nil {
		return nil, err
	}

	if cfg.PlatformFee != model.DefaultPlatformFee {
		rule, err := p.registry.GameRule(c, ruleSlot.Address)
		if err != nil {
			return nil, err
		}
		if err := rule.ConfigPlatformFee(c.As(cfg.Owner), ruleSlot.Address, cfg.PlatformFee); err != nil {
			return nil, err
		}
	}

	d := &Deployment{
		Directory: dirSlot.Address,
		Router:    routerSlot.Address,
		GameRule:  ruleSlot.Address,
	}
	for name, addr := range map[string]model.Address{
		DeploymentDirectory: d.Directory,
		DeploymentRouter:    d.Router,
		DeploymentGameRule:  d.GameRule,
	} {
		if err := c.Store.SaveDeployment(c.Context(), &model.Deployment{Name: name, Address: addr}); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// mustJSON encodes init params, which are plain structs of addresses and
// strings and cannot fail to marshal
func mustJSON(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}
