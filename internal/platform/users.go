package platform

import (
	"context"

	"github.com/mcoot/plyr-settlement/internal/model"
	"github.com/mcoot/plyr-settlement/internal/txn"
)

// CreateUser registers username through the router
func (p *Platform) CreateUser(ctx context.Context, caller, owner model.Address, username string, tier uint8) (*model.User, error) {
	var user *model.User
	err := p.run(ctx, caller, "createUser", func(c *txn.Call, d *Deployment) error {
		rtr, err := p.resolveRouter(c, d)
		if err != nil {
			return err
		}
		user, err = rtr.CreateUser(c, d.Router, owner, username, tier)
		return err
	})
	return user, err
}

// CreateUserWithMirror registers username against an existing mirror
func (p *Platform) CreateUserWithMirror(ctx context.Context, caller, owner, mirror model.Address, username string, tier uint8) (*model.User, error) {
	var user *model.User
	err := p.run(ctx, caller, "createUserWithMirror", func(c *txn.Call, d *Deployment) error {
		rtr, err := p.resolveRouter(c, d)
		if err != nil {
			return err
		}
		user, err = rtr.CreateUserWithMirror(c, d.Router, owner, mirror, username, tier)
		return err
	})
	return user, err
}

// DeleteUser removes username's record through the router
func (p *Platform) DeleteUser(ctx context.Context, caller model.Address, username string) error {
	return p.run(ctx, caller, "deleteUser", func(c *txn.Call, d *Deployment) error {
		rtr, err := p.resolveRouter(c, d)
		if err != nil {
			return err
		}
		return rtr.DeleteUser(c, d.Router, username)
	})
}

// LookupUser returns username's record from the directory
func (p *Platform) LookupUser(ctx context.Context, username string) (*model.User, error) {
	var user *model.User
	err := p.view(ctx, func(c *txn.Call, d *Deployment) error {
		dir, err := p.resolveDirectory(c, d)
		if err != nil {
			return err
		}
		user, err = dir.Lookup(c, d.Directory, username)
		return err
	})
	return user, err
}

// ComputeMirrorAddress derives username's mirror through the router
func (p *Platform) ComputeMirrorAddress(ctx context.Context, username string) (model.Address, error) {
	var addr model.Address
	err := p.view(ctx, func(c *txn.Call, d *Deployment) error {
		rtr, err := p.resolveRouter(c, d)
		if err != nil {
			return err
		}
		addr, err = rtr.ComputeMirrorAddress(c, d.Router, username)
		return err
	})
	return addr, err
}

// RouterState returns roles and the whitelist
func (p *Platform) RouterState(ctx context.Context) (*model.Router, error) {
	var r *model.Router
	err := p.view(ctx, func(c *txn.Call, d *Deployment) error {
		rtr, err := p.resolveRouter(c, d)
		if err != nil {
			return err
		}
		r, err = rtr.State(c, d.Router)
		return err
	})
	return r, err
}

// ConfigGameRule adds a rule whitelist entry
func (p *Platform) ConfigGameRule(ctx context.Context, caller, rule model.Address, enabled bool) error {
	return p.run(ctx, caller, "configGameRule", func(c *txn.Call, d *Deployment) error {
		rtr, err := p.resolveRouter(c, d)
		if err != nil {
			return err
		}
		return rtr.ConfigGameRule(c, d.Router, rule, enabled)
	})
}

// ConfigRouterOperator grants or revokes the router operator role
func (p *Platform) ConfigRouterOperator(ctx context.Context, caller, operator model.Address, enabled bool) error {
	return p.run(ctx, caller, "configRouterOperator", func(c *txn.Call, d *Deployment) error {
		rtr, err := p.resolveRouter(c, d)
		if err != nil {
			return err
		}
		return rtr.ConfigOperator(c, d.Router, operator, enabled)
	})
}

// TransferRouterOwnership hands the administrator role to newOwner
func (p *Platform) TransferRouterOwnership(ctx context.Context, caller, newOwner model.Address) error {
	return p.run(ctx, caller, "transferRouterOwnership", func(c *txn.Call, d *Deployment) error {
		rtr, err := p.resolveRouter(c, d)
		if err != nil {
			return err
		}
		return rtr.TransferOwnership(c, d.Router, newOwner)
	})
}
