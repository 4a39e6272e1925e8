package platform

import (
	"context"
	"time"

	"github.com/mcoot/plyr-settlement/internal/model"
	"github.com/mcoot/plyr-settlement/internal/services/room"
	"github.com/mcoot/plyr-settlement/internal/txn"
)

// RoomView is a room together with its current balances
type RoomView struct {
	Room     *model.Room
	Balances []room.AssetBalance
}

// CreateRoom opens the next room of gameID
func (p *Platform) CreateRoom(ctx context.Context, caller model.Address, gameID string, duration time.Duration) (*model.Room, error) {
	var r *model.Room
	err := p.run(ctx, caller, "create", func(c *txn.Call, d *Deployment) error {
		rule, err := p.resolveGameRule(c, d)
		if err != nil {
			return err
		}
		r, err = rule.Create(c, d.GameRule, gameID, duration)
		return err
	})
	return r, err
}

// Join adds usernames to a room
func (p *Platform) Join(ctx context.Context, caller model.Address, gameID string, roomNumber uint64, usernames []string) error {
	return p.run(ctx, caller, "join", func(c *txn.Call, d *Deployment) error {
		rule, err := p.resolveGameRule(c, d)
		if err != nil {
			return err
		}
		return rule.Join(c, d.GameRule, gameID, roomNumber, usernames)
	})
}

// Leave removes usernames from a room
func (p *Platform) Leave(ctx context.Context, caller model.Address, gameID string, roomNumber uint64, usernames []string) error {
	return p.run(ctx, caller, "leave", func(c *txn.Call, d *Deployment) error {
		rule, err := p.resolveGameRule(c, d)
		if err != nil {
			return err
		}
		return rule.Leave(c, d.GameRule, gameID, roomNumber, usernames)
	})
}

// Pay moves funds from username's mirror into a room
func (p *Platform) Pay(ctx context.Context, caller model.Address, gameID string, roomNumber uint64, username string, asset model.Address, amount model.Amount) error {
	return p.run(ctx, caller, "pay", func(c *txn.Call, d *Deployment) error {
		rule, err := p.resolveGameRule(c, d)
		if err != nil {
			return err
		}
		return rule.Pay(c, d.GameRule, gameID, roomNumber, username, asset, amount)
	})
}

// Earn moves funds from a room to username's mirror, less the platform fee
func (p *Platform) Earn(ctx context.Context, caller model.Address, gameID string, roomNumber uint64, username string, asset model.Address, amount model.Amount) error {
	return p.run(ctx, caller, "earn", func(c *txn.Call, d *Deployment) error {
		rule, err := p.resolveGameRule(c, d)
		if err != nil {
			return err
		}
		return rule.Earn(c, d.GameRule, gameID, roomNumber, username, asset, amount)
	})
}

// End finishes a drained room
func (p *Platform) End(ctx context.Context, caller model.Address, gameID string, roomNumber uint64) error {
	return p.run(ctx, caller, "end", func(c *txn.Call, d *Deployment) error {
		rule, err := p.resolveGameRule(c, d)
		if err != nil {
			return err
		}
		return rule.End(c, d.GameRule, gameID, roomNumber)
	})
}

// Close force-finishes a room past its deadline
func (p *Platform) Close(ctx context.Context, caller model.Address, gameID string, roomNumber uint64, recipient model.Address) error {
	return p.run(ctx, caller, "close", func(c *txn.Call, d *Deployment) error {
		rule, err := p.resolveGameRule(c, d)
		if err != nil {
			return err
		}
		return rule.Close(c, d.GameRule, gameID, roomNumber, recipient)
	})
}

// Room returns a room and its balances
func (p *Platform) Room(ctx context.Context, gameID string, roomNumber uint64) (*RoomView, error) {
	var view *RoomView
	err := p.view(ctx, func(c *txn.Call, d *Deployment) error {
		rule, err := p.resolveGameRule(c, d)
		if err != nil {
			return err
		}
		r, err := rule.Room(c, d.GameRule, gameID, roomNumber)
		if err != nil {
			return err
		}
		balances, err := p.rooms.Balances(c, r.Address)
		if err != nil {
			return err
		}
		view = &RoomView{Room: r, Balances: balances}
		return nil
	})
	return view, err
}

// ComputeRoomAddress derives a room's address
func (p *Platform) ComputeRoomAddress(ctx context.Context, gameID string, roomNumber uint64) (model.Address, error) {
	var addr model.Address
	err := p.view(ctx, func(c *txn.Call, d *Deployment) error {
		rule, err := p.resolveGameRule(c, d)
		if err != nil {
			return err
		}
		addr, err = rule.ComputeRoomAddress(c, d.GameRule, gameID, roomNumber)
		return err
	})
	return addr, err
}

// GameRoomCount returns how many rooms gameID has had
func (p *Platform) GameRoomCount(ctx context.Context, gameID string) (uint64, error) {
	var n uint64
	err := p.view(ctx, func(c *txn.Call, d *Deployment) error {
		rule, err := p.resolveGameRule(c, d)
		if err != nil {
			return err
		}
		n, err = rule.GameRoomCount(c, d.GameRule, gameID)
		return err
	})
	return n, err
}

// RuleState returns the game rule's configuration
func (p *Platform) RuleState(ctx context.Context) (*model.GameRule, error) {
	var g *model.GameRule
	err := p.view(ctx, func(c *txn.Call, d *Deployment) error {
		rule, err := p.resolveGameRule(c, d)
		if err != nil {
			return err
		}
		g, err = rule.State(c, d.GameRule)
		return err
	})
	return g, err
}

// ConfigRuleOperator grants or revokes the game rule operator role
func (p *Platform) ConfigRuleOperator(ctx context.Context, caller, operator model.Address, enabled bool) error {
	return p.run(ctx, caller, "configRuleOperator", func(c *txn.Call, d *Deployment) error {
		rule, err := p.resolveGameRule(c, d)
		if err != nil {
			return err
		}
		return rule.ConfigOperator(c, d.GameRule, operator, enabled)
	})
}

// ConfigPlatformFee sets the fee percentage taken from earnings
func (p *Platform) ConfigPlatformFee(ctx context.Context, caller model.Address, percent uint64) error {
	return p.run(ctx, caller, "configPlatformFee", func(c *txn.Call, d *Deployment) error {
		rule, err := p.resolveGameRule(c, d)
		if err != nil {
			return err
		}
		return rule.ConfigPlatformFee(c, d.GameRule, percent)
	})
}

// ConfigFeeTo sets the platform fee recipient
func (p *Platform) ConfigFeeTo(ctx context.Context, caller, feeTo model.Address) error {
	return p.run(ctx, caller, "configFeeTo", func(c *txn.Call, d *Deployment) error {
		rule, err := p.resolveGameRule(c, d)
		if err != nil {
			return err
		}
		return rule.ConfigFeeTo(c, d.GameRule, feeTo)
	})
}

// TransferRuleOwnership hands the game rule owner role to newOwner
func (p *Platform) TransferRuleOwnership(ctx context.Context, caller, newOwner model.Address) error {
	return p.run(ctx, caller, "transferRuleOwnership", func(c *txn.Call, d *Deployment) error {
		rule, err := p.resolveGameRule(c, d)
		if err != nil {
			return err
		}
		return rule.TransferOwnership(c, d.GameRule, newOwner)
	})
}
