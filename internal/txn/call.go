// Package txn runs every state-changing entry point as one atomic, totally
// ordered call with an explicit caller identity.
package txn

import (
	"context"
	"time"

	"github.com/mcoot/plyr-settlement/internal/derive"
	"github.com/mcoot/plyr-settlement/internal/model"
	"github.com/mcoot/plyr-settlement/internal/storage"
)

// Call is the authorization context of one entry point invocation. Sender is
// the immediate caller; Origin the external party that started the call.
type Call struct {
	ctx    context.Context
	Sender model.Address
	Origin model.Address
	Now    time.Time
	Store  storage.Storage

	events *[]model.Event
}

// NewCall builds a detached call over store. Events are buffered on the call
// and never published; the executor is the only publisher.
func NewCall(ctx context.Context, sender model.Address, now time.Time, store storage.Storage) *Call {
	return &Call{
		ctx:    ctx,
		Sender: sender,
		Origin: sender,
		Now:    now,
		Store:  store,
		events: new([]model.Event),
	}
}

// Context returns the context of the outer call
func (c *Call) Context() context.Context {
	return c.ctx
}

// As returns the sub-call context seen by a component invoked by sender
func (c *Call) As(sender model.Address) *Call {
	sub := *c
	sub.Sender = sender
	return &sub
}

// Emit buffers an event until the outer call commits
func (c *Call) Emit(emitter model.Address, t model.EventType, payload any) {
	*c.events = append(*c.events, model.Event{
		Type:      t,
		Emitter:   emitter,
		Origin:    c.Origin,
		Timestamp: c.Now,
		Payload:   payload,
	})
}

// Events returns the events emitted so far, in order
func (c *Call) Events() []model.Event {
	return append([]model.Event(nil), *c.events...)
}

// CreateAddress allocates the address of a new deployment by the current
// sender and advances the sender's nonce
func (c *Call) CreateAddress() (model.Address, error) {
	nonce, err := c.Store.GetNonce(c.ctx, c.Sender)
	if err != nil {
		return model.Address{}, err
	}
	if err := c.Store.SetNonce(c.ctx, c.Sender, nonce+1); err != nil {
		return model.Address{}, err
	}
	return derive.Create(c.Sender, nonce), nil
}
