// Package events fans committed events out to observers.
package events

import (
	"context"
	"errors"

	"github.com/mcoot/plyr-settlement/internal/model"
)

// Publisher receives the events of a committed call, in emission order
type Publisher interface {
	Publish(ctx context.Context, evts []model.Event) error
}

// Nop discards everything
type Nop struct{}

func (Nop) Publish(context.Context, []model.Event) error { return nil }

// Multi publishes to every publisher, joining their errors
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, evts []model.Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, evts); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
