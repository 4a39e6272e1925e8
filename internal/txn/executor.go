package txn

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/plyr-settlement/internal/dependencies/clock"
	"github.com/mcoot/plyr-settlement/internal/events"
	"github.com/mcoot/plyr-settlement/internal/model"
	"github.com/mcoot/plyr-settlement/internal/storage"
	"github.com/mcoot/plyr-settlement/internal/storage/journal"
)

// Executor serialises calls and applies each one atomically
type Executor struct {
	mu        sync.Mutex
	store     storage.Storage
	clock     clock.Clock
	publisher events.Publisher
	logger    *slog.Logger
}

// NewExecutor creates an executor over store
func NewExecutor(store storage.Storage, clk clock.Clock, publisher events.Publisher, logger *slog.Logger) *Executor {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Executor{
		store:     store,
		clock:     clk,
		publisher: publisher,
		logger:    logger,
	}
}

// Run executes fn as sender. Writes made through Call.Store are committed
// only if fn succeeds; on any error nothing is persisted and no events are
// published.
func (e *Executor) Run(ctx context.Context, sender model.Address, name string, fn func(*Call) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	j := journal.New(e.store)
	call := NewCall(ctx, sender, e.clock.Now(), j)

	if err := fn(call); err != nil {
		e.logger.Debug("call rejected", "call", name, "sender", sender, "error", err)
		return err
	}

	if err := j.Commit(ctx); err != nil {
		e.logger.Error("failed to commit call", "call", name, "sender", sender, "error", err)
		return fmt.Errorf("commit %s: %w", name, err)
	}

	evts := call.Events()
	e.logger.Debug("call committed", "call", name, "sender", sender, "writes", j.Len(), "events", len(evts))

	if err := e.publisher.Publish(ctx, evts); err != nil {
		e.logger.Warn("failed to publish events", "call", name, "error", err)
	}
	return nil
}

// View executes fn against a consistent snapshot. Any writes are discarded.
func (e *Executor) View(ctx context.Context, sender model.Address, fn func(*Call) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return fn(NewCall(ctx, sender, e.clock.Now(), journal.New(e.store)))
}

// Now returns the executor's current time
func (e *Executor) Now() time.Time {
	return e.clock.Now()
}
