package actor

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/rs/xid"

	"github.com/hedisam/goenvelope/envelope"
	"github.com/hedisam/goenvelope/internal/mailbox"
)

// cell is the state shared by both context flavors: the actor value and the
// mailbox it is fed from. Only the goroutine holding the consumer touches
// actor.
type cell[A, C any] struct {
	id     string
	actor  A
	tx     mailbox.Producer
	rx     mailbox.Consumer
	logger *slog.Logger
}

func newCell[A, C any](act A, o options) *cell[A, C] {
	id := xid.New().String()
	tx, rx := mailbox.New(o.mailbox, o.capacity)
	return &cell[A, C]{
		id:     id,
		actor:  act,
		tx:     tx,
		rx:     rx,
		logger: o.logger.With("actor_id", id, "actor", fmt.Sprintf("%T", act)),
	}
}

func (c *cell[A, C]) invoke(message interface{}, ctx C) {
	env, ok := message.(envelope.Envelope[A, C])
	if !ok {
		c.logger.Warn("dropping unknown mailbox item", "type", fmt.Sprintf("%T", message))
		return
	}

	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("handler panicked", "panic", r, "stack", string(debug.Stack()))
			env.Drop()
		}
	}()
	env.Handle(c.actor, ctx)
}

// dispose closes the mailbox and releases every envelope still queued.
func (c *cell[A, C]) dispose() {
	leftovers := c.rx.Dispose()
	for _, message := range leftovers {
		if env, ok := message.(envelope.Envelope[A, C]); ok {
			env.Drop()
		}
	}
	if len(leftovers) > 0 {
		c.logger.Debug("dropped undelivered envelopes", "count", len(leftovers))
	}
}
