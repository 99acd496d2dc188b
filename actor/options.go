package actor

import (
	"context"
	"log/slog"

	"github.com/hedisam/goenvelope/internal/mailbox"
)

// MailboxKind selects the queue an execution context receives envelopes from.
type MailboxKind = mailbox.Kind

const (
	// RingBufferMailbox is bounded; senders block while it is full. It is the default.
	RingBufferMailbox = mailbox.RingBuffer
	// MPSCMailbox is unbounded.
	MPSCMailbox = mailbox.MPSC
	// ChannelMailbox is a bounded Go channel.
	ChannelMailbox = mailbox.Channel
)

type options struct {
	mailbox  MailboxKind
	capacity int
	logger   *slog.Logger
	parent   context.Context
	tracing  bool
}

// Option configures an execution context.
type Option func(*options)

// WithMailbox selects the mailbox kind.
func WithMailbox(kind MailboxKind) Option {
	return func(o *options) {
		o.mailbox = kind
	}
}

// WithCapacity sets the capacity of bounded mailboxes. Values below 1 select
// the default of 100.
func WithCapacity(n int) Option {
	return func(o *options) {
		o.capacity = n
	}
}

// WithLogger sets the logger used by the context instead of the package logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithParent ties the context's lifetime to ctx: when ctx is done the actor stops.
func WithParent(ctx context.Context) Option {
	return func(o *options) {
		o.parent = ctx
	}
}

// WithTracing wraps every delivered envelope so its invocation is logged at
// debug level under a trace id.
func WithTracing() Option {
	return func(o *options) {
		o.tracing = true
	}
}

func newOptions(opts []Option) options {
	o := options{
		mailbox:  RingBufferMailbox,
		capacity: mailbox.DefaultCapacity,
	}
	for _, opt := range opts {
		opt(&o)
	}
	o.checkOptions()
	return o
}

// checkOptions replaces invalid values with defaults.
func (o *options) checkOptions() {
	if o.mailbox < RingBufferMailbox || o.mailbox > ChannelMailbox {
		o.mailbox = RingBufferMailbox
	}
	if o.capacity < 1 {
		o.capacity = mailbox.DefaultCapacity
	}
	if o.logger == nil {
		o.logger = logger
	}
	if o.parent == nil {
		o.parent = context.Background()
	}
}
