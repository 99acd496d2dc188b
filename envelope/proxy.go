package envelope

import (
	"log/slog"
	"time"

	"github.com/rs/xid"
)

type funcProxy[A, C any] struct {
	fn func(act A, ctx C)
}

// Func returns an envelope that runs fn against the actor once. It is meant for
// synthetic messages and control signals that need no response channel.
func Func[A, C any](fn func(act A, ctx C)) Envelope[A, C] {
	return WithProxy[A, C](&funcProxy[A, C]{fn: fn})
}

func (p *funcProxy[A, C]) Handle(act A, ctx C) {
	fn := p.fn
	p.fn = nil
	if fn != nil {
		fn(act, ctx)
	}
}

func (p *funcProxy[A, C]) Drop() {
	p.fn = nil
}

type batch[A, C any] struct {
	envs []Envelope[A, C]
}

// Batch combines several envelopes into one. Invoking it invokes each inner
// envelope in order; the batch itself runs once.
func Batch[A, C any](envs ...Envelope[A, C]) Envelope[A, C] {
	return WithProxy[A, C](&batch[A, C]{envs: envs})
}

func (b *batch[A, C]) Handle(act A, ctx C) {
	for len(b.envs) > 0 {
		env := b.envs[0]
		b.envs = b.envs[1:]
		env.Handle(act, ctx)
	}
}

func (b *batch[A, C]) Drop() {
	envs := b.envs
	b.envs = nil
	for _, env := range envs {
		env.Drop()
	}
}

type traced[A, C any] struct {
	inner    Envelope[A, C]
	id       xid.ID
	created  time.Time
	logger   *slog.Logger
	finished bool
}

// Traced wraps env so its invocation is logged at debug level under a trace id
// assigned now.
func Traced[A, C any](env Envelope[A, C], logger *slog.Logger) Envelope[A, C] {
	if logger == nil {
		logger = slog.Default()
	}
	return WithProxy[A, C](&traced[A, C]{
		inner:   env,
		id:      xid.New(),
		created: time.Now(),
		logger:  logger,
	})
}

func (t *traced[A, C]) Handle(act A, ctx C) {
	if t.finished {
		return
	}
	t.finished = true

	start := time.Now()
	t.logger.Debug("envelope invoke", "trace_id", t.id.String(), "queued", start.Sub(t.created))
	t.inner.Handle(act, ctx)
	t.logger.Debug("envelope done", "trace_id", t.id.String(), "took", time.Since(start))
}

func (t *traced[A, C]) Drop() {
	if t.finished {
		return
	}
	t.finished = true
	t.logger.Debug("envelope dropped", "trace_id", t.id.String())
	t.inner.Drop()
}
