package actor

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/hedisam/goenvelope/envelope"
	"github.com/hedisam/goenvelope/response"
)

const waitTimeout = 2 * time.Second

type counter struct {
	n int
}

type increment struct {
	by int
}

type get struct{}

type block struct {
	entered chan struct{}
	release chan struct{}
}

func newBlock() block {
	return block{entered: make(chan struct{}), release: make(chan struct{})}
}

var (
	onIncrement = Handle(func(c *counter, m increment, _ *Context[*counter]) envelope.Result[int] {
		c.n += m.by
		return envelope.Reply(c.n)
	})
	onGet = Handle(func(c *counter, _ get, _ *Context[*counter]) envelope.Result[int] {
		return envelope.Reply(c.n)
	})
	onBlock = Handle(func(_ *counter, m block, _ *Context[*counter]) envelope.Result[struct{}] {
		close(m.entered)
		<-m.release
		return envelope.Reply(struct{}{})
	})
)

func spawnCounter(t *testing.T, opts ...Option) *Context[*counter] {
	t.Helper()
	c := Spawn(&counter{}, opts...)
	t.Cleanup(func() {
		c.Stop()
		c.Wait()
	})
	return c
}

func waitCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), waitTimeout)
	t.Cleanup(cancel)
	return ctx
}

// blockActor parks the actor inside a handler so later envelopes stay queued.
func blockActor(t *testing.T, c *Context[*counter]) block {
	t.Helper()
	b := newBlock()
	require.NoError(t, Tell(c.Address(), onBlock, b))
	select {
	case <-b.entered:
	case <-time.After(waitTimeout):
		t.Fatal("actor did not enter the blocking handler")
	}
	return b
}

func TestAskDeliversResult(t *testing.T) {
	c := spawnCounter(t)

	v, err := AskWait(waitCtx(t), c.Address(), onIncrement, increment{by: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	v, err = AskWait(waitCtx(t), c.Address(), onIncrement, increment{by: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, v)
}

func TestTellIsFireAndForget(t *testing.T) {
	c := spawnCounter(t)
	for i := 0; i < 100; i++ {
		require.NoError(t, Tell(c.Address(), onIncrement, increment{by: 1}))
	}

	v, err := AskWait(waitCtx(t), c.Address(), onGet, get{})
	require.NoError(t, err)
	assert.Equal(t, 100, v)
}

func TestCanceledAskIsSkipped(t *testing.T) {
	c := spawnCounter(t)
	b := blockActor(t, c)

	rx, err := Ask(c.Address(), onIncrement, increment{by: 1})
	require.NoError(t, err)
	rx.Close()
	close(b.release)

	v, err := AskWait(waitCtx(t), c.Address(), onGet, get{})
	require.NoError(t, err)
	assert.Equal(t, 0, v, "handler of a canceled ask must not run")
}

func TestAskWaitTimeoutCancelsQueuedMessage(t *testing.T) {
	c := spawnCounter(t)
	b := blockActor(t, c)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := AskWait(ctx, c.Address(), onIncrement, increment{by: 1})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	close(b.release)

	v, err := AskWait(waitCtx(t), c.Address(), onGet, get{})
	require.NoError(t, err)
	assert.Equal(t, 0, v)
}

func TestDeferredResultDoesNotBlockLoop(t *testing.T) {
	release := make(chan struct{})
	slow := Handle(func(c *counter, _ get, ctx *Context[*counter]) envelope.Result[string] {
		c.n++
		return envelope.Defer(func(ctx context.Context) string {
			select {
			case <-release:
				return "done"
			case <-ctx.Done():
				return "stopped"
			}
		})
	})

	c := spawnCounter(t)
	rx, err := Ask(c.Address(), slow, get{})
	require.NoError(t, err)

	// the loop keeps serving while the deferred result is pending
	v, err := AskWait(waitCtx(t), c.Address(), onIncrement, increment{by: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, v)

	close(release)
	s, err := rx.Recv(waitCtx(t))
	require.NoError(t, err)
	assert.Equal(t, "done", s)
}

func TestStopDropsQueuedEnvelopes(t *testing.T) {
	c := Spawn(&counter{})
	b := blockActor(t, c)

	rx, err := Ask(c.Address(), onIncrement, increment{by: 1})
	require.NoError(t, err)

	c.Stop()
	close(b.release)
	c.Wait()

	_, err = rx.Recv(waitCtx(t))
	assert.ErrorIs(t, err, response.ErrDropped)

	err = Tell(c.Address(), onIncrement, increment{by: 1})
	assert.ErrorIs(t, err, ErrStopped)
	_, err = Ask(c.Address(), onIncrement, increment{by: 1})
	assert.ErrorIs(t, err, ErrStopped)
}

func TestAddressStopRunsQueuedFirst(t *testing.T) {
	act := &counter{}
	c := Spawn(act)
	for i := 0; i < 10; i++ {
		require.NoError(t, Tell(c.Address(), onIncrement, increment{by: 1}))
	}
	require.NoError(t, c.Address().Stop())

	select {
	case <-c.Done():
	case <-time.After(waitTimeout):
		t.Fatal("actor did not stop")
	}
	// the loop has exited; reading actor state is safe now
	assert.Equal(t, 10, act.n)
}

func TestPanickingHandlerIsRecovered(t *testing.T) {
	boom := Handle(func(_ *counter, _ get, _ *Context[*counter]) envelope.Result[int] {
		panic("boom")
	})

	c := spawnCounter(t)
	_, err := AskWait(waitCtx(t), c.Address(), boom, get{})
	assert.ErrorIs(t, err, response.ErrDropped)

	v, err := AskWait(waitCtx(t), c.Address(), onIncrement, increment{by: 5})
	require.NoError(t, err)
	assert.Equal(t, 5, v)
}

func TestHandlerFailureTravelsInResult(t *testing.T) {
	type reply struct {
		n   int
		err error
	}
	errNegative := errors.New("negative increment")
	checked := Handle(func(c *counter, m increment, _ *Context[*counter]) envelope.Result[reply] {
		if m.by < 0 {
			return envelope.Reply(reply{err: errNegative})
		}
		c.n += m.by
		return envelope.Reply(reply{n: c.n})
	})

	c := spawnCounter(t)
	r, err := AskWait(waitCtx(t), c.Address(), checked, increment{by: -1})
	require.NoError(t, err)
	assert.ErrorIs(t, r.err, errNegative)
}

func TestGoIsAwaitedOnStop(t *testing.T) {
	c := Spawn(&counter{})
	started := make(chan struct{})
	var finished bool
	c.Go(func(ctx context.Context) {
		close(started)
		<-ctx.Done()
		finished = true
	})
	<-started

	c.Stop()
	c.Wait()
	assert.True(t, finished)
}

func TestWithParent(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	c := Spawn(&counter{}, WithParent(parent))
	cancel()

	select {
	case <-c.Done():
	case <-time.After(waitTimeout):
		t.Fatal("actor did not stop with its parent")
	}
	assert.ErrorIs(t, c.Context().Err(), context.Canceled)
}

func TestWithTracing(t *testing.T) {
	var buf syncBuffer
	l := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	c := spawnCounter(t, WithTracing(), WithLogger(l))
	_, err := AskWait(waitCtx(t), c.Address(), onIncrement, increment{by: 1})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "envelope invoke")
	assert.Contains(t, out, "actor_id="+c.ID())
}

func TestMailboxKinds(t *testing.T) {
	for _, kind := range []MailboxKind{RingBufferMailbox, MPSCMailbox, ChannelMailbox} {
		t.Run(kind.String(), func(t *testing.T) {
			c := spawnCounter(t, WithMailbox(kind), WithCapacity(4))
			for i := 0; i < 50; i++ {
				require.NoError(t, Tell(c.Address(), onIncrement, increment{by: 1}))
			}
			v, err := AskWait(waitCtx(t), c.Address(), onGet, get{})
			require.NoError(t, err)
			assert.Equal(t, 50, v)
		})
	}
}

func TestSmallestMailbox(t *testing.T) {
	for _, kind := range []MailboxKind{RingBufferMailbox, ChannelMailbox} {
		t.Run(kind.String(), func(t *testing.T) {
			c := spawnCounter(t, WithMailbox(kind), WithCapacity(1))
			for i := 0; i < 50; i++ {
				require.NoError(t, Tell(c.Address(), onIncrement, increment{by: 1}))
			}
			v, err := AskWait(waitCtx(t), c.Address(), onGet, get{})
			require.NoError(t, err)
			assert.Equal(t, 50, v)
		})
	}
}

func TestCustomEnvelope(t *testing.T) {
	c := spawnCounter(t)
	require.NoError(t, c.Address().Deliver(envelope.Func(func(act *counter, _ *Context[*counter]) {
		act.n = 41
	})))

	v, err := AskWait(waitCtx(t), c.Address(), onIncrement, increment{by: 1})
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

// Many senders race envelopes into one actor; every one is invoked exactly
// once by the actor's goroutine.
func TestConcurrentSenders(t *testing.T) {
	const (
		senders = 32
		each    = 200
	)
	c := spawnCounter(t, WithMailbox(MPSCMailbox))

	var (
		mu   sync.Mutex
		seen = make(map[int]bool)
	)
	g, ctx := errgroup.WithContext(waitCtx(t))
	for i := 0; i < senders; i++ {
		g.Go(func() error {
			for j := 0; j < each; j++ {
				v, err := AskWait(ctx, c.Address(), onIncrement, increment{by: 1})
				if err != nil {
					return err
				}
				mu.Lock()
				dup := seen[v]
				seen[v] = true
				mu.Unlock()
				if dup {
					return errors.New("duplicate result")
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Len(t, seen, senders*each)
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
