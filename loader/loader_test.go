package loader

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"hrpulse/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recorder struct {
	mu     sync.Mutex
	states []State
}

func (r *recorder) observe(_, next Snapshot[[]string]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, next.State)
}

func (r *recorder) seen() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]State(nil), r.states...)
}

func waitFor(t *testing.T, l *Loader[string, []string]) Snapshot[[]string] {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	snap, err := l.Wait(ctx)
	require.NoError(t, err)
	return snap
}

func echo(_ context.Context, params string) ([]string, error) {
	return []string{params}, nil
}

func TestLoadSuccess(t *testing.T) {
	rec := &recorder{}
	l := New("metrics", echo, Options{Timeout: time.Second})
	l.Observe(rec.observe)
	defer l.Dispose()

	assert.Equal(t, Idle, l.Snapshot().State)
	seq := l.Load("all")
	assert.Equal(t, uint64(1), seq)

	snap := waitFor(t, l)
	assert.Equal(t, Success, snap.State)
	assert.Equal(t, []string{"all"}, snap.Data)
	assert.True(t, snap.HasData)
	assert.Empty(t, snap.Message)
	assert.NoError(t, snap.Err)
	assert.Equal(t, []State{Loading, Success}, rec.seen())
}

func TestLoadingIsSetImmediatelyAndClearsError(t *testing.T) {
	release := make(chan struct{})
	calls := int32(0)
	fetch := func(ctx context.Context, _ string) ([]string, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			return nil, errors.New("backend down")
		}
		select {
		case <-release:
			return []string{"ok"}, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	l := New("alerts", fetch, Options{Timeout: time.Second})
	defer l.Dispose()

	l.Load("all")
	snap := waitFor(t, l)
	require.Equal(t, Failed, snap.State)

	l.Load("all")
	snap = l.Snapshot()
	assert.True(t, snap.Loading())
	assert.False(t, snap.Errored())
	assert.Empty(t, snap.Message)

	close(release)
	snap = waitFor(t, l)
	assert.Equal(t, Success, snap.State)
	assert.False(t, snap.Loading())
}

func TestFailureKeepsPreviousData(t *testing.T) {
	var fail atomic.Bool
	fetch := func(_ context.Context, params string) ([]string, error) {
		if fail.Load() {
			return nil, errors.New("boom")
		}
		return []string{params}, nil
	}
	l := New("heatmap", fetch, Options{Timeout: time.Second, FailureMessage: "Heatmap unavailable"})
	defer l.Dispose()

	l.Load("dept-eng")
	waitFor(t, l)

	fail.Store(true)
	l.Load("dept-ops")
	snap := waitFor(t, l)

	assert.Equal(t, Failed, snap.State)
	assert.Equal(t, "Heatmap unavailable", snap.Message)
	assert.Equal(t, []string{"dept-eng"}, snap.Data)
	assert.Equal(t, apperrors.CodeFetchFailed, apperrors.GetCode(snap.Err))
}

func TestTimeoutWinsOverLateSuccess(t *testing.T) {
	release := make(chan struct{})
	returned := make(chan struct{})
	fetch := func(_ context.Context, _ string) ([]string, error) {
		defer close(returned)
		<-release
		return []string{"late"}, nil
	}
	rec := &recorder{}
	l := New("timeline", fetch, Options{Timeout: 20 * time.Millisecond, TimeoutMessage: "Timeline took too long"})
	l.Observe(rec.observe)
	defer l.Dispose()

	l.Load("emp-001")
	snap := waitFor(t, l)
	require.Equal(t, TimedOut, snap.State)
	assert.Equal(t, "Timeline took too long", snap.Message)
	assert.Equal(t, apperrors.CodeTimeout, apperrors.GetCode(snap.Err))

	close(release)
	<-returned

	snap = l.Snapshot()
	assert.Equal(t, TimedOut, snap.State)
	assert.False(t, snap.HasData)
	assert.Nil(t, snap.Data)
	assert.Equal(t, []State{Loading, TimedOut}, rec.seen())
}

func TestDisposeSuppressesLateResult(t *testing.T) {
	release := make(chan struct{})
	returned := make(chan struct{})
	fetch := func(_ context.Context, _ string) ([]string, error) {
		defer close(returned)
		<-release
		return []string{"stale"}, nil
	}
	rec := &recorder{}
	l := New("frictions", fetch, Options{Timeout: time.Second})
	l.Observe(rec.observe)

	l.Load("all")
	before := l.Snapshot()
	l.Dispose()

	close(release)
	<-returned
	waitFor(t, l)

	after := l.Snapshot()
	assert.Equal(t, before, after)
	assert.Equal(t, []State{Loading}, rec.seen())
	assert.True(t, l.Disposed())
}

func TestDisposeSuppressesTimeout(t *testing.T) {
	started := make(chan struct{})
	fetch := func(ctx context.Context, _ string) ([]string, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	}
	l := New("milestones", fetch, Options{Timeout: 15 * time.Millisecond})

	l.Load("all")
	<-started
	l.Dispose()
	time.Sleep(40 * time.Millisecond)

	assert.Equal(t, Loading, l.Snapshot().State)
	assert.Equal(t, uint64(0), l.Load("again"))
	assert.Equal(t, uint64(1), l.Retry())
}

func TestSupersededResultIsDiscarded(t *testing.T) {
	releaseSlow := make(chan struct{})
	slowReturned := make(chan struct{})
	fetch := func(_ context.Context, params string) ([]string, error) {
		if params == "slow" {
			defer close(slowReturned)
			<-releaseSlow
		}
		return []string{params}, nil
	}
	l := New("cases", fetch, Options{Timeout: time.Second})
	defer l.Dispose()

	first := l.Load("slow")
	second := l.Load("fast")
	assert.Greater(t, second, first)

	snap := waitFor(t, l)
	require.Equal(t, Success, snap.State)
	assert.Equal(t, []string{"fast"}, snap.Data)

	close(releaseSlow)
	<-slowReturned

	snap = l.Snapshot()
	assert.Equal(t, []string{"fast"}, snap.Data)
	assert.Equal(t, second, snap.Seq)
}

func TestSupersededRequestContextIsCancelled(t *testing.T) {
	cancelled := make(chan struct{})
	fetch := func(ctx context.Context, params string) ([]string, error) {
		if params == "first" {
			<-ctx.Done()
			close(cancelled)
			return nil, ctx.Err()
		}
		return []string{params}, nil
	}
	l := New("library", fetch, Options{Timeout: time.Second})
	defer l.Dispose()

	l.Load("first")
	l.Load("second")

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("superseded request was not cancelled")
	}
	assert.Equal(t, []string{"second"}, waitFor(t, l).Data)
}

func TestRetry(t *testing.T) {
	calls := int32(0)
	fetch := func(_ context.Context, params string) ([]string, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			return nil, errors.New("first call fails")
		}
		return []string{params}, nil
	}
	l := New("reports", fetch, Options{Timeout: time.Second})
	defer l.Dispose()

	assert.Equal(t, uint64(0), l.Retry(), "retry before any load does nothing")

	l.Load("ready")
	require.Equal(t, Failed, waitFor(t, l).State)

	seq := l.Retry()
	assert.Equal(t, uint64(2), seq)
	snap := waitFor(t, l)
	assert.Equal(t, Success, snap.State)
	assert.Equal(t, []string{"ready"}, snap.Data)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestRetryWhileLoadingIsIgnored(t *testing.T) {
	release := make(chan struct{})
	calls := int32(0)
	fetch := func(ctx context.Context, _ string) ([]string, error) {
		atomic.AddInt32(&calls, 1)
		select {
		case <-release:
			return []string{"done"}, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	l := New("trends", fetch, Options{Timeout: time.Second})
	defer l.Dispose()

	seq := l.Load("all")
	assert.Equal(t, seq, l.Retry())

	close(release)
	waitFor(t, l)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestLoadDebouncedKeepsOnlyLastParams(t *testing.T) {
	var mu sync.Mutex
	var got []string
	fetch := func(_ context.Context, params string) ([]string, error) {
		mu.Lock()
		got = append(got, params)
		mu.Unlock()
		return []string{params}, nil
	}
	l := New("library", fetch, Options{Timeout: time.Second, Debounce: 25 * time.Millisecond})
	defer l.Dispose()

	l.LoadDebounced("m")
	l.LoadDebounced("me")
	l.LoadDebounced("men")

	require.Eventually(t, func() bool { return l.Snapshot().State == Success }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"men"}, got)
	assert.Equal(t, []string{"men"}, l.Snapshot().Data)
}

func TestLoadCancelsPendingDebounce(t *testing.T) {
	var calls int32
	fetch := func(_ context.Context, params string) ([]string, error) {
		atomic.AddInt32(&calls, 1)
		return []string{params}, nil
	}
	l := New("cases", fetch, Options{Timeout: time.Second, Debounce: 20 * time.Millisecond})
	defer l.Dispose()

	l.LoadDebounced("typed")
	l.Load("now")
	waitFor(t, l)
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, []string{"now"}, l.Snapshot().Data)
}

func TestDisposeDropsPendingDebounce(t *testing.T) {
	var calls int32
	fetch := func(_ context.Context, params string) ([]string, error) {
		atomic.AddInt32(&calls, 1)
		return []string{params}, nil
	}
	l := New("metrics", fetch, Options{Debounce: 10 * time.Millisecond})

	l.LoadDebounced("search")
	l.Dispose()
	time.Sleep(30 * time.Millisecond)

	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
	assert.Equal(t, Idle, l.Snapshot().State)
}

func TestPanickingFetcherFails(t *testing.T) {
	fetch := func(context.Context, string) ([]string, error) {
		panic("fixture missing")
	}
	l := New("heatmap", fetch, Options{Timeout: time.Second})
	defer l.Dispose()

	l.Load("all")
	snap := waitFor(t, l)

	assert.Equal(t, Failed, snap.State)
	assert.Contains(t, snap.Err.Error(), "fixture missing")
}

func TestWaitHonoursContext(t *testing.T) {
	fetch := func(ctx context.Context, _ string) ([]string, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	l := New("alerts", fetch, Options{Timeout: time.Second})
	defer l.Dispose()

	l.Load("all")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	snap, err := l.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, Loading, snap.State)
}

func TestDefaults(t *testing.T) {
	opts := Options{}.withDefaults()

	assert.Equal(t, DefaultTimeout, opts.Timeout)
	assert.Equal(t, DefaultDebounce, opts.Debounce)
	assert.Equal(t, DefaultFailureMessage, opts.FailureMessage)
	assert.Equal(t, DefaultTimeoutMessage, opts.TimeoutMessage)
	assert.NotNil(t, opts.Logger)
}
