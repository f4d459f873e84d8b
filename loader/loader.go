// Package loader implements the fetch/timeout/error/retry state machine shared by every
// dashboard section.
//
// A Loader starts Idle. Load moves it to Loading and issues a request tagged with a
// monotonically increasing sequence number. The request settles as Success, Failed or
// TimedOut, whichever of the fetch and the timeout happens first. Only the latest request
// may apply a transition; results of superseded or expired requests are discarded. After
// Dispose no transition is ever applied.
package loader

import (
	"context"
	"fmt"
	"sync"
	"time"

	"hrpulse/apperrors"

	"go.uber.org/zap"
)

type State string

const (
	Idle     State = "idle"
	Loading  State = "loading"
	Success  State = "success"
	Failed   State = "error"
	TimedOut State = "timed_out"
)

const (
	DefaultTimeout        = 8 * time.Second
	DefaultDebounce       = 300 * time.Millisecond
	DefaultFailureMessage = "Could not load data. Please try again."
	DefaultTimeoutMessage = "Loading took too long. Please try again."
)

// Fetcher retrieves the data for one request. ctx is cancelled when the request is
// superseded, expires, or the loader is disposed.
type Fetcher[P, T any] func(ctx context.Context, params P) (T, error)

// Observer is notified of every applied transition, in order, while the loader's lock
// is held. Observers must not call back into the loader.
type Observer[T any] func(prev, next Snapshot[T])

// Snapshot is an immutable view of the loader state.
type Snapshot[T any] struct {
	State State
	// Data is the last successfully loaded value. Failures never replace it.
	Data    T
	HasData bool
	// Message is the static, user-facing error text for Failed and TimedOut.
	Message string
	// Err carries the diagnostic cause (FETCH_FAILED or TIMEOUT) for logs, never for display.
	Err       error
	Seq       uint64
	UpdatedAt time.Time
}

func (s Snapshot[T]) Loading() bool {
	return s.State == Loading
}

// Errored reports whether the snapshot shows the error affordance.
func (s Snapshot[T]) Errored() bool {
	return s.State == Failed || s.State == TimedOut
}

type Options struct {
	Timeout        time.Duration
	Debounce       time.Duration
	FailureMessage string
	TimeoutMessage string
	Logger         *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.Timeout == 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Debounce == 0 {
		o.Debounce = DefaultDebounce
	}
	if o.FailureMessage == "" {
		o.FailureMessage = DefaultFailureMessage
	}
	if o.TimeoutMessage == "" {
		o.TimeoutMessage = DefaultTimeoutMessage
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

type Loader[P, T any] struct {
	name  string
	fetch Fetcher[P, T]
	opts  Options
	log   *zap.Logger

	root       context.Context
	cancelRoot context.CancelFunc

	mu        sync.Mutex
	snap      Snapshot[T]
	seq       uint64
	params    P
	hasParams bool
	disposed  bool
	observers []Observer[T]

	cancelInflight context.CancelFunc
	settled        chan struct{}

	debounce    *time.Timer
	debounceGen uint64
}

func New[P, T any](name string, fetch Fetcher[P, T], opts Options) *Loader[P, T] {
	opts = opts.withDefaults()
	root, cancel := context.WithCancel(context.Background())
	return &Loader[P, T]{
		name:       name,
		fetch:      fetch,
		opts:       opts,
		log:        opts.Logger.With(zap.String("section", name)),
		root:       root,
		cancelRoot: cancel,
		snap:       Snapshot[T]{State: Idle},
	}
}

func (l *Loader[P, T]) Name() string {
	return l.name
}

// Observe registers fn for all later transitions.
func (l *Loader[P, T]) Observe(fn Observer[T]) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.observers = append(l.observers, fn)
}

func (l *Loader[P, T]) Snapshot() Snapshot[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snap
}

// Load issues a new request for params and returns its sequence number, or 0 once disposed.
// Any pending debounced load is dropped.
func (l *Loader[P, T]) Load(params P) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.disposed {
		return 0
	}
	l.stopDebounceLocked()
	return l.startLocked(params)
}

// LoadDebounced loads params once no further LoadDebounced or Load call arrives within
// the debounce window.
func (l *Loader[P, T]) LoadDebounced(params P) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.disposed {
		return
	}
	l.stopDebounceLocked()
	gen := l.debounceGen
	l.debounce = time.AfterFunc(l.opts.Debounce, func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if l.disposed || gen != l.debounceGen {
			return
		}
		l.debounce = nil
		l.startLocked(params)
	})
}

// Retry re-issues the last request. It is a no-op while loading, before the first load,
// or after disposal; the returned sequence number is then that of the current request.
func (l *Loader[P, T]) Retry() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.disposed || !l.hasParams || l.snap.State == Loading {
		return l.seq
	}
	l.log.Debug("retrying after user request", zap.String("from_state", string(l.snap.State)))
	return l.startLocked(l.params)
}

// Wait blocks until the request current at call time settles or ctx is done, and returns
// the snapshot at that point.
func (l *Loader[P, T]) Wait(ctx context.Context) (Snapshot[T], error) {
	l.mu.Lock()
	settled := l.settled
	l.mu.Unlock()

	if settled != nil {
		select {
		case <-settled:
		case <-ctx.Done():
			return l.Snapshot(), ctx.Err()
		}
	}
	return l.Snapshot(), nil
}

// Dispose tears the loader down. In-flight requests are cancelled and their results,
// along with any timeout or debounce that fires later, are ignored.
func (l *Loader[P, T]) Dispose() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.disposed {
		return
	}
	l.disposed = true
	l.stopDebounceLocked()
	l.cancelRoot()
	l.log.Debug("loader disposed", zap.Uint64("last_seq", l.seq))
}

func (l *Loader[P, T]) Disposed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.disposed
}

func (l *Loader[P, T]) stopDebounceLocked() {
	l.debounceGen++
	if l.debounce != nil {
		l.debounce.Stop()
		l.debounce = nil
	}
}

func (l *Loader[P, T]) startLocked(params P) uint64 {
	if l.cancelInflight != nil {
		l.cancelInflight()
	}
	l.seq++
	seq := l.seq
	l.params = params
	l.hasParams = true

	ctx, cancel := context.WithCancel(l.root)
	settled := make(chan struct{})
	l.cancelInflight = cancel
	l.settled = settled

	next := l.snap
	next.State = Loading
	next.Message = ""
	next.Err = nil
	next.Seq = seq
	l.transitionLocked(next)

	go l.run(ctx, cancel, seq, params, settled)
	return seq
}

type outcome[T any] struct {
	data T
	err  error
}

func (l *Loader[P, T]) run(ctx context.Context, cancel context.CancelFunc, seq uint64, params P, settled chan struct{}) {
	defer close(settled)
	defer cancel()

	results := make(chan outcome[T], 1)
	go func() {
		results <- l.call(ctx, params)
	}()

	timer := time.NewTimer(l.opts.Timeout)
	defer timer.Stop()

	select {
	case out := <-results:
		l.settle(seq, out)
	case <-timer.C:
		l.expire(seq)
	case <-ctx.Done():
		// Superseded or disposed: whoever cancelled owns the state now.
	}
}

func (l *Loader[P, T]) call(ctx context.Context, params P) (out outcome[T]) {
	defer func() {
		if r := recover(); r != nil {
			out.err = fmt.Errorf("fetch panicked: %v", r)
		}
	}()
	out.data, out.err = l.fetch(ctx, params)
	return out
}

func (l *Loader[P, T]) settle(seq uint64, out outcome[T]) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.liveLocked(seq) {
		l.log.Debug("discarding stale result", zap.Uint64("seq", seq), zap.Uint64("current_seq", l.seq))
		return
	}

	next := l.snap
	next.Seq = seq
	if out.err != nil {
		next.State = Failed
		next.Message = l.opts.FailureMessage
		next.Err = apperrors.FetchFailed(l.name, out.err)
		l.log.Warn("section fetch failed", zap.Uint64("seq", seq), zap.Error(out.err))
	} else {
		next.State = Success
		next.Data = out.data
		next.HasData = true
		next.Message = ""
		next.Err = nil
	}
	l.transitionLocked(next)
}

func (l *Loader[P, T]) expire(seq uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.liveLocked(seq) {
		return
	}

	next := l.snap
	next.Seq = seq
	next.State = TimedOut
	next.Message = l.opts.TimeoutMessage
	next.Err = apperrors.Timeout(l.name, l.opts.Timeout)
	l.log.Warn("section fetch timed out", zap.Uint64("seq", seq), zap.Duration("timeout", l.opts.Timeout))
	l.transitionLocked(next)
}

// liveLocked reports whether a settlement for seq may still be applied.
func (l *Loader[P, T]) liveLocked(seq uint64) bool {
	return !l.disposed && seq == l.seq && l.snap.State == Loading
}

func (l *Loader[P, T]) transitionLocked(next Snapshot[T]) {
	prev := l.snap
	next.UpdatedAt = time.Now()
	l.snap = next
	for _, fn := range l.observers {
		fn(prev, next)
	}
}
