// Package fetch provides a subscription-keyed asynchronous loader for
// bubbletea programs. A Resource has at most one fetch in flight; changing
// the key cancels the previous fetch before the next one starts.
package fetch

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/log"
)

// State is the load state of a Resource.
type State int

const (
	Pending State = iota
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Func loads the value identified by key. It must return promptly with
// ctx.Err() (or an error wrapping it) once ctx is cancelled.
type Func[T any] func(ctx context.Context, key string) (T, error)

// ResultMsg carries the outcome of one fetch back into the update loop.
type ResultMsg[T any] struct {
	owner *Resource[T]
	gen   uint64
	Key   string
	Value T
	Err   error
}

// Option configures a Resource.
type Option func(*options)

type options struct {
	logger *log.Logger
}

// WithLogger sets the logger used to report fetch failures.
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Resource tracks the value of the most recently subscribed key. It must
// only be used from the goroutine running the bubbletea update loop.
type Resource[T any] struct {
	parent context.Context
	fetch  Func[T]
	logger *log.Logger

	key        string
	subscribed bool
	closed     bool
	gen        uint64
	cancel     context.CancelFunc

	state State
	value T
	err   error
}

// New returns an unsubscribed resource. Fetch contexts derive from ctx.
func New[T any](ctx context.Context, fn Func[T], opts ...Option) *Resource[T] {
	o := options{logger: log.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Resource[T]{
		parent: ctx,
		fetch:  fn,
		logger: o.logger,
	}
}

// Subscribe switches the resource to key. If key is already the active key
// Subscribe does nothing and returns nil.
func (r *Resource[T]) Subscribe(key string) tea.Cmd {
	if r.subscribed && !r.closed && key == r.key {
		return nil
	}
	return r.start(key)
}

// Reload fetches the active key again, discarding the current value.
func (r *Resource[T]) Reload() tea.Cmd {
	if !r.subscribed || r.closed {
		return nil
	}
	return r.start(r.key)
}

func (r *Resource[T]) start(key string) tea.Cmd {
	// Ask the stale fetch to stop before issuing the new one.
	r.stop()

	r.key = key
	r.subscribed = true
	r.closed = false
	r.gen++
	r.setPending()

	ctx, cancel := context.WithCancel(r.parent)
	r.cancel = cancel

	fn, gen, owner := r.fetch, r.gen, r
	return func() tea.Msg {
		v, err := fn(ctx, key)
		return ResultMsg[T]{owner: owner, gen: gen, Key: key, Value: v, Err: err}
	}
}

// Unsubscribe cancels any in-flight fetch. Results arriving afterwards are
// ignored.
func (r *Resource[T]) Unsubscribe() {
	r.stop()
	r.closed = true
}

func (r *Resource[T]) stop() {
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
}

// Update applies msg if it is a result of this resource's current fetch.
// It reports whether msg belonged to the resource, whether or not the
// result was applied.
func (r *Resource[T]) Update(msg tea.Msg) bool {
	res, ok := msg.(ResultMsg[T])
	if !ok || res.owner != r {
		return false
	}
	if r.closed || res.gen != r.gen || res.Key != r.key {
		// A stale fetch that completed despite being cancelled.
		return true
	}
	r.stop()

	switch {
	case res.Err == nil:
		r.state = Ready
		r.value = res.Value
		r.err = nil
	case errors.Is(res.Err, context.Canceled):
		r.setPending()
	default:
		r.logger.Error("fetch failed", "key", res.Key, "err", res.Err)
		r.state = Failed
		r.err = res.Err
	}
	return true
}

func (r *Resource[T]) setPending() {
	var zero T
	r.state = Pending
	r.value = zero
	r.err = nil
}

// State returns the current load state.
func (r *Resource[T]) State() State { return r.state }

// Value returns the loaded value. It is the zero value unless State is Ready.
func (r *Resource[T]) Value() T { return r.value }

// Err returns the failure cause while State is Failed.
func (r *Resource[T]) Err() error { return r.err }

// Key returns the active key.
func (r *Resource[T]) Key() string { return r.key }

// InFlight reports whether a fetch is outstanding.
func (r *Resource[T]) InFlight() bool { return r.cancel != nil }
