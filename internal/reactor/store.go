package reactor

import (
	"context"
	"io"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
)

// Option configures a Store.
type Option func(*storeConfig)

type storeConfig struct {
	logger *log.Logger
	name   string
}

// WithLogger sets the logger used for store diagnostics.
func WithLogger(logger *log.Logger) Option {
	return func(c *storeConfig) {
		c.logger = logger
	}
}

// WithName labels the store in log output.
func WithName(name string) Option {
	return func(c *storeConfig) {
		c.name = name
	}
}

// Store binds a Reactor to a Loop and holds its current state.
type Store[A, M, S any] struct {
	reactor Reactor[A, M, S]
	loop    *Loop
	logger  *log.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	closed  atomic.Bool
	detach  func()

	mu        sync.RWMutex
	state     S
	observers []observer[S]
	nextObs   uint64
}

type observer[S any] struct {
	id uint64
	fn func(S)
}

// NewStore creates a store for r running on loop. Stores are closed when
// ctx is done or Close is called.
func NewStore[A, M, S any](ctx context.Context, loop *Loop, r Reactor[A, M, S], opts ...Option) *Store[A, M, S] {
	cfg := storeConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	logger := cfg.logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if cfg.name != "" {
		logger = logger.With("store", cfg.name)
	}

	ctx, cancel := context.WithCancel(ctx)
	s := &Store[A, M, S]{
		reactor: r,
		loop:    loop,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
		state:   r.InitialState(),
	}
	if t, ok := r.(Transformer[M, S]); ok {
		s.detach = t.Transform(s.emit)
	}
	return s
}

// Reactor returns the reactor driving the store.
func (s *Store[A, M, S]) Reactor() Reactor[A, M, S] {
	return s.reactor
}

// State returns the current state snapshot.
func (s *Store[A, M, S]) State() S {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Send schedules action on the loop.
func (s *Store[A, M, S]) Send(action A) {
	scheduled := s.loop.Schedule(func() {
		if s.Closed() {
			s.logger.Debug("action dropped after close")
			return
		}
		s.consume(s.reactor.Mutate(s.ctx, s.State(), action))
	})
	if !scheduled {
		s.logger.Debug("action dropped, loop stopped")
	}
}

// Observe registers fn to be called on the loop with every new state.
func (s *Store[A, M, S]) Observe(fn func(S)) (cancel func()) {
	s.mu.Lock()
	s.nextObs++
	id := s.nextObs
	s.observers = append(s.observers, observer[S]{id: id, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, o := range s.observers {
			if o.id == id {
				s.observers = append(s.observers[:i:i], s.observers[i+1:]...)
				return
			}
		}
	}
}

// Close tears the store down. Work already scheduled is dropped before it
// touches state. Close is idempotent.
func (s *Store[A, M, S]) Close() {
	if s.closed.Swap(true) {
		return
	}
	s.cancel()
	if s.detach != nil {
		s.detach()
	}
	s.mu.Lock()
	s.observers = nil
	s.mu.Unlock()
}

// Closed reports whether Close has been called or the store's context is
// done.
func (s *Store[A, M, S]) Closed() bool {
	return s.closed.Load() || s.ctx.Err() != nil
}

func (s *Store[A, M, S]) emit(d Deferred[M, S]) {
	s.loop.Schedule(func() {
		if s.Closed() {
			return
		}
		s.apply(d(s.ctx, s.State())...)
	})
}

func (s *Store[A, M, S]) consume(stream Stream[M]) {
	s.apply(stream.values...)
	if stream.async == nil {
		return
	}
	go func() {
		for {
			select {
			case <-s.ctx.Done():
				return
			case m, ok := <-stream.async:
				if !ok {
					return
				}
				s.loop.Schedule(func() {
					if s.Closed() {
						s.logger.Debug("deferred mutation dropped after close")
						return
					}
					s.apply(m)
				})
			}
		}
	}()
}

func (s *Store[A, M, S]) apply(mutations ...M) {
	for _, m := range mutations {
		s.mu.Lock()
		s.state = s.reactor.Reduce(s.state, m)
		state := s.state
		observers := s.observers
		s.mu.Unlock()

		for _, o := range observers {
			o.fn(state)
		}
	}
}
