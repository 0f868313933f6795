package reactor

import (
	"context"
	"errors"
	"sync"
)

// ErrLoopRunning is returned when Run is called on a loop that is already running.
var ErrLoopRunning = errors.New("reactor: loop already running")

// Loop is a serial FIFO executor. Functions passed to Schedule run one at a
// time on the goroutine that called Run.
type Loop struct {
	mu      sync.Mutex
	cond    *sync.Cond
	queue   []func()
	busy    bool
	running bool
	stopped bool
}

// NewLoop creates a loop. Nothing runs until Run is called.
func NewLoop() *Loop {
	l := &Loop{}
	l.cond = sync.NewCond(&l.mu)
	return l
}

// Schedule enqueues fn. It reports false if the loop has been stopped.
// Schedule never blocks and is safe to call from any goroutine, including
// from inside a scheduled function.
func (l *Loop) Schedule(fn func()) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopped {
		return false
	}
	l.queue = append(l.queue, fn)
	l.cond.Broadcast()
	return true
}

// Run executes scheduled functions until ctx is done or Stop is called.
// Pending functions are discarded when the loop stops.
func (l *Loop) Run(ctx context.Context) error {
	l.mu.Lock()
	if l.running {
		l.mu.Unlock()
		return ErrLoopRunning
	}
	l.running = true
	l.mu.Unlock()

	stop := context.AfterFunc(ctx, l.Stop)
	defer stop()

	for {
		l.mu.Lock()
		for len(l.queue) == 0 && !l.stopped {
			l.cond.Wait()
		}
		if l.stopped {
			l.queue = nil
			l.running = false
			l.cond.Broadcast()
			l.mu.Unlock()
			return ctx.Err()
		}
		fn := l.queue[0]
		l.queue[0] = nil
		l.queue = l.queue[1:]
		l.busy = true
		l.mu.Unlock()

		fn()

		l.mu.Lock()
		l.busy = false
		l.cond.Broadcast()
		l.mu.Unlock()
	}
}

// Stop stops the loop. Later calls to Schedule report false.
func (l *Loop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stopped = true
	l.cond.Broadcast()
}

// Flush blocks until the queue is empty and nothing is running, including
// work scheduled by the functions that ran in the meantime. It returns
// immediately once the loop is stopped. Calling Flush from a scheduled
// function deadlocks.
func (l *Loop) Flush() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for (len(l.queue) > 0 || l.busy) && !l.stopped {
		l.cond.Wait()
	}
}
