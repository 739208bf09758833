package window

import (
	"sync"
	"sync/atomic"
)

// Loop runs posted funcs one at a time on a single goroutine, in post order.
//
// Concurrency model: the loop goroutine is the only one executing posted
// work, so state touched only from posted funcs needs no locking. The queue
// is unbounded and Post never blocks, which keeps posting from inside a
// posted func safe.
type Loop struct {
	mu    sync.Mutex
	queue []func()

	wake    chan struct{}
	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewLoop starts a new loop goroutine.
func NewLoop() *Loop {
	l := &Loop{
		wake:    make(chan struct{}, 1),
		stopCh:  make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go l.run()
	return l
}

func (l *Loop) run() {
	defer close(l.stopped)
	for {
		select {
		case <-l.stopCh:
			return
		case <-l.wake:
		}
		for {
			l.mu.Lock()
			if len(l.queue) == 0 {
				l.mu.Unlock()
				break
			}
			fn := l.queue[0]
			l.queue[0] = nil
			l.queue = l.queue[1:]
			l.mu.Unlock()

			fn()

			if l.closed.Load() {
				return
			}
		}
	}
}

// Post queues fn. Posts after Close are dropped.
func (l *Loop) Post(fn func()) {
	if l.closed.Load() {
		return
	}
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Do runs fn on the loop and waits for it. It reports false when the loop
// stopped before fn ran. Do must not be called from the loop goroutine.
func (l *Loop) Do(fn func()) bool {
	done := make(chan struct{})
	l.Post(func() {
		fn()
		close(done)
	})
	select {
	case <-done:
		return true
	case <-l.stopped:
		select {
		case <-done:
			return true
		default:
			return false
		}
	}
}

// Close stops the loop after the func currently running, if any, and waits
// for the loop goroutine to exit. Queued funcs that have not started are
// discarded.
func (l *Loop) Close() {
	if l.closed.CompareAndSwap(false, true) {
		close(l.stopCh)
	}
	<-l.stopped
}

// Done is closed once the loop goroutine has exited.
func (l *Loop) Done() <-chan struct{} {
	return l.stopped
}
