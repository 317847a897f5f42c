// Package worker runs command execution units off the event-delivery path.
package worker

import (
	"context"
	"log/slog"
	"sync"

	"github.com/castorie/herald/internal/logging"
)

// Unit is one scheduled piece of work, typically "run a matched command".
type Unit func(ctx context.Context) error

// Pool executes units on a fixed set of worker goroutines. Submit never
// blocks the caller, and a unit that fails or panics is logged and
// contained: it cannot take down a worker or the submitting goroutine.
type Pool struct {
	name   string
	logger *slog.Logger

	ctx   context.Context
	queue chan Unit
	wg    sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewPool starts a pool with the given worker count and queue size.
// Units receive ctx; the pool never cancels a unit once started.
func NewPool(ctx context.Context, name string, workers, queueSize int, logger *slog.Logger) *Pool {
	if ctx == nil {
		ctx = context.Background()
	}
	if workers <= 0 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	if logger == nil {
		logger = logging.Logger()
	}

	p := &Pool{
		name:   name,
		logger: logger,
		ctx:    ctx,
		queue:  make(chan Unit, queueSize),
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for unit := range p.queue {
				p.run(unit)
			}
		}()
	}
	return p
}

// Submit schedules unit for execution and returns immediately. When the
// queue is full or the pool is closed the unit still runs asynchronously
// on its own goroutine rather than on the caller.
func (p *Pool) Submit(unit Unit) {
	if unit == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closed {
		select {
		case p.queue <- unit:
			return
		default:
		}
	}
	go p.run(unit)
}

// Close stops accepting queued work and waits for in-flight units.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *Pool) run(unit Unit) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("panic while executing command asynchronously", "pool", p.name, "panic", r)
		}
	}()
	if err := unit(p.ctx); err != nil {
		p.logger.Error("error while executing command asynchronously", "pool", p.name, "err", err)
	}
}
