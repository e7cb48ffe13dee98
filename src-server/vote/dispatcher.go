package vote

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"stellarbot/src-server/utils"
)

// Dispatcher processes votes in the background so the listing site gets its
// response right away.
type Dispatcher struct {
	as      *utils.AppState
	process func(context.Context, *utils.AppState, Vote) error

	mu     sync.RWMutex
	closed bool
	queue  chan Vote
	done   chan struct{}
}

func NewDispatcher(as *utils.AppState, size int) *Dispatcher {
	return &Dispatcher{
		as:      as,
		process: Process,
		queue:   make(chan Vote, size),
		done:    make(chan struct{}),
	}
}

// Enqueue hands the vote to the worker. It returns false when the queue is
// full or closed.
func (d *Dispatcher) Enqueue(v Vote) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return false
	}
	select {
	case d.queue <- v:
		return true
	default:
		return false
	}
}

// Run processes votes until Close. Failures go to the error reporter.
func (d *Dispatcher) Run(ctx context.Context) {
	defer close(d.done)
	for v := range d.queue {
		d.handle(ctx, v)
	}
}

func (d *Dispatcher) handle(ctx context.Context, v Vote) {
	defer func() {
		if r := recover(); r != nil {
			d.as.ReportError(fmt.Errorf("panic: %v", r), "vote from "+v.SiteName)
		}
	}()
	if err := d.process(ctx, d.as, v); err != nil {
		d.as.ReportError(err, "vote from "+v.SiteName)
		return
	}
	slog.Info("vote processed", "site", v.SiteName, "user", v.UserID, "bot", v.BotID)
}

// Close stops accepting votes and waits for the queued ones.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()
	<-d.done
}
