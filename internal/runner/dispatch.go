package runner

import (
	"context"
	"sync"

	"github.com/five82/hitcard/internal/session"
)

// Dispatcher executes effects off the caller's goroutine and reports their
// events to out. Device effects run one at a time in submission order;
// lookups and message timers run concurrently.
type Dispatcher struct {
	runner *Runner
	ctx    context.Context
	out    func(session.Event)

	mu      sync.Mutex
	pending []session.Effect
	wake    chan struct{}
	wg      sync.WaitGroup
}

// Dispatch starts a Dispatcher bound to ctx. Work stops when ctx ends.
func (r *Runner) Dispatch(ctx context.Context, out func(session.Event)) *Dispatcher {
	d := &Dispatcher{
		runner: r,
		ctx:    ctx,
		out:    out,
		wake:   make(chan struct{}, 1),
	}
	d.wg.Add(1)
	go d.serial()
	return d
}

// Submit queues effects. It never blocks on effect execution.
func (d *Dispatcher) Submit(effs ...session.Effect) {
	for _, eff := range effs {
		if concurrent(eff) {
			d.wg.Add(1)
			go func(eff session.Effect) {
				defer d.wg.Done()
				d.emit(d.runner.Execute(d.ctx, eff))
			}(eff)
			continue
		}
		d.mu.Lock()
		d.pending = append(d.pending, eff)
		d.mu.Unlock()
		select {
		case d.wake <- struct{}{}:
		default:
		}
	}
}

// Wait blocks until ctx is done and all running effects have returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func concurrent(eff session.Effect) bool {
	switch eff.(type) {
	case session.Resolve, session.Validate, session.ClearMessage:
		return true
	default:
		return false
	}
}

func (d *Dispatcher) serial() {
	defer d.wg.Done()
	for {
		select {
		case <-d.ctx.Done():
			return
		case <-d.wake:
		}
		for {
			d.mu.Lock()
			if len(d.pending) == 0 {
				d.mu.Unlock()
				break
			}
			eff := d.pending[0]
			d.pending = d.pending[1:]
			d.mu.Unlock()
			if d.ctx.Err() != nil {
				return
			}
			d.emit(d.runner.Execute(d.ctx, eff))
		}
	}
}

func (d *Dispatcher) emit(ev session.Event) {
	if ev == nil || d.ctx.Err() != nil {
		return
	}
	d.out(ev)
}
