// Package dispatch provides the main-thread dispatcher: a FIFO queue of
// pending actions drained once per host tick by the privileged goroutine.
// Any access to host-owned state must be marshalled through it.
package dispatch

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// action is a pending closure plus the sink its failure is routed to.
type action struct {
	run     func() error
	errSink func(error)
}

// Result carries the outcome of an action submitted via RunAsync.
type Result struct {
	Value any
	Err   error
}

// Dispatcher is a thread-safe FIFO queue of pending actions.
//
// The queue is unbounded so that handlers can always enqueue without
// blocking. Enqueue may be called from any goroutine, including the
// privileged one; DrainOnce must only be called by the privileged goroutine.
type Dispatcher struct {
	mu      sync.Mutex
	actions []action
	logger  zerolog.Logger
}

// New creates an empty dispatcher.
func New(logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		actions: make([]action, 0, 64), // pre-allocate for typical workloads
		logger:  logger.With().Str("component", "dispatch").Logger(),
	}
}

// Enqueue appends an action to the back of the queue and returns
// immediately. onErr receives the action's failure (returned error or
// recovered panic); it may be nil, in which case failures are logged.
func (d *Dispatcher) Enqueue(run func() error, onErr func(error)) {
	d.mu.Lock()
	d.actions = append(d.actions, action{run: run, errSink: onErr})
	d.mu.Unlock()
}

// Len returns the current queue length.
func (d *Dispatcher) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.actions)
}

// DrainOnce executes, in enqueue order, every action that was queued at the
// moment of the call. Actions enqueued during the drain are deferred to the
// next tick, bounding each drain under sustained load. Each action's failure
// is contained and routed to its own sink; one failing action never prevents
// the rest of the drain from running.
func (d *Dispatcher) DrainOnce() {
	d.mu.Lock()
	n := len(d.actions)
	d.mu.Unlock()

	for i := 0; i < n; i++ {
		d.mu.Lock()
		if len(d.actions) == 0 {
			d.mu.Unlock()
			return
		}
		a := d.actions[0]
		// Nil out the slot so the closure can be collected while the
		// backing array is reused.
		d.actions[0] = action{}
		if len(d.actions) == 1 {
			d.actions = d.actions[:0]
		} else {
			d.actions = d.actions[1:]
		}
		d.mu.Unlock()

		d.execute(a)
	}
}

func (d *Dispatcher) execute(a action) {
	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("action panic: %v", r)
			}
		}()
		return a.run()
	}()

	if err == nil {
		return
	}
	if a.errSink != nil {
		a.errSink(err)
		return
	}
	d.logger.Error().Err(err).Msg("Queued action failed with no error sink")
}

// RunAsync enqueues fn for execution on the privileged goroutine and returns
// a channel that receives its outcome once drained. The caller can await the
// result without blocking the privileged goroutine.
func (d *Dispatcher) RunAsync(fn func() (any, error)) <-chan Result {
	resultCh := make(chan Result, 1)
	d.Enqueue(func() error {
		v, err := fn()
		resultCh <- Result{Value: v, Err: err}
		return err
	}, func(err error) {
		// A panic never reaches the send above; resolve the caller here.
		select {
		case resultCh <- Result{Err: err}:
		default:
		}
	})
	return resultCh
}
