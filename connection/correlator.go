package connection

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/isekream/WindsurfUnityMCP/protocol"
)

// Outcome is the resolution of a pending outbound call: the peer's response,
// or the error that ended the call first.
type Outcome struct {
	Response protocol.Message
	Err      error
}

type pendingCall struct {
	ch chan Outcome
}

// Correlator pairs outbound requests with their eventual responses by id.
// Every pending call is resolved exactly once: by a matching response, by a
// timeout at the call site, or by CancelAll on connection loss.
type Correlator struct {
	mu     sync.Mutex
	calls  map[string]*pendingCall
	logger zerolog.Logger
	newID  func() string
}

// NewCorrelator creates an empty correlator. Ids are UUIDv7 so they stay
// unique and time-sortable across the connection's lifetime.
func NewCorrelator(logger zerolog.Logger) *Correlator {
	return &Correlator{
		calls:  make(map[string]*pendingCall),
		logger: logger.With().Str("component", "correlator").Logger(),
		newID: func() string {
			return uuid.Must(uuid.NewV7()).String()
		},
	}
}

// NewCall registers a fresh pending call and returns its id together with
// the channel its outcome will arrive on.
func (c *Correlator) NewCall() (string, <-chan Outcome) {
	call := &pendingCall{ch: make(chan Outcome, 1)}

	c.mu.Lock()
	id := c.newID()
	c.calls[id] = call
	c.mu.Unlock()

	return id, call.ch
}

// Resolve completes the pending call registered under id. A resolve for an
// unknown id indicates a stale or duplicate response; it is logged and
// dropped, never fatal.
func (c *Correlator) Resolve(id string, out Outcome) bool {
	c.mu.Lock()
	call, exists := c.calls[id]
	if exists {
		delete(c.calls, id)
	}
	c.mu.Unlock()

	if !exists {
		c.logger.Warn().Str("id", id).Msg("Response for unknown request id, dropping")
		return false
	}

	call.ch <- out
	return true
}

// Forget removes a pending call without resolving it. Used by the call site
// when it stops waiting (timeout, context cancellation) so that a late
// response is treated as stale.
func (c *Correlator) Forget(id string) {
	c.mu.Lock()
	delete(c.calls, id)
	c.mu.Unlock()
}

// CancelAll resolves every outstanding call with reason so no caller waits
// forever. Invoked on disconnect. Returns the number of calls cancelled.
func (c *Correlator) CancelAll(reason error) int {
	c.mu.Lock()
	cancelled := c.calls
	c.calls = make(map[string]*pendingCall)
	c.mu.Unlock()

	for id, call := range cancelled {
		c.logger.Debug().Str("id", id).Msg("Cancelling pending call")
		call.ch <- Outcome{Err: reason}
	}
	return len(cancelled)
}

// Pending returns the number of outstanding calls.
func (c *Correlator) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}
