package host

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/isekream/WindsurfUnityMCP/dispatch"
)

// Loop is the privileged goroutine: it ticks at the editor's frame interval
// and drains the dispatcher once per tick. Nothing else may touch host
// state.
type Loop struct {
	dispatcher *dispatch.Dispatcher
	interval   time.Duration
	logger     zerolog.Logger

	stopCh    chan struct{}
	stoppedCh chan struct{}
}

// NewLoop creates a tick loop for the given dispatcher.
func NewLoop(d *dispatch.Dispatcher, interval time.Duration, logger zerolog.Logger) *Loop {
	return &Loop{
		dispatcher: d,
		interval:   interval,
		logger:     logger.With().Str("component", "tickloop").Logger(),
		stopCh:     make(chan struct{}),
		stoppedCh:  make(chan struct{}),
	}
}

// Start begins ticking in a goroutine.
func (l *Loop) Start() {
	go l.run()
}

// Stop signals the loop to stop and waits for the final drain to finish.
func (l *Loop) Stop() {
	close(l.stopCh)
	<-l.stoppedCh
}

func (l *Loop) run() {
	defer close(l.stoppedCh)

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	l.logger.Debug().Dur("interval", l.interval).Msg("Tick loop started")
	for {
		select {
		case <-l.stopCh:
			// Final drain so queued work is not silently dropped on shutdown.
			l.dispatcher.DrainOnce()
			l.logger.Debug().Msg("Tick loop stopped")
			return
		case <-ticker.C:
			l.dispatcher.DrainOnce()
		}
	}
}
