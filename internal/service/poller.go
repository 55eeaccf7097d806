package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Poller drives periodic refreshes for the lifetime of a session. Ticks are
// unconditional: a slow refresh does not delay the next one, overlapping
// fetches are resolved by the synchronizer's sequence numbers.
type Poller struct {
	interval time.Duration
	refresh  func(context.Context) error
	log      *zap.SugaredLogger
}

func NewPoller(interval time.Duration, refresh func(context.Context) error, log *zap.SugaredLogger) *Poller {
	return &Poller{interval: interval, refresh: refresh, log: log}
}

// Run blocks until the context is cancelled. Callers run it in its own
// goroutine.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			go func() {
				if err := p.refresh(ctx); err != nil {
					p.log.Debugw("poll refresh failed", "error", err)
				}
			}()
		}
	}
}
