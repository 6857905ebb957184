package session

import (
	"context"
	"time"
)

// Ticker is the one-second heartbeat contract shared by both recorders.
type Ticker interface {
	Tick()
}

// Runner drives recorders with a wall-clock ticker. Recorders ignore ticks
// unless a session is active, so a single runner can serve all of them for
// the lifetime of the process.
type Runner struct {
	interval time.Duration
	tickers  []Ticker
}

func NewRunner(interval time.Duration, tickers ...Ticker) *Runner {
	return &Runner{interval: interval, tickers: tickers}
}

// Run ticks until the context is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			for _, t := range r.tickers {
				t.Tick()
			}
		}
	}
}
