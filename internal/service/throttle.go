package service

import (
	"context"
	"sync"
	"time"
)

// PacingGate enforces a minimum spacing between outbound generation calls.
// One instance is shared by every request the process handles; the mutex is
// held across the wait so two callers can never observe the same stale
// timestamp and dispatch closer together than the interval.
type PacingGate struct {
	mu       sync.Mutex
	last     time.Time
	interval time.Duration

	// injectable for tests
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func NewPacingGate(interval time.Duration) *PacingGate {
	return &PacingGate{
		interval: interval,
		now:      time.Now,
		sleep:    sleepCtx,
	}
}

// AcquireSlot blocks until the caller is allowed to dispatch, then records
// the dispatch time. It fails only when ctx is done before the slot opens.
func (g *PacingGate) AcquireSlot(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if wait := g.interval - g.now().Sub(g.last); wait > 0 {
		if err := g.sleep(ctx, wait); err != nil {
			return err
		}
	}
	g.last = g.now()
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
