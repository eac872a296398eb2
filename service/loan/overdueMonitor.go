package loansvc

import (
	"context"
	"log/slog"
	"time"
)

type OverdueCounter interface {
	CountOverdue(ctx context.Context) (int64, error)
}

// Monitor periodically logs how many loans are past their return due date.
// Read-only; it never mutates loan state.
type Monitor struct {
	r     OverdueCounter
	log   *slog.Logger
	every time.Duration
}

func NewMonitor(r OverdueCounter, log *slog.Logger, every time.Duration) *Monitor {
	return &Monitor{r: r, log: log, every: every}
}

// Run blocks until ctx is canceled.
func (m *Monitor) Run(ctx context.Context) {
	t := time.NewTicker(m.every)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := m.r.CountOverdue(ctx)
			if err != nil {
				m.log.Error("overdue check failed", "err", err)
				continue
			}
			if n > 0 {
				m.log.Warn("overdue loans outstanding", "count", n)
			}
		}
	}
}
