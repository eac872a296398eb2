package loansvc_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	loansvc "librarium/service/loan"
)

type counterMock struct {
	countFn func(ctx context.Context) (int64, error)
}

func (m *counterMock) CountOverdue(ctx context.Context) (int64, error) { return m.countFn(ctx) }

func TestMonitor_StopsOnCancel(t *testing.T) {
	ticks := make(chan struct{}, 1)
	m := loansvc.NewMonitor(&counterMock{
		countFn: func(ctx context.Context) (int64, error) {
			select {
			case ticks <- struct{}{}:
			default:
			}
			return 3, nil
		},
	}, slog.New(slog.NewTextHandler(io.Discard, nil)), 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	select {
	case <-ticks:
	case <-time.After(time.Second):
		t.Fatal("monitor never polled")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("monitor did not stop on cancel")
	}
}
