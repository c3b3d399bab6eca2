package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MrSnakeDoc/vault/internal/logger"
)

type countingOptimizer struct {
	calls atomic.Int32
	err   error
}

func (c *countingOptimizer) Optimize(ctx context.Context) error {
	c.calls.Add(1)
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("optimize called without a deadline")
	}
	return c.err
}

func TestMaintenance_Run(t *testing.T) {
	opt := &countingOptimizer{}
	m := NewMaintenance(opt, logger.Nop(), time.Hour)

	if err := m.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if got := opt.calls.Load(); got != 1 {
		t.Errorf("Expected 1 optimize call, got %d", got)
	}

	opt.err = errors.New("database is locked")
	if err := m.Run(context.Background()); err == nil {
		t.Error("Expected Run to surface the store error")
	}
}

func TestMaintenance_RunsPeriodicallyUntilStopped(t *testing.T) {
	opt := &countingOptimizer{}
	m := NewMaintenance(opt, logger.Nop(), 5*time.Millisecond)

	m.Start(context.Background())
	deadline := time.Now().Add(2 * time.Second)
	for opt.calls.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	m.Stop()

	if got := opt.calls.Load(); got < 2 {
		t.Fatalf("Expected at least 2 passes, got %d", got)
	}
	after := opt.calls.Load()
	time.Sleep(30 * time.Millisecond)
	if opt.calls.Load() != after {
		t.Error("Maintenance kept running after Stop")
	}

	m.Stop()
}

func TestMaintenance_ZeroIntervalDisables(t *testing.T) {
	opt := &countingOptimizer{}
	m := NewMaintenance(opt, logger.Nop(), 0)

	m.Start(context.Background())
	m.Stop()

	if got := opt.calls.Load(); got != 0 {
		t.Errorf("Expected no passes, got %d", got)
	}
}
