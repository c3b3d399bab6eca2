package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/MrSnakeDoc/vault/internal/logger"
	"github.com/MrSnakeDoc/vault/internal/metrics"
)

// Optimizer is a store that can tune itself.
type Optimizer interface {
	Optimize(ctx context.Context) error
}

// Maintenance periodically optimizes the journal database.
type Maintenance struct {
	target   Optimizer
	logger   logger.Logger
	interval time.Duration
	timeout  time.Duration

	stopOnce sync.Once
	stopCh   chan struct{}
	done     chan struct{}
}

// NewMaintenance creates a maintenance job. A zero interval disables it.
func NewMaintenance(target Optimizer, log logger.Logger, interval time.Duration) *Maintenance {
	return &Maintenance{
		target:   target,
		logger:   log,
		interval: interval,
		timeout:  30 * time.Second,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start runs the job every interval until Stop is called or ctx is done.
func (m *Maintenance) Start(ctx context.Context) {
	if m.interval <= 0 {
		m.logger.Info("journal database maintenance disabled")
		close(m.done)
		return
	}

	ticker := time.NewTicker(m.interval)
	go func() {
		defer close(m.done)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := m.Run(ctx); err != nil {
					m.logger.Error("journal database maintenance failed", logger.Error(err))
				}
			case <-m.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop ends the job and waits for a running pass to finish. Call it only
// after Start.
func (m *Maintenance) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
	<-m.done
}

// Run performs one maintenance pass.
func (m *Maintenance) Run(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	start := time.Now()
	err := m.target.Optimize(ctx)
	metrics.RecordMaintenance(err)
	if err != nil {
		return err
	}
	m.logger.Debug("journal database optimized", logger.Duration("took", time.Since(start)))
	return nil
}
