package reservations

import (
	"context"
	"sync"
	"time"

	"seatline/pkg/logger"
)

// Expirer cancels stale pending bookings and re-drives seat commits that
// did not land after payment
type Expirer interface {
	ExpireStale(ctx context.Context, ttl time.Duration, limit int) (int, error)
	RecommitPaid(ctx context.Context, olderThan time.Duration, limit int) (int, error)
}

// ReaperConfig contains configuration for the pending booking reaper
type ReaperConfig struct {
	Interval    time.Duration
	PendingTTL  time.Duration
	CommitGrace time.Duration // paid bookings younger than this are left to their own confirm
	BatchSize   int
}

// DefaultReaperConfig returns default reaper configuration
func DefaultReaperConfig() *ReaperConfig {
	return &ReaperConfig{
		Interval:    1 * time.Minute,
		PendingTTL:  15 * time.Minute,
		CommitGrace: 1 * time.Minute,
		BatchSize:   100,
	}
}

// Reaper periodically cancels pending bookings nobody confirmed in time and
// retries seat commits of paid bookings
type Reaper struct {
	expirer  Expirer
	config   *ReaperConfig
	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	logger   *logger.Logger
}

func NewReaper(expirer Expirer, config *ReaperConfig) *Reaper {
	if config == nil {
		config = DefaultReaperConfig()
	}
	return &Reaper{
		expirer: expirer,
		config:  config,
		done:    make(chan struct{}),
		logger:  logger.GetDefault(),
	}
}

// Start runs the reaper loop in the background until Stop or ctx ends
func (r *Reaper) Start(ctx context.Context) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.run(ctx)
	}()
	r.logger.Info("pending booking reaper started",
		"interval", r.config.Interval.String(),
		"pending_ttl", r.config.PendingTTL.String(),
		"commit_grace", r.config.CommitGrace.String(),
	)
}

// Stop halts the loop and waits for an in-flight sweep
func (r *Reaper) Stop() {
	r.stopOnce.Do(func() { close(r.done) })
	r.wg.Wait()
	r.logger.Info("pending booking reaper stopped")
}

func (r *Reaper) run(ctx context.Context) {
	ticker := time.NewTicker(r.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.Recommit(ctx)
			r.Sweep(ctx)
		case <-r.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Sweep drains stale bookings batch by batch
func (r *Reaper) Sweep(ctx context.Context) int {
	total := 0
	for {
		n, err := r.expirer.ExpireStale(ctx, r.config.PendingTTL, r.config.BatchSize)
		total += n
		if err != nil {
			r.logger.ErrorContext(ctx, "reaper sweep failed", "error", err)
			break
		}
		if n < r.config.BatchSize || n == 0 {
			break
		}
	}
	if total > 0 {
		r.logger.InfoContext(ctx, "expired pending bookings", "count", total)
	}
	return total
}

// Recommit re-drives seat commits of paid bookings batch by batch
func (r *Reaper) Recommit(ctx context.Context) int {
	total := 0
	for {
		n, err := r.expirer.RecommitPaid(ctx, r.config.CommitGrace, r.config.BatchSize)
		total += n
		if err != nil {
			r.logger.ErrorContext(ctx, "reaper recommit failed", "error", err)
			break
		}
		if n < r.config.BatchSize || n == 0 {
			break
		}
	}
	if total > 0 {
		r.logger.InfoContext(ctx, "recommitted seats of paid bookings", "count", total)
	}
	return total
}

// Status reports the reaper settings
func (r *Reaper) Status() map[string]interface{} {
	return map[string]interface{}{
		"interval":     r.config.Interval.String(),
		"pending_ttl":  r.config.PendingTTL.String(),
		"commit_grace": r.config.CommitGrace.String(),
		"batch_size":   r.config.BatchSize,
	}
}
