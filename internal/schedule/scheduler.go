// Package schedule runs the recurring catch-up pass on a fixed interval.
// The pass is idempotent, so the runner coexists safely with the HTTP
// trigger and with other replicas of the service.
package schedule

import (
	"context"
	"time"

	"centavo/internal/logger"
	"centavo/internal/services"
)

// Runner periodically invokes the recurring processor for all organizations.
type Runner struct {
	recurringSvc services.RecurringServicer
	interval     time.Duration
}

// NewRunner creates a runner that fires every interval.
func NewRunner(recurringSvc services.RecurringServicer, interval time.Duration) *Runner {
	return &Runner{recurringSvc: recurringSvc, interval: interval}
}

// Start blocks, running a catch-up pass on every tick until ctx is cancelled.
// Call it from its own goroutine.
func (r *Runner) Start(ctx context.Context) {
	log := logger.Get()
	log.Infow("recurring runner started", "interval", r.interval.String())

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Infow("recurring runner stopped")
			return
		case <-ticker.C:
			r.runOnce()
		}
	}
}

func (r *Runner) runOnce() {
	log := logger.Get()
	start := time.Now()

	result, err := r.recurringSvc.ProcessAllOrganizations(time.Now())
	if err != nil {
		log.Errorw("recurring pass failed", "error", err)
		return
	}

	if result.ProcessedTransactions > 0 || result.RenewedBudgets > 0 {
		log.Infow("recurring pass complete",
			"processed_transactions", result.ProcessedTransactions,
			"renewed_budgets", result.RenewedBudgets,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}
