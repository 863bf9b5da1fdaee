package batch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"customer-service/internal/domain/customer"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var customerStatusTotal = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "customer_status_total",
		Help: "Number of customers per status.",
	},
	[]string{"status"},
)

// CustomerStatsJob periodically refreshes the per-status customer gauges so
// registrations and deactivations show up in dashboards without scraping the
// database directly.
type CustomerStatsJob struct {
	repo   customer.CustomerRepository
	logger *slog.Logger
}

func NewCustomerStatsJob(repo customer.CustomerRepository, logger *slog.Logger) *CustomerStatsJob {
	if repo == nil || logger == nil {
		panic("CustomerStatsJob dependencies cannot be nil")
	}
	return &CustomerStatsJob{
		repo:   repo,
		logger: logger.With("job", "CustomerStats"),
	}
}

func (j *CustomerStatsJob) Run(ctx context.Context) error {
	startTime := time.Now()
	j.logger.DebugContext(ctx, "Starting customer stats refresh job.")

	counts, err := j.repo.CountByStatus(ctx)
	if err != nil {
		j.logger.ErrorContext(ctx, "Failed to count customers by status, aborting job.", slog.Any("error", err))
		return fmt.Errorf("cannot run job, failed to count customers: %w", err)
	}

	// Statuses with no rows must still reset to zero, so seed both gauges.
	for _, status := range []customer.Status{customer.StatusActive, customer.StatusInactive} {
		customerStatusTotal.WithLabelValues(string(status)).Set(float64(counts[status]))
	}

	j.logger.InfoContext(ctx, "Customer stats refresh job finished.",
		slog.Int64("active", counts[customer.StatusActive]),
		slog.Int64("inactive", counts[customer.StatusInactive]),
		slog.Duration("duration", time.Since(startTime)))
	return nil
}
