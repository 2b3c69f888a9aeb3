// Package jobs provides scheduled background tasks for the dispatch service,
// implemented with github.com/robfig/cron/v3.
//
// StaleDriverJob periodically scans the geo index for drivers whose last ping
// is older than the configured threshold. Staleness is advisory: stale
// drivers are reported through logs and a gauge but stay assignable until an
// operator intervenes.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"

	"dispatch/internal/core/domain/model/kernel"
)

// staleScanner is the part of the geo index the job needs.
type staleScanner interface {
	StaleDriverIDs(cutoff time.Time) []kernel.UUID
}

// StaleDriverJob reports drivers with a stale last ping.
type StaleDriverJob struct {
	scanner   staleScanner
	threshold time.Duration
	gauge     prometheus.Gauge
	cron      *cron.Cron
	logger    *slog.Logger
}

// NewStaleDriverJob creates a job that scans for stale drivers every 30
// seconds. threshold is the ping age beyond which a driver counts as stale.
func NewStaleDriverJob(
	scanner staleScanner,
	threshold time.Duration,
	gauge prometheus.Gauge,
	logger *slog.Logger,
) *StaleDriverJob {
	return &StaleDriverJob{
		scanner:   scanner,
		threshold: threshold,
		gauge:     gauge,
		cron:      cron.New(cron.WithSeconds()),
		logger:    logger.With("component", "stale_driver_job"),
	}
}

// Start begins the periodic stale-driver scan.
func (j *StaleDriverJob) Start() error {
	_, err := j.cron.AddFunc("*/30 * * * * *", j.scan)
	if err != nil {
		return fmt.Errorf("failed to schedule stale driver scan: %w", err)
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Stale driver job started (running every 30 seconds)",
		"threshold", j.threshold.String())
	return nil
}

// Stop stops the job.
func (j *StaleDriverJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Stale driver job stopped")
}

func (j *StaleDriverJob) scan() {
	ctx := context.Background()
	stale := j.scanner.StaleDriverIDs(time.Now().Add(-j.threshold))
	j.gauge.Set(float64(len(stale)))

	if len(stale) == 0 {
		return
	}

	ids := make([]string, 0, len(stale))
	for _, id := range stale {
		ids = append(ids, id.String())
	}

	j.logger.WarnContext(ctx, "Drivers with stale pings detected",
		"count", len(stale),
		"driverIds", ids)
}
