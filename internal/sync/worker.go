package sync

import (
	"context"
	"time"

	"hostsync/internal/config"

	"github.com/rs/zerolog"
)

// Worker schedules reconciliation runs: optionally one at startup, then one
// per day at the configured wall-clock time.
type Worker struct {
	service *Service
	cfg     config.SyncConfig
	logger  zerolog.Logger
}

func NewWorker(service *Service, cfg config.SyncConfig, logger *zerolog.Logger) *Worker {
	return &Worker{
		service: service,
		cfg:     cfg,
		logger:  logger.With().Str("component", "sync_worker").Logger(),
	}
}

// Start blocks until ctx is cancelled. The minute ticker fires a run when
// the local time matches the configured daily_at; a run that overlaps the
// next minute cannot double-fire because runs execute inline.
func (w *Worker) Start(ctx context.Context) {
	if !w.cfg.Enabled {
		w.logger.Info().Msg("Reservation sync disabled")
		return
	}

	w.logger.Info().Str("daily_at", w.cfg.DailyAt).Msg("Sync worker started")

	if w.cfg.RunAtStartup {
		w.run(ctx)
	}

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	var lastRun string
	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("Sync worker stopped")
			return
		case now := <-ticker.C:
			if now.Format("15:04") != w.cfg.DailyAt {
				continue
			}
			// Guard against the ticker landing twice in the same minute.
			day := now.Format("2006-01-02")
			if day == lastRun {
				continue
			}
			lastRun = day
			w.run(ctx)
		}
	}
}

func (w *Worker) run(ctx context.Context) {
	if err := w.service.Run(ctx); err != nil {
		w.logger.Error().Err(err).Msg("Failed to sync reservations")
	}
}
