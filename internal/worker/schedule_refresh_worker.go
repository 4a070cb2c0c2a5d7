package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/brikomag/pricewatch/internal/service"
)

// ScheduleRefreshWorker periodically reconciles the dispatcher with the
// schedule registry, picking up rows changed outside the API (e.g. by a
// direct DB edit or another instance).
type ScheduleRefreshWorker struct {
	dispatcher *service.Dispatcher
	interval   time.Duration
}

// NewScheduleRefreshWorker constructs a ScheduleRefreshWorker.
func NewScheduleRefreshWorker(dispatcher *service.Dispatcher, interval time.Duration) *ScheduleRefreshWorker {
	return &ScheduleRefreshWorker{dispatcher: dispatcher, interval: interval}
}

// Start begins the periodic refresh loop until context is canceled.
func (w *ScheduleRefreshWorker) Start(ctx context.Context) {
	log.Info().Dur("interval", w.interval).Msg("Starting schedule refresh worker")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.dispatcher.Refresh(); err != nil {
				log.Error().Err(err).Msg("Periodic dispatcher refresh failed")
			}
		case <-ctx.Done():
			log.Info().Msg("Schedule refresh worker stopped")
			return
		}
	}
}
