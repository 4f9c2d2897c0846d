package worker

import (
	"context"
	"time"

	"github.com/quizgenai/quizgen-backend/internal/service"
	"github.com/rs/zerolog"
)

// ReaperWorker evicts draft sessions that have sat idle past their TTL.
// Drafts are in-memory only; without the reaper an abandoned wizard tab
// would pin its uploads and questions forever.
type ReaperWorker struct {
	drafts *service.DraftService
	ttl    time.Duration
	log    zerolog.Logger
}

// NewReaperWorker creates a new ReaperWorker.
func NewReaperWorker(drafts *service.DraftService, ttl time.Duration, log zerolog.Logger) *ReaperWorker {
	return &ReaperWorker{
		drafts: drafts,
		ttl:    ttl,
		log:    log.With().Str("component", "reaper_worker").Logger(),
	}
}

// Start begins the reaper loop. Call in a goroutine.
func (w *ReaperWorker) Start(ctx context.Context) {
	w.log.Info().Dur("ttl", w.ttl).Msg("Worker started")

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopped")
			return
		case <-ticker.C:
			if reaped := w.drafts.ReapIdle(w.ttl); reaped > 0 {
				w.log.Info().Int("count", reaped).Msg("Reaped idle draft sessions")
			}
		}
	}
}
