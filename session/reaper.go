package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmitrymomot/sessionguard/audit"
)

// Reaper is the background sweep that deactivates expired sessions and
// purges long-dead records. It runs on a fixed interval, fully decoupled
// from request handling: failures log but never block requests, and it is
// safe to interleave arbitrarily with request-driven mutations because it
// only ever narrows state (active to inactive, delete of inactive rows).
type Reaper struct {
	store    Store
	config   Config
	recorder EventRecorder
	log      *slog.Logger
}

// NewReaper creates a reaper over the given store. A nil recorder disables
// audit events for sweeps.
func NewReaper(store Store, config Config, recorder EventRecorder, log *slog.Logger) *Reaper {
	if log == nil {
		log = slog.Default()
	}
	return &Reaper{
		store:    store,
		config:   config,
		recorder: recorder,
		log:      log,
	}
}

// Run sweeps on the configured interval until the context is canceled.
// Call in its own goroutine.
func (r *Reaper) Run(ctx context.Context) {
	if r.config.ReaperInterval <= 0 {
		return
	}

	ticker := time.NewTicker(r.config.ReaperInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := r.Sweep(ctx, time.Now()); err != nil {
				r.log.ErrorContext(ctx, "session sweep failed", slog.Any("error", err))
			}
		case <-ctx.Done():
			return
		}
	}
}

// Sweep deactivates records past their lifetime or idle timeout and purges
// records inactive longer than the retention window. Idempotent and safe to
// run concurrently with live traffic. A sweep that changed anything is
// recorded in the audit trail as one aggregate event.
func (r *Reaper) Sweep(ctx context.Context, now time.Time) error {
	expired, err := r.store.DeactivateExpired(ctx, now, r.config.Lifetime, r.config.IdleTimeout)
	if err != nil {
		return err
	}

	purged, err := r.store.PurgeInactive(ctx, now.Add(-r.config.Retention))
	if err != nil {
		return err
	}

	if expired > 0 || purged > 0 {
		r.log.InfoContext(ctx, "session sweep completed",
			slog.Int64("expired", expired),
			slog.Int64("purged", purged))

		if r.recorder != nil {
			if err := r.recorder.Record(ctx, "", audit.KindSessionReaped,
				audit.WithReason("scheduled sweep"),
				audit.WithMetadata("expired", expired),
				audit.WithMetadata("purged", purged)); err != nil {
				r.log.ErrorContext(ctx, "failed to record sweep event", slog.Any("error", err))
			}
		}
	}
	return nil
}
