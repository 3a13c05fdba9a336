package workers

import (
	"context"
	"log/slog"
	"time"

	application "tokeniza/contexts/marketplace-settlement/trading-engine/application"
	"tokeniza/contexts/marketplace-settlement/trading-engine/ports"
)

// ListingExpirer flips active listings past their deadline to Expired.
// Listings with an open reservation are skipped until the pending settlement
// resolves, then picked up on a later cycle.
type ListingExpirer struct {
	Listings ports.ListingRepository
	Clock    ports.Clock
	Logger   *slog.Logger
}

func (w ListingExpirer) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(w.Logger)

	now := time.Now().UTC()
	if w.Clock != nil {
		now = w.Clock.Now().UTC()
	}

	expired, err := w.Listings.ExpireListings(ctx, now)
	if err != nil {
		logger.Error("listing expire sweep failed",
			"event", "listing_expire_sweep_failed",
			"module", "marketplace-settlement/trading-engine",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}

	for _, listingID := range expired {
		logger.Info("listing expired",
			"event", "listing_expired",
			"module", "marketplace-settlement/trading-engine",
			"layer", "worker",
			"listing_id", listingID,
		)
	}
	return nil
}
