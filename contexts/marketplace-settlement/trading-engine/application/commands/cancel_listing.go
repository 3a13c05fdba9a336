package commands

import (
	"context"
	"log/slog"

	application "tokeniza/contexts/marketplace-settlement/trading-engine/application"
	"tokeniza/contexts/marketplace-settlement/trading-engine/domain/entities"
	"tokeniza/contexts/marketplace-settlement/trading-engine/ports"
)

type CancelListingCommand struct {
	ListingID string
	Seller    string
}

// CancelListingUseCase withdraws a seller's active listing. Open
// reservations block the cancel until the pending settlement resolves.
type CancelListingUseCase struct {
	Listings ports.ListingRepository
	Clock    ports.Clock
	Logger   *slog.Logger
}

func (u CancelListingUseCase) Execute(ctx context.Context, cmd CancelListingCommand) (entities.Listing, error) {
	listing, err := u.Listings.CancelListing(ctx, cmd.ListingID, cmd.Seller, resolveNow(u.Clock))
	if err != nil {
		return entities.Listing{}, err
	}

	application.ResolveLogger(u.Logger).Info("listing cancelled",
		"event", "listing_cancelled",
		"module", "marketplace-settlement/trading-engine",
		"layer", "application",
		"listing_id", cmd.ListingID,
		"seller", cmd.Seller,
	)
	return listing, nil
}
