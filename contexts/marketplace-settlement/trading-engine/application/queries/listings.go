package queries

import (
	"context"
	"log/slog"

	application "tokeniza/contexts/marketplace-settlement/trading-engine/application"
	"tokeniza/contexts/marketplace-settlement/trading-engine/domain/entities"
	"tokeniza/contexts/marketplace-settlement/trading-engine/ports"
)

type GetListingQuery struct {
	ListingID string
}

type GetListingResult struct {
	Listing entities.Listing
}

type GetListingUseCase struct {
	Listings ports.ListingRepository
	Logger   *slog.Logger
}

func (u GetListingUseCase) Execute(ctx context.Context, query GetListingQuery) (GetListingResult, error) {
	listing, err := u.Listings.GetListing(ctx, query.ListingID)
	if err != nil {
		return GetListingResult{}, err
	}
	return GetListingResult{Listing: listing}, nil
}

type ListListingsQuery struct {
	AssetID string
	Seller  string
	Status  string
	Cursor  string
	Limit   int
}

type ListListingsResult struct {
	Items      []entities.Listing
	NextCursor string
}

type ListListingsUseCase struct {
	Listings ports.ListingRepository
	Logger   *slog.Logger
}

func (u ListListingsUseCase) Execute(ctx context.Context, query ListListingsQuery) (ListListingsResult, error) {
	items, nextCursor, err := u.Listings.ListListings(ctx, ports.ListingFilter{
		AssetID: query.AssetID,
		Seller:  query.Seller,
		Status:  entities.ListingStatus(query.Status),
		Cursor:  query.Cursor,
		Limit:   query.Limit,
	})
	if err != nil {
		application.ResolveLogger(u.Logger).Error("listing list failed",
			"event", "listing_list_failed",
			"module", "marketplace-settlement/trading-engine",
			"layer", "application",
			"error", err.Error(),
		)
		return ListListingsResult{}, err
	}
	return ListListingsResult{Items: items, NextCursor: nextCursor}, nil
}
