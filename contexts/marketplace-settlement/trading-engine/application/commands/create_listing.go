package commands

import (
	"context"
	"log/slog"
	"time"

	application "tokeniza/contexts/marketplace-settlement/trading-engine/application"
	"tokeniza/contexts/marketplace-settlement/trading-engine/domain/entities"
	domainerrors "tokeniza/contexts/marketplace-settlement/trading-engine/domain/errors"
	"tokeniza/contexts/marketplace-settlement/trading-engine/ports"
	"tokeniza/internal/platform/ledger"
)

type CreateListingCommand struct {
	AssetID       string
	Seller        string
	PricePerToken uint64
	Quantity      uint64
	ExpiresAt     time.Time
}

// CreateListingUseCase publishes a seller's offer. The seller's on-chain
// token balance is checked before the listing goes live, and the first
// listing on a tokenized asset flips it to trading.
type CreateListingUseCase struct {
	Listings    ports.ListingRepository
	Catalog     ports.AssetCatalog
	Ledger      ports.SettlementLedger
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

func (u CreateListingUseCase) Execute(ctx context.Context, cmd CreateListingCommand) (entities.Listing, error) {
	logger := application.ResolveLogger(u.Logger)

	if cmd.PricePerToken == 0 || cmd.Quantity == 0 {
		return entities.Listing{}, domainerrors.ErrInvalidListingRequest
	}
	if !ledger.IsValidAddress(cmd.Seller) {
		return entities.Listing{}, domainerrors.ErrInvalidListingRequest
	}

	info, err := u.Catalog.Describe(ctx, cmd.AssetID)
	if err != nil {
		return entities.Listing{}, err
	}
	if !info.Tradable {
		return entities.Listing{}, domainerrors.ErrAssetNotTradable
	}

	balance, err := u.Ledger.GetTokenBalance(ctx, info.TokenAddress, cmd.Seller)
	if err != nil {
		logger.Error("seller balance check failed",
			"event", "listing_balance_check_failed",
			"module", "marketplace-settlement/trading-engine",
			"layer", "application",
			"asset_id", cmd.AssetID,
			"seller", cmd.Seller,
			"error", err.Error(),
		)
		return entities.Listing{}, err
	}
	if balance < cmd.Quantity {
		return entities.Listing{}, domainerrors.ErrInsufficientSellerBalance
	}

	listingID, err := u.IDGenerator.NewID(ctx)
	if err != nil {
		return entities.Listing{}, err
	}
	now := resolveNow(u.Clock)
	listing, err := entities.NewListing(
		listingID,
		cmd.AssetID,
		info.TokenAddress,
		cmd.Seller,
		cmd.PricePerToken,
		cmd.Quantity,
		cmd.ExpiresAt,
		now,
	)
	if err != nil {
		return entities.Listing{}, err
	}

	if err := u.Listings.CreateListing(ctx, listing); err != nil {
		logger.Error("listing create failed",
			"event", "listing_create_failed",
			"module", "marketplace-settlement/trading-engine",
			"layer", "application",
			"asset_id", cmd.AssetID,
			"error", err.Error(),
		)
		return entities.Listing{}, err
	}

	// The catalog flip is best effort: the listing already exists and a later
	// listing attempt repeats the flip.
	if err := u.Catalog.EnableTrading(ctx, cmd.AssetID); err != nil {
		logger.Warn("asset trading flip failed",
			"event", "listing_trading_flip_failed",
			"module", "marketplace-settlement/trading-engine",
			"layer", "application",
			"asset_id", cmd.AssetID,
			"listing_id", listing.ListingID,
			"error", err.Error(),
		)
	}

	logger.Info("listing created",
		"event", "listing_created",
		"module", "marketplace-settlement/trading-engine",
		"layer", "application",
		"listing_id", listing.ListingID,
		"asset_id", cmd.AssetID,
		"seller", cmd.Seller,
		"quantity", cmd.Quantity,
		"price_per_token", cmd.PricePerToken,
	)
	return listing, nil
}

func resolveNow(clock ports.Clock) time.Time {
	if clock == nil {
		return time.Now().UTC()
	}
	return clock.Now().UTC()
}
