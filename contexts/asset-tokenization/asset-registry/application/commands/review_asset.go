package commands

import (
	"context"
	"log/slog"
	"time"

	application "tokeniza/contexts/asset-tokenization/asset-registry/application"
	"tokeniza/contexts/asset-tokenization/asset-registry/domain/entities"
	"tokeniza/contexts/asset-tokenization/asset-registry/ports"
)

// SubmitAssetUseCase moves a Draft asset into review.
type SubmitAssetUseCase struct {
	Assets ports.AssetRepository
	Clock  ports.Clock
	Logger *slog.Logger
}

func (u SubmitAssetUseCase) Execute(ctx context.Context, assetID string) (entities.Asset, error) {
	return transition(ctx, u.Assets, u.Clock, u.Logger, assetID, "asset_submitted",
		func(asset *entities.Asset, now time.Time) error {
			return asset.SubmitForApproval(now)
		})
}

// ApproveAssetUseCase clears a reviewed asset for tokenization.
type ApproveAssetUseCase struct {
	Assets ports.AssetRepository
	Clock  ports.Clock
	Logger *slog.Logger
}

func (u ApproveAssetUseCase) Execute(ctx context.Context, assetID string) (entities.Asset, error) {
	return transition(ctx, u.Assets, u.Clock, u.Logger, assetID, "asset_approved",
		func(asset *entities.Asset, now time.Time) error {
			return asset.Approve(now)
		})
}

// RetireAssetUseCase cancels an asset that never reached the chain.
type RetireAssetUseCase struct {
	Assets ports.AssetRepository
	Clock  ports.Clock
	Logger *slog.Logger
}

func (u RetireAssetUseCase) Execute(ctx context.Context, assetID string) (entities.Asset, error) {
	return transition(ctx, u.Assets, u.Clock, u.Logger, assetID, "asset_retired",
		func(asset *entities.Asset, now time.Time) error {
			return asset.Retire(now)
		})
}

// EnableTradingUseCase flips Tokenized to Trading on first listing creation.
// A concurrent flip by another listing is treated as success.
type EnableTradingUseCase struct {
	Assets ports.AssetRepository
	Clock  ports.Clock
	Logger *slog.Logger
}

func (u EnableTradingUseCase) Execute(ctx context.Context, assetID string) error {
	asset, err := u.Assets.GetAsset(ctx, assetID)
	if err != nil {
		return err
	}
	if asset.Status == entities.AssetStatusTrading {
		return nil
	}

	now := resolveNow(u.Clock)
	prev := asset.Status
	if err := asset.EnableTrading(now); err != nil {
		return err
	}
	if err := u.Assets.UpdateStatus(ctx, assetID, prev, asset.Status, asset.UpdatedAt); err != nil {
		// The guarded write lost a race; re-read and accept if another
		// listing already activated trading.
		current, getErr := u.Assets.GetAsset(ctx, assetID)
		if getErr == nil && current.Status == entities.AssetStatusTrading {
			return nil
		}
		return err
	}

	application.ResolveLogger(u.Logger).Info("asset trading enabled",
		"event", "asset_trading_enabled",
		"module", "asset-tokenization/asset-registry",
		"layer", "application",
		"asset_id", assetID,
	)
	return nil
}

func transition(
	ctx context.Context,
	assets ports.AssetRepository,
	clock ports.Clock,
	logger *slog.Logger,
	assetID string,
	event string,
	apply func(*entities.Asset, time.Time) error,
) (entities.Asset, error) {
	asset, err := assets.GetAsset(ctx, assetID)
	if err != nil {
		return entities.Asset{}, err
	}

	prev := asset.Status
	if err := apply(&asset, resolveNow(clock)); err != nil {
		return entities.Asset{}, err
	}
	if err := assets.UpdateStatus(ctx, assetID, prev, asset.Status, asset.UpdatedAt); err != nil {
		return entities.Asset{}, err
	}

	application.ResolveLogger(logger).Info("asset status changed",
		"event", event,
		"module", "asset-tokenization/asset-registry",
		"layer", "application",
		"asset_id", assetID,
		"from", prev,
		"to", asset.Status,
	)
	return asset, nil
}

func resolveNow(clock ports.Clock) time.Time {
	if clock == nil {
		return time.Now().UTC()
	}
	return clock.Now().UTC()
}
