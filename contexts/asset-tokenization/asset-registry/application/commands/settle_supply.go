package commands

import (
	"context"
	"log/slog"

	application "tokeniza/contexts/asset-tokenization/asset-registry/application"
	"tokeniza/contexts/asset-tokenization/asset-registry/domain/entities"
	"tokeniza/contexts/asset-tokenization/asset-registry/ports"
)

// SettleSupplyUseCase applies a confirmed marketplace settlement to the
// asset's available supply. When supply is exhausted the asset moves to Sold.
// This is the only path that reduces available supply.
type SettleSupplyUseCase struct {
	Assets ports.AssetRepository
	Clock  ports.Clock
	Logger *slog.Logger
}

func (u SettleSupplyUseCase) Execute(ctx context.Context, assetID string, quantity uint64) error {
	logger := application.ResolveLogger(u.Logger)
	now := resolveNow(u.Clock)

	remaining, err := u.Assets.ReduceAvailableSupply(ctx, assetID, quantity, now)
	if err != nil {
		logger.Error("asset supply settle failed",
			"event", "asset_supply_settle_failed",
			"module", "asset-tokenization/asset-registry",
			"layer", "application",
			"asset_id", assetID,
			"quantity", quantity,
			"error", err.Error(),
		)
		return err
	}
	if remaining > 0 {
		return nil
	}

	if err := u.Assets.UpdateStatus(ctx, assetID, entities.AssetStatusTrading, entities.AssetStatusSold, now); err != nil {
		// Supply reached zero but the asset was not Trading; keep the supply
		// change and flag the unexpected state for operators.
		logger.Warn("asset sellout status flip skipped",
			"event", "asset_sellout_flip_skipped",
			"module", "asset-tokenization/asset-registry",
			"layer", "application",
			"asset_id", assetID,
			"error", err.Error(),
		)
		return nil
	}

	logger.Info("asset sold out",
		"event", "asset_sold_out",
		"module", "asset-tokenization/asset-registry",
		"layer", "application",
		"asset_id", assetID,
	)
	return nil
}
