package commands

import (
	"context"
	"log/slog"
	"time"

	application "tokeniza/contexts/asset-tokenization/asset-registry/application"
	"tokeniza/contexts/asset-tokenization/asset-registry/domain/entities"
	domainerrors "tokeniza/contexts/asset-tokenization/asset-registry/domain/errors"
	"tokeniza/contexts/asset-tokenization/asset-registry/ports"
)

type CreateAssetCommand struct {
	Name           string
	Description    string
	AssetType      string
	AssetTypeLabel string
	Value          uint64
	TotalSupply    uint64
	Owner          string
	Metadata       entities.Metadata
}

type CreateAssetUseCase struct {
	Assets      ports.AssetRepository
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

// Execute registers a new asset in Draft.
func (u CreateAssetUseCase) Execute(ctx context.Context, cmd CreateAssetCommand) (entities.Asset, error) {
	logger := application.ResolveLogger(u.Logger)

	assetType, label, err := entities.ParseAssetType(cmd.AssetType, cmd.AssetTypeLabel)
	if err != nil {
		return entities.Asset{}, err
	}
	if cmd.TotalSupply == 0 {
		return entities.Asset{}, domainerrors.ErrInvalidAssetRequest
	}

	assetID, err := u.IDGenerator.NewID(ctx)
	if err != nil {
		return entities.Asset{}, err
	}

	asset, err := entities.NewAsset(
		assetID,
		cmd.Name,
		cmd.Description,
		assetType,
		label,
		cmd.Value,
		cmd.TotalSupply,
		cmd.Owner,
		cmd.Metadata,
		u.now(),
	)
	if err != nil {
		return entities.Asset{}, err
	}

	if err := u.Assets.CreateAsset(ctx, asset); err != nil {
		logger.Error("asset create failed",
			"event", "asset_create_failed",
			"module", "asset-tokenization/asset-registry",
			"layer", "application",
			"asset_id", asset.AssetID,
			"error", err.Error(),
		)
		return entities.Asset{}, err
	}

	logger.Info("asset created",
		"event", "asset_created",
		"module", "asset-tokenization/asset-registry",
		"layer", "application",
		"asset_id", asset.AssetID,
		"asset_type", asset.AssetType,
		"owner", asset.Owner,
	)
	return asset, nil
}

func (u CreateAssetUseCase) now() time.Time {
	if u.Clock == nil {
		return time.Now().UTC()
	}
	return u.Clock.Now().UTC()
}
