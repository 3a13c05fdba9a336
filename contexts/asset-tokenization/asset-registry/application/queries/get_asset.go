package queries

import (
	"context"
	"log/slog"

	"tokeniza/contexts/asset-tokenization/asset-registry/domain/entities"
	"tokeniza/contexts/asset-tokenization/asset-registry/ports"
)

type GetAssetQuery struct {
	AssetID string
}

type GetAssetResult struct {
	Asset entities.Asset
}

type GetAssetUseCase struct {
	Assets ports.AssetRepository
	Logger *slog.Logger
}

func (u GetAssetUseCase) Execute(ctx context.Context, query GetAssetQuery) (GetAssetResult, error) {
	asset, err := u.Assets.GetAsset(ctx, query.AssetID)
	if err != nil {
		return GetAssetResult{}, err
	}
	return GetAssetResult{Asset: asset}, nil
}
