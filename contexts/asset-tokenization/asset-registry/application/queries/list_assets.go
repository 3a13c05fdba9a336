package queries

import (
	"context"
	"log/slog"

	application "tokeniza/contexts/asset-tokenization/asset-registry/application"
	"tokeniza/contexts/asset-tokenization/asset-registry/domain/entities"
	"tokeniza/contexts/asset-tokenization/asset-registry/ports"
)

type ListAssetsQuery struct {
	Status string
	Owner  string
	Cursor string
	Limit  int
}

type ListAssetsResult struct {
	Items      []entities.Asset
	NextCursor string
}

type ListAssetsUseCase struct {
	Assets ports.AssetRepository
	Logger *slog.Logger
}

func (u ListAssetsUseCase) Execute(ctx context.Context, query ListAssetsQuery) (ListAssetsResult, error) {
	logger := application.ResolveLogger(u.Logger)

	items, nextCursor, err := u.Assets.ListAssets(ctx, ports.AssetListFilter{
		Status: entities.AssetStatus(query.Status),
		Owner:  query.Owner,
		Cursor: query.Cursor,
		Limit:  query.Limit,
	})
	if err != nil {
		logger.Error("asset list failed",
			"event", "asset_list_failed",
			"module", "asset-tokenization/asset-registry",
			"layer", "application",
			"error", err.Error(),
		)
		return ListAssetsResult{}, err
	}
	return ListAssetsResult{Items: items, NextCursor: nextCursor}, nil
}
