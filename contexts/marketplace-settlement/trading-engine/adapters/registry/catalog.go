package registry

import (
	"context"

	registrycommands "tokeniza/contexts/asset-tokenization/asset-registry/application/commands"
	registryqueries "tokeniza/contexts/asset-tokenization/asset-registry/application/queries"
	"tokeniza/contexts/marketplace-settlement/trading-engine/ports"
)

// Catalog adapts the asset-registry use cases to the trading engine's
// AssetCatalog port. The dependency points one way only: the registry never
// knows the trading engine exists.
type Catalog struct {
	Assets  registryqueries.GetAssetUseCase
	Trading registrycommands.EnableTradingUseCase
	Supply  registrycommands.SettleSupplyUseCase
}

func (c Catalog) Describe(ctx context.Context, assetID string) (ports.AssetInfo, error) {
	result, err := c.Assets.Execute(ctx, registryqueries.GetAssetQuery{AssetID: assetID})
	if err != nil {
		return ports.AssetInfo{}, err
	}
	asset := result.Asset
	return ports.AssetInfo{
		AssetID:      asset.AssetID,
		TokenAddress: asset.TokenAddress,
		Owner:        asset.Owner,
		Status:       string(asset.Status),
		Tradable:     asset.Tradable() && asset.TokenAddress != "",
	}, nil
}

func (c Catalog) EnableTrading(ctx context.Context, assetID string) error {
	return c.Trading.Execute(ctx, assetID)
}

func (c Catalog) SettleSupply(ctx context.Context, assetID string, quantity uint64) error {
	return c.Supply.Execute(ctx, assetID, quantity)
}
