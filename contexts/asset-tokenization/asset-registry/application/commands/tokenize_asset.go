package commands

import (
	"context"
	"log/slog"

	application "tokeniza/contexts/asset-tokenization/asset-registry/application"
	"tokeniza/contexts/asset-tokenization/asset-registry/domain/entities"
	domainerrors "tokeniza/contexts/asset-tokenization/asset-registry/domain/errors"
	"tokeniza/contexts/asset-tokenization/asset-registry/ports"
	"tokeniza/internal/platform/ledger"
)

const maxSymbolLength = 11

type TokenizeAssetCommand struct {
	AssetID     string
	Symbol      string
	Decimals    uint8
	TotalSupply uint64
}

type TokenizeAssetResult struct {
	Asset entities.Asset
	Token ledger.TokenRef
}

// TokenizeAssetUseCase drives the Approved→Tokenized transition: validate,
// deploy-and-mint on chain, then record the contract reference. The registry
// write and the ledger call are not atomic across the two ledgers; the asset
// id doubles as the deployment idempotency token so a crash between them is
// recovered by LookupDeployment instead of a second deploy.
type TokenizeAssetUseCase struct {
	Assets   ports.AssetRepository
	Deployer ports.TokenDeployer
	Locks    ports.AssetLocker
	Clock    ports.Clock
	Logger   *slog.Logger
}

func (u TokenizeAssetUseCase) Execute(ctx context.Context, cmd TokenizeAssetCommand) (TokenizeAssetResult, error) {
	logger := application.ResolveLogger(u.Logger)
	if err := validateTokenizeCommand(cmd); err != nil {
		return TokenizeAssetResult{}, err
	}

	// Per-asset transition lock: excludes a concurrent tokenize call on the
	// same asset without blocking other assets.
	u.Locks.Lock(cmd.AssetID)
	defer u.Locks.Unlock(cmd.AssetID)

	asset, err := u.Assets.GetAsset(ctx, cmd.AssetID)
	if err != nil {
		return TokenizeAssetResult{}, err
	}
	if asset.Status != entities.AssetStatusApproved || asset.TokenAddress != "" {
		return TokenizeAssetResult{}, domainerrors.ErrPreconditionFailed
	}

	token, found, err := u.Deployer.LookupDeployment(ctx, asset.AssetID)
	if err != nil {
		return TokenizeAssetResult{}, err
	}
	if found {
		logger.Info("reusing existing deployment",
			"event", "asset_tokenize_deployment_reused",
			"module", "asset-tokenization/asset-registry",
			"layer", "application",
			"asset_id", asset.AssetID,
			"contract_address", token.ContractAddress,
		)
	} else {
		token, err = u.Deployer.DeployAndMint(ctx, ledger.DeployRequest{
			IdempotencyToken: asset.AssetID,
			Name:             asset.Name,
			Symbol:           cmd.Symbol,
			Decimals:         cmd.Decimals,
			TotalSupply:      cmd.TotalSupply,
			Owner:            asset.Owner,
		})
		if err != nil {
			// Asset state stays untouched on ledger failure.
			logger.Error("asset tokenize deploy failed",
				"event", "asset_tokenize_deploy_failed",
				"module", "asset-tokenization/asset-registry",
				"layer", "application",
				"asset_id", asset.AssetID,
				"error", err.Error(),
			)
			return TokenizeAssetResult{}, err
		}
	}

	now := resolveNow(u.Clock)
	if err := asset.MarkTokenized(token.ContractAddress, now); err != nil {
		return TokenizeAssetResult{}, err
	}
	if err := u.Assets.SetTokenized(ctx, asset.AssetID, token.ContractAddress, now); err != nil {
		return TokenizeAssetResult{}, err
	}

	logger.Info("asset tokenized",
		"event", "asset_tokenized",
		"module", "asset-tokenization/asset-registry",
		"layer", "application",
		"asset_id", asset.AssetID,
		"contract_address", token.ContractAddress,
		"symbol", cmd.Symbol,
	)
	return TokenizeAssetResult{Asset: asset, Token: token}, nil
}

func validateTokenizeCommand(cmd TokenizeAssetCommand) error {
	if cmd.AssetID == "" || cmd.TotalSupply == 0 {
		return domainerrors.ErrInvalidTokenizeRequest
	}
	if len(cmd.Symbol) == 0 || len(cmd.Symbol) > maxSymbolLength {
		return domainerrors.ErrInvalidTokenizeRequest
	}
	for _, r := range cmd.Symbol {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return domainerrors.ErrInvalidTokenizeRequest
		}
	}
	if cmd.Decimals > 18 {
		return domainerrors.ErrInvalidTokenizeRequest
	}
	return nil
}
