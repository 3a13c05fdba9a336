package assetregistry

import (
	"log/slog"

	httpadapter "tokeniza/contexts/asset-tokenization/asset-registry/adapters/http"
	"tokeniza/contexts/asset-tokenization/asset-registry/adapters/memory"
	"tokeniza/contexts/asset-tokenization/asset-registry/application/commands"
	"tokeniza/contexts/asset-tokenization/asset-registry/application/queries"
	"tokeniza/contexts/asset-tokenization/asset-registry/ports"
	"tokeniza/internal/shared/locks"
)

// Module bundles the wired asset-registry use cases. EnableTrading, SettleSupply
// and GetAsset are exported separately because the trading engine consumes them
// through its catalog gateway rather than over HTTP.
type Module struct {
	Handler       httpadapter.Handler
	GetAsset      queries.GetAssetUseCase
	EnableTrading commands.EnableTradingUseCase
	SettleSupply  commands.SettleSupplyUseCase
	Store         *memory.Store
}

type Dependencies struct {
	Assets      ports.AssetRepository
	Deployer    ports.TokenDeployer
	Locks       ports.AssetLocker
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

func NewModule(deps Dependencies) Module {
	createUseCase := commands.CreateAssetUseCase{
		Assets:      deps.Assets,
		Clock:       deps.Clock,
		IDGenerator: deps.IDGenerator,
		Logger:      deps.Logger,
	}
	submitUseCase := commands.SubmitAssetUseCase{
		Assets: deps.Assets,
		Clock:  deps.Clock,
		Logger: deps.Logger,
	}
	approveUseCase := commands.ApproveAssetUseCase{
		Assets: deps.Assets,
		Clock:  deps.Clock,
		Logger: deps.Logger,
	}
	retireUseCase := commands.RetireAssetUseCase{
		Assets: deps.Assets,
		Clock:  deps.Clock,
		Logger: deps.Logger,
	}
	tokenizeUseCase := commands.TokenizeAssetUseCase{
		Assets:   deps.Assets,
		Deployer: deps.Deployer,
		Locks:    deps.Locks,
		Clock:    deps.Clock,
		Logger:   deps.Logger,
	}
	enableTradingUseCase := commands.EnableTradingUseCase{
		Assets: deps.Assets,
		Clock:  deps.Clock,
		Logger: deps.Logger,
	}
	settleSupplyUseCase := commands.SettleSupplyUseCase{
		Assets: deps.Assets,
		Clock:  deps.Clock,
		Logger: deps.Logger,
	}
	getUseCase := queries.GetAssetUseCase{
		Assets: deps.Assets,
		Logger: deps.Logger,
	}
	listUseCase := queries.ListAssetsUseCase{
		Assets: deps.Assets,
		Logger: deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			CreateAsset:   createUseCase,
			SubmitAsset:   submitUseCase,
			ApproveAsset:  approveUseCase,
			RetireAsset:   retireUseCase,
			TokenizeAsset: tokenizeUseCase,
			GetAsset:      getUseCase,
			ListAssets:    listUseCase,
			Logger:        deps.Logger,
		},
		GetAsset:      getUseCase,
		EnableTrading: enableTradingUseCase,
		SettleSupply:  settleSupplyUseCase,
	}
}

func NewInMemoryModule(deployer ports.TokenDeployer, logger *slog.Logger) Module {
	store := memory.NewStore(logger)
	module := NewModule(Dependencies{
		Assets:      store,
		Deployer:    deployer,
		Locks:       locks.NewKeyed(),
		Clock:       store,
		IDGenerator: store,
		Logger:      logger,
	})
	module.Store = store
	return module
}
