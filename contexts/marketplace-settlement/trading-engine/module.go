package tradingengine

import (
	"log/slog"
	"time"

	httpadapter "tokeniza/contexts/marketplace-settlement/trading-engine/adapters/http"
	"tokeniza/contexts/marketplace-settlement/trading-engine/adapters/memory"
	"tokeniza/contexts/marketplace-settlement/trading-engine/application/commands"
	"tokeniza/contexts/marketplace-settlement/trading-engine/application/queries"
	"tokeniza/contexts/marketplace-settlement/trading-engine/application/workers"
	"tokeniza/contexts/marketplace-settlement/trading-engine/ports"
)

type Module struct {
	Handler    httpadapter.Handler
	Reconciler workers.SettlementReconciler
	Expirer    workers.ListingExpirer
	Store      *memory.Store
}

type Dependencies struct {
	Listings            ports.ListingRepository
	Transactions        ports.TransactionRepository
	Catalog             ports.AssetCatalog
	Ledger              ports.SettlementLedger
	Clock               ports.Clock
	IDGenerator         ports.IDGenerator
	MinConfirmationWait time.Duration
	SettlementTimeout   time.Duration
	Logger              *slog.Logger
}

func NewModule(deps Dependencies) Module {
	createListingUseCase := commands.CreateListingUseCase{
		Listings:    deps.Listings,
		Catalog:     deps.Catalog,
		Ledger:      deps.Ledger,
		Clock:       deps.Clock,
		IDGenerator: deps.IDGenerator,
		Logger:      deps.Logger,
	}
	cancelListingUseCase := commands.CancelListingUseCase{
		Listings: deps.Listings,
		Clock:    deps.Clock,
		Logger:   deps.Logger,
	}
	purchaseUseCase := commands.PurchaseUseCase{
		Listings:     deps.Listings,
		Transactions: deps.Transactions,
		Ledger:       deps.Ledger,
		Clock:        deps.Clock,
		IDGenerator:  deps.IDGenerator,
		Logger:       deps.Logger,
	}
	getListingUseCase := queries.GetListingUseCase{
		Listings: deps.Listings,
		Logger:   deps.Logger,
	}
	listListingsUseCase := queries.ListListingsUseCase{
		Listings: deps.Listings,
		Logger:   deps.Logger,
	}
	getTransactionUseCase := queries.GetTransactionUseCase{
		Transactions: deps.Transactions,
		Logger:       deps.Logger,
	}
	listTransactionsUseCase := queries.ListTransactionsUseCase{
		Transactions: deps.Transactions,
		Logger:       deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			CreateListing:    createListingUseCase,
			CancelListing:    cancelListingUseCase,
			Purchase:         purchaseUseCase,
			GetListing:       getListingUseCase,
			ListListings:     listListingsUseCase,
			GetTransaction:   getTransactionUseCase,
			ListTransactions: listTransactionsUseCase,
			Logger:           deps.Logger,
		},
		Reconciler: workers.SettlementReconciler{
			Transactions:        deps.Transactions,
			Catalog:             deps.Catalog,
			Ledger:              deps.Ledger,
			Clock:               deps.Clock,
			MinConfirmationWait: deps.MinConfirmationWait,
			SettlementTimeout:   deps.SettlementTimeout,
			Logger:              deps.Logger,
		},
		Expirer: workers.ListingExpirer{
			Listings: deps.Listings,
			Clock:    deps.Clock,
			Logger:   deps.Logger,
		},
	}
}

func NewInMemoryModule(catalog ports.AssetCatalog, chain ports.SettlementLedger, logger *slog.Logger) Module {
	store := memory.NewStore(logger)
	module := NewModule(Dependencies{
		Listings:     store,
		Transactions: store,
		Catalog:      catalog,
		Ledger:       chain,
		Clock:        store,
		IDGenerator:  store,
		Logger:       logger,
	})
	module.Store = store
	return module
}
