package bootstrap

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	assetregistry "tokeniza/contexts/asset-tokenization/asset-registry"
	assetpostgres "tokeniza/contexts/asset-tokenization/asset-registry/adapters/postgres"
	waitlistservice "tokeniza/contexts/investor-relations/waitlist-service"
	waitlistpostgres "tokeniza/contexts/investor-relations/waitlist-service/adapters/postgres"
	tradingengine "tokeniza/contexts/marketplace-settlement/trading-engine"
	tradingpostgres "tokeniza/contexts/marketplace-settlement/trading-engine/adapters/postgres"
	tradingregistry "tokeniza/contexts/marketplace-settlement/trading-engine/adapters/registry"
	"tokeniza/internal/platform/config"
	"tokeniza/internal/platform/db"
	"tokeniza/internal/platform/httpserver"
	"tokeniza/internal/platform/ledger"
	"tokeniza/internal/platform/ledger/evm"
	"tokeniza/internal/platform/ledger/fake"
	"tokeniza/internal/platform/logging"
	"tokeniza/internal/shared/locks"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres     *db.Postgres
	trading      tradingengine.Module
	pollInterval time.Duration
	logger       *slog.Logger
}

type modules struct {
	assets   assetregistry.Module
	trading  tradingengine.Module
	waitlist waitlistservice.Module
	chain    ledger.Adapter
	postgres *db.Postgres
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := newLogger(cfg, "api")
	wired, err := buildModules(cfg, logger)
	if err != nil {
		return nil, err
	}

	server := httpserver.New(
		wired.assets,
		wired.trading,
		wired.waitlist,
		wired.chain,
		logger,
		normalizeAddr(cfg.HTTPPort),
	)
	return &APIApp{
		server:   server,
		postgres: wired.postgres,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := newLogger(cfg, "worker")
	wired, err := buildModules(cfg, logger)
	if err != nil {
		return nil, err
	}

	return &WorkerApp{
		postgres:     wired.postgres,
		trading:      wired.trading,
		pollInterval: cfg.ReconcileInterval,
		logger:       logger,
	}, nil
}

func newLogger(cfg config.Config, process string) *slog.Logger {
	return logging.New(logging.Options{
		ServiceName: cfg.ServiceName,
		FilePath:    cfg.LogFile,
		MaxSizeMB:   cfg.LogMaxSizeMB,
		MaxBackups:  cfg.LogMaxBackups,
		MaxAgeDays:  cfg.LogMaxAgeDays,
	}).With("process", process)
}

// buildModules wires the three bounded contexts against either Postgres or the
// in-memory stores, and against either a real chain node or the deterministic
// in-process ledger. Both fallbacks are the local development defaults.
func buildModules(cfg config.Config, logger *slog.Logger) (modules, error) {
	chain := buildChain(cfg, logger)

	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		logger.Warn("postgres dsn not set; using in-memory stores",
			"event", "bootstrap_memory_fallback",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
		assets := assetregistry.NewInMemoryModule(chain, logger)
		catalog := tradingregistry.Catalog{
			Assets:  assets.GetAsset,
			Trading: assets.EnableTrading,
			Supply:  assets.SettleSupply,
		}
		trading := tradingengine.NewInMemoryModule(catalog, chain, logger)
		trading.Reconciler.MinConfirmationWait = cfg.MinConfirmationWait
		trading.Reconciler.SettlementTimeout = cfg.SettlementTimeout
		waitlist := waitlistservice.NewInMemoryModule(logger)
		return modules{
			assets:   assets,
			trading:  trading,
			waitlist: waitlist,
			chain:    chain,
		}, nil
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return modules{}, err
	}

	assetRepo := assetpostgres.NewRepository(pg.DB, logger)
	assets := assetregistry.NewModule(assetregistry.Dependencies{
		Assets:      assetRepo,
		Deployer:    chain,
		Locks:       locks.NewKeyed(),
		Clock:       assetpostgres.SystemClock{},
		IDGenerator: assetpostgres.UUIDGenerator{},
		Logger:      logger,
	})

	catalog := tradingregistry.Catalog{
		Assets:  assets.GetAsset,
		Trading: assets.EnableTrading,
		Supply:  assets.SettleSupply,
	}

	tradingRepo := tradingpostgres.NewRepository(pg.DB, logger)
	trading := tradingengine.NewModule(tradingengine.Dependencies{
		Listings:            tradingRepo,
		Transactions:        tradingRepo,
		Catalog:             catalog,
		Ledger:              chain,
		Clock:               tradingpostgres.SystemClock{},
		IDGenerator:         tradingpostgres.UUIDGenerator{},
		MinConfirmationWait: cfg.MinConfirmationWait,
		SettlementTimeout:   cfg.SettlementTimeout,
		Logger:              logger,
	})

	waitlistRepo := waitlistpostgres.NewRepository(pg.DB, logger)
	waitlist := waitlistservice.NewModule(waitlistservice.Dependencies{
		Entries:     waitlistRepo,
		Clock:       waitlistpostgres.SystemClock{},
		IDGenerator: waitlistpostgres.UUIDGenerator{},
		Logger:      logger,
	})

	return modules{
		assets:   assets,
		trading:  trading,
		waitlist: waitlist,
		chain:    chain,
		postgres: pg,
	}, nil
}

// buildChain selects the ledger adapter. Without an RPC URL the deterministic
// in-process ledger serves reads and writes; with one, the JSON-RPC client is
// used and write paths stay rejected until a signer is plugged in.
func buildChain(cfg config.Config, logger *slog.Logger) ledger.Adapter {
	if cfg.ChainRPCURL == "" {
		logger.Warn("chain rpc url not set; using in-process ledger",
			"event", "bootstrap_ledger_fallback",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
		return fake.New()
	}
	return evm.NewClient(evm.Config{
		RPCURL:           cfg.ChainRPCURL,
		ChainID:          cfg.ChainID,
		RegistryContract: cfg.RegistryContract,
		RequestTimeout:   cfg.ChainTimeout,
	}, nil, logger)
}

func (a *APIApp) Run(_ context.Context) error {
	a.logger.Info("api app started",
		"event", "bootstrap_api_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
	)
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
	)

	for {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error { return w.trading.Reconciler.RunOnce(gctx) })
		g.Go(func() error { return w.trading.Expirer.RunOnce(gctx) })
		if err := g.Wait(); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
