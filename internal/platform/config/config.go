package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName string
	HTTPPort    string
	PostgresDSN string

	// Chain connectivity. An empty RPCURL selects the deterministic in-process
	// ledger, which is the local development default.
	ChainRPCURL      string
	ChainID          uint64
	RegistryContract string
	ChainTimeout     time.Duration

	// Settlement worker cadence.
	ReconcileInterval   time.Duration
	MinConfirmationWait time.Duration
	SettlementTimeout   time.Duration

	// Log file rotation; empty LogFile logs to stdout only.
	LogFile       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
}

func Load() (Config, error) {
	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "tokeniza"
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}

	return Config{
		ServiceName: service,
		HTTPPort:    port,
		PostgresDSN: os.Getenv("POSTGRES_DSN"),

		ChainRPCURL:      strings.TrimSpace(os.Getenv("CHAIN_RPC_URL")),
		ChainID:          envUint("CHAIN_ID", 31337),
		RegistryContract: strings.TrimSpace(os.Getenv("CHAIN_REGISTRY_CONTRACT")),
		ChainTimeout:     envDuration("CHAIN_TIMEOUT", 10*time.Second),

		ReconcileInterval:   envDuration("SETTLEMENT_RECONCILE_INTERVAL", 5*time.Second),
		MinConfirmationWait: envDuration("SETTLEMENT_MIN_CONFIRMATION_WAIT", 15*time.Second),
		SettlementTimeout:   envDuration("SETTLEMENT_TIMEOUT", 10*time.Minute),

		LogFile:       strings.TrimSpace(os.Getenv("LOG_FILE")),
		LogMaxSizeMB:  envInt("LOG_MAX_SIZE_MB", 100),
		LogMaxBackups: envInt("LOG_MAX_BACKUPS", 5),
		LogMaxAgeDays: envInt("LOG_MAX_AGE_DAYS", 30),
	}, nil
}

func envDuration(name string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func envInt(name string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func envUint(name string, fallback uint64) uint64 {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return fallback
	}
	return value
}
