package ports

import (
	"context"
	"time"

	"tokeniza/contexts/asset-tokenization/asset-registry/domain/entities"
	"tokeniza/internal/platform/ledger"
)

// AssetListFilter defines read-side filtering/pagination for the asset catalog.
type AssetListFilter struct {
	Status entities.AssetStatus
	Owner  string
	Cursor string
	Limit  int
}

// AssetRepository owns asset persistence. Status writes are guarded by the
// expected predecessor so transition checks never act on stale reads.
type AssetRepository interface {
	CreateAsset(ctx context.Context, asset entities.Asset) error
	GetAsset(ctx context.Context, assetID string) (entities.Asset, error)
	ListAssets(ctx context.Context, filter AssetListFilter) ([]entities.Asset, string, error)
	// UpdateStatus applies from→to only when the stored status still equals
	// from; otherwise ErrInvalidTransition.
	UpdateStatus(ctx context.Context, assetID string, from entities.AssetStatus, to entities.AssetStatus, updatedAt time.Time) error
	// SetTokenized records the contract address only when status is Approved
	// and no token address is set; otherwise ErrPreconditionFailed.
	SetTokenized(ctx context.Context, assetID string, tokenAddress string, updatedAt time.Time) error
	// ReduceAvailableSupply decrements available supply by quantity and
	// returns the remainder; ErrInsufficientSupply when quantity exceeds it.
	ReduceAvailableSupply(ctx context.Context, assetID string, quantity uint64, updatedAt time.Time) (uint64, error)
}

// TokenDeployer is the slice of the ledger adapter the tokenization
// coordinator needs. Satisfied by ledger.Adapter.
type TokenDeployer interface {
	DeployAndMint(ctx context.Context, req ledger.DeployRequest) (ledger.TokenRef, error)
	LookupDeployment(ctx context.Context, idempotencyToken string) (ledger.TokenRef, bool, error)
}

// AssetLocker serializes lifecycle transitions for one asset at a time.
type AssetLocker interface {
	Lock(assetID string)
	Unlock(assetID string)
}

// Clock allows deterministic testing of timestamps.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts asset identifier generation.
type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
