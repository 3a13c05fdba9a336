package ports

import (
	"context"
	"time"

	"tokeniza/contexts/marketplace-settlement/trading-engine/domain/entities"
	"tokeniza/internal/platform/ledger"
)

type ListingFilter struct {
	AssetID string
	Seller  string
	Status  entities.ListingStatus
	Cursor  string
	Limit   int
}

type TransactionFilter struct {
	ListingID string
	Buyer     string
	Status    entities.TransactionStatus
	Cursor    string
	Limit     int
}

// ReservationRequest asks the repository to carve quantity out of a listing
// for the given buyer under a fresh transaction id.
type ReservationRequest struct {
	TransactionID string
	Buyer         string
	Quantity      uint64
}

// ListingRepository owns listing persistence. Reserve is the single
// serialization point for purchases: it validates, moves supply from
// available to reserved and inserts the pending transaction atomically, so
// two concurrent buyers can never both reserve the same quantity.
type ListingRepository interface {
	CreateListing(ctx context.Context, listing entities.Listing) error
	GetListing(ctx context.Context, listingID string) (entities.Listing, error)
	ListListings(ctx context.Context, filter ListingFilter) ([]entities.Listing, string, error)
	Reserve(ctx context.Context, listingID string, req ReservationRequest, now time.Time) (entities.Listing, entities.Transaction, error)
	CancelListing(ctx context.Context, listingID string, seller string, now time.Time) (entities.Listing, error)
	// ExpireListings flips every active listing past its deadline with no open
	// reservation to Expired and returns the flipped ids.
	ExpireListings(ctx context.Context, now time.Time) ([]string, error)
}

// TransactionRepository owns settlement state. Settle and Release pair the
// terminal transaction write with the matching listing supply move in one
// atomic step.
type TransactionRepository interface {
	GetTransaction(ctx context.Context, transactionID string) (entities.Transaction, error)
	ListTransactions(ctx context.Context, filter TransactionFilter) ([]entities.Transaction, string, error)
	RecordSubmission(ctx context.Context, transactionID string, txHash string, submittedAt time.Time) error
	// Settle confirms a pending transaction and consumes its reservation.
	// A transaction already in a terminal state is returned unchanged together
	// with ErrTransactionFinalized.
	Settle(ctx context.Context, transactionID string, now time.Time) (entities.Transaction, error)
	// Release fails a pending transaction and returns its reservation to the
	// listing. Releasing an already-failed transaction is a no-op; releasing a
	// confirmed one returns ErrTransactionFinalized.
	Release(ctx context.Context, transactionID string, reason string, now time.Time) error
	// ListPendingOlderThan returns pending transactions created at or before
	// the cutoff, for the reconciler to poll.
	ListPendingOlderThan(ctx context.Context, cutoff time.Time) ([]entities.Transaction, error)
	// ListUnresolvedFailures returns failed transactions that carry a tx hash,
	// are not flagged ambiguous and failed at or after the cutoff. The
	// reconciler keeps polling their receipts for a bounded window so a late
	// confirmation is detected.
	ListUnresolvedFailures(ctx context.Context, since time.Time) ([]entities.Transaction, error)
	// FlagAmbiguous marks a failed transaction whose transfer confirmed on
	// chain after the failure was recorded.
	FlagAmbiguous(ctx context.Context, transactionID string, now time.Time) error
}

// AssetInfo is the trading engine's view of a catalog asset.
type AssetInfo struct {
	AssetID      string
	TokenAddress string
	Owner        string
	Status       string
	Tradable     bool
}

// AssetCatalog is the gateway into the asset registry. The trading engine
// never touches asset rows directly.
type AssetCatalog interface {
	Describe(ctx context.Context, assetID string) (AssetInfo, error)
	// EnableTrading flips a tokenized asset to trading on its first listing.
	EnableTrading(ctx context.Context, assetID string) error
	// SettleSupply applies a confirmed purchase to the asset's available supply.
	SettleSupply(ctx context.Context, assetID string, quantity uint64) error
}

// SettlementLedger is the slice of the chain adapter the trading engine uses.
// Satisfied by ledger.Adapter.
type SettlementLedger interface {
	GetTokenBalance(ctx context.Context, contract string, address string) (uint64, error)
	Transfer(ctx context.Context, contract string, from string, to string, amount uint64) (ledger.TxRef, error)
	GetReceipt(ctx context.Context, ref ledger.TxRef) (ledger.Receipt, error)
}

// Clock allows deterministic testing of timestamps and timeouts.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts listing and transaction identifier generation.
type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
