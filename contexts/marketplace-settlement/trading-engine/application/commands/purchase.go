package commands

import (
	"context"
	"errors"
	"log/slog"

	application "tokeniza/contexts/marketplace-settlement/trading-engine/application"
	"tokeniza/contexts/marketplace-settlement/trading-engine/domain/entities"
	domainerrors "tokeniza/contexts/marketplace-settlement/trading-engine/domain/errors"
	"tokeniza/contexts/marketplace-settlement/trading-engine/ports"
	"tokeniza/internal/platform/ledger"
)

type PurchaseCommand struct {
	ListingID string
	Buyer     string
	Quantity  uint64
}

// PurchaseUseCase reserves listing supply and submits the token transfer.
// The reservation is taken first, inside the repository's per-listing
// critical section; the ledger call happens after, outside any lock, so a
// slow chain never serializes unrelated purchases. The transaction stays
// pending until the settlement reconciler resolves the on-chain outcome.
type PurchaseUseCase struct {
	Listings     ports.ListingRepository
	Transactions ports.TransactionRepository
	Ledger       ports.SettlementLedger
	Clock        ports.Clock
	IDGenerator  ports.IDGenerator
	Logger       *slog.Logger
}

func (u PurchaseUseCase) Execute(ctx context.Context, cmd PurchaseCommand) (entities.Transaction, error) {
	logger := application.ResolveLogger(u.Logger)

	if cmd.Quantity == 0 {
		return entities.Transaction{}, domainerrors.ErrInvalidPurchaseRequest
	}
	if !ledger.IsValidAddress(cmd.Buyer) {
		return entities.Transaction{}, domainerrors.ErrInvalidPurchaseRequest
	}

	transactionID, err := u.IDGenerator.NewID(ctx)
	if err != nil {
		return entities.Transaction{}, err
	}

	now := resolveNow(u.Clock)
	listing, txn, err := u.Listings.Reserve(ctx, cmd.ListingID, ports.ReservationRequest{
		TransactionID: transactionID,
		Buyer:         cmd.Buyer,
		Quantity:      cmd.Quantity,
	}, now)
	if err != nil {
		return entities.Transaction{}, err
	}

	logger.Info("purchase reserved",
		"event", "purchase_reserved",
		"module", "marketplace-settlement/trading-engine",
		"layer", "application",
		"transaction_id", txn.TransactionID,
		"listing_id", listing.ListingID,
		"buyer", cmd.Buyer,
		"quantity", cmd.Quantity,
	)

	ref, err := u.Ledger.Transfer(ctx, listing.TokenAddress, listing.Seller, cmd.Buyer, cmd.Quantity)
	if err != nil {
		if errors.Is(err, ledger.ErrRejected) {
			return entities.Transaction{}, u.failSubmission(ctx, txn, err)
		}
		// An unreachable node may still have accepted the raw transaction
		// before the connection dropped. The reservation holds and the
		// transaction stays pending with no hash; the reconciler times it out
		// if nothing ever confirms.
		logger.Warn("purchase transfer outcome unknown",
			"event", "purchase_transfer_ambiguous",
			"module", "marketplace-settlement/trading-engine",
			"layer", "application",
			"transaction_id", txn.TransactionID,
			"listing_id", listing.ListingID,
			"error", err.Error(),
		)
		return txn, nil
	}

	if err := u.Transactions.RecordSubmission(ctx, txn.TransactionID, ref.TxHash, resolveNow(u.Clock)); err != nil {
		// The transfer is on chain but the hash write lost; the reconciler
		// times the orphaned reservation out. Flag it for operators.
		logger.Error("purchase submission record failed",
			"event", "purchase_submission_record_failed",
			"module", "marketplace-settlement/trading-engine",
			"layer", "application",
			"transaction_id", txn.TransactionID,
			"tx_hash", ref.TxHash,
			"error", err.Error(),
		)
		return entities.Transaction{}, err
	}
	txn.TxHash = ref.TxHash

	logger.Info("purchase submitted",
		"event", "purchase_submitted",
		"module", "marketplace-settlement/trading-engine",
		"layer", "application",
		"transaction_id", txn.TransactionID,
		"listing_id", listing.ListingID,
		"tx_hash", ref.TxHash,
	)
	return txn, nil
}

// failSubmission rolls the reservation back after the ledger permanently
// rejected the transfer. Nothing reached the chain, so supply returns to the
// listing immediately.
func (u PurchaseUseCase) failSubmission(ctx context.Context, txn entities.Transaction, cause error) error {
	logger := application.ResolveLogger(u.Logger)
	now := resolveNow(u.Clock)

	if err := u.Transactions.Release(ctx, txn.TransactionID, "ledger rejected transfer", now); err != nil {
		logger.Error("purchase rollback failed",
			"event", "purchase_rollback_failed",
			"module", "marketplace-settlement/trading-engine",
			"layer", "application",
			"transaction_id", txn.TransactionID,
			"error", err.Error(),
		)
		return cause
	}

	logger.Warn("purchase transfer failed",
		"event", "purchase_transfer_rejected",
		"module", "marketplace-settlement/trading-engine",
		"layer", "application",
		"transaction_id", txn.TransactionID,
		"listing_id", txn.ListingID,
		"error", cause.Error(),
	)
	return cause
}
