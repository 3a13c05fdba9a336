package workers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	application "tokeniza/contexts/marketplace-settlement/trading-engine/application"
	"tokeniza/contexts/marketplace-settlement/trading-engine/domain/entities"
	domainerrors "tokeniza/contexts/marketplace-settlement/trading-engine/domain/errors"
	"tokeniza/contexts/marketplace-settlement/trading-engine/ports"
	"tokeniza/internal/platform/ledger"
)

// SettlementReconciler resolves pending transactions against the chain. It
// polls receipts for submitted transfers, settles confirmed ones, rolls back
// reverted ones and times out transactions that never produce a receipt.
// Every step is idempotent; a crashed cycle is simply repeated.
type SettlementReconciler struct {
	Transactions ports.TransactionRepository
	Catalog      ports.AssetCatalog
	Ledger       ports.SettlementLedger
	Clock        ports.Clock
	// MinConfirmationWait is how long after creation a transaction must sit
	// before its receipt is first polled.
	MinConfirmationWait time.Duration
	// SettlementTimeout bounds how long a transaction may stay pending before
	// its reservation is released.
	SettlementTimeout time.Duration
	// AmbiguityWatchWindow bounds how long a timed-out failure keeps its
	// receipt polled for a late confirmation.
	AmbiguityWatchWindow time.Duration
	Logger               *slog.Logger
}

const (
	defaultMinConfirmationWait  = 15 * time.Second
	defaultSettlementTimeout    = 10 * time.Minute
	defaultAmbiguityWatchWindow = time.Hour
)

// RunOnce reconciles one batch of pending transactions. Per-transaction
// failures are logged and skipped so one stuck settlement never blocks the
// rest of the batch.
func (w SettlementReconciler) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(w.Logger)
	now := w.now()

	wait := w.MinConfirmationWait
	if wait <= 0 {
		wait = defaultMinConfirmationWait
	}
	timeout := w.SettlementTimeout
	if timeout <= 0 {
		timeout = defaultSettlementTimeout
	}

	window := w.AmbiguityWatchWindow
	if window <= 0 {
		window = defaultAmbiguityWatchWindow
	}

	pending, err := w.Transactions.ListPendingOlderThan(ctx, now.Add(-wait))
	if err != nil {
		logger.Error("settlement pending list failed",
			"event", "settlement_pending_list_failed",
			"module", "marketplace-settlement/trading-engine",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}
	if len(pending) > 0 {
		logger.Info("settlement reconcile cycle started",
			"event", "settlement_reconcile_started",
			"module", "marketplace-settlement/trading-engine",
			"layer", "worker",
			"pending_count", len(pending),
		)
		for _, txn := range pending {
			w.reconcile(ctx, txn, now, timeout)
		}
	}

	w.watchFailures(ctx, now, window)
	return nil
}

// watchFailures keeps polling receipts of recently failed transactions. A
// confirmation arriving after the timeout already released the reservation
// means tokens moved on chain while supply was returned off chain; the
// divergence is flagged once and reported for operators.
func (w SettlementReconciler) watchFailures(ctx context.Context, now time.Time, window time.Duration) {
	logger := application.ResolveLogger(w.Logger)

	failures, err := w.Transactions.ListUnresolvedFailures(ctx, now.Add(-window))
	if err != nil {
		logger.Error("settlement failure list failed",
			"event", "settlement_failure_list_failed",
			"module", "marketplace-settlement/trading-engine",
			"layer", "worker",
			"error", err.Error(),
		)
		return
	}

	for _, txn := range failures {
		receipt, err := w.Ledger.GetReceipt(ctx, ledger.TxRef{TxHash: txn.TxHash})
		if err != nil {
			// Transient or rejected lookup; the next sweep retries while the
			// window is open.
			continue
		}
		if receipt.Status != ledger.ReceiptConfirmed {
			continue
		}

		logger.Error("settlement outcome ambiguous",
			"event", "settlement_reconciliation_ambiguous",
			"module", "marketplace-settlement/trading-engine",
			"layer", "worker",
			"transaction_id", txn.TransactionID,
			"listing_id", txn.ListingID,
			"tx_hash", txn.TxHash,
		)
		if err := w.Transactions.FlagAmbiguous(ctx, txn.TransactionID, now); err != nil {
			logger.Error("settlement ambiguity flag failed",
				"event", "settlement_ambiguity_flag_failed",
				"module", "marketplace-settlement/trading-engine",
				"layer", "worker",
				"transaction_id", txn.TransactionID,
				"error", err.Error(),
			)
		}
	}
}

func (w SettlementReconciler) reconcile(ctx context.Context, txn entities.Transaction, now time.Time, timeout time.Duration) {
	logger := application.ResolveLogger(w.Logger)

	// A transaction with no hash was reserved but never submitted; nothing on
	// chain can confirm it, so it only ever times out.
	if txn.TxHash == "" {
		if now.Sub(txn.CreatedAt) >= timeout {
			w.release(ctx, txn, "submission never recorded", now)
		}
		return
	}

	receipt, err := w.Ledger.GetReceipt(ctx, ledger.TxRef{TxHash: txn.TxHash})
	if err != nil {
		if errors.Is(err, ledger.ErrUnreachable) {
			// Transient; the next cycle retries. The timeout still applies.
			if now.Sub(txn.CreatedAt) >= timeout {
				w.release(ctx, txn, "settlement timed out", now)
			}
			return
		}
		logger.Error("settlement receipt fetch rejected",
			"event", "settlement_receipt_rejected",
			"module", "marketplace-settlement/trading-engine",
			"layer", "worker",
			"transaction_id", txn.TransactionID,
			"tx_hash", txn.TxHash,
			"error", err.Error(),
		)
		w.release(ctx, txn, "ledger rejected receipt lookup", now)
		return
	}

	switch receipt.Status {
	case ledger.ReceiptConfirmed:
		w.settle(ctx, txn, now)
	case ledger.ReceiptFailed:
		w.release(ctx, txn, "transfer reverted on chain", now)
	case ledger.ReceiptPending:
		if now.Sub(txn.CreatedAt) >= timeout {
			w.release(ctx, txn, "settlement timed out", now)
		}
	}
}

func (w SettlementReconciler) settle(ctx context.Context, txn entities.Transaction, now time.Time) {
	logger := application.ResolveLogger(w.Logger)

	settled, err := w.Transactions.Settle(ctx, txn.TransactionID, now)
	if err != nil {
		if errors.Is(err, domainerrors.ErrTransactionFinalized) {
			if settled.Status == entities.TransactionStatusFailed {
				// The chain confirmed a transfer this side already failed by
				// timeout. Supply was returned to the listing while tokens
				// moved on chain; operators must reconcile by hand.
				logger.Error("settlement outcome ambiguous",
					"event", "settlement_reconciliation_ambiguous",
					"module", "marketplace-settlement/trading-engine",
					"layer", "worker",
					"transaction_id", txn.TransactionID,
					"listing_id", txn.ListingID,
					"tx_hash", txn.TxHash,
				)
			}
			return
		}
		logger.Error("settlement confirm failed",
			"event", "settlement_confirm_failed",
			"module", "marketplace-settlement/trading-engine",
			"layer", "worker",
			"transaction_id", txn.TransactionID,
			"error", err.Error(),
		)
		return
	}

	if err := w.Catalog.SettleSupply(ctx, settled.AssetID, settled.Quantity); err != nil {
		// The purchase is settled; the catalog supply is now behind and needs
		// operator attention.
		logger.Error("asset supply settle failed after confirmation",
			"event", "settlement_supply_sync_failed",
			"module", "marketplace-settlement/trading-engine",
			"layer", "worker",
			"transaction_id", settled.TransactionID,
			"asset_id", settled.AssetID,
			"quantity", settled.Quantity,
			"error", err.Error(),
		)
	}

	logger.Info("settlement confirmed",
		"event", "settlement_confirmed",
		"module", "marketplace-settlement/trading-engine",
		"layer", "worker",
		"transaction_id", settled.TransactionID,
		"listing_id", settled.ListingID,
		"asset_id", settled.AssetID,
		"quantity", settled.Quantity,
		"tx_hash", settled.TxHash,
	)
}

func (w SettlementReconciler) release(ctx context.Context, txn entities.Transaction, reason string, now time.Time) {
	logger := application.ResolveLogger(w.Logger)

	if err := w.Transactions.Release(ctx, txn.TransactionID, reason, now); err != nil {
		logger.Error("settlement release failed",
			"event", "settlement_release_failed",
			"module", "marketplace-settlement/trading-engine",
			"layer", "worker",
			"transaction_id", txn.TransactionID,
			"reason", reason,
			"error", err.Error(),
		)
		return
	}

	logger.Warn("settlement failed",
		"event", "settlement_failed",
		"module", "marketplace-settlement/trading-engine",
		"layer", "worker",
		"transaction_id", txn.TransactionID,
		"listing_id", txn.ListingID,
		"reason", reason,
	)
}

func (w SettlementReconciler) now() time.Time {
	if w.Clock == nil {
		return time.Now().UTC()
	}
	return w.Clock.Now().UTC()
}
