package entities

import (
	"time"

	domainerrors "tokeniza/contexts/marketplace-settlement/trading-engine/domain/errors"
)

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusConfirmed TransactionStatus = "confirmed"
	TransactionStatusFailed    TransactionStatus = "failed"
	TransactionStatusCancelled TransactionStatus = "cancelled"
)

// Transaction records one purchase against a listing from reservation through
// settlement. Confirmed, Failed and Cancelled are terminal; a transaction
// never leaves a terminal state.
type Transaction struct {
	TransactionID string
	ListingID     string
	AssetID       string
	TokenAddress  string
	Buyer         string
	Seller        string
	Quantity      uint64
	PricePerToken uint64
	TotalPrice    uint64
	TxHash        string
	FailureReason string
	// Ambiguous marks a failed transaction whose transfer later confirmed on
	// chain. Supply was returned off chain while tokens moved on chain;
	// operators resolve the divergence by hand.
	Ambiguous bool
	Status    TransactionStatus
	CreatedAt     time.Time
	SubmittedAt   time.Time
	UpdatedAt     time.Time
}

// NewTransaction builds the pending record for a fresh reservation against
// the given listing.
func NewTransaction(
	transactionID string,
	listing Listing,
	buyer string,
	quantity uint64,
	now time.Time,
) (Transaction, error) {
	if transactionID == "" || buyer == "" || quantity == 0 {
		return Transaction{}, domainerrors.ErrInvalidPurchaseRequest
	}
	total := listing.PricePerToken * quantity
	if listing.PricePerToken != 0 && total/listing.PricePerToken != quantity {
		return Transaction{}, domainerrors.ErrInvalidPurchaseRequest
	}
	return Transaction{
		TransactionID: transactionID,
		ListingID:     listing.ListingID,
		AssetID:       listing.AssetID,
		TokenAddress:  listing.TokenAddress,
		Buyer:         buyer,
		Seller:        listing.Seller,
		Quantity:      quantity,
		PricePerToken: listing.PricePerToken,
		TotalPrice:    total,
		Status:        TransactionStatusPending,
		CreatedAt:     now.UTC(),
		UpdatedAt:     now.UTC(),
	}, nil
}

// RecordSubmission attaches the on-chain hash once the transfer was sent.
func (t *Transaction) RecordSubmission(txHash string, now time.Time) error {
	if t.Status != TransactionStatusPending {
		return domainerrors.ErrTransactionFinalized
	}
	t.TxHash = txHash
	t.SubmittedAt = now.UTC()
	t.UpdatedAt = now.UTC()
	return nil
}

// Confirm finalizes a pending transaction after on-chain confirmation.
func (t *Transaction) Confirm(now time.Time) error {
	if t.Status != TransactionStatusPending {
		return domainerrors.ErrTransactionFinalized
	}
	t.Status = TransactionStatusConfirmed
	t.UpdatedAt = now.UTC()
	return nil
}

// Fail finalizes a pending transaction after a revert, rejection or timeout.
func (t *Transaction) Fail(reason string, now time.Time) error {
	if t.Status != TransactionStatusPending {
		return domainerrors.ErrTransactionFinalized
	}
	t.Status = TransactionStatusFailed
	t.FailureReason = reason
	t.UpdatedAt = now.UTC()
	return nil
}

// FlagAmbiguous records a late on-chain confirmation against a transaction
// already failed by timeout. Flagging twice is a no-op.
func (t *Transaction) FlagAmbiguous(now time.Time) error {
	if t.Status != TransactionStatusFailed {
		return domainerrors.ErrTransactionFinalized
	}
	if t.Ambiguous {
		return nil
	}
	t.Ambiguous = true
	t.UpdatedAt = now.UTC()
	return nil
}

// Finalized reports whether the transaction reached a terminal state.
func (t Transaction) Finalized() bool {
	return t.Status == TransactionStatusConfirmed ||
		t.Status == TransactionStatusFailed ||
		t.Status == TransactionStatusCancelled
}
