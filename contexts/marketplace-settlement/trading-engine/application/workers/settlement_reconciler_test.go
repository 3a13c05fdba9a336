package workers_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"tokeniza/contexts/marketplace-settlement/trading-engine/adapters/memory"
	"tokeniza/contexts/marketplace-settlement/trading-engine/application/workers"
	"tokeniza/contexts/marketplace-settlement/trading-engine/domain/entities"
	"tokeniza/contexts/marketplace-settlement/trading-engine/ports"
	"tokeniza/internal/platform/ledger"
	"tokeniza/internal/platform/ledger/fake"
)

const (
	sellerAddr   = "0x00000000000000000000000000000000000000aa"
	buyerAddr    = "0x00000000000000000000000000000000000000bb"
	contractAddr = "0x00000000000000000000000000000000000000cc"
)

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type supplyRecorder struct {
	mu      sync.Mutex
	settled uint64
}

func (r *supplyRecorder) Describe(_ context.Context, _ string) (ports.AssetInfo, error) {
	return ports.AssetInfo{}, nil
}

func (r *supplyRecorder) EnableTrading(_ context.Context, _ string) error { return nil }

func (r *supplyRecorder) SettleSupply(_ context.Context, _ string, quantity uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settled += quantity
	return nil
}

type fixture struct {
	store      *memory.Store
	chain      *fake.Ledger
	catalog    *supplyRecorder
	clock      *fixedClock
	reconciler workers.SettlementReconciler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := &fixedClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	store := memory.NewStore(nil)
	chain := fake.New()
	catalog := &supplyRecorder{}
	return &fixture{
		store:   store,
		chain:   chain,
		catalog: catalog,
		clock:   clock,
		reconciler: workers.SettlementReconciler{
			Transactions:        store,
			Catalog:             catalog,
			Ledger:              chain,
			Clock:               clock,
			MinConfirmationWait: 15 * time.Second,
			SettlementTimeout:   10 * time.Minute,
		},
	}
}

// reserve creates an active listing and a pending reservation against it,
// optionally recording the transfer submission.
func (f *fixture) reserve(t *testing.T, quantity uint64, submit bool) entities.Transaction {
	t.Helper()
	now := f.clock.Now()

	listing, err := entities.NewListing("listing-1", "asset-1", contractAddr, sellerAddr, 50, 100, time.Time{}, now)
	if err != nil {
		t.Fatalf("new listing failed: %v", err)
	}
	if err := f.store.CreateListing(context.Background(), listing); err != nil {
		t.Fatalf("create listing failed: %v", err)
	}

	_, txn, err := f.store.Reserve(context.Background(), listing.ListingID, ports.ReservationRequest{
		TransactionID: "trade-1",
		Buyer:         buyerAddr,
		Quantity:      quantity,
	}, now)
	if err != nil {
		t.Fatalf("reserve failed: %v", err)
	}

	if submit {
		ref, err := f.chain.Transfer(context.Background(), contractAddr, sellerAddr, buyerAddr, quantity)
		if err != nil {
			t.Fatalf("transfer failed: %v", err)
		}
		if err := f.store.RecordSubmission(context.Background(), txn.TransactionID, ref.TxHash, now); err != nil {
			t.Fatalf("record submission failed: %v", err)
		}
		txn.TxHash = ref.TxHash
	}
	return txn
}

func (f *fixture) run(t *testing.T) {
	t.Helper()
	if err := f.reconciler.RunOnce(context.Background()); err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}
}

func (f *fixture) transaction(t *testing.T, id string) entities.Transaction {
	t.Helper()
	txn, err := f.store.GetTransaction(context.Background(), id)
	if err != nil {
		t.Fatalf("get transaction failed: %v", err)
	}
	return txn
}

func (f *fixture) listing(t *testing.T) entities.Listing {
	t.Helper()
	listing, err := f.store.GetListing(context.Background(), "listing-1")
	if err != nil {
		t.Fatalf("get listing failed: %v", err)
	}
	return listing
}

func TestReconcilerConfirmsSettledTransfer(t *testing.T) {
	f := newFixture(t)
	txn := f.reserve(t, 40, true)

	f.clock.Advance(30 * time.Second)
	f.run(t)

	after := f.transaction(t, txn.TransactionID)
	if after.Status != entities.TransactionStatusConfirmed {
		t.Fatalf("expected confirmed, got %s", after.Status)
	}
	listing := f.listing(t)
	if listing.Available != 60 || listing.Reserved != 0 || listing.Settled != 40 {
		t.Fatalf("expected 60/0/40 split, got %d/%d/%d", listing.Available, listing.Reserved, listing.Settled)
	}
	if f.catalog.settled != 40 {
		t.Fatalf("expected supply settle of 40, got %d", f.catalog.settled)
	}
}

func TestReconcilerMarksListingSoldWhenFullySettled(t *testing.T) {
	f := newFixture(t)
	f.reserve(t, 100, true)

	f.clock.Advance(30 * time.Second)
	f.run(t)

	listing := f.listing(t)
	if listing.Status != entities.ListingStatusSold {
		t.Fatalf("expected sold listing, got %s", listing.Status)
	}
	if listing.Available != 0 || listing.Reserved != 0 || listing.Settled != 100 {
		t.Fatalf("expected 0/0/100 split, got %d/%d/%d", listing.Available, listing.Reserved, listing.Settled)
	}
}

func TestReconcilerReleasesRevertedTransfer(t *testing.T) {
	f := newFixture(t)
	txn := f.reserve(t, 40, true)
	f.chain.SetReceipt(txn.TxHash, ledger.ReceiptFailed)

	f.clock.Advance(30 * time.Second)
	f.run(t)

	after := f.transaction(t, txn.TransactionID)
	if after.Status != entities.TransactionStatusFailed {
		t.Fatalf("expected failed, got %s", after.Status)
	}
	if after.FailureReason != "transfer reverted on chain" {
		t.Fatalf("unexpected failure reason %q", after.FailureReason)
	}
	listing := f.listing(t)
	if listing.Available != 100 || listing.Reserved != 0 {
		t.Fatalf("expected reservation released, got %d/%d", listing.Available, listing.Reserved)
	}
}

func TestReconcilerWaitsBeforeFirstPoll(t *testing.T) {
	f := newFixture(t)
	txn := f.reserve(t, 40, true)

	// Inside the confirmation wait window the transaction is not yet polled.
	f.clock.Advance(5 * time.Second)
	f.run(t)

	after := f.transaction(t, txn.TransactionID)
	if after.Status != entities.TransactionStatusPending {
		t.Fatalf("expected still pending, got %s", after.Status)
	}
}

func TestReconcilerTimesOutUnminedTransfer(t *testing.T) {
	f := newFixture(t)
	txn := f.reserve(t, 40, true)
	f.chain.ClearReceipt(txn.TxHash)

	f.clock.Advance(5 * time.Minute)
	f.run(t)
	if got := f.transaction(t, txn.TransactionID); got.Status != entities.TransactionStatusPending {
		t.Fatalf("expected pending before timeout, got %s", got.Status)
	}

	f.clock.Advance(6 * time.Minute)
	f.run(t)

	after := f.transaction(t, txn.TransactionID)
	if after.Status != entities.TransactionStatusFailed {
		t.Fatalf("expected timed-out failure, got %s", after.Status)
	}
	if after.FailureReason != "settlement timed out" {
		t.Fatalf("unexpected failure reason %q", after.FailureReason)
	}
	if listing := f.listing(t); listing.Available != 100 {
		t.Fatalf("expected supply returned, got %d", listing.Available)
	}
}

func TestReconcilerTimesOutUnsubmittedReservation(t *testing.T) {
	f := newFixture(t)
	txn := f.reserve(t, 40, false)

	f.clock.Advance(11 * time.Minute)
	f.run(t)

	after := f.transaction(t, txn.TransactionID)
	if after.Status != entities.TransactionStatusFailed {
		t.Fatalf("expected failed, got %s", after.Status)
	}
	if after.FailureReason != "submission never recorded" {
		t.Fatalf("unexpected failure reason %q", after.FailureReason)
	}
}

func TestReconcilerRetriesUnreachableLedger(t *testing.T) {
	f := newFixture(t)
	txn := f.reserve(t, 40, true)

	f.clock.Advance(30 * time.Second)
	f.chain.Fail["receipt"] = ledger.Unreachable("receipt", context.DeadlineExceeded)
	f.run(t)

	if got := f.transaction(t, txn.TransactionID); got.Status != entities.TransactionStatusPending {
		t.Fatalf("expected pending while ledger unreachable, got %s", got.Status)
	}

	// The scripted failure is consumed; the next cycle confirms.
	f.run(t)
	if got := f.transaction(t, txn.TransactionID); got.Status != entities.TransactionStatusConfirmed {
		t.Fatalf("expected confirmed on retry, got %s", got.Status)
	}
}

func TestReconcilerLateConfirmationStaysFailed(t *testing.T) {
	f := newFixture(t)
	var logBuf bytes.Buffer
	f.reconciler.Logger = slog.New(slog.NewJSONHandler(&logBuf, nil))
	txn := f.reserve(t, 40, true)
	f.chain.ClearReceipt(txn.TxHash)

	f.clock.Advance(11 * time.Minute)
	f.run(t)
	if got := f.transaction(t, txn.TransactionID); got.Status != entities.TransactionStatusFailed {
		t.Fatalf("expected timed-out failure, got %s", got.Status)
	}

	// The chain confirms after the timeout already failed the transaction.
	// Terminal states are monotonic: the failure stands and supply is not
	// consumed a second time, but the divergence is flagged and reported.
	f.chain.SetReceipt(txn.TxHash, ledger.ReceiptConfirmed)
	f.run(t)

	after := f.transaction(t, txn.TransactionID)
	if after.Status != entities.TransactionStatusFailed {
		t.Fatalf("expected failure to stand, got %s", after.Status)
	}
	if !after.Ambiguous {
		t.Fatalf("expected transaction flagged ambiguous, got %+v", after)
	}
	if !strings.Contains(logBuf.String(), "settlement_reconciliation_ambiguous") {
		t.Fatalf("expected ambiguity report in log output, got %s", logBuf.String())
	}
	if f.catalog.settled != 0 {
		t.Fatalf("expected no supply settle after late confirmation, got %d", f.catalog.settled)
	}
	if listing := f.listing(t); listing.Available != 100 || listing.Settled != 0 {
		t.Fatalf("expected listing untouched, got %d/%d/%d", listing.Available, listing.Reserved, listing.Settled)
	}

	// A flagged transaction drops out of the watch; the report fires once.
	f.run(t)
	if got := strings.Count(logBuf.String(), "settlement_reconciliation_ambiguous"); got != 1 {
		t.Fatalf("expected a single ambiguity report, got %d", got)
	}
}
