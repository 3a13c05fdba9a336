package tradingengine_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	tradingengine "tokeniza/contexts/marketplace-settlement/trading-engine"
	domainerrors "tokeniza/contexts/marketplace-settlement/trading-engine/domain/errors"
	"tokeniza/contexts/marketplace-settlement/trading-engine/ports"
	httptransport "tokeniza/contexts/marketplace-settlement/trading-engine/transport/http"
	"tokeniza/internal/platform/ledger"
	"tokeniza/internal/platform/ledger/fake"
)

const (
	sellerAddr   = "0x00000000000000000000000000000000000000aa"
	buyerAddr    = "0x00000000000000000000000000000000000000bb"
	contractAddr = "0x00000000000000000000000000000000000000cc"
)

// catalogStub satisfies ports.AssetCatalog with a single scripted asset.
type catalogStub struct {
	mu           sync.Mutex
	info         ports.AssetInfo
	describeErr  error
	tradingFlips int
	settled      uint64
}

func (c *catalogStub) Describe(_ context.Context, assetID string) (ports.AssetInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.describeErr != nil {
		return ports.AssetInfo{}, c.describeErr
	}
	if assetID != c.info.AssetID {
		return ports.AssetInfo{}, errors.New("unknown asset")
	}
	return c.info, nil
}

func (c *catalogStub) EnableTrading(_ context.Context, _ string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tradingFlips++
	return nil
}

func (c *catalogStub) SettleSupply(_ context.Context, _ string, quantity uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.settled += quantity
	return nil
}

func newTradableCatalog() *catalogStub {
	return &catalogStub{info: ports.AssetInfo{
		AssetID:      "asset-1",
		TokenAddress: contractAddr,
		Owner:        sellerAddr,
		Status:       "Tokenized",
		Tradable:     true,
	}}
}

func createListing(t *testing.T, module tradingengine.Module, quantity uint64) httptransport.ListingDTO {
	t.Helper()
	listing, err := module.Handler.CreateListingHandler(context.Background(), httptransport.CreateListingRequest{
		AssetID:       "asset-1",
		Seller:        sellerAddr,
		PricePerToken: 50,
		Quantity:      quantity,
	})
	if err != nil {
		t.Fatalf("create listing failed: %v", err)
	}
	return listing
}

func TestCreateListingGuards(t *testing.T) {
	catalog := newTradableCatalog()
	chain := fake.New()
	module := tradingengine.NewInMemoryModule(catalog, chain, nil)
	ctx := context.Background()

	_, err := module.Handler.CreateListingHandler(ctx, httptransport.CreateListingRequest{
		AssetID:       "asset-1",
		Seller:        sellerAddr,
		PricePerToken: 50,
		Quantity:      100,
	})
	if !errors.Is(err, domainerrors.ErrInsufficientSellerBalance) {
		t.Fatalf("expected insufficient balance with no tokens, got %v", err)
	}

	chain.SetTokenBalance(contractAddr, sellerAddr, 100)
	catalog.info.Tradable = false
	_, err = module.Handler.CreateListingHandler(ctx, httptransport.CreateListingRequest{
		AssetID:       "asset-1",
		Seller:        sellerAddr,
		PricePerToken: 50,
		Quantity:      100,
	})
	if !errors.Is(err, domainerrors.ErrAssetNotTradable) {
		t.Fatalf("expected not tradable, got %v", err)
	}

	catalog.info.Tradable = true
	listing := createListing(t, module, 100)
	if listing.Status != "active" || listing.Available != 100 {
		t.Fatalf("expected active listing with full availability, got %+v", listing)
	}
	if catalog.tradingFlips != 1 {
		t.Fatalf("expected one trading flip, got %d", catalog.tradingFlips)
	}
}

func TestPurchaseReservesAndSubmits(t *testing.T) {
	catalog := newTradableCatalog()
	chain := fake.New()
	chain.SetTokenBalance(contractAddr, sellerAddr, 100)
	module := tradingengine.NewInMemoryModule(catalog, chain, nil)
	ctx := context.Background()

	listing := createListing(t, module, 100)

	txn, err := module.Handler.PurchaseHandler(ctx, listing.ID, httptransport.PurchaseRequest{
		Buyer:    buyerAddr,
		Quantity: 40,
	})
	if err != nil {
		t.Fatalf("purchase failed: %v", err)
	}
	if txn.Status != "pending" || txn.TxHash == "" {
		t.Fatalf("expected pending transaction with hash, got %+v", txn)
	}
	if txn.TotalPrice != "2000" {
		t.Fatalf("expected total price 2000, got %s", txn.TotalPrice)
	}

	after, err := module.Handler.GetListingHandler(ctx, listing.ID)
	if err != nil {
		t.Fatalf("get listing failed: %v", err)
	}
	if after.Available != 60 || after.Reserved != 40 || after.Settled != 0 {
		t.Fatalf("expected 60/40/0 split, got %d/%d/%d", after.Available, after.Reserved, after.Settled)
	}
	if after.Available+after.Reserved+after.Settled != after.Quantity {
		t.Fatalf("supply invariant broken: %+v", after)
	}
}

func TestPurchaseRejectedTransferReleasesReservation(t *testing.T) {
	catalog := newTradableCatalog()
	chain := fake.New()
	chain.SetTokenBalance(contractAddr, sellerAddr, 100)
	module := tradingengine.NewInMemoryModule(catalog, chain, nil)
	ctx := context.Background()

	listing := createListing(t, module, 100)

	chain.Fail["transfer"] = ledger.Rejected("transfer", errors.New("nonce too low"))
	_, err := module.Handler.PurchaseHandler(ctx, listing.ID, httptransport.PurchaseRequest{
		Buyer:    buyerAddr,
		Quantity: 10,
	})
	if !errors.Is(err, ledger.ErrRejected) {
		t.Fatalf("expected rejected error, got %v", err)
	}

	after, err := module.Handler.GetListingHandler(ctx, listing.ID)
	if err != nil {
		t.Fatalf("get listing failed: %v", err)
	}
	if after.Available != 100 || after.Reserved != 0 {
		t.Fatalf("expected reservation rolled back, got %d/%d", after.Available, after.Reserved)
	}

	failed, err := module.Handler.ListTransactionsHandler(ctx, listing.ID, "", "failed", "", 0)
	if err != nil {
		t.Fatalf("list transactions failed: %v", err)
	}
	if failed.Count != 1 {
		t.Fatalf("expected one failed transaction, got %d", failed.Count)
	}
}

func TestPurchaseUnreachableTransferKeepsReservation(t *testing.T) {
	catalog := newTradableCatalog()
	chain := fake.New()
	chain.SetTokenBalance(contractAddr, sellerAddr, 100)
	module := tradingengine.NewInMemoryModule(catalog, chain, nil)
	ctx := context.Background()

	listing := createListing(t, module, 100)

	// The node may have accepted the raw transaction before the connection
	// dropped, so the reservation must hold until the reconciler resolves it.
	chain.Fail["transfer"] = ledger.Unreachable("transfer", errors.New("connection reset"))
	txn, err := module.Handler.PurchaseHandler(ctx, listing.ID, httptransport.PurchaseRequest{
		Buyer:    buyerAddr,
		Quantity: 10,
	})
	if err != nil {
		t.Fatalf("expected pending purchase despite unreachable node, got %v", err)
	}
	if txn.Status != "pending" || txn.TxHash != "" {
		t.Fatalf("expected pending transaction without hash, got %+v", txn)
	}

	after, err := module.Handler.GetListingHandler(ctx, listing.ID)
	if err != nil {
		t.Fatalf("get listing failed: %v", err)
	}
	if after.Available != 90 || after.Reserved != 10 || after.Settled != 0 {
		t.Fatalf("expected 90/10/0 split, got %d/%d/%d", after.Available, after.Reserved, after.Settled)
	}

	pending, err := module.Handler.ListTransactionsHandler(ctx, listing.ID, "", "pending", "", 0)
	if err != nil {
		t.Fatalf("list transactions failed: %v", err)
	}
	if pending.Count != 1 {
		t.Fatalf("expected one pending transaction, got %d", pending.Count)
	}
}

func TestConcurrentPurchasesSingleWinner(t *testing.T) {
	catalog := newTradableCatalog()
	chain := fake.New()
	chain.SetTokenBalance(contractAddr, sellerAddr, 100)
	module := tradingengine.NewInMemoryModule(catalog, chain, nil)
	ctx := context.Background()

	listing := createListing(t, module, 1)

	const attempts = 10
	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := module.Handler.PurchaseHandler(ctx, listing.ID, httptransport.PurchaseRequest{
				Buyer:    buyerAddr,
				Quantity: 1,
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var wins, losses int
	for err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, domainerrors.ErrListingUnavailable):
			losses++
		default:
			t.Fatalf("unexpected purchase error: %v", err)
		}
	}
	if wins != 1 || losses != attempts-1 {
		t.Fatalf("expected exactly one winner, got %d wins %d losses", wins, losses)
	}

	after, err := module.Handler.GetListingHandler(ctx, listing.ID)
	if err != nil {
		t.Fatalf("get listing failed: %v", err)
	}
	if after.Available != 0 || after.Reserved != 1 {
		t.Fatalf("expected the single unit reserved, got %d/%d", after.Available, after.Reserved)
	}
}

func TestCancelListingRules(t *testing.T) {
	catalog := newTradableCatalog()
	chain := fake.New()
	chain.SetTokenBalance(contractAddr, sellerAddr, 100)
	module := tradingengine.NewInMemoryModule(catalog, chain, nil)
	ctx := context.Background()

	listing := createListing(t, module, 100)

	if _, err := module.Handler.CancelListingHandler(ctx, listing.ID, httptransport.CancelListingRequest{
		Seller: buyerAddr,
	}); !errors.Is(err, domainerrors.ErrListingNotOwned) {
		t.Fatalf("expected not owned, got %v", err)
	}

	if _, err := module.Handler.PurchaseHandler(ctx, listing.ID, httptransport.PurchaseRequest{
		Buyer:    buyerAddr,
		Quantity: 10,
	}); err != nil {
		t.Fatalf("purchase failed: %v", err)
	}

	if _, err := module.Handler.CancelListingHandler(ctx, listing.ID, httptransport.CancelListingRequest{
		Seller: sellerAddr,
	}); !errors.Is(err, domainerrors.ErrListingReserved) {
		t.Fatalf("expected reserved block, got %v", err)
	}
}
