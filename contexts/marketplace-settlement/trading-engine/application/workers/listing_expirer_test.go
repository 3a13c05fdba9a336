package workers_test

import (
	"context"
	"testing"
	"time"

	"tokeniza/contexts/marketplace-settlement/trading-engine/adapters/memory"
	"tokeniza/contexts/marketplace-settlement/trading-engine/application/workers"
	"tokeniza/contexts/marketplace-settlement/trading-engine/domain/entities"
	"tokeniza/contexts/marketplace-settlement/trading-engine/ports"
)

func TestListingExpirerSweep(t *testing.T) {
	clock := &fixedClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	store := memory.NewStore(nil)
	expirer := workers.ListingExpirer{Listings: store, Clock: clock}
	ctx := context.Background()
	now := clock.Now()

	expiring, err := entities.NewListing("listing-1", "asset-1", contractAddr, sellerAddr, 50, 100, now.Add(time.Hour), now)
	if err != nil {
		t.Fatalf("new listing failed: %v", err)
	}
	open, err := entities.NewListing("listing-2", "asset-1", contractAddr, sellerAddr, 50, 100, time.Time{}, now)
	if err != nil {
		t.Fatalf("new listing failed: %v", err)
	}
	reserved, err := entities.NewListing("listing-3", "asset-1", contractAddr, sellerAddr, 50, 100, now.Add(time.Hour), now)
	if err != nil {
		t.Fatalf("new listing failed: %v", err)
	}
	for _, listing := range []entities.Listing{expiring, open, reserved} {
		if err := store.CreateListing(ctx, listing); err != nil {
			t.Fatalf("create listing failed: %v", err)
		}
	}
	if _, _, err := store.Reserve(ctx, "listing-3", ports.ReservationRequest{
		TransactionID: "trade-1",
		Buyer:         buyerAddr,
		Quantity:      10,
	}, now); err != nil {
		t.Fatalf("reserve failed: %v", err)
	}

	clock.Advance(2 * time.Hour)
	if err := expirer.RunOnce(ctx); err != nil {
		t.Fatalf("expire sweep failed: %v", err)
	}

	status := func(id string) entities.ListingStatus {
		listing, err := store.GetListing(ctx, id)
		if err != nil {
			t.Fatalf("get listing failed: %v", err)
		}
		return listing.Status
	}

	if got := status("listing-1"); got != entities.ListingStatusExpired {
		t.Fatalf("expected listing-1 expired, got %s", got)
	}
	if got := status("listing-2"); got != entities.ListingStatusActive {
		t.Fatalf("expected listing-2 untouched, got %s", got)
	}
	// Open reservation defers expiry until the settlement resolves.
	if got := status("listing-3"); got != entities.ListingStatusActive {
		t.Fatalf("expected listing-3 deferred, got %s", got)
	}

	if err := store.Release(ctx, "trade-1", "settlement timed out", clock.Now()); err != nil {
		t.Fatalf("release failed: %v", err)
	}
	if err := expirer.RunOnce(ctx); err != nil {
		t.Fatalf("second sweep failed: %v", err)
	}
	if got := status("listing-3"); got != entities.ListingStatusExpired {
		t.Fatalf("expected listing-3 expired after release, got %s", got)
	}
}
