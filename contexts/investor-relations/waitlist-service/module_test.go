package waitlistservice_test

import (
	"context"
	"errors"
	"testing"

	waitlistservice "tokeniza/contexts/investor-relations/waitlist-service"
	domainerrors "tokeniza/contexts/investor-relations/waitlist-service/domain/errors"
	httptransport "tokeniza/contexts/investor-relations/waitlist-service/transport/http"
)

func TestWaitlistJoinAndDuplicate(t *testing.T) {
	module := waitlistservice.NewInMemoryModule(nil)
	ctx := context.Background()

	entry, err := module.Handler.JoinWaitlistHandler(ctx, httptransport.JoinWaitlistRequest{
		Email:           "Ana.Silva@Example.COM",
		Name:            "Ana Silva",
		InterestAreas:   []string{"real_estate", "art"},
		InvestmentRange: "50k_100k",
	})
	if err != nil {
		t.Fatalf("join failed: %v", err)
	}
	if entry.Email != "ana.silva@example.com" {
		t.Fatalf("expected normalized email, got %s", entry.Email)
	}
	if entry.Status != "pending" {
		t.Fatalf("expected pending, got %s", entry.Status)
	}

	_, err = module.Handler.JoinWaitlistHandler(ctx, httptransport.JoinWaitlistRequest{
		Email: "  ana.silva@example.com ",
		Name:  "A. Silva",
	})
	if !errors.Is(err, domainerrors.ErrDuplicateEmail) {
		t.Fatalf("expected duplicate email, got %v", err)
	}

	for _, email := range []string{"", "no-at-sign.com", "two@@example.com", "a@b"} {
		_, err := module.Handler.JoinWaitlistHandler(ctx, httptransport.JoinWaitlistRequest{Email: email})
		if !errors.Is(err, domainerrors.ErrInvalidWaitlistRequest) {
			t.Fatalf("expected invalid request for %q, got %v", email, err)
		}
	}

	_, err = module.Handler.JoinWaitlistHandler(ctx, httptransport.JoinWaitlistRequest{
		Email:           "bob@example.com",
		InvestmentRange: "about_a_million",
	})
	if !errors.Is(err, domainerrors.ErrInvalidWaitlistRequest) {
		t.Fatalf("expected invalid investment range, got %v", err)
	}
}

func TestWaitlistFunnelTransitions(t *testing.T) {
	module := waitlistservice.NewInMemoryModule(nil)
	ctx := context.Background()

	entry, err := module.Handler.JoinWaitlistHandler(ctx, httptransport.JoinWaitlistRequest{
		Email: "carol@example.com",
	})
	if err != nil {
		t.Fatalf("join failed: %v", err)
	}

	if _, err := module.Handler.UpdateStatusHandler(ctx, entry.ID, httptransport.UpdateStatusRequest{
		Status: "converted",
	}); !errors.Is(err, domainerrors.ErrInvalidStatusChange) {
		t.Fatalf("expected pending to converted rejected, got %v", err)
	}

	contacted, err := module.Handler.UpdateStatusHandler(ctx, entry.ID, httptransport.UpdateStatusRequest{
		Status: "contacted",
	})
	if err != nil {
		t.Fatalf("mark contacted failed: %v", err)
	}
	if contacted.Status != "contacted" || contacted.ContactedAt == "" {
		t.Fatalf("expected contacted with timestamp, got %+v", contacted)
	}

	converted, err := module.Handler.UpdateStatusHandler(ctx, entry.ID, httptransport.UpdateStatusRequest{
		Status: "converted",
	})
	if err != nil {
		t.Fatalf("mark converted failed: %v", err)
	}
	if converted.Status != "converted" {
		t.Fatalf("expected converted, got %s", converted.Status)
	}

	// Converted is terminal.
	if _, err := module.Handler.UpdateStatusHandler(ctx, entry.ID, httptransport.UpdateStatusRequest{
		Status: "unsubscribed",
	}); !errors.Is(err, domainerrors.ErrInvalidStatusChange) {
		t.Fatalf("expected unsubscribe after conversion rejected, got %v", err)
	}

	if _, err := module.Handler.UpdateStatusHandler(ctx, entry.ID, httptransport.UpdateStatusRequest{
		Status: "archived",
	}); !errors.Is(err, domainerrors.ErrInvalidWaitlistRequest) {
		t.Fatalf("expected unknown status rejected, got %v", err)
	}

	if _, err := module.Handler.UpdateStatusHandler(ctx, "waitlist-999", httptransport.UpdateStatusRequest{
		Status: "contacted",
	}); !errors.Is(err, domainerrors.ErrEntryNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestWaitlistStats(t *testing.T) {
	module := waitlistservice.NewInMemoryModule(nil)
	ctx := context.Background()

	seed := []httptransport.JoinWaitlistRequest{
		{Email: "a@example.com", InterestAreas: []string{"real_estate"}, InvestmentRange: "under_10k"},
		{Email: "b@example.com", InterestAreas: []string{"real_estate", "art"}, InvestmentRange: "over_500k"},
		{Email: "c@example.com", InterestAreas: []string{"art"}},
	}
	var first string
	for i, req := range seed {
		entry, err := module.Handler.JoinWaitlistHandler(ctx, req)
		if err != nil {
			t.Fatalf("join %d failed: %v", i, err)
		}
		if i == 0 {
			first = entry.ID
		}
	}
	if _, err := module.Handler.UpdateStatusHandler(ctx, first, httptransport.UpdateStatusRequest{
		Status: "contacted",
	}); err != nil {
		t.Fatalf("mark contacted failed: %v", err)
	}

	stats, err := module.Handler.StatsHandler(ctx)
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.TotalEntries != 3 {
		t.Fatalf("expected 3 entries, got %d", stats.TotalEntries)
	}
	if stats.ByStatus["pending"] != 2 || stats.ByStatus["contacted"] != 1 {
		t.Fatalf("unexpected status counts: %+v", stats.ByStatus)
	}
	if stats.ByInterestArea["real_estate"] != 2 || stats.ByInterestArea["art"] != 2 {
		t.Fatalf("unexpected interest counts: %+v", stats.ByInterestArea)
	}
	if stats.ByInvestmentRange["under_10k"] != 1 || stats.ByInvestmentRange["over_500k"] != 1 {
		t.Fatalf("unexpected range counts: %+v", stats.ByInvestmentRange)
	}

	pending, err := module.Handler.ListEntriesHandler(ctx, "pending", "", 0)
	if err != nil {
		t.Fatalf("list pending failed: %v", err)
	}
	if pending.Count != 2 {
		t.Fatalf("expected 2 pending entries, got %d", pending.Count)
	}
}
