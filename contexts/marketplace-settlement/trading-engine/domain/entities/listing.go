package entities

import (
	"strings"
	"time"

	domainerrors "tokeniza/contexts/marketplace-settlement/trading-engine/domain/errors"
)

type ListingStatus string

const (
	ListingStatusActive    ListingStatus = "active"
	ListingStatusSold      ListingStatus = "sold"
	ListingStatusCancelled ListingStatus = "cancelled"
	ListingStatusExpired   ListingStatus = "expired"
)

// Listing is a seller's offer of asset tokens at a fixed price per token.
// Supply bookkeeping is split three ways and must always balance:
// Available + Reserved + Settled == Quantity.
type Listing struct {
	ListingID     string
	AssetID       string
	TokenAddress  string
	Seller        string
	PricePerToken uint64
	Quantity      uint64
	Available     uint64
	Reserved      uint64
	Settled       uint64
	Status        ListingStatus
	ExpiresAt     time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func NewListing(
	listingID string,
	assetID string,
	tokenAddress string,
	seller string,
	pricePerToken uint64,
	quantity uint64,
	expiresAt time.Time,
	now time.Time,
) (Listing, error) {
	if strings.TrimSpace(listingID) == "" ||
		strings.TrimSpace(assetID) == "" ||
		strings.TrimSpace(seller) == "" {
		return Listing{}, domainerrors.ErrInvalidListingRequest
	}
	if pricePerToken == 0 || quantity == 0 {
		return Listing{}, domainerrors.ErrInvalidListingRequest
	}
	if !expiresAt.IsZero() && !expiresAt.After(now) {
		return Listing{}, domainerrors.ErrInvalidListingRequest
	}
	return Listing{
		ListingID:     listingID,
		AssetID:       assetID,
		TokenAddress:  tokenAddress,
		Seller:        seller,
		PricePerToken: pricePerToken,
		Quantity:      quantity,
		Available:     quantity,
		Status:        ListingStatusActive,
		ExpiresAt:     expiresAt.UTC(),
		CreatedAt:     now.UTC(),
		UpdatedAt:     now.UTC(),
	}, nil
}

// IsExpired reports whether the listing's deadline has passed. A zero
// ExpiresAt means the listing never expires.
func (l Listing) IsExpired(now time.Time) bool {
	return !l.ExpiresAt.IsZero() && !now.Before(l.ExpiresAt)
}

// Reserve moves quantity from available to reserved for a pending purchase.
func (l *Listing) Reserve(quantity uint64, now time.Time) error {
	if quantity == 0 {
		return domainerrors.ErrInvalidPurchaseRequest
	}
	if l.Status != ListingStatusActive || l.IsExpired(now) {
		return domainerrors.ErrListingUnavailable
	}
	if quantity > l.Available {
		return domainerrors.ErrListingUnavailable
	}
	l.Available -= quantity
	l.Reserved += quantity
	l.UpdatedAt = now.UTC()
	return nil
}

// ReleaseReservation returns reserved quantity to the available pool after a
// failed or timed-out settlement.
func (l *Listing) ReleaseReservation(quantity uint64, now time.Time) error {
	if quantity > l.Reserved {
		return domainerrors.ErrRepositoryInvariantBroke
	}
	l.Reserved -= quantity
	l.Available += quantity
	l.UpdatedAt = now.UTC()
	return nil
}

// SettleReservation permanently consumes reserved quantity after on-chain
// confirmation. A listing with nothing left moves to Sold.
func (l *Listing) SettleReservation(quantity uint64, now time.Time) error {
	if quantity > l.Reserved {
		return domainerrors.ErrRepositoryInvariantBroke
	}
	l.Reserved -= quantity
	l.Settled += quantity
	if l.Available == 0 && l.Reserved == 0 {
		l.Status = ListingStatusSold
	}
	l.UpdatedAt = now.UTC()
	return nil
}

// Cancel withdraws an active listing. A listing with an open reservation
// cannot be cancelled until the pending settlement resolves.
func (l *Listing) Cancel(seller string, now time.Time) error {
	if l.Seller != seller {
		return domainerrors.ErrListingNotOwned
	}
	if l.Status != ListingStatusActive {
		return domainerrors.ErrListingUnavailable
	}
	if l.Reserved > 0 {
		return domainerrors.ErrListingReserved
	}
	l.Status = ListingStatusCancelled
	l.UpdatedAt = now.UTC()
	return nil
}

// Expire marks an active listing past its deadline. Open reservations defer
// expiry until they resolve.
func (l *Listing) Expire(now time.Time) error {
	if l.Status != ListingStatusActive || !l.IsExpired(now) {
		return domainerrors.ErrListingUnavailable
	}
	if l.Reserved > 0 {
		return domainerrors.ErrListingReserved
	}
	l.Status = ListingStatusExpired
	l.UpdatedAt = now.UTC()
	return nil
}
