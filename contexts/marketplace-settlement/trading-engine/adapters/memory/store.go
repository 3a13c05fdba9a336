package memory

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	application "tokeniza/contexts/marketplace-settlement/trading-engine/application"
	"tokeniza/contexts/marketplace-settlement/trading-engine/domain/entities"
	domainerrors "tokeniza/contexts/marketplace-settlement/trading-engine/domain/errors"
	"tokeniza/contexts/marketplace-settlement/trading-engine/ports"
)

// Store is an in-memory adapter implementing the trading-engine ports for
// local runtime and tests. The store mutex is the per-process serialization
// point: Reserve, Settle and Release each run as one atomic step under it.
type Store struct {
	mu           sync.RWMutex
	listings     map[string]entities.Listing
	transactions map[string]entities.Transaction
	sequence     uint64
	logger       *slog.Logger
}

func NewStore(logger *slog.Logger) *Store {
	return &Store{
		listings:     make(map[string]entities.Listing),
		transactions: make(map[string]entities.Transaction),
		logger:       application.ResolveLogger(logger),
	}
}

func (s *Store) CreateListing(_ context.Context, listing entities.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.listings[listing.ListingID]; ok {
		return domainerrors.ErrRepositoryInvariantBroke
	}
	s.listings[listing.ListingID] = listing
	return nil
}

func (s *Store) GetListing(_ context.Context, listingID string) (entities.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	listing, ok := s.listings[listingID]
	if !ok {
		return entities.Listing{}, domainerrors.ErrListingNotFound
	}
	return listing, nil
}

func (s *Store) ListListings(_ context.Context, filter ports.ListingFilter) ([]entities.Listing, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var filtered []entities.Listing
	for _, listing := range s.listings {
		if filter.AssetID != "" && listing.AssetID != filter.AssetID {
			continue
		}
		if filter.Seller != "" && listing.Seller != filter.Seller {
			continue
		}
		if filter.Status != "" && listing.Status != filter.Status {
			continue
		}
		filtered = append(filtered, listing)
	}
	sort.Slice(filtered, func(i, j int) bool {
		if filtered[i].CreatedAt.Equal(filtered[j].CreatedAt) {
			return filtered[i].ListingID < filtered[j].ListingID
		}
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})

	page, nextCursor := paginateListings(filtered, filter.Cursor, filter.Limit)
	return page, nextCursor, nil
}

func (s *Store) Reserve(
	_ context.Context,
	listingID string,
	req ports.ReservationRequest,
	now time.Time,
) (entities.Listing, entities.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	listing, ok := s.listings[listingID]
	if !ok {
		return entities.Listing{}, entities.Transaction{}, domainerrors.ErrListingNotFound
	}
	if err := listing.Reserve(req.Quantity, now); err != nil {
		return entities.Listing{}, entities.Transaction{}, err
	}
	txn, err := entities.NewTransaction(req.TransactionID, listing, req.Buyer, req.Quantity, now)
	if err != nil {
		return entities.Listing{}, entities.Transaction{}, err
	}
	if _, exists := s.transactions[txn.TransactionID]; exists {
		return entities.Listing{}, entities.Transaction{}, domainerrors.ErrRepositoryInvariantBroke
	}

	s.listings[listingID] = listing
	s.transactions[txn.TransactionID] = txn
	return listing, txn, nil
}

func (s *Store) CancelListing(_ context.Context, listingID string, seller string, now time.Time) (entities.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	listing, ok := s.listings[listingID]
	if !ok {
		return entities.Listing{}, domainerrors.ErrListingNotFound
	}
	if err := listing.Cancel(seller, now); err != nil {
		return entities.Listing{}, err
	}
	s.listings[listingID] = listing
	return listing, nil
}

func (s *Store) ExpireListings(_ context.Context, now time.Time) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var expired []string
	for id, listing := range s.listings {
		if listing.Status != entities.ListingStatusActive || !listing.IsExpired(now) || listing.Reserved > 0 {
			continue
		}
		if err := listing.Expire(now); err != nil {
			continue
		}
		s.listings[id] = listing
		expired = append(expired, id)
	}
	sort.Strings(expired)
	return expired, nil
}

func (s *Store) GetTransaction(_ context.Context, transactionID string) (entities.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	txn, ok := s.transactions[transactionID]
	if !ok {
		return entities.Transaction{}, domainerrors.ErrTransactionNotFound
	}
	return txn, nil
}

func (s *Store) ListTransactions(_ context.Context, filter ports.TransactionFilter) ([]entities.Transaction, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var filtered []entities.Transaction
	for _, txn := range s.transactions {
		if filter.ListingID != "" && txn.ListingID != filter.ListingID {
			continue
		}
		if filter.Buyer != "" && txn.Buyer != filter.Buyer {
			continue
		}
		if filter.Status != "" && txn.Status != filter.Status {
			continue
		}
		filtered = append(filtered, txn)
	}
	sort.Slice(filtered, func(i, j int) bool {
		if filtered[i].CreatedAt.Equal(filtered[j].CreatedAt) {
			return filtered[i].TransactionID < filtered[j].TransactionID
		}
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})

	page, nextCursor := paginateTransactions(filtered, filter.Cursor, filter.Limit)
	return page, nextCursor, nil
}

func (s *Store) RecordSubmission(_ context.Context, transactionID string, txHash string, submittedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	txn, ok := s.transactions[transactionID]
	if !ok {
		return domainerrors.ErrTransactionNotFound
	}
	if err := txn.RecordSubmission(txHash, submittedAt); err != nil {
		return err
	}
	s.transactions[transactionID] = txn
	return nil
}

func (s *Store) Settle(_ context.Context, transactionID string, now time.Time) (entities.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	txn, ok := s.transactions[transactionID]
	if !ok {
		return entities.Transaction{}, domainerrors.ErrTransactionNotFound
	}
	if txn.Finalized() {
		return txn, domainerrors.ErrTransactionFinalized
	}
	listing, ok := s.listings[txn.ListingID]
	if !ok {
		return entities.Transaction{}, domainerrors.ErrListingNotFound
	}

	if err := listing.SettleReservation(txn.Quantity, now); err != nil {
		return entities.Transaction{}, err
	}
	if err := txn.Confirm(now); err != nil {
		return txn, err
	}

	s.listings[listing.ListingID] = listing
	s.transactions[transactionID] = txn
	return txn, nil
}

func (s *Store) Release(_ context.Context, transactionID string, reason string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	txn, ok := s.transactions[transactionID]
	if !ok {
		return domainerrors.ErrTransactionNotFound
	}
	if txn.Status == entities.TransactionStatusFailed {
		return nil
	}
	if txn.Status == entities.TransactionStatusConfirmed {
		return domainerrors.ErrTransactionFinalized
	}
	listing, ok := s.listings[txn.ListingID]
	if !ok {
		return domainerrors.ErrListingNotFound
	}

	if err := listing.ReleaseReservation(txn.Quantity, now); err != nil {
		return err
	}
	if err := txn.Fail(reason, now); err != nil {
		return err
	}

	s.listings[listing.ListingID] = listing
	s.transactions[transactionID] = txn
	return nil
}

func (s *Store) ListPendingOlderThan(_ context.Context, cutoff time.Time) ([]entities.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var pending []entities.Transaction
	for _, txn := range s.transactions {
		if txn.Status != entities.TransactionStatusPending {
			continue
		}
		if txn.CreatedAt.After(cutoff) {
			continue
		}
		pending = append(pending, txn)
	}
	sort.Slice(pending, func(i, j int) bool {
		if pending[i].CreatedAt.Equal(pending[j].CreatedAt) {
			return pending[i].TransactionID < pending[j].TransactionID
		}
		return pending[i].CreatedAt.Before(pending[j].CreatedAt)
	})
	return pending, nil
}

func (s *Store) ListUnresolvedFailures(_ context.Context, since time.Time) ([]entities.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var failures []entities.Transaction
	for _, txn := range s.transactions {
		if txn.Status != entities.TransactionStatusFailed || txn.TxHash == "" || txn.Ambiguous {
			continue
		}
		if txn.UpdatedAt.Before(since) {
			continue
		}
		failures = append(failures, txn)
	}
	sort.Slice(failures, func(i, j int) bool {
		if failures[i].UpdatedAt.Equal(failures[j].UpdatedAt) {
			return failures[i].TransactionID < failures[j].TransactionID
		}
		return failures[i].UpdatedAt.Before(failures[j].UpdatedAt)
	})
	return failures, nil
}

func (s *Store) FlagAmbiguous(_ context.Context, transactionID string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	txn, ok := s.transactions[transactionID]
	if !ok {
		return domainerrors.ErrTransactionNotFound
	}
	if err := txn.FlagAmbiguous(now); err != nil {
		return err
	}
	s.transactions[transactionID] = txn
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	value := atomic.AddUint64(&s.sequence, 1)
	return fmt.Sprintf("trade-%d", value), nil
}

func paginateListings(items []entities.Listing, cursor string, limit int) ([]entities.Listing, string) {
	start, end, next := pageBounds(len(items), cursor, limit)
	return append([]entities.Listing(nil), items[start:end]...), next
}

func paginateTransactions(items []entities.Transaction, cursor string, limit int) ([]entities.Transaction, string) {
	start, end, next := pageBounds(len(items), cursor, limit)
	return append([]entities.Transaction(nil), items[start:end]...), next
}

func pageBounds(total int, cursor string, limit int) (int, int, string) {
	start := decodeCursor(cursor)
	if start > total {
		start = total
	}
	if limit <= 0 {
		limit = 20
	}
	end := start + limit
	if end > total {
		end = total
	}
	next := ""
	if end < total {
		next = encodeCursor(end)
	}
	return start, end, next
}

func decodeCursor(cursor string) int {
	if strings.TrimSpace(cursor) == "" {
		return 0
	}
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return 0
	}
	index, err := strconv.Atoi(string(raw))
	if err != nil || index < 0 {
		return 0
	}
	return index
}

func encodeCursor(offset int) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.Itoa(offset)))
}
