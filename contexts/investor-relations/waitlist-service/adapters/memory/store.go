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

	application "tokeniza/contexts/investor-relations/waitlist-service/application"
	"tokeniza/contexts/investor-relations/waitlist-service/domain/entities"
	domainerrors "tokeniza/contexts/investor-relations/waitlist-service/domain/errors"
	"tokeniza/contexts/investor-relations/waitlist-service/ports"
)

// Store is an in-memory adapter implementing the waitlist ports for local
// runtime and tests.
type Store struct {
	mu       sync.RWMutex
	entries  map[string]entities.Entry
	byEmail  map[string]string
	sequence uint64
	logger   *slog.Logger
}

func NewStore(logger *slog.Logger) *Store {
	return &Store{
		entries: make(map[string]entities.Entry),
		byEmail: make(map[string]string),
		logger:  application.ResolveLogger(logger),
	}
}

func (s *Store) AddEntry(_ context.Context, entry entities.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[entry.Email]; ok {
		return domainerrors.ErrDuplicateEmail
	}
	s.entries[entry.EntryID] = entry
	s.byEmail[entry.Email] = entry.EntryID
	return nil
}

func (s *Store) GetEntry(_ context.Context, entryID string) (entities.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[entryID]
	if !ok {
		return entities.Entry{}, domainerrors.ErrEntryNotFound
	}
	return entry, nil
}

func (s *Store) ListEntries(_ context.Context, filter ports.EntryFilter) ([]entities.Entry, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var filtered []entities.Entry
	for _, entry := range s.entries {
		if filter.Status != "" && entry.Status != filter.Status {
			continue
		}
		filtered = append(filtered, entry)
	}
	sort.Slice(filtered, func(i, j int) bool {
		if filtered[i].CreatedAt.Equal(filtered[j].CreatedAt) {
			return filtered[i].EntryID < filtered[j].EntryID
		}
		return filtered[i].CreatedAt.Before(filtered[j].CreatedAt)
	})

	start := decodeCursor(filter.Cursor)
	if start > len(filtered) {
		start = len(filtered)
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	end := start + limit
	if end > len(filtered) {
		end = len(filtered)
	}

	page := append([]entities.Entry(nil), filtered[start:end]...)
	nextCursor := ""
	if end < len(filtered) {
		nextCursor = encodeCursor(end)
	}
	return page, nextCursor, nil
}

func (s *Store) UpdateEntry(_ context.Context, entry entities.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[entry.EntryID]; !ok {
		return domainerrors.ErrEntryNotFound
	}
	s.entries[entry.EntryID] = entry
	return nil
}

func (s *Store) Stats(_ context.Context) (ports.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := ports.Stats{
		ByStatus:          make(map[entities.WaitlistStatus]int),
		ByInterestArea:    make(map[string]int),
		ByInvestmentRange: make(map[entities.InvestmentRange]int),
	}
	for _, entry := range s.entries {
		stats.TotalEntries++
		stats.ByStatus[entry.Status]++
		for _, area := range entry.InterestAreas {
			stats.ByInterestArea[area]++
		}
		if entry.InvestmentRange != entities.InvestmentRangeUndisclosed {
			stats.ByInvestmentRange[entry.InvestmentRange]++
		}
	}
	return stats, nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	value := atomic.AddUint64(&s.sequence, 1)
	return fmt.Sprintf("waitlist-%d", value), nil
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
