package ports

import (
	"context"
	"time"

	"tokeniza/contexts/investor-relations/waitlist-service/domain/entities"
)

type EntryFilter struct {
	Status entities.WaitlistStatus
	Cursor string
	Limit  int
}

// Stats aggregates the waitlist funnel for the operator dashboard.
type Stats struct {
	TotalEntries      int
	ByStatus          map[entities.WaitlistStatus]int
	ByInterestArea    map[string]int
	ByInvestmentRange map[entities.InvestmentRange]int
}

// WaitlistRepository owns waitlist persistence. AddEntry enforces email
// uniqueness and returns ErrDuplicateEmail on a repeat join.
type WaitlistRepository interface {
	AddEntry(ctx context.Context, entry entities.Entry) error
	GetEntry(ctx context.Context, entryID string) (entities.Entry, error)
	ListEntries(ctx context.Context, filter EntryFilter) ([]entities.Entry, string, error)
	UpdateEntry(ctx context.Context, entry entities.Entry) error
	Stats(ctx context.Context) (Stats, error)
}

// Clock allows deterministic testing of timestamps.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts entry identifier generation.
type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
