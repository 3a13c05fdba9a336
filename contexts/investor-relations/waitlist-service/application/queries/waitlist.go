package queries

import (
	"context"
	"log/slog"

	application "tokeniza/contexts/investor-relations/waitlist-service/application"
	"tokeniza/contexts/investor-relations/waitlist-service/domain/entities"
	"tokeniza/contexts/investor-relations/waitlist-service/ports"
)

type ListEntriesQuery struct {
	Status string
	Cursor string
	Limit  int
}

type ListEntriesResult struct {
	Items      []entities.Entry
	NextCursor string
}

type ListEntriesUseCase struct {
	Entries ports.WaitlistRepository
	Logger  *slog.Logger
}

func (u ListEntriesUseCase) Execute(ctx context.Context, query ListEntriesQuery) (ListEntriesResult, error) {
	items, nextCursor, err := u.Entries.ListEntries(ctx, ports.EntryFilter{
		Status: entities.WaitlistStatus(query.Status),
		Cursor: query.Cursor,
		Limit:  query.Limit,
	})
	if err != nil {
		application.ResolveLogger(u.Logger).Error("waitlist list failed",
			"event", "waitlist_list_failed",
			"module", "investor-relations/waitlist-service",
			"layer", "application",
			"error", err.Error(),
		)
		return ListEntriesResult{}, err
	}
	return ListEntriesResult{Items: items, NextCursor: nextCursor}, nil
}

type StatsResult struct {
	Stats ports.Stats
}

type StatsUseCase struct {
	Entries ports.WaitlistRepository
	Logger  *slog.Logger
}

func (u StatsUseCase) Execute(ctx context.Context) (StatsResult, error) {
	stats, err := u.Entries.Stats(ctx)
	if err != nil {
		return StatsResult{}, err
	}
	return StatsResult{Stats: stats}, nil
}
