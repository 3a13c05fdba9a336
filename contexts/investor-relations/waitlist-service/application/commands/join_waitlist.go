package commands

import (
	"context"
	"log/slog"
	"time"

	application "tokeniza/contexts/investor-relations/waitlist-service/application"
	"tokeniza/contexts/investor-relations/waitlist-service/domain/entities"
	"tokeniza/contexts/investor-relations/waitlist-service/ports"
)

type JoinWaitlistCommand struct {
	Email           string
	Name            string
	InterestAreas   []string
	InvestmentRange string
}

type JoinWaitlistUseCase struct {
	Entries     ports.WaitlistRepository
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

func (u JoinWaitlistUseCase) Execute(ctx context.Context, cmd JoinWaitlistCommand) (entities.Entry, error) {
	logger := application.ResolveLogger(u.Logger)

	investmentRange, err := entities.ParseInvestmentRange(cmd.InvestmentRange)
	if err != nil {
		return entities.Entry{}, err
	}

	entryID, err := u.IDGenerator.NewID(ctx)
	if err != nil {
		return entities.Entry{}, err
	}
	entry, err := entities.NewEntry(entryID, cmd.Email, cmd.Name, cmd.InterestAreas, investmentRange, u.now())
	if err != nil {
		return entities.Entry{}, err
	}

	if err := u.Entries.AddEntry(ctx, entry); err != nil {
		logger.Warn("waitlist join failed",
			"event", "waitlist_join_failed",
			"module", "investor-relations/waitlist-service",
			"layer", "application",
			"email", entry.Email,
			"error", err.Error(),
		)
		return entities.Entry{}, err
	}

	logger.Info("waitlist entry added",
		"event", "waitlist_entry_added",
		"module", "investor-relations/waitlist-service",
		"layer", "application",
		"entry_id", entry.EntryID,
		"email", entry.Email,
	)
	return entry, nil
}

func (u JoinWaitlistUseCase) now() time.Time {
	if u.Clock == nil {
		return time.Now().UTC()
	}
	return u.Clock.Now().UTC()
}
