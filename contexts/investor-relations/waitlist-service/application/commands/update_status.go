package commands

import (
	"context"
	"log/slog"
	"time"

	application "tokeniza/contexts/investor-relations/waitlist-service/application"
	"tokeniza/contexts/investor-relations/waitlist-service/domain/entities"
	domainerrors "tokeniza/contexts/investor-relations/waitlist-service/domain/errors"
	"tokeniza/contexts/investor-relations/waitlist-service/ports"
)

type UpdateStatusCommand struct {
	EntryID string
	Status  string
}

// UpdateStatusUseCase moves an entry through the outreach funnel:
// pending → contacted → converted, with unsubscribe allowed any time before
// a terminal state.
type UpdateStatusUseCase struct {
	Entries ports.WaitlistRepository
	Clock   ports.Clock
	Logger  *slog.Logger
}

func (u UpdateStatusUseCase) Execute(ctx context.Context, cmd UpdateStatusCommand) (entities.Entry, error) {
	entry, err := u.Entries.GetEntry(ctx, cmd.EntryID)
	if err != nil {
		return entities.Entry{}, err
	}

	now := time.Now().UTC()
	if u.Clock != nil {
		now = u.Clock.Now().UTC()
	}

	switch entities.WaitlistStatus(cmd.Status) {
	case entities.WaitlistStatusContacted:
		err = entry.MarkContacted(now)
	case entities.WaitlistStatusConverted:
		err = entry.MarkConverted(now)
	case entities.WaitlistStatusUnsubscribed:
		err = entry.Unsubscribe(now)
	default:
		return entities.Entry{}, domainerrors.ErrInvalidWaitlistRequest
	}
	if err != nil {
		return entities.Entry{}, err
	}

	if err := u.Entries.UpdateEntry(ctx, entry); err != nil {
		return entities.Entry{}, err
	}

	application.ResolveLogger(u.Logger).Info("waitlist status changed",
		"event", "waitlist_status_changed",
		"module", "investor-relations/waitlist-service",
		"layer", "application",
		"entry_id", entry.EntryID,
		"status", entry.Status,
	)
	return entry, nil
}
