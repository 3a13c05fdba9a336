package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"tokeniza/contexts/investor-relations/waitlist-service/application/commands"
	"tokeniza/contexts/investor-relations/waitlist-service/application/queries"
	"tokeniza/contexts/investor-relations/waitlist-service/domain/entities"
	httptransport "tokeniza/contexts/investor-relations/waitlist-service/transport/http"
)

type Handler struct {
	JoinWaitlist commands.JoinWaitlistUseCase
	UpdateStatus commands.UpdateStatusUseCase
	ListEntries  queries.ListEntriesUseCase
	Stats        queries.StatsUseCase
	Logger       *slog.Logger
}

// JoinWaitlistHandler godoc
// @Summary Join the waitlist
// @Tags waitlist
// @Accept json
// @Produce json
// @Param request body httptransport.JoinWaitlistRequest true "Join payload"
// @Success 200 {object} httptransport.EntryDTO
// @Router /api/v1/waitlist [post]
func (h Handler) JoinWaitlistHandler(ctx context.Context, req httptransport.JoinWaitlistRequest) (httptransport.EntryDTO, error) {
	entry, err := h.JoinWaitlist.Execute(ctx, commands.JoinWaitlistCommand{
		Email:           req.Email,
		Name:            req.Name,
		InterestAreas:   req.InterestAreas,
		InvestmentRange: req.InvestmentRange,
	})
	if err != nil {
		return httptransport.EntryDTO{}, err
	}
	return mapEntry(entry), nil
}

// ListEntriesHandler godoc
// @Summary List waitlist entries
// @Tags waitlist
// @Produce json
// @Param status query string false "Status filter"
// @Param cursor query string false "Cursor token"
// @Param limit query int false "Page size"
// @Success 200 {object} httptransport.ListEntriesResponse
// @Router /api/v1/waitlist [get]
func (h Handler) ListEntriesHandler(ctx context.Context, status, cursor string, limit int) (httptransport.ListEntriesResponse, error) {
	result, err := h.ListEntries.Execute(ctx, queries.ListEntriesQuery{
		Status: status,
		Cursor: cursor,
		Limit:  limit,
	})
	if err != nil {
		return httptransport.ListEntriesResponse{}, err
	}

	items := make([]httptransport.EntryDTO, 0, len(result.Items))
	for _, entry := range result.Items {
		items = append(items, mapEntry(entry))
	}
	return httptransport.ListEntriesResponse{
		Items:      items,
		Count:      len(items),
		NextCursor: result.NextCursor,
	}, nil
}

// UpdateStatusHandler godoc
// @Summary Update a waitlist entry's funnel status
// @Tags waitlist
// @Accept json
// @Produce json
// @Param id path string true "Entry id"
// @Param request body httptransport.UpdateStatusRequest true "Status payload"
// @Success 200 {object} httptransport.EntryDTO
// @Router /api/v1/waitlist/{id}/status [post]
func (h Handler) UpdateStatusHandler(ctx context.Context, entryID string, req httptransport.UpdateStatusRequest) (httptransport.EntryDTO, error) {
	entry, err := h.UpdateStatus.Execute(ctx, commands.UpdateStatusCommand{
		EntryID: entryID,
		Status:  req.Status,
	})
	if err != nil {
		return httptransport.EntryDTO{}, err
	}
	return mapEntry(entry), nil
}

// StatsHandler godoc
// @Summary Waitlist funnel statistics
// @Tags waitlist
// @Produce json
// @Success 200 {object} httptransport.StatsResponse
// @Router /api/v1/waitlist/stats [get]
func (h Handler) StatsHandler(ctx context.Context) (httptransport.StatsResponse, error) {
	result, err := h.Stats.Execute(ctx)
	if err != nil {
		return httptransport.StatsResponse{}, err
	}

	response := httptransport.StatsResponse{
		TotalEntries:      result.Stats.TotalEntries,
		ByStatus:          make(map[string]int, len(result.Stats.ByStatus)),
		ByInterestArea:    result.Stats.ByInterestArea,
		ByInvestmentRange: make(map[string]int, len(result.Stats.ByInvestmentRange)),
	}
	if response.ByInterestArea == nil {
		response.ByInterestArea = make(map[string]int)
	}
	for status, count := range result.Stats.ByStatus {
		response.ByStatus[string(status)] = count
	}
	for investmentRange, count := range result.Stats.ByInvestmentRange {
		response.ByInvestmentRange[string(investmentRange)] = count
	}
	return response, nil
}

func mapEntry(entry entities.Entry) httptransport.EntryDTO {
	contactedAt := ""
	if !entry.ContactedAt.IsZero() {
		contactedAt = entry.ContactedAt.UTC().Format(time.RFC3339)
	}
	return httptransport.EntryDTO{
		ID:              entry.EntryID,
		Email:           entry.Email,
		Name:            entry.Name,
		InterestAreas:   entry.InterestAreas,
		InvestmentRange: string(entry.InvestmentRange),
		Status:          string(entry.Status),
		ContactedAt:     contactedAt,
		CreatedAt:       entry.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:       entry.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
