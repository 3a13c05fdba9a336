package httptransport

type JoinWaitlistRequest struct {
	Email           string   `json:"email"`
	Name            string   `json:"name,omitempty"`
	InterestAreas   []string `json:"interest_areas,omitempty"`
	InvestmentRange string   `json:"investment_range,omitempty"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type EntryDTO struct {
	ID              string   `json:"id"`
	Email           string   `json:"email"`
	Name            string   `json:"name,omitempty"`
	InterestAreas   []string `json:"interest_areas,omitempty"`
	InvestmentRange string   `json:"investment_range,omitempty"`
	Status          string   `json:"status"`
	ContactedAt     string   `json:"contacted_at,omitempty"`
	CreatedAt       string   `json:"created_at"`
	UpdatedAt       string   `json:"updated_at"`
}

type ListEntriesResponse struct {
	Items      []EntryDTO `json:"items"`
	Count      int        `json:"count"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

type StatsResponse struct {
	TotalEntries      int            `json:"total_entries"`
	ByStatus          map[string]int `json:"by_status"`
	ByInterestArea    map[string]int `json:"by_interest"`
	ByInvestmentRange map[string]int `json:"by_investment_range"`
}
