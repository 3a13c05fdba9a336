package httptransport

type CreateListingRequest struct {
	AssetID       string `json:"asset_id"`
	Seller        string `json:"seller"`
	PricePerToken uint64 `json:"price_per_token"`
	Quantity      uint64 `json:"quantity"`
	ExpiresAt     string `json:"expires_at,omitempty"`
}

type ListingDTO struct {
	ID            string `json:"id"`
	AssetID       string `json:"asset_id"`
	TokenAddress  string `json:"token_address"`
	Seller        string `json:"seller"`
	PricePerToken string `json:"price_per_token"`
	Quantity      uint64 `json:"quantity"`
	Available     uint64 `json:"available"`
	Reserved      uint64 `json:"reserved"`
	Settled       uint64 `json:"settled"`
	Status        string `json:"status"`
	ExpiresAt     string `json:"expires_at,omitempty"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

type ListListingsResponse struct {
	Items      []ListingDTO `json:"items"`
	Count      int          `json:"count"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

type CancelListingRequest struct {
	Seller string `json:"seller"`
}

type PurchaseRequest struct {
	ListingID string `json:"listing_id,omitempty"`
	Buyer     string `json:"buyer"`
	Quantity  uint64 `json:"quantity"`
}

type TransactionDTO struct {
	ID            string `json:"id"`
	ListingID     string `json:"listing_id"`
	AssetID       string `json:"asset_id"`
	TokenAddress  string `json:"token_address"`
	Buyer         string `json:"buyer"`
	Seller        string `json:"seller"`
	Quantity      uint64 `json:"quantity"`
	PricePerToken string `json:"price_per_token"`
	TotalPrice    string `json:"total_price"`
	TxHash        string `json:"tx_hash,omitempty"`
	FailureReason string `json:"failure_reason,omitempty"`
	Ambiguous     bool   `json:"ambiguous,omitempty"`
	Status        string `json:"status"`
	SubmittedAt   string `json:"submitted_at,omitempty"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

type ListTransactionsResponse struct {
	Items      []TransactionDTO `json:"items"`
	Count      int              `json:"count"`
	NextCursor string           `json:"next_cursor,omitempty"`
}
