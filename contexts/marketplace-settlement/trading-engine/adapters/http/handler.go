package httpadapter

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"tokeniza/contexts/marketplace-settlement/trading-engine/application/commands"
	"tokeniza/contexts/marketplace-settlement/trading-engine/application/queries"
	"tokeniza/contexts/marketplace-settlement/trading-engine/domain/entities"
	domainerrors "tokeniza/contexts/marketplace-settlement/trading-engine/domain/errors"
	httptransport "tokeniza/contexts/marketplace-settlement/trading-engine/transport/http"
)

type Handler struct {
	CreateListing    commands.CreateListingUseCase
	CancelListing    commands.CancelListingUseCase
	Purchase         commands.PurchaseUseCase
	GetListing       queries.GetListingUseCase
	ListListings     queries.ListListingsUseCase
	GetTransaction   queries.GetTransactionUseCase
	ListTransactions queries.ListTransactionsUseCase
	Logger           *slog.Logger
}

// ListListingsHandler godoc
// @Summary List marketplace listings
// @Description Returns listings with asset/seller/status filters and cursor pagination.
// @Tags marketplace
// @Produce json
// @Param asset_id query string false "Asset id filter"
// @Param seller query string false "Seller address filter"
// @Param status query string false "Listing status filter"
// @Param cursor query string false "Cursor token"
// @Param limit query int false "Page size"
// @Success 200 {object} httptransport.ListListingsResponse
// @Router /api/v1/marketplace/listings [get]
func (h Handler) ListListingsHandler(ctx context.Context, assetID, seller, status, cursor string, limit int) (httptransport.ListListingsResponse, error) {
	result, err := h.ListListings.Execute(ctx, queries.ListListingsQuery{
		AssetID: assetID,
		Seller:  seller,
		Status:  status,
		Cursor:  cursor,
		Limit:   limit,
	})
	if err != nil {
		return httptransport.ListListingsResponse{}, err
	}

	items := make([]httptransport.ListingDTO, 0, len(result.Items))
	for _, listing := range result.Items {
		items = append(items, mapListing(listing))
	}
	return httptransport.ListListingsResponse{
		Items:      items,
		Count:      len(items),
		NextCursor: result.NextCursor,
	}, nil
}

// CreateListingHandler godoc
// @Summary Create a listing
// @Description Publishes a seller's token offer after an on-chain balance check.
// @Tags marketplace
// @Accept json
// @Produce json
// @Param request body httptransport.CreateListingRequest true "Listing payload"
// @Success 200 {object} httptransport.ListingDTO
// @Router /api/v1/marketplace/listings [post]
func (h Handler) CreateListingHandler(ctx context.Context, req httptransport.CreateListingRequest) (httptransport.ListingDTO, error) {
	var expiresAt time.Time
	if req.ExpiresAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.ExpiresAt)
		if err != nil {
			return httptransport.ListingDTO{}, domainerrors.ErrInvalidListingRequest
		}
		expiresAt = parsed
	}

	listing, err := h.CreateListing.Execute(ctx, commands.CreateListingCommand{
		AssetID:       req.AssetID,
		Seller:        req.Seller,
		PricePerToken: req.PricePerToken,
		Quantity:      req.Quantity,
		ExpiresAt:     expiresAt,
	})
	if err != nil {
		return httptransport.ListingDTO{}, err
	}
	return mapListing(listing), nil
}

// GetListingHandler godoc
// @Summary Get listing details
// @Tags marketplace
// @Produce json
// @Param id path string true "Listing id"
// @Success 200 {object} httptransport.ListingDTO
// @Router /api/v1/marketplace/listings/{id} [get]
func (h Handler) GetListingHandler(ctx context.Context, listingID string) (httptransport.ListingDTO, error) {
	result, err := h.GetListing.Execute(ctx, queries.GetListingQuery{ListingID: listingID})
	if err != nil {
		return httptransport.ListingDTO{}, err
	}
	return mapListing(result.Listing), nil
}

// CancelListingHandler godoc
// @Summary Cancel a listing
// @Tags marketplace
// @Accept json
// @Produce json
// @Param id path string true "Listing id"
// @Param request body httptransport.CancelListingRequest true "Cancel payload"
// @Success 200 {object} httptransport.ListingDTO
// @Router /api/v1/marketplace/listings/{id}/cancel [post]
func (h Handler) CancelListingHandler(ctx context.Context, listingID string, req httptransport.CancelListingRequest) (httptransport.ListingDTO, error) {
	listing, err := h.CancelListing.Execute(ctx, commands.CancelListingCommand{
		ListingID: listingID,
		Seller:    req.Seller,
	})
	if err != nil {
		return httptransport.ListingDTO{}, err
	}
	return mapListing(listing), nil
}

// PurchaseHandler godoc
// @Summary Purchase from a listing
// @Description Reserves quantity and submits the token transfer; settlement is asynchronous.
// @Tags marketplace
// @Accept json
// @Produce json
// @Param id path string true "Listing id"
// @Param request body httptransport.PurchaseRequest true "Purchase payload"
// @Success 200 {object} httptransport.TransactionDTO
// @Router /api/v1/marketplace/listings/{id}/purchase [post]
func (h Handler) PurchaseHandler(ctx context.Context, listingID string, req httptransport.PurchaseRequest) (httptransport.TransactionDTO, error) {
	txn, err := h.Purchase.Execute(ctx, commands.PurchaseCommand{
		ListingID: listingID,
		Buyer:     req.Buyer,
		Quantity:  req.Quantity,
	})
	if err != nil {
		return httptransport.TransactionDTO{}, err
	}
	return mapTransaction(txn), nil
}

// GetTransactionHandler godoc
// @Summary Get transaction details
// @Tags marketplace
// @Produce json
// @Param id path string true "Transaction id"
// @Success 200 {object} httptransport.TransactionDTO
// @Router /api/v1/marketplace/transactions/{id} [get]
func (h Handler) GetTransactionHandler(ctx context.Context, transactionID string) (httptransport.TransactionDTO, error) {
	result, err := h.GetTransaction.Execute(ctx, queries.GetTransactionQuery{TransactionID: transactionID})
	if err != nil {
		return httptransport.TransactionDTO{}, err
	}
	return mapTransaction(result.Transaction), nil
}

// ListTransactionsHandler godoc
// @Summary List transactions
// @Description Returns purchase transactions with listing/buyer/status filters.
// @Tags marketplace
// @Produce json
// @Param listing_id query string false "Listing id filter"
// @Param buyer query string false "Buyer address filter"
// @Param status query string false "Transaction status filter"
// @Param cursor query string false "Cursor token"
// @Param limit query int false "Page size"
// @Success 200 {object} httptransport.ListTransactionsResponse
// @Router /api/v1/marketplace/transactions [get]
func (h Handler) ListTransactionsHandler(ctx context.Context, listingID, buyer, status, cursor string, limit int) (httptransport.ListTransactionsResponse, error) {
	result, err := h.ListTransactions.Execute(ctx, queries.ListTransactionsQuery{
		ListingID: listingID,
		Buyer:     buyer,
		Status:    status,
		Cursor:    cursor,
		Limit:     limit,
	})
	if err != nil {
		return httptransport.ListTransactionsResponse{}, err
	}

	items := make([]httptransport.TransactionDTO, 0, len(result.Items))
	for _, txn := range result.Items {
		items = append(items, mapTransaction(txn))
	}
	return httptransport.ListTransactionsResponse{
		Items:      items,
		Count:      len(items),
		NextCursor: result.NextCursor,
	}, nil
}

func mapListing(listing entities.Listing) httptransport.ListingDTO {
	expiresAt := ""
	if !listing.ExpiresAt.IsZero() {
		expiresAt = listing.ExpiresAt.UTC().Format(time.RFC3339)
	}
	return httptransport.ListingDTO{
		ID:            listing.ListingID,
		AssetID:       listing.AssetID,
		TokenAddress:  listing.TokenAddress,
		Seller:        listing.Seller,
		PricePerToken: strconv.FormatUint(listing.PricePerToken, 10),
		Quantity:      listing.Quantity,
		Available:     listing.Available,
		Reserved:      listing.Reserved,
		Settled:       listing.Settled,
		Status:        string(listing.Status),
		ExpiresAt:     expiresAt,
		CreatedAt:     listing.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:     listing.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func mapTransaction(txn entities.Transaction) httptransport.TransactionDTO {
	submittedAt := ""
	if !txn.SubmittedAt.IsZero() {
		submittedAt = txn.SubmittedAt.UTC().Format(time.RFC3339)
	}
	return httptransport.TransactionDTO{
		ID:            txn.TransactionID,
		ListingID:     txn.ListingID,
		AssetID:       txn.AssetID,
		TokenAddress:  txn.TokenAddress,
		Buyer:         txn.Buyer,
		Seller:        txn.Seller,
		Quantity:      txn.Quantity,
		PricePerToken: strconv.FormatUint(txn.PricePerToken, 10),
		TotalPrice:    strconv.FormatUint(txn.TotalPrice, 10),
		TxHash:        txn.TxHash,
		FailureReason: txn.FailureReason,
		Ambiguous:     txn.Ambiguous,
		Status:        string(txn.Status),
		SubmittedAt:   submittedAt,
		CreatedAt:     txn.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:     txn.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
