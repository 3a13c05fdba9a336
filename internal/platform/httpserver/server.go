package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	assetregistry "tokeniza/contexts/asset-tokenization/asset-registry"
	asseterrors "tokeniza/contexts/asset-tokenization/asset-registry/domain/errors"
	assethttp "tokeniza/contexts/asset-tokenization/asset-registry/transport/http"
	waitlistservice "tokeniza/contexts/investor-relations/waitlist-service"
	waitlisterrors "tokeniza/contexts/investor-relations/waitlist-service/domain/errors"
	waitlisthttp "tokeniza/contexts/investor-relations/waitlist-service/transport/http"
	tradingengine "tokeniza/contexts/marketplace-settlement/trading-engine"
	tradingerrors "tokeniza/contexts/marketplace-settlement/trading-engine/domain/errors"
	tradinghttp "tokeniza/contexts/marketplace-settlement/trading-engine/transport/http"
	"tokeniza/internal/platform/ledger"

	"github.com/shopspring/decimal"
	httpSwagger "github.com/swaggo/http-swagger"
	_ "tokeniza/internal/platform/httpserver/docs"
)

// Envelope is the uniform response body: success flag, payload, optional
// human-readable message or error, and the server timestamp.
type Envelope struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data,omitempty"`
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
	Timestamp string `json:"timestamp"`
}

type Server struct {
	mux      *http.ServeMux
	logger   *slog.Logger
	addr     string
	assets   assetregistry.Module
	trading  tradingengine.Module
	waitlist waitlistservice.Module
	chain    ledger.Adapter
}

func New(
	assets assetregistry.Module,
	trading tradingengine.Module,
	waitlist waitlistservice.Module,
	chain ledger.Adapter,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:      http.NewServeMux(),
		logger:   logger,
		addr:     addr,
		assets:   assets,
		trading:  trading,
		waitlist: waitlist,
		chain:    chain,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

// Handler exposes the routing mux for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("GET /health", s.handleHealth)

	s.mux.HandleFunc("GET /api/v1/assets", s.handleListAssets)
	s.mux.HandleFunc("POST /api/v1/assets", s.handleCreateAsset)
	s.mux.HandleFunc("GET /api/v1/assets/{asset_id}", s.handleGetAsset)
	s.mux.HandleFunc("POST /api/v1/assets/{asset_id}/submit", s.handleSubmitAsset)
	s.mux.HandleFunc("POST /api/v1/assets/{asset_id}/approve", s.handleApproveAsset)
	s.mux.HandleFunc("POST /api/v1/assets/{asset_id}/retire", s.handleRetireAsset)
	s.mux.HandleFunc("POST /api/v1/assets/{asset_id}/tokenize", s.handleTokenizeAsset)

	s.mux.HandleFunc("GET /api/v1/marketplace/listings", s.handleListListings)
	s.mux.HandleFunc("POST /api/v1/marketplace/listings", s.handleCreateListing)
	s.mux.HandleFunc("GET /api/v1/marketplace/listings/{listing_id}", s.handleGetListing)
	s.mux.HandleFunc("POST /api/v1/marketplace/listings/{listing_id}/cancel", s.handleCancelListing)
	s.mux.HandleFunc("POST /api/v1/marketplace/listings/{listing_id}/purchase", s.handlePurchase)
	s.mux.HandleFunc("POST /api/v1/marketplace/purchase", s.handlePurchase)
	s.mux.HandleFunc("GET /api/v1/marketplace/transactions", s.handleListTransactions)
	s.mux.HandleFunc("GET /api/v1/marketplace/transactions/{transaction_id}", s.handleGetTransaction)

	s.mux.HandleFunc("POST /api/v1/waitlist", s.handleJoinWaitlist)
	s.mux.HandleFunc("GET /api/v1/waitlist", s.handleListWaitlist)
	s.mux.HandleFunc("GET /api/v1/waitlist/stats", s.handleWaitlistStats)
	s.mux.HandleFunc("POST /api/v1/waitlist/{entry_id}/status", s.handleWaitlistStatus)

	s.mux.HandleFunc("GET /api/v1/blockchain/status", s.handleChainStatus)
	s.mux.HandleFunc("GET /api/v1/blockchain/block", s.handleBlockNumber)
	s.mux.HandleFunc("GET /api/v1/blockchain/gas-price", s.handleGasPrice)
	s.mux.HandleFunc("GET /api/v1/blockchain/balance/{address}", s.handleChainBalance)
	s.mux.HandleFunc("GET /api/v1/blockchain/token/{contract}/balance/{address}", s.handleTokenBalance)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeSuccess(w, http.StatusOK, map[string]string{"status": "healthy"}, "")
}

func (s *Server) handleListAssets(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit, ok := parseLimit(w, query.Get("limit"))
	if !ok {
		return
	}
	resp, err := s.assets.Handler.ListAssetsHandler(
		r.Context(),
		query.Get("status"),
		query.Get("owner"),
		query.Get("cursor"),
		limit,
	)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, resp, "")
}

func (s *Server) handleCreateAsset(w http.ResponseWriter, r *http.Request) {
	var req assethttp.CreateAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "request body must be valid JSON")
		return
	}
	resp, err := s.assets.Handler.CreateAssetHandler(r.Context(), req)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, resp, "Asset registered")
}

func (s *Server) handleGetAsset(w http.ResponseWriter, r *http.Request) {
	resp, err := s.assets.Handler.GetAssetHandler(r.Context(), r.PathValue("asset_id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, resp, "")
}

func (s *Server) handleSubmitAsset(w http.ResponseWriter, r *http.Request) {
	resp, err := s.assets.Handler.SubmitAssetHandler(r.Context(), r.PathValue("asset_id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, resp, "Asset submitted for approval")
}

func (s *Server) handleApproveAsset(w http.ResponseWriter, r *http.Request) {
	resp, err := s.assets.Handler.ApproveAssetHandler(r.Context(), r.PathValue("asset_id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, resp, "Asset approved")
}

func (s *Server) handleRetireAsset(w http.ResponseWriter, r *http.Request) {
	resp, err := s.assets.Handler.RetireAssetHandler(r.Context(), r.PathValue("asset_id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, resp, "Asset retired")
}

func (s *Server) handleTokenizeAsset(w http.ResponseWriter, r *http.Request) {
	var req assethttp.TokenizeAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "request body must be valid JSON")
		return
	}
	resp, err := s.assets.Handler.TokenizeAssetHandler(r.Context(), r.PathValue("asset_id"), req)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, resp, "Asset tokenized")
}

func (s *Server) handleListListings(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit, ok := parseLimit(w, query.Get("limit"))
	if !ok {
		return
	}
	resp, err := s.trading.Handler.ListListingsHandler(
		r.Context(),
		query.Get("asset_id"),
		query.Get("seller"),
		query.Get("status"),
		query.Get("cursor"),
		limit,
	)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, resp, "")
}

func (s *Server) handleCreateListing(w http.ResponseWriter, r *http.Request) {
	var req tradinghttp.CreateListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "request body must be valid JSON")
		return
	}
	resp, err := s.trading.Handler.CreateListingHandler(r.Context(), req)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, resp, "Listing created")
}

func (s *Server) handleGetListing(w http.ResponseWriter, r *http.Request) {
	resp, err := s.trading.Handler.GetListingHandler(r.Context(), r.PathValue("listing_id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, resp, "")
}

func (s *Server) handleCancelListing(w http.ResponseWriter, r *http.Request) {
	var req tradinghttp.CancelListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "request body must be valid JSON")
		return
	}
	resp, err := s.trading.Handler.CancelListingHandler(r.Context(), r.PathValue("listing_id"), req)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, resp, "Listing cancelled")
}

func (s *Server) handlePurchase(w http.ResponseWriter, r *http.Request) {
	var req tradinghttp.PurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "request body must be valid JSON")
		return
	}
	// The flat purchase route carries the listing in the body instead of the path.
	listingID := r.PathValue("listing_id")
	if listingID == "" {
		listingID = req.ListingID
	}
	resp, err := s.trading.Handler.PurchaseHandler(r.Context(), listingID, req)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusAccepted, resp, "Purchase submitted; settlement pending")
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit, ok := parseLimit(w, query.Get("limit"))
	if !ok {
		return
	}
	resp, err := s.trading.Handler.ListTransactionsHandler(
		r.Context(),
		query.Get("listing_id"),
		query.Get("buyer"),
		query.Get("status"),
		query.Get("cursor"),
		limit,
	)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, resp, "")
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	resp, err := s.trading.Handler.GetTransactionHandler(r.Context(), r.PathValue("transaction_id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, resp, "")
}

func (s *Server) handleJoinWaitlist(w http.ResponseWriter, r *http.Request) {
	var req waitlisthttp.JoinWaitlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "request body must be valid JSON")
		return
	}
	resp, err := s.waitlist.Handler.JoinWaitlistHandler(r.Context(), req)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, resp, "Added to waitlist")
}

func (s *Server) handleListWaitlist(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit, ok := parseLimit(w, query.Get("limit"))
	if !ok {
		return
	}
	resp, err := s.waitlist.Handler.ListEntriesHandler(
		r.Context(),
		query.Get("status"),
		query.Get("cursor"),
		limit,
	)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, resp, "")
}

func (s *Server) handleWaitlistStats(w http.ResponseWriter, r *http.Request) {
	resp, err := s.waitlist.Handler.StatsHandler(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, resp, "")
}

func (s *Server) handleWaitlistStatus(w http.ResponseWriter, r *http.Request) {
	var req waitlisthttp.UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "request body must be valid JSON")
		return
	}
	resp, err := s.waitlist.Handler.UpdateStatusHandler(r.Context(), r.PathValue("entry_id"), req)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, resp, "Waitlist status updated")
}

// handleChainStatus godoc
// @Summary Chain connectivity status
// @Tags blockchain
// @Produce json
// @Success 200 {object} Envelope
// @Router /api/v1/blockchain/status [get]
func (s *Server) handleChainStatus(w http.ResponseWriter, r *http.Request) {
	block, err := s.chain.GetBlockNumber(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	gasPrice, err := s.chain.GetGasPrice(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	gwei := decimal.NewFromBigInt(gasPrice, -9)
	writeSuccess(w, http.StatusOK, map[string]any{
		"block_number":   block,
		"gas_price_wei":  gasPrice.String(),
		"gas_price_gwei": gwei.String(),
	}, "")
}

func (s *Server) handleBlockNumber(w http.ResponseWriter, r *http.Request) {
	block, err := s.chain.GetBlockNumber(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"block_number": block}, "")
}

func (s *Server) handleGasPrice(w http.ResponseWriter, r *http.Request) {
	gasPrice, err := s.chain.GetGasPrice(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	gwei := decimal.NewFromBigInt(gasPrice, -9)
	writeSuccess(w, http.StatusOK, map[string]any{
		"gas_price_wei":  gasPrice.String(),
		"gas_price_gwei": gwei.String(),
	}, "")
}

func (s *Server) handleChainBalance(w http.ResponseWriter, r *http.Request) {
	address := r.PathValue("address")
	if !ledger.IsValidAddress(address) {
		writeError(w, http.StatusBadRequest, "invalid address")
		return
	}
	balance, err := s.chain.GetBalance(r.Context(), address)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	eth := decimal.NewFromBigInt(balance, -18)
	writeSuccess(w, http.StatusOK, map[string]any{
		"address":     address,
		"balance_wei": balance.String(),
		"balance_eth": eth.String(),
	}, "")
}

func (s *Server) handleTokenBalance(w http.ResponseWriter, r *http.Request) {
	contract := r.PathValue("contract")
	address := r.PathValue("address")
	if !ledger.IsValidAddress(contract) || !ledger.IsValidAddress(address) {
		writeError(w, http.StatusBadRequest, "invalid address")
		return
	}
	balance, err := s.chain.GetTokenBalance(r.Context(), contract, address)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{
		"contract": contract,
		"address":  address,
		"balance":  balance,
	}, "")
}

// writeDomainError maps module sentinels onto HTTP statuses. Ledger failures
// of either kind surface as a bad gateway; the transient/permanent split is
// carried in the error detail.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, asseterrors.ErrInvalidAssetRequest),
		errors.Is(err, asseterrors.ErrInvalidTokenizeRequest),
		errors.Is(err, tradingerrors.ErrInvalidListingRequest),
		errors.Is(err, tradingerrors.ErrInvalidPurchaseRequest),
		errors.Is(err, waitlisterrors.ErrInvalidWaitlistRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, asseterrors.ErrAssetNotFound),
		errors.Is(err, tradingerrors.ErrListingNotFound),
		errors.Is(err, tradingerrors.ErrTransactionNotFound),
		errors.Is(err, waitlisterrors.ErrEntryNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, tradingerrors.ErrListingNotOwned):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, asseterrors.ErrInvalidTransition),
		errors.Is(err, asseterrors.ErrPreconditionFailed),
		errors.Is(err, asseterrors.ErrInsufficientSupply),
		errors.Is(err, tradingerrors.ErrListingUnavailable),
		errors.Is(err, tradingerrors.ErrListingReserved),
		errors.Is(err, tradingerrors.ErrAssetNotTradable),
		errors.Is(err, tradingerrors.ErrInsufficientSellerBalance),
		errors.Is(err, tradingerrors.ErrTransactionFinalized),
		errors.Is(err, waitlisterrors.ErrDuplicateEmail),
		errors.Is(err, waitlisterrors.ErrInvalidStatusChange):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ledger.ErrUnreachable):
		writeError(w, http.StatusBadGateway, "blockchain node unreachable")
	case errors.Is(err, ledger.ErrRejected):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		s.logger.Error("unhandled domain error",
			"event", "http_internal_error",
			"module", "internal/platform/httpserver",
			"layer", "platform",
			"error", err.Error(),
		)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func parseLimit(w http.ResponseWriter, raw string) (int, bool) {
	if raw == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "limit must be an integer")
		return 0, false
	}
	return limit, true
}

func writeSuccess(w http.ResponseWriter, status int, data any, message string) {
	writeJSON(w, status, Envelope{
		Success:   true,
		Data:      data,
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Envelope{
		Success:   false,
		Error:     message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
