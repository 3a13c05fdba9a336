package httpserver

import (
	"bytes"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	assetregistry "tokeniza/contexts/asset-tokenization/asset-registry"
	waitlistservice "tokeniza/contexts/investor-relations/waitlist-service"
	tradingengine "tokeniza/contexts/marketplace-settlement/trading-engine"
	tradingregistry "tokeniza/contexts/marketplace-settlement/trading-engine/adapters/registry"
	"tokeniza/internal/platform/ledger/fake"
)

func newTestServer() (*Server, *fake.Ledger) {
	chain := fake.New()
	assets := assetregistry.NewInMemoryModule(chain, nil)
	catalog := tradingregistry.Catalog{
		Assets:  assets.GetAsset,
		Trading: assets.EnableTrading,
		Supply:  assets.SettleSupply,
	}
	trading := tradingengine.NewInMemoryModule(catalog, chain, nil)
	waitlist := waitlistservice.NewInMemoryModule(nil)
	return New(assets, trading, waitlist, chain, nil, ":0"), chain
}

func doJSON(t *testing.T, server *Server, method string, path string, body any) (*httptest.ResponseRecorder, Envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	recorder := httptest.NewRecorder()
	server.Handler().ServeHTTP(recorder, req)

	var envelope Envelope
	if err := json.Unmarshal(recorder.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope from %s %s: %v", method, path, err)
	}
	return recorder, envelope
}

func TestHealthEnvelope(t *testing.T) {
	server, _ := newTestServer()

	recorder, envelope := doJSON(t, server, http.MethodGet, "/health", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	if !envelope.Success || envelope.Timestamp == "" {
		t.Fatalf("unexpected envelope: %+v", envelope)
	}
}

func TestAssetEndpointsEnvelopeAndStatusCodes(t *testing.T) {
	server, _ := newTestServer()

	recorder, envelope := doJSON(t, server, http.MethodPost, "/api/v1/assets", map[string]any{
		"name":         "Marina Tower",
		"asset_type":   "RealEstate",
		"value":        2500000,
		"total_supply": 1000,
		"owner":        "0x00000000000000000000000000000000000000aa",
	})
	if recorder.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", recorder.Code, recorder.Body.String())
	}
	if !envelope.Success {
		t.Fatalf("expected success envelope, got %+v", envelope)
	}

	data, err := json.Marshal(envelope.Data)
	if err != nil {
		t.Fatalf("remarshal data: %v", err)
	}
	var asset struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(data, &asset); err != nil {
		t.Fatalf("decode asset: %v", err)
	}
	if asset.Status != "Draft" || asset.ID == "" {
		t.Fatalf("unexpected asset payload: %+v", asset)
	}

	recorder, envelope = doJSON(t, server, http.MethodGet, "/api/v1/assets/nope", nil)
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", recorder.Code)
	}
	if envelope.Success || envelope.Error == "" {
		t.Fatalf("expected error envelope, got %+v", envelope)
	}

	// Lifecycle violations map to conflict.
	recorder, _ = doJSON(t, server, http.MethodPost, "/api/v1/assets/"+asset.ID+"/approve", nil)
	if recorder.Code != http.StatusConflict {
		t.Fatalf("expected 409 approving a draft, got %d", recorder.Code)
	}

	recorder, _ = doJSON(t, server, http.MethodPost, "/api/v1/assets", map[string]any{
		"name":         "Mystery",
		"asset_type":   "Yacht",
		"total_supply": 10,
		"owner":        "0x00000000000000000000000000000000000000aa",
	})
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown asset type, got %d", recorder.Code)
	}
}

func TestWaitlistDuplicateMapsToConflict(t *testing.T) {
	server, _ := newTestServer()

	recorder, _ := doJSON(t, server, http.MethodPost, "/api/v1/waitlist", map[string]any{
		"email": "ana@example.com",
	})
	if recorder.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", recorder.Code)
	}

	recorder, envelope := doJSON(t, server, http.MethodPost, "/api/v1/waitlist", map[string]any{
		"email": "ANA@example.com",
	})
	if recorder.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate email, got %d", recorder.Code)
	}
	if envelope.Success {
		t.Fatalf("expected error envelope, got %+v", envelope)
	}
}

func TestBlockchainReadEndpoints(t *testing.T) {
	server, chain := newTestServer()
	chain.SetBalance("0x00000000000000000000000000000000000000aa", big.NewInt(1_500_000_000_000_000_000))

	recorder, envelope := doJSON(t, server, http.MethodGet, "/api/v1/blockchain/status", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	data, _ := json.Marshal(envelope.Data)
	var status struct {
		BlockNumber  uint64 `json:"block_number"`
		GasPriceGwei string `json:"gas_price_gwei"`
	}
	if err := json.Unmarshal(data, &status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if status.BlockNumber == 0 || status.GasPriceGwei != "20" {
		t.Fatalf("unexpected chain status: %+v", status)
	}

	recorder, envelope = doJSON(t, server, http.MethodGet, "/api/v1/blockchain/balance/0x00000000000000000000000000000000000000aa", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	data, _ = json.Marshal(envelope.Data)
	var balance struct {
		BalanceWei string `json:"balance_wei"`
		BalanceEth string `json:"balance_eth"`
	}
	if err := json.Unmarshal(data, &balance); err != nil {
		t.Fatalf("decode balance: %v", err)
	}
	if balance.BalanceWei != "1500000000000000000" || balance.BalanceEth != "1.5" {
		t.Fatalf("unexpected balance payload: %+v", balance)
	}

	recorder, _ = doJSON(t, server, http.MethodGet, "/api/v1/blockchain/balance/xyz", nil)
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad address, got %d", recorder.Code)
	}
}
