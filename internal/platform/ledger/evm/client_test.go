package evm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"tokeniza/internal/platform/ledger"
)

func newTestClient(url string) *Client {
	return NewClient(Config{
		RPCURL:        url,
		ChainID:       31337,
		RetryAttempts: 1,
		RetryBackoff:  time.Millisecond,
	}, nil, nil)
}

func rpcServer(t *testing.T, handler func(method string, params []json.RawMessage) (any, *rpcError)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string            `json:"method"`
			Params []json.RawMessage `json:"params"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode rpc request: %v", err)
			return
		}
		result, rpcErr := handler(req.Method, req.Params)
		resp := map[string]any{"jsonrpc": "2.0", "id": 1}
		if rpcErr != nil {
			resp["error"] = rpcErr
		} else {
			resp["result"] = result
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestClientReadCalls(t *testing.T) {
	server := rpcServer(t, func(method string, _ []json.RawMessage) (any, *rpcError) {
		switch method {
		case "eth_blockNumber":
			return "0x10", nil
		case "eth_gasPrice":
			return "0x4a817c800", nil
		case "eth_getBalance":
			return "0xde0b6b3a7640000", nil
		case "eth_call":
			return "0x0000000000000000000000000000000000000000000000000000000000000064", nil
		default:
			return nil, &rpcError{Code: -32601, Message: "method not found"}
		}
	})
	defer server.Close()

	client := newTestClient(server.URL)
	ctx := context.Background()

	block, err := client.GetBlockNumber(ctx)
	if err != nil {
		t.Fatalf("block number failed: %v", err)
	}
	if block != 16 {
		t.Fatalf("expected block 16, got %d", block)
	}

	gasPrice, err := client.GetGasPrice(ctx)
	if err != nil {
		t.Fatalf("gas price failed: %v", err)
	}
	if gasPrice.String() != "20000000000" {
		t.Fatalf("expected 20 gwei, got %s", gasPrice)
	}

	balance, err := client.GetBalance(ctx, "0x00000000000000000000000000000000000000aa")
	if err != nil {
		t.Fatalf("balance failed: %v", err)
	}
	if balance.String() != "1000000000000000000" {
		t.Fatalf("expected 1 eth in wei, got %s", balance)
	}

	tokens, err := client.GetTokenBalance(ctx,
		"0x00000000000000000000000000000000000000cc",
		"0x00000000000000000000000000000000000000aa",
	)
	if err != nil {
		t.Fatalf("token balance failed: %v", err)
	}
	if tokens != 100 {
		t.Fatalf("expected 100 tokens, got %d", tokens)
	}
}

func TestClientErrorTaxonomy(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer down.Close()

	client := newTestClient(down.URL)
	if _, err := client.GetBlockNumber(context.Background()); !errors.Is(err, ledger.ErrUnreachable) {
		t.Fatalf("expected unreachable for server 500, got %v", err)
	}

	closed := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	closed.Close()
	client = newTestClient(closed.URL)
	if _, err := client.GetBlockNumber(context.Background()); !errors.Is(err, ledger.ErrUnreachable) {
		t.Fatalf("expected unreachable for refused connection, got %v", err)
	}

	rejecting := rpcServer(t, func(string, []json.RawMessage) (any, *rpcError) {
		return nil, &rpcError{Code: -32000, Message: "execution reverted"}
	})
	defer rejecting.Close()
	client = newTestClient(rejecting.URL)
	if _, err := client.GetBlockNumber(context.Background()); !errors.Is(err, ledger.ErrRejected) {
		t.Fatalf("expected rejected for rpc error, got %v", err)
	}

	if _, err := client.GetBalance(context.Background(), "not-an-address"); !errors.Is(err, ledger.ErrRejected) {
		t.Fatalf("expected rejected for malformed address, got %v", err)
	}
}

func TestClientRetriesUnreachableOnly(t *testing.T) {
	var calls atomic.Int32
	flaky := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"jsonrpc": "2.0", "id": 1, "result": "0x10"})
	}))
	defer flaky.Close()

	client := NewClient(Config{
		RPCURL:        flaky.URL,
		RetryAttempts: 3,
		RetryBackoff:  time.Millisecond,
	}, nil, nil)

	block, err := client.GetBlockNumber(context.Background())
	if err != nil {
		t.Fatalf("expected retry to recover, got %v", err)
	}
	if block != 16 || calls.Load() != 2 {
		t.Fatalf("expected recovery on second call, got block %d after %d calls", block, calls.Load())
	}
}

func TestClientReceiptStates(t *testing.T) {
	receipts := map[string]any{
		"0x" + pad64("1"): nil,
		"0x" + pad64("2"): map[string]string{"status": "0x1", "blockNumber": "0x20"},
		"0x" + pad64("3"): map[string]string{"status": "0x0", "blockNumber": "0x21"},
	}
	server := rpcServer(t, func(method string, params []json.RawMessage) (any, *rpcError) {
		if method != "eth_getTransactionReceipt" {
			return nil, &rpcError{Code: -32601, Message: "method not found"}
		}
		var hash string
		_ = json.Unmarshal(params[0], &hash)
		return receipts[hash], nil
	})
	defer server.Close()

	client := newTestClient(server.URL)
	ctx := context.Background()

	pending, err := client.GetReceipt(ctx, ledger.TxRef{TxHash: "0x" + pad64("1")})
	if err != nil {
		t.Fatalf("pending receipt failed: %v", err)
	}
	if pending.Status != ledger.ReceiptPending {
		t.Fatalf("expected pending, got %s", pending.Status)
	}

	confirmed, err := client.GetReceipt(ctx, ledger.TxRef{TxHash: "0x" + pad64("2")})
	if err != nil {
		t.Fatalf("confirmed receipt failed: %v", err)
	}
	if confirmed.Status != ledger.ReceiptConfirmed || confirmed.BlockNumber != 32 {
		t.Fatalf("expected confirmed at block 32, got %+v", confirmed)
	}

	failed, err := client.GetReceipt(ctx, ledger.TxRef{TxHash: "0x" + pad64("3")})
	if err != nil {
		t.Fatalf("failed receipt failed: %v", err)
	}
	if failed.Status != ledger.ReceiptFailed {
		t.Fatalf("expected failed, got %s", failed.Status)
	}
}

func TestMethodSelectors(t *testing.T) {
	if got := methodSelector("balanceOf(address)"); got != "0x70a08231" {
		t.Fatalf("balanceOf selector mismatch: %s", got)
	}
	if got := methodSelector("transfer(address,uint256)"); got != "0xa9059cbb" {
		t.Fatalf("transfer selector mismatch: %s", got)
	}
	if balanceOfSelector != methodSelector("balanceOf(address)") {
		t.Fatalf("balanceOf selector not derived from signature: %s", balanceOfSelector)
	}
	if deploymentOfSelector != methodSelector("deploymentOf(bytes32)") {
		t.Fatalf("deploymentOf selector not derived from signature: %s", deploymentOfSelector)
	}
}

func TestClientWritesRequireSigner(t *testing.T) {
	client := newTestClient("http://127.0.0.1:0")
	ctx := context.Background()

	_, err := client.Transfer(ctx,
		"0x00000000000000000000000000000000000000cc",
		"0x00000000000000000000000000000000000000aa",
		"0x00000000000000000000000000000000000000bb",
		10,
	)
	if !errors.Is(err, ledger.ErrRejected) {
		t.Fatalf("expected rejected without signer, got %v", err)
	}

	_, err = client.DeployAndMint(ctx, ledger.DeployRequest{
		IdempotencyToken: "asset-1",
		Name:             "Marina Tower",
		Symbol:           "MARINA",
		TotalSupply:      1_000,
		Owner:            "0x00000000000000000000000000000000000000aa",
	})
	if !errors.Is(err, ledger.ErrRejected) {
		t.Fatalf("expected rejected without signer, got %v", err)
	}
}

func pad64(suffix string) string {
	padding := make([]byte, 64-len(suffix))
	for i := range padding {
		padding[i] = '0'
	}
	return string(padding) + suffix
}
