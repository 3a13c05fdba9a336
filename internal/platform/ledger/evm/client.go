package evm

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/sha3"

	"tokeniza/internal/platform/ledger"
)

// Signer produces raw signed transactions for the write paths. Key custody is
// outside this package; tests and local runtime plug their own implementation.
type Signer interface {
	Address() string
	SignDeploy(ctx context.Context, req ledger.DeployRequest, nonce uint64, gasPrice *big.Int) ([]byte, error)
	SignTransfer(ctx context.Context, contract string, from string, to string, amount uint64, nonce uint64, gasPrice *big.Int) ([]byte, error)
}

// Config carries the chain connection parameters supplied by the environment.
type Config struct {
	RPCURL           string
	ChainID          uint64
	RegistryContract string
	RequestTimeout   time.Duration
	DeployWait       time.Duration
	RetryAttempts    int
	RetryBackoff     time.Duration
}

// Client is a JSON-RPC ledger adapter for EVM chains.
type Client struct {
	cfg        Config
	httpClient *http.Client
	signer     Signer
	logger     *slog.Logger
}

func NewClient(cfg Config, signer Signer, logger *slog.Logger) *Client {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 10 * time.Second
	}
	if cfg.DeployWait <= 0 {
		cfg.DeployWait = 30 * time.Second
	}
	if cfg.RetryAttempts <= 0 {
		cfg.RetryAttempts = 3
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 500 * time.Millisecond
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
			Transport: &http.Transport{
				MaxIdleConns:    10,
				IdleConnTimeout: 30 * time.Second,
			},
		},
		signer: signer,
		logger: logger,
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

// call performs one JSON-RPC round trip. Transport and server failures map to
// Unreachable; a JSON-RPC error object is a Rejected outcome from the node.
func (c *Client) call(ctx context.Context, method string, params []any, out any) error {
	payload, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: 1, Method: method, Params: params})
	if err != nil {
		return ledger.Rejected(method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.RPCURL, bytes.NewReader(payload))
	if err != nil {
		return ledger.Rejected(method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ledger.Unreachable(method, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return ledger.Unreachable(method, err)
	}
	if resp.StatusCode >= 500 {
		return ledger.Unreachable(method, fmt.Errorf("rpc status %d: %s", resp.StatusCode, string(body)))
	}
	if resp.StatusCode != http.StatusOK {
		return ledger.Rejected(method, fmt.Errorf("rpc status %d: %s", resp.StatusCode, string(body)))
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		return ledger.Unreachable(method, fmt.Errorf("decode rpc response: %w", err))
	}
	if rpcResp.Error != nil {
		return ledger.Rejected(method, fmt.Errorf("rpc error %d: %s", rpcResp.Error.Code, rpcResp.Error.Message))
	}
	if out != nil {
		if err := json.Unmarshal(rpcResp.Result, out); err != nil {
			return ledger.Unreachable(method, fmt.Errorf("decode rpc result: %w", err))
		}
	}
	return nil
}

// callWithRetry retries Unreachable outcomes with linear backoff. Rejected
// outcomes are surfaced immediately.
func (c *Client) callWithRetry(ctx context.Context, method string, params []any, out any) error {
	var lastErr error
	for attempt := 0; attempt < c.cfg.RetryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ledger.Unreachable(method, ctx.Err())
			case <-time.After(time.Duration(attempt) * c.cfg.RetryBackoff):
			}
		}
		lastErr = c.call(ctx, method, params, out)
		if lastErr == nil || !errors.Is(lastErr, ledger.ErrUnreachable) {
			return lastErr
		}
		c.logger.Warn("ledger call retrying",
			"event", "evm_call_retry",
			"module", "internal/platform/ledger/evm",
			"layer", "platform",
			"method", method,
			"attempt", attempt+1,
			"error", lastErr.Error(),
		)
	}
	return lastErr
}

func (c *Client) GetBalance(ctx context.Context, address string) (*big.Int, error) {
	if !ledger.IsValidAddress(address) {
		return nil, ledger.Rejected("eth_getBalance", fmt.Errorf("invalid address %q", address))
	}
	var raw string
	if err := c.callWithRetry(ctx, "eth_getBalance", []any{address, "latest"}, &raw); err != nil {
		return nil, err
	}
	return parseHexBig(raw, "eth_getBalance")
}

func (c *Client) GetBlockNumber(ctx context.Context) (uint64, error) {
	var raw string
	if err := c.callWithRetry(ctx, "eth_blockNumber", []any{}, &raw); err != nil {
		return 0, err
	}
	value, err := parseHexBig(raw, "eth_blockNumber")
	if err != nil {
		return 0, err
	}
	return value.Uint64(), nil
}

func (c *Client) GetGasPrice(ctx context.Context) (*big.Int, error) {
	var raw string
	if err := c.callWithRetry(ctx, "eth_gasPrice", []any{}, &raw); err != nil {
		return nil, err
	}
	return parseHexBig(raw, "eth_gasPrice")
}

var (
	balanceOfSelector    = methodSelector("balanceOf(address)")
	deploymentOfSelector = methodSelector("deploymentOf(bytes32)")
)

// methodSelector derives the 4-byte ABI selector from a canonical method
// signature.
func methodSelector(signature string) string {
	hash := sha3.NewLegacyKeccak256()
	hash.Write([]byte(signature))
	return "0x" + hex.EncodeToString(hash.Sum(nil)[:4])
}

func (c *Client) GetTokenBalance(ctx context.Context, contract string, address string) (uint64, error) {
	if !ledger.IsValidAddress(contract) || !ledger.IsValidAddress(address) {
		return 0, ledger.Rejected("eth_call", fmt.Errorf("invalid contract or holder address"))
	}
	data := balanceOfSelector + leftPadAddress(address)
	var raw string
	err := c.callWithRetry(ctx, "eth_call", []any{
		map[string]string{"to": contract, "data": data},
		"latest",
	}, &raw)
	if err != nil {
		return 0, err
	}
	value, err := parseHexBig(raw, "eth_call")
	if err != nil {
		return 0, err
	}
	if !value.IsUint64() {
		return 0, ledger.Rejected("eth_call", fmt.Errorf("token balance overflows uint64"))
	}
	return value.Uint64(), nil
}

func (c *Client) LookupDeployment(ctx context.Context, idempotencyToken string) (ledger.TokenRef, bool, error) {
	if c.cfg.RegistryContract == "" {
		return ledger.TokenRef{}, false, nil
	}
	data := deploymentOfSelector + bytes32Arg(idempotencyToken)
	var raw string
	err := c.callWithRetry(ctx, "eth_call", []any{
		map[string]string{"to": c.cfg.RegistryContract, "data": data},
		"latest",
	}, &raw)
	if err != nil {
		return ledger.TokenRef{}, false, err
	}
	address, ok := decodeAddressResult(raw)
	if !ok {
		return ledger.TokenRef{}, false, nil
	}
	return ledger.TokenRef{ContractAddress: address}, true, nil
}

func (c *Client) DeployAndMint(ctx context.Context, req ledger.DeployRequest) (ledger.TokenRef, error) {
	if c.signer == nil {
		return ledger.TokenRef{}, ledger.Rejected("deploy", errors.New("signer not configured"))
	}

	nonce, gasPrice, err := c.writePrologue(ctx)
	if err != nil {
		return ledger.TokenRef{}, err
	}
	signed, err := c.signer.SignDeploy(ctx, req, nonce, gasPrice)
	if err != nil {
		return ledger.TokenRef{}, ledger.Rejected("deploy", err)
	}

	txHash, err := c.sendRaw(ctx, signed)
	if err != nil {
		return ledger.TokenRef{}, err
	}

	c.logger.Info("deployment submitted",
		"event", "evm_deploy_submitted",
		"module", "internal/platform/ledger/evm",
		"layer", "platform",
		"tx_hash", txHash,
		"symbol", req.Symbol,
	)

	contract, err := c.waitForContractAddress(ctx, txHash)
	if err != nil {
		return ledger.TokenRef{}, err
	}
	return ledger.TokenRef{ContractAddress: contract, TxHash: txHash}, nil
}

func (c *Client) Transfer(ctx context.Context, contract string, from string, to string, amount uint64) (ledger.TxRef, error) {
	if c.signer == nil {
		return ledger.TxRef{}, ledger.Rejected("transfer", errors.New("signer not configured"))
	}
	if !ledger.IsValidAddress(contract) || !ledger.IsValidAddress(from) || !ledger.IsValidAddress(to) {
		return ledger.TxRef{}, ledger.Rejected("transfer", errors.New("invalid address"))
	}

	nonce, gasPrice, err := c.writePrologue(ctx)
	if err != nil {
		return ledger.TxRef{}, err
	}
	signed, err := c.signer.SignTransfer(ctx, contract, from, to, amount, nonce, gasPrice)
	if err != nil {
		return ledger.TxRef{}, ledger.Rejected("transfer", err)
	}

	txHash, err := c.sendRaw(ctx, signed)
	if err != nil {
		return ledger.TxRef{}, err
	}
	return ledger.TxRef{TxHash: txHash}, nil
}

func (c *Client) GetReceipt(ctx context.Context, ref ledger.TxRef) (ledger.Receipt, error) {
	var result *struct {
		Status          string `json:"status"`
		BlockNumber     string `json:"blockNumber"`
		ContractAddress string `json:"contractAddress"`
	}
	if err := c.callWithRetry(ctx, "eth_getTransactionReceipt", []any{ref.TxHash}, &result); err != nil {
		return ledger.Receipt{}, err
	}
	if result == nil {
		return ledger.Receipt{TxHash: ref.TxHash, Status: ledger.ReceiptPending}, nil
	}

	status := ledger.ReceiptFailed
	if result.Status == "0x1" {
		status = ledger.ReceiptConfirmed
	}
	block, err := parseHexBig(result.BlockNumber, "eth_getTransactionReceipt")
	if err != nil {
		return ledger.Receipt{}, err
	}
	return ledger.Receipt{TxHash: ref.TxHash, Status: status, BlockNumber: block.Uint64()}, nil
}

func (c *Client) writePrologue(ctx context.Context) (uint64, *big.Int, error) {
	var rawNonce string
	if err := c.callWithRetry(ctx, "eth_getTransactionCount", []any{c.signer.Address(), "pending"}, &rawNonce); err != nil {
		return 0, nil, err
	}
	nonce, err := parseHexBig(rawNonce, "eth_getTransactionCount")
	if err != nil {
		return 0, nil, err
	}
	gasPrice, err := c.GetGasPrice(ctx)
	if err != nil {
		return 0, nil, err
	}
	return nonce.Uint64(), gasPrice, nil
}

func (c *Client) sendRaw(ctx context.Context, signed []byte) (string, error) {
	var txHash string
	raw := "0x" + hex.EncodeToString(signed)
	// No retry on submission: resending a raw transaction after an ambiguous
	// transport failure risks double submission; the reconciler owns the gap.
	if err := c.call(ctx, "eth_sendRawTransaction", []any{raw}, &txHash); err != nil {
		return "", err
	}
	return txHash, nil
}

func (c *Client) waitForContractAddress(ctx context.Context, txHash string) (string, error) {
	deadline := time.Now().Add(c.cfg.DeployWait)
	for {
		var result *struct {
			Status          string `json:"status"`
			ContractAddress string `json:"contractAddress"`
		}
		if err := c.callWithRetry(ctx, "eth_getTransactionReceipt", []any{txHash}, &result); err != nil {
			return "", err
		}
		if result != nil {
			if result.Status != "0x1" {
				return "", ledger.Rejected("deploy", fmt.Errorf("deployment reverted: %s", txHash))
			}
			if ledger.IsValidAddress(result.ContractAddress) {
				return result.ContractAddress, nil
			}
			return "", ledger.Rejected("deploy", fmt.Errorf("receipt missing contract address: %s", txHash))
		}
		if time.Now().After(deadline) {
			return "", ledger.Unreachable("deploy", fmt.Errorf("deployment unconfirmed after %s: %s", c.cfg.DeployWait, txHash))
		}
		select {
		case <-ctx.Done():
			return "", ledger.Unreachable("deploy", ctx.Err())
		case <-time.After(c.cfg.RetryBackoff):
		}
	}
}

func parseHexBig(raw string, op string) (*big.Int, error) {
	cleaned := strings.TrimPrefix(strings.TrimSpace(raw), "0x")
	if cleaned == "" {
		return big.NewInt(0), nil
	}
	value, ok := new(big.Int).SetString(cleaned, 16)
	if !ok {
		return nil, ledger.Rejected(op, fmt.Errorf("malformed hex quantity %q", raw))
	}
	return value, nil
}

func leftPadAddress(address string) string {
	return strings.Repeat("0", 24) + strings.ToLower(strings.TrimPrefix(address, "0x"))
}

// bytes32Arg right-pads the raw token bytes into one ABI word.
func bytes32Arg(token string) string {
	encoded := hex.EncodeToString([]byte(token))
	if len(encoded) > 64 {
		encoded = encoded[:64]
	}
	return encoded + strings.Repeat("0", 64-len(encoded))
}

func decodeAddressResult(raw string) (string, bool) {
	cleaned := strings.TrimPrefix(strings.TrimSpace(raw), "0x")
	if len(cleaned) != 64 {
		return "", false
	}
	address := "0x" + cleaned[24:]
	if !ledger.IsValidAddress(address) {
		return "", false
	}
	if address == "0x0000000000000000000000000000000000000000" {
		return "", false
	}
	return address, true
}
