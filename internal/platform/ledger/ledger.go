package ledger

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"regexp"
)

// Adapter is the on-chain boundary. It owns no domain state; every method is
// fallible with a distinguishable transient (Unreachable) vs permanent
// (Rejected) outcome that callers must branch on.
type Adapter interface {
	GetBalance(ctx context.Context, address string) (*big.Int, error)
	GetBlockNumber(ctx context.Context) (uint64, error)
	GetGasPrice(ctx context.Context) (*big.Int, error)
	GetTokenBalance(ctx context.Context, contract string, address string) (uint64, error)
	// DeployAndMint deploys a token contract and mints the full supply to the
	// owner. The request carries an idempotency token (the asset id); an
	// adapter must return the existing deployment when the token was already
	// used, never deploy twice.
	DeployAndMint(ctx context.Context, req DeployRequest) (TokenRef, error)
	// LookupDeployment reports whether a deployment already exists for the
	// idempotency token. Used on retry after a crash between the ledger call
	// and the off-chain state update.
	LookupDeployment(ctx context.Context, idempotencyToken string) (TokenRef, bool, error)
	Transfer(ctx context.Context, contract string, from string, to string, amount uint64) (TxRef, error)
	GetReceipt(ctx context.Context, ref TxRef) (Receipt, error)
}

// DeployRequest describes a token deployment for one tokenized asset.
type DeployRequest struct {
	IdempotencyToken string
	Name             string
	Symbol           string
	Decimals         uint8
	TotalSupply      uint64
	Owner            string
}

// TokenRef points at a deployed token contract.
type TokenRef struct {
	ContractAddress string
	TxHash          string
}

// TxRef identifies a submitted ledger transaction.
type TxRef struct {
	TxHash string
}

type ReceiptStatus string

const (
	ReceiptPending   ReceiptStatus = "pending"
	ReceiptConfirmed ReceiptStatus = "confirmed"
	ReceiptFailed    ReceiptStatus = "failed"
)

// Receipt is the polled settlement outcome of a submitted transaction.
type Receipt struct {
	TxHash      string
	Status      ReceiptStatus
	BlockNumber uint64
}

// ErrUnreachable marks transient ledger failures eligible for bounded retry.
var ErrUnreachable = errors.New("ledger unreachable")

// ErrRejected marks permanent ledger failures that must not be retried.
var ErrRejected = errors.New("ledger rejected request")

// Error wraps an operation failure with its retry classification.
// errors.Is(err, ErrUnreachable) / errors.Is(err, ErrRejected) both work.
type Error struct {
	Op   string
	Kind error // ErrUnreachable or ErrRejected
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("ledger %s: %v: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Kind }

func Unreachable(op string, err error) error {
	return &Error{Op: op, Kind: ErrUnreachable, Err: err}
}

func Rejected(op string, err error) error {
	return &Error{Op: op, Kind: ErrRejected, Err: err}
}

var addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// IsValidAddress reports whether s is a well-formed EVM address.
func IsValidAddress(s string) bool {
	return addressPattern.MatchString(s)
}

var txHashPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{64}$`)

// IsValidTxHash reports whether s is a well-formed transaction hash.
func IsValidTxHash(s string) bool {
	return txHashPattern.MatchString(s)
}
