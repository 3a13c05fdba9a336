package fake

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"tokeniza/internal/platform/ledger"
)

// Ledger is a deterministic in-memory double implementing ledger.Adapter.
// It backs package tests and the local runtime when no RPC endpoint is set.
type Ledger struct {
	mu          sync.Mutex
	sequence    uint64
	blockHeight uint64
	deployments map[string]ledger.TokenRef
	receipts    map[string]ledger.Receipt
	balances    map[string]*big.Int
	tokens      map[string]map[string]uint64

	// DefaultReceipt is the status assigned to new transfers. Tests flip it
	// or rewrite receipts directly via SetReceipt.
	DefaultReceipt ledger.ReceiptStatus

	// Fail scripts the next error per operation name ("transfer", "deploy",
	// "receipt", "balance", "token_balance").
	Fail map[string]error
}

func New() *Ledger {
	return &Ledger{
		blockHeight:    1,
		deployments:    make(map[string]ledger.TokenRef),
		receipts:       make(map[string]ledger.Receipt),
		balances:       make(map[string]*big.Int),
		tokens:         make(map[string]map[string]uint64),
		DefaultReceipt: ledger.ReceiptConfirmed,
		Fail:           make(map[string]error),
	}
}

func (l *Ledger) scripted(op string) error {
	if err, ok := l.Fail[op]; ok && err != nil {
		delete(l.Fail, op)
		return err
	}
	return nil
}

func (l *Ledger) GetBalance(_ context.Context, address string) (*big.Int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.scripted("balance"); err != nil {
		return nil, err
	}
	if !ledger.IsValidAddress(address) {
		return nil, ledger.Rejected("balance", fmt.Errorf("invalid address %q", address))
	}
	if balance, ok := l.balances[address]; ok {
		return new(big.Int).Set(balance), nil
	}
	return big.NewInt(0), nil
}

func (l *Ledger) SetBalance(address string, wei *big.Int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[address] = new(big.Int).Set(wei)
}

func (l *Ledger) GetBlockNumber(_ context.Context) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.blockHeight++
	return l.blockHeight, nil
}

func (l *Ledger) GetGasPrice(_ context.Context) (*big.Int, error) {
	return big.NewInt(20_000_000_000), nil
}

func (l *Ledger) GetTokenBalance(_ context.Context, contract string, address string) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.scripted("token_balance"); err != nil {
		return 0, err
	}
	return l.tokens[contract][address], nil
}

func (l *Ledger) SetTokenBalance(contract string, address string, amount uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.tokens[contract] == nil {
		l.tokens[contract] = make(map[string]uint64)
	}
	l.tokens[contract][address] = amount
}

func (l *Ledger) DeployAndMint(_ context.Context, req ledger.DeployRequest) (ledger.TokenRef, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.scripted("deploy"); err != nil {
		return ledger.TokenRef{}, err
	}
	if existing, ok := l.deployments[req.IdempotencyToken]; ok {
		return existing, nil
	}

	l.sequence++
	ref := ledger.TokenRef{
		ContractAddress: fmt.Sprintf("0x%040x", l.sequence),
		TxHash:          fmt.Sprintf("0x%064x", l.sequence),
	}
	l.deployments[req.IdempotencyToken] = ref
	if l.tokens[ref.ContractAddress] == nil {
		l.tokens[ref.ContractAddress] = make(map[string]uint64)
	}
	l.tokens[ref.ContractAddress][req.Owner] = req.TotalSupply
	l.receipts[ref.TxHash] = ledger.Receipt{TxHash: ref.TxHash, Status: ledger.ReceiptConfirmed, BlockNumber: l.blockHeight}
	return ref, nil
}

func (l *Ledger) LookupDeployment(_ context.Context, idempotencyToken string) (ledger.TokenRef, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	ref, ok := l.deployments[idempotencyToken]
	return ref, ok, nil
}

func (l *Ledger) Transfer(_ context.Context, contract string, from string, to string, amount uint64) (ledger.TxRef, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.scripted("transfer"); err != nil {
		return ledger.TxRef{}, err
	}
	if !ledger.IsValidAddress(from) || !ledger.IsValidAddress(to) {
		return ledger.TxRef{}, ledger.Rejected("transfer", fmt.Errorf("invalid address"))
	}

	l.sequence++
	ref := ledger.TxRef{TxHash: fmt.Sprintf("0x%064x", l.sequence)}
	l.receipts[ref.TxHash] = ledger.Receipt{TxHash: ref.TxHash, Status: l.DefaultReceipt, BlockNumber: l.blockHeight}

	if l.DefaultReceipt == ledger.ReceiptConfirmed {
		holders := l.tokens[contract]
		if holders == nil {
			holders = make(map[string]uint64)
			l.tokens[contract] = holders
		}
		if holders[from] >= amount {
			holders[from] -= amount
		}
		holders[to] += amount
	}
	return ref, nil
}

func (l *Ledger) GetReceipt(_ context.Context, ref ledger.TxRef) (ledger.Receipt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.scripted("receipt"); err != nil {
		return ledger.Receipt{}, err
	}
	receipt, ok := l.receipts[ref.TxHash]
	if !ok {
		return ledger.Receipt{TxHash: ref.TxHash, Status: ledger.ReceiptPending}, nil
	}
	return receipt, nil
}

// SetReceipt overrides the stored receipt for a submitted transaction.
func (l *Ledger) SetReceipt(txHash string, status ledger.ReceiptStatus) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.receipts[txHash] = ledger.Receipt{TxHash: txHash, Status: status, BlockNumber: l.blockHeight}
}

// ClearReceipt makes a transaction look unconfirmed, simulating the
// submitted-but-unmined gap.
func (l *Ledger) ClearReceipt(txHash string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.receipts, txHash)
}
