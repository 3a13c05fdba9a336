package queries

import (
	"context"
	"log/slog"

	application "tokeniza/contexts/marketplace-settlement/trading-engine/application"
	"tokeniza/contexts/marketplace-settlement/trading-engine/domain/entities"
	"tokeniza/contexts/marketplace-settlement/trading-engine/ports"
)

type GetTransactionQuery struct {
	TransactionID string
}

type GetTransactionResult struct {
	Transaction entities.Transaction
}

type GetTransactionUseCase struct {
	Transactions ports.TransactionRepository
	Logger       *slog.Logger
}

func (u GetTransactionUseCase) Execute(ctx context.Context, query GetTransactionQuery) (GetTransactionResult, error) {
	txn, err := u.Transactions.GetTransaction(ctx, query.TransactionID)
	if err != nil {
		return GetTransactionResult{}, err
	}
	return GetTransactionResult{Transaction: txn}, nil
}

type ListTransactionsQuery struct {
	ListingID string
	Buyer     string
	Status    string
	Cursor    string
	Limit     int
}

type ListTransactionsResult struct {
	Items      []entities.Transaction
	NextCursor string
}

type ListTransactionsUseCase struct {
	Transactions ports.TransactionRepository
	Logger       *slog.Logger
}

func (u ListTransactionsUseCase) Execute(ctx context.Context, query ListTransactionsQuery) (ListTransactionsResult, error) {
	items, nextCursor, err := u.Transactions.ListTransactions(ctx, ports.TransactionFilter{
		ListingID: query.ListingID,
		Buyer:     query.Buyer,
		Status:    entities.TransactionStatus(query.Status),
		Cursor:    query.Cursor,
		Limit:     query.Limit,
	})
	if err != nil {
		application.ResolveLogger(u.Logger).Error("transaction list failed",
			"event", "transaction_list_failed",
			"module", "marketplace-settlement/trading-engine",
			"layer", "application",
			"error", err.Error(),
		)
		return ListTransactionsResult{}, err
	}
	return ListTransactionsResult{Items: items, NextCursor: nextCursor}, nil
}
