package postgresadapter

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"tokeniza/contexts/marketplace-settlement/trading-engine/domain/entities"
	domainerrors "tokeniza/contexts/marketplace-settlement/trading-engine/domain/errors"
	"tokeniza/contexts/marketplace-settlement/trading-engine/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository implements the listing and transaction ports on Postgres. The
// listing row lock (SELECT ... FOR UPDATE) is the serialization point for
// reservations, settlements and releases on one listing.
type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{db: db, logger: logger}
}

func (r *Repository) CreateListing(ctx context.Context, listing entities.Listing) error {
	row := listingModelFromEntity(listing)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrRepositoryInvariantBroke
		}
		return err
	}
	return nil
}

func (r *Repository) GetListing(ctx context.Context, listingID string) (entities.Listing, error) {
	var row listingModel
	err := r.db.WithContext(ctx).
		Where("listing_id = ?", listingID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Listing{}, domainerrors.ErrListingNotFound
		}
		return entities.Listing{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) ListListings(ctx context.Context, filter ports.ListingFilter) ([]entities.Listing, string, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}

	tx := r.db.WithContext(ctx).Model(&listingModel{})
	if filter.AssetID != "" {
		tx = tx.Where("asset_id = ?", filter.AssetID)
	}
	if filter.Seller != "" {
		tx = tx.Where("seller = ?", filter.Seller)
	}
	if filter.Status != "" {
		tx = tx.Where("status = ?", string(filter.Status))
	}
	tx = tx.
		Order(clause.OrderByColumn{Column: clause.Column{Name: "created_at"}, Desc: true}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "listing_id"}, Desc: false})

	offset := decodeCursor(filter.Cursor)
	var rows []listingModel
	if err := tx.Offset(offset).Limit(limit + 1).Find(&rows).Error; err != nil {
		return nil, "", err
	}

	nextCursor := ""
	if len(rows) > limit {
		nextCursor = encodeCursor(offset + limit)
		rows = rows[:limit]
	}

	items := make([]entities.Listing, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nextCursor, nil
}

func (r *Repository) Reserve(
	ctx context.Context,
	listingID string,
	req ports.ReservationRequest,
	now time.Time,
) (entities.Listing, entities.Transaction, error) {
	var (
		listing entities.Listing
		txn     entities.Transaction
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := lockListing(tx, listingID)
		if err != nil {
			return err
		}
		listing = row.toEntity()
		if err := listing.Reserve(req.Quantity, now); err != nil {
			return err
		}
		txn, err = entities.NewTransaction(req.TransactionID, listing, req.Buyer, req.Quantity, now)
		if err != nil {
			return err
		}

		if err := saveListing(tx, listing); err != nil {
			return err
		}
		txnRow := transactionModelFromEntity(txn)
		if err := tx.Create(&txnRow).Error; err != nil {
			if isUniqueViolation(err) {
				return domainerrors.ErrRepositoryInvariantBroke
			}
			return err
		}
		return nil
	})
	if err != nil {
		return entities.Listing{}, entities.Transaction{}, err
	}
	return listing, txn, nil
}

func (r *Repository) CancelListing(ctx context.Context, listingID string, seller string, now time.Time) (entities.Listing, error) {
	var listing entities.Listing
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := lockListing(tx, listingID)
		if err != nil {
			return err
		}
		listing = row.toEntity()
		if err := listing.Cancel(seller, now); err != nil {
			return err
		}
		return saveListing(tx, listing)
	})
	if err != nil {
		return entities.Listing{}, err
	}
	return listing, nil
}

func (r *Repository) ExpireListings(ctx context.Context, now time.Time) ([]string, error) {
	var expired []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rows []listingModel
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("status = ? AND expires_at IS NOT NULL AND expires_at <= ? AND reserved = 0",
				string(entities.ListingStatusActive), now.UTC()).
			Find(&rows).
			Error; err != nil {
			return err
		}
		for _, row := range rows {
			listing := row.toEntity()
			if err := listing.Expire(now); err != nil {
				continue
			}
			if err := saveListing(tx, listing); err != nil {
				return err
			}
			expired = append(expired, listing.ListingID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return expired, nil
}

func (r *Repository) GetTransaction(ctx context.Context, transactionID string) (entities.Transaction, error) {
	var row transactionModel
	err := r.db.WithContext(ctx).
		Where("transaction_id = ?", transactionID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Transaction{}, domainerrors.ErrTransactionNotFound
		}
		return entities.Transaction{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) ListTransactions(ctx context.Context, filter ports.TransactionFilter) ([]entities.Transaction, string, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}

	tx := r.db.WithContext(ctx).Model(&transactionModel{})
	if filter.ListingID != "" {
		tx = tx.Where("listing_id = ?", filter.ListingID)
	}
	if filter.Buyer != "" {
		tx = tx.Where("buyer = ?", filter.Buyer)
	}
	if filter.Status != "" {
		tx = tx.Where("status = ?", string(filter.Status))
	}
	tx = tx.
		Order(clause.OrderByColumn{Column: clause.Column{Name: "created_at"}, Desc: true}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "transaction_id"}, Desc: false})

	offset := decodeCursor(filter.Cursor)
	var rows []transactionModel
	if err := tx.Offset(offset).Limit(limit + 1).Find(&rows).Error; err != nil {
		return nil, "", err
	}

	nextCursor := ""
	if len(rows) > limit {
		nextCursor = encodeCursor(offset + limit)
		rows = rows[:limit]
	}

	items := make([]entities.Transaction, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nextCursor, nil
}

func (r *Repository) RecordSubmission(ctx context.Context, transactionID string, txHash string, submittedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&transactionModel{}).
		Where("transaction_id = ? AND status = ?", transactionID, string(entities.TransactionStatusPending)).
		Updates(map[string]any{
			"tx_hash":      txHash,
			"submitted_at": submittedAt.UTC(),
			"updated_at":   submittedAt.UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).
			Model(&transactionModel{}).
			Where("transaction_id = ?", transactionID).
			Count(&count).
			Error; err != nil {
			return err
		}
		if count == 0 {
			return domainerrors.ErrTransactionNotFound
		}
		return domainerrors.ErrTransactionFinalized
	}
	return nil
}

func (r *Repository) Settle(ctx context.Context, transactionID string, now time.Time) (entities.Transaction, error) {
	var txn entities.Transaction
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := lockTransaction(tx, transactionID)
		if err != nil {
			return err
		}
		txn = row.toEntity()
		if txn.Finalized() {
			return domainerrors.ErrTransactionFinalized
		}

		listingRow, err := lockListing(tx, txn.ListingID)
		if err != nil {
			return err
		}
		listing := listingRow.toEntity()
		if err := listing.SettleReservation(txn.Quantity, now); err != nil {
			return err
		}
		if err := txn.Confirm(now); err != nil {
			return err
		}

		if err := saveListing(tx, listing); err != nil {
			return err
		}
		return saveTransaction(tx, txn)
	})
	if err != nil {
		return txn, err
	}
	return txn, nil
}

func (r *Repository) Release(ctx context.Context, transactionID string, reason string, now time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := lockTransaction(tx, transactionID)
		if err != nil {
			return err
		}
		txn := row.toEntity()
		if txn.Status == entities.TransactionStatusFailed {
			return nil
		}
		if txn.Status == entities.TransactionStatusConfirmed {
			return domainerrors.ErrTransactionFinalized
		}

		listingRow, err := lockListing(tx, txn.ListingID)
		if err != nil {
			return err
		}
		listing := listingRow.toEntity()
		if err := listing.ReleaseReservation(txn.Quantity, now); err != nil {
			return err
		}
		if err := txn.Fail(reason, now); err != nil {
			return err
		}

		if err := saveListing(tx, listing); err != nil {
			return err
		}
		return saveTransaction(tx, txn)
	})
}

func (r *Repository) ListPendingOlderThan(ctx context.Context, cutoff time.Time) ([]entities.Transaction, error) {
	var rows []transactionModel
	err := r.db.WithContext(ctx).
		Where("status = ? AND created_at <= ?", string(entities.TransactionStatusPending), cutoff.UTC()).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "created_at"}, Desc: false}).
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}
	items := make([]entities.Transaction, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) ListUnresolvedFailures(ctx context.Context, since time.Time) ([]entities.Transaction, error) {
	var rows []transactionModel
	err := r.db.WithContext(ctx).
		Where("status = ? AND tx_hash <> '' AND ambiguous = false AND updated_at >= ?",
			string(entities.TransactionStatusFailed), since.UTC()).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "updated_at"}, Desc: false}).
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}
	items := make([]entities.Transaction, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) FlagAmbiguous(ctx context.Context, transactionID string, now time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := lockTransaction(tx, transactionID)
		if err != nil {
			return err
		}
		txn := row.toEntity()
		if err := txn.FlagAmbiguous(now); err != nil {
			return err
		}
		return saveTransaction(tx, txn)
	})
}

func lockListing(tx *gorm.DB, listingID string) (listingModel, error) {
	var row listingModel
	err := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("listing_id = ?", listingID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return listingModel{}, domainerrors.ErrListingNotFound
		}
		return listingModel{}, err
	}
	return row, nil
}

func lockTransaction(tx *gorm.DB, transactionID string) (transactionModel, error) {
	var row transactionModel
	err := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("transaction_id = ?", transactionID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return transactionModel{}, domainerrors.ErrTransactionNotFound
		}
		return transactionModel{}, err
	}
	return row, nil
}

func saveListing(tx *gorm.DB, listing entities.Listing) error {
	row := listingModelFromEntity(listing)
	return tx.Model(&listingModel{}).
		Where("listing_id = ?", listing.ListingID).
		Updates(map[string]any{
			"available":  row.Available,
			"reserved":   row.Reserved,
			"settled":    row.Settled,
			"status":     row.Status,
			"updated_at": row.UpdatedAt,
		}).Error
}

func saveTransaction(tx *gorm.DB, txn entities.Transaction) error {
	row := transactionModelFromEntity(txn)
	return tx.Model(&transactionModel{}).
		Where("transaction_id = ?", txn.TransactionID).
		Updates(map[string]any{
			"tx_hash":        row.TxHash,
			"failure_reason": row.FailureReason,
			"ambiguous":      row.Ambiguous,
			"status":         row.Status,
			"submitted_at":   row.SubmittedAt,
			"updated_at":     row.UpdatedAt,
		}).Error
}

type listingModel struct {
	ListingID     string     `gorm:"column:listing_id;primaryKey"`
	AssetID       string     `gorm:"column:asset_id"`
	TokenAddress  string     `gorm:"column:token_address"`
	Seller        string     `gorm:"column:seller"`
	PricePerToken uint64     `gorm:"column:price_per_token"`
	Quantity      uint64     `gorm:"column:quantity"`
	Available     uint64     `gorm:"column:available"`
	Reserved      uint64     `gorm:"column:reserved"`
	Settled       uint64     `gorm:"column:settled"`
	Status        string     `gorm:"column:status"`
	ExpiresAt     *time.Time `gorm:"column:expires_at"`
	CreatedAt     time.Time  `gorm:"column:created_at"`
	UpdatedAt     time.Time  `gorm:"column:updated_at"`
}

func (listingModel) TableName() string {
	return "listings"
}

type transactionModel struct {
	TransactionID string     `gorm:"column:transaction_id;primaryKey"`
	ListingID     string     `gorm:"column:listing_id"`
	AssetID       string     `gorm:"column:asset_id"`
	TokenAddress  string     `gorm:"column:token_address"`
	Buyer         string     `gorm:"column:buyer"`
	Seller        string     `gorm:"column:seller"`
	Quantity      uint64     `gorm:"column:quantity"`
	PricePerToken uint64     `gorm:"column:price_per_token"`
	TotalPrice    uint64     `gorm:"column:total_price"`
	TxHash        string     `gorm:"column:tx_hash"`
	FailureReason string     `gorm:"column:failure_reason"`
	Ambiguous     bool       `gorm:"column:ambiguous"`
	Status        string     `gorm:"column:status"`
	SubmittedAt   *time.Time `gorm:"column:submitted_at"`
	CreatedAt     time.Time  `gorm:"column:created_at"`
	UpdatedAt     time.Time  `gorm:"column:updated_at"`
}

func (transactionModel) TableName() string {
	return "transactions"
}

func listingModelFromEntity(listing entities.Listing) listingModel {
	var expiresAt *time.Time
	if !listing.ExpiresAt.IsZero() {
		value := listing.ExpiresAt.UTC()
		expiresAt = &value
	}
	return listingModel{
		ListingID:     listing.ListingID,
		AssetID:       listing.AssetID,
		TokenAddress:  listing.TokenAddress,
		Seller:        listing.Seller,
		PricePerToken: listing.PricePerToken,
		Quantity:      listing.Quantity,
		Available:     listing.Available,
		Reserved:      listing.Reserved,
		Settled:       listing.Settled,
		Status:        string(listing.Status),
		ExpiresAt:     expiresAt,
		CreatedAt:     listing.CreatedAt.UTC(),
		UpdatedAt:     listing.UpdatedAt.UTC(),
	}
}

func (m listingModel) toEntity() entities.Listing {
	expiresAt := time.Time{}
	if m.ExpiresAt != nil {
		expiresAt = m.ExpiresAt.UTC()
	}
	return entities.Listing{
		ListingID:     m.ListingID,
		AssetID:       m.AssetID,
		TokenAddress:  m.TokenAddress,
		Seller:        m.Seller,
		PricePerToken: m.PricePerToken,
		Quantity:      m.Quantity,
		Available:     m.Available,
		Reserved:      m.Reserved,
		Settled:       m.Settled,
		Status:        entities.ListingStatus(m.Status),
		ExpiresAt:     expiresAt,
		CreatedAt:     m.CreatedAt.UTC(),
		UpdatedAt:     m.UpdatedAt.UTC(),
	}
}

func transactionModelFromEntity(txn entities.Transaction) transactionModel {
	var submittedAt *time.Time
	if !txn.SubmittedAt.IsZero() {
		value := txn.SubmittedAt.UTC()
		submittedAt = &value
	}
	return transactionModel{
		TransactionID: txn.TransactionID,
		ListingID:     txn.ListingID,
		AssetID:       txn.AssetID,
		TokenAddress:  txn.TokenAddress,
		Buyer:         txn.Buyer,
		Seller:        txn.Seller,
		Quantity:      txn.Quantity,
		PricePerToken: txn.PricePerToken,
		TotalPrice:    txn.TotalPrice,
		TxHash:        txn.TxHash,
		FailureReason: txn.FailureReason,
		Ambiguous:     txn.Ambiguous,
		Status:        string(txn.Status),
		SubmittedAt:   submittedAt,
		CreatedAt:     txn.CreatedAt.UTC(),
		UpdatedAt:     txn.UpdatedAt.UTC(),
	}
}

func (m transactionModel) toEntity() entities.Transaction {
	submittedAt := time.Time{}
	if m.SubmittedAt != nil {
		submittedAt = m.SubmittedAt.UTC()
	}
	return entities.Transaction{
		TransactionID: m.TransactionID,
		ListingID:     m.ListingID,
		AssetID:       m.AssetID,
		TokenAddress:  m.TokenAddress,
		Buyer:         m.Buyer,
		Seller:        m.Seller,
		Quantity:      m.Quantity,
		PricePerToken: m.PricePerToken,
		TotalPrice:    m.TotalPrice,
		TxHash:        m.TxHash,
		FailureReason: m.FailureReason,
		Ambiguous:     m.Ambiguous,
		Status:        entities.TransactionStatus(m.Status),
		SubmittedAt:   submittedAt,
		CreatedAt:     m.CreatedAt.UTC(),
		UpdatedAt:     m.UpdatedAt.UTC(),
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func decodeCursor(cursor string) int {
	if strings.TrimSpace(cursor) == "" {
		return 0
	}
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return 0
	}
	index, err := strconv.Atoi(string(raw))
	if err != nil || index < 0 {
		return 0
	}
	return index
}

func encodeCursor(offset int) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.Itoa(offset)))
}
