package postgresadapter

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"tokeniza/contexts/asset-tokenization/asset-registry/domain/entities"
	domainerrors "tokeniza/contexts/asset-tokenization/asset-registry/domain/errors"
	"tokeniza/contexts/asset-tokenization/asset-registry/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

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

func (r *Repository) CreateAsset(ctx context.Context, asset entities.Asset) error {
	row, err := assetModelFromEntity(asset)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrRepositoryInvariantBroke
		}
		return err
	}
	return nil
}

func (r *Repository) GetAsset(ctx context.Context, assetID string) (entities.Asset, error) {
	var row assetModel
	err := r.db.WithContext(ctx).
		Where("asset_id = ?", assetID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Asset{}, domainerrors.ErrAssetNotFound
		}
		return entities.Asset{}, err
	}
	return row.toEntity()
}

func (r *Repository) ListAssets(ctx context.Context, filter ports.AssetListFilter) ([]entities.Asset, string, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}

	tx := r.db.WithContext(ctx).Model(&assetModel{})
	if filter.Status != "" {
		tx = tx.Where("status = ?", string(filter.Status))
	}
	if filter.Owner != "" {
		tx = tx.Where("owner = ?", filter.Owner)
	}
	tx = tx.
		Order(clause.OrderByColumn{Column: clause.Column{Name: "created_at"}, Desc: true}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "asset_id"}, Desc: false})

	offset := decodeCursor(filter.Cursor)
	var rows []assetModel
	if err := tx.Offset(offset).Limit(limit + 1).Find(&rows).Error; err != nil {
		return nil, "", err
	}

	nextCursor := ""
	if len(rows) > limit {
		nextCursor = encodeCursor(offset + limit)
		rows = rows[:limit]
	}

	items := make([]entities.Asset, 0, len(rows))
	for _, row := range rows {
		item, err := row.toEntity()
		if err != nil {
			return nil, "", err
		}
		items = append(items, item)
	}
	return items, nextCursor, nil
}

func (r *Repository) UpdateStatus(
	ctx context.Context,
	assetID string,
	from entities.AssetStatus,
	to entities.AssetStatus,
	updatedAt time.Time,
) error {
	result := r.db.WithContext(ctx).
		Model(&assetModel{}).
		Where("asset_id = ? AND status = ?", assetID, string(from)).
		Updates(map[string]any{
			"status":     string(to),
			"updated_at": updatedAt.UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).
			Model(&assetModel{}).
			Where("asset_id = ?", assetID).
			Count(&count).
			Error; err != nil {
			return err
		}
		if count == 0 {
			return domainerrors.ErrAssetNotFound
		}
		return domainerrors.ErrInvalidTransition
	}
	return nil
}

func (r *Repository) SetTokenized(ctx context.Context, assetID string, tokenAddress string, updatedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&assetModel{}).
		Where("asset_id = ? AND status = ? AND (token_address IS NULL OR token_address = '')",
			assetID, string(entities.AssetStatusApproved)).
		Updates(map[string]any{
			"token_address": tokenAddress,
			"status":        string(entities.AssetStatusTokenized),
			"updated_at":    updatedAt.UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).
			Model(&assetModel{}).
			Where("asset_id = ?", assetID).
			Count(&count).
			Error; err != nil {
			return err
		}
		if count == 0 {
			return domainerrors.ErrAssetNotFound
		}
		return domainerrors.ErrPreconditionFailed
	}
	return nil
}

func (r *Repository) ReduceAvailableSupply(
	ctx context.Context,
	assetID string,
	quantity uint64,
	updatedAt time.Time,
) (uint64, error) {
	var remaining uint64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row assetModel
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("asset_id = ?", assetID).
			First(&row).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrAssetNotFound
			}
			return err
		}
		if row.AvailableSupply < quantity {
			remaining = row.AvailableSupply
			return domainerrors.ErrInsufficientSupply
		}
		remaining = row.AvailableSupply - quantity
		return tx.Model(&assetModel{}).
			Where("asset_id = ?", assetID).
			Updates(map[string]any{
				"available_supply": remaining,
				"updated_at":       updatedAt.UTC(),
			}).Error
	})
	return remaining, err
}

type assetModel struct {
	AssetID         string    `gorm:"column:asset_id;primaryKey"`
	Name            string    `gorm:"column:name"`
	Description     string    `gorm:"column:description"`
	AssetType       string    `gorm:"column:asset_type"`
	AssetTypeLabel  string    `gorm:"column:asset_type_label"`
	Value           uint64    `gorm:"column:value"`
	TotalSupply     uint64    `gorm:"column:total_supply"`
	AvailableSupply uint64    `gorm:"column:available_supply"`
	TokenAddress    string    `gorm:"column:token_address"`
	Owner           string    `gorm:"column:owner"`
	Metadata        []byte    `gorm:"column:metadata"`
	Status          string    `gorm:"column:status"`
	CreatedAt       time.Time `gorm:"column:created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at"`
}

func (assetModel) TableName() string {
	return "assets"
}

type metadataDoc struct {
	Location       string            `json:"location,omitempty"`
	ValuationDate  time.Time         `json:"valuation_date"`
	Appraiser      string            `json:"appraiser,omitempty"`
	Documents      []string          `json:"documents"`
	Images         []string          `json:"images"`
	AdditionalInfo map[string]string `json:"additional_info,omitempty"`
}

func assetModelFromEntity(asset entities.Asset) (assetModel, error) {
	metadata, err := json.Marshal(metadataDoc{
		Location:       asset.Metadata.Location,
		ValuationDate:  asset.Metadata.ValuationDate.UTC(),
		Appraiser:      asset.Metadata.Appraiser,
		Documents:      asset.Metadata.Documents,
		Images:         asset.Metadata.Images,
		AdditionalInfo: asset.Metadata.AdditionalInfo,
	})
	if err != nil {
		return assetModel{}, err
	}
	return assetModel{
		AssetID:         asset.AssetID,
		Name:            asset.Name,
		Description:     asset.Description,
		AssetType:       string(asset.AssetType),
		AssetTypeLabel:  asset.AssetTypeLabel,
		Value:           asset.Value,
		TotalSupply:     asset.TotalSupply,
		AvailableSupply: asset.AvailableSupply,
		TokenAddress:    asset.TokenAddress,
		Owner:           asset.Owner,
		Metadata:        metadata,
		Status:          string(asset.Status),
		CreatedAt:       asset.CreatedAt.UTC(),
		UpdatedAt:       asset.UpdatedAt.UTC(),
	}, nil
}

func (m assetModel) toEntity() (entities.Asset, error) {
	var metadata metadataDoc
	if len(m.Metadata) > 0 {
		if err := json.Unmarshal(m.Metadata, &metadata); err != nil {
			return entities.Asset{}, err
		}
	}
	return entities.Asset{
		AssetID:         m.AssetID,
		Name:            m.Name,
		Description:     m.Description,
		AssetType:       entities.AssetType(m.AssetType),
		AssetTypeLabel:  m.AssetTypeLabel,
		Value:           m.Value,
		TotalSupply:     m.TotalSupply,
		AvailableSupply: m.AvailableSupply,
		TokenAddress:    m.TokenAddress,
		Owner:           m.Owner,
		Metadata: entities.Metadata{
			Location:       metadata.Location,
			ValuationDate:  metadata.ValuationDate.UTC(),
			Appraiser:      metadata.Appraiser,
			Documents:      metadata.Documents,
			Images:         metadata.Images,
			AdditionalInfo: metadata.AdditionalInfo,
		},
		Status:    entities.AssetStatus(m.Status),
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}, nil
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
