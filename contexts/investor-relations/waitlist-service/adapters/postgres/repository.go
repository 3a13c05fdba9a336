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

	"tokeniza/contexts/investor-relations/waitlist-service/domain/entities"
	domainerrors "tokeniza/contexts/investor-relations/waitlist-service/domain/errors"
	"tokeniza/contexts/investor-relations/waitlist-service/ports"

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

func (r *Repository) AddEntry(ctx context.Context, entry entities.Entry) error {
	row, err := entryModelFromEntity(entry)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *Repository) GetEntry(ctx context.Context, entryID string) (entities.Entry, error) {
	var row entryModel
	err := r.db.WithContext(ctx).
		Where("entry_id = ?", entryID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Entry{}, domainerrors.ErrEntryNotFound
		}
		return entities.Entry{}, err
	}
	return row.toEntity()
}

func (r *Repository) ListEntries(ctx context.Context, filter ports.EntryFilter) ([]entities.Entry, string, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	tx := r.db.WithContext(ctx).Model(&entryModel{})
	if filter.Status != "" {
		tx = tx.Where("status = ?", string(filter.Status))
	}
	tx = tx.
		Order(clause.OrderByColumn{Column: clause.Column{Name: "created_at"}, Desc: false}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "entry_id"}, Desc: false})

	offset := decodeCursor(filter.Cursor)
	var rows []entryModel
	if err := tx.Offset(offset).Limit(limit + 1).Find(&rows).Error; err != nil {
		return nil, "", err
	}

	nextCursor := ""
	if len(rows) > limit {
		nextCursor = encodeCursor(offset + limit)
		rows = rows[:limit]
	}

	items := make([]entities.Entry, 0, len(rows))
	for _, row := range rows {
		item, err := row.toEntity()
		if err != nil {
			return nil, "", err
		}
		items = append(items, item)
	}
	return items, nextCursor, nil
}

func (r *Repository) UpdateEntry(ctx context.Context, entry entities.Entry) error {
	row, err := entryModelFromEntity(entry)
	if err != nil {
		return err
	}
	result := r.db.WithContext(ctx).
		Model(&entryModel{}).
		Where("entry_id = ?", entry.EntryID).
		Updates(map[string]any{
			"status":       row.Status,
			"contacted_at": row.ContactedAt,
			"updated_at":   row.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrEntryNotFound
	}
	return nil
}

func (r *Repository) Stats(ctx context.Context) (ports.Stats, error) {
	stats := ports.Stats{
		ByStatus:          make(map[entities.WaitlistStatus]int),
		ByInterestArea:    make(map[string]int),
		ByInvestmentRange: make(map[entities.InvestmentRange]int),
	}

	var rows []entryModel
	if err := r.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return ports.Stats{}, err
	}
	for _, row := range rows {
		entry, err := row.toEntity()
		if err != nil {
			return ports.Stats{}, err
		}
		stats.TotalEntries++
		stats.ByStatus[entry.Status]++
		for _, area := range entry.InterestAreas {
			stats.ByInterestArea[area]++
		}
		if entry.InvestmentRange != entities.InvestmentRangeUndisclosed {
			stats.ByInvestmentRange[entry.InvestmentRange]++
		}
	}
	return stats, nil
}

type entryModel struct {
	EntryID         string     `gorm:"column:entry_id;primaryKey"`
	Email           string     `gorm:"column:email;uniqueIndex"`
	Name            string     `gorm:"column:name"`
	InterestAreas   []byte     `gorm:"column:interest_areas"`
	InvestmentRange string     `gorm:"column:investment_range"`
	Status          string     `gorm:"column:status"`
	ContactedAt     *time.Time `gorm:"column:contacted_at"`
	CreatedAt       time.Time  `gorm:"column:created_at"`
	UpdatedAt       time.Time  `gorm:"column:updated_at"`
}

func (entryModel) TableName() string {
	return "waitlist_entries"
}

func entryModelFromEntity(entry entities.Entry) (entryModel, error) {
	areas, err := json.Marshal(entry.InterestAreas)
	if err != nil {
		return entryModel{}, err
	}
	var contactedAt *time.Time
	if !entry.ContactedAt.IsZero() {
		value := entry.ContactedAt.UTC()
		contactedAt = &value
	}
	return entryModel{
		EntryID:         entry.EntryID,
		Email:           entry.Email,
		Name:            entry.Name,
		InterestAreas:   areas,
		InvestmentRange: string(entry.InvestmentRange),
		Status:          string(entry.Status),
		ContactedAt:     contactedAt,
		CreatedAt:       entry.CreatedAt.UTC(),
		UpdatedAt:       entry.UpdatedAt.UTC(),
	}, nil
}

func (m entryModel) toEntity() (entities.Entry, error) {
	var areas []string
	if len(m.InterestAreas) > 0 {
		if err := json.Unmarshal(m.InterestAreas, &areas); err != nil {
			return entities.Entry{}, err
		}
	}
	contactedAt := time.Time{}
	if m.ContactedAt != nil {
		contactedAt = m.ContactedAt.UTC()
	}
	return entities.Entry{
		EntryID:         m.EntryID,
		Email:           m.Email,
		Name:            m.Name,
		InterestAreas:   areas,
		InvestmentRange: entities.InvestmentRange(m.InvestmentRange),
		Status:          entities.WaitlistStatus(m.Status),
		ContactedAt:     contactedAt,
		CreatedAt:       m.CreatedAt.UTC(),
		UpdatedAt:       m.UpdatedAt.UTC(),
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
