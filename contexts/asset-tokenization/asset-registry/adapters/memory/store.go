package memory

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	application "tokeniza/contexts/asset-tokenization/asset-registry/application"
	"tokeniza/contexts/asset-tokenization/asset-registry/domain/entities"
	domainerrors "tokeniza/contexts/asset-tokenization/asset-registry/domain/errors"
	"tokeniza/contexts/asset-tokenization/asset-registry/ports"
)

// Store is an in-memory adapter implementing the asset-registry ports for
// local runtime and tests. It is not intended as production persistence.
type Store struct {
	mu       sync.RWMutex
	assets   map[string]entities.Asset
	sequence uint64
	logger   *slog.Logger
}

func NewStore(logger *slog.Logger) *Store {
	return &Store{
		assets: make(map[string]entities.Asset),
		logger: application.ResolveLogger(logger),
	}
}

func (s *Store) CreateAsset(_ context.Context, asset entities.Asset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.assets[asset.AssetID]; ok {
		return domainerrors.ErrRepositoryInvariantBroke
	}
	s.assets[asset.AssetID] = asset
	return nil
}

func (s *Store) GetAsset(_ context.Context, assetID string) (entities.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	asset, ok := s.assets[assetID]
	if !ok {
		return entities.Asset{}, domainerrors.ErrAssetNotFound
	}
	return asset, nil
}

func (s *Store) ListAssets(_ context.Context, filter ports.AssetListFilter) ([]entities.Asset, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var filtered []entities.Asset
	for _, asset := range s.assets {
		if filter.Status != "" && asset.Status != filter.Status {
			continue
		}
		if filter.Owner != "" && asset.Owner != filter.Owner {
			continue
		}
		filtered = append(filtered, asset)
	}
	sort.Slice(filtered, func(i, j int) bool {
		if filtered[i].CreatedAt.Equal(filtered[j].CreatedAt) {
			return filtered[i].AssetID < filtered[j].AssetID
		}
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})

	start := decodeCursor(filter.Cursor)
	if start > len(filtered) {
		start = len(filtered)
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	end := start + limit
	if end > len(filtered) {
		end = len(filtered)
	}

	page := append([]entities.Asset(nil), filtered[start:end]...)
	nextCursor := ""
	if end < len(filtered) {
		nextCursor = encodeCursor(end)
	}
	return page, nextCursor, nil
}

func (s *Store) UpdateStatus(
	_ context.Context,
	assetID string,
	from entities.AssetStatus,
	to entities.AssetStatus,
	updatedAt time.Time,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	asset, ok := s.assets[assetID]
	if !ok {
		return domainerrors.ErrAssetNotFound
	}
	if asset.Status != from {
		return domainerrors.ErrInvalidTransition
	}
	asset.Status = to
	asset.UpdatedAt = updatedAt.UTC()
	s.assets[assetID] = asset
	return nil
}

func (s *Store) SetTokenized(_ context.Context, assetID string, tokenAddress string, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	asset, ok := s.assets[assetID]
	if !ok {
		return domainerrors.ErrAssetNotFound
	}
	if asset.Status != entities.AssetStatusApproved || asset.TokenAddress != "" {
		return domainerrors.ErrPreconditionFailed
	}
	asset.TokenAddress = tokenAddress
	asset.Status = entities.AssetStatusTokenized
	asset.UpdatedAt = updatedAt.UTC()
	s.assets[assetID] = asset
	return nil
}

func (s *Store) ReduceAvailableSupply(
	_ context.Context,
	assetID string,
	quantity uint64,
	updatedAt time.Time,
) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	asset, ok := s.assets[assetID]
	if !ok {
		return 0, domainerrors.ErrAssetNotFound
	}
	if asset.AvailableSupply < quantity {
		return asset.AvailableSupply, domainerrors.ErrInsufficientSupply
	}
	asset.AvailableSupply -= quantity
	asset.UpdatedAt = updatedAt.UTC()
	s.assets[assetID] = asset
	return asset.AvailableSupply, nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	value := atomic.AddUint64(&s.sequence, 1)
	return fmt.Sprintf("asset-%d", value), nil
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
