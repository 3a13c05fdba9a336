package httpadapter

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"tokeniza/contexts/asset-tokenization/asset-registry/application/commands"
	"tokeniza/contexts/asset-tokenization/asset-registry/application/queries"
	"tokeniza/contexts/asset-tokenization/asset-registry/domain/entities"
	domainerrors "tokeniza/contexts/asset-tokenization/asset-registry/domain/errors"
	httptransport "tokeniza/contexts/asset-tokenization/asset-registry/transport/http"
)

type Handler struct {
	CreateAsset   commands.CreateAssetUseCase
	SubmitAsset   commands.SubmitAssetUseCase
	ApproveAsset  commands.ApproveAssetUseCase
	RetireAsset   commands.RetireAssetUseCase
	TokenizeAsset commands.TokenizeAssetUseCase
	GetAsset      queries.GetAssetUseCase
	ListAssets    queries.ListAssetsUseCase
	Logger        *slog.Logger
}

// ListAssetsHandler godoc
// @Summary List assets
// @Description Returns the asset catalog with status/owner filters and cursor pagination.
// @Tags assets
// @Produce json
// @Param status query string false "Asset status filter"
// @Param owner query string false "Owner address filter"
// @Param cursor query string false "Cursor token"
// @Param limit query int false "Page size"
// @Success 200 {object} httptransport.ListAssetsResponse
// @Router /api/v1/assets [get]
func (h Handler) ListAssetsHandler(ctx context.Context, status, owner, cursor string, limit int) (httptransport.ListAssetsResponse, error) {
	result, err := h.ListAssets.Execute(ctx, queries.ListAssetsQuery{
		Status: status,
		Owner:  owner,
		Cursor: cursor,
		Limit:  limit,
	})
	if err != nil {
		return httptransport.ListAssetsResponse{}, err
	}

	items := make([]httptransport.AssetDTO, 0, len(result.Items))
	for _, asset := range result.Items {
		items = append(items, mapAsset(asset))
	}
	return httptransport.ListAssetsResponse{
		Items:      items,
		Count:      len(items),
		NextCursor: result.NextCursor,
	}, nil
}

// CreateAssetHandler godoc
// @Summary Register an asset
// @Description Creates a new real-world asset record in Draft.
// @Tags assets
// @Accept json
// @Produce json
// @Param request body httptransport.CreateAssetRequest true "Asset payload"
// @Success 200 {object} httptransport.AssetDTO
// @Router /api/v1/assets [post]
func (h Handler) CreateAssetHandler(ctx context.Context, req httptransport.CreateAssetRequest) (httptransport.AssetDTO, error) {
	valuationDate := time.Now().UTC()
	if req.Metadata.ValuationDate != "" {
		parsed, err := time.Parse(time.RFC3339, req.Metadata.ValuationDate)
		if err != nil {
			return httptransport.AssetDTO{}, domainerrors.ErrInvalidAssetRequest
		}
		valuationDate = parsed
	}

	asset, err := h.CreateAsset.Execute(ctx, commands.CreateAssetCommand{
		Name:           req.Name,
		Description:    req.Description,
		AssetType:      req.AssetType,
		AssetTypeLabel: req.AssetTypeLabel,
		Value:          req.Value,
		TotalSupply:    req.TotalSupply,
		Owner:          req.Owner,
		Metadata: entities.Metadata{
			Location:       req.Metadata.Location,
			ValuationDate:  valuationDate,
			Appraiser:      req.Metadata.Appraiser,
			Documents:      req.Metadata.Documents,
			Images:         req.Metadata.Images,
			AdditionalInfo: req.Metadata.AdditionalInfo,
		},
	})
	if err != nil {
		return httptransport.AssetDTO{}, err
	}
	return mapAsset(asset), nil
}

// GetAssetHandler godoc
// @Summary Get asset details
// @Tags assets
// @Produce json
// @Param id path string true "Asset id"
// @Success 200 {object} httptransport.AssetDTO
// @Router /api/v1/assets/{id} [get]
func (h Handler) GetAssetHandler(ctx context.Context, assetID string) (httptransport.AssetDTO, error) {
	result, err := h.GetAsset.Execute(ctx, queries.GetAssetQuery{AssetID: assetID})
	if err != nil {
		return httptransport.AssetDTO{}, err
	}
	return mapAsset(result.Asset), nil
}

// SubmitAssetHandler godoc
// @Summary Submit an asset for approval
// @Tags assets
// @Produce json
// @Param id path string true "Asset id"
// @Success 200 {object} httptransport.AssetDTO
// @Router /api/v1/assets/{id}/submit [post]
func (h Handler) SubmitAssetHandler(ctx context.Context, assetID string) (httptransport.AssetDTO, error) {
	asset, err := h.SubmitAsset.Execute(ctx, assetID)
	if err != nil {
		return httptransport.AssetDTO{}, err
	}
	return mapAsset(asset), nil
}

// ApproveAssetHandler godoc
// @Summary Approve an asset for tokenization
// @Tags assets
// @Produce json
// @Param id path string true "Asset id"
// @Success 200 {object} httptransport.AssetDTO
// @Router /api/v1/assets/{id}/approve [post]
func (h Handler) ApproveAssetHandler(ctx context.Context, assetID string) (httptransport.AssetDTO, error) {
	asset, err := h.ApproveAsset.Execute(ctx, assetID)
	if err != nil {
		return httptransport.AssetDTO{}, err
	}
	return mapAsset(asset), nil
}

// RetireAssetHandler godoc
// @Summary Retire an asset
// @Tags assets
// @Produce json
// @Param id path string true "Asset id"
// @Success 200 {object} httptransport.AssetDTO
// @Router /api/v1/assets/{id}/retire [post]
func (h Handler) RetireAssetHandler(ctx context.Context, assetID string) (httptransport.AssetDTO, error) {
	asset, err := h.RetireAsset.Execute(ctx, assetID)
	if err != nil {
		return httptransport.AssetDTO{}, err
	}
	return mapAsset(asset), nil
}

// TokenizeAssetHandler godoc
// @Summary Tokenize an approved asset
// @Description Deploys the asset token contract and records its address.
// @Tags assets
// @Accept json
// @Produce json
// @Param id path string true "Asset id"
// @Param request body httptransport.TokenizeAssetRequest true "Tokenize payload"
// @Success 200 {object} httptransport.TokenizeAssetResponse
// @Router /api/v1/assets/{id}/tokenize [post]
func (h Handler) TokenizeAssetHandler(ctx context.Context, assetID string, req httptransport.TokenizeAssetRequest) (httptransport.TokenizeAssetResponse, error) {
	result, err := h.TokenizeAsset.Execute(ctx, commands.TokenizeAssetCommand{
		AssetID:     assetID,
		Symbol:      req.Symbol,
		Decimals:    req.Decimals,
		TotalSupply: req.TotalSupply,
	})
	if err != nil {
		return httptransport.TokenizeAssetResponse{}, err
	}
	return httptransport.TokenizeAssetResponse{
		AssetID:         result.Asset.AssetID,
		ContractAddress: result.Token.ContractAddress,
		TxHash:          result.Token.TxHash,
		Symbol:          req.Symbol,
		Decimals:        req.Decimals,
		TotalSupply:     req.TotalSupply,
		Status:          string(result.Asset.Status),
	}, nil
}

func mapAsset(asset entities.Asset) httptransport.AssetDTO {
	return httptransport.AssetDTO{
		ID:              asset.AssetID,
		Name:            asset.Name,
		Description:     asset.Description,
		AssetType:       string(asset.AssetType),
		AssetTypeLabel:  asset.AssetTypeLabel,
		Value:           strconv.FormatUint(asset.Value, 10),
		TotalSupply:     asset.TotalSupply,
		AvailableSupply: asset.AvailableSupply,
		TokenAddress:    asset.TokenAddress,
		Owner:           asset.Owner,
		Metadata: httptransport.AssetMetadataDTO{
			Location:       asset.Metadata.Location,
			ValuationDate:  asset.Metadata.ValuationDate.UTC().Format(time.RFC3339),
			Appraiser:      asset.Metadata.Appraiser,
			Documents:      asset.Metadata.Documents,
			Images:         asset.Metadata.Images,
			AdditionalInfo: asset.Metadata.AdditionalInfo,
		},
		Status:    string(asset.Status),
		CreatedAt: asset.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: asset.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
