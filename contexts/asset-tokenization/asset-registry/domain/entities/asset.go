package entities

import (
	"strings"
	"time"

	domainerrors "tokeniza/contexts/asset-tokenization/asset-registry/domain/errors"
)

type AssetType string

const (
	AssetTypeRealEstate AssetType = "RealEstate"
	AssetTypeArt        AssetType = "Art"
	AssetTypeCommodity  AssetType = "Commodity"
	AssetTypeStock      AssetType = "Stock"
	AssetTypeBond       AssetType = "Bond"
	AssetTypeOther      AssetType = "Other"
)

// ParseAssetType validates the category and its label. A label is required
// for Other and rejected everywhere else.
func ParseAssetType(value string, label string) (AssetType, string, error) {
	assetType := AssetType(value)
	switch assetType {
	case AssetTypeRealEstate, AssetTypeArt, AssetTypeCommodity, AssetTypeStock, AssetTypeBond:
		if strings.TrimSpace(label) != "" {
			return "", "", domainerrors.ErrInvalidAssetRequest
		}
		return assetType, "", nil
	case AssetTypeOther:
		label = strings.TrimSpace(label)
		if label == "" {
			return "", "", domainerrors.ErrInvalidAssetRequest
		}
		return assetType, label, nil
	default:
		return "", "", domainerrors.ErrInvalidAssetRequest
	}
}

type AssetStatus string

const (
	AssetStatusDraft           AssetStatus = "Draft"
	AssetStatusPendingApproval AssetStatus = "PendingApproval"
	AssetStatusApproved        AssetStatus = "Approved"
	AssetStatusTokenized       AssetStatus = "Tokenized"
	AssetStatusTrading         AssetStatus = "Trading"
	AssetStatusSold            AssetStatus = "Sold"
	AssetStatusRetired         AssetStatus = "Retired"
)

// Metadata is the off-chain documentation attached to an asset.
type Metadata struct {
	Location       string
	ValuationDate  time.Time
	Appraiser      string
	Documents      []string
	Images         []string
	AdditionalInfo map[string]string
}

// Asset is the off-chain record of a real-world asset and its tokenization
// lifecycle. AvailableSupply is only mutated through the trading engine's
// reservation path; TokenAddress is set exactly once from status Approved.
type Asset struct {
	AssetID         string
	Name            string
	Description     string
	AssetType       AssetType
	AssetTypeLabel  string
	Value           uint64
	TotalSupply     uint64
	AvailableSupply uint64
	TokenAddress    string
	Owner           string
	Metadata        Metadata
	Status          AssetStatus
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func NewAsset(
	assetID string,
	name string,
	description string,
	assetType AssetType,
	assetTypeLabel string,
	value uint64,
	totalSupply uint64,
	owner string,
	metadata Metadata,
	now time.Time,
) (Asset, error) {
	if strings.TrimSpace(assetID) == "" ||
		strings.TrimSpace(name) == "" ||
		strings.TrimSpace(owner) == "" {
		return Asset{}, domainerrors.ErrInvalidAssetRequest
	}
	if totalSupply == 0 {
		return Asset{}, domainerrors.ErrInvalidAssetRequest
	}

	return Asset{
		AssetID:         assetID,
		Name:            name,
		Description:     description,
		AssetType:       assetType,
		AssetTypeLabel:  assetTypeLabel,
		Value:           value,
		TotalSupply:     totalSupply,
		AvailableSupply: totalSupply,
		Owner:           owner,
		Metadata:        metadata,
		Status:          AssetStatusDraft,
		CreatedAt:       now.UTC(),
		UpdatedAt:       now.UTC(),
	}, nil
}

// SubmitForApproval moves Draft into review.
func (a *Asset) SubmitForApproval(now time.Time) error {
	if a.Status != AssetStatusDraft {
		return domainerrors.ErrInvalidTransition
	}
	a.Status = AssetStatusPendingApproval
	a.UpdatedAt = now.UTC()
	return nil
}

// Approve clears an asset for tokenization.
func (a *Asset) Approve(now time.Time) error {
	if a.Status != AssetStatusPendingApproval {
		return domainerrors.ErrInvalidTransition
	}
	a.Status = AssetStatusApproved
	a.UpdatedAt = now.UTC()
	return nil
}

// Retire cancels an asset that never reached the chain. Retired is terminal.
func (a *Asset) Retire(now time.Time) error {
	if a.Status != AssetStatusDraft && a.Status != AssetStatusPendingApproval {
		return domainerrors.ErrInvalidTransition
	}
	a.Status = AssetStatusRetired
	a.UpdatedAt = now.UTC()
	return nil
}

// MarkTokenized records the deployed contract. Only legal from Approved with
// no prior token address; re-application is an error, not a second mint.
func (a *Asset) MarkTokenized(tokenAddress string, now time.Time) error {
	if a.Status != AssetStatusApproved || a.TokenAddress != "" {
		return domainerrors.ErrPreconditionFailed
	}
	if strings.TrimSpace(tokenAddress) == "" {
		return domainerrors.ErrPreconditionFailed
	}
	a.TokenAddress = tokenAddress
	a.Status = AssetStatusTokenized
	a.UpdatedAt = now.UTC()
	return nil
}

// EnableTrading flips Tokenized to Trading on first successful listing.
// Already-Trading is a no-op so concurrent listing creation stays idempotent.
func (a *Asset) EnableTrading(now time.Time) error {
	switch a.Status {
	case AssetStatusTrading:
		return nil
	case AssetStatusTokenized:
		a.Status = AssetStatusTrading
		a.UpdatedAt = now.UTC()
		return nil
	default:
		return domainerrors.ErrInvalidTransition
	}
}

// Tradable reports whether listings may be created against the asset.
func (a Asset) Tradable() bool {
	return a.Status == AssetStatusTokenized || a.Status == AssetStatusTrading
}
