package httptransport

type AssetMetadataDTO struct {
	Location       string            `json:"location,omitempty"`
	ValuationDate  string            `json:"valuation_date,omitempty"`
	Appraiser      string            `json:"appraiser,omitempty"`
	Documents      []string          `json:"documents,omitempty"`
	Images         []string          `json:"images,omitempty"`
	AdditionalInfo map[string]string `json:"additional_info,omitempty"`
}

type CreateAssetRequest struct {
	Name           string           `json:"name"`
	Description    string           `json:"description"`
	AssetType      string           `json:"asset_type"`
	AssetTypeLabel string           `json:"asset_type_label,omitempty"`
	Value          uint64           `json:"value"`
	TotalSupply    uint64           `json:"total_supply"`
	Owner          string           `json:"owner"`
	Metadata       AssetMetadataDTO `json:"metadata"`
}

type AssetDTO struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	Description     string           `json:"description"`
	AssetType       string           `json:"asset_type"`
	AssetTypeLabel  string           `json:"asset_type_label,omitempty"`
	Value           string           `json:"value"`
	TotalSupply     uint64           `json:"total_supply"`
	AvailableSupply uint64           `json:"available_supply"`
	TokenAddress    string           `json:"token_address,omitempty"`
	Owner           string           `json:"owner"`
	Metadata        AssetMetadataDTO `json:"metadata"`
	Status          string           `json:"status"`
	CreatedAt       string           `json:"created_at"`
	UpdatedAt       string           `json:"updated_at"`
}

type ListAssetsResponse struct {
	Items      []AssetDTO `json:"items"`
	Count      int        `json:"count"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

type TokenizeAssetRequest struct {
	Symbol      string `json:"symbol"`
	Decimals    uint8  `json:"decimals"`
	TotalSupply uint64 `json:"total_supply"`
}

type TokenizeAssetResponse struct {
	AssetID         string `json:"asset_id"`
	ContractAddress string `json:"contract_address"`
	TxHash          string `json:"tx_hash,omitempty"`
	Symbol          string `json:"symbol"`
	Decimals        uint8  `json:"decimals"`
	TotalSupply     uint64 `json:"total_supply"`
	Status          string `json:"status"`
}
