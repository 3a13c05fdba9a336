package errors

import "errors"

var (
	// ErrListingNotFound indicates the listing does not exist.
	ErrListingNotFound = errors.New("listing not found")

	// ErrInvalidListingRequest indicates listing input failed validation.
	ErrInvalidListingRequest = errors.New("invalid listing request")

	// ErrInvalidPurchaseRequest indicates purchase input failed validation.
	ErrInvalidPurchaseRequest = errors.New("invalid purchase request")

	// ErrListingUnavailable indicates the listing is not active, is expired,
	// or cannot cover the requested quantity.
	ErrListingUnavailable = errors.New("listing unavailable")

	// ErrListingReserved indicates an open reservation blocks the operation.
	ErrListingReserved = errors.New("listing has an open reservation")

	// ErrListingNotOwned indicates the caller is not the listing's seller.
	ErrListingNotOwned = errors.New("listing not owned by caller")

	// ErrAssetNotTradable indicates the referenced asset is not in a state
	// that permits listing.
	ErrAssetNotTradable = errors.New("asset not tradable")

	// ErrInsufficientSellerBalance indicates the seller's on-chain token
	// balance cannot cover the listed quantity.
	ErrInsufficientSellerBalance = errors.New("insufficient seller token balance")

	// ErrTransactionNotFound indicates the transaction does not exist.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrTransactionFinalized indicates the transaction already reached a
	// terminal state and cannot change again.
	ErrTransactionFinalized = errors.New("transaction already finalized")

	// ErrRepositoryInvariantBroke indicates a persistence-layer consistency
	// violation, such as reserved quantity going negative.
	ErrRepositoryInvariantBroke = errors.New("repository invariant broken")
)
