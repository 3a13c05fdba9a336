package errors

import "errors"

var (
	ErrAssetNotFound            = errors.New("asset not found")
	ErrInvalidAssetRequest      = errors.New("invalid asset request")
	ErrInvalidTokenizeRequest   = errors.New("invalid tokenize request")
	ErrInvalidTransition        = errors.New("invalid asset status transition")
	ErrPreconditionFailed       = errors.New("asset tokenization precondition failed")
	ErrInsufficientSupply       = errors.New("asset available supply insufficient")
	ErrRepositoryInvariantBroke = errors.New("repository invariant violated")
)
