package errors

import "errors"

var (
	// ErrEntryNotFound indicates the waitlist entry does not exist.
	ErrEntryNotFound = errors.New("waitlist entry not found")

	// ErrInvalidWaitlistRequest indicates waitlist input failed validation.
	ErrInvalidWaitlistRequest = errors.New("invalid waitlist request")

	// ErrDuplicateEmail indicates the email already joined the waitlist.
	ErrDuplicateEmail = errors.New("email already on waitlist")

	// ErrInvalidStatusChange indicates the requested funnel move is not
	// allowed from the entry's current status.
	ErrInvalidStatusChange = errors.New("invalid waitlist status change")
)
