package biddingerrors

import "errors"

// Repository-level errors
var (
	ErrItemNotFound    = errors.New("item not found")
	ErrBidNotFound     = errors.New("bid not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrTimerNotFound   = errors.New("timer not found")
	ErrInvoiceNotFound = errors.New("invoice not found")
	ErrNoBids          = errors.New("no bids found for item")
	ErrUserNoBids      = errors.New("user has not placed any bids")
	ErrWriteFailed     = errors.New("store write failed")
	ErrAlreadyExists   = errors.New("record already exists")
)

// business logic errors
var (
	ErrInvalidBid        = errors.New("invalid bid")
	ErrInvalidInvoice    = errors.New("invalid invoice")
	ErrDeadlineExtended  = errors.New("deadline extended by a newer bid")
	ErrRecipientNotFound = errors.New("recipient not found")
)
