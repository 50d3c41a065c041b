package ledger

import "errors"

// Validation errors raised by writer commands. These are caller-input
// errors: they are returned synchronously, nothing is written, and no
// retry is attempted.
var (
	ErrInvalidAmount = errors.New("amount must be positive")
	ErrInvalidStatus = errors.New("invalid bet status")
	ErrUnknownPlayer = errors.New("player not found")
	ErrUnknownSeason = errors.New("season not found")
	ErrUnknownBet    = errors.New("bet not found")
)
