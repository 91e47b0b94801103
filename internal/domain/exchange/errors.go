package exchange

import "errors"

var (
	// Validation errors
	ErrBlankName = errors.New("exchange name must not be blank")

	// Data errors
	ErrNotFound  = errors.New("exchange not found")
	ErrNotLinked = errors.New("Stock not linked to exchange")
	ErrNameTaken = errors.New("exchange name already exists")

	// ErrAlreadyListed reports a duplicate membership insert.
	ErrAlreadyListed = errors.New("Stock already exists in this exchange")

	// ErrBelowLiveThreshold is the live guard failure. The message is part of
	// the API contract.
	ErrBelowLiveThreshold = errors.New("Exchange must have at least 10 stocks to be live")

	// The add-member contract surfaces unresolved ids as rule violations
	// rather than not-found, so they get their own sentinels.
	ErrExchangeMissing = errors.New("Exchange not found")
	ErrStockMissing    = errors.New("Stock not found")
)
