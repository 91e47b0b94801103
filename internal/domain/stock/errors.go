package stock

import "errors"

var (
	// Validation errors
	ErrBlankName    = errors.New("stock name must not be blank")
	ErrInvalidPrice = errors.New("price must be positive")

	// Data errors
	ErrNotFound  = errors.New("stock not found")
	ErrNameTaken = errors.New("stock name already exists")

	// ErrPriceConflict reports a lost optimistic update on a price change.
	ErrPriceConflict = errors.New("stock was concurrently modified")
)
