package stock

import "context"

// Repository defines the interface for stock data access.
type Repository interface {
	// ListStocks returns all stocks, membership ids populated.
	ListStocks(ctx context.Context) ([]Stock, error)

	// GetStock returns a stock by id, membership ids populated.
	// Fails with ErrNotFound.
	GetStock(ctx context.Context, id int64) (*Stock, error)

	// CreateStock persists s and its initial history entry atomically,
	// assigning ID and Version. Fails with ErrNameTaken on a name collision.
	CreateStock(ctx context.Context, s *Stock, initial PriceHistory) error

	// UpdateStockPrice persists CurrentPrice/LastUpdate and appends entry,
	// guarded by s.Version. Fails with ErrPriceConflict when another writer
	// advanced the version first, ErrNotFound when the stock is gone.
	// On success s.Version carries the new token.
	UpdateStockPrice(ctx context.Context, s *Stock, entry PriceHistory) error

	// DeleteStock removes the stock and its owned history entries.
	// Membership rows are not touched here; the caller unlinks them in the
	// same transaction. Fails with ErrNotFound.
	DeleteStock(ctx context.Context, id int64) error

	// History reads the ledger for a stock, oldest first when asc is true,
	// newest first otherwise. Both are views over the same entries.
	History(ctx context.Context, stockID int64, asc bool) ([]PriceHistory, error)
}
