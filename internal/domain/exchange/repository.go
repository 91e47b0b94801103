package exchange

import "context"

// Repository defines the interface for exchange and membership data access.
type Repository interface {
	// ListExchanges returns all exchanges, membership ids populated.
	ListExchanges(ctx context.Context) ([]Exchange, error)

	// GetExchange returns an exchange by id, membership ids populated.
	// Fails with ErrNotFound.
	GetExchange(ctx context.Context, id int64) (*Exchange, error)

	// CreateExchange persists ex, assigning ID. A new exchange has no
	// members. Fails with ErrNameTaken on a name collision.
	CreateExchange(ctx context.Context, ex *Exchange) error

	// UpdateExchange saves name, description and live flag.
	// Fails with ErrNotFound or ErrNameTaken.
	UpdateExchange(ctx context.Context, ex *Exchange) error

	// DeleteExchange removes the exchange and its membership rows in one
	// step. Member stocks are untouched. Fails with ErrNotFound.
	DeleteExchange(ctx context.Context, id int64) error

	// AddMember inserts a membership row.
	// Fails with ErrAlreadyListed on a duplicate pair.
	AddMember(ctx context.Context, exchangeID, stockID int64) error

	// RemoveMember removes a membership row.
	// Fails with ErrNotLinked when the pair does not exist.
	RemoveMember(ctx context.Context, exchangeID, stockID int64) error

	// ExchangeIDsForStock returns the ids of every exchange currently
	// containing the stock.
	ExchangeIDsForStock(ctx context.Context, stockID int64) ([]int64, error)

	// MemberCount returns the current membership size of an exchange.
	MemberCount(ctx context.Context, exchangeID int64) (int, error)

	// RemoveStockFromAllExchanges unlinks the stock from every exchange.
	RemoveStockFromAllExchanges(ctx context.Context, stockID int64) error

	// DeactivateBelowThreshold clears live_in_market for every listed
	// exchange whose member count is strictly below threshold. Ids that no
	// longer resolve are skipped; an empty set is a no-op.
	DeactivateBelowThreshold(ctx context.Context, exchangeIDs []int64, threshold int) error
}
