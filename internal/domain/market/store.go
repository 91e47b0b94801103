// Package market composes the per-entity repositories into the single
// transactional store the services run against.
package market

import (
	"context"

	"github.com/Hesham-Youssef/StockManager/internal/domain/exchange"
	"github.com/Hesham-Youssef/StockManager/internal/domain/stock"
	"github.com/Hesham-Youssef/StockManager/internal/domain/user"
)

// Store is the persistence surface of the system. Every method is atomic on
// its own; multi-entity mutations go through InTx.
type Store interface {
	stock.Repository
	exchange.Repository
	user.Repository

	// InTx runs fn against a view of the store whose writes commit together.
	// Commit happens only when fn returns nil; any error or panic rolls the
	// whole transaction back. Calling InTx on a transactional view joins the
	// enclosing transaction.
	InTx(ctx context.Context, fn func(tx Store) error) error
}
