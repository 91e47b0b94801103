// Package stock implements the stock lifecycle: creation, price updates with
// their ledger entries, and the cascading delete across exchange memberships.
package stock

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/Hesham-Youssef/StockManager/internal/domain/market"
	"github.com/Hesham-Youssef/StockManager/internal/domain/stock"
)

// Service is the stock lifecycle manager.
type Service struct {
	store market.Store

	// liveThreshold is the minimum member count for an exchange to stay
	// live; the delete cascade repairs exchanges that drop below it.
	liveThreshold int
}

// NewService creates a stock service.
func NewService(store market.Store, liveThreshold int) *Service {
	return &Service{store: store, liveThreshold: liveThreshold}
}

// List returns all stocks.
func (s *Service) List(ctx context.Context) ([]stock.Stock, error) {
	return s.store.ListStocks(ctx)
}

// Get returns a stock by id.
func (s *Service) Get(ctx context.Context, id int64) (*stock.Stock, error) {
	return s.store.GetStock(ctx, id)
}

// Create registers a new stock with its first ledger entry. The initial
// price must be strictly positive; the transport layer validates this too,
// but the engine re-asserts it.
func (s *Service) Create(ctx context.Context, name, description string, initialPrice decimal.Decimal) (*stock.Stock, error) {
	if !stock.ValidateName(name) {
		return nil, stock.ErrBlankName
	}
	initialPrice = stock.QuantizePrice(initialPrice)
	if !stock.ValidatePrice(initialPrice) {
		return nil, stock.ErrInvalidPrice
	}

	now := time.Now().UTC()
	st := &stock.Stock{
		Name:         name,
		Description:  description,
		CurrentPrice: initialPrice,
		LastUpdate:   now,
	}
	entry := stock.PriceHistory{Price: initialPrice, Timestamp: now}

	if err := s.store.CreateStock(ctx, st, entry); err != nil {
		return nil, err
	}

	log.Info().
		Int64("stock_id", st.ID).
		Str("name", st.Name).
		Str("price", initialPrice.String()).
		Msg("stock created")
	return st, nil
}

// UpdatePrice appends a ledger entry and moves the current price. The write
// is guarded by the store's optimistic version; a lost race surfaces as
// stock.ErrPriceConflict and is never retried here.
func (s *Service) UpdatePrice(ctx context.Context, id int64, newPrice decimal.Decimal) (*stock.Stock, error) {
	newPrice = stock.QuantizePrice(newPrice)
	if !stock.ValidatePrice(newPrice) {
		return nil, stock.ErrInvalidPrice
	}

	var updated *stock.Stock
	err := s.store.InTx(ctx, func(tx market.Store) error {
		st, err := tx.GetStock(ctx, id)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		st.CurrentPrice = newPrice
		st.LastUpdate = now
		entry := stock.PriceHistory{StockID: id, Price: newPrice, Timestamp: now}

		if err := tx.UpdateStockPrice(ctx, st, entry); err != nil {
			return err
		}
		updated = st
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Int64("stock_id", id).
		Str("price", newPrice.String()).
		Msg("stock price updated")
	return updated, nil
}

// PriceHistory returns the ledger oldest-first.
func (s *Service) PriceHistory(ctx context.Context, id int64) ([]stock.PriceHistory, error) {
	return s.store.History(ctx, id, true)
}

// PriceHistoryDesc returns the same ledger newest-first, for display.
func (s *Service) PriceHistoryDesc(ctx context.Context, id int64) ([]stock.PriceHistory, error) {
	return s.store.History(ctx, id, false)
}

// Delete removes a stock, its ledger, and every membership row pointing at
// it, then deactivates affected exchanges that fell below the live
// threshold. All four steps are one transaction: a failure anywhere leaves
// no exchange referencing a deleted stock.
func (s *Service) Delete(ctx context.Context, id int64) error {
	err := s.store.InTx(ctx, func(tx market.Store) error {
		if _, err := tx.GetStock(ctx, id); err != nil {
			return err
		}

		affected, err := tx.ExchangeIDsForStock(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.RemoveStockFromAllExchanges(ctx, id); err != nil {
			return err
		}
		if err := tx.DeleteStock(ctx, id); err != nil {
			return err
		}
		return tx.DeactivateBelowThreshold(ctx, affected, s.liveThreshold)
	})
	if err != nil {
		return err
	}

	log.Info().Int64("stock_id", id).Msg("stock deleted")
	return nil
}
