package memory

import (
	"context"
	"sort"

	"github.com/Hesham-Youssef/StockManager/internal/domain/stock"
)

// ListStocks returns all stocks ordered by id.
func (s *Store) ListStocks(ctx context.Context) ([]stock.Stock, error) {
	defer s.rlock()()

	out := make([]stock.Stock, 0, len(s.data.stocks))
	for _, st := range s.data.stocks {
		st.ExchangeIDs = s.data.exchangeIDsForStock(st.ID)
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// GetStock returns a stock by id.
func (s *Store) GetStock(ctx context.Context, id int64) (*stock.Stock, error) {
	defer s.rlock()()

	st, ok := s.data.stocks[id]
	if !ok {
		return nil, stock.ErrNotFound
	}
	st.ExchangeIDs = s.data.exchangeIDsForStock(id)
	return &st, nil
}

// CreateStock persists s and its initial history entry.
func (s *Store) CreateStock(ctx context.Context, st *stock.Stock, initial stock.PriceHistory) error {
	defer s.lock()()

	for _, existing := range s.data.stocks {
		if existing.Name == st.Name {
			return stock.ErrNameTaken
		}
	}

	s.data.nextStockID++
	st.ID = s.data.nextStockID
	st.Version = 1
	st.ExchangeIDs = []int64{}

	s.data.nextHistoryID++
	initial.ID = s.data.nextHistoryID
	initial.StockID = st.ID

	rec := *st
	rec.ExchangeIDs = nil
	s.data.stocks[st.ID] = rec
	s.data.history[st.ID] = []stock.PriceHistory{initial}
	return nil
}

// UpdateStockPrice applies a price change guarded by the version token.
func (s *Store) UpdateStockPrice(ctx context.Context, st *stock.Stock, entry stock.PriceHistory) error {
	defer s.lock()()

	cur, ok := s.data.stocks[st.ID]
	if !ok {
		return stock.ErrNotFound
	}
	if cur.Version != st.Version {
		return stock.ErrPriceConflict
	}

	cur.CurrentPrice = st.CurrentPrice
	cur.LastUpdate = st.LastUpdate
	cur.Version++

	s.data.nextHistoryID++
	entry.ID = s.data.nextHistoryID
	entry.StockID = st.ID

	s.data.stocks[st.ID] = cur
	s.data.history[st.ID] = append(s.data.history[st.ID], entry)
	st.Version = cur.Version
	return nil
}

// DeleteStock removes the stock and its history entries.
func (s *Store) DeleteStock(ctx context.Context, id int64) error {
	defer s.lock()()

	if _, ok := s.data.stocks[id]; !ok {
		return stock.ErrNotFound
	}
	delete(s.data.stocks, id)
	delete(s.data.history, id)
	return nil
}

// History returns the ledger for a stock, oldest or newest first.
func (s *Store) History(ctx context.Context, stockID int64, asc bool) ([]stock.PriceHistory, error) {
	defer s.rlock()()

	ledger := s.data.history[stockID]
	out := make([]stock.PriceHistory, len(ledger))
	if asc {
		copy(out, ledger)
		return out, nil
	}
	for i, e := range ledger {
		out[len(ledger)-1-i] = e
	}
	return out, nil
}
