package memory

import (
	"context"
	"sort"

	"github.com/Hesham-Youssef/StockManager/internal/domain/exchange"
)

// sortByID keeps List output deterministic.
func sortByID(out []exchange.Exchange) {
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
}

// ListExchanges returns all exchanges ordered by id.
func (s *Store) ListExchanges(ctx context.Context) ([]exchange.Exchange, error) {
	defer s.rlock()()

	out := make([]exchange.Exchange, 0, len(s.data.exchanges))
	for _, ex := range s.data.exchanges {
		ex.StockIDs = s.data.stockIDsForExchange(ex.ID)
		out = append(out, ex)
	}
	sortByID(out)
	return out, nil
}

// GetExchange returns an exchange by id.
func (s *Store) GetExchange(ctx context.Context, id int64) (*exchange.Exchange, error) {
	defer s.rlock()()

	ex, ok := s.data.exchanges[id]
	if !ok {
		return nil, exchange.ErrNotFound
	}
	ex.StockIDs = s.data.stockIDsForExchange(id)
	return &ex, nil
}

// CreateExchange persists ex with an empty membership set.
func (s *Store) CreateExchange(ctx context.Context, ex *exchange.Exchange) error {
	defer s.lock()()

	for _, existing := range s.data.exchanges {
		if existing.Name == ex.Name {
			return exchange.ErrNameTaken
		}
	}

	s.data.nextExchangeID++
	ex.ID = s.data.nextExchangeID
	ex.StockIDs = []int64{}

	rec := *ex
	rec.StockIDs = nil
	s.data.exchanges[ex.ID] = rec
	s.data.members[ex.ID] = make(map[int64]bool)
	return nil
}

// UpdateExchange saves name, description and live flag.
func (s *Store) UpdateExchange(ctx context.Context, ex *exchange.Exchange) error {
	defer s.lock()()

	if _, ok := s.data.exchanges[ex.ID]; !ok {
		return exchange.ErrNotFound
	}
	for id, existing := range s.data.exchanges {
		if id != ex.ID && existing.Name == ex.Name {
			return exchange.ErrNameTaken
		}
	}

	rec := *ex
	rec.StockIDs = nil
	s.data.exchanges[ex.ID] = rec
	return nil
}

// DeleteExchange removes the exchange and its membership rows.
func (s *Store) DeleteExchange(ctx context.Context, id int64) error {
	defer s.lock()()

	if _, ok := s.data.exchanges[id]; !ok {
		return exchange.ErrNotFound
	}
	delete(s.data.exchanges, id)
	delete(s.data.members, id)
	return nil
}

// AddMember inserts a membership row.
func (s *Store) AddMember(ctx context.Context, exchangeID, stockID int64) error {
	defer s.lock()()

	set := s.data.members[exchangeID]
	if set == nil {
		set = make(map[int64]bool)
		s.data.members[exchangeID] = set
	}
	if set[stockID] {
		return exchange.ErrAlreadyListed
	}
	set[stockID] = true
	return nil
}

// RemoveMember removes a membership row.
func (s *Store) RemoveMember(ctx context.Context, exchangeID, stockID int64) error {
	defer s.lock()()

	set := s.data.members[exchangeID]
	if set == nil || !set[stockID] {
		return exchange.ErrNotLinked
	}
	delete(set, stockID)
	return nil
}

// ExchangeIDsForStock returns the ids of exchanges containing the stock.
func (s *Store) ExchangeIDsForStock(ctx context.Context, stockID int64) ([]int64, error) {
	defer s.rlock()()
	return s.data.exchangeIDsForStock(stockID), nil
}

// MemberCount returns the membership size of an exchange.
func (s *Store) MemberCount(ctx context.Context, exchangeID int64) (int, error) {
	defer s.rlock()()
	return len(s.data.members[exchangeID]), nil
}

// RemoveStockFromAllExchanges unlinks the stock everywhere.
func (s *Store) RemoveStockFromAllExchanges(ctx context.Context, stockID int64) error {
	defer s.lock()()

	for _, set := range s.data.members {
		delete(set, stockID)
	}
	return nil
}

// DeactivateBelowThreshold clears the live flag for every listed exchange
// whose membership fell below threshold. Unknown ids are skipped.
func (s *Store) DeactivateBelowThreshold(ctx context.Context, exchangeIDs []int64, threshold int) error {
	defer s.lock()()

	for _, id := range exchangeIDs {
		ex, ok := s.data.exchanges[id]
		if !ok {
			continue
		}
		if len(s.data.members[id]) < threshold && ex.LiveInMarket {
			ex.LiveInMarket = false
			s.data.exchanges[id] = ex
		}
	}
	return nil
}
