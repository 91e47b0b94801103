// Package memory implements market.Store on plain maps. It backs the
// DATABASE_DRIVER=memory mode and the engine tests; the upstream deployment
// this replaces ran on an in-memory database as well.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/Hesham-Youssef/StockManager/internal/domain/exchange"
	"github.com/Hesham-Youssef/StockManager/internal/domain/market"
	"github.com/Hesham-Youssef/StockManager/internal/domain/stock"
	"github.com/Hesham-Youssef/StockManager/internal/domain/user"
)

// Store implements market.Store. The zero value is not usable; call NewStore.
type Store struct {
	mu   *sync.RWMutex
	data *data

	// inTx marks a transactional view handed to an InTx callback. Views
	// never lock; the root holds the write lock for the whole transaction.
	inTx bool
}

type data struct {
	stocks    map[int64]stock.Stock
	history   map[int64][]stock.PriceHistory
	exchanges map[int64]exchange.Exchange
	members   map[int64]map[int64]bool // exchange id -> member stock ids
	users     map[int64]user.User

	nextStockID    int64
	nextHistoryID  int64
	nextExchangeID int64
	nextUserID     int64
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		mu: &sync.RWMutex{},
		data: &data{
			stocks:    make(map[int64]stock.Stock),
			history:   make(map[int64][]stock.PriceHistory),
			exchanges: make(map[int64]exchange.Exchange),
			members:   make(map[int64]map[int64]bool),
			users:     make(map[int64]user.User),
		},
	}
}

// InTx runs fn against a clone of the data set and swaps the clone in only
// when fn returns nil, so every exit path is either a full commit or a full
// rollback. A view joins the enclosing transaction.
func (s *Store) InTx(ctx context.Context, fn func(tx market.Store) error) error {
	if s.inTx {
		return fn(s)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	clone := s.data.clone()
	view := &Store{mu: s.mu, data: clone, inTx: true}
	if err := fn(view); err != nil {
		return err
	}
	s.data = clone
	return nil
}

func (s *Store) rlock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.RLock()
	return s.mu.RUnlock
}

func (s *Store) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (d *data) clone() *data {
	c := &data{
		stocks:         make(map[int64]stock.Stock, len(d.stocks)),
		history:        make(map[int64][]stock.PriceHistory, len(d.history)),
		exchanges:      make(map[int64]exchange.Exchange, len(d.exchanges)),
		members:        make(map[int64]map[int64]bool, len(d.members)),
		users:          make(map[int64]user.User, len(d.users)),
		nextStockID:    d.nextStockID,
		nextHistoryID:  d.nextHistoryID,
		nextExchangeID: d.nextExchangeID,
		nextUserID:     d.nextUserID,
	}
	for id, s := range d.stocks {
		c.stocks[id] = s
	}
	for id, h := range d.history {
		c.history[id] = append([]stock.PriceHistory(nil), h...)
	}
	for id, ex := range d.exchanges {
		c.exchanges[id] = ex
	}
	for id, set := range d.members {
		cp := make(map[int64]bool, len(set))
		for sid := range set {
			cp[sid] = true
		}
		c.members[id] = cp
	}
	for id, u := range d.users {
		cu := u
		cu.Roles = append([]string(nil), u.Roles...)
		c.users[id] = cu
	}
	return c
}

func (d *data) exchangeIDsForStock(stockID int64) []int64 {
	ids := []int64{}
	for exID, set := range d.members {
		if set[stockID] {
			ids = append(ids, exID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (d *data) stockIDsForExchange(exchangeID int64) []int64 {
	ids := []int64{}
	for sid := range d.members[exchangeID] {
		ids = append(ids, sid)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
