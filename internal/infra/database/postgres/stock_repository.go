package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Hesham-Youssef/StockManager/internal/domain/stock"
)

// ListStocks returns all stocks with their membership ids.
func (s *Store) ListStocks(ctx context.Context) ([]stock.Stock, error) {
	query := `
		SELECT id, name, description, current_price, last_update, version
		FROM stock
		ORDER BY id
	`
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query stocks: %w", err)
	}
	defer rows.Close()

	stocks := []stock.Stock{}
	index := map[int64]int{}
	for rows.Next() {
		var st stock.Stock
		if err := rows.Scan(&st.ID, &st.Name, &st.Description, &st.CurrentPrice, &st.LastUpdate, &st.Version); err != nil {
			return nil, fmt.Errorf("failed to scan stock: %w", err)
		}
		st.ExchangeIDs = []int64{}
		index[st.ID] = len(stocks)
		stocks = append(stocks, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stocks: %w", err)
	}

	memberRows, err := s.db.Query(ctx, `SELECT stock_id, exchange_id FROM stock_exchange_stock ORDER BY exchange_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query memberships: %w", err)
	}
	defer memberRows.Close()

	for memberRows.Next() {
		var stockID, exchangeID int64
		if err := memberRows.Scan(&stockID, &exchangeID); err != nil {
			return nil, fmt.Errorf("failed to scan membership: %w", err)
		}
		if i, ok := index[stockID]; ok {
			stocks[i].ExchangeIDs = append(stocks[i].ExchangeIDs, exchangeID)
		}
	}
	if err := memberRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating memberships: %w", err)
	}

	return stocks, nil
}

// GetStock returns a stock by id with its membership ids.
func (s *Store) GetStock(ctx context.Context, id int64) (*stock.Stock, error) {
	query := `
		SELECT id, name, description, current_price, last_update, version
		FROM stock
		WHERE id = $1
	`
	var st stock.Stock
	err := s.db.QueryRow(ctx, query, id).Scan(
		&st.ID, &st.Name, &st.Description, &st.CurrentPrice, &st.LastUpdate, &st.Version,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, stock.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get stock: %w", err)
	}

	ids, err := s.ExchangeIDsForStock(ctx, id)
	if err != nil {
		return nil, err
	}
	st.ExchangeIDs = ids
	return &st, nil
}

// CreateStock inserts the stock and its initial history entry in one
// transaction.
func (s *Store) CreateStock(ctx context.Context, st *stock.Stock, initial stock.PriceHistory) error {
	return s.withTx(ctx, func(view *Store) error {
		query := `
			INSERT INTO stock (name, description, current_price, last_update, version)
			VALUES ($1, $2, $3, $4, 1)
			RETURNING id, version
		`
		err := view.db.QueryRow(ctx, query, st.Name, st.Description, st.CurrentPrice, st.LastUpdate).
			Scan(&st.ID, &st.Version)
		if err != nil {
			if isUniqueViolation(err) {
				return stock.ErrNameTaken
			}
			return fmt.Errorf("failed to insert stock: %w", err)
		}
		st.ExchangeIDs = []int64{}

		historyQuery := `
			INSERT INTO stock_price_history (stock_id, price, "timestamp")
			VALUES ($1, $2, $3)
		`
		if _, err := view.db.Exec(ctx, historyQuery, st.ID, initial.Price, initial.Timestamp); err != nil {
			return fmt.Errorf("failed to insert initial history entry: %w", err)
		}
		return nil
	})
}

// UpdateStockPrice moves the current price and appends the history entry,
// guarded by the version column.
func (s *Store) UpdateStockPrice(ctx context.Context, st *stock.Stock, entry stock.PriceHistory) error {
	return s.withTx(ctx, func(view *Store) error {
		query := `
			UPDATE stock
			SET current_price = $1, last_update = $2, version = version + 1
			WHERE id = $3 AND version = $4
			RETURNING version
		`
		err := view.db.QueryRow(ctx, query, st.CurrentPrice, st.LastUpdate, st.ID, st.Version).
			Scan(&st.Version)
		if err != nil {
			if !errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("failed to update stock price: %w", err)
			}
			// Zero rows: either the row is gone or another writer advanced
			// the version first.
			var exists bool
			if checkErr := view.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM stock WHERE id = $1)`, st.ID).
				Scan(&exists); checkErr != nil {
				return fmt.Errorf("failed to check stock existence: %w", checkErr)
			}
			if !exists {
				return stock.ErrNotFound
			}
			return stock.ErrPriceConflict
		}

		historyQuery := `
			INSERT INTO stock_price_history (stock_id, price, "timestamp")
			VALUES ($1, $2, $3)
		`
		if _, err := view.db.Exec(ctx, historyQuery, st.ID, entry.Price, entry.Timestamp); err != nil {
			return fmt.Errorf("failed to insert history entry: %w", err)
		}
		return nil
	})
}

// DeleteStock removes the stock and its history entries in one transaction.
func (s *Store) DeleteStock(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(view *Store) error {
		if _, err := view.db.Exec(ctx, `DELETE FROM stock_price_history WHERE stock_id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete history entries: %w", err)
		}
		tag, err := view.db.Exec(ctx, `DELETE FROM stock WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete stock: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return stock.ErrNotFound
		}
		return nil
	})
}

// History reads the ledger for a stock in the requested direction.
func (s *Store) History(ctx context.Context, stockID int64, asc bool) ([]stock.PriceHistory, error) {
	direction := "DESC"
	if asc {
		direction = "ASC"
	}
	query := fmt.Sprintf(`
		SELECT id, stock_id, price, "timestamp"
		FROM stock_price_history
		WHERE stock_id = $1
		ORDER BY "timestamp" %s, id %s
	`, direction, direction)

	rows, err := s.db.Query(ctx, query, stockID)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	entries := []stock.PriceHistory{}
	for rows.Next() {
		var e stock.PriceHistory
		if err := rows.Scan(&e.ID, &e.StockID, &e.Price, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history: %w", err)
	}
	return entries, nil
}
