package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Hesham-Youssef/StockManager/internal/domain/exchange"
)

// ListExchanges returns all exchanges with their membership ids.
func (s *Store) ListExchanges(ctx context.Context) ([]exchange.Exchange, error) {
	query := `
		SELECT id, name, description, live_in_market
		FROM stock_exchange
		ORDER BY id
	`
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query exchanges: %w", err)
	}
	defer rows.Close()

	exchanges := []exchange.Exchange{}
	index := map[int64]int{}
	for rows.Next() {
		var ex exchange.Exchange
		if err := rows.Scan(&ex.ID, &ex.Name, &ex.Description, &ex.LiveInMarket); err != nil {
			return nil, fmt.Errorf("failed to scan exchange: %w", err)
		}
		ex.StockIDs = []int64{}
		index[ex.ID] = len(exchanges)
		exchanges = append(exchanges, ex)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating exchanges: %w", err)
	}

	memberRows, err := s.db.Query(ctx, `SELECT exchange_id, stock_id FROM stock_exchange_stock ORDER BY stock_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query memberships: %w", err)
	}
	defer memberRows.Close()

	for memberRows.Next() {
		var exchangeID, stockID int64
		if err := memberRows.Scan(&exchangeID, &stockID); err != nil {
			return nil, fmt.Errorf("failed to scan membership: %w", err)
		}
		if i, ok := index[exchangeID]; ok {
			exchanges[i].StockIDs = append(exchanges[i].StockIDs, stockID)
		}
	}
	if err := memberRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating memberships: %w", err)
	}

	return exchanges, nil
}

// GetExchange returns an exchange by id with its membership ids.
func (s *Store) GetExchange(ctx context.Context, id int64) (*exchange.Exchange, error) {
	query := `
		SELECT id, name, description, live_in_market
		FROM stock_exchange
		WHERE id = $1
	`
	var ex exchange.Exchange
	err := s.db.QueryRow(ctx, query, id).Scan(&ex.ID, &ex.Name, &ex.Description, &ex.LiveInMarket)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, exchange.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get exchange: %w", err)
	}

	rows, err := s.db.Query(ctx, `SELECT stock_id FROM stock_exchange_stock WHERE exchange_id = $1 ORDER BY stock_id`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query members: %w", err)
	}
	defer rows.Close()

	ex.StockIDs = []int64{}
	for rows.Next() {
		var stockID int64
		if err := rows.Scan(&stockID); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		ex.StockIDs = append(ex.StockIDs, stockID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating members: %w", err)
	}
	return &ex, nil
}

// CreateExchange inserts the exchange.
func (s *Store) CreateExchange(ctx context.Context, ex *exchange.Exchange) error {
	query := `
		INSERT INTO stock_exchange (name, description, live_in_market)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	err := s.db.QueryRow(ctx, query, ex.Name, ex.Description, ex.LiveInMarket).Scan(&ex.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return exchange.ErrNameTaken
		}
		return fmt.Errorf("failed to insert exchange: %w", err)
	}
	ex.StockIDs = []int64{}
	return nil
}

// UpdateExchange saves name, description and live flag.
func (s *Store) UpdateExchange(ctx context.Context, ex *exchange.Exchange) error {
	query := `
		UPDATE stock_exchange
		SET name = $1, description = $2, live_in_market = $3
		WHERE id = $4
	`
	tag, err := s.db.Exec(ctx, query, ex.Name, ex.Description, ex.LiveInMarket, ex.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return exchange.ErrNameTaken
		}
		return fmt.Errorf("failed to update exchange: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return exchange.ErrNotFound
	}
	return nil
}

// DeleteExchange removes the exchange and its membership rows in one
// transaction.
func (s *Store) DeleteExchange(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(view *Store) error {
		if _, err := view.db.Exec(ctx, `DELETE FROM stock_exchange_stock WHERE exchange_id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete membership rows: %w", err)
		}
		tag, err := view.db.Exec(ctx, `DELETE FROM stock_exchange WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete exchange: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return exchange.ErrNotFound
		}
		return nil
	})
}

// AddMember inserts a membership row.
func (s *Store) AddMember(ctx context.Context, exchangeID, stockID int64) error {
	query := `
		INSERT INTO stock_exchange_stock (exchange_id, stock_id)
		VALUES ($1, $2)
	`
	if _, err := s.db.Exec(ctx, query, exchangeID, stockID); err != nil {
		if isUniqueViolation(err) {
			return exchange.ErrAlreadyListed
		}
		return fmt.Errorf("failed to insert membership: %w", err)
	}
	return nil
}

// RemoveMember removes a membership row.
func (s *Store) RemoveMember(ctx context.Context, exchangeID, stockID int64) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM stock_exchange_stock WHERE exchange_id = $1 AND stock_id = $2`, exchangeID, stockID)
	if err != nil {
		return fmt.Errorf("failed to delete membership: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return exchange.ErrNotLinked
	}
	return nil
}

// ExchangeIDsForStock returns the ids of exchanges containing the stock.
func (s *Store) ExchangeIDsForStock(ctx context.Context, stockID int64) ([]int64, error) {
	rows, err := s.db.Query(ctx, `SELECT exchange_id FROM stock_exchange_stock WHERE stock_id = $1 ORDER BY exchange_id`, stockID)
	if err != nil {
		return nil, fmt.Errorf("failed to query exchange ids: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan exchange id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating exchange ids: %w", err)
	}
	return ids, nil
}

// MemberCount returns the membership size of an exchange.
func (s *Store) MemberCount(ctx context.Context, exchangeID int64) (int, error) {
	var count int
	err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM stock_exchange_stock WHERE exchange_id = $1`, exchangeID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count members: %w", err)
	}
	return count, nil
}

// RemoveStockFromAllExchanges unlinks the stock everywhere.
func (s *Store) RemoveStockFromAllExchanges(ctx context.Context, stockID int64) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM stock_exchange_stock WHERE stock_id = $1`, stockID); err != nil {
		return fmt.Errorf("failed to unlink stock: %w", err)
	}
	return nil
}

// DeactivateBelowThreshold clears the live flag for every listed exchange
// whose member count is below threshold. The correlated count keeps
// exchanges that dropped to zero members in scope.
func (s *Store) DeactivateBelowThreshold(ctx context.Context, exchangeIDs []int64, threshold int) error {
	if len(exchangeIDs) == 0 {
		return nil
	}
	query := `
		UPDATE stock_exchange e
		SET live_in_market = false
		WHERE e.id = ANY($1)
		  AND (SELECT COUNT(*) FROM stock_exchange_stock m WHERE m.exchange_id = e.id) < $2
	`
	if _, err := s.db.Exec(ctx, query, exchangeIDs, threshold); err != nil {
		return fmt.Errorf("failed to deactivate exchanges: %w", err)
	}
	return nil
}
