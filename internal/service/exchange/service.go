// Package exchange implements the membership engine: exchange CRUD, member
// add/remove, and the live-in-market invariant. An exchange may only be live
// while it holds at least the configured minimum of member stocks.
package exchange

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/Hesham-Youssef/StockManager/internal/domain/exchange"
	"github.com/Hesham-Youssef/StockManager/internal/domain/market"
	"github.com/Hesham-Youssef/StockManager/internal/domain/stock"
)

// Service is the exchange membership engine.
type Service struct {
	store market.Store

	// liveThreshold guards the NOT_LIVE -> LIVE transition and drives the
	// automatic repair in the other direction.
	liveThreshold int
}

// NewService creates an exchange service.
func NewService(store market.Store, liveThreshold int) *Service {
	return &Service{store: store, liveThreshold: liveThreshold}
}

// UpdateInput carries a partial update; nil fields are left unchanged.
type UpdateInput struct {
	Name         *string
	Description  *string
	LiveInMarket *bool
}

// List returns all exchanges.
func (s *Service) List(ctx context.Context) ([]exchange.Exchange, error) {
	return s.store.ListExchanges(ctx)
}

// Get returns an exchange by id.
func (s *Service) Get(ctx context.Context, id int64) (*exchange.Exchange, error) {
	return s.store.GetExchange(ctx, id)
}

// Create registers a new exchange with zero members. liveInMarket=true can
// never pass the guard here since the membership set starts empty; the check
// stays as an explicit rejection rather than an implicit impossibility.
func (s *Service) Create(ctx context.Context, name, description string, liveInMarket bool) (*exchange.Exchange, error) {
	if !exchange.ValidateName(name) {
		return nil, exchange.ErrBlankName
	}
	if liveInMarket {
		return nil, exchange.ErrBelowLiveThreshold
	}

	ex := &exchange.Exchange{Name: name, Description: description, LiveInMarket: liveInMarket}
	if err := s.store.CreateExchange(ctx, ex); err != nil {
		return nil, err
	}

	log.Info().Int64("exchange_id", ex.ID).Str("name", ex.Name).Msg("exchange created")
	return ex, nil
}

// Update applies a partial update. Raising the live flag is only allowed
// while the member count meets the threshold; lowering it always is.
// Membership changes never raise the flag on their own.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (*exchange.Exchange, error) {
	var updated *exchange.Exchange
	err := s.store.InTx(ctx, func(tx market.Store) error {
		ex, err := tx.GetExchange(ctx, id)
		if err != nil {
			return err
		}

		if in.Name != nil {
			if !exchange.ValidateName(*in.Name) {
				return exchange.ErrBlankName
			}
			ex.Name = *in.Name
		}
		if in.Description != nil {
			ex.Description = *in.Description
		}
		if in.LiveInMarket != nil {
			if *in.LiveInMarket {
				count, err := tx.MemberCount(ctx, id)
				if err != nil {
					return err
				}
				if count < s.liveThreshold {
					return exchange.ErrBelowLiveThreshold
				}
			}
			ex.LiveInMarket = *in.LiveInMarket
		}

		if err := tx.UpdateExchange(ctx, ex); err != nil {
			return err
		}
		updated = ex
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Int64("exchange_id", id).Msg("exchange updated")
	return updated, nil
}

// Delete removes an exchange and its membership rows. Member stocks are not
// affected.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteExchange(ctx, id); err != nil {
		return err
	}
	log.Info().Int64("exchange_id", id).Msg("exchange deleted")
	return nil
}

// AddStock links a stock to an exchange. Unresolved ids surface as rule
// violations, matching the contract the API has always had, and a duplicate
// pair fails without touching the membership set. Adding never flips the
// live flag, even when the count crosses the threshold upward.
func (s *Service) AddStock(ctx context.Context, exchangeID, stockID int64) (*exchange.Exchange, error) {
	var updated *exchange.Exchange
	err := s.store.InTx(ctx, func(tx market.Store) error {
		if _, err := tx.GetExchange(ctx, exchangeID); err != nil {
			if errors.Is(err, exchange.ErrNotFound) {
				return exchange.ErrExchangeMissing
			}
			return err
		}
		if _, err := tx.GetStock(ctx, stockID); err != nil {
			if errors.Is(err, stock.ErrNotFound) {
				return exchange.ErrStockMissing
			}
			return err
		}
		if err := tx.AddMember(ctx, exchangeID, stockID); err != nil {
			return err
		}

		ex, err := tx.GetExchange(ctx, exchangeID)
		if err != nil {
			return err
		}
		updated = ex
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Int64("exchange_id", exchangeID).
		Int64("stock_id", stockID).
		Msg("stock added to exchange")
	return updated, nil
}

// RemoveStock unlinks a stock from an exchange. The removal itself always
// succeeds for a linked pair; if the count then sits below the threshold
// while the exchange is live, the flag is repaired to false in the same
// transaction rather than the operation being rejected.
func (s *Service) RemoveStock(ctx context.Context, exchangeID, stockID int64) (*exchange.Exchange, error) {
	var updated *exchange.Exchange
	deactivated := false
	err := s.store.InTx(ctx, func(tx market.Store) error {
		ex, err := tx.GetExchange(ctx, exchangeID)
		if err != nil {
			return err
		}
		if err := tx.RemoveMember(ctx, exchangeID, stockID); err != nil {
			return err
		}

		count, err := tx.MemberCount(ctx, exchangeID)
		if err != nil {
			return err
		}
		if count < s.liveThreshold && ex.LiveInMarket {
			ex.LiveInMarket = false
			if err := tx.UpdateExchange(ctx, ex); err != nil {
				return err
			}
			deactivated = true
		}

		fresh, err := tx.GetExchange(ctx, exchangeID)
		if err != nil {
			return err
		}
		updated = fresh
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Int64("exchange_id", exchangeID).
		Int64("stock_id", stockID).
		Bool("deactivated", deactivated).
		Msg("stock removed from exchange")
	return updated, nil
}

// DeactivateBelowThreshold clears the live flag for every listed exchange
// whose member count is below threshold. Safe for empty sets and stale ids,
// and idempotent: re-running it changes nothing.
func (s *Service) DeactivateBelowThreshold(ctx context.Context, exchangeIDs []int64, threshold int) error {
	return s.store.InTx(ctx, func(tx market.Store) error {
		return tx.DeactivateBelowThreshold(ctx, exchangeIDs, threshold)
	})
}
