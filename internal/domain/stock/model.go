package stock

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Stock represents a tradable instrument.
// Maps to the stock table.
type Stock struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	CurrentPrice decimal.Decimal `json:"currentPrice"`
	LastUpdate   time.Time       `json:"lastUpdate"`

	// Version is the store's optimistic lock token. The store assigns and
	// advances it; callers only carry it back unchanged.
	Version int64 `json:"-"`

	// ExchangeIDs lists the exchanges this stock is currently a member of.
	ExchangeIDs []int64 `json:"exchangeIds"`
}

// PriceHistory is one entry of a stock's price ledger. Entries are immutable
// once written; the ledger is append-only, oldest first.
// Maps to the stock_price_history table.
type PriceHistory struct {
	ID        int64           `json:"-"`
	StockID   int64           `json:"-"`
	Price     decimal.Decimal `json:"price"`
	Timestamp time.Time       `json:"timestamp"`
}

// PriceScale is the fixed-point scale prices are stored at, matching the
// NUMERIC(19,4) columns.
const PriceScale = 4

// QuantizePrice rounds a price to the storage scale.
func QuantizePrice(price decimal.Decimal) decimal.Decimal {
	return price.Round(PriceScale)
}

// ValidateName checks that a stock name is non-blank.
func ValidateName(name string) bool {
	return strings.TrimSpace(name) != ""
}

// ValidatePrice checks that a price is strictly positive.
func ValidatePrice(price decimal.Decimal) bool {
	return price.IsPositive()
}
