package exchange

import "strings"

// Exchange groups member stocks and carries the live-in-market flag.
// Maps to the stock_exchange table; membership lives in the
// stock_exchange_stock join table.
type Exchange struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	LiveInMarket bool   `json:"liveInMarket"`

	// StockIDs is the current membership set. Order is irrelevant.
	StockIDs []int64 `json:"stockIds"`
}

// DefaultLiveThreshold is the minimum member count for an exchange to be
// live in market. Config uses it as the MARKET_LIVE_THRESHOLD fallback; the
// engine only ever sees the injected value.
const DefaultLiveThreshold = 10

// ValidateName checks that an exchange name is non-blank.
func ValidateName(name string) bool {
	return strings.TrimSpace(name) != ""
}
