package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/Hesham-Youssef/StockManager/internal/api/response"
	"github.com/Hesham-Youssef/StockManager/internal/notify"
	stockservice "github.com/Hesham-Youssef/StockManager/internal/service/stock"
)

// StocksHandler handles stock API requests.
type StocksHandler struct {
	stocks *stockservice.Service
	sink   notify.Sink
}

// NewStocksHandler creates a StocksHandler.
func NewStocksHandler(stocks *stockservice.Service, sink notify.Sink) *StocksHandler {
	return &StocksHandler{stocks: stocks, sink: sink}
}

type createStockRequest struct {
	Name         string           `json:"name"`
	Description  string           `json:"description"`
	CurrentPrice *decimal.Decimal `json:"currentPrice"`
}

type priceUpdateRequest struct {
	CurrentPrice *decimal.Decimal `json:"currentPrice"`
}

// List handles GET /api/stocks
func (h *StocksHandler) List(w http.ResponseWriter, r *http.Request) {
	stocks, err := h.stocks.List(r.Context())
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, stocks)
}

// Get handles GET /api/stocks/{id}
func (h *StocksHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	st, err := h.stocks.Get(r.Context(), id)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, st)
}

// Create handles POST /api/stocks
func (h *StocksHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, r, "malformed request body")
		return
	}
	if req.CurrentPrice == nil {
		badRequest(w, r, "currentPrice is required")
		return
	}

	st, err := h.stocks.Create(r.Context(), req.Name, req.Description, *req.CurrentPrice)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	h.sink.Publish(notify.TopicStocks, st)
	response.JSON(w, http.StatusCreated, st)
}

// UpdatePrice handles PUT /api/stocks/{id}/price
func (h *StocksHandler) UpdatePrice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req priceUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, r, "malformed request body")
		return
	}
	if req.CurrentPrice == nil {
		badRequest(w, r, "currentPrice is required")
		return
	}

	st, err := h.stocks.UpdatePrice(r.Context(), id, *req.CurrentPrice)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	h.sink.Publish(notify.TopicStocks, st)
	response.JSON(w, http.StatusOK, st)
}

// Delete handles DELETE /api/stocks/{id}
func (h *StocksHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.stocks.Delete(r.Context(), id); err != nil {
		response.Error(w, r, err)
		return
	}

	h.sink.Publish(notify.TopicStocksDeleted, id)
	response.NoContent(w)
}

// History handles GET /api/stocks/{id}/history. The ledger comes back
// oldest-first; ?order=desc flips the view for display.
func (h *StocksHandler) History(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if _, err := h.stocks.Get(r.Context(), id); err != nil {
		response.Error(w, r, err)
		return
	}

	var entries interface{}
	var err error
	if r.URL.Query().Get("order") == "desc" {
		entries, err = h.stocks.PriceHistoryDesc(r.Context(), id)
	} else {
		entries, err = h.stocks.PriceHistory(r.Context(), id)
	}
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, entries)
}

// pathID parses a path variable as an id, writing the error response itself
// when the value is not numeric.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		badRequest(w, r, "invalid "+name)
		return 0, false
	}
	return id, true
}

func badRequest(w http.ResponseWriter, r *http.Request, message string) {
	response.JSON(w, http.StatusBadRequest, response.APIError{
		Timestamp: time.Now().UTC(),
		Status:    http.StatusBadRequest,
		Error:     "Validation Error",
		Message:   message,
		Path:      r.URL.Path,
	})
}
