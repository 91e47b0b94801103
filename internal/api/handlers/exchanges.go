package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Hesham-Youssef/StockManager/internal/api/response"
	"github.com/Hesham-Youssef/StockManager/internal/notify"
	exchangeservice "github.com/Hesham-Youssef/StockManager/internal/service/exchange"
)

// ExchangesHandler handles exchange API requests.
type ExchangesHandler struct {
	exchanges *exchangeservice.Service
	sink      notify.Sink
}

// NewExchangesHandler creates an ExchangesHandler.
func NewExchangesHandler(exchanges *exchangeservice.Service, sink notify.Sink) *ExchangesHandler {
	return &ExchangesHandler{exchanges: exchanges, sink: sink}
}

type createExchangeRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	LiveInMarket *bool  `json:"liveInMarket"`
}

// updateExchangeRequest is a partial update; absent fields stay unchanged.
type updateExchangeRequest struct {
	Name         *string `json:"name"`
	Description  *string `json:"description"`
	LiveInMarket *bool   `json:"liveInMarket"`
}

type addStockRequest struct {
	StockID *int64 `json:"stockId"`
}

// List handles GET /api/exchanges
func (h *ExchangesHandler) List(w http.ResponseWriter, r *http.Request) {
	exchanges, err := h.exchanges.List(r.Context())
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, exchanges)
}

// Get handles GET /api/exchanges/{id}
func (h *ExchangesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	ex, err := h.exchanges.Get(r.Context(), id)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, ex)
}

// Create handles POST /api/exchanges
func (h *ExchangesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createExchangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, r, "malformed request body")
		return
	}

	live := req.LiveInMarket != nil && *req.LiveInMarket
	ex, err := h.exchanges.Create(r.Context(), req.Name, req.Description, live)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	h.sink.Publish(notify.TopicExchanges, ex)
	response.JSON(w, http.StatusCreated, ex)
}

// Update handles PUT /api/exchanges/{id}
func (h *ExchangesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req updateExchangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, r, "malformed request body")
		return
	}

	ex, err := h.exchanges.Update(r.Context(), id, exchangeservice.UpdateInput{
		Name:         req.Name,
		Description:  req.Description,
		LiveInMarket: req.LiveInMarket,
	})
	if err != nil {
		response.Error(w, r, err)
		return
	}

	h.sink.Publish(notify.TopicExchanges, ex)
	response.JSON(w, http.StatusOK, ex)
}

// Delete handles DELETE /api/exchanges/{id}
func (h *ExchangesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.exchanges.Delete(r.Context(), id); err != nil {
		response.Error(w, r, err)
		return
	}

	h.sink.Publish(notify.TopicExchangesDeleted, id)
	response.NoContent(w)
}

// AddStock handles POST /api/exchanges/{id}/stocks
func (h *ExchangesHandler) AddStock(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req addStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, r, "malformed request body")
		return
	}
	if req.StockID == nil {
		badRequest(w, r, "stockId is required")
		return
	}

	ex, err := h.exchanges.AddStock(r.Context(), id, *req.StockID)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	h.sink.Publish(notify.TopicExchanges, ex)
	response.JSON(w, http.StatusOK, ex)
}

// RemoveStock handles DELETE /api/exchanges/{id}/stocks/{stockId}
func (h *ExchangesHandler) RemoveStock(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	stockID, ok := pathID(w, r, "stockId")
	if !ok {
		return
	}

	ex, err := h.exchanges.RemoveStock(r.Context(), id, stockID)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	h.sink.Publish(notify.TopicExchanges, ex)
	response.JSON(w, http.StatusOK, ex)
}
