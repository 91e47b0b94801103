package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Hesham-Youssef/StockManager/internal/api/handlers"
	"github.com/Hesham-Youssef/StockManager/internal/api/middleware"
)

// RegisterStocksRoutes registers all stock-related routes. Reads are public;
// mutations require a valid token.
func RegisterStocksRoutes(router *mux.Router, h *handlers.StocksHandler, verifier middleware.TokenVerifier) {
	api := router.PathPrefix("/api/stocks").Subrouter()
	authed := middleware.RequireAuth(verifier)

	api.HandleFunc("", h.List).Methods("GET")
	api.HandleFunc("/{id}", h.Get).Methods("GET")
	api.HandleFunc("/{id}/history", h.History).Methods("GET")

	api.Handle("", authed(http.HandlerFunc(h.Create))).Methods("POST")
	api.Handle("/{id}/price", authed(http.HandlerFunc(h.UpdatePrice))).Methods("PUT")
	api.Handle("/{id}", authed(http.HandlerFunc(h.Delete))).Methods("DELETE")
}
