package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Hesham-Youssef/StockManager/internal/api/handlers"
	"github.com/Hesham-Youssef/StockManager/internal/api/middleware"
)

// RegisterExchangesRoutes registers all exchange-related routes.
func RegisterExchangesRoutes(router *mux.Router, h *handlers.ExchangesHandler, verifier middleware.TokenVerifier) {
	api := router.PathPrefix("/api/exchanges").Subrouter()
	authed := middleware.RequireAuth(verifier)

	api.HandleFunc("", h.List).Methods("GET")
	api.HandleFunc("/{id}", h.Get).Methods("GET")

	api.Handle("", authed(http.HandlerFunc(h.Create))).Methods("POST")
	api.Handle("/{id}", authed(http.HandlerFunc(h.Update))).Methods("PUT")
	api.Handle("/{id}", authed(http.HandlerFunc(h.Delete))).Methods("DELETE")
	api.Handle("/{id}/stocks", authed(http.HandlerFunc(h.AddStock))).Methods("POST")
	api.Handle("/{id}/stocks/{stockId}", authed(http.HandlerFunc(h.RemoveStock))).Methods("DELETE")
}
