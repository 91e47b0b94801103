package routes

import (
	"github.com/gorilla/mux"

	"github.com/Hesham-Youssef/StockManager/internal/api/handlers"
)

// RegisterAuthRoutes registers registration and login.
func RegisterAuthRoutes(router *mux.Router, h *handlers.AuthHandler) {
	api := router.PathPrefix("/api/auth").Subrouter()

	api.HandleFunc("/register", h.Register).Methods("POST")
	api.HandleFunc("/login", h.Login).Methods("POST")
}
