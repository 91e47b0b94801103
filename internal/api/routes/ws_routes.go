package routes

import (
	"github.com/gorilla/mux"

	"github.com/Hesham-Youssef/StockManager/internal/notify"
)

// RegisterWebsocketRoutes exposes the notification hub.
func RegisterWebsocketRoutes(router *mux.Router, hub *notify.Hub) {
	router.Handle("/ws", hub).Methods("GET")
}
