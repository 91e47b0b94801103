package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Hesham-Youssef/StockManager/internal/api/response"
	authservice "github.com/Hesham-Youssef/StockManager/internal/service/auth"
)

// AuthHandler handles registration and login.
type AuthHandler struct {
	auth *authservice.Service
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(auth *authservice.Service) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, r, "malformed request body")
		return
	}

	if err := h.auth.Register(r.Context(), req.Username, req.Password, req.Role); err != nil {
		response.Error(w, r, err)
		return
	}
	response.JSON(w, http.StatusCreated, map[string]string{"message": "User created"})
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, r, "malformed request body")
		return
	}

	token, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"token": token})
}
