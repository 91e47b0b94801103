// Package auth handles registration, login and token verification for the
// API boundary. Admin signup is a deployment decision, gated by config, not
// something every account gets.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/Hesham-Youssef/StockManager/internal/domain/market"
	"github.com/Hesham-Youssef/StockManager/internal/domain/user"
)

// ErrMissingCredentials covers blank username or password at registration.
var ErrMissingCredentials = errors.New("username and password are required")

// ErrInvalidToken covers expired, malformed or mis-signed tokens.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims is the JWT payload issued at login.
type Claims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// Service issues and verifies credentials.
type Service struct {
	store            market.Store
	secret           []byte
	tokenTTL         time.Duration
	allowAdminSignup bool
}

// NewService creates an auth service.
func NewService(store market.Store, secret string, tokenTTL time.Duration, allowAdminSignup bool) *Service {
	return &Service{
		store:            store,
		secret:           []byte(secret),
		tokenTTL:         tokenTTL,
		allowAdminSignup: allowAdminSignup,
	}
}

// Register creates an account. The default role is user; the admin role is
// granted only when the request asks for it and the deployment allows it.
func (s *Service) Register(ctx context.Context, username, password, requestedRole string) error {
	if strings.TrimSpace(username) == "" || password == "" {
		return ErrMissingCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	roles := []string{user.RoleUser}
	if s.allowAdminSignup && strings.EqualFold(requestedRole, "ADMIN") {
		roles = append(roles, user.RoleAdmin)
	}

	u := &user.User{
		Username:     username,
		PasswordHash: string(hash),
		Roles:        roles,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		return err
	}

	log.Info().Str("username", username).Strs("roles", roles).Msg("user registered")
	return nil
}

// Login verifies credentials and returns a signed token.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	u, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return "", user.ErrInvalidCredentials
		}
		return "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return "", user.ErrInvalidCredentials
	}

	now := time.Now().UTC()
	claims := Claims{
		Roles: u.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", err
	}

	log.Info().Str("username", username).Msg("user logged in")
	return signed, nil
}

// VerifyToken parses and validates a token issued by Login.
func (s *Service) VerifyToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
