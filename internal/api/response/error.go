package response

import (
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Hesham-Youssef/StockManager/internal/api/middleware"
	"github.com/Hesham-Youssef/StockManager/internal/domain/exchange"
	"github.com/Hesham-Youssef/StockManager/internal/domain/stock"
	"github.com/Hesham-Youssef/StockManager/internal/domain/user"
	"github.com/Hesham-Youssef/StockManager/internal/service/auth"
)

// APIError is the error body served to clients.
type APIError struct {
	Timestamp time.Time `json:"timestamp"`
	Status    int       `json:"status"`
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Path      string    `json:"path"`
}

// Error labels, one per error kind.
const (
	errNotFound      = "Not Found"
	errConflict      = "Conflict"
	errBusinessRule  = "Business Rule Violation"
	errValidation    = "Validation Error"
	errUnauthorized  = "Unauthorized"
	errInternalError = "Internal Server Error"
)

// optimisticConflictMessage replaces the internal sentinel text so callers
// get an actionable hint.
const optimisticConflictMessage = "Resource was concurrently modified. Retry the operation."

// Error maps a domain error to its HTTP shape and writes it.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status, label, message := classify(err)
	if status == http.StatusInternalServerError {
		log.Error().
			Err(err).
			Str("request_id", middleware.GetRequestID(r.Context())).
			Str("path", r.URL.Path).
			Msg("request failed")
	}

	JSON(w, status, APIError{
		Timestamp: time.Now().UTC(),
		Status:    status,
		Error:     label,
		Message:   message,
		Path:      r.URL.Path,
	})
}

func classify(err error) (int, string, string) {
	switch {
	case errors.Is(err, stock.ErrNotFound),
		errors.Is(err, exchange.ErrNotFound),
		errors.Is(err, exchange.ErrNotLinked):
		return http.StatusNotFound, errNotFound, err.Error()

	// The add-member contract reports unresolved ids as rule violations;
	// threshold failures land here too.
	case errors.Is(err, exchange.ErrBelowLiveThreshold),
		errors.Is(err, exchange.ErrExchangeMissing),
		errors.Is(err, exchange.ErrStockMissing):
		return http.StatusBadRequest, errBusinessRule, err.Error()

	case errors.Is(err, stock.ErrPriceConflict):
		return http.StatusConflict, errConflict, optimisticConflictMessage

	case errors.Is(err, stock.ErrNameTaken),
		errors.Is(err, exchange.ErrNameTaken),
		errors.Is(err, exchange.ErrAlreadyListed):
		return http.StatusConflict, errConflict, err.Error()

	case errors.Is(err, stock.ErrBlankName),
		errors.Is(err, stock.ErrInvalidPrice),
		errors.Is(err, exchange.ErrBlankName),
		errors.Is(err, auth.ErrMissingCredentials):
		return http.StatusBadRequest, errValidation, err.Error()

	case errors.Is(err, user.ErrUsernameTaken):
		return http.StatusBadRequest, errValidation, err.Error()

	case errors.Is(err, user.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized, errUnauthorized, err.Error()

	default:
		return http.StatusInternalServerError, errInternalError, "unexpected error"
	}
}
