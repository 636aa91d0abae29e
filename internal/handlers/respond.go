package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/BradenHooton/jobboard/internal/auth"
	"github.com/BradenHooton/jobboard/internal/models"
	"github.com/BradenHooton/jobboard/internal/services"
	pkghttp "github.com/BradenHooton/jobboard/pkg/http"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// writeJSON encodes body with the given status
func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// decodeJSON reads the request body into dest and validates it
func decodeJSON(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		pkghttp.WriteBadRequest(w, "invalid request body")
		return false
	}
	if err := services.ValidateStruct(dest); err != nil {
		var ve *models.ValidationError
		if errors.As(err, &ve) {
			pkghttp.WriteValidationError(w, ve.Field, ve.Message)
			return false
		}
		pkghttp.WriteBadRequest(w, err.Error())
		return false
	}
	return true
}

// writeServiceError maps service errors onto HTTP responses
func writeServiceError(w http.ResponseWriter, err error) {
	var ve *models.ValidationError
	var qe *models.QuotaExceededError
	switch {
	case errors.As(err, &ve):
		pkghttp.WriteValidationError(w, ve.Field, ve.Message)
	case errors.Is(err, models.ErrNotFound):
		pkghttp.WriteNotFound(w, "resource not found")
	case errors.Is(err, models.ErrJobClosed):
		pkghttp.WriteError(w, http.StatusConflict, "job_closed", err.Error())
	case errors.Is(err, models.ErrInvalidTransition):
		pkghttp.WriteError(w, http.StatusConflict, "invalid_transition", err.Error())
	case errors.Is(err, models.ErrConflict):
		pkghttp.WriteConflict(w, "resource already exists")
	case errors.As(err, &qe):
		pkghttp.WriteQuotaExceeded(w, err.Error(), qe.Limit, qe.ResetAt, qe.ResetIn)
	case errors.Is(err, models.ErrQuotaExceeded):
		pkghttp.WriteError(w, http.StatusTooManyRequests, "quota_exceeded", err.Error())
	case errors.Is(err, models.ErrInsufficientCredits):
		pkghttp.WriteUnprocessable(w, "insufficient_credits", err.Error())
	case errors.Is(err, models.ErrUnauthorized):
		pkghttp.WriteUnauthorized(w, "unauthorized")
	case errors.Is(err, models.ErrForbidden):
		pkghttp.WriteForbidden(w, "insufficient permissions")
	case errors.Is(err, models.ErrBadRequest):
		pkghttp.WriteBadRequest(w, "bad request")
	default:
		pkghttp.WriteInternalError(w, "internal server error")
	}
}

// pathID reads the {id} URL parameter. Anything but a UUID cannot name a row, so it is a 404.
func pathID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		pkghttp.WriteNotFound(w, "resource not found")
		return "", false
	}
	return id.String(), true
}

// requireClaims returns the session claims or writes 401
func requireClaims(w http.ResponseWriter, r *http.Request) (*models.TokenClaims, bool) {
	claims := auth.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "authentication required")
		return nil, false
	}
	return claims, true
}

// checkUserAccess allows a user to act on their own record, admins on any
func checkUserAccess(claims *models.TokenClaims, userID string) bool {
	return claims.UserID == userID || claims.Role == models.RoleAdmin
}

// parsePagination reads limit and offset query parameters
func parsePagination(r *http.Request) (limit, offset int, err error) {
	limit = defaultPageSize
	if v := r.URL.Query().Get("limit"); v != "" {
		if _, err := parseIntParam(v, &limit, 1, maxPageSize); err != nil {
			return 0, 0, models.NewValidationError("limit", "must be between 1 and 100")
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if _, err := parseIntParam(v, &offset, 0, 1<<31-1); err != nil {
			return 0, 0, models.NewValidationError("offset", "must be a non-negative integer")
		}
	}
	return limit, offset, nil
}

// parseIntParam parses value into dest when it lies within [min, max]
func parseIntParam(value string, dest *int, min, max int) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, err
	}

	if n < min || n > max {
		return 0, errors.New("parameter out of range")
	}

	*dest = n
	return n, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}
