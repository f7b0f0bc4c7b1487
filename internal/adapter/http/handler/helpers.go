package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/pocketledger/internal/adapter/http/dto"
	"github.com/iho/pocketledger/internal/adapter/http/middleware"
	"github.com/iho/pocketledger/internal/domain"
)

const maxBodyBytes = 1 << 20

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error:   code,
		Message: message,
	})
}

// writeDomainError maps err to a status and stable code. Storage faults are
// logged and returned without detail.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := mapDomainError(err)
	if status >= http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("code", code).Msg("request failed")
		writeError(w, status, code, "internal error")
		return
	}
	writeError(w, status, code, err.Error())
}

// mapDomainError maps ledger and authentication errors to HTTP status codes.
func mapDomainError(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrInvalidToken),
		errors.Is(err, domain.ErrExpiredToken):
		return http.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, domain.ErrEmailTaken):
		return http.StatusConflict, "EMAIL_TAKEN"
	case errors.Is(err, domain.ErrInvalidEmail):
		return http.StatusBadRequest, "INVALID_EMAIL"
	case errors.Is(err, domain.ErrPasswordTooWeak):
		return http.StatusBadRequest, "PASSWORD_TOO_WEAK"
	case errors.Is(err, domain.ErrInvalidUserInput):
		return http.StatusBadRequest, "INVALID_INPUT"
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "USER_NOT_FOUND"
	}

	code := domain.CodeOf(err)
	switch domain.KindOf(err) {
	case domain.KindValidation:
		return http.StatusBadRequest, code
	case domain.KindNotFound:
		return http.StatusNotFound, code
	case domain.KindConflict:
		return http.StatusConflict, code
	default:
		return http.StatusInternalServerError, "INTERNAL"
	}
}

// decodeJSON decodes a bounded request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("empty body")
		}
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return false
	}
	return true
}

// ownerID returns the owner resolved by the auth middleware.
func ownerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	owner, ok := middleware.OwnerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing owner")
		return "", false
	}
	return owner, true
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}

func parseBoolQuery(r *http.Request, key string) bool {
	b, _ := strconv.ParseBool(r.URL.Query().Get(key))
	return b
}

func optionalQuery(r *http.Request, key string) *string {
	val := r.URL.Query().Get(key)
	if val == "" {
		return nil
	}
	return &val
}

// parseDateQuery accepts YYYY-MM-DD or RFC 3339.
func parseDateQuery(r *http.Request, key string) (*time.Time, error) {
	val := r.URL.Query().Get(key)
	if val == "" {
		return nil, nil
	}

	var d dto.Date
	if err := d.UnmarshalJSON([]byte(strconv.Quote(val))); err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return &d.Time, nil
}
