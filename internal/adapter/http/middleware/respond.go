package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/iho/pocketledger/internal/adapter/http/dto"
)

// writeError answers with the same error envelope the handlers use.
func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(dto.ErrorResponse{Error: code, Message: message})
}
