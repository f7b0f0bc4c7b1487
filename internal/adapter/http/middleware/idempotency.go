package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/iho/pocketledger/internal/usecase"
)

const (
	// IdempotencyKeyHeader is the header name for idempotency keys.
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotencyReplayHeader marks a response served from the store.
	IdempotencyReplayHeader = "X-Idempotency-Replay"

	pendingMarker = "processing"

	// maxIdempotentBody bounds how much of a request is buffered to fingerprint it.
	maxIdempotentBody = 1 << 20
)

type releaser interface {
	Release(ctx context.Context, key string) error
}

// storedResponse is what a completed POST leaves behind for replays.
type storedResponse struct {
	Fingerprint string `json:"fingerprint"`
	Status      int    `json:"status"`
	Body        []byte `json:"body"`
}

// IdempotencyMiddleware replays the response of a completed POST carrying the
// same Idempotency-Key for the same owner and path. Reusing a key with a
// different body is rejected.
type IdempotencyMiddleware struct {
	store usecase.IdempotencyStore
	ttl   time.Duration
}

// NewIdempotencyMiddleware creates a new IdempotencyMiddleware.
func NewIdempotencyMiddleware(store usecase.IdempotencyStore, ttl time.Duration) *IdempotencyMiddleware {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &IdempotencyMiddleware{store: store, ttl: ttl}
}

// Wrap wraps an http.Handler with idempotency checking.
func (m *IdempotencyMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get(IdempotencyKeyHeader)
		if r.Method != http.MethodPost || key == "" {
			next.ServeHTTP(w, r)
			return
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, maxIdempotentBody))
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "unreadable request body")
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))
		fingerprint := fingerprintOf(body)

		owner, _ := OwnerFromContext(r.Context())
		storeKey := owner + ":" + r.URL.Path + ":" + key
		log := zerolog.Ctx(r.Context()).With().Str("idempotency_key", key).Logger()

		held, cached, err := m.store.CheckAndSet(r.Context(), storeKey, nil, m.ttl)
		if err != nil {
			log.Error().Err(err).Msg("idempotency check failed")
			writeError(w, http.StatusInternalServerError, "INTERNAL", "idempotency check failed")
			return
		}
		if held {
			m.replay(w, log, cached, fingerprint)
			return
		}

		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		var captured bytes.Buffer
		ww.Tee(&captured)
		next.ServeHTTP(ww, r)

		// the client may be gone but the record must settle
		ctx := context.WithoutCancel(r.Context())

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		if status >= 200 && status < 300 {
			data, err := json.Marshal(storedResponse{Fingerprint: fingerprint, Status: status, Body: captured.Bytes()})
			if err == nil {
				err = m.store.Update(ctx, storeKey, data, m.ttl)
			}
			if err != nil {
				log.Error().Err(err).Msg("failed to store idempotent response")
			}
			return
		}

		if rel, ok := m.store.(releaser); ok {
			if err := rel.Release(ctx, storeKey); err != nil {
				log.Warn().Err(err).Msg("failed to release idempotency key")
			}
		}
	})
}

func (m *IdempotencyMiddleware) replay(w http.ResponseWriter, log zerolog.Logger, cached []byte, fingerprint string) {
	if string(cached) == pendingMarker {
		writeError(w, http.StatusConflict, "REQUEST_IN_PROGRESS", "a request with this idempotency key is still in progress")
		return
	}

	var stored storedResponse
	if err := json.Unmarshal(cached, &stored); err != nil {
		log.Error().Err(err).Msg("corrupt idempotency record")
		writeError(w, http.StatusInternalServerError, "INTERNAL", "idempotency check failed")
		return
	}

	if stored.Fingerprint != "" && stored.Fingerprint != fingerprint {
		writeError(w, http.StatusUnprocessableEntity, "IDEMPOTENCY_KEY_REUSED", "idempotency key was already used with a different request body")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set(IdempotencyReplayHeader, "true")
	w.WriteHeader(stored.Status)
	_, _ = w.Write(stored.Body)
}

func fingerprintOf(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}
