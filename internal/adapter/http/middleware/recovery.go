package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

var httpPanicsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "pocketledger_http_panics_total",
		Help: "Handler panics recovered, by route pattern",
	},
	[]string{"path"},
)

// Recovery turns a handler panic into a 500 carrying the request id, unless
// the handler already started its response. A panicking unit of work has
// rolled back by the time the panic reaches here.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww, ok := w.(chimiddleware.WrapResponseWriter)
		if !ok {
			ww = chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		}

		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			path := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				path = rctx.RoutePattern()
			}
			httpPanicsTotal.WithLabelValues(path).Inc()

			requestID := chimiddleware.GetReqID(r.Context())
			zerolog.Ctx(r.Context()).Error().
				Str("panic", fmt.Sprint(rec)).
				Bytes("stack", debug.Stack()).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Msg("panic recovered")

			if ww.Status() != 0 {
				return
			}
			if requestID != "" {
				ww.Header().Set("X-Request-Id", requestID)
			}
			writeError(ww, http.StatusInternalServerError, "INTERNAL", "internal server error")
		}()

		next.ServeHTTP(ww, r)
	})
}
