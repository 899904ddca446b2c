package httpx

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	healthResponse      = `{"status":"ok"}`
	unhealthyResponse   = `{"status":"unavailable"}`
	healthCheckDeadline = 2 * time.Second
)

// Pinger is implemented by session stores that can report reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// healthHandler reports 200 when the session store answers, 503 otherwise.
// A nil store is always healthy.
func healthHandler(store Pinger, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, status := healthResponse, http.StatusOK
		if store != nil {
			ctx, cancel := context.WithTimeout(r.Context(), healthCheckDeadline)
			err := store.Ping(ctx)
			cancel()
			if err != nil {
				logger.WarnContext(r.Context(), "health check failed", "error", err)
				body, status = unhealthyResponse, http.StatusServiceUnavailable
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if r.Method == http.MethodHead {
			return
		}
		if _, err := io.WriteString(w, body); err != nil {
			// Nothing more to do if the client connection is gone.
			return
		}
	}
}
