package web

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/quotagate/quotagate/adapters/metrics"
	"github.com/quotagate/quotagate/domain/action"
	"github.com/quotagate/quotagate/domain/entitlement"
)

// serviceKeyAuth verifies the shared service key on every /v1 request.
// A missing or wrong key is a plain 401; the engine is never consulted.
func (h *Handler) serviceKeyAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.authEnabled {
			next.ServeHTTP(w, r)
			return
		}

		key := r.Header.Get(h.authHeader)
		if key == "" || !h.hasher.Compare(h.serviceKeyHash, key) {
			writeError(w, http.StatusUnauthorized, "Authentication required",
				"Provide a valid service key in "+h.authHeader)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireQuota gates a billable endpoint on the entitlement check for
// the given action kind. On deny it renders the uniform 429 rejection;
// on allow the request proceeds and the handler records usage after the
// work succeeds. Engine failures surface as 500, never as a silent
// allow.
func (h *Handler) RequireQuota(kind action.Kind) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			accountID := chi.URLParam(r, "id")

			d, err := h.engine.CanPerform(r.Context(), accountID, kind)
			if err != nil {
				h.logger.Error().Err(err).Str("kind", string(kind)).Msg("entitlement check failed")
				writeError(w, http.StatusInternalServerError, "Internal error", "Limit check failed")
				return
			}

			if !d.Allowed {
				if d.Reason == entitlement.ReasonAccountNotFound {
					writeError(w, http.StatusNotFound, "Not found", d.Reason)
					return
				}
				writeDenial(w, http.StatusTooManyRequests, "Limit exceeded", d)
				return
			}

			next.ServeHTTP(w, r.WithContext(withDecision(r.Context(), d)))
		})
	}
}

// RequireExtension gates endpoints that are pure capability checks on
// the tier's extension flag.
func (h *Handler) RequireExtension(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accountID := chi.URLParam(r, "id")

		d, err := h.engine.CanPerform(r.Context(), accountID, action.Extension)
		if err != nil {
			h.logger.Error().Err(err).Msg("extension check failed")
			writeError(w, http.StatusInternalServerError, "Internal error", "Limit check failed")
			return
		}

		if !d.Allowed {
			if d.Reason == entitlement.ReasonAccountNotFound {
				writeError(w, http.StatusNotFound, "Not found", d.Reason)
				return
			}
			writeDenial(w, http.StatusForbidden, "Feature not available", d)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// AttachUsageStats loads the account's usage stats into the request
// context so handlers can echo them back to the platform frontend.
// Best-effort: a stats failure is logged and the request proceeds.
func (h *Handler) AttachUsageStats(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accountID := chi.URLParam(r, "id")

		stats, err := h.engine.UsageStats(r.Context(), accountID)
		if err != nil {
			h.logger.Warn().Err(err).Str("account_id", accountID).Msg("attach usage stats failed")
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(withStats(r.Context(), stats)))
	})
}

// NewLoggingMiddleware logs HTTP requests.
func NewLoggingMiddleware(logger zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			// Skip logging for health checks and metrics
			if strings.HasPrefix(r.URL.Path, "/healthz") || r.URL.Path == "/metrics" {
				return
			}

			logger.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Str("request_id", middleware.GetReqID(r.Context())).
				Msg("http request")
		})
	}
}

// NewMetricsMiddleware records request counts and latency. The chi route
// pattern keeps label cardinality bounded regardless of account IDs.
func NewMetricsMiddleware(m *metrics.Collector) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			path := chi.RouteContext(r.Context()).RoutePattern()
			if path == "" {
				path = "unmatched"
			}

			m.RequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(ww.Status())).Inc()
			m.RequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
		})
	}
}
