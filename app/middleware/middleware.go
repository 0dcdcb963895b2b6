// Package middleware holds the HTTP wrappers shared by every route.
package middleware

import (
	"fmt"
	"net/http"
	"time"

	"quill/app/apperr"
	"quill/app/metrics"
	"quill/app/response"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Track replaces the response writer with one that remembers whether
// headers went out. Later middleware and handlers share the same writer.
func Track(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(response.Track(r.Context(), w), r)
	})
}

// Logger logs method, path, status and duration of each request.
func Logger(log *zap.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tw := response.Track(r.Context(), w)
			start := time.Now()
			next.ServeHTTP(tw, r)
			log.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", tw.Status()),
				zap.Duration("took", time.Since(start)),
			)
		})
	}
}

// Recoverer turns a panic into a logged 500 envelope.
func Recoverer(log *zap.Logger, rs *response.Responder) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tw := response.Track(r.Context(), w)
			defer func() {
				if v := recover(); v != nil {
					if v == http.ErrAbortHandler {
						panic(v)
					}
					log.Error("panic", zap.Any("value", v), zap.String("path", r.URL.Path), zap.Stack("stack"))
					rs.Error(tw, r, apperr.Internal(fmt.Errorf("panic: %v", v)))
				}
			}()
			next.ServeHTTP(tw, r)
		})
	}
}

// ContentTypeJSON defaults the response content type to JSON.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// Metrics records request counts and latency labelled by route template.
func Metrics(m *metrics.Metrics) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tw := response.Track(r.Context(), w)
			route := "unmatched"
			if cur := mux.CurrentRoute(r); cur != nil {
				if tpl, err := cur.GetPathTemplate(); err == nil {
					route = tpl
				}
			}

			m.InFlight.Inc()
			start := time.Now()
			defer func() {
				m.InFlight.Dec()
				m.ReqDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
				m.RequestsTotal.WithLabelValues(route, r.Method, fmt.Sprint(tw.Status())).Inc()
			}()
			next.ServeHTTP(tw, r)
		})
	}
}
