package middleware

import (
	"bytes"
	"net/http"
	"time"

	"quill/app/authz"
	"quill/app/cache"
	"quill/app/metrics"
	"quill/app/response"

	"github.com/gorilla/mux"
)

// ResponseCache serves repeated GETs from the in-process cache.
type ResponseCache struct {
	cache   *cache.Cache
	ttl     time.Duration
	metrics *metrics.Metrics
}

// NewResponseCache wraps c. m may be nil.
func NewResponseCache(c *cache.Cache, ttl time.Duration, m *metrics.Metrics) *ResponseCache {
	return &ResponseCache{cache: c, ttl: ttl, metrics: m}
}

// recorder copies the body of a response while it is written.
type recorder struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (rec *recorder) WriteHeader(status int) {
	if rec.status == 0 {
		rec.status = status
	}
	rec.ResponseWriter.WriteHeader(status)
}

func (rec *recorder) Write(b []byte) (int, error) {
	if rec.status == 0 {
		rec.status = http.StatusOK
	}
	n, err := rec.ResponseWriter.Write(b)
	rec.body.Write(b[:n])
	return n, err
}

func (rec *recorder) HeadersSent() bool {
	hs, ok := rec.ResponseWriter.(response.HeadersSenter)
	return ok && hs.HeadersSent()
}

func (rc *ResponseCache) observe(result string) {
	if rc.metrics != nil {
		rc.metrics.CacheLookups.WithLabelValues(result).Inc()
	}
}

// Key is the cache key for r. Responses can depend on the viewer, so
// authenticated requests are keyed per principal.
func Key(class string, r *http.Request) string {
	key := cache.Key(class, r.URL.Path, r.URL.Query())
	if p := authz.PrincipalFrom(r.Context()); p != nil {
		key += "@" + p.ID
	}
	return key
}

// Handler caches 200 responses to GET requests under class. A response is
// not stored when the cache was invalidated while it was being built.
func (rc *ResponseCache) Handler(class string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				next.ServeHTTP(w, r)
				return
			}

			key := Key(class, r)
			if body, ok := rc.cache.Get(key); ok {
				rc.observe("hit")
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("X-Cache", "HIT")
				w.WriteHeader(http.StatusOK)
				w.Write(body)
				return
			}

			rc.observe("miss")
			w.Header().Set("X-Cache", "MISS")
			gen := rc.cache.Generation()
			rec := &recorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)
			if rec.status == http.StatusOK && r.Context().Err() == nil {
				rc.cache.SetIfUnchanged(key, rec.body.Bytes(), rc.ttl, gen)
			}
		})
	}
}
