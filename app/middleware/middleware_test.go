package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"quill/app/authz"
	"quill/app/cache"
	"quill/app/metrics"
	"quill/app/models"
	"quill/app/response"
	"quill/app/security"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func ok(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	handler := Logger(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/test", nil))

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "GET", fields["method"])
	assert.Equal(t, "/test", fields["path"])
	assert.EqualValues(t, http.StatusTeapot, fields["status"])
	assert.Contains(t, fields, "took")
}

func TestRecoverer(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	log := zap.New(core)
	handler := Recoverer(log, response.NewResponder(log, false))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("test panic")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode(t, w)
	assert.Equal(t, "InternalServerError", body["error"])
	assert.Equal(t, "Internal server error", body["message"])
	assert.GreaterOrEqual(t, logs.Len(), 1)
}

func TestRecovererAfterHeadersSent(t *testing.T) {
	log := zap.NewNop()
	handler := Track(Recoverer(log, response.NewResponder(log, false))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		w.Write([]byte("partial"))
		panic("late panic")
	})))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "partial", w.Body.String())
}

func TestContentTypeJSON(t *testing.T) {
	w := httptest.NewRecorder()
	ContentTypeJSON(http.HandlerFunc(ok)).ServeHTTP(w, httptest.NewRequest("GET", "/posts", nil))
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	router := mux.NewRouter()
	router.Use(Metrics(metrics.New(reg)))
	router.HandleFunc("/posts/{postId}", ok).Methods("GET")

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/posts/a", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/posts/b", nil))

	families, err := reg.Gather()
	require.NoError(t, err)
	var total float64
	for _, f := range families {
		if f.GetName() != "http_requests_total" {
			continue
		}
		for _, m := range f.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "route" {
					assert.Equal(t, "/posts/{postId}", l.GetValue())
				}
			}
			total += m.GetCounter().GetValue()
		}
	}
	assert.Equal(t, 2.0, total)
}

func newAuth(t *testing.T) (*Auth, *security.Tokens) {
	t.Helper()
	tokens := security.NewTokens("secret", time.Hour)
	return NewAuth(tokens, response.NewResponder(zap.NewNop(), false)), tokens
}

func token(t *testing.T, tokens *security.Tokens, id string, role models.Role) string {
	t.Helper()
	tok, err := tokens.Issue(&models.User{ID: id, Email: id + "@example.com", Username: id, Role: role})
	require.NoError(t, err)
	return tok
}

func TestAuthenticate(t *testing.T) {
	auth, tokens := newAuth(t)

	var seen *models.Principal
	handler := auth.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = authz.PrincipalFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantID     string
	}{
		{"anonymous", "", http.StatusOK, ""},
		{"valid token", "Bearer " + token(t, tokens, "u1", models.RoleAuthor), http.StatusOK, "u1"},
		{"lowercase scheme", "bearer " + token(t, tokens, "u2", models.RoleAdmin), http.StatusOK, "u2"},
		{"bad token", "Bearer nope", http.StatusUnauthorized, ""},
		{"other scheme", "Basic dXNlcjpwYXNz", http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusUnauthorized {
				assert.Equal(t, "Invalid or expired token", decode(t, w)["message"])
				return
			}
			if tt.wantID == "" {
				assert.Nil(t, seen)
			} else {
				require.NotNil(t, seen)
				assert.Equal(t, tt.wantID, seen.ID)
			}
		})
	}
}

func TestRequireTokenAndRole(t *testing.T) {
	auth, tokens := newAuth(t)
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name        string
		handler     http.Handler
		role        models.Role
		wantStatus  int
		wantMessage string
	}{
		{"token missing", auth.RequireToken(next), "", http.StatusUnauthorized, "Access token required"},
		{"token present", auth.RequireToken(next), models.RoleAuthor, http.StatusOK, ""},
		{"admin route anonymous", auth.RequireRole(models.RoleAdmin)(next), "", http.StatusUnauthorized, "Access token required"},
		{"admin route author", auth.RequireRole(models.RoleAdmin)(next), models.RoleAuthor, http.StatusForbidden, "Admin access required"},
		{"admin route admin", auth.RequireRole(models.RoleAdmin)(next), models.RoleAdmin, http.StatusOK, ""},
		{"author route admin", auth.RequireRole(models.RoleAuthor)(next), models.RoleAdmin, http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called = false
			req := httptest.NewRequest("GET", "/", nil)
			if tt.role != "" {
				req.Header.Set("Authorization", "Bearer "+token(t, tokens, "u1", tt.role))
			}
			w := httptest.NewRecorder()
			auth.Authenticate(tt.handler).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantStatus == http.StatusOK, called)
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, decode(t, w)["message"])
			}
		})
	}
}

func TestResponseCache(t *testing.T) {
	c, err := cache.New(10)
	require.NoError(t, err)
	m := metrics.New(prometheus.NewRegistry())
	rc := NewResponseCache(c, time.Minute, m)
	rs := response.NewResponder(zap.NewNop(), false)

	calls := 0
	status := http.StatusOK
	handler := Track(rc.Handler(cache.ClassPosts)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		rs.Success(w, status, response.Body{"calls": calls})
	})))

	get := func(target string, p *models.Principal) *httptest.ResponseRecorder {
		req := httptest.NewRequest("GET", target, nil)
		if p != nil {
			req = req.WithContext(authz.WithPrincipal(req.Context(), p))
		}
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w
	}

	first := get("/posts?page=1&limit=5", nil)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	second := get("/posts?limit=5&page=1", nil)
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 1, calls)

	t.Run("keyed per viewer", func(t *testing.T) {
		w := get("/posts?page=1&limit=5", &models.Principal{ID: "u1"})
		assert.Equal(t, "MISS", w.Header().Get("X-Cache"))
		assert.Equal(t, 2, calls)
		assert.Equal(t, "HIT", get("/posts?page=1&limit=5", &models.Principal{ID: "u1"}).Header().Get("X-Cache"))
	})

	t.Run("invalidation", func(t *testing.T) {
		c.Invalidate(cache.ClassPosts)
		assert.Equal(t, "MISS", get("/posts?page=1&limit=5", nil).Header().Get("X-Cache"))
	})

	t.Run("errors are not cached", func(t *testing.T) {
		status = http.StatusNotFound
		before := calls
		get("/posts/missing", nil)
		get("/posts/missing", nil)
		assert.Equal(t, before+2, calls)
		status = http.StatusOK
	})

	t.Run("invalidated while building is not stored", func(t *testing.T) {
		racing := rc.Handler(cache.ClassPosts)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			c.Invalidate(cache.ClassPosts)
			rs.Success(w, http.StatusOK, response.Body{"calls": calls})
		}))
		req := httptest.NewRequest("GET", "/posts?page=9", nil)
		racing.ServeHTTP(httptest.NewRecorder(), req)

		_, ok := c.Get(Key(cache.ClassPosts, req))
		assert.False(t, ok)
		assert.Equal(t, "MISS", get("/posts?page=9", nil).Header().Get("X-Cache"))
	})

	t.Run("non-GET bypasses", func(t *testing.T) {
		before := calls
		req := httptest.NewRequest("POST", "/posts?page=1&limit=5", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, before+1, calls)
		assert.Empty(t, w.Header().Get("X-Cache"))
	})
}

func TestKey(t *testing.T) {
	req := httptest.NewRequest("GET", "/posts?b=2&a=1", nil)
	assert.Equal(t, "posts:/posts?a=1&b=2", Key(cache.ClassPosts, req))

	req = req.WithContext(authz.WithPrincipal(req.Context(), &models.Principal{ID: "u9"}))
	assert.Equal(t, "posts:/posts?a=1&b=2@u9", Key(cache.ClassPosts, req))
}
