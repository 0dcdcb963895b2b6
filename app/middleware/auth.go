package middleware

import (
	"net/http"
	"strings"

	"quill/app/apperr"
	"quill/app/authz"
	"quill/app/models"
	"quill/app/response"
	"quill/app/security"

	"github.com/gorilla/mux"
)

// Auth resolves bearer tokens into request principals.
type Auth struct {
	tokens *security.Tokens
	rs     *response.Responder
}

func NewAuth(tokens *security.Tokens, rs *response.Responder) *Auth {
	return &Auth{tokens: tokens, rs: rs}
}

func bearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}

// Authenticate attaches the principal of a valid bearer token. Requests
// without a token pass through anonymously; a bad token is rejected.
func (a *Auth) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearer(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}
		claims, err := a.tokens.Parse(token)
		if err != nil {
			a.rs.Error(w, r, apperr.Unauthorized("Invalid or expired token"))
			return
		}
		next.ServeHTTP(w, r.WithContext(authz.WithPrincipal(r.Context(), claims.Principal())))
	})
}

// RequireToken rejects anonymous requests before the handler runs.
func (a *Auth) RequireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if authz.PrincipalFrom(r.Context()) == nil {
			a.rs.Error(w, r, apperr.Unauthorized("Access token required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole rejects principals that do not satisfy role.
func (a *Auth) RequireRole(role models.Role) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return a.RequireToken(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := authz.RequireRole(authz.PrincipalFrom(r.Context()), role); err != nil {
				a.rs.Error(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		}))
	}
}
