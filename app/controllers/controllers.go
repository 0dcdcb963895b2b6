// Package controllers adapts HTTP requests to service calls and renders
// their results through the response envelope.
package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"quill/app/apperr"
	"quill/app/authz"
	"quill/app/models"
)

// decodeJSON reads the request body into v.
func decodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.BadRequest("Invalid JSON body")
	}
	return nil
}

// queryInt returns the named query parameter, or 0 when it is absent or not
// a number. Services apply their own defaults to 0.
func queryInt(r *http.Request, name string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return 0
	}
	return n
}

func principal(r *http.Request) *models.Principal {
	return authz.PrincipalFrom(r.Context())
}
