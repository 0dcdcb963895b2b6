package controllers

import (
	"net/http"

	"quill/app/apperr"
	"quill/app/response"

	"github.com/dgraph-io/badger/v4"
)

// HealthController reports whether the datastore is usable.
type HealthController struct {
	db *badger.DB
	rs *response.Responder
}

func NewHealthController(db *badger.DB, rs *response.Responder) *HealthController {
	return &HealthController{db: db, rs: rs}
}

func (c *HealthController) Check(w http.ResponseWriter, r *http.Request) {
	if c.db.IsClosed() {
		c.rs.JSON(w, http.StatusServiceUnavailable, response.Body{"status": "unavailable"})
		return
	}
	if err := c.db.View(func(txn *badger.Txn) error { return nil }); err != nil {
		c.rs.Error(w, r, apperr.Internal(err))
		return
	}
	c.rs.Success(w, http.StatusOK, response.Body{"status": "ok"})
}
