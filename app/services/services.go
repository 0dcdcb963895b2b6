// Package services holds the business rules. Every exported operation
// returns *apperr.Error for expected failures and a wrapped error for
// anything else; mutations drop the affected cache classes before
// returning.
package services

import (
	"errors"
	"time"

	"quill/app/cache"
	"quill/app/models"
	"quill/app/repositories"

	"go.uber.org/zap"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 50
)

// Pagination describes one page of a listing.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// normalizePage clamps page and limit to sane values.
func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return page, limit
}

func newPagination(page, limit, total int) Pagination {
	return Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: (total + limit - 1) / limit,
	}
}

func invalidate(inv cache.Invalidator, classes ...string) {
	if inv == nil {
		return
	}
	for _, c := range classes {
		inv.Invalidate(c)
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, repositories.ErrNotFound)
}

// ActivityRecorder appends feed entries. Failures are logged and never fail
// the calling operation.
type ActivityRecorder struct {
	activities repositories.ActivityRepository
	log        *zap.Logger
	now        func() time.Time
}

func NewActivityRecorder(activities repositories.ActivityRepository, log *zap.Logger) *ActivityRecorder {
	return &ActivityRecorder{activities: activities, log: log, now: time.Now}
}

func (r *ActivityRecorder) Record(actorID, verb, objectID, postID string) {
	if r == nil {
		return
	}
	a := &models.Activity{
		ActorID:   actorID,
		Verb:      verb,
		ObjectID:  objectID,
		PostID:    postID,
		CreatedAt: r.now(),
	}
	if err := r.activities.Append(a); err != nil {
		r.log.Warn("record activity",
			zap.String("verb", verb),
			zap.String("actor", actorID),
			zap.Error(err),
		)
	}
}
