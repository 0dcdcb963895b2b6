package services

import (
	"context"
	"fmt"
	"sort"

	"quill/app/authz"
	"quill/app/models"
	"quill/app/repositories"

	"golang.org/x/sync/errgroup"
)

type FeedPage struct {
	Activities []*models.Activity `json:"activities"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	HasMore    bool               `json:"hasMore"`
}

// FeedService merges the activity of the users a principal follows.
type FeedService struct {
	follows    repositories.FollowRepository
	activities repositories.ActivityRepository
}

func NewFeedService(follows repositories.FollowRepository, activities repositories.ActivityRepository) *FeedService {
	return &FeedService{follows: follows, activities: activities}
}

// Feed returns one page of followed users' activity, newest first. Each
// followee's log is read concurrently.
func (s *FeedService) Feed(ctx context.Context, p *models.Principal, page, limit int) (*FeedPage, error) {
	if err := authz.RequireAuth(p); err != nil {
		return nil, err
	}
	page, limit = normalizePage(page, limit)

	following, err := s.follows.Following(p.ID)
	if err != nil {
		return nil, fmt.Errorf("list following: %w", err)
	}

	// Reading one entry past the page from each log is enough to know
	// whether another page exists.
	window := page*limit + 1
	logs := make([][]*models.Activity, len(following))
	g, _ := errgroup.WithContext(ctx)
	for i, id := range following {
		i, id := i, id
		g.Go(func() error {
			var err error
			logs[i], err = s.activities.ListByActor(id, window)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("read activity: %w", err)
	}

	var merged []*models.Activity
	for _, l := range logs {
		merged = append(merged, l...)
	}
	sort.Slice(merged, func(i, j int) bool {
		a, b := merged[i], merged[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})

	start := (page - 1) * limit
	items := []*models.Activity{}
	if start < len(merged) {
		end := start + limit
		if end > len(merged) {
			end = len(merged)
		}
		items = merged[start:end]
	}
	return &FeedPage{
		Activities: items,
		Page:       page,
		Limit:      limit,
		HasMore:    len(merged) > start+limit,
	}, nil
}
