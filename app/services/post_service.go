package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"quill/app/apperr"
	"quill/app/authz"
	"quill/app/cache"
	"quill/app/models"
	"quill/app/repositories"
	"quill/app/sanitize"

	"golang.org/x/sync/errgroup"
)

// PostInput is the writable part of a post.
type PostInput struct {
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	ImageURL   string   `json:"imageUrl"`
	CategoryID string   `json:"categoryId"`
	TagIDs     []string `json:"tagIds"`
}

// PostQuery selects a page of posts.
type PostQuery struct {
	Page  int
	Limit int
	repositories.PostFilter
}

// PostView is a post with everything a reader needs to render it.
type PostView struct {
	*models.Post
	ContentHTML  string           `json:"contentHtml"`
	Tags         []*models.Tag    `json:"tags"`
	Category     *models.Category `json:"category,omitempty"`
	LikeCount    int              `json:"likeCount"`
	CommentCount int              `json:"commentCount"`
	LikedByMe    *bool            `json:"likedByMe,omitempty"`
}

type PostPage struct {
	Posts      []*PostView `json:"posts"`
	Pagination Pagination  `json:"pagination"`
}

// PostService handles business logic for posts
type PostService struct {
	posts      repositories.PostRepository
	comments   repositories.CommentRepository
	likes      repositories.LikeRepository
	tags       repositories.TagRepository
	categories repositories.CategoryRepository
	activity   *ActivityRecorder
	cache      cache.Invalidator
	now        func() time.Time
}

// NewPostService creates a new PostService
func NewPostService(
	posts repositories.PostRepository,
	comments repositories.CommentRepository,
	likes repositories.LikeRepository,
	tags repositories.TagRepository,
	categories repositories.CategoryRepository,
	activity *ActivityRecorder,
	inv cache.Invalidator,
) *PostService {
	return &PostService{
		posts:      posts,
		comments:   comments,
		likes:      likes,
		tags:       tags,
		categories: categories,
		activity:   activity,
		cache:      inv,
		now:        time.Now,
	}
}

func (s *PostService) getPost(id string) (*models.Post, error) {
	post, err := s.posts.GetByID(id)
	if isNotFound(err) {
		return nil, apperr.NotFound("Post not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	return post, nil
}

// List returns a page of posts. The page and the total are read
// concurrently.
func (s *PostService) List(ctx context.Context, q PostQuery) (*PostPage, error) {
	page, limit := normalizePage(q.Page, q.Limit)
	if q.Sort != repositories.SortPopular {
		q.Sort = repositories.SortRecent
	}

	var (
		posts []*models.Post
		total int
	)
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		posts, err = s.posts.Find(q.PostFilter, limit, (page-1)*limit)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.posts.Count(q.PostFilter)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	views, err := s.views(ctx, nil, posts)
	if err != nil {
		return nil, err
	}
	return &PostPage{Posts: views, Pagination: newPagination(page, limit, total)}, nil
}

// Popular returns the most liked posts.
func (s *PostService) Popular(ctx context.Context, limit int) ([]*PostView, error) {
	_, limit = normalizePage(1, limit)
	posts, err := s.posts.Find(repositories.PostFilter{Sort: repositories.SortPopular}, limit, 0)
	if err != nil {
		return nil, fmt.Errorf("popular posts: %w", err)
	}
	return s.views(ctx, nil, posts)
}

// Get returns one post. When viewer is set the view reports whether they
// liked it.
func (s *PostService) Get(ctx context.Context, viewer *models.Principal, id string) (*PostView, error) {
	post, err := s.getPost(id)
	if err != nil {
		return nil, err
	}
	views, err := s.views(ctx, viewer, []*models.Post{post})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

func (s *PostService) views(ctx context.Context, viewer *models.Principal, posts []*models.Post) ([]*PostView, error) {
	views := make([]*PostView, len(posts))
	g, _ := errgroup.WithContext(ctx)
	for i, p := range posts {
		i, p := i, p
		g.Go(func() error {
			v, err := s.view(viewer, p)
			views[i] = v
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return views, nil
}

func (s *PostService) view(viewer *models.Principal, p *models.Post) (*PostView, error) {
	v := &PostView{Post: p}

	html, err := sanitize.Markdown(p.Content)
	if err != nil {
		return nil, fmt.Errorf("render post %s: %w", p.ID, err)
	}
	v.ContentHTML = html

	if v.LikeCount, err = s.likes.CountPostLikes(p.ID); err != nil {
		return nil, fmt.Errorf("count likes: %w", err)
	}
	if v.CommentCount, err = s.comments.CountByPost(p.ID); err != nil {
		return nil, fmt.Errorf("count comments: %w", err)
	}
	if v.Tags, err = s.tags.GetMany(p.TagIDs); err != nil {
		return nil, fmt.Errorf("load tags: %w", err)
	}
	if p.CategoryID != "" {
		c, err := s.categories.GetByID(p.CategoryID)
		if err != nil && !isNotFound(err) {
			return nil, fmt.Errorf("load category: %w", err)
		}
		v.Category = c
	}
	if viewer != nil {
		liked, err := s.likes.HasLikedPost(p.ID, viewer.ID)
		if err != nil {
			return nil, fmt.Errorf("check like: %w", err)
		}
		v.LikedByMe = &liked
	}
	return v, nil
}

func (in *PostInput) apply(p *models.Post) {
	p.Title = strings.TrimSpace(in.Title)
	p.Content = strings.TrimSpace(in.Content)
	p.ImageURL = strings.TrimSpace(in.ImageURL)
	p.CategoryID = in.CategoryID
	p.TagIDs = dedupe(in.TagIDs)
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func (s *PostService) save(write func(*models.Post) error, post *models.Post) error {
	err := write(post)
	if errors.Is(err, repositories.ErrMissingReference) {
		return apperr.BadRequest("Tag or category does not exist")
	}
	if err != nil {
		return fmt.Errorf("save post: %w", err)
	}
	return nil
}

// Create publishes a new post authored by the principal.
func (s *PostService) Create(ctx context.Context, p *models.Principal, in PostInput) (*PostView, error) {
	if err := authz.RequireAuthor(p); err != nil {
		return nil, err
	}

	post := &models.Post{AuthorID: p.ID}
	in.apply(post)
	post.BeforeCreate(s.now())
	if err := post.Validate(); err != nil {
		return nil, err
	}
	if err := s.save(s.posts.Create, post); err != nil {
		return nil, err
	}

	s.activity.Record(p.ID, models.VerbPostCreated, post.ID, post.ID)
	invalidate(s.cache, cache.ClassPosts)
	return s.Get(ctx, p, post.ID)
}

// Update replaces the writable fields. The author or an admin may edit.
func (s *PostService) Update(ctx context.Context, p *models.Principal, id string, in PostInput) (*PostView, error) {
	if err := authz.RequireAuth(p); err != nil {
		return nil, err
	}
	post, err := s.getPost(id)
	if err != nil {
		return nil, err
	}
	if err := authz.RequireOwnershipOrAdmin(p, post.AuthorID); err != nil {
		return nil, err
	}

	in.apply(post)
	post.UpdatedAt = s.now()
	if err := post.Validate(); err != nil {
		return nil, err
	}
	if err := s.save(s.posts.Update, post); err != nil {
		return nil, err
	}

	invalidate(s.cache, cache.ClassPosts)
	return s.Get(ctx, p, post.ID)
}

// Delete removes a post with its comments, likes and reports.
func (s *PostService) Delete(p *models.Principal, id string) error {
	if err := authz.RequireAuth(p); err != nil {
		return err
	}
	post, err := s.getPost(id)
	if err != nil {
		return err
	}
	if err := authz.RequireOwnershipOrAdmin(p, post.AuthorID); err != nil {
		return err
	}
	if err := s.posts.Delete(id); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}

	invalidate(s.cache, cache.ClassPosts, cache.ClassComments, cache.ClassReports)
	return nil
}

// Like records the principal's like of a post.
func (s *PostService) Like(p *models.Principal, id string) (int, error) {
	if err := authz.RequireAuth(p); err != nil {
		return 0, err
	}
	if _, err := s.getPost(id); err != nil {
		return 0, err
	}

	err := s.likes.LikePost(&models.PostLike{PostID: id, UserID: p.ID, CreatedAt: s.now()})
	switch {
	case errors.Is(err, repositories.ErrConflict):
		return 0, apperr.BadRequest("You have already liked this post")
	case isNotFound(err):
		return 0, apperr.NotFound("Post not found")
	case err != nil:
		return 0, fmt.Errorf("like post: %w", err)
	}

	s.activity.Record(p.ID, models.VerbPostLiked, id, id)
	invalidate(s.cache, cache.ClassPosts)
	return s.likeCount(id)
}

// Unlike removes the principal's like of a post and returns the new count.
func (s *PostService) Unlike(p *models.Principal, id string) (int, error) {
	if err := authz.RequireAuth(p); err != nil {
		return 0, err
	}
	if _, err := s.getPost(id); err != nil {
		return 0, err
	}

	err := s.likes.UnlikePost(id, p.ID)
	if isNotFound(err) {
		return 0, apperr.BadRequest("You have not liked this post")
	}
	if err != nil {
		return 0, fmt.Errorf("unlike post: %w", err)
	}

	invalidate(s.cache, cache.ClassPosts)
	return s.likeCount(id)
}

func (s *PostService) likeCount(id string) (int, error) {
	n, err := s.likes.CountPostLikes(id)
	if err != nil {
		return 0, fmt.Errorf("count likes: %w", err)
	}
	return n, nil
}
