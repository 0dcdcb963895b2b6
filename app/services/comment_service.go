package services

import (
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"quill/app/apperr"
	"quill/app/authz"
	"quill/app/cache"
	"quill/app/models"
	"quill/app/repositories"
	"quill/app/sanitize"
)

// MaxThreadDepth is the deepest level a comment may sit at. Top-level
// comments are level 1.
const MaxThreadDepth = 5

const maxCommentLength = 2000

var errThreadTooDeep = apperr.BadRequest(fmt.Sprintf("Maximum thread depth of %d levels reached", MaxThreadDepth))

// CommentNode is a comment with its like count and ordered replies.
type CommentNode struct {
	*models.Comment
	LikeCount int            `json:"likeCount"`
	Replies   []*CommentNode `json:"replies"`
}

// CommentService manages threaded comments: nesting, ownership, pinning
// and likes.
type CommentService struct {
	comments repositories.CommentRepository
	posts    repositories.PostRepository
	likes    repositories.LikeRepository
	activity *ActivityRecorder
	cache    cache.Invalidator
	now      func() time.Time
}

// NewCommentService creates a new CommentService
func NewCommentService(
	comments repositories.CommentRepository,
	posts repositories.PostRepository,
	likes repositories.LikeRepository,
	activity *ActivityRecorder,
	inv cache.Invalidator,
) *CommentService {
	return &CommentService{
		comments: comments,
		posts:    posts,
		likes:    likes,
		activity: activity,
		cache:    inv,
		now:      time.Now,
	}
}

func (s *CommentService) getPost(id string) (*models.Post, error) {
	post, err := s.posts.GetByID(id)
	if isNotFound(err) {
		return nil, apperr.NotFound("Post not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	return post, nil
}

// getComment loads a comment and checks it belongs to post.
func (s *CommentService) getComment(post *models.Post, id string) (*models.Comment, error) {
	comment, err := s.comments.GetByID(id)
	if isNotFound(err) {
		return nil, apperr.NotFound("Comment not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get comment: %w", err)
	}
	if comment.PostID != post.ID {
		return nil, apperr.NotFound("Comment does not belong to this post")
	}
	return comment, nil
}

// target resolves the post and comment of a comment-scoped request.
func (s *CommentService) target(postID, commentID string) (*models.Post, *models.Comment, error) {
	post, err := s.getPost(postID)
	if err != nil {
		return nil, nil, err
	}
	comment, err := s.getComment(post, commentID)
	if err != nil {
		return nil, nil, err
	}
	return post, comment, nil
}

// cleanContent sanitizes content and enforces the length rules.
func cleanContent(content string) (string, error) {
	clean := sanitize.Comment(content)
	if clean == "" {
		return "", apperr.BadRequest("Content is required")
	}
	if utf8.RuneCountInString(clean) > maxCommentLength {
		return "", apperr.Validation("Validation failed", []apperr.FieldError{{
			Field:   "content",
			Rule:    "max",
			Message: fmt.Sprintf("content must be at most %d characters", maxCommentLength),
		}})
	}
	return clean, nil
}

// checkDepth rejects a reply under parent when parent already sits at
// MaxThreadDepth, counting a top-level comment as depth 1. At most
// MaxThreadDepth-1 ancestors are looked up, and a chain that cannot be
// resolved within that bound is rejected.
func (s *CommentService) checkDepth(parent *models.Comment) error {
	cur := parent
	for depth := 1; ; depth++ {
		if depth >= MaxThreadDepth {
			return errThreadTooDeep
		}
		if cur.ParentID == "" {
			return nil
		}
		next, err := s.comments.GetByID(cur.ParentID)
		if isNotFound(err) {
			return errThreadTooDeep
		}
		if err != nil {
			return fmt.Errorf("walk thread: %w", err)
		}
		cur = next
	}
}

// Create adds a top-level comment to a post.
func (s *CommentService) Create(p *models.Principal, postID, content string) (*models.Comment, error) {
	return s.add(p, postID, "", content)
}

// Reply adds a comment under parentID.
func (s *CommentService) Reply(p *models.Principal, postID, parentID, content string) (*models.Comment, error) {
	return s.add(p, postID, parentID, content)
}

func (s *CommentService) add(p *models.Principal, postID, parentID, content string) (*models.Comment, error) {
	if err := authz.RequireAuth(p); err != nil {
		return nil, err
	}
	post, err := s.getPost(postID)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{UserID: p.ID}
	if err := comment.SetPost(post); err != nil {
		return nil, err
	}
	if parentID != "" {
		parent, err := s.getComment(post, parentID)
		if err != nil {
			return nil, err
		}
		if err := s.checkDepth(parent); err != nil {
			return nil, err
		}
		if err := comment.SetParent(parent); err != nil {
			return nil, apperr.BadRequest(err.Error())
		}
	}

	if comment.Content, err = cleanContent(content); err != nil {
		return nil, err
	}
	comment.BeforeCreate(s.now())
	if err := comment.Validate(); err != nil {
		return nil, err
	}
	if err := s.comments.Create(comment); err != nil {
		if errors.Is(err, repositories.ErrMissingReference) {
			return nil, apperr.NotFound("Comment not found")
		}
		return nil, fmt.Errorf("create comment: %w", err)
	}

	s.activity.Record(p.ID, models.VerbCommentCreated, comment.ID, post.ID)
	invalidate(s.cache, cache.ClassComments, cache.ClassPosts)
	return comment, nil
}

// List returns the post's comments as a tree. Every level is ordered oldest
// first and each node carries its like count.
func (s *CommentService) List(postID string) ([]*CommentNode, error) {
	if _, err := s.getPost(postID); err != nil {
		return nil, err
	}
	flat, err := s.comments.ListByPost(postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	ids := make([]string, len(flat))
	for i, c := range flat {
		ids[i] = c.ID
	}
	counts, err := s.likes.CountCommentLikes(ids)
	if err != nil {
		return nil, fmt.Errorf("count comment likes: %w", err)
	}

	return buildTree(flat, counts), nil
}

// buildTree assembles flat, already sorted comments into nested nodes.
// Replies whose parent is missing are dropped.
func buildTree(flat []*models.Comment, counts map[string]int) []*CommentNode {
	nodes := make(map[string]*CommentNode, len(flat))
	for _, c := range flat {
		nodes[c.ID] = &CommentNode{Comment: c, LikeCount: counts[c.ID], Replies: []*CommentNode{}}
	}

	roots := []*CommentNode{}
	for _, c := range flat {
		n := nodes[c.ID]
		if c.ParentID == "" {
			roots = append(roots, n)
			continue
		}
		if parent, ok := nodes[c.ParentID]; ok {
			parent.Replies = append(parent.Replies, n)
		}
	}
	return roots
}

// Update edits a comment. Only its author may do so.
func (s *CommentService) Update(p *models.Principal, postID, commentID, content string) (*models.Comment, error) {
	if err := authz.RequireAuth(p); err != nil {
		return nil, err
	}
	_, comment, err := s.target(postID, commentID)
	if err != nil {
		return nil, err
	}
	if err := authz.RequireOwner(p, comment.UserID, "You can only edit your own comments"); err != nil {
		return nil, err
	}

	if comment.Content, err = cleanContent(content); err != nil {
		return nil, err
	}
	comment.UpdatedAt = s.now()
	if err := s.comments.Update(comment); err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}

	invalidate(s.cache, cache.ClassComments)
	return comment, nil
}

// Delete removes a comment and its replies. Only its author may do so.
func (s *CommentService) Delete(p *models.Principal, postID, commentID string) error {
	if err := authz.RequireAuth(p); err != nil {
		return err
	}
	_, comment, err := s.target(postID, commentID)
	if err != nil {
		return err
	}
	if err := authz.RequireOwner(p, comment.UserID, "You can only delete your own comments"); err != nil {
		return err
	}

	if _, err := s.comments.DeleteTree(comment.ID); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	invalidate(s.cache, cache.ClassComments, cache.ClassPosts)
	return nil
}

// Pin makes the comment the post's pinned comment, replacing any previous
// one. Only the post author may pin.
func (s *CommentService) Pin(p *models.Principal, postID, commentID string) (*models.Post, error) {
	if err := authz.RequireAuth(p); err != nil {
		return nil, err
	}
	post, comment, err := s.target(postID, commentID)
	if err != nil {
		return nil, err
	}
	if err := authz.RequireOwner(p, post.AuthorID, "Only the post author can pin comments"); err != nil {
		return nil, err
	}

	pinned, err := s.posts.SetPin(post.ID, comment.ID, s.now())
	if isNotFound(err) {
		return nil, apperr.NotFound("Comment not found")
	}
	if err != nil {
		return nil, fmt.Errorf("pin comment: %w", err)
	}

	invalidate(s.cache, cache.ClassPosts, cache.ClassComments)
	return pinned, nil
}

// Unpin clears the pinned comment, which must be commentID.
func (s *CommentService) Unpin(p *models.Principal, postID, commentID string) (*models.Post, error) {
	if err := authz.RequireAuth(p); err != nil {
		return nil, err
	}
	post, err := s.getPost(postID)
	if err != nil {
		return nil, err
	}
	if err := authz.RequireOwner(p, post.AuthorID, "Only the post author can unpin comments"); err != nil {
		return nil, err
	}
	if post.PinnedCommentID == "" {
		return nil, apperr.BadRequest("No comment is currently pinned")
	}
	if post.PinnedCommentID != commentID {
		return nil, apperr.BadRequest("This comment is not pinned")
	}

	unpinned, err := s.posts.ClearPin(post.ID, commentID, s.now())
	switch {
	case errors.Is(err, repositories.ErrNotPinned):
		return nil, apperr.BadRequest("This comment is not pinned")
	case isNotFound(err):
		return nil, apperr.NotFound("Post not found")
	case err != nil:
		return nil, fmt.Errorf("unpin comment: %w", err)
	}

	invalidate(s.cache, cache.ClassPosts, cache.ClassComments)
	return unpinned, nil
}

// Like records the principal's like of a comment and returns the new count.
func (s *CommentService) Like(p *models.Principal, postID, commentID string) (int, error) {
	if err := authz.RequireAuth(p); err != nil {
		return 0, err
	}
	_, comment, err := s.target(postID, commentID)
	if err != nil {
		return 0, err
	}

	err = s.likes.LikeComment(&models.CommentLike{CommentID: comment.ID, UserID: p.ID, CreatedAt: s.now()})
	switch {
	case errors.Is(err, repositories.ErrConflict):
		return 0, apperr.BadRequest("You have already liked this comment")
	case isNotFound(err):
		return 0, apperr.NotFound("Comment not found")
	case err != nil:
		return 0, fmt.Errorf("like comment: %w", err)
	}

	invalidate(s.cache, cache.ClassComments)
	return s.likeCount(comment.ID)
}

// Unlike removes the principal's like of a comment and returns the new count.
func (s *CommentService) Unlike(p *models.Principal, postID, commentID string) (int, error) {
	if err := authz.RequireAuth(p); err != nil {
		return 0, err
	}
	_, comment, err := s.target(postID, commentID)
	if err != nil {
		return 0, err
	}

	err = s.likes.UnlikeComment(comment.ID, p.ID)
	if isNotFound(err) {
		return 0, apperr.BadRequest("You have not liked this comment")
	}
	if err != nil {
		return 0, fmt.Errorf("unlike comment: %w", err)
	}

	invalidate(s.cache, cache.ClassComments)
	return s.likeCount(comment.ID)
}

func (s *CommentService) likeCount(id string) (int, error) {
	counts, err := s.likes.CountCommentLikes([]string{id})
	if err != nil {
		return 0, fmt.Errorf("count comment likes: %w", err)
	}
	return counts[id], nil
}
