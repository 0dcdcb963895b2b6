package repositories

import (
	"time"

	"quill/app/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Update(user *models.User) error
}

// PostSort selects the ordering of post listings.
type PostSort string

const (
	SortRecent  PostSort = "recent"
	SortPopular PostSort = "popular"
)

// PostFilter narrows post listings. Empty fields match everything.
type PostFilter struct {
	TagID      string
	CategoryID string
	AuthorID   string
	Query      string
	Sort       PostSort
}

// PostRepository defines the interface for post data access
type PostRepository interface {
	Create(post *models.Post) error
	GetByID(id string) (*models.Post, error)
	Find(filter PostFilter, limit, offset int) ([]*models.Post, error)
	Count(filter PostFilter) (int, error)
	Update(post *models.Post) error
	SetPin(postID, commentID string, at time.Time) (*models.Post, error)
	ClearPin(postID, commentID string, at time.Time) (*models.Post, error)
	Delete(id string) error
}

// CommentRepository defines the interface for comment data access
type CommentRepository interface {
	Create(comment *models.Comment) error
	GetByID(id string) (*models.Comment, error)
	ListByPost(postID string) ([]*models.Comment, error)
	CountByPost(postID string) (int, error)
	Update(comment *models.Comment) error
	DeleteTree(id string) (int, error)
}

type TagRepository interface {
	Create(tag *models.Tag) error
	GetByID(id string) (*models.Tag, error)
	GetMany(ids []string) ([]*models.Tag, error)
	List() ([]*models.Tag, error)
	Update(tag *models.Tag) error
	Delete(id string) error
}

type CategoryRepository interface {
	Create(category *models.Category) error
	GetByID(id string) (*models.Category, error)
	List() ([]*models.Category, error)
	Update(category *models.Category) error
	Delete(id string) error
}

type ReportRepository interface {
	Create(report *models.PostReport) error
	GetByID(id string) (*models.PostReport, error)
	List(status models.ReportStatus) ([]*models.PostReport, error)
	Update(report *models.PostReport) error
}

type LikeRepository interface {
	LikePost(like *models.PostLike) error
	UnlikePost(postID, userID string) error
	CountPostLikes(postID string) (int, error)
	HasLikedPost(postID, userID string) (bool, error)
	LikeComment(like *models.CommentLike) error
	UnlikeComment(commentID, userID string) error
	CountCommentLikes(commentIDs []string) (map[string]int, error)
}

type FollowRepository interface {
	Follow(follow *models.Follow) error
	Unfollow(followerID, followingID string) error
	IsFollowing(followerID, followingID string) (bool, error)
	Following(userID string) ([]string, error)
	Followers(userID string) ([]string, error)
}

type ActivityRepository interface {
	Append(activity *models.Activity) error
	ListByActor(actorID string, limit int) ([]*models.Activity, error)
}

type ImageRepository interface {
	Create(image *models.Image) error
	GetByID(id string) (*models.Image, error)
	Delete(id string) error
}
