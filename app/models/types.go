package models

import "time"

// User is a registered account.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email" validate:"required,email,max=254"`
	Username     string    `json:"username" validate:"required,alphanum,min=3,max=30"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role" validate:"required,oneof=AUTHOR ADMIN"`
	Bio          string    `json:"bio,omitempty" validate:"max=500"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Principal is the authenticated caller attached to a request.
type Principal struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// Post represents a blog post.
type Post struct {
	ID              string    `json:"id"`
	AuthorID        string    `json:"authorId" validate:"required"`
	Title           string    `json:"title" validate:"required,min=3,max=200"`
	Content         string    `json:"content" validate:"required,min=10"`
	ImageURL        string    `json:"imageUrl,omitempty" validate:"omitempty,max=2048"`
	CategoryID      string    `json:"categoryId,omitempty"`
	TagIDs          []string  `json:"tagIds" validate:"max=10,dive,required"`
	PinnedCommentID string    `json:"pinnedCommentId,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Comment represents a comment on a blog post. ParentID is empty for
// top-level comments.
type Comment struct {
	ID        string    `json:"id"`
	PostID    string    `json:"postId" validate:"required"`
	UserID    string    `json:"userId" validate:"required"`
	ParentID  string    `json:"parentId,omitempty"`
	Content   string    `json:"content" validate:"required,min=1,max=2000"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Tag struct {
	ID        string    `json:"id"`
	Name      string    `json:"name" validate:"required,min=2,max=40"`
	CreatedAt time.Time `json:"createdAt"`
}

type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name" validate:"required,min=2,max=60"`
	Description string    `json:"description,omitempty" validate:"max=500"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type PostLike struct {
	PostID    string    `json:"postId"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

type CommentLike struct {
	CommentID string    `json:"commentId"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

// ReportStatus is the moderation state of a PostReport.
type ReportStatus string

const (
	ReportPending  ReportStatus = "PENDING"
	ReportReviewed ReportStatus = "REVIEWED"
	ReportRejected ReportStatus = "REJECTED"
)

// Valid reports whether s is one of the known statuses.
func (s ReportStatus) Valid() bool {
	switch s {
	case ReportPending, ReportReviewed, ReportRejected:
		return true
	}
	return false
}

type PostReport struct {
	ID         string       `json:"id"`
	PostID     string       `json:"postId" validate:"required"`
	ReporterID string       `json:"reporterId" validate:"required"`
	Reason     string       `json:"reason" validate:"required,min=3,max=500"`
	Status     ReportStatus `json:"status" validate:"required,oneof=PENDING REVIEWED REJECTED"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`
}

type Follow struct {
	FollowerID  string    `json:"followerId"`
	FollowingID string    `json:"followingId"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Activity verbs recorded for the feed.
const (
	VerbPostCreated    = "post.created"
	VerbCommentCreated = "comment.created"
	VerbPostLiked      = "post.liked"
	VerbUserFollowed   = "user.followed"
)

// Activity is an append-only feed entry describing something a user did.
type Activity struct {
	ID        string    `json:"id"`
	ActorID   string    `json:"actorId"`
	Verb      string    `json:"verb"`
	ObjectID  string    `json:"objectId"`
	PostID    string    `json:"postId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Image is the metadata of an uploaded file.
type Image struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Key         string    `json:"key"`
	URL         string    `json:"url"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"createdAt"`
}
