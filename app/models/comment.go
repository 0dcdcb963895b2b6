package models

import (
	"errors"
	"time"
)

// Validate checks if the comment meets all validation requirements
func (c *Comment) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}

	if c.CreatedAt.IsZero() {
		return errors.New("created_at cannot be zero")
	}

	return nil
}

// BeforeCreate sets up any necessary fields before creation
func (c *Comment) BeforeCreate(now time.Time) {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = c.CreatedAt
}

// IsReply reports whether the comment is nested under another comment.
func (c *Comment) IsReply() bool {
	return c.ParentID != ""
}

// SetPost attaches the comment to post
func (c *Comment) SetPost(post *Post) error {
	if post == nil {
		return errors.New("post cannot be nil")
	}

	c.PostID = post.ID
	return nil
}

// SetParent makes the comment a reply to parent. The parent must belong to
// the same post.
func (c *Comment) SetParent(parent *Comment) error {
	if parent == nil {
		return errors.New("parent cannot be nil")
	}
	if parent.PostID != c.PostID {
		return errors.New("parent belongs to a different post")
	}
	c.ParentID = parent.ID
	return nil
}
