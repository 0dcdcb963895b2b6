package models

import (
	"errors"
	"time"
)

// Validate checks if the post meets all validation requirements
func (p *Post) Validate() error {
	if err := validate.Struct(p); err != nil {
		return err
	}

	if p.CreatedAt.IsZero() {
		return errors.New("created_at cannot be zero")
	}

	return nil
}

// BeforeCreate sets up any necessary fields before creation
func (p *Post) BeforeCreate(now time.Time) {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = p.CreatedAt
	if p.TagIDs == nil {
		p.TagIDs = []string{}
	}
}

// HasTag reports whether the post is tagged with tagID.
func (p *Post) HasTag(tagID string) bool {
	for _, id := range p.TagIDs {
		if id == tagID {
			return true
		}
	}
	return false
}

// RemoveTag drops tagID from the post's tags. It reports whether the tag was
// present.
func (p *Post) RemoveTag(tagID string) bool {
	for i, id := range p.TagIDs {
		if id == tagID {
			p.TagIDs = append(p.TagIDs[:i], p.TagIDs[i+1:]...)
			return true
		}
	}
	return false
}

// Pin marks comment as the post's pinned comment.
func (p *Post) Pin(comment *Comment) error {
	if comment == nil {
		return errors.New("comment cannot be nil")
	}
	if comment.PostID != p.ID {
		return errors.New("comment does not belong to this post")
	}
	p.PinnedCommentID = comment.ID
	return nil
}

// Unpin clears the pinned comment.
func (p *Post) Unpin() {
	p.PinnedCommentID = ""
}
