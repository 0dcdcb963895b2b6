package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPostValidation(t *testing.T) {
	tests := []struct {
		name    string
		post    *Post
		wantErr bool
	}{
		{
			name: "valid post",
			post: &Post{
				ID:        "p1",
				AuthorID:  "u1",
				Title:     "Valid Title",
				Content:   "This is valid content that meets the minimum length requirement",
				CreatedAt: time.Now(),
			},
			wantErr: false,
		},
		{
			name: "title too short",
			post: &Post{
				ID:        "p1",
				AuthorID:  "u1",
				Title:     "ab",
				Content:   "This is valid content",
				CreatedAt: time.Now(),
			},
			wantErr: true,
		},
		{
			name: "content too short",
			post: &Post{
				ID:        "p1",
				AuthorID:  "u1",
				Title:     "Valid Title",
				Content:   "Too short",
				CreatedAt: time.Now(),
			},
			wantErr: true,
		},
		{
			name: "missing author",
			post: &Post{
				ID:        "p1",
				Title:     "Valid Title",
				Content:   "This is valid content",
				CreatedAt: time.Now(),
			},
			wantErr: true,
		},
		{
			name: "zero creation time",
			post: &Post{
				ID:        "p1",
				AuthorID:  "u1",
				Title:     "Valid Title",
				Content:   "This is valid content",
				CreatedAt: time.Time{},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.post.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPostBeforeCreate(t *testing.T) {
	post := &Post{
		ID:      "p1",
		Title:   "Test Post",
		Content: "Test Content",
	}

	assert.True(t, post.CreatedAt.IsZero())
	now := time.Now()
	post.BeforeCreate(now)
	assert.Equal(t, now, post.CreatedAt)
	assert.Equal(t, now, post.UpdatedAt)
	assert.NotNil(t, post.TagIDs)
}

func TestPostTags(t *testing.T) {
	post := &Post{ID: "p1", TagIDs: []string{"go", "web"}}

	assert.True(t, post.HasTag("go"))
	assert.False(t, post.HasTag("rust"))

	assert.True(t, post.RemoveTag("go"))
	assert.False(t, post.RemoveTag("go"))
	assert.Equal(t, []string{"web"}, post.TagIDs)
}

func TestPostPin(t *testing.T) {
	post := &Post{ID: "p1"}

	t.Run("pin own comment", func(t *testing.T) {
		err := post.Pin(&Comment{ID: "c1", PostID: "p1"})
		assert.NoError(t, err)
		assert.Equal(t, "c1", post.PinnedCommentID)
	})

	t.Run("pin foreign comment", func(t *testing.T) {
		err := post.Pin(&Comment{ID: "c2", PostID: "p2"})
		assert.Error(t, err)
		assert.Equal(t, "c1", post.PinnedCommentID)
	})

	t.Run("pin nil", func(t *testing.T) {
		assert.Error(t, post.Pin(nil))
	})

	t.Run("unpin", func(t *testing.T) {
		post.Unpin()
		assert.Empty(t, post.PinnedCommentID)
	})
}
