package repositories

import (
	"testing"
	"time"

	"quill/app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentRepository(t *testing.T) {
	repos, _ := newTestRepos(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	post := createPost(t, repos, "u1", "Post", base)

	t.Run("create requires post and parent", func(t *testing.T) {
		c := &models.Comment{PostID: "missing", UserID: "u1", Content: "x"}
		assert.ErrorIs(t, repos.Comments.Create(c), ErrNotFound)

		c = &models.Comment{PostID: post.ID, UserID: "u1", ParentID: "missing", Content: "x"}
		assert.ErrorIs(t, repos.Comments.Create(c), ErrMissingReference)
	})

	t.Run("list is oldest first", func(t *testing.T) {
		later := createComment(t, repos, post.ID, "", base.Add(time.Minute))
		earlier := createComment(t, repos, post.ID, "", base)

		comments, err := repos.Comments.ListByPost(post.ID)
		require.NoError(t, err)
		require.Len(t, comments, 2)
		assert.Equal(t, earlier.ID, comments[0].ID)
		assert.Equal(t, later.ID, comments[1].ID)

		n, err := repos.Comments.CountByPost(post.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})

	t.Run("update keeps placement", func(t *testing.T) {
		c := createComment(t, repos, post.ID, "", base)
		c.Content = "edited"
		c.PostID = "elsewhere"
		require.NoError(t, repos.Comments.Update(c))

		got, err := repos.Comments.GetByID(c.ID)
		require.NoError(t, err)
		assert.Equal(t, "edited", got.Content)
		assert.Equal(t, post.ID, got.PostID)
	})
}

func TestCommentRepositoryDeleteTree(t *testing.T) {
	repos, _ := newTestRepos(t)
	now := time.Now()
	post := createPost(t, repos, "u1", "Post", now)

	root := createComment(t, repos, post.ID, "", now)
	child := createComment(t, repos, post.ID, root.ID, now)
	grandchild := createComment(t, repos, post.ID, child.ID, now)
	sibling := createComment(t, repos, post.ID, "", now)

	require.NoError(t, repos.Likes.LikeComment(&models.CommentLike{CommentID: grandchild.ID, UserID: "u2"}))

	_, err := repos.Posts.SetPin(post.ID, grandchild.ID, now)
	require.NoError(t, err)

	n, err := repos.Comments.DeleteTree(root.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	for _, id := range []string{root.ID, child.ID, grandchild.ID} {
		_, err := repos.Comments.GetByID(id)
		assert.ErrorIs(t, err, ErrNotFound)
	}

	remaining, err := repos.Comments.ListByPost(post.ID)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, sibling.ID, remaining[0].ID)

	got, err := repos.Posts.GetByID(post.ID)
	require.NoError(t, err)
	assert.Empty(t, got.PinnedCommentID)

	counts, err := repos.Likes.CountCommentLikes([]string{grandchild.ID})
	require.NoError(t, err)
	assert.Zero(t, counts[grandchild.ID])

	_, err = repos.Comments.DeleteTree(root.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCommentRepositoryDeleteTreeKeepsUnrelatedPin(t *testing.T) {
	repos, _ := newTestRepos(t)
	now := time.Now()
	post := createPost(t, repos, "u1", "Post", now)
	pinned := createComment(t, repos, post.ID, "", now)
	doomed := createComment(t, repos, post.ID, "", now)

	_, err := repos.Posts.SetPin(post.ID, pinned.ID, now)
	require.NoError(t, err)

	_, err = repos.Comments.DeleteTree(doomed.ID)
	require.NoError(t, err)

	got, err := repos.Posts.GetByID(post.ID)
	require.NoError(t, err)
	assert.Equal(t, pinned.ID, got.PinnedCommentID)
}
