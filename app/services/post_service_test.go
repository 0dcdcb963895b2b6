package services

import (
	"testing"
	"time"

	"quill/app/apperr"
	"quill/app/cache"
	"quill/app/models"
	"quill/app/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostCreate(t *testing.T) {
	env := newTestEnv(t)
	author := env.principal(t, "author", models.RoleAuthor)
	admin := env.principal(t, "admin", models.RoleAdmin)

	tag, err := env.tags.Create(admin, TagInput{Name: "golang"})
	require.NoError(t, err)
	category, err := env.categories.Create(admin, CategoryInput{Name: "Tech"})
	require.NoError(t, err)

	tests := []struct {
		name    string
		p       *models.Principal
		in      PostInput
		kind    apperr.Kind
		wantErr bool
	}{
		{
			name: "valid post",
			p:    author,
			in:   PostInput{Title: "Hello", Content: "# Heading\n\nbody text", TagIDs: []string{tag.ID, tag.ID}, CategoryID: category.ID},
		},
		{
			name:    "unauthenticated",
			in:      PostInput{Title: "Hello", Content: "Long enough content"},
			kind:    apperr.KindUnauthorized,
			wantErr: true,
		},
		{
			name:    "title too short",
			p:       author,
			in:      PostInput{Title: "Hi", Content: "Long enough content"},
			kind:    apperr.KindValidation,
			wantErr: true,
		},
		{
			name:    "unknown tag",
			p:       author,
			in:      PostInput{Title: "Hello", Content: "Long enough content", TagIDs: []string{"nope"}},
			kind:    apperr.KindBadRequest,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view, err := env.posts.Create(testCtx, tt.p, tt.in)
			if tt.wantErr {
				requireAppErr(t, apperr.From(err), tt.kind, "")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, author.ID, view.AuthorID)
			assert.Equal(t, []string{tag.ID}, view.TagIDs)
			require.Len(t, view.Tags, 1)
			assert.Equal(t, "golang", view.Tags[0].Name)
			require.NotNil(t, view.Category)
			assert.Equal(t, "Tech", view.Category.Name)
			assert.Contains(t, view.ContentHTML, "<h1")
			require.NotNil(t, view.LikedByMe)
			assert.False(t, *view.LikedByMe)
		})
	}
}

func TestPostUpdateDelete(t *testing.T) {
	env := newTestEnv(t)
	author := env.principal(t, "author", models.RoleAuthor)
	stranger := env.principal(t, "stranger", models.RoleAuthor)
	admin := env.principal(t, "admin", models.RoleAdmin)
	post := env.post(t, author)

	in := PostInput{Title: "Edited title", Content: "Edited content body"}

	_, err := env.posts.Update(testCtx, stranger, post.ID, in)
	requireAppErr(t, err, apperr.KindForbidden, "Not authorized to access this resource")

	_, err = env.posts.Update(testCtx, author, "missing", in)
	requireAppErr(t, err, apperr.KindNotFound, "Post not found")

	updated, err := env.posts.Update(testCtx, author, post.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "Edited title", updated.Title)

	byAdmin, err := env.posts.Update(testCtx, admin, post.ID, PostInput{Title: "Moderated", Content: "Moderated content"})
	require.NoError(t, err)
	assert.Equal(t, author.ID, byAdmin.AuthorID)

	err = env.posts.Delete(stranger, post.ID)
	requireAppErr(t, err, apperr.KindForbidden, "Not authorized to access this resource")

	env.cache.Set(cache.ClassReports+"/reports", []byte("old"), time.Minute)
	require.NoError(t, env.posts.Delete(admin, post.ID))
	_, ok := env.cache.Get(cache.ClassReports + "/reports")
	assert.False(t, ok)

	_, err = env.posts.Get(testCtx, nil, post.ID)
	requireAppErr(t, err, apperr.KindNotFound, "Post not found")
}

func TestPostLikes(t *testing.T) {
	env := newTestEnv(t)
	author := env.principal(t, "author", models.RoleAuthor)
	reader := env.principal(t, "reader", models.RoleAuthor)
	post := env.post(t, author)

	n, err := env.posts.Like(reader, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = env.posts.Like(reader, post.ID)
	requireAppErr(t, err, apperr.KindBadRequest, "You have already liked this post")

	_, err = env.posts.Like(reader, "missing")
	requireAppErr(t, err, apperr.KindNotFound, "Post not found")

	view, err := env.posts.Get(testCtx, reader, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, view.LikeCount)
	assert.True(t, *view.LikedByMe)

	n, err = env.posts.Unlike(reader, post.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = env.posts.Unlike(reader, post.ID)
	requireAppErr(t, err, apperr.KindBadRequest, "You have not liked this post")
}

func TestPostListing(t *testing.T) {
	env := newTestEnv(t)
	author := env.principal(t, "author", models.RoleAuthor)
	reader := env.principal(t, "reader", models.RoleAuthor)

	var ids []string
	for i := 0; i < 5; i++ {
		ids = append(ids, env.post(t, author).ID)
	}
	_, err := env.posts.Like(reader, ids[1])
	require.NoError(t, err)

	page, err := env.posts.List(testCtx, PostQuery{Page: 2, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Posts, 2)
	assert.Equal(t, ids[2], page.Posts[0].ID)
	assert.Equal(t, ids[1], page.Posts[1].ID)
	assert.Equal(t, Pagination{Page: 2, Limit: 2, Total: 5, TotalPages: 3}, page.Pagination)
	assert.Nil(t, page.Posts[0].LikedByMe)

	page, err = env.posts.List(testCtx, PostQuery{PostFilter: repositories.PostFilter{Sort: repositories.SortPopular}})
	require.NoError(t, err)
	assert.Equal(t, ids[1], page.Posts[0].ID)
	assert.Equal(t, 1, page.Posts[0].LikeCount)

	popular, err := env.posts.Popular(testCtx, 1)
	require.NoError(t, err)
	require.Len(t, popular, 1)
	assert.Equal(t, ids[1], popular[0].ID)

	empty, err := env.posts.List(testCtx, PostQuery{PostFilter: repositories.PostFilter{AuthorID: reader.ID}})
	require.NoError(t, err)
	assert.Empty(t, empty.Posts)
	assert.Equal(t, 0, empty.Pagination.Total)
}
