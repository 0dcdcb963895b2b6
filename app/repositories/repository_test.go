package repositories

import (
	"encoding/json"
	"testing"
	"time"

	"quill/app/models"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepos(t *testing.T) (*Repositories, *badger.DB) {
	t.Helper()
	db, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db), db
}

func createUser(t *testing.T, repos *Repositories, name string) *models.User {
	t.Helper()
	u := &models.User{
		Email:        name + "@example.com",
		Username:     name,
		PasswordHash: "hash-" + name,
		Role:         models.RoleAuthor,
		CreatedAt:    time.Now(),
	}
	require.NoError(t, repos.Users.Create(u))
	return u
}

func createPost(t *testing.T, repos *Repositories, authorID, title string, at time.Time) *models.Post {
	t.Helper()
	p := &models.Post{
		AuthorID: authorID,
		Title:    title,
		Content:  "Content long enough for a post",
		TagIDs:   []string{},
	}
	p.BeforeCreate(at)
	require.NoError(t, repos.Posts.Create(p))
	return p
}

func createComment(t *testing.T, repos *Repositories, postID, parentID string, at time.Time) *models.Comment {
	t.Helper()
	c := &models.Comment{PostID: postID, UserID: "u1", ParentID: parentID, Content: "hello"}
	c.BeforeCreate(at)
	require.NoError(t, repos.Comments.Create(c))
	return c
}

func TestNewIDIsTimeOrdered(t *testing.T) {
	prev := newID()
	for i := 0; i < 100; i++ {
		next := newID()
		assert.Less(t, prev, next)
		prev = next
	}
}

func TestUserRepository(t *testing.T) {
	repos, _ := newTestRepos(t)
	u := createUser(t, repos, "ada")
	assert.NotEmpty(t, u.ID)

	t.Run("get by id and email", func(t *testing.T) {
		got, err := repos.Users.GetByID(u.ID)
		require.NoError(t, err)
		assert.Equal(t, "ada", got.Username)

		got, err = repos.Users.GetByEmail("ADA@example.com")
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)
	})

	t.Run("password hash is stored but not exposed", func(t *testing.T) {
		got, err := repos.Users.GetByEmail("ada@example.com")
		require.NoError(t, err)
		assert.Equal(t, "hash-ada", got.PasswordHash)

		body, err := json.Marshal(got)
		require.NoError(t, err)
		assert.NotContains(t, string(body), "hash-ada")
	})

	t.Run("duplicate email or username", func(t *testing.T) {
		err := repos.Users.Create(&models.User{Email: "Ada@Example.com", Username: "other", Role: models.RoleAuthor})
		assert.ErrorIs(t, err, ErrConflict)

		err = repos.Users.Create(&models.User{Email: "new@example.com", Username: "ADA", Role: models.RoleAuthor})
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("update keeps identity fields", func(t *testing.T) {
		u.Role = models.RoleAdmin
		u.Email = "changed@example.com"
		u.PasswordHash = ""
		require.NoError(t, repos.Users.Update(u))

		got, err := repos.Users.GetByID(u.ID)
		require.NoError(t, err)
		assert.Equal(t, models.RoleAdmin, got.Role)
		assert.Equal(t, "ada@example.com", got.Email)
		assert.Equal(t, "hash-ada", got.PasswordHash)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := repos.Users.GetByID("nope")
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = repos.Users.GetByEmail("nope@example.com")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, repos.Users.Update(&models.User{ID: "nope"}), ErrNotFound)
	})
}

func TestTagRepository(t *testing.T) {
	repos, _ := newTestRepos(t)

	golang := &models.Tag{Name: "Go", CreatedAt: time.Now()}
	require.NoError(t, repos.Tags.Create(golang))
	web := &models.Tag{Name: "web", CreatedAt: time.Now()}
	require.NoError(t, repos.Tags.Create(web))

	t.Run("names are unique ignoring case", func(t *testing.T) {
		assert.ErrorIs(t, repos.Tags.Create(&models.Tag{Name: "go"}), ErrConflict)
		assert.ErrorIs(t, repos.Tags.Update(&models.Tag{ID: web.ID, Name: "GO"}), ErrConflict)
	})

	t.Run("list sorted by name", func(t *testing.T) {
		tags, err := repos.Tags.List()
		require.NoError(t, err)
		require.Len(t, tags, 2)
		assert.Equal(t, "Go", tags[0].Name)
		assert.Equal(t, "web", tags[1].Name)
	})

	t.Run("rename frees old name", func(t *testing.T) {
		require.NoError(t, repos.Tags.Update(&models.Tag{ID: web.ID, Name: "frontend"}))
		assert.NoError(t, repos.Tags.Create(&models.Tag{Name: "web"}))
	})

	t.Run("get many skips missing", func(t *testing.T) {
		tags, err := repos.Tags.GetMany([]string{golang.ID, "missing", web.ID})
		require.NoError(t, err)
		require.Len(t, tags, 2)
		assert.Equal(t, golang.ID, tags[0].ID)
	})

	t.Run("delete detaches from posts", func(t *testing.T) {
		post := &models.Post{AuthorID: "u1", Title: "Tagged", Content: "Content long enough", TagIDs: []string{golang.ID, web.ID}}
		post.BeforeCreate(time.Now())
		require.NoError(t, repos.Posts.Create(post))

		require.NoError(t, repos.Tags.Delete(golang.ID))

		got, err := repos.Posts.GetByID(post.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{web.ID}, got.TagIDs)
		_, err = repos.Tags.GetByID(golang.ID)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NoError(t, repos.Tags.Create(&models.Tag{Name: "go"}))
	})
}

func TestCategoryRepository(t *testing.T) {
	repos, _ := newTestRepos(t)

	news := &models.Category{Name: "News"}
	require.NoError(t, repos.Categories.Create(news))
	assert.ErrorIs(t, repos.Categories.Create(&models.Category{Name: "news"}), ErrConflict)

	post := &models.Post{AuthorID: "u1", Title: "Filed", Content: "Content long enough", CategoryID: news.ID}
	post.BeforeCreate(time.Now())
	require.NoError(t, repos.Posts.Create(post))

	news.Description = "Daily"
	require.NoError(t, repos.Categories.Update(news))
	got, err := repos.Categories.GetByID(news.ID)
	require.NoError(t, err)
	assert.Equal(t, "Daily", got.Description)

	require.NoError(t, repos.Categories.Delete(news.ID))
	p, err := repos.Posts.GetByID(post.ID)
	require.NoError(t, err)
	assert.Empty(t, p.CategoryID)

	list, err := repos.Categories.List()
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.ErrorIs(t, repos.Categories.Delete(news.ID), ErrNotFound)
}
