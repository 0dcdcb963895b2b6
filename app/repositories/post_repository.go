package repositories

import (
	"sort"
	"strings"
	"time"

	"quill/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerPostRepository implements PostRepository using BadgerDB
type BadgerPostRepository struct {
	db *badger.DB
}

// NewBadgerPostRepository creates a new BadgerPostRepository
func NewBadgerPostRepository(db *badger.DB) *BadgerPostRepository {
	return &BadgerPostRepository{db: db}
}

// checkRefs verifies the post's category and tags exist.
func checkRefs(txn *badger.Txn, post *models.Post) error {
	refs := make([][]byte, 0, len(post.TagIDs)+1)
	if post.CategoryID != "" {
		refs = append(refs, key(CategoryKeyPrefix, post.CategoryID))
	}
	for _, id := range post.TagIDs {
		refs = append(refs, key(TagKeyPrefix, id))
	}
	for _, k := range refs {
		ok, err := exists(txn, k)
		if err != nil {
			return err
		}
		if !ok {
			return ErrMissingReference
		}
	}
	return nil
}

// Create creates a new post
func (r *BadgerPostRepository) Create(post *models.Post) error {
	return r.db.Update(func(txn *badger.Txn) error {
		if err := checkRefs(txn, post); err != nil {
			return err
		}
		post.ID = newID()
		return putEntity(txn, key(PostKeyPrefix, post.ID), post)
	})
}

// GetByID retrieves a post by ID
func (r *BadgerPostRepository) GetByID(id string) (*models.Post, error) {
	var post models.Post
	err := r.db.View(func(txn *badger.Txn) error {
		return getEntity(txn, key(PostKeyPrefix, id), &post)
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (f PostFilter) matches(p *models.Post) bool {
	if f.AuthorID != "" && p.AuthorID != f.AuthorID {
		return false
	}
	if f.CategoryID != "" && p.CategoryID != f.CategoryID {
		return false
	}
	if f.TagID != "" && !p.HasTag(f.TagID) {
		return false
	}
	if f.Query != "" {
		q := strings.ToLower(f.Query)
		if !strings.Contains(strings.ToLower(p.Title), q) &&
			!strings.Contains(strings.ToLower(p.Content), q) {
			return false
		}
	}
	return true
}

func loadPosts(txn *badger.Txn, filter PostFilter) ([]*models.Post, error) {
	var posts []*models.Post
	err := eachValue(txn, []byte(PostKeyPrefix), func(val []byte) error {
		var p models.Post
		if err := unmarshalEntity(val, &p); err != nil {
			return err
		}
		if filter.matches(&p) {
			posts = append(posts, &p)
		}
		return nil
	})
	return posts, err
}

// Find returns a page of posts matching filter. Recent posts come newest
// first; popular posts are ordered by like count, then recency.
func (r *BadgerPostRepository) Find(filter PostFilter, limit, offset int) ([]*models.Post, error) {
	var page []*models.Post
	err := r.db.View(func(txn *badger.Txn) error {
		posts, err := loadPosts(txn, filter)
		if err != nil {
			return err
		}

		newer := func(a, b *models.Post) bool {
			return byCreation(b.CreatedAt, a.CreatedAt, b.ID, a.ID)
		}
		if filter.Sort == SortPopular {
			likes := make(map[string]int, len(posts))
			for _, p := range posts {
				likes[p.ID] = countPrefix(txn, key(PostLikePrefix, p.ID, ":"))
			}
			sort.Slice(posts, func(i, j int) bool {
				if likes[posts[i].ID] != likes[posts[j].ID] {
					return likes[posts[i].ID] > likes[posts[j].ID]
				}
				return newer(posts[i], posts[j])
			})
		} else {
			sort.Slice(posts, func(i, j int) bool { return newer(posts[i], posts[j]) })
		}

		if offset >= len(posts) {
			page = []*models.Post{}
			return nil
		}
		end := offset + limit
		if limit <= 0 || end > len(posts) {
			end = len(posts)
		}
		page = posts[offset:end]
		return nil
	})
	return page, err
}

// Count returns how many posts match filter.
func (r *BadgerPostRepository) Count(filter PostFilter) (int, error) {
	var n int
	err := r.db.View(func(txn *badger.Txn) error {
		posts, err := loadPosts(txn, filter)
		n = len(posts)
		return err
	})
	return n, err
}

// Update updates an existing post. The pinned comment is only changed
// through SetPin and ClearPin.
func (r *BadgerPostRepository) Update(post *models.Post) error {
	return r.db.Update(func(txn *badger.Txn) error {
		var existing models.Post
		if err := getEntity(txn, key(PostKeyPrefix, post.ID), &existing); err != nil {
			return err
		}
		if err := checkRefs(txn, post); err != nil {
			return err
		}
		post.AuthorID = existing.AuthorID
		post.CreatedAt = existing.CreatedAt
		post.PinnedCommentID = existing.PinnedCommentID
		return putEntity(txn, key(PostKeyPrefix, post.ID), post)
	})
}

// SetPin pins commentID on the post, replacing any earlier pin. The comment
// must exist and belong to the post when the write happens.
func (r *BadgerPostRepository) SetPin(postID, commentID string, at time.Time) (*models.Post, error) {
	var post models.Post
	err := r.db.Update(func(txn *badger.Txn) error {
		if err := getEntity(txn, key(PostKeyPrefix, postID), &post); err != nil {
			return err
		}
		var comment models.Comment
		if err := getEntity(txn, key(CommentKeyPrefix, commentID), &comment); err != nil {
			return err
		}
		if err := post.Pin(&comment); err != nil {
			return ErrNotFound
		}
		post.UpdatedAt = at
		return putEntity(txn, key(PostKeyPrefix, post.ID), &post)
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// ClearPin unpins commentID. It returns ErrNotPinned when commentID is not
// the post's pinned comment at the time of the write.
func (r *BadgerPostRepository) ClearPin(postID, commentID string, at time.Time) (*models.Post, error) {
	var post models.Post
	err := r.db.Update(func(txn *badger.Txn) error {
		if err := getEntity(txn, key(PostKeyPrefix, postID), &post); err != nil {
			return err
		}
		if post.PinnedCommentID == "" || post.PinnedCommentID != commentID {
			return ErrNotPinned
		}
		post.Unpin()
		post.UpdatedAt = at
		return putEntity(txn, key(PostKeyPrefix, post.ID), &post)
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// Delete removes the post with its comments, likes and reports.
func (r *BadgerPostRepository) Delete(id string) error {
	return r.db.Update(func(txn *badger.Txn) error {
		if err := mustExist(txn, key(PostKeyPrefix, id)); err != nil {
			return err
		}

		commentIndex := key(PostCommentIndex, id, ":")
		for _, cid := range keySuffixes(txn, commentIndex) {
			if err := deleteComment(txn, id, cid); err != nil {
				return err
			}
		}

		reportIndex := key(PostReportIndex, id, ":")
		for _, reporter := range keySuffixes(txn, reportIndex) {
			rid, err := getString(txn, key(string(reportIndex), reporter))
			if err != nil {
				return err
			}
			if err := txn.Delete(key(ReportKeyPrefix, rid)); err != nil {
				return err
			}
		}
		if err := deletePrefix(txn, reportIndex); err != nil {
			return err
		}

		if err := deletePrefix(txn, key(PostLikePrefix, id, ":")); err != nil {
			return err
		}
		return txn.Delete(key(PostKeyPrefix, id))
	})
}

// rewritePosts applies fn to every post and saves the ones it changed.
func rewritePosts(txn *badger.Txn, fn func(p *models.Post) bool) error {
	posts, err := loadPosts(txn, PostFilter{})
	if err != nil {
		return err
	}
	for _, p := range posts {
		if fn(p) {
			if err := putEntity(txn, key(PostKeyPrefix, p.ID), p); err != nil {
				return err
			}
		}
	}
	return nil
}
