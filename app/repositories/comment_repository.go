package repositories

import (
	"sort"

	"quill/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerCommentRepository implements CommentRepository using BadgerDB.
// Comments are stored flat by ID; each post keeps an index of its comment
// IDs.
type BadgerCommentRepository struct {
	db *badger.DB
}

// NewBadgerCommentRepository creates a new BadgerCommentRepository
func NewBadgerCommentRepository(db *badger.DB) *BadgerCommentRepository {
	return &BadgerCommentRepository{db: db}
}

// Create creates a new comment
func (r *BadgerCommentRepository) Create(comment *models.Comment) error {
	return r.db.Update(func(txn *badger.Txn) error {
		if err := mustExist(txn, key(PostKeyPrefix, comment.PostID)); err != nil {
			return err
		}
		if comment.ParentID != "" {
			ok, err := exists(txn, key(PostCommentIndex, comment.PostID, ":", comment.ParentID))
			if err != nil {
				return err
			}
			if !ok {
				return ErrMissingReference
			}
		}

		comment.ID = newID()
		if err := putEntity(txn, key(CommentKeyPrefix, comment.ID), comment); err != nil {
			return err
		}
		return txn.Set(key(PostCommentIndex, comment.PostID, ":", comment.ID), nil)
	})
}

// GetByID retrieves a comment by ID
func (r *BadgerCommentRepository) GetByID(id string) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.View(func(txn *badger.Txn) error {
		return getEntity(txn, key(CommentKeyPrefix, id), &comment)
	})
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func listByPost(txn *badger.Txn, postID string) ([]*models.Comment, error) {
	ids := keySuffixes(txn, key(PostCommentIndex, postID, ":"))
	comments := make([]*models.Comment, 0, len(ids))
	for _, id := range ids {
		var c models.Comment
		if err := getEntity(txn, key(CommentKeyPrefix, id), &c); err != nil {
			return nil, err
		}
		comments = append(comments, &c)
	}
	sort.Slice(comments, func(i, j int) bool {
		return byCreation(comments[i].CreatedAt, comments[j].CreatedAt, comments[i].ID, comments[j].ID)
	})
	return comments, nil
}

// ListByPost returns every comment of a post, oldest first.
func (r *BadgerCommentRepository) ListByPost(postID string) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		comments, err = listByPost(txn, postID)
		return err
	})
	return comments, err
}

func (r *BadgerCommentRepository) CountByPost(postID string) (int, error) {
	var n int
	err := r.db.View(func(txn *badger.Txn) error {
		n = countPrefix(txn, key(PostCommentIndex, postID, ":"))
		return nil
	})
	return n, err
}

// Update updates an existing comment
func (r *BadgerCommentRepository) Update(comment *models.Comment) error {
	return r.db.Update(func(txn *badger.Txn) error {
		var existing models.Comment
		if err := getEntity(txn, key(CommentKeyPrefix, comment.ID), &existing); err != nil {
			return err
		}
		comment.PostID = existing.PostID
		comment.UserID = existing.UserID
		comment.ParentID = existing.ParentID
		comment.CreatedAt = existing.CreatedAt
		return putEntity(txn, key(CommentKeyPrefix, comment.ID), comment)
	})
}

// DeleteTree removes the comment and every reply below it, clearing the
// post's pin when the pinned comment is among them. It returns the number
// of comments removed.
func (r *BadgerCommentRepository) DeleteTree(id string) (int, error) {
	var removed int
	err := r.db.Update(func(txn *badger.Txn) error {
		var root models.Comment
		if err := getEntity(txn, key(CommentKeyPrefix, id), &root); err != nil {
			return err
		}

		all, err := listByPost(txn, root.PostID)
		if err != nil {
			return err
		}
		children := make(map[string][]string, len(all))
		for _, c := range all {
			if c.ParentID != "" {
				children[c.ParentID] = append(children[c.ParentID], c.ID)
			}
		}

		subtree := map[string]bool{}
		queue := []string{root.ID}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			if subtree[cur] {
				continue
			}
			subtree[cur] = true
			queue = append(queue, children[cur]...)
		}

		for cid := range subtree {
			if err := deleteComment(txn, root.PostID, cid); err != nil {
				return err
			}
		}
		removed = len(subtree)

		var post models.Post
		err = getEntity(txn, key(PostKeyPrefix, root.PostID), &post)
		if err == ErrNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		if subtree[post.PinnedCommentID] {
			post.Unpin()
			return putEntity(txn, key(PostKeyPrefix, post.ID), &post)
		}
		return nil
	})
	return removed, err
}

// deleteComment removes one comment with its index entry and likes.
func deleteComment(txn *badger.Txn, postID, id string) error {
	if err := deletePrefix(txn, key(CommentLikePrefix, id, ":")); err != nil {
		return err
	}
	if err := txn.Delete(key(PostCommentIndex, postID, ":", id)); err != nil {
		return err
	}
	return txn.Delete(key(CommentKeyPrefix, id))
}
