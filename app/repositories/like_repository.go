package repositories

import (
	"quill/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerLikeRepository stores at most one like per user and target.
type BadgerLikeRepository struct {
	db *badger.DB
}

func NewBadgerLikeRepository(db *badger.DB) *BadgerLikeRepository {
	return &BadgerLikeRepository{db: db}
}

func (r *BadgerLikeRepository) add(k []byte, target []byte, like interface{}) error {
	return r.db.Update(func(txn *badger.Txn) error {
		if err := mustExist(txn, target); err != nil {
			return err
		}
		taken, err := exists(txn, k)
		if err != nil {
			return err
		}
		if taken {
			return ErrConflict
		}
		return putEntity(txn, k, like)
	})
}

func (r *BadgerLikeRepository) remove(k []byte) error {
	return r.db.Update(func(txn *badger.Txn) error {
		if err := mustExist(txn, k); err != nil {
			return err
		}
		return txn.Delete(k)
	})
}

// LikePost returns ErrConflict if the user already liked the post.
func (r *BadgerLikeRepository) LikePost(like *models.PostLike) error {
	return r.add(key(PostLikePrefix, like.PostID, ":", like.UserID), key(PostKeyPrefix, like.PostID), like)
}

// UnlikePost returns ErrNotFound if there is no like to remove.
func (r *BadgerLikeRepository) UnlikePost(postID, userID string) error {
	return r.remove(key(PostLikePrefix, postID, ":", userID))
}

func (r *BadgerLikeRepository) CountPostLikes(postID string) (int, error) {
	var n int
	err := r.db.View(func(txn *badger.Txn) error {
		n = countPrefix(txn, key(PostLikePrefix, postID, ":"))
		return nil
	})
	return n, err
}

func (r *BadgerLikeRepository) HasLikedPost(postID, userID string) (bool, error) {
	var ok bool
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		ok, err = exists(txn, key(PostLikePrefix, postID, ":", userID))
		return err
	})
	return ok, err
}

func (r *BadgerLikeRepository) LikeComment(like *models.CommentLike) error {
	return r.add(key(CommentLikePrefix, like.CommentID, ":", like.UserID), key(CommentKeyPrefix, like.CommentID), like)
}

func (r *BadgerLikeRepository) UnlikeComment(commentID, userID string) error {
	return r.remove(key(CommentLikePrefix, commentID, ":", userID))
}

// CountCommentLikes returns the like count of each comment in one read.
func (r *BadgerLikeRepository) CountCommentLikes(commentIDs []string) (map[string]int, error) {
	counts := make(map[string]int, len(commentIDs))
	err := r.db.View(func(txn *badger.Txn) error {
		for _, id := range commentIDs {
			counts[id] = countPrefix(txn, key(CommentLikePrefix, id, ":"))
		}
		return nil
	})
	return counts, err
}
