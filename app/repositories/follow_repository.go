package repositories

import (
	"quill/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerFollowRepository keeps each follow edge under both endpoints so
// either direction can be listed with a prefix scan.
type BadgerFollowRepository struct {
	db *badger.DB
}

func NewBadgerFollowRepository(db *badger.DB) *BadgerFollowRepository {
	return &BadgerFollowRepository{db: db}
}

func (r *BadgerFollowRepository) Follow(follow *models.Follow) error {
	return r.db.Update(func(txn *badger.Txn) error {
		if err := mustExist(txn, key(UserKeyPrefix, follow.FollowingID)); err != nil {
			return err
		}
		out := key(FollowingPrefix, follow.FollowerID, ":", follow.FollowingID)
		taken, err := exists(txn, out)
		if err != nil {
			return err
		}
		if taken {
			return ErrConflict
		}
		if err := putEntity(txn, out, follow); err != nil {
			return err
		}
		return txn.Set(key(FollowerPrefix, follow.FollowingID, ":", follow.FollowerID), nil)
	})
}

func (r *BadgerFollowRepository) Unfollow(followerID, followingID string) error {
	return r.db.Update(func(txn *badger.Txn) error {
		out := key(FollowingPrefix, followerID, ":", followingID)
		if err := mustExist(txn, out); err != nil {
			return err
		}
		if err := txn.Delete(out); err != nil {
			return err
		}
		return txn.Delete(key(FollowerPrefix, followingID, ":", followerID))
	})
}

func (r *BadgerFollowRepository) IsFollowing(followerID, followingID string) (bool, error) {
	var ok bool
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		ok, err = exists(txn, key(FollowingPrefix, followerID, ":", followingID))
		return err
	})
	return ok, err
}

// Following returns the IDs userID follows.
func (r *BadgerFollowRepository) Following(userID string) ([]string, error) {
	var ids []string
	err := r.db.View(func(txn *badger.Txn) error {
		ids = sortStrings(keySuffixes(txn, key(FollowingPrefix, userID, ":")))
		return nil
	})
	return ids, err
}

// Followers returns the IDs following userID.
func (r *BadgerFollowRepository) Followers(userID string) ([]string, error) {
	var ids []string
	err := r.db.View(func(txn *badger.Txn) error {
		ids = sortStrings(keySuffixes(txn, key(FollowerPrefix, userID, ":")))
		return nil
	})
	return ids, err
}
