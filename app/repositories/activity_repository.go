package repositories

import (
	"quill/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerActivityRepository is an append-only log per actor. Keys embed
// time-ordered IDs so a reverse scan yields newest first.
type BadgerActivityRepository struct {
	db *badger.DB
}

func NewBadgerActivityRepository(db *badger.DB) *BadgerActivityRepository {
	return &BadgerActivityRepository{db: db}
}

func (r *BadgerActivityRepository) Append(activity *models.Activity) error {
	return r.db.Update(func(txn *badger.Txn) error {
		activity.ID = newID()
		return putEntity(txn, key(ActivityKeyPrefix, activity.ActorID, ":", activity.ID), activity)
	})
}

// ListByActor returns at most limit activities of actorID, newest first.
func (r *BadgerActivityRepository) ListByActor(actorID string, limit int) ([]*models.Activity, error) {
	activities := []*models.Activity{}
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := key(ActivityKeyPrefix, actorID, ":")
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(append(append([]byte{}, prefix...), 0xFF)); it.ValidForPrefix(prefix); it.Next() {
			if limit > 0 && len(activities) >= limit {
				break
			}
			var a models.Activity
			if err := it.Item().Value(func(val []byte) error {
				return unmarshalEntity(val, &a)
			}); err != nil {
				return err
			}
			activities = append(activities, &a)
		}
		return nil
	})
	return activities, err
}
