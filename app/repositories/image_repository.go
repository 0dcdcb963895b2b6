package repositories

import (
	"quill/app/models"

	"github.com/dgraph-io/badger/v4"
)

type BadgerImageRepository struct {
	db *badger.DB
}

func NewBadgerImageRepository(db *badger.DB) *BadgerImageRepository {
	return &BadgerImageRepository{db: db}
}

// Create stores image metadata, keeping a caller-chosen ID since it is
// part of the object key.
func (r *BadgerImageRepository) Create(image *models.Image) error {
	return r.db.Update(func(txn *badger.Txn) error {
		if image.ID == "" {
			image.ID = newID()
		}
		return putEntity(txn, key(ImageKeyPrefix, image.ID), image)
	})
}

func (r *BadgerImageRepository) GetByID(id string) (*models.Image, error) {
	var image models.Image
	err := r.db.View(func(txn *badger.Txn) error {
		return getEntity(txn, key(ImageKeyPrefix, id), &image)
	})
	if err != nil {
		return nil, err
	}
	return &image, nil
}

func (r *BadgerImageRepository) Delete(id string) error {
	return r.db.Update(func(txn *badger.Txn) error {
		if err := mustExist(txn, key(ImageKeyPrefix, id)); err != nil {
			return err
		}
		return txn.Delete(key(ImageKeyPrefix, id))
	})
}

// NewImageID returns an ID suitable for a new image.
func NewImageID() string { return newID() }
