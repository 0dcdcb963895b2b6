package repositories

import (
	"quill/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerUserRepository implements UserRepository using BadgerDB. Email and
// username are unique without regard to case.
type BadgerUserRepository struct {
	db *badger.DB
}

func NewBadgerUserRepository(db *badger.DB) *BadgerUserRepository {
	return &BadgerUserRepository{db: db}
}

// userRecord is the stored form of a user. The model hides the password
// hash from JSON, so it is carried in its own field here.
type userRecord struct {
	models.User
	PasswordHash string `json:"passwordHash"`
}

func putUser(txn *badger.Txn, user *models.User) error {
	return putEntity(txn, key(UserKeyPrefix, user.ID), userRecord{User: *user, PasswordHash: user.PasswordHash})
}

func getUser(txn *badger.Txn, id string) (*models.User, error) {
	var rec userRecord
	if err := getEntity(txn, key(UserKeyPrefix, id), &rec); err != nil {
		return nil, err
	}
	user := rec.User
	user.PasswordHash = rec.PasswordHash
	return &user, nil
}

// Create stores a new user. It returns ErrConflict when the email or the
// username is taken.
func (r *BadgerUserRepository) Create(user *models.User) error {
	return r.db.Update(func(txn *badger.Txn) error {
		for _, k := range [][]byte{
			indexKey(UserEmailIndex, user.Email),
			indexKey(UserUsernameIndex, user.Username),
		} {
			taken, err := exists(txn, k)
			if err != nil {
				return err
			}
			if taken {
				return ErrConflict
			}
		}

		user.ID = newID()
		if err := putUser(txn, user); err != nil {
			return err
		}
		if err := txn.Set(indexKey(UserEmailIndex, user.Email), []byte(user.ID)); err != nil {
			return err
		}
		return txn.Set(indexKey(UserUsernameIndex, user.Username), []byte(user.ID))
	})
}

func (r *BadgerUserRepository) GetByID(id string) (*models.User, error) {
	var user *models.User
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		user, err = getUser(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *BadgerUserRepository) GetByEmail(email string) (*models.User, error) {
	var user *models.User
	err := r.db.View(func(txn *badger.Txn) error {
		id, err := getString(txn, indexKey(UserEmailIndex, email))
		if err != nil {
			return err
		}
		user, err = getUser(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Update saves profile and role changes. Email and username are immutable.
func (r *BadgerUserRepository) Update(user *models.User) error {
	return r.db.Update(func(txn *badger.Txn) error {
		existing, err := getUser(txn, user.ID)
		if err != nil {
			return err
		}
		user.Email = existing.Email
		user.Username = existing.Username
		user.PasswordHash = existing.PasswordHash
		user.CreatedAt = existing.CreatedAt
		return putUser(txn, user)
	})
}
