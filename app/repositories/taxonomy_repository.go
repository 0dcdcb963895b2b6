package repositories

import (
	"sort"
	"strings"

	"quill/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerTagRepository implements TagRepository using BadgerDB
type BadgerTagRepository struct {
	db *badger.DB
}

func NewBadgerTagRepository(db *badger.DB) *BadgerTagRepository {
	return &BadgerTagRepository{db: db}
}

// claimName points the name index at id, failing if another record holds
// the name.
func claimName(txn *badger.Txn, index, name, id string) error {
	owner, err := getString(txn, indexKey(index, name))
	if err == nil && owner != id {
		return ErrConflict
	}
	if err != nil && err != ErrNotFound {
		return err
	}
	return txn.Set(indexKey(index, name), []byte(id))
}

func (r *BadgerTagRepository) Create(tag *models.Tag) error {
	return r.db.Update(func(txn *badger.Txn) error {
		tag.ID = newID()
		if err := claimName(txn, TagNameIndex, tag.Name, tag.ID); err != nil {
			return err
		}
		return putEntity(txn, key(TagKeyPrefix, tag.ID), tag)
	})
}

func (r *BadgerTagRepository) GetByID(id string) (*models.Tag, error) {
	var tag models.Tag
	err := r.db.View(func(txn *badger.Txn) error {
		return getEntity(txn, key(TagKeyPrefix, id), &tag)
	})
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

// GetMany loads tags in the order of ids, skipping ones that no longer
// exist.
func (r *BadgerTagRepository) GetMany(ids []string) ([]*models.Tag, error) {
	tags := make([]*models.Tag, 0, len(ids))
	err := r.db.View(func(txn *badger.Txn) error {
		for _, id := range ids {
			var tag models.Tag
			err := getEntity(txn, key(TagKeyPrefix, id), &tag)
			if err == ErrNotFound {
				continue
			}
			if err != nil {
				return err
			}
			tags = append(tags, &tag)
		}
		return nil
	})
	return tags, err
}

// List returns every tag ordered by name.
func (r *BadgerTagRepository) List() ([]*models.Tag, error) {
	tags := []*models.Tag{}
	err := r.db.View(func(txn *badger.Txn) error {
		return eachValue(txn, []byte(TagKeyPrefix), func(val []byte) error {
			var tag models.Tag
			if err := unmarshalEntity(val, &tag); err != nil {
				return err
			}
			tags = append(tags, &tag)
			return nil
		})
	})
	sort.Slice(tags, func(i, j int) bool {
		return strings.ToLower(tags[i].Name) < strings.ToLower(tags[j].Name)
	})
	return tags, err
}

func (r *BadgerTagRepository) Update(tag *models.Tag) error {
	return r.db.Update(func(txn *badger.Txn) error {
		var existing models.Tag
		if err := getEntity(txn, key(TagKeyPrefix, tag.ID), &existing); err != nil {
			return err
		}
		if err := claimName(txn, TagNameIndex, tag.Name, tag.ID); err != nil {
			return err
		}
		if !strings.EqualFold(existing.Name, tag.Name) {
			if err := txn.Delete(indexKey(TagNameIndex, existing.Name)); err != nil {
				return err
			}
		}
		tag.CreatedAt = existing.CreatedAt
		return putEntity(txn, key(TagKeyPrefix, tag.ID), tag)
	})
}

// Delete removes the tag and detaches it from every post.
func (r *BadgerTagRepository) Delete(id string) error {
	return r.db.Update(func(txn *badger.Txn) error {
		var tag models.Tag
		if err := getEntity(txn, key(TagKeyPrefix, id), &tag); err != nil {
			return err
		}
		err := rewritePosts(txn, func(p *models.Post) bool { return p.RemoveTag(id) })
		if err != nil {
			return err
		}
		if err := txn.Delete(indexKey(TagNameIndex, tag.Name)); err != nil {
			return err
		}
		return txn.Delete(key(TagKeyPrefix, id))
	})
}

// BadgerCategoryRepository implements CategoryRepository using BadgerDB
type BadgerCategoryRepository struct {
	db *badger.DB
}

func NewBadgerCategoryRepository(db *badger.DB) *BadgerCategoryRepository {
	return &BadgerCategoryRepository{db: db}
}

func (r *BadgerCategoryRepository) Create(category *models.Category) error {
	return r.db.Update(func(txn *badger.Txn) error {
		category.ID = newID()
		if err := claimName(txn, CategoryNameIndex, category.Name, category.ID); err != nil {
			return err
		}
		return putEntity(txn, key(CategoryKeyPrefix, category.ID), category)
	})
}

func (r *BadgerCategoryRepository) GetByID(id string) (*models.Category, error) {
	var category models.Category
	err := r.db.View(func(txn *badger.Txn) error {
		return getEntity(txn, key(CategoryKeyPrefix, id), &category)
	})
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *BadgerCategoryRepository) List() ([]*models.Category, error) {
	categories := []*models.Category{}
	err := r.db.View(func(txn *badger.Txn) error {
		return eachValue(txn, []byte(CategoryKeyPrefix), func(val []byte) error {
			var c models.Category
			if err := unmarshalEntity(val, &c); err != nil {
				return err
			}
			categories = append(categories, &c)
			return nil
		})
	})
	sort.Slice(categories, func(i, j int) bool {
		return strings.ToLower(categories[i].Name) < strings.ToLower(categories[j].Name)
	})
	return categories, err
}

func (r *BadgerCategoryRepository) Update(category *models.Category) error {
	return r.db.Update(func(txn *badger.Txn) error {
		var existing models.Category
		if err := getEntity(txn, key(CategoryKeyPrefix, category.ID), &existing); err != nil {
			return err
		}
		if err := claimName(txn, CategoryNameIndex, category.Name, category.ID); err != nil {
			return err
		}
		if !strings.EqualFold(existing.Name, category.Name) {
			if err := txn.Delete(indexKey(CategoryNameIndex, existing.Name)); err != nil {
				return err
			}
		}
		category.CreatedAt = existing.CreatedAt
		return putEntity(txn, key(CategoryKeyPrefix, category.ID), category)
	})
}

// Delete removes the category and clears it from every post that used it.
func (r *BadgerCategoryRepository) Delete(id string) error {
	return r.db.Update(func(txn *badger.Txn) error {
		var category models.Category
		if err := getEntity(txn, key(CategoryKeyPrefix, id), &category); err != nil {
			return err
		}
		err := rewritePosts(txn, func(p *models.Post) bool {
			if p.CategoryID != id {
				return false
			}
			p.CategoryID = ""
			return true
		})
		if err != nil {
			return err
		}
		if err := txn.Delete(indexKey(CategoryNameIndex, category.Name)); err != nil {
			return err
		}
		return txn.Delete(key(CategoryKeyPrefix, id))
	})
}
