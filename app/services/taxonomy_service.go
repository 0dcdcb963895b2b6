package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"quill/app/apperr"
	"quill/app/authz"
	"quill/app/cache"
	"quill/app/models"
	"quill/app/repositories"
)

type TagInput struct {
	Name string `json:"name"`
}

type CategoryInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// TagService manages tags. Reads are public, writes need an admin.
type TagService struct {
	tags  repositories.TagRepository
	cache cache.Invalidator
	now   func() time.Time
}

func NewTagService(tags repositories.TagRepository, inv cache.Invalidator) *TagService {
	return &TagService{tags: tags, cache: inv, now: time.Now}
}

func (s *TagService) List() ([]*models.Tag, error) {
	tags, err := s.tags.List()
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return tags, nil
}

func (s *TagService) Get(id string) (*models.Tag, error) {
	tag, err := s.tags.GetByID(id)
	if isNotFound(err) {
		return nil, apperr.NotFound("Tag not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get tag: %w", err)
	}
	return tag, nil
}

func tagWriteErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrConflict):
		return apperr.Conflict("Tag with this name already exists")
	case isNotFound(err):
		return apperr.NotFound("Tag not found")
	default:
		return fmt.Errorf("save tag: %w", err)
	}
}

func (s *TagService) Create(p *models.Principal, in TagInput) (*models.Tag, error) {
	if err := authz.RequireAdmin(p); err != nil {
		return nil, err
	}
	tag := &models.Tag{Name: strings.TrimSpace(in.Name), CreatedAt: s.now()}
	if err := models.Validate(tag); err != nil {
		return nil, err
	}
	if err := tagWriteErr(s.tags.Create(tag)); err != nil {
		return nil, err
	}
	invalidate(s.cache, cache.ClassTags)
	return tag, nil
}

func (s *TagService) Update(p *models.Principal, id string, in TagInput) (*models.Tag, error) {
	if err := authz.RequireAdmin(p); err != nil {
		return nil, err
	}
	tag, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	tag.Name = strings.TrimSpace(in.Name)
	if err := models.Validate(tag); err != nil {
		return nil, err
	}
	if err := tagWriteErr(s.tags.Update(tag)); err != nil {
		return nil, err
	}
	invalidate(s.cache, cache.ClassTags, cache.ClassPosts)
	return tag, nil
}

// Delete removes the tag from the catalogue and from every post.
func (s *TagService) Delete(p *models.Principal, id string) error {
	if err := authz.RequireAdmin(p); err != nil {
		return err
	}
	if err := tagWriteErr(s.tags.Delete(id)); err != nil {
		return err
	}
	invalidate(s.cache, cache.ClassTags, cache.ClassPosts)
	return nil
}

// CategoryService manages categories. Reads are public, writes need an
// admin.
type CategoryService struct {
	categories repositories.CategoryRepository
	cache      cache.Invalidator
	now        func() time.Time
}

func NewCategoryService(categories repositories.CategoryRepository, inv cache.Invalidator) *CategoryService {
	return &CategoryService{categories: categories, cache: inv, now: time.Now}
}

func (s *CategoryService) List() ([]*models.Category, error) {
	categories, err := s.categories.List()
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func (s *CategoryService) Get(id string) (*models.Category, error) {
	category, err := s.categories.GetByID(id)
	if isNotFound(err) {
		return nil, apperr.NotFound("Category not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	return category, nil
}

func categoryWriteErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrConflict):
		return apperr.Conflict("Category with this name already exists")
	case isNotFound(err):
		return apperr.NotFound("Category not found")
	default:
		return fmt.Errorf("save category: %w", err)
	}
}

func (s *CategoryService) Create(p *models.Principal, in CategoryInput) (*models.Category, error) {
	if err := authz.RequireAdmin(p); err != nil {
		return nil, err
	}
	now := s.now()
	category := &models.Category{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := models.Validate(category); err != nil {
		return nil, err
	}
	if err := categoryWriteErr(s.categories.Create(category)); err != nil {
		return nil, err
	}
	invalidate(s.cache, cache.ClassCategories)
	return category, nil
}

func (s *CategoryService) Update(p *models.Principal, id string, in CategoryInput) (*models.Category, error) {
	if err := authz.RequireAdmin(p); err != nil {
		return nil, err
	}
	category, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	category.Name = strings.TrimSpace(in.Name)
	category.Description = strings.TrimSpace(in.Description)
	category.UpdatedAt = s.now()
	if err := models.Validate(category); err != nil {
		return nil, err
	}
	if err := categoryWriteErr(s.categories.Update(category)); err != nil {
		return nil, err
	}
	invalidate(s.cache, cache.ClassCategories, cache.ClassPosts)
	return category, nil
}

// Delete removes the category and clears it from posts that used it.
func (s *CategoryService) Delete(p *models.Principal, id string) error {
	if err := authz.RequireAdmin(p); err != nil {
		return err
	}
	if err := categoryWriteErr(s.categories.Delete(id)); err != nil {
		return err
	}
	invalidate(s.cache, cache.ClassCategories, cache.ClassPosts)
	return nil
}
