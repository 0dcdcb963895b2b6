package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"quill/app/apperr"
	"quill/app/authz"
	"quill/app/models"
	"quill/app/repositories"
	"quill/app/storage"

	"go.uber.org/zap"
)

// imageTypes maps the accepted content types to file extensions.
var imageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// UploadService stores image files and tracks their metadata.
type UploadService struct {
	images   repositories.ImageRepository
	store    storage.Store
	maxBytes int64
	log      *zap.Logger
	now      func() time.Time
}

func NewUploadService(images repositories.ImageRepository, store storage.Store, maxBytes int64, log *zap.Logger) *UploadService {
	return &UploadService{images: images, store: store, maxBytes: maxBytes, log: log, now: time.Now}
}

// MaxBytes is the largest accepted upload.
func (s *UploadService) MaxBytes() int64 { return s.maxBytes }

// Upload sniffs the content type of r, stores it and records the image.
func (s *UploadService) Upload(ctx context.Context, p *models.Principal, r io.Reader) (*models.Image, error) {
	if err := authz.RequireAuth(p); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, apperr.BadRequest(fmt.Sprintf("File exceeds the %d byte limit", s.maxBytes))
	}
	if len(data) == 0 {
		return nil, apperr.BadRequest("Image file is required")
	}

	contentType := http.DetectContentType(data)
	ext, ok := imageTypes[contentType]
	if !ok {
		return nil, apperr.BadRequest("Only JPEG, PNG, GIF and WebP images are allowed")
	}

	image := &models.Image{
		ID:          repositories.NewImageID(),
		UserID:      p.ID,
		ContentType: contentType,
		Size:        int64(len(data)),
		CreatedAt:   s.now(),
	}
	image.Key = fmt.Sprintf("images/%s/%s%s", p.ID, image.ID, ext)

	image.URL, err = s.store.Put(ctx, image.Key, contentType, bytes.NewReader(data), image.Size)
	if err != nil {
		return nil, fmt.Errorf("store image: %w", err)
	}
	if err := s.images.Create(image); err != nil {
		if derr := s.store.Delete(ctx, image.Key); derr != nil {
			s.log.Warn("remove orphaned image", zap.String("key", image.Key), zap.Error(derr))
		}
		return nil, fmt.Errorf("save image: %w", err)
	}
	return image, nil
}

// Delete removes an image. Its uploader or an admin may do so.
func (s *UploadService) Delete(ctx context.Context, p *models.Principal, id string) error {
	if err := authz.RequireAuth(p); err != nil {
		return err
	}
	image, err := s.images.GetByID(id)
	if isNotFound(err) {
		return apperr.NotFound("Image not found")
	}
	if err != nil {
		return fmt.Errorf("get image: %w", err)
	}
	if err := authz.RequireOwnershipOrAdmin(p, image.UserID); err != nil {
		return err
	}

	if err := s.store.Delete(ctx, image.Key); err != nil {
		return fmt.Errorf("delete image: %w", err)
	}
	if err := s.images.Delete(id); err != nil && !isNotFound(err) {
		return fmt.Errorf("delete image record: %w", err)
	}
	return nil
}
