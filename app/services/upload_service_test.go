package services

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"quill/app/apperr"
	"quill/app/models"
	"quill/app/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 32)...)

func newUploadService(t *testing.T, env *testEnv, maxBytes int64) (*UploadService, string) {
	t.Helper()
	dir := t.TempDir()
	return NewUploadService(env.repos.Images, storage.NewDiskStore(dir, "/uploads"), maxBytes, zap.NewNop()), dir
}

func TestUpload(t *testing.T) {
	env := newTestEnv(t)
	ada := env.principal(t, "ada", models.RoleAuthor)
	svc, dir := newUploadService(t, env, 64)

	image, err := svc.Upload(testCtx, ada, bytes.NewReader(pngBytes))
	require.NoError(t, err)
	assert.Equal(t, "image/png", image.ContentType)
	assert.Equal(t, int64(len(pngBytes)), image.Size)
	assert.True(t, strings.HasPrefix(image.Key, "images/"+ada.ID+"/"))
	assert.True(t, strings.HasSuffix(image.URL, ".png"))

	stored, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(image.Key)))
	require.NoError(t, err)
	assert.Equal(t, pngBytes, stored)

	tests := []struct {
		name    string
		p       *models.Principal
		body    []byte
		kind    apperr.Kind
		message string
	}{
		{"unauthenticated", nil, pngBytes, apperr.KindUnauthorized, "Authentication required"},
		{"empty", ada, nil, apperr.KindBadRequest, "Image file is required"},
		{"not an image", ada, []byte("plain text, definitely not a picture"), apperr.KindBadRequest, "Only JPEG, PNG, GIF and WebP images are allowed"},
		{"too large", ada, bytes.Repeat([]byte{1}, 65), apperr.KindBadRequest, "File exceeds the 64 byte limit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Upload(testCtx, tt.p, bytes.NewReader(tt.body))
			requireAppErr(t, err, tt.kind, tt.message)
		})
	}
}

func TestUploadDelete(t *testing.T) {
	env := newTestEnv(t)
	ada := env.principal(t, "ada", models.RoleAuthor)
	bob := env.principal(t, "bob", models.RoleAuthor)
	admin := env.principal(t, "admin", models.RoleAdmin)
	svc, dir := newUploadService(t, env, 1024)

	image, err := svc.Upload(testCtx, ada, bytes.NewReader(pngBytes))
	require.NoError(t, err)

	err = svc.Delete(testCtx, bob, image.ID)
	requireAppErr(t, err, apperr.KindForbidden, "Not authorized to access this resource")

	require.NoError(t, svc.Delete(testCtx, admin, image.ID))
	_, err = os.Stat(filepath.Join(dir, filepath.FromSlash(image.Key)))
	assert.True(t, os.IsNotExist(err))

	err = svc.Delete(testCtx, ada, image.ID)
	requireAppErr(t, err, apperr.KindNotFound, "Image not found")
}
