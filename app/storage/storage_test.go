package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskStore(t *testing.T) {
	root := t.TempDir()
	store := NewDiskStore(root, "/uploads/")
	ctx := context.Background()

	url, err := store.Put(ctx, "images/u1/a.png", "image/png", strings.NewReader("png"), 3)
	require.NoError(t, err)
	assert.Equal(t, "/uploads/images/u1/a.png", url)

	data, err := os.ReadFile(filepath.Join(root, "images", "u1", "a.png"))
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))

	require.NoError(t, store.Delete(ctx, "images/u1/a.png"))
	_, err = os.Stat(filepath.Join(root, "images", "u1", "a.png"))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, store.Delete(ctx, "images/u1/a.png"))
}

func TestDiskStoreKeepsKeysInsideRoot(t *testing.T) {
	root := t.TempDir()
	store := NewDiskStore(root, "/uploads")

	_, err := store.Put(context.Background(), "../../escape.png", "image/png", strings.NewReader("x"), 1)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(root, "escape.png"))
	assert.NoError(t, err)
}

type fakeObjects struct {
	puts    map[string]string
	deleted []string
	fail    bool
}

func (f *fakeObjects) PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.fail {
		return nil, errors.New("boom")
	}
	body, _ := io.ReadAll(in.Body)
	f.puts[aws.ToString(in.Key)] = aws.ToString(in.ContentType) + ":" + string(body)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeObjects) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if f.fail {
		return nil, errors.New("boom")
	}
	f.deleted = append(f.deleted, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3Store(t *testing.T) {
	objects := &fakeObjects{puts: map[string]string{}}
	store := NewS3Store(objects, "bucket", "https://cdn.example.com/")
	ctx := context.Background()

	url, err := store.Put(ctx, "images/u1/a.png", "image/png", strings.NewReader("png"), 3)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/images/u1/a.png", url)
	assert.Equal(t, "image/png:png", objects.puts["images/u1/a.png"])

	require.NoError(t, store.Delete(ctx, "images/u1/a.png"))
	assert.Equal(t, []string{"images/u1/a.png"}, objects.deleted)

	objects.fail = true
	_, err = store.Put(ctx, "k", "image/png", strings.NewReader(""), 0)
	assert.Error(t, err)
	assert.Error(t, store.Delete(ctx, "k"))
}

func TestNewS3Client(t *testing.T) {
	client := NewS3Client(S3Options{
		Endpoint:        "http://localhost:9000",
		Region:          "auto",
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
	})
	assert.NotNil(t, client)
}
