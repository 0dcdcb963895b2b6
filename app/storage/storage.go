// Package storage persists uploaded image bytes. Metadata lives in the
// database; a Store only knows keys and URLs.
package storage

import (
	"context"
	"io"
)

type Store interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (url string, err error)
	Delete(ctx context.Context, key string) error
}
