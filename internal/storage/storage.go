package storage

import (
	"context"
	"io"
	"time"
)

type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified *time.Time
}

// Service stores user uploaded objects in remote object storage.
type Service interface {
	// Upload writes body under key and returns the public URL of the object.
	Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error)
	ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error)
	DeletePrefix(ctx context.Context, prefix string) error
}
