package uploads

import (
	"context"
	"errors"
	"io"
)

// ErrObjectNotFound is returned by a BlobStore when the named object does not exist.
var ErrObjectNotFound = errors.New("object not found")

// Object is an opened stored file. Callers must close Body.
type Object struct {
	Body        io.ReadCloser
	ContentType string
	Size        int64
}

// BlobStore holds uploaded files under flat names.
type BlobStore interface {
	Put(ctx context.Context, name, contentType string, data []byte) error
	Open(ctx context.Context, name string) (*Object, error)
}
