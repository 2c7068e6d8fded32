// Package storage holds the blob store: durable byte storage keyed by
// opaque storage ids. It knows nothing about owners, metadata or shares.
package storage

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrBlobNotFound means no blob exists under the given storage id.
	ErrBlobNotFound = errors.New("blob not found")
	// ErrBadStorageID means the id contains characters that are never
	// produced by this package; treated as unknown, never joined into a path.
	ErrBadStorageID = errors.New("malformed storage id")
)

// BlobStore writes, reads and deletes blobs under generated storage ids.
type BlobStore interface {
	// Save streams r into durable storage under a freshly generated id
	// and returns the id and the number of bytes written. On failure no
	// partial artifact stays visible under the returned id.
	Save(ctx context.Context, r io.Reader, originalName string) (id string, written int64, err error)

	// Open returns the blob content for reading. The caller closes it.
	Open(ctx context.Context, id string) (io.ReadCloser, error)

	// Delete removes the blob. Idempotent: (false, nil) when nothing
	// was there to delete.
	Delete(ctx context.Context, id string) (bool, error)
}

// newStorageID builds an opaque id: a UUID plus the sanitized extension
// of the original upload name. The extension is kept for content-type
// hygiene only; nothing else of the caller-controlled name survives.
func newStorageID(originalName string) string {
	return uuid.NewString() + sanitizeExt(filepath.Ext(filepath.Base(originalName)))
}

// sanitizeExt keeps the extension only when it is short and plain ASCII
// alphanumeric; anything else is dropped.
func sanitizeExt(ext string) string {
	if len(ext) < 2 || len(ext) > 11 || ext[0] != '.' {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return strings.ToLower(ext)
}

// validStorageID accepts exactly the shape newStorageID produces:
// hex/dash UUID body plus optional dotted extension. Path separators,
// leading dots and anything exotic fail the check.
func validStorageID(id string) bool {
	if id == "" || len(id) > 64 || id[0] == '.' {
		return false
	}
	dots := 0
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '-':
		case r == '.':
			dots++
			if dots > 1 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
