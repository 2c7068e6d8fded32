package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// DiskStore keeps blobs as flat files in a single directory.
// Writes go to a temp file first and are published with an atomic
// rename, so a crashed upload never leaves a readable half-blob.
type DiskStore struct {
	dir string
}

// NewDiskStore creates the storage directory if needed.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create storage dir %s: %w", dir, err)
	}
	return &DiskStore{dir: dir}, nil
}

func (d *DiskStore) Save(ctx context.Context, r io.Reader, originalName string) (string, int64, error) {
	id := newStorageID(originalName)
	full := filepath.Join(d.dir, id)
	tmp := full + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return "", 0, fmt.Errorf("create temp blob: %w", err)
	}

	written, err := io.Copy(f, r)
	if err != nil {
		f.Close()
		os.Remove(tmp)
		return "", 0, fmt.Errorf("write blob: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return "", 0, fmt.Errorf("sync blob: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return "", 0, fmt.Errorf("close blob: %w", err)
	}
	if err := os.Rename(tmp, full); err != nil {
		os.Remove(tmp)
		return "", 0, fmt.Errorf("publish blob: %w", err)
	}
	return id, written, nil
}

func (d *DiskStore) Open(ctx context.Context, id string) (io.ReadCloser, error) {
	if !validStorageID(id) {
		return nil, ErrBadStorageID
	}
	f, err := os.Open(filepath.Join(d.dir, id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrBlobNotFound
		}
		return nil, fmt.Errorf("open blob %s: %w", id, err)
	}
	return f, nil
}

func (d *DiskStore) Delete(ctx context.Context, id string) (bool, error) {
	if !validStorageID(id) {
		return false, nil
	}
	err := os.Remove(filepath.Join(d.dir, id))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("delete blob %s: %w", id, err)
}

var _ BlobStore = (*DiskStore)(nil)
