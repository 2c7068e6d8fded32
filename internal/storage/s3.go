package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Store keeps blobs as objects in one bucket under an optional key
// prefix. S3 publishes objects atomically, so there is no temp-file
// dance here: a failed upload leaves nothing under the key.
type S3Store struct {
	client   *s3.Client
	uploader *manager.Uploader
	bucket   string
	prefix   string
}

// NewS3Store wraps a configured S3 client. The bucket must already exist.
func NewS3Store(client *s3.Client, bucket, keyPrefix string) *S3Store {
	return &S3Store{
		client:   client,
		uploader: manager.NewUploader(client),
		bucket:   bucket,
		prefix:   keyPrefix,
	}
}

func (s *S3Store) key(id string) string { return s.prefix + id }

func (s *S3Store) Save(ctx context.Context, r io.Reader, originalName string) (string, int64, error) {
	id := newStorageID(originalName)

	// the upload manager buffers parts itself, so the body never needs
	// to be seekable; plain PutObject cannot sign a rewindless stream
	// over http endpoints. Count bytes on the way through, S3 gives no
	// write count back.
	cr := &countingReader{r: r}
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(id)),
		Body:   cr,
	})
	if err != nil {
		return "", 0, fmt.Errorf("put blob to s3: %w", err)
	}
	return id, cr.n, nil
}

func (s *S3Store) Open(ctx context.Context, id string) (io.ReadCloser, error) {
	if !validStorageID(id) {
		return nil, ErrBadStorageID
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(id)),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, ErrBlobNotFound
		}
		return nil, fmt.Errorf("get blob from s3: %w", err)
	}
	return out.Body, nil
}

func (s *S3Store) Delete(ctx context.Context, id string) (bool, error) {
	if !validStorageID(id) {
		return false, nil
	}
	// HeadObject first so the caller learns whether anything was removed;
	// DeleteObject alone succeeds for missing keys
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(id)),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, fmt.Errorf("head blob in s3: %w", err)
	}
	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(id)),
	})
	if err != nil {
		return false, fmt.Errorf("delete blob from s3: %w", err)
	}
	return true, nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

var _ BlobStore = (*S3Store)(nil)
