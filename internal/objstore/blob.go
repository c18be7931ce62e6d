package objstore

import (
	"context"
	"io"
	"time"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"
)

// blobStore serves s3, file and mem through gocloud.
type blobStore struct {
	bk  *blob.Bucket
	ttl time.Duration
}

func openBlob(ctx context.Context, u string, ttl time.Duration) (Store, error) {
	bk, err := blob.OpenBucket(ctx, u)
	if err != nil {
		return nil, err
	}
	return &blobStore{bk: bk, ttl: ttl}, nil
}

func (s *blobStore) Put(ctx context.Context, key string, r io.ReadSeeker, _ int64, contentType string) error {
	w, err := s.bk.NewWriter(ctx, sanitizeKey(key), &blob.WriterOptions{ContentType: contentType})
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

func (s *blobStore) Get(ctx context.Context, key string) ([]byte, error) {
	return s.bk.ReadAll(ctx, sanitizeKey(key))
}

func (s *blobStore) SignedURL(ctx context.Context, key string, method string, expiry time.Duration) (string, error) {
	if expiry <= 0 {
		expiry = s.ttl
	}
	return s.bk.SignedURL(ctx, sanitizeKey(key), &blob.SignedURLOptions{Method: method, Expiry: expiry})
}

func (s *blobStore) Delete(ctx context.Context, key string) error {
	return s.bk.Delete(ctx, sanitizeKey(key))
}

func (s *blobStore) Close() error { return s.bk.Close() }
