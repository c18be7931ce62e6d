package objstore

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	cos "github.com/tencentyun/cos-go-sdk-v5"
)

type cosStore struct {
	cli *cos.Client
	ttl time.Duration
	sid string
	sk  string
}

// OpenCOS opens a Tencent COS bucket, path-style when the endpoint lacks the bucket.
func OpenCOS(_ context.Context, c Config) (Store, error) {
	var bucketURL *url.URL
	if c.Endpoint != "" {
		u, err := url.Parse(c.Endpoint)
		if err != nil {
			return nil, err
		}
		if !strings.Contains(u.Host, c.Bucket) && !strings.HasSuffix(u.Path, "/"+c.Bucket) {
			u.Path = "/" + c.Bucket
		}
		bucketURL = u
	} else {
		u, err := url.Parse(fmt.Sprintf("https://%s.cos.%s.myqcloud.com", c.Bucket, c.Region))
		if err != nil {
			return nil, err
		}
		bucketURL = u
	}
	cli := cos.NewClient(&cos.BaseURL{BucketURL: bucketURL}, &http.Client{
		Transport: &cos.AuthorizationTransport{SecretID: c.AccessKey, SecretKey: c.SecretKey},
	})
	return &cosStore{cli: cli, ttl: ttl(c), sid: c.AccessKey, sk: c.SecretKey}, nil
}

func (s *cosStore) Put(ctx context.Context, key string, r io.ReadSeeker, _ int64, contentType string) error {
	opt := &cos.ObjectPutOptions{}
	if contentType != "" {
		opt.ObjectPutHeaderOptions = &cos.ObjectPutHeaderOptions{ContentType: contentType}
	}
	_, err := s.cli.Object.Put(ctx, sanitizeKey(key), r, opt)
	return err
}

func (s *cosStore) Get(ctx context.Context, key string) ([]byte, error) {
	resp, err := s.cli.Object.Get(ctx, sanitizeKey(key), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

func (s *cosStore) SignedURL(ctx context.Context, key string, method string, expiry time.Duration) (string, error) {
	if expiry <= 0 {
		expiry = s.ttl
	}
	m := http.MethodGet
	switch strings.ToUpper(method) {
	case http.MethodPut:
		m = http.MethodPut
	case http.MethodDelete:
		m = http.MethodDelete
	}
	u, err := s.cli.Object.GetPresignedURL(ctx, m, sanitizeKey(key), s.sid, s.sk, expiry, nil)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

func (s *cosStore) Delete(ctx context.Context, key string) error {
	_, err := s.cli.Object.Delete(ctx, sanitizeKey(key))
	return err
}

func (s *cosStore) Close() error { return nil }
