// Package objstore stores archived games in object storage.
package objstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Store is the minimal object storage API.
type Store interface {
	Put(ctx context.Context, key string, r io.ReadSeeker, size int64, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	SignedURL(ctx context.Context, key string, method string, expiry time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
	Close() error
}

// Config selects and configures a driver: s3, oss, cos, file or mem.
type Config struct {
	Driver         string        `json:",optional" env:"STORAGE_DRIVER"`
	Bucket         string        `json:",optional" env:"STORAGE_BUCKET"`
	Region         string        `json:",optional" env:"STORAGE_REGION"`
	Endpoint       string        `json:",optional" env:"STORAGE_ENDPOINT"`
	AccessKey      string        `json:",optional" env:"STORAGE_ACCESS_KEY"`
	SecretKey      string        `json:",optional" env:"STORAGE_SECRET_KEY"`
	ForcePathStyle bool          `json:",optional" env:"STORAGE_FORCE_PATH_STYLE"`
	BaseDir        string        `json:",optional" env:"STORAGE_BASE_DIR"`
	Prefix         string        `json:",default=games" env:"STORAGE_PREFIX" envDefault:"games"`
	SignedURLTTL   time.Duration `json:",default=15m" env:"STORAGE_SIGNED_URL_TTL" envDefault:"15m"`
}

// FromEnv reads STORAGE_* variables.
func FromEnv() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return c, fmt.Errorf("parse storage env: %w", err)
	}
	return c, nil
}

func Validate(c Config) error {
	switch strings.ToLower(c.Driver) {
	case "s3":
		if c.Bucket == "" {
			return errors.New("bucket required for s3 driver")
		}
	case "oss":
		if c.Bucket == "" {
			return errors.New("bucket required for oss driver")
		}
		if c.Endpoint == "" {
			return errors.New("endpoint required for oss driver")
		}
		if c.AccessKey == "" || c.SecretKey == "" {
			return errors.New("access_key/secret_key required for oss driver")
		}
	case "cos":
		if c.Bucket == "" {
			return errors.New("bucket required for cos driver")
		}
		if c.Region == "" && c.Endpoint == "" {
			return errors.New("region or endpoint required for cos driver")
		}
		if c.AccessKey == "" || c.SecretKey == "" {
			return errors.New("access_key/secret_key required for cos driver")
		}
	case "file":
		if c.BaseDir == "" {
			return errors.New("base_dir required for file driver")
		}
		if err := os.MkdirAll(c.BaseDir, 0o755); err != nil {
			return fmt.Errorf("ensure base_dir: %w", err)
		}
	case "mem":
	case "":
		return errors.New("storage driver not set")
	default:
		return fmt.Errorf("unknown storage driver: %s", c.Driver)
	}
	return nil
}

// Open validates c and opens the driver.
func Open(ctx context.Context, c Config) (Store, error) {
	if err := Validate(c); err != nil {
		return nil, err
	}
	switch strings.ToLower(c.Driver) {
	case "s3":
		return openBlob(ctx, buildS3URL(c), ttl(c))
	case "oss":
		return OpenOSS(ctx, c)
	case "cos":
		return OpenCOS(ctx, c)
	case "file":
		abs, err := filepath.Abs(c.BaseDir)
		if err != nil {
			return nil, err
		}
		return openBlob(ctx, "file://"+filepath.ToSlash(abs), ttl(c))
	}
	return openBlob(ctx, "mem://", ttl(c))
}

func ttl(c Config) time.Duration {
	if c.SignedURLTTL <= 0 {
		return 15 * time.Minute
	}
	return c.SignedURLTTL
}

// sanitizeKey prevents path traversal.
func sanitizeKey(key string) string {
	key = filepath.ToSlash(key)
	key = strings.TrimLeft(key, "/")
	parts := strings.Split(key, "/")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" || p == "." || p == ".." {
			continue
		}
		out = append(out, p)
	}
	return strings.Join(out, "/")
}

// buildS3URL constructs a gocloud s3 URL with query params.
func buildS3URL(c Config) string {
	u := url.URL{Scheme: "s3", Host: c.Bucket}
	q := url.Values{}
	if c.Region != "" {
		q.Set("region", c.Region)
	}
	if c.Endpoint != "" {
		q.Set("endpoint", c.Endpoint)
	}
	if c.ForcePathStyle {
		q.Set("s3ForcePathStyle", "true")
	}
	u.RawQuery = q.Encode()
	return u.String()
}
