// Package photo stores profile photos in an S3-compatible bucket.
package photo

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// objectStore is the subset of *minio.Client used here (ISP).
type objectStore interface {
	PutObject(ctx context.Context, bucket, object string, r io.Reader, size int64,
		opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucket, object string, opts minio.RemoveObjectOptions) error
	BucketExists(ctx context.Context, bucket string) (bool, error)
	MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error
}

// Config holds object storage connection settings.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
	// PublicURL is the base photo URLs are built from; defaults to the endpoint.
	PublicURL string
}

// Connect creates a MinIO client for cfg.
func Connect(cfg Config) (*minio.Client, error) {
	c, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client %s: %w", cfg.Endpoint, err)
	}
	return c, nil
}

// Extensions maps accepted content types to object key extensions.
var Extensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

const keyPrefix = "photos/"

// Object is a stored photo.
type Object struct {
	Key string
	URL string
}

// Store uploads and removes photo objects.
type Store struct {
	client  objectStore
	bucket  string
	baseURL string
	region  string
	newID   func() string
}

// New creates a photo store.
func New(client objectStore, cfg Config) *Store {
	base := cfg.PublicURL
	if base == "" {
		scheme := "http://"
		if cfg.UseSSL {
			scheme = "https://"
		}
		base = scheme + cfg.Endpoint + "/" + cfg.Bucket
	}
	return &Store{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: strings.TrimRight(base, "/"),
		region:  cfg.Region,
		newID:   func() string { return uuid.NewString() },
	}
}

// EnsureBucket creates the bucket when it does not exist.
func (s *Store) EnsureBucket(ctx context.Context) error {
	ok, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("bucket exists %s: %w", s.bucket, err)
	}
	if ok {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
		return fmt.Errorf("make bucket %s: %w", s.bucket, err)
	}
	return nil
}

// Upload writes data as photos/<userID>/<uuid>.<ext> and returns its public URL.
func (s *Store) Upload(ctx context.Context, userID, contentType string, data []byte) (string, error) {
	obj, err := s.put(ctx, userID, contentType, data)
	return obj.URL, err
}

func (s *Store) put(ctx context.Context, userID, contentType string, data []byte) (Object, error) {
	ext, ok := Extensions[contentType]
	if !ok {
		return Object{}, fmt.Errorf("unsupported content type %q", contentType)
	}
	key := keyPrefix + userID + "/" + s.newID() + "." + ext

	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType, CacheControl: "public, max-age=31536000, immutable"})
	if err != nil {
		return Object{}, fmt.Errorf("put object %s: %w", key, err)
	}
	return Object{Key: key, URL: s.baseURL + "/" + key}, nil
}

// Delete removes an object; a missing object is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
	if err != nil {
		code := minio.ToErrorResponse(err).Code
		if code == "NoSuchKey" || code == "NotFound" {
			return nil
		}
		return fmt.Errorf("remove object %s: %w", key, err)
	}
	return nil
}

// DeleteURL removes the object behind a URL built by this store. Foreign
// URLs are ignored.
func (s *Store) DeleteURL(ctx context.Context, url string) error {
	key, ok := s.KeyFromURL(url)
	if !ok {
		return nil
	}
	return s.Delete(ctx, key)
}

// KeyFromURL returns the object key of a URL built by this store, or false
// for foreign URLs.
func (s *Store) KeyFromURL(url string) (string, bool) {
	key, ok := strings.CutPrefix(url, s.baseURL+"/")
	if !ok || !strings.HasPrefix(key, keyPrefix) {
		return "", false
	}
	return key, true
}

// HealthCheck verifies the bucket is reachable.
func (s *Store) HealthCheck(ctx context.Context) error {
	ok, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("bucket exists %s: %w", s.bucket, err)
	}
	if !ok {
		return fmt.Errorf("bucket %s does not exist", s.bucket)
	}
	return nil
}
