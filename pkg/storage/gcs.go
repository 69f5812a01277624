package storage

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSStore persists objects in a Google Cloud Storage bucket. Credentials
// come from the ambient environment (service account or emulator).
type GCSStore struct {
	client  *gcs.Client
	bucket  string
	baseURL string
}

// NewGCSStore opens a storage client bound to the given bucket. publicBaseURL
// overrides the default storage.googleapis.com URL, e.g. for a CDN domain.
func NewGCSStore(ctx context.Context, bucket, publicBaseURL string, opts ...option.ClientOption) (*GCSStore, error) {
	if bucket == "" {
		return nil, fmt.Errorf("bucket name required")
	}
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	if publicBaseURL == "" {
		publicBaseURL = "https://storage.googleapis.com/" + bucket
	}
	return &GCSStore{
		client:  client,
		bucket:  bucket,
		baseURL: strings.TrimRight(publicBaseURL, "/"),
	}, nil
}

// Put uploads the bytes under key. Re-putting the same key overwrites.
func (s *GCSStore) Put(ctx context.Context, key string, data []byte, contentType string) (Reference, error) {
	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	if contentType != "" {
		w.ContentType = contentType
	}
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return Reference{}, fmt.Errorf("write object %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return Reference{}, fmt.Errorf("finalize object %s: %w", key, err)
	}
	return Reference{Key: key, URL: s.publicURL(key)}, nil
}

// Delete removes the object; a missing object is not an error.
func (s *GCSStore) Delete(ctx context.Context, key string) error {
	err := s.client.Bucket(s.bucket).Object(key).Delete(ctx)
	if err != nil && err != gcs.ErrObjectNotExist {
		return fmt.Errorf("delete object %s: %w", key, err)
	}
	return nil
}

// Close releases the underlying client.
func (s *GCSStore) Close() error {
	return s.client.Close()
}

func (s *GCSStore) publicURL(key string) string {
	parts := strings.Split(key, "/")
	escaped := make([]string, len(parts))
	for i, part := range parts {
		escaped[i] = url.PathEscape(part)
	}
	return s.baseURL + "/" + strings.Join(escaped, "/")
}
