package storage

import "context"

// Reference is the stable handle returned for a stored object. Key is the
// path within the store; URL is how the object can be retrieved later.
type Reference struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// ObjectStore persists immutable blobs under caller-chosen keys. A repeated
// Put with the same key overwrites the previous object, so retries of a
// failed submission are safe.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (Reference, error)
	Delete(ctx context.Context, key string) error
}
