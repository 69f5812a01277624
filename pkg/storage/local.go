package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LocalStore persists objects on disk under a base directory. Download URLs
// are signed tokens resolved by the files endpoint rather than direct paths.
type LocalStore struct {
	baseDir string
	signer  *SignedURLSigner
	prefix  string
}

// NewLocalStore ensures the base directory exists and returns a handle.
// urlPrefix is the route prefix the server mounts for signed downloads.
func NewLocalStore(baseDir string, signer *SignedURLSigner, urlPrefix string) (*LocalStore, error) {
	if baseDir == "" {
		baseDir = "./uploads"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &LocalStore{
		baseDir: baseDir,
		signer:  signer,
		prefix:  strings.TrimRight(urlPrefix, "/"),
	}, nil
}

// Put writes the bytes under key, overwriting any previous object.
func (s *LocalStore) Put(_ context.Context, key string, data []byte, _ string) (Reference, error) {
	path := s.resolve(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return Reference{}, fmt.Errorf("prepare object directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return Reference{}, fmt.Errorf("write object: %w", err)
	}
	return Reference{Key: key, URL: s.url(key)}, nil
}

// Open returns a read-only handle for the stored object.
func (s *LocalStore) Open(key string) (*os.File, error) {
	file, err := os.Open(s.resolve(key))
	if err != nil {
		return nil, fmt.Errorf("open object: %w", err)
	}
	return file, nil
}

// Delete removes a stored object if present.
func (s *LocalStore) Delete(_ context.Context, key string) error {
	if err := os.Remove(s.resolve(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

// CleanupOlderThan removes objects older than the provided TTL and returns
// the deleted keys.
func (s *LocalStore) CleanupOlderThan(ttl time.Duration) ([]string, error) {
	cutoff := time.Now().Add(-ttl)
	deleted := make([]string, 0)
	err := filepath.WalkDir(s.baseDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.ModTime().After(cutoff) {
			return nil
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
		rel, err := filepath.Rel(s.baseDir, path)
		if err != nil {
			rel = path
		}
		deleted = append(deleted, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("cleanup objects: %w", err)
	}
	return deleted, nil
}

func (s *LocalStore) url(key string) string {
	if s.signer == nil {
		return s.prefix + "/" + key
	}
	token, _, err := s.signer.Generate(key)
	if err != nil {
		return s.prefix + "/" + key
	}
	return fmt.Sprintf("%s?token=%s", s.prefix, token)
}

func (s *LocalStore) resolve(key string) string {
	key = filepath.Clean("/" + key)
	return filepath.Join(s.baseDir, key)
}
