package store

import (
	"bytes"
	"context"
	"fmt"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/option"
	"github.com/viant/afs/url"
)

// AFSStore keeps one object per key under a base URL.
type AFSStore struct {
	fs      afs.Service
	baseURL string
}

// NewAFSStore returns a store rooted at baseURL.
func NewAFSStore(baseURL string, fs afs.Service) *AFSStore {
	return &AFSStore{fs: fs, baseURL: baseURL}
}

// Get returns the object stored under key, or ErrNotFound.
func (s *AFSStore) Get(ctx context.Context, key string) ([]byte, error) {
	URL := url.Join(s.baseURL, key)
	exists, err := s.fs.Exists(ctx, URL, option.NewObjectKind(true))
	if err != nil {
		return nil, fmt.Errorf("checking %s: %w", URL, err)
	}
	if !exists {
		return nil, ErrNotFound
	}
	data, err := s.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("downloading %s: %w", URL, err)
	}
	return data, nil
}

// Put uploads data under key.
func (s *AFSStore) Put(ctx context.Context, key string, data []byte) error {
	if err := validKey(key); err != nil {
		return err
	}
	URL := url.Join(s.baseURL, key)
	if err := s.fs.Upload(ctx, URL, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("uploading %s: %w", URL, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *AFSStore) Delete(ctx context.Context, key string) error {
	URL := url.Join(s.baseURL, key)
	exists, err := s.fs.Exists(ctx, URL, option.NewObjectKind(true))
	if err != nil || !exists {
		return err
	}
	return s.fs.Delete(ctx, URL, option.NewObjectKind(true))
}

// Close is a no-op; afs services hold no per-store resources.
func (s *AFSStore) Close() error { return nil }
