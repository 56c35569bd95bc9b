package blobstore

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
)

type storedFile struct {
	metadata FileMetadata
	content  []byte
}

// InMemoryStore is a thread-safe, in-memory Store for the dev server and
// tests.
type InMemoryStore struct {
	mu    sync.RWMutex
	files map[string]*storedFile
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{files: make(map[string]*storedFile)}
}

// Save reads the content, computes a SHA-256 hash, and stores the file,
// replacing any file with the same name.
func (s *InMemoryStore) Save(_ context.Context, meta FileMetadata, content io.Reader) (*FileMetadata, error) {
	if err := ValidateName(meta.Name); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(content, MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading content: %w", err)
	}
	if int64(len(data)) > MaxFileSize {
		return nil, ErrFileTooLarge
	}

	h := sha256.Sum256(data)
	meta.ID = uuid.New().String()
	meta.Size = int64(len(data))
	meta.Hash = fmt.Sprintf("%x", h)
	meta.CreatedAt = time.Now().UTC()
	if meta.ContentType == "" {
		meta.ContentType = ContentTypeFor(meta.Name)
	}

	s.mu.Lock()
	s.files[meta.Name] = &storedFile{metadata: meta, content: data}
	s.mu.Unlock()

	out := meta // copy
	return &out, nil
}

func (s *InMemoryStore) Open(_ context.Context, name string) (io.ReadCloser, *FileMetadata, error) {
	if err := ValidateName(name); err != nil {
		return nil, nil, err
	}
	s.mu.RLock()
	f, ok := s.files[name]
	s.mu.RUnlock()
	if !ok {
		return nil, nil, ErrFileNotFound
	}
	meta := f.metadata // copy
	return io.NopCloser(bytes.NewReader(f.content)), &meta, nil
}

func (s *InMemoryStore) Stat(_ context.Context, name string) (*FileMetadata, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	s.mu.RLock()
	f, ok := s.files[name]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrFileNotFound
	}
	meta := f.metadata // copy
	return &meta, nil
}

// List returns files newest first, optionally filtered by resource, with the
// total match count.
func (s *InMemoryStore) List(_ context.Context, resource string, limit, offset int) ([]*FileMetadata, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*FileMetadata
	for _, f := range s.files {
		if resource != "" && f.metadata.Resource != resource {
			continue
		}
		m := f.metadata // copy
		matched = append(matched, &m)
	}
	return page(matched, limit, offset), len(matched), nil
}

func (s *InMemoryStore) Delete(_ context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.files[name]; !ok {
		return ErrFileNotFound
	}
	delete(s.files, name)
	return nil
}
