package blobstore

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// DiskStore keeps files in a single directory. Metadata is derived from the
// file system, so files written by other tools are visible too.
type DiskStore struct {
	dir string
}

func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &DiskStore{dir: dir}, nil
}

func (s *DiskStore) Dir() string { return s.dir }

// Save writes content to a temp file while hashing it, then renames it into
// place.
func (s *DiskStore) Save(_ context.Context, meta FileMetadata, content io.Reader) (*FileMetadata, error) {
	if err := ValidateName(meta.Name); err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp(s.dir, "."+meta.Name+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	h := sha256.New()
	n, err := io.Copy(io.MultiWriter(tmp, h), io.LimitReader(content, MaxFileSize+1))
	if err != nil {
		tmp.Close()
		return nil, fmt.Errorf("writing content: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("close temp file: %w", err)
	}
	if n > MaxFileSize {
		return nil, ErrFileTooLarge
	}

	dest := filepath.Join(s.dir, meta.Name)
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return nil, fmt.Errorf("move file into place: %w", err)
	}
	info, err := os.Stat(dest)
	if err != nil {
		return nil, fmt.Errorf("stat saved file: %w", err)
	}

	meta.ID = uuid.New().String()
	meta.Size = n
	meta.Hash = fmt.Sprintf("%x", h.Sum(nil))
	meta.CreatedAt = info.ModTime().UTC()
	meta.Location = dest
	if meta.ContentType == "" {
		meta.ContentType = ContentTypeFor(meta.Name)
	}
	return &meta, nil
}

func (s *DiskStore) Open(ctx context.Context, name string) (io.ReadCloser, *FileMetadata, error) {
	meta, err := s.Stat(ctx, name)
	if err != nil {
		return nil, nil, err
	}
	f, err := os.Open(meta.Location)
	if err != nil {
		return nil, nil, fmt.Errorf("open file: %w", err)
	}
	return f, meta, nil
}

// Stat describes a stored file. The hash is computed on demand.
func (s *DiskStore) Stat(_ context.Context, name string) (*FileMetadata, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	path := filepath.Join(s.dir, name)
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrFileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}
	if info.IsDir() {
		return nil, ErrFileNotFound
	}
	hash, err := hashFile(path)
	if err != nil {
		return nil, err
	}
	return &FileMetadata{
		ID:          name,
		Name:        name,
		ContentType: ContentTypeFor(name),
		Resource:    resourceFromName(name),
		Size:        info.Size(),
		Hash:        hash,
		CreatedAt:   info.ModTime().UTC(),
		Location:    path,
	}, nil
}

func (s *DiskStore) List(ctx context.Context, resource string, limit, offset int) ([]*FileMetadata, int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, 0, fmt.Errorf("read store dir: %w", err)
	}
	var matched []*FileMetadata
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		meta, err := s.Stat(ctx, e.Name())
		if err != nil {
			continue
		}
		if resource != "" && meta.Resource != resource {
			continue
		}
		matched = append(matched, meta)
	}
	return page(matched, limit, offset), len(matched), nil
}

func (s *DiskStore) Delete(_ context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return ErrFileNotFound
	}
	if err != nil {
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open file: %w", err)
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash file: %w", err)
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

// resourceFromName recovers the resource from "<resource>_....csv" names.
func resourceFromName(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	if i := strings.Index(base, "_"); i > 0 {
		return base[:i]
	}
	return ""
}
