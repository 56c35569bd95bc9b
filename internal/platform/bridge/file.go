package bridge

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileStore keeps one JSON file per session under a directory. Writes go
// through a temp file and a rename so readers never see a partial snapshot.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create bridge dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(session string) string {
	return filepath.Join(s.dir, session+".json")
}

func (s *FileStore) Put(_ context.Context, session string, payload []byte) error {
	if err := validateSession(session); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.dir, session+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path(session)); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

func (s *FileStore) Get(_ context.Context, session string) ([]byte, error) {
	if err := validateSession(session); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(s.path(session))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return b, nil
}
