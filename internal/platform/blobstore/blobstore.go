// Package blobstore stores exported CSV files. It defines the Store
// interface, a disk implementation used by the CLI, an in-memory
// implementation for the dev server and tests, and Echo handlers for
// download, metadata retrieval, listing and deletion.
package blobstore

import (
	"context"
	"errors"
	"io"
	"mime"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ---------------------------------------------------------------------------
// Sentinel errors
// ---------------------------------------------------------------------------

var (
	ErrFileNotFound    = errors.New("file not found")
	ErrFileTooLarge    = errors.New("file exceeds maximum allowed size")
	ErrMissingFileName = errors.New("file name is required")
	ErrAccessDenied    = errors.New("access denied")
)

// MaxFileSize is the maximum allowed file size in bytes (100 MB).
const MaxFileSize = 100 * 1024 * 1024

// ---------------------------------------------------------------------------
// Domain types
// ---------------------------------------------------------------------------

// FileMetadata describes a stored file. Name is unique within a store; saving
// under an existing name replaces the previous file.
type FileMetadata struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	ContentType string    `json:"content_type"`
	Resource    string    `json:"resource,omitempty"`
	Size        int64     `json:"size"`
	Hash        string    `json:"hash"`
	CreatedAt   time.Time `json:"created_at"`
	Location    string    `json:"location,omitempty"`
}

// Store defines the contract for export storage backends.
type Store interface {
	Save(ctx context.Context, meta FileMetadata, content io.Reader) (*FileMetadata, error)
	Open(ctx context.Context, name string) (io.ReadCloser, *FileMetadata, error)
	Stat(ctx context.Context, name string) (*FileMetadata, error)
	List(ctx context.Context, resource string, limit, offset int) ([]*FileMetadata, int, error)
	Delete(ctx context.Context, name string) error
}

// ValidateName rejects names that are empty or would leave the store's
// flat namespace.
func ValidateName(name string) error {
	if name == "" {
		return ErrMissingFileName
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." || filepath.IsAbs(name) {
		return ErrAccessDenied
	}
	return nil
}

// ContentTypeFor guesses a MIME type from the file extension.
func ContentTypeFor(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == ".csv" {
		return "text/csv"
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return "application/octet-stream"
}

func page(items []*FileMetadata, limit, offset int) []*FileMetadata {
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].Name < items[j].Name
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	if limit <= 0 {
		limit = 20
	}
	if offset > len(items) {
		offset = len(items)
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
