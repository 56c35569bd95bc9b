// Package knowledge holds the state of the knowledge base screen: the index
// status and the single indexing or upload action in flight.
package knowledge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/synthfhir/synthfhir/pkg/contract"
)

var (
	ErrNoDocument          = errors.New("no document selected")
	ErrUnsupportedDocument = errors.New("unsupported document type")
)

// AllowedExtensions are the document types the backend can index.
var AllowedExtensions = []string{".txt", ".pdf", ".csv"}

// BusyError is returned when an action is requested while another one is in
// flight. No request is sent.
type BusyError struct {
	Current Activity
}

func (e *BusyError) Error() string {
	return fmt.Sprintf("knowledge base busy: %s", e.Current)
}

// API is the subset of the backend client the controller needs.
type API interface {
	GetKnowledgeStatus(ctx context.Context) (*contract.KnowledgeStatus, error)
	IndexResource(ctx context.Context, kind contract.ResourceKind) (*contract.IndexResponse, error)
	IndexAllResources(ctx context.Context) (*contract.IndexResponse, error)
	UploadDocument(ctx context.Context, name string, content io.Reader, target contract.UploadTarget) (*contract.IndexResponse, error)
}

// Document is a file picked for upload.
type Document struct {
	Name    string
	Content io.Reader
}

type Controller struct {
	api    API
	logger zerolog.Logger

	mu       sync.Mutex
	activity Activity
	status   *contract.KnowledgeStatus
}

func NewController(api API, logger zerolog.Logger) *Controller {
	return &Controller{api: api, logger: logger}
}

func (c *Controller) Activity() Activity {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activity
}

// Status returns the last fetched status, or nil before the first fetch.
func (c *Controller) Status() *contract.KnowledgeStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// CanStart reports whether a new action would be accepted right now.
func (c *Controller) CanStart() bool {
	return c.Activity().IsIdle()
}

// RefreshStatus replaces the status with a fresh copy from the backend. On
// failure the previous status is kept.
func (c *Controller) RefreshStatus(ctx context.Context) (*contract.KnowledgeStatus, error) {
	status, err := c.api.GetKnowledgeStatus(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.logger.Error().Err(err).Msg("failed to load knowledge status")
		return nil, err
	}
	c.status = status
	return status, nil
}

// Index rebuilds the index of one resource.
func (c *Controller) Index(ctx context.Context, kind contract.ResourceKind) (*contract.IndexResponse, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", contract.ErrUnknownResource, kind)
	}
	return c.run(ctx, Indexing(kind), func(ctx context.Context) (*contract.IndexResponse, error) {
		return c.api.IndexResource(ctx, kind)
	})
}

// IndexAll rebuilds every resource index.
func (c *Controller) IndexAll(ctx context.Context) (*contract.IndexResponse, error) {
	return c.run(ctx, IndexingAll(), c.api.IndexAllResources)
}

// Upload sends doc to be indexed under target.
func (c *Controller) Upload(ctx context.Context, doc Document, target contract.UploadTarget) (*contract.IndexResponse, error) {
	if doc.Content == nil || doc.Name == "" {
		return nil, ErrNoDocument
	}
	if !Supported(doc.Name) {
		return nil, fmt.Errorf("%w: %s (allowed: %s)", ErrUnsupportedDocument,
			filepath.Ext(doc.Name), strings.Join(AllowedExtensions, ", "))
	}
	return c.run(ctx, Uploading(target), func(ctx context.Context) (*contract.IndexResponse, error) {
		return c.api.UploadDocument(ctx, doc.Name, doc.Content, target)
	})
}

// Supported reports whether name has an indexable extension.
func Supported(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, a := range AllowedExtensions {
		if ext == a {
			return true
		}
	}
	return false
}

// run claims the activity slot, performs op and refetches the status after
// success. A failed refresh does not hide the action result: both are
// returned.
func (c *Controller) run(ctx context.Context, a Activity, op func(context.Context) (*contract.IndexResponse, error)) (*contract.IndexResponse, error) {
	c.mu.Lock()
	if !c.activity.IsIdle() {
		current := c.activity
		c.mu.Unlock()
		return nil, &BusyError{Current: current}
	}
	c.activity = a
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.activity = Idle()
		c.mu.Unlock()
	}()

	resp, err := op(ctx)
	if err != nil {
		c.logger.Error().Err(err).Str("activity", a.String()).Msg("knowledge action failed")
		return nil, err
	}
	c.logger.Info().
		Str("activity", a.String()).
		Int("chunks_indexed", resp.ChunksIndexed).
		Msg("knowledge action completed")

	if _, err := c.RefreshStatus(ctx); err != nil {
		return resp, fmt.Errorf("refresh status: %w", err)
	}
	return resp, nil
}
