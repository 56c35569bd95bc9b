// Package results holds the state of the results screen: the handed-off
// record sets, CSV export and the data preview.
package results

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/synthfhir/synthfhir/internal/platform/blobstore"
	"github.com/synthfhir/synthfhir/pkg/contract"
)

// CopyLimit is the number of records placed on the clipboard.
const CopyLimit = 5

var (
	ErrBusy      = errors.New("an export is already in progress")
	ErrNoRecords = errors.New("no records for resource")
	ErrNoFile    = errors.New("export returned no file")
)

// API is the subset of the backend client the controller needs.
type API interface {
	ExportCSV(ctx context.Context, req contract.ExportRequest) (*contract.ExportResponse, error)
	DownloadCSV(ctx context.Context, filepath string) ([]byte, error)
}

// Source yields the record sets handed off by the generation screen.
type Source interface {
	Read(ctx context.Context) (contract.GeneratedData, error)
}

// ResourceCount is one row of the results overview.
type ResourceCount struct {
	Kind    contract.ResourceKind
	Records int
}

type Controller struct {
	api    API
	source Source
	files  blobstore.Store
	logger zerolog.Logger

	mu        sync.Mutex
	data      contract.GeneratedData
	exporting contract.ResourceKind
}

func NewController(api API, source Source, files blobstore.Store, logger zerolog.Logger) *Controller {
	return &Controller{api: api, source: source, files: files, logger: logger, data: contract.GeneratedData{}}
}

// Load reads the latest hand-off. Missing or unparseable data yields the
// empty state; only a failing store is reported, and the state is then
// empty as well.
func (c *Controller) Load(ctx context.Context) (contract.GeneratedData, error) {
	data, err := c.source.Read(ctx)
	if err != nil || data == nil {
		data = contract.GeneratedData{}
	}

	c.mu.Lock()
	c.data = data
	c.mu.Unlock()

	if err != nil {
		c.logger.Warn().Err(err).Msg("failed to load results")
		return data, err
	}
	return data, nil
}

// HasData reports whether at least one record set was handed off.
func (c *Controller) HasData() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data) > 0
}

// Resources lists the loaded record sets in canonical resource order.
func (c *Controller) Resources() []ResourceCount {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]ResourceCount, 0, len(c.data))
	for kind, records := range c.data {
		out = append(out, ResourceCount{Kind: kind, Records: len(records)})
	}
	sort.Slice(out, func(i, j int) bool {
		oi, oj := out[i].Kind.Order(), out[j].Kind.Order()
		if oi != oj {
			return oi < oj
		}
		return out[i].Kind < out[j].Kind
	})
	return out
}

// Records returns the loaded record set of kind.
func (c *Controller) Records(kind contract.ResourceKind) (contract.RecordSet, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	records, ok := c.data[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoRecords, kind)
	}
	return records, nil
}

// Exporting returns the resource being exported, if any.
func (c *Controller) Exporting() (contract.ResourceKind, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.exporting, c.exporting != ""
}

// Export has the backend write the record set of kind as CSV with PHI
// columns hashed, downloads the file and saves it as
// "<resource>_synthetic.csv". Only one export runs at a time.
func (c *Controller) Export(ctx context.Context, kind contract.ResourceKind) (*blobstore.FileMetadata, error) {
	records, err := c.Records(kind)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.exporting != "" {
		c.mu.Unlock()
		return nil, ErrBusy
	}
	c.exporting = kind
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.exporting = ""
		c.mu.Unlock()
	}()

	resp, err := c.api.ExportCSV(ctx, contract.ExportRequest{Resource: kind, Data: records, ApplyMD5: true})
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		msg := resp.Error
		if msg == "" {
			msg = "export failed"
		}
		return nil, errors.New(msg)
	}
	if resp.Filepath == "" {
		return nil, ErrNoFile
	}

	body, err := c.api.DownloadCSV(ctx, resp.Filepath)
	if err != nil {
		return nil, err
	}

	meta, err := c.files.Save(ctx, blobstore.FileMetadata{
		Name:        contract.ExportFileName(kind),
		ContentType: "text/csv",
		Resource:    string(kind),
	}, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("save export: %w", err)
	}

	c.logger.Info().
		Str("resource", string(kind)).
		Int("records", len(records)).
		Str("file", meta.Name).
		Int64("size", meta.Size).
		Msg("export saved")
	return meta, nil
}

// CopyText renders the first CopyLimit records of kind as indented JSON.
func (c *Controller) CopyText(kind contract.ResourceKind) (string, error) {
	records, err := c.Records(kind)
	if err != nil {
		return "", err
	}
	if len(records) > CopyLimit {
		records = records[:CopyLimit]
	}
	b, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode records: %w", err)
	}
	return string(b), nil
}
