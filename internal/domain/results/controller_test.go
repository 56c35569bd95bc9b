package results

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/synthfhir/synthfhir/internal/platform/blobstore"
	"github.com/synthfhir/synthfhir/pkg/contract"
)

type fakeSource struct {
	data contract.GeneratedData
	err  error
}

func (s fakeSource) Read(context.Context) (contract.GeneratedData, error) { return s.data, s.err }

type fakeAPI struct {
	mu         sync.Mutex
	exportReq  contract.ExportRequest
	exportResp *contract.ExportResponse
	exportErr  error
	downloaded string
	downloads  int
	csv        []byte
	started    chan struct{}
	release    chan struct{}
	exports    int
}

func (f *fakeAPI) ExportCSV(_ context.Context, req contract.ExportRequest) (*contract.ExportResponse, error) {
	f.mu.Lock()
	f.exports++
	f.exportReq = req
	f.mu.Unlock()
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
	return f.exportResp, f.exportErr
}

func (f *fakeAPI) DownloadCSV(_ context.Context, filepath string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.downloaded = filepath
	f.downloads++
	return f.csv, nil
}

func records(n int) contract.RecordSet {
	out := make(contract.RecordSet, n)
	for i := range out {
		out[i] = contract.Record{"id": float64(i + 1)}
	}
	return out
}

func loaded(t *testing.T, api *fakeAPI, data contract.GeneratedData) (*Controller, *blobstore.InMemoryStore) {
	t.Helper()
	files := blobstore.NewInMemoryStore()
	c := NewController(api, fakeSource{data: data}, files, zerolog.Nop())
	if _, err := c.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return c, files
}

func TestLoad_EmptyState(t *testing.T) {
	c := NewController(&fakeAPI{}, fakeSource{data: contract.GeneratedData{}}, blobstore.NewInMemoryStore(), zerolog.Nop())
	data, err := c.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.HasData() || len(data) != 0 {
		t.Error("expected empty state")
	}
}

func TestLoad_StoreFailureLeavesEmptyState(t *testing.T) {
	boom := errors.New("store unavailable")
	c := NewController(&fakeAPI{}, fakeSource{err: boom}, blobstore.NewInMemoryStore(), zerolog.Nop())
	if _, err := c.Load(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}
	if c.HasData() {
		t.Error("expected empty state after failure")
	}
}

func TestResources_CanonicalOrder(t *testing.T) {
	c, _ := loaded(t, &fakeAPI{}, contract.GeneratedData{
		contract.ResourceObservation: records(1),
		contract.ResourcePatient:     records(3),
		contract.ResourceClaim:       records(2),
	})
	got := c.Resources()
	want := []ResourceCount{
		{contract.ResourcePatient, 3},
		{contract.ResourceClaim, 2},
		{contract.ResourceObservation, 1},
	}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestCopyText_FirstFiveIndented(t *testing.T) {
	c, _ := loaded(t, &fakeAPI{}, contract.GeneratedData{contract.ResourcePatient: records(8)})
	text, err := c.CopyText(contract.ResourcePatient)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var out []map[string]any
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		t.Fatalf("copy text is not JSON: %v", err)
	}
	if len(out) != 5 || out[4]["id"] != 5.0 {
		t.Errorf("expected first five records, got %v", out)
	}
	if text[:6] != "[\n  {\n" {
		t.Errorf("expected two-space indentation, got %q", text[:6])
	}

	if _, err := c.CopyText(contract.ResourceClaim); !errors.Is(err, ErrNoRecords) {
		t.Errorf("expected ErrNoRecords, got %v", err)
	}
}

func TestExport_SavesDeterministicFile(t *testing.T) {
	api := &fakeAPI{
		exportResp: &contract.ExportResponse{Success: true, Filepath: "patient_synthetic_20240101.csv", DownloadURL: "/api/download/patient_synthetic_20240101.csv"},
		csv:        []byte("id\n1\n"),
	}
	c, files := loaded(t, api, contract.GeneratedData{contract.ResourcePatient: records(2)})

	meta, err := c.Export(context.Background(), contract.ResourcePatient)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !api.exportReq.ApplyMD5 || api.exportReq.Resource != contract.ResourcePatient || len(api.exportReq.Data) != 2 {
		t.Errorf("unexpected export request %+v", api.exportReq)
	}
	if api.downloaded != "patient_synthetic_20240101.csv" {
		t.Errorf("expected download by filepath, got %q", api.downloaded)
	}
	if meta.Name != "patient_synthetic.csv" || meta.Size != 5 {
		t.Errorf("unexpected saved file %+v", meta)
	}
	rc, _, err := files.Open(context.Background(), "patient_synthetic.csv")
	if err != nil {
		t.Fatalf("saved file missing: %v", err)
	}
	b, _ := io.ReadAll(rc)
	if string(b) != "id\n1\n" {
		t.Errorf("unexpected saved content %q", b)
	}
	if _, busy := c.Exporting(); busy {
		t.Error("exporting flag must be cleared")
	}
}

func TestExport_UnsuccessfulResponseSurfacesError(t *testing.T) {
	api := &fakeAPI{exportResp: &contract.ExportResponse{Success: false, Error: "disk full"}}
	c, files := loaded(t, api, contract.GeneratedData{contract.ResourceClaim: records(1)})

	_, err := c.Export(context.Background(), contract.ResourceClaim)
	if err == nil || err.Error() != "disk full" {
		t.Fatalf("expected backend error message, got %v", err)
	}
	if api.downloaded != "" {
		t.Error("nothing should be downloaded after a failed export")
	}
	if _, total, _ := files.List(context.Background(), "", 10, 0); total != 0 {
		t.Error("nothing should be saved after a failed export")
	}
}

func TestExport_SuccessWithoutFileFails(t *testing.T) {
	api := &fakeAPI{exportResp: &contract.ExportResponse{Success: true}}
	c, files := loaded(t, api, contract.GeneratedData{contract.ResourceClaim: records(1)})

	_, err := c.Export(context.Background(), contract.ResourceClaim)
	if !errors.Is(err, ErrNoFile) {
		t.Fatalf("expected ErrNoFile, got %v", err)
	}
	if api.downloads != 0 {
		t.Error("an empty file path must not be requested")
	}
	if _, total, _ := files.List(context.Background(), "", 10, 0); total != 0 {
		t.Error("nothing should be saved without a file")
	}
	if _, busy := c.Exporting(); busy {
		t.Error("exporting flag must be cleared")
	}
}

func TestExport_OneAtATime(t *testing.T) {
	api := &fakeAPI{
		exportResp: &contract.ExportResponse{Success: true, Filepath: "f.csv"},
		csv:        []byte("x"),
		started:    make(chan struct{}, 1),
		release:    make(chan struct{}),
	}
	c, _ := loaded(t, api, contract.GeneratedData{
		contract.ResourcePatient: records(1),
		contract.ResourceClaim:   records(1),
	})

	done := make(chan error, 1)
	go func() {
		_, err := c.Export(context.Background(), contract.ResourcePatient)
		done <- err
	}()
	<-api.started

	if kind, busy := c.Exporting(); !busy || kind != contract.ResourcePatient {
		t.Errorf("expected patient export in flight, got %q %v", kind, busy)
	}
	if _, err := c.Export(context.Background(), contract.ResourceClaim); !errors.Is(err, ErrBusy) {
		t.Errorf("expected ErrBusy, got %v", err)
	}

	close(api.release)
	if err := <-done; err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if api.exports != 1 {
		t.Errorf("expected one export call, got %d", api.exports)
	}
}
