package knowledge

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/synthfhir/synthfhir/pkg/contract"
)

type fakeAPI struct {
	mu          sync.Mutex
	statusCalls int
	actionCalls int
	statusErr   error
	actionErr   error
	docs        int
	started     chan struct{}
	release     chan struct{}
	uploaded    string
	target      contract.UploadTarget
}

func (f *fakeAPI) GetKnowledgeStatus(context.Context) (*contract.KnowledgeStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusCalls++
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	return &contract.KnowledgeStatus{TotalDocuments: f.docs}, nil
}

func (f *fakeAPI) action(resource string) (*contract.IndexResponse, error) {
	f.mu.Lock()
	f.actionCalls++
	f.mu.Unlock()
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
	if f.actionErr != nil {
		return nil, f.actionErr
	}
	f.mu.Lock()
	f.docs += 3
	f.mu.Unlock()
	return &contract.IndexResponse{Success: true, ChunksIndexed: 3, Resource: resource}, nil
}

func (f *fakeAPI) IndexResource(_ context.Context, kind contract.ResourceKind) (*contract.IndexResponse, error) {
	return f.action(string(kind))
}

func (f *fakeAPI) IndexAllResources(context.Context) (*contract.IndexResponse, error) {
	return f.action(contract.IndexAllResource)
}

func (f *fakeAPI) UploadDocument(_ context.Context, name string, content io.Reader, target contract.UploadTarget) (*contract.IndexResponse, error) {
	b, _ := io.ReadAll(content)
	f.mu.Lock()
	f.uploaded = name + ":" + string(b)
	f.target = target
	f.mu.Unlock()
	return f.action(target.String())
}

func (f *fakeAPI) counts() (status, action int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.statusCalls, f.actionCalls
}

func TestController_IndexRefetchesStatus(t *testing.T) {
	api := &fakeAPI{}
	c := NewController(api, zerolog.Nop())

	resp, err := c.Index(context.Background(), contract.ResourcePatient)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Resource != "patient" || resp.ChunksIndexed != 3 {
		t.Errorf("unexpected response %+v", resp)
	}
	if status, _ := api.counts(); status != 1 {
		t.Errorf("expected one status refetch, got %d", status)
	}
	if c.Status().TotalDocuments != 3 {
		t.Errorf("status must come from the backend, got %d", c.Status().TotalDocuments)
	}
	if !c.Activity().IsIdle() {
		t.Error("activity must return to idle")
	}
}

func TestController_IndexAll(t *testing.T) {
	c := NewController(&fakeAPI{}, zerolog.Nop())
	resp, err := c.IndexAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Resource != contract.IndexAllResource {
		t.Errorf("expected resource %q, got %q", contract.IndexAllResource, resp.Resource)
	}
}

func TestController_BusyRejectsSecondAction(t *testing.T) {
	api := &fakeAPI{started: make(chan struct{}, 1), release: make(chan struct{})}
	c := NewController(api, zerolog.Nop())

	done := make(chan error, 1)
	go func() {
		_, err := c.Index(context.Background(), contract.ResourceClaim)
		done <- err
	}()
	<-api.started

	if c.CanStart() {
		t.Error("CanStart must be false while indexing")
	}
	_, err := c.IndexAll(context.Background())
	var busy *BusyError
	if !errors.As(err, &busy) {
		t.Fatalf("expected *BusyError, got %v", err)
	}
	if kind, ok := busy.Current.Resource(); !ok || kind != contract.ResourceClaim {
		t.Errorf("busy error should report current activity, got %s", busy.Current)
	}
	_, err = c.Upload(context.Background(), Document{Name: "a.txt", Content: strings.NewReader("x")}, contract.GlobalTarget())
	if !errors.As(err, &busy) {
		t.Fatalf("expected *BusyError for upload, got %v", err)
	}

	close(api.release)
	if err := <-done; err != nil {
		t.Fatalf("first action failed: %v", err)
	}
	if _, action := api.counts(); action != 1 {
		t.Errorf("expected exactly one action call, got %d", action)
	}
	if !c.CanStart() {
		t.Error("expected idle after completion")
	}
}

func TestController_ActionFailureSkipsRefresh(t *testing.T) {
	api := &fakeAPI{actionErr: errors.New("Indexing failed: no DDL")}
	c := NewController(api, zerolog.Nop())

	_, err := c.Index(context.Background(), contract.ResourcePatient)
	if err == nil || err.Error() != "Indexing failed: no DDL" {
		t.Fatalf("expected verbatim error, got %v", err)
	}
	if status, _ := api.counts(); status != 0 {
		t.Error("status must not be refetched after a failed action")
	}
	if !c.CanStart() {
		t.Error("activity must be cleared after failure")
	}
}

func TestController_RefreshFailureStillReturnsResponse(t *testing.T) {
	api := &fakeAPI{statusErr: errors.New("status down")}
	c := NewController(api, zerolog.Nop())

	resp, err := c.Index(context.Background(), contract.ResourceCoverage)
	if resp == nil || resp.ChunksIndexed != 3 {
		t.Fatalf("expected action response despite refresh failure, got %+v", resp)
	}
	if err == nil || !strings.Contains(err.Error(), "status down") {
		t.Errorf("expected refresh error alongside response, got %v", err)
	}
}

func TestController_Upload(t *testing.T) {
	api := &fakeAPI{}
	c := NewController(api, zerolog.Nop())

	resp, err := c.Upload(context.Background(),
		Document{Name: "Guidelines.PDF", Content: strings.NewReader("body")},
		contract.TargetFor(contract.ResourceClaim))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if api.uploaded != "Guidelines.PDF:body" || api.target.String() != "claim" {
		t.Errorf("unexpected upload %q to %s", api.uploaded, api.target)
	}
	if resp.Resource != "claim" {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestController_UploadValidation(t *testing.T) {
	api := &fakeAPI{}
	c := NewController(api, zerolog.Nop())

	if _, err := c.Upload(context.Background(), Document{}, contract.GlobalTarget()); !errors.Is(err, ErrNoDocument) {
		t.Errorf("expected ErrNoDocument, got %v", err)
	}
	_, err := c.Upload(context.Background(), Document{Name: "notes.docx", Content: strings.NewReader("x")}, contract.GlobalTarget())
	if !errors.Is(err, ErrUnsupportedDocument) {
		t.Errorf("expected ErrUnsupportedDocument, got %v", err)
	}
	if _, action := api.counts(); action != 0 {
		t.Error("rejected uploads must not reach the network")
	}
}

func TestController_IndexUnknownResource(t *testing.T) {
	api := &fakeAPI{}
	c := NewController(api, zerolog.Nop())
	if _, err := c.Index(context.Background(), "encounter"); !errors.Is(err, contract.ErrUnknownResource) {
		t.Errorf("expected ErrUnknownResource, got %v", err)
	}
}

func TestSupported(t *testing.T) {
	for name, want := range map[string]bool{
		"a.txt": true, "b.CSV": true, "c.pdf": true, "d.docx": false, "noext": false,
	} {
		if got := Supported(name); got != want {
			t.Errorf("Supported(%q) = %v, want %v", name, got, want)
		}
	}
}
