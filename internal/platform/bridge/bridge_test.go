package bridge

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/synthfhir/synthfhir/internal/config"
	"github.com/synthfhir/synthfhir/internal/platform/db"
	"github.com/synthfhir/synthfhir/pkg/contract"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()
	fs, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("file store: %v", err)
	}
	ms, err := NewMemoryStore(4)
	if err != nil {
		t.Fatalf("memory store: %v", err)
	}
	return map[string]Store{"file": fs, "memory": ms}
}

func sampleData() contract.GeneratedData {
	return contract.GeneratedData{
		contract.ResourcePatient: {
			{"id": "p1", "name": map[string]any{"given": "Ada"}},
			{"id": "p2"},
		},
	}
}

func TestStore_RoundTripAndNotFound(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if _, err := s.Get(ctx, "tab-1"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
			if err := s.Put(ctx, "tab-1", []byte(`{"a":1}`)); err != nil {
				t.Fatalf("put: %v", err)
			}
			got, err := s.Get(ctx, "tab-1")
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if string(got) != `{"a":1}` {
				t.Errorf("unexpected payload %s", got)
			}
		})
	}
}

func TestStore_RejectsBadSession(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			for _, session := range []string{"", "..", "../escape", "a/b"} {
				if err := s.Put(context.Background(), session, []byte("{}")); err == nil {
					t.Errorf("expected error for session %q", session)
				}
			}
		})
	}
}

func TestBridge_PublishRead(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			b := New(s, "default", zerolog.Nop())

			empty, err := b.Read(ctx)
			if err != nil {
				t.Fatalf("read empty: %v", err)
			}
			if len(empty) != 0 {
				t.Errorf("expected empty data, got %v", empty)
			}

			if err := b.Publish(ctx, sampleData()); err != nil {
				t.Fatalf("publish: %v", err)
			}
			got, err := b.Read(ctx)
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			records := got[contract.ResourcePatient]
			if len(records) != 2 || records[0]["id"] != "p1" {
				t.Errorf("unexpected records %v", records)
			}
			nested, ok := records[0]["name"].(map[string]any)
			if !ok || nested["given"] != "Ada" {
				t.Errorf("expected nested object to survive, got %v", records[0]["name"])
			}
		})
	}
}

func TestBridge_LastWriteWins(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			b := New(s, "default", zerolog.Nop())
			b.Publish(ctx, sampleData())
			b.Publish(ctx, contract.GeneratedData{
				contract.ResourceClaim: {{"id": "c1"}},
			})

			got, _ := b.Read(ctx)
			if _, ok := got[contract.ResourcePatient]; ok {
				t.Error("previous snapshot must be replaced, not merged")
			}
			if len(got[contract.ResourceClaim]) != 1 {
				t.Errorf("expected latest snapshot, got %v", got)
			}
		})
	}
}

func TestBridge_SessionsAreIsolated(t *testing.T) {
	s, _ := NewMemoryStore(4)
	ctx := context.Background()
	a := New(s, "tab-a", zerolog.Nop())
	b := New(s, "tab-b", zerolog.Nop())
	a.Publish(ctx, sampleData())

	got, err := b.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("session b should be empty, got %v", got)
	}
}

func TestBridge_UnparseableSnapshotIsEmpty(t *testing.T) {
	cases := map[string]string{
		"garbage":     `not json`,
		"array":       `[1,2,3]`,
		"wrong shape": `{"patient":"oops"}`,
		"null":        `null`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			s, _ := NewMemoryStore(2)
			s.Put(context.Background(), "default", []byte(payload))
			got, err := New(s, "default", zerolog.Nop()).Read(context.Background())
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got == nil || len(got) != 0 {
				t.Errorf("expected empty non-nil data, got %v", got)
			}
		})
	}
}

type failingStore struct{ err error }

func (f failingStore) Put(context.Context, string, []byte) error   { return f.err }
func (f failingStore) Get(context.Context, string) ([]byte, error) { return nil, f.err }

func TestBridge_StoreErrorsSurface(t *testing.T) {
	boom := errors.New("disk on fire")
	b := New(failingStore{err: boom}, "default", zerolog.Nop())
	if _, err := b.Read(context.Background()); !errors.Is(err, boom) {
		t.Errorf("expected store error from Read, got %v", err)
	}
	if err := b.Publish(context.Background(), sampleData()); !errors.Is(err, boom) {
		t.Errorf("expected store error from Publish, got %v", err)
	}
}

func TestFileStore_NoTempFilesLeft(t *testing.T) {
	dir := t.TempDir()
	s, _ := NewFileStore(dir)
	for i := 0; i < 3; i++ {
		s.Put(context.Background(), "default", []byte(`{}`))
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 || entries[0].Name() != "default.json" {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("expected only default.json, got %v", names)
	}
	if _, err := os.Stat(filepath.Join(dir, "default.json")); err != nil {
		t.Errorf("snapshot missing: %v", err)
	}
}

func TestMemoryStore_EvictsOldestSession(t *testing.T) {
	s, _ := NewMemoryStore(2)
	ctx := context.Background()
	s.Put(ctx, "a", []byte("1"))
	s.Put(ctx, "b", []byte("2"))
	s.Put(ctx, "c", []byte("3"))

	if _, err := s.Get(ctx, "a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected oldest session evicted, got %v", err)
	}
	if s.Len() != 2 {
		t.Errorf("expected 2 sessions, got %d", s.Len())
	}
}

func TestMemoryStore_ConcurrentWriters(t *testing.T) {
	s, _ := NewMemoryStore(8)
	b := New(s, "default", zerolog.Nop())
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.Publish(context.Background(), sampleData())
		}()
	}
	wg.Wait()
	got, err := b.Read(context.Background())
	if err != nil || len(got[contract.ResourcePatient]) != 2 {
		t.Errorf("unexpected state after concurrent writes: %v %v", got, err)
	}
}

func TestOpen_SelectsDriver(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{BridgeDriver: config.BridgeMemory, BridgeMemorySessions: 2, BridgeSession: "s1"}
	b, closeFn, err := Open(ctx, cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("open memory: %v", err)
	}
	defer closeFn()
	if _, ok := b.store.(*MemoryStore); !ok || b.Session() != "s1" {
		t.Errorf("expected memory store for session s1, got %T %s", b.store, b.Session())
	}

	cfg = &config.Config{BridgeDriver: config.BridgeFile, BridgeDir: t.TempDir(), BridgeSession: "s1"}
	b, _, err = Open(ctx, cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("open file: %v", err)
	}
	if _, ok := b.store.(*FileStore); !ok {
		t.Errorf("expected file store, got %T", b.store)
	}

	if _, _, err := Open(ctx, &config.Config{BridgeDriver: "redis"}, zerolog.Nop()); err == nil {
		t.Error("expected error for unknown driver")
	}
}

func TestPostgresStore(t *testing.T) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.NewPool(ctx, url, 2, 0)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer pool.Close()
	if err := db.EnsureSchema(ctx, pool); err != nil {
		t.Fatalf("schema: %v", err)
	}

	session := "test-" + time.Now().Format("150405.000000")
	s := NewPostgresStore(pool)
	defer pool.Exec(context.Background(), `DELETE FROM `+db.BridgeTable+` WHERE session = $1`, session)

	if _, err := s.Get(ctx, session); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	b := New(s, session, zerolog.Nop())
	if err := b.Publish(ctx, sampleData()); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if err := b.Publish(ctx, contract.GeneratedData{contract.ResourceClaim: {{"id": "c1"}}}); err != nil {
		t.Fatalf("republish: %v", err)
	}
	got, err := b.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 1 || len(got[contract.ResourceClaim]) != 1 {
		t.Errorf("expected last write to win, got %v", got)
	}
}
