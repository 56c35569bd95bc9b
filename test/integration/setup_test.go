package integration

import (
	"context"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/synthfhir/synthfhir/internal/platform/apiclient"
	"github.com/synthfhir/synthfhir/internal/platform/blobstore"
	"github.com/synthfhir/synthfhir/internal/platform/db"
	"github.com/synthfhir/synthfhir/internal/platform/devserver"
)

// backend is a dev server on a real listener plus a client pointed at it.
type backend struct {
	Client *apiclient.Client
	Files  *blobstore.InMemoryStore
	URL    string
}

func newBackend(t *testing.T, opts devserver.Options) *backend {
	t.Helper()
	files := blobstore.NewInMemoryStore()
	opts.Files = files
	srv := httptest.NewServer(devserver.New(opts, zerolog.Nop()).Handler())
	t.Cleanup(srv.Close)

	return &backend{
		Client: apiclient.New(srv.URL+"/", apiclient.WithTimeout(10*time.Second)),
		Files:  files,
		URL:    srv.URL,
	}
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// postgresPool connects to DATABASE_URL and prepares the bridge table. The
// test is skipped when no database is configured.
func postgresPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set; skipping postgres integration test")
	}
	ctx := testContext(t)
	pool, err := db.NewPool(ctx, url, 2, 0)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)
	if err := db.EnsureSchema(ctx, pool); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	return pool
}
