package integration

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/synthfhir/synthfhir/internal/domain/results"
	"github.com/synthfhir/synthfhir/internal/platform/blobstore"
	"github.com/synthfhir/synthfhir/internal/platform/bridge"
	"github.com/synthfhir/synthfhir/internal/platform/db"
	"github.com/synthfhir/synthfhir/internal/platform/devserver"
	"github.com/synthfhir/synthfhir/pkg/contract"
)

func TestPostgresBridgeWorkflow(t *testing.T) {
	pool := postgresPool(t)
	b := newBackend(t, devserver.Options{})

	session := "it-" + uuid.New().String()
	br := bridge.New(bridge.NewPostgresStore(pool), session, zerolog.Nop())
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), "DELETE FROM "+db.BridgeTable+" WHERE session = $1", session)
	})

	handed := generateAndHandOff(t, b, br, contract.ResourceClaim)

	ctx := testContext(t)
	res := results.NewController(b.Client, br, blobstore.NewInMemoryStore(), zerolog.Nop())
	data, err := res.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(data[contract.ResourceClaim]) != len(handed[contract.ResourceClaim]) {
		t.Errorf("expected %d claims from postgres, got %d", len(handed[contract.ResourceClaim]), len(data[contract.ResourceClaim]))
	}
	if data[contract.ResourceClaim][0]["id"] != "claim-001" {
		t.Errorf("unexpected first claim %v", data[contract.ResourceClaim][0])
	}
}
