package envtests

import (
	"testing"

	"github.com/pitabwire/util"
	"github.com/testcontainers/testcontainers-go"
	tcValKey "github.com/testcontainers/testcontainers-go/modules/valkey"
)

// ValKeyImage is the container image backing property source tests.
const ValKeyImage = "docker.io/valkey/valkey:latest"

// StartValkey runs a throwaway Valkey container for the calling test and
// returns its redis:// connection string. The test is skipped when no
// container provider is reachable.
func StartValkey(t *testing.T) string {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := t.Context()

	container, err := tcValKey.Run(ctx, ValKeyImage)
	testcontainers.CleanupContainer(t, container)
	if err != nil {
		t.Fatalf("failed to start valkey container: %v", err)
	}

	conn, err := container.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("failed to get connection string for valkey container: %v", err)
	}

	util.Log(ctx).WithField("image", ValKeyImage).WithField("conn", conn).Info("valkey container ready")
	return conn
}
