//go:build integration
// +build integration

package graph

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"campusnet/backend/internal/store"
	"campusnet/backend/internal/store/storetest"
)

const testPassword = "campusnet-test"

// setupNeo4j starts a Neo4j container and returns a connected driver
func setupNeo4j(t *testing.T) neo4j.DriverWithContext {
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "neo4j:5",
			ExposedPorts: []string{"7687/tcp"},
			Env:          map[string]string{"NEO4J_AUTH": "neo4j/" + testPassword},
			WaitingFor: wait.ForLog("Started.").
				WithStartupTimeout(120 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("Failed to start Neo4j container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "7687/tcp")
	require.NoError(t, err)

	uri := fmt.Sprintf("bolt://%s:%s", host, port.Port())
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth("neo4j", testPassword, ""))
	require.NoError(t, err)
	t.Cleanup(func() { _ = driver.Close(ctx) })

	require.Eventually(t, func() bool {
		return driver.VerifyConnectivity(ctx) == nil
	}, 60*time.Second, time.Second)

	return driver
}

func TestRepositoryContract(t *testing.T) {
	driver := setupNeo4j(t)
	repo := NewRepository(driver, DefaultOptions())
	require.NoError(t, repo.EnsureSchema(context.Background()))

	storetest.Run(t, func(t *testing.T) store.Store {
		require.NoError(t, repo.Reset(context.Background()))
		return repo
	})
}
