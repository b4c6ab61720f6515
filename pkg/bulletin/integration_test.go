//go:build integration

package bulletin

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedis starts a Redis container for testing.
func setupRedis(t *testing.T) string {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	redisC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "failed to start Redis container")
	t.Cleanup(func() {
		if err := redisC.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate Redis container: %v", err)
		}
	})

	host, err := redisC.Host(ctx)
	require.NoError(t, err)
	port, err := redisC.MappedPort(ctx, "6379")
	require.NoError(t, err)

	return fmt.Sprintf("redis://%s:%s", host, port.Port())
}

func TestIntegration_PublishAndList(t *testing.T) {
	redisURL := setupRedis(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := NewClientFromURL(redisURL, "integration")
	require.NoError(t, err)
	defer client.Close()
	require.NoError(t, client.Ping(ctx))

	sub, err := client.SubscribeEvents(ctx)
	require.NoError(t, err)
	defer sub.Close()

	first, err := client.PublishStandup(ctx, "2025-11-01", "09:00 Europe/Tallinn", `{"standup_date":"2025-11-01"}`)
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	second, err := client.PublishStandup(ctx, "2025-11-02", "09:00 Europe/Tallinn", `{"standup_date":"2025-11-02"}`)
	require.NoError(t, err)

	standups, err := client.ListStandups(ctx, 10)
	require.NoError(t, err)
	require.Len(t, standups, 2)
	assert.Equal(t, second.ID, standups[0].ID)
	assert.Equal(t, first.ID, standups[1].ID)

	select {
	case ev := <-sub.Events():
		assert.Equal(t, first.ID, ev.ID)
	case <-ctx.Done():
		t.Fatal("timed out waiting for bulletin event")
	}
}
