//go:build integration

package services

import (
	"context"
	"testing"
	"time"

	"github.com/banking/credit-scoring-engine/types"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	postgresContainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	redisTC "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
)

func init() {
	verifyLeaks = false
}

func setupPostgres(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	pgContainer, err := postgresContainer.Run(ctx,
		"postgres:16-alpine",
		postgresContainer.WithDatabase("model_registry"),
		postgresContainer.WithUsername("scoring"),
		postgresContainer.WithPassword("scoring"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgContainer.Terminate(context.Background()); err != nil {
			t.Logf("Failed to terminate postgres container: %v", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func setupRedis(ctx context.Context, t *testing.T) *redis.Client {
	t.Helper()
	redisContainer, err := redisTC.Run(ctx,
		"docker.io/redis:7",
		testcontainers.WithWaitStrategy(wait.ForListeningPort("6379/tcp")),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := redisContainer.Terminate(context.Background()); err != nil {
			t.Logf("Failed to terminate redis container: %v", err)
		}
	})

	endpoint, err := redisContainer.Endpoint(ctx, "")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestIntegration_DatastoreProbes(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}
	ctx := context.Background()

	pool := setupPostgres(ctx, t)
	rdb := setupRedis(ctx, t)

	probes := append(bureauProbes(nil), NewPostgresProbe(pool), NewRedisProbe(rdb))
	h := NewProbingReadinessIndicator("credit-scoring-engine", 5*time.Second, probes, nil).Health(ctx)

	assert.Equal(t, types.HealthStatusUp, h.Status)
	deps := h.Details["dependencies"].(map[string]types.Health)
	assert.Equal(t, types.HealthStatusUp, deps["postgres"].Status)
	assert.Equal(t, types.HealthStatusUp, deps["redis"].Status)

	pool.Close()
	h = NewProbingReadinessIndicator("credit-scoring-engine", 5*time.Second, probes, nil).Health(ctx)
	assert.Equal(t, types.HealthStatusDown, h.Status)
}
