package services

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/banking/credit-scoring-engine/config"
	"github.com/banking/credit-scoring-engine/logger"
	"github.com/banking/credit-scoring-engine/types"
	"github.com/redis/go-redis/v9"
)

// ProbeKind groups probes into the sections of the readiness report.
type ProbeKind string

const (
	ProbeKindBureau    ProbeKind = "bureau"
	ProbeKindDatastore ProbeKind = "datastore"
	ProbeKindModel     ProbeKind = "model"
)

// DependencyProbe checks one downstream dependency.
// Probe must honour ctx and never panic on dependency failures.
type DependencyProbe interface {
	Name() string
	Kind() ProbeKind
	// Required probes take readiness DOWN when they fail; optional ones only degrade it.
	Required() bool
	Probe(ctx context.Context) types.Health
}

// PostgresPinger is the subset of *pgxpool.Pool used by PostgresProbe.
type PostgresPinger interface {
	Ping(ctx context.Context) error
}

// ModelArtifactStore is the subset of *s3.Client used by ModelArtifactProbe.
type ModelArtifactStore interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// BureauProbe issues a GET against a bureau health endpoint; any 2xx is UP.
type BureauProbe struct {
	name   string
	url    string
	client *http.Client
}

func NewBureauProbe(name, url string, client *http.Client) *BureauProbe {
	if client == nil {
		client = http.DefaultClient
	}
	return &BureauProbe{name: name, url: url, client: client}
}

func (p *BureauProbe) Name() string    { return p.name }
func (p *BureauProbe) Kind() ProbeKind { return ProbeKindBureau }
func (p *BureauProbe) Required() bool  { return true }

func (p *BureauProbe) Probe(ctx context.Context) types.Health {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return types.Down().WithDetail("error", err.Error()).Build()
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		logger.GetLogger().Warnw("Bureau health probe failed", "bureau", p.name, "error", err)
		return types.Down().WithDetail("error", err.Error()).Build()
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return types.Down().
			WithDetail("http_status", resp.StatusCode).
			WithDetail("error", fmt.Sprintf("unexpected status %d", resp.StatusCode)).
			Build()
	}
	return types.Up().WithDetail("http_status", resp.StatusCode).Build()
}

// PostgresProbe pings the model registry database.
type PostgresProbe struct {
	pool PostgresPinger
}

func NewPostgresProbe(pool PostgresPinger) *PostgresProbe {
	return &PostgresProbe{pool: pool}
}

func (p *PostgresProbe) Name() string    { return "postgres" }
func (p *PostgresProbe) Kind() ProbeKind { return ProbeKindDatastore }
func (p *PostgresProbe) Required() bool  { return true }

func (p *PostgresProbe) Probe(ctx context.Context) types.Health {
	if err := p.pool.Ping(ctx); err != nil {
		logger.GetLogger().Errorw("Database health check failed", "error", err)
		return types.Down().WithDetail("error", "Database connection failed").Build()
	}
	return types.Up().Build()
}

// RedisProbe pings the feature cache. Scoring can run without the cache, so it is optional.
type RedisProbe struct {
	client redis.Cmdable
}

func NewRedisProbe(client redis.Cmdable) *RedisProbe {
	return &RedisProbe{client: client}
}

func (p *RedisProbe) Name() string    { return "redis" }
func (p *RedisProbe) Kind() ProbeKind { return ProbeKindDatastore }
func (p *RedisProbe) Required() bool  { return false }

func (p *RedisProbe) Probe(ctx context.Context) types.Health {
	if err := p.client.Ping(ctx).Err(); err != nil {
		logger.GetLogger().Errorw("Redis health check failed", "error", err)
		return types.Down().WithDetail("error", "Redis connection failed").Build()
	}
	return types.Up().Build()
}

// ModelArtifactProbe checks that the active scoring model artifact exists.
type ModelArtifactProbe struct {
	store  ModelArtifactStore
	bucket string
	key    string
}

func NewModelArtifactProbe(store ModelArtifactStore, bucket, key string) *ModelArtifactProbe {
	return &ModelArtifactProbe{store: store, bucket: bucket, key: key}
}

func (p *ModelArtifactProbe) Name() string    { return "model_store" }
func (p *ModelArtifactProbe) Kind() ProbeKind { return ProbeKindModel }
func (p *ModelArtifactProbe) Required() bool  { return true }

func (p *ModelArtifactProbe) Probe(ctx context.Context) types.Health {
	out, err := p.store.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: &p.bucket,
		Key:    &p.key,
	})
	if err != nil {
		logger.GetLogger().Errorw("Model artifact check failed", "bucket", p.bucket, "key", p.key, "error", err)
		return types.Down().
			WithDetail(detailModelStatus, ModelStatusUnavailable).
			WithDetail("error", "Model artifact not reachable").
			Build()
	}

	b := types.Up().
		WithDetail(detailModelStatus, ModelStatusActive).
		WithDetail("artifact", p.key)
	if out.ETag != nil {
		b.WithDetail("etag", *out.ETag)
	}
	return b.Build()
}

// BuildReadinessProbes assembles the probes enabled by cfg. The three bureau
// probes are always present; datastores and the model store only when enabled
// and their client is supplied.
func BuildReadinessProbes(cfg *config.Config, deps ProbeDependencies) []DependencyProbe {
	endpoints := cfg.Bureaus.Endpoints()
	probes := make([]DependencyProbe, 0, 6)
	for _, name := range BureauNames() {
		probes = append(probes, NewBureauProbe(name, endpoints[name], deps.HTTPClient))
	}
	if cfg.Database.Enabled && deps.Postgres != nil {
		probes = append(probes, NewPostgresProbe(deps.Postgres))
	}
	if cfg.Redis.Enabled && deps.Redis != nil {
		probes = append(probes, NewRedisProbe(deps.Redis))
	}
	if cfg.ModelStore.Enabled && deps.ModelStore != nil {
		probes = append(probes, NewModelArtifactProbe(deps.ModelStore, cfg.ModelStore.Bucket, cfg.ModelStore.Key))
	}
	return probes
}
