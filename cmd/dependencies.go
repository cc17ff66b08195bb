package cmd

import (
	"context"
	"net/http"

	"github.com/banking/credit-scoring-engine/config"
	"github.com/banking/credit-scoring-engine/logger"
	"github.com/banking/credit-scoring-engine/metrics"
	"github.com/banking/credit-scoring-engine/services"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// app bundles what both serve and check need.
type app struct {
	cfg      *config.Config
	metrics  *metrics.Registry
	health   *services.HealthService
	closeFns []func()
}

func (a *app) Close() {
	for i := len(a.closeFns) - 1; i >= 0; i-- {
		a.closeFns[i]()
	}
}

// newApp loads configuration and registers the actuator indicators.
// Dependency clients are only created in probe mode; connections are lazy so
// an unreachable dependency shows up as DOWN rather than a startup failure.
func newApp(ctx context.Context, configFile string) (*app, error) {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, metrics: metrics.NewRegistry()}
	deps := services.ProbeDependencies{Metrics: a.metrics}

	if cfg.Health.ReadinessMode == config.ReadinessProbe {
		if err := a.openDependencies(ctx, &deps); err != nil {
			a.Close()
			return nil, err
		}
	}

	registry := services.NewHealthRegistry()
	if err := services.RegisterActuatorIndicators(registry, cfg, deps); err != nil {
		a.Close()
		return nil, err
	}
	a.health = services.NewHealthService(registry, a.metrics, cfg.Server.Version)
	return a, nil
}

func (a *app) openDependencies(ctx context.Context, deps *services.ProbeDependencies) error {
	log := logger.GetLogger()
	cfg := a.cfg

	transport := http.DefaultTransport.(*http.Transport).Clone()
	deps.HTTPClient = &http.Client{Transport: transport, Timeout: cfg.Health.ProbeTimeout()}
	a.closeFns = append(a.closeFns, transport.CloseIdleConnections)

	if cfg.Database.Enabled {
		poolConfig, err := config.ConfigurePostgresPool(&cfg.Database)
		if err != nil {
			return err
		}
		pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return err
		}
		deps.Postgres = pool
		a.closeFns = append(a.closeFns, pool.Close)
		log.Infow("Model registry database probe enabled", "dsn", logger.MaskConnectionString(cfg.Database.URL()))
	}

	if cfg.Redis.Enabled {
		client := redis.NewClient(config.ConfigureRedisOptions(&cfg.Redis))
		deps.Redis = client
		a.closeFns = append(a.closeFns, func() { _ = client.Close() })
		log.Infow("Feature cache probe enabled", "address", cfg.Redis.Address)
	}

	if cfg.ModelStore.Enabled {
		client, err := config.NewModelStoreClient(ctx, &cfg.ModelStore)
		if err != nil {
			return err
		}
		deps.ModelStore = client
		log.Infow("Model artifact probe enabled", "bucket", cfg.ModelStore.Bucket, "key", cfg.ModelStore.Key)
	}
	return nil
}
