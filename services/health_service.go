package services

import (
	"context"
	"sort"
	"sync"
	"time"

	apperrors "github.com/banking/credit-scoring-engine/errors"
	"github.com/banking/credit-scoring-engine/logger"
	"github.com/banking/credit-scoring-engine/metrics"
	"github.com/banking/credit-scoring-engine/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// HealthIndicator reports the health of one aspect of the service.
// Implementations must not block past ctx and must not return errors;
// failures are expressed as a DOWN report.
type HealthIndicator interface {
	Health(ctx context.Context) types.Health
}

// HealthIndicatorFunc adapts a plain function to HealthIndicator.
type HealthIndicatorFunc func(ctx context.Context) types.Health

func (f HealthIndicatorFunc) Health(ctx context.Context) types.Health {
	return f(ctx)
}

// HealthRegistry maps indicator names to indicators. It is safe for concurrent use.
type HealthRegistry struct {
	mu         sync.RWMutex
	indicators map[string]HealthIndicator
}

func NewHealthRegistry() *HealthRegistry {
	return &HealthRegistry{indicators: make(map[string]HealthIndicator)}
}

// Register adds an indicator under name. Empty names, nil indicators and
// duplicate names are rejected.
func (r *HealthRegistry) Register(name string, indicator HealthIndicator) error {
	if name == "" {
		return apperrors.ValidationFailed("Invalid health indicator", "name must not be empty")
	}
	if indicator == nil {
		return apperrors.ValidationFailed("Invalid health indicator", "indicator for "+name+" is nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.indicators[name]; exists {
		return apperrors.NewConflictError("Health indicator already registered", name)
	}
	r.indicators[name] = indicator
	return nil
}

func (r *HealthRegistry) Get(name string) (HealthIndicator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ind, ok := r.indicators[name]
	return ind, ok
}

// Names returns the registered names in sorted order.
func (r *HealthRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.indicators))
	for name := range r.indicators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HealthService runs registered indicators on behalf of the HTTP and CLI surfaces.
type HealthService struct {
	registry  *HealthRegistry
	metrics   *metrics.Registry
	version   string
	startTime time.Time
	log       *zap.SugaredLogger
}

// NewHealthService creates a HealthService. metricsReg may be nil.
func NewHealthService(registry *HealthRegistry, metricsReg *metrics.Registry, version string) *HealthService {
	return &HealthService{
		registry:  registry,
		metrics:   metricsReg,
		version:   version,
		startTime: time.Now(),
		log:       logger.GetLogger(),
	}
}

// StartTime reports when the service was created.
func (h *HealthService) StartTime() time.Time {
	return h.startTime
}

// Check runs a single named indicator.
func (h *HealthService) Check(ctx context.Context, name string) (types.Health, error) {
	ind, ok := h.registry.Get(name)
	if !ok {
		return types.Health{}, apperrors.NotFound("Health indicator", name)
	}
	return h.run(ctx, name, ind), nil
}

// CheckAll runs every registered indicator concurrently and aggregates the result.
func (h *HealthService) CheckAll(ctx context.Context) types.CompositeHealth {
	names := h.registry.Names()
	components := make(map[string]types.Health, len(names))

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	for _, name := range names {
		ind, ok := h.registry.Get(name)
		if !ok {
			continue
		}
		g.Go(func() error {
			result := h.run(ctx, name, ind)
			mu.Lock()
			components[name] = result
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	statuses := make([]types.HealthStatus, 0, len(components))
	for _, c := range components {
		statuses = append(statuses, c.Status)
	}

	return types.CompositeHealth{
		Status:     types.AggregateStatus(statuses...),
		Components: components,
		Version:    h.version,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Uptime:     time.Since(h.startTime).Round(time.Second).String(),
	}
}

func (h *HealthService) run(ctx context.Context, name string, ind HealthIndicator) types.Health {
	start := time.Now()
	result := ind.Health(ctx)
	elapsed := time.Since(start)

	if h.metrics != nil {
		h.metrics.ObserveHealth(name, result.Status, elapsed.Seconds())
	}
	if result.Status != types.HealthStatusUp {
		h.log.Warnw("Health indicator reported non-UP status",
			"indicator", name,
			"status", result.Status,
			"duration_ms", elapsed.Milliseconds())
	}
	return result
}
