package services

import (
	"context"
	"net/http"

	"github.com/banking/credit-scoring-engine/config"
	"github.com/banking/credit-scoring-engine/logger"
	"github.com/banking/credit-scoring-engine/metrics"
	"github.com/banking/credit-scoring-engine/types"
	"github.com/redis/go-redis/v9"
)

const (
	LivenessIndicatorName  = "liveness"
	ReadinessIndicatorName = "readiness"

	ModelStatusActive      = "ACTIVE"
	ModelStatusUnavailable = "UNAVAILABLE"
	ComplianceModeFCRAECOA = "FCRA-ECOA"
)

// Detail keys shared by the static and probing readiness reports.
const (
	detailStatus            = "status"
	detailService           = "service"
	detailModelStatus       = "model_status"
	detailBureauConnections = "bureau_connections"
	detailComplianceMode    = "compliance_mode"
	detailDependencies      = "dependencies"
)

// BureauNames lists the credit bureaus reported under bureau_connections.
func BureauNames() []string {
	return []string{"experian", "equifax", "transunion"}
}

// NewLivenessIndicator answers "is the process alive". It checks nothing
// external and always reports UP.
func NewLivenessIndicator(serviceName string) HealthIndicator {
	return HealthIndicatorFunc(func(context.Context) types.Health {
		return types.Up().
			WithDetail(detailStatus, string(types.HealthStatusUp)).
			WithDetail(detailService, serviceName).
			Build()
	})
}

// NewReadinessIndicator returns the static readiness report: UP, model ACTIVE,
// every bureau UP, compliance mode FCRA-ECOA. No dependency is contacted.
func NewReadinessIndicator(serviceName string) HealthIndicator {
	return HealthIndicatorFunc(func(context.Context) types.Health {
		bureauConnections := make(map[string]string, 3)
		for _, name := range BureauNames() {
			bureauConnections[name] = string(types.HealthStatusUp)
		}

		return types.Up().
			WithDetail(detailStatus, string(types.HealthStatusUp)).
			WithDetail(detailService, serviceName).
			WithDetail(detailModelStatus, ModelStatusActive).
			WithDetail(detailBureauConnections, bureauConnections).
			WithDetail(detailComplianceMode, ComplianceModeFCRAECOA).
			Build()
	})
}

// ProbeDependencies carries the clients used by probe-mode readiness.
// Any of them may be nil when the matching dependency is disabled.
type ProbeDependencies struct {
	HTTPClient *http.Client
	Postgres   PostgresPinger
	Redis      redis.Cmdable
	ModelStore ModelArtifactStore
	Metrics    *metrics.Registry
}

// RegisterActuatorIndicators registers liveness and readiness on the registry,
// picking static or probing readiness from cfg.
func RegisterActuatorIndicators(registry *HealthRegistry, cfg *config.Config, deps ProbeDependencies) error {
	serviceName := cfg.Health.ServiceName

	if err := registry.Register(LivenessIndicatorName, NewLivenessIndicator(serviceName)); err != nil {
		return err
	}

	var readiness HealthIndicator
	switch cfg.Health.ReadinessMode {
	case config.ReadinessProbe:
		probes := BuildReadinessProbes(cfg, deps)
		readiness = NewProbingReadinessIndicator(serviceName, cfg.Health.ProbeTimeout(), probes, deps.Metrics)
		logger.GetLogger().Infow("Readiness will probe dependencies", "probes", len(probes))
	default:
		readiness = NewReadinessIndicator(serviceName)
	}

	return registry.Register(ReadinessIndicatorName, readiness)
}
