package services

import (
	"context"
	"fmt"
	"time"

	"github.com/banking/credit-scoring-engine/logger"
	"github.com/banking/credit-scoring-engine/metrics"
	"github.com/banking/credit-scoring-engine/types"
	"golang.org/x/sync/errgroup"
)

// ProbingReadinessIndicator reports readiness from live dependency probes.
// The report keeps the static key set so consumers see the same shape in
// both modes.
type ProbingReadinessIndicator struct {
	serviceName string
	timeout     time.Duration
	probes      []DependencyProbe
	metrics     *metrics.Registry
}

// NewProbingReadinessIndicator creates the indicator. metricsReg may be nil.
func NewProbingReadinessIndicator(serviceName string, timeout time.Duration, probes []DependencyProbe, metricsReg *metrics.Registry) *ProbingReadinessIndicator {
	return &ProbingReadinessIndicator{
		serviceName: serviceName,
		timeout:     timeout,
		probes:      probes,
		metrics:     metricsReg,
	}
}

type probeResult struct {
	probe  DependencyProbe
	health types.Health
}

func (p *ProbingReadinessIndicator) Health(ctx context.Context) types.Health {
	results := make([]probeResult, len(p.probes))

	var g errgroup.Group
	for i, probe := range p.probes {
		g.Go(func() error {
			results[i] = probeResult{probe: probe, health: p.runProbe(ctx, probe)}
			return nil
		})
	}
	_ = g.Wait()

	bureauConnections := make(map[string]string, 3)
	for _, name := range BureauNames() {
		bureauConnections[name] = string(types.HealthStatusUp)
	}
	dependencies := make(map[string]types.Health)
	modelStatus := ModelStatusActive

	statuses := make([]types.HealthStatus, 0, len(results))
	for _, r := range results {
		name := r.probe.Name()
		status := r.health.Status

		if status == types.HealthStatusDown && p.metrics != nil {
			p.metrics.ObserveProbeFailure(name)
		}

		switch r.probe.Kind() {
		case ProbeKindBureau:
			bureauConnections[name] = string(status)
		case ProbeKindModel:
			if status != types.HealthStatusUp {
				modelStatus = ModelStatusUnavailable
			}
			dependencies[name] = r.health
		default:
			dependencies[name] = r.health
		}

		switch {
		case status == types.HealthStatusDown && !r.probe.Required():
			statuses = append(statuses, types.HealthStatusDegraded)
		default:
			statuses = append(statuses, status)
		}
	}

	overall := types.AggregateStatus(statuses...)

	b := types.NewHealthBuilder(overall).
		WithDetail(detailStatus, string(overall)).
		WithDetail(detailService, p.serviceName).
		WithDetail(detailModelStatus, modelStatus).
		WithDetail(detailBureauConnections, bureauConnections).
		WithDetail(detailComplianceMode, ComplianceModeFCRAECOA)
	if len(dependencies) > 0 {
		b.WithDetail(detailDependencies, dependencies)
	}
	return b.Build()
}

// runProbe runs one probe under its own deadline. A probe that panics or
// overruns the deadline is reported DOWN.
func (p *ProbingReadinessIndicator) runProbe(ctx context.Context, probe DependencyProbe) types.Health {
	probeCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	done := make(chan types.Health, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.GetLogger().Errorw("Dependency probe panicked", "dependency", probe.Name(), "panic", r)
				done <- types.Down().WithDetail("error", fmt.Sprintf("probe panicked: %v", r)).Build()
			}
		}()
		done <- probe.Probe(probeCtx)
	}()

	select {
	case h := <-done:
		return h
	case <-probeCtx.Done():
		logger.GetLogger().Warnw("Dependency probe timed out", "dependency", probe.Name(), "timeout", p.timeout)
		return types.Down().WithDetail("error", "probe timed out after "+p.timeout.String()).Build()
	}
}

var _ HealthIndicator = (*ProbingReadinessIndicator)(nil)
