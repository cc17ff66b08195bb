package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/banking/credit-scoring-engine/metrics"
	"github.com/banking/credit-scoring-engine/types"
	"github.com/go-redis/redismock/v9"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProbe struct {
	name     string
	kind     ProbeKind
	required bool
	probe    func(ctx context.Context) types.Health
}

func (s stubProbe) Name() string                           { return s.name }
func (s stubProbe) Kind() ProbeKind                        { return s.kind }
func (s stubProbe) Required() bool                         { return s.required }
func (s stubProbe) Probe(ctx context.Context) types.Health { return s.probe(ctx) }

func fixedProbe(name string, kind ProbeKind, required bool, status types.HealthStatus) stubProbe {
	return stubProbe{name: name, kind: kind, required: required, probe: func(context.Context) types.Health {
		return types.NewHealthBuilder(status).Build()
	}}
}

func bureauProbes(status map[string]types.HealthStatus) []DependencyProbe {
	probes := make([]DependencyProbe, 0, 3)
	for _, name := range BureauNames() {
		s, ok := status[name]
		if !ok {
			s = types.HealthStatusUp
		}
		probes = append(probes, fixedProbe(name, ProbeKindBureau, true, s))
	}
	return probes
}

func TestProbingReadiness_AllUp(t *testing.T) {
	probes := append(bureauProbes(nil),
		fixedProbe("postgres", ProbeKindDatastore, true, types.HealthStatusUp),
		fixedProbe("model_store", ProbeKindModel, true, types.HealthStatusUp),
	)
	h := NewProbingReadinessIndicator("credit-scoring-engine", time.Second, probes, nil).Health(context.Background())

	assert.Equal(t, types.HealthStatusUp, h.Status)
	assert.Equal(t, "UP", h.Details["status"])
	assert.Equal(t, "credit-scoring-engine", h.Details["service"])
	assert.Equal(t, ModelStatusActive, h.Details["model_status"])
	assert.Equal(t, ComplianceModeFCRAECOA, h.Details["compliance_mode"])
	assert.Equal(t, map[string]string{"experian": "UP", "equifax": "UP", "transunion": "UP"}, h.Details["bureau_connections"])

	deps, ok := h.Details["dependencies"].(map[string]types.Health)
	require.True(t, ok)
	assert.Len(t, deps, 2)
}

func TestProbingReadiness_StatusRules(t *testing.T) {
	tests := []struct {
		name        string
		probes      []DependencyProbe
		expected    types.HealthStatus
		modelStatus string
	}{
		{
			name:        "bureau down",
			probes:      bureauProbes(map[string]types.HealthStatus{"equifax": types.HealthStatusDown}),
			expected:    types.HealthStatusDown,
			modelStatus: ModelStatusActive,
		},
		{
			name: "optional cache down",
			probes: append(bureauProbes(nil),
				fixedProbe("redis", ProbeKindDatastore, false, types.HealthStatusDown)),
			expected:    types.HealthStatusDegraded,
			modelStatus: ModelStatusActive,
		},
		{
			name: "model missing",
			probes: append(bureauProbes(nil),
				fixedProbe("model_store", ProbeKindModel, true, types.HealthStatusDown)),
			expected:    types.HealthStatusDown,
			modelStatus: ModelStatusUnavailable,
		},
		{
			name: "required down beats optional down",
			probes: append(bureauProbes(nil),
				fixedProbe("redis", ProbeKindDatastore, false, types.HealthStatusDown),
				fixedProbe("postgres", ProbeKindDatastore, true, types.HealthStatusDown)),
			expected:    types.HealthStatusDown,
			modelStatus: ModelStatusActive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewProbingReadinessIndicator("svc", time.Second, tt.probes, nil).Health(context.Background())
			assert.Equal(t, tt.expected, h.Status)
			assert.Equal(t, string(tt.expected), h.Details["status"])
			assert.Equal(t, tt.modelStatus, h.Details["model_status"])
		})
	}
}

func TestProbingReadiness_SlowProbeTimesOut(t *testing.T) {
	slow := stubProbe{name: "postgres", kind: ProbeKindDatastore, required: true, probe: func(ctx context.Context) types.Health {
		<-ctx.Done()
		return types.Down().WithDetail("error", ctx.Err().Error()).Build()
	}}
	probes := append(bureauProbes(nil), slow)

	start := time.Now()
	h := NewProbingReadinessIndicator("svc", 50*time.Millisecond, probes, nil).Health(context.Background())

	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, types.HealthStatusDown, h.Status)
	deps := h.Details["dependencies"].(map[string]types.Health)
	assert.Equal(t, types.HealthStatusDown, deps["postgres"].Status)
	assert.Equal(t, map[string]string{"experian": "UP", "equifax": "UP", "transunion": "UP"}, h.Details["bureau_connections"])
}

func TestProbingReadiness_PanickingProbeIsIsolated(t *testing.T) {
	boom := stubProbe{name: "redis", kind: ProbeKindDatastore, required: false, probe: func(context.Context) types.Health {
		panic("nil client")
	}}
	probes := append(bureauProbes(nil), boom)

	h := NewProbingReadinessIndicator("svc", time.Second, probes, nil).Health(context.Background())

	assert.Equal(t, types.HealthStatusDegraded, h.Status)
	deps := h.Details["dependencies"].(map[string]types.Health)
	assert.Contains(t, deps["redis"].Details["error"], "nil client")
}

func TestProbingReadiness_CountsFailures(t *testing.T) {
	reg := metrics.NewRegistry()
	probes := bureauProbes(map[string]types.HealthStatus{"transunion": types.HealthStatusDown})

	ind := NewProbingReadinessIndicator("svc", time.Second, probes, reg)
	ind.Health(context.Background())
	ind.Health(context.Background())

	assert.Equal(t, 2.0, testutil.ToFloat64(reg.ProbeFailuresTotal.WithLabelValues("transunion")))
	assert.Equal(t, 0.0, testutil.ToFloat64(reg.ProbeFailuresTotal.WithLabelValues("experian")))
}

func TestProbingReadiness_RealProbes(t *testing.T) {
	up := bureauServer(t, http.StatusOK)
	down := bureauServer(t, http.StatusBadGateway)

	rdb, redisMock := redismock.NewClientMock()
	defer rdb.Close()
	redisMock.ExpectPing().SetErr(errors.New("i/o timeout"))

	probes := []DependencyProbe{
		NewBureauProbe("experian", up.URL, up.Client()),
		NewBureauProbe("equifax", up.URL, up.Client()),
		NewBureauProbe("transunion", down.URL, down.Client()),
		NewRedisProbe(rdb),
		NewModelArtifactProbe(&fakeModelStore{etag: "e"}, "models", "current.onnx"),
	}

	h := NewProbingReadinessIndicator("credit-scoring-engine", time.Second, probes, nil).Health(context.Background())
	up.Client().CloseIdleConnections()
	down.Client().CloseIdleConnections()

	assert.Equal(t, types.HealthStatusDown, h.Status)
	assert.Equal(t, map[string]string{"experian": "UP", "equifax": "UP", "transunion": "DOWN"}, h.Details["bureau_connections"])
	assert.Equal(t, ModelStatusActive, h.Details["model_status"])

	deps := h.Details["dependencies"].(map[string]types.Health)
	assert.Equal(t, types.HealthStatusDown, deps["redis"].Status)
	assert.Equal(t, types.HealthStatusUp, deps["model_store"].Status)
	require.NoError(t, redisMock.ExpectationsWereMet())
}
