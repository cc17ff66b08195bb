package types

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateStatus(t *testing.T) {
	tests := []struct {
		name     string
		in       []HealthStatus
		expected HealthStatus
	}{
		{"empty is up", nil, HealthStatusUp},
		{"all up", []HealthStatus{HealthStatusUp, HealthStatusUp}, HealthStatusUp},
		{"degraded wins over up", []HealthStatus{HealthStatusUp, HealthStatusDegraded}, HealthStatusDegraded},
		{"down wins over degraded", []HealthStatus{HealthStatusDegraded, HealthStatusDown, HealthStatusUp}, HealthStatusDown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, AggregateStatus(tt.in...))
		})
	}
}

func TestHealthStatus_HTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusOK, HealthStatusUp.HTTPStatus())
	assert.Equal(t, http.StatusOK, HealthStatusDegraded.HTTPStatus())
	assert.Equal(t, http.StatusServiceUnavailable, HealthStatusDown.HTTPStatus())
}

func TestHealthBuilder(t *testing.T) {
	b := Up().WithDetail("service", "credit-scoring-engine")
	first := b.Build()
	b.WithDetail("extra", 1)
	second := b.Build()

	assert.Equal(t, HealthStatusUp, first.Status)
	assert.Len(t, first.Details, 1)
	assert.Len(t, second.Details, 2)

	assert.Equal(t, HealthStatusDown, Down().Build().Status)
	assert.Nil(t, Down().Build().Details)
	assert.Equal(t, HealthStatusDegraded, Degraded().WithDetails(map[string]interface{}{"a": "b"}).Build().Status)
}

func TestHealth_JSON(t *testing.T) {
	h := Up().
		WithDetail("status", "UP").
		WithDetail("bureau_connections", map[string]string{"experian": "UP"}).
		Build()

	raw, err := json.Marshal(h)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"UP","details":{"status":"UP","bureau_connections":{"experian":"UP"}}}`, string(raw))

	raw, err = json.Marshal(Down().Build())
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"DOWN"}`, string(raw))
}
