package types

import "net/http"

type HealthStatus string

const (
	HealthStatusUp       HealthStatus = "UP"
	HealthStatusDown     HealthStatus = "DOWN"
	HealthStatusDegraded HealthStatus = "DEGRADED"
)

// severity orders statuses for aggregation; higher is worse.
func (s HealthStatus) severity() int {
	switch s {
	case HealthStatusDown:
		return 2
	case HealthStatusDegraded:
		return 1
	default:
		return 0
	}
}

// HTTPStatus maps a health status to the code served by the actuator endpoints.
func (s HealthStatus) HTTPStatus() int {
	if s == HealthStatusDown {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}

// AggregateStatus returns the worst of the given statuses, UP when none are given.
func AggregateStatus(statuses ...HealthStatus) HealthStatus {
	worst := HealthStatusUp
	for _, s := range statuses {
		if s.severity() > worst.severity() {
			worst = s
		}
	}
	return worst
}

// Health is a single indicator's report: a status plus diagnostic details.
type Health struct {
	Status  HealthStatus           `json:"status"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// HealthBuilder assembles a Health value one detail at a time.
type HealthBuilder struct {
	status  HealthStatus
	details map[string]interface{}
}

func NewHealthBuilder(status HealthStatus) *HealthBuilder {
	return &HealthBuilder{status: status, details: make(map[string]interface{})}
}

func Up() *HealthBuilder       { return NewHealthBuilder(HealthStatusUp) }
func Down() *HealthBuilder     { return NewHealthBuilder(HealthStatusDown) }
func Degraded() *HealthBuilder { return NewHealthBuilder(HealthStatusDegraded) }

func (b *HealthBuilder) WithDetail(key string, value interface{}) *HealthBuilder {
	b.details[key] = value
	return b
}

func (b *HealthBuilder) WithDetails(details map[string]interface{}) *HealthBuilder {
	for k, v := range details {
		b.details[k] = v
	}
	return b
}

// Build returns the report. The detail map is copied so the builder can keep going.
func (b *HealthBuilder) Build() Health {
	h := Health{Status: b.status}
	if len(b.details) > 0 {
		h.Details = make(map[string]interface{}, len(b.details))
		for k, v := range b.details {
			h.Details[k] = v
		}
	}
	return h
}

// CompositeHealth is the aggregate served at /actuator/health.
type CompositeHealth struct {
	Status     HealthStatus      `json:"status"`
	Components map[string]Health `json:"components"`
	Version    string            `json:"version"`
	Timestamp  string            `json:"timestamp"`
	Uptime     string            `json:"uptime"`
}
