package types

// ErrorResponse is the body rendered by the error handler middleware.
type ErrorResponse struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

// InfoResponse is served at /actuator/info.
type InfoResponse struct {
	Service       string `json:"service"`
	Version       string `json:"version"`
	Environment   string `json:"environment"`
	ReadinessMode string `json:"readiness_mode"`
	StartedAt     string `json:"started_at"`
}
