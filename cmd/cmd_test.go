package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	apperrors "github.com/banking/credit-scoring-engine/errors"
	"github.com/banking/credit-scoring-engine/logger"
	"github.com/banking/credit-scoring-engine/types"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.IsTest = true
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func executeCommand(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	root := NewRootCmd()
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func staticEnv(t *testing.T) {
	t.Helper()
	t.Setenv("HEALTH_READINESS_MODE", "static")
	t.Setenv("SERVER_ENVIRONMENT", "development")
}

func TestRootCommandHelp(t *testing.T) {
	output, err := executeCommand("--help")
	require.NoError(t, err)
	assert.Contains(t, output, "credit-scoring-engine")
	assert.Contains(t, output, "check")
	assert.Contains(t, output, "validate-manifests")
	assert.Contains(t, output, "--config")
}

func TestCheckCommand(t *testing.T) {
	staticEnv(t)

	t.Run("liveness", func(t *testing.T) {
		output, err := executeCommand("check", "liveness")
		require.NoError(t, err)

		var h types.Health
		require.NoError(t, json.Unmarshal([]byte(output), &h))
		assert.Equal(t, types.HealthStatusUp, h.Status)
		assert.Equal(t, "credit-scoring-engine", h.Details["service"])
	})

	t.Run("readiness", func(t *testing.T) {
		output, err := executeCommand("check", "readiness")
		require.NoError(t, err)

		var h types.Health
		require.NoError(t, json.Unmarshal([]byte(output), &h))
		assert.Equal(t, "ACTIVE", h.Details["model_status"])
		assert.Equal(t, "FCRA-ECOA", h.Details["compliance_mode"])
	})

	t.Run("all", func(t *testing.T) {
		output, err := executeCommand("check", "all")
		require.NoError(t, err)

		var composite types.CompositeHealth
		require.NoError(t, json.Unmarshal([]byte(output), &composite))
		assert.Equal(t, types.HealthStatusUp, composite.Status)
		assert.Len(t, composite.Components, 2)
	})

	t.Run("rejects unknown indicator", func(t *testing.T) {
		_, err := executeCommand("check", "startup")
		assert.Error(t, err)
	})
}

func TestCheckCommand_ProbeModeDown(t *testing.T) {
	t.Setenv("SERVER_ENVIRONMENT", "development")
	t.Setenv("HEALTH_READINESS_MODE", "probe")
	t.Setenv("HEALTH_PROBE_TIMEOUT_MS", "200")
	// nothing listens on port 1
	t.Setenv("BUREAU_EXPERIAN_URL", "http://127.0.0.1:1/health")
	t.Setenv("BUREAU_EQUIFAX_URL", "http://127.0.0.1:1/health")
	t.Setenv("BUREAU_TRANSUNION_URL", "http://127.0.0.1:1/health")

	output, err := executeCommand("check", "readiness")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "readiness is DOWN")
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.ServiceUnavailableError, appErr.Type)

	var h types.Health
	require.NoError(t, json.Unmarshal([]byte(output), &h))
	assert.Equal(t, map[string]interface{}{"experian": "DOWN", "equifax": "DOWN", "transunion": "DOWN"}, h.Details["bureau_connections"])
}

func TestCheckCommand_ConfigFile(t *testing.T) {
	staticEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("health:\n  service_name: scoring-canary\n"), 0o600))

	output, err := executeCommand("--config", path, "check", "liveness")
	require.NoError(t, err)
	assert.Contains(t, output, "scoring-canary")

	_, err = executeCommand("--config", filepath.Join(t.TempDir(), "missing.yaml"), "check", "liveness")
	assert.Error(t, err)
}

func TestValidateManifestsCommand(t *testing.T) {
	t.Run("repository manifests pass", func(t *testing.T) {
		output, err := executeCommand("validate-manifests", filepath.Join("..", "k8s"))
		require.NoError(t, err)
		assert.Contains(t, output, "Rule 01 - Resource Limits: PASS")
		assert.Contains(t, output, "All manifest standards passed")
	})

	t.Run("violations fail", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "deployment.yaml"), []byte(`
apiVersion: apps/v1
kind: Deployment
metadata:
  name: app
spec:
  template:
    spec:
      containers:
        - name: app
          image: nginx:latest
`), 0o600))

		output, err := executeCommand("validate-manifests", "--json", dir)
		require.Error(t, err)

		var report struct {
			Results []struct {
				ID     string `json:"id"`
				Passed bool   `json:"passed"`
			} `json:"results"`
		}
		require.NoError(t, json.Unmarshal([]byte(output), &report))
		require.Len(t, report.Results, 6)
		for _, r := range report.Results {
			assert.False(t, r.Passed, "rule %s", r.ID)
		}
	})

	t.Run("missing directory", func(t *testing.T) {
		_, err := executeCommand("validate-manifests", filepath.Join(t.TempDir(), "nope"))
		assert.Error(t, err)
	})
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return port
}

func TestServeGracefulShutdown(t *testing.T) {
	staticEnv(t)
	port := freePort(t)
	t.Setenv("PORT", strconv.Itoa(port))
	t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "2")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, "") }()

	client := &http.Client{Timeout: time.Second}
	url := "http://127.0.0.1:" + strconv.Itoa(port) + "/actuator/health/readiness"
	require.Eventually(t, func() bool {
		resp, err := client.Get(url)
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
