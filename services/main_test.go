package services

import (
	"os"
	"testing"

	"github.com/banking/credit-scoring-engine/logger"
	"go.uber.org/goleak"
)

// verifyLeaks is switched off by the container-backed tests, whose
// docker client keeps background goroutines for the life of the binary.
var verifyLeaks = true

func TestMain(m *testing.M) {
	logger.IsTest = true

	if !verifyLeaks {
		os.Exit(m.Run())
	}
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}
