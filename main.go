// Command credit-scoring-engine serves the scoring engine's actuator
// endpoints and bundles its operational tooling.
//
// @title Credit Scoring Engine Actuator API
// @version 1.0
// @description Liveness, readiness and operational endpoints of the credit scoring engine.
// @BasePath /
package main

import "github.com/banking/credit-scoring-engine/cmd"

func main() {
	cmd.Execute()
}
