package cmd

import (
	"encoding/json"
	"fmt"

	apperrors "github.com/banking/credit-scoring-engine/errors"
	"github.com/banking/credit-scoring-engine/services"
	"github.com/banking/credit-scoring-engine/types"
	"github.com/spf13/cobra"
)

const checkAll = "all"

// newCheckCmd runs indicators in-process. The exit status follows the HTTP
// semantics: DOWN fails, UP and DEGRADED succeed, so it can back an exec probe.
func newCheckCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:       "check <liveness|readiness|all>",
		Short:     "Run health indicators and print the report as JSON",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{services.LivenessIndicatorName, services.ReadinessIndicatorName, checkAll},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, *configFile)
			if err != nil {
				return err
			}
			defer a.Close()

			var (
				report interface{}
				status types.HealthStatus
			)
			if args[0] == checkAll {
				composite := a.health.CheckAll(ctx)
				report, status = composite, composite.Status
			} else {
				health, err := a.health.Check(ctx, args[0])
				if err != nil {
					return err
				}
				report, status = health, health.Status
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(report); err != nil {
				return err
			}

			if status == types.HealthStatusDown {
				return apperrors.ServiceUnavailable(fmt.Sprintf("%s is %s", args[0], status), "")
			}
			return nil
		},
	}
}
