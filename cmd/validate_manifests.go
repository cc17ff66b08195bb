package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/banking/credit-scoring-engine/manifest"
	"github.com/spf13/cobra"
)

const defaultManifestDir = "k8s"

func newValidateManifestsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "validate-manifests [dir]",
		Short: "Check Kubernetes manifests against the platform standards",
		Long: `Checks every YAML manifest in dir (default "k8s") against the platform
standards: resource limits, security context, image provenance, naming and
labels, observability annotations, and health probes.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := defaultManifestDir
			if len(args) == 1 {
				dir = args[0]
			}

			manifests, err := manifest.LoadDir(dir)
			if err != nil {
				return err
			}
			report := manifest.Validate(manifests)

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(report); err != nil {
					return err
				}
			} else {
				printReport(out, report)
			}

			if !report.Passed() {
				return fmt.Errorf("%d manifest standard violation(s) in %s", len(report.Findings()), dir)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	return cmd
}

func printReport(w io.Writer, report manifest.Report) {
	fmt.Fprintf(w, "Checked %d manifest(s)\n\n", report.Manifests)
	for _, res := range report.Results {
		verdict := "PASS"
		if !res.Passed {
			verdict = "FAIL"
		}
		fmt.Fprintf(w, "Rule %s - %s: %s (%d checked)\n", res.ID, res.Name, verdict, res.Checked)
		for _, f := range res.Findings {
			fmt.Fprintf(w, "  %s: %s\n", f.Resource, f.Message)
		}
	}
	fmt.Fprintln(w)
	if report.Passed() {
		fmt.Fprintln(w, "All manifest standards passed")
	} else {
		fmt.Fprintln(w, "Manifest standards FAILED")
	}
}
