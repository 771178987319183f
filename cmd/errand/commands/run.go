package commands

import (
	"fmt"

	"github.com/dyluth/errand/internal/scenario"
	"github.com/spf13/cobra"
)

var runMetrics bool

var runCmd = &cobra.Command{
	Use:   "run SCRIPT.yml",
	Short: "Run a scripted sequence of requests",
	Long: `Run every step of a script against one repository, so changes made by one
step are visible to the next.

Script format:
  steps:
    - action: delete        # create|update|delete|view|approve|reject|archive
      id: P001
      fields: {name: "..."} # create/update only
      expect: success       # optional outcome assertion

Every step runs even if an earlier one fails. The command exits non-zero if
any step's outcome differs from its expect.`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().BoolVar(&runMetrics, "metrics", false, "Print outcome counters after the run")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	p := newPrinter(cmd)

	script, err := scenario.Load(args[0])
	if err != nil {
		return p.ErrorWithContext("invalid script", err.Error(), map[string]string{"Script": args[0]}, nil)
	}

	a, err := loadApp(cmd, p)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := commandContext()
	defer cancel()

	report := scenario.Run(ctx, a.Orchestrator, a.Session, script, func(sr scenario.StepResult) {
		if !sr.Matched() {
			p.Warning("step %d: expected %s, got %s\n", sr.Index, sr.Step.Expect, sr.Result.Outcome)
		}
	})

	if runMetrics {
		p.Println()
		if err := a.WriteMetrics(cmd.OutOrStdout()); err != nil {
			return err
		}
	}

	mismatches := report.Mismatches()
	if len(mismatches) > 0 {
		return p.Error(
			"script expectations failed",
			fmt.Sprintf("%d of %d steps did not produce the expected outcome.", len(mismatches), len(report.Results)),
			nil,
		)
	}
	if len(report.Results) < len(script.Steps) {
		return p.Error("script interrupted", fmt.Sprintf("Only %d of %d steps ran.", len(report.Results), len(script.Steps)), nil)
	}

	p.Success("%d steps completed\n", len(report.Results))
	return nil
}
