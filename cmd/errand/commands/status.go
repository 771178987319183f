package commands

import (
	"fmt"

	"github.com/dyluth/errand/internal/scenario"
	"github.com/spf13/cobra"
)

// Status transitions share one implementation; the step names double as command names.
func init() {
	for _, action := range []string{scenario.StepApprove, scenario.StepReject, scenario.StepArchive} {
		status := scenario.StatusFor[action]
		rootCmd.AddCommand(&cobra.Command{
			Use:   action + " ID",
			Short: fmt.Sprintf("Set an entity's status to %s", status),
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				p := newPrinter(cmd)

				a, err := loadApp(cmd, p)
				if err != nil {
					return err
				}
				defer a.Close()

				id, err := resolveID(a, p, args[0])
				if err != nil {
					return err
				}

				ctx, cancel := commandContext()
				defer cancel()

				return outcomeError(a.Orchestrator.SetStatus(ctx, a.Session, id, status))
			},
		})
	}
}
