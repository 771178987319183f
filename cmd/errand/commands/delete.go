package commands

import (
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete an entity",
	Long: `Delete an entity after confirmation.

The entity is removed locally only once the remote accepted the commit.
Deleting an id that no longer exists reports not_found.`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
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

	return outcomeError(a.Orchestrator.Delete(ctx, a.Session, id))
}
