package commands

import (
	"github.com/dyluth/errand/pkg/entity"
	"github.com/spf13/cobra"
)

var (
	createID          string
	createName        string
	createCategory    string
	createDescription string
	createLocation    string
	createStatus      string
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an entity",
	Long: `Create a new entity and commit it to the remote.

Without --id a UUID is generated. The status defaults to active.

Examples:
  errand create --id P003 --name "Night Market" --category market
  errand create --name "Lost & Found desk" --status pending --yes`,
	Args: cobra.NoArgs,
	RunE: runCreate,
}

func init() {
	createCmd.Flags().StringVar(&createID, "id", "", "Entity id (generated when omitted)")
	createCmd.Flags().StringVar(&createName, "name", "", "Display name (required)")
	createCmd.Flags().StringVar(&createCategory, "category", "", "Category")
	createCmd.Flags().StringVar(&createDescription, "description", "", "Free-text description")
	createCmd.Flags().StringVar(&createLocation, "location", "", "Location or address")
	createCmd.Flags().StringVar(&createStatus, "status", "", "Status: pending, active, rejected or archived")
	rootCmd.AddCommand(createCmd)
}

func runCreate(cmd *cobra.Command, args []string) error {
	p := newPrinter(cmd)

	a, err := loadApp(cmd, p)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := commandContext()
	defer cancel()

	res := a.Orchestrator.Create(ctx, a.Session, entity.Entity{
		ID:          createID,
		Name:        createName,
		Category:    createCategory,
		Description: createDescription,
		Location:    createLocation,
		Status:      entity.Status(createStatus),
	})
	return outcomeError(res)
}
