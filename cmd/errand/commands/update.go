package commands

import (
	"github.com/dyluth/errand/pkg/entity"
	"github.com/spf13/cobra"
)

var (
	updateName        string
	updateCategory    string
	updateDescription string
	updateLocation    string
	updateStatus      string
)

var updateCmd = &cobra.Command{
	Use:   "update ID",
	Short: "Change fields of an entity",
	Long: `Change one or more fields of an existing entity.

Only the flags given are changed; pass an empty value (--location "") to clear
an optional field. ID may be a unique prefix of at least 3 characters.

Examples:
  errand update P001 --location "Herrengasse 14, Vienna"
  errand update P002 --name "Harbour Books & Maps" --category shop`,
	Args: cobra.ExactArgs(1),
	RunE: runUpdate,
}

func init() {
	updateCmd.Flags().StringVar(&updateName, "name", "", "New display name")
	updateCmd.Flags().StringVar(&updateCategory, "category", "", "New category")
	updateCmd.Flags().StringVar(&updateDescription, "description", "", "New description")
	updateCmd.Flags().StringVar(&updateLocation, "location", "", "New location")
	updateCmd.Flags().StringVar(&updateStatus, "status", "", "New status")
	rootCmd.AddCommand(updateCmd)
}

// patchFromFlags includes exactly the flags the user set
func patchFromFlags(cmd *cobra.Command) entity.Patch {
	var patch entity.Patch
	flags := cmd.Flags()

	if flags.Changed("name") {
		patch.Name = entity.StringPtr(updateName)
	}
	if flags.Changed("category") {
		patch.Category = entity.StringPtr(updateCategory)
	}
	if flags.Changed("description") {
		patch.Description = entity.StringPtr(updateDescription)
	}
	if flags.Changed("location") {
		patch.Location = entity.StringPtr(updateLocation)
	}
	if flags.Changed("status") {
		status := entity.Status(updateStatus)
		patch.Status = &status
	}
	return patch
}

func runUpdate(cmd *cobra.Command, args []string) error {
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

	return outcomeError(a.Orchestrator.Update(ctx, a.Session, id, patchFromFlags(cmd)))
}
