package commands

import (
	"context"
	"fmt"

	"github.com/dyluth/errand/internal/catalog"
	"github.com/spf13/cobra"
)

var showMirror bool

var showCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Print one entity as JSON",
	Long: `Print one entity as pretty-printed JSON.

ID may be a unique prefix of at least 3 characters ("P00" is ambiguous
when both P001 and P002 exist).`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	showCmd.Flags().BoolVar(&showMirror, "mirror", false, "Read the Redis mirror instead of the local repository")
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
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

	src, err := listSource(cmd, a, p, showMirror)
	if err != nil {
		return err
	}

	if err := catalog.GetEntity(context.Background(), src, id, cmd.OutOrStdout()); err != nil {
		if catalog.IsNotFound(err) {
			return p.Error(
				"entity not found",
				fmt.Sprintf("No entity with ID '%s'.", args[0]),
				[]string{"List entities:\n  errand list"},
			)
		}
		return err
	}
	return nil
}
