package commands

import (
	"github.com/dyluth/errand/internal/scaffold"
	"github.com/spf13/cobra"
)

var (
	forceInit bool
	initDir   string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter errand.yml",
	Long: `Create a starter project with default configuration and an example script.

Creates:
  • errand.yml - configuration with a few seed entities
  • scripts/delete-twice.yml - example scripted session for 'errand run'

Use --force to replace an existing errand.yml.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&forceInit, "force", false, "Replace an existing errand.yml")
	initCmd.Flags().StringVar(&initDir, "dir", ".", "Directory to initialize")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	p := newPrinter(cmd)

	if err := scaffold.Initialize(initDir, forceInit, cmd.OutOrStdout()); err != nil {
		return p.Error("initialization failed", err.Error(), nil)
	}

	scaffold.PrintSuccess(cmd.OutOrStdout())
	return nil
}

