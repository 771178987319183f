package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	version string
	commit  string
	date    string
)

// Global flags
var (
	configPath string
	autoYes    bool
	debugMode  bool
	actorName  string
	adminFlag  bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "errand",
	Short: "errand - confirm-and-commit CRUD over a flaky remote",
	Long: `errand manages a small catalogue of entities (places, registrations, news
items) held in memory and seeded from errand.yml.

Every mutation runs the same five steps: load the entity, validate the input,
ask for confirmation, commit to the remote, then report one of
success, not_found, validation_error, cancelled or connection_interrupted.

The remote is either a simulated link that drops and recovers at random, or
Redis, which mirrors every commit and publishes it for 'errand watch'.`,
	Version: version,
	// Prevent silent success when unknown flags are passed to root command
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
	FParseErrWhitelist: cobra.FParseErrWhitelist{},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	// We print formatted colored errors directly in the printer package
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	return rootCmd.Execute()
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "errand.yml", "Path to the configuration file")
	rootCmd.PersistentFlags().BoolVarP(&autoYes, "yes", "y", false, "Confirm every mutation without prompting")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&actorName, "actor", "", "Actor recorded on commits (overrides session.actor)")
	rootCmd.PersistentFlags().BoolVar(&adminFlag, "admin", false, "Run as an admin session (overrides session.admin)")
}
