package commands

import (
	"fmt"

	"github.com/dyluth/errand/internal/watch"
	"github.com/dyluth/errand/pkg/entity"
	"github.com/spf13/cobra"
)

var (
	watchOutput string
	watchAction string
	watchEntity string
	watchCount  int
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream commit events from Redis",
	Long: `Stream the commit events other errand processes publish to Redis.

Requires remote.mode: redis. Runs until interrupted, or until --count events
have been printed.

Examples:
  errand watch
  errand watch --output jsonl --action delete | jq .entity_id
  errand watch --entity 'P*' --count 1`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchOutput, "output", "o", "default", "Output format: default or jsonl")
	watchCmd.Flags().StringVar(&watchAction, "action", "", "Only show this action (create, update, delete)")
	watchCmd.Flags().StringVar(&watchEntity, "entity", "", "Only show entity ids matching this glob")
	watchCmd.Flags().IntVar(&watchCount, "count", 0, "Stop after this many events (0 = run until interrupted)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	p := newPrinter(cmd)

	format := watch.OutputFormat(watchOutput)
	if format != watch.OutputFormatDefault && format != watch.OutputFormatJSONL {
		return p.Error("invalid output format", fmt.Sprintf("Unknown format: %s", watchOutput), []string{"Valid formats: default, jsonl"})
	}

	a, err := loadApp(cmd, p)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.Redis == nil {
		return p.Error(
			"watch needs redis mode",
			"Commit events are only published when remote.mode is 'redis'.",
			[]string{"Set remote.mode: redis and remote.redis_url in errand.yml"},
		)
	}

	ctx, cancel := commandContext()
	defer cancel()

	opts := watch.Options{
		Format:   format,
		Action:   watchAction,
		EntityID: watchEntity,
		Limit:    watchCount,
		Ready: func() {
			fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s (Ctrl-C to stop)\n", entity.CommitEventsChannel(a.Redis.Namespace()))
		},
	}

	if err := watch.StreamCommits(ctx, a.Redis, opts, cmd.OutOrStdout(), cmd.ErrOrStderr()); err != nil {
		return p.Error("watch failed", err.Error(), []string{"Check that Redis is reachable at remote.redis_url"})
	}
	return nil
}
