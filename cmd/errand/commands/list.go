package commands

import (
	"context"

	"github.com/dyluth/errand/internal/catalog"
	"github.com/dyluth/errand/pkg/entity"
	"github.com/spf13/cobra"
)

var (
	listStatus   string
	listCategory string
	listOutput   string
	listMirror   bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List entities",
	Long: `List the entities seeded from errand.yml.

Output Formats:
  default - Human-readable table
  jsonl   - Line-delimited JSON, one entity per line

Filters:
  --status   - Exact status (pending, active, rejected, archived)
  --category - Glob pattern on category ("refreshment-*")

With --mirror (redis mode only) the entities mirrored to Redis by earlier
commits are listed instead.

Examples:
  errand list
  errand list --status pending
  errand list --category 'refreshment-*' --output jsonl | jq .name`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVar(&listStatus, "status", "", "Filter by status")
	listCmd.Flags().StringVar(&listCategory, "category", "", "Filter by category (glob pattern)")
	listCmd.Flags().StringVarP(&listOutput, "output", "o", "default", "Output format: default or jsonl")
	listCmd.Flags().BoolVar(&listMirror, "mirror", false, "List the Redis mirror instead of the local repository")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	p := newPrinter(cmd)

	format, err := catalog.ParseOutputFormat(listOutput)
	if err != nil {
		return p.Error("invalid output format", err.Error(), []string{"Valid formats: default, jsonl"})
	}

	filters := &catalog.FilterCriteria{CategoryGlob: listCategory}
	if listStatus != "" {
		status, err := entity.ParseStatus(listStatus)
		if err != nil {
			return p.Error("invalid status filter", err.Error(), []string{"Valid statuses: pending, active, rejected, archived"})
		}
		filters.Status = status
	}

	a, err := loadApp(cmd, p)
	if err != nil {
		return err
	}
	defer a.Close()

	src, err := listSource(cmd, a, p, listMirror)
	if err != nil {
		return err
	}

	return catalog.ListEntities(context.Background(), src, format, filters, cmd.OutOrStdout())
}
