package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/dyluth/errand/internal/app"
	"github.com/dyluth/errand/internal/catalog"
	"github.com/dyluth/errand/internal/config"
	"github.com/dyluth/errand/internal/logging"
	"github.com/dyluth/errand/internal/printer"
	"github.com/dyluth/errand/internal/resolver"
	"github.com/dyluth/errand/internal/usecase"
	"github.com/spf13/cobra"
)

// newPrinter binds a printer to the command's output streams
func newPrinter(cmd *cobra.Command) *printer.Printer {
	return printer.New(cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// loadApp loads the configuration and wires the app for one command invocation.
// The caller must Close the returned app.
func loadApp(cmd *cobra.Command, p *printer.Printer) (*app.App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, p.ErrorWithContext(
			"failed to load configuration",
			err.Error(),
			map[string]string{"Config": configPath},
			[]string{
				"Create a starter configuration:\n  errand init",
				"Point at another file:\n  errand --config path/to/errand.yml ...",
			},
		)
	}

	logger, err := logging.New(debugMode)
	if err != nil {
		return nil, err
	}

	opts := app.Options{
		Prompt:   printer.NewConfirmer(cmd.InOrStdin(), cmd.ErrOrStderr()),
		AutoYes:  autoYes,
		Notifier: p.Notifier(),
		Logger:   logger,
		Actor:    actorName,
	}
	if cmd.Flags().Changed("admin") {
		admin := adminFlag
		opts.Admin = &admin
	}

	a, err := app.New(cfg, opts)
	if err != nil {
		return nil, p.Error("failed to start errand", err.Error(), nil)
	}
	return a, nil
}

// resolveID expands a unique id prefix. Unknown ids pass through unchanged so
// the orchestrator reports them as not_found.
func resolveID(a *app.App, p *printer.Printer, input string) (string, error) {
	ids := make([]string, 0, a.Repository.Len())
	for _, e := range a.Repository.List() {
		ids = append(ids, e.ID)
	}

	id, err := resolver.ResolveEntityID(ids, input)
	if err == nil {
		return id, nil
	}

	var amb *resolver.AmbiguousError
	if errors.As(err, &amb) {
		return "", p.Error("ambiguous entity id", resolver.FormatAmbiguousError(amb), nil)
	}
	return input, nil
}

// outcomeError turns a failed result into a plain error for the exit status.
// The result itself has already been printed by the notifier.
func outcomeError(r usecase.Result) error {
	if r.OK() {
		return nil
	}
	return fmt.Errorf("%s", r.Outcome)
}

// listSource picks the repository, or the Redis mirror when asked for
func listSource(cmd *cobra.Command, a *app.App, p *printer.Printer, mirror bool) (catalog.Source, error) {
	if !mirror {
		return catalog.FromRepository(a.Repository), nil
	}
	if a.Redis == nil {
		return nil, p.Error(
			"no mirror in simulated mode",
			"--mirror reads the entities mirrored to Redis, but remote.mode is 'simulated'.",
			[]string{"Set remote.mode: redis in errand.yml"},
		)
	}
	return catalog.FromMirror(a.Redis, cmd.ErrOrStderr()), nil
}

// commandContext is cancelled on Ctrl-C, which ends an in-flight request as cancelled
func commandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}
