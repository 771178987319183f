// Package app wires configuration into a ready-to-use repository, remote facade
// and orchestrator. One App serves one CLI process.
package app

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/dyluth/errand/internal/config"
	"github.com/dyluth/errand/internal/remote"
	"github.com/dyluth/errand/internal/repository"
	"github.com/dyluth/errand/internal/usecase"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Options override parts of the configuration for one process.
type Options struct {
	Prompt    usecase.Confirmer // Used when the confirm mode is "prompt"
	AutoYes   bool              // Forces the "always" confirm mode
	Notifier  usecase.Notifier
	Logger    *zap.Logger
	Actor     string // Overrides session.actor when not empty
	Admin     *bool  // Overrides session.admin when not nil
	Registry  *prometheus.Registry
	RedisOpts *redis.Options // Overrides remote.redis_url, used by tests
}

// App holds the wired components.
type App struct {
	Config       *config.Config
	Repository   *repository.Repository
	Facade       remote.Facade
	Link         *remote.Link  // nil unless remote.mode is simulated
	Redis        *remote.Redis // nil unless remote.mode is redis
	Orchestrator *usecase.Orchestrator
	Session      usecase.Session
	Registry     *prometheus.Registry
	Logger       *zap.Logger
}

// New builds an App from validated configuration.
func New(cfg *config.Config, opts Options) (*App, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	repo, err := repository.New(cfg.Seed...)
	if err != nil {
		return nil, fmt.Errorf("failed to seed repository: %w", err)
	}

	a := &App{
		Config:     cfg,
		Repository: repo,
		Session:    usecase.Session{Actor: cfg.Session.Actor, Admin: cfg.Session.Admin},
		Registry:   opts.Registry,
		Logger:     logger,
	}
	if opts.Actor != "" {
		a.Session.Actor = opts.Actor
	}
	if opts.Admin != nil {
		a.Session.Admin = *opts.Admin
	}
	if a.Registry == nil {
		a.Registry = prometheus.NewRegistry()
	}

	if err := a.connectRemote(cfg.Remote, opts.RedisOpts); err != nil {
		return nil, err
	}

	confirmMode := cfg.Orchestrator.Confirm
	if opts.AutoYes {
		confirmMode = config.ConfirmAlways
	}
	confirmer, err := Confirmer(confirmMode, opts.Prompt)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	a.Orchestrator = usecase.New(repo, a.Facade,
		usecase.WithConfirmer(confirmer),
		usecase.WithNotifier(opts.Notifier),
		usecase.WithLogger(logger.Named("usecase")),
		usecase.WithMetrics(usecase.NewMetrics(a.Registry)),
		usecase.WithRequireAdmin(cfg.Orchestrator.RequireAdmin),
	)

	logger.Debug("app_ready",
		zap.String("remote_mode", cfg.Remote.Mode),
		zap.Int("seeded", repo.Len()),
		zap.String("actor", a.Session.Actor),
		zap.Bool("admin", a.Session.Admin))

	return a, nil
}

func (a *App) connectRemote(rc *config.RemoteConfig, redisOpts *redis.Options) error {
	switch rc.Mode {
	case config.ModeRedis:
		if redisOpts == nil {
			parsed, err := redis.ParseURL(rc.RedisURL)
			if err != nil {
				return fmt.Errorf("failed to parse remote.redis_url: %w", err)
			}
			redisOpts = parsed
		}

		r, err := remote.NewRedis(redisOpts, rc.Namespace)
		if err != nil {
			return fmt.Errorf("failed to create Redis remote: %w", err)
		}
		a.Redis = r
		a.Facade = r

	default:
		link, err := remote.NewLink(remote.LinkConfig{
			FailureProbability:   *rc.FailureProbability,
			ReconnectProbability: *rc.ReconnectProbability,
			Latency:              rc.Latency,
			Seed:                 rc.RandSeed,
			InitialState:         remote.State(rc.InitialState),
			Logger:               a.Logger.Named("link"),
		})
		if err != nil {
			return fmt.Errorf("failed to create simulated remote: %w", err)
		}
		a.Link = link
		a.Facade = link
	}
	return nil
}

// Confirmer resolves a confirm mode to a gate. prompt is required for "prompt".
func Confirmer(mode string, prompt usecase.Confirmer) (usecase.Confirmer, error) {
	switch mode {
	case config.ConfirmAlways:
		return usecase.AlwaysConfirm, nil
	case config.ConfirmNever:
		return usecase.NeverConfirm, nil
	case config.ConfirmPrompt, "":
		if prompt == nil {
			return nil, fmt.Errorf("confirm mode 'prompt' needs an interactive terminal (use --yes to auto-confirm)")
		}
		return prompt, nil
	default:
		return nil, fmt.Errorf("unknown confirm mode: %s", mode)
	}
}

// Close releases the Redis connection, if any.
func (a *App) Close() error {
	if a.Redis != nil {
		return a.Redis.Close()
	}
	return nil
}

// WriteMetrics writes every non-zero outcome counter as "name{labels} value" lines, sorted.
func (a *App) WriteMetrics(w io.Writer) error {
	families, err := a.Registry.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}

	var lines []string
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			if m.GetCounter() == nil {
				continue
			}
			labels := make([]string, 0, len(m.GetLabel()))
			for _, lp := range m.GetLabel() {
				labels = append(labels, fmt.Sprintf("%s=%q", lp.GetName(), lp.GetValue()))
			}
			lines = append(lines, fmt.Sprintf("%s{%s} %g", mf.GetName(), strings.Join(labels, ","), m.GetCounter().GetValue()))
		}
	}
	sort.Strings(lines)

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
