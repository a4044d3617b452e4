// Package cli implements the hitplot command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/phanxgames/hitplot"
	"github.com/phanxgames/hitplot/internal/config"
	"github.com/phanxgames/hitplot/internal/logging"
	"github.com/phanxgames/hitplot/metrics"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
)

// ErrNoShapes is returned when neither the config nor --sample provides
// shapes.
var ErrNoShapes = errors.New("no shapes configured; add a shapes section or pass --sample")

type appContextKey struct{}

// RootOptions holds global CLI flags.
type RootOptions struct {
	ConfigPath  string
	LogLevel    string
	MetricsAddr string
	Sample      int
}

// appContext carries initialized dependencies through the command tree.
type appContext struct {
	Config  *config.Config
	Logger  *zap.Logger
	Metrics *metrics.Collector
	Shapes  []hitplot.Shape
}

// NewRootCommand creates the root command with its global flags and
// subcommands.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:     "hitplot",
		Short:   "Inspect and replay pointer interaction on ellipse plots",
		Version: fmt.Sprintf("%s (commit: %s)", Version, GitCommit),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return persistentPreRun(cmd, opts)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app, ok := fromContext(cmd.Context()); ok {
				_ = app.Logger.Sync()
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (default: HITPLOT_* environment only)")
	pf.StringVar(&opts.LogLevel, "log-level", "", "log level override (debug, info, warn, error)")
	pf.StringVar(&opts.MetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	pf.IntVar(&opts.Sample, "sample", 0, "generate this many random shapes instead of the configured ones")

	cmd.AddCommand(
		newScalesCmd(),
		newCellsCmd(),
		newReplayCmd(),
		newInspectCmd(),
	)
	return cmd
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

func persistentPreRun(cmd *cobra.Command, opts *RootOptions) error {
	cfg, err := initConfig(opts)
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("logger initialization failed: %w", err)
	}

	collector, err := metrics.New(cfg.MetricsConfig())
	if err != nil {
		return fmt.Errorf("metrics initialization failed: %w", err)
	}

	shapes := cfg.ToShapes()
	if opts.Sample > 0 {
		shapes = sampleShapes(opts.Sample, cfg.Chart.Seed)
	}

	app := &appContext{
		Config:  cfg,
		Logger:  logger,
		Metrics: collector,
		Shapes:  shapes,
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, appContextKey{}, app))
	return nil
}

func initConfig(opts *RootOptions) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.ConfigPath != "" {
		cfg, err = config.Load(opts.ConfigPath)
	} else {
		cfg, err = config.LoadFromEnv()
	}
	if err != nil {
		return nil, err
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	if opts.MetricsAddr != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Addr = opts.MetricsAddr
	}
	return cfg, cfg.Validate()
}

func fromContext(ctx context.Context) (*appContext, bool) {
	if ctx == nil {
		return nil, false
	}
	app, ok := ctx.Value(appContextKey{}).(*appContext)
	return app, ok
}

func mustApp(cmd *cobra.Command) *appContext {
	app, ok := fromContext(cmd.Context())
	if !ok {
		panic("cli: command run without persistentPreRun")
	}
	return app
}

// newChart builds a chart wired to the app's logger and metrics. A non-nil
// clock replaces the system clock.
func (a *appContext) newChart(clock hitplot.Clock) *hitplot.Chart {
	opts := a.Config.ToOptions()
	if clock != nil {
		opts.Clock = clock
	}
	c := hitplot.NewChart(opts)
	c.SetLogger(a.Logger.Named("chart"))
	c.SetDebugMode(a.Config.Log.Level == "debug")
	c.SetMetrics(a.Metrics)
	return c
}

// sampleShapes returns n shapes scattered over [0, 100) on both axes.
func sampleShapes(n int, seed uint64) []hitplot.Shape {
	r := rand.New(rand.NewPCG(seed, seed+1))
	kinds := hitplot.ShapeTriangleDown + 1
	shapes := make([]hitplot.Shape, n)
	for i := range shapes {
		shapes[i] = hitplot.Shape{
			X:     hitplot.Axis{Center: r.Float64() * 100, Radius: 0.5 + r.Float64()*2},
			Y:     hitplot.Axis{Center: r.Float64() * 100, Radius: 0.5 + r.Float64()*2},
			Kind:  hitplot.ShapeKind(r.IntN(int(kinds))),
			Label: fmt.Sprintf("s%d", i),
		}
	}
	return shapes
}
