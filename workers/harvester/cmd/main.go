package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexflint/go-arg"
	"github.com/fatih/color"

	"github.com/vesla0x1/codegrabber/shared/config"
	"github.com/vesla0x1/codegrabber/shared/observability"
	"github.com/vesla0x1/codegrabber/shared/storage"
	"github.com/vesla0x1/codegrabber/shared/utils"
	"github.com/vesla0x1/codegrabber/workers/harvester/internal/adapters/http"
	"github.com/vesla0x1/codegrabber/workers/harvester/internal/domain"
	"github.com/vesla0x1/codegrabber/workers/harvester/internal/service"
	"github.com/vesla0x1/codegrabber/workers/harvester/internal/usecase"
)

// Args are the command line flags. Empty values leave the environment and
// defaults in place.
type Args struct {
	URL         string `arg:"-u,--url" help:"base URL of the WordPress site" placeholder:"URL"`
	Cookie      string `arg:"-c,--cookie" help:"session cookie string, e.g. \"name1=v1; name2=v2\"" placeholder:"COOKIE"`
	Theme       bool   `arg:"-t,--theme" help:"harvest the active theme"`
	Plugin      bool   `arg:"-p,--plugin" help:"harvest every plugin"`
	Extension   string `arg:"-e,--extension" help:"comma-separated extensions to harvest besides php, js and html" placeholder:"EXT"`
	OutputDir   string `arg:"-o,--output-dir" help:"directory receiving one folder per container" placeholder:"DIR"`
	Workers     int    `arg:"-w,--workers" help:"number of files fetched at once (default 8)" placeholder:"N"`
	LogLevel    string `arg:"--log-level" help:"debug, info, warn or error" placeholder:"LEVEL"`
	LogFormat   string `arg:"--log-format" help:"console or json" placeholder:"FORMAT"`
	MetricsFile string `arg:"--metrics-file" help:"write Prometheus metrics to this file when the run ends" placeholder:"FILE"`
	S3Bucket    string `arg:"--s3-bucket" help:"mirror harvested files to this S3 bucket" placeholder:"BUCKET"`
}

// Description is shown at the top of the help text
func (Args) Description() string {
	return "codegrabber copies theme and plugin sources out of the WordPress file editors."
}

func main() {
	var args Args
	arg.MustParse(&args)

	os.Exit(run(&args))
}

// run returns 1 when the configuration is unusable or the run was
// interrupted, 0 otherwise
func run(args *Args) int {
	cfg, err := loadConfiguration(args)
	if err != nil {
		color.New(color.FgRed, color.Bold).Fprintf(os.Stderr, "[-] %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	obs := initializeObservability(cfg)
	defer obs.Close()

	app, err := buildApplication(ctx, cfg, obs)
	if err != nil {
		obs.Logger("main").Error(ctx, "failed to start", err, nil)
		return 1
	}

	return startApplication(ctx, cfg, obs, app)
}

// loadConfiguration merges .env files, the environment and the flags
func loadConfiguration(args *Args) (*config.Config, error) {
	cfgProvider := config.NewProvider("")
	if err := cfgProvider.Load(flagOverrides(args)...); err != nil {
		return nil, err
	}
	return cfgProvider.Get()
}

// flagOverrides turns the flags that were given into config overrides
func flagOverrides(args *Args) []config.Override {
	var overrides []config.Override
	set := func(o config.Override) { overrides = append(overrides, o) }

	if args.URL != "" {
		set(func(c *config.Config) { c.Target.BaseURL = args.URL })
	}
	if args.Cookie != "" {
		set(func(c *config.Config) { c.Target.Cookie = args.Cookie })
	}
	set(func(c *config.Config) {
		c.Target.Theme = args.Theme
		c.Target.Plugin = args.Plugin
	})
	if args.Extension != "" {
		set(func(c *config.Config) { c.Harvest.Extensions = utils.SplitList(args.Extension) })
	}
	if args.OutputDir != "" {
		set(func(c *config.Config) { c.Harvest.OutputDir = args.OutputDir })
	}
	if args.Workers != 0 {
		set(func(c *config.Config) { c.Harvest.Concurrency = args.Workers })
	}
	if args.LogLevel != "" {
		set(func(c *config.Config) { c.LogLevel = args.LogLevel })
	}
	if args.LogFormat != "" {
		set(func(c *config.Config) { c.LogFormat = args.LogFormat })
	}
	if args.MetricsFile != "" {
		set(func(c *config.Config) { c.Metrics.File = args.MetricsFile })
	}
	if args.S3Bucket != "" {
		set(func(c *config.Config) { c.Export.S3Bucket = args.S3Bucket })
	}

	return overrides
}

// initializeObservability sets up logging and metrics for the run
func initializeObservability(cfg *config.Config) *observability.DefaultProvider {
	return observability.NewProvider(&observability.Config{
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
		LogLevel:    cfg.LogLevel,
		LogFormat:   cfg.LogFormat,
		LogOutput:   os.Stderr,
		Colorize:    !color.NoColor,
	})
}

// buildApplication assembles the pipeline stages
func buildApplication(ctx context.Context, cfg *config.Config, obs observability.Provider) (*usecase.Harvester, error) {
	workspace, err := storage.NewWorkspace(cfg, obs.Logger("storage.fs"), obs.Metrics("storage"))
	if err != nil {
		return nil, fmt.Errorf("failed to prepare output directory: %w", err)
	}

	sink, err := storage.NewExporter(ctx, cfg, obs.Logger("storage.s3"), obs.Metrics("storage"))
	if err != nil {
		return nil, err
	}

	creds := domain.ParseCookieString(cfg.Target.Cookie)
	client := http.NewClient(cfg.HTTP, creds, obs.Logger("client.http"), obs.Metrics("http"))

	extractor := service.NewManifestExtractor(service.ExtractorOptions{
		AdditionalExtensions: cfg.Harvest.Extensions,
		FallbackContainer:    cfg.Harvest.FallbackContainer,
		PluginContainer:      cfg.Harvest.PluginContainer,
		KeepExtensionless:    cfg.Harvest.KeepExtensionless,
	}, obs.Logger("extractor"), obs.Metrics("extractor"))

	layout := service.NewLayoutBuilder(workspace, obs.Logger("layout"), obs.Metrics("layout"))

	enumerator := service.NewEnumerator(client, cfg.Harvest.PluginSelectID, obs.Logger("enumerator"), obs.Metrics("enumerator"))

	retrieval := service.NewRetrievalEngine(client, workspace, service.RetrievalOptions{
		Concurrency:     cfg.Harvest.Concurrency,
		PayloadSelector: cfg.Harvest.PayloadSelector,
	}, obs.Logger("retrieval"), obs.Metrics("retrieval"))

	return usecase.NewHarvester(
		client,
		extractor,
		layout,
		enumerator,
		retrieval,
		workspace,
		sink,
		usecase.Options{
			ThemeEditorURL:  cfg.Target.ThemeEditorURL(),
			PluginEditorURL: cfg.Target.PluginEditorURL(),
			RunTheme:        cfg.Target.RunTheme(),
			RunPlugin:       cfg.Target.RunPlugin(),
			PluginContainer: cfg.Harvest.PluginContainer,
			ExportPrefix:    cfg.Export.S3Prefix,
		},
		obs.Logger("harvester"),
		obs.Metrics("harvester"),
	), nil
}

// startApplication runs the harvest and flushes metrics. It returns the
// process exit code.
func startApplication(ctx context.Context, cfg *config.Config, obs observability.Provider, app *usecase.Harvester) int {
	logger := obs.Logger("main")
	logger.Info(ctx, "starting codegrabber", observability.Fields{
		"version":    cfg.Version,
		"target":     cfg.Target.BaseURL,
		"output_dir": cfg.Harvest.OutputDir,
		"workers":    cfg.Harvest.Concurrency,
	})

	code := 0
	if err := app.Run(ctx); err != nil {
		logger.Error(ctx, "harvest interrupted", err, nil)
		code = 1
	}

	if cfg.Metrics.File != "" {
		if err := obs.WriteMetrics(cfg.Metrics.File); err != nil {
			logger.Error(ctx, "failed to write metrics", err, observability.Fields{"path": cfg.Metrics.File})
		}
	}

	return code
}
