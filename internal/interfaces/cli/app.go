// Package cli implements posconsole, the terminal front end of the retail
// management screens.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http/cookiejar"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/erp/posconsole/internal/application/collection"
	"github.com/erp/posconsole/internal/infrastructure/apiclient"
	"github.com/erp/posconsole/internal/infrastructure/auth"
	"github.com/erp/posconsole/internal/infrastructure/config"
	"github.com/erp/posconsole/internal/infrastructure/i18n"
	"github.com/erp/posconsole/internal/infrastructure/logger"
	"github.com/erp/posconsole/internal/infrastructure/metrics"
	"go.uber.org/zap"
)

// Exit codes
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// errUsage marks command line mistakes
var errUsage = errors.New("usage")

func usageError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errUsage, fmt.Sprintf(format, args...))
}

// Options are the process-level dependencies of an App
type Options struct {
	Stdout io.Writer
	Stderr io.Writer
	// Metrics receives API and view measurements; nil disables them
	Metrics *metrics.Exporter
}

// App runs console commands against the REST backend
type App struct {
	cfg     *config.Config
	log     *zap.Logger
	loc     *i18n.Localizer
	stdout  io.Writer
	stderr  io.Writer
	client  *apiclient.Client
	tokens  *auth.TokenStore
	session *auth.Session
	metrics *metrics.Exporter
}

// New wires the API client, the token store and the session from cfg
func New(cfg *config.Config, log *zap.Logger, opts Options) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	apiURL, err := url.Parse(cfg.API.APIRoot())
	if err != nil {
		return nil, fmt.Errorf("invalid api.base_url: %w", err)
	}
	tokens, err := auth.NewTokenStore(auth.StoreConfig{
		TokenFile:  cfg.Auth.TokenFile,
		CookieFile: cfg.Auth.CookieFile,
		Jar:        jar,
		APIURL:     apiURL,
		Logger:     log,
	})
	if err != nil {
		return nil, err
	}

	retry := apiclient.DefaultRetryConfig()
	retry.MaxRetries = cfg.API.MaxRetries
	if cfg.API.RetryDelay > 0 {
		retry.RetryDelay = cfg.API.RetryDelay
	}
	clientOpts := []apiclient.Option{
		apiclient.WithTokenSource(tokens),
		apiclient.WithLogger(log),
		apiclient.WithCookieJar(jar),
		apiclient.WithRetry(retry),
	}
	if opts.Metrics != nil {
		clientOpts = append(clientOpts, apiclient.WithObserver(opts.Metrics))
	}
	client, err := apiclient.New(apiclient.Config{
		BaseURL:        cfg.API.BaseURL,
		Prefix:         cfg.API.Prefix,
		Timeout:        cfg.API.Timeout,
		RateLimitQPS:   cfg.API.RateLimitQPS,
		RateLimitBurst: cfg.API.RateLimitBurst,
	}, clientOpts...)
	if err != nil {
		return nil, err
	}

	return &App{
		cfg:     cfg,
		log:     log,
		loc:     i18n.New(cfg.App.Locale),
		stdout:  opts.Stdout,
		stderr:  opts.Stderr,
		client:  client,
		tokens:  tokens,
		session: auth.NewSession(client, tokens, log),
		metrics: opts.Metrics,
	}, nil
}

func (a *App) viewOptions(pageSize int) []collection.Option {
	if pageSize <= 0 {
		pageSize = a.cfg.View.PageSize
	}
	opts := []collection.Option{
		collection.WithPageSize(pageSize),
		collection.WithDebounce(a.cfg.View.Debounce),
		collection.WithLogger(a.log),
		collection.WithNotifier(stderrNotifier(a.stderr)),
		collection.WithLocalizer(a.loc),
	}
	if a.metrics != nil {
		opts = append(opts, collection.WithMetrics(a.metrics))
	}
	return opts
}

func (a *App) notify(level collection.Level, message string) {
	stderrNotifier(a.stderr).Notify(collection.Notification{
		Level:   level,
		Message: message,
		At:      time.Now(),
	})
}

type command struct {
	name    string
	usage   string
	summary string
	run     func(ctx context.Context, a *App, args []string) error
}

func commands() []command {
	return []command{
		{"login", "login -username NAME [-password PASS]", "Sign in and store the token", runLogin},
		{"logout", "logout", "Sign out and forget the token", runLogout},
		{"resources", "resources", "List the available resources", runResources},
		{"list", "list RESOURCE [-search T] [-status S] [-filter k=v]... [-page N] [-limit N]", "Show one page of a resource", runList},
		{"show-stats", "show-stats RESOURCE", "Show per-status counts", runShowStats},
		{"create", "create RESOURCE -data JSON", "Create a record", runCreate},
		{"update", "update RESOURCE ID -data JSON", "Update fields of a record", runUpdate},
		{"delete", "delete RESOURCE ID", "Delete a record", runDelete},
		{"export", "export RESOURCE [-out PATH] [-force] [filters]", "Download the CSV export", runExport},
	}
}

// Run executes one command line (without the program name)
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.printUsage()
		return usageError("no command given")
	}
	name := args[0]
	if name == "help" || name == "-h" || name == "--help" {
		a.printUsage()
		return nil
	}
	for _, cmd := range commands() {
		if cmd.name == name {
			log := a.log.With(zap.String("command", name))
			log.Debug("running command", zap.Strings("args", args[1:]))
			return cmd.run(logger.WithContext(ctx, log), a, args[1:])
		}
	}
	a.printUsage()
	return usageError("unknown command %q", name)
}

// scoped tags the command logger carried by ctx with the resource name
func (a *App) scoped(ctx context.Context, s screen) context.Context {
	ctx, _ = logger.WithResource(ctx, logger.FromContextOr(ctx, a.log), s.spec().Name)
	return ctx
}

func (a *App) printUsage() {
	fmt.Fprintf(a.stderr, "posconsole - retail management console\n\nUSAGE:\n    posconsole [-config FILE] [-metrics-addr ADDR] [-locale vi|en] [-v] COMMAND [ARGS]\n\nCOMMANDS:\n")
	for _, cmd := range commands() {
		fmt.Fprintf(a.stderr, "    %-12s %s\n        %s\n", cmd.name, cmd.summary, cmd.usage)
	}
}

// report prints err unless the view already showed it, and returns the exit code
func (a *App) report(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, errReported):
		return ExitError
	case errors.Is(err, errUsage):
		fmt.Fprintf(a.stderr, "[ERROR] %v\n", err)
		return ExitUsage
	default:
		fmt.Fprintf(a.stderr, "[ERROR] %s\n", collection.Describe(a.loc, err, i18n.KeyGeneric))
		a.log.Debug("command failed", zap.Error(err))
		return ExitError
	}
}

// Main parses the global flags, loads the configuration and runs the command.
// It returns the process exit code.
func Main(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("posconsole", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "Path to config.toml")
	metricsAddr := fs.String("metrics-addr", "", "Expose Prometheus metrics on this address (e.g. 127.0.0.1:9464)")
	locale := fs.String("locale", "", "Message language: vi or en")
	verbose := fs.Bool("v", false, "Enable debug logging")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitOK
		}
		return ExitUsage
	}

	cfg, err := config.LoadFrom(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "[ERROR] %v\n", err)
		return ExitError
	}
	if *locale != "" {
		cfg.App.Locale = *locale
	}
	if *metricsAddr != "" {
		cfg.Metrics.Addr = *metricsAddr
	}
	logCfg := &logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output}
	if *verbose {
		logCfg.Level = "debug"
	}
	log, err := logger.New(logCfg)
	if err != nil {
		fmt.Fprintf(stderr, "[ERROR] %v\n", err)
		return ExitError
	}
	defer func() { _ = logger.Sync(log) }()

	var exporter *metrics.Exporter
	if cfg.Metrics.Addr != "" {
		exporter = metrics.NewExporter(metrics.ExporterConfig{Addr: cfg.Metrics.Addr})
		if err := exporter.Start(); err != nil {
			log.Warn("metrics exporter disabled", zap.Error(err))
			exporter = nil
		} else {
			log.Info("metrics exporter listening", zap.String("url", exporter.Address()))
			defer func() {
				stopCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				_ = exporter.Stop(stopCtx)
			}()
		}
	}

	app, err := New(cfg, logger.Named(log, "console"), Options{Stdout: stdout, Stderr: stderr, Metrics: exporter})
	if err != nil {
		fmt.Fprintf(stderr, "[ERROR] %v\n", err)
		return ExitError
	}
	return app.report(app.Run(ctx, fs.Args()))
}

// parseInterspersed parses flags that may appear before, between or after
// positional arguments and returns the positionals
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, usageError("%v", err)
		}
		rest := fs.Args()
		if len(rest) == 0 {
			return positional, nil
		}
		positional = append(positional, rest[0])
		args = rest[1:]
	}
}

// keyValues collects repeated -filter key=value flags
type keyValues map[string]string

func (kv keyValues) String() string {
	parts := make([]string, 0, len(kv))
	for k, v := range kv {
		parts = append(parts, k+"="+v)
	}
	return strings.Join(parts, ",")
}

func (kv keyValues) Set(s string) error {
	k, v, ok := strings.Cut(s, "=")
	if !ok || strings.TrimSpace(k) == "" {
		return fmt.Errorf("expected key=value, got %q", s)
	}
	kv[strings.TrimSpace(k)] = strings.TrimSpace(v)
	return nil
}
