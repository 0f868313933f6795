// Package cmd implements the CLI command structure for rxtodo.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nibzard/rxtodo-go/internal/config"
	"github.com/nibzard/rxtodo-go/internal/kvstore"
	"github.com/nibzard/rxtodo-go/internal/logging"
	"github.com/nibzard/rxtodo-go/internal/metrics"
	"github.com/nibzard/rxtodo-go/internal/storage"
	"github.com/nibzard/rxtodo-go/internal/task"
	"github.com/nibzard/rxtodo-go/internal/ui"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Run executes the rxtodo CLI.
func Run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("rxtodo", flag.ContinueOnError)
	fs.Usage = func() {
		printUsage(fs, os.Stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	cws, err := config.LoadWithSources(fs, args)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg := cws.Config
	if *help {
		printUsage(fs, os.Stdout)
		return nil
	}
	if *showVersion {
		return versionCommand()
	}

	subcommand := "tui"
	remainingArgs := fs.Args()
	if len(remainingArgs) > 0 {
		subcommand = remainingArgs[0]
		remainingArgs = remainingArgs[1:]
	}

	switch subcommand {
	case "tui":
		return tuiCommand(ctx, cfg, remainingArgs)
	case "ls", "list":
		return lsCommand(ctx, cfg, remainingArgs)
	case "add":
		return addCommand(ctx, cfg, remainingArgs)
	case "edit":
		return editCommand(ctx, cfg, remainingArgs)
	case "rm", "delete":
		return rmCommand(ctx, cfg, remainingArgs)
	case "mv", "move":
		return mvCommand(ctx, cfg, remainingArgs)
	case "done":
		return markCommand(ctx, cfg, remainingArgs, true)
	case "undone":
		return markCommand(ctx, cfg, remainingArgs, false)
	case "doctor":
		return doctorCommand(ctx, cws, remainingArgs)
	case "tail":
		return tailCommand(ctx, cfg, remainingArgs)
	case "completion":
		return completionCommand(cfg, remainingArgs)
	case "config":
		return configCommand(cws, remainingArgs)
	case "version":
		return versionCommand()
	case "help":
		printUsage(fs, os.Stdout)
		return nil
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, os.Stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

// app holds the task service and the resources behind it.
type app struct {
	cfg     *config.Config
	store   kvstore.Store
	service *task.Service
	metrics *metrics.Metrics
	logger  *log.Logger
	stop    context.CancelFunc
}

// openApp opens the configured store and loads the task service. The
// metrics endpoint runs until Close when metrics_addr is set.
func openApp(ctx context.Context, cfg *config.Config, logger *log.Logger) (*app, error) {
	store, err := storage.Open(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}

	m := metrics.New()
	service, err := task.NewService(ctx, store,
		task.WithLogger(logger),
		task.WithMetrics(m),
	)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("loading tasks: %w", err)
	}

	ctx, stop := context.WithCancel(ctx)
	a := &app{
		cfg:     cfg,
		store:   store,
		service: service,
		metrics: m,
		logger:  logger,
		stop:    stop,
	}
	if cfg.MetricsAddr != "" {
		go func() {
			if err := m.Serve(ctx, cfg.MetricsAddr); err != nil {
				logger.Error("metrics endpoint stopped", "addr", cfg.MetricsAddr, "err", err)
			}
		}()
		logger.Debug("serving metrics", "addr", cfg.MetricsAddr)
	}
	return a, nil
}

// Close stops the metrics endpoint and closes the store.
func (a *app) Close() error {
	a.stop()
	return a.store.Close()
}

func logOptions(cfg *config.Config) logging.Options {
	return logging.Options{
		Level:      cfg.LogLevel,
		Format:     cfg.LogFormat,
		Timestamps: cfg.LogTimestamps,
		Caller:     cfg.LogCaller,
		Prefix:     "rxtodo",
	}
}

// cliLogger logs to stderr for one-shot commands.
func cliLogger(cfg *config.Config) *log.Logger {
	return logging.New(os.Stderr, logOptions(cfg))
}

// tuiCommand launches the TUI. Logs go to a per-run file since the
// terminal belongs to the UI.
func tuiCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("rxtodo tui", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if !ui.IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY (try 'rxtodo ls')")
	}

	runLogger, err := logging.NewRunLogger(cfg.LogDir, cfg.ProjectRoot)
	if err != nil {
		return fmt.Errorf("creating run log: %w", err)
	}
	defer runLogger.Close()
	logger := runLogger.Logger(logOptions(cfg))
	logger.Info("starting tui", "store", storage.Describe(cfg.Store))

	a, err := openApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	return ui.RunTUI(ctx, a.service, ui.WithLogger(logger))
}

// doctorCommand checks config, store and log directory.
func doctorCommand(ctx context.Context, cws *config.ConfigWithSources, args []string) error {
	fs := flag.NewFlagSet("rxtodo doctor", flag.ContinueOnError)
	verbose := fs.Bool("v", false, "Verbose output")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	cfg := cws.Config

	fmt.Println("rxtodo doctor")
	fmt.Println("=============")
	fmt.Println()

	allOK := true

	fmt.Printf("Project root: %s\n", cfg.ProjectRoot)
	if _, err := os.Stat(cfg.ProjectRoot); err != nil {
		fmt.Printf("  ❌ Error: %v\n", err)
		allOK = false
	} else {
		fmt.Println("  ✅ OK")
	}
	fmt.Println()

	fmt.Println("Config:")
	if len(cws.Files) == 0 {
		fmt.Println("  ⚠️  No config file (using defaults)")
	}
	for _, f := range cws.Files {
		fmt.Printf("  ✅ %s\n", f)
	}
	if *verbose {
		printSources(os.Stdout, cws.Sources)
	}
	fmt.Println()

	fmt.Printf("Store: %s\n", storage.Describe(cfg.Store))
	if !checkStore(ctx, cfg, *verbose) {
		allOK = false
	}
	fmt.Println()

	fmt.Printf("Log directory: %s\n", cfg.LogDir)
	if info, err := os.Stat(cfg.LogDir); err != nil {
		if os.IsNotExist(err) {
			fmt.Println("  ⚠️  Not found (will be created by the tui)")
		} else {
			fmt.Printf("  ❌ Error: %v\n", err)
			allOK = false
		}
	} else if !info.IsDir() {
		fmt.Println("  ❌ Error: path is not a directory")
		allOK = false
	} else {
		fmt.Println("  ✅ OK")
	}
	fmt.Println()

	if cfg.MetricsAddr != "" {
		fmt.Printf("Metrics: %s/metrics\n\n", cfg.MetricsAddr)
	}

	if allOK {
		fmt.Println("✅ All checks passed!")
		return nil
	}
	fmt.Println("⚠️  Some checks failed. rxtodo may not function correctly.")
	return fmt.Errorf("doctor checks failed")
}

// checkStore reads the task list without seeding or rewriting it.
func checkStore(ctx context.Context, cfg *config.Config, verbose bool) bool {
	store, err := storage.Open(ctx, cfg.Store)
	if err != nil {
		fmt.Printf("  ❌ Error: %v\n", err)
		return false
	}
	defer store.Close()

	dicts, ok, err := kvstore.Value(ctx, store, task.StoreKey)
	if err != nil {
		fmt.Printf("  ❌ Read error: %v\n", err)
		return false
	}
	if !ok {
		fmt.Println("  ⚠️  No tasks stored yet (defaults are added on first use)")
		return true
	}

	tasks, errs := task.DecodeTasks(dicts)
	fmt.Printf("  ✅ OK (%d tasks)\n", len(tasks))
	for _, err := range errs {
		fmt.Printf("  ⚠️  %v\n", err)
	}
	if verbose {
		for _, t := range tasks {
			fmt.Printf("    - %s %s\n", shortID(t.ID), t.Title)
		}
	}
	return true
}

func printSources(w io.Writer, sources map[string]config.ConfigSource) {
	keys := make([]string, 0, len(sources))
	for k := range sources {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "    %-20s %s\n", k, sources[k])
	}
}

// tailCommand tails the latest run log.
func tailCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("rxtodo tail", flag.ContinueOnError)
	follow := fs.Bool("f", false, "Follow the log (like tail -f)")
	fs.BoolVar(follow, "follow", false, "Follow the log (like tail -f)")
	n := fs.Int("n", 0, "Number of lines to show (0 = all)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	logDir, err := logging.FindLogDir(cfg.LogDir, cfg.ProjectRoot)
	if err != nil {
		return fmt.Errorf("finding log directory: %w", err)
	}
	logPath, err := logging.FindLatestLog(logDir)
	if err != nil {
		return fmt.Errorf("finding latest log: %w", err)
	}
	if logPath == "" {
		fmt.Println("No log files found.")
		return nil
	}

	fmt.Printf("Tailing: %s\n", logPath)
	if *follow {
		fmt.Println("(Ctrl+C to stop)")
	}
	fmt.Println()

	err = logging.TailLog(os.Stdout, logPath, *n, *follow, ctx.Done())
	if err == nil && *follow && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// configCommand prints the example config or the effective config.
func configCommand(cws *config.ConfigWithSources, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: rxtodo config <example|show>")
	}
	switch args[0] {
	case "example":
		fmt.Print(config.ExampleConfig())
		return nil
	case "show":
		cfg := cws.Config
		if f := cws.GetConfigFile(); f != "" {
			fmt.Printf("# config file: %s\n", f)
		}
		fmt.Printf("store.driver   = %s\n", cfg.Store.Driver)
		if cfg.Store.Path != "" {
			fmt.Printf("store.path     = %s\n", cfg.Store.Path)
		}
		if cfg.Store.Driver == config.DriverS3 {
			fmt.Printf("store.s3       = s3://%s/%s (%s)\n", cfg.Store.S3.Bucket, cfg.Store.S3.Prefix, cfg.Store.S3.Region)
		}
		fmt.Printf("log_dir        = %s\n", cfg.LogDir)
		fmt.Printf("log_level      = %s\n", cfg.LogLevel)
		fmt.Printf("log_format     = %s\n", cfg.LogFormat)
		if cfg.MetricsAddr != "" {
			fmt.Printf("metrics_addr   = %s\n", cfg.MetricsAddr)
		}
		return nil
	default:
		return fmt.Errorf("unknown config command: %s", args[0])
	}
}

// versionCommand prints version information.
func versionCommand() error {
	fmt.Printf("rxtodo version %s\n", Version)
	return nil
}

// printUsage prints the usage message.
func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "rxtodo - a reactive task list")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  rxtodo [options] [command]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  tui                         Launch terminal UI (default command)")
	fmt.Fprintln(w, "  ls [-json]                  List tasks in order")
	fmt.Fprintln(w, "  add <title> [-memo m]       Add a task at the top")
	fmt.Fprintln(w, "  edit <id> <title> [-memo m] Change a task")
	fmt.Fprintln(w, "  rm <id>                     Delete a task")
	fmt.Fprintln(w, "  mv <id> <index>             Move a task to a position")
	fmt.Fprintln(w, "  done <id>                   Mark a task as done")
	fmt.Fprintln(w, "  undone <id>                 Mark a task as not done")
	fmt.Fprintln(w, "  doctor [-v]                 Check config, store and log directory")
	fmt.Fprintln(w, "  tail [-f] [-n N]            Tail the latest tui log")
	fmt.Fprintln(w, "  completion <shell>          Print shell completion (bash|zsh|fish|powershell)")
	fmt.Fprintln(w, "  config <example|show>       Print example or effective config")
	fmt.Fprintln(w, "  version                     Show version information")
	fmt.Fprintln(w, "  help                        Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Task ids may be abbreviated to any unique prefix.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Config files: ./rxtodo.toml (project) or ~/.rxtodo/rxtodo.toml (user)")
	fmt.Fprintln(w, "Environment: RXTODO_STORE, RXTODO_STORE_PATH, RXTODO_LOG_LEVEL, ... (see 'rxtodo config example')")
	fmt.Fprintf(w, "Drivers: %s\n", strings.Join(config.Drivers(), ", "))
}
