package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"arevel/internal/log"
	"arevel/internal/object"
	"arevel/internal/repl"
	"arevel/internal/store"
	"arevel/internal/symbol"
	"arevel/internal/util"
	"arevel/internal/value"
	"arevel/internal/watch"
)

var (
	// Version is the current version of the arevel binary, set at build time.
	Version   = "dev"
	BuildDate = "unknown"
	Commit    = "unknown"
	help      bool
	version   bool
	// config vars
	configPath  string
	rootPath    string
	interactive bool
	watchFile   bool
	format      string
	// logging
	logLevel string
	logFile  string
	// store
	storeDriver string
	storeDSN    string
)

func init() {
	flag.BoolVar(&help, "help", false, "Display help information and exit")
	flag.BoolVar(&help, "h", false, "Display help information and exit")
	flag.BoolVar(&version, "version", false, "Display version information and exit")
	flag.BoolVar(&version, "v", false, "Display version information and exit")
	flag.StringVar(&configPath, "config", "arevel.toml", "Path to the TOML configuration file")
	flag.StringVar(&rootPath, "root", ".", "Directory sheet paths are resolved against")
	flag.BoolVar(&interactive, "repl", false, "Start an interactive session")
	flag.BoolVar(&watchFile, "watch", false, "Re-evaluate the sheet whenever the file changes")
	flag.StringVar(&format, "format", "text", "Output format: text or yaml")
	// log config
	flag.StringVar(&logLevel, "log-level", util.DefaultLogLevel, "Log level: debug, info, warn, error, none")
	flag.StringVar(&logFile, "log-file", "", "Log file path (if not set, logs to stderr)")
	// store config
	flag.StringVar(&storeDriver, "store-driver", util.DefaultStoreDriver, "Result store driver: sqlite3, mysql, postgres")
	flag.StringVar(&storeDSN, "store-dsn", "", "Result store connection string (results are not saved when empty)")
}

func main() {
	flag.Parse()

	if version {
		printVersion()
		return
	}
	if help {
		printHelp()
		return
	}

	config, err := loadConfiguration()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logWriter, err := log.Setup(config.LogLevel, config.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open log file '%s': %v\n", config.LogFile, err)
		os.Exit(2)
	}
	defer logWriter.Close()

	if err := symbol.Validate(); err != nil {
		slog.Error("symbol registry is inconsistent", slog.Any("error", err))
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, config))
}

// loadConfiguration reads the config file and applies flags that were set
// explicitly on the command line.
func loadConfiguration() (util.Configuration, error) {
	config, err := util.LoadConfig(configPath)
	if err != nil {
		return config, err
	}
	config.Version = Version
	config.BuildDate = BuildDate
	config.Commit = Commit

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "root":
			config.RootPath = rootPath
		case "log-level":
			config.LogLevel = logLevel
		case "log-file":
			config.LogFile = logFile
		case "store-driver":
			config.Store.Driver = storeDriver
		case "store-dsn":
			config.Store.DSN = storeDSN
		}
	})
	return config, nil
}

func newEnvironment(config util.Configuration) *object.Environment {
	env := object.NewEnvironment(value.APP_SYMBOL_START)
	env.MaxDepth = config.MaxResolveDepth
	return env
}

func openStore(ctx context.Context, config util.Configuration) (*store.Store, error) {
	if config.Store.DSN == "" {
		return nil, nil
	}
	st, err := store.Open(config.Store.Driver, config.Store.DSN)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}

func run(ctx context.Context, config util.Configuration) int {
	st, err := openStore(ctx, config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open store: %v\n", err)
		return 2
	}
	if st != nil {
		defer st.Close()
	}

	if interactive || flag.NArg() == 0 {
		if err := repl.Start(ctx, os.Stdout, newEnvironment(config), st, Version); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	}

	path := resolvePath(config.RootPath, flag.Arg(0))
	if !watchFile {
		failed, err := runSheet(ctx, path, config, st, os.Stdout)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		if failed {
			return 1
		}
		return 0
	}

	if _, err := runSheet(ctx, path, config, st, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	w, err := watch.New(path, config.Watch.Debounce.Duration, func(ctx context.Context, path string) {
		fmt.Fprintln(os.Stdout)
		if _, err := runSheet(ctx, path, config, st, os.Stdout); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to watch %s: %v\n", path, err)
		return 2
	}
	defer w.Close()
	if err := w.Run(ctx); err != nil && ctx.Err() == nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func printVersion() {
	fmt.Printf("arevel version 'v%s' %s %s\n", Version, BuildDate, Commit)
}

func printHelp() {
	fmt.Printf(`Usage: arevel [options] [sheet.yaml]

Options:
  -config <path>        TOML configuration file. Default is 'arevel.toml'.
  -root <path>          Directory sheet paths are resolved against. Default is '.'
  -repl                 Start an interactive session. Also used when no sheet is given.
  -watch                Re-evaluate the sheet whenever the file changes.
  -format <format>      Output format: text or yaml. Default is 'text'.
  -store-driver <name>  Result store driver: sqlite3, mysql, postgres. Default is 'sqlite3'.
  -store-dsn <dsn>      Result store connection string. Results are not saved when empty.
  -help                 Display this help information and exit.
  -version              Display version information and exit.
  -log-level <level>    Set the log level: debug, info, warn, error, none. Default is 'error'.
  -log-file <path>      Specify a log file to write logs. Default is stderr.

Details:
Arevel evaluates sheets of named cells. Cells may reference each other by
name and are evaluated in dependency order.

Examples:
  arevel                              Start an interactive session
  arevel budget.yaml                  Evaluate a sheet and print every cell
  arevel -watch budget.yaml           Re-evaluate the sheet on every save
  arevel -store-dsn runs.db budget.yaml
                                      Evaluate and save the results to SQLite

Version Information:
  Version:    %s
  Build Date: %s
  Commit:     %s
`, Version, BuildDate, Commit)
}
