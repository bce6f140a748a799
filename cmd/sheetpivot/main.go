// Command sheetpivot imports workbooks into the record store and exports
// validated pivots without starting the HTTP server.
//
//	sheetpivot import -path ventas.xlsx [-sheet Hoja1] [-collection tables]
//	sheetpivot export -out salida.xlsx -index region -values sales [-agg sum]
//
// Results are printed to stdout as JSON. Configuration comes from the same
// YAML file and SHEETPIVOT_* variables as the server.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"sheetpivot/internal/config"
	"sheetpivot/internal/infrastructure"
	"sheetpivot/internal/services"
	"sheetpivot/internal/store"
)

const usage = `usage: sheetpivot <command> [flags]

commands:
  import   copy workbook rows into a collection
  export   write the validated sheet and pivot of a collection
`

// listFlag collects comma-separated values; the flag may be repeated.
type listFlag []string

func (l *listFlag) String() string { return strings.Join(*l, ",") }

func (l *listFlag) Set(v string) error {
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			*l = append(*l, part)
		}
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, config.Load)
	stop()
	os.Exit(code)
}

// run executes one command and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer, load func() (*config.Config, error)) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	var cmd command
	switch args[0] {
	case "import":
		cmd = &importCommand{}
	case "export":
		cmd = &exportCommand{}
	case "-h", "-help", "--help", "help":
		fmt.Fprint(stdout, usage)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", args[0], usage)
		return 2
	}

	fs := flag.NewFlagSet("sheetpivot "+args[0], flag.ContinueOnError)
	fs.SetOutput(stderr)
	cmd.flags(fs)
	if err := fs.Parse(args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg, err := load()
	if err != nil {
		fmt.Fprintf(stderr, "load config: %v\n", err)
		return 1
	}
	logger, err := newLogger(cfg.Logging, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "initialize logger: %v\n", err)
		return 1
	}
	defer infrastructure.CloseLogFile()

	env, err := openEnv(cfg, logger)
	if err != nil {
		logger.Error("Failed to open record store", slog.String("error", err.Error()))
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}
	defer env.close()

	result, err := cmd.exec(ctx, env)
	if err != nil {
		logger.Error("Command failed",
			slog.String("command", args[0]),
			slog.String("error", err.Error()))
		fmt.Fprintf(stderr, "%s: %v\n", args[0], err)
		return exitCode(err)
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		fmt.Fprintf(stderr, "write result: %v\n", err)
		return 1
	}
	return 0
}

// newLogger keeps stdout for results: console logging goes to stderr.
func newLogger(cfg config.LoggingConfig, stderr io.Writer) (*slog.Logger, error) {
	if strings.EqualFold(cfg.Output, "file") {
		return infrastructure.NewLogger(cfg)
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	return infrastructure.NewLoggerWithWriter(stderr, &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.Development,
	}), nil
}

// exitCode separates bad input (2) from runtime failures (1).
func exitCode(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidInput), errors.Is(err, services.ErrSheetNotFound):
		return 2
	default:
		return 1
	}
}

type env struct {
	store    *store.Store
	importer *services.ImportService
	exporter *services.ExportService
}

func openEnv(cfg *config.Config, logger *slog.Logger) (*env, error) {
	paths, err := cfg.ResolvePaths()
	if err != nil {
		return nil, err
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, err
	}
	st, err := store.Open(store.Options{
		Dir:      paths.StoreDir,
		InMemory: cfg.Store.InMemory,
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}
	collection := cfg.Store.DefaultCollection
	return &env{
		store:    st,
		importer: services.NewImportService(st, paths, collection, nil, logger),
		exporter: services.NewExportService(st, paths, collection, cfg.Pipeline, nil, logger),
	}, nil
}

func (e *env) close() { _ = e.store.Close() }

type command interface {
	flags(fs *flag.FlagSet)
	exec(ctx context.Context, e *env) (any, error)
}

type importCommand struct {
	req services.ImportRequest
}

func (c *importCommand) flags(fs *flag.FlagSet) {
	fs.StringVar(&c.req.Path, "path", "", "workbook to import (relative to the data directory)")
	fs.StringVar(&c.req.Sheet, "sheet", "", "sheet to import (default: every sheet)")
	fs.StringVar(&c.req.Collection, "collection", "", "target collection (default from config)")
}

func (c *importCommand) exec(ctx context.Context, e *env) (any, error) {
	return e.importer.Import(ctx, c.req)
}

type exportCommand struct {
	req          services.ExportRequest
	index        listFlag
	values       listFlag
	aggregations listFlag
}

func (c *exportCommand) flags(fs *flag.FlagSet) {
	fs.StringVar(&c.req.OutputPath, "out", "", "workbook to write (relative to the data directory)")
	fs.StringVar(&c.req.Collection, "collection", "", "source collection (default from config)")
	fs.Var(&c.index, "index", "grouping columns, comma separated")
	fs.Var(&c.values, "values", "value columns, comma separated")
	fs.Var(&c.aggregations, "agg", "aggregations, one or one per value column")
}

func (c *exportCommand) exec(ctx context.Context, e *env) (any, error) {
	c.req.Index = c.index
	c.req.Values = c.values
	c.req.Aggregations = c.aggregations
	return e.exporter.Export(ctx, c.req)
}
