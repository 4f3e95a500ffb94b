// ./cmd/note-reader/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/book-expert/logger"

	"github.com/book-expert/note-reader/internal/config"
)

const usage = `Usage: note-reader [-config project.toml] <command> [arguments]

Commands:
  open <file>              recognize an image or PDF and open it in the reader
  clean                    clean OCR text read from stdin
  summarize [-n N]         summarize text read from stdin
  ask -q QUESTION          answer a question from text read from stdin
  batch <dir>              process every page in a directory, YAML report on stdout
  serve                    run the local HTTP API
`

const logFileName = "note-reader.log"

var (
	errUnknownCommand  = errors.New("unknown command")
	errMissingCommand  = errors.New("missing command")
	errMissingArgument = errors.New("missing argument")
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout)

	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "note-reader: %v\n", err)

		if errors.Is(err, errUnknownCommand) || errors.Is(err, errMissingCommand) ||
			errors.Is(err, errMissingArgument) {
			fmt.Fprint(os.Stderr, usage)
		}

		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	globalFlags := flag.NewFlagSet("note-reader", flag.ContinueOnError)
	globalFlags.SetOutput(io.Discard)

	configPath := globalFlags.String("config", "", "path to project.toml")

	err := globalFlags.Parse(args)
	if err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	if globalFlags.NArg() == 0 {
		return errMissingCommand
	}

	command, commandArgs := globalFlags.Arg(0), globalFlags.Args()[1:]

	app, err := newApp(*configPath)
	if err != nil {
		return err
	}

	switch command {
	case "open":
		return app.open(ctx, commandArgs)
	case "clean":
		return app.clean(stdin, stdout)
	case "summarize":
		return app.summarize(commandArgs, stdin, stdout)
	case "ask":
		return app.ask(commandArgs, stdin, stdout)
	case "batch":
		return app.batch(ctx, commandArgs, stdout)
	case "serve":
		return app.serve(ctx)
	default:
		return fmt.Errorf("%q: %w", command, errUnknownCommand)
	}
}

// app holds the loaded configuration and the final logger.
type app struct {
	cfg *config.Config
	log *logger.Logger
}

func newApp(configPath string) (*app, error) {
	// A temporary logger for the bootstrap process
	log, err := logger.New(os.TempDir(), "note-reader-bootstrap.log")
	if err != nil {
		return nil, fmt.Errorf("create bootstrap logger: %w", err)
	}

	cfg, err := config.Load(configPath, log)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	// Initialize the final logger based on the loaded configuration
	log, err = logger.New(cfg.Service.LogDir, logFileName)
	if err != nil {
		return nil, fmt.Errorf("create logger in %s: %w", cfg.Service.LogDir, err)
	}

	log.Infof("Logging to %s", cfg.GetLogFilePath(logFileName))

	return &app{cfg: cfg, log: log}, nil
}
