// Package main is the pipelogger command. It stores its standard input in a
// log file, mirrors every line to stdout (or stderr), and rotates the file.
//
// Usage:
//
//	myservice 2>&1 | pipelogger --rotate 10MB --count 5 --compress /var/log/myservice.log
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	slogmulti "github.com/samber/slog-multi"
	"github.com/urfave/cli/v2"
	"golift.io/pipelogger"
	"gopkg.in/natefinch/lumberjack.v2"
)

// DefaultLogPath is used when no LOG_PATH argument is given.
const DefaultLogPath = "logfile.log"

// Flag validation errors.
var (
	ErrTooManyArgs = errors.New("too many arguments, expected at most one LOG_PATH")
	ErrBadRotate   = errors.New("invalid --rotate size")
	ErrBadCount    = errors.New("invalid --count")
)

func main() {
	if err := Run(context.Background(), os.Args); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

// Run parses args and pipes stdin into the log file until EOF.
func Run(ctx context.Context, args []string) error {
	return newApp(os.Stdin, os.Stdout, os.Stderr).RunContext(ctx, args)
}

// flags holds the parsed command line.
type flags struct {
	rotate   string
	count    int
	compress bool
	stderr   bool
	verbose  bool
	selfLog  string
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *cli.App {
	var (
		opts    flags
		selfLog *lumberjack.Logger
	)

	return &cli.App{
		Name:      "pipelogger",
		Usage:     "store piped output in a rotating log file",
		ArgsUsage: "[LOG_PATH]",
		Reader:    stdin,
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "rotate",
				Aliases:     []string{"r"},
				Usage:       "rotate the log file when it reaches `SIZE`, like 10MB or 512KiB",
				EnvVars:     []string{"PIPELOGGER_ROTATE"},
				Destination: &opts.rotate,
			},
			&cli.IntFlag{
				Name:        "count",
				Aliases:     []string{"c"},
				Usage:       "keep at most `N` log files, the live file included (needs --rotate)",
				EnvVars:     []string{"PIPELOGGER_COUNT"},
				Destination: &opts.count,
			},
			&cli.BoolFlag{
				Name:        "compress",
				Aliases:     []string{"z"},
				Usage:       "xz-compress rotated files (needs --rotate)",
				EnvVars:     []string{"PIPELOGGER_COMPRESS"},
				Destination: &opts.compress,
			},
			&cli.BoolFlag{
				Name:        "err",
				Aliases:     []string{"e"},
				Usage:       "mirror input to stderr instead of stdout",
				EnvVars:     []string{"PIPELOGGER_ERR"},
				Destination: &opts.stderr,
			},
			&cli.BoolFlag{
				Name:        "verbose",
				Aliases:     []string{"v"},
				Usage:       "log rotations and compression reports",
				EnvVars:     []string{"PIPELOGGER_VERBOSE"},
				Destination: &opts.verbose,
			},
			&cli.StringFlag{
				Name:        "self-log",
				Usage:       "also write pipelogger's own diagnostics to `PATH`",
				EnvVars:     []string{"PIPELOGGER_SELF_LOG"},
				Destination: &opts.selfLog,
			},
		},
		Before: func(_ *cli.Context) error {
			selfLog = setupLogging(stderr, opts)
			return nil
		},
		After: func(_ *cli.Context) error {
			if selfLog != nil {
				return selfLog.Close() //nolint:wrapcheck
			}

			return nil
		},
		Action: func(cCtx *cli.Context) error {
			config, err := opts.config(cCtx)
			if err != nil {
				return err
			}

			config.Stdout, config.Stderr = stdout, stderr

			return pipe(cCtx.App.Reader, config)
		},
	}
}

// setupLogging installs the default slog logger: tint on stderr and, when
// requested, a text copy in a small rotating file.
func setupLogging(stderr io.Writer, opts flags) *lumberjack.Logger {
	logLevel := slog.LevelInfo
	if opts.verbose {
		logLevel = slog.LevelDebug
	}

	noColor := true
	if file, ok := stderr.(*os.File); ok {
		noColor = !isatty.IsTerminal(file.Fd())
	}

	handlers := []slog.Handler{
		tint.NewHandler(stderr, &tint.Options{
			Level:      logLevel,
			TimeFormat: time.StampMilli,
			NoColor:    noColor,
		}),
	}

	var logFile *lumberjack.Logger

	if opts.selfLog != "" {
		logFile = &lumberjack.Logger{
			Filename:   opts.selfLog,
			MaxSize:    5, // MB
			MaxBackups: 4,
			Compress:   true,
		}

		handlers = append(handlers, slog.NewTextHandler(logFile, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}

	slog.SetDefault(slog.New(slogmulti.Fanout(handlers...)))

	return logFile
}

// config turns the command line into a pipelogger.Config.
func (f *flags) config(cCtx *cli.Context) (*pipelogger.Config, error) {
	if cCtx.NArg() > 1 {
		return nil, ErrTooManyArgs
	}

	config := &pipelogger.Config{
		Filepath: DefaultLogPath,
		Compress: f.compress,
		Tee:      pipelogger.TeeStdout,
	}

	if cCtx.NArg() == 1 {
		config.Filepath = cCtx.Args().First()
	}

	if f.stderr {
		config.Tee = pipelogger.TeeStderr
	}

	if f.rotate != "" {
		size, err := humanize.ParseBytes(f.rotate)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBadRotate, err)
		}

		if size < pipelogger.MinFileSize {
			return nil, fmt.Errorf("%w: %s is less than %d bytes", ErrBadRotate, f.rotate, pipelogger.MinFileSize)
		}

		config.FileSize = size

		if cCtx.IsSet("count") {
			if f.count < 1 {
				return nil, fmt.Errorf("%w: %d, must be at least 1", ErrBadCount, f.count)
			}

			config.FileCount = f.count
		}
	} else if cCtx.IsSet("count") || config.Compress {
		slog.Warn("Ignoring --count and --compress without --rotate")
	}

	if f.verbose {
		config.PostRotate = func(fileName, archive string) {
			slog.Debug("Rotated log file", "file", fileName, "archive", archive)
		}
		config.Printf = func(msg string, v ...any) {
			slog.Debug(fmt.Sprintf(msg, v...))
		}
	}

	return config, nil
}

// pipe copies input into a new Logger until EOF.
func pipe(input io.Reader, config *pipelogger.Config) error {
	logger, err := pipelogger.New(config)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}

	slog.Debug("Logging input", "file", config.Filepath, "rotate", humanize.Bytes(config.FileSize),
		"count", config.FileCount, "compress", config.Compress, "tee", config.Tee)

	size, err := logger.ReadFrom(input)
	if cerr := logger.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("closing log file: %w", cerr)
	}

	if err != nil {
		return fmt.Errorf("after %s: %w", humanize.IBytes(uint64(size)), err) //nolint:gosec
	}

	slog.Debug("Input closed", "bytes", size)

	return nil
}
