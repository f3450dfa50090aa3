// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/dustin/go-humanize"
	unzip "github.com/hashicorp/go-unzip"
)

// CLI are the cli parameters for the gounzip binary
type CLI struct {
	Archive           string           `arg:"" optional:"" name:"archive" help:"Path to the zip archive."`
	Destination       string           `short:"d" default:"." help:"Output directory."`
	GenericErrors     bool             `optional:"" help:"Report only the kind of a failure, not its details."`
	MaxFiles          int64            `optional:"" default:"-1" help:"Maximum entries that are extracted before stop. (disable check: -1)"`
	MaxExtractionSize int64            `optional:"" default:"-1" help:"Maximum extraction size that is allowed (in bytes). (disable check: -1)"`
	MaxInputSize      int64            `optional:"" default:"-1" help:"Maximum input size that is allowed (in bytes). (disable check: -1)"`
	Metrics           bool             `short:"M" optional:"" default:"false" help:"Print metrics to log after extraction."`
	NoOverwrite       bool             `optional:"" help:"Abort instead of overwriting existing files."`
	Verbose           bool             `short:"v" optional:"" help:"Verbose logging."`
	Version           kong.VersionFlag `short:"V" optional:"" help:"Print release version information."`
}

// OpenFunc opens the archive at path.
type OpenFunc func(path string, cfg *unzip.Config) (unzip.Archive, io.Closer, error)

// Env holds the collaborators of [Run]. The zero value of a field selects the
// process default.
type Env struct {
	// Stdout receives the extraction narration and the usage line.
	Stdout io.Writer

	// Stderr receives logs and diagnostics.
	Stderr io.Writer

	// Target is the filesystem the archive is extracted to.
	Target unzip.Target

	// Open opens the archive.
	Open OpenFunc

	// Version is printed by --version.
	Version string
}

// withDefaults fills unset fields of env
func (env Env) withDefaults() Env {
	if env.Stdout == nil {
		env.Stdout = os.Stdout
	}
	if env.Stderr == nil {
		env.Stderr = os.Stderr
	}
	if env.Target == nil {
		env.Target = unzip.NewTargetDisk()
	}
	if env.Open == nil {
		env.Open = OpenZipFile
	}
	if len(env.Version) == 0 {
		env.Version = "dev"
	}
	return env
}

// OpenZipFile is the default [OpenFunc].
func OpenZipFile(path string, cfg *unzip.Config) (unzip.Archive, io.Closer, error) {
	za, closer, err := unzip.OpenZipFile(path, cfg)
	if err != nil {
		return nil, nil, err
	}
	return za, closer, nil
}

// kongExit is raised by the kong exit hook to leave Run with a code
type kongExit int

// Run parses args, extracts the archive and returns the process exit code. args[0] is
// the program name.
func Run(ctx context.Context, args []string, env Env) (code int) {
	env = env.withDefaults()

	program := "gounzip"
	if len(args) > 0 {
		program = args[0]
		args = args[1:]
	}

	// kong exits on --help and --version
	defer func() {
		if r := recover(); r != nil {
			if c, ok := r.(kongExit); ok {
				code = int(c)
				return
			}
			panic(r)
		}
	}()

	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name(filepath.Base(program)),
		kong.Description("Extract a zip archive"),
		kong.Writers(env.Stdout, env.Stderr),
		kong.Exit(func(code int) { panic(kongExit(code)) }),
		kong.Vars{
			"version": fmt.Sprintf("%s (%s)", filepath.Base(program), env.Version),
		},
	)
	if err != nil {
		fmt.Fprintf(env.Stderr, "%s\n", err)
		return 1
	}

	if _, err := parser.Parse(args); err != nil {
		fmt.Fprintf(env.Stderr, "%s: %s\n", filepath.Base(program), err)
		return 1
	}

	if len(cli.Archive) == 0 {
		fmt.Fprintf(env.Stdout, "Usage: %s <file_name>\n", program)
		return 1
	}

	logger := newLogger(env.Stderr, cli)

	// setup metrics hook
	metricsToLog := func(ctx context.Context, td *unzip.TelemetryData) {
		if cli.Metrics {
			logger.Info("extraction finished", "size", humanize.Bytes(uint64(td.ExtractionSize)), "metrics", td)
		}
	}

	errorPolicy := unzip.ErrorPolicyDescriptive
	if cli.GenericErrors {
		errorPolicy = unzip.ErrorPolicyGeneric
	}

	cfg := unzip.NewConfig(
		unzip.WithErrorPolicy(errorPolicy),
		unzip.WithLogger(logger),
		unzip.WithMaxExtractionSize(cli.MaxExtractionSize),
		unzip.WithMaxFiles(cli.MaxFiles),
		unzip.WithMaxInputSize(cli.MaxInputSize),
		unzip.WithOverwrite(!cli.NoOverwrite),
		unzip.WithProgress(env.Stdout),
		unzip.WithTelemetryHook(metricsToLog),
	)

	if err := extract(ctx, env, cli, cfg); err != nil {
		fmt.Fprintf(env.Stderr, "error during extraction: %s\n", err)
		return 1
	}
	return 0
}

// extract opens the archive and extracts it to the destination
func extract(ctx context.Context, env Env, cli CLI, cfg *unzip.Config) error {
	archive, closer, err := env.Open(cli.Archive, cfg)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}
	return unzip.Extract(ctx, archive, cli.Destination, env.Target, cfg)
}

// newLogger creates the logger for the cli parameters
func newLogger(w io.Writer, cli CLI) *slog.Logger {
	logLevel := slog.LevelError
	if cli.Metrics {
		logLevel = slog.LevelInfo
	}
	if cli.Verbose {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: logLevel,
	}))
}
