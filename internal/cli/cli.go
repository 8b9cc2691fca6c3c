// Package cli implements the ustar command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Streams are the standard streams a command reads and writes.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// Run parses args (without the program name) and executes the selected
// operation. Use ExitCode to turn the result into a process status.
func Run(ctx context.Context, args []string, streams Streams) error {
	if args == nil {
		args = []string{} // cobra falls back to os.Args on nil
	}
	cmd := NewCommand(streams)
	cmd.SetArgs(normalizeArgs(args))
	return cmd.ExecuteContext(ctx)
}

// NewCommand returns the root command wired to streams.
func NewCommand(streams Streams) *cobra.Command {
	var fv flagValues
	cmd := &cobra.Command{
		Use:   "ustar -{c|t|x}[vf] [archive] [file...]",
		Short: "Create, list, and extract USTAR archives",
		Example: `  ustar -cf out.tar dir file.txt   create out.tar from dir and file.txt
  ustar -tvf out.tar               list out.tar with details
  ustar -xf out.tar -C dest        extract out.tar into dest
  ustar -c - dir | ustar -t        write to stdout, list from stdin`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := newConfig(fv, args)
			if err != nil {
				return err
			}
			r := newRunner(cfg, streams)
			return r.run(cmd.Context())
		},
	}
	cmd.SetIn(streams.In)
	cmd.SetOut(streams.Out)
	cmd.SetErr(streams.Err)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", ErrInvalidFlag, err)
	})

	flags := cmd.Flags()
	flags.BoolVarP(&fv.create, "create", "c", false, "create a new archive")
	flags.BoolVarP(&fv.list, "list", "t", false, "list archive contents")
	flags.BoolVarP(&fv.extract, "extract", "x", false, "extract archive contents")
	flags.BoolVarP(&fv.verbose, "verbose", "v", false, "verbose listing and progress")
	flags.BoolVarP(&fv.file, "file", "f", false, "archive path is the first argument")
	flags.StringVarP(&fv.dir, "directory", "C", "", "extract into `dir`")
	return cmd
}

// runner executes one parsed command line.
type runner struct {
	cfg     Config
	streams Streams
	log     zerolog.Logger
}

func newRunner(cfg Config, streams Streams) *runner {
	level := zerolog.WarnLevel
	if cfg.Verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{
		Out:        streams.Err,
		NoColor:    true,
		TimeFormat: time.RFC3339,
	}).Level(level).With().Timestamp().Logger()
	return &runner{cfg: cfg, streams: streams, log: log}
}

// libraryLogger returns the logger handed to the archive package. It is nil,
// and library logging disabled, unless verbose output was requested.
func (r *runner) libraryLogger() *slog.Logger {
	if !r.cfg.Verbose {
		return nil
	}
	return slog.New(slog.NewTextHandler(r.streams.Err, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func (r *runner) run(ctx context.Context) error {
	switch {
	case r.cfg.Create:
		return r.create(ctx)
	case r.cfg.Extract:
		return r.extract(ctx)
	default:
		return r.list(ctx)
	}
}
