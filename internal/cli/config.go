package cli

import (
	"errors"
	"fmt"
	"strings"
)

// Usage errors. Each maps to exit code 2.
var (
	// ErrMissingArgument is returned when no operation is given, when -f has
	// no archive path, or when -c has no sources.
	ErrMissingArgument = errors.New("missing argument")

	// ErrConflictingOperations is returned when more than one of -c, -t, -x
	// is given.
	ErrConflictingOperations = errors.New("conflicting operations: only one of -c, -t, -x may be used")

	// ErrUnexpectedArgument is returned for positional arguments the
	// operation does not take.
	ErrUnexpectedArgument = errors.New("unexpected argument")

	// ErrInvalidFlag is returned when the command line cannot be parsed.
	ErrInvalidFlag = errors.New("invalid flag")
)

// ErrIO marks failures reading or writing archives and files. It maps to
// exit code 1, like archive format errors.
var ErrIO = errors.New("i/o error")

// stdio names standard input or output in place of an archive path.
const stdio = "-"

// Config is a parsed command line.
type Config struct {
	// List, Extract, and Create select the operation; exactly one is set.
	List    bool
	Extract bool
	Create  bool

	// Verbose enables long listings and progress logging.
	Verbose bool

	// ArchivePath is the archive to read or write. Empty or "-" means
	// standard input for -t and -x, and standard output for -c.
	ArchivePath string

	// Sources are the paths archived by -c, in order.
	Sources []string

	// Dir is the extraction destination. Empty means the working directory.
	Dir string
}

// flagValues holds raw flag values before validation.
type flagValues struct {
	list, extract, create bool
	verbose, file         bool
	dir                   string
}

// newConfig validates flag values and positional arguments.
//
// With -c the first positional argument is the archive to write and the
// rest are sources. With -t or -x and -f, the single positional argument is
// the archive; without -f the archive is read from standard input.
func newConfig(fv flagValues, args []string) (Config, error) {
	cfg := Config{
		List:    fv.list,
		Extract: fv.extract,
		Create:  fv.create,
		Verbose: fv.verbose,
		Dir:     fv.dir,
	}

	ops := 0
	for _, set := range []bool{fv.list, fv.extract, fv.create} {
		if set {
			ops++
		}
	}
	switch {
	case ops == 0:
		return Config{}, fmt.Errorf("%w: one of -c, -t, -x is required", ErrMissingArgument)
	case ops > 1:
		return Config{}, ErrConflictingOperations
	}

	if cfg.Create {
		if len(args) == 0 {
			return Config{}, fmt.Errorf("%w: archive path for -c", ErrMissingArgument)
		}
		cfg.ArchivePath = args[0]
		cfg.Sources = args[1:]
		if len(cfg.Sources) == 0 {
			return Config{}, fmt.Errorf("%w: no files to archive", ErrMissingArgument)
		}
		return cfg, nil
	}

	if !fv.file {
		if len(args) > 0 {
			return Config{}, fmt.Errorf("%w: %q", ErrUnexpectedArgument, args[0])
		}
		cfg.ArchivePath = stdio
		return cfg, nil
	}
	switch len(args) {
	case 0:
		return Config{}, fmt.Errorf("%w: archive path for -f", ErrMissingArgument)
	case 1:
		cfg.ArchivePath = args[0]
	default:
		return Config{}, fmt.Errorf("%w: %q", ErrUnexpectedArgument, args[1])
	}
	return cfg, nil
}

// bundleLetters are the flags that may be clustered without a leading dash,
// as in "tvf archive.tar".
const bundleLetters = "ctxvf"

// normalizeArgs adds the leading dash to an old-style first argument.
func normalizeArgs(args []string) []string {
	if len(args) == 0 || args[0] == "" || strings.HasPrefix(args[0], "-") {
		return args
	}
	for _, c := range args[0] {
		if !strings.ContainsRune(bundleLetters, c) {
			return args
		}
	}
	out := make([]string, len(args))
	copy(out, args)
	out[0] = "-" + args[0]
	return out
}

// ExitCode maps an error returned by Run to a process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrMissingArgument),
		errors.Is(err, ErrConflictingOperations),
		errors.Is(err, ErrUnexpectedArgument),
		errors.Is(err, ErrInvalidFlag):
		return 2
	default:
		return 1
	}
}
