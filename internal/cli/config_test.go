package cli

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		flags   flagValues
		args    []string
		want    Config
		wantErr error
	}{
		{
			name:  "list from file",
			flags: flagValues{list: true, file: true},
			args:  []string{"a.tar"},
			want:  Config{List: true, ArchivePath: "a.tar"},
		},
		{
			name:  "list from stdin",
			flags: flagValues{list: true, verbose: true},
			want:  Config{List: true, Verbose: true, ArchivePath: "-"},
		},
		{
			name:  "extract with dir",
			flags: flagValues{extract: true, file: true, dir: "out"},
			args:  []string{"a.tar"},
			want:  Config{Extract: true, ArchivePath: "a.tar", Dir: "out"},
		},
		{
			name:  "create",
			flags: flagValues{create: true, file: true},
			args:  []string{"out.tar", "a", "b"},
			want:  Config{Create: true, ArchivePath: "out.tar", Sources: []string{"a", "b"}},
		},
		{
			name:  "create to stdout",
			flags: flagValues{create: true},
			args:  []string{"-", "a"},
			want:  Config{Create: true, ArchivePath: "-", Sources: []string{"a"}},
		},
		{
			name:    "no operation",
			flags:   flagValues{file: true},
			args:    []string{"a.tar"},
			wantErr: ErrMissingArgument,
		},
		{
			name:    "two operations",
			flags:   flagValues{list: true, extract: true},
			wantErr: ErrConflictingOperations,
		},
		{
			name:    "file flag without path",
			flags:   flagValues{list: true, file: true},
			wantErr: ErrMissingArgument,
		},
		{
			name:    "create without sources",
			flags:   flagValues{create: true, file: true},
			args:    []string{"out.tar"},
			wantErr: ErrMissingArgument,
		},
		{
			name:    "create without archive",
			flags:   flagValues{create: true, file: true},
			wantErr: ErrMissingArgument,
		},
		{
			name:    "list with extra argument",
			flags:   flagValues{list: true, file: true},
			args:    []string{"a.tar", "b.tar"},
			wantErr: ErrUnexpectedArgument,
		},
		{
			name:    "positional without file flag",
			flags:   flagValues{extract: true},
			args:    []string{"a.tar"},
			wantErr: ErrUnexpectedArgument,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := newConfig(tt.flags, tt.args)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeArgs(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"-tvf", "a.tar"}, normalizeArgs([]string{"tvf", "a.tar"}))
	assert.Equal(t, []string{"-xf", "a.tar"}, normalizeArgs([]string{"-xf", "a.tar"}))
	assert.Equal(t, []string{"archive.tar"}, normalizeArgs([]string{"archive.tar"}))
	assert.Empty(t, normalizeArgs(nil))

	args := []string{"cf", "out.tar", "src"}
	_ = normalizeArgs(args)
	assert.Equal(t, "cf", args[0], "input is not modified")
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 2, ExitCode(ErrConflictingOperations))
	assert.Equal(t, 2, ExitCode(fmt.Errorf("%w: -f", ErrMissingArgument)))
	assert.Equal(t, 2, ExitCode(fmt.Errorf("%w: -q", ErrInvalidFlag)))
	assert.Equal(t, 1, ExitCode(fmt.Errorf("%w: disk full", ErrIO)))
	assert.Equal(t, 1, ExitCode(errors.New("malformed")))
}
