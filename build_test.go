package ustar

import (
	"archive/tar"
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	splittar "github.com/vbatts/tar-split/archive/tar"

	"github.com/meigma/ustar/internal/testutil"
)

func TestBuildLayout(t *testing.T) {
	t.Parallel()

	buf := buildArchive(t, regular("test.txt", "test"))
	require.Len(t, buf, 4*BlockSize)
	assert.Zero(t, len(buf)%BlockSize)
	assert.True(t, IsZeroBlock(buf[len(buf)-2*BlockSize:]))

	assert.Equal(t, "13657\x00\x00\x00", string(fieldChecksum.of(buf)))
	assert.Equal(t, "test", string(buf[BlockSize:BlockSize+4]))
	assert.True(t, IsZeroBlock(buf[BlockSize+4:2*BlockSize]), "content padding is zero")
}

func TestBuildEmpty(t *testing.T) {
	t.Parallel()

	buf, err := Build(nil)
	require.NoError(t, err)
	assert.Equal(t, testutil.ZeroBlocks(2), buf)
}

func TestBuildRoundTrip(t *testing.T) {
	t.Parallel()

	mtime := time.Unix(1_700_000_000, 0)
	entries := []FileEntry{
		{Path: "dir", Meta: Metadata{Type: TypeDirectory, Mode: 0o755, ModTime: mtime}},
		{Path: "dir/a.txt", Meta: Metadata{Type: TypeRegular, Mode: 0o640, UID: 1000, GID: 1000, ModTime: mtime}, Content: []byte("alpha")},
		{Path: "dir/exact", Meta: Metadata{Type: TypeRegular, Mode: 0o600}, Content: bytes.Repeat([]byte("e"), BlockSize)},
		{Path: "dir/link", Meta: Metadata{Type: TypeSymlink, Mode: 0o777, LinkTarget: "a.txt"}},
		{Path: "tool", Meta: Metadata{Type: TypeRegular, Mode: 0o755 | fs.ModeSetuid}, Content: []byte("#!/bin/sh\n")},
	}
	resolver := testutil.NewMockResolver().SetUser(1000, "alice").SetGroup(1000, "staff")
	buf, err := Build(entries, WithOwnerResolver(resolver))
	require.NoError(t, err)

	a, err := Parse(buf, WithVerifyChecksum(true))
	require.NoError(t, err)
	require.Equal(t, len(entries), a.Len())

	for i, got := range a.Entries() {
		want := entries[i]
		assert.Equal(t, want.Path, got.Header.Name)
		assert.Equal(t, want.Meta.Type, got.Header.Type)
		assert.Equal(t, want.Meta.Mode.Perm(), got.Header.FileMode().Perm())
		if want.Meta.Type == TypeRegular {
			assert.Equal(t, want.Content, got.Content())
		} else {
			assert.Empty(t, got.Content())
		}
	}

	a1 := a.Entries()[1].Header
	assert.Equal(t, "alice", a1.Uname)
	assert.Equal(t, "staff", a1.Gname)
	assert.Equal(t, uint32(1000), a1.UID)
	assert.Equal(t, uint64(mtime.Unix()), a1.ModTime)

	assert.Equal(t, "a.txt", a.Entries()[3].Header.LinkTarget)
	assert.Equal(t, UnknownOwner, a.Entries()[3].Header.Uname)
	assert.NotZero(t, a.Entries()[4].Header.FileMode()&fs.ModeSetuid)
}

func TestBuildIgnoresContentForNonRegular(t *testing.T) {
	t.Parallel()

	buf := buildArchive(t,
		FileEntry{Path: "d", Meta: Metadata{Type: TypeDirectory}, Content: []byte("ignored")},
		FileEntry{Path: "l", Meta: Metadata{Type: TypeSymlink, LinkTarget: "d"}, Content: []byte("ignored")},
	)
	assert.Len(t, buf, 4*BlockSize)
}

func TestBuildExplicitOwnerNames(t *testing.T) {
	t.Parallel()

	resolver := testutil.NewMockResolver()
	e := regular("a", "1")
	e.Meta.Uname = "builder"
	e.Meta.Gname = "wheel"
	buf, err := Build([]FileEntry{e}, WithOwnerResolver(resolver))
	require.NoError(t, err)

	h, err := DecodeHeader(buf)
	require.NoError(t, err)
	assert.Equal(t, "builder", h.Uname)
	assert.Equal(t, "wheel", h.Gname)
	assert.Zero(t, resolver.Calls())
}

func TestBuildPreEpochTime(t *testing.T) {
	t.Parallel()

	e := regular("old", "x")
	e.Meta.ModTime = time.Date(1960, 1, 1, 0, 0, 0, 0, time.UTC)
	h, err := DecodeHeader(buildArchive(t, e))
	require.NoError(t, err)
	assert.Zero(t, h.ModTime)
}

func TestBuildErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		entry   FileEntry
		wantErr error
	}{
		{"empty name", regular("", "x"), ErrEmptyName},
		{"long name", regular(strings.Repeat("a", 101), "x"), ErrNameTooLong},
		{
			name:    "long link target",
			entry:   FileEntry{Path: "l", Meta: Metadata{Type: TypeSymlink, LinkTarget: strings.Repeat("t", 101)}},
			wantErr: ErrNameTooLong,
		},
		{
			name:    "uid overflow",
			entry:   FileEntry{Path: "u", Meta: Metadata{UID: 1 << 22}},
			wantErr: ErrFieldOverflow,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			buf, err := Build([]FileEntry{regular("ok", "fine"), tt.entry}, WithOwnerResolver(testutil.NewMockResolver()))
			require.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, buf)
		})
	}
}

func TestBuildParallelMatchesSerial(t *testing.T) {
	t.Parallel()

	entries := make([]FileEntry, 600)
	for i := range entries {
		entries[i] = regular(fmt.Sprintf("f%04d.txt", i), strings.Repeat("z", i))
	}
	resolver := testutil.NewMockResolver()

	serial, err := Build(entries, WithWorkers(-1), WithOwnerResolver(resolver))
	require.NoError(t, err)
	parallel, err := Build(entries, WithWorkers(8), WithOwnerResolver(resolver))
	require.NoError(t, err)
	auto, err := Build(entries, WithOwnerResolver(resolver))
	require.NoError(t, err)

	assert.Equal(t, serial, parallel)
	assert.Equal(t, serial, auto)

	a, err := Parse(parallel)
	require.NoError(t, err)
	assert.Equal(t, len(entries), a.Len())
	assert.Equal(t, "f0599.txt", a.Names()[599])
}

func TestBuildParallelReportsFirstError(t *testing.T) {
	t.Parallel()

	entries := make([]FileEntry, 300)
	for i := range entries {
		entries[i] = regular(fmt.Sprintf("f%d", i), "x")
	}
	entries[10].Path = ""
	entries[200].Path = strings.Repeat("n", 200)

	_, err := Build(entries, WithWorkers(4), WithOwnerResolver(testutil.NewMockResolver()))
	require.ErrorIs(t, err, ErrEmptyName)
}

func TestBuildWorkers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		workers int
		entries int
		want    int
	}{
		{"forced serial", -1, 10_000, 1},
		{"explicit", 3, 1, 3},
		{"auto small", 0, parallelMinEntries - 1, 1},
	}
	for _, tt := range tests {
		b := &builder{cfg: buildConfig{workers: tt.workers}}
		assert.Equal(t, tt.want, b.workers(tt.entries), tt.name)
	}
}

func TestBuildLogger(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	_, err := Build([]FileEntry{regular("a", "1")},
		WithBuildLogger(logger),
		WithOwnerResolver(testutil.NewMockResolver()))
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "archive built")
	assert.Contains(t, logs.String(), "sha256:")
}

func TestBuildLoggerAboveDebug(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelInfo}))
	_, err := Build([]FileEntry{regular("a", "1")},
		WithBuildLogger(logger),
		WithOwnerResolver(testutil.NewMockResolver()))
	require.NoError(t, err)
	assert.Empty(t, logs.String())
}

func TestLazyDigest(t *testing.T) {
	t.Parallel()

	v := lazyDigest("hello").LogValue()
	assert.Equal(t, slog.KindString, v.Kind())
	assert.Equal(t, digest.FromString("hello").String(), v.String())
}

func TestBuildReadableByArchiveTar(t *testing.T) {
	t.Parallel()

	buf := buildArchive(t,
		FileEntry{Path: "dir", Meta: Metadata{Type: TypeDirectory, Mode: 0o755}},
		regular("dir/a.txt", "alpha"),
		FileEntry{Path: "dir/link", Meta: Metadata{Type: TypeSymlink, Mode: 0o777, LinkTarget: "a.txt"}},
	)

	tr := tar.NewReader(bytes.NewReader(buf))
	var names []string
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		names = append(names, hdr.Name)
		assert.Equal(t, UnknownOwner, hdr.Uname)

		switch hdr.Name {
		case "dir":
			assert.Equal(t, byte(tar.TypeDir), hdr.Typeflag)
		case "dir/a.txt":
			assert.Equal(t, byte(tar.TypeReg), hdr.Typeflag)
			content, err := io.ReadAll(tr)
			require.NoError(t, err)
			assert.Equal(t, "alpha", string(content))
		case "dir/link":
			assert.Equal(t, byte(tar.TypeSymlink), hdr.Typeflag)
			assert.Equal(t, "a.txt", hdr.Linkname)
		}
	}
	assert.Equal(t, []string{"dir", "dir/a.txt", "dir/link"}, names)
}

func TestParseArchiveTarOutput(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	files := []struct {
		name, body string
	}{
		{"readme.md", "# hello"},
		{"src/main.go", "package main"},
		{"empty", ""},
	}
	for _, f := range files {
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name:     f.name,
			Mode:     0o644,
			Size:     int64(len(f.body)),
			Typeflag: tar.TypeReg,
			Uname:    "dev",
			ModTime:  time.Unix(1_600_000_000, 0),
			Format:   tar.FormatUSTAR,
		}))
		_, err := tw.Write([]byte(f.body))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())

	a, err := Parse(buf.Bytes(), WithVerifyChecksum(true))
	require.NoError(t, err)
	require.Equal(t, len(files), a.Len())
	for i, e := range a.Entries() {
		assert.Equal(t, files[i].name, e.Header.Name)
		assert.Equal(t, files[i].body, string(e.Content()))
		assert.Equal(t, "dev", e.Header.Uname)
	}
	assert.True(t, a.Terminated())
}

func TestBuildReadableByTarSplit(t *testing.T) {
	t.Parallel()

	zeros := make([]byte, 2*BlockSize)
	buf := buildArchive(t, regular("zeros.bin", string(zeros)), regular("b.txt", "bravo"))

	tr := splittar.NewReader(bytes.NewReader(buf))
	var got []string
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		content, err := io.ReadAll(tr)
		require.NoError(t, err)
		assert.Equal(t, hdr.Size, int64(len(content)))
		got = append(got, hdr.Name)
	}
	assert.Equal(t, []string{"zeros.bin", "b.txt"}, got)
}
