package gocode

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(contents), 0o644))
	return p
}

func TestGoFilesInDir_SkipsTestAndHiddenFiles(t *testing.T) {
	tdir := t.TempDir()
	writeFile(t, tdir, "b.go", "package p\n")
	writeFile(t, tdir, "a.go", "package p\n")
	writeFile(t, tdir, "a_test.go", "package p\n")
	writeFile(t, tdir, ".hidden.go", "package p\n")
	writeFile(t, tdir, "_skip.go", "package p\n")
	writeFile(t, tdir, "notes.txt", "hi\n")

	files, err := BuildConfig{}.goFilesInDir(tdir)
	require.NoError(t, err)
	require.Equal(t, []string{"a.go", "b.go"}, files)
}

func TestGoFilesInDir_GOOSFiltering(t *testing.T) {
	tdir := t.TempDir()
	writeFile(t, tdir, "b_linux.go", "package p\n")
	writeFile(t, tdir, "b_darwin.go", "package p\n")

	filesLinux, err := BuildConfig{GOOS: "linux", GOARCH: "amd64"}.goFilesInDir(tdir)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"b_linux.go"}, filesLinux)

	filesDarwin, err := BuildConfig{GOOS: "darwin", GOARCH: "arm64"}.goFilesInDir(tdir)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"b_darwin.go"}, filesDarwin)
}

func TestGoFilesInDir_BuildTags(t *testing.T) {
	tdir := t.TempDir()
	writeFile(t, tdir, "c.go", "//go:build mytag\n\npackage p\n")

	filesNoTag, err := BuildConfig{GOOS: runtime.GOOS, GOARCH: runtime.GOARCH}.goFilesInDir(tdir)
	require.NoError(t, err)
	require.Empty(t, filesNoTag)

	filesWithTag, err := BuildConfig{Tags: []string{"mytag"}}.goFilesInDir(tdir)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"c.go"}, filesWithTag)
}

func TestGoFilesInDir_GOFLAGSMergesTags(t *testing.T) {
	tdir := t.TempDir()
	writeFile(t, tdir, "d.go", "//go:build tag2\n\npackage p\n")

	t.Setenv("GOFLAGS", "-tags=tag1,tag2")
	files, err := BuildConfig{Tags: []string{"othertag"}}.goFilesInDir(tdir)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"d.go"}, files)

	t.Setenv("GOFLAGS", "-tags tag2")
	files, err = BuildConfig{}.goFilesInDir(tdir)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"d.go"}, files)
}
