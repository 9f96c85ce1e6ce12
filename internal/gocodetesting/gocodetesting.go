package gocodetesting

import (
	"bytes"
	"os"
	"path"
	"path/filepath"
	"strings"
	"testing"

	"github.com/codalotl/docmodules/internal/gocode"

	"github.com/stretchr/testify/require"
)

// ModuleName is the module path of every module created by this package.
const ModuleName = "mymodule"

// Dedent removes the common leading indentation from each non-blank line in s. Spaces and tabs both count as indentation; the smallest indent among non-blank
// lines is removed from all non-blank lines. Leading/trailing blank lines are trimmed, and the result always ends with a single '\n'. Dedent is useful for inline
// multi-line test fixtures that are indented along with surrounding code.
func Dedent(s string) string {
	s = strings.Trim(s, "\n")
	lines := strings.Split(s, "\n")

	min := -1
	for i, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		if trimmed == "" {
			lines[i] = ""
			continue
		}
		indent := len(line) - len(trimmed)
		if min == -1 || indent < min {
			min = indent
		}
	}

	if min > 0 {
		for i, line := range lines {
			if len(line) >= min {
				lines[i] = line[min:]
			}
		}
	}
	return strings.TrimRight(strings.Join(lines, "\n"), " \t\n") + "\n"
}

// WriteModule creates a temporary Go module with path "mymodule" and writes files into it. Keys of files are slash-separated paths relative to the module root
// (ex: "foo/bar/bar.go"); a "package <dir>" clause is prepended to any .go file that lacks one, using "root" for files at the module root. It returns the absolute
// module directory, which is removed when the test finishes.
func WriteModule(t *testing.T, files map[string]string) string {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "gocodetesting-")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	// EvalSymlinks so paths match what os.Getwd and filepath.Abs report on systems where the temp dir is a symlink.
	tmpDir, err = filepath.EvalSymlinks(tmpDir)
	require.NoError(t, err)

	err = os.WriteFile(filepath.Join(tmpDir, "go.mod"), []byte("module "+ModuleName+"\n\ngo 1.22\n"), 0644)
	require.NoError(t, err)

	for rel, contents := range files {
		full := filepath.Join(tmpDir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))

		code := []byte(contents)
		if strings.HasSuffix(rel, ".go") && !bytes.Contains(code, []byte("\npackage ")) && !bytes.HasPrefix(code, []byte("package ")) {
			code = []byte("package " + packageNameForDir(path.Dir(rel)) + "\n\n" + contents)
		}
		require.NoError(t, os.WriteFile(full, code, 0644))
	}
	return tmpDir
}

// WithModule writes files with WriteModule, loads the resulting module with gocode, and calls f with it. If setup fails, the test is failed and f is not called.
func WithModule(t *testing.T, files map[string]string, f func(*gocode.Module)) {
	t.Helper()

	dir := WriteModule(t, files)
	mod, err := gocode.NewModule(dir)
	require.NoError(t, err)
	f(mod)
}

func packageNameForDir(dir string) string {
	if dir == "." || dir == "" {
		return "root"
	}
	name := path.Base(dir)
	name = strings.NewReplacer("-", "", ".", "").Replace(name)
	if name == "" {
		return "main"
	}
	return name
}
