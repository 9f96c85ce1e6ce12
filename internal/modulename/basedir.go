package modulename

import (
	"path/filepath"

	"github.com/codalotl/docmodules/internal/converter"
)

// BaseDir returns the reference directory used to guess module names from file locations. An explicit opts.RootDir wins, then opts.BaseURL; otherwise it is the
// common prefix of the directories of every entry point, each resolved against workDir.
//
// The prefix is computed byte by byte, so "/src/foo" and "/src/foobar" share "/src/foo". The result is not checked for existence or normalized. A single entry
// point yields its own directory; no entry points yield workDir.
func BaseDir(entryPoints []string, workDir string, opts converter.CompilerOptions) string {
	if opts.RootDir != "" {
		return opts.RootDir
	}
	if opts.BaseURL != "" {
		return opts.BaseURL
	}

	if len(entryPoints) == 0 {
		return resolve(workDir, ".")
	}
	acc := resolve(workDir, entryPoints[0])
	for _, entry := range entryPoints {
		acc = commonPrefix(acc, filepath.Dir(resolve(workDir, entry)))
	}
	return acc
}

func resolve(workDir, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(workDir, p)
}

func commonPrefix(a, b string) string {
	i := 0
	for i < len(a) && i < len(b) && a[i] == b[i] {
		i++
	}
	return a[:i]
}
