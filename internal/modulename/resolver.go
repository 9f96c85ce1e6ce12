package modulename

import (
	"path/filepath"
	"regexp"

	"github.com/codalotl/docmodules/internal/converter"
	"github.com/codalotl/docmodules/internal/doctree"
)

const (
	moduleTag    = "module"
	preferredTag = "preferred"

	// rootModuleName replaces the "." guess for files directly in the base directory.
	rootModuleName = "root"
)

var (
	preferredRE = regexp.MustCompile(`@preferred`)
	moduleRE    = regexp.MustCompile(`@module\s+([\w\x{4e00}-\x{9fa5}.\-_/@"]+)`)
)

// NameFunc maps a node to its final dotted module name. explicit is the value of the first @module tag ("" if none) and guess is the directory-based guess (""
// when automatic naming is disabled). Returning "" means the node is not renamed.
type NameFunc func(explicit, guess, filePath string, node *doctree.Node, ctx *converter.Context) (string, error)

// DefaultNameFunc prefers explicit and falls back to guess.
func DefaultNameFunc(explicit, guess, _ string, _ *doctree.Node, _ *converter.Context) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	return guess, nil
}

// ExplicitName returns the first @module tag value in raw, or "".
func ExplicitName(raw string) string {
	m := moduleRE.FindStringSubmatch(raw)
	if m == nil {
		return ""
	}
	return m[1]
}

// IsPreferred reports whether raw contains the @preferred marker anywhere.
func IsPreferred(raw string) bool {
	return preferredRE.MatchString(raw)
}

// GuessName returns the directory of filename relative to baseDir, slash separated, with "." replaced by "root". Relative paths are resolved against workDir.
// It returns "" if filename is empty.
func GuessName(baseDir, filename, workDir string) string {
	if filename == "" {
		return ""
	}
	rel, err := filepath.Rel(resolve(workDir, baseDir), resolve(workDir, filename))
	if err != nil {
		return ""
	}
	guess := filepath.ToSlash(filepath.Dir(rel))
	if guess == "." {
		return rootModuleName
	}
	return guess
}

// ModuleName computes the final name of node and whether its comment is preferred when merging. Precedence is decided by the NameFunc: the custom function
// from .docmodules.expr if one was loaded, else DefaultNameFunc (explicit @module tag, then the directory guess).
func (p *Plugin) ModuleName(ctx *converter.Context, node *doctree.Node, decl converter.Declaration) (string, bool, error) {
	raw := decl.RawComment()
	preferred := IsPreferred(raw)
	explicit := ExplicitName(raw)

	var filename string
	if src, ok := node.PrimarySource(); ok {
		filename = src.FullFileName
	}

	var guess string
	if !p.disableAutoModuleName {
		guess = GuessName(p.baseDir, filename, ctx.WorkDir)
	}

	name, err := p.nameFunc(explicit, guess, filename, node, ctx)
	if err != nil {
		return "", false, err
	}
	return name, preferred, nil
}
