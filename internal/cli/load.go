package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/codalotl/docmodules/internal/gocode"
)

// loadPackages resolves command arguments to packages of a single module. An argument naming an existing directory selects every package at or below it; any
// other argument is a go list pattern. With no arguments, the working directory is used. The module is the one containing the first directory argument, or
// else the working directory.
func loadPackages(workDir string, args []string) (*gocode.Module, []*gocode.Package, error) {
	if len(args) == 0 {
		args = []string{"."}
	}

	anchor := workDir
	if dir, ok := dirArg(workDir, args[0]); ok {
		anchor = dir
	}
	mod, err := gocode.NewModule(anchor)
	if err != nil {
		return nil, nil, err
	}

	selected := make(map[string]*gocode.Package)
	var patterns []string
	var all []*gocode.Package

	for _, arg := range args {
		dir, ok := dirArg(workDir, arg)
		if !ok {
			patterns = append(patterns, arg)
			continue
		}

		rel, err := filepath.Rel(mod.AbsolutePath, dir)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return nil, nil, usageErrorf("%s is not inside module %s (%s)", arg, mod.Name, mod.AbsolutePath)
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			rel = ""
		}

		if all == nil {
			all, err = mod.LoadAllPackages()
			if err != nil {
				return nil, nil, err
			}
		}
		matched := false
		for _, pkg := range all {
			if rel == "" || pkg.RelativeDir == rel || strings.HasPrefix(pkg.RelativeDir, rel+"/") {
				selected[pkg.ImportPath] = pkg
				matched = true
			}
		}
		if !matched {
			return nil, nil, fmt.Errorf("no Go packages found in %s", arg)
		}
	}

	if len(patterns) > 0 {
		pkgs, err := mod.LoadPackagesByPattern(patterns...)
		if err != nil {
			return nil, nil, err
		}
		for _, pkg := range pkgs {
			selected[pkg.ImportPath] = pkg
		}
	}

	out := make([]*gocode.Package, 0, len(selected))
	for _, pkg := range selected {
		out = append(out, pkg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ImportPath < out[j].ImportPath })
	return mod, out, nil
}

// dirArg returns arg as an absolute directory, and false if it does not name one.
func dirArg(workDir, arg string) (string, bool) {
	p := arg
	if !filepath.IsAbs(p) {
		p = filepath.Join(workDir, p)
	}
	info, err := os.Stat(p)
	if err != nil || !info.IsDir() {
		return "", false
	}
	return filepath.Clean(p), true
}
