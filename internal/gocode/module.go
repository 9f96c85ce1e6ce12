package gocode

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/mod/modfile"
	"golang.org/x/tools/go/packages"
)

// Module describes a Go module rooted at a directory containing a go.mod file. It records the module path, absolute root on disk, and a cache of packages loaded
// from that module. Create Modules with NewModule and load packages via the Load* methods.
type Module struct {
	Name         string              // ex: "" or "github.com/foo/bar"
	AbsolutePath string              // ex: "/path/to/module"
	Packages     map[string]*Package // map of importPath to package; populated via the Load* methods
	Build        BuildConfig         // build configuration used to select files; the zero value is the default build
}

// NewModule returns a Module representing an existing Go module. It finds the nearest go.mod file starting from the path. The anyPath parameter can be any folder
// or filename in the Go module (ex: a Go file, the go.mod file itself, or a folder).
func NewModule(anyPath string) (*Module, error) {
	moduleRoot, err := findModuleRoot(anyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to find module root: %w", err)
	}

	moduleName, err := extractModuleName(moduleRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to extract module name: %w", err)
	}

	return &Module{
		Name:         moduleName,
		AbsolutePath: moduleRoot,
		Packages:     make(map[string]*Package),
	}, nil
}

// LoadAllPackages recursively traverses the module root looking for Go packages and loads each one it finds. It returns the loaded packages sorted by import
// path; they are also stored in m.Packages.
func (m *Module) LoadAllPackages() ([]*Package, error) {
	if err := m.traverseDirectory(m.AbsolutePath, ""); err != nil {
		return nil, err
	}
	return m.SortedPackages(), nil
}

// SortedPackages returns every package loaded so far, sorted by import path.
func (m *Module) SortedPackages() []*Package {
	out := make([]*Package, 0, len(m.Packages))
	for _, p := range m.Packages {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ImportPath < out[j].ImportPath })
	return out
}

// LoadPackageByRelativeDir loads a package from a directory relative to the module root. It returns a cached copy if available; otherwise, it reads from disk
// and caches the result.
func (m *Module) LoadPackageByRelativeDir(relativeDir string) (*Package, error) {
	relativeDir = filepath.ToSlash(filepath.Clean(relativeDir))
	if relativeDir == "." {
		relativeDir = ""
	}

	importPath := importPathFromRelativeDir(m.Name, relativeDir)
	if pkg, ok := m.Packages[importPath]; ok {
		return pkg, nil
	}

	return m.readPackage(relativeDir, nil)
}

// ErrImportNotInModule is returned by LoadPackageByImportPath when the requested import path does not belong to the module.
var ErrImportNotInModule = errors.New("import path not module")

// LoadPackageByImportPath loads a package by import path. It returns any cached copy if present; otherwise, it loads from disk and caches it. Any import path
// not in the module returns the error ErrImportNotInModule.
func (m *Module) LoadPackageByImportPath(importPath string) (*Package, error) {
	if pkg, ok := m.Packages[importPath]; ok {
		return pkg, nil
	}

	if importPath == m.Name {
		return m.LoadPackageByRelativeDir("")
	} else if relativeDir, ok := strings.CutPrefix(importPath, m.Name+"/"); ok {
		return m.LoadPackageByRelativeDir(relativeDir)
	}
	return nil, ErrImportNotInModule
}

// LoadPackagesByPattern resolves go list style patterns (ex: "./...", "./internal/foo", "example.com/m/bar") relative to the module root with go/packages, and
// loads every matching package that belongs to m. Packages outside the module are ignored. The result is sorted by import path.
//
// This shells out to the go command, so it requires a Go toolchain on PATH.
func (m *Module) LoadPackagesByPattern(patterns ...string) ([]*Package, error) {
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}

	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedModule,
		Dir:  m.AbsolutePath,
		Env:  os.Environ(),
	}
	if len(m.Build.Tags) > 0 {
		cfg.BuildFlags = []string{"-tags=" + strings.Join(m.Build.Tags, ",")}
	}

	listed, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("resolve patterns %v: %w", patterns, err)
	}

	seen := make(map[string]bool)
	var out []*Package
	for _, lp := range listed {
		if lp.PkgPath == "" || seen[lp.PkgPath] {
			continue
		}
		if lp.Module != nil && lp.Module.Path != m.Name {
			continue
		}
		seen[lp.PkgPath] = true

		pkg, err := m.LoadPackageByImportPath(lp.PkgPath)
		if errors.Is(err, ErrImportNotInModule) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, pkg)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no packages in module %s match %v", m.Name, patterns)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ImportPath < out[j].ImportPath })
	return out, nil
}

// traverseDirectory recursively walks a directory, loading a package for every directory that has buildable Go files. Initially, relativeDir should be "" for
// the root module. Directories that start with a dot, vendor, testdata, and nested modules are skipped.
func (m *Module) traverseDirectory(absDirPath string, relativeDir string) error {
	entries, err := os.ReadDir(absDirPath)
	if err != nil {
		return fmt.Errorf("failed to read directory %s: %w", absDirPath, err)
	}

	goFiles, err := m.Build.goFilesInDir(absDirPath)
	if err != nil {
		return fmt.Errorf("failed to list go files in %s: %w", absDirPath, err)
	}
	if len(goFiles) > 0 {
		if _, err := m.readPackage(relativeDir, goFiles); err != nil {
			return fmt.Errorf("failed to read package %s: %w", relativeDir, err)
		}
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == "vendor" || name == "testdata" {
			continue
		}
		subAbsDirPath := filepath.Join(absDirPath, name)
		if _, err := os.Stat(filepath.Join(subAbsDirPath, "go.mod")); err == nil {
			continue // nested module
		}

		subRelativeDir := name
		if relativeDir != "" {
			subRelativeDir = relativeDir + "/" + name
		}
		if err := m.traverseDirectory(subAbsDirPath, subRelativeDir); err != nil {
			return err
		}
	}

	return nil
}

// readPackage reads the package at relativeDir and caches it in m. If goFileNames is nil, the files are discovered using m.Build.
func (m *Module) readPackage(relativeDir string, goFileNames []string) (*Package, error) {
	absPkgDir := m.AbsolutePath
	if relativeDir != "" {
		absPkgDir = filepath.Join(m.AbsolutePath, filepath.FromSlash(relativeDir))
	}

	if _, err := os.Stat(absPkgDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("package directory does not exist: %s", absPkgDir)
	}

	if goFileNames == nil {
		files, err := m.Build.goFilesInDir(absPkgDir)
		if err != nil {
			return nil, fmt.Errorf("failed to list go files: %w", err)
		}
		if len(files) == 0 {
			return nil, fmt.Errorf("no Go files found in package directory: %s", absPkgDir)
		}
		goFileNames = files
	}

	pkg, err := NewPackage(relativeDir, absPkgDir, goFileNames, m)
	if err != nil {
		return nil, fmt.Errorf("could not read package: %w", err)
	}
	return pkg, nil
}

// findModuleRoot returns the root directory of the Go module (the one containing go.mod).
func findModuleRoot(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}

	dir := abs
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("failed to stat path: %w", err)
	}
	if !info.IsDir() {
		dir = filepath.Dir(abs)
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no go.mod file found in parent directories")
		}
		dir = parent
	}
}

// extractModuleName extracts the module name from the go.mod file.
func extractModuleName(moduleRoot string) (string, error) {
	data, err := os.ReadFile(filepath.Join(moduleRoot, "go.mod"))
	if err != nil {
		return "", fmt.Errorf("read go.mod: %w", err)
	}
	if p := modfile.ModulePath(data); p != "" {
		return p, nil
	}
	return "", errors.New("go.mod has no module directive")
}

// importPathFromRelativeDir joins moduleName and relativeDir into an import path. If relativeDir is empty, moduleName is returned unchanged.
func importPathFromRelativeDir(moduleName, relativeDir string) string {
	if relativeDir == "" {
		return moduleName
	}
	return moduleName + "/" + relativeDir
}
