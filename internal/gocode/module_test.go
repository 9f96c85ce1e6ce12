package gocode

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestModule creates a temporary directory structure for a test Go module and returns the module root path.
func setupTestModule(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()
	tmpDir, err := filepath.EvalSymlinks(tmpDir)
	require.NoError(t, err)

	write := func(rel, contents string) {
		full := filepath.Join(tmpDir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, os.WriteFile(full, []byte(contents), 0644))
	}

	write("go.mod", "module example.com/testmodule\n")
	write("root.go", "package root")
	write("pkga/a.go", "// Package pkga is a.\npackage pkga\n\nfunc A() {}\n")
	write("pkga/a_test.go", "package pkga\n")
	write("pkga/b.go", "package pkga\n")
	write("pkgb/b.go", "package pkgb")
	write("pkgb/nested/n.go", "package nested")
	write("pkgb/testdata/x.go", "package x")
	write(".hidden/h.go", "package hidden")
	write("vendor/v/v.go", "package v")
	write("sub/go.mod", "module example.com/sub\n")
	write("sub/s.go", "package sub")
	require.NoError(t, os.Mkdir(filepath.Join(tmpDir, "empty"), 0755))

	return tmpDir
}

func TestNewModule(t *testing.T) {
	root := setupTestModule(t)

	mod, err := NewModule(filepath.Join(root, "pkga", "a.go"))
	require.NoError(t, err)
	assert.Equal(t, "example.com/testmodule", mod.Name)
	assert.Equal(t, root, mod.AbsolutePath)
	assert.Empty(t, mod.Packages)

	_, err = NewModule(t.TempDir())
	assert.Error(t, err)
}

func TestLoadAllPackages(t *testing.T) {
	root := setupTestModule(t)
	mod, err := NewModule(root)
	require.NoError(t, err)

	pkgs, err := mod.LoadAllPackages()
	require.NoError(t, err)

	var importPaths []string
	for _, p := range pkgs {
		importPaths = append(importPaths, p.ImportPath)
	}
	assert.Equal(t, []string{
		"example.com/testmodule",
		"example.com/testmodule/pkga",
		"example.com/testmodule/pkgb",
		"example.com/testmodule/pkgb/nested",
	}, importPaths)

	pkga := mod.Packages["example.com/testmodule/pkga"]
	require.NotNil(t, pkga)
	assert.Equal(t, "pkga", pkga.Name)
	assert.Equal(t, "pkga", pkga.RelativeDir)
	assert.Len(t, pkga.Files, 2, "test files are excluded")
	assert.Equal(t, "pkga/a.go", pkga.Files["a.go"].RelativeFileName)
	assert.Equal(t, "// Package pkga is a.", pkga.RawPackageDoc())
	assert.Equal(t, "a.go", pkga.PrimaryFile().FileName)

	pkgb := mod.Packages["example.com/testmodule/pkgb"]
	require.NotNil(t, pkgb)
	assert.Equal(t, "", pkgb.RawPackageDoc())
	assert.Equal(t, "b.go", pkgb.PrimaryFile().FileName)
}

func TestLoadPackageByImportPath(t *testing.T) {
	root := setupTestModule(t)
	mod, err := NewModule(root)
	require.NoError(t, err)

	pkg, err := mod.LoadPackageByImportPath("example.com/testmodule/pkgb/nested")
	require.NoError(t, err)
	assert.Equal(t, "nested", pkg.Name)
	assert.Equal(t, "pkgb/nested", pkg.RelativeDir)

	again, err := mod.LoadPackageByRelativeDir("pkgb/nested/")
	require.NoError(t, err)
	assert.Same(t, pkg, again)

	rootPkg, err := mod.LoadPackageByRelativeDir(".")
	require.NoError(t, err)
	assert.Equal(t, "example.com/testmodule", rootPkg.ImportPath)

	_, err = mod.LoadPackageByImportPath("example.com/other")
	assert.True(t, errors.Is(err, ErrImportNotInModule))

	_, err = mod.LoadPackageByRelativeDir("empty")
	assert.Error(t, err)
}

func TestNewPackageMismatchedNames(t *testing.T) {
	root := setupTestModule(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "pkgb", "c.go"), []byte("package other\n"), 0644))

	mod, err := NewModule(root)
	require.NoError(t, err)
	_, err = mod.LoadPackageByRelativeDir("pkgb")
	assert.ErrorContains(t, err, "found packages")
}

func TestBuildConstraints(t *testing.T) {
	root := setupTestModule(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "pkgb", "tagged.go"), []byte("//go:build special\n\npackage pkgb\n"), 0644))

	mod, err := NewModule(root)
	require.NoError(t, err)
	pkg, err := mod.LoadPackageByRelativeDir("pkgb")
	require.NoError(t, err)
	assert.NotContains(t, pkg.Files, "tagged.go")

	tagged, err := NewModule(root)
	require.NoError(t, err)
	tagged.Build.Tags = []string{"special"}
	pkg, err = tagged.LoadPackageByRelativeDir("pkgb")
	require.NoError(t, err)
	assert.Contains(t, pkg.Files, "tagged.go")
}

func TestParseTagsFromGOFLAGS(t *testing.T) {
	assert.Nil(t, ParseTagsFromGOFLAGS(""))
	assert.Equal(t, []string{"a", "b", "c"}, ParseTagsFromGOFLAGS("-mod=mod -tags=a,b -tags c"))
	assert.Nil(t, ParseTagsFromGOFLAGS("-tags"))
}

func TestIsCodeGenerated(t *testing.T) {
	f := &File{Contents: []byte("// Code generated by foo. DO NOT EDIT.\n\npackage x\n")}
	assert.True(t, f.IsCodeGenerated())
	f = &File{Contents: []byte("package x\n")}
	assert.False(t, f.IsCodeGenerated())
}

func TestPrimaryFileSkipsGeneratedFiles(t *testing.T) {
	tdir := t.TempDir()
	writeFile(t, tdir, "go.mod", "module example.com/gen\n")
	writeFile(t, tdir, "a_gen.go", "// Code generated by stringer. DO NOT EDIT.\n\npackage gen\n")
	writeFile(t, tdir, "b.go", "package gen\n")

	m, err := NewModule(tdir)
	require.NoError(t, err)
	pkg, err := m.LoadPackageByRelativeDir(".")
	require.NoError(t, err)
	assert.Equal(t, "b.go", pkg.PrimaryFile().FileName)
}

func TestLoadPackagesByPattern(t *testing.T) {
	if _, err := exec.LookPath("go"); err != nil {
		t.Skip("go command not available")
	}
	root := setupTestModule(t)
	mod, err := NewModule(root)
	require.NoError(t, err)

	pkgs, err := mod.LoadPackagesByPattern("./pkgb/...")
	require.NoError(t, err)
	require.Len(t, pkgs, 2)
	assert.Equal(t, "example.com/testmodule/pkgb", pkgs[0].ImportPath)
	assert.Equal(t, "example.com/testmodule/pkgb/nested", pkgs[1].ImportPath)
}
