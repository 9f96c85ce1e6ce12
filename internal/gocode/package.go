package gocode

import (
	"fmt"
	"go/token"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Package represents the non-test Go files of one directory, read and parsed with comments. Most instances are constructed at the Module level.
type Package struct {
	Name        string           // name given via 'package foo' at the top of Go files
	RelativeDir string           // directory relative to the containing Go module, slash separated (ex: "foo/bar"; "" for the module root)
	ImportPath  string           // canonical import path for referring to this package (ex: "myproj/foo/bar")
	Files       map[string]*File // Go source files in this package, keyed by filename
	Module      *Module          // module containing this package
	FileSet     *token.FileSet   // shared by every file in Files
}

// NewPackage reads and parses goFileNames from absoluteDirPath. It returns an error if any file cannot be read or parsed, or if the files declare different
// package names. The created package is added to m.Packages.
func NewPackage(relativeDir string, absoluteDirPath string, goFileNames []string, m *Module) (*Package, error) {
	if len(goFileNames) == 0 {
		return nil, fmt.Errorf("no Go files provided")
	}

	pkg := &Package{
		RelativeDir: relativeDir,
		ImportPath:  importPathFromRelativeDir(m.Name, relativeDir),
		Files:       make(map[string]*File, len(goFileNames)),
		Module:      m,
		FileSet:     token.NewFileSet(),
	}

	for _, fileName := range goFileNames {
		fullFilePath := filepath.Join(absoluteDirPath, fileName)
		contents, err := os.ReadFile(fullFilePath)
		if err != nil {
			return nil, fmt.Errorf("could not ReadFile: %w", err)
		}

		relName := fileName
		if relativeDir != "" {
			relName = relativeDir + "/" + fileName
		}
		f := &File{
			FileName:         fileName,
			RelativeFileName: relName,
			AbsolutePath:     fullFilePath,
			Contents:         contents,
		}
		if _, err := f.Parse(pkg.FileSet); err != nil {
			return nil, err
		}

		if pkg.Name == "" {
			pkg.Name = f.PackageName
		} else if pkg.Name != f.PackageName {
			return nil, fmt.Errorf("found packages %s (%s) and %s (%s) in %s", pkg.Name, pkg.firstFileName(), f.PackageName, fileName, absoluteDirPath)
		}
		pkg.Files[fileName] = f
	}

	m.Packages[pkg.ImportPath] = pkg
	return pkg, nil
}

func (p *Package) firstFileName() string {
	files := p.SortedFiles()
	if len(files) == 0 {
		return ""
	}
	return files[0].FileName
}

// SortedFiles returns p's files sorted by filename.
func (p *Package) SortedFiles() []*File {
	out := make([]*File, 0, len(p.Files))
	for _, f := range p.Files {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FileName < out[j].FileName })
	return out
}

// RawPackageDoc returns every package-clause doc comment in p, in filename order, joined by a newline. Comment markers are kept.
func (p *Package) RawPackageDoc() string {
	var docs []string
	for _, f := range p.SortedFiles() {
		if raw := f.RawPackageDoc(); raw != "" {
			docs = append(docs, raw)
		}
	}
	return strings.Join(docs, "\n")
}

// PrimaryFile returns the file that best represents p: the first file (by name) with a package doc comment, else the first hand-written file, else the first
// file.
func (p *Package) PrimaryFile() *File {
	files := p.SortedFiles()
	for _, f := range files {
		if f.RawPackageDoc() != "" {
			return f
		}
	}
	for _, f := range files {
		if !f.IsCodeGenerated() {
			return f
		}
	}
	if len(files) == 0 {
		return nil
	}
	return files[0]
}
