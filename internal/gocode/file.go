package gocode

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"regexp"

	"github.com/codalotl/docmodules/internal/doccomment"
)

// genRE matches the standard "Code generated … DO NOT EDIT." header at the start of a line. It runs in multiline mode so "^" anchors to line starts within the
// whole file.
var genRE = regexp.MustCompile(`(?m)^//\s*Code generated .* DO NOT EDIT\.?`)

// File represents a Go source file loaded into memory: its metadata, raw contents, and parse artifacts.
type File struct {
	FileName         string         // the .go filename (no directory)
	RelativeFileName string         // filename relative to the module, slash separated. ex: 'internal/foo/foo.go'
	AbsolutePath     string         // ex: '/path/to/foo.go'
	Contents         []byte         // full file contents
	PackageName      string         // the package name declared at the top of the file
	AST              *ast.File      // set by Parse
	FileSet          *token.FileSet // the FileSet used by Parse
}

// Parse parses f.Contents (with comments) and sets f.AST, f.FileSet and f.PackageName. If fset is nil, a new one is created.
func (f *File) Parse(fset *token.FileSet) (*ast.File, error) {
	if fset == nil {
		fset = token.NewFileSet()
	}
	astFile, err := parser.ParseFile(fset, f.AbsolutePath, f.Contents, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("failed to parse file %s: %w", f.FileName, err)
	}
	f.AST = astFile
	f.FileSet = fset
	f.PackageName = astFile.Name.Name
	return astFile, nil
}

// RawComment returns the unparsed text of cg in f, including comment markers, or "" if cg is nil. f must have been parsed.
func (f *File) RawComment(cg *ast.CommentGroup) string {
	return doccomment.RawComment(f.Contents, f.FileSet, cg)
}

// RawPackageDoc returns the raw doc comment attached to f's package clause, or "".
func (f *File) RawPackageDoc() string {
	if f.AST == nil {
		return ""
	}
	return f.RawComment(f.AST.Doc)
}

// IsCodeGenerated reports whether the File was created by code generation tools.
func (f *File) IsCodeGenerated() bool {
	return genRE.Match(f.Contents)
}
