package converter

import (
	"go/ast"

	"github.com/codalotl/docmodules/internal/doctree"
	"github.com/codalotl/docmodules/internal/gocode"
)

// CompilerOptions are path options that override base-directory inference. They mirror a compiler's rootDir and baseUrl settings.
type CompilerOptions struct {
	RootDir string // if set, used as the base directory verbatim
	BaseURL string // used when RootDir is empty
}

// Context is shared by the converter and every component for the duration of one conversion.
type Context struct {
	Project     *doctree.Project
	Symbols     *doctree.SymbolIndex
	Module      *gocode.Module
	EntryPoints []string // absolute paths of every Go file being documented, in package then filename order
	WorkDir     string   // absolute working directory; relative entry points resolve against it

	options CompilerOptions
}

// CompilerOptions returns the path options in effect for this conversion.
func (c *Context) CompilerOptions() CompilerOptions {
	return c.options
}

// Declaration is the syntax-side view of a node passed to Component.OnDeclaration.
type Declaration struct {
	Package *gocode.Package
	File    *gocode.File     // the file the node is declared in; for packages, the primary file
	Node    ast.Node         // *ast.File for packages, else the *ast.TypeSpec, *ast.ValueSpec, or *ast.FuncDecl
	Symbol  doctree.SymbolID // the symbol the node represents

	raw string
}

// RawComment returns the unparsed comment text attached to the declaration, including comment markers, or "". For a package it is every package-clause doc
// comment, in filename order.
func (d Declaration) RawComment() string {
	return d.raw
}

// Component receives the converter's lifecycle callbacks. Callbacks are invoked serially: OnBegin once, OnDeclaration once per node in creation order, then
// OnResolveBegin once after every node exists. Returning an error aborts the conversion.
type Component interface {
	OnBegin(ctx *Context) error
	OnDeclaration(ctx *Context, node *doctree.Node, decl Declaration) error
	OnResolveBegin(ctx *Context) error
}
