// Package converter builds a doctree.Project from loaded Go packages and drives Components through the conversion lifecycle.
//
// Each package becomes a KindModule node directly under the project root, named by its import path. Exported top-level declarations become its children; methods
// hang off their receiver type. Every node is announced to components via OnDeclaration right after it is attached, so components see nodes in creation order.
package converter

import (
	"context"
	"fmt"
	"go/ast"
	"go/token"
	"path/filepath"

	"github.com/codalotl/docmodules/internal/doccomment"
	"github.com/codalotl/docmodules/internal/doctree"
	"github.com/codalotl/docmodules/internal/gocode"
	"github.com/codalotl/docmodules/internal/simplelogger"
)

var logger = simplelogger.Prefix("converter")

// Options configure a Converter.
type Options struct {
	CompilerOptions CompilerOptions
	WorkDir         string // if empty, the module root is used
}

// Converter converts Go packages into a documentation tree.
type Converter struct {
	opts       Options
	components []Component
}

// New returns a Converter that notifies components, in order, at each lifecycle point.
func New(opts Options, components ...Component) *Converter {
	return &Converter{opts: opts, components: components}
}

// Convert builds a Project for pkgs (which must belong to mod) and returns the conversion Context. Components run in this order: OnBegin for all, OnDeclaration
// for all per node, OnResolveBegin for all once every node exists. The first component error aborts the conversion.
//
// ctx is checked between packages; components themselves are not cancellable.
func (c *Converter) Convert(ctx context.Context, mod *gocode.Module, pkgs []*gocode.Package) (*Context, error) {
	workDir := c.opts.WorkDir
	if workDir == "" {
		workDir = mod.AbsolutePath
	}
	workDir, err := filepath.Abs(workDir)
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}

	cctx := &Context{
		Project: doctree.NewProject(mod.Name),
		Symbols: doctree.NewSymbolIndex(),
		Module:  mod,
		WorkDir: workDir,
		options: c.opts.CompilerOptions,
	}
	for _, pkg := range pkgs {
		for _, f := range pkg.SortedFiles() {
			cctx.EntryPoints = append(cctx.EntryPoints, f.AbsolutePath)
		}
	}

	for _, comp := range c.components {
		if err := comp.OnBegin(cctx); err != nil {
			return nil, fmt.Errorf("begin: %w", err)
		}
	}

	for _, pkg := range pkgs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := c.convertPackage(cctx, pkg); err != nil {
			return nil, fmt.Errorf("convert %s: %w", pkg.ImportPath, err)
		}
	}

	for _, comp := range c.components {
		if err := comp.OnResolveBegin(cctx); err != nil {
			return nil, fmt.Errorf("resolve: %w", err)
		}
	}
	return cctx, nil
}

// declare creates a node under parent, maps decl.Symbol to it, and notifies components.
func (c *Converter) declare(cctx *Context, parent *doctree.Node, name string, kind doctree.Kind, decl Declaration) (*doctree.Node, error) {
	n := cctx.Project.AddChild(parent, name, kind)
	n.Comment = doccomment.Parse(decl.raw)
	if decl.File != nil {
		n.Sources = []doctree.Source{sourceOf(decl.File)}
	}
	if kind == doctree.KindModule && decl.File != nil {
		// Packages list every file, primary first.
		for _, f := range decl.Package.SortedFiles() {
			if f != decl.File {
				n.Sources = append(n.Sources, sourceOf(f))
			}
		}
	}
	cctx.Symbols.Set(decl.Symbol, n)

	for _, comp := range c.components {
		if err := comp.OnDeclaration(cctx, n, decl); err != nil {
			return nil, err
		}
	}
	return n, nil
}

func sourceOf(f *gocode.File) doctree.Source {
	return doctree.Source{FileName: f.RelativeFileName, FullFileName: f.AbsolutePath}
}

func (c *Converter) convertPackage(cctx *Context, pkg *gocode.Package) error {
	primary := pkg.PrimaryFile()
	decl := Declaration{
		Package: pkg,
		File:    primary,
		Symbol:  doctree.SymbolID(pkg.ImportPath),
		raw:     pkg.RawPackageDoc(),
	}
	if primary != nil {
		decl.Node = primary.AST
	}

	pkgNode, err := c.declare(cctx, cctx.Project.Root, pkg.ImportPath, doctree.KindModule, decl)
	if err != nil {
		return err
	}
	logger.Log("package %s -> node %d", pkg.ImportPath, pkgNode.ID)

	files := pkg.SortedFiles()
	typeNodes := make(map[string]*doctree.Node)

	for _, f := range files {
		for _, d := range f.AST.Decls {
			gd, ok := d.(*ast.GenDecl)
			if !ok {
				continue
			}
			if err := c.convertGenDecl(cctx, pkgNode, pkg, f, gd, typeNodes); err != nil {
				return err
			}
		}
	}

	for _, f := range files {
		for _, d := range f.AST.Decls {
			fd, ok := d.(*ast.FuncDecl)
			if !ok || !fd.Name.IsExported() {
				continue
			}
			if err := c.convertFunc(cctx, pkgNode, pkg, f, fd, typeNodes); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Converter) convertGenDecl(cctx *Context, pkgNode *doctree.Node, pkg *gocode.Package, f *gocode.File, gd *ast.GenDecl, typeNodes map[string]*doctree.Node) error {
	// A doc comment on an unparenthesized declaration belongs to its only spec.
	docFor := func(specDoc *ast.CommentGroup) *ast.CommentGroup {
		if specDoc != nil {
			return specDoc
		}
		if !gd.Lparen.IsValid() {
			return gd.Doc
		}
		return nil
	}

	for _, spec := range gd.Specs {
		switch s := spec.(type) {
		case *ast.TypeSpec:
			if !s.Name.IsExported() {
				continue
			}
			n, err := c.declare(cctx, pkgNode, s.Name.Name, doctree.KindType, Declaration{
				Package: pkg,
				File:    f,
				Node:    s,
				Symbol:  doctree.SymbolID(pkg.ImportPath + "." + s.Name.Name),
				raw:     f.RawComment(docFor(s.Doc)),
			})
			if err != nil {
				return err
			}
			typeNodes[s.Name.Name] = n
		case *ast.ValueSpec:
			kind := doctree.KindVariable
			if gd.Tok == token.CONST {
				kind = doctree.KindConstant
			}
			for _, name := range s.Names {
				if !name.IsExported() {
					continue
				}
				_, err := c.declare(cctx, pkgNode, name.Name, kind, Declaration{
					Package: pkg,
					File:    f,
					Node:    s,
					Symbol:  doctree.SymbolID(pkg.ImportPath + "." + name.Name),
					raw:     f.RawComment(docFor(s.Doc)),
				})
				if err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (c *Converter) convertFunc(cctx *Context, pkgNode *doctree.Node, pkg *gocode.Package, f *gocode.File, fd *ast.FuncDecl, typeNodes map[string]*doctree.Node) error {
	decl := Declaration{
		Package: pkg,
		File:    f,
		Node:    fd,
		raw:     f.RawComment(fd.Doc),
	}

	if fd.Recv == nil || len(fd.Recv.List) == 0 {
		decl.Symbol = doctree.SymbolID(pkg.ImportPath + "." + fd.Name.Name)
		_, err := c.declare(cctx, pkgNode, fd.Name.Name, doctree.KindFunction, decl)
		return err
	}

	recv := receiverTypeName(fd.Recv.List[0].Type)
	if !ast.IsExported(recv) {
		return nil
	}
	decl.Symbol = doctree.SymbolID(pkg.ImportPath + "." + recv + "." + fd.Name.Name)
	parent := typeNodes[recv]
	if parent == nil {
		parent = pkgNode
	}
	_, err := c.declare(cctx, parent, fd.Name.Name, doctree.KindMethod, decl)
	return err
}

// receiverTypeName returns the base type name of a method receiver expression: "T" for T, *T, T[K], and *T[K, V].
func receiverTypeName(expr ast.Expr) string {
	for {
		switch e := expr.(type) {
		case *ast.StarExpr:
			expr = e.X
		case *ast.ParenExpr:
			expr = e.X
		case *ast.IndexExpr:
			expr = e.X
		case *ast.IndexListExpr:
			expr = e.X
		case *ast.Ident:
			return e.Name
		default:
			return ""
		}
	}
}
