package modulename

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/codalotl/docmodules/internal/converter"
	"github.com/codalotl/docmodules/internal/doctree"
	"github.com/codalotl/docmodules/internal/simplelogger"

	"github.com/fatih/color"
)

// PluginName prefixes console messages and names the custom script file.
const PluginName = "docmodules"

var logger = simplelogger.Prefix("modulename")

// Options configure a Plugin.
type Options struct {
	// DisableAutoModuleName turns off directory-based guessing; only explicit @module tags (or the custom function) then name modules.
	DisableAutoModuleName bool

	// WorkDir is searched for CustomScriptFilename. Defaults to the process working directory.
	WorkDir string

	// NameFunc, if set, is used instead of any custom script or DefaultNameFunc.
	NameFunc NameFunc

	// Out and Err receive console messages. They default to os.Stdout and os.Stderr.
	Out io.Writer
	Err io.Writer
}

// Plugin is a converter.Component that renames and merges module nodes. It collects a RenameRequest for every module as the converter announces it, and applies
// all of them with MergeRenames when resolution begins.
type Plugin struct {
	disableAutoModuleName bool
	nameFunc              NameFunc
	baseDir               string
	moduleRenames         []RenameRequest
}

var _ converter.Component = (*Plugin)(nil)

// New returns a Plugin. If opts.NameFunc is nil and CustomScriptFilename exists in the working directory, it is loaded; a present but unloadable file is reported
// on opts.Err and returned as an error wrapping ErrCustomFunc, which callers should treat as fatal.
func New(opts Options) (*Plugin, error) {
	out, errW := opts.Out, opts.Err
	if out == nil {
		out = os.Stdout
	}
	if errW == nil {
		errW = os.Stderr
	}

	p := &Plugin{
		disableAutoModuleName: opts.DisableAutoModuleName,
		nameFunc:              opts.NameFunc,
	}
	if p.nameFunc != nil {
		return p, nil
	}
	p.nameFunc = DefaultNameFunc

	workDir := opts.WorkDir
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("get working directory: %w", err)
		}
		workDir = wd
	}

	pathToScript := filepath.Join(workDir, CustomScriptFilename)
	if _, err := os.Stat(pathToScript); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return p, nil
		}
		// An unreadable file is still a present file.
	}

	fn, err := LoadCustomNameFunc(pathToScript)
	if err != nil {
		color.New(color.FgRed).Fprintf(errW, "%s: Failed to load custom module name mapping function from %s\n", PluginName, pathToScript)
		return nil, err
	}
	p.nameFunc = fn
	fmt.Fprintf(out, "%s: Using custom module name mapping function from %s\n", PluginName, color.CyanString(pathToScript))
	return p, nil
}

// OnBegin computes the base directory from the run's entry points.
func (p *Plugin) OnBegin(ctx *converter.Context) error {
	p.baseDir = BaseDir(ctx.EntryPoints, ctx.WorkDir, ctx.CompilerOptions())
	p.moduleRenames = nil
	logger.Log("base dir %s (%d entry points)", p.baseDir, len(ctx.EntryPoints))
	return nil
}

// OnDeclaration records a rename for every namespace-like node that resolves to a name, and strips @module and @preferred from every node's comment.
func (p *Plugin) OnDeclaration(ctx *converter.Context, node *doctree.Node, decl converter.Declaration) error {
	if node.Kind.IsModuleOrNamespace() {
		name, preferred, err := p.ModuleName(ctx, node, decl)
		if err != nil {
			return err
		}
		if name != "" {
			p.moduleRenames = append(p.moduleRenames, RenameRequest{
				RenameTo:  name,
				Preferred: preferred,
				Symbol:    decl.Symbol,
				Node:      node,
			})
		}
	}
	stripAnnotationTags(node)
	return nil
}

// OnResolveBegin applies every pending rename, in the order they were recorded, then discards them.
func (p *Plugin) OnResolveBegin(ctx *converter.Context) error {
	MergeRenames(ctx.Project, ctx.Symbols, p.moduleRenames)
	p.moduleRenames = nil
	return nil
}

// BaseDir returns the base directory computed by the last OnBegin.
func (p *Plugin) BaseDir() string {
	return p.baseDir
}

// Requests returns the renames recorded so far and not yet applied.
func (p *Plugin) Requests() []RenameRequest {
	out := make([]RenameRequest, len(p.moduleRenames))
	copy(out, p.moduleRenames)
	return out
}

// stripAnnotationTags removes the @module and @preferred tags from n's comment and drops the comment if nothing is left.
func stripAnnotationTags(n *doctree.Node) {
	if !n.Comment.HasTag(moduleTag) && !n.Comment.HasTag(preferredTag) {
		return
	}
	n.Comment.RemoveTags(moduleTag)
	n.Comment.RemoveTags(preferredTag)
	if n.Comment.IsEmpty() {
		n.Comment = nil
	}
}
