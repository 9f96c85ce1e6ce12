package modulename

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/codalotl/docmodules/internal/converter"
	"github.com/codalotl/docmodules/internal/doctree"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// CustomScriptFilename is the file, relative to the working directory, that may hold a custom naming expression.
//
// The file contains one expr-lang expression (https://expr-lang.org) evaluated per module with these variables:
//
//	explicit  string  value of the first @module tag, or ""
//	guess     string  directory-based guess, or "" when automatic naming is disabled
//	file      string  absolute path of the module's primary source file
//	node      object  name, kind, id, path, and package (the Go package name)
//
// It must evaluate to a string or nil; "" and nil mean "do not rename". Example:
//
//	explicit != "" ? explicit : replace(trimPrefix(guess, "internal/"), "/", ".")
const CustomScriptFilename = "." + PluginName + ".expr"

// ErrCustomFunc wraps every failure to load or run the custom naming expression.
var ErrCustomFunc = errors.New("custom module name mapping function")

type nodeEnv struct {
	Name    string `expr:"name"`
	Kind    string `expr:"kind"`
	ID      int    `expr:"id"`
	Path    string `expr:"path"`
	Package string `expr:"package"`
}

type nameEnv struct {
	Explicit string  `expr:"explicit"`
	Guess    string  `expr:"guess"`
	File     string  `expr:"file"`
	Node     nodeEnv `expr:"node"`
}

// LoadCustomNameFunc compiles the expression in the file at path into a NameFunc.
func LoadCustomNameFunc(path string) (NameFunc, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCustomFunc, err)
	}
	if strings.TrimSpace(string(src)) == "" {
		return nil, fmt.Errorf("%w: %s is empty", ErrCustomFunc, path)
	}
	program, err := expr.Compile(string(src), expr.Env(nameEnv{}))
	if err != nil {
		return nil, fmt.Errorf("%w: compile %s: %w", ErrCustomFunc, filepath.Base(path), err)
	}
	return exprNameFunc(program), nil
}

func exprNameFunc(program *vm.Program) NameFunc {
	return func(explicit, guess, filePath string, node *doctree.Node, ctx *converter.Context) (string, error) {
		env := nameEnv{
			Explicit: explicit,
			Guess:    guess,
			File:     filePath,
			Node: nodeEnv{
				Name: node.Name,
				Kind: node.Kind.String(),
				ID:   int(node.ID),
				Path: node.Path(),
			},
		}
		if ctx != nil && ctx.Module != nil {
			if pkg, ok := ctx.Module.Packages[node.Name]; ok {
				env.Node.Package = pkg.Name
			}
		}

		out, err := expr.Run(program, env)
		if err != nil {
			return "", fmt.Errorf("%w: %s: %w", ErrCustomFunc, node.Name, err)
		}
		switch v := out.(type) {
		case nil:
			return "", nil
		case string:
			return v, nil
		default:
			return "", fmt.Errorf("%w: %s: expression returned %T, want string", ErrCustomFunc, node.Name, out)
		}
	}
}
