// Package gocode loads Go modules and packages from disk for documentation: it locates a module's go.mod, discovers package directories (by walking the tree or
// by resolving go list style patterns), and parses each package's non-test files with comments so later stages can read package and declaration doc comments.
package gocode
