// Package doctree is the documentation model: a Project owning a tree of Nodes, an ID-keyed registry of every node (Project.Reflections), and a SymbolIndex
// that maps source symbols to the nodes representing them.
//
// All structural edits (Attach, Detach, Reparent, RemoveReflection) go through Project so that parent links, children slices, and the registry change together.
// Project.Validate checks the resulting invariants and is meant for tests and debugging.
package doctree
