package modulename

import (
	"strings"

	"github.com/codalotl/docmodules/internal/doctree"
	"github.com/codalotl/docmodules/internal/simplelogger"
)

// RenameRequest is a pending rename of Node to the dotted path RenameTo.
type RenameRequest struct {
	RenameTo  string
	Preferred bool             // Node's comment replaces the merge target's
	Symbol    doctree.SymbolID // repointed to Node's final representative
	Node      *doctree.Node
}

// MergeRenames applies requests to project in order. Each request moves its node to RenameTo, creating KindNamespace nodes for missing intermediate segments.
// If a node of the same kind already exists at the destination, the renaming node is merged into it: its children and sources move to the existing node, its
// symbols are repointed there, and it is removed from the project.
//
// Segments are split on "." without validation; an empty segment is a literal empty name. Requests whose node was already removed by an earlier merge are skipped.
func MergeRenames(project *doctree.Project, symbols *doctree.SymbolIndex, requests []RenameRequest) {
	for _, req := range requests {
		renaming := req.Node
		if renaming == nil {
			continue
		}
		if reg, ok := project.Lookup(renaming.ID); !ok || reg != renaming {
			logger.Log("skip %q: node %d no longer exists", req.RenameTo, renaming.ID)
			continue
		}

		segments := strings.Split(req.RenameTo, ".")
		last := segments[len(segments)-1]

		parent := walkPath(project, renaming, segments[:len(segments)-1])

		target := mergeTarget(parent, renaming, last)
		if target == nil {
			renaming.Name = last
			project.Reparent(renaming, parent)
			if req.Symbol != "" {
				symbols.Set(req.Symbol, renaming)
			}
			if simplelogger.Enabled() {
				logger.Log("renamed node %d to %s", renaming.ID, renaming.Path())
			}
			continue
		}

		if req.Symbol != "" {
			symbols.Set(req.Symbol, target)
		}
		symbols.Repoint(renaming, target)

		children := make([]*doctree.Node, len(renaming.Children))
		copy(children, renaming.Children)
		for _, c := range children {
			project.Reparent(c, target)
		}
		target.Sources = append(target.Sources, renaming.Sources...)

		if req.Preferred {
			target.Comment = renaming.Comment
		}
		project.RemoveReflection(renaming)
		stripAnnotationTags(target)

		if simplelogger.Enabled() {
			logger.Log("merged node %d into %d (%s, preferred=%t)", renaming.ID, target.ID, target.Path(), req.Preferred)
		}
	}
}

// walkPath descends from the project root through segments, creating a KindNamespace node for each segment with no existing child of that name. The renaming
// node is never descended into, so a node cannot be moved beneath itself.
func walkPath(project *doctree.Project, renaming *doctree.Node, segments []string) *doctree.Node {
	cur := project.Root
	for _, seg := range segments {
		next := cur.ChildByName(seg, renaming)
		if next == nil {
			next = project.CreateChildReflection(cur, seg, doctree.KindNamespace)
			project.Register(next)
			project.Attach(cur, next)
		}
		cur = next
	}
	return cur
}

// mergeTarget returns the child of parent, other than renaming, with renaming's kind and the given name.
func mergeTarget(parent, renaming *doctree.Node, name string) *doctree.Node {
	for _, c := range parent.Children {
		if c != renaming && c.Kind == renaming.Kind && c.Name == name {
			return c
		}
	}
	return nil
}
