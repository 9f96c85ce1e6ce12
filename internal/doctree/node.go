package doctree

import "strings"

// ID identifies a Node uniquely within its Project. IDs are never reused, even after a node is removed.
type ID int

// Source is a file that contributed to a Node.
type Source struct {
	FileName     string // relative to the Go module root, ex: "internal/foo/foo.go"
	FullFileName string // absolute path
}

// Node is a node in the documentation tree. A node's Children slice owns its children; Parent is a back-reference and does not own. Mutate structure only
// through Project methods so that both ends of every link (and Project.Reflections) stay consistent.
type Node struct {
	ID       ID
	Name     string
	Kind     Kind
	Parent   *Node    // nil only for the project root or a detached node
	Children []*Node  // ordered
	Comment  *Comment // nil if the node has no comment
	Sources  []Source // Sources[0] is the primary source, if any
}

// Path returns the dotted path of names from the project root to n, excluding the root itself. Ex: "utils.helpers". The root's Path is "".
func (n *Node) Path() string {
	var parts []string
	for cur := n; cur != nil && cur.Kind != KindProject; cur = cur.Parent {
		parts = append(parts, cur.Name)
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, ".")
}

// ChildByName returns the first child of n named name, regardless of kind, or nil. The skip node, if non-nil, is never returned.
func (n *Node) ChildByName(name string, skip *Node) *Node {
	for _, c := range n.Children {
		if c != skip && c.Name == name {
			return c
		}
	}
	return nil
}

// ChildByKindAndName returns the first child of n with the given kind and name, or nil.
func (n *Node) ChildByKindAndName(kind Kind, name string) *Node {
	for _, c := range n.Children {
		if c.Kind == kind && c.Name == name {
			return c
		}
	}
	return nil
}

// IsDescendantOf reports whether ancestor is a strict ancestor of n, following Parent links.
func (n *Node) IsDescendantOf(ancestor *Node) bool {
	for cur := n.Parent; cur != nil; cur = cur.Parent {
		if cur == ancestor {
			return true
		}
	}
	return false
}

// Walk calls f for n and then each descendant in depth-first pre-order. If f returns false, the children of that node are not visited.
func (n *Node) Walk(f func(*Node) bool) {
	if !f(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(f)
	}
}

// PrimarySource returns the first source of n, and false if n has none.
func (n *Node) PrimarySource() (Source, bool) {
	if len(n.Sources) == 0 {
		return Source{}, false
	}
	return n.Sources[0], true
}
