package doctree

import (
	"errors"
	"fmt"
	"sort"
)

// Project is the root of a documentation tree. Reflections holds every node created through the project and not yet removed, including synthesized namespaces,
// keyed by ID. The root itself is not in Reflections.
//
// Invariant: the set of nodes reachable from Root via Children equals the set of values in Reflections.
type Project struct {
	Root        *Node
	Reflections map[ID]*Node
	nextID      ID
}

// NewProject returns an empty project whose root is named name.
func NewProject(name string) *Project {
	return &Project{
		Root:        &Node{ID: 0, Name: name, Kind: KindProject},
		Reflections: make(map[ID]*Node),
		nextID:      1,
	}
}

// CreateChildReflection returns a new node of the given kind and name with a fresh ID, Parent set to parent, and empty Children. The node is neither appended
// to parent.Children nor registered in Reflections; callers do that with Attach and Register.
func (p *Project) CreateChildReflection(parent *Node, name string, kind Kind) *Node {
	n := &Node{
		ID:       p.nextID,
		Name:     name,
		Kind:     kind,
		Parent:   parent,
		Children: []*Node{},
	}
	p.nextID++
	return n
}

// AddChild creates a node, registers it, and attaches it to parent in a single step.
func (p *Project) AddChild(parent *Node, name string, kind Kind) *Node {
	n := p.CreateChildReflection(parent, name, kind)
	p.Register(n)
	p.Attach(parent, n)
	return n
}

// Register inserts n into Reflections.
func (p *Project) Register(n *Node) {
	p.Reflections[n.ID] = n
}

// Attach appends n to parent.Children and points n.Parent at parent. n must not currently be a child of another node; use Reparent for that.
func (p *Project) Attach(parent, n *Node) {
	n.Parent = parent
	parent.Children = append(parent.Children, n)
}

// Detach removes n from its parent's Children and clears n.Parent. It is a no-op for a node with no parent.
func (p *Project) Detach(n *Node) {
	parent := n.Parent
	if parent == nil {
		return
	}
	for i, c := range parent.Children {
		if c == n {
			parent.Children = append(parent.Children[:i], parent.Children[i+1:]...)
			break
		}
	}
	n.Parent = nil
}

// Reparent moves n (and its subtree) to the end of newParent.Children. It panics if newParent is n or inside n's subtree.
func (p *Project) Reparent(n, newParent *Node) {
	if newParent == n || newParent.IsDescendantOf(n) {
		panic(fmt.Sprintf("doctree: cannot move node %d beneath itself", n.ID))
	}
	p.Detach(n)
	p.Attach(newParent, n)
}

// RemoveReflection fully deletes n: it is detached from its parent, deleted from Reflections, and its Children are cleared. Any children n still had are NOT
// removed from Reflections; relocate them first.
func (p *Project) RemoveReflection(n *Node) {
	p.Detach(n)
	delete(p.Reflections, n.ID)
	n.Children = n.Children[:0]
}

// Lookup returns the node with the given ID, if registered.
func (p *Project) Lookup(id ID) (*Node, bool) {
	n, ok := p.Reflections[id]
	return n, ok
}

// Nodes returns every registered node sorted by ID.
func (p *Project) Nodes() []*Node {
	out := make([]*Node, 0, len(p.Reflections))
	for _, n := range p.Reflections {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Validate checks the structural invariants of p:
//   - every child's Parent points at the node whose Children contains it, and a node appears once in that slice
//   - the tree is acyclic
//   - the nodes reachable from Root are exactly the nodes in Reflections, under their own IDs
//   - no two namespace-like siblings share both kind and name
//
// Sibling uniqueness is only checked for modules and namespaces. Merging two packages moves all of their declarations under one node, so two functions named New can end up
// as siblings; both are kept, each under its own ID and symbol.
//
// It returns an error describing the first few violations found, or nil.
func (p *Project) Validate() error {
	var errs []error
	seen := make(map[*Node]bool)

	var visit func(n *Node)
	visit = func(n *Node) {
		type key struct {
			kind Kind
			name string
		}
		siblings := make(map[key]bool)
		for _, c := range n.Children {
			if c.Parent != n {
				errs = append(errs, fmt.Errorf("node %d (%s) is a child of %d but its parent is %s", c.ID, c.Name, n.ID, describe(c.Parent)))
			}
			if seen[c] {
				errs = append(errs, fmt.Errorf("node %d (%s) is reachable more than once", c.ID, c.Name))
				continue
			}
			seen[c] = true
			if c.Kind.IsModuleOrNamespace() {
				k := key{c.Kind, c.Name}
				if siblings[k] {
					errs = append(errs, fmt.Errorf("node %d has two %s children named %q", n.ID, c.Kind, c.Name))
				}
				siblings[k] = true
			}
			if reg, ok := p.Reflections[c.ID]; !ok || reg != c {
				errs = append(errs, fmt.Errorf("node %d (%s) is reachable but not registered", c.ID, c.Name))
			}
			visit(c)
		}
	}
	seen[p.Root] = true
	visit(p.Root)

	for _, n := range p.Nodes() {
		if p.Reflections[n.ID] != n {
			errs = append(errs, fmt.Errorf("node %d is not registered under its own id", n.ID))
		}
		if !seen[n] {
			errs = append(errs, fmt.Errorf("node %d (%s) is registered but not reachable", n.ID, n.Name))
		}
	}

	if len(errs) > 5 {
		errs = append(errs[:5], fmt.Errorf("and %d more", len(errs)-5))
	}
	return errors.Join(errs...)
}

func describe(n *Node) string {
	if n == nil {
		return "nil"
	}
	return fmt.Sprintf("%d (%s)", n.ID, n.Name)
}
