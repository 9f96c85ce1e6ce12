package doctree

import "sort"

// SymbolID is an opaque reference to a source symbol, supplied by the host. For Go code it is an import path ("example.com/m/foo") for a package or an
// import path plus identifier ("example.com/m/foo.Bar", "example.com/m/foo.Bar.Method") for a declaration.
type SymbolID string

// SymbolIndex maps source symbols to the node currently representing them. The zero value is not usable; create one with NewSymbolIndex.
type SymbolIndex struct {
	m map[SymbolID]*Node
}

func NewSymbolIndex() *SymbolIndex {
	return &SymbolIndex{m: make(map[SymbolID]*Node)}
}

// Set points sym at n, replacing any previous mapping.
func (s *SymbolIndex) Set(sym SymbolID, n *Node) {
	s.m[sym] = n
}

// Repoint maps every symbol currently pointing at from to to instead, and returns how many were changed.
func (s *SymbolIndex) Repoint(from, to *Node) int {
	changed := 0
	for sym, n := range s.m {
		if n == from {
			s.m[sym] = to
			changed++
		}
	}
	return changed
}

// Lookup returns the node sym maps to.
func (s *SymbolIndex) Lookup(sym SymbolID) (*Node, bool) {
	n, ok := s.m[sym]
	return n, ok
}

func (s *SymbolIndex) Len() int {
	return len(s.m)
}

// Symbols returns every mapped symbol, sorted.
func (s *SymbolIndex) Symbols() []SymbolID {
	out := make([]SymbolID, 0, len(s.m))
	for sym := range s.m {
		out = append(out, sym)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
