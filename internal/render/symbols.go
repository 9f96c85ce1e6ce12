package render

import (
	"fmt"
	"io"

	"github.com/codalotl/docmodules/internal/doctree"
)

// Symbols writes one line per symbol in index, sorted by symbol: the symbol, then the dotted path and ID of the node it maps to. Symbols whose node is no longer
// part of project are marked "(removed)".
func Symbols(w io.Writer, project *doctree.Project, index *doctree.SymbolIndex) error {
	syms := index.Symbols()
	symWidth := 0
	for _, s := range syms {
		symWidth = max(symWidth, textWidth(string(s)))
	}

	for _, s := range syms {
		n, _ := index.Lookup(s)
		target := fmt.Sprintf("%s #%d", n.Path(), n.ID)
		if reg, ok := project.Lookup(n.ID); !ok || reg != n {
			target += " (removed)"
		}
		if _, err := fmt.Fprintf(w, "%s  %s\n", padRight(string(s), symWidth), target); err != nil {
			return err
		}
	}
	return nil
}
