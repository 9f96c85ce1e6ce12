package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/codalotl/docmodules/internal/doctree"

	"github.com/fatih/color"
)

// TextOptions control Text.
type TextOptions struct {
	Width int  // maximum line width in cells; <= 0 means unlimited
	Color bool // colorize kinds and IDs with ANSI escapes
}

// Text writes project as an indented tree, one node per line:
//
//	mymodule
//	  utils               namespace #4
//	    helpers           module #1     Package b is better.
//	      FromA           function #2
//
// Names, kinds, and short comments are aligned in columns by display width. The short comment is truncated to fit opts.Width and omitted if no room is left.
func Text(w io.Writer, project *doctree.Project, opts TextOptions) error {
	type row struct {
		label string
		kind  string
		short string
	}
	var rows []row
	nameWidth, kindWidth := 0, 0

	var visit func(n *doctree.Node, depth int)
	visit = func(n *doctree.Node, depth int) {
		r := row{label: strings.Repeat("  ", depth) + displayName(n.Name)}
		if n.Kind != doctree.KindProject {
			r.kind = fmt.Sprintf("%s #%d", n.Kind, n.ID)
		}
		if n.Comment != nil {
			r.short = strings.Join(strings.Fields(n.Comment.ShortText), " ")
		}
		nameWidth = max(nameWidth, textWidth(r.label))
		kindWidth = max(kindWidth, textWidth(r.kind))
		rows = append(rows, r)
		for _, c := range n.Children {
			visit(c, depth+1)
		}
	}
	visit(project.Root, 0)

	kindColor := color.New(color.FgCyan)
	if opts.Color {
		kindColor.EnableColor()
	} else {
		kindColor.DisableColor()
	}

	room := shortRoom(opts.Width, nameWidth, kindWidth)
	for _, r := range rows {
		var line strings.Builder
		switch {
		case r.kind == "":
			line.WriteString(r.label)
		case r.short == "" || room == 0:
			line.WriteString(padRight(r.label, nameWidth))
			line.WriteString("  ")
			line.WriteString(kindColor.Sprint(r.kind))
		default:
			line.WriteString(padRight(r.label, nameWidth))
			line.WriteString("  ")
			line.WriteString(kindColor.Sprint(padRight(r.kind, kindWidth)))
			line.WriteString("  ")
			line.WriteString(truncate(r.short, room))
		}
		line.WriteByte('\n')
		if _, err := io.WriteString(w, line.String()); err != nil {
			return err
		}
	}
	return nil
}

// shortRoom returns the cells left for a short comment: -1 for unlimited, 0 for none.
func shortRoom(width, nameWidth, kindWidth int) int {
	if width <= 0 {
		return -1
	}
	room := width - nameWidth - 2 - kindWidth - 2
	if room < 2 {
		return 0
	}
	return room
}

// displayName quotes names that would otherwise be invisible.
func displayName(name string) string {
	if strings.TrimSpace(name) == "" {
		return fmt.Sprintf("%q", name)
	}
	return name
}
