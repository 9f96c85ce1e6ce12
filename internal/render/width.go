package render

import (
	"strings"

	"github.com/clipperhouse/uax29/v2/graphemes"
	"github.com/mattn/go-runewidth"
)

const ellipsis = "…"

var cond = newCondition()

func newCondition() *runewidth.Condition {
	c := runewidth.NewCondition()
	c.EastAsianWidth = false
	c.StrictEmojiNeutral = true
	return c
}

// textWidth returns how many terminal cells s occupies.
func textWidth(s string) int {
	return cond.StringWidth(s)
}

// padRight pads s with spaces to width cells. s is returned unchanged if it is already at least that wide.
func padRight(s string, width int) string {
	if w := textWidth(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

// truncate shortens s to at most width cells, ending it with an ellipsis when anything was dropped. Grapheme clusters are never split. A width <= 0 means no
// limit.
func truncate(s string, width int) string {
	if width <= 0 || textWidth(s) <= width {
		return s
	}
	limit := width - textWidth(ellipsis)
	if limit <= 0 {
		return ellipsis
	}

	var b strings.Builder
	used := 0
	iter := graphemes.FromString(s)
	for iter.Next() {
		g := iter.Value()
		w := cond.StringWidth(g)
		if used+w > limit {
			break
		}
		b.WriteString(g)
		used += w
	}
	return strings.TrimRight(b.String(), " ") + ellipsis
}
