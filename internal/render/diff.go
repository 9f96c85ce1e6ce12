package render

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Diff returns a line diff from before to after. Every line of both inputs appears once, prefixed with "  " (unchanged), "- " (only in before), or "+ " (only
// in after). Identical inputs yield "".
func Diff(before, after string) string {
	if before == after {
		return ""
	}

	dmp := diffmatchpatch.New()
	rBefore, rAfter, lineArray := dmp.DiffLinesToRunes(before, after)
	diffs := dmp.DiffCleanupMerge(dmp.DiffMainRunes(rBefore, rAfter, false))

	var b strings.Builder
	for _, d := range diffs {
		prefix := "  "
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "- "
		case diffmatchpatch.DiffInsert:
			prefix = "+ "
		}
		for _, r := range d.Text {
			idx := int(r)
			if idx < 0 || idx >= len(lineArray) {
				continue
			}
			line := lineArray[idx]
			b.WriteString(prefix)
			b.WriteString(line)
			if !strings.HasSuffix(line, "\n") {
				b.WriteByte('\n')
			}
		}
	}
	return b.String()
}
