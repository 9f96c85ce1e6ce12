// Package doccomment extracts raw doc comments from Go source and parses them into doctree.Comment values.
//
// Raw comments keep their "//" or "/* */" markers so that annotation matching sees exactly what the author wrote. Parsing strips the markers, splits off block
// tags (lines starting with "@name"), and splits the remaining prose into a short text (the first Markdown paragraph) and a long text (everything after it).
package doccomment

import (
	"bytes"
	goast "go/ast"
	"go/token"
	"regexp"
	"strings"

	"github.com/codalotl/docmodules/internal/doctree"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// RawComment returns the unparsed text of cg as it appears in src, including comment markers. It returns "" if cg is nil or its positions don't map into src.
// fset must be the FileSet src was parsed with.
func RawComment(src []byte, fset *token.FileSet, cg *goast.CommentGroup) string {
	if cg == nil || fset == nil {
		return ""
	}
	start := fset.Position(cg.Pos()).Offset
	end := fset.Position(cg.End()).Offset
	if start < 0 || end > len(src) || start >= end {
		return ""
	}
	return string(src[start:end])
}

// Text strips comment markers from raw and returns the comment body. Both line comments ("// x") and block comments ("/* x */", including the "/** ... */"
// style with leading " * " on each line) are supported. Lines that are not comments are kept as-is.
func Text(raw string) string {
	var out []string
	inBlock := false
	for _, line := range strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n") {
		trimmed := strings.TrimLeft(line, " \t")
		switch {
		case inBlock:
			body, closed := strings.CutSuffix(strings.TrimRight(trimmed, " \t"), "*/")
			if closed {
				inBlock = false
			}
			body = strings.TrimRight(stripStar(body), " \t")
			if closed && strings.TrimSpace(body) == "" {
				continue
			}
			out = append(out, body)
		case strings.HasPrefix(trimmed, "//"):
			out = append(out, stripOneSpace(trimmed[2:]))
		case strings.HasPrefix(trimmed, "/*"):
			body := strings.TrimPrefix(trimmed[2:], "*") // "/**"
			body, closed := strings.CutSuffix(strings.TrimRight(body, " \t"), "*/")
			if !closed {
				inBlock = true
			}
			if strings.TrimSpace(body) == "" {
				continue
			}
			out = append(out, stripOneSpace(strings.TrimRight(body, " \t")))
		default:
			out = append(out, line)
		}
	}
	return strings.Trim(strings.Join(out, "\n"), "\n")
}

func stripOneSpace(s string) string {
	if strings.HasPrefix(s, " ") {
		return s[1:]
	}
	return s
}

// stripStar removes a leading " * " decoration from a line inside a block comment.
func stripStar(s string) string {
	t := strings.TrimLeft(s, " \t")
	if strings.HasPrefix(t, "*") {
		return stripOneSpace(t[1:])
	}
	return s
}

// tagLineRE matches a line that opens a block tag, capturing the tag name and the rest of the line.
var tagLineRE = regexp.MustCompile(`^\s*@([A-Za-z][\w-]*)\s*(.*)$`)

// Parse parses raw (a comment as returned by RawComment, with or without markers) into a Comment. It returns nil if the comment has no content.
//
// Every line from the first tag line onward belongs to a tag: a tag's Text is the rest of its opening line plus any following lines up to the next tag line.
func Parse(raw string) *doctree.Comment {
	body := Text(raw)
	if strings.TrimSpace(body) == "" {
		return nil
	}

	var prose []string
	var tags []doctree.Tag
	var tagText []string
	flush := func() {
		if len(tags) == 0 {
			return
		}
		tags[len(tags)-1].Text = strings.TrimSpace(strings.Join(tagText, "\n"))
		tagText = nil
	}
	for _, line := range strings.Split(body, "\n") {
		if m := tagLineRE.FindStringSubmatch(line); m != nil {
			flush()
			tags = append(tags, doctree.Tag{Name: m[1]})
			tagText = []string{m[2]}
			continue
		}
		if len(tags) > 0 {
			tagText = append(tagText, line)
			continue
		}
		prose = append(prose, line)
	}
	flush()

	c := &doctree.Comment{Tags: tags}
	c.ShortText, c.Text = splitProse(strings.Join(prose, "\n"))
	if c.IsEmpty() {
		return nil
	}
	return c
}

// splitProse returns the first Markdown paragraph of prose as short, and the remainder as long. If prose does not start with a paragraph (ex: a heading or code
// block), short is empty and all of prose is long.
func splitProse(prose string) (short, long string) {
	src := []byte(strings.TrimSpace(prose))
	if len(src) == 0 {
		return "", ""
	}

	root := goldmark.New().Parser().Parse(text.NewReader(src))
	first := root.FirstChild()
	if first == nil {
		return "", string(src)
	}
	para, ok := first.(*ast.Paragraph)
	if !ok || para.Lines().Len() == 0 {
		return "", string(src)
	}

	lines := para.Lines()
	var b bytes.Buffer
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(src))
	}
	end := lines.At(lines.Len() - 1).Stop
	short = strings.Join(strings.Fields(b.String()), " ")
	long = strings.TrimSpace(string(src[end:]))
	return short, long
}
