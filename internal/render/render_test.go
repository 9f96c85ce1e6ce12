package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/codalotl/docmodules/internal/doctree"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleProject() (*doctree.Project, *doctree.SymbolIndex) {
	p := doctree.NewProject("proj")
	lib := p.AddChild(p.Root, "lib", doctree.KindModule)
	lib.Comment = &doctree.Comment{ShortText: "Lib does things.", Tags: []doctree.Tag{{Name: "see", Text: "ns"}}}
	lib.Sources = []doctree.Source{{FileName: "lib/lib.go", FullFileName: "/src/lib/lib.go"}}
	f := p.AddChild(lib, "F", doctree.KindFunction)
	p.AddChild(p.Root, "ns", doctree.KindNamespace)

	idx := doctree.NewSymbolIndex()
	idx.Set("m/lib", lib)
	idx.Set("m/lib.F", f)
	return p, idx
}

func TestText(t *testing.T) {
	p, _ := sampleProject()

	var buf bytes.Buffer
	require.NoError(t, Text(&buf, p, TextOptions{}))

	want := "" +
		"proj\n" +
		"  lib  module #1     Lib does things.\n" +
		"    F  function #2\n" +
		"  ns   namespace #3\n"
	assert.Equal(t, want, buf.String())
}

func TestTextTruncatesToWidth(t *testing.T) {
	p, _ := sampleProject()

	var buf bytes.Buffer
	require.NoError(t, Text(&buf, p, TextOptions{Width: 30}))
	assert.Contains(t, buf.String(), "  lib  module #1     Lib does…\n")

	buf.Reset()
	require.NoError(t, Text(&buf, p, TextOptions{Width: 10}))
	assert.Contains(t, buf.String(), "  lib  module #1\n")
}

func TestTextColor(t *testing.T) {
	p, _ := sampleProject()

	var buf bytes.Buffer
	require.NoError(t, Text(&buf, p, TextOptions{Color: true}))
	assert.Contains(t, buf.String(), "\x1b[36m")

	buf.Reset()
	require.NoError(t, Text(&buf, p, TextOptions{}))
	assert.NotContains(t, buf.String(), "\x1b[")
}

func TestTextQuotesBlankNames(t *testing.T) {
	p := doctree.NewProject("proj")
	p.AddChild(p.Root, "", doctree.KindNamespace)

	var buf bytes.Buffer
	require.NoError(t, Text(&buf, p, TextOptions{}))
	assert.Equal(t, "proj\n  \"\"  namespace #1\n", buf.String())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "short", truncate("short", 0))
	assert.Equal(t, "héllo…", truncate("héllo wörld", 6))
	assert.Equal(t, "日本語…", truncate("日本語テキスト", 7))
	assert.Equal(t, "日本…", truncate("日本語テキスト", 6))
	assert.Equal(t, "…", truncate("abc", 1))
}

func TestPadRight(t *testing.T) {
	assert.Equal(t, "ab  ", padRight("ab", 4))
	assert.Equal(t, "日 ", padRight("日", 3))
	assert.Equal(t, "toolong", padRight("toolong", 3))
}

func TestJSON(t *testing.T) {
	p, _ := sampleProject()

	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, p))

	var got jsonNode
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "proj", got.Name)
	assert.Equal(t, "project", got.Kind)
	require.Len(t, got.Children, 2)

	lib := got.Children[0]
	assert.Equal(t, doctree.ID(1), lib.ID)
	assert.Equal(t, []string{"lib/lib.go"}, lib.Sources)
	require.NotNil(t, lib.Comment)
	assert.Equal(t, "Lib does things.", lib.Comment.ShortText)
	assert.Equal(t, []jsonTag{{Name: "see", Text: "ns"}}, lib.Comment.Tags)
	require.Len(t, lib.Children, 1)
	assert.Equal(t, "function", lib.Children[0].Kind)

	assert.Nil(t, got.Children[1].Comment)
	assert.NotContains(t, buf.String(), `"children": null`)
}

func TestSymbols(t *testing.T) {
	p, idx := sampleProject()
	gone := p.AddChild(p.Root, "gone", doctree.KindModule)
	idx.Set("m/gone", gone)
	p.RemoveReflection(gone)

	var buf bytes.Buffer
	require.NoError(t, Symbols(&buf, p, idx))

	want := "" +
		"m/gone   gone #4 (removed)\n" +
		"m/lib    lib #1\n" +
		"m/lib.F  lib.F #2\n"
	assert.Equal(t, want, buf.String())
}

func TestDiff(t *testing.T) {
	assert.Equal(t, "", Diff("a\nb\n", "a\nb\n"))

	got := Diff("a\nb\nc\n", "a\nB\nc\nd\n")
	assert.Equal(t, "  a\n- b\n+ B\n  c\n+ d\n", got)

	got = Diff("x", "y")
	assert.Equal(t, "- x\n+ y\n", got)
	assert.Equal(t, 2, strings.Count(got, "\n"))
}
