package doccomment

import (
	"go/parser"
	"go/token"
	"testing"

	"github.com/codalotl/docmodules/internal/doctree"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRawComment(t *testing.T) {
	src := []byte("// Package foo does things.\n//\n// @module utils.foo\npackage foo\n\n/* Bar is a var. */\nvar Bar int\n")
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "foo.go", src, parser.ParseComments)
	require.NoError(t, err)

	assert.Equal(t, "// Package foo does things.\n//\n// @module utils.foo", RawComment(src, fset, f.Doc))
	assert.Equal(t, "", RawComment(src, fset, nil))
	assert.Equal(t, "/* Bar is a var. */", RawComment(src, fset, f.Comments[1]))
}

func TestText(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"line", "// a\n//\n//  b", "a\n\n b"},
		{"block single", "/* a */", "a"},
		{"jsdoc", "/**\n * a\n *\n * @module x\n */", "a\n\n@module x"},
		{"plain", "a\nb", "a\nb"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Text(tt.raw))
		})
	}
}

func TestParse(t *testing.T) {
	c := Parse("// Package foo does things\n// across lines.\n//\n// More detail here.\n//\n// @module utils.foo\n// @preferred\n// @see bar\n// continued")
	require.NotNil(t, c)
	assert.Equal(t, "Package foo does things across lines.", c.ShortText)
	assert.Equal(t, "More detail here.", c.Text)
	assert.Equal(t, []doctree.Tag{
		{Name: "module", Text: "utils.foo"},
		{Name: "preferred", Text: ""},
		{Name: "see", Text: "bar\ncontinued"},
	}, c.Tags)
}

func TestParseOnlyTags(t *testing.T) {
	c := Parse("// @module x\n// @preferred")
	require.NotNil(t, c)
	assert.Empty(t, c.ShortText)
	assert.Empty(t, c.Text)

	c.RemoveTags("module")
	c.RemoveTags("preferred")
	assert.True(t, c.IsEmpty())
}

func TestParseEmpty(t *testing.T) {
	assert.Nil(t, Parse(""))
	assert.Nil(t, Parse("//\n//"))
}

func TestParseHeadingFirst(t *testing.T) {
	c := Parse("// # Title\n//\n// Body.")
	require.NotNil(t, c)
	assert.Empty(t, c.ShortText)
	assert.Equal(t, "# Title\n\nBody.", c.Text)
}
