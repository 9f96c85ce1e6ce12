package render

import (
	"encoding/json"
	"io"

	"github.com/codalotl/docmodules/internal/doctree"
)

type jsonTag struct {
	Name string `json:"name"`
	Text string `json:"text,omitempty"`
}

type jsonComment struct {
	ShortText string    `json:"shortText,omitempty"`
	Text      string    `json:"text,omitempty"`
	Tags      []jsonTag `json:"tags,omitempty"`
}

type jsonNode struct {
	ID       doctree.ID   `json:"id"`
	Name     string       `json:"name"`
	Kind     string       `json:"kind"`
	Comment  *jsonComment `json:"comment,omitempty"`
	Sources  []string     `json:"sources,omitempty"`
	Children []jsonNode   `json:"children,omitempty"`
}

// JSON writes project as an indented JSON object nested through "children". Sources are module-relative file names.
func JSON(w io.Writer, project *doctree.Project) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(toJSON(project.Root))
}

func toJSON(n *doctree.Node) jsonNode {
	out := jsonNode{ID: n.ID, Name: n.Name, Kind: n.Kind.String()}
	if n.Comment != nil {
		c := &jsonComment{ShortText: n.Comment.ShortText, Text: n.Comment.Text}
		for _, t := range n.Comment.Tags {
			c.Tags = append(c.Tags, jsonTag{Name: t.Name, Text: t.Text})
		}
		out.Comment = c
	}
	for _, s := range n.Sources {
		out.Sources = append(out.Sources, s.FileName)
	}
	for _, c := range n.Children {
		out.Children = append(out.Children, toJSON(c))
	}
	return out
}
