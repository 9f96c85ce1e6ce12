package doctree

import "strings"

// Tag is a block tag of a comment, ex: "@module utils.helpers" has Name "module" and Text "utils.helpers".
type Tag struct {
	Name string // without the leading '@'
	Text string // may be empty
}

// Comment is the structured form of a doc comment.
type Comment struct {
	ShortText string // first paragraph of the prose
	Text      string // remaining prose, if any
	Tags      []Tag  // block tags in source order
}

// RemoveTags removes every tag named name from c. It is a no-op on a nil Comment, and calling it repeatedly has the same effect as calling it once.
func (c *Comment) RemoveTags(name string) {
	if c == nil || len(c.Tags) == 0 {
		return
	}
	kept := c.Tags[:0]
	for _, t := range c.Tags {
		if t.Name != name {
			kept = append(kept, t)
		}
	}
	if len(kept) == 0 {
		c.Tags = nil
		return
	}
	c.Tags = kept
}

// HasTag reports whether c has at least one tag named name.
func (c *Comment) HasTag(name string) bool {
	if c == nil {
		return false
	}
	for _, t := range c.Tags {
		if t.Name == name {
			return true
		}
	}
	return false
}

// IsEmpty reports whether c has no short text, no long text, and no tags. A nil Comment is empty.
func (c *Comment) IsEmpty() bool {
	if c == nil {
		return true
	}
	return strings.TrimSpace(c.ShortText) == "" && strings.TrimSpace(c.Text) == "" && len(c.Tags) == 0
}

// Clone returns a deep copy of c (nil for nil).
func (c *Comment) Clone() *Comment {
	if c == nil {
		return nil
	}
	cloned := &Comment{ShortText: c.ShortText, Text: c.Text}
	if len(c.Tags) > 0 {
		cloned.Tags = make([]Tag, len(c.Tags))
		copy(cloned.Tags, c.Tags)
	}
	return cloned
}
