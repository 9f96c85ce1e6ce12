// Package render writes a doctree.Project for people and programs: an aligned text tree, nested JSON, the symbol index, and a line diff between two text
// renders.
package render
