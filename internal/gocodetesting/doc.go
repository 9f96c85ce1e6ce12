// Package gocodetesting provides helpers for tests that need temporary Go code. WriteModule creates a throwaway module (path "mymodule") from an in-memory map of
// slash-separated paths to contents, inserting a package clause into any .go file that lacks one; WithModule additionally loads it with gocode and passes the
// Module to a callback. Everything is removed when the test finishes. Dedent strips common indentation from multi-line strings so inline fixtures can be indented
// with surrounding code.
package gocodetesting
