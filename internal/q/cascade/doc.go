// Package cascade loads layered configuration into Go structs from multiple sources with predictable precedence.
//
// A Loader builds a prioritized cascade of sources and writes into a destination struct. Register sources from lowest to highest priority using the With* methods, then call StrictlyLoad.
// The zero value of Loader is ready to use; New exists for fluent chaining (ex: New().WithDefaults(...).WithYAMLFile(...).WithEnv(...).StrictlyLoad(&cfg)).
//
// Sources
//   - Defaults from a map[string]any whose keys may use dot-notation to denote nesting.
//   - YAML files read at load time. WithYAMLFile registers a specific path. WithNearestYAMLFile searches upward from a starting directory for the first readable, non-empty file with
//     a given relative name; it panics if fileName is absolute.
//   - Environment variables mapped to configuration keys via WithEnv; missing or empty variables are ignored and present values are strings.
//
// Keys are case-insensitive and dot-separated for nesting. A field's key is its cascade tag name, else its yaml tag name, else its field name, all lower cased. Values are coerced to
// the destination type when reasonable (strings to numbers and bools, numbers to strings, floats to ints truncated toward zero, and slices of those scalars).
//
// Unknown keys are ignored unless DisallowUnknownKeys is set. Fields tagged cascade:",required" must be set by some source. Missing files and empty files are not errors; files that
// cannot be parsed are, and errors name their source.
package cascade
