package cascade

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Source types reported in Providence.
const (
	SourceDefault  = "default"
	SourceYAMLFile = "yaml_file"
	SourceEnv      = "env"
)

// Loader builds a prioritized cascade of configuration sources and applies them to a destination struct. Register sources in call order from lowest to highest priority using the With*
// methods, then call StrictlyLoad. The zero value is ready to use.
type Loader struct {
	sources         []source // ordered from low to high priority
	disallowUnknown bool
	applied         []Providence
}

// Providence identifies where configuration values came from.
type Providence struct {
	SourceType       string // SourceDefault, SourceYAMLFile, or SourceEnv
	SourceIdentifier string // ex: "/path/to/config.yaml". "" for defaults and env.
}

func (p Providence) IsSet() bool {
	return p.SourceType != ""
}

func (p Providence) Default() bool {
	return p.SourceType == SourceDefault
}

// New returns a new Loader. It is equivalent to &Loader{}.
func New() *Loader {
	return &Loader{}
}

// WithDefaults registers m as the lowest-priority source of default values. Keys may use dot-notation. A nil map contributes no values.
func (c *Loader) WithDefaults(m map[string]any) *Loader {
	c.sources = append(c.sources, &sourceMap{m: m})
	return c
}

// WithYAMLFile registers a YAML file. path is expanded with ExpandPath and read when loading; a missing file contributes no values.
func (c *Loader) WithYAMLFile(path string) *Loader {
	c.sources = append(c.sources, &sourceYAMLFile{path: path})
	return c
}

// WithNearestYAMLFile searches upward from startDir (or the working directory if "") for the first readable, non-empty file named fileName, and registers it as the next source.
// fileName must be relative and may include directories (ex: ".app/config.yaml"); it panics if fileName is absolute. If startDir is a file, its directory is used. If nothing is found
// the loader is unchanged.
func (c *Loader) WithNearestYAMLFile(fileName string, startDir string) *Loader {
	if filepath.IsAbs(fileName) {
		panic("fileName shouldn't be absolute")
	}
	if found := findNearest(fileName, startDir); found != "" {
		c.sources = append(c.sources, &sourceYAMLFile{path: found})
	}
	return c
}

func findNearest(fileName, start string) string {
	if start == "" {
		if wd, err := os.Getwd(); err == nil {
			start = wd
		}
	}
	if start == "" {
		return ""
	}
	if abs, err := filepath.Abs(start); err == nil {
		start = abs
	}
	if fi, err := os.Stat(start); err == nil && !fi.IsDir() {
		start = filepath.Dir(start)
	}

	for dir := start; ; {
		candidate := filepath.Join(dir, fileName)
		if data, err := os.ReadFile(candidate); err == nil && strings.TrimSpace(string(data)) != "" {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// WithEnv registers an environment-variable source. m maps a configuration key (dots denote nesting) to an environment variable name.
func (c *Loader) WithEnv(m map[string]string) *Loader {
	c.sources = append(c.sources, &sourceEnv{keyToEnv: m})
	return c
}

// DisallowUnknownKeys makes StrictlyLoad fail when a source sets a key that matches no field.
func (c *Loader) DisallowUnknownKeys() *Loader {
	c.disallowUnknown = true
	return c
}

// Applied returns the sources that contributed at least one value during the last StrictlyLoad, lowest priority first. A file registered twice is reported once.
func (c *Loader) Applied() []Providence {
	return append([]Providence(nil), c.applied...)
}

// StrictlyLoad loads configuration from c's sources into dest (a non-nil pointer to a struct), from low to high priority, with later sources overwriting earlier values.
//
// StrictlyLoad fails fast if a readable source cannot be parsed or supplies a value that cannot be coerced to its field, and if a required field is never set. Missing or unreadable
// (permission denied) sources are skipped. Errors name the source.
func (c *Loader) StrictlyLoad(dest any) error {
	structVal, err := destStruct(dest)
	if err != nil {
		return err
	}

	c.applied = nil
	a := &applier{present: map[string]bool{}, disallowUnknown: c.disallowUnknown}
	seen := map[Providence]bool{}

	for _, src := range c.sources {
		prov := src.Providence()
		m, err := src.ToMap()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
				continue
			}
			return fmt.Errorf("%s: %w", describeSource(prov), err)
		}
		if err := a.apply(structVal, m, ""); err != nil {
			return fmt.Errorf("%s: %w", describeSource(prov), err)
		}
		if len(m) > 0 && !seen[prov] {
			seen[prov] = true
			c.applied = append(c.applied, prov)
		}
	}

	return validateRequiredFields(structVal, "", a.present)
}

func describeSource(p Providence) string {
	switch p.SourceType {
	case SourceDefault:
		return "Defaults"
	case SourceYAMLFile:
		return "YAML File: " + p.SourceIdentifier
	case SourceEnv:
		return "ENV"
	default:
		return p.SourceType
	}
}
