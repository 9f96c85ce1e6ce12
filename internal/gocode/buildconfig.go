package gocode

import (
	"go/build"
	"os"
	"sort"
	"strings"
)

// BuildConfig selects which files of a directory belong to the build. Zero-valued fields fall back to the host defaults (build.Default); Tags are merged with any
// -tags found in GOFLAGS.
type BuildConfig struct {
	GOOS   string
	GOARCH string
	Tags   []string
}

// context returns the go/build context for c.
func (c BuildConfig) context() build.Context {
	ctx := build.Default
	if c.GOOS != "" {
		ctx.GOOS = c.GOOS
	}
	if c.GOARCH != "" {
		ctx.GOARCH = c.GOARCH
	}

	var tags []string
	tags = append(tags, c.Tags...)
	if gf := os.Getenv("GOFLAGS"); gf != "" {
		tags = append(tags, ParseTagsFromGOFLAGS(gf)...)
	}
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		ctx.BuildTags = append(ctx.BuildTags, t)
	}
	return ctx
}

// goFilesInDir returns the sorted names of non-test .go files in dir that match c. Hidden files and _test.go files are never returned.
func (c BuildConfig) goFilesInDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	ctx := c.context()
	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
			continue
		}
		match, err := ctx.MatchFile(dir, name)
		if err != nil {
			return nil, err
		}
		if match {
			files = append(files, name)
		}
	}
	sort.Strings(files)
	return files, nil
}

// ParseTagsFromGOFLAGS extracts every value passed to -tags in GOFLAGS. Both "-tags=foo,bar" and "-tags foo,bar" are supported. Tokenization is strings.Fields;
// no shell quoting is understood.
func ParseTagsFromGOFLAGS(gf string) []string {
	var out []string
	addList := func(val string) {
		for _, t := range strings.Split(val, ",") {
			if t = strings.TrimSpace(t); t != "" {
				out = append(out, t)
			}
		}
	}

	parts := strings.Fields(gf)
	for i := 0; i < len(parts); i++ {
		p := parts[i]
		if val, ok := strings.CutPrefix(p, "-tags="); ok {
			addList(val)
		} else if p == "-tags" && i+1 < len(parts) {
			i++
			addList(parts[i])
		}
	}
	return out
}
