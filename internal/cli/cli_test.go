package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/codalotl/docmodules/internal/gocodetesting"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var mergeFixture = map[string]string{
	"a/a.go": gocodetesting.Dedent(`
		// Package a does things.
		//
		// @module utils.helpers
		package a

		func FromA() {}
	`),
	"b/b.go": gocodetesting.Dedent(`
		// Package b is better.
		//
		// @module utils.helpers
		// @preferred
		package b

		func FromB() {}
	`),
}

type result struct {
	code int
	err  error
	out  string
	errS string
}

func runCLI(t *testing.T, workDir string, args ...string) result {
	t.Helper()
	var out, errW bytes.Buffer
	code, err := Run(append([]string{"docmodules"}, args...), &RunOptions{
		In:      strings.NewReader(""),
		Out:     &out,
		Err:     &errW,
		WorkDir: workDir,
		HomeDir: t.TempDir(),
	})
	return result{code: code, err: err, out: out.String(), errS: errW.String()}
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
}

func TestRunVersion(t *testing.T) {
	res := runCLI(t, t.TempDir(), "version")
	require.NoError(t, res.err)
	assert.Equal(t, 0, res.code)
	assert.Equal(t, "docmodules "+Version+"\n", res.out)
}

func TestRunTree(t *testing.T) {
	dir := gocodetesting.WriteModule(t, mergeFixture)

	res := runCLI(t, dir, "tree", "--width", "200")
	require.NoError(t, res.err, res.errS)
	assert.Equal(t, 0, res.code)

	lines := strings.Split(strings.TrimRight(res.out, "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "mymodule", lines[0])
	assert.Regexp(t, `^  utils\s+namespace #5$`, lines[1])
	assert.Regexp(t, `^    helpers\s+module #1\s+Package b is better\.$`, lines[2])
	assert.Regexp(t, `^      FromA\s+function #2$`, lines[3])
	assert.Regexp(t, `^      FromB\s+function #4$`, lines[4])
}

func TestRunTreeSelectsDirectories(t *testing.T) {
	dir := gocodetesting.WriteModule(t, map[string]string{
		"x/x.go":     "func X() {}\n",
		"x/sub/s.go": "func S() {}\n",
		"y/y.go":     "func Y() {}\n",
	})

	res := runCLI(t, dir, "tree", "x")
	require.NoError(t, res.err, res.errS)
	assert.Contains(t, res.out, "  root ")
	assert.Contains(t, res.out, "  sub ")
	assert.NotContains(t, res.out, "Y")
}

func TestRunTreeDisableAutoModuleName(t *testing.T) {
	dir := gocodetesting.WriteModule(t, map[string]string{
		"x/x.go": "func X() {}\n",
	})

	res := runCLI(t, dir, "tree", "--disable-auto-module-name")
	require.NoError(t, res.err, res.errS)
	assert.Contains(t, res.out, "  mymodule/x ")
}

func TestRunTreeJSON(t *testing.T) {
	dir := gocodetesting.WriteModule(t, mergeFixture)

	res := runCLI(t, dir, "tree", "--json")
	require.NoError(t, res.err, res.errS)

	var root struct {
		Name     string `json:"name"`
		Children []struct {
			Name     string `json:"name"`
			Kind     string `json:"kind"`
			Children []struct {
				Name    string `json:"name"`
				Sources []string
			} `json:"children"`
		} `json:"children"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.out), &root))
	require.Len(t, root.Children, 1)
	assert.Equal(t, "utils", root.Children[0].Name)
	assert.Equal(t, "namespace", root.Children[0].Kind)
	require.Len(t, root.Children[0].Children, 1)
	assert.Equal(t, []string{"a/a.go", "b/b.go"}, root.Children[0].Children[0].Sources)
}

func TestRunTreeDiff(t *testing.T) {
	dir := gocodetesting.WriteModule(t, mergeFixture)

	res := runCLI(t, dir, "tree", "--diff")
	require.NoError(t, res.err, res.errS)
	assert.Contains(t, res.out, "  mymodule\n")
	assert.Contains(t, res.out, "-   mymodule/b")
	assert.Contains(t, res.out, "+   utils")
	assert.NotContains(t, res.out, "\x1b[")
}

func TestRunSymbols(t *testing.T) {
	dir := gocodetesting.WriteModule(t, mergeFixture)

	res := runCLI(t, dir, "symbols")
	require.NoError(t, res.err, res.errS)
	assert.Regexp(t, `(?m)^mymodule/a\s+utils\.helpers #1$`, res.out)
	assert.Regexp(t, `(?m)^mymodule/b\s+utils\.helpers #1$`, res.out)
	assert.Regexp(t, `(?m)^mymodule/b\.FromB\s+utils\.helpers\.FromB #4$`, res.out)
}

func TestRunCustomScript(t *testing.T) {
	dir := gocodetesting.WriteModule(t, map[string]string{"x/x.go": "func X() {}\n"})
	writeFile(t, filepath.Join(dir, ".docmodules.expr"), `"renamed." + node.package`)

	res := runCLI(t, dir, "tree")
	require.NoError(t, res.err, res.errS)
	assert.Contains(t, res.errS, "Using custom module name mapping function")
	assert.Contains(t, res.out, "  renamed ")
	assert.Contains(t, res.out, "    x ")
}

func TestRunBadCustomScript(t *testing.T) {
	dir := gocodetesting.WriteModule(t, map[string]string{"x/x.go": "func X() {}\n"})
	writeFile(t, filepath.Join(dir, ".docmodules.expr"), `explicit +`)

	res := runCLI(t, dir, "tree")
	assert.Equal(t, 1, res.code)
	require.Error(t, res.err)
	assert.Contains(t, res.errS, "Failed to load custom module name mapping function")
	assert.Empty(t, res.out)
}

func TestRunUsageErrors(t *testing.T) {
	dir := gocodetesting.WriteModule(t, map[string]string{"x/x.go": "func X() {}\n"})

	for _, args := range [][]string{
		{"tree", "--bogus"},
		{"bogus"},
		{"tree", "--json", "--diff"},
		{"tree", "--width", "0"},
		{"version", "extra"},
	} {
		res := runCLI(t, dir, args...)
		assert.Equal(t, 2, res.code, "args %v: %s", args, res.errS)
		assert.Error(t, res.err)
		assert.Contains(t, res.errS, "Error:")
	}
}

func TestRunConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, ".docmodules", "config.yaml")
	writeFile(t, cfgPath, "disableAutoModuleName: \"true\"\nwidth: 80\n")

	res := runCLI(t, dir, "config")
	require.NoError(t, res.err, res.errS)
	assert.Contains(t, res.out, "# source: "+cfgPath+"\n")
	assert.Contains(t, res.out, "disableAutoModuleName: true\n")
	assert.Contains(t, res.out, "width: 80\n")
	assert.NotContains(t, res.out, "rootDir")
}

func TestRunConfigInvalid(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".docmodules", "config.yaml"), "widht: 80\n")

	res := runCLI(t, dir, "config")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.errS, `unknown key "widht"`)
}

func TestLoadConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := loadConfig(t.TempDir(), "")
		require.NoError(t, err)
		assert.Equal(t, Config{Width: defaultWidth}, cfg)
	})

	t.Run("nearest overrides home", func(t *testing.T) {
		home := t.TempDir()
		project := t.TempDir()
		work := filepath.Join(project, "deep", "er")
		require.NoError(t, os.MkdirAll(work, 0755))

		homeCfg := filepath.Join(home, ".docmodules", "config.yaml")
		projCfg := filepath.Join(project, ".docmodules", "config.yaml")
		writeFile(t, homeCfg, "rootDir: /from/home\nwidth: 60\n")
		writeFile(t, projCfg, "width: 70\ndisableAutoModuleName: true\n")

		cfg, err := loadConfig(work, home)
		require.NoError(t, err)
		assert.Equal(t, Config{
			DisableAutoModuleName: true,
			RootDir:               "/from/home",
			Width:                 70,
			Sources:               []string{homeCfg, projCfg},
		}, cfg)
	})

	t.Run("string bool", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, ".docmodules", "config.yaml"), "disableAutoModuleName: \"true\"\n")
		cfg, err := loadConfig(dir, "")
		require.NoError(t, err)
		assert.True(t, cfg.DisableAutoModuleName)

		writeFile(t, filepath.Join(dir, ".docmodules", "config.yaml"), "disableAutoModuleName: \"nope\"\n")
		_, err = loadConfig(dir, "")
		assert.ErrorContains(t, err, "disableautomodulename")
	})

	t.Run("env overrides files", func(t *testing.T) {
		dir := t.TempDir()
		cfgPath := filepath.Join(dir, ".docmodules", "config.yaml")
		writeFile(t, cfgPath, "width: 70\nrootDir: /from/file\n")
		t.Setenv("DOCMODULES_WIDTH", "90")
		t.Setenv("DOCMODULES_DISABLE_AUTO_MODULE_NAME", "1")

		cfg, err := loadConfig(dir, "")
		require.NoError(t, err)
		assert.Equal(t, Config{
			DisableAutoModuleName: true,
			RootDir:               "/from/file",
			Width:                 90,
			Sources:               []string{cfgPath, "environment"},
		}, cfg)
	})

	t.Run("same file as home and nearest", func(t *testing.T) {
		home := t.TempDir()
		cfgPath := filepath.Join(home, ".docmodules", "config.yaml")
		writeFile(t, cfgPath, "width: 70\n")
		cfg, err := loadConfig(home, home)
		require.NoError(t, err)
		assert.Equal(t, []string{cfgPath}, cfg.Sources)
	})

	t.Run("non-scalar bool", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, ".docmodules", "config.yaml"), "disableAutoModuleName: [true]\n")
		_, err := loadConfig(dir, "")
		assert.Error(t, err)
	})

	t.Run("empty file", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, ".docmodules", "config.yaml"), "")
		cfg, err := loadConfig(dir, "")
		require.NoError(t, err)
		assert.Empty(t, cfg.Sources)
	})

	t.Run("invalid width", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, ".docmodules", "config.yaml"), "width: 0\n")
		_, err := loadConfig(dir, "")
		assert.ErrorContains(t, err, "width must be > 0")
	})
}
