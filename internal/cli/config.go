package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/codalotl/docmodules/internal/q/cascade"

	"gopkg.in/yaml.v3"
)

// configRelPath is the config file location relative to a project directory or the home directory.
var configRelPath = filepath.Join(".docmodules", "config.yaml")

const defaultWidth = 100

// Config is docmodules' configuration, loaded in increasing precedence from defaults, ~/.docmodules/config.yaml, the nearest .docmodules/config.yaml at or above
// the working directory, DOCMODULES_* environment variables, and then command-line flags. A string such as "true" or "1" is accepted for DisableAutoModuleName.
type Config struct {
	// DisableAutoModuleName turns off naming modules after their directory. Only @module tags (or a custom .docmodules.expr) then rename modules.
	DisableAutoModuleName bool `yaml:"disableAutoModuleName"`

	// RootDir and BaseURL override the base directory that automatic names are relative to. RootDir wins if both are set.
	RootDir string `yaml:"rootDir,omitempty"`
	BaseURL string `yaml:"baseURL,omitempty"`

	// Width is the maximum line width of text output. Defaults to 100.
	Width int `yaml:"width"`

	// Sources lists the config files that were read, lowest precedence first, and "environment" if any DOCMODULES_* variable was set.
	Sources []string `yaml:"-" cascade:"-"`
}

// envKeys maps config keys to the environment variables that override config files.
var envKeys = map[string]string{
	"disableautomodulename": "DOCMODULES_DISABLE_AUTO_MODULE_NAME",
	"rootdir":               "DOCMODULES_ROOT_DIR",
	"baseurl":               "DOCMODULES_BASE_URL",
	"width":                 "DOCMODULES_WIDTH",
}

// loadConfig layers, in increasing precedence, the defaults, the home config file, the nearest project config file at or above workDir, and DOCMODULES_* environment variables.
// homeDir may be "" to skip the home config.
func loadConfig(workDir, homeDir string) (Config, error) {
	loader := cascade.New().DisallowUnknownKeys().WithDefaults(map[string]any{
		"width": defaultWidth,
	})
	if homeDir != "" {
		loader = loader.WithYAMLFile(filepath.Join(homeDir, configRelPath))
	}
	loader = loader.WithNearestYAMLFile(configRelPath, workDir).WithEnv(envKeys)

	var cfg Config
	if err := loader.StrictlyLoad(&cfg); err != nil {
		return Config{}, fmt.Errorf("load configuration: %w", err)
	}
	for _, p := range loader.Applied() {
		switch p.SourceType {
		case cascade.SourceYAMLFile:
			cfg.Sources = append(cfg.Sources, p.SourceIdentifier)
		case cascade.SourceEnv:
			cfg.Sources = append(cfg.Sources, "environment")
		}
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validateConfig(cfg Config) error {
	if cfg.Width <= 0 {
		return fmt.Errorf("invalid configuration: width must be > 0 (got %d)", cfg.Width)
	}
	return nil
}

// writeConfigYAML writes cfg as YAML, preceded by a comment line per source file.
func writeConfigYAML(w io.Writer, cfg Config) error {
	var b strings.Builder
	if len(cfg.Sources) == 0 {
		b.WriteString("# sources: defaults only\n")
	}
	for _, s := range cfg.Sources {
		fmt.Fprintf(&b, "# source: %s\n", s)
	}

	enc := yaml.NewEncoder(&b)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err := io.WriteString(w, b.String())
	return err
}
