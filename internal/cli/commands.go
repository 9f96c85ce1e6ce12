package cli

import (
	"bytes"
	"fmt"
	"io"

	"github.com/codalotl/docmodules/internal/converter"
	"github.com/codalotl/docmodules/internal/modulename"
	"github.com/codalotl/docmodules/internal/render"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newRootCommand(env *runEnv) *cobra.Command {
	root := &cobra.Command{
		Use:           "docmodules",
		Short:         "Rename and merge Go packages into a documentation module tree",
		Long:          "docmodules builds a documentation tree for a Go module and renames each package node using its @module tag, a custom .docmodules.expr function, or its directory.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})
	root.PersistentFlags().BoolVar(&env.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		newTreeCommand(env),
		newSymbolsCommand(env),
		newConfigCommand(env),
		newVersionCommand(env),
	)
	return root
}

// convertFlags are the flags shared by every command that builds a tree. They override the corresponding config values when set.
type convertFlags struct {
	disableAutoModuleName bool
	rootDir               string
	baseURL               string
}

func (f *convertFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.disableAutoModuleName, "disable-auto-module-name", false, "only rename packages that have an @module tag")
	cmd.Flags().StringVar(&f.rootDir, "root-dir", "", "base directory for automatic module names")
	cmd.Flags().StringVar(&f.baseURL, "base-url", "", "base directory for automatic module names, if --root-dir is unset")
}

func (f *convertFlags) apply(cmd *cobra.Command, cfg *Config) {
	if cmd.Flags().Changed("disable-auto-module-name") {
		cfg.DisableAutoModuleName = f.disableAutoModuleName
	}
	if cmd.Flags().Changed("root-dir") {
		cfg.RootDir = f.rootDir
	}
	if cmd.Flags().Changed("base-url") {
		cfg.BaseURL = f.baseURL
	}
}

// conversion is the result of building a tree: the renamed tree, and optionally the tree as it was before renaming.
type conversion struct {
	cfg    Config
	after  *converter.Context
	before *converter.Context
}

// convert loads config and packages, then converts them with the module name plugin. If withBefore is set, the packages are also converted without it.
func (e *runEnv) convert(cmd *cobra.Command, flags *convertFlags, args []string, withBefore bool) (*conversion, error) {
	cfg, err := loadConfig(e.workDir, e.homeDir)
	if err != nil {
		return nil, err
	}
	flags.apply(cmd, &cfg)

	mod, pkgs, err := loadPackages(e.workDir, args)
	if err != nil {
		return nil, err
	}

	// Plugin messages go to stderr so they never mix with tree output, and follow the same color rules.
	prevNoColor := color.NoColor
	color.NoColor = e.noColor || !isTerminal(e.errW)
	defer func() { color.NoColor = prevNoColor }()

	plugin, err := modulename.New(modulename.Options{
		DisableAutoModuleName: cfg.DisableAutoModuleName,
		WorkDir:               e.workDir,
		Out:                   e.errW,
		Err:                   e.errW,
	})
	if err != nil {
		return nil, err
	}

	opts := converter.Options{
		CompilerOptions: converter.CompilerOptions{RootDir: cfg.RootDir, BaseURL: cfg.BaseURL},
		WorkDir:         e.workDir,
	}
	res := &conversion{cfg: cfg}
	res.after, err = converter.New(opts, plugin).Convert(cmd.Context(), mod, pkgs)
	if err != nil {
		return nil, err
	}
	if err := res.after.Project.Validate(); err != nil {
		return nil, fmt.Errorf("inconsistent documentation tree: %w", err)
	}

	if withBefore {
		res.before, err = converter.New(opts).Convert(cmd.Context(), mod, pkgs)
		if err != nil {
			return nil, err
		}
	}
	return res, nil
}

func newTreeCommand(env *runEnv) *cobra.Command {
	var flags convertFlags
	var asJSON, showDiff bool
	var width int

	cmd := &cobra.Command{
		Use:   "tree [dir|pattern...]",
		Short: "Print the documentation tree after module renames",
		Long:  "Print the documentation tree after module renames. Arguments are directories (every package at or below them) or go list patterns; the default is the working directory.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if asJSON && showDiff {
				return usageErrorf("--json and --diff cannot be used together")
			}
			if cmd.Flags().Changed("width") && width <= 0 {
				return usageErrorf("--width must be > 0 (got %d)", width)
			}

			res, err := env.convert(cmd, &flags, args, showDiff)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if asJSON {
				return render.JSON(out, res.after.Project)
			}

			textOpts := render.TextOptions{Width: res.cfg.Width, Color: env.colorOut()}
			if cmd.Flags().Changed("width") {
				textOpts.Width = width
			} else if tw := terminalWidth(out); tw > 0 && tw < textOpts.Width {
				textOpts.Width = tw
			}

			if !showDiff {
				return render.Text(out, res.after.Project, textOpts)
			}
			textOpts.Color = false
			var before, after bytes.Buffer
			if err := render.Text(&before, res.before.Project, textOpts); err != nil {
				return err
			}
			if err := render.Text(&after, res.after.Project, textOpts); err != nil {
				return err
			}
			return writeDiff(out, render.Diff(before.String(), after.String()), env.colorOut())
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the tree as JSON")
	cmd.Flags().BoolVar(&showDiff, "diff", false, "print a diff of the tree before and after renames")
	cmd.Flags().IntVar(&width, "width", 0, "maximum line width (default from config, or 100)")
	return cmd
}

// writeDiff writes a render.Diff, coloring removed and added lines if useColor is set.
func writeDiff(w io.Writer, diff string, useColor bool) error {
	if diff == "" {
		_, err := io.WriteString(w, "no changes\n")
		return err
	}
	if !useColor {
		_, err := io.WriteString(w, diff)
		return err
	}

	del, ins := color.New(color.FgRed), color.New(color.FgGreen)
	del.EnableColor()
	ins.EnableColor()
	for _, line := range bytes.SplitAfter([]byte(diff), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		var err error
		switch line[0] {
		case '-':
			_, err = del.Fprint(w, string(line))
		case '+':
			_, err = ins.Fprint(w, string(line))
		default:
			_, err = w.Write(line)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func newSymbolsCommand(env *runEnv) *cobra.Command {
	var flags convertFlags
	cmd := &cobra.Command{
		Use:   "symbols [dir|pattern...]",
		Short: "Print where each package and declaration ends up after module renames",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := env.convert(cmd, &flags, args, false)
			if err != nil {
				return err
			}
			return render.Symbols(cmd.OutOrStdout(), res.after.Project, res.after.Symbols)
		},
	}
	flags.register(cmd)
	return cmd
}

func newConfigCommand(env *runEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(env.workDir, env.homeDir)
			if err != nil {
				return err
			}
			return writeConfigYAML(cmd.OutOrStdout(), cfg)
		},
	}
}

func newVersionCommand(env *runEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the docmodules version",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "docmodules %s\n", Version)
			return err
		},
	}
}
