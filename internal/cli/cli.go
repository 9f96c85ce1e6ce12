package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// Version is the docmodules version. It is a var so builds can override it with -ldflags "-X .../internal/cli.Version=1.2.3".
var Version = "0.3.0"

// RunOptions override the process environment. Zero fields use the defaults (os.Stdin, os.Stdout, os.Stderr, the working directory, and the user's home
// directory). Overriding is useful for testing.
type RunOptions struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer

	WorkDir string
	HomeDir string
}

// Run runs the CLI with args (typically os.Args).
//
// It returns a recommended exit code (0, 1, or 2) and an error, if any:
//   - 0 -> err == nil
//   - 1 -> err != nil, but the structure of args is sound (flags are correct, etc).
//   - 2 -> err != nil, args parse error or misuse of flags, etc.
//
// In cases of errors, Run has already displayed an error message to opts.Err || Stderr. Callers may use os.Exit with the exit code.
func Run(args []string, opts *RunOptions) (int, error) {
	argv := args
	if len(argv) > 0 {
		argv = argv[1:]
	}

	env, err := newEnv(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1, err
	}

	root := newRootCommand(env)
	root.SetArgs(argv)
	root.SetIn(env.in)
	root.SetOut(env.out)
	root.SetErr(env.errW)

	err = root.ExecuteContext(context.Background())
	if err == nil {
		return 0, nil
	}

	fmt.Fprintf(env.errW, "%s %v\n", env.errorColor().Sprint("Error:"), err)
	if isUsageError(err) {
		fmt.Fprintf(env.errW, "Run '%s --help' for usage.\n", root.Name())
		return 2, err
	}
	return 1, err
}

// runEnv is the resolved I/O and directories for one Run.
type runEnv struct {
	in      io.Reader
	out     io.Writer
	errW    io.Writer
	workDir string
	homeDir string
	noColor bool
}

func newEnv(opts *RunOptions) (*runEnv, error) {
	env := &runEnv{in: os.Stdin, out: os.Stdout, errW: os.Stderr}
	if opts != nil {
		if opts.In != nil {
			env.in = opts.In
		}
		if opts.Out != nil {
			env.out = opts.Out
		}
		if opts.Err != nil {
			env.errW = opts.Err
		}
		env.workDir = opts.WorkDir
		env.homeDir = opts.HomeDir
	}

	if env.workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("get working directory: %w", err)
		}
		env.workDir = wd
	}
	if env.homeDir == "" {
		// A missing home directory just means no global config.
		env.homeDir, _ = os.UserHomeDir()
	}
	return env, nil
}

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// terminalWidth returns the width of w in cells, or 0 if w is not a terminal.
func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return width
}

func (e *runEnv) colorOut() bool {
	return !e.noColor && isTerminal(e.out)
}

func (e *runEnv) errorColor() *color.Color {
	c := color.New(color.FgRed, color.Bold)
	if e.noColor || !isTerminal(e.errW) {
		c.DisableColor()
	} else {
		c.EnableColor()
	}
	return c
}

// usageError marks errors caused by how docmodules was invoked.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func usageErrorf(format string, args ...any) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}

func isUsageError(err error) bool {
	var ue *usageError
	if errors.As(err, &ue) {
		return true
	}
	// cobra reports unknown subcommands with a plain error.
	return strings.HasPrefix(err.Error(), "unknown command")
}

// usageArgs wraps a cobra argument validator so its failures are usage errors.
func usageArgs(v cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := v(cmd, args); err != nil {
			return &usageError{err: err}
		}
		return nil
	}
}
