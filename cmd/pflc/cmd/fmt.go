package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Limeth/pflc/pkg/formatter"
	"github.com/Limeth/pflc/pkg/runtime"
)

func newFmtCmd(a *app) *cobra.Command {
	var write bool
	cmd := &cobra.Command{
		Use:   "fmt <source>",
		Short: "Print the canonical formatting of a source file",
		Long: `fmt prints one declaration per line in canonical form. Comments are not
preserved; a warning is written to stderr when the source has any.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return a.runFmt(args[0], write)
		},
	}
	cmd.Flags().BoolVarP(&write, "write", "w", false, "rewrite the source file in place")
	return cmd
}

func (a *app) runFmt(path string, write bool) error {
	if write && path == runtime.StdinName {
		return errors.New("--write cannot be used with standard input")
	}
	source, name, err := a.rt.ReadSource(path)
	if err != nil {
		return a.fail(err, "")
	}
	formatted, err := a.rt.Format(source, name)
	if err != nil {
		return a.fail(err, source)
	}

	if formatter.HasComments(source) {
		fmt.Fprintln(a.stderr, "warning: comments are not preserved by the formatter")
	}

	if !write {
		fmt.Fprint(a.stdout, formatted)
		return nil
	}
	if formatted == source {
		a.logger.Debug("already formatted", "file", name)
		return nil
	}
	if err := os.WriteFile(path, []byte(formatted), 0o644); err != nil {
		return a.fail(fmt.Errorf("write %s: %w", path, err), "")
	}
	return nil
}
