package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Limeth/pflc/pkg/render"
)

func newParseCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse <source>",
		Short: "Parse a source file and print its syntax tree",
		Example: `  pflc parse main.pf
  pflc parse main.pf --format json --spans
  echo 'fn t() -> bool = true;' | pflc parse - -f yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return a.runParse(args[0])
		},
	}
	addParseFlags(cmd, &a.parse)
	return cmd
}

func (a *app) runParse(path string) error {
	format, err := render.ParseFormat(a.parse.format)
	if err != nil {
		return err
	}
	source, name, err := a.rt.ReadSource(path)
	if err != nil {
		return a.fail(err, "")
	}
	if err := a.rt.Render(a.stdout, source, name, format); err != nil {
		return a.fail(err, source)
	}
	return nil
}
