package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// checkReport is the JSON form of a successful check.
type checkReport struct {
	OK           bool     `json:"ok"`
	File         string   `json:"file"`
	Declarations []string `json:"declarations"`
}

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check <source>",
		Short: "Parse a source file and summarize its declarations",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return a.runCheck(args[0])
		},
	}
}

func (a *app) runCheck(path string) error {
	source, name, err := a.rt.ReadSource(path)
	if err != nil {
		return a.fail(err, "")
	}
	summary, diags := a.rt.Check(source, name)
	if len(diags) > 0 {
		a.printDiags(diags, source)
		return &ExitError{Code: ExitParse}
	}

	if a.isPretty() {
		for _, line := range summary {
			fmt.Fprintln(a.stdout, line)
		}
		fmt.Fprintln(a.stdout, "No errors found.")
		return nil
	}
	b, err := json.Marshal(checkReport{OK: true, File: name, Declarations: summary})
	if err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, string(b))
	return nil
}
