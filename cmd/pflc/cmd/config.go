package cmd

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
)

func newConfigCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as TOML",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			from := a.cfgFrom
			if from == "" {
				from = "built-in defaults"
			}
			fmt.Fprintf(a.stdout, "# source: %s\n", from)
			return toml.NewEncoder(a.stdout).Encode(a.cfg)
		},
	}
}
