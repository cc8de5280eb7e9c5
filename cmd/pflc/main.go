// Command pflc is the parser front-end CLI.
package main

import (
	"os"

	"github.com/Limeth/pflc/cmd/pflc/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
