// Command collectived stands up a team over TCP from a host list, runs
// one collective operation, and prints the result. It is the process-level
// glue around the collective engine: dial, run, report.
package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/unixpickle/essentials"
)

func main() {
	essentials.Must(NewRootCommand().Execute())
	os.Exit(0)
}

// NewRootCommand assembles the collectived CLI.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "collectived",
		Short:         "Run one collective operation across a team of dialed peers",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(NewRunCommand())
	return root
}
