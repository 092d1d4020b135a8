// Command wasihostctl drives a wasihost.Host outside of any WebAssembly
// runtime, for checking preopen/rights configuration before wiring a
// guest module against it.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCommand := configureCLI()
	if err := rootCommand.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func configureCLI() *cobra.Command {
	rootCommand := &cobra.Command{
		Use:           "wasihostctl",
		Short:         "inspect and validate wasihost filesystem configurations",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	rootCommand.AddCommand(checkCommand())
	rootCommand.AddCommand(lsCommand())
	rootCommand.AddCommand(inspectCommand())

	return rootCommand
}
