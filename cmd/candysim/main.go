// Command candysim runs the emergent candy economy simulation.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0-dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "candysim",
		Short: "Emergent candy economy simulation",
		Long: `candysim runs a playground economy where kid agents trade candy based
on private beliefs about value, spread rumors that distort those beliefs,
and band together into trading blocs.

World state is served over a read-only HTTP API and persisted to SQLite.`,
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("candysim version %s\n", version)
		},
	}
}
