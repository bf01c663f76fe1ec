package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var errColor = color.New(color.FgRed, color.Bold)

var rootCmd = &cobra.Command{
	Use:           "minic",
	Short:         "minic compiles a small imperative language to a flat pseudo-assembly IR",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(astCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("config", "", "path to minic.toml (default: alongside the input)")

	if err := rootCmd.Execute(); err != nil {
		errColor.Fprintf(os.Stderr, "error: ")
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}
