package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/corani/minic/internal/loader"
)

var astCmd = &cobra.Command{
	Use:   "ast <file.mc>",
	Short: "Print the parsed tree without compiling",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		unit, err := loader.NewLoader().Load(args[0])
		if err != nil {
			return err
		}

		fmt.Println(unit)

		return nil
	},
}
