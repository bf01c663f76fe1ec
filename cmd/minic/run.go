package main

import (
	"fmt"
	"os"

	"fortio.org/safecast"
	"github.com/spf13/cobra"

	"github.com/corani/minic/internal/driver"
	"github.com/corani/minic/internal/vm"
)

var runCmd = &cobra.Command{
	Use:   "run [flags] <file.mc>",
	Short: "Compile and execute a source file",
	Long:  "Compile a source file to IR and execute it; main's return value becomes the exit code.",
	Args:  cobra.ExactArgs(1),
	RunE:  runExecute,
}

func init() {
	runCmd.Flags().Bool("trace", false, "print every executed instruction")
	runCmd.Flags().Int("max-steps", 0, "abort after this many instructions (0 = unlimited)")
}

func runExecute(cmd *cobra.Command, args []string) error {
	input := args[0]

	cfg, err := loadConfig(cmd, input)
	if err != nil {
		return err
	}

	trace, err := cmd.Flags().GetBool("trace")
	if err != nil {
		return err
	}

	maxSteps, err := cmd.Flags().GetInt("max-steps")
	if err != nil {
		return err
	}

	if maxSteps == 0 {
		maxSteps = cfg.MaxSteps
	}

	res, err := driver.Compile(input)
	if err != nil {
		return err
	}

	machine, err := vm.New(res.Program,
		vm.WithTrace(trace || cfg.Trace),
		vm.WithMaxSteps(maxSteps))
	if err != nil {
		return err
	}

	result, err := machine.Run()
	if err != nil {
		return err
	}

	fmt.Println(result)

	// Exit codes are truncated to the platform's 8-bit range; anything
	// outside it exits 1 rather than aliasing silently.
	if result != 0 {
		code, err := safecast.Conv[uint8](result)
		if err != nil {
			os.Exit(1)
		}

		os.Exit(int(code))
	}

	return nil
}
