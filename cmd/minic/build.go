package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/corani/minic/internal/config"
	"github.com/corani/minic/internal/driver"
)

var buildCmd = &cobra.Command{
	Use:   "build [flags] <file.mc>",
	Short: "Compile a source file to an IR listing",
	Args:  cobra.ExactArgs(1),
	RunE:  runBuild,
}

func init() {
	buildCmd.Flags().StringP("out", "o", "", "listing output path (default: <input>.ir)")
	buildCmd.Flags().Bool("no-cache", false, "bypass the listing cache")
}

func runBuild(cmd *cobra.Command, args []string) error {
	input := args[0]

	cfg, err := loadConfig(cmd, input)
	if err != nil {
		return err
	}

	out, err := cmd.Flags().GetString("out")
	if err != nil {
		return err
	}

	if out == "" {
		out = cfg.Out
	}

	if out == "" {
		out = strings.TrimSuffix(input, filepath.Ext(input)) + ".ir"
	}

	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return err
	}

	res, err := compileInput(input, cfg, noCache)
	if err != nil {
		return err
	}

	if cfg.DumpAST && res.Unit != nil {
		fmt.Println(res.Unit)
	}

	if cfg.DumpIR {
		fmt.Print(res.Listing)
	}

	return os.WriteFile(out, []byte(res.Listing), 0o644)
}

// loadConfig reads minic.toml from the --config path, or from the input
// file's directory when the flag is unset.
func loadConfig(cmd *cobra.Command, input string) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	if path == "" {
		path = filepath.Join(filepath.Dir(input), config.DefaultFilename)
	}

	return config.Load(path)
}

func compileInput(input string, cfg *config.Config, noCache bool) (*driver.Result, error) {
	// A cache hit carries no tree, so dumping the AST forces a full compile.
	if noCache || cfg.NoCache || cfg.DumpAST {
		return driver.Compile(input)
	}

	// A broken cache directory is not fatal: fall back to a plain compile.
	cache, err := driver.OpenListingCache("minic")
	if err != nil {
		return driver.Compile(input)
	}

	return driver.CompileCached(input, cache)
}
