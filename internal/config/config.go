package config

import (
	"errors"
	"os"

	"github.com/BurntSushi/toml"
)

// Config is the project-level configuration, read from minic.toml next to
// the source file. Every field has a usable zero default, so a missing file
// is not an error.
type Config struct {
	// Out is the listing output path; empty derives <input>.ir.
	Out string `toml:"out"`
	// DumpAST prints the parsed tree before lowering.
	DumpAST bool `toml:"dump_ast"`
	// DumpIR prints the listing after lowering.
	DumpIR bool `toml:"dump_ir"`
	// MaxSteps bounds execution; 0 means unlimited.
	MaxSteps int `toml:"max_steps"`
	// Trace prints every executed instruction.
	Trace bool `toml:"trace"`
	// NoCache disables the listing cache.
	NoCache bool `toml:"no_cache"`
}

const DefaultFilename = "minic.toml"

func Default() *Config {
	return &Config{}
}

// Load reads configuration from the given path. A missing file yields the
// defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}

		return nil, err
	}

	return cfg, nil
}
