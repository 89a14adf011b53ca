package solve

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

const (
	OutputTable = "table"
	OutputPlain = "plain"

	// DefaultConfigFile is read from the working directory when no
	// configuration file is given.
	DefaultConfigFile = "homatch.yaml"

	envPrefix = "HOMATCH_"
)

// Config controls how solve searches and prints.
type Config struct {
	// Limit caps the number of solutions printed; 0 defers to the problem
	// file, and to no limit when the file sets none either.
	Limit  int    `koanf:"limit"`
	Trace  bool   `koanf:"trace"`
	Output string `koanf:"output"`
}

// LoadConfig layers defaults, the configuration file, HOMATCH_ environment
// variables and explicitly set flags, each overriding the ones before.
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(map[string]interface{}{
		"limit":  0,
		"trace":  false,
		"output": OutputTable,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if cfgFile == "" {
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			cfgFile = DefaultConfigFile
		}
	}
	if cfgFile != "" {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", cfgFile, err)
		}
	}

	// HOMATCH_OUTPUT -> output
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed || f.Name == "config" {
				return "", nil
			}
			return f.Name, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Limit < 0 {
		return fmt.Errorf("invalid limit (%d): must not be negative", c.Limit)
	}
	switch c.Output {
	case OutputTable, OutputPlain:
		return nil
	}
	return fmt.Errorf("invalid output (%s): must be %s or %s", c.Output, OutputTable, OutputPlain)
}
