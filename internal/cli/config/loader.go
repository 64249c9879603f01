package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// configFileUsed tracks the config file loaded by the last Load call.
var configFileUsed string

// findConfigFile picks the config file to use.
// Priority: explicit path > leapcsv.yaml > leapcsv.yml in the CWD.
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{"leapcsv.yaml", "leapcsv.yml"} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Load merges configuration from defaults, an optional YAML file,
// LEAPCSV_* environment variables, and explicitly set flags.
// Precedence, highest to lowest: flags > env vars > config file > defaults.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"output":         DefaultOutput,
		"log_level":      DefaultLogLevel,
		"state_path":     DefaultStateFile,
		"read.multiline": true,
		"import.target":  DefaultTarget,
		"import.batch":   DefaultBatch,
		"serve.port":     DefaultPort,
		"serve.data_dir": ".",
		"serve.preview":  DefaultPreview,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	configFileUsed = findConfigFile(cfgFile)
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
	}

	// 3. Environment variables: LEAPCSV_READ__SEPARATOR -> read.separator
	if err := k.Load(env.Provider("LEAPCSV_", ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, "LEAPCSV_"))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags, only those explicitly set. Kebab-case flag names map to
	// snake_case keys; read options live under the read. prefix.
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			return flagKey(f.Name), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			Result:           &cfg,
		},
	}); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	return &cfg, nil
}

// readFlags are the persistent flag names that map into the read.
// section rather than the top level.
var readFlags = map[string]bool{
	"dialect":          true,
	"separator":        true,
	"no_header":        true,
	"strict_headers":   true,
	"case_sensitive":   true,
	"trim":             true,
	"skip_rows":        true,
	"multiline":        true,
	"rejoin":           true,
	"backslash_escape": true,
	"single_quote":     true,
	"validate_columns": true,
	"empty_missing":    true,
	"encoding":         true,
}

func flagKey(name string) string {
	key := strings.ReplaceAll(name, "-", "_")
	if readFlags[key] {
		return "read." + key
	}
	// --state is shorthand for state_path
	if key == "state" {
		return "state_path"
	}
	return key
}

// GetConfigFileUsed returns the path of the config file loaded by the
// last Load call, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}
