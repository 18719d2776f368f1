// Package config layers command-line flags, environment variables, and an
// optional YAML file into one view of a command's settings.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ConfigFlag is the name of the flag, and of the environment suffix, that
// selects a config file.
const ConfigFlag = "config"

// Load binds flags to a new viper instance. A flag set on the command line
// wins over PREFIX_FLAG_NAME in the environment, which wins over the config
// file, which wins over the flag default.
//
// file names the YAML config file. When empty, the --config flag and then
// PREFIX_CONFIG are consulted; when all are empty no file is read. A named
// file must exist.
func Load(flags *pflag.FlagSet, envPrefix, file string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(flags); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}

	if file == "" {
		if f := flags.Lookup(ConfigFlag); f != nil {
			file = f.Value.String()
		}
	}
	if file == "" {
		file = os.Getenv(EnvName(envPrefix, ConfigFlag))
	}
	if file == "" {
		return v, nil
	}

	v.SetConfigFile(file)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", file, err)
	}
	return v, nil
}

// EnvName returns the environment variable consulted for a flag.
func EnvName(envPrefix, flag string) string {
	return strings.ToUpper(envPrefix + "_" + strings.ReplaceAll(flag, "-", "_"))
}

// Bool reads a boolean setting with the same spellings BoolValue accepts,
// so an environment variable or config entry of "no" means false.
func Bool(v *viper.Viper, key string) (bool, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return false, nil
	}
	b, err := ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

// Bools reads several boolean settings with Bool. The first unparsable
// setting is returned as an error.
func Bools(v *viper.Viper, keys ...string) (map[string]bool, error) {
	out := make(map[string]bool, len(keys))
	for _, key := range keys {
		b, err := Bool(v, key)
		if err != nil {
			return nil, err
		}
		out[key] = b
	}
	return out, nil
}
