// Package config holds the few settings of the loaded module. Defaults
// match a stock install; environment variables override them.
package config

import (
	"os"
	"strconv"
	"strings"
)

const (
	// DefaultTranslationsFile is looked up relative to the game's working directory
	DefaultTranslationsFile = "tr.json"

	// DefaultFormatCapacity matches the shim's fixed format buffer
	DefaultFormatCapacity = 4096

	EnvTranslations   = "ER_TRANSLATIONS"
	EnvDebug          = "ER_DEBUG"
	EnvFormatCapacity = "ER_FORMAT_CAPACITY"
)

type Config struct {
	TranslationsPath string
	Debug            bool
	FormatCapacity   int
}

// Default returns the built-in settings
func Default() Config {
	return Config{
		TranslationsPath: DefaultTranslationsFile,
		FormatCapacity:   DefaultFormatCapacity,
	}
}

// FromEnv returns Default with any environment overrides applied
func FromEnv() Config {
	return FromLookup(os.LookupEnv)
}

// FromLookup applies overrides read through lookup. Invalid values are ignored.
func FromLookup(lookup func(string) (string, bool)) Config {
	cfg := Default()

	if v, ok := lookup(EnvTranslations); ok && strings.TrimSpace(v) != "" {
		cfg.TranslationsPath = strings.TrimSpace(v)
	}

	if v, ok := lookup(EnvDebug); ok {
		if on, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			cfg.Debug = on
		}
	}

	// the shim buffer is fixed, so only smaller capacities make sense
	if v, ok := lookup(EnvFormatCapacity); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 1 && n <= DefaultFormatCapacity {
			cfg.FormatCapacity = n
		}
	}

	return cfg
}
