package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

const defaultConfigFile = "./config.yaml"

// Load resolves the config file from CONFIG_PATH (or ./config.yaml when it
// exists) and returns the validated configuration. Environment variables
// override YAML values, which override env-default tags.
func Load() (*Config, error) {
	return LoadFrom(os.Getenv("CONFIG_PATH"))
}

// LoadFrom is Load with an explicit file. An empty path falls back to
// ./config.yaml if present, else to environment and defaults only. A named
// path that does not exist is an error.
func LoadFrom(path string) (*Config, error) {
	var cfg Config

	file, err := resolveFile(path)
	if err != nil {
		return nil, err
	}

	if file != "" {
		err = cleanenv.ReadConfig(file, &cfg)
	} else {
		err = cleanenv.ReadEnv(&cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", sourceName(file), err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

func resolveFile(path string) (string, error) {
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("config: file %s: %w", path, err)
		}
		return path, nil
	}
	if _, err := os.Stat(defaultConfigFile); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("config: file %s: %w", defaultConfigFile, err)
	}
	return defaultConfigFile, nil
}

func sourceName(file string) string {
	if file == "" {
		return "env"
	}
	return file
}
