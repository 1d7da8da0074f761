package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

const DefaultPath = "~/.sonaveeb-anki/config.yaml"

// Load reads configuration from a YAML file and environment variables.
// Priority: ENV > YAML > defaults. A missing file at the default path means
// ENV and defaults only; a missing file at any other path is an error.
func Load(path string) (*Config, error) {
	var cfg Config

	explicitPath := path != "" && path != DefaultPath
	if path == "" {
		path = DefaultPath
	}
	path = ExpandHome(path)

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if explicitPath || !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: file %s: %w", path, err)
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config: read env: %w", err)
		}
	}

	cfg.Anki.RegistryPath = ExpandHome(cfg.Anki.RegistryPath)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
