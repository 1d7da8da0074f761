package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	validProfiles = []string{"lite", "simplified", "advanced", "comprehensive", "unif"}
	validBackends = []string{"web", "google", "none"}
	validLevels   = []string{"error", "warn", "warning", "info", "debug", "trace"}
)

// Validate checks the loaded configuration and reports every problem found.
func (c *Config) Validate() error {
	var errs []error

	if !slices.Contains(validProfiles, strings.ToLower(c.Dictionary.Profile)) {
		errs = append(errs, fmt.Errorf("dictionary.profile: unknown profile %q", c.Dictionary.Profile))
	}
	if c.Dictionary.BaseURL == "" {
		errs = append(errs, errors.New("dictionary.base_url is required"))
	}
	if c.Dictionary.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("dictionary.timeout must be positive, got %s", c.Dictionary.Timeout))
	}
	if c.Dictionary.Language == "" {
		errs = append(errs, errors.New("dictionary.language is required"))
	}

	if c.Anki.ConnectURL == "" {
		errs = append(errs, errors.New("anki.connect_url is required"))
	}
	if strings.TrimSpace(c.Anki.Deck) == "" {
		errs = append(errs, errors.New("anki.deck is required"))
	}
	if c.Anki.NoteType == "" {
		errs = append(errs, errors.New("anki.note_type is required"))
	}

	if c.Translation.Language == "" {
		errs = append(errs, errors.New("translation.language is required"))
	}
	if !slices.Contains(validBackends, c.Translation.Backend) {
		errs = append(errs, fmt.Errorf("translation.backend: unknown backend %q", c.Translation.Backend))
	}
	if c.Translation.Threshold < 0 {
		errs = append(errs, fmt.Errorf("translation.threshold must not be negative, got %d", c.Translation.Threshold))
	}

	if c.Workers <= 0 {
		errs = append(errs, fmt.Errorf("workers must be positive, got %d", c.Workers))
	}
	if !slices.Contains(validLevels, strings.ToLower(c.Log.Level)) {
		errs = append(errs, fmt.Errorf("log.level: unknown level %q", c.Log.Level))
	}

	return errors.Join(errs...)
}
