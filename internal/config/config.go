// Package config loads the application configuration.
package config

import (
	"time"
)

type Config struct {
	Dictionary  DictionaryConfig  `yaml:"dictionary"`
	Anki        AnkiConfig        `yaml:"anki"`
	Translation TranslationConfig `yaml:"translation"`
	Workers     int               `yaml:"workers" env:"SONAVEEB_WORKERS" env-default:"4"`
	Log         LogConfig         `yaml:"log"`
}

// DictionaryConfig holds Sõnaveeb settings.
type DictionaryConfig struct {
	Profile  string        `yaml:"profile"  env:"SONAVEEB_PROFILE"  env-default:"lite"`
	BaseURL  string        `yaml:"base_url" env:"SONAVEEB_BASE_URL" env-default:"https://sonaveeb.ee"`
	Timeout  time.Duration `yaml:"timeout"  env:"SONAVEEB_TIMEOUT"  env-default:"10s"`
	Language string        `yaml:"language" env:"SONAVEEB_LANGUAGE" env-default:"et"`
}

type AnkiConfig struct {
	ConnectURL   string `yaml:"connect_url"   env:"ANKI_CONNECT_URL"   env-default:"http://localhost:8765"`
	Deck         string `yaml:"deck"          env:"ANKI_DECK"          env-default:"Sõnaveeb"`
	NoteType     string `yaml:"note_type"     env:"ANKI_NOTE_TYPE"     env-default:"Sõnaveeb (from Estonian)"`
	RegistryPath string `yaml:"registry_path" env:"ANKI_REGISTRY_PATH" env-default:"~/.sonaveeb-anki/markers.db"`
}

// TranslationConfig controls the fallback used when the dictionary has no
// translation into Language.
type TranslationConfig struct {
	Language  string `yaml:"language"  env:"TRANSLATION_LANGUAGE"  env-default:"en"`
	Backend   string `yaml:"backend"   env:"TRANSLATION_BACKEND"   env-default:"web"`
	WebURL    string `yaml:"web_url"   env:"TRANSLATION_WEB_URL"   env-default:"https://translate.google.com/m"`
	Threshold int    `yaml:"threshold" env:"TRANSLATION_THRESHOLD"`

	// CredentialsFile is a service account key for the google backend.
	CredentialsFile string `yaml:"credentials_file" env:"GOOGLE_APPLICATION_CREDENTIALS"`
}

type LogConfig struct {
	Level   string `yaml:"level"   env:"LOG_LEVEL"   env-default:"info"`
	Verbose bool   `yaml:"verbose" env:"LOG_VERBOSE"`
}
