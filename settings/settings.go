// Package settings loads the server and CLI configuration: defaults, then an
// optional YAML or TOML file, then environment overrides. Command-line flags
// are applied last by the cli package.
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Storage backends.
const (
	StorageFile   = "file"
	StorageSQLite = "sqlite"
	StorageMemory = "memory"
)

// Settings is the full configuration.
type Settings struct {
	Addr    string  `yaml:"addr" toml:"addr"`
	DataDir string  `yaml:"data_dir" toml:"data_dir"`
	Storage string  `yaml:"storage" toml:"storage"`
	Watch   bool    `yaml:"watch" toml:"watch"`
	Catalog Catalog `yaml:"catalog" toml:"catalog"`
	Log     Log     `yaml:"log" toml:"log"`
}

// Catalog configures the remote community catalog.
type Catalog struct {
	URL           string   `yaml:"url" toml:"url"`
	Timeout       Duration `yaml:"timeout" toml:"timeout"`
	RatePerSecond float64  `yaml:"rate_per_second" toml:"rate_per_second"`
}

type Log struct {
	Level string `yaml:"level" toml:"level"`
	JSON  bool   `yaml:"json" toml:"json"`
}

// Duration is a time.Duration written as "5s" in settings files.
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	return d.UnmarshalText([]byte(node.Value))
}

// Default returns the built-in settings.
func Default() Settings {
	return Settings{
		Addr:    ":8080",
		DataDir: defaultDataDir(),
		Storage: StorageFile,
		Watch:   true,
		Catalog: Catalog{
			Timeout:       Duration(5 * time.Second),
			RatePerSecond: 2,
		},
		Log: Log{Level: "info"},
	}
}

func defaultDataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "ghostconf")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".ghostconf"
	}
	return filepath.Join(home, ".local", "share", "ghostconf")
}

// DefaultPath is the settings file used when none is named. It may not
// exist.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "ghostconf", "config.yaml")
}

// Load builds the settings from defaults, the file at path and the process
// environment. An empty path skips the file; a missing file is only an
// error when explicit is true.
func Load(path string, explicit bool) (Settings, error) {
	s := Default()
	if path != "" {
		err := s.mergeFile(path)
		if err != nil && (explicit || !errors.Is(err, os.ErrNotExist)) {
			return Settings{}, err
		}
	}
	s.ApplyEnv(os.Getenv)
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func (s *Settings) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading settings %s: %w", path, err)
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, s)
	case ".toml":
		err = toml.Unmarshal(data, s)
	default:
		return fmt.Errorf("settings %s: unsupported format %q", path, ext)
	}
	if err != nil {
		return fmt.Errorf("parsing settings %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides fields from environment variables read through getenv.
func (s *Settings) ApplyEnv(getenv func(string) string) {
	if port := getenv("PORT"); port != "" {
		s.Addr = ":" + port
	}
	if dir := getenv("GHOSTCONF_DATA_DIR"); dir != "" {
		s.DataDir = dir
	}
	if storage := getenv("GHOSTCONF_STORAGE"); storage != "" {
		s.Storage = storage
	}
	if url := getenv("GHOSTCONF_CATALOG_URL"); url != "" {
		s.Catalog.URL = url
	}
	if level := getenv("GHOSTCONF_LOG_LEVEL"); level != "" {
		s.Log.Level = level
	}
}

// Validate rejects settings no component can run with.
func (s Settings) Validate() error {
	switch s.Storage {
	case StorageFile, StorageSQLite, StorageMemory:
	default:
		return fmt.Errorf("unknown storage %q (want file, sqlite or memory)", s.Storage)
	}
	if s.Storage != StorageMemory && s.DataDir == "" {
		return errors.New("data_dir is required")
	}
	if s.Catalog.Timeout <= 0 {
		return errors.New("catalog timeout must be positive")
	}
	if s.Catalog.RatePerSecond <= 0 {
		return errors.New("catalog rate_per_second must be positive")
	}
	return nil
}
