package util

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	DefaultLogLevel        = "error"
	DefaultStoreDriver     = "sqlite3"
	DefaultMaxResolveDepth = 1000
	DefaultDebounce        = 100 * time.Millisecond
)

type Configuration struct {
	Version   string `toml:"-"`
	BuildDate string `toml:"-"`
	Commit    string `toml:"-"`

	RootPath        string `toml:"root"`
	LogLevel        string `toml:"log_level"`
	LogFile         string `toml:"log_file"`
	MaxResolveDepth int    `toml:"max_resolve_depth"`

	Store StoreConfig `toml:"store"`
	Watch WatchConfig `toml:"watch"`
}

// StoreConfig selects where evaluated sheets are saved. An empty DSN disables
// saving.
type StoreConfig struct {
	Driver string `toml:"driver"`
	DSN    string `toml:"dsn"`
}

type WatchConfig struct {
	Debounce Duration `toml:"debounce"`
}

// Duration reads TOML strings such as "250ms".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

func DefaultConfiguration() Configuration {
	return Configuration{
		RootPath:        ".",
		LogLevel:        DefaultLogLevel,
		MaxResolveDepth: DefaultMaxResolveDepth,
		Store:           StoreConfig{Driver: DefaultStoreDriver},
		Watch:           WatchConfig{Debounce: Duration{DefaultDebounce}},
	}
}

// LoadConfig reads a TOML file over the defaults. A missing file is not an
// error; the defaults are returned as is.
func LoadConfig(path string) (Configuration, error) {
	config := DefaultConfiguration()
	if path == "" {
		return config, nil
	}
	meta, err := toml.DecodeFile(path, &config)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultConfiguration(), nil
	}
	if err != nil {
		return config, fmt.Errorf("failed to load config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return config, fmt.Errorf("unknown config keys in %s: %v", path, undecoded)
	}
	if config.MaxResolveDepth <= 0 {
		return config, fmt.Errorf("max_resolve_depth must be positive, got %d", config.MaxResolveDepth)
	}
	return config, nil
}
