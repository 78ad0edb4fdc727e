// Package config loads the blogcore settings from a YAML or TOML file, a .env file and
// BLOGCORE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/hypergopher/blogcore"
)

const (
	DriverMemory = "memory"
	DriverBbolt  = "bbolt"
	DriverSQLite = "sqlite"
)

var (
	ErrUnknownDriver      = errors.New("unknown store driver")
	ErrUnknownFrontmatter = errors.New("unknown frontmatter format")
	ErrUnknownLogFormat   = errors.New("unknown log format")
	ErrMissingDataDir     = errors.New("store data_dir is required")
)

type Config struct {
	Store    StoreConfig    `yaml:"store" toml:"store"`
	Content  ContentConfig  `yaml:"content" toml:"content"`
	Curation CurationConfig `yaml:"curation" toml:"curation"`
	Render   RenderConfig   `yaml:"render" toml:"render"`
	Log      LogConfig      `yaml:"log" toml:"log"`

	// Authors maps author names to the profile shown next to their posts.
	Authors map[string]blogcore.Author `yaml:"authors" toml:"authors"`
}

type StoreConfig struct {
	Driver  string `yaml:"driver" toml:"driver"`
	DataDir string `yaml:"data_dir" toml:"data_dir"`
	// DSN is the sqlite database file. Defaults to blogcore.sqlite inside DataDir.
	DSN string `yaml:"dsn" toml:"dsn"`
}

type ContentConfig struct {
	Dir         string `yaml:"dir" toml:"dir"`
	Frontmatter string `yaml:"frontmatter" toml:"frontmatter"`
}

type CurationConfig struct {
	Featured int `yaml:"featured" toml:"featured"`
	Latest   int `yaml:"latest" toml:"latest"`
}

type RenderConfig struct {
	PlaceholderCover string `yaml:"placeholder_cover" toml:"placeholder_cover"`
	DefaultAlt       string `yaml:"default_alt" toml:"default_alt"`
}

type LogConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Driver:  DriverMemory,
			DataDir: "./data",
		},
		Content: ContentConfig{
			Frontmatter: "yaml",
		},
		Curation: CurationConfig{
			Featured: 3,
			Latest:   4,
		},
		Render: RenderConfig{
			PlaceholderCover: "/placeholder.svg",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the config file at path on top of the defaults. The format is picked by extension
// (.toml, otherwise YAML). An empty path skips the file. A .env file in the working directory is
// loaded first and BLOGCORE_* variables are applied last.
func Load(path string) (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := Parse(data, filepath.Ext(path), cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Parse decodes data into cfg. Ext ".toml" selects TOML, anything else YAML.
func Parse(data []byte, ext string, cfg *Config) error {
	switch strings.ToLower(ext) {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return fmt.Errorf("failed to parse config TOML: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse config YAML: %w", err)
		}
	}
	return nil
}

func (c *Config) applyEnv() error {
	strVars := map[string]*string{
		"BLOGCORE_STORE_DRIVER":             &c.Store.Driver,
		"BLOGCORE_STORE_DATA_DIR":           &c.Store.DataDir,
		"BLOGCORE_STORE_DSN":                &c.Store.DSN,
		"BLOGCORE_CONTENT_DIR":              &c.Content.Dir,
		"BLOGCORE_CONTENT_FRONTMATTER":      &c.Content.Frontmatter,
		"BLOGCORE_RENDER_PLACEHOLDER_COVER": &c.Render.PlaceholderCover,
		"BLOGCORE_RENDER_DEFAULT_ALT":       &c.Render.DefaultAlt,
		"BLOGCORE_LOG_LEVEL":                &c.Log.Level,
		"BLOGCORE_LOG_FORMAT":               &c.Log.Format,
	}
	for name, field := range strVars {
		if v := os.Getenv(name); v != "" {
			*field = v
		}
	}

	intVars := map[string]*int{
		"BLOGCORE_CURATION_FEATURED": &c.Curation.Featured,
		"BLOGCORE_CURATION_LATEST":   &c.Curation.Latest,
	}
	for name, field := range intVars {
		if v := os.Getenv(name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", name, err)
			}
			*field = n
		}
	}

	return nil
}

// Validate checks the enumerated settings and fills derived defaults.
func (c *Config) Validate() error {
	c.Store.Driver = strings.ToLower(strings.TrimSpace(c.Store.Driver))
	switch c.Store.Driver {
	case DriverMemory:
	case DriverBbolt, DriverSQLite:
		if c.Store.DataDir == "" && c.Store.DSN == "" {
			return ErrMissingDataDir
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDriver, c.Store.Driver)
	}

	if c.Store.Driver == DriverSQLite && c.Store.DSN == "" {
		c.Store.DSN = filepath.Join(c.Store.DataDir, "blogcore.sqlite")
	}

	switch strings.ToLower(c.Content.Frontmatter) {
	case "", "yaml", "toml":
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFrontmatter, c.Content.Frontmatter)
	}

	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: %q", ErrUnknownLogFormat, c.Log.Format)
	}

	if c.Curation.Featured <= 0 {
		c.Curation.Featured = 3
	}
	if c.Curation.Latest <= 0 {
		c.Curation.Latest = 4
	}

	return nil
}
