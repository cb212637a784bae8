// Package config loads process configuration from an optional YAML file and
// environment variables, in that order of precedence (env wins).
package config

import (
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

// envPrefix namespaces the environment variables this process reads, e.g.
// DROPSHELF_BOOKS_DIR maps to the books_dir key.
const envPrefix = "DROPSHELF_"

// configFileENV points at the optional YAML config file.
const configFileENV = "DROPSHELF_CONFIG"

type Config struct {
	BooksDir          string        `koanf:"books_dir" default:"/books"`
	CacheDir          string        `koanf:"cache_dir" default:"/cache"`
	ServerHost        string        `koanf:"server_host" default:""`
	ServerPort        int           `koanf:"server_port" default:"8080"`
	MaxResults        int           `koanf:"max_results" default:"50"`
	FeedTitle         string        `koanf:"feed_title" default:"My Book Library"`
	FeedAuthor        string        `koanf:"feed_author" default:"DropShelf OPDS Server"`
	AuthEnabled       bool          `koanf:"auth_enabled"`
	AuthUsername      string        `koanf:"auth_username"`
	AuthPassword      string        `koanf:"auth_password"`
	AuthPasswordHash  string        `koanf:"auth_password_hash"`
	AllowedExtensions []string      `koanf:"allowed_extensions" default:"[\".epub\",\".pdf\",\".mobi\"]"`
	ScanTimeout       time.Duration `koanf:"scan_timeout" default:"500ms"`
	EnrichTimeout     time.Duration `koanf:"enrich_timeout" default:"300ms"`
	EnrichSaveEvery   int           `koanf:"enrich_save_every" default:"50"`

	Hostname string `koanf:"-"`
}

// New loads configuration: struct defaults, then the YAML file named by
// DROPSHELF_CONFIG (if any), then DROPSHELF_* environment variables.
func New() (*Config, error) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, errors.WithStack(err)
	}

	k := koanf.New(".")

	if path := os.Getenv(configFileENV); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, errors.Wrap(err, "config file")
		}
	}

	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errors.WithStack(err)
	}

	hostname, err := os.Hostname()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	cfg.Hostname = hostname

	return cfg, nil
}

// Validate checks invariants that would otherwise fail obscurely at runtime.
func (c *Config) Validate() error {
	info, err := os.Stat(c.BooksDir)
	if err != nil {
		return errors.Wrapf(err, "books directory %q", c.BooksDir)
	}
	if !info.IsDir() {
		return errors.Errorf("books directory %q is not a directory", c.BooksDir)
	}
	if c.MaxResults < 1 {
		return errors.New("max_results must be at least 1")
	}
	if c.ScanTimeout <= 0 || c.EnrichTimeout <= 0 {
		return errors.New("extraction timeouts must be positive")
	}
	if c.EnrichSaveEvery < 1 {
		return errors.New("enrich_save_every must be at least 1")
	}
	if c.AuthEnabled && c.AuthUsername == "" {
		return errors.New("auth enabled but no username configured")
	}
	if c.AuthEnabled && c.AuthPassword == "" && c.AuthPasswordHash == "" {
		return errors.New("auth enabled but no password or password hash configured")
	}
	return nil
}

// ExtensionSet returns the allowed extensions as a lookup set with lowercased,
// dot-prefixed keys.
func (c *Config) ExtensionSet() map[string]struct{} {
	set := make(map[string]struct{}, len(c.AllowedExtensions))
	for _, ext := range c.AllowedExtensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		set[ext] = struct{}{}
	}
	return set
}
