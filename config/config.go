// Package config loads the .autopo.yaml project file and merges provider
// credentials from the environment and the user's credential store.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/minios-linux/autopo/provider"
	"github.com/minios-linux/autopo/settings"
)

// FileName is the default config file name.
const FileName = ".autopo.yaml"

// DefaultThrottle is the pause between provider calls.
const DefaultThrottle = time.Second

// ---------------------------------------------------------------------------
// YAML schema
// ---------------------------------------------------------------------------

// Config is the .autopo.yaml structure after defaults are applied.
type Config struct {
	// UseI18N gates the whole translate command (default true).
	UseI18N bool `yaml:"use_i18n"`
	// LocalePaths are the locale roots, relative to Root unless absolute.
	LocalePaths []string `yaml:"locale_paths,omitempty"`
	// SourceLanguage is the language msgids are written in (default "en").
	SourceLanguage string `yaml:"source_language,omitempty"`
	// Provider is the translation provider id (default "google").
	Provider string `yaml:"provider,omitempty"`
	// Throttle is the pause between provider calls, in seconds.
	Throttle string `yaml:"throttle,omitempty"`
	// Memory is the path of the SQLite translation memory; empty disables it.
	Memory string `yaml:"memory,omitempty"`
	// Credentials holds provider settings.
	Credentials provider.Credentials `yaml:"credentials,omitempty"`

	// Root is the project root the file was loaded for.
	Root string `yaml:"-"`
	// Path is the config file that was read; empty when defaults were used.
	Path string `yaml:"-"`
}

// Default returns the configuration used when no file exists.
func Default(root string) *Config {
	return &Config{
		UseI18N:        true,
		SourceLanguage: "en",
		Provider:       provider.DefaultID,
		Throttle:       "1",
		Root:           root,
	}
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads the config for root. An empty path means <root>/.autopo.yaml,
// whose absence is not an error. An explicitly named file must exist.
func Load(root, path string) (*Config, error) {
	if root == "" {
		root = "."
	}
	cfg := Default(root)

	explicit := path != ""
	if !explicit {
		path = filepath.Join(root, FileName)
	} else if !filepath.IsAbs(path) {
		if _, err := os.Stat(path); err != nil {
			path = filepath.Join(root, path)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	cfg.Path = path

	// Defaults for keys present but blank
	if cfg.SourceLanguage == "" {
		cfg.SourceLanguage = "en"
	}
	if cfg.Provider == "" {
		cfg.Provider = provider.DefaultID
	}
	if cfg.Throttle == "" {
		cfg.Throttle = "1"
	}
	return cfg, nil
}

// ApplyEnv overrides credentials with the provider environment variables
// (DEEPL_TRANSLATE_KEY, ...). Unset variables leave the file values alone.
func (c *Config) ApplyEnv() error {
	if err := envconfig.Process("", &c.Credentials); err != nil {
		return fmt.Errorf("reading provider environment: %w", err)
	}
	return nil
}

// FillFromStore copies credentials from the user's credential store into
// every setting that is still empty.
func (c *Config) FillFromStore(store settings.Store) {
	creds := &c.Credentials
	for id, info := range store {
		if info == nil {
			continue
		}
		if creds.Key(id) == "" && info.Key != "" {
			creds.SetKey(id, info.Key)
		}
		switch id {
		case provider.Papago:
			if info.IsClient() && creds.PapagoSecret == "" {
				creds.PapagoSecret = info.Secret
			}
		case provider.Microsoft:
			if creds.MicrosoftRegion == "" {
				creds.MicrosoftRegion = info.Region
			}
		case provider.Libre:
			if creds.LibreMirrorURL == "" {
				creds.LibreMirrorURL = info.BaseURL
			}
		case provider.OpenAI:
			if creds.OpenAIBaseURL == "" {
				creds.OpenAIBaseURL = info.BaseURL
			}
		}
	}
}

// ApplyAPIKey sets the primary secret of provider id; an empty key is a no-op.
func (c *Config) ApplyAPIKey(id, key string) {
	if key == "" {
		return
	}
	c.Credentials.SetKey(id, key)
}

// ---------------------------------------------------------------------------
// Validation
// ---------------------------------------------------------------------------

// Validate reports every problem found in the merged configuration.
func (c *Config) Validate() error {
	var err error
	if !provider.Known(c.Provider) {
		err = multierr.Append(err, fmt.Errorf("%w: %q", provider.ErrUnknownProvider, c.Provider))
	} else {
		err = multierr.Append(err, c.Credentials.Validate(c.Provider))
	}
	if strings.TrimSpace(c.SourceLanguage) == "" {
		err = multierr.Append(err, errors.New("source_language must not be empty"))
	}
	return err
}

// ResolvedLocalePaths returns the locale roots as paths joined to Root.
func (c *Config) ResolvedLocalePaths() []string {
	out := make([]string, 0, len(c.LocalePaths))
	for _, p := range c.LocalePaths {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !filepath.IsAbs(p) {
			p = filepath.Join(c.Root, p)
		}
		out = append(out, p)
	}
	return out
}

// MemoryPath returns the translation memory path joined to Root, or "".
func (c *Config) MemoryPath() string {
	if c.Memory == "" || filepath.IsAbs(c.Memory) {
		return c.Memory
	}
	return filepath.Join(c.Root, c.Memory)
}

// ---------------------------------------------------------------------------
// Throttle
// ---------------------------------------------------------------------------

// ParseThrottle converts a number of seconds into a duration. Fractions are
// allowed and "0" disables the pause. Anything else yields DefaultThrottle
// and ok == false so the caller can warn.
func ParseThrottle(s string) (d time.Duration, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultThrottle, true
	}
	secs, err := strconv.ParseFloat(s, 64)
	if err != nil || secs < 0 || math.IsNaN(secs) || math.IsInf(secs, 0) {
		return DefaultThrottle, false
	}
	return time.Duration(secs * float64(time.Second)), true
}
