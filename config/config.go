// Package config defines the optional settings file for ytscript.
//
// The file is YAML:
//
//	languages: [en, de]
//	log_level: info
//	http:
//	  timeout: 30s
//	  proxy: http://proxy.example.com:3128
//	  user_agent: ytscript/1.0
//	  accept_language: en-US
//
// All fields are optional. Unknown fields are an error.
//
// When no file is named explicitly, Locate looks for one in the location
// given by the YTSCRIPT_CONFIG environment variable, then in the user's
// configuration directory.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// Config holds the settings for a run.
type Config struct {
	// Languages are the default preferred languages for extract, used when
	// none are given on the command line.
	Languages []string `yaml:"languages,omitempty"`

	// LogLevel is the minimum level of log messages written to stderr.
	LogLevel string `yaml:"log_level,omitempty"`

	HTTP HTTP `yaml:"http,omitempty"`
}

// HTTP holds settings for requests to YouTube.
type HTTP struct {
	Timeout        Duration `yaml:"timeout,omitempty"` // zero means no limit
	Proxy          string   `yaml:"proxy,omitempty"`
	UserAgent      string   `yaml:"user_agent,omitempty"`
	AcceptLanguage string   `yaml:"accept_language,omitempty"`
}

// Default returns the settings used when no file is given.
func Default() Config {
	return Config{
		Languages: []string{"en"},
		LogLevel:  "warn",
		HTTP:      HTTP{AcceptLanguage: "en-US"},
	}
}

// EnvVar names the environment variable consulted by Locate.
const EnvVar = "YTSCRIPT_CONFIG"

// Locate returns the path of the settings file to use when none is given on
// the command line, or "" if there is none. A path named by EnvVar is
// returned whether or not it exists, so that a typo is reported by Load.
func Locate() string {
	if path := os.Getenv(EnvVar); path != "" {
		return path
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	path := filepath.Join(dir, "ytscript", "config.yaml")
	if fileExists(path) {
		return path
	}
	return ""
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Load reads the settings file at path. Fields missing from the file keep
// their default values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes and validates settings from data.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decoding: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports whether the settings are usable.
func (c Config) Validate() error {
	if _, err := c.Level(); err != nil {
		return err
	}
	if _, err := c.ProxyURL(); err != nil {
		return err
	}
	if c.HTTP.Timeout < 0 {
		return fmt.Errorf("http.timeout: must not be negative (got %v)", c.HTTP.Timeout)
	}
	return nil
}

// Level returns the parsed log level.
func (c Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if strings.TrimSpace(c.LogLevel) == "" {
		return slog.LevelWarn, nil
	}
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("log_level: unsupported value %q", c.LogLevel)
	}
	return lvl, nil
}

// ProxyURL returns the parsed proxy URL, or nil if no proxy is set.
func (c Config) ProxyURL() (*url.URL, error) {
	if c.HTTP.Proxy == "" {
		return nil, nil
	}
	u, err := url.Parse(c.HTTP.Proxy)
	if err != nil {
		return nil, fmt.Errorf("http.proxy: %w", err)
	} else if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("http.proxy: %q is not an absolute URL", c.HTTP.Proxy)
	}
	return u, nil
}

// A Duration is a time.Duration encoded as a string like "30s" or "1m30s".
type Duration time.Duration

func (d Duration) String() string { return time.Duration(d).String() }

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	v, err := time.ParseDuration(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: invalid duration %q", node.Line, node.Value)
	}
	*d = Duration(v)
	return nil
}
