package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config is the resolved hitcard configuration.
type Config struct {
	Catalog Catalog
	Scanner Scanner
	Player  Player
	Server  Server
	Log     Log
}

// Catalog configures the lookup endpoint.
type Catalog struct {
	LookupURL string
	Country   string
	Timeout   time.Duration
}

// Scanner configures the scan pipeline.
type Scanner struct {
	Prefixes        []string
	DedupeWindow    time.Duration
	MessageTTL      time.Duration
	ValidateTimeout time.Duration
	SkipValidation  bool
}

// Player selects the audio backend.
type Player struct {
	Backend string
	MPVPath string
}

// Server configures the link server. An empty Listen disables it.
type Server struct {
	Listen string
}

// Log configures the log file.
type Log struct {
	Dir   string
	Level string
}

const (
	defaultConfigPath      = "~/.config/hitcard/config.toml"
	defaultLookupURL       = "https://itunes.apple.com/lookup"
	defaultCatalogTimeout  = 10 * time.Second
	defaultDedupeWindow    = 2 * time.Second
	defaultMessageTTL      = 3 * time.Second
	defaultValidateTimeout = 5 * time.Second
	defaultBackend         = "auto"
	defaultMPVPath         = "mpv"
	defaultListen          = "127.0.0.1:7488"
	defaultLogLevel        = "info"
)

// Env variables that override file values.
const (
	EnvLookupURL     = "HITCARD_LOOKUP_URL"
	EnvListen        = "HITCARD_LISTEN"
	EnvLogLevel      = "HITCARD_LOG_LEVEL"
	EnvPlayerBackend = "HITCARD_PLAYER_BACKEND"
)

type rawConfig struct {
	Catalog struct {
		LookupURL string `toml:"lookup_url"`
		Country   string `toml:"country"`
		Timeout   string `toml:"timeout"`
	} `toml:"catalog"`
	Scanner struct {
		Prefixes        []string `toml:"prefixes"`
		DedupeWindow    string   `toml:"dedupe_window"`
		MessageTTL      string   `toml:"message_ttl"`
		ValidateTimeout string   `toml:"validate_timeout"`
		SkipValidation  bool     `toml:"skip_validation"`
	} `toml:"scanner"`
	Player struct {
		Backend string `toml:"backend"`
		MPVPath string `toml:"mpv_path"`
	} `toml:"player"`
	Server struct {
		Listen *string `toml:"listen"`
	} `toml:"server"`
	Log struct {
		Dir   string `toml:"dir"`
		Level string `toml:"level"`
	} `toml:"log"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Catalog: Catalog{LookupURL: defaultLookupURL, Timeout: defaultCatalogTimeout},
		Scanner: Scanner{
			DedupeWindow:    defaultDedupeWindow,
			MessageTTL:      defaultMessageTTL,
			ValidateTimeout: defaultValidateTimeout,
		},
		Player: Player{Backend: defaultBackend, MPVPath: defaultMPVPath},
		Server: Server{Listen: defaultListen},
		Log:    Log{Level: defaultLogLevel},
	}
}

// Load locates and parses the config file, falling back to defaults when it
// is missing, then applies environment overrides.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg.ApplyEnv(os.LookupEnv)
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw rawConfig
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.merge(raw); err != nil {
		return Config{}, err
	}
	cfg.ApplyEnv(os.LookupEnv)
	return cfg, nil
}

func (c *Config) merge(raw rawConfig) error {
	if v := strings.TrimSpace(raw.Catalog.LookupURL); v != "" {
		c.Catalog.LookupURL = v
	}
	c.Catalog.Country = strings.ToUpper(strings.TrimSpace(raw.Catalog.Country))

	var err error
	if c.Catalog.Timeout, err = duration("catalog.timeout", raw.Catalog.Timeout, c.Catalog.Timeout); err != nil {
		return err
	}
	if c.Scanner.DedupeWindow, err = duration("scanner.dedupe_window", raw.Scanner.DedupeWindow, c.Scanner.DedupeWindow); err != nil {
		return err
	}
	if c.Scanner.MessageTTL, err = duration("scanner.message_ttl", raw.Scanner.MessageTTL, c.Scanner.MessageTTL); err != nil {
		return err
	}
	if c.Scanner.ValidateTimeout, err = duration("scanner.validate_timeout", raw.Scanner.ValidateTimeout, c.Scanner.ValidateTimeout); err != nil {
		return err
	}
	for _, p := range raw.Scanner.Prefixes {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !strings.HasPrefix(p, "/") || !strings.HasSuffix(p, "/") {
			return fmt.Errorf("parse config: scanner.prefixes: %q must start and end with /", p)
		}
		c.Scanner.Prefixes = append(c.Scanner.Prefixes, p)
	}
	c.Scanner.SkipValidation = raw.Scanner.SkipValidation

	if v := strings.TrimSpace(raw.Player.Backend); v != "" {
		c.Player.Backend = strings.ToLower(v)
	}
	if v := strings.TrimSpace(raw.Player.MPVPath); v != "" {
		c.Player.MPVPath = mustExpand(v)
	}

	// An explicit empty listen address disables the server.
	if raw.Server.Listen != nil {
		c.Server.Listen = strings.TrimSpace(*raw.Server.Listen)
	}

	if v := strings.TrimSpace(raw.Log.Dir); v != "" {
		c.Log.Dir = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.Log.Level); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	return nil
}

// ApplyEnv overrides fields from the environment. lookup is usually
// os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvLookupURL); ok && strings.TrimSpace(v) != "" {
		c.Catalog.LookupURL = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvListen); ok {
		c.Server.Listen = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvLogLevel); ok && strings.TrimSpace(v) != "" {
		c.Log.Level = strings.ToLower(strings.TrimSpace(v))
	}
	if v, ok := lookup(EnvPlayerBackend); ok && strings.TrimSpace(v) != "" {
		c.Player.Backend = strings.ToLower(strings.TrimSpace(v))
	}
}

func duration(field, value string, fallback time.Duration) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("parse config: %s: %w", field, err)
	}
	return d, nil
}

// DefaultPath returns the expanded default config location.
func DefaultPath() string {
	return mustExpand(defaultConfigPath)
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
