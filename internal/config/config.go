package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/chanwatch/api"
)

// Config holds the settings shared by every chanwatch command.
type Config struct {
	HTTPS        bool
	UserAgent    string
	Timeout      time.Duration
	PollInterval time.Duration
	LogLevel     string
	LogFile      string
	Site         api.Site
}

const (
	defaultConfigPath   = "~/.config/chanwatch/config.toml"
	defaultLogFile      = "~/.local/state/chanwatch/chanwatch.log"
	defaultTimeout      = "10s"
	defaultPollInterval = "10s"
	defaultLogLevel     = "info"
)

// dotenvPath is read before the environment overrides are applied.
var dotenvPath = ".env"

type siteFile struct {
	API              string `toml:"api" env:"CHANWATCH_SITE_API"`
	Boards           string `toml:"boards" env:"CHANWATCH_SITE_BOARDS"`
	Files            string `toml:"files" env:"CHANWATCH_SITE_FILES"`
	Thumbs           string `toml:"thumbs" env:"CHANWATCH_SITE_THUMBS"`
	Static           string `toml:"static" env:"CHANWATCH_SITE_STATIC"`
	ZeroIndexedPages bool   `toml:"zero_indexed_pages" env:"CHANWATCH_SITE_ZERO_INDEXED_PAGES"`
}

type file struct {
	HTTPS        bool     `toml:"https" env:"CHANWATCH_HTTPS"`
	UserAgent    string   `toml:"user_agent" env:"CHANWATCH_USER_AGENT"`
	Timeout      string   `toml:"timeout" env:"CHANWATCH_TIMEOUT"`
	PollInterval string   `toml:"poll_interval" env:"CHANWATCH_POLL_INTERVAL"`
	LogLevel     string   `toml:"log_level" env:"CHANWATCH_LOG_LEVEL"`
	LogFile      string   `toml:"log_file" env:"CHANWATCH_LOG_FILE"`
	Site         siteFile `toml:"site"`
}

func defaults() file {
	return file{
		HTTPS:        true,
		UserAgent:    api.DefaultUserAgent,
		Timeout:      defaultTimeout,
		PollInterval: defaultPollInterval,
		LogLevel:     defaultLogLevel,
		LogFile:      defaultLogFile,
		Site: siteFile{
			API:    api.FourChan.API,
			Boards: api.FourChan.Boards,
			Files:  api.FourChan.Files,
			Thumbs: api.FourChan.Thumbs,
			Static: api.FourChan.Static,
		},
	}
}

// Load reads the config file at path (the default location when empty),
// then applies CHANWATCH_* environment variables, including those set by a
// .env file in the working directory. A missing config file is not an error.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	raw := defaults()
	if err := readFile(resolved, &raw); err != nil {
		return Config{}, err
	}

	if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", dotenvPath, err)
	}
	if err := cleanenv.ReadEnv(&raw); err != nil {
		return Config{}, fmt.Errorf("read environment: %w", err)
	}

	return raw.normalize()
}

func readFile(path string, raw *file) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	bytes, err := io.ReadAll(f)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(bytes, raw); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

func (raw file) normalize() (Config, error) {
	def := defaults()
	cfg := Config{
		HTTPS:     raw.HTTPS,
		UserAgent: orDefault(raw.UserAgent, def.UserAgent),
		LogLevel:  strings.ToLower(orDefault(raw.LogLevel, def.LogLevel)),
		Site: api.Site{
			API:              orDefault(raw.Site.API, def.Site.API),
			Boards:           orDefault(raw.Site.Boards, def.Site.Boards),
			Files:            orDefault(raw.Site.Files, def.Site.Files),
			Thumbs:           orDefault(raw.Site.Thumbs, def.Site.Thumbs),
			Static:           orDefault(raw.Site.Static, def.Site.Static),
			ZeroIndexedPages: raw.Site.ZeroIndexedPages,
		},
	}

	var err error
	if cfg.Timeout, err = parseDuration("timeout", orDefault(raw.Timeout, def.Timeout)); err != nil {
		return Config{}, err
	}
	if cfg.PollInterval, err = parseDuration("poll_interval", orDefault(raw.PollInterval, def.PollInterval)); err != nil {
		return Config{}, err
	}
	if cfg.LogFile, err = expandPath(orDefault(raw.LogFile, def.LogFile)); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func parseDuration(key, value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, value)
	}
	return d, nil
}

func orDefault(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}

// DefaultPath returns the config location used when none is given.
func DefaultPath() string {
	return defaultConfigPath
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

// ExpandPath resolves a leading ~ and makes path absolute.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
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
