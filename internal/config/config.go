package config

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/fakeyudi/worktime/internal/event"
	"github.com/fakeyudi/worktime/internal/session"
)

// Config holds all configurable worktime settings. Durations and clock
// times stay strings here so an unset key can be told apart from "0".
type Config struct {
	LogPath       string            `yaml:"log_path,omitempty"`
	SourceFormat  string            `yaml:"source_format,omitempty"` // empty: detect from extension
	DayBoundary   string            `yaml:"day_boundary,omitempty"`  // "HH:MM"
	Timezone      string            `yaml:"timezone,omitempty"`      // IANA name, empty: local
	Synonyms      map[string]string `yaml:"event_label_synonyms,omitempty"`
	Unterminated  string            `yaml:"unterminated,omitempty"` // "last" | "now"
	MinDailyWork  string            `yaml:"min_daily_work,omitempty"`
	MaxDailyBreak string            `yaml:"max_daily_break,omitempty"`
	DefaultFormat string            `yaml:"default_format,omitempty"` // "text" | "markdown" | "json" | "html"
	OutputDir     string            `yaml:"output_dir,omitempty"`
	ArchivePath   string            `yaml:"archive_path,omitempty"`
	Author        string            `yaml:"author,omitempty"`
}

// ProjectFile is the per-directory config file name.
const ProjectFile = ".worktime.yaml"

// Defaults returns sensible default configuration values.
func Defaults() Config {
	return Config{
		DayBoundary:   "00:00",
		Unterminated:  string(session.TruncateAtLastEvent),
		MinDailyWork:  "6h",
		MaxDailyBreak: "1h",
		DefaultFormat: "text",
		OutputDir:     ".",
		Synonyms:      map[string]string{},
	}
}

// GlobalPath returns ~/.config/worktime/config.yaml.
func GlobalPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "worktime", "config.yaml"), nil
}

// LoadGlobal reads ~/.config/worktime/config.yaml.
// Returns defaults if the file is absent.
func LoadGlobal() (*Config, error) {
	path, err := GlobalPath()
	if err != nil {
		return nil, err
	}
	return loadFile(path, true)
}

// LoadProject reads .worktime.yaml in the current working directory.
// Returns nil (no error) if the file is absent.
func LoadProject() (*Config, error) {
	return loadFile(ProjectFile, false)
}

// LoadFile reads the config file at path; a missing file is an error.
func LoadFile(path string) (*Config, error) {
	cfg, err := loadFile(path, false)
	if err == nil && cfg == nil {
		return nil, fmt.Errorf("config file not found: %s", path)
	}
	return cfg, err
}

// loadFile reads and parses a YAML (or JSON) config file at path.
// If returnDefaults is true, returns defaults when the file is absent.
// If returnDefaults is false, returns nil when the file is absent.
func loadFile(path string, returnDefaults bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if returnDefaults {
				d := Defaults()
				return &d, nil
			}
			return nil, nil
		}
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return &cfg, nil
}

// SaveGlobal writes cfg to the global config file, creating the directory
// if needed.
func SaveGlobal(cfg *Config) error {
	path, err := GlobalPath()
	if err != nil {
		return err
	}
	return Save(path, cfg)
}

// Save writes cfg as YAML to path.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Merge combines global and project configs, with project taking precedence.
// Missing keys fall back to global, then defaults. Synonym maps are merged
// key by key.
func Merge(global, project *Config) Config {
	result := Defaults()
	for _, layer := range []*Config{global, project} {
		if layer == nil {
			continue
		}
		overlay(&result.LogPath, layer.LogPath)
		overlay(&result.SourceFormat, layer.SourceFormat)
		overlay(&result.DayBoundary, layer.DayBoundary)
		overlay(&result.Timezone, layer.Timezone)
		overlay(&result.Unterminated, layer.Unterminated)
		overlay(&result.MinDailyWork, layer.MinDailyWork)
		overlay(&result.MaxDailyBreak, layer.MaxDailyBreak)
		overlay(&result.DefaultFormat, layer.DefaultFormat)
		overlay(&result.OutputDir, layer.OutputDir)
		overlay(&result.ArchivePath, layer.ArchivePath)
		overlay(&result.Author, layer.Author)
		maps.Copy(result.Synonyms, layer.Synonyms)
	}
	return result
}

func overlay(dst *string, v string) {
	if strings.TrimSpace(v) != "" {
		*dst = v
	}
}

// Location resolves Timezone; empty means the local zone.
func (c Config) Location() (*time.Location, error) {
	if strings.TrimSpace(c.Timezone) == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(strings.TrimSpace(c.Timezone))
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Thresholds parses the daily warning thresholds. "0" disables a check.
func (c Config) Thresholds() (session.Thresholds, error) {
	minWork, err := parseDuration("min_daily_work", c.MinDailyWork)
	if err != nil {
		return session.Thresholds{}, err
	}
	maxBreak, err := parseDuration("max_daily_break", c.MaxDailyBreak)
	if err != nil {
		return session.Thresholds{}, err
	}
	return session.Thresholds{MinActive: minWork, MaxBreak: maxBreak}, nil
}

func parseDuration(key, s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s %q: must not be negative", key, s)
	}
	return d, nil
}

// Policy parses the unterminated-session policy.
func (c Config) Policy() (session.UnterminatedPolicy, error) {
	return session.ParseUnterminatedPolicy(c.Unterminated)
}

// Validate checks every key that has a fixed syntax.
func (c Config) Validate() error {
	var errs []error
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	if _, err := session.ParseBoundary(c.DayBoundary, time.UTC); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Thresholds(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Policy(); err != nil {
		errs = append(errs, err)
	}
	if _, err := event.NewVocabulary(c.Synonyms); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ParseError is returned when a config file exists but cannot be parsed.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return "failed to parse config file " + e.Path + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
