package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Data: where the JSON collections live and what they are called
	Data DataConfig `yaml:"data"`

	// Indicators: ids and defaults used by the query engine
	Indicators IndicatorConfig `yaml:"indicators"`

	Server ServerConfig `yaml:"server"`

	// LogLevel is one of debug, info, warn, error
	LogLevel string `yaml:"log_level"`
}

type DataConfig struct {
	Dir        string `yaml:"dir"`        // e.g. ./data
	Countries  string `yaml:"countries"`  // e.g. paises
	Indicators string `yaml:"indicators"` // e.g. indicadores
	Population string `yaml:"population"` // e.g. poblacion
}

type IndicatorConfig struct {
	TotalPopulation string `yaml:"total_population"` // e.g. SP.POP.TOTL
	DefaultStatus   string `yaml:"default_status"`
	DefaultUnit     string `yaml:"default_unit"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

func DefaultConfig() Config {
	return Config{
		Data: DataConfig{
			Dir:        ".",
			Countries:  "paises",
			Indicators: "indicadores",
			Population: "poblacion",
		},
		Indicators: IndicatorConfig{
			TotalPopulation: "SP.POP.TOTL",
			DefaultStatus:   "disponible",
			DefaultUnit:     "personas",
		},
		Server:   ServerConfig{Addr: ":8080"},
		LogLevel: "info",
	}
}

// Load reads a YAML config file over the defaults. An empty path or a missing
// file yields the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read the config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse the config file %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate rejects configs the engine cannot run with.
func (c Config) Validate() error {
	switch {
	case c.Data.Countries == "" || c.Data.Indicators == "" || c.Data.Population == "":
		return errors.New("config: collection names must not be empty")
	case c.Indicators.TotalPopulation == "":
		return errors.New("config: indicators.total_population must not be empty")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseLevel maps the config log level onto slog levels.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("config: unknown log level %q", s)
}

// NewLogger builds the process logger: text handler on w at the configured level.
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := ParseLevel(c.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
