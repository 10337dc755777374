package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid config")

// Domains are the output domains a quantity can be printed in.
var Domains = []string{"all", "dc", "ac", "s", "t", "n"}

// Config is the symspice CLI configuration. Command-line flags override
// file values.
type Config struct {
	Domain string             `yaml:"domain"` // all, dc, ac, s, t, n
	Log    LogConfig          `yaml:"log"`
	Env    map[string]float64 `yaml:"env"` // numeric values for component symbols
	Noise  NoiseConfig        `yaml:"noise"`
	AC     ACConfig           `yaml:"ac"`
	Tran   TranConfig         `yaml:"tran"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

type NoiseConfig struct {
	// Temperature enables resistor thermal noise: kelvin, or degrees
	// Celsius with a C suffix ("27C"). Empty disables.
	Temperature string `yaml:"temperature"`
}

type ACConfig struct {
	Sweep  string  `yaml:"sweep"` // DEC, OCT, LIN
	Points int     `yaml:"points"`
	FStart float64 `yaml:"fstart"`
	FStop  float64 `yaml:"fstop"`
}

type TranConfig struct {
	Start float64 `yaml:"start"`
	Stop  float64 `yaml:"stop"`
	Step  float64 `yaml:"step"`
}

func DefaultConfig() Config {
	return Config{
		Domain: "all",
		Log:    LogConfig{Level: "info", Format: "text"},
		Env:    map[string]float64{},
		AC:     ACConfig{Sweep: "DEC", Points: 31, FStart: 1, FStop: 1e6},
		Tran:   TranConfig{Stop: 1e-3, Step: 1e-5},
	}
}

// Load reads path over the defaults. An empty path yields the defaults.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read the config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if cfg.Env == nil {
		cfg.Env = map[string]float64{}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// WriteDefault writes the default configuration to path, creating its
// directory.
func WriteDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create the config directory: %w", err)
	}
	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (c Config) Validate() error {
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	if !slices.Contains(Domains, c.Domain) {
		return fmt.Errorf("%w: domain %q", ErrInvalidConfig, c.Domain)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log format %q", ErrInvalidConfig, c.Log.Format)
	}
	switch c.AC.Sweep {
	case "DEC", "OCT", "LIN":
	default:
		return fmt.Errorf("%w: ac sweep %q", ErrInvalidConfig, c.AC.Sweep)
	}
	if c.AC.Points < 1 || c.AC.FStart <= 0 || c.AC.FStop < c.AC.FStart {
		return fmt.Errorf("%w: ac range", ErrInvalidConfig)
	}
	if c.Tran.Step <= 0 || c.Tran.Stop < c.Tran.Start {
		return fmt.Errorf("%w: tran range", ErrInvalidConfig)
	}
	return nil
}

func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("%w: log level %q", ErrInvalidConfig, l.Level)
	}
	return level, nil
}

// Logger builds the slog logger described by l, writing to w.
func (l LogConfig) Logger(w io.Writer) (*slog.Logger, error) {
	level, err := l.SlogLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(l.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}
