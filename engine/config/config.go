// Package config loads engine settings.
//
// Settings are layered: the defaults compiled into the binary, then an
// optional TOML file, then CANOPY_* environment variables (a .env file in the
// working directory is honoured). Later layers only override the keys they set.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment override, e.g. CANOPY_RENDER_BATCH_SIZE.
const EnvPrefix = "CANOPY_"

var (
	ErrInvalid     = errors.New("config: invalid value")
	ErrUnknownKeys = errors.New("config: unknown keys")
)

//go:embed default.toml
var defaultTOML string

type Config struct {
	Window Window `toml:"window" envPrefix:"WINDOW_"`
	Render Render `toml:"render" envPrefix:"RENDER_"`
	Log    Log    `toml:"log" envPrefix:"LOG_"`
}

type Window struct {
	Title  string `toml:"title" env:"TITLE"`
	Width  int    `toml:"width" env:"WIDTH"`
	Height int    `toml:"height" env:"HEIGHT"`
	VSync  bool   `toml:"vsync" env:"VSYNC"`
}

type Render struct {
	BatchSize  uint32     `toml:"batch_size" env:"BATCH_SIZE"`
	MaxQuads   int        `toml:"max_quads" env:"MAX_QUADS"`
	ShaderDir  string     `toml:"shader_dir" env:"SHADER_DIR"`
	ClearColor [4]float32 `toml:"clear_color"`
}

type Log struct {
	Level string `toml:"level" env:"LEVEL"`
}

// Default returns the compiled-in settings.
func Default() Config {
	var cfg Config
	if _, err := toml.Decode(defaultTOML, &cfg); err != nil {
		panic(fmt.Sprintf("config: embedded defaults: %v", err))
	}
	return cfg
}

// Load layers the TOML file at path (skipped when empty or missing) and the
// environment over Default, then validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("config: read %q: %w", path, err)
		default:
			if err := decodeFile(string(data), &cfg); err != nil {
				return Config{}, fmt.Errorf("config: %q: %w", path, err)
			}
		}
	}

	// A missing .env file is fine; a malformed one is not.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config: .env: %w", err)
	}
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("config: environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decodeFile(data string, cfg *Config) error {
	md, err := toml.Decode(data, cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("%w: %s", ErrUnknownKeys, strings.Join(keys, ", "))
	}
	return nil
}

func (c Config) Validate() error {
	var errs []error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Window.Width, c.Window.Height))
	}
	if c.Render.BatchSize == 0 {
		errs = append(errs, fmt.Errorf("%w: render.batch_size must be positive", ErrInvalid))
	}
	if c.Render.MaxQuads <= 0 {
		errs = append(errs, fmt.Errorf("%w: render.max_quads must be positive", ErrInvalid))
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// SlogLevel maps Level ("debug", "info", "warn", "error") to a slog.Level.
func (l Log) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("%w: log.level %q", ErrInvalid, l.Level)
	}
	return lvl, nil
}
