package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Window   WindowConfig   `yaml:"window"`
	Headless HeadlessConfig `yaml:"headless"`
	Store    StoreConfig    `yaml:"store"`
	Log      LogConfig      `yaml:"log"`
	Debug    DebugConfig    `yaml:"debug"`
	Consoles []ConsoleSlot  `yaml:"consoles"`
}

type WindowConfig struct {
	Scale int    `yaml:"scale" env:"PHOSPHOR_WINDOW_SCALE" env-default:"3"`
	Title string `yaml:"title" env:"PHOSPHOR_WINDOW_TITLE" env-default:"Phosphor"`
}

type HeadlessConfig struct {
	Enabled bool   `yaml:"enabled" env:"PHOSPHOR_HEADLESS" env-default:"false"`
	Hz      int    `yaml:"hz" env:"PHOSPHOR_HEADLESS_HZ" env-default:"60"`
	Ticks   uint64 `yaml:"ticks" env:"PHOSPHOR_HEADLESS_TICKS" env-default:"0"`
}

// StoreConfig selects the persistent store backend: memory, file, flash or postgres.
type StoreConfig struct {
	Driver    string `yaml:"driver" env:"PHOSPHOR_STORE" env-default:"file"`
	Path      string `yaml:"path" env:"PHOSPHOR_STORE_PATH" env-default:"phosphor.store.json"`
	FlashPath string `yaml:"flash_path" env:"PHOSPHOR_FLASH_PATH" env-default:"phosphor.flash"`
	DSN       string `yaml:"dsn" env:"PHOSPHOR_STORE_DSN"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"PHOSPHOR_LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"PHOSPHOR_LOG_FORMAT" env-default:"pretty"`
}

// DebugConfig enables the introspection HTTP server when Addr is non-empty.
type DebugConfig struct {
	Addr string `yaml:"addr" env:"PHOSPHOR_DEBUG_ADDR"`
}

// ConsoleSlot overrides one entry of the virtual console table.
type ConsoleSlot struct {
	Slot    int      `yaml:"slot"`
	Program string   `yaml:"program"`
	Args    []string `yaml:"args"`
}

// Load reads the YAML file at path (when non-empty) and applies environment
// overrides. An empty path reads the environment only.
func Load(path string) (*Config, error) {
	var cfg Config

	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config: read env: %w", err)
		}
		return &cfg, nil
	}

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return &cfg, nil
}

// MustLoad is Load that panics; for entrypoints that cannot continue without config.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic("cannot read config: " + err.Error())
	}
	return cfg
}
