// Package config loads service settings.
//
// Precedence, highest first: flags, SQLITE_API_* environment variables, the
// PORT environment variable, the yaml config file, defaults.
package config

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/labstack/gommon/log"
	"github.com/spf13/pflag"

	"github.com/JayJamieson/sqlite-api/pkg/engine"
	"github.com/JayJamieson/sqlite-api/pkg/utils"
)

const (
	DefaultFile    = "sqlite-api.yaml"
	DefaultPort    = 8001
	DefaultWorkDir = "./data"
	DefaultLevel   = "info"
	EnvPrefix      = "SQLITE_API_"
)

type Config struct {
	Port            int           `koanf:"port"`
	Driver          string        `koanf:"driver"`
	WorkDir         string        `koanf:"work_dir"`
	LogLevel        string        `koanf:"log_level"`
	DownloadTimeout time.Duration `koanf:"download_timeout"`

	// File is the config file that was read, if any.
	File string `koanf:"-"`
}

var levels = map[string]log.Lvl{
	"debug": log.DEBUG,
	"info":  log.INFO,
	"warn":  log.WARN,
	"error": log.ERROR,
	"off":   log.OFF,
}

// Load builds a Config. cfgFile may be empty, in which case sqlite-api.yaml
// in the working directory is used when present. flags may be nil.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(map[string]any{
		"port":             DefaultPort,
		"driver":           engine.DefaultDriver,
		"work_dir":         DefaultWorkDir,
		"log_level":        DefaultLevel,
		"download_timeout": utils.DefaultDownloadTimeout.String(),
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	used := cfgFile
	if used == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			used = DefaultFile
		}
	}
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", used, err)
		}
	}

	if err := k.Load(env.Provider("PORT", ".", func(s string) string {
		if s == "PORT" {
			return "port"
		}
		return ""
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// SQLITE_API_WORK_DIR -> work_dir
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.File = used

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if !slices.Contains(engine.Drivers, c.Driver) {
		return fmt.Errorf("unsupported driver %q, expected one of %s", c.Driver, strings.Join(engine.Drivers, ", "))
	}
	if _, ok := levels[strings.ToLower(c.LogLevel)]; !ok {
		return fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	if c.DownloadTimeout <= 0 {
		return fmt.Errorf("invalid download timeout %s", c.DownloadTimeout)
	}
	return nil
}

// Level maps the configured level onto a gommon log level.
func (c *Config) Level() log.Lvl {
	if lvl, ok := levels[strings.ToLower(c.LogLevel)]; ok {
		return lvl
	}
	return log.INFO
}

// BindFlags registers the flags Load understands on fs.
func BindFlags(fs *pflag.FlagSet) {
	fs.Int("port", DefaultPort, "Server port")
	fs.String("driver", engine.DefaultDriver, "SQL driver ("+strings.Join(engine.Drivers, ", ")+")")
	fs.String("work-dir", DefaultWorkDir, "Directory for working copies of loaded databases")
	fs.String("log-level", DefaultLevel, "Log level (debug, info, warn, error, off)")
	fs.Duration("download-timeout", utils.DefaultDownloadTimeout, "Timeout for importing databases by URL")
}
