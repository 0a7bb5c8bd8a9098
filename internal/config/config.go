// Package config loads the optional config.yaml that sits next to the store.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/julianstephens/quitlog/internal/constants"
	"github.com/julianstephens/quitlog/internal/utils"
)

// Config holds user-tunable settings. Every field has a usable default.
type Config struct {
	TickInterval time.Duration `yaml:"-"`
	ExportDir    string        `yaml:"export_dir"`
	ExportFormat string        `yaml:"export_format"`
	BackupsMax   int           `yaml:"backups_max"`

	RawTickInterval string `yaml:"tick_interval"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		TickInterval:    constants.DefaultTickInterval,
		RawTickInterval: constants.DefaultTickInterval.String(),
		ExportDir:       ".",
		ExportFormat:    "csv",
		BackupsMax:      constants.MaxBackups,
	}
}

// PathFor returns the config file location for a given store path.
func PathFor(storePath string) string {
	return filepath.Join(filepath.Dir(storePath), constants.ConfigFileName)
}

// Load reads the YAML file at path. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.normalize(); err != nil {
		return Default(), fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path as YAML.
func Save(path string, cfg Config) error {
	cfg.RawTickInterval = cfg.TickInterval.String()
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return utils.WriteFileAtomic(path, data, 0600)
}

func (c *Config) normalize() error {
	def := Default()

	if strings.TrimSpace(c.RawTickInterval) == "" {
		c.TickInterval = def.TickInterval
	} else {
		d, err := time.ParseDuration(c.RawTickInterval)
		if err != nil {
			return fmt.Errorf("tick_interval: %w", err)
		}
		if d < 100*time.Millisecond {
			return fmt.Errorf("tick_interval must be at least 100ms, got %s", d)
		}
		c.TickInterval = d
	}

	c.ExportFormat = strings.ToLower(strings.TrimSpace(c.ExportFormat))
	switch c.ExportFormat {
	case "":
		c.ExportFormat = def.ExportFormat
	case "csv", "tsv":
	default:
		return fmt.Errorf("export_format must be csv or tsv, got %q", c.ExportFormat)
	}

	if strings.TrimSpace(c.ExportDir) == "" {
		c.ExportDir = def.ExportDir
	}
	if c.BackupsMax <= 0 {
		c.BackupsMax = def.BackupsMax
	}
	return nil
}
