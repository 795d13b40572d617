package platform

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/notegraph/pkg/core"
)

// Config is the file and environment configuration of a vault.
// Values from notegraph.yaml are overridden by NOTEGRAPH_* variables.
type Config struct {
	Adapter     string   `yaml:"adapter" env:"NOTEGRAPH_ADAPTER"`
	Path        string   `yaml:"path" env:"NOTEGRAPH_PATH"`
	Namespace   string   `yaml:"namespace" env:"NOTEGRAPH_NAMESPACE"`
	TitlePolicy string   `yaml:"title_policy" env:"NOTEGRAPH_TITLE_POLICY"`
	Versioning  *bool    `yaml:"versioning" env:"NOTEGRAPH_VERSIONING"`
	ReadOnly    bool     `yaml:"read_only" env:"NOTEGRAPH_READ_ONLY"`
	SystemDir   string   `yaml:"system_dir" env:"NOTEGRAPH_SYSTEM_DIR"`
	EventBuffer int      `yaml:"event_buffer" env:"NOTEGRAPH_EVENT_BUFFER"`
	Listen      string   `yaml:"listen" env:"NOTEGRAPH_LISTEN"`
	CORSOrigins []string `yaml:"cors_origins" env:"NOTEGRAPH_CORS_ORIGINS" envSeparator:","`
}

// DefaultListen is the address served when none is configured.
const DefaultListen = "127.0.0.1:8080"

// LoadConfig reads the YAML file at path (a missing file is not an error)
// and overlays the environment.
func LoadConfig(path string) (Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if cfg.Adapter == "" {
		cfg.Adapter = AdapterFS
	}
	if cfg.Listen == "" {
		cfg.Listen = DefaultListen
	}
	if _, err := core.ParseTitlePolicy(cfg.TitlePolicy); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Options converts the configuration to service options.
func (c Config) Options() []Option {
	opts := []Option{
		WithAdapter(c.Adapter),
		WithReadOnly(c.ReadOnly),
	}
	if c.Namespace != "" {
		opts = append(opts, WithNamespace(c.Namespace))
	}
	if policy, err := core.ParseTitlePolicy(c.TitlePolicy); err == nil {
		opts = append(opts, WithTitlePolicy(policy))
	}
	if c.Versioning != nil {
		opts = append(opts, WithVersioning(*c.Versioning))
	}
	if c.SystemDir != "" {
		opts = append(opts, WithSystemDir(c.SystemDir))
	}
	if c.EventBuffer > 0 {
		opts = append(opts, WithEventBuffer(c.EventBuffer))
	}
	return opts
}
