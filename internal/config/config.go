package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

const (
	KindScript = "script"
	KindHTML   = "html"
	KindAPI    = "api"
)

// Field maps one extracted field to a CSS selector for html sources.
// Attribute is "text" (default) or the attribute name to read.
type Field struct {
	Selector  string `yaml:"selector"`
	Attribute string `yaml:"attribute"`
}

// Source defines one collection target. Kind selects the adapter variant;
// the kind-specific sections are ignored by the other variants.
type Source struct {
	Name     string `yaml:"name"`
	Kind     string `yaml:"kind"`
	Enabled  bool   `yaml:"enabled"`
	URL      string `yaml:"url"`
	PageSize int    `yaml:"page_size"`

	// html
	Parent     string           `yaml:"parent"`
	Fields     map[string]Field `yaml:"fields"`
	Pagination struct {
		Selector string `yaml:"selector"`
		Pattern  string `yaml:"pattern"`
	} `yaml:"pagination"`

	// api
	API struct {
		BaseURL       string `yaml:"base_url"`
		Endpoint      string `yaml:"endpoint"`
		Key           string `yaml:"key"`
		CorrelationID string `yaml:"correlation_id"`
	} `yaml:"api"`
}

type Config struct {
	Lake struct {
		Dir string `yaml:"dir"`
	} `yaml:"lake"`

	Catalog struct {
		Path string `yaml:"path"`
	} `yaml:"catalog"`

	Fetch struct {
		MaxInFlight    int     `yaml:"max_in_flight"`
		MaxRetries     int     `yaml:"max_retries"`
		BaseDelayMS    int     `yaml:"base_delay_ms"`
		BatchDelayMS   int     `yaml:"batch_delay_ms"`
		TimeoutSeconds int     `yaml:"timeout_seconds"`
		HostRPS        float64 `yaml:"host_rps"`
		HostBurst      int     `yaml:"host_burst"`
	} `yaml:"fetch"`

	Sources []Source `yaml:"sources"`
}

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	applyEnv(&cfg)
	return cfg, nil
}

// applyEnv lets deploy environments override credentials without editing the
// config file.
func applyEnv(cfg *Config) {
	for i := range cfg.Sources {
		if cfg.Sources[i].Kind != KindAPI {
			continue
		}
		if v := os.Getenv("MYHOME_API_KEY"); v != "" {
			cfg.Sources[i].API.Key = v
		}
		if v := os.Getenv("MYHOME_CORRELATION_ID"); v != "" {
			cfg.Sources[i].API.CorrelationID = v
		}
	}
}
