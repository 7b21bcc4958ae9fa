// Package config holds runtime settings for the benchmark harness: server
// endpoint, concurrency, timeouts, and the standard configuration templates
// that span the benchmark matrix.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"gopkg.in/yaml.v3"

	"github.com/modelbench/modelbench/internal/models"
)

// Defaults for a local OpenAI-compatible server (Ollama's default port).
const (
	DefaultBaseURL        = "http://localhost:11434/v1"
	DefaultWorkers        = 4
	DefaultTimeoutSeconds = 120
	DefaultBaselineDir    = ".modelbench/baselines"
)

// Settings is the harness configuration, loaded from YAML with flag
// overrides applied on top.
type Settings struct {
	// BaseURL of the OpenAI-compatible chat completion endpoint.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	// Workers bounds concurrent inference requests.
	Workers int `yaml:"workers" mapstructure:"workers"`
	// TimeoutSeconds bounds each single invocation.
	TimeoutSeconds int `yaml:"timeout_seconds" mapstructure:"timeout_seconds"`
	// RequestsPerSecond limits the request rate. Zero means unlimited.
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	// BaselineDir is where run snapshots are stored.
	BaselineDir string `yaml:"baseline_dir" mapstructure:"baseline_dir"`
	// SuiteDir optionally adds user-defined suites from YAML files.
	SuiteDir string `yaml:"suite_dir" mapstructure:"suite_dir"`
	// Catalog is the path of the model catalog file.
	Catalog string `yaml:"catalog" mapstructure:"catalog"`
}

// Default returns the settings used when no config file exists.
func Default() Settings {
	return Settings{
		BaseURL:        DefaultBaseURL,
		Workers:        DefaultWorkers,
		TimeoutSeconds: DefaultTimeoutSeconds,
		BaselineDir:    DefaultBaselineDir,
	}
}

// Load reads settings from a YAML file, filling gaps with defaults. A
// missing file is not an error; it yields the defaults.
func Load(path string) (Settings, error) {
	s := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return s, err
	}
	return s, nil
}

// ApplyOverrides decodes loosely-typed key=value overrides (from --set
// flags) onto the settings. Keys use the yaml field names.
func (s *Settings) ApplyOverrides(overrides map[string]any) error {
	if len(overrides) == 0 {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           s,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(overrides); err != nil {
		return fmt.Errorf("applying overrides: %w", err)
	}
	return s.Validate()
}

// Validate checks the settings for defects.
func (s Settings) Validate() error {
	if s.BaseURL == "" {
		return fmt.Errorf("base_url must not be empty")
	}
	if s.Workers < 1 {
		return fmt.Errorf("workers must be >= 1, got %d", s.Workers)
	}
	if s.TimeoutSeconds < 1 {
		return fmt.Errorf("timeout_seconds must be >= 1, got %d", s.TimeoutSeconds)
	}
	if s.RequestsPerSecond < 0 {
		return fmt.Errorf("requests_per_second must not be negative")
	}
	return nil
}

// Timeout returns the per-invocation timeout as a duration.
func (s Settings) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// StandardConfigs returns the built-in configuration templates. Tags are
// stable: snapshots and baselines key on them.
func StandardConfigs() []models.ConfigSpec {
	return []models.ConfigSpec{
		{Tag: "precise", Temperature: 0.0, TopP: 1.0, NumCtx: 4096, SystemStyle: models.StyleDetailed},
		{Tag: "creative", Temperature: 0.7, TopP: 0.9, NumCtx: 4096, SystemStyle: models.StyleDetailed},
		{Tag: "minimal-prompt", Temperature: 0.0, TopP: 1.0, NumCtx: 4096, SystemStyle: models.StyleMinimal},
		{Tag: "no-system", Temperature: 0.0, TopP: 1.0, NumCtx: 4096, SystemStyle: models.StyleNone},
		{Tag: "small-context", Temperature: 0.0, TopP: 1.0, NumCtx: 2048, SystemStyle: models.StyleDetailed},
		{Tag: "large-context", Temperature: 0.0, TopP: 1.0, NumCtx: 8192, SystemStyle: models.StyleDetailed},
	}
}

// ConfigByTag resolves template tags to specs. Unknown tags are an error.
func ConfigByTag(tags []string) ([]models.ConfigSpec, error) {
	all := StandardConfigs()
	if len(tags) == 0 {
		return all, nil
	}
	byTag := make(map[string]models.ConfigSpec, len(all))
	for _, cfg := range all {
		byTag[cfg.Tag] = cfg
	}
	out := make([]models.ConfigSpec, 0, len(tags))
	for _, tag := range tags {
		cfg, ok := byTag[tag]
		if !ok {
			return nil, fmt.Errorf("unknown config template %q", tag)
		}
		out = append(out, cfg)
	}
	return out, nil
}
