package models

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SystemStyle selects how much system-prompt guidance a configuration gives
// the model for each suite kind.
type SystemStyle string

const (
	StyleDetailed SystemStyle = "detailed"
	StyleMinimal  SystemStyle = "minimal"
	StyleNone     SystemStyle = "none"
)

// ModelSpec identifies one target model from the catalog.
type ModelSpec struct {
	Name          string   `yaml:"name" json:"name"`
	SizeB         float64  `yaml:"size_b,omitempty" json:"size_b,omitempty"`
	ContextWindow int      `yaml:"context_window_tokens" json:"context_window_tokens"`
	Roles         []string `yaml:"primary_role,omitempty" json:"primary_role,omitempty"`
	Notes         string   `yaml:"notes,omitempty" json:"notes,omitempty"`

	// RecommendedQuantizations lists quantization tags worth benchmarking
	// against this model's default build, e.g. "q4_K_M". Each quantized
	// variant runs as its own catalog entry; the baseline comparison then
	// surfaces the quality delta.
	RecommendedQuantizations []string `yaml:"recommended_quantizations,omitempty" json:"recommended_quantizations,omitempty"`
}

// ConfigSpec is one inference configuration. A matrix cell is one
// (ModelSpec, ConfigSpec) pair.
type ConfigSpec struct {
	Tag         string      `yaml:"tag" json:"tag"`
	Temperature float32     `yaml:"temperature" json:"temperature"`
	TopP        float32     `yaml:"top_p" json:"top_p"`
	NumCtx      int         `yaml:"num_ctx" json:"num_ctx"`
	SystemStyle SystemStyle `yaml:"system_style" json:"system_style"`
}

// Deterministic reports whether this configuration is expected to produce
// identical output for identical input.
func (c ConfigSpec) Deterministic() bool {
	return c.Temperature == 0
}

// Label renders the human-readable cell label, e.g. "llama3:latest | precise".
func (c ConfigSpec) Label(model string) string {
	return fmt.Sprintf("%s | %s", model, c.Tag)
}

// Validate checks a ConfigSpec for structural defects.
func (c ConfigSpec) Validate() error {
	if c.Tag == "" {
		return fmt.Errorf("config has no tag")
	}
	if c.Temperature < 0 {
		return fmt.Errorf("config %q: temperature must be >= 0, got %v", c.Tag, c.Temperature)
	}
	if c.NumCtx <= 0 {
		return fmt.Errorf("config %q: num_ctx must be > 0, got %d", c.Tag, c.NumCtx)
	}
	switch c.SystemStyle {
	case StyleDetailed, StyleMinimal, StyleNone:
	default:
		return fmt.Errorf("config %q: unknown system_style %q", c.Tag, c.SystemStyle)
	}
	return nil
}

// Catalog is the model catalog loaded once at startup.
type Catalog struct {
	Models []ModelSpec `yaml:"models"`
}

// LoadCatalog loads the model catalog from a YAML file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("parsing catalog %s: %w", path, err)
	}
	if err := cat.Validate(); err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return &cat, nil
}

// Validate checks the catalog for structural defects.
func (c *Catalog) Validate() error {
	if len(c.Models) == 0 {
		return fmt.Errorf("catalog defines no models")
	}
	seen := make(map[string]bool, len(c.Models))
	for _, m := range c.Models {
		if m.Name == "" {
			return fmt.Errorf("catalog entry with empty name")
		}
		if seen[m.Name] {
			return fmt.Errorf("duplicate model %q", m.Name)
		}
		seen[m.Name] = true
		if m.ContextWindow <= 0 {
			return fmt.Errorf("model %q: context_window_tokens must be > 0", m.Name)
		}
	}
	return nil
}

// ByName returns the catalog entry for a model, or nil when absent.
func (c *Catalog) ByName(name string) *ModelSpec {
	for i := range c.Models {
		if c.Models[i].Name == name {
			return &c.Models[i]
		}
	}
	return nil
}

// Names returns all model names in catalog order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.Models))
	for _, m := range c.Models {
		names = append(names, m.Name)
	}
	return names
}
