// Package suites holds the benchmark suite definitions: the built-in suite
// set, YAML loading for user-defined suites, and the system-prompt and
// context-document builders.
package suites

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/modelbench/modelbench/internal/models"
	"github.com/modelbench/modelbench/internal/scoring"
)

// Registry is the set of suites available to a run. Built-in suites are
// registered at construction; user suites come from YAML files. Every suite
// is validated on registration, so a broken definition fails the run before
// any model is invoked.
type Registry struct {
	suites map[string]models.SuiteSpec
	order  []string
}

// NewRegistry returns a registry preloaded with the built-in suites.
func NewRegistry() (*Registry, error) {
	r := &Registry{suites: make(map[string]models.SuiteSpec)}
	for _, spec := range builtinSuites() {
		if err := r.Register(spec); err != nil {
			return nil, fmt.Errorf("builtin suite: %w", err)
		}
	}
	return r, nil
}

// Register validates and adds one suite. Inline JSON schemas are compiled
// here so schema defects surface at registration, not mid-run.
func (r *Registry) Register(spec models.SuiteSpec) error {
	if err := spec.Validate(); err != nil {
		return err
	}
	if _, exists := r.suites[spec.ID]; exists {
		return fmt.Errorf("suite %q already registered", spec.ID)
	}
	for _, cs := range spec.Cases {
		if len(cs.Expect.Schema) == 0 {
			continue
		}
		if _, err := scoring.CompileSchema(cs.ID, cs.Expect.Schema); err != nil {
			return fmt.Errorf("suite %q case %q: schema does not compile: %w", spec.ID, cs.ID, err)
		}
	}
	r.suites[spec.ID] = spec
	r.order = append(r.order, spec.ID)
	return nil
}

// LoadFile registers every suite in one YAML file. The file holds either a
// single suite document or a list under a top-level "suites" key.
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading suite file: %w", err)
	}

	var multi struct {
		Suites []models.SuiteSpec `yaml:"suites"`
	}
	if err := yaml.Unmarshal(data, &multi); err == nil && len(multi.Suites) > 0 {
		for _, spec := range multi.Suites {
			if err := r.Register(spec); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
		}
		return nil
	}

	var single models.SuiteSpec
	if err := yaml.Unmarshal(data, &single); err != nil {
		return fmt.Errorf("parsing suite file %s: %w", path, err)
	}
	if err := r.Register(single); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// LoadDir registers every .yaml/.yml file in a directory, in name order.
func (r *Registry) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("listing suite dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext == ".yaml" || ext == ".yml" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	for _, name := range names {
		if err := r.LoadFile(filepath.Join(dir, name)); err != nil {
			return err
		}
	}
	return nil
}

// Get returns a suite by id.
func (r *Registry) Get(id string) (models.SuiteSpec, bool) {
	spec, ok := r.suites[id]
	return spec, ok
}

// All returns every suite in registration order.
func (r *Registry) All() []models.SuiteSpec {
	out := make([]models.SuiteSpec, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.suites[id])
	}
	return out
}

// Select applies include/exclude filters. An empty include list means every
// suite; excludes are applied after. An include naming an unknown suite is
// an error, an exclude naming one is ignored.
func (r *Registry) Select(include, exclude []string) ([]models.SuiteSpec, error) {
	excluded := make(map[string]bool, len(exclude))
	for _, id := range exclude {
		excluded[id] = true
	}

	ids := r.order
	if len(include) > 0 {
		ids = include
	}
	var out []models.SuiteSpec
	for _, id := range ids {
		spec, ok := r.suites[id]
		if !ok {
			return nil, fmt.Errorf("unknown suite %q", id)
		}
		if excluded[id] {
			continue
		}
		out = append(out, spec)
	}
	return out, nil
}
