package catalog

import (
	"fmt"
	"os"
	"slices"

	"villaops/internal/jobs/validator"
	"villaops/pkg/model"
	"villaops/pkg/sanitizer"

	"gopkg.in/yaml.v3"
)

// Catalog is an immutable, ordered set of task templates. The materializer
// receives it by injection; nothing reads a package-level catalog.
type Catalog struct {
	version   string
	templates []model.TaskTemplate
	index     map[string]int
}

type file struct {
	Version   string               `yaml:"version"`
	Templates []model.TaskTemplate `yaml:"templates"`
}

// New validates and copies templates. Skills and supplies are normalized so
// they compare equal to the staff directory's tokens.
func New(version string, templates []model.TaskTemplate) (*Catalog, error) {
	if len(templates) == 0 {
		return nil, fmt.Errorf("catalog %q has no templates", version)
	}

	v := validator.New()
	c := &Catalog{
		version:   version,
		templates: make([]model.TaskTemplate, 0, len(templates)),
		index:     make(map[string]int, len(templates)),
	}

	for _, t := range templates {
		t.RequiredSkills = sanitizer.SanitizeSkills(t.RequiredSkills)
		t.RequiredSupplies = sanitizer.SanitizeSlice(t.RequiredSupplies, sanitizer.TrimAndNormalize)
		t.Instructions = sanitizer.TrimAndNormalize(t.Instructions)

		if err := v.ValidateTemplate(&t); err != nil {
			return nil, fmt.Errorf("template %q: %w", t.ID, err)
		}
		if t.Specialized && len(t.RequiredSkills) == 0 {
			return nil, fmt.Errorf("template %q: specialized templates must list required skills", t.ID)
		}
		if _, dup := c.index[t.ID]; dup {
			return nil, fmt.Errorf("duplicate template id %q", t.ID)
		}

		c.index[t.ID] = len(c.templates)
		c.templates = append(c.templates, t)
	}

	return c, nil
}

// LoadFile reads a YAML catalog:
//
//	version: "2025-08"
//	templates:
//	  - id: pre_arrival_cleaning
//	    timing: {kind: before_check_in, hours: 24}
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if f.Version == "" {
		f.Version = "custom"
	}
	return New(f.Version, f.Templates)
}

func (c *Catalog) Version() string {
	return c.version
}

func (c *Catalog) Len() int {
	return len(c.templates)
}

// Templates returns a deep copy in catalog order.
func (c *Catalog) Templates() []model.TaskTemplate {
	out := make([]model.TaskTemplate, len(c.templates))
	for i, t := range c.templates {
		out[i] = clone(t)
	}
	return out
}

func (c *Catalog) Get(id string) (model.TaskTemplate, bool) {
	i, ok := c.index[id]
	if !ok {
		return model.TaskTemplate{}, false
	}
	return clone(c.templates[i]), true
}

func clone(t model.TaskTemplate) model.TaskTemplate {
	t.RequiredSkills = slices.Clone(t.RequiredSkills)
	t.RequiredSupplies = slices.Clone(t.RequiredSupplies)
	return t
}
