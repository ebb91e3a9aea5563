package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Schema declares the component vocabulary shared between scope
// expressions, world content, and the static lint pass.
type Schema struct {
	Version    int             `yaml:"version"`
	Components []ComponentType `yaml:"components"`

	componentIndex map[string]*ComponentType
}

// ComponentType declares one component: its fields and which fields hold
// entity references (used by the lint pass to find dangling references).
type ComponentType struct {
	Name      string   `yaml:"name"`
	Fields    []Field  `yaml:"fields"`
	RefFields []string `yaml:"ref_fields"`
}

type Field struct {
	Name     string   `yaml:"name"`
	Type     string   `yaml:"type"`
	Values   []string `yaml:"values"`
	Required bool     `yaml:"required"`
}

var componentNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*:[a-z][a-z0-9_]*$`)

func LoadSchema(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading schema: %w", err)
	}

	var schema Schema
	if err := yaml.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("loading schema: %w", err)
	}

	if err := validateSchema(&schema); err != nil {
		return nil, fmt.Errorf("loading schema: %w", err)
	}

	schema.buildIndex()
	return &schema, nil
}

func (s *Schema) buildIndex() {
	s.componentIndex = make(map[string]*ComponentType)
	for i := range s.Components {
		component := &s.Components[i]
		s.componentIndex[component.Name] = component
	}
}

func validateSchema(s *Schema) error {
	if s.Version != 1 {
		return fmt.Errorf("unsupported version: %d", s.Version)
	}
	if len(s.Components) == 0 {
		return fmt.Errorf("at least one component type is required")
	}

	names := make(map[string]struct{})
	for i, component := range s.Components {
		if !componentNamePattern.MatchString(component.Name) {
			return fmt.Errorf("component %d has invalid name: %q", i, component.Name)
		}
		if _, exists := names[component.Name]; exists {
			return fmt.Errorf("duplicate component type: %s", component.Name)
		}
		names[component.Name] = struct{}{}

		fieldNames := make(map[string]struct{})
		for _, field := range component.Fields {
			name := strings.TrimSpace(field.Name)
			if name == "" {
				return fmt.Errorf("component %s has field with empty name", component.Name)
			}
			if _, exists := fieldNames[name]; exists {
				return fmt.Errorf("component %s has duplicate field: %s", component.Name, field.Name)
			}
			fieldNames[name] = struct{}{}
			if strings.EqualFold(field.Type, "enum") && len(field.Values) == 0 {
				return fmt.Errorf("component %s field %s enum has no values", component.Name, field.Name)
			}
		}

		for _, ref := range component.RefFields {
			if strings.TrimSpace(ref) == "" {
				return fmt.Errorf("component %s has empty ref field", component.Name)
			}
		}
	}

	return nil
}

func (s *Schema) ComponentByName(name string) (*ComponentType, bool) {
	if s == nil {
		return nil, false
	}
	component, ok := s.componentIndex[name]
	return component, ok
}

// IsValidComponent reports whether the component type is declared. Satisfies
// the scope resolver's vocabulary interface.
func (s *Schema) IsValidComponent(name string) bool {
	_, ok := s.ComponentByName(name)
	return ok
}
