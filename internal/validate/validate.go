// Package validate lints loaded world content against the component schema.
// The runtime tolerates unknown components and dangling references by
// resolving them to empty results; the lint pass is where authors find out.
package validate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/joeloverbeck/living-narrative-engine-sub004/internal/config"
	"github.com/joeloverbeck/living-narrative-engine-sub004/internal/entity"
	"github.com/joeloverbeck/living-narrative-engine-sub004/internal/target"
	"github.com/joeloverbeck/living-narrative-engine-sub004/internal/world"
)

type Severity string

const (
	SeverityError Severity = "error"
	SeverityWarn  Severity = "warning"
)

const (
	codeInvalidEntityID    = "invalid_entity_id"
	codeDuplicateEntity    = "duplicate_entity"
	codeUnknownComponent   = "unknown_component_type"
	codeEnumInvalid        = "enum_value_invalid"
	codeMissingRequired    = "missing_required_field"
	codeDanglingReference  = "dangling_reference"
	codeUndefinedScope     = "undefined_scope"
	codeInvalidPlaceholder = "invalid_placeholder"
	codeUnusedScope        = "unused_scope"
)

type Issue struct {
	Severity Severity
	Code     string
	Message  string
	Subject  string
	FilePath string
}

type Report struct {
	Issues []Issue
}

func (r *Report) HasErrors() bool {
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Run lints the world against the schema. Issues are reported in definition
// order so repeated runs produce identical reports.
func Run(w *world.World, schema *config.Schema) (*Report, error) {
	if w == nil {
		return nil, fmt.Errorf("world is required")
	}
	if schema == nil {
		return nil, fmt.Errorf("schema is required")
	}

	issues := make([]Issue, 0)
	knownIDs := collectEntityIDs(w)

	seen := make(map[string]struct{})
	for _, def := range w.Entities {
		if !entity.Valid(def.ID) {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Code:     codeInvalidEntityID,
				Message:  fmt.Sprintf("invalid entity id: %q", def.ID),
				Subject:  def.ID,
				FilePath: def.SourceFile,
			})
			continue
		}
		if _, dup := seen[def.ID]; dup {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Code:     codeDuplicateEntity,
				Message:  fmt.Sprintf("duplicate entity id: %s", def.ID),
				Subject:  def.ID,
				FilePath: def.SourceFile,
			})
			continue
		}
		seen[def.ID] = struct{}{}

		issues = append(issues, validateComponents(def, schema, knownIDs)...)
	}

	issues = append(issues, validateScopes(w, schema)...)
	issues = append(issues, validateActions(w)...)

	return &Report{Issues: issues}, nil
}

func collectEntityIDs(w *world.World) map[string]struct{} {
	ids := make(map[string]struct{}, len(w.Entities))
	for _, def := range w.Entities {
		ids[def.ID] = struct{}{}
	}
	return ids
}

func validateComponents(def world.EntityDef, schema *config.Schema, knownIDs map[string]struct{}) []Issue {
	var issues []Issue

	componentNames := make([]string, 0, len(def.Components))
	for name := range def.Components {
		componentNames = append(componentNames, name)
	}
	sort.Strings(componentNames)

	for _, componentName := range componentNames {
		data := def.Components[componentName]
		componentType, ok := schema.ComponentByName(componentName)
		if !ok {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Code:     codeUnknownComponent,
				Message:  fmt.Sprintf("unknown component type: %s", componentName),
				Subject:  def.ID,
				FilePath: def.SourceFile,
			})
			continue
		}

		issues = append(issues, validateFields(def, componentType, data)...)
		issues = append(issues, validateRefs(def, componentType, data, knownIDs)...)
	}

	return issues
}

func validateFields(def world.EntityDef, componentType *config.ComponentType, data map[string]any) []Issue {
	var issues []Issue

	for _, field := range componentType.Fields {
		value, present := data[field.Name]

		if field.Required {
			missing := !present || value == nil
			if s, ok := value.(string); ok && strings.TrimSpace(s) == "" {
				missing = true
			}
			if missing {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Code:     codeMissingRequired,
					Message:  fmt.Sprintf("missing required field: %s.%s", componentType.Name, field.Name),
					Subject:  def.ID,
					FilePath: def.SourceFile,
				})
				continue
			}
		}

		if strings.EqualFold(field.Type, "enum") && len(field.Values) > 0 && present {
			if s, ok := value.(string); ok && !containsString(field.Values, s) {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Code:     codeEnumInvalid,
					Message:  fmt.Sprintf("invalid enum value for %s.%s: %s", componentType.Name, field.Name, s),
					Subject:  def.ID,
					FilePath: def.SourceFile,
				})
			}
		}
	}

	return issues
}

// validateRefs checks every declared ref field against the set of defined
// entity IDs. Ref values may be a single ID or a list of IDs.
func validateRefs(def world.EntityDef, componentType *config.ComponentType, data map[string]any, knownIDs map[string]struct{}) []Issue {
	var issues []Issue

	dangling := func(ref string) {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Code:     codeDanglingReference,
			Message:  fmt.Sprintf("%s references undefined entity: %s", componentType.Name, ref),
			Subject:  def.ID,
			FilePath: def.SourceFile,
		})
	}

	for _, refField := range componentType.RefFields {
		value, ok := data[refField]
		if !ok || value == nil {
			continue
		}
		switch v := value.(type) {
		case string:
			if _, known := knownIDs[v]; !known {
				dangling(v)
			}
		case []any:
			for _, item := range v {
				ref, ok := item.(string)
				if !ok {
					continue
				}
				if _, known := knownIDs[ref]; !known {
					dangling(ref)
				}
			}
		case []string:
			for _, ref := range v {
				if _, known := knownIDs[ref]; !known {
					dangling(ref)
				}
			}
		}
	}

	return issues
}

func validateScopes(w *world.World, schema *config.Schema) []Issue {
	var issues []Issue

	referenced := make(map[string]struct{})
	for _, action := range w.Actions {
		for _, binding := range action.Targets {
			referenced[binding.Scope] = struct{}{}
		}
	}

	for _, def := range w.Scopes {
		for _, componentName := range scopeComponents(def) {
			if !schema.IsValidComponent(componentName) {
				issues = append(issues, Issue{
					Severity: SeverityWarn,
					Code:     codeUnknownComponent,
					Message:  fmt.Sprintf("scope uses undeclared component type: %s", componentName),
					Subject:  def.Name,
					FilePath: def.SourceFile,
				})
			}
		}
		if _, used := referenced[def.Name]; !used {
			issues = append(issues, Issue{
				Severity: SeverityWarn,
				Code:     codeUnusedScope,
				Message:  fmt.Sprintf("scope is not referenced by any action: %s", def.Name),
				Subject:  def.Name,
				FilePath: def.SourceFile,
			})
		}
	}

	return issues
}

func validateActions(w *world.World) []Issue {
	var issues []Issue

	for _, action := range w.Actions {
		for _, binding := range action.Targets {
			if _, err := target.NewPlaceholder(binding.Placeholder); err != nil {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Code:     codeInvalidPlaceholder,
					Message:  fmt.Sprintf("invalid placeholder name: %q", binding.Placeholder),
					Subject:  action.ID,
					FilePath: action.SourceFile,
				})
			}
			if _, ok := w.Scope(binding.Scope); !ok {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Code:     codeUndefinedScope,
					Message:  fmt.Sprintf("action binds undefined scope: %s", binding.Scope),
					Subject:  action.ID,
					FilePath: action.SourceFile,
				})
			}
		}
	}

	return issues
}

// scopeComponents walks a scope definition's raw filters and source and
// returns every component type it names.
func scopeComponents(def world.ScopeDef) []string {
	var names []string
	if def.Source.Kind == "component" && def.Source.Component != "" {
		names = append(names, def.Source.Component)
	}
	for _, filter := range def.Filters {
		names = append(names, filterComponents(filter)...)
	}
	return names
}

func filterComponents(def world.FilterDef) []string {
	var names []string
	if def.HasComponent != "" {
		names = append(names, def.HasComponent)
	}
	if def.Equals != nil && def.Equals.Component != "" {
		names = append(names, def.Equals.Component)
	}
	if def.Not != nil {
		names = append(names, filterComponents(*def.Not)...)
	}
	for _, inner := range def.AllOf {
		names = append(names, filterComponents(inner)...)
	}
	for _, inner := range def.AnyOf {
		names = append(names, filterComponents(inner)...)
	}
	return names
}

func containsString(values []string, targetValue string) bool {
	for _, value := range values {
		if value == targetValue {
			return true
		}
	}
	return false
}
