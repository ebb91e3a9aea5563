// Package world loads world definition files: entities with their
// components, named scope definitions in structured form, and action
// definitions binding placeholders to scopes. The textual scope grammar is
// an external concern; these files carry the already-structured shape that
// maps one-to-one onto scope expressions.
package world

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/joeloverbeck/living-narrative-engine-sub004/internal/entity"
	"github.com/joeloverbeck/living-narrative-engine-sub004/internal/scope"
)

type EntityDef struct {
	ID         string                    `yaml:"id"`
	Components map[string]map[string]any `yaml:"components"`

	// SourceFile records where the definition came from, for diagnostics.
	SourceFile string `yaml:"-"`
}

type SourceDef struct {
	Kind      string `yaml:"kind"`
	Component string `yaml:"component"`
}

// FilterDef is the structured form of one scope predicate. Exactly one of
// the fields must be set.
type FilterDef struct {
	HasComponent string      `yaml:"has_component"`
	Equals       *EqualsDef  `yaml:"equals"`
	NotSelf      bool        `yaml:"not_self"`
	Not          *FilterDef  `yaml:"not"`
	AllOf        []FilterDef `yaml:"all_of"`
	AnyOf        []FilterDef `yaml:"any_of"`
}

type EqualsDef struct {
	Component string `yaml:"component"`
	Field     string `yaml:"field"`
	Value     any    `yaml:"value"`
}

type ScopeDef struct {
	Name    string      `yaml:"name"`
	Source  SourceDef   `yaml:"source"`
	Filters []FilterDef `yaml:"filters"`

	SourceFile string `yaml:"-"`
}

// TargetBinding names the scope that fills one placeholder of an action.
type TargetBinding struct {
	Placeholder string `yaml:"placeholder"`
	Scope       string `yaml:"scope"`
}

type ActionDef struct {
	ID      string          `yaml:"id"`
	Name    string          `yaml:"name"`
	Targets []TargetBinding `yaml:"targets"`

	SourceFile string `yaml:"-"`
}

type document struct {
	Entities []EntityDef `yaml:"entities"`
	Scopes   []ScopeDef  `yaml:"scopes"`
	Actions  []ActionDef `yaml:"actions"`
}

// World is the merged content of all loaded definition files.
type World struct {
	Entities []EntityDef
	Scopes   []ScopeDef
	Actions  []ActionDef

	scopeIndex  map[string]*scope.Expression
	actionIndex map[string]*ActionDef
}

// Load reads every .yaml/.yml file under the given roots, in lexical walk
// order. Structural problems (unparseable YAML, malformed filters,
// duplicate scope names) fail the load; semantic issues against the schema
// are left to the lint pass.
func Load(paths []string) (*World, error) {
	files, err := walkDefinitionFiles(paths)
	if err != nil {
		return nil, err
	}

	w := &World{
		scopeIndex:  make(map[string]*scope.Expression),
		actionIndex: make(map[string]*ActionDef),
	}
	actionIDs := make(map[string]struct{})

	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		var doc document
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}

		for _, e := range doc.Entities {
			e.SourceFile = path
			w.Entities = append(w.Entities, e)
		}
		for _, s := range doc.Scopes {
			s.SourceFile = path
			if s.Name == "" {
				return nil, fmt.Errorf("parsing %s: scope without name", path)
			}
			if _, exists := w.scopeIndex[s.Name]; exists {
				return nil, fmt.Errorf("parsing %s: duplicate scope name: %s", path, s.Name)
			}
			expr, err := compileScope(s)
			if err != nil {
				return nil, fmt.Errorf("parsing %s: %w", path, err)
			}
			w.Scopes = append(w.Scopes, s)
			w.scopeIndex[s.Name] = expr
		}
		for _, a := range doc.Actions {
			a.SourceFile = path
			if a.ID == "" {
				return nil, fmt.Errorf("parsing %s: action without id", path)
			}
			if _, exists := actionIDs[a.ID]; exists {
				return nil, fmt.Errorf("parsing %s: duplicate action id: %s", path, a.ID)
			}
			actionIDs[a.ID] = struct{}{}
			w.Actions = append(w.Actions, a)
		}
	}

	for i := range w.Actions {
		w.actionIndex[w.Actions[i].ID] = &w.Actions[i]
	}

	return w, nil
}

// Scope returns the compiled expression for a named scope definition.
func (w *World) Scope(name string) (*scope.Expression, bool) {
	expr, ok := w.scopeIndex[name]
	return expr, ok
}

// Action returns an action definition by ID.
func (w *World) Action(id string) (*ActionDef, bool) {
	a, ok := w.actionIndex[id]
	return a, ok
}

// BuildStore materializes the entity definitions into a memory snapshot.
func (w *World) BuildStore() (*entity.MemoryStore, error) {
	store := entity.NewMemoryStore()
	for _, def := range w.Entities {
		e := &entity.Entity{
			ID:         entity.ID(def.ID),
			Components: def.Components,
		}
		if err := store.Put(e); err != nil {
			return nil, fmt.Errorf("loading entity from %s: %w", def.SourceFile, err)
		}
	}
	return store, nil
}

func compileScope(def ScopeDef) (*scope.Expression, error) {
	expr := &scope.Expression{Name: def.Name}
	switch def.Source.Kind {
	case "actor":
		expr.Source = scope.Source{Kind: scope.SourceActor}
	case "location":
		expr.Source = scope.Source{Kind: scope.SourceLocation}
	case "inventory":
		expr.Source = scope.Source{Kind: scope.SourceInventory}
	case "component":
		expr.Source = scope.Source{Kind: scope.SourceComponent, Component: def.Source.Component}
	default:
		return nil, fmt.Errorf("scope %s: unknown source kind %q", def.Name, def.Source.Kind)
	}

	for i, filterDef := range def.Filters {
		filter, err := compileFilter(filterDef)
		if err != nil {
			return nil, fmt.Errorf("scope %s filter %d: %w", def.Name, i, err)
		}
		expr.Filters = append(expr.Filters, filter)
	}

	if err := expr.Validate(); err != nil {
		return nil, err
	}
	return expr, nil
}

func compileFilter(def FilterDef) (scope.Predicate, error) {
	var compiled []scope.Predicate

	if def.HasComponent != "" {
		compiled = append(compiled, scope.HasComponent(def.HasComponent))
	}
	if def.Equals != nil {
		if def.Equals.Component == "" || def.Equals.Field == "" {
			return nil, fmt.Errorf("equals filter requires component and field")
		}
		compiled = append(compiled, scope.FieldEquals(def.Equals.Component, def.Equals.Field, def.Equals.Value))
	}
	if def.NotSelf {
		compiled = append(compiled, scope.NotSelf())
	}
	if def.Not != nil {
		inner, err := compileFilter(*def.Not)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, scope.Not(inner))
	}
	if len(def.AllOf) > 0 {
		inner, err := compileFilters(def.AllOf)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, scope.And(inner...))
	}
	if len(def.AnyOf) > 0 {
		inner, err := compileFilters(def.AnyOf)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, scope.Or(inner...))
	}

	switch len(compiled) {
	case 0:
		return nil, fmt.Errorf("empty filter")
	case 1:
		return compiled[0], nil
	default:
		return nil, fmt.Errorf("filter sets multiple forms, use all_of")
	}
}

func compileFilters(defs []FilterDef) ([]scope.Predicate, error) {
	predicates := make([]scope.Predicate, 0, len(defs))
	for _, def := range defs {
		compiled, err := compileFilter(def)
		if err != nil {
			return nil, err
		}
		predicates = append(predicates, compiled)
	}
	return predicates, nil
}

func walkDefinitionFiles(roots []string) ([]string, error) {
	var files []string
	for _, root := range roots {
		if root == "" {
			continue
		}
		root = filepath.Clean(root)
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("world path %s: %w", root, err)
		}
		if !info.IsDir() {
			files = append(files, root)
			continue
		}
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			name := strings.ToLower(d.Name())
			if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}
