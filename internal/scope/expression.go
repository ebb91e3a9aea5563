// Package scope evaluates declarative queries over the entity-component
// graph. An Expression is an already-parsed query: a base relation that
// enumerates candidates, composed with predicates that filter them in
// source order. Evaluation is pure over one store snapshot.
package scope

import (
	"fmt"

	"github.com/joeloverbeck/living-narrative-engine-sub004/internal/entity"
)

type SourceKind string

const (
	// SourceActor yields only the invoking actor.
	SourceActor SourceKind = "actor"
	// SourceLocation yields every entity co-located with the actor,
	// including the actor itself (use NotSelf to exclude it).
	SourceLocation SourceKind = "location"
	// SourceInventory yields the items carried by the actor.
	SourceInventory SourceKind = "inventory"
	// SourceComponent yields every entity holding a component type.
	SourceComponent SourceKind = "component"
)

type Source struct {
	Kind      SourceKind
	Component string
}

// Expression is an immutable, parsed scope query. The textual grammar lives
// in an external parser; this core consumes the structured form only.
type Expression struct {
	// Name labels the expression in traces and diagnostics.
	Name    string
	Source  Source
	Filters []Predicate
}

func (e *Expression) Validate() error {
	if e == nil {
		return fmt.Errorf("nil expression")
	}
	switch e.Source.Kind {
	case SourceActor, SourceLocation, SourceInventory:
	case SourceComponent:
		if e.Source.Component == "" {
			return fmt.Errorf("scope %q: component source requires a component type", e.Name)
		}
	default:
		return fmt.Errorf("scope %q: unknown source kind %q", e.Name, e.Source.Kind)
	}
	for i, filter := range e.Filters {
		if filter == nil {
			return fmt.Errorf("scope %q: filter %d is nil", e.Name, i)
		}
	}
	return nil
}

// Label returns the trace/diagnostic name for the expression.
func (e *Expression) Label() string {
	if e.Name != "" {
		return e.Name
	}
	if e.Source.Kind == SourceComponent {
		return fmt.Sprintf("component(%s)", e.Source.Component)
	}
	return string(e.Source.Kind)
}

// EvalContext carries the per-attempt inputs a scope is evaluated against.
type EvalContext struct {
	Actor entity.ID
	// Location overrides the actor's own position when set.
	Location entity.ID
}
