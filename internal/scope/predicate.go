package scope

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/joeloverbeck/living-narrative-engine-sub004/internal/entity"
)

// ComponentVocabulary reports whether a component type is declared. When a
// vocabulary is configured, predicates naming unknown components evaluate to
// false with a debug log instead of failing.
type ComponentVocabulary interface {
	IsValidComponent(name string) bool
}

// Env is the evaluation state handed to predicates: the invoking actor, the
// optional component vocabulary, and the resolver's logger.
type Env struct {
	Actor      entity.ID
	Vocabulary ComponentVocabulary
	Log        *zap.Logger
}

func (env *Env) knownComponent(componentType string) bool {
	if env.Vocabulary == nil || env.Vocabulary.IsValidComponent(componentType) {
		return true
	}
	if env.Log != nil {
		env.Log.Debug("unknown component type in scope predicate",
			zap.String("component", componentType))
	}
	return false
}

// Predicate filters one candidate against the evaluation context. Match is
// pure and never fails: structural misses evaluate to false.
type Predicate interface {
	Match(e *entity.Entity, env *Env) bool
	String() string
}

type hasComponent struct {
	componentType string
}

// HasComponent matches entities carrying the component type.
func HasComponent(componentType string) Predicate {
	return hasComponent{componentType: componentType}
}

func (p hasComponent) Match(e *entity.Entity, env *Env) bool {
	if !env.knownComponent(p.componentType) {
		return false
	}
	return e.HasComponent(p.componentType)
}

func (p hasComponent) String() string {
	return fmt.Sprintf("has(%s)", p.componentType)
}

type fieldEquals struct {
	componentType string
	field         string
	value         any
}

// FieldEquals matches entities whose component field equals the given value.
// Numeric values compare across int/float representations.
func FieldEquals(componentType, field string, value any) Predicate {
	return fieldEquals{componentType: componentType, field: field, value: value}
}

func (p fieldEquals) Match(e *entity.Entity, env *Env) bool {
	if !env.knownComponent(p.componentType) {
		return false
	}
	actual, ok := e.Field(p.componentType, p.field)
	if !ok {
		return false
	}
	return looseEqual(actual, p.value)
}

func (p fieldEquals) String() string {
	return fmt.Sprintf("eq(%s.%s, %v)", p.componentType, p.field, p.value)
}

type notSelf struct{}

// NotSelf excludes the invoking actor from the candidate set. Self-reference
// filtering is a first-class predicate, not caller logic.
func NotSelf() Predicate {
	return notSelf{}
}

func (notSelf) Match(e *entity.Entity, env *Env) bool {
	return e != nil && e.ID != env.Actor
}

func (notSelf) String() string {
	return "not_self"
}

type notPredicate struct {
	inner Predicate
}

func Not(p Predicate) Predicate {
	return notPredicate{inner: p}
}

func (p notPredicate) Match(e *entity.Entity, env *Env) bool {
	return !p.inner.Match(e, env)
}

func (p notPredicate) String() string {
	return fmt.Sprintf("not(%s)", p.inner)
}

type andPredicate struct {
	inner []Predicate
}

// And matches when every inner predicate matches, short-circuiting on the
// first miss.
func And(ps ...Predicate) Predicate {
	return andPredicate{inner: ps}
}

func (p andPredicate) Match(e *entity.Entity, env *Env) bool {
	for _, inner := range p.inner {
		if !inner.Match(e, env) {
			return false
		}
	}
	return true
}

func (p andPredicate) String() string {
	return combinatorString("all", p.inner)
}

type orPredicate struct {
	inner []Predicate
}

// Or matches when any inner predicate matches, short-circuiting on the
// first hit. An empty Or matches nothing.
func Or(ps ...Predicate) Predicate {
	return orPredicate{inner: ps}
}

func (p orPredicate) Match(e *entity.Entity, env *Env) bool {
	for _, inner := range p.inner {
		if inner.Match(e, env) {
			return true
		}
	}
	return false
}

func (p orPredicate) String() string {
	return combinatorString("any", p.inner)
}

func combinatorString(name string, inner []Predicate) string {
	parts := make([]string, 0, len(inner))
	for _, p := range inner {
		parts = append(parts, p.String())
	}
	return fmt.Sprintf("%s(%s)", name, strings.Join(parts, ", "))
}

// looseEqual compares component data against filter values. YAML and JSON
// decode numbers into different Go types, so numerics compare by value.
func looseEqual(a, b any) bool {
	if af, ok := asFloat(a); ok {
		bf, ok := asFloat(b)
		return ok && af == bf
	}
	return a == b
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
