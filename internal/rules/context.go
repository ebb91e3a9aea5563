// Package rules resolves placeholder references while executing rule
// operations against a dispatched attempt-action event.
package rules

import (
	"github.com/joeloverbeck/living-narrative-engine-sub004/internal/entity"
	"github.com/joeloverbeck/living-narrative-engine-sub004/internal/event"
)

// OperationResult is one entry in the execution context's diagnostic log.
type OperationResult struct {
	Operation string
	Success   bool
	Detail    string
}

type cachedName struct {
	name  string
	found bool
}

// ExecutionContext is the per-rule-invocation state: the triggering event,
// variable bindings, an entity-name cache, and an append-only operation log.
// Created at invocation start, discarded at invocation end, never shared
// across concurrent invocations.
type ExecutionContext struct {
	Event *event.AttemptAction
	Vars  map[string]any

	nameCache map[entity.ID]cachedName
	results   []OperationResult
}

func NewExecutionContext(ev *event.AttemptAction) *ExecutionContext {
	if ev == nil {
		panic("rules: nil event")
	}
	return &ExecutionContext{
		Event:     ev,
		Vars:      make(map[string]any),
		nameCache: make(map[entity.ID]cachedName),
	}
}

// CachedName returns a previously looked-up display name. The second return
// reports whether the entity had a name; the third whether any lookup for
// the ID is cached at all (misses are cached too).
func (ec *ExecutionContext) CachedName(id entity.ID) (string, bool, bool) {
	entry, ok := ec.nameCache[id]
	if !ok {
		return "", false, false
	}
	return entry.name, entry.found, true
}

// StoreName caches a display-name lookup result, including misses.
func (ec *ExecutionContext) StoreName(id entity.ID, name string, found bool) {
	ec.nameCache[id] = cachedName{name: name, found: found}
}

// SetVar binds a rule variable.
func (ec *ExecutionContext) SetVar(name string, value any) {
	ec.Vars[name] = value
}

// Var reads a rule variable.
func (ec *ExecutionContext) Var(name string) (any, bool) {
	value, ok := ec.Vars[name]
	return value, ok
}

// Record appends to the operation-result log.
func (ec *ExecutionContext) Record(result OperationResult) {
	ec.results = append(ec.results, result)
}

// Results returns the operation log in execution order.
func (ec *ExecutionContext) Results() []OperationResult {
	return append([]OperationResult(nil), ec.results...)
}
