package rules

import (
	"sort"

	"go.uber.org/zap"

	"github.com/joeloverbeck/living-narrative-engine-sub004/internal/entity"
)

// Keywords understood by entity references in operation parameters.
const (
	refKeywordActor  = "actor"
	refKeywordTarget = "target"
)

// entityIDKey is the field of the object-wrapper reference form.
const entityIDKey = "entity_id"

// ContextResolver is the sole authority for interpreting the entity_ref
// field of rule operation parameters. A reference is, in resolution order:
// an object wrapper {entity_id}, a keyword (actor/target), a placeholder
// name looked up in the event's targets map (falling back to the legacy
// flat targetId field), or a direct namespaced/UUID entity ID.
type ContextResolver struct {
	log *zap.Logger
}

func NewContextResolver(log *zap.Logger) *ContextResolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &ContextResolver{log: log}
}

// ResolveRef resolves an entity reference against the execution context.
// Failure returns false rather than an error; the unresolved reference is
// logged together with the placeholders that were available so misconfigured
// rule content stays diagnosable.
func (r *ContextResolver) ResolveRef(ref any, ec *ExecutionContext) (entity.ID, bool) {
	switch v := ref.(type) {
	case map[string]any:
		raw, ok := v[entityIDKey].(string)
		if ok && entity.Valid(raw) {
			return entity.ID(raw), true
		}
		r.logUnresolved(v[entityIDKey], ec)
		return "", false
	case string:
		if id, ok := r.resolveString(v, ec); ok {
			return id, true
		}
		r.logUnresolved(v, ec)
		return "", false
	default:
		r.logUnresolved(ref, ec)
		return "", false
	}
}

func (r *ContextResolver) resolveString(ref string, ec *ExecutionContext) (entity.ID, bool) {
	ev := ec.Event

	if ref == refKeywordActor {
		if ev.ActorID == "" {
			return "", false
		}
		return entity.ID(ev.ActorID), true
	}

	// Structured targets first; this also covers the "target" keyword when a
	// category of that name was resolved.
	if id, ok := ev.Targets[ref]; ok && id != "" {
		return entity.ID(id), true
	}

	// Legacy flat field: single-target payloads carry only targetId.
	if (ref == refKeywordTarget || ref == "primary") && ev.TargetID != nil && *ev.TargetID != "" {
		return entity.ID(*ev.TargetID), true
	}

	if entity.Valid(ref) {
		return entity.ID(ref), true
	}

	return "", false
}

func (r *ContextResolver) logUnresolved(ref any, ec *ExecutionContext) {
	r.log.Warn("unresolved entity reference",
		zap.Any("ref", ref),
		zap.Strings("availablePlaceholders", availablePlaceholders(ec)))
}

func availablePlaceholders(ec *ExecutionContext) []string {
	names := make([]string, 0, len(ec.Event.Targets))
	for name := range ec.Event.Targets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
