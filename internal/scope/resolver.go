package scope

import (
	"context"

	"go.uber.org/zap"

	"github.com/joeloverbeck/living-narrative-engine-sub004/internal/entity"
	"github.com/joeloverbeck/living-narrative-engine-sub004/internal/trace"
)

const tracerName = "scope"

// Resolver evaluates scope expressions against an entity snapshot.
type Resolver struct {
	store      entity.Reader
	vocabulary ComponentVocabulary
	tracer     *trace.Tracer
	log        *zap.Logger
}

// NewResolver wires a resolver. Store and log are required; vocabulary and
// tracer may be nil.
func NewResolver(store entity.Reader, vocabulary ComponentVocabulary, tracer *trace.Tracer, log *zap.Logger) *Resolver {
	if store == nil {
		panic("scope: nil store")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{store: store, vocabulary: vocabulary, tracer: tracer, log: log}
}

// Resolve evaluates the expression and returns candidate IDs, deduplicated
// in first-seen order. A syntactically valid expression never fails: lookups
// that miss yield an empty result. When the surrounding turn is cancelled
// the partial result is abandoned and nil is returned; nothing was mutated.
func (r *Resolver) Resolve(ctx context.Context, expr *Expression, ec EvalContext) []entity.ID {
	if expr == nil {
		return nil
	}
	step := r.tracer.StartStep(tracerName, expr.Label())
	defer step.End()

	candidates := r.baseCandidates(expr, ec)
	if len(candidates) == 0 {
		return nil
	}

	env := &Env{Actor: ec.Actor, Vocabulary: r.vocabulary, Log: r.log}
	for _, filter := range expr.Filters {
		if ctx.Err() != nil {
			return nil
		}
		step.AddFilterEvals(len(candidates))
		kept := candidates[:0]
		for _, id := range candidates {
			e, ok := r.store.Get(id)
			if !ok {
				continue
			}
			if filter.Match(e, env) {
				kept = append(kept, id)
			}
		}
		candidates = kept
		if len(candidates) == 0 {
			return nil
		}
	}

	return dedupe(candidates)
}

func (r *Resolver) baseCandidates(expr *Expression, ec EvalContext) []entity.ID {
	switch expr.Source.Kind {
	case SourceActor:
		if ec.Actor == "" {
			return nil
		}
		return []entity.ID{ec.Actor}
	case SourceLocation:
		location := ec.Location
		if location == "" {
			actor, ok := r.store.Get(ec.Actor)
			if !ok {
				r.log.Debug("scope actor not in store", zap.String("actor", ec.Actor.String()))
				return nil
			}
			location, ok = actor.LocationID()
			if !ok {
				r.log.Debug("scope actor has no position", zap.String("actor", ec.Actor.String()))
				return nil
			}
		}
		return r.store.AtLocation(location)
	case SourceInventory:
		actor, ok := r.store.Get(ec.Actor)
		if !ok {
			r.log.Debug("scope actor not in store", zap.String("actor", ec.Actor.String()))
			return nil
		}
		return actor.InventoryItems()
	case SourceComponent:
		if r.vocabulary != nil && !r.vocabulary.IsValidComponent(expr.Source.Component) {
			r.log.Debug("unknown component type in scope source",
				zap.String("scope", expr.Label()),
				zap.String("component", expr.Source.Component))
			return nil
		}
		return r.store.WithComponent(expr.Source.Component)
	default:
		r.log.Debug("unknown scope source kind", zap.String("kind", string(expr.Source.Kind)))
		return nil
	}
}

func dedupe(ids []entity.ID) []entity.ID {
	seen := make(map[entity.ID]struct{}, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
