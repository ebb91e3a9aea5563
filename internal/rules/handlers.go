package rules

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/joeloverbeck/living-narrative-engine-sub004/internal/entity"
)

// Operation types shipped with the core.
const (
	OpGetName         = "GET_NAME"
	OpSetVariable     = "SET_VARIABLE"
	OpQueryComponent  = "QUERY_COMPONENT"
	OpModifyComponent = "MODIFY_COMPONENT"
)

// UnnamedFallback is the user-visible name when a reference cannot be
// resolved or an entity has no name component.
const UnnamedFallback = "unnamed"

// ComponentApplier is the explicit apply boundary through which rule
// operations mutate entity state. The store implements it; resolution code
// never does.
type ComponentApplier interface {
	ApplyComponent(ctx context.Context, id entity.ID, componentType string, data map[string]any) error
}

func paramString(params map[string]any, key string) (string, bool) {
	value, ok := params[key].(string)
	return value, ok && value != ""
}

// NewGetNameHandler resolves entity_ref and binds the entity's display name
// to result_variable. An unresolved reference or a nameless entity degrades
// to the "unnamed" fallback; lookups are cached on the execution context,
// misses included.
func NewGetNameHandler(store entity.Reader, refs *ContextResolver, log *zap.Logger) Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return HandlerFunc(func(ctx context.Context, params map[string]any, ec *ExecutionContext) (any, error) {
		ref, ok := params["entity_ref"]
		if !ok {
			return nil, fmt.Errorf("entity_ref is required")
		}

		name := UnnamedFallback
		if id, resolved := refs.ResolveRef(ref, ec); resolved {
			display, found, cached := ec.CachedName(id)
			if !cached {
				if e, exists := store.Get(id); exists {
					display, found = e.DisplayName()
				}
				ec.StoreName(id, display, found)
			}
			if found {
				name = display
			} else {
				log.Debug("entity has no display name, using fallback",
					zap.String("entity", string(id)))
			}
		}

		if variable, ok := paramString(params, "result_variable"); ok {
			ec.SetVar(variable, name)
		}
		return name, nil
	})
}

// NewSetVariableHandler binds a literal value to a rule variable.
func NewSetVariableHandler() Handler {
	return HandlerFunc(func(ctx context.Context, params map[string]any, ec *ExecutionContext) (any, error) {
		name, ok := paramString(params, "name")
		if !ok {
			return nil, fmt.Errorf("name is required")
		}
		ec.SetVar(name, params["value"])
		return params["value"], nil
	})
}

// NewQueryComponentHandler resolves entity_ref and binds a copy of one
// component's data to result_variable. Missing entity or component binds
// nil, mirroring the soft-failure contract of scope evaluation.
func NewQueryComponentHandler(store entity.Reader, refs *ContextResolver) Handler {
	return HandlerFunc(func(ctx context.Context, params map[string]any, ec *ExecutionContext) (any, error) {
		ref, ok := params["entity_ref"]
		if !ok {
			return nil, fmt.Errorf("entity_ref is required")
		}
		componentType, ok := paramString(params, "component")
		if !ok {
			return nil, fmt.Errorf("component is required")
		}

		var result map[string]any
		if id, resolved := refs.ResolveRef(ref, ec); resolved {
			if e, exists := store.Get(id); exists {
				if data, has := e.Component(componentType); has {
					result = make(map[string]any, len(data))
					for key, value := range data {
						result[key] = value
					}
				}
			}
		}

		if variable, ok := paramString(params, "result_variable"); ok {
			ec.SetVar(variable, result)
		}
		return result, nil
	})
}

// NewModifyComponentHandler resolves entity_ref and sets one field of one
// component through the apply boundary. Unlike read operations there is no
// fallback value for a mutation, so an unresolved reference is an error the
// registry records.
func NewModifyComponentHandler(store entity.Reader, applier ComponentApplier, refs *ContextResolver) Handler {
	return HandlerFunc(func(ctx context.Context, params map[string]any, ec *ExecutionContext) (any, error) {
		ref, ok := params["entity_ref"]
		if !ok {
			return nil, fmt.Errorf("entity_ref is required")
		}
		componentType, ok := paramString(params, "component")
		if !ok {
			return nil, fmt.Errorf("component is required")
		}
		field, ok := paramString(params, "field")
		if !ok {
			return nil, fmt.Errorf("field is required")
		}

		id, resolved := refs.ResolveRef(ref, ec)
		if !resolved {
			return nil, fmt.Errorf("unresolved entity reference: %v", ref)
		}

		data := make(map[string]any)
		if e, exists := store.Get(id); exists {
			if current, has := e.Component(componentType); has {
				for key, value := range current {
					data[key] = value
				}
			}
		}
		data[field] = params["value"]

		if err := applier.ApplyComponent(ctx, id, componentType, data); err != nil {
			return nil, fmt.Errorf("applying component %s on %s: %w", componentType, id, err)
		}
		return data, nil
	})
}

// RegisterCoreHandlers wires the operation handlers shipped with the core
// into a registry.
func RegisterCoreHandlers(registry *Registry, store entity.Reader, applier ComponentApplier, refs *ContextResolver, log *zap.Logger) error {
	handlers := map[string]Handler{
		OpGetName:         NewGetNameHandler(store, refs, log),
		OpSetVariable:     NewSetVariableHandler(),
		OpQueryComponent:  NewQueryComponentHandler(store, refs),
		OpModifyComponent: NewModifyComponentHandler(store, applier, refs),
	}
	for opType, h := range handlers {
		if err := registry.Register(opType, h); err != nil {
			return err
		}
	}
	return nil
}
