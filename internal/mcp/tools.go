package mcp

import (
	"context"
	"fmt"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/joeloverbeck/living-narrative-engine-sub004/internal/config"
	"github.com/joeloverbeck/living-narrative-engine-sub004/internal/entity"
	"github.com/joeloverbeck/living-narrative-engine-sub004/internal/scope"
	"github.com/joeloverbeck/living-narrative-engine-sub004/internal/target"
)

type GetEntityInput struct {
	ID string `json:"id" jsonschema:"entity id"`
}

type EntityOutput struct {
	ID         string                    `json:"id"`
	Name       string                    `json:"name,omitempty"`
	Components map[string]map[string]any `json:"components"`
}

type ListEntitiesInput struct {
	Component string `json:"component,omitempty" jsonschema:"restrict to entities holding this component type"`
	Location  string `json:"location,omitempty" jsonschema:"restrict to entities at this location"`
}

type EntitySummaryOutput struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

type ListEntitiesOutput struct {
	Entities []EntitySummaryOutput `json:"entities"`
}

type ResolveScopeInput struct {
	Scope    string `json:"scope" jsonschema:"name of a defined scope"`
	Actor    string `json:"actor" jsonschema:"invoking actor entity id"`
	Location string `json:"location,omitempty" jsonschema:"optional location override"`
}

type ResolveScopeOutput struct {
	IDs []string `json:"ids"`
}

type AttemptActionInput struct {
	Actor  string `json:"actor" jsonschema:"invoking actor entity id"`
	Action string `json:"action" jsonschema:"action definition id"`
	Input  string `json:"input,omitempty" jsonschema:"raw player input text"`
}

type AttemptActionOutput struct {
	Dispatched bool              `json:"dispatched"`
	TargetID   *string           `json:"targetId"`
	Targets    map[string]string `json:"targets,omitempty"`
}

type PayloadMetricsInput struct{}

type PayloadMetricsOutput struct {
	TotalPayloads       int64 `json:"totalPayloads"`
	MultiTargetPayloads int64 `json:"multiTargetPayloads"`
	LegacyPayloads      int64 `json:"legacyPayloads"`
	FallbackPayloads    int64 `json:"fallbackPayloads"`
}

type GetSchemaInput struct{}

type SchemaOutput struct {
	Version    int                   `json:"version"`
	Components []ComponentTypeOutput `json:"components"`
}

type ComponentTypeOutput struct {
	Name      string        `json:"name"`
	Fields    []FieldOutput `json:"fields"`
	RefFields []string      `json:"ref_fields,omitempty"`
}

type FieldOutput struct {
	Name     string   `json:"name"`
	Type     string   `json:"type"`
	Values   []string `json:"values,omitempty"`
	Required bool     `json:"required,omitempty"`
}

func (s *Server) registerTools() {
	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_entity",
		Description: "Retrieve an entity and its components",
	}, s.handleGetEntity)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "list_entities",
		Description: "List entities with optional component and location filters",
	}, s.handleListEntities)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "resolve_scope",
		Description: "Evaluate a named scope for an actor and return candidate entity ids",
	}, s.handleResolveScope)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "attempt_action",
		Description: "Resolve an action's target scopes, build the attempt payload, and dispatch it",
	}, s.handleAttemptAction)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "payload_metrics",
		Description: "Return payload-creation counters",
	}, s.handlePayloadMetrics)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_schema",
		Description: "Return the component schema",
	}, s.handleGetSchema)
}

func (s *Server) handleGetEntity(ctx context.Context, req *sdk.CallToolRequest, input GetEntityInput) (*sdk.CallToolResult, EntityOutput, error) {
	if input.ID == "" {
		return nil, EntityOutput{}, fmt.Errorf("id is required")
	}
	e, ok := s.store.Get(entity.ID(input.ID))
	if !ok {
		return nil, EntityOutput{}, fmt.Errorf("entity not found: %s", input.ID)
	}
	return nil, entityOutputFrom(e), nil
}

func (s *Server) handleListEntities(ctx context.Context, req *sdk.CallToolRequest, input ListEntitiesInput) (*sdk.CallToolResult, ListEntitiesOutput, error) {
	var ids []entity.ID
	switch {
	case input.Location != "":
		ids = s.store.AtLocation(entity.ID(input.Location))
		if input.Component != "" {
			kept := ids[:0]
			for _, id := range ids {
				if e, ok := s.store.Get(id); ok && e.HasComponent(input.Component) {
					kept = append(kept, id)
				}
			}
			ids = kept
		}
	case input.Component != "":
		ids = s.store.WithComponent(input.Component)
	default:
		ids = s.store.IDs()
	}

	output := make([]EntitySummaryOutput, 0, len(ids))
	for _, id := range ids {
		summary := EntitySummaryOutput{ID: string(id)}
		if e, ok := s.store.Get(id); ok {
			if name, ok := e.DisplayName(); ok {
				summary.Name = name
			}
		}
		output = append(output, summary)
	}
	return nil, ListEntitiesOutput{Entities: output}, nil
}

func (s *Server) handleResolveScope(ctx context.Context, req *sdk.CallToolRequest, input ResolveScopeInput) (*sdk.CallToolResult, ResolveScopeOutput, error) {
	if input.Scope == "" {
		return nil, ResolveScopeOutput{}, fmt.Errorf("scope is required")
	}
	if input.Actor == "" {
		return nil, ResolveScopeOutput{}, fmt.Errorf("actor is required")
	}
	expr, ok := s.world.Scope(input.Scope)
	if !ok {
		return nil, ResolveScopeOutput{}, fmt.Errorf("scope not found: %s", input.Scope)
	}

	resolved := s.resolver.Resolve(ctx, expr, scope.EvalContext{
		Actor:    entity.ID(input.Actor),
		Location: entity.ID(input.Location),
	})
	ids := make([]string, 0, len(resolved))
	for _, id := range resolved {
		ids = append(ids, string(id))
	}
	return nil, ResolveScopeOutput{IDs: ids}, nil
}

func (s *Server) handleAttemptAction(ctx context.Context, req *sdk.CallToolRequest, input AttemptActionInput) (*sdk.CallToolResult, AttemptActionOutput, error) {
	if input.Actor == "" {
		return nil, AttemptActionOutput{}, fmt.Errorf("actor is required")
	}
	action, ok := s.world.Action(input.Action)
	if !ok {
		return nil, AttemptActionOutput{}, fmt.Errorf("action not found: %s", input.Action)
	}

	raw := make([]target.RawCategory, 0, len(action.Targets))
	for _, binding := range action.Targets {
		expr, ok := s.world.Scope(binding.Scope)
		if !ok {
			return nil, AttemptActionOutput{}, fmt.Errorf("action %s binds undefined scope: %s", action.ID, binding.Scope)
		}
		resolved := s.resolver.Resolve(ctx, expr, scope.EvalContext{Actor: entity.ID(input.Actor)})
		raw = append(raw, target.CategoryFromIDs(binding.Placeholder, resolved))
	}

	payload, dispatched := s.service.Attempt(ctx, entity.ID(input.Actor), action.ID, input.Input, raw)
	return nil, AttemptActionOutput{
		Dispatched: dispatched,
		TargetID:   payload.TargetID,
		Targets:    payload.Targets,
	}, nil
}

func (s *Server) handlePayloadMetrics(ctx context.Context, req *sdk.CallToolRequest, input PayloadMetricsInput) (*sdk.CallToolResult, PayloadMetricsOutput, error) {
	snapshot := s.metrics.Snapshot()
	return nil, PayloadMetricsOutput{
		TotalPayloads:       snapshot.TotalPayloads,
		MultiTargetPayloads: snapshot.MultiTargetPayloads,
		LegacyPayloads:      snapshot.LegacyPayloads,
		FallbackPayloads:    snapshot.FallbackPayloads,
	}, nil
}

func (s *Server) handleGetSchema(ctx context.Context, req *sdk.CallToolRequest, input GetSchemaInput) (*sdk.CallToolResult, SchemaOutput, error) {
	return nil, schemaOutputFrom(s.schema), nil
}

func entityOutputFrom(e *entity.Entity) EntityOutput {
	out := EntityOutput{
		ID:         string(e.ID),
		Components: map[string]map[string]any{},
	}
	if name, ok := e.DisplayName(); ok {
		out.Name = name
	}
	for componentType, data := range e.Components {
		copied := make(map[string]any, len(data))
		for key, value := range data {
			copied[key] = value
		}
		out.Components[componentType] = copied
	}
	return out
}

func schemaOutputFrom(schema *config.Schema) SchemaOutput {
	if schema == nil {
		return SchemaOutput{}
	}

	out := SchemaOutput{
		Version:    schema.Version,
		Components: make([]ComponentTypeOutput, 0, len(schema.Components)),
	}
	for _, component := range schema.Components {
		componentOut := ComponentTypeOutput{
			Name:      component.Name,
			Fields:    make([]FieldOutput, 0, len(component.Fields)),
			RefFields: component.RefFields,
		}
		for _, field := range component.Fields {
			componentOut.Fields = append(componentOut.Fields, FieldOutput{
				Name:     field.Name,
				Type:     field.Type,
				Values:   field.Values,
				Required: field.Required,
			})
		}
		out.Components = append(out.Components, componentOut)
	}
	return out
}
