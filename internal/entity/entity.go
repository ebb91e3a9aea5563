package entity

// Well-known component types read by this subsystem. Components are an open
// vocabulary; these are only the ones the core itself interprets.
const (
	NameComponent      = "core:name"
	PositionComponent  = "core:position"
	InventoryComponent = "core:inventory"
)

// Field names inside the well-known components.
const (
	nameTextField   = "text"
	locationIDField = "locationId"
	itemsField      = "items"
)

// Entity is an identifier plus an open map of component-type to component
// data. The targeting core reads components and never mutates them except
// through the store's explicit apply boundary.
type Entity struct {
	ID         ID
	Components map[string]map[string]any
}

// Component returns the data for one component type.
func (e *Entity) Component(componentType string) (map[string]any, bool) {
	if e == nil {
		return nil, false
	}
	data, ok := e.Components[componentType]
	return data, ok
}

func (e *Entity) HasComponent(componentType string) bool {
	_, ok := e.Component(componentType)
	return ok
}

// Field reads a single field of a component. Missing component or field
// yields (nil, false).
func (e *Entity) Field(componentType, field string) (any, bool) {
	data, ok := e.Component(componentType)
	if !ok {
		return nil, false
	}
	value, ok := data[field]
	return value, ok
}

// DisplayName returns the entity's display name from its name component.
func (e *Entity) DisplayName() (string, bool) {
	value, ok := e.Field(NameComponent, nameTextField)
	if !ok {
		return "", false
	}
	name, ok := value.(string)
	if !ok || name == "" {
		return "", false
	}
	return name, true
}

// LocationID returns where the entity currently is, per its position
// component.
func (e *Entity) LocationID() (ID, bool) {
	value, ok := e.Field(PositionComponent, locationIDField)
	if !ok {
		return "", false
	}
	loc, ok := value.(string)
	if !ok || loc == "" {
		return "", false
	}
	return ID(loc), true
}

// InventoryItems returns the IDs carried in the entity's inventory
// component. Non-string entries are skipped.
func (e *Entity) InventoryItems() []ID {
	value, ok := e.Field(InventoryComponent, itemsField)
	if !ok {
		return nil
	}
	var items []ID
	switch v := value.(type) {
	case []string:
		for _, item := range v {
			if item != "" {
				items = append(items, ID(item))
			}
		}
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				items = append(items, ID(s))
			}
		}
	}
	return items
}
