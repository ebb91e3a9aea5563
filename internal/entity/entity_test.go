package entity

import (
	"context"
	"reflect"
	"testing"
)

func TestValid(t *testing.T) {
	valid := []string{
		"core:goblin_456",
		"mod_a:some-entity",
		"isekai:Hero_01",
		"f47ac10b-58cc-4372-a567-0e02b2c3d479",
	}
	for _, s := range valid {
		if !Valid(s) {
			t.Fatalf("expected %q to be valid", s)
		}
	}

	invalid := []string{
		"",
		"goblin_456",
		":nope",
		"core:",
		"Core:thing",
		"core:with space",
		"not-a-uuid-at-all",
	}
	for _, s := range invalid {
		if Valid(s) {
			t.Fatalf("expected %q to be invalid", s)
		}
	}
}

func TestParseID(t *testing.T) {
	id, err := ParseID("core:goblin_456")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if id.Namespace() != "core" {
		t.Fatalf("expected namespace core, got %q", id.Namespace())
	}

	if _, err := ParseID("goblin"); err == nil {
		t.Fatalf("expected error for bare identifier")
	}
}

func TestEntityComponentAccess(t *testing.T) {
	e := &Entity{
		ID: "core:hero",
		Components: map[string]map[string]any{
			NameComponent:     {"text": "Hero"},
			PositionComponent: {"locationId": "core:tavern"},
			"core:health":     {"current": 10, "max": 10},
		},
	}

	if name, ok := e.DisplayName(); !ok || name != "Hero" {
		t.Fatalf("expected display name Hero, got %q (%v)", name, ok)
	}
	if loc, ok := e.LocationID(); !ok || loc != "core:tavern" {
		t.Fatalf("expected location core:tavern, got %q (%v)", loc, ok)
	}
	if value, ok := e.Field("core:health", "current"); !ok || value != 10 {
		t.Fatalf("expected health 10, got %v (%v)", value, ok)
	}
	if _, ok := e.Field("core:missing", "x"); ok {
		t.Fatalf("expected missing component to report false")
	}

	var nilEntity *Entity
	if nilEntity.HasComponent(NameComponent) {
		t.Fatalf("nil entity should have no components")
	}
}

func TestInventoryItems(t *testing.T) {
	e := &Entity{
		ID: "core:hero",
		Components: map[string]map[string]any{
			InventoryComponent: {"items": []any{"core:sword", 7, "", "core:shield"}},
		},
	}
	got := e.InventoryItems()
	want := []ID{"core:sword", "core:shield"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	empty := &Entity{ID: "core:bare"}
	if items := empty.InventoryItems(); items != nil {
		t.Fatalf("expected nil items, got %v", items)
	}
}

func TestMemoryStoreOrderAndIndexes(t *testing.T) {
	store := NewMemoryStore()
	put := func(id ID, components map[string]map[string]any) {
		t.Helper()
		if err := store.Put(&Entity{ID: id, Components: components}); err != nil {
			t.Fatalf("put %s: %v", id, err)
		}
	}

	put("core:hero", map[string]map[string]any{
		PositionComponent: {"locationId": "core:tavern"},
		"core:actor":      {},
	})
	put("core:goblin", map[string]map[string]any{
		PositionComponent: {"locationId": "core:tavern"},
		"core:actor":      {},
	})
	put("core:sword", map[string]map[string]any{
		"core:item": {},
	})
	put("core:barkeep", map[string]map[string]any{
		PositionComponent: {"locationId": "core:tavern"},
	})

	if got := store.IDs(); !reflect.DeepEqual(got, []ID{"core:hero", "core:goblin", "core:sword", "core:barkeep"}) {
		t.Fatalf("unexpected order: %v", got)
	}
	if got := store.AtLocation("core:tavern"); !reflect.DeepEqual(got, []ID{"core:hero", "core:goblin", "core:barkeep"}) {
		t.Fatalf("unexpected co-located entities: %v", got)
	}
	if got := store.WithComponent("core:actor"); !reflect.DeepEqual(got, []ID{"core:hero", "core:goblin"}) {
		t.Fatalf("unexpected actors: %v", got)
	}

	if err := store.Put(&Entity{ID: "not an id"}); err == nil {
		t.Fatalf("expected invalid id rejection")
	}
}

func TestApplyComponent(t *testing.T) {
	store := NewMemoryStore()
	if err := store.Put(&Entity{ID: "core:hero"}); err != nil {
		t.Fatalf("put: %v", err)
	}

	ctx := context.Background()
	if err := store.ApplyComponent(ctx, "core:hero", "core:health", map[string]any{"current": 5}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	e, _ := store.Get("core:hero")
	if value, ok := e.Field("core:health", "current"); !ok || value != 5 {
		t.Fatalf("expected applied health, got %v (%v)", value, ok)
	}

	if err := store.ApplyComponent(ctx, "core:missing", "core:health", nil); err == nil {
		t.Fatalf("expected unknown entity error")
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if err := store.ApplyComponent(cancelled, "core:hero", "core:health", nil); err == nil {
		t.Fatalf("expected context error")
	}
}
