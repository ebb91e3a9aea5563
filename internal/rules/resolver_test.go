package rules

import (
	"testing"

	"go.uber.org/zap"

	"github.com/joeloverbeck/living-narrative-engine-sub004/internal/event"
	"github.com/joeloverbeck/living-narrative-engine-sub004/internal/target"
)

func multiTargetEvent() *event.AttemptAction {
	targetID := "goblin_456"
	return &event.AttemptAction{
		EventName: event.Name,
		ActorID:   "core:hero",
		ActionID:  "core:attack",
		TargetID:  &targetID,
		Targets: map[string]string{
			"target": "goblin_456",
			"weapon": "sword_123",
			"tool":   "shield_012",
		},
		OriginalInput: "attack goblin",
		Timestamp:     1700000000000,
	}
}

func TestResolveRefKeywords(t *testing.T) {
	r := NewContextResolver(zap.NewNop())
	ec := NewExecutionContext(multiTargetEvent())

	id, ok := r.ResolveRef("actor", ec)
	if !ok || id != "core:hero" {
		t.Fatalf("expected actor core:hero, got %q (%v)", id, ok)
	}
	id, ok = r.ResolveRef("target", ec)
	if !ok || id != "goblin_456" {
		t.Fatalf("expected target goblin_456, got %q (%v)", id, ok)
	}
}

func TestResolveRefPlaceholders(t *testing.T) {
	r := NewContextResolver(zap.NewNop())
	ec := NewExecutionContext(multiTargetEvent())

	for name, want := range ec.Event.Targets {
		id, ok := r.ResolveRef(name, ec)
		if !ok || string(id) != want {
			t.Fatalf("placeholder %q: expected %q, got %q (%v)", name, want, id, ok)
		}
	}
}

// Round-trip property: every category in a payload built from raw candidate
// data resolves back to exactly the ID stored for it.
func TestResolveRefRoundTrip(t *testing.T) {
	builder := event.NewBuilder(target.NewExtractor(zap.NewNop()), event.NewMetrics(), nil, zap.NewNop())
	payload := builder.Build("core:hero", "core:attack", "attack goblin with sword", []target.RawCategory{
		{Name: "target", Value: []any{"goblin_456"}},
		{Name: "weapon", Value: []any{"sword_123", "axe_789"}},
		{Name: "tool", Value: []any{"shield_012"}},
	})

	r := NewContextResolver(zap.NewNop())
	ec := NewExecutionContext(payload)
	for name, want := range payload.Targets {
		id, ok := r.ResolveRef(name, ec)
		if !ok || string(id) != want {
			t.Fatalf("round trip for %q: expected %q, got %q (%v)", name, want, id, ok)
		}
	}
}

func TestResolveRefLegacyFlatFallback(t *testing.T) {
	targetID := "book_123"
	ec := NewExecutionContext(&event.AttemptAction{
		EventName: event.Name,
		ActorID:   "core:hero",
		ActionID:  "core:read",
		TargetID:  &targetID,
	})
	r := NewContextResolver(zap.NewNop())

	for _, ref := range []string{"primary", "target"} {
		id, ok := r.ResolveRef(ref, ec)
		if !ok || id != "book_123" {
			t.Fatalf("legacy fallback for %q: expected book_123, got %q (%v)", ref, id, ok)
		}
	}
}

func TestResolveRefObjectWrapper(t *testing.T) {
	r := NewContextResolver(zap.NewNop())
	ec := NewExecutionContext(multiTargetEvent())

	id, ok := r.ResolveRef(map[string]any{"entity_id": "core:barkeep"}, ec)
	if !ok || id != "core:barkeep" {
		t.Fatalf("expected core:barkeep, got %q (%v)", id, ok)
	}

	if _, ok := r.ResolveRef(map[string]any{"entity_id": "not an id"}, ec); ok {
		t.Fatalf("expected invalid wrapped id to fail")
	}
	if _, ok := r.ResolveRef(map[string]any{"other": "core:barkeep"}, ec); ok {
		t.Fatalf("expected wrapper without entity_id to fail")
	}
}

func TestResolveRefDirectID(t *testing.T) {
	r := NewContextResolver(zap.NewNop())
	ec := NewExecutionContext(multiTargetEvent())

	id, ok := r.ResolveRef("mod_x:chest_01", ec)
	if !ok || id != "mod_x:chest_01" {
		t.Fatalf("expected namespaced direct id, got %q (%v)", id, ok)
	}
	id, ok = r.ResolveRef("f47ac10b-58cc-4372-a567-0e02b2c3d479", ec)
	if !ok || id != "f47ac10b-58cc-4372-a567-0e02b2c3d479" {
		t.Fatalf("expected uuid direct id, got %q (%v)", id, ok)
	}
}

func TestResolveRefNoTargetsAndNoLegacyField(t *testing.T) {
	ec := NewExecutionContext(&event.AttemptAction{
		EventName: event.Name,
		ActorID:   "core:hero",
		ActionID:  "core:wait",
	})
	r := NewContextResolver(zap.NewNop())

	if _, ok := r.ResolveRef("primary", ec); ok {
		t.Fatalf("expected primary to be unresolvable with no targets")
	}
	if got := availablePlaceholders(ec); len(got) != 0 {
		t.Fatalf("expected no available placeholders, got %v", got)
	}
}

func TestResolveRefUnsupportedForms(t *testing.T) {
	r := NewContextResolver(zap.NewNop())
	ec := NewExecutionContext(multiTargetEvent())

	if _, ok := r.ResolveRef(42, ec); ok {
		t.Fatalf("expected numeric ref to fail")
	}
	if _, ok := r.ResolveRef(nil, ec); ok {
		t.Fatalf("expected nil ref to fail")
	}
	if _, ok := r.ResolveRef("no_such_placeholder", ec); ok {
		t.Fatalf("expected unknown placeholder to fail")
	}
}

func TestAvailablePlaceholdersSorted(t *testing.T) {
	ec := NewExecutionContext(multiTargetEvent())
	got := availablePlaceholders(ec)
	want := []string{"target", "tool", "weapon"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}
