package target

import (
	"reflect"
	"testing"

	"go.uber.org/zap"
)

func TestExtractMultiCategory(t *testing.T) {
	x := NewExtractor(zap.NewNop())

	ext, err := x.Extract([]RawCategory{
		{Name: "target", Value: []any{"goblin_456"}},
		{Name: "weapon", Value: []any{"sword_123", "axe_789"}},
		{Name: "tool", Value: []any{"shield_012"}},
	})
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	if ext.Len() != 3 {
		t.Fatalf("expected 3 categories, got %d", ext.Len())
	}
	want := map[string]string{
		"target": "goblin_456",
		"weapon": "sword_123",
		"tool":   "shield_012",
	}
	if got := ext.TargetsMap(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	primary, ok := ext.Primary()
	if !ok || primary != "goblin_456" {
		t.Fatalf("expected primary goblin_456, got %q (%v)", primary, ok)
	}
}

func TestExtractSinglePrimaryCategory(t *testing.T) {
	x := NewExtractor(zap.NewNop())

	ext, err := x.Extract([]RawCategory{
		{Name: "primary", Value: []any{"book_123"}},
	})
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if ext.Len() != 1 {
		t.Fatalf("expected 1 category, got %d", ext.Len())
	}
	primary, ok := ext.Primary()
	if !ok || primary != "book_123" {
		t.Fatalf("expected primary book_123, got %q (%v)", primary, ok)
	}
}

func TestExtractDropsInvalidValues(t *testing.T) {
	x := NewExtractor(zap.NewNop())

	ext, err := x.Extract([]RawCategory{
		{Name: "invalid", Value: []any{nil, nil, "", "valid_target_123"}},
		{Name: "bad-name", Value: []any{"target_456"}},
	})
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	want := map[string]string{
		"invalid":  "valid_target_123",
		"bad-name": "target_456",
	}
	if got := ext.TargetsMap(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	// No controlled-vocabulary category present, so the first category by
	// insertion order supplies the primary.
	primary, ok := ext.Primary()
	if !ok || primary != "valid_target_123" {
		t.Fatalf("expected primary valid_target_123, got %q (%v)", primary, ok)
	}
}

func TestExtractOmitsEmptyCategories(t *testing.T) {
	x := NewExtractor(zap.NewNop())

	ext, err := x.Extract([]RawCategory{
		{Name: "weapon", Value: []any{nil, ""}},
		{Name: "tool", Value: []any{}},
		{Name: "spell", Value: nil},
		{Name: "item", Value: "torch_001"},
	})
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	if ext.Len() != 1 {
		t.Fatalf("expected only the item category, got %v", ext.TargetsMap())
	}
	if _, ok := ext.Get("weapon"); ok {
		t.Fatalf("weapon category should be omitted, not stored empty")
	}
	primary, ok := ext.Primary()
	if !ok || primary != "torch_001" {
		t.Fatalf("expected primary torch_001, got %q (%v)", primary, ok)
	}
}

func TestExtractSelectionOrder(t *testing.T) {
	x := NewExtractor(zap.NewNop())

	cases := []struct {
		name string
		raw  []RawCategory
		want string
	}{
		{
			"primary wins",
			[]RawCategory{
				{Name: "weapon", Value: "sword_1"},
				{Name: "secondary", Value: "sec_1"},
				{Name: "primary", Value: "pri_1"},
				{Name: "target", Value: "tgt_1"},
			},
			"pri_1",
		},
		{
			"target over secondary",
			[]RawCategory{
				{Name: "secondary", Value: "sec_1"},
				{Name: "target", Value: "tgt_1"},
			},
			"tgt_1",
		},
		{
			"secondary over tertiary",
			[]RawCategory{
				{Name: "tertiary", Value: "ter_1"},
				{Name: "secondary", Value: "sec_1"},
			},
			"sec_1",
		},
		{
			"tertiary over custom",
			[]RawCategory{
				{Name: "weapon", Value: "sword_1"},
				{Name: "tertiary", Value: "ter_1"},
			},
			"ter_1",
		},
		{
			"first custom by insertion order",
			[]RawCategory{
				{Name: "tool", Value: "tool_1"},
				{Name: "weapon", Value: "sword_1"},
			},
			"tool_1",
		},
	}
	for _, tc := range cases {
		ext, err := x.Extract(tc.raw)
		if err != nil {
			t.Fatalf("%s: extract: %v", tc.name, err)
		}
		primary, ok := ext.Primary()
		if !ok || string(primary) != tc.want {
			t.Fatalf("%s: expected primary %q, got %q (%v)", tc.name, tc.want, primary, ok)
		}
	}
}

func TestExtractNoValidValues(t *testing.T) {
	x := NewExtractor(zap.NewNop())

	ext, err := x.Extract([]RawCategory{
		{Name: "weapon", Value: []any{nil, ""}},
	})
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if ext.Len() != 0 {
		t.Fatalf("expected empty extraction, got %v", ext.TargetsMap())
	}
	if _, ok := ext.Primary(); ok {
		t.Fatalf("expected no primary target")
	}
}

func TestExtractDeterministic(t *testing.T) {
	x := NewExtractor(zap.NewNop())
	raw := []RawCategory{
		{Name: "weapon", Value: []any{"sword_1", "axe_2"}},
		{Name: "tool", Value: "tool_1"},
		{Name: "target", Value: []string{"goblin_1"}},
	}

	first, err := x.Extract(raw)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	for i := 0; i < 20; i++ {
		again, err := x.Extract(raw)
		if err != nil {
			t.Fatalf("extract run %d: %v", i, err)
		}
		if !reflect.DeepEqual(first.Categories(), again.Categories()) {
			t.Fatalf("run %d categories differed", i)
		}
		p1, _ := first.Primary()
		p2, _ := again.Primary()
		if p1 != p2 {
			t.Fatalf("run %d primary differed: %q vs %q", i, p1, p2)
		}
	}
}

func TestExtractInvalidCategoryNameFails(t *testing.T) {
	x := NewExtractor(zap.NewNop())

	if _, err := x.Extract([]RawCategory{{Name: "", Value: "id_1"}}); err == nil {
		t.Fatalf("expected structural failure for empty category name")
	}
	if _, err := x.Extract([]RawCategory{{Name: "has space", Value: "id_1"}}); err == nil {
		t.Fatalf("expected structural failure for malformed category name")
	}
}

func TestExtractDuplicateCategoryFirstWins(t *testing.T) {
	x := NewExtractor(zap.NewNop())

	ext, err := x.Extract([]RawCategory{
		{Name: "weapon", Value: "sword_1"},
		{Name: "weapon", Value: "axe_2"},
	})
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if id, _ := ext.Get("weapon"); id != "sword_1" {
		t.Fatalf("expected first weapon to win, got %q", id)
	}
}

func TestNewPlaceholder(t *testing.T) {
	for _, name := range []string{"primary", "weapon", "bad-name", "Tool_2"} {
		if _, err := NewPlaceholder(name); err != nil {
			t.Fatalf("expected %q to validate: %v", name, err)
		}
	}
	for _, name := range []string{"", "has space", "semi;colon"} {
		if _, err := NewPlaceholder(name); err == nil {
			t.Fatalf("expected %q to be rejected", name)
		}
	}
}
