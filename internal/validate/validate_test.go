package validate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/joeloverbeck/living-narrative-engine-sub004/internal/config"
	"github.com/joeloverbeck/living-narrative-engine-sub004/internal/world"
)

const testSchema = `version: 1
components:
  - name: core:name
    fields:
      - name: text
        type: string
        required: true
  - name: core:position
    fields:
      - name: locationId
        type: string
        required: true
    ref_fields: [locationId]
  - name: core:inventory
    fields:
      - name: items
        type: list
    ref_fields: [items]
  - name: core:actor
    fields:
      - name: disposition
        type: enum
        values: [friendly, neutral, hostile]
`

func loadFixtures(t *testing.T, worldDoc string) (*world.World, *config.Schema) {
	t.Helper()
	dir := t.TempDir()

	schemaPath := filepath.Join(dir, "schema.yaml")
	if err := os.WriteFile(schemaPath, []byte(testSchema), 0o600); err != nil {
		t.Fatalf("writing schema: %v", err)
	}
	schema, err := config.LoadSchema(schemaPath)
	if err != nil {
		t.Fatalf("loading schema: %v", err)
	}

	worldPath := filepath.Join(dir, "world.yaml")
	if err := os.WriteFile(worldPath, []byte(worldDoc), 0o600); err != nil {
		t.Fatalf("writing world: %v", err)
	}
	w, err := world.Load([]string{worldPath})
	if err != nil {
		t.Fatalf("loading world: %v", err)
	}

	return w, schema
}

func issuesByCode(report *Report, code string) []Issue {
	var matched []Issue
	for _, issue := range report.Issues {
		if issue.Code == code {
			matched = append(matched, issue)
		}
	}
	return matched
}

func TestRun(t *testing.T) {
	t.Run("clean world has no issues", func(t *testing.T) {
		doc := `entities:
  - id: demo:tavern
    components:
      core:name: {text: Tavern}
  - id: demo:hero
    components:
      core:name: {text: Hero}
      core:position: {locationId: demo:tavern}
      core:actor: {disposition: friendly}

scopes:
  - name: nearby
    source: {kind: location}
    filters:
      - has_component: core:actor

actions:
  - id: demo:talk
    targets:
      - placeholder: primary
        scope: nearby
`
		w, schema := loadFixtures(t, doc)
		report, err := Run(w, schema)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(report.Issues) != 0 {
			t.Fatalf("expected clean report, got %+v", report.Issues)
		}
		if report.HasErrors() {
			t.Fatalf("expected no errors")
		}
	})

	t.Run("unknown component type", func(t *testing.T) {
		doc := `entities:
  - id: demo:hero
    components:
      core:name: {text: Hero}
      mod:undeclared: {foo: bar}
`
		w, schema := loadFixtures(t, doc)
		report, err := Run(w, schema)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		found := issuesByCode(report, "unknown_component_type")
		if len(found) != 1 || found[0].Subject != "demo:hero" {
			t.Fatalf("expected one unknown-component issue, got %+v", report.Issues)
		}
		if !report.HasErrors() {
			t.Fatalf("expected errors")
		}
	})

	t.Run("dangling reference", func(t *testing.T) {
		doc := `entities:
  - id: demo:hero
    components:
      core:name: {text: Hero}
      core:position: {locationId: demo:nowhere}
      core:inventory: {items: [demo:ghost_sword]}
`
		w, schema := loadFixtures(t, doc)
		report, err := Run(w, schema)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		found := issuesByCode(report, "dangling_reference")
		if len(found) != 2 {
			t.Fatalf("expected two dangling references, got %+v", report.Issues)
		}
	})

	t.Run("missing required field and bad enum", func(t *testing.T) {
		doc := `entities:
  - id: demo:hero
    components:
      core:name: {}
      core:actor: {disposition: grumpy}
`
		w, schema := loadFixtures(t, doc)
		report, err := Run(w, schema)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(issuesByCode(report, "missing_required_field")) != 1 {
			t.Fatalf("expected missing-required issue, got %+v", report.Issues)
		}
		if len(issuesByCode(report, "enum_value_invalid")) != 1 {
			t.Fatalf("expected enum issue, got %+v", report.Issues)
		}
	})

	t.Run("duplicate and invalid entity ids", func(t *testing.T) {
		doc := `entities:
  - id: demo:hero
    components:
      core:name: {text: Hero}
  - id: demo:hero
    components:
      core:name: {text: Impostor}
  - id: not a valid id
`
		w, schema := loadFixtures(t, doc)
		report, err := Run(w, schema)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(issuesByCode(report, "duplicate_entity")) != 1 {
			t.Fatalf("expected duplicate issue, got %+v", report.Issues)
		}
		if len(issuesByCode(report, "invalid_entity_id")) != 1 {
			t.Fatalf("expected invalid-id issue, got %+v", report.Issues)
		}
	})

	t.Run("action issues", func(t *testing.T) {
		doc := `scopes:
  - name: nearby
    source: {kind: location}

actions:
  - id: demo:talk
    targets:
      - placeholder: "bad name"
        scope: nearby
      - placeholder: primary
        scope: missing_scope
`
		w, schema := loadFixtures(t, doc)
		report, err := Run(w, schema)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(issuesByCode(report, "invalid_placeholder")) != 1 {
			t.Fatalf("expected placeholder issue, got %+v", report.Issues)
		}
		if len(issuesByCode(report, "undefined_scope")) != 1 {
			t.Fatalf("expected undefined-scope issue, got %+v", report.Issues)
		}
	})

	t.Run("scope warnings", func(t *testing.T) {
		doc := `scopes:
  - name: lonely
    source: {kind: location}
    filters:
      - has_component: mod:undeclared
`
		w, schema := loadFixtures(t, doc)
		report, err := Run(w, schema)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(issuesByCode(report, "unknown_component_type")) != 1 {
			t.Fatalf("expected scope component warning, got %+v", report.Issues)
		}
		if len(issuesByCode(report, "unused_scope")) != 1 {
			t.Fatalf("expected unused-scope warning, got %+v", report.Issues)
		}
		if report.HasErrors() {
			t.Fatalf("warnings must not count as errors")
		}
	})

	t.Run("nil inputs rejected", func(t *testing.T) {
		w, schema := loadFixtures(t, "entities: []\n")
		if _, err := Run(nil, schema); err == nil {
			t.Fatalf("expected error")
		}
		if _, err := Run(w, nil); err == nil {
			t.Fatalf("expected error")
		}
	})
}
