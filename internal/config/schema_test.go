package config

import "testing"

const validSchema = `version: 1
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
  - name: core:actor
    fields:
      - name: disposition
        type: enum
        values: [friendly, neutral, hostile]
`

func TestLoadSchema(t *testing.T) {
	t.Run("valid schema loads", func(t *testing.T) {
		schema, err := LoadSchema(writeTempFile(t, "schema.yaml", validSchema))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(schema.Components) != 3 {
			t.Fatalf("expected 3 components, got %d", len(schema.Components))
		}
		if !schema.IsValidComponent("core:position") {
			t.Fatalf("expected core:position to be declared")
		}
		if schema.IsValidComponent("mod:undeclared") {
			t.Fatalf("expected mod:undeclared to be unknown")
		}
		component, ok := schema.ComponentByName("core:position")
		if !ok || len(component.RefFields) != 1 {
			t.Fatalf("expected ref fields on core:position, got %+v", component)
		}
	})

	t.Run("unsupported version", func(t *testing.T) {
		path := writeTempFile(t, "schema.yaml", "version: 9\ncomponents:\n  - name: core:name\n")
		if _, err := LoadSchema(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("no components", func(t *testing.T) {
		path := writeTempFile(t, "schema.yaml", "version: 1\n")
		if _, err := LoadSchema(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("invalid component name", func(t *testing.T) {
		path := writeTempFile(t, "schema.yaml", "version: 1\ncomponents:\n  - name: NotNamespaced\n")
		if _, err := LoadSchema(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("duplicate component name", func(t *testing.T) {
		path := writeTempFile(t, "schema.yaml", "version: 1\ncomponents:\n  - name: core:name\n  - name: core:name\n")
		if _, err := LoadSchema(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("enum without values", func(t *testing.T) {
		path := writeTempFile(t, "schema.yaml", "version: 1\ncomponents:\n  - name: core:actor\n    fields:\n      - name: disposition\n        type: enum\n")
		if _, err := LoadSchema(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("duplicate field name", func(t *testing.T) {
		path := writeTempFile(t, "schema.yaml", "version: 1\ncomponents:\n  - name: core:name\n    fields:\n      - name: text\n      - name: text\n")
		if _, err := LoadSchema(path); err == nil {
			t.Fatalf("expected error")
		}
	})
}
