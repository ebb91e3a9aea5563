package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/joeloverbeck/living-narrative-engine-sub004/internal/entity"
)

// SaveSnapshot replaces the stored world snapshot with the reader's current
// contents. Insertion order is preserved through the seq column so a reload
// keeps deterministic iteration order.
func (c *Client) SaveSnapshot(ctx context.Context, reader entity.Reader) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning snapshot transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM snapshot_entities"); err != nil {
		return fmt.Errorf("clearing snapshot: %w", err)
	}

	query := `
	INSERT INTO snapshot_entities (id, components)
	VALUES (?, ?)
	`
	for _, id := range reader.IDs() {
		e, ok := reader.Get(id)
		if !ok {
			continue
		}
		components, err := json.Marshal(e.Components)
		if err != nil {
			return fmt.Errorf("marshaling components for %s: %w", id, err)
		}
		if _, err := tx.ExecContext(ctx, query, string(id), components); err != nil {
			return fmt.Errorf("saving entity %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing snapshot: %w", err)
	}

	return nil
}

// LoadSnapshot reads the stored world snapshot into a fresh memory store.
func (c *Client) LoadSnapshot(ctx context.Context) (*entity.MemoryStore, error) {
	query := `
	SELECT id, components
	FROM snapshot_entities
	ORDER BY seq
	`

	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("loading snapshot: %w", err)
	}
	defer rows.Close()

	store := entity.NewMemoryStore()
	for rows.Next() {
		var id string
		var componentBytes []byte
		if err := rows.Scan(&id, &componentBytes); err != nil {
			return nil, fmt.Errorf("scanning snapshot entity: %w", err)
		}
		var components map[string]map[string]any
		if len(componentBytes) > 0 {
			if err := json.Unmarshal(componentBytes, &components); err != nil {
				return nil, fmt.Errorf("unmarshaling components for %s: %w", id, err)
			}
		}
		if err := store.Put(&entity.Entity{ID: entity.ID(id), Components: components}); err != nil {
			return nil, fmt.Errorf("restoring entity %s: %w", id, err)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating snapshot rows: %w", err)
	}

	return store, nil
}
