package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/joeloverbeck/living-narrative-engine-sub004/internal/event"
)

// Dispatch appends the payload to the journal. Client satisfies the event
// dispatcher interface so it can sit directly behind the payload builder.
func (c *Client) Dispatch(ctx context.Context, payload *event.AttemptAction) error {
	if payload == nil {
		return fmt.Errorf("appending event: nil payload")
	}

	encoded, err := payload.Encode()
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}

	query := `
	INSERT INTO events (event_name, actor_id, action_id, target_id, multi_target, payload, timestamp)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	var targetID sql.NullString
	if payload.TargetID != nil {
		targetID = sql.NullString{String: *payload.TargetID, Valid: true}
	}

	_, err = c.db.ExecContext(ctx, query,
		payload.EventName,
		payload.ActorID,
		payload.ActionID,
		targetID,
		boolToInt(payload.IsMultiTarget()),
		encoded,
		payload.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("appending event: %w", err)
	}

	c.log.Debug("event journaled",
		zap.String("actor", payload.ActorID),
		zap.String("action", payload.ActionID))
	return nil
}

// Recent returns the newest journaled payloads, newest first. Limit <= 0
// means no limit.
func (c *Client) Recent(ctx context.Context, limit int) ([]event.AttemptAction, error) {
	query := `
	SELECT payload
	FROM events
	ORDER BY id DESC
	`
	args := []any{}
	if limit > 0 {
		query += "LIMIT ?\n"
		args = append(args, limit)
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	defer rows.Close()

	var payloads []event.AttemptAction
	for rows.Next() {
		var encoded []byte
		if err := rows.Scan(&encoded); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		var payload event.AttemptAction
		if err := json.Unmarshal(encoded, &payload); err != nil {
			return nil, fmt.Errorf("unmarshaling event payload: %w", err)
		}
		payloads = append(payloads, payload)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating event rows: %w", err)
	}

	return payloads, nil
}

// CountByActor returns the number of journaled events per actor.
func (c *Client) CountByActor(ctx context.Context) (map[string]int64, error) {
	query := `
	SELECT actor_id, COUNT(*)
	FROM events
	GROUP BY actor_id
	`

	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("counting events: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var actor string
		var count int64
		if err := rows.Scan(&actor, &count); err != nil {
			return nil, fmt.Errorf("scanning event count: %w", err)
		}
		counts[actor] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating event counts: %w", err)
	}

	return counts, nil
}

func (c *Client) EnsureSchema(ctx context.Context) error {
	ddl := `
	CREATE TABLE IF NOT EXISTS events (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		event_name   TEXT NOT NULL,
		actor_id     TEXT NOT NULL,
		action_id    TEXT NOT NULL,
		target_id    TEXT,
		multi_target INTEGER NOT NULL DEFAULT 0,
		payload      TEXT NOT NULL,
		timestamp    INTEGER NOT NULL,
		recorded_at  TEXT DEFAULT (datetime('now'))
	);

	CREATE TABLE IF NOT EXISTS snapshot_entities (
		seq        INTEGER PRIMARY KEY AUTOINCREMENT,
		id         TEXT NOT NULL UNIQUE,
		components TEXT NOT NULL DEFAULT '{}'
	);

	CREATE INDEX IF NOT EXISTS idx_events_actor ON events (actor_id);
	CREATE INDEX IF NOT EXISTS idx_events_action ON events (action_id);
	CREATE INDEX IF NOT EXISTS idx_events_multi ON events (multi_target) WHERE multi_target = 1;
	`

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range splitStatements(ddl) {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("executing DDL: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing schema transaction: %w", err)
	}

	return nil
}

func splitStatements(ddl string) []string {
	var statements []string
	var current strings.Builder

	for _, line := range strings.Split(ddl, "\n") {
		stripped := strings.TrimSpace(line)
		if strings.HasPrefix(stripped, "--") {
			continue
		}
		current.WriteString(line)
		current.WriteString("\n")

		if strings.HasSuffix(stripped, ";") {
			statements = append(statements, current.String())
			current.Reset()
		}
	}

	if current.Len() > 0 {
		statements = append(statements, current.String())
	}

	return statements
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
