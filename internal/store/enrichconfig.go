package store

import (
	"context"
	"fmt"
	"time"
)

// FieldPriorityRow is one (field, provider) entry of the enrichment priority
// table. Rows are mutated out-of-band by operators; the enricher only reads.
type FieldPriorityRow struct {
	FieldName     string    `db:"field_name"`
	Provider      string    `db:"provider"`
	PriorityRank  int       `db:"priority_rank"`
	MinConfidence float64   `db:"min_confidence"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// FetchFieldPriorities returns the full priority table ordered by field and
// rank, so consumers can rebuild their waterfall lists in one pass.
func (db *DB) FetchFieldPriorities(ctx context.Context) ([]FieldPriorityRow, error) {
	var rows []FieldPriorityRow
	query := `SELECT field_name, provider, priority_rank, min_confidence, updated_at
	FROM enrichment_field_priority
	ORDER BY field_name, priority_rank`
	if err := db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to fetch field priorities: %w", err)
	}
	return rows, nil
}

// UpsertFieldPriority inserts or replaces one priority entry.
func (db *DB) UpsertFieldPriority(ctx context.Context, field, provider string, rank int, minConfidence float64) error {
	query := `INSERT INTO enrichment_field_priority (field_name, provider, priority_rank, min_confidence, updated_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT (field_name, provider) DO UPDATE SET
		priority_rank = excluded.priority_rank,
		min_confidence = excluded.min_confidence,
		updated_at = excluded.updated_at`
	if _, err := db.ExecContext(ctx, query, field, provider, rank, minConfidence, time.Now()); err != nil {
		return fmt.Errorf("failed to upsert field priority: %w", err)
	}
	return nil
}

// DeleteFieldPriority removes one priority entry.
func (db *DB) DeleteFieldPriority(ctx context.Context, field, provider string) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM enrichment_field_priority WHERE field_name = ? AND provider = ?`, field, provider); err != nil {
		return fmt.Errorf("failed to delete field priority: %w", err)
	}
	return nil
}
