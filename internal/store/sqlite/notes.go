package sqlite

import (
	"context"
	"fmt"

	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/domain"
)

// UpsertNote inserts or replaces a note row.
func (s *Store) UpsertNote(ctx context.Context, n *domain.Note) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notes (id, item_id, name, content, translation)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			item_id = excluded.item_id,
			name = excluded.name,
			content = excluded.content,
			translation = excluded.translation`,
		n.ID, n.ItemID, n.Name, n.Content, n.Translation)
	if err != nil {
		return fmt.Errorf("upsert note: %w", err)
	}
	return nil
}

// ListNotes returns every note, for full-text indexing.
func (s *Store) ListNotes(ctx context.Context) ([]*domain.Note, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, item_id, name, content, translation FROM notes ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query notes: %w", err)
	}
	defer rows.Close()

	notes := []*domain.Note{}
	for rows.Next() {
		var n domain.Note
		if err := rows.Scan(&n.ID, &n.ItemID, &n.Name, &n.Content, &n.Translation); err != nil {
			return nil, err
		}
		notes = append(notes, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return notes, nil
}
