package sqlite

import (
	"context"
	"fmt"

	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/domain"
)

// UpsertGroup inserts or replaces a group row.
func (s *Store) UpsertGroup(ctx context.Context, g *domain.Group) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO item_groups (id, title, translated_title)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			translated_title = excluded.translated_title`,
		g.ID, g.Title, g.TranslatedTitle)
	if err != nil {
		return fmt.Errorf("upsert group: %w", err)
	}
	return nil
}

// AddItemToGroup records group membership (idempotent).
func (s *Store) AddItemToGroup(ctx context.Context, groupID, itemID int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO group_members (group_id, item_id) VALUES (?, ?)`,
		groupID, itemID)
	if err != nil {
		return fmt.Errorf("add item to group: %w", err)
	}
	return nil
}

// GroupIDsForItem returns the groups an item belongs to.
func (s *Store) GroupIDsForItem(ctx context.Context, itemID int64) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT group_id FROM group_members WHERE item_id = ?`, itemID)
	if err != nil {
		return nil, fmt.Errorf("query item groups: %w", err)
	}
	defer rows.Close()

	return collectIDs(rows)
}

// ItemIDsInGroup returns the member items of a group.
func (s *Store) ItemIDsInGroup(ctx context.Context, groupID int64) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT item_id FROM group_members WHERE group_id = ? ORDER BY item_id ASC`, groupID)
	if err != nil {
		return nil, fmt.Errorf("query group members: %w", err)
	}
	defer rows.Close()

	return collectIDs(rows)
}

// ListGroups returns every group, for full-text title indexing.
func (s *Store) ListGroups(ctx context.Context) ([]*domain.Group, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, translated_title FROM item_groups ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query groups: %w", err)
	}
	defer rows.Close()

	groups := []*domain.Group{}
	for rows.Next() {
		var g domain.Group
		if err := rows.Scan(&g.ID, &g.Title, &g.TranslatedTitle); err != nil {
			return nil, err
		}
		groups = append(groups, &g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return groups, nil
}
