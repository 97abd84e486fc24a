package sqlite

import (
	"context"
	"fmt"

	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/domain"
)

// tagColumns is the ordered list of columns selected in tag queries.
// Must match the scan order in scanTag.
const tagColumns = `id, name, category, item_count`

// scanTag scans a sql.Row (or sql.Rows via its Scan method) into a domain.Tag.
func scanTag(scanner interface{ Scan(dest ...any) error }) (*domain.Tag, error) {
	var t domain.Tag
	var category string

	err := scanner.Scan(
		&t.ID,
		&t.Name,
		&category,
		&t.ItemCount,
	)
	if err != nil {
		return nil, err
	}

	t.Category = domain.TagCategory(category)
	return &t, nil
}

// TagsByName retrieves every tag row carrying the given normalized name.
// An ambiguous name yields one row per category; the result may be empty.
func (s *Store) TagsByName(ctx context.Context, name string) ([]*domain.Tag, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+tagColumns+` FROM tags WHERE name = ? ORDER BY item_count DESC`, name)
	if err != nil {
		return nil, fmt.Errorf("query tags by name: %w", err)
	}
	defer rows.Close()

	return collectTags(rows)
}

// TagsByIDs retrieves tags by id. Missing ids are silently skipped.
func (s *Store) TagsByIDs(ctx context.Context, ids []int64) ([]*domain.Tag, error) {
	if len(ids) == 0 {
		return []*domain.Tag{}, nil
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+tagColumns+` FROM tags
		WHERE id IN (SELECT value FROM json_each(?))
		ORDER BY item_count DESC`,
		idsJSON(ids))
	if err != nil {
		return nil, fmt.Errorf("query tags by ids: %w", err)
	}
	defer rows.Close()

	return collectTags(rows)
}

// SearchTagsByPattern retrieves tags whose name matches the given SQL LIKE
// pattern, most popular first, capped at limit. The second return value
// reports truncation: more matches exist than were returned. Truncation only
// drops the least popular matches.
func (s *Store) SearchTagsByPattern(ctx context.Context, likePattern string, limit int) ([]*domain.Tag, bool, error) {
	// Fetch one extra row to detect truncation without a COUNT round-trip.
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+tagColumns+` FROM tags
		WHERE name LIKE ? ESCAPE '\'
		ORDER BY item_count DESC, name ASC
		LIMIT ?`,
		likePattern, limit+1)
	if err != nil {
		return nil, false, fmt.Errorf("query tags by pattern: %w", err)
	}
	defer rows.Close()

	tags, err := collectTags(rows)
	if err != nil {
		return nil, false, err
	}

	truncated := false
	if len(tags) > limit {
		tags = tags[:limit]
		truncated = true
	}
	return tags, truncated, nil
}

// TopTagsByCategory returns the most popular tags of one category.
func (s *Store) TopTagsByCategory(ctx context.Context, category domain.TagCategory, limit int) ([]*domain.Tag, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+tagColumns+` FROM tags
		WHERE category = ? AND item_count > 0
		ORDER BY item_count DESC, name ASC
		LIMIT ?`,
		string(category), limit)
	if err != nil {
		return nil, fmt.Errorf("query top tags: %w", err)
	}
	defer rows.Close()

	return collectTags(rows)
}

// UpsertTag inserts or replaces a tag row.
func (s *Store) UpsertTag(ctx context.Context, tag *domain.Tag) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tags (id, name, category, item_count)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			category = excluded.category,
			item_count = excluded.item_count`,
		tag.ID,
		tag.Name,
		string(tag.Category),
		tag.ItemCount,
	)
	if err != nil {
		return fmt.Errorf("upsert tag: %w", err)
	}
	return nil
}

// RefreshTagCounts recomputes the denormalized item_count column from the
// association table. Hidden items do not contribute. Called after a mirror
// sync completes.
func (s *Store) RefreshTagCounts(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE tags SET item_count = (
			SELECT COUNT(*)
			FROM item_tags it
			JOIN items i ON i.id = it.item_id
			WHERE it.tag_id = tags.id AND i.hidden = 0
		)`)
	if err != nil {
		return fmt.Errorf("refresh tag counts: %w", err)
	}
	return nil
}

func collectTags(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]*domain.Tag, error) {
	tags := []*domain.Tag{}
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tags, nil
}
