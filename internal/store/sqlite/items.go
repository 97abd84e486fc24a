package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/domain"
	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/store"
)

// itemColumns is the ordered list of columns selected in item queries.
// Must match the scan order in scanItem.
const itemColumns = `id, hash, width, height, blurhash, kind, imported_at, hidden`

// scanItem scans a sql.Row (or sql.Rows via its Scan method) into a domain.Item.
func scanItem(scanner interface{ Scan(dest ...any) error }) (*domain.Item, error) {
	var i domain.Item

	var (
		kind       string
		importedAt string
		hidden     int
	)

	err := scanner.Scan(
		&i.ID,
		&i.Hash,
		&i.Width,
		&i.Height,
		&i.Blurhash,
		&kind,
		&importedAt,
		&hidden,
	)
	if err != nil {
		return nil, err
	}

	i.Kind = domain.MediaKind(kind)
	i.Hidden = hidden != 0
	i.ImportedAt, err = parseTime(importedAt)
	if err != nil {
		return nil, err
	}

	return &i, nil
}

// GetItem retrieves an item by its ID.
// Returns store.ErrNotFound if the item does not exist.
func (s *Store) GetItem(ctx context.Context, id int64) (*domain.Item, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = ?`, id)

	i, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return i, nil
}

// ItemsByIDsOrdered returns the requested page of the given item-id set,
// ordered newest-first. The id set is bound via json_each so it can be
// arbitrarily large.
func (s *Store) ItemsByIDsOrdered(ctx context.Context, ids []int64, limit, offset int) ([]*domain.Item, error) {
	if len(ids) == 0 {
		return []*domain.Item{}, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+itemColumns+`
		FROM items
		WHERE id IN (SELECT value FROM json_each(?))
		ORDER BY imported_at DESC, id DESC
		LIMIT ? OFFSET ?`,
		idsJSON(ids), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query items page: %w", err)
	}
	defer rows.Close()

	items := []*domain.Item{}
	for rows.Next() {
		i, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

// UpsertItem inserts or replaces an item row. The sync subsystem is the only
// production caller; tests use it to build fixtures.
func (s *Store) UpsertItem(ctx context.Context, item *domain.Item) error {
	hidden := 0
	if item.Hidden {
		hidden = 1
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO items (id, hash, width, height, blurhash, kind, imported_at, hidden)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			hash = excluded.hash,
			width = excluded.width,
			height = excluded.height,
			blurhash = excluded.blurhash,
			kind = excluded.kind,
			imported_at = excluded.imported_at,
			hidden = excluded.hidden`,
		item.ID,
		item.Hash,
		item.Width,
		item.Height,
		item.Blurhash,
		string(item.Kind),
		formatTime(item.ImportedAt),
		hidden,
	)
	if err != nil {
		return fmt.Errorf("upsert item: %w", err)
	}
	return nil
}

// SetItemHidden updates the moderation flag on an item.
func (s *Store) SetItemHidden(ctx context.Context, id int64, hidden bool) error {
	v := 0
	if hidden {
		v = 1
	}
	res, err := s.db.ExecContext(ctx, `UPDATE items SET hidden = ? WHERE id = ?`, v, id)
	if err != nil {
		return fmt.Errorf("set item hidden: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
