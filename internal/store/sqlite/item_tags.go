package sqlite

import (
	"context"
	"fmt"

	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/domain"
)

// SetItemTags replaces all tags for an item in a single transaction.
func (s *Store) SetItemTags(ctx context.Context, itemID int64, tagIDs []int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM item_tags WHERE item_id = ?`, itemID); err != nil {
		return fmt.Errorf("delete item_tags: %w", err)
	}

	for _, tagID := range tagIDs {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO item_tags (item_id, tag_id) VALUES (?, ?)`,
			itemID, tagID)
		if err != nil {
			return fmt.Errorf("insert item_tag: %w", err)
		}
	}

	return tx.Commit()
}

// TagIDsForItem returns the tag ids associated with an item.
func (s *Store) TagIDsForItem(ctx context.Context, itemID int64) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT tag_id FROM item_tags WHERE item_id = ?`, itemID)
	if err != nil {
		return nil, fmt.Errorf("query item tags: %w", err)
	}
	defer rows.Close()

	return collectIDs(rows)
}

// ItemIDsWithAnyTag returns the ids of all non-hidden items carrying at
// least one of the given tags. This is the set executor's leaf operation:
// one include group (or the whole exclude set) resolves in a single query.
func (s *Store) ItemIDsWithAnyTag(ctx context.Context, tagIDs []int64) ([]int64, error) {
	if len(tagIDs) == 0 {
		return []int64{}, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT it.item_id
		FROM item_tags it
		JOIN items i ON i.id = it.item_id
		WHERE it.tag_id IN (SELECT value FROM json_each(?))
		  AND i.hidden = 0`,
		idsJSON(tagIDs))
	if err != nil {
		return nil, fmt.Errorf("query items with tags: %w", err)
	}
	defer rows.Close()

	return collectIDs(rows)
}

// ItemIDsWithMeta returns the ids of all non-hidden items satisfying a
// computed predicate. Meta predicates are evaluated from item attributes,
// never from tag rows.
func (s *Store) ItemIDsWithMeta(ctx context.Context, meta domain.MetaName) ([]int64, error) {
	cond, ok := metaConditions[meta]
	if !ok {
		return nil, fmt.Errorf("unknown meta predicate: %s", meta)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM items WHERE hidden = 0 AND `+cond)
	if err != nil {
		return nil, fmt.Errorf("query items with meta %s: %w", meta, err)
	}
	defer rows.Close()

	return collectIDs(rows)
}

// AllItemIDs returns every non-hidden item id. It is the base set for
// exclusion-only plans.
func (s *Store) AllItemIDs(ctx context.Context) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM items WHERE hidden = 0`)
	if err != nil {
		return nil, fmt.Errorf("query all items: %w", err)
	}
	defer rows.Close()

	return collectIDs(rows)
}

// VisibleItemIDs filters ids down to those of non-hidden items. Sets that
// originate outside the store, like full-text matches, pass through here
// before entering the plan algebra.
func (s *Store) VisibleItemIDs(ctx context.Context, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return []int64{}, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id FROM items
		WHERE hidden = 0
		  AND id IN (SELECT value FROM json_each(?))`,
		idsJSON(ids))
	if err != nil {
		return nil, fmt.Errorf("query visible items: %w", err)
	}
	defer rows.Close()

	return collectIDs(rows)
}

// metaConditions maps each built-in predicate to its SQL condition.
// Resolution predicates require known dimensions; items without dimensions
// never satisfy them.
var metaConditions = map[domain.MetaName]string{
	domain.MetaVideo:     `kind = 'video'`,
	domain.MetaAnimation: `kind = 'animation'`,
	domain.MetaImage:     `kind = 'image'`,
	domain.MetaHighRes:   `width >= 1600 AND height >= 1200`,
	domain.MetaLowRes:    `width > 0 AND height > 0 AND width < 640 AND height < 480`,
	domain.MetaPortrait:  `width > 0 AND height > width`,
	domain.MetaLandscape: `height > 0 AND width > height`,
	domain.MetaSquare:    `width > 0 AND width = height`,
}

func collectIDs(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]int64, error) {
	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}
