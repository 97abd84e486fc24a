package sqlite

import (
	"context"
	"fmt"

	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/domain"
	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/store"
)

// TagCooccurrence counts, for every tag present on the given item set, how
// many of those items carry it. Results are ordered by count descending.
// The scope's text filter is a substring match on the tag name; the limit
// bounds the row count before the facet engine's own filtering, so callers
// should pass a generous margin.
func (s *Store) TagCooccurrence(ctx context.Context, itemIDs []int64, scope store.FacetScope) ([]store.TagCount, error) {
	if len(itemIDs) == 0 {
		return []store.TagCount{}, nil
	}

	query := `
		SELECT t.id, t.name, t.category, t.item_count, COUNT(*) AS cnt
		FROM item_tags it
		JOIN tags t ON t.id = it.tag_id
		WHERE it.item_id IN (SELECT value FROM json_each(?))`
	args := []any{idsJSON(itemIDs)}

	if scope.Text != "" {
		query += ` AND t.name LIKE ? ESCAPE '\'`
		args = append(args, "%"+escapeLike(scope.Text)+"%")
	}
	if scope.Category != "" {
		query += ` AND t.category = ?`
		args = append(args, string(scope.Category))
	}

	query += `
		GROUP BY t.id
		ORDER BY cnt DESC, t.name ASC`

	if scope.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, scope.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tag cooccurrence: %w", err)
	}
	defer rows.Close()

	counts := []store.TagCount{}
	for rows.Next() {
		var tc store.TagCount
		var category string
		if err := rows.Scan(&tc.Tag.ID, &tc.Tag.Name, &category, &tc.Tag.ItemCount, &tc.Count); err != nil {
			return nil, err
		}
		tc.Tag.Category = domain.TagCategory(category)
		counts = append(counts, tc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return counts, nil
}

// escapeLike escapes LIKE metacharacters in a literal substring.
func escapeLike(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '%', '_', '\\':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}
