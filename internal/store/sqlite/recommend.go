package sqlite

import (
	"context"
	"fmt"

	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/store"
)

// RecommendationCandidates finds every non-hidden item that shares at least
// one discriminating tag with the source item, along with the shared count
// and each candidate's own discriminating-tag count. A tag is discriminating
// when its item_count is at or below ceiling; over-common tags are excluded
// from both sides of the similarity metric.
//
// The second return value is the source item's discriminating-tag count.
// Items in any of the excluded groups are filtered here rather than in the
// engine so the candidate set stays small.
func (s *Store) RecommendationCandidates(ctx context.Context, itemID int64, ceiling int, excludeGroupIDs []int64) ([]store.Candidate, int, error) {
	var srcCount int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM item_tags it
		JOIN tags t ON t.id = it.tag_id
		WHERE it.item_id = ? AND t.item_count <= ?`,
		itemID, ceiling).Scan(&srcCount)
	if err != nil {
		return nil, 0, fmt.Errorf("count source tags: %w", err)
	}

	if srcCount == 0 {
		// No discriminating tags: nothing to recommend from.
		return []store.Candidate{}, 0, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		WITH src_tags AS (
			SELECT it.tag_id
			FROM item_tags it
			JOIN tags t ON t.id = it.tag_id
			WHERE it.item_id = ?1 AND t.item_count <= ?2
		)
		SELECT
			it.item_id,
			COUNT(*) AS shared_count,
			(
				SELECT COUNT(*)
				FROM item_tags it2
				JOIN tags t2 ON t2.id = it2.tag_id
				WHERE it2.item_id = it.item_id AND t2.item_count <= ?2
			) AS tag_count
		FROM item_tags it
		JOIN items i ON i.id = it.item_id
		WHERE it.tag_id IN (SELECT tag_id FROM src_tags)
		  AND it.item_id <> ?1
		  AND i.hidden = 0
		  AND it.item_id NOT IN (
			SELECT item_id FROM group_members
			WHERE group_id IN (SELECT value FROM json_each(?3))
		  )
		GROUP BY it.item_id`,
		itemID, ceiling, idsJSON(excludeGroupIDs))
	if err != nil {
		return nil, 0, fmt.Errorf("query recommendation candidates: %w", err)
	}
	defer rows.Close()

	candidates := []store.Candidate{}
	for rows.Next() {
		var c store.Candidate
		if err := rows.Scan(&c.ItemID, &c.SharedCount, &c.TagCount); err != nil {
			return nil, 0, err
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return candidates, srcCount, nil
}
