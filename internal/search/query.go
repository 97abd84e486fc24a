package search

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// maxFetch bounds how many raw hits one search pulls before dedup and
// pagination. Variants of the same identity must dedup globally, so the
// whole ranked prefix is fetched and paged in memory.
const maxFetch = 500

// Result is a deduplicated, paginated search response.
type Result struct {
	Total int   `json:"total"`
	Hits  []Hit `json:"hits"`
}

// Hit is one logical text match: the best-ranked variant of its identity.
type Hit struct {
	Identity string  `json:"identity"`
	Source   Source  `json:"source"`
	Label    string  `json:"label,omitempty"`
	Snippet  string  `json:"snippet"`
	Score    float64 `json:"score"`
	ItemIDs  []int64 `json:"item_ids"`
}

// token is one parsed unit of the free-text syntax.
type token struct {
	text   string
	phrase bool
	negate bool
}

// parseQuery tokenizes the free-text syntax: bare terms AND together,
// "quoted phrases" match adjacently, a leading '-' excludes, and OR joins
// its neighbors into an any-of group.
func parseQuery(raw string) (groups [][]token, negated []token) {
	var tokens []string
	var b strings.Builder
	inQuote := false
	for _, r := range raw {
		switch {
		case r == '"':
			inQuote = !inQuote
			b.WriteRune(r)
		case r == ' ' && !inQuote:
			if b.Len() > 0 {
				tokens = append(tokens, b.String())
				b.Reset()
			}
		default:
			b.WriteRune(r)
		}
	}
	if b.Len() > 0 {
		tokens = append(tokens, b.String())
	}

	joinNext := false
	for _, t := range tokens {
		if strings.EqualFold(t, "OR") {
			if len(groups) > 0 {
				joinNext = true
			}
			continue
		}

		tok := token{}
		if strings.HasPrefix(t, "-") && len(t) > 1 {
			tok.negate = true
			t = t[1:]
		}
		if strings.HasPrefix(t, `"`) && strings.HasSuffix(t, `"`) && len(t) > 1 {
			tok.phrase = true
			t = strings.Trim(t, `"`)
		}
		tok.text = strings.ToLower(strings.TrimSpace(t))
		if tok.text == "" {
			joinNext = false
			continue
		}

		if tok.negate {
			negated = append(negated, tok)
			joinNext = false
			continue
		}
		if joinNext {
			groups[len(groups)-1] = append(groups[len(groups)-1], tok)
			joinNext = false
			continue
		}
		groups = append(groups, []token{tok})
	}
	return groups, negated
}

// tokenQuery builds the Bleve query for one token. Plain terms also match
// as word prefixes, so "back" finds "background"; the snippet builder then
// highlights only the matched prefix.
func tokenQuery(t token) query.Query {
	if t.phrase {
		phrase := bleve.NewMatchPhraseQuery(t.text)
		phrase.SetField("text")
		return phrase
	}

	match := bleve.NewMatchQuery(t.text)
	match.SetField("text")
	match.SetBoost(2.0)

	prefix := bleve.NewPrefixQuery(t.text)
	prefix.SetField("text")

	return bleve.NewDisjunctionQuery(match, prefix)
}

// buildQuery assembles the boolean query: every group must match (any term
// within a group suffices), no negated token may match.
func buildQuery(groups [][]token, negated []token) query.Query {
	boolean := bleve.NewBooleanQuery()

	for _, group := range groups {
		if len(group) == 1 {
			boolean.AddMust(tokenQuery(group[0]))
			continue
		}
		alternatives := make([]query.Query, len(group))
		for i, t := range group {
			alternatives[i] = tokenQuery(t)
		}
		boolean.AddMust(bleve.NewDisjunctionQuery(alternatives...))
	}

	for _, t := range negated {
		boolean.AddMustNot(tokenQuery(t))
	}

	if len(groups) == 0 {
		// Exclusion-only or empty queries match nothing rather than
		// everything.
		return bleve.NewMatchNoneQuery()
	}
	return boolean
}

// positiveTerms flattens the positive tokens for snippet highlighting.
func positiveTerms(groups [][]token) []string {
	var terms []string
	for _, group := range groups {
		for _, t := range group {
			terms = append(terms, t.text)
		}
	}
	return terms
}

// Search runs a free-text query, deduplicates language variants by content
// identity keeping the higher-ranked one, and returns the requested page
// with highlighted snippets.
func (s *Index) Search(ctx context.Context, rawQuery string, limit, offset int) (*Result, error) {
	groups, negated := parseQuery(rawQuery)
	if len(groups) == 0 {
		return &Result{Hits: []Hit{}}, nil
	}

	hits, err := s.rankedHits(ctx, groups, negated)
	if err != nil {
		return nil, err
	}

	result := &Result{Total: len(hits), Hits: []Hit{}}
	if offset >= len(hits) {
		return result, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(hits) {
		end = len(hits)
	}

	terms := positiveTerms(groups)
	for _, h := range hits[offset:end] {
		h.Snippet = buildSnippet(h.Snippet, terms)
		result.Hits = append(result.Hits, h)
	}
	return result, nil
}

// MatchingItemIDs resolves a free-text query to the set of item ids whose
// notes or titles match. This is the set executor's note leaf.
func (s *Index) MatchingItemIDs(ctx context.Context, rawQuery string) ([]int64, error) {
	groups, negated := parseQuery(rawQuery)
	if len(groups) == 0 {
		return []int64{}, nil
	}

	hits, err := s.rankedHits(ctx, groups, negated)
	if err != nil {
		return nil, err
	}

	seen := make(map[int64]struct{})
	ids := []int64{}
	for _, h := range hits {
		for _, id := range h.ItemIDs {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// rankedHits executes the query and collapses variants onto their identity.
// The bleve ranking is score-descending, so the first variant seen per
// identity is the winner. Hit.Snippet temporarily holds the raw stored text.
func (s *Index) rankedHits(ctx context.Context, groups [][]token, negated []token) ([]Hit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	req := bleve.NewSearchRequestOptions(buildQuery(groups, negated), maxFetch, 0, false)
	req.Fields = []string{"identity", "source", "label", "text", "item_ids"}

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	seen := make(map[string]struct{}, len(res.Hits))
	hits := make([]Hit, 0, len(res.Hits))
	for _, raw := range res.Hits {
		h := Hit{Score: raw.Score}
		if v, ok := raw.Fields["identity"].(string); ok {
			h.Identity = v
		}
		if _, dup := seen[h.Identity]; dup {
			continue
		}
		seen[h.Identity] = struct{}{}

		if v, ok := raw.Fields["source"].(string); ok {
			h.Source = Source(v)
		}
		if v, ok := raw.Fields["label"].(string); ok {
			h.Label = v
		}
		if v, ok := raw.Fields["text"].(string); ok {
			h.Snippet = v
		}
		h.ItemIDs = fieldItemIDs(raw.Fields["item_ids"])

		hits = append(hits, h)
	}
	return hits, nil
}

// fieldItemIDs decodes the stored item_ids field, which Bleve returns as a
// single float64 or a slice depending on cardinality.
func fieldItemIDs(v interface{}) []int64 {
	switch ids := v.(type) {
	case float64:
		return []int64{int64(ids)}
	case []interface{}:
		out := make([]int64, 0, len(ids))
		for _, raw := range ids {
			if f, ok := raw.(float64); ok {
				out = append(out, int64(f))
			}
		}
		return out
	default:
		return nil
	}
}
