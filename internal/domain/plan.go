package domain

import (
	"fmt"
	"sort"
	"strings"
)

// TokenKind discriminates the two shapes a resolved include token can take.
type TokenKind string

const (
	// TokenSingle is a token that resolved to exactly one tag id.
	TokenSingle TokenKind = "single"
	// TokenGroup is a token that resolved to several tag ids (ambiguous name
	// or wildcard); an item matches the token if it carries any of them.
	TokenGroup TokenKind = "group"
)

// ResolvedToken is one include token after vocabulary resolution.
// The AND-of-OR-groups structure of a plan is explicit: every token must be
// satisfied, a group token is satisfied by any of its ids.
type ResolvedToken struct {
	Kind TokenKind
	ID   int64   // set when Kind == TokenSingle
	IDs  []int64 // set when Kind == TokenGroup
}

// SingleToken builds a single-id token.
func SingleToken(id int64) ResolvedToken {
	return ResolvedToken{Kind: TokenSingle, ID: id}
}

// GroupToken builds a multi-id token. The id slice is sorted so that plan
// keys are stable regardless of resolution order.
func GroupToken(ids []int64) ResolvedToken {
	sorted := make([]int64, len(ids))
	copy(sorted, ids)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return ResolvedToken{Kind: TokenGroup, IDs: sorted}
}

// TagIDs returns the token's ids regardless of kind.
func (t ResolvedToken) TagIDs() []int64 {
	if t.Kind == TokenSingle {
		return []int64{t.ID}
	}
	return t.IDs
}

// WildcardResolution reports how a wildcard token resolved, for the API layer.
// Truncated means more tags matched than the cap allows; the returned set is
// exact for inclusion filtering but approximate for counting.
type WildcardResolution struct {
	Pattern    string   `json:"pattern"`
	Names      []string `json:"names"`
	Truncated  bool     `json:"truncated"`
	MatchCount int      `json:"match_count"`
}

// Plan is a compiled tag expression, ready for the set executor.
type Plan struct {
	IncludeGroups []ResolvedToken
	ExcludeIDs    []int64
	MetaInclude   []MetaName
	MetaExclude   []MetaName
	NoteQuery     string

	// ResolvedWildcards carries per-wildcard resolution info back to callers.
	ResolvedWildcards []WildcardResolution

	// Unsatisfiable is set when a token resolved to zero persisted tags:
	// the plan is known to match nothing without touching the store.
	Unsatisfiable bool

	// SelectedTagIDs holds every tag id referenced by the plan (include and
	// exclude), used by the facet engine to suppress already-chosen tags.
	SelectedTagIDs []int64
}

// Empty reports whether the plan carries no constraints at all.
// An empty plan must not be executed as "all items".
func (p *Plan) Empty() bool {
	return len(p.IncludeGroups) == 0 &&
		len(p.ExcludeIDs) == 0 &&
		len(p.MetaInclude) == 0 &&
		len(p.MetaExclude) == 0 &&
		p.NoteQuery == ""
}

// Key returns a normalized cache key for the plan. Tokens and ids are
// sorted so equivalent plans share a key.
func (p *Plan) Key() string {
	var b strings.Builder

	groups := make([]string, 0, len(p.IncludeGroups))
	for _, g := range p.IncludeGroups {
		ids := g.TagIDs()
		parts := make([]string, len(ids))
		for i, id := range ids {
			parts[i] = fmt.Sprintf("%d", id)
		}
		groups = append(groups, strings.Join(parts, ","))
	}
	sort.Strings(groups)
	b.WriteString("in=")
	b.WriteString(strings.Join(groups, "|"))

	ex := make([]int64, len(p.ExcludeIDs))
	copy(ex, p.ExcludeIDs)
	sort.Slice(ex, func(i, j int) bool { return ex[i] < ex[j] })
	b.WriteString(";ex=")
	for i, id := range ex {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%d", id)
	}

	mi := make([]string, len(p.MetaInclude))
	for i, m := range p.MetaInclude {
		mi[i] = string(m)
	}
	sort.Strings(mi)
	b.WriteString(";mi=")
	b.WriteString(strings.Join(mi, ","))

	mx := make([]string, len(p.MetaExclude))
	for i, m := range p.MetaExclude {
		mx[i] = string(m)
	}
	sort.Strings(mx)
	b.WriteString(";mx=")
	b.WriteString(strings.Join(mx, ","))

	b.WriteString(";nq=")
	b.WriteString(p.NoteQuery)

	return b.String()
}
