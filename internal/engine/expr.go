package engine

import "github.com/PrivateGER/hydrus-nextbooru-sub001/internal/domain"

// Expr is a node in the set-algebra tree the executor evaluates. The
// compiler's plan is lowered into this tree so that execution strategy
// (parallel leaf fetch, smallest-first intersection) stays out of the
// compiler entirely.
type Expr interface {
	isExpr()
}

// TagLeaf produces the set of items carrying any of the given tag ids.
type TagLeaf struct {
	TagIDs []int64
}

// MetaLeaf produces the set of items satisfying one computed predicate.
type MetaLeaf struct {
	Meta domain.MetaName
}

// NoteLeaf produces the set of items with notes matching a free-text query.
type NoteLeaf struct {
	Query string
}

// Intersect evaluates every child and intersects the results.
type Intersect struct {
	Children []Expr
}

// Difference evaluates Base and subtracts the union of Subtract.
type Difference struct {
	Base     Expr
	Subtract []Expr
}

func (TagLeaf) isExpr()    {}
func (MetaLeaf) isExpr()   {}
func (NoteLeaf) isExpr()   {}
func (Intersect) isExpr()  {}
func (Difference) isExpr() {}

// Lower converts a compiled plan into a set expression. Must not be called
// on empty or unsatisfiable plans; the executor screens those first.
func Lower(plan *domain.Plan) Expr {
	var include []Expr
	for _, g := range plan.IncludeGroups {
		include = append(include, TagLeaf{TagIDs: g.TagIDs()})
	}
	for _, m := range plan.MetaInclude {
		include = append(include, MetaLeaf{Meta: m})
	}
	if plan.NoteQuery != "" {
		include = append(include, NoteLeaf{Query: plan.NoteQuery})
	}

	var base Expr
	switch len(include) {
	case 0:
		// Exclusion-only plans subtract from the full visible set, which is
		// expressed as a meta-free tag leaf with no ids. The executor treats
		// an empty TagLeaf as "all non-hidden items".
		base = TagLeaf{}
	case 1:
		base = include[0]
	default:
		base = Intersect{Children: include}
	}

	var subtract []Expr
	if len(plan.ExcludeIDs) > 0 {
		subtract = append(subtract, TagLeaf{TagIDs: plan.ExcludeIDs})
	}
	for _, m := range plan.MetaExclude {
		subtract = append(subtract, MetaLeaf{Meta: m})
	}
	if len(subtract) == 0 {
		return base
	}
	return Difference{Base: base, Subtract: subtract}
}
