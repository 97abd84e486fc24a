// Package query compiles raw tag expressions into executable plans.
//
// An expression is a comma-separated token list. A leading '-' marks an
// exclusion, '*' marks a wildcard pattern, and a fixed set of meta names
// compiles to computed predicates instead of vocabulary lookups. The
// resulting plan is AND-of-OR-groups: every include token must be satisfied,
// and a token satisfied by any of its resolved tag ids.
package query

import (
	"context"
	"log/slog"
	"strings"

	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/blacklist"
	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/domain"
	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/normalize"
	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/vocab"
)

// Compiler turns tag expressions into plans, resolving tokens through the
// vocabulary and silently dropping blacklisted ones.
type Compiler struct {
	vocab     *vocab.Vocabulary
	blacklist *blacklist.Blacklist
	logger    *slog.Logger
}

// New creates a compiler.
func New(v *vocab.Vocabulary, bl *blacklist.Blacklist, logger *slog.Logger) *Compiler {
	return &Compiler{vocab: v, blacklist: bl, logger: logger}
}

// Compile parses and resolves an expression into a plan. An optional free
// text note query rides along into the plan unchanged.
//
// Invalid wildcard syntax is the only compile error; every other oddity
// degrades: unknown exclusions exclude nothing, blacklisted tokens vanish,
// and an include token with zero persisted tags marks the whole plan
// unsatisfiable so the executor is never consulted.
func (c *Compiler) Compile(ctx context.Context, expression, noteQuery string) (*domain.Plan, error) {
	plan := &domain.Plan{NoteQuery: strings.TrimSpace(noteQuery)}

	for _, raw := range strings.Split(expression, ",") {
		token := normalize.Name(raw)
		if token == "" {
			continue
		}

		exclude := false
		if strings.HasPrefix(token, "-") && len(token) > 1 {
			exclude = true
			token = token[1:]
		}

		if meta, ok := domain.LookupMeta(token); ok {
			if exclude {
				plan.MetaExclude = append(plan.MetaExclude, meta)
			} else {
				plan.MetaInclude = append(plan.MetaInclude, meta)
			}
			continue
		}

		if normalize.IsWildcard(token) {
			if err := normalize.ValidateWildcard(token); err != nil {
				return nil, err
			}
			if err := c.compileWildcard(ctx, plan, token, exclude); err != nil {
				return nil, err
			}
			continue
		}

		if c.blacklist.IsBlacklisted(token) {
			c.logger.Debug("dropped blacklisted token", slog.String("token", token))
			continue
		}

		if err := c.compileLiteral(ctx, plan, token, exclude); err != nil {
			return nil, err
		}
	}

	return plan, nil
}

func (c *Compiler) compileLiteral(ctx context.Context, plan *domain.Plan, token string, exclude bool) error {
	tags, err := c.vocab.ResolveName(ctx, token)
	if err != nil {
		return err
	}

	ids := make([]int64, len(tags))
	for i, t := range tags {
		ids[i] = t.ID
	}

	if exclude {
		// Excluding a name nobody carries excludes nothing.
		plan.ExcludeIDs = append(plan.ExcludeIDs, ids...)
		plan.SelectedTagIDs = append(plan.SelectedTagIDs, ids...)
		return nil
	}

	switch len(ids) {
	case 0:
		plan.Unsatisfiable = true
	case 1:
		plan.IncludeGroups = append(plan.IncludeGroups, domain.SingleToken(ids[0]))
	default:
		plan.IncludeGroups = append(plan.IncludeGroups, domain.GroupToken(ids))
	}
	plan.SelectedTagIDs = append(plan.SelectedTagIDs, ids...)
	return nil
}

func (c *Compiler) compileWildcard(ctx context.Context, plan *domain.Plan, pattern string, exclude bool) error {
	exp, err := c.vocab.ResolveWildcard(ctx, pattern)
	if err != nil {
		return err
	}
	plan.ResolvedWildcards = append(plan.ResolvedWildcards, exp.Resolution)

	ids := make([]int64, len(exp.Tags))
	for i, t := range exp.Tags {
		ids[i] = t.ID
	}

	if exclude {
		plan.ExcludeIDs = append(plan.ExcludeIDs, ids...)
		plan.SelectedTagIDs = append(plan.SelectedTagIDs, ids...)
		return nil
	}

	switch len(ids) {
	case 0:
		plan.Unsatisfiable = true
	case 1:
		plan.IncludeGroups = append(plan.IncludeGroups, domain.SingleToken(ids[0]))
	default:
		plan.IncludeGroups = append(plan.IncludeGroups, domain.GroupToken(ids))
	}
	plan.SelectedTagIDs = append(plan.SelectedTagIDs, ids...)
	return nil
}
