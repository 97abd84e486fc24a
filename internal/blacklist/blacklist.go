// Package blacklist maintains the set of tag patterns hidden from all
// query, facet, and wildcard surfaces.
package blacklist

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/normalize"
)

// Blacklist holds normalized tag patterns loaded from a file.
// Patterns may contain '*' globs; exact names are kept in a map for O(1)
// lookup and glob patterns are matched linearly.
type Blacklist struct {
	mu       sync.RWMutex
	path     string
	exact    map[string]struct{}
	patterns []string
	logger   *slog.Logger
}

// New creates a blacklist backed by the given file.
// An empty path yields a permanently empty blacklist.
func New(path string, logger *slog.Logger) *Blacklist {
	return &Blacklist{
		path:   path,
		exact:  make(map[string]struct{}),
		logger: logger,
	}
}

// Load reads the pattern file and replaces the active set.
// A missing file clears the set rather than failing - deleting the file
// is a legitimate way to disable blacklisting.
func (b *Blacklist) Load() error {
	if b.path == "" {
		return nil
	}

	file, err := os.Open(b.path) //#nosec G304 -- Blacklist path comes from operator config
	if err != nil {
		if os.IsNotExist(err) {
			b.replace(nil, nil)
			return nil
		}
		return fmt.Errorf("open blacklist file: %w", err)
	}
	defer file.Close()

	exact := make(map[string]struct{})
	var patterns []string

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		name := normalize.Name(line)
		if name == "" {
			continue
		}
		if normalize.IsWildcard(name) {
			patterns = append(patterns, name)
		} else {
			exact[name] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read blacklist file: %w", err)
	}

	b.replace(exact, patterns)
	b.logger.Debug("blacklist loaded",
		slog.Int("exact", len(exact)),
		slog.Int("patterns", len(patterns)))
	return nil
}

func (b *Blacklist) replace(exact map[string]struct{}, patterns []string) {
	if exact == nil {
		exact = make(map[string]struct{})
	}
	b.mu.Lock()
	b.exact = exact
	b.patterns = patterns
	b.mu.Unlock()
}

// IsBlacklisted reports whether a normalized tag name is hidden.
func (b *Blacklist) IsBlacklisted(name string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if _, ok := b.exact[name]; ok {
		return true
	}
	for _, p := range b.patterns {
		if normalize.MatchGlob(p, name) {
			return true
		}
	}
	return false
}

// Entries returns every active pattern, exact names first.
func (b *Blacklist) Entries() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]string, 0, len(b.exact)+len(b.patterns))
	for name := range b.exact {
		out = append(out, name)
	}
	out = append(out, b.patterns...)
	return out
}

// Replace normalizes and installs a new pattern set, then persists it to
// the backing file so the change survives restarts.
func (b *Blacklist) Replace(entries []string) error {
	exact := make(map[string]struct{})
	var patterns []string
	for _, raw := range entries {
		name := normalize.Name(raw)
		if name == "" {
			continue
		}
		if normalize.IsWildcard(name) {
			patterns = append(patterns, name)
		} else {
			exact[name] = struct{}{}
		}
	}

	b.replace(exact, patterns)

	if b.path == "" {
		return nil
	}
	var sb strings.Builder
	for name := range exact {
		sb.WriteString(name)
		sb.WriteByte('\n')
	}
	for _, p := range patterns {
		sb.WriteString(p)
		sb.WriteByte('\n')
	}
	if err := os.WriteFile(b.path, []byte(sb.String()), 0o600); err != nil {
		return fmt.Errorf("write blacklist file: %w", err)
	}
	return nil
}

// Len returns the number of active entries.
func (b *Blacklist) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.exact) + len(b.patterns)
}
