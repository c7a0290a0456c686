package types

import (
	"sort"
	"strings"

	version "github.com/hashicorp/go-version"
)

// ImportDecl identifies an import that must exist in the transpiled module.
// Member is empty for plain `import module` declarations. Equality is by the
// (Module, Member) pair, independent of where the import ends up.
type ImportDecl struct {
	Module string
	Member string
}

// BuildConfig is the per-build configuration consumed by the engine.
// Fixers and Checkers are allowlists by name; empty means "all".
type BuildConfig struct {
	Target   *version.Version
	Force    bool
	Fixers   []string
	Checkers []string
}

// ParseAllowlist splits a comma-separated identifier list, trimming
// whitespace and dropping empty entries.
func ParseAllowlist(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var names []string
	for _, part := range strings.Split(s, ",") {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// Fingerprint returns a stable textual form of the config, used as part of
// the cache key so that changing the target or the selection invalidates
// cached outputs.
func (c BuildConfig) Fingerprint() string {
	fixers := append([]string(nil), c.Fixers...)
	checkers := append([]string(nil), c.Checkers...)
	sort.Strings(fixers)
	sort.Strings(checkers)

	var b strings.Builder
	b.WriteString("target=")
	if c.Target != nil {
		b.WriteString(c.Target.String())
	}
	b.WriteString(";fixers=")
	b.WriteString(strings.Join(fixers, ","))
	b.WriteString(";checkers=")
	b.WriteString(strings.Join(checkers, ","))
	return b.String()
}
