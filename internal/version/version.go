// Package version models target runtime versions and the applicability
// windows of fixers. Comparison follows dotted numeric ordering, so "3.4"
// sorts below "3.10" (plain string comparison would not).
package version

import (
	"fmt"

	hashiver "github.com/hashicorp/go-version"
	"github.com/pyverse/pydown/internal/types"
)

// Parse parses a dotted version string such as "2.7" or "3.10".
func Parse(s string) (*hashiver.Version, error) {
	v, err := hashiver.NewVersion(s)
	if err != nil {
		return nil, fmt.Errorf("invalid version %q: %w", s, err)
	}
	return v, nil
}

// MustParse is Parse for statically known version literals in the fixer
// catalog; it panics on malformed input.
func MustParse(s string) *hashiver.Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Window is a fixer's applicability window. The apply range
// [ApplySince, ApplyUntil] is where the fixer must run to produce correct
// output. The works range is where running it is harmless even when not
// required: WorksSince defaults to ApplySince when nil, and a nil
// WorksUntil means compatibility extends indefinitely forward.
type Window struct {
	ApplySince *hashiver.Version
	ApplyUntil *hashiver.Version
	WorksSince *hashiver.Version
	WorksUntil *hashiver.Version
}

// Apply builds a window with the works range defaulting to the apply range
// (open ended forward). Version strings must be well formed; the catalog is
// static so malformed input is a programmer error.
func Apply(since, until string) Window {
	return Window{
		ApplySince: MustParse(since),
		ApplyUntil: MustParse(until),
	}
}

func (w Window) worksSince() *hashiver.Version {
	if w.WorksSince != nil {
		return w.WorksSince
	}
	return w.ApplySince
}

// AppliesTo reports whether the fixer must run for the target version.
func (w Window) AppliesTo(v *hashiver.Version) bool {
	return w.ApplySince.LessThanOrEqual(v) && v.LessThanOrEqual(w.ApplyUntil)
}

// CompatibleWith reports whether running the fixer is harmless for the
// target version.
func (w Window) CompatibleWith(v *hashiver.Version) bool {
	if v.LessThan(w.worksSince()) {
		return false
	}
	return w.WorksUntil == nil || v.LessThanOrEqual(w.WorksUntil)
}

// Validate checks the window's internal invariants: apply_since <=
// apply_until, works_since <= works_until when both are present, and the
// apply range contained in the works range.
func (w Window) Validate() error {
	if w.ApplySince == nil || w.ApplyUntil == nil {
		return &types.ConfigurationError{Reason: "window is missing its apply range"}
	}
	if w.ApplyUntil.LessThan(w.ApplySince) {
		return &types.ConfigurationError{Reason: fmt.Sprintf(
			"apply window is empty: %s > %s", w.ApplySince, w.ApplyUntil,
		)}
	}
	ws := w.worksSince()
	if w.WorksUntil != nil && w.WorksUntil.LessThan(ws) {
		return &types.ConfigurationError{Reason: fmt.Sprintf(
			"works window is empty: %s > %s", ws, w.WorksUntil,
		)}
	}
	if w.ApplySince.LessThan(ws) {
		return &types.ConfigurationError{Reason: fmt.Sprintf(
			"apply window starts before works window: %s < %s", w.ApplySince, ws,
		)}
	}
	if w.WorksUntil != nil && w.WorksUntil.LessThan(w.ApplyUntil) {
		return &types.ConfigurationError{Reason: fmt.Sprintf(
			"apply window ends after works window: %s > %s", w.ApplyUntil, w.WorksUntil,
		)}
	}
	return nil
}
