package types

import "fmt"

// ConfigurationError reports an invalid or contradictory build
// configuration: an unknown allowlist identifier, an impossible version
// window, or a fixer/checker selection that cannot coexist. It is raised
// before any tree is touched.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "invalid configuration: " + e.Reason
}

// StructuralAssumptionError reports a tree shape a fixer does not support,
// e.g. a non-identifier assignment target or a non-literal default where a
// literal is required. Fatal for the current source unit.
type StructuralAssumptionError struct {
	Fixer  string
	Reason string
}

func (e *StructuralAssumptionError) Error() string {
	if e.Fixer == "" {
		return "unsupported tree shape: " + e.Reason
	}
	return fmt.Sprintf("%s: unsupported tree shape: %s", e.Fixer, e.Reason)
}

// ExpansionOverflowError reports that the fixed-point expansion loop grew a
// statement block past its safety bound. This is an internal-invariant
// violation, not an input error.
type ExpansionOverflowError struct {
	InitialLen int
	CurrentLen int
}

func (e *ExpansionOverflowError) Error() string {
	return fmt.Sprintf(
		"expansion overflow: block grew from %d to %d statements", e.InitialLen, e.CurrentLen,
	)
}

// IncompatibleFixerSelectionError reports a selected fixer whose works
// window excludes the requested target version. With a default selection
// this indicates a registry bug; with an explicit allowlist it indicates a
// selection the fixer cannot honor.
type IncompatibleFixerSelectionError struct {
	Fixer  string
	Target string
}

func (e *IncompatibleFixerSelectionError) Error() string {
	return fmt.Sprintf("fixer %q is not compatible with target version %s", e.Fixer, e.Target)
}

// CheckError reports a checker veto: the source uses a construct that
// cannot be made to work on the target version.
type CheckError struct {
	Checker string
	Reason  string
}

func (e *CheckError) Error() string {
	return fmt.Sprintf("%s: %s", e.Checker, e.Reason)
}
