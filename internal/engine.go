package internal

import (
	"fmt"

	"github.com/pyverse/pydown/internal/checkers"
	"github.com/pyverse/pydown/internal/fixers"
	"github.com/pyverse/pydown/internal/pyast"
	"github.com/pyverse/pydown/internal/types"
)

// Engine resolves the fixer and checker selection for a build configuration
// and runs the transpile pipeline over module trees. Resolution happens
// once; fixer instances are created fresh per source unit so that temp-name
// counters and import accumulators never leak across units.
type Engine struct {
	cfg types.BuildConfig
}

// NewEngine validates the configuration against the registry: every window
// must be internally consistent and the selection must resolve. It fails
// before any tree is touched.
func NewEngine(cfg types.BuildConfig) (*Engine, error) {
	if cfg.Target == nil {
		return nil, &types.ConfigurationError{Reason: "no target version"}
	}
	for _, f := range fixers.Catalog() {
		if err := f.Window().Validate(); err != nil {
			return nil, fmt.Errorf("fixer %q: %w", f.Name(), err)
		}
	}
	for _, c := range checkers.Catalog() {
		if err := c.Window().Validate(); err != nil {
			return nil, fmt.Errorf("checker %q: %w", c.Name(), err)
		}
	}

	e := &Engine{cfg: cfg}
	if _, _, err := e.resolve(); err != nil {
		return nil, err
	}
	return e, nil
}

// Config returns the engine's build configuration.
func (e *Engine) Config() types.BuildConfig { return e.cfg }

// ResolveFixers returns the ordered, deduplicated fixer selection for the
// configured target: fresh instances, in registry order.
func (e *Engine) ResolveFixers() ([]fixers.Fixer, error) {
	selected, _, err := e.resolve()
	return selected, err
}

// ResolveCheckers returns the active checker selection for the configured
// target.
func (e *Engine) ResolveCheckers() ([]checkers.Checker, error) {
	_, selected, err := e.resolve()
	return selected, err
}

func (e *Engine) resolve() ([]fixers.Fixer, []checkers.Checker, error) {
	activeCheckers, err := selectCheckers(checkers.Catalog(), e.cfg)
	if err != nil {
		return nil, nil, err
	}
	selected, err := selectFixers(fixers.Catalog(), e.cfg)
	if err != nil {
		return nil, nil, err
	}

	// A fixer whose rewrite is only safe under a guard checker cannot run
	// when that checker does not cover the target.
	active := make(map[string]bool, len(activeCheckers))
	for _, c := range activeCheckers {
		active[c.Name()] = true
	}
	for _, f := range selected {
		guarded, ok := f.(fixers.Guarded)
		if !ok {
			continue
		}
		if !active[guarded.GuardChecker()] {
			return nil, nil, &types.ConfigurationError{Reason: fmt.Sprintf(
				"fixer %q requires checker %q, which is not active for target %s",
				f.Name(), guarded.GuardChecker(), e.cfg.Target,
			)}
		}
	}
	return selected, activeCheckers, nil
}

func selectFixers(catalog []fixers.Fixer, cfg types.BuildConfig) ([]fixers.Fixer, error) {
	var selected []fixers.Fixer

	if len(cfg.Fixers) > 0 {
		byName := make(map[string]fixers.Fixer, len(catalog))
		for _, f := range catalog {
			byName[f.Name()] = f
		}
		wanted := make(map[string]bool, len(cfg.Fixers))
		for _, name := range cfg.Fixers {
			if _, ok := byName[name]; !ok {
				return nil, &types.ConfigurationError{Reason: fmt.Sprintf("unknown fixer %q", name)}
			}
			wanted[name] = true
		}
		// Registry order, not allowlist order; duplicates collapse here.
		for _, f := range catalog {
			if wanted[f.Name()] {
				selected = append(selected, f)
			}
		}
	} else {
		for _, f := range catalog {
			if f.Window().AppliesTo(cfg.Target) {
				selected = append(selected, f)
			}
		}
	}

	// An explicit selection may name a fixer outside its works window; a
	// default selection hitting this indicates a registry bug. Either way
	// the build must not proceed.
	for _, f := range selected {
		if !f.Window().CompatibleWith(cfg.Target) {
			return nil, &types.IncompatibleFixerSelectionError{
				Fixer:  f.Name(),
				Target: cfg.Target.String(),
			}
		}
	}
	return selected, nil
}

func selectCheckers(catalog []checkers.Checker, cfg types.BuildConfig) ([]checkers.Checker, error) {
	var selected []checkers.Checker

	if len(cfg.Checkers) > 0 {
		byName := make(map[string]checkers.Checker, len(catalog))
		for _, c := range catalog {
			byName[c.Name()] = c
		}
		wanted := make(map[string]bool, len(cfg.Checkers))
		for _, name := range cfg.Checkers {
			if _, ok := byName[name]; !ok {
				return nil, &types.ConfigurationError{Reason: fmt.Sprintf("unknown checker %q", name)}
			}
			wanted[name] = true
		}
		// As with fixers, an explicit selection overrides the apply window
		// but not the works window: naming a checker keeps it active for any
		// target it can still run on.
		for _, c := range catalog {
			if wanted[c.Name()] {
				selected = append(selected, c)
			}
		}
	} else {
		for _, c := range catalog {
			if c.Window().AppliesTo(cfg.Target) {
				selected = append(selected, c)
			}
		}
	}

	for _, c := range selected {
		if !c.Window().CompatibleWith(cfg.Target) {
			return nil, &types.ConfigurationError{Reason: fmt.Sprintf(
				"checker %q cannot run against target %s", c.Name(), cfg.Target,
			)}
		}
	}
	return selected, nil
}

// Transpile runs the checkers and then the resolved fixers, in registry
// order, each fixer consuming the previous one's output. The first error
// aborts the unit; no partial tree is returned. The second result is the
// deduplicated union of the imports the fixers required, in the order
// first requested.
func (e *Engine) Transpile(module *pyast.Node) (*pyast.Node, []types.ImportDecl, error) {
	if module == nil || module.Kind != pyast.KindModule {
		return nil, nil, &types.StructuralAssumptionError{Reason: "pipeline input is not a module"}
	}

	selected, activeCheckers, err := e.resolve()
	if err != nil {
		return nil, nil, err
	}

	for _, c := range activeCheckers {
		if err := c.Check(module); err != nil {
			return nil, nil, err
		}
	}

	for _, f := range selected {
		module, err = f.Fix(e.cfg, module)
		if err != nil {
			return nil, nil, fmt.Errorf("fixer %q: %w", f.Name(), err)
		}
	}

	var decls []types.ImportDecl
	seen := make(map[types.ImportDecl]bool)
	for _, f := range selected {
		for _, decl := range f.RequiredImports() {
			if !seen[decl] {
				seen[decl] = true
				decls = append(decls, decl)
			}
		}
	}
	return module, decls, nil
}
