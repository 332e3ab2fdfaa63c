package evaluator

import (
	"github.com/funvibe/serpent/internal/diagnostics"
)

// importModule returns the cached module or parses and evaluates it.
// A module is evaluated at most once per Evaluator; importing a module
// that is still being loaded is a circular import.
func (e *Evaluator) importModule(name string) (*Module, *diagnostics.Error) {
	if entry, ok := e.modules[name]; ok {
		if entry.state == moduleCached {
			return entry.module, nil
		}
		return nil, diagnostics.Errorf(diagnostics.ErrM001, "circular import of module '%s'", name)
	}
	source, ok := e.sources[name]
	if !ok {
		return nil, diagnostics.Errorf(diagnostics.ErrM001, "module '%s' not found", name)
	}

	entry := &moduleEntry{state: moduleParsing}
	e.modules[name] = entry
	e.tracef("load module %s", name)

	root, err := e.parse(name, source)
	if err != nil {
		delete(e.modules, name)
		return nil, err
	}

	mod := &Module{Name: name, Scope: NewScope(ModuleScope, name, e.builtins), Source: source}
	entry.module = mod
	entry.state = moduleEvaluating

	saved := e.frame
	e.frame = &Frame{Scope: mod.Scope, Parent: saved, Module: mod, Name: name}
	_, err = e.execBlock(root)
	e.frame = saved
	if err != nil {
		delete(e.modules, name)
		return nil, err
	}

	entry.state = moduleCached
	e.tracef("module %s ready", name)
	return mod, nil
}
