// Package script is the default implementation of the engine's pluggable
// scripting contract. It evaluates the mini-language used by Script leaves
// and by pre/postcondition guards: semicolon-separated statements, each
// either an assignment ("key := expression") or a bare expression over
// blackboard keys, with the usual comparison and boolean operators.
//
// Expressions are compiled with expr-lang and cached in a bounded LRU so
// hot guards do not recompile on every tick.
package script

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/bramblebt/bramble/pkg/blackboard"
)

// DefaultCacheSize bounds the compiled-program cache.
const DefaultCacheSize = 256

var assignRe = regexp.MustCompile(`^\s*([A-Za-z_][A-Za-z0-9_]*)\s*:=\s*(.+)$`)

// Evaluator compiles and runs script snippets against a blackboard scope.
// Safe for concurrent use; in practice the engine calls it from the single
// ticking goroutine.
type Evaluator struct {
	cache *programCache
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithCacheSize overrides the compiled-program cache bound.
func WithCacheSize(n int) Option {
	return func(e *Evaluator) {
		e.cache = newProgramCache(n)
	}
}

// New creates an Evaluator with the default cache size.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{cache: newProgramCache(DefaultCacheSize)}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Eval runs a script against the given blackboard scope and returns the
// value of the last statement. Assignments write through the scope chain
// and respect the blackboard's type-stability rule.
func (e *Evaluator) Eval(code string, bb *blackboard.Blackboard) (any, error) {
	var last any
	for _, stmt := range splitStatements(code) {
		if m := assignRe.FindStringSubmatch(stmt); m != nil {
			value, err := e.run(m[2], bb)
			if err != nil {
				return nil, err
			}
			if err := bb.Set(m[1], value); err != nil {
				return nil, fmt.Errorf("assignment to %q: %w", m[1], err)
			}
			last = value
			continue
		}
		value, err := e.run(stmt, bb)
		if err != nil {
			return nil, err
		}
		last = value
	}
	return last, nil
}

func (e *Evaluator) run(expression string, bb *blackboard.Blackboard) (any, error) {
	program, err := e.compile(expression)
	if err != nil {
		return nil, err
	}
	env := map[string]any{}
	if bb != nil {
		env = bb.Visible()
	}
	out, err := vm.Run(program, env)
	if err != nil {
		return nil, fmt.Errorf("eval %q: %w", expression, err)
	}
	return out, nil
}

func (e *Evaluator) compile(expression string) (*vm.Program, error) {
	if program, ok := e.cache.get(expression); ok {
		return program, nil
	}
	program, err := expr.Compile(expression, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", expression, err)
	}
	e.cache.put(expression, program)
	return program, nil
}

// splitStatements breaks a script into statements on semicolons. The
// mini-language has no string literals containing semicolons, so a plain
// split is sufficient.
func splitStatements(code string) []string {
	parts := strings.Split(code, ";")
	out := parts[:0]
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
