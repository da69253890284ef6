package rules

import (
	"errors"
	"fmt"

	"github.com/dop251/goja"
)

// JSRule evaluates a JavaScript expression with goja. Each check runs in a
// fresh runtime.
type JSRule struct {
	base
	source  string
	program *goja.Program
}

// JS compiles source as a JavaScript expression.
func JS(name, source string, opts ...Option) (*JSRule, error) {
	if source == "" {
		return nil, errors.New("rules: expression must not be empty")
	}
	program, err := goja.Compile(name, fmt.Sprintf("(function(){ return (%s); })()", source), true)
	if err != nil {
		return nil, fmt.Errorf("rules: compile js %q: %w", name, err)
	}
	return &JSRule{base: newBase(name, opts), source: source, program: program}, nil
}

// Source returns the expression text.
func (r *JSRule) Source() string { return r.source }

// Check implements Rule.
func (r *JSRule) Check(modelValue any) (bool, error) {
	vm := goja.New()
	for k, v := range variables(modelValue) {
		if err := vm.Set(k, v); err != nil {
			return false, err
		}
	}
	out, err := vm.RunProgram(r.program)
	if err != nil {
		return false, fmt.Errorf("rules: run js %q: %w", r.name, err)
	}
	return asBool("js", out.Export())
}
