package rules

import (
	"errors"
	"fmt"

	celgo "github.com/google/cel-go/cel"
)

// CELRule evaluates a Common Expression Language program.
type CELRule struct {
	base
	source  string
	program celgo.Program
}

// CEL compiles source with github.com/google/cel-go. value is declared dyn,
// selected list(dyn) and count int.
func CEL(name, source string, opts ...Option) (*CELRule, error) {
	if source == "" {
		return nil, errors.New("rules: expression must not be empty")
	}
	env, err := celgo.NewEnv(
		celgo.Variable("value", celgo.DynType),
		celgo.Variable("selected", celgo.ListType(celgo.DynType)),
		celgo.Variable("count", celgo.IntType),
	)
	if err != nil {
		return nil, fmt.Errorf("rules: cel env: %w", err)
	}
	ast, issues := env.Compile(source)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("rules: compile cel %q: %w", name, issues.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("rules: program cel %q: %w", name, err)
	}
	return &CELRule{base: newBase(name, opts), source: source, program: prg}, nil
}

// Source returns the expression text.
func (r *CELRule) Source() string { return r.source }

// Check implements Rule.
func (r *CELRule) Check(modelValue any) (bool, error) {
	vars := variables(modelValue)
	vars["count"] = int64(vars["count"].(int))
	out, _, err := r.program.Eval(vars)
	if err != nil {
		return false, fmt.Errorf("rules: eval cel %q: %w", r.name, err)
	}
	return asBool("cel", out.Value())
}
