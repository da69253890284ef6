package rules

import (
	"errors"
	"fmt"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"
)

// ExprRule evaluates an expr-lang expression.
type ExprRule struct {
	base
	source  string
	program *exprvm.Program
}

// Expr compiles source with github.com/expr-lang/expr. The expression must
// yield a bool.
func Expr(name, source string, opts ...Option) (*ExprRule, error) {
	if source == "" {
		return nil, errors.New("rules: expression must not be empty")
	}
	program, err := exprlang.Compile(source,
		exprlang.Env(map[string]any{
			"value":    nil,
			"selected": []any{},
			"count":    0,
		}),
		exprlang.AllowUndefinedVariables(),
		exprlang.AsBool(),
	)
	if err != nil {
		return nil, fmt.Errorf("rules: compile expr %q: %w", name, err)
	}
	return &ExprRule{base: newBase(name, opts), source: source, program: program}, nil
}

// Source returns the expression text.
func (r *ExprRule) Source() string { return r.source }

// Check implements Rule.
func (r *ExprRule) Check(modelValue any) (bool, error) {
	out, err := exprlang.Run(r.program, variables(modelValue))
	if err != nil {
		return false, fmt.Errorf("rules: run expr %q: %w", r.name, err)
	}
	return asBool("expr", out)
}
