package catalog

import (
	"log/slog"

	"github.com/vango-dev/choicegroup/internal/config"
	"github.com/vango-dev/choicegroup/internal/errors"
	"github.com/vango-dev/choicegroup/pkg/choice"
	"github.com/vango-dev/choicegroup/pkg/features/rules"
)

// BuildRules compiles the validation rules declared for g. It returns nil
// when g declares none.
func BuildRules(g config.GroupConfig, logger *slog.Logger) (*rules.Set, error) {
	var rs []rules.Rule
	if g.Required {
		rs = append(rs, rules.Required())
	}
	for _, rc := range g.Rules {
		r, err := buildRule(rc)
		if err != nil {
			return nil, errors.New("E203").Wrap(err).
				WithSuggestionf("group %q rule %q: %v", g.Name, rc.Name, err)
		}
		rs = append(rs, r)
	}
	if len(rs) == 0 {
		return nil, nil
	}
	return rules.New(rs...).WithLogger(logger), nil
}

func buildRule(rc config.RuleConfig) (rules.Rule, error) {
	opts := []rules.Option{rules.WithName(rc.Name)}
	if rc.Severity != "" {
		opts = append(opts, rules.WithSeverity(choice.Severity(rc.Severity)))
	}
	switch rc.Kind() {
	case "expr":
		return rules.Expr(rc.Name, rc.Expr, opts...)
	case "cel":
		return rules.CEL(rc.Name, rc.CEL, opts...)
	case "js":
		return rules.JS(rc.Name, rc.JS, opts...)
	case "min":
		return rules.MinSelected(*rc.Min, opts...), nil
	case "max":
		return rules.MaxSelected(*rc.Max, opts...), nil
	case "oneOf":
		return rules.OneOf(rc.OneOf, opts...), nil
	}
	return nil, errors.Newf(errors.CategoryConfig, "rule needs exactly one of expr, cel, js, min, max, oneOf")
}
