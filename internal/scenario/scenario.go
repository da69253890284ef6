package scenario

import (
	stderrors "errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/choicegroup/internal/config"
	"github.com/vango-dev/choicegroup/internal/errors"
)

// Scenario is a parsed scenario file.
type Scenario struct {
	Name   string
	Groups []config.GroupConfig
	Steps  []Step

	file string
}

// File returns the path the scenario was loaded from.
func (s *Scenario) File() string { return s.file }

// Step is one action. Exactly one action field is set.
type Step struct {
	Declare        *DeclareStep `yaml:"declare"`
	Register       *MemberStep  `yaml:"register"`
	RegisterBefore *MemberStep  `yaml:"registerBefore"`
	Deregister     *IndexStep   `yaml:"deregister"`
	Check          *IndexStep   `yaml:"check"`
	Uncheck        *IndexStep   `yaml:"uncheck"`
	Click          *IndexStep   `yaml:"click"`
	Set            *SetStep     `yaml:"set"`
	Batch          *BatchStep   `yaml:"batch"`
	Open           *GroupRef    `yaml:"open"`
	Close          *GroupRef    `yaml:"close"`
	Dismiss        *GroupRef    `yaml:"dismiss"`
	Key            *KeyStep     `yaml:"key"`
	Expect         *Expectation `yaml:"expect"`

	// ExpectError makes the step pass only when the action fails with an
	// error containing this text.
	ExpectError string `yaml:"expectError"`

	// Line is the step's line in the scenario file.
	Line int `yaml:"-"`
}

// GroupRef names a group.
type GroupRef struct {
	Group string `yaml:"group"`
}

type DeclareStep struct {
	Group   string                `yaml:"group"`
	Options []config.OptionConfig `yaml:"options"`
}

// MemberStep adds one member. Model, when set, is used verbatim as the
// element's model value instead of a {value, checked} pair.
type MemberStep struct {
	Group    string `yaml:"group"`
	Value    any    `yaml:"value"`
	Label    string `yaml:"label"`
	Name     string `yaml:"name"`
	Checked  bool   `yaml:"checked"`
	Disabled bool   `yaml:"disabled"`
	Model    any    `yaml:"model"`

	// Before is the index of the member to insert in front of.
	Before int `yaml:"before"`
}

type IndexStep struct {
	Group string `yaml:"group"`
	Index int    `yaml:"index"`
}

type SetStep struct {
	Group     string `yaml:"group"`
	Value     any    `yaml:"value"`
	Unchecked bool   `yaml:"unchecked"`
}

// BatchStep runs nested steps inside one batch of Group.
type BatchStep struct {
	Group string `yaml:"group"`
	Steps []Step `yaml:"steps"`
}

type KeyStep struct {
	Group string `yaml:"group"`
	Key   string `yaml:"key"`

	// Event is up (default) or down.
	Event string `yaml:"event"`
}

// Expectation asserts state. Unset fields are not checked.
type Expectation struct {
	Group string `yaml:"group"`

	Value     any  `yaml:"value"`
	Unchecked bool `yaml:"unchecked"`

	// Checked lists exactly the indexes of checked members.
	Checked []int `yaml:"checked"`

	CheckedIndex *int  `yaml:"checkedIndex"`
	ActiveIndex  *int  `yaml:"activeIndex"`
	Opened       *bool `yaml:"opened"`
	Members      *int  `yaml:"members"`

	// Notifications is the number of changes the group emitted since the
	// scenario started.
	Notifications *int `yaml:"notifications"`

	// Feedback lists the names of failing rules.
	Feedback []string `yaml:"feedback"`
}

var actions = map[string]bool{
	"declare": true, "register": true, "registerBefore": true, "deregister": true,
	"check": true, "uncheck": true, "click": true, "set": true, "batch": true,
	"open": true, "close": true, "dismiss": true, "key": true, "expect": true,
}

// Actions returns the action names, sorted.
func Actions() []string {
	out := make([]string, 0, len(actions))
	for a := range actions {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// Load reads and parses a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("E300").Wrap(err).WithSuggestion(err.Error())
	}
	sc, err := Parse(data, path)
	if err != nil {
		return nil, err
	}
	return sc, nil
}

// Parse decodes a scenario. file is only used in error locations.
func Parse(data []byte, file string) (*Scenario, error) {
	var raw struct {
		Name   string               `yaml:"name"`
		Groups []config.GroupConfig `yaml:"groups"`
		Steps  []yaml.Node          `yaml:"steps"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.New("E300").Wrap(err).WithSuggestion(err.Error())
	}

	sc := &Scenario{Name: raw.Name, Groups: raw.Groups, file: file}
	for i := range sc.Groups {
		if sc.Groups[i].Mode == "" {
			sc.Groups[i].Mode = "single"
		}
	}
	cfg := config.Default()
	cfg.Groups = sc.Groups
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	for i := range raw.Steps {
		step, err := parseStep(&raw.Steps[i])
		if err != nil {
			return nil, sc.locate(errors.New("E301").Wrap(err).WithSuggestion(err.Error()), raw.Steps[i].Line, raw.Steps[i].Column)
		}
		sc.Steps = append(sc.Steps, step)
	}
	return sc, nil
}

func parseStep(n *yaml.Node) (Step, error) {
	var step Step
	if n.Kind != yaml.MappingNode {
		return step, fmt.Errorf("step must be a mapping")
	}
	count := 0
	for k := 0; k+1 < len(n.Content); k += 2 {
		key := n.Content[k].Value
		switch {
		case actions[key]:
			count++
		case key == "expectError":
		default:
			return step, fmt.Errorf("unknown action %q, use one of: %s", key, strings.Join(Actions(), ", "))
		}
	}
	if count != 1 {
		return step, fmt.Errorf("step has %d actions, want exactly 1", count)
	}
	if err := n.Decode(&step); err != nil {
		return step, err
	}
	step.Line = n.Line
	if step.Batch != nil {
		for _, inner := range step.Batch.Steps {
			if inner.Batch != nil || inner.Expect != nil {
				return step, stderrors.New("batch steps cannot nest batch or expect")
			}
		}
	}
	return step, nil
}

func (s *Scenario) locate(e *errors.Error, line, col int) *errors.Error {
	if s.file != "" {
		if _, err := os.Stat(s.file); err == nil {
			return e.WithLocation(s.file, line, col)
		}
	}
	e.Location = &errors.Location{File: s.file, Line: line, Column: col}
	return e
}
