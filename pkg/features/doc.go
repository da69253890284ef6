// Package features groups the higher-level building blocks that sit on top
// of package choice.
//
// # Subsystems
//
//   - form: binds named groups together and submits their values to a Sink
//   - rules: validators for groups, including expr, CEL and JavaScript rules
//   - selectrich: a single-choice listbox with open state and keyboard model
//
// Each subsystem is in its own sub-package and can be imported independently:
//
//	import "github.com/vango-dev/choicegroup/pkg/features/form"
//	import "github.com/vango-dev/choicegroup/pkg/features/rules"
package features
