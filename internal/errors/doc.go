// Package errors provides coded, printable errors for the choicegroup CLI.
//
// Every error has a code (E100, E201, ...) registered with a category, a
// message and a longer explanation. Errors raised while reading YAML carry
// the file location, and Format prints the surrounding lines:
//
//	ERROR E202: Invalid configuration
//
//	  choicegroup.yaml:14:9
//
//	    13 │   - name: gender
//	  → 14 │     mode: dropdown
//	       │         ^
//
//	  Hint: mode must be one of multi, single, select
//
// Categories:
//   - registration: a group refused a member
//   - config: the configuration file is unreadable or inconsistent
//   - scenario: a scenario step failed or did not parse
//   - cli: bad flags or a failed command
package errors
