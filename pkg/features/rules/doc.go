// Package rules provides validators for choice groups.
//
// A Set bundles rules and implements choice.Validator, so it can be handed to
// choice.WithValidator or Group.SetValidator. Every rule sees the settled
// model value of the group; the helpers in this package read it as the list
// of selected values, which is empty for an unchecked single-select group.
//
// Built-in rules:
//
//	rules.Required()
//	rules.MinSelected(2)
//	rules.MaxSelected(3)
//	rules.OneOf("red", "green")
//
// Expression rules are compiled once and evaluated against the variables
// value, selected and count:
//
//	r, err := rules.Expr("NoMonday", `!("monday" in selected)`)
//	r, err := rules.CEL("AtMostTwo", `count <= 2`)
//	r, err := rules.JS("Short", `selected.every(function(s) { return s.length < 8 })`)
package rules
