// Package scenario replays scripted interactions against choice groups.
//
// A scenario file declares groups with the same schema as the groups
// section of choicegroup.yaml, then lists steps. Each step holds exactly
// one action:
//
//	name: radio reselection notifies once
//	groups:
//	  - name: gender
//	    mode: single
//	    options: [{value: male, checked: true}, {value: female}]
//	steps:
//	  - check: {group: gender, index: 1}
//	  - expect: {group: gender, value: female, notifications: 1}
//
// Actions: declare, register, registerBefore, deregister, check, uncheck,
// click, set, batch, open, close, dismiss, key, expect. Any step may add
// expectError with a substring the action's error must contain.
package scenario
