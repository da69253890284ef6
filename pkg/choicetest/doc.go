// Package choicetest provides helpers for testing code built on choice groups.
//
// Recorder counts and keeps the notifications a group emits:
//
//	rec := choicetest.NewRecorder()
//	g := choice.NewRadioGroup("gender", choice.WithListener(rec))
//	...
//	if rec.Count() != 1 { t.Fatal("expected one notification") }
package choicetest
