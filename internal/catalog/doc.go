// Package catalog turns the groups section of a configuration into live
// groups, selects and rule sets, bound together in one form.
//
// Groups are not safe for concurrent use, so each Entry carries a mutex and
// all access from HTTP handlers goes through Entry.Do.
package catalog
