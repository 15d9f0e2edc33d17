// Package kin selects people from a family tree with filters.
//
// A filter is a list of rules combined with an operator. Each rule is a
// test with a fixed list of string arguments, created by class name:
//
//	r, err := kin.NewRule("Is an ancestor of", "I0001")
//
// The operator decides how the rule results are combined:
//
//	and   every rule matches (a filter without rules matches everyone)
//	or    at least one rule matches
//	xor   an odd number of rules match
//	one   exactly one rule matches
//
// and Invert negates the combined result.
//
// Typical use is as follows:
//
//  1. Load a tree into a genealogy.MemDB (or any Database)
//  2. Build filters, or load them from a filter file
//  3. Create an engine, optionally with an Evaluator for expression rules
//  4. Use the engine to compile the filters
//  5. Use the engine to apply a filter to the people in the tree
//  6. Inspect the results
//
// # Rule State
//
// Rules that walk the tree compute their working sets (all descendants of
// a person, all ancestors) the first time they are applied and keep them.
// A compiled filter therefore belongs to one database; when the tree
// changes, build or Clone the filter again. Filters are safe to check from
// several goroutines at once.
//
// # Relationship Loops
//
// A tree can record a person as their own ancestor. Walking such a tree
// would never end, so the rules keep track of the path they are walking
// and stop with a *LoopError naming the two people involved. Reaching the
// same ancestor through two different lines (cousins marrying) is not a
// loop.
//
// # Filters That Use Filters
//
// The "Matches the filter named" rule checks another filter, looked up in
// the FilterSource given to the engine with WithFilters. Filters that
// refer to each other in a cycle fail with ErrFilterRecursion instead of
// recursing forever.
package kin
