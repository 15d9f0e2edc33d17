// Package cel provides an implementation of the kin Evaluator interface backed by Google's cel-go
// expression engine, for use by "Matches the expression" rules.
//
// See https://github.com/google/cel-go and https://opensource.google/projects/cel for more information
// about CEL.
//
// The expressions you write must conform to the CEL spec: https://github.com/google/cel-spec,
// and must produce a boolean.
//
// # The Person Variable
//
// Expressions see a single variable, person, a map built from the person being checked. See
// PersonData for its fields. For example:
//
//	person.gender == "female" && person.surname.startsWith("Sm")
//	person.events.exists(e, e.type == "Occupation" && e.place.contains("Boston"))
//	has(person.death) && person.death.year - person.birth.year > 90
//
// Fields that are absent (birth and death when not recorded, or an attribute type the person
// does not have) cause an evaluation error when read; test for them with has() first.
//
// # Functions
//
// Besides the CEL standard library and the strings extension (lowerAscii, split, ...), the
// evaluator declares date_matches(date, pattern), which compares dates the same way the event
// rules do:
//
//	date_matches(person.birth.date, "after 1850")
package cel
