package cel

import (
	celgo "github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"

	"github.com/ezachrisen/kin/genealogy"
)

// dateMatches declares date_matches(date, pattern), which applies the date
// matching of the event rules: pattern may be a year, a full or partial
// date, or a date prefixed with before/after.
//
//	date_matches(person.birth.date, "before 1900")
func dateMatches() celgo.EnvOption {
	return celgo.Function("date_matches",
		celgo.Overload("date_matches_string_string",
			[]*celgo.Type{celgo.StringType, celgo.StringType},
			celgo.BoolType,
			celgo.BinaryBinding(func(lhs, rhs ref.Val) ref.Val {
				date, ok := lhs.(types.String)
				if !ok {
					return types.MaybeNoSuchOverloadErr(lhs)
				}
				pattern, ok := rhs.(types.String)
				if !ok {
					return types.MaybeNoSuchOverloadErr(rhs)
				}
				d := genealogy.ParseDate(string(date))
				return types.Bool(genealogy.ParseDate(string(pattern)).Matches(d))
			})))
}
