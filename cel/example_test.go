package cel_test

import (
	"context"
	"fmt"

	"github.com/ezachrisen/kin"
	"github.com/ezachrisen/kin/cel"
	"github.com/ezachrisen/kin/genealogy"
)

func Example() {

	// Step 1: Load people into a database
	db := genealogy.NewMemDB()
	for _, p := range []*genealogy.Person{
		{ID: "I1", PrimaryName: genealogy.NewName("Ada", "Lovelace"), Gender: genealogy.Female,
			Birth: &genealogy.Event{Type: genealogy.EventBirth, Date: genealogy.ParseDate("1815-12-10")}},
		{ID: "I2", PrimaryName: genealogy.NewName("Charles", "Babbage"), Gender: genealogy.Male,
			Birth: &genealogy.Event{Type: genealogy.EventBirth, Date: genealogy.ParseDate("1791-12-26")}},
	} {
		if err := db.AddPerson(p); err != nil {
			fmt.Println(err)
			return
		}
	}

	// Step 2: Create a filter with an expression rule
	f := kin.NewFilter("born in the 1800s",
		kin.MustRule(kin.RuleMatchesExpression, `has(person.birth) && date_matches(person.birth.date, "after 1799")`))

	// Step 3: Create an engine and give it an evaluator
	// In this case, CEL
	engine := kin.NewEngine(cel.NewEvaluator())

	// Step 4: Compile the filter
	if err := engine.Compile(f); err != nil {
		fmt.Println(err)
		return
	}

	// Step 5: Apply the filter and check the results
	ctx := context.Background()
	res, err := engine.Apply(ctx, db, f, db.People(ctx))
	if err != nil {
		fmt.Println(err)
		return
	}
	for _, p := range res.Matched {
		fmt.Println(p.DisplayName())
	}
	// Output: Lovelace, Ada
}
