package kin_test

import (
	"context"
	"testing"

	"github.com/ezachrisen/kin"
	"github.com/ezachrisen/kin/genealogy"
)

func person(id, given, surname string, g genealogy.Gender, born, place string) *genealogy.Person {
	p := &genealogy.Person{
		ID:          id,
		Gender:      g,
		PrimaryName: genealogy.NewName(given, surname),
	}
	if born != "" {
		e := genealogy.Event{Type: genealogy.EventBirth, Date: genealogy.ParseDate(born), Place: place}
		p.Events = append(p.Events, e)
		p.Birth = &p.Events[len(p.Events)-1]
	}
	return p
}

func died(p *genealogy.Person, date, place string) *genealogy.Person {
	e := genealogy.Event{Type: genealogy.EventDeath, Date: genealogy.ParseDate(date), Place: place}
	p.Death = &e
	p.Events = append(p.Events, e)
	return p
}

// makeTree builds this tree:
//
//	I1 John Smith + I2 Mary Brown (F1, married 1825)
//	├── I3 William Smith + I4 Sarah Jones (F2)
//	│   └── I6 Alice Smith
//	└── I5 Eliza Smith + I7 Peter Green (F3, unmarried)
//
//	I8 Tom Gray has no family.
func makeTree(t *testing.T) *genealogy.MemDB {
	t.Helper()
	db := genealogy.NewMemDB()

	i5 := person("I5", "Eliza", "Smith", genealogy.Female, "1834", "Boston, MA")
	i5.AlternateNames = []genealogy.Name{{
		FirstName: "Eliza",
		Surnames:  []genealogy.Surname{{Surname: "Green", Primary: true}},
		Type:      genealogy.NameType{Value: genealogy.NameMarried},
	}}
	i6 := died(person("I6", "Alice", "Smith", genealogy.Female, "1860-06", "Boston, MA"), "1930", "Salem, MA")
	i6.Attributes = []genealogy.Attribute{{Type: "Occupation", Value: "School teacher"}}

	people := []*genealogy.Person{
		died(person("I1", "John", "Smith", genealogy.Male, "1800", "Leeds, England"), "1870", "Boston, MA"),
		person("I2", "Mary", "Brown", genealogy.Female, "1805", "York, England"),
		person("I3", "William", "Smith", genealogy.Male, "1830-04-02", "Boston, MA"),
		person("I4", "Sarah", "Jones", genealogy.Female, "1832", "Salem, MA"),
		i5,
		i6,
		person("I7", "Peter", "Green", genealogy.Male, "abt 1830", "Dublin"),
		person("I8", "Tom", "Gray", genealogy.Male, "", ""),
	}
	for _, p := range people {
		if err := db.AddPerson(p); err != nil {
			t.Fatal(err)
		}
	}

	families := []*genealogy.Family{
		{
			ID: "F1", FatherID: "I1", MotherID: "I2", ChildIDs: []string{"I3", "I5"},
			Relationship: genealogy.RelMarried,
			Events:       []genealogy.Event{{Type: genealogy.EventMarriage, Date: genealogy.ParseDate("1825-05-01"), Place: "Leeds"}},
		},
		{
			ID: "F2", FatherID: "I3", MotherID: "I4", ChildIDs: []string{"I6"},
			Relationship: genealogy.RelMarried,
			Attributes:   []genealogy.Attribute{{Type: "Witness", Value: "Mary Brown"}},
		},
		{ID: "F3", FatherID: "I7", MotherID: "I5", Relationship: genealogy.RelUnmarried},
	}
	for _, f := range families {
		if err := db.AddFamily(f); err != nil {
			t.Fatal(err)
		}
	}
	if err := db.LinkAll(); err != nil {
		t.Fatal(err)
	}
	return db
}

// makeLoop builds a tree where A is the father of B and B is the father of A.
func makeLoop(t *testing.T) *genealogy.MemDB {
	t.Helper()
	db := genealogy.NewMemDB()
	for _, p := range []*genealogy.Person{
		person("A", "Adam", "Loop", genealogy.Male, "", ""),
		person("B", "Ben", "Loop", genealogy.Male, "", ""),
	} {
		if err := db.AddPerson(p); err != nil {
			t.Fatal(err)
		}
	}
	for _, f := range []*genealogy.Family{
		{ID: "FA", FatherID: "A", ChildIDs: []string{"B"}},
		{ID: "FB", FatherID: "B", ChildIDs: []string{"A"}},
	} {
		if err := db.AddFamily(f); err != nil {
			t.Fatal(err)
		}
	}
	if err := db.LinkAll(); err != nil {
		t.Fatal(err)
	}
	return db
}

// makeCollapse builds a tree where E's parents are cousins, so E reaches
// the grandparents G1 and G2 through both parents.
func makeCollapse(t *testing.T) *genealogy.MemDB {
	t.Helper()
	db := genealogy.NewMemDB()
	for _, id := range []string{"G1", "G2", "C1", "C2", "X", "Y", "D1", "D2", "E"} {
		if err := db.AddPerson(person(id, id, "Collapse", genealogy.Unknown, "", "")); err != nil {
			t.Fatal(err)
		}
	}
	for _, f := range []*genealogy.Family{
		{ID: "FG", FatherID: "G1", MotherID: "G2", ChildIDs: []string{"C1", "C2"}},
		{ID: "FC1", FatherID: "C1", MotherID: "X", ChildIDs: []string{"D1"}},
		{ID: "FC2", FatherID: "Y", MotherID: "C2", ChildIDs: []string{"D2"}},
		{ID: "FD", FatherID: "D1", MotherID: "D2", ChildIDs: []string{"E"}},
	} {
		if err := db.AddFamily(f); err != nil {
			t.Fatal(err)
		}
	}
	if err := db.LinkAll(); err != nil {
		t.Fatal(err)
	}
	return db
}

// matching applies the filter to everyone in the database and returns the
// ids of the people who passed.
func matching(t *testing.T, e *kin.Engine, db *genealogy.MemDB, f *kin.Filter, opts ...kin.ApplyOption) []string {
	t.Helper()
	ctx := context.Background()
	if err := e.Compile(f); err != nil {
		t.Fatalf("compiling %s: %v", f.Name, err)
	}
	res, err := e.Apply(ctx, db, f, db.People(ctx), opts...)
	if err != nil {
		t.Fatalf("applying %s: %v", f.Name, err)
	}
	ids := []string{}
	for _, p := range res.Matched {
		ids = append(ids, p.ID)
	}
	return ids
}
