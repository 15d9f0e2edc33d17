package genealogy_test

import (
	"context"
	"errors"
	"testing"

	"github.com/matryer/is"

	"github.com/ezachrisen/kin/genealogy"
)

func TestMemDB(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	db := genealogy.NewMemDB()

	john := &genealogy.Person{ID: "I2", Gender: genealogy.Male, PrimaryName: genealogy.NewName("John", "Smith")}
	mary := &genealogy.Person{ID: "I1", Gender: genealogy.Female, PrimaryName: genealogy.NewName("Mary", "Brown")}
	ann := &genealogy.Person{ID: "I3", Handle: "h-ann", PrimaryName: genealogy.NewName("Ann", "Smith")}
	for _, p := range []*genealogy.Person{john, mary, ann} {
		is.NoErr(db.AddPerson(p))
	}
	is.True(john.Handle != "")
	is.Equal(ann.Handle, "h-ann")
	is.Equal(db.Len(), 3)

	err := db.AddPerson(&genealogy.Person{ID: "I1"})
	is.True(errors.Is(err, genealogy.ErrDuplicateID))
	is.True(db.AddPerson(&genealogy.Person{}) != nil)

	f := &genealogy.Family{ID: "F1", FatherID: "I2", MotherID: "I1", ChildIDs: []string{"I3"}}
	is.NoErr(db.AddFamily(f))
	is.True(errors.Is(db.AddFamily(&genealogy.Family{ID: "F1"}), genealogy.ErrDuplicateID))
	is.NoErr(db.LinkAll())
	is.NoErr(db.LinkAll()) // links are not duplicated

	is.Equal(john.FamilyIDs, []string{"F1"})
	is.Equal(mary.FamilyIDs, []string{"F1"})
	is.Equal(ann.ParentFamilies, []genealogy.ParentFamily{{FamilyID: "F1", MotherRel: "Birth", FatherRel: "Birth"}})
	is.Equal(ann.MainParents(), "F1")
	is.Equal(john.MainParents(), "")
	is.Equal(f.Spouse("I2"), "I1")
	is.Equal(f.Spouse("I1"), "I2")
	is.Equal(f.Spouse("I3"), "")

	ids := []string{}
	for _, p := range db.People(ctx) {
		ids = append(ids, p.ID)
	}
	is.Equal(ids, []string{"I1", "I2", "I3"})

	p, err := db.Person(ctx, "I3")
	is.NoErr(err)
	is.Equal(p.String(), "Smith, Ann [I3]")

	_, err = db.Person(ctx, "I9")
	is.True(errors.Is(err, genealogy.ErrNotFound))
	_, err = db.Family(ctx, "F9")
	is.True(errors.Is(err, genealogy.ErrNotFound))
}

func TestLinkMissingMember(t *testing.T) {
	is := is.New(t)
	db := genealogy.NewMemDB()
	is.NoErr(db.AddPerson(&genealogy.Person{ID: "I1"}))
	is.NoErr(db.AddFamily(&genealogy.Family{ID: "F1", FatherID: "I1", ChildIDs: []string{"I7"}}))

	err := db.Link("F1")
	is.True(errors.Is(err, genealogy.ErrNotFound))
	is.True(errors.Is(db.Link("F2"), genealogy.ErrNotFound))
}

func TestPersonHelpers(t *testing.T) {
	is := is.New(t)
	p := &genealogy.Person{
		PrimaryName:    genealogy.NewName("Eliza", "Smith"),
		AlternateNames: []genealogy.Name{genealogy.NewName("Eliza", "Green")},
	}
	names := p.Names()
	is.Equal(len(names), 2)
	is.Equal(names[0].Surname(), "Smith")
	is.Equal(names[1].Surname(), "Green")

	// Names points into the person
	names[1].FirstName = "Liz"
	is.Equal(p.AlternateNames[0].FirstName, "Liz")

	e := genealogy.Event{Type: genealogy.EventBirth, Date: genealogy.ParseDate("abt 1834"), Place: "Boston"}
	is.Equal(e.String(), "Birth about 1834 Boston")
	is.Equal(genealogy.Event{Type: genealogy.EventDeath}.String(), "Death")
}

func TestGender(t *testing.T) {
	is := is.New(t)
	for in, want := range map[string]genealogy.Gender{
		"male": genealogy.Male, "M": genealogy.Male,
		"Female": genealogy.Female, "f": genealogy.Female,
		"": genealogy.Unknown, "unknown": genealogy.Unknown,
	} {
		g, err := genealogy.ParseGender(in)
		is.NoErr(err)
		is.Equal(g, want)
	}
	_, err := genealogy.ParseGender("other")
	is.True(err != nil)

	var g genealogy.Gender
	is.True(g.UnmarshalText([]byte("x")) != nil)
	is.NoErr(g.UnmarshalText([]byte("female")))
	is.Equal(g, genealogy.Female)
	b, err := g.MarshalText()
	is.NoErr(err)
	is.Equal(string(b), "female")
}
