package treefile_test

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matryer/is"

	"github.com/ezachrisen/kin/genealogy"
	"github.com/ezachrisen/kin/internal/treefile"
)

func TestLoad(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()

	db, err := treefile.Load(filepath.Join("testdata", "smiths.yaml"))
	is.NoErr(err)
	is.Equal(db.Len(), 5)

	john, err := db.Person(ctx, "I1")
	is.NoErr(err)
	is.Equal(john.DisplayName(), "Smith, John")
	is.Equal(john.Gender, genealogy.Male)
	is.True(john.Birth == &john.Events[0])
	is.True(john.Death == &john.Events[1])
	is.Equal(john.FamilyIDs, []string{"F1"})

	william, _ := db.Person(ctx, "I3")
	is.Equal(len(william.Events), 1) // explicit birth joins the events
	is.Equal(william.Birth.Date.String(), "1830-04-02")
	is.Equal(william.MainParents(), "F1")
	is.Equal(william.PrimaryName.Type, genealogy.NameType{Value: genealogy.NameBirth})

	eliza, _ := db.Person(ctx, "I4")
	is.Equal(eliza.AlternateNames[0].Type.String(), "Married Name")
	is.Equal(eliza.Birth.Date.Modifier, genealogy.About)
	is.Equal(eliza.Addresses[0].City, "Boston")
	is.Equal(eliza.FamilyIDs, []string{"F2"})

	f, err := db.Family(ctx, "F1")
	is.NoErr(err)
	is.Equal(f.ChildIDs, []string{"I3", "I4"})
	is.Equal(f.Events[0].Date.String(), "1825-05-01")
}

func TestRoundTrip(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()

	want, err := treefile.Load(filepath.Join("testdata", "smiths.yaml"))
	is.NoErr(err)

	path := filepath.Join(t.TempDir(), "out.yaml")
	is.NoErr(treefile.Save(path, want))
	got, err := treefile.Load(path)
	is.NoErr(err)

	for _, wp := range want.People(ctx) {
		gp, err := got.Person(ctx, wp.ID)
		is.NoErr(err)
		is.Equal(gp.PrimaryName, wp.PrimaryName)
		is.Equal(gp.Events, wp.Events)
		is.Equal(gp.Birth, wp.Birth)
		is.Equal(gp.Death, wp.Death)
		is.Equal(gp.ParentFamilies, wp.ParentFamilies)
	}
	for _, wf := range want.Families(ctx) {
		gf, err := got.Family(ctx, wf.ID)
		is.NoErr(err)
		is.Equal(gf, wf)
	}
}

func TestDecodeErrors(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		want error
	}{
		{"duplicate person", "people: [{id: I1}, {id: I1}]", genealogy.ErrDuplicateID},
		{"missing child", "people: [{id: I1}]\nfamilies: [{id: F1, father: I1, children: [I2]}]", genealogy.ErrNotFound},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			is := is.New(t)
			_, err := treefile.Decode(strings.NewReader(c.doc))
			is.True(errors.Is(err, c.want))
		})
	}

	t.Run("unknown field", func(t *testing.T) {
		is := is.New(t)
		_, err := treefile.Decode(strings.NewReader("people: [{id: I1, colour: blue}]"))
		is.True(err != nil)
	})

	t.Run("bad gender", func(t *testing.T) {
		is := is.New(t)
		_, err := treefile.Decode(strings.NewReader("people: [{id: I1, gender: robot}]"))
		is.True(err != nil)
	})

	t.Run("empty", func(t *testing.T) {
		is := is.New(t)
		db, err := treefile.Decode(bytes.NewReader(nil))
		is.NoErr(err)
		is.Equal(db.Len(), 0)
	})
}
