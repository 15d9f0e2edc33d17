// Package treefile reads and writes a genealogy tree as YAML.
//
// A tree file lists people and families:
//
//	people:
//	  - id: I1
//	    gender: male
//	    name:
//	      given: John
//	      surnames: [{surname: Smith, primary: true}]
//	    events:
//	      - {type: Birth, date: "1800", place: "Leeds, England"}
//	families:
//	  - id: F1
//	    father: I1
//	    mother: I2
//	    children: [I3]
//
// The birth and death of a person are taken from the first Birth and
// Death events unless given explicitly.
package treefile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/ezachrisen/kin/genealogy"
)

type document struct {
	People   []*genealogy.Person `yaml:"people"`
	Families []*genealogy.Family `yaml:"families,omitempty"`
}

// Decode reads a tree file and returns the linked database.
func Decode(r io.Reader) (*genealogy.MemDB, error) {
	var doc document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decoding tree: %w", err)
	}

	db := genealogy.NewMemDB()
	for _, p := range doc.People {
		if p == nil {
			continue
		}
		normalize(p)
		if err := db.AddPerson(p); err != nil {
			return nil, err
		}
	}
	for _, f := range doc.Families {
		if f == nil {
			continue
		}
		if err := db.AddFamily(f); err != nil {
			return nil, err
		}
	}
	if err := db.LinkAll(); err != nil {
		return nil, err
	}
	return db, nil
}

// Load reads the tree file at path.
func Load(path string) (*genealogy.MemDB, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	db, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return db, nil
}

// Encode writes every person and family in db as a tree file.
func Encode(w io.Writer, db *genealogy.MemDB) error {
	ctx := context.Background()
	doc := document{
		People:   db.People(ctx),
		Families: db.Families(ctx),
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding tree: %w", err)
	}
	return enc.Close()
}

// Save writes db to the tree file at path.
func Save(path string, db *genealogy.MemDB) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(f, db); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// normalize fills in defaults the file may leave out and points Birth
// and Death into Events.
func normalize(p *genealogy.Person) {
	for _, n := range p.Names() {
		if n.Type == (genealogy.NameType{}) {
			n.Type = genealogy.NameType{Value: genealogy.NameBirth}
		}
	}
	birth := vitalIndex(p, p.Birth, genealogy.EventBirth)
	death := vitalIndex(p, p.Death, genealogy.EventDeath)
	p.Birth, p.Death = nil, nil
	if birth >= 0 {
		p.Birth = &p.Events[birth]
	}
	if death >= 0 {
		p.Death = &p.Events[death]
	}
}

// vitalIndex returns the index in p.Events of the explicit event e,
// appending it if needed, or of the first event of type typ.
func vitalIndex(p *genealogy.Person, e *genealogy.Event, typ string) int {
	if e != nil {
		if i := slices.Index(p.Events, *e); i >= 0 {
			return i
		}
		p.Events = append(p.Events, *e)
		return len(p.Events) - 1
	}
	return slices.IndexFunc(p.Events, func(ev genealogy.Event) bool { return ev.Type == typ })
}
