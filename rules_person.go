package kin

import (
	"context"
	"fmt"
	"strconv"

	"github.com/ezachrisen/kin/genealogy"
)

type everyone struct{ base }

func (r *everyone) Apply(context.Context, Database, *genealogy.Person) (bool, error) {
	return true, nil
}

type hasID struct{ base }

func (r *hasID) Apply(_ context.Context, _ Database, p *genealogy.Person) (bool, error) {
	return p.ID == r.arg(0), nil
}

type hasGender struct {
	base
	gender genealogy.Gender
}

func (r *hasGender) Apply(_ context.Context, _ Database, p *genealogy.Person) (bool, error) {
	return p.Gender == r.gender, nil
}

// hasName matches when any one of the person's names contains every
// non-empty argument in the corresponding field.
type hasName struct {
	base
	given, family, suffix, title string
}

func newHasName(b base) Rule {
	return &hasName{
		base:   b,
		given:  b.values[0],
		family: b.values[1],
		suffix: b.values[2],
		title:  b.values[3],
	}
}

func (r *hasName) Apply(_ context.Context, _ Database, p *genealogy.Person) (bool, error) {
	for _, n := range p.Names() {
		if r.given != "" && !containsFold(n.FirstName, r.given) {
			continue
		}
		if r.family != "" && !containsFold(n.Surname(), r.family) {
			continue
		}
		if r.suffix != "" && !containsFold(n.Suffix, r.suffix) {
			continue
		}
		if r.title != "" && !containsFold(n.Title, r.title) {
			continue
		}
		return true, nil
	}
	return false, nil
}

func attributeMatches(a genealogy.Attribute, typ, value string) bool {
	if typ != "" && a.Type != typ {
		return false
	}
	if value != "" && !containsFold(a.Value, value) {
		return false
	}
	return true
}

// hasAttribute matches when any personal attribute has the given type and
// contains the given value. With no arguments every person matches.
type hasAttribute struct{ base }

func (r *hasAttribute) Apply(_ context.Context, _ Database, p *genealogy.Person) (bool, error) {
	typ, value := r.arg(0), r.arg(1)
	if typ == "" && value == "" {
		return true, nil
	}
	for _, a := range p.Attributes {
		if attributeMatches(a, typ, value) {
			return true, nil
		}
	}
	return false, nil
}

type hasFamilyAttribute struct{ base }

func (r *hasFamilyAttribute) Apply(ctx context.Context, db Database, p *genealogy.Person) (bool, error) {
	typ, value := r.arg(0), r.arg(1)
	for _, id := range p.FamilyIDs {
		f, err := db.Family(ctx, id)
		if err != nil {
			return false, err
		}
		for _, a := range f.Attributes {
			if attributeMatches(a, typ, value) {
				return true, nil
			}
		}
	}
	return false, nil
}

// hasRelationships checks the number of families the person is a partner
// in, the relationship type of any of them and the total number of
// children. Counts that are not integers never match.
type hasRelationships struct{ base }

func (r *hasRelationships) Apply(ctx context.Context, db Database, p *genealogy.Person) (bool, error) {
	numRel, relType, numChildren := r.arg(0), r.arg(1), r.arg(2)

	children := 0
	typeFound := false
	for _, id := range p.FamilyIDs {
		f, err := db.Family(ctx, id)
		if err != nil {
			return false, fmt.Errorf("%s: %w", r.name, err)
		}
		children += len(f.ChildIDs)
		if relType != "" && f.Relationship == relType {
			typeFound = true
		}
	}

	if numRel != "" {
		n, err := strconv.Atoi(numRel)
		if err != nil || n != len(p.FamilyIDs) {
			return false, nil
		}
	}
	if numChildren != "" {
		n, err := strconv.Atoi(numChildren)
		if err != nil || n != children {
			return false, nil
		}
	}
	if relType != "" {
		return typeFound, nil
	}
	return true, nil
}
