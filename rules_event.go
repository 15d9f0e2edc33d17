package kin

import (
	"context"

	"github.com/ezachrisen/kin/genealogy"
)

// eventMatcher holds the parsed arguments of the event rules. Empty
// arguments match anything.
type eventMatcher struct {
	typ         string
	date        genealogy.Date
	place       string
	description string
}

func (m eventMatcher) empty() bool {
	return m.typ == "" && m.date.IsEmpty() && m.place == "" && m.description == ""
}

func (m eventMatcher) match(e *genealogy.Event) bool {
	if m.typ != "" && e.Type != m.typ {
		return false
	}
	if !m.date.Matches(e.Date) {
		return false
	}
	if m.place != "" && !containsFold(e.Place, m.place) {
		return false
	}
	if m.description != "" && !containsFold(e.Description, m.description) {
		return false
	}
	return true
}

type hasEvent struct {
	base
	m eventMatcher
}

func newHasEvent(b base) Rule {
	return &hasEvent{base: b, m: eventArgs(b.values)}
}

func eventArgs(v []string) eventMatcher {
	return eventMatcher{
		typ:         v[0],
		date:        genealogy.ParseDate(v[1]),
		place:       v[2],
		description: v[3],
	}
}

func (r *hasEvent) Apply(_ context.Context, _ Database, p *genealogy.Person) (bool, error) {
	for i := range p.Events {
		if r.m.match(&p.Events[i]) {
			return true, nil
		}
	}
	return false, nil
}

type hasFamilyEvent struct {
	base
	m eventMatcher
}

func newHasFamilyEvent(b base) Rule {
	return &hasFamilyEvent{base: b, m: eventArgs(b.values)}
}

func (r *hasFamilyEvent) Apply(ctx context.Context, db Database, p *genealogy.Person) (bool, error) {
	for _, id := range p.FamilyIDs {
		f, err := db.Family(ctx, id)
		if err != nil {
			return false, err
		}
		for i := range f.Events {
			if r.m.match(&f.Events[i]) {
				return true, nil
			}
		}
	}
	return false, nil
}

// hasVital matches the birth or death event of a person.
type hasVital struct {
	base
	m     eventMatcher
	event func(p *genealogy.Person) *genealogy.Event
}

func vitalArgs(v []string) eventMatcher {
	return eventMatcher{
		date:        genealogy.ParseDate(v[0]),
		place:       v[1],
		description: v[2],
	}
}

func newHasBirth(b base) Rule {
	return &hasVital{
		base:  b,
		m:     vitalArgs(b.values),
		event: func(p *genealogy.Person) *genealogy.Event { return p.Birth },
	}
}

func newHasDeath(b base) Rule {
	return &hasVital{
		base:  b,
		m:     vitalArgs(b.values),
		event: func(p *genealogy.Person) *genealogy.Event { return p.Death },
	}
}

func (r *hasVital) Apply(_ context.Context, _ Database, p *genealogy.Person) (bool, error) {
	e := r.event(p)
	if e == nil {
		return r.m.empty(), nil
	}
	return r.m.match(e), nil
}
