package cel

import (
	"github.com/ezachrisen/kin/genealogy"
)

const personVar = "person"

// PersonData converts a person to the map bound to the "person" variable
// in expressions:
//
//	id, handle, gender, given, surname, name   string
//	names                list of {given, surname, suffix, title, type, call, nick}
//	events               list of {type, date, year, place, description}
//	birth, death         an event, absent if not recorded
//	attributes           map of attribute type to value
//	family_count         number of families the person is a partner in
//	parent_family_count  number of families the person is a child in
func PersonData(p *genealogy.Person) map[string]any {
	names := make([]any, 0, 1+len(p.AlternateNames))
	for _, n := range p.Names() {
		names = append(names, nameData(n))
	}

	events := make([]any, 0, len(p.Events))
	for i := range p.Events {
		events = append(events, eventData(&p.Events[i]))
	}

	attrs := make(map[string]any, len(p.Attributes))
	for _, a := range p.Attributes {
		attrs[a.Type] = a.Value
	}

	m := map[string]any{
		"id":                  p.ID,
		"handle":              p.Handle,
		"gender":              p.Gender.String(),
		"given":               p.PrimaryName.FirstName,
		"surname":             p.PrimaryName.Surname(),
		"name":                p.DisplayName(),
		"names":               names,
		"events":              events,
		"attributes":          attrs,
		"family_count":        int64(len(p.FamilyIDs)),
		"parent_family_count": int64(len(p.ParentFamilies)),
	}
	if p.Birth != nil {
		m["birth"] = eventData(p.Birth)
	}
	if p.Death != nil {
		m["death"] = eventData(p.Death)
	}
	return m
}

func nameData(n *genealogy.Name) map[string]any {
	return map[string]any{
		"given":   n.FirstName,
		"surname": n.Surname(),
		"suffix":  n.Suffix,
		"title":   n.Title,
		"type":    n.Type.String(),
		"call":    n.Call,
		"nick":    n.Nick,
	}
}

func eventData(e *genealogy.Event) map[string]any {
	return map[string]any{
		"type":        e.Type,
		"date":        e.Date.String(),
		"year":        int64(e.Date.Year),
		"place":       e.Place,
		"description": e.Description,
	}
}
