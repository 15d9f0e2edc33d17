package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ezachrisen/kin/genealogy"
)

// LoadTree reads the stored tree into a new in-memory database. Links
// between people and families are restored as saved.
func (s *Store) LoadTree(ctx context.Context) (*genealogy.MemDB, error) {
	l := loader{db: s.db, people: map[string]*genealogy.Person{}, families: map[string]*genealogy.Family{}}
	steps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"people", l.loadPeople},
		{"names", l.loadNames},
		{"events", l.loadEvents},
		{"attributes", l.loadAttributes},
		{"addresses", l.loadAddresses},
		{"links", l.loadLinks},
		{"families", l.loadFamilies},
		{"family members", l.loadFamilyMembers},
	}
	for _, step := range steps {
		if err := step.fn(ctx); err != nil {
			return nil, fmt.Errorf("loading %s: %w", step.name, err)
		}
	}

	db := genealogy.NewMemDB()
	for _, id := range l.personOrder {
		p := l.people[id]
		if i := l.vitals[id][0]; i >= 0 && i < len(p.Events) {
			p.Birth = &p.Events[i]
		}
		if i := l.vitals[id][1]; i >= 0 && i < len(p.Events) {
			p.Death = &p.Events[i]
		}
		if err := db.AddPerson(p); err != nil {
			return nil, err
		}
	}
	for _, id := range l.familyOrder {
		if err := db.AddFamily(l.families[id]); err != nil {
			return nil, err
		}
	}
	return db, nil
}

type loader struct {
	db          *sql.DB
	people      map[string]*genealogy.Person
	personOrder []string
	vitals      map[string][2]int
	families    map[string]*genealogy.Family
	familyOrder []string
}

// each runs query and calls scan for every row.
func (l *loader) each(ctx context.Context, query string, scan func(*sql.Rows) error) error {
	rows, err := l.db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (l *loader) person(id string) (*genealogy.Person, error) {
	p, ok := l.people[id]
	if !ok {
		return nil, fmt.Errorf("person %s: %w", id, genealogy.ErrNotFound)
	}
	return p, nil
}

func (l *loader) family(id string) (*genealogy.Family, error) {
	f, ok := l.families[id]
	if !ok {
		return nil, fmt.Errorf("family %s: %w", id, genealogy.ErrNotFound)
	}
	return f, nil
}

func (l *loader) loadPeople(ctx context.Context) error {
	l.vitals = map[string][2]int{}
	return l.each(ctx, `SELECT id, handle, gender, birth_index, death_index FROM people ORDER BY id`, func(rows *sql.Rows) error {
		var (
			p            genealogy.Person
			gender       string
			birth, death int
		)
		if err := rows.Scan(&p.ID, &p.Handle, &gender, &birth, &death); err != nil {
			return err
		}
		g, err := genealogy.ParseGender(gender)
		if err != nil {
			return err
		}
		p.Gender = g
		l.people[p.ID] = &p
		l.personOrder = append(l.personOrder, p.ID)
		l.vitals[p.ID] = [2]int{birth, death}
		return nil
	})
}

func (l *loader) loadNames(ctx context.Context) error {
	surnames := map[int64][]genealogy.Surname{}
	err := l.each(ctx, `SELECT name_id, surname, prefix, connector, origin, is_primary FROM surnames ORDER BY name_id, position`, func(rows *sql.Rows) error {
		var (
			nameID int64
			s      genealogy.Surname
		)
		if err := rows.Scan(&nameID, &s.Surname, &s.Prefix, &s.Connector, &s.Origin, &s.Primary); err != nil {
			return err
		}
		surnames[nameID] = append(surnames[nameID], s)
		return nil
	})
	if err != nil {
		return err
	}

	return l.each(ctx, `SELECT id, person_id, position, private, first_name, suffix, title, type_value, type_custom,
	                           group_as, sort_as, display_as, call, nick, family_nick, date, notes, citations
	                    FROM names ORDER BY person_id, position`, func(rows *sql.Rows) error {
		var (
			nameID                 int64
			personID               string
			pos, sortAs, displayAs int
			date, notes, citations string
			n                      genealogy.Name
		)
		if err := rows.Scan(&nameID, &personID, &pos, &n.Private, &n.FirstName, &n.Suffix, &n.Title,
			&n.Type.Value, &n.Type.Custom, &n.GroupAs, &sortAs, &displayAs, &n.Call, &n.Nick, &n.FamilyNick,
			&date, &notes, &citations); err != nil {
			return err
		}
		p, err := l.person(personID)
		if err != nil {
			return err
		}
		n.SortAs = genealogy.NameFormat(sortAs)
		n.DisplayAs = genealogy.NameFormat(displayAs)
		n.Date = genealogy.ParseDate(date)
		n.Surnames = surnames[nameID]
		if n.Notes, err = decodeHandles(notes); err != nil {
			return err
		}
		if n.Citations, err = decodeHandles(citations); err != nil {
			return err
		}
		if pos == 0 {
			p.PrimaryName = n
		} else {
			p.AlternateNames = append(p.AlternateNames, n)
		}
		return nil
	})
}

func scanEvent(rows *sql.Rows) (string, genealogy.Event, error) {
	var (
		owner, date string
		e           genealogy.Event
	)
	if err := rows.Scan(&owner, &e.Type, &date, &e.Place, &e.Description); err != nil {
		return "", e, err
	}
	e.Date = genealogy.ParseDate(date)
	return owner, e, nil
}

func scanAttribute(rows *sql.Rows) (string, genealogy.Attribute, error) {
	var (
		owner string
		a     genealogy.Attribute
	)
	err := rows.Scan(&owner, &a.Type, &a.Value)
	return owner, a, err
}

func (l *loader) loadEvents(ctx context.Context) error {
	return l.each(ctx, `SELECT person_id, type, date, place, description FROM events ORDER BY person_id, position`, func(rows *sql.Rows) error {
		id, e, err := scanEvent(rows)
		if err != nil {
			return err
		}
		p, err := l.person(id)
		if err != nil {
			return err
		}
		p.Events = append(p.Events, e)
		return nil
	})
}

func (l *loader) loadAttributes(ctx context.Context) error {
	return l.each(ctx, `SELECT person_id, type, value FROM attributes ORDER BY person_id, position`, func(rows *sql.Rows) error {
		id, a, err := scanAttribute(rows)
		if err != nil {
			return err
		}
		p, err := l.person(id)
		if err != nil {
			return err
		}
		p.Attributes = append(p.Attributes, a)
		return nil
	})
}

func (l *loader) loadAddresses(ctx context.Context) error {
	return l.each(ctx, `SELECT person_id, private, street, locality, city, county, state, country, postal, phone, date, notes, citations
	                    FROM addresses ORDER BY person_id, position`, func(rows *sql.Rows) error {
		var (
			id, date, notes, citations string
			a                          genealogy.Address
		)
		if err := rows.Scan(&id, &a.Private, &a.Street, &a.Locality, &a.City, &a.County, &a.State, &a.Country,
			&a.Postal, &a.Phone, &date, &notes, &citations); err != nil {
			return err
		}
		p, err := l.person(id)
		if err != nil {
			return err
		}
		a.Date = genealogy.ParseDate(date)
		if a.Notes, err = decodeHandles(notes); err != nil {
			return err
		}
		if a.Citations, err = decodeHandles(citations); err != nil {
			return err
		}
		p.Addresses = append(p.Addresses, a)
		return nil
	})
}

func (l *loader) loadLinks(ctx context.Context) error {
	err := l.each(ctx, `SELECT person_id, family_id FROM person_families ORDER BY person_id, position`, func(rows *sql.Rows) error {
		var id, fid string
		if err := rows.Scan(&id, &fid); err != nil {
			return err
		}
		p, err := l.person(id)
		if err != nil {
			return err
		}
		p.FamilyIDs = append(p.FamilyIDs, fid)
		return nil
	})
	if err != nil {
		return err
	}
	return l.each(ctx, `SELECT person_id, family_id, mother_rel, father_rel FROM parent_families ORDER BY person_id, position`, func(rows *sql.Rows) error {
		var (
			id string
			pf genealogy.ParentFamily
		)
		if err := rows.Scan(&id, &pf.FamilyID, &pf.MotherRel, &pf.FatherRel); err != nil {
			return err
		}
		p, err := l.person(id)
		if err != nil {
			return err
		}
		p.ParentFamilies = append(p.ParentFamilies, pf)
		return nil
	})
}

func (l *loader) loadFamilies(ctx context.Context) error {
	return l.each(ctx, `SELECT id, handle, father_id, mother_id, relationship FROM families ORDER BY id`, func(rows *sql.Rows) error {
		var f genealogy.Family
		if err := rows.Scan(&f.ID, &f.Handle, &f.FatherID, &f.MotherID, &f.Relationship); err != nil {
			return err
		}
		l.families[f.ID] = &f
		l.familyOrder = append(l.familyOrder, f.ID)
		return nil
	})
}

func (l *loader) loadFamilyMembers(ctx context.Context) error {
	err := l.each(ctx, `SELECT family_id, child_id FROM family_children ORDER BY family_id, position`, func(rows *sql.Rows) error {
		var id, child string
		if err := rows.Scan(&id, &child); err != nil {
			return err
		}
		f, err := l.family(id)
		if err != nil {
			return err
		}
		f.ChildIDs = append(f.ChildIDs, child)
		return nil
	})
	if err != nil {
		return err
	}
	err = l.each(ctx, `SELECT family_id, type, date, place, description FROM family_events ORDER BY family_id, position`, func(rows *sql.Rows) error {
		id, e, err := scanEvent(rows)
		if err != nil {
			return err
		}
		f, err := l.family(id)
		if err != nil {
			return err
		}
		f.Events = append(f.Events, e)
		return nil
	})
	if err != nil {
		return err
	}
	return l.each(ctx, `SELECT family_id, type, value FROM family_attributes ORDER BY family_id, position`, func(rows *sql.Rows) error {
		id, a, err := scanAttribute(rows)
		if err != nil {
			return err
		}
		f, err := l.family(id)
		if err != nil {
			return err
		}
		f.Attributes = append(f.Attributes, a)
		return nil
	})
}
