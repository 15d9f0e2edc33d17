// Package store keeps a genealogy tree in a SQLite database.
package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"slices"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"

	"github.com/ezachrisen/kin/genealogy"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Store is a SQLite database holding one tree.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens the SQLite database at path. Use ":memory:" for an in-memory
// database. The schema is not created until Migrate is called.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("%s?_foreign_keys=on&_journal_mode=WAL", path)
	if path == ":memory:" {
		dsn = ":memory:?_foreign_keys=on"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}
	if path == ":memory:" {
		// every connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite database: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns the path the store was opened with.
func (s *Store) Path() string {
	return s.path
}

// Migrate runs all pending schema migrations.
func (s *Store) Migrate() error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("setting dialect: %w", err)
	}
	if err := goose.Up(s.db, "migrations"); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// Version returns the current schema version.
func (s *Store) Version() (int64, error) {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return 0, fmt.Errorf("setting dialect: %w", err)
	}
	return goose.GetDBVersion(s.db)
}

// Counts returns the number of people and families stored.
func (s *Store) Counts(ctx context.Context) (people, families int, err error) {
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM people`).Scan(&people); err != nil {
		return 0, 0, fmt.Errorf("counting people: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM families`).Scan(&families); err != nil {
		return 0, 0, fmt.Errorf("counting families: %w", err)
	}
	return people, families, nil
}

var tables = []string{
	"surnames", "names", "events", "attributes", "addresses",
	"person_families", "parent_families", "family_children",
	"family_events", "family_attributes", "people", "families",
}

// SaveTree replaces the stored tree with the contents of db in a single
// transaction.
func (s *Store) SaveTree(ctx context.Context, db *genealogy.MemDB) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	for _, t := range tables {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+t); err != nil {
			return fmt.Errorf("clearing %s: %w", t, err)
		}
	}
	for _, p := range db.People(ctx) {
		if err := savePerson(ctx, tx, p); err != nil {
			return fmt.Errorf("saving person %s: %w", p.ID, err)
		}
	}
	for _, f := range db.Families(ctx) {
		if err := saveFamily(ctx, tx, f); err != nil {
			return fmt.Errorf("saving family %s: %w", f.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing tree: %w", err)
	}
	return nil
}

// eventIndex returns the position of e in events, appending it if it is
// not there.
func eventIndex(events []genealogy.Event, e *genealogy.Event) ([]genealogy.Event, int) {
	if e == nil {
		return events, -1
	}
	if i := slices.Index(events, *e); i >= 0 {
		return events, i
	}
	return append(events, *e), len(events)
}

func savePerson(ctx context.Context, tx *sql.Tx, p *genealogy.Person) error {
	events := slices.Clone(p.Events)
	events, birth := eventIndex(events, p.Birth)
	events, death := eventIndex(events, p.Death)

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO people (id, handle, gender, birth_index, death_index) VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.Handle, p.Gender.String(), birth, death); err != nil {
		return err
	}

	for pos, n := range p.Names() {
		if err := saveName(ctx, tx, p.ID, pos, n); err != nil {
			return err
		}
	}
	if err := saveEvents(ctx, tx, "events", "person_id", p.ID, events); err != nil {
		return err
	}
	if err := saveAttributes(ctx, tx, "attributes", "person_id", p.ID, p.Attributes); err != nil {
		return err
	}
	for pos, a := range p.Addresses {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO addresses (person_id, position, private, street, locality, city, county, state, country, postal, phone, date, notes, citations)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, pos, a.Private, a.Street, a.Locality, a.City, a.County, a.State, a.Country, a.Postal, a.Phone,
			a.Date.String(), encodeHandles(a.Notes), encodeHandles(a.Citations)); err != nil {
			return err
		}
	}
	for pos, id := range p.FamilyIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO person_families (person_id, position, family_id) VALUES (?, ?, ?)`,
			p.ID, pos, id); err != nil {
			return err
		}
	}
	for pos, pf := range p.ParentFamilies {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO parent_families (person_id, position, family_id, mother_rel, father_rel) VALUES (?, ?, ?, ?, ?)`,
			p.ID, pos, pf.FamilyID, pf.MotherRel, pf.FatherRel); err != nil {
			return err
		}
	}
	return nil
}

func saveName(ctx context.Context, tx *sql.Tx, personID string, pos int, n *genealogy.Name) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO names (person_id, position, private, first_name, suffix, title, type_value, type_custom,
		                    group_as, sort_as, display_as, call, nick, family_nick, date, notes, citations)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		personID, pos, n.Private, n.FirstName, n.Suffix, n.Title, n.Type.Value, n.Type.Custom,
		n.GroupAs, int(n.SortAs), int(n.DisplayAs), n.Call, n.Nick, n.FamilyNick, n.Date.String(),
		encodeHandles(n.Notes), encodeHandles(n.Citations))
	if err != nil {
		return err
	}
	nameID, err := res.LastInsertId()
	if err != nil {
		return err
	}
	for i, sn := range n.Surnames {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO surnames (name_id, position, surname, prefix, connector, origin, is_primary) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			nameID, i, sn.Surname, sn.Prefix, sn.Connector, sn.Origin, sn.Primary); err != nil {
			return err
		}
	}
	return nil
}

func saveFamily(ctx context.Context, tx *sql.Tx, f *genealogy.Family) error {
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO families (id, handle, father_id, mother_id, relationship) VALUES (?, ?, ?, ?, ?)`,
		f.ID, f.Handle, f.FatherID, f.MotherID, f.Relationship); err != nil {
		return err
	}
	for pos, id := range f.ChildIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO family_children (family_id, position, child_id) VALUES (?, ?, ?)`,
			f.ID, pos, id); err != nil {
			return err
		}
	}
	if err := saveEvents(ctx, tx, "family_events", "family_id", f.ID, f.Events); err != nil {
		return err
	}
	return saveAttributes(ctx, tx, "family_attributes", "family_id", f.ID, f.Attributes)
}

func saveEvents(ctx context.Context, tx *sql.Tx, table, owner, id string, events []genealogy.Event) error {
	q := fmt.Sprintf(`INSERT INTO %s (%s, position, type, date, place, description) VALUES (?, ?, ?, ?, ?, ?)`, table, owner)
	for pos, e := range events {
		if _, err := tx.ExecContext(ctx, q, id, pos, e.Type, e.Date.String(), e.Place, e.Description); err != nil {
			return err
		}
	}
	return nil
}

func saveAttributes(ctx context.Context, tx *sql.Tx, table, owner, id string, attrs []genealogy.Attribute) error {
	q := fmt.Sprintf(`INSERT INTO %s (%s, position, type, value) VALUES (?, ?, ?, ?)`, table, owner)
	for pos, a := range attrs {
		if _, err := tx.ExecContext(ctx, q, id, pos, a.Type, a.Value); err != nil {
			return err
		}
	}
	return nil
}

func encodeHandles(h []string) string {
	if len(h) == 0 {
		return "[]"
	}
	b, _ := json.Marshal(h)
	return string(b)
}

func decodeHandles(s string) ([]string, error) {
	var h []string
	if err := json.Unmarshal([]byte(s), &h); err != nil {
		return nil, err
	}
	if len(h) == 0 {
		return nil, nil
	}
	return h, nil
}
