package genealogy

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a person or family id is not in the database.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateID is returned when adding a record whose id is already used.
	ErrDuplicateID = errors.New("duplicate id")
)

// MemDB is an in-memory tree of people and families keyed by id.
// It is safe for concurrent readers; writers must not run concurrently
// with rule evaluation.
type MemDB struct {
	mu       sync.RWMutex
	people   map[string]*Person
	families map[string]*Family
}

// NewMemDB returns an empty database.
func NewMemDB() *MemDB {
	return &MemDB{
		people:   map[string]*Person{},
		families: map[string]*Family{},
	}
}

// AddPerson stores p. A handle is generated if p has none.
func (db *MemDB) AddPerson(p *Person) error {
	if p == nil || p.ID == "" {
		return fmt.Errorf("adding person: missing id")
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	if _, ok := db.people[p.ID]; ok {
		return fmt.Errorf("adding person %s: %w", p.ID, ErrDuplicateID)
	}
	if p.Handle == "" {
		p.Handle = uuid.NewString()
	}
	db.people[p.ID] = p
	return nil
}

// AddFamily stores f. A handle is generated if f has none. Back-links on
// the family members are not updated until Link is called.
func (db *MemDB) AddFamily(f *Family) error {
	if f == nil || f.ID == "" {
		return fmt.Errorf("adding family: missing id")
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	if _, ok := db.families[f.ID]; ok {
		return fmt.Errorf("adding family %s: %w", f.ID, ErrDuplicateID)
	}
	if f.Handle == "" {
		f.Handle = uuid.NewString()
	}
	db.families[f.ID] = f
	return nil
}

// Person returns the person with the given id.
func (db *MemDB) Person(_ context.Context, id string) (*Person, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	p, ok := db.people[id]
	if !ok {
		return nil, fmt.Errorf("person %s: %w", id, ErrNotFound)
	}
	return p, nil
}

// Family returns the family with the given id.
func (db *MemDB) Family(_ context.Context, id string) (*Family, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	f, ok := db.families[id]
	if !ok {
		return nil, fmt.Errorf("family %s: %w", id, ErrNotFound)
	}
	return f, nil
}

// People returns every person sorted by id.
func (db *MemDB) People(_ context.Context) []*Person {
	db.mu.RLock()
	defer db.mu.RUnlock()
	out := make([]*Person, 0, len(db.people))
	for _, p := range db.people {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Families returns every family sorted by id.
func (db *MemDB) Families(_ context.Context) []*Family {
	db.mu.RLock()
	defer db.mu.RUnlock()
	out := make([]*Family, 0, len(db.families))
	for _, f := range db.families {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Link adds the back-links implied by the family record: the family is
// added to the FamilyIDs of both partners and to the ParentFamilies of
// every child. Existing links are kept. Members that are not in the
// database are an error.
func (db *MemDB) Link(familyID string) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	f, ok := db.families[familyID]
	if !ok {
		return fmt.Errorf("linking family %s: %w", familyID, ErrNotFound)
	}
	for _, id := range []string{f.FatherID, f.MotherID} {
		if id == "" {
			continue
		}
		p, ok := db.people[id]
		if !ok {
			return fmt.Errorf("linking family %s: partner %s: %w", familyID, id, ErrNotFound)
		}
		if !slices.Contains(p.FamilyIDs, familyID) {
			p.FamilyIDs = append(p.FamilyIDs, familyID)
		}
	}
	for _, id := range f.ChildIDs {
		c, ok := db.people[id]
		if !ok {
			return fmt.Errorf("linking family %s: child %s: %w", familyID, id, ErrNotFound)
		}
		if !slices.ContainsFunc(c.ParentFamilies, func(pf ParentFamily) bool { return pf.FamilyID == familyID }) {
			c.ParentFamilies = append(c.ParentFamilies, ParentFamily{
				FamilyID:  familyID,
				MotherRel: "Birth",
				FatherRel: "Birth",
			})
		}
	}
	return nil
}

// LinkAll calls Link for every family in id order.
func (db *MemDB) LinkAll() error {
	for _, f := range db.Families(context.Background()) {
		if err := db.Link(f.ID); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of people in the database.
func (db *MemDB) Len() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return len(db.people)
}
