package kin

import (
	"context"
	"errors"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ezachrisen/kin/genealogy"
)

type idSet map[string]struct{}

func (s idSet) has(id string) bool {
	_, ok := s[id]
	return ok
}

// next returns the people one step away from p in the direction of a walk.
type next func(ctx context.Context, db Database, p *genealogy.Person) ([]*genealogy.Person, error)

// mainParents follows only the first parent family.
func mainParents(ctx context.Context, db Database, p *genealogy.Person) ([]*genealogy.Person, error) {
	id := p.MainParents()
	if id == "" {
		return nil, nil
	}
	f, err := db.Family(ctx, id)
	if err != nil {
		return nil, err
	}
	return people(ctx, db, f.FatherID, f.MotherID)
}

// allParents follows every parent family, including adoptive ones.
func allParents(ctx context.Context, db Database, p *genealogy.Person) ([]*genealogy.Person, error) {
	var out []*genealogy.Person
	for _, pf := range p.ParentFamilies {
		f, err := db.Family(ctx, pf.FamilyID)
		if err != nil {
			return nil, err
		}
		pp, err := people(ctx, db, f.FatherID, f.MotherID)
		if err != nil {
			return nil, err
		}
		out = append(out, pp...)
	}
	return out, nil
}

// children follows the children of every family p is a partner in.
func children(ctx context.Context, db Database, p *genealogy.Person) ([]*genealogy.Person, error) {
	var out []*genealogy.Person
	for _, id := range p.FamilyIDs {
		f, err := db.Family(ctx, id)
		if err != nil {
			return nil, err
		}
		cc, err := people(ctx, db, f.ChildIDs...)
		if err != nil {
			return nil, err
		}
		out = append(out, cc...)
	}
	return out, nil
}

// spouses returns the partners of p in every family p is a partner in.
func spouses(ctx context.Context, db Database, p *genealogy.Person) ([]*genealogy.Person, error) {
	var out []*genealogy.Person
	for _, id := range p.FamilyIDs {
		f, err := db.Family(ctx, id)
		if err != nil {
			return nil, err
		}
		s, err := people(ctx, db, f.Spouse(p.ID))
		if err != nil {
			return nil, err
		}
		out = append(out, s...)
	}
	return out, nil
}

func people(ctx context.Context, db Database, ids ...string) ([]*genealogy.Person, error) {
	out := make([]*genealogy.Person, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		p, err := db.Person(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// walker is a depth-first traversal that visits each person once. With
// detectLoops set, reaching a person that is still on the current path is
// reported as a *LoopError; a person reached again through another branch
// is skipped.
type walker struct {
	db          Database
	next        next
	detectLoops bool
	// stop, if set, ends the walk as soon as it returns true for a visited person.
	stop func(p *genealogy.Person) bool

	done idSet
	path idSet
}

func newWalker(db Database, n next, detectLoops bool) *walker {
	return &walker{
		db:          db,
		next:        n,
		detectLoops: detectLoops,
		done:        idSet{},
		path:        idSet{},
	}
}

// walk visits root and everything reachable from it. It returns true if
// the walk was ended by stop.
func (w *walker) walk(ctx context.Context, root *genealogy.Person) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	w.done[root.ID] = struct{}{}
	if w.stop != nil && w.stop(root) {
		return true, nil
	}

	w.path[root.ID] = struct{}{}
	defer delete(w.path, root.ID)

	nn, err := w.next(ctx, w.db, root)
	if err != nil {
		return false, err
	}
	for _, n := range nn {
		if w.detectLoops && w.path.has(n.ID) {
			return false, &LoopError{
				Person1Name: root.DisplayName(),
				Person1ID:   root.ID,
				Person2Name: n.DisplayName(),
				Person2ID:   n.ID,
			}
		}
		if w.done.has(n.ID) {
			continue
		}
		found, err := w.walk(ctx, n)
		if err != nil || found {
			return found, err
		}
	}
	return false, nil
}

// collect returns the ids of root and everyone reachable from it.
func collect(ctx context.Context, db Database, root *genealogy.Person, n next, detectLoops bool) (idSet, error) {
	w := newWalker(db, n, detectLoops)
	if _, err := w.walk(ctx, root); err != nil {
		return nil, err
	}
	return w.done, nil
}

// lazySet computes a set on first use and hands out the same set, or the
// same error, afterwards. A build interrupted by context cancellation is
// not remembered.
type lazySet struct {
	mu   sync.Mutex
	done bool
	set  idSet
	err  error
}

func (l *lazySet) get(build func() (idSet, error)) (idSet, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.done {
		return l.set, l.err
	}
	set, err := build()
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil, err
	}
	l.set, l.err, l.done = set, err, true
	return set, err
}

// AncestorCache shares ancestor sets between rules. Entries are keyed by
// person id and evicted least recently used first. A cache must be purged
// when the tree it was filled from changes.
type AncestorCache struct {
	c *lru.Cache[string, idSet]
}

// NewAncestorCache returns a cache holding at most size ancestor sets.
func NewAncestorCache(size int) (*AncestorCache, error) {
	c, err := lru.New[string, idSet](size)
	if err != nil {
		return nil, err
	}
	return &AncestorCache{c: c}, nil
}

// ancestors returns the set of root and all of its ancestors through every
// parent family, consulting the cache first.
func (a *AncestorCache) ancestors(ctx context.Context, db Database, root *genealogy.Person) (idSet, error) {
	if a != nil {
		if s, ok := a.c.Get(root.ID); ok {
			return s, nil
		}
	}
	s, err := collect(ctx, db, root, allParents, false)
	if err != nil {
		return nil, err
	}
	if a != nil {
		a.c.Add(root.ID, s)
	}
	return s, nil
}

// Len returns the number of cached sets.
func (a *AncestorCache) Len() int {
	return a.c.Len()
}

// Purge removes every cached set.
func (a *AncestorCache) Purge() {
	a.c.Purge()
}
