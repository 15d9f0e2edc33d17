package kin

import (
	"context"
	"fmt"
	"sync"

	"github.com/ezachrisen/kin/genealogy"
)

func (b *base) root(ctx context.Context, db Database) (*genealogy.Person, error) {
	p, err := db.Person(ctx, b.arg(0))
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", b.name, b.arg(0), err)
	}
	return p, nil
}

// isDescendantOf matches the root person and everyone descended from them
// through the children of any family.
type isDescendantOf struct {
	base
	set lazySet
}

func (r *isDescendantOf) Apply(ctx context.Context, db Database, p *genealogy.Person) (bool, error) {
	set, err := r.set.get(func() (idSet, error) {
		root, err := r.root(ctx, db)
		if err != nil {
			return nil, err
		}
		return collect(ctx, db, root, children, true)
	})
	if err != nil {
		return false, err
	}
	return set.has(p.ID), nil
}

// isAncestorOf matches the root person and everyone reached by following
// main parents upwards.
type isAncestorOf struct {
	base
	set lazySet
}

func (r *isAncestorOf) Apply(ctx context.Context, db Database, p *genealogy.Person) (bool, error) {
	set, err := r.set.get(func() (idSet, error) {
		root, err := r.root(ctx, db)
		if err != nil {
			return nil, err
		}
		return collect(ctx, db, root, mainParents, true)
	})
	if err != nil {
		return false, err
	}
	return set.has(p.ID), nil
}

// isDescendantFamilyOf matches the root person, their descendants, and the
// partners of their descendants. It searches upwards from the candidate,
// and from each of the candidate's partners, for the root.
type isDescendantFamilyOf struct {
	base
	rootSeen lazySet
}

func (r *isDescendantFamilyOf) Apply(ctx context.Context, db Database, p *genealogy.Person) (bool, error) {
	_, err := r.rootSeen.get(func() (idSet, error) {
		_, err := r.root(ctx, db)
		return nil, err
	})
	if err != nil {
		return false, err
	}
	found, err := r.search(ctx, db, p)
	if err != nil || found {
		return found, err
	}
	ss, err := spouses(ctx, db, p)
	if err != nil {
		return false, err
	}
	for _, s := range ss {
		found, err := r.search(ctx, db, s)
		if err != nil || found {
			return found, err
		}
	}
	return false, nil
}

func (r *isDescendantFamilyOf) search(ctx context.Context, db Database, from *genealogy.Person) (bool, error) {
	w := newWalker(db, allParents, true)
	id := r.arg(0)
	w.stop = func(a *genealogy.Person) bool { return a.ID == id }
	return w.walk(ctx, from)
}

// hasCommonAncestor matches people who share an ancestor with the root
// person. Being an ancestor of the root, or the root, counts. The
// root's ancestor set is built once; each candidate's verdict is kept.
type hasCommonAncestor struct {
	base
	cache *AncestorCache
	ref   lazySet

	mu       sync.RWMutex
	verdicts map[string]bool
}

func newHasCommonAncestor(b base) *hasCommonAncestor {
	return &hasCommonAncestor{base: b, verdicts: map[string]bool{}}
}

func (r *hasCommonAncestor) Apply(ctx context.Context, db Database, p *genealogy.Person) (bool, error) {
	r.mu.RLock()
	v, ok := r.verdicts[p.ID]
	r.mu.RUnlock()
	if ok {
		return v, nil
	}

	ref, err := r.ref.get(func() (idSet, error) {
		root, err := r.root(ctx, db)
		if err != nil {
			return nil, err
		}
		return r.cache.ancestors(ctx, db, root)
	})
	if err != nil {
		return false, err
	}

	w := newWalker(db, allParents, false)
	w.stop = func(a *genealogy.Person) bool { return ref.has(a.ID) }
	found, err := w.walk(ctx, p)
	if err != nil {
		return false, err
	}

	r.mu.Lock()
	r.verdicts[p.ID] = found
	r.mu.Unlock()
	return found, nil
}
