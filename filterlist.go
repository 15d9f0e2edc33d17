package kin

import "sync"

// FilterSource finds filters by name.
type FilterSource interface {
	Lookup(name string) (*Filter, bool)
}

// FilterList is an ordered collection of filters with unique names.
// It is safe for concurrent use.
type FilterList struct {
	Name string

	mu      sync.RWMutex
	filters []*Filter
}

// NewFilterList returns a list holding the filters.
func NewFilterList(name string, filters ...*Filter) *FilterList {
	l := &FilterList{Name: name}
	for _, f := range filters {
		l.Add(f)
	}
	return l
}

// Add appends f to the list, replacing a filter of the same name in place.
func (l *FilterList) Add(f *Filter) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, have := range l.filters {
		if have.Name == f.Name {
			l.filters[i] = f
			return
		}
	}
	l.filters = append(l.filters, f)
}

// Remove deletes the named filter. It reports whether the filter was present.
func (l *FilterList) Remove(name string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, f := range l.filters {
		if f.Name == name {
			l.filters = append(l.filters[:i], l.filters[i+1:]...)
			return true
		}
	}
	return false
}

// Lookup returns the named filter.
func (l *FilterList) Lookup(name string) (*Filter, bool) {
	if l == nil {
		return nil, false
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, f := range l.filters {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// Filters returns the filters in order.
func (l *FilterList) Filters() []*Filter {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*Filter, len(l.filters))
	copy(out, l.filters)
	return out
}

// Names returns the filter names in order.
func (l *FilterList) Names() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]string, len(l.filters))
	for i, f := range l.filters {
		out[i] = f.Name
	}
	return out
}

// Len returns the number of filters.
func (l *FilterList) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.filters)
}

type chain []FilterSource

func (c chain) Lookup(name string) (*Filter, bool) {
	for _, s := range c {
		if s == nil {
			continue
		}
		if f, ok := s.Lookup(name); ok {
			return f, true
		}
	}
	return nil, false
}

// Chain returns a source that looks filters up in each source in turn,
// typically the system filters followed by the user's custom filters.
func Chain(sources ...FilterSource) FilterSource {
	return chain(sources)
}
