package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ezachrisen/kin"
	"github.com/ezachrisen/kin/genealogy"
)

// ErrUnknownFilter is returned by Apply for a filter name the library does
// not hold.
var ErrUnknownFilter = errors.New("unknown filter")

// FilterService lists and applies the filters in a library.
type FilterService interface {
	List(context.Context, ListRequest) (*ListResponse, error)
	Apply(context.Context, ApplyRequest) (*ApplyResponse, error)
}

// ListRequest is the request for FilterService.List.
type ListRequest struct {
	// Namespace restricts the list to "system" or "custom" filters.
	Namespace string `json:"namespace,omitempty"`
}

// RuleSummary describes one rule of a filter.
type RuleSummary struct {
	Class  string   `json:"class"`
	Labels []string `json:"labels"`
	Args   []string `json:"args"`
}

// FilterSummary describes a filter.
type FilterSummary struct {
	Name      string        `json:"name"`
	Namespace string        `json:"namespace"`
	Comment   string        `json:"comment,omitempty"`
	Op        string        `json:"op"`
	Invert    bool          `json:"invert"`
	Rules     []RuleSummary `json:"rules"`
}

// ListResponse is the response of FilterService.List.
type ListResponse struct {
	Filters []FilterSummary `json:"filters"`
	Loaded  time.Time       `json:"loaded"`
	Error   string          `json:"error,omitempty"`
}

// ApplyRequest is the request for FilterService.Apply.
type ApplyRequest struct {
	Filter string `json:"filter"`

	// IDs restricts the candidates to these people. Default: everyone
	IDs []string `json:"ids,omitempty"`

	// Rejected asks for the people who did not pass as well.
	Rejected bool `json:"rejected,omitempty"`
}

// PersonSummary identifies a person in a response.
type PersonSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Birth string `json:"birth,omitempty"`
	Death string `json:"death,omitempty"`
}

// ApplyResponse is the response of FilterService.Apply.
type ApplyResponse struct {
	Filter    string          `json:"filter"`
	Tested    int             `json:"tested"`
	Matched   []PersonSummary `json:"matched"`
	Rejected  []PersonSummary `json:"rejected,omitempty"`
	ElapsedMS float64         `json:"elapsed_ms"`
	Error     string          `json:"error,omitempty"`
}

type filterService struct {
	lib      *Library
	db       *genealogy.MemDB
	parallel int
}

func (s *filterService) List(_ context.Context, req ListRequest) (*ListResponse, error) {
	system, custom := s.lib.Lists()
	resp := &ListResponse{
		Filters: []FilterSummary{},
		Loaded:  s.lib.Loaded(),
	}
	for _, ns := range []struct {
		name string
		list *kin.FilterList
	}{{"system", system}, {"custom", custom}} {
		if req.Namespace != "" && req.Namespace != ns.name {
			continue
		}
		for _, f := range ns.list.Filters() {
			resp.Filters = append(resp.Filters, summarizeFilter(ns.name, f))
		}
	}
	return resp, nil
}

func (s *filterService) Apply(ctx context.Context, req ApplyRequest) (*ApplyResponse, error) {
	f, e, ok := s.lib.Lookup(req.Filter)
	if !ok {
		return nil, fmt.Errorf("%q: %w", req.Filter, ErrUnknownFilter)
	}

	people := s.db.People(ctx)
	if len(req.IDs) > 0 {
		people = make([]*genealogy.Person, 0, len(req.IDs))
		for _, id := range req.IDs {
			p, err := s.db.Person(ctx, id)
			if err != nil {
				return nil, err
			}
			people = append(people, p)
		}
	}

	res, err := e.Apply(ctx, s.db, f, people,
		kin.Parallel(s.parallel), kin.ReturnNonMatching(req.Rejected))
	if err != nil {
		return nil, err
	}
	return &ApplyResponse{
		Filter:    f.Name,
		Tested:    res.Tested,
		Matched:   summarizePeople(res.Matched),
		Rejected:  summarizePeople(res.Rejected),
		ElapsedMS: float64(res.Elapsed.Microseconds()) / 1000,
	}, nil
}

func summarizeFilter(namespace string, f *kin.Filter) FilterSummary {
	fs := FilterSummary{
		Name:      f.Name,
		Namespace: namespace,
		Comment:   f.Comment,
		Op:        f.Op.String(),
		Invert:    f.Invert,
		Rules:     make([]RuleSummary, 0, len(f.Rules)),
	}
	for _, r := range f.Rules {
		fs.Rules = append(fs.Rules, RuleSummary{
			Class:  r.Name(),
			Labels: r.Labels(),
			Args:   r.Values(),
		})
	}
	return fs
}

func summarizePeople(people []*genealogy.Person) []PersonSummary {
	out := make([]PersonSummary, 0, len(people))
	for _, p := range people {
		ps := PersonSummary{ID: p.ID, Name: p.DisplayName()}
		if p.Birth != nil {
			ps.Birth = p.Birth.Date.String()
		}
		if p.Death != nil {
			ps.Death = p.Death.Date.String()
		}
		out = append(out, ps)
	}
	return out
}
