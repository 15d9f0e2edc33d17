package kin

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/ezachrisen/kin/genealogy"
)

// Op determines how the results of a filter's rules are combined.
type Op int

const (
	// And requires every rule to match. A filter with no rules matches everyone.
	And Op = iota
	// Or requires at least one rule to match. A filter with no rules matches no one.
	Or
	// Xor requires an odd number of rules to match.
	Xor
	// One requires exactly one rule to match.
	One
)

func (o Op) String() string {
	switch o {
	case Or:
		return "or"
	case Xor:
		return "xor"
	case One:
		return "one"
	default:
		return "and"
	}
}

// ParseOp converts the name of an operator to an Op. "0" and "1" are
// accepted for and and or. Anything unrecognized is And.
func ParseOp(s string) Op {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "or", "1":
		return Or
	case "xor":
		return Xor
	case "one":
		return One
	default:
		return And
	}
}

// MarshalText implements encoding.TextMarshaler.
func (o Op) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *Op) UnmarshalText(b []byte) error {
	*o = ParseOp(string(b))
	return nil
}

// A Filter combines rules with an operator to select people.
//
// A filter's rules keep working state between calls to Check (ancestor
// sets, memoized verdicts), so a filter must only be used with one
// database. Use Clone to get a fresh copy.
type Filter struct {
	Name    string
	Comment string
	Op      Op
	// Invert negates the combined result of the rules.
	Invert bool
	Rules  []Rule
}

// NewFilter returns a filter combining the rules with And.
func NewFilter(name string, rules ...Rule) *Filter {
	return &Filter{Name: name, Rules: rules}
}

// Add appends rules to the filter.
func (f *Filter) Add(rules ...Rule) {
	f.Rules = append(f.Rules, rules...)
}

// Check reports whether p passes the filter. The first error returned by
// a rule stops the check.
func (f *Filter) Check(ctx context.Context, db Database, p *genealogy.Person) (bool, error) {
	ctx, err := f.enter(ctx)
	if err != nil {
		return false, err
	}

	var pass bool
	switch f.Op {
	case Or:
		pass, err = f.checkOr(ctx, db, p)
	case Xor:
		pass, err = f.checkXor(ctx, db, p)
	case One:
		pass, err = f.checkOne(ctx, db, p)
	default:
		pass, err = f.checkAnd(ctx, db, p)
	}
	if err != nil {
		return false, err
	}
	return pass != f.Invert, nil
}

func (f *Filter) checkAnd(ctx context.Context, db Database, p *genealogy.Person) (bool, error) {
	for _, r := range f.Rules {
		ok, err := r.Apply(ctx, db, p)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func (f *Filter) checkOr(ctx context.Context, db Database, p *genealogy.Person) (bool, error) {
	for _, r := range f.Rules {
		ok, err := r.Apply(ctx, db, p)
		if err != nil || ok {
			return ok, err
		}
	}
	return false, nil
}

func (f *Filter) checkXor(ctx context.Context, db Database, p *genealogy.Person) (bool, error) {
	pass := false
	for _, r := range f.Rules {
		ok, err := r.Apply(ctx, db, p)
		if err != nil {
			return false, err
		}
		pass = pass != ok
	}
	return pass, nil
}

func (f *Filter) checkOne(ctx context.Context, db Database, p *genealogy.Person) (bool, error) {
	count := 0
	for _, r := range f.Rules {
		ok, err := r.Apply(ctx, db, p)
		if err != nil {
			return false, err
		}
		if ok {
			count++
			if count > 1 {
				return false, nil
			}
		}
	}
	return count == 1, nil
}

type chainKey struct{}

// enter records f in the chain of filters being checked. Filters that do
// not delegate to other filters cannot recurse and are not recorded.
func (f *Filter) enter(ctx context.Context) (context.Context, error) {
	if !f.delegates() {
		return ctx, nil
	}
	chain, _ := ctx.Value(chainKey{}).([]string)
	if slices.Contains(chain, f.Name) {
		return ctx, recursionError(chain, f.Name)
	}
	return context.WithValue(ctx, chainKey{}, append(slices.Clip(chain), f.Name)), nil
}

func (f *Filter) delegates() bool {
	for _, r := range f.Rules {
		if _, ok := r.(*matchesFilter); ok {
			return true
		}
	}
	return false
}

// Clone returns a copy of the filter with new rule instances. The copy
// carries no working state and must be compiled before use.
func (f *Filter) Clone() *Filter {
	c := &Filter{
		Name:    f.Name,
		Comment: f.Comment,
		Op:      f.Op,
		Invert:  f.Invert,
		Rules:   make([]Rule, 0, len(f.Rules)),
	}
	for _, r := range f.Rules {
		nr, err := NewRule(r.Name(), r.Values()...)
		if err != nil {
			// not a registered class; share it
			nr = r
		}
		c.Rules = append(c.Rules, nr)
	}
	return c
}

// String returns a table of the filter and its rules.
func (f *Filter) String() string {
	tw := table.NewWriter()
	tw.SetTitle("\nFILTER\n")
	tw.AppendHeader(table.Row{"\nFilter / Rule", "\nOp", "\nInvert", "\nArguments"})

	tw.AppendRow(table.Row{f.Name, f.Op.String(), yes(f.Invert), f.Comment})
	for _, r := range f.Rules {
		tw.AppendRow(table.Row{"  " + r.Name(), "", "", DisplayValues(r)})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, WidthMax: 50},
	})
	style := table.StyleLight
	style.Format.Header = text.FormatDefault
	tw.SetStyle(style)
	return tw.Render()
}

func yes(b bool) string {
	if b {
		return "yes"
	}
	return ""
}

const maxTreeDepth = 20

// Tree returns the filter as a tree of rules, expanding rules that match
// other filters when the filter has been compiled. Recursion stops at 20
// levels or when a filter refers back to one being expanded.
//
// Example output:
//
//	Adults in Boston
//	├── Has the birth [Date="before 1990"]
//	└── Matches the filter named [Filter name="Bostonians"]
//	    └── Bostonians (or)
//	        ├── Has the personal event [Place="Boston"]
//	        └── Has the personal attribute [Value="Boston"]
func (f *Filter) Tree() string {
	if f == nil {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(f.label())
	sb.WriteString("\n")
	f.buildTree(&sb, "", 0, []string{f.Name})
	return sb.String()
}

func (f *Filter) label() string {
	var mods []string
	if f.Op != And {
		mods = append(mods, f.Op.String())
	}
	if f.Invert {
		mods = append(mods, "inverted")
	}
	if len(mods) == 0 {
		return f.Name
	}
	return fmt.Sprintf("%s (%s)", f.Name, strings.Join(mods, ", "))
}

func ruleLabel(r Rule) string {
	if v := DisplayValues(r); v != "" {
		return fmt.Sprintf("%s [%s]", r.Name(), v)
	}
	return r.Name()
}

func (f *Filter) buildTree(sb *strings.Builder, prefix string, depth int, path []string) {
	if depth >= maxTreeDepth {
		return
	}
	for i, r := range f.Rules {
		connector, childPrefix := "├── ", "│   "
		if i == len(f.Rules)-1 {
			connector, childPrefix = "└── ", "    "
		}
		sb.WriteString(prefix)
		sb.WriteString(connector)
		sb.WriteString(ruleLabel(r))
		sb.WriteString("\n")

		mf, ok := r.(*matchesFilter)
		if !ok || mf.source == nil {
			continue
		}
		target, ok := mf.source.Lookup(mf.arg(0))
		if !ok {
			continue
		}
		sb.WriteString(prefix + childPrefix + "└── ")
		if slices.Contains(path, target.Name) {
			sb.WriteString(target.Name + " (recursive)\n")
			continue
		}
		sb.WriteString(target.label())
		sb.WriteString("\n")
		target.buildTree(sb, prefix+childPrefix+"    ", depth+1, append(slices.Clip(path), target.Name))
	}
}
