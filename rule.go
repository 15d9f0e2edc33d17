package kin

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ezachrisen/kin/genealogy"
)

// A Rule is a test applied to one person at a time. Every rule belongs to
// a class, identified by Name, which fixes the number and meaning of its
// arguments: Labels describes each argument and Values holds the arguments
// the rule was created with. len(Values()) == len(Labels()) for every rule
// returned by NewRule.
//
// Rules that traverse the tree (ancestors, descendants) compute their
// working sets on first use and keep them for the life of the rule, so a
// rule should not be shared between databases. Use Filter.Clone to get
// fresh rules.
type Rule interface {
	// Name is the class name, e.g. "Is an ancestor of".
	Name() string

	// Labels describes each argument, in order.
	Labels() []string

	// Values are the arguments the rule was created with.
	Values() []string

	// Apply reports whether p satisfies the rule.
	Apply(ctx context.Context, db Database, p *genealogy.Person) (bool, error)
}

// Database is the read access rules need to follow links between people.
// *genealogy.MemDB implements it.
type Database interface {
	Person(ctx context.Context, id string) (*genealogy.Person, error)
	Family(ctx context.Context, id string) (*genealogy.Family, error)
}

// Rule class names.
const (
	RuleEveryone             = "Everyone"
	RuleHasID                = "Has the Id"
	RuleIsFemale             = "Is a female"
	RuleIsMale               = "Is a male"
	RuleHasName              = "Has a name"
	RuleHasEvent             = "Has the personal event"
	RuleHasFamilyEvent       = "Has the family event"
	RuleHasBirth             = "Has the birth"
	RuleHasDeath             = "Has the death"
	RuleHasAttribute         = "Has the personal attribute"
	RuleHasFamilyAttribute   = "Has the family attribute"
	RuleHasRelationships     = "Has the relationships"
	RuleIsDescendantOf       = "Is a descendant of"
	RuleIsDescendantFamilyOf = "Is a descendant family member of"
	RuleIsAncestorOf         = "Is an ancestor of"
	RuleHasCommonAncestor    = "Has a common ancestor with"
	RuleMatchesFilter        = "Matches the filter named"
	RuleMatchesExpression    = "Matches the expression"
)

var (
	noLabels    = []string{}
	idLabels    = []string{"ID:"}
	eventLabels = []string{"Event type:", "Date:", "Place:", "Description:"}
	vitalLabels = []string{"Date:", "Place:", "Description:"}
	attrLabels  = []string{"Attribute:", "Value:"}
)

type ruleClass struct {
	labels []string
	new    func(b base) Rule
}

var registry = map[string]ruleClass{
	RuleEveryone:             {noLabels, func(b base) Rule { return &everyone{b} }},
	RuleHasID:                {idLabels, func(b base) Rule { return &hasID{b} }},
	RuleIsFemale:             {noLabels, func(b base) Rule { return &hasGender{b, genealogy.Female} }},
	RuleIsMale:               {noLabels, func(b base) Rule { return &hasGender{b, genealogy.Male} }},
	RuleHasName:              {[]string{"Given name:", "Family name:", "Suffix:", "Title:"}, newHasName},
	RuleHasEvent:             {eventLabels, newHasEvent},
	RuleHasFamilyEvent:       {eventLabels, newHasFamilyEvent},
	RuleHasBirth:             {vitalLabels, newHasBirth},
	RuleHasDeath:             {vitalLabels, newHasDeath},
	RuleHasAttribute:         {attrLabels, func(b base) Rule { return &hasAttribute{b} }},
	RuleHasFamilyAttribute:   {attrLabels, func(b base) Rule { return &hasFamilyAttribute{b} }},
	RuleHasRelationships:     {[]string{"Number of relationships:", "Relationship type:", "Number of children:"}, func(b base) Rule { return &hasRelationships{b} }},
	RuleIsDescendantOf:       {idLabels, func(b base) Rule { return &isDescendantOf{base: b} }},
	RuleIsDescendantFamilyOf: {idLabels, func(b base) Rule { return &isDescendantFamilyOf{base: b} }},
	RuleIsAncestorOf:         {idLabels, func(b base) Rule { return &isAncestorOf{base: b} }},
	RuleHasCommonAncestor:    {idLabels, func(b base) Rule { return newHasCommonAncestor(b) }},
	RuleMatchesFilter:        {[]string{"Filter name:"}, func(b base) Rule { return &matchesFilter{base: b} }},
	RuleMatchesExpression:    {[]string{"Expression:"}, func(b base) Rule { return &matchesExpression{base: b} }},
}

// NewRule creates a rule of the named class with the given arguments.
func NewRule(name string, args ...string) (Rule, error) {
	c, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRule, name)
	}
	if len(args) != len(c.labels) {
		return nil, fmt.Errorf("%w: %q takes %d, got %d", ErrArgCount, name, len(c.labels), len(args))
	}
	vals := make([]string, len(args))
	copy(vals, args)
	return c.new(base{name: name, labels: c.labels, values: vals}), nil
}

// MustRule is like NewRule but panics on error. It is meant for rules
// built from constants.
func MustRule(name string, args ...string) Rule {
	r, err := NewRule(name, args...)
	if err != nil {
		panic(err)
	}
	return r
}

// RuleNames returns the registered rule class names in alphabetical order.
func RuleNames() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// RuleLabels returns the argument labels of a rule class.
func RuleLabels(name string) ([]string, bool) {
	c, ok := registry[name]
	if !ok {
		return nil, false
	}
	return c.labels, true
}

// DisplayValues renders the non-empty arguments of r as label="value"
// pairs separated by "; ".
func DisplayValues(r Rule) string {
	labels := r.Labels()
	var v []string
	for i, val := range r.Values() {
		if val == "" || i >= len(labels) {
			continue
		}
		v = append(v, fmt.Sprintf(`%s="%s"`, strings.TrimSuffix(labels[i], ":"), val))
	}
	return strings.Join(v, "; ")
}

// base holds the class name and arguments shared by every rule.
type base struct {
	name   string
	labels []string
	values []string
}

func (b *base) Name() string     { return b.name }
func (b *base) Labels() []string { return b.labels }
func (b *base) Values() []string { return b.values }

func (b *base) arg(i int) string { return b.values[i] }

// containsFold reports whether sub is a case-insensitive substring of s.
func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToUpper(s), strings.ToUpper(sub))
}
