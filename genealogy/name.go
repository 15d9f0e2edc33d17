package genealogy

import (
	"fmt"
	"slices"
	"strings"
)

// NameType classifies a name (birth name, married name, ...).
type NameType struct {
	Value  int    `json:"value" yaml:"value"`
	Custom string `json:"custom,omitempty" yaml:"custom,omitempty"`
}

// Predefined name type values.
const (
	NameUnknown = -1
	NameCustom  = 0
	NameAKA     = 1
	NameBirth   = 2
	NameMarried = 3
)

var nameTypeStrings = map[int]string{
	NameUnknown: "Unknown",
	NameAKA:     "Also Known As",
	NameBirth:   "Birth Name",
	NameMarried: "Married Name",
}

func (t NameType) String() string {
	if t.Value == NameCustom {
		return t.Custom
	}
	if s, ok := nameTypeStrings[t.Value]; ok {
		return s
	}
	return nameTypeStrings[NameUnknown]
}

// ParseNameType maps a display string back to a NameType. Unrecognized
// strings become custom types.
func ParseNameType(s string) NameType {
	for v, name := range nameTypeStrings {
		if strings.EqualFold(name, s) {
			return NameType{Value: v}
		}
	}
	if s == "" {
		return NameType{Value: NameBirth}
	}
	return NameType{Value: NameCustom, Custom: s}
}

// NameFormat selects how a name is sorted or displayed.
type NameFormat int

const (
	DefaultFormat NameFormat = iota
	LastFirst
	FirstLast
	_ // patronymic first name, no longer used
	FirstOnly
	LastFirstPatronymic
)

// Surname is one component of a possibly compound family name.
type Surname struct {
	Surname   string `json:"surname,omitempty" yaml:"surname,omitempty"`
	Prefix    string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Connector string `json:"connector,omitempty" yaml:"connector,omitempty"`
	Origin    string `json:"origin,omitempty" yaml:"origin,omitempty"`
	Primary   bool   `json:"primary,omitempty" yaml:"primary,omitempty"`
}

// IsEmpty reports whether the surname carries no text.
func (s Surname) IsEmpty() bool {
	return s.Surname == "" && s.Prefix == "" && s.Connector == ""
}

// IsEquivalent compares two surnames. Surnames differing only in the
// primary flag are Equal.
func (s Surname) IsEquivalent(o Surname) Equivalence {
	if s.Surname != o.Surname || s.Prefix != o.Prefix || s.Connector != o.Connector || s.Origin != o.Origin {
		return Different
	}
	if s.Primary != o.Primary {
		return Equal
	}
	return Identical
}

// Name is one of the names a person was known by.
type Name struct {
	Privacy      `yaml:",inline"`
	CitationBase `yaml:",inline"`
	NoteBase     `yaml:",inline"`

	Date       Date       `json:"date,omitzero" yaml:"date,omitempty"`
	FirstName  string     `json:"first_name,omitempty" yaml:"given,omitempty"`
	Surnames   []Surname  `json:"surnames,omitempty" yaml:"surnames,omitempty"`
	Suffix     string     `json:"suffix,omitempty" yaml:"suffix,omitempty"`
	Title      string     `json:"title,omitempty" yaml:"title,omitempty"`
	Type       NameType   `json:"type" yaml:"type,omitempty"`
	GroupAs    string     `json:"group_as,omitempty" yaml:"group_as,omitempty"`
	SortAs     NameFormat `json:"sort_as,omitempty" yaml:"sort_as,omitempty"`
	DisplayAs  NameFormat `json:"display_as,omitempty" yaml:"display_as,omitempty"`
	Call       string     `json:"call,omitempty" yaml:"call,omitempty"`
	Nick       string     `json:"nick,omitempty" yaml:"nick,omitempty"`
	FamilyNick string     `json:"family_nick,omitempty" yaml:"family_nick,omitempty"`
}

// NewName returns a birth name with a single primary surname.
func NewName(first, surname string) Name {
	n := Name{
		FirstName: first,
		Type:      NameType{Value: NameBirth},
	}
	if surname != "" {
		n.Surnames = []Surname{{Surname: surname, Primary: true}}
	}
	return n
}

// IsEmpty reports whether the name has no text in any of its parts.
func (n *Name) IsEmpty() bool {
	if n.FirstName != "" || n.Suffix != "" || n.Title != "" || n.Nick != "" || n.FamilyNick != "" {
		return false
	}
	for _, s := range n.Surnames {
		if !s.IsEmpty() {
			return false
		}
	}
	return true
}

// TextData returns the textual attributes of the name:
// given name, suffix, title, type, call name, nick name, family nick name.
func (n *Name) TextData() []string {
	return []string{n.FirstName, n.Suffix, n.Title, n.Type.String(), n.Call, n.Nick, n.FamilyNick}
}

// PrimarySurname returns the surname flagged as primary, the first
// surname if none is flagged, or an empty surname.
func (n *Name) PrimarySurname() Surname {
	for _, s := range n.Surnames {
		if s.Primary {
			return s
		}
	}
	if len(n.Surnames) > 0 {
		return n.Surnames[0]
	}
	return Surname{}
}

// Surname returns the text of the primary surname.
func (n *Name) Surname() string {
	return n.PrimarySurname().Surname
}

// SurnameList returns the text of every surname in order.
func (n *Name) SurnameList() []string {
	return n.collect(func(s Surname) string { return s.Surname })
}

// Prefixes returns the prefix of every surname in order.
func (n *Name) Prefixes() []string {
	return n.collect(func(s Surname) string { return s.Prefix })
}

// Connectors returns the connector of every surname in order.
func (n *Name) Connectors() []string {
	return n.collect(func(s Surname) string { return s.Connector })
}

func (n *Name) collect(f func(Surname) string) []string {
	out := make([]string, 0, len(n.Surnames))
	for _, s := range n.Surnames {
		out = append(out, f(s))
	}
	return out
}

// GroupName returns the name used to group equivalent surnames:
// GroupAs when set, otherwise the primary surname.
func (n *Name) GroupName() string {
	if n.GroupAs != "" {
		return n.GroupAs
	}
	return n.Surname()
}

// FullName formats the name as "Surname, First" or "Surname, First Suffix".
func (n *Name) FullName() string {
	return lastFirst(n.Surname(), n.FirstName, n.Suffix)
}

// UpperName is FullName with the surname in upper case.
func (n *Name) UpperName() string {
	return lastFirst(strings.ToUpper(n.Surname()), n.FirstName, n.Suffix)
}

func lastFirst(surname, first, suffix string) string {
	if suffix != "" {
		return fmt.Sprintf("%s, %s %s", surname, first, suffix)
	}
	return fmt.Sprintf("%s, %s", surname, first)
}

// RegularName formats the name as "First Surname" or "First Surname, Suffix".
func (n *Name) RegularName() string {
	if n.Suffix == "" {
		return fmt.Sprintf("%s %s", n.FirstName, n.Surname())
	}
	return fmt.Sprintf("%s %s, %s", n.FirstName, n.Surname(), n.Suffix)
}

// GEDCOMName formats the name as a GEDCOM NAME value: "First /Surname/ Suffix".
func (n *Name) GEDCOMName() string {
	first := strings.TrimSpace(n.FirstName)
	surname := strings.ReplaceAll(n.Surname(), "/", "?")
	if n.Suffix == "" {
		return fmt.Sprintf("%s /%s/", first, surname)
	}
	return fmt.Sprintf("%s /%s/ %s", first, surname, n.Suffix)
}

// GEDCOMParts returns the name split into GEDCOM name pieces.
func (n *Name) GEDCOMParts() map[string]any {
	return map[string]any{
		"given":       strings.TrimSpace(n.FirstName),
		"surname":     strings.ReplaceAll(n.Surname(), "/", "?"),
		"suffix":      n.Suffix,
		"title":       n.Title,
		"surnamelist": n.SurnameList(),
		"prefixes":    n.Prefixes(),
		"connectors":  n.Connectors(),
		"nick":        n.Nick,
		"famnick":     n.FamilyNick,
	}
}

// IsEquivalent reports whether n and other are the same name. Names that
// agree in type, given name, call name, surnames, suffix, title and date
// are Equal, and Identical when every other field agrees as well.
func (n *Name) IsEquivalent(other *Name) Equivalence {
	if !slices.Equal(n.TextData(), other.TextData()) ||
		n.Date != other.Date ||
		!slices.Equal(n.Surnames, other.Surnames) {
		return Different
	}
	if n.isEqual(other) {
		return Identical
	}
	return Equal
}

func (n *Name) isEqual(o *Name) bool {
	return n.Private == o.Private &&
		n.GroupAs == o.GroupAs &&
		n.SortAs == o.SortAs &&
		n.DisplayAs == o.DisplayAs &&
		slices.Equal(n.Notes, o.Notes) &&
		slices.Equal(n.Citations, o.Citations)
}

// Merge folds acquisition into n: privacy, surnames without an identical
// counterpart in n, notes and citations. The type, given name, call name, suffix, title,
// nick names and date of acquisition are discarded.
func (n *Name) Merge(acquisition *Name) {
	n.mergePrivacy(acquisition.Privacy)
	n.mergeSurnames(acquisition.Surnames)
	n.mergeNotes(acquisition.NoteBase)
	n.mergeCitations(acquisition.CitationBase)
}

func (n *Name) mergeSurnames(add []Surname) {
	for _, s := range add {
		found := false
		for _, have := range n.Surnames {
			if have.IsEquivalent(s) == Identical {
				found = true
				break
			}
		}
		if !found {
			if s.Primary && n.hasPrimary() {
				s.Primary = false
			}
			n.Surnames = append(n.Surnames, s)
		}
	}
}

func (n *Name) hasPrimary() bool {
	for _, s := range n.Surnames {
		if s.Primary {
			return true
		}
	}
	return false
}
