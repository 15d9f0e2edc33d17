package genealogy

import (
	"fmt"
	"strings"
)

// Gender of a person.
type Gender int

const (
	Unknown Gender = iota
	Male
	Female
)

func (g Gender) String() string {
	switch g {
	case Male:
		return "male"
	case Female:
		return "female"
	default:
		return "unknown"
	}
}

// ParseGender accepts male/female/unknown and their first letters.
func ParseGender(s string) (Gender, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male", "m":
		return Male, nil
	case "female", "f":
		return Female, nil
	case "unknown", "u", "":
		return Unknown, nil
	}
	return Unknown, fmt.Errorf("invalid gender %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (g Gender) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (g *Gender) UnmarshalText(b []byte) error {
	v, err := ParseGender(string(b))
	if err != nil {
		return err
	}
	*g = v
	return nil
}

// Common event types.
const (
	EventBirth    = "Birth"
	EventDeath    = "Death"
	EventMarriage = "Marriage"
	EventBurial   = "Burial"
)

// Event is something that happened to a person or a family.
type Event struct {
	Type        string `json:"type" yaml:"type"`
	Date        Date   `json:"date,omitzero" yaml:"date,omitempty"`
	Place       string `json:"place,omitempty" yaml:"place,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

func (e Event) String() string {
	parts := []string{e.Type}
	if s := e.Date.String(); s != "" {
		parts = append(parts, s)
	}
	if e.Place != "" {
		parts = append(parts, e.Place)
	}
	return strings.Join(parts, " ")
}

// Attribute is a typed fact about a person or family, such as an occupation.
type Attribute struct {
	Type  string `json:"type" yaml:"type"`
	Value string `json:"value" yaml:"value"`
}

// ParentFamily links a child to the family of its parents.
type ParentFamily struct {
	FamilyID  string `json:"family_id" yaml:"family"`
	MotherRel string `json:"mother_rel,omitempty" yaml:"mother_rel,omitempty"`
	FatherRel string `json:"father_rel,omitempty" yaml:"father_rel,omitempty"`
}

// Person is an individual in the tree.
type Person struct {
	Handle         string         `json:"handle" yaml:"handle,omitempty"`
	ID             string         `json:"id" yaml:"id"`
	Gender         Gender         `json:"gender" yaml:"gender,omitempty"`
	PrimaryName    Name           `json:"primary_name" yaml:"name"`
	AlternateNames []Name         `json:"alternate_names,omitempty" yaml:"alternate_names,omitempty"`
	Events         []Event        `json:"events,omitempty" yaml:"events,omitempty"`
	Birth          *Event         `json:"birth,omitempty" yaml:"birth,omitempty"`
	Death          *Event         `json:"death,omitempty" yaml:"death,omitempty"`
	Attributes     []Attribute    `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	Addresses      []Address      `json:"addresses,omitempty" yaml:"addresses,omitempty"`
	FamilyIDs      []string       `json:"family_ids,omitempty" yaml:"-"`
	ParentFamilies []ParentFamily `json:"parent_families,omitempty" yaml:"-"`
}

// DisplayName is the primary name formatted as "Surname, First".
func (p *Person) DisplayName() string {
	return p.PrimaryName.FullName()
}

// Names returns the primary name followed by the alternate names.
func (p *Person) Names() []*Name {
	out := make([]*Name, 0, 1+len(p.AlternateNames))
	out = append(out, &p.PrimaryName)
	for i := range p.AlternateNames {
		out = append(out, &p.AlternateNames[i])
	}
	return out
}

// MainParents returns the id of the first parent family, or "" if the
// person has no recorded parents.
func (p *Person) MainParents() string {
	if len(p.ParentFamilies) == 0 {
		return ""
	}
	return p.ParentFamilies[0].FamilyID
}

func (p *Person) String() string {
	return fmt.Sprintf("%s [%s]", p.DisplayName(), p.ID)
}

// Family relationship types.
const (
	RelMarried    = "Married"
	RelUnmarried  = "Unmarried"
	RelCivilUnion = "Civil Union"
	RelUnknown    = "Unknown"
)

// Family joins up to two partners and their children.
type Family struct {
	Handle       string      `json:"handle" yaml:"handle,omitempty"`
	ID           string      `json:"id" yaml:"id"`
	FatherID     string      `json:"father_id,omitempty" yaml:"father,omitempty"`
	MotherID     string      `json:"mother_id,omitempty" yaml:"mother,omitempty"`
	ChildIDs     []string    `json:"child_ids,omitempty" yaml:"children,omitempty"`
	Relationship string      `json:"relationship,omitempty" yaml:"relationship,omitempty"`
	Events       []Event     `json:"events,omitempty" yaml:"events,omitempty"`
	Attributes   []Attribute `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

// Spouse returns the id of the partner of personID in the family, or ""
// if personID is not a partner or the other partner is unknown.
func (f *Family) Spouse(personID string) string {
	switch personID {
	case f.FatherID:
		return f.MotherID
	case f.MotherID:
		return f.FatherID
	}
	return ""
}
