package genealogy

import "slices"

// Location is the postal part of an address.
type Location struct {
	Street   string `json:"street,omitempty" yaml:"street,omitempty"`
	Locality string `json:"locality,omitempty" yaml:"locality,omitempty"`
	City     string `json:"city,omitempty" yaml:"city,omitempty"`
	County   string `json:"county,omitempty" yaml:"county,omitempty"`
	State    string `json:"state,omitempty" yaml:"state,omitempty"`
	Country  string `json:"country,omitempty" yaml:"country,omitempty"`
	Postal   string `json:"postal,omitempty" yaml:"postal,omitempty"`
	Phone    string `json:"phone,omitempty" yaml:"phone,omitempty"`
}

// TextData returns the textual fields of the location in a fixed order:
// street, locality, city, county, state, country, postal code, phone.
func (l Location) TextData() []string {
	return []string{l.Street, l.Locality, l.City, l.County, l.State, l.Country, l.Postal, l.Phone}
}

// Address is a dated location where a person lived.
type Address struct {
	Privacy      `yaml:",inline"`
	CitationBase `yaml:",inline"`
	NoteBase     `yaml:",inline"`
	Location     `yaml:",inline"`
	Date         Date `json:"date,omitzero" yaml:"date,omitempty"`
}

// TextData returns the textual fields of the address.
func (a *Address) TextData() []string {
	return a.Location.TextData()
}

// IsEquivalent reports whether a and other describe the same address.
// Addresses with the same location and date are Equal, and Identical when
// privacy, notes and citations agree as well.
func (a *Address) IsEquivalent(other *Address) Equivalence {
	if !slices.Equal(a.TextData(), other.TextData()) || a.Date != other.Date {
		return Different
	}
	if a.isEqual(other) {
		return Identical
	}
	return Equal
}

func (a *Address) isEqual(o *Address) bool {
	return a.Private == o.Private &&
		slices.Equal(a.Notes, o.Notes) &&
		slices.Equal(a.Citations, o.Citations)
}

// Merge folds the privacy, notes and citations of acquisition into a.
// The location and date of acquisition are discarded.
func (a *Address) Merge(acquisition *Address) {
	a.mergePrivacy(acquisition.Privacy)
	a.mergeNotes(acquisition.NoteBase)
	a.mergeCitations(acquisition.CitationBase)
}
