// Package genealogy holds the record model used by the kin filter engine:
// people, names, addresses, events, attributes and the families that link
// people to their parents, partners and children.
//
// Secondary objects (names, addresses) carry privacy, note and citation
// references and know how to compare and merge themselves with a duplicate.
package genealogy

import "slices"

// Equivalence describes how closely two secondary objects agree.
type Equivalence int

const (
	// Different objects disagree in the data that identifies them.
	Different Equivalence = iota
	// Equal objects agree in identifying data but differ elsewhere
	// (privacy, notes, citations, display preferences).
	Equal
	// Identical objects agree in every field.
	Identical
)

func (e Equivalence) String() string {
	switch e {
	case Identical:
		return "identical"
	case Equal:
		return "equal"
	default:
		return "different"
	}
}

// Privacy marks a record as private.
type Privacy struct {
	Private bool `json:"private,omitempty" yaml:"private,omitempty"`
}

// mergePrivacy keeps the record private if either side is private.
func (p *Privacy) mergePrivacy(acquisition Privacy) {
	p.Private = p.Private || acquisition.Private
}

// NoteBase holds references (handles) to notes.
type NoteBase struct {
	Notes []string `json:"notes,omitempty" yaml:"notes,omitempty"`
}

func (n *NoteBase) mergeNotes(acquisition NoteBase) {
	n.Notes = mergeHandles(n.Notes, acquisition.Notes)
}

// CitationBase holds references (handles) to source citations.
type CitationBase struct {
	Citations []string `json:"citations,omitempty" yaml:"citations,omitempty"`
}

func (c *CitationBase) mergeCitations(acquisition CitationBase) {
	c.Citations = mergeHandles(c.Citations, acquisition.Citations)
}

// mergeHandles appends the handles in add that are not already in dst,
// preserving order.
func mergeHandles(dst, add []string) []string {
	for _, h := range add {
		if !slices.Contains(dst, h) {
			dst = append(dst, h)
		}
	}
	return dst
}
