package genealogy

import (
	"fmt"
	"strconv"
	"strings"
)

// Modifier qualifies a date.
type Modifier int

const (
	None Modifier = iota
	Before
	After
	About
)

var modifierPrefixes = []struct {
	prefix string
	mod    Modifier
}{
	{"before", Before},
	{"bef", Before},
	{"<", Before},
	{"after", After},
	{"aft", After},
	{">", After},
	{"about", About},
	{"abt", About},
	{"~", About},
}

func (m Modifier) String() string {
	switch m {
	case Before:
		return "before"
	case After:
		return "after"
	case About:
		return "about"
	default:
		return ""
	}
}

// Date is a possibly partial calendar date. Zero Year, Month or Day means
// the part is unknown. Dates that could not be parsed keep their input in
// Text and have no calendar parts.
type Date struct {
	Modifier Modifier
	Year     int
	Month    int
	Day      int
	Text     string
}

// ParseDate parses YYYY, YYYY-MM or YYYY-MM-DD, optionally prefixed with a
// modifier (before/bef/<, after/aft/>, about/abt/~). Input that does not
// follow this syntax is kept as a text-only date; ParseDate never fails.
func ParseDate(s string) Date {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}
	}

	d := Date{}
	rest := strings.ToLower(s)
	for _, mp := range modifierPrefixes {
		if strings.HasPrefix(rest, mp.prefix) {
			d.Modifier = mp.mod
			rest = strings.TrimSpace(strings.TrimPrefix(rest, mp.prefix))
			rest = strings.TrimPrefix(rest, ".")
			rest = strings.TrimSpace(rest)
			break
		}
	}

	parts := strings.Split(rest, "-")
	if len(parts) > 3 {
		return Date{Text: s}
	}
	vals := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return Date{Text: s}
		}
		vals[i] = n
	}
	d.Year = vals[0]
	if len(vals) > 1 {
		d.Month = vals[1]
		if d.Month < 1 || d.Month > 12 {
			return Date{Text: s}
		}
	}
	if len(vals) > 2 {
		d.Day = vals[2]
		if d.Day < 1 || d.Day > 31 {
			return Date{Text: s}
		}
	}
	if d.Year == 0 {
		return Date{Text: s}
	}
	return d
}

// IsEmpty reports whether the date carries no information at all.
func (d Date) IsEmpty() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0 && d.Text == ""
}

// IsRegular reports whether the date has a year and no modifier.
func (d Date) IsRegular() bool {
	return d.Year != 0 && d.Modifier == None
}

// Compare orders two dates by year, month and day. Parts unknown on either
// side compare equal, so 1850 and 1850-06-01 compare as 0.
func (d Date) Compare(o Date) int {
	if c := cmpPart(d.Year, o.Year); c != 0 {
		return c
	}
	if c := cmpPart(d.Month, o.Month); c != 0 {
		return c
	}
	return cmpPart(d.Day, o.Day)
}

func cmpPart(a, b int) int {
	if a == 0 || b == 0 {
		return 0
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Matches reports whether the event date e satisfies d used as a rule
// argument:
//
//	before X   e is earlier than X
//	after X    e is later than X
//	YYYY       e falls in the same year
//	otherwise  e compares equal to X
func (d Date) Matches(e Date) bool {
	if d.IsEmpty() {
		return true
	}
	if e.Year == 0 {
		// text-only dates can only match the same text
		return d.Year == 0 && e.Text != "" && strings.EqualFold(d.Text, e.Text)
	}
	if d.Year == 0 {
		return false
	}
	switch {
	case d.Modifier == Before:
		return e.Compare(d) < 0
	case d.Modifier == After:
		return e.Compare(d) > 0
	case d.Month == 0:
		return d.Year == e.Year
	default:
		return d.Compare(e) == 0
	}
}

// String formats the date in the syntax accepted by ParseDate.
func (d Date) String() string {
	if d.Year == 0 {
		return d.Text
	}
	var s string
	switch {
	case d.Day != 0:
		s = fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
	case d.Month != 0:
		s = fmt.Sprintf("%04d-%02d", d.Year, d.Month)
	default:
		s = fmt.Sprintf("%04d", d.Year)
	}
	if d.Modifier != None {
		s = d.Modifier.String() + " " + s
	}
	return s
}

// MarshalText implements encoding.TextMarshaler.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(b []byte) error {
	*d = ParseDate(string(b))
	return nil
}
