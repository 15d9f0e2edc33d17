package genealogy_test

import (
	"testing"

	"github.com/matryer/is"

	"github.com/ezachrisen/kin/genealogy"
)

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want genealogy.Date
	}{
		{"", genealogy.Date{}},
		{"1850", genealogy.Date{Year: 1850}},
		{"1850-06", genealogy.Date{Year: 1850, Month: 6}},
		{"1850-06-01", genealogy.Date{Year: 1850, Month: 6, Day: 1}},
		{" before 1850 ", genealogy.Date{Modifier: genealogy.Before, Year: 1850}},
		{"bef. 1850-02", genealogy.Date{Modifier: genealogy.Before, Year: 1850, Month: 2}},
		{"<1850", genealogy.Date{Modifier: genealogy.Before, Year: 1850}},
		{"AFTER 1900", genealogy.Date{Modifier: genealogy.After, Year: 1900}},
		{">1900", genealogy.Date{Modifier: genealogy.After, Year: 1900}},
		{"abt 1830", genealogy.Date{Modifier: genealogy.About, Year: 1830}},
		{"~1830", genealogy.Date{Modifier: genealogy.About, Year: 1830}},
		{"1850-13", genealogy.Date{Text: "1850-13"}},
		{"1850-01-32", genealogy.Date{Text: "1850-01-32"}},
		{"1850-1-1-1", genealogy.Date{Text: "1850-1-1-1"}},
		{"Spring of 1850", genealogy.Date{Text: "Spring of 1850"}},
		{"0", genealogy.Date{Text: "0"}},
	}

	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			is := is.New(t)
			is.Equal(genealogy.ParseDate(c.in), c.want)
		})
	}
}

func TestDateString(t *testing.T) {
	is := is.New(t)
	for _, s := range []string{"1850", "1850-06", "1850-06-01", "before 1850", "after 1850-06", "about 1830", "Spring of 1850", ""} {
		is.Equal(genealogy.ParseDate(s).String(), s)
	}
	is.Equal(genealogy.ParseDate("bef 1850").String(), "before 1850")

	var d genealogy.Date
	is.NoErr(d.UnmarshalText([]byte("abt 1901-02")))
	b, err := d.MarshalText()
	is.NoErr(err)
	is.Equal(string(b), "about 1901-02")
}

func TestDateCompare(t *testing.T) {
	is := is.New(t)
	d := genealogy.ParseDate
	is.Equal(d("1850").Compare(d("1851")), -1)
	is.Equal(d("1851").Compare(d("1850")), 1)
	is.Equal(d("1850").Compare(d("1850-06-01")), 0)
	is.Equal(d("1850-05").Compare(d("1850-06-01")), -1)
	is.Equal(d("1850-06-02").Compare(d("1850-06-01")), 1)
	is.True(d("1850").IsRegular())
	is.True(!d("abt 1850").IsRegular())
	is.True(!d("soon").IsRegular())
	is.True(d("").IsEmpty())
	is.True(!d("soon").IsEmpty())
}

func TestDateMatches(t *testing.T) {
	cases := []struct {
		rule  string
		event string
		want  bool
	}{
		{"", "1850", true},
		{"", "", true},
		{"1850", "", false},
		{"1850", "1850-06-01", true},
		{"1850", "1851", false},
		{"1850", "abt 1850", true},
		{"1850-06", "1850-06-14", true},
		{"1850-06", "1850-07-01", false},
		{"1850-06-14", "1850", true},
		{"before 1850", "1849-12-31", true},
		{"before 1850", "1850-01-01", false},
		{"before 1850-06", "1850-05-30", true},
		{"after 1850", "1851", true},
		{"after 1850", "1850-12-31", false},
		{"after 1850", "Spring of 1851", false},
		{"spring of 1851", "Spring of 1851", true},
		{"1851", "Spring of 1851", false},
		{"spring", "1851", false},
	}

	for _, c := range cases {
		t.Run(c.rule+" vs "+c.event, func(t *testing.T) {
			is := is.New(t)
			is.Equal(genealogy.ParseDate(c.rule).Matches(genealogy.ParseDate(c.event)), c.want)
		})
	}
}
