// Package filterfile reads and writes filter definitions as YAML.
//
//	name: custom
//	filters:
//	  - name: Bostonians
//	    comment: born or died in Boston
//	    op: or
//	    rules:
//	      - class: Has the birth
//	        args: ["", Boston, ""]
//	      - class: Has the death
//	        args: ["", Boston, ""]
//
// Rule classes are the rule names registered with the kin package.
package filterfile

import (
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/ezachrisen/kin"
)

type document struct {
	Name    string      `yaml:"name,omitempty"`
	Filters []yaml.Node `yaml:"filters"`
}

type filterDef struct {
	Name    string    `yaml:"name"`
	Comment string    `yaml:"comment,omitempty"`
	Op      kin.Op    `yaml:"op,omitempty"`
	Invert  bool      `yaml:"invert,omitempty"`
	Rules   []ruleDef `yaml:"rules"`
}

type ruleDef struct {
	Class string   `yaml:"class"`
	Args  []string `yaml:"args,flow"`
}

// Decode reads a filter document. The list takes the document's name, or
// name if the document has none.
func Decode(r io.Reader, name string) (*kin.FilterList, error) {
	var doc document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrap(err, "decoding filters")
	}
	if doc.Name != "" {
		name = doc.Name
	}

	l := kin.NewFilterList(name)
	for i := range doc.Filters {
		node := &doc.Filters[i]
		f, err := decodeFilter(node)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", node.Line)
		}
		if _, dup := l.Lookup(f.Name); dup {
			return nil, errors.Errorf("line %d: filter %q defined twice", node.Line, f.Name)
		}
		l.Add(f)
	}
	return l, nil
}

var (
	filterKeys = []string{"name", "comment", "op", "invert", "rules"}
	ruleKeys   = []string{"class", "args"}
)

// checkKeys rejects mapping keys that are not in allowed. Rules are
// checked too when node is a filter.
func checkKeys(node *yaml.Node, allowed []string) error {
	if node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		k, v := node.Content[i], node.Content[i+1]
		if !slices.Contains(allowed, k.Value) {
			return errors.Errorf("unknown key %q at line %d", k.Value, k.Line)
		}
		if k.Value == "rules" && v.Kind == yaml.SequenceNode {
			for _, rn := range v.Content {
				if err := checkKeys(rn, ruleKeys); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func decodeFilter(node *yaml.Node) (*kin.Filter, error) {
	if err := checkKeys(node, filterKeys); err != nil {
		return nil, err
	}
	var def filterDef
	if err := node.Decode(&def); err != nil {
		return nil, err
	}
	if strings.TrimSpace(def.Name) == "" {
		return nil, errors.New("filter without a name")
	}
	f := &kin.Filter{
		Name:    def.Name,
		Comment: def.Comment,
		Op:      def.Op,
		Invert:  def.Invert,
	}
	for i, rd := range def.Rules {
		r, err := kin.NewRule(rd.Class, rd.Args...)
		if err != nil {
			return nil, errors.WithMessagef(err, "filter %q, rule %d", def.Name, i+1)
		}
		f.Add(r)
	}
	return f, nil
}

// Load reads the filter file at path. A file that does not exist yields
// an empty list named after the file.
func Load(path string) (*kin.FilterList, error) {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return kin.NewFilterList(name), nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "opening filter file")
	}
	defer f.Close()

	l, err := Decode(f, name)
	if err != nil {
		return nil, errors.WithMessage(err, path)
	}
	return l, nil
}

// Encode writes every filter in l.
func Encode(w io.Writer, l *kin.FilterList) error {
	out := struct {
		Name    string      `yaml:"name,omitempty"`
		Filters []filterDef `yaml:"filters"`
	}{Name: l.Name}

	for _, f := range l.Filters() {
		def := filterDef{
			Name:    f.Name,
			Comment: f.Comment,
			Op:      f.Op,
			Invert:  f.Invert,
			Rules:   []ruleDef{},
		}
		for _, r := range f.Rules {
			def.Rules = append(def.Rules, ruleDef{Class: r.Name(), Args: r.Values()})
		}
		out.Filters = append(out.Filters, def)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return errors.Wrap(err, "encoding filters")
	}
	return enc.Close()
}

// Save writes l to path, replacing the file through a rename so readers
// never see a partial file.
func Save(path string, l *kin.FilterList) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".filters-*")
	if err != nil {
		return errors.Wrap(err, "creating filter file")
	}
	defer os.Remove(tmp.Name())

	if err := Encode(tmp, l); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "writing filter file")
	}
	return errors.Wrap(os.Rename(tmp.Name(), path), "replacing filter file")
}
