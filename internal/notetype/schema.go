// Package notetype keeps the note types this tool creates in shape: it diffs
// stored schemas against the preset catalogue and applies the changes.
package notetype

import "slices"

// Template is one card template of a note type.
type Template struct {
	Name  string `yaml:"name"`
	Front string `yaml:"front"`
	Back  string `yaml:"back"`
}

// Schema is a note type as the store reports it.
type Schema struct {
	ID        int64
	Name      string
	Fields    []string
	SortField int
	Templates []Template
	Style     string
	// Marked is set on note types created by this tool. It survives renames.
	Marked bool
}

func (s Schema) Template(name string) (Template, bool) {
	for _, t := range s.Templates {
		if t.Name == name {
			return t, true
		}
	}
	return Template{}, false
}

func (s Schema) HasField(name string) bool {
	return slices.Contains(s.Fields, name)
}

// Clone returns a deep copy.
func (s Schema) Clone() Schema {
	cp := s
	cp.Fields = slices.Clone(s.Fields)
	cp.Templates = slices.Clone(s.Templates)
	return cp
}

// Layout is the card side of a target: templates and stylesheet.
type Layout struct {
	Templates []Template
	Style     string
}

// Target is the desired shape of a note type. A nil Layout restricts the
// comparison to fields.
type Target struct {
	Fields    []string
	SortField int
	Layout    *Layout
}
