package notetype

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed presets
var presetFiles embed.FS

type catalogueFile struct {
	Fields    []string `yaml:"fields"`
	SortField int      `yaml:"sort_field"`
	Style     string   `yaml:"style"`
	Templates []struct {
		Name        string `yaml:"name"`
		Front       string `yaml:"front"`
		Back        string `yaml:"back"`
		Fingerprint string `yaml:"fingerprint"`
	} `yaml:"templates"`
	Presets []struct {
		Name      string   `yaml:"name"`
		Templates []string `yaml:"templates"`
	} `yaml:"presets"`
}

// Preset is a note type this tool creates and fully maintains.
type Preset struct {
	Name      string
	Templates []Template
	Style     string
}

// Catalogue is the set of presets plus the field list every note type
// managed by this tool must have.
type Catalogue struct {
	Fields       []string
	SortField    int
	Presets      []Preset
	fingerprints map[string]string
}

// DefaultCatalogue loads the embedded presets.
func DefaultCatalogue() (*Catalogue, error) {
	sub, err := fs.Sub(presetFiles, "presets")
	if err != nil {
		return nil, err
	}
	return LoadCatalogue(sub, "presets.yaml")
}

// LoadCatalogue reads a catalogue file; markup and style paths are relative
// to it within fsys.
func LoadCatalogue(fsys fs.FS, name string) (*Catalogue, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("read catalogue: %w", err)
	}

	var file catalogueFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalogue %s: %w", name, err)
	}

	dir := path.Dir(name)
	read := func(rel string) (string, error) {
		b, err := fs.ReadFile(fsys, path.Join(dir, rel))
		if err != nil {
			return "", fmt.Errorf("read %s: %w", rel, err)
		}
		return string(b), nil
	}

	if len(file.Fields) == 0 {
		return nil, fmt.Errorf("catalogue %s: no fields", name)
	}
	if file.SortField < 0 || file.SortField >= len(file.Fields) {
		return nil, fmt.Errorf("catalogue %s: sort field %d out of range", name, file.SortField)
	}

	style, err := read(file.Style)
	if err != nil {
		return nil, err
	}

	c := &Catalogue{
		Fields:       file.Fields,
		SortField:    file.SortField,
		fingerprints: map[string]string{},
	}

	templates := map[string]Template{}
	for _, t := range file.Templates {
		front, err := read(t.Front)
		if err != nil {
			return nil, err
		}
		back, err := read(t.Back)
		if err != nil {
			return nil, err
		}
		templates[t.Name] = Template{Name: t.Name, Front: front, Back: back}
		if t.Fingerprint != "" {
			c.fingerprints[t.Name] = t.Fingerprint
		}
	}

	for _, p := range file.Presets {
		preset := Preset{Name: p.Name, Style: style}
		for _, tn := range p.Templates {
			t, ok := templates[tn]
			if !ok {
				return nil, fmt.Errorf("catalogue %s: preset %q uses unknown template %q", name, p.Name, tn)
			}
			preset.Templates = append(preset.Templates, t)
		}
		c.Presets = append(c.Presets, preset)
	}
	return c, nil
}

func (c *Catalogue) Preset(name string) (Preset, bool) {
	i := slices.IndexFunc(c.Presets, func(p Preset) bool { return p.Name == name })
	if i < 0 {
		return Preset{}, false
	}
	return c.Presets[i], true
}

// Target returns what a note type with the given name should look like.
// Only presets get a layout; other note types are compared by fields.
func (c *Catalogue) Target(name string) Target {
	t := Target{Fields: c.Fields, SortField: c.SortField}
	if p, ok := c.Preset(name); ok {
		t.Layout = &Layout{Templates: p.Templates, Style: p.Style}
	}
	return t
}

// NewSchema builds a marked schema for a preset.
func (c *Catalogue) NewSchema(p Preset) Schema {
	return Schema{
		Name:      p.Name,
		Fields:    slices.Clone(c.Fields),
		SortField: c.SortField,
		Templates: slices.Clone(p.Templates),
		Style:     p.Style,
		Marked:    true,
	}
}

// recognised reports whether t is one of the known templates, by name or by
// a fingerprint in its front markup.
func (c *Catalogue) recognised(t Template) bool {
	if _, ok := c.fingerprints[t.Name]; ok {
		return true
	}
	for _, fp := range c.fingerprints {
		if strings.Contains(t.Front, fp) {
			return true
		}
	}
	return false
}

// Check returns a SchemaIntegrityError for schemas that cannot be reconciled
// without guessing. Template recognition only decides whether a preset is
// reconcilable at all; diffs still match templates by name, so a renamed but
// recognisable template is replaced by the preset one, which drops its cards.
func (c *Catalogue) Check(s Schema) error {
	seen := map[string]bool{}
	for _, f := range s.Fields {
		if seen[f] {
			return &SchemaIntegrityError{Schema: s, Reason: fmt.Sprintf("field %q appears more than once", f)}
		}
		seen[f] = true
	}

	if _, ok := c.Preset(s.Name); !ok || len(s.Templates) < 2 {
		return nil
	}
	for _, t := range s.Templates {
		if c.recognised(t) {
			return nil
		}
	}
	return &SchemaIntegrityError{
		Schema: s,
		Reason: "none of its card templates can be matched to the expected ones; rename the note type to opt out or fix the templates",
	}
}
