package notetype

import (
	"slices"
	"strings"
)

// Diff lists what has to change for a schema to match a target.
type Diff struct {
	FieldsToAdd    []string
	FieldsToRemove []string
	// FieldsReordered is set when the kept fields end up out of order or the
	// sort field differs. Targets built for stores without a SortFieldSetter
	// carry the current sort field, so it never differs there.
	FieldsReordered  bool
	SortFieldChanged bool

	TemplatesToAdd    []string
	TemplatesToRemove []string
	TemplatesToUpdate []string
	StyleChanged      bool
}

// Compute diffs existing against target. It never touches a store.
func Compute(existing Schema, target Target) Diff {
	var d Diff

	for _, f := range target.Fields {
		if !slices.Contains(existing.Fields, f) {
			d.FieldsToAdd = append(d.FieldsToAdd, f)
		}
	}
	for _, f := range existing.Fields {
		if !slices.Contains(target.Fields, f) {
			d.FieldsToRemove = append(d.FieldsToRemove, f)
		}
	}
	d.SortFieldChanged = existing.SortField != target.SortField
	d.FieldsReordered = !slices.Equal(fieldsAfterEdits(existing.Fields, d), target.Fields) || d.SortFieldChanged

	if target.Layout == nil {
		return d
	}

	for _, t := range target.Layout.Templates {
		current, ok := existing.Template(t.Name)
		switch {
		case !ok:
			d.TemplatesToAdd = append(d.TemplatesToAdd, t.Name)
		case current.Front != t.Front || current.Back != t.Back:
			d.TemplatesToUpdate = append(d.TemplatesToUpdate, t.Name)
		}
	}
	for _, t := range existing.Templates {
		if !slices.ContainsFunc(target.Layout.Templates, func(x Template) bool { return x.Name == t.Name }) {
			d.TemplatesToRemove = append(d.TemplatesToRemove, t.Name)
		}
	}
	d.StyleChanged = existing.Style != target.Layout.Style
	return d
}

// fieldsAfterEdits is the field order a store ends up with after removing and
// appending fields, before any repositioning.
func fieldsAfterEdits(fields []string, d Diff) []string {
	out := make([]string, 0, len(fields)+len(d.FieldsToAdd))
	for _, f := range fields {
		if !slices.Contains(d.FieldsToRemove, f) {
			out = append(out, f)
		}
	}
	return append(out, d.FieldsToAdd...)
}

// IsRequired reports whether the schema is currently unusable.
func (d Diff) IsRequired() bool {
	return len(d.FieldsToAdd) > 0 || len(d.FieldsToRemove) > 0 || d.FieldsReordered
}

// IsConsequential reports whether applying the diff touches note data or the
// number of cards per note, which calls for user confirmation.
func (d Diff) IsConsequential() bool {
	return d.IsRequired() || len(d.TemplatesToAdd) > 0 || len(d.TemplatesToRemove) > 0
}

// IsVisual reports changes that only affect how cards look.
func (d Diff) IsVisual() bool {
	return !d.IsConsequential() && (len(d.TemplatesToUpdate) > 0 || d.StyleChanged)
}

func (d Diff) IsEmpty() bool {
	return !d.IsConsequential() && len(d.TemplatesToUpdate) == 0 && !d.StyleChanged
}

// Lines renders the diff for a confirmation prompt.
func (d Diff) Lines() []string {
	var lines []string
	if len(d.FieldsToAdd) > 0 {
		lines = append(lines, "Add fields: "+strings.Join(d.FieldsToAdd, ", "))
	}
	if len(d.FieldsToRemove) > 0 {
		lines = append(lines, "Remove fields: "+strings.Join(d.FieldsToRemove, ", "))
	}
	if len(d.TemplatesToAdd) > 0 {
		lines = append(lines, "Add card templates: "+strings.Join(d.TemplatesToAdd, ", "))
	}
	if len(d.TemplatesToRemove) > 0 {
		lines = append(lines, "Remove card templates: "+strings.Join(d.TemplatesToRemove, ", "))
	}
	if len(d.TemplatesToUpdate) > 0 {
		lines = append(lines, "Update card templates: "+strings.Join(d.TemplatesToUpdate, ", "))
	}
	if d.StyleChanged {
		lines = append(lines, "Change style")
	}
	if d.FieldsReordered {
		lines = append(lines, "Change fields order")
	}
	return lines
}
