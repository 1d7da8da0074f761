package notetype_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kpauljoseph/sonaveeb-anki/internal/notetype"
)

var _ = Describe("Compute", func() {
	var (
		fields    = []string{"Word ID", "Morphology", "Translation"}
		templates = []notetype.Template{
			{Name: "Forward", Front: "{{Morphology}}", Back: "{{Translation}}"},
			{Name: "Reverse", Front: "{{Translation}}", Back: "{{Morphology}}"},
		}
		target = notetype.Target{
			Fields: fields,
			Layout: &notetype.Layout{Templates: templates, Style: ".card {}"},
		}
	)

	current := func() notetype.Schema {
		return notetype.Schema{
			Name:      "Sõnaveeb",
			Fields:    []string{"Word ID", "Morphology", "Translation"},
			Templates: append([]notetype.Template(nil), templates...),
			Style:     ".card {}",
			Marked:    true,
		}
	}

	It("is empty for a matching schema", func() {
		d := notetype.Compute(current(), target)
		Expect(d.IsEmpty()).To(BeTrue())
		Expect(d.IsVisual()).To(BeFalse())
		Expect(d.IsRequired()).To(BeFalse())
		Expect(d.Lines()).To(BeEmpty())
	})

	It("reports added and removed fields as required and consequential", func() {
		s := current()
		s.Fields = []string{"Word ID", "Morphology", "Notes"}
		d := notetype.Compute(s, target)
		Expect(d.FieldsToAdd).To(Equal([]string{"Translation"}))
		Expect(d.FieldsToRemove).To(Equal([]string{"Notes"}))
		Expect(d.FieldsReordered).To(BeFalse())
		Expect(d.IsRequired()).To(BeTrue())
		Expect(d.IsConsequential()).To(BeTrue())
		Expect(d.IsEmpty()).To(BeFalse())
	})

	It("detects order changes once adds and removes are accounted for", func() {
		s := current()
		s.Fields = []string{"Translation", "Word ID"}
		d := notetype.Compute(s, target)
		Expect(d.FieldsToAdd).To(Equal([]string{"Morphology"}))
		Expect(d.FieldsReordered).To(BeTrue())
		Expect(d.Lines()).To(ContainElement("Change fields order"))
	})

	It("counts a different sort field as a reorder", func() {
		s := current()
		s.SortField = 1
		d := notetype.Compute(s, target)
		Expect(d.SortFieldChanged).To(BeTrue())
		Expect(d.FieldsReordered).To(BeTrue())
		Expect(d.IsRequired()).To(BeTrue())
	})

	It("treats template count changes as consequential but not required", func() {
		s := current()
		s.Templates = []notetype.Template{templates[0], {Name: "Extra", Front: "x", Back: "y"}}
		d := notetype.Compute(s, target)
		Expect(d.TemplatesToAdd).To(Equal([]string{"Reverse"}))
		Expect(d.TemplatesToRemove).To(Equal([]string{"Extra"}))
		Expect(d.IsRequired()).To(BeFalse())
		Expect(d.IsConsequential()).To(BeTrue())
		Expect(d.IsVisual()).To(BeFalse())
	})

	It("treats markup and style changes as visual only", func() {
		s := current()
		s.Templates[1].Back = "{{Morphology}}<br>{{URL}}"
		s.Style = ".card { color: red }"
		d := notetype.Compute(s, target)
		Expect(d.TemplatesToUpdate).To(Equal([]string{"Reverse"}))
		Expect(d.StyleChanged).To(BeTrue())
		Expect(d.IsConsequential()).To(BeFalse())
		Expect(d.IsVisual()).To(BeTrue())
		Expect(d.IsEmpty()).To(BeFalse())
		Expect(d.Lines()).To(Equal([]string{"Update card templates: Reverse", "Change style"}))
	})

	It("ignores templates and style without a layout", func() {
		s := current()
		s.Templates = []notetype.Template{{Name: "Mine", Front: "{{Word ID}}", Back: ""}}
		s.Style = ""
		d := notetype.Compute(s, notetype.Target{Fields: fields})
		Expect(d.IsEmpty()).To(BeTrue())
	})

	DescribeTable("field changes always require an update",
		func(existing []string) {
			s := current()
			s.Fields = existing
			d := notetype.Compute(s, target)
			if len(d.FieldsToAdd) > 0 || len(d.FieldsToRemove) > 0 {
				Expect(d.IsRequired()).To(BeTrue())
				Expect(d.IsConsequential()).To(BeTrue())
			}
		},
		Entry("empty", []string{}),
		Entry("missing one", []string{"Word ID", "Translation"}),
		Entry("extra one", []string{"Word ID", "Morphology", "Translation", "Audio"}),
		Entry("all different", []string{"Front", "Back"}),
	)
})
