package models

import "strings"

// Study-worthy forms per word class. Classes not listed only use the headword.
var essentialFormsByClass = map[string][]string{
	"nimisõna":   nominalForms,
	"ainsussõna": nominalForms,
	"omadussõna": nominalForms,
	"ülivõrre":   nominalForms,
	"keskvõrre":  nominalForms,
	"mitmus":     {"mitmuse nimetav", "mitmuse omastav", "mitmuse osastav"},
	"tegusõna":   {"ma-tegevusnimi", "da-tegevusnimi", "kindla kõneviisi oleviku ainsuse 3.p."},
}

var nominalForms = []string{"ainsuse nimetav", "ainsuse omastav", "ainsuse osastav", "mitmuse osastav"}

// EssentialFormNames lists the morphology keys mandated for a word class.
func EssentialFormNames(wordClass string) []string {
	names := essentialFormsByClass[wordClass]
	out := make([]string, len(names))
	copy(out, names)
	return out
}

// PresentForms returns the mandated form names found in the morphology table.
func (w *WordEntry) PresentForms() []string {
	var present []string
	for _, name := range essentialFormsByClass[w.WordClass] {
		if _, ok := w.Morphology[name]; ok {
			present = append(present, name)
		}
	}
	return present
}

// MissingForms returns the mandated form names absent from the morphology
// table. A non-empty result points at markup drift upstream.
func (w *WordEntry) MissingForms() []string {
	var missing []string
	for _, name := range essentialFormsByClass[w.WordClass] {
		if _, ok := w.Morphology[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// EssentialForms returns the surface forms to memorise, or just the headword
// when none of the mandated forms were parsed.
func (w *WordEntry) EssentialForms() []string {
	keys := w.PresentForms()
	if len(keys) == 0 {
		return []string{w.Headword}
	}
	forms := make([]string, 0, len(keys))
	for _, k := range keys {
		forms = append(forms, w.Morphology[k])
	}
	return forms
}

// EssentialFormsLine joins the essential forms with ", ", optionally compressed.
func (w *WordEntry) EssentialFormsLine(compress bool) string {
	forms := w.EssentialForms()
	if compress {
		forms = CompressForms(forms)
	}
	return strings.Join(forms, ", ")
}

// AudioURLs returns pronunciations of the present essential forms, falling back
// to the headword pronunciation.
func (w *WordEntry) AudioURLs() []string {
	var urls []string
	for _, key := range w.PresentForms() {
		if u, ok := w.MorphologyAudio[key]; ok && u != "" {
			urls = append(urls, u)
		}
	}
	if len(urls) == 0 && w.PronunciationAudioURL != "" {
		urls = []string{w.PronunciationAudioURL}
	}
	return urls
}

// CompressForms replaces the part shared by all forms with "-":
// [suur suure suurt] -> [suur -e -t], [kõne kõnet kõnesid] -> [kõne -t -sid].
// The shared part is only factored out when it is longer than three letters
// or spans the whole first form.
func CompressForms(forms []string) []string {
	if len(forms) == 0 {
		return forms
	}
	prefix := commonPrefix(forms)
	if prefix == "" {
		return forms
	}
	if len([]rune(prefix)) <= 3 && prefix != forms[0] {
		return forms
	}

	out := make([]string, 0, len(forms))
	if forms[0] == prefix {
		out = append(out, forms[0])
	} else {
		out = append(out, prefix+"/"+strings.TrimPrefix(forms[0], prefix))
	}
	for _, f := range forms[1:] {
		out = append(out, "-"+strings.TrimPrefix(f, prefix))
	}
	return out
}

func commonPrefix(forms []string) string {
	prefix := []rune(forms[0])
	for _, f := range forms[1:] {
		r := []rune(f)
		n := 0
		for n < len(prefix) && n < len(r) && prefix[n] == r[n] {
			n++
		}
		prefix = prefix[:n]
	}
	return string(prefix)
}
