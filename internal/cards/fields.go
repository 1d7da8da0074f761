package cards

import (
	"strings"

	"github.com/kpauljoseph/sonaveeb-anki/pkg/models"
)

// Field names of the managed note types.
const (
	FieldWordID      = "Word ID"
	FieldMorphology  = "Morphology"
	FieldDefinition  = "Definition"
	FieldRection     = "Rection"
	FieldTranslation = "Translation"
	FieldExamples    = "Examples"
	FieldURL         = "URL"
	FieldAudio       = "Audio"
)

const (
	maxTranslations = 3
	verbClass       = "tegusõna"
)

// FormatTranslations keeps the first few translations, trims punctuation and
// marks English verbs as infinitives.
func FormatTranslations(translations []string, lang, wordClass string) []string {
	if len(translations) > maxTranslations {
		translations = translations[:maxTranslations]
	}
	out := make([]string, 0, len(translations))
	for _, t := range translations {
		t = strings.Trim(t, "!., ")
		if t == "" {
			continue
		}
		if lang == "en" && wordClass == verbClass {
			t = strings.Replace("to "+t, "to to ", "to ", 1)
		}
		out = append(out, t)
	}
	return out
}

// Fields maps an entry onto note fields. translations are expected to be
// formatted already.
func Fields(entry *models.WordEntry, translations []string) map[string]string {
	fields := map[string]string{
		FieldWordID:      entry.ID,
		FieldMorphology:  entry.EssentialFormsLine(true),
		FieldTranslation: strings.Join(translations, ", "),
		FieldURL:         entry.SourceURL,
		FieldAudio:       "",
	}
	if lexeme, ok := entry.PrimaryLexeme(); ok {
		fields[FieldDefinition] = strings.Join(lexeme.Definitions, "; ")
		fields[FieldRection] = strings.Join(lexeme.Rection, ", ")
		fields[FieldExamples] = strings.Join(lexeme.Examples, "<br>")
	} else {
		fields[FieldDefinition] = ""
		fields[FieldRection] = ""
		fields[FieldExamples] = ""
	}
	return fields
}

// Tags returns the tags put on a new note.
func Tags(entry *models.WordEntry) []string {
	tags := []string{"sonaveeb"}
	if entry.WordClass != "" {
		tags = append(tags, strings.ReplaceAll(entry.WordClass, " ", "_"))
	}
	return tags
}
