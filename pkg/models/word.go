package models

// WordReference points at one homonym returned by a search. It is only valid
// for the lifetime of the search that produced it.
type WordReference struct {
	ID           string `json:"id"`
	URL          string `json:"url"`
	Language     string `json:"language"`
	DisplayName  string `json:"display_name"`
	Matches      string `json:"matches"`
	MatchSummary string `json:"match_summary"`
}

// LexemeEntry is one sense of a headword.
type LexemeEntry struct {
	ID            int                 `json:"id"`
	OrdinalMarker string              `json:"ordinal_marker"`
	Definitions   []string            `json:"definitions"`
	Rection       []string            `json:"rection"`
	Synonyms      []string            `json:"synonyms"`
	Translations  map[string][]string `json:"translations"`
	Examples      []string            `json:"examples"`
	Level         string              `json:"level,omitempty"`
}

// IsSubSense reports whether the ordinal marker denotes a nested sense ("2.1").
func (l LexemeEntry) IsSubSense() bool {
	for _, r := range l.OrdinalMarker {
		if r == '.' {
			return true
		}
	}
	return false
}

// WordEntry is a parsed dictionary article. An entry with an empty Headword
// means the article could not be located.
type WordEntry struct {
	ID                    string            `json:"id"`
	Headword              string            `json:"headword"`
	WordClass             string            `json:"word_class"`
	PronunciationAudioURL string            `json:"pronunciation_audio_url,omitempty"`
	SourceURL             string            `json:"source_url"`
	Lexemes               []LexemeEntry     `json:"lexemes"`
	Morphology            map[string]string `json:"morphology"`
	MorphologyAudio       map[string]string `json:"morphology_audio"`
}

// NewWordEntry returns an entry with its maps allocated.
func NewWordEntry() *WordEntry {
	return &WordEntry{
		Lexemes:         []LexemeEntry{},
		Morphology:      map[string]string{},
		MorphologyAudio: map[string]string{},
	}
}

func (w *WordEntry) Found() bool {
	return w != nil && w.Headword != ""
}

// PrimaryLexeme returns the first top-level sense, if any.
func (w *WordEntry) PrimaryLexeme() (LexemeEntry, bool) {
	if w == nil || len(w.Lexemes) == 0 {
		return LexemeEntry{}, false
	}
	return w.Lexemes[0], true
}
