// Package cards turns resolved dictionary entries into flashcard notes.
package cards

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kpauljoseph/sonaveeb-anki/internal/translate"
	"github.com/kpauljoseph/sonaveeb-anki/pkg/logger"
	"github.com/kpauljoseph/sonaveeb-anki/pkg/models"
)

// ErrDuplicate is returned when the deck already holds a note for the word.
var ErrDuplicate = errors.New("note already exists")

// Translation is the translation line of a sense in one language.
type Translation struct {
	Words []string
	// External is set when the words come from machine translation.
	External bool
}

type Service struct {
	store  NoteStore
	cross  translate.Func
	logger *logger.Logger
}

// NewService wires a note store with a cross-translation fallback. cross may
// be nil, in which case missing translations stay empty.
func NewService(store NoteStore, cross translate.Func, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Discard()
	}
	return &Service{store: store, cross: cross, logger: log.Named("cards")}
}

// Translations returns the translations of the first sense into lang. When
// the dictionary has none for lang but has some for other languages, they
// are cross-translated once.
func (s *Service) Translations(ctx context.Context, entry *models.WordEntry, lang string) (Translation, error) {
	lexeme, ok := entry.PrimaryLexeme()
	if !ok {
		return Translation{}, nil
	}
	if words, ok := lexeme.Translations[lang]; ok {
		return Translation{Words: FormatTranslations(words, lang, entry.WordClass)}, nil
	}
	if len(lexeme.Translations) == 0 || s.cross == nil {
		return Translation{}, nil
	}

	s.logger.Debug("No %s translation for %q, translating from %d languages", lang, entry.Headword, len(lexeme.Translations))
	words, err := s.cross(ctx, lexeme.Translations, lang)
	if err != nil {
		return Translation{}, fmt.Errorf("cards: translate %q: %w", entry.Headword, err)
	}
	return Translation{Words: FormatTranslations(words, lang, entry.WordClass), External: true}, nil
}

// FindExisting returns notes for the entry in deck, looked up by word ID and,
// for notes created before word IDs were stored, by URL.
func (s *Service) FindExisting(ctx context.Context, deck string, entry *models.WordEntry) ([]int64, error) {
	if entry.ID != "" {
		ids, err := s.store.FindNotes(ctx, fieldQuery(FieldWordID, entry.ID, deck))
		if err != nil {
			return nil, fmt.Errorf("cards: find notes: %w", err)
		}
		if len(ids) > 0 {
			return ids, nil
		}
	}
	if entry.SourceURL == "" {
		return nil, nil
	}
	ids, err := s.store.FindNotes(ctx, fieldQuery(FieldURL, entry.SourceURL, deck))
	if err != nil {
		return nil, fmt.Errorf("cards: find notes: %w", err)
	}
	return ids, nil
}

func (s *Service) NoteExists(ctx context.Context, deck string, entry *models.WordEntry) (bool, error) {
	ids, err := s.FindExisting(ctx, deck, entry)
	return len(ids) > 0, err
}

// AddNote creates a note for entry in deck unless one exists already.
func (s *Service) AddNote(ctx context.Context, deck, noteType string, entry *models.WordEntry, tr Translation) (int64, error) {
	if !entry.Found() {
		return 0, fmt.Errorf("cards: entry %s has no headword", entry.ID)
	}
	if len(tr.Words) == 0 {
		return 0, fmt.Errorf("cards: no translation for %q", entry.Headword)
	}

	exists, err := s.NoteExists(ctx, deck, entry)
	if err != nil {
		return 0, err
	}
	if exists {
		s.logger.Info("Skipping %q, already in deck %s", entry.Headword, deck)
		return 0, ErrDuplicate
	}

	if err := s.store.CreateDeck(ctx, deck); err != nil {
		return 0, fmt.Errorf("cards: create deck %s: %w", deck, err)
	}

	id, err := s.store.AddNote(ctx, Note{
		Deck:     deck,
		NoteType: noteType,
		Fields:   Fields(entry, tr.Words),
		Tags:     Tags(entry),
	})
	if err != nil {
		return 0, fmt.Errorf("cards: add note for %q: %w", entry.Headword, err)
	}
	s.logger.Debug("Added note %d for %q to %s", id, entry.Headword, deck)
	return id, nil
}

// UpdateNote rewrites notes that already exist for entry when their fields
// differ, for example after the dictionary article changed. It returns how
// many notes were written.
func (s *Service) UpdateNote(ctx context.Context, deck string, entry *models.WordEntry, tr Translation) (int, error) {
	ids, err := s.FindExisting(ctx, deck, entry)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}
	notes, err := s.store.NotesInfo(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("cards: read notes: %w", err)
	}

	fields := Fields(entry, tr.Words)
	updated := 0
	for _, note := range notes {
		if sameFields(note.Fields, fields) {
			continue
		}
		if err := s.store.UpdateNoteFields(ctx, note.ID, fields); err != nil {
			return updated, fmt.Errorf("cards: update note %d: %w", note.ID, err)
		}
		updated++
	}
	return updated, nil
}

func sameFields(have, want map[string]string) bool {
	for k, v := range want {
		if have[k] != v {
			return false
		}
	}
	return true
}

// RemoveNotes deletes every note for entry in deck.
func (s *Service) RemoveNotes(ctx context.Context, deck string, entry *models.WordEntry) (int, error) {
	ids, err := s.FindExisting(ctx, deck, entry)
	if err != nil || len(ids) == 0 {
		return 0, err
	}
	if err := s.store.DeleteNotes(ctx, ids); err != nil {
		return 0, fmt.Errorf("cards: delete notes: %w", err)
	}
	return len(ids), nil
}

// fieldQuery builds `"Field:value" deck:"name"`.
func fieldQuery(field, value, deck string) string {
	return fmt.Sprintf(`"%s:%s" deck:"%s"`, escapeQuery(field), escapeQuery(value), escapeQuery(deck))
}

var queryEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, `*`, `\*`, `_`, `\_`)

func escapeQuery(s string) string {
	return queryEscaper.Replace(s)
}
