package cards

import "context"

// Note is a flashcard note as stored in the collection.
type Note struct {
	ID       int64
	Deck     string
	NoteType string
	Fields   map[string]string
	Tags     []string
}

// NoteStore is the note side of a flashcard collection. FindNotes takes an
// Anki search query; it must support exact field matches and deck:"name".
type NoteStore interface {
	CreateDeck(ctx context.Context, name string) error
	FindNotes(ctx context.Context, query string) ([]int64, error)
	NotesInfo(ctx context.Context, ids []int64) ([]Note, error)
	AddNote(ctx context.Context, note Note) (int64, error)
	UpdateNoteFields(ctx context.Context, id int64, fields map[string]string) error
	DeleteNotes(ctx context.Context, ids []int64) error
}
