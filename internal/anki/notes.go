package anki

import (
	"context"
	"fmt"

	"github.com/kpauljoseph/sonaveeb-anki/internal/cards"
)

type Note struct {
	DeckName  string                 `json:"deckName"`
	ModelName string                 `json:"modelName"`
	Fields    map[string]string      `json:"fields"`
	Options   map[string]interface{} `json:"options"`
	Tags      []string               `json:"tags"`
}

type NoteInfo struct {
	NoteId    int64                `json:"noteId"`
	ModelName string               `json:"modelName"`
	Fields    map[string]NoteField `json:"fields"`
	Tags      []string             `json:"tags"`
	Cards     []int64              `json:"cards"`
}

type NoteField struct {
	Value string `json:"value"`
	Order int    `json:"order"`
}

func (c *Client) CreateDeck(ctx context.Context, deckName string) error {
	c.logger.Debug("Creating deck: %s", deckName)
	return c.call(ctx, "createDeck", map[string]string{"deck": NormalizeDeckName(deckName)}, nil)
}

func (c *Client) FindNotes(ctx context.Context, query string) ([]int64, error) {
	var ids []int64
	if err := c.call(ctx, "findNotes", map[string]interface{}{"query": query}, &ids); err != nil {
		return nil, fmt.Errorf("failed to search notes: %w", err)
	}
	return ids, nil
}

// NotesInfo reads notes by ID. AnkiConnect does not report the deck of a
// note, so Deck is left empty.
func (c *Client) NotesInfo(ctx context.Context, ids []int64) ([]cards.Note, error) {
	var infos []NoteInfo
	if err := c.call(ctx, "notesInfo", map[string]interface{}{"notes": ids}, &infos); err != nil {
		return nil, fmt.Errorf("failed to read notes: %w", err)
	}
	notes := make([]cards.Note, 0, len(infos))
	for _, info := range infos {
		if info.NoteId == 0 {
			continue
		}
		fields := make(map[string]string, len(info.Fields))
		for name, f := range info.Fields {
			fields[name] = f.Value
		}
		notes = append(notes, cards.Note{
			ID:       info.NoteId,
			NoteType: info.ModelName,
			Fields:   fields,
			Tags:     info.Tags,
		})
	}
	return notes, nil
}

func (c *Client) AddNote(ctx context.Context, note cards.Note) (int64, error) {
	var id int64
	err := c.call(ctx, "addNote", map[string]interface{}{
		"note": Note{
			DeckName:  NormalizeDeckName(note.Deck),
			ModelName: note.NoteType,
			Fields:    note.Fields,
			Options:   map[string]interface{}{"allowDuplicate": false},
			Tags:      note.Tags,
		},
	}, &id)
	if err != nil {
		return 0, fmt.Errorf("failed to add note: %w", err)
	}
	return id, nil
}

func (c *Client) UpdateNoteFields(ctx context.Context, id int64, fields map[string]string) error {
	return c.call(ctx, "updateNoteFields", map[string]interface{}{
		"note": map[string]interface{}{
			"id":     id,
			"fields": fields,
		},
	}, nil)
}

func (c *Client) DeleteNotes(ctx context.Context, ids []int64) error {
	return c.call(ctx, "deleteNotes", map[string]interface{}{"notes": ids}, nil)
}
