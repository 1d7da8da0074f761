// Package memstore is an in-memory flashcard collection used in tests.
package memstore

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/kpauljoseph/sonaveeb-anki/internal/cards"
	"github.com/kpauljoseph/sonaveeb-anki/internal/notetype"
)

var (
	_ notetype.Store           = (*Store)(nil)
	_ notetype.SortFieldSetter = (*Store)(nil)
	_ cards.NoteStore          = (*Store)(nil)
)

type Store struct {
	mu      sync.Mutex
	nextID  int64
	schemas map[int64]*notetype.Schema
	notes   map[int64]*cards.Note
	decks   map[string]bool
	writes  int
}

func New() *Store {
	return &Store{
		nextID:  1,
		schemas: map[int64]*notetype.Schema{},
		notes:   map[int64]*cards.Note{},
		decks:   map[string]bool{"Default": true},
	}
}

// Writes counts every mutating call that changed something.
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

// Put stores a schema verbatim, e.g. one edited by hand.
func (s *Store) Put(schema notetype.Schema) notetype.Schema {
	s.mu.Lock()
	defer s.mu.Unlock()
	if schema.ID == 0 {
		schema.ID = s.id()
	}
	cp := schema.Clone()
	s.schemas[schema.ID] = &cp
	return schema
}

func (s *Store) id() int64 {
	id := s.nextID
	s.nextID++
	return id
}

func (s *Store) schema(id int64) (*notetype.Schema, error) {
	sc, ok := s.schemas[id]
	if !ok {
		return nil, fmt.Errorf("memstore: no note type %d", id)
	}
	return sc, nil
}

func (s *Store) ListSchemas(_ context.Context) ([]notetype.Schema, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]notetype.Schema, 0, len(s.schemas))
	for _, sc := range s.schemas {
		out = append(out, sc.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) SchemaByName(_ context.Context, name string) (*notetype.Schema, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sc := range s.schemas {
		if sc.Name == name {
			cp := sc.Clone()
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *Store) CreateSchema(_ context.Context, schema notetype.Schema) (notetype.Schema, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sc := range s.schemas {
		if sc.Name == schema.Name {
			return notetype.Schema{}, fmt.Errorf("memstore: note type %q exists", schema.Name)
		}
	}
	schema.ID = s.id()
	cp := schema.Clone()
	s.schemas[schema.ID] = &cp
	s.writes++
	return schema, nil
}

func (s *Store) AddField(_ context.Context, id int64, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc, err := s.schema(id)
	if err != nil {
		return err
	}
	if sc.HasField(name) {
		return fmt.Errorf("memstore: field %q exists", name)
	}
	sc.Fields = append(sc.Fields, name)
	for _, n := range s.notes {
		if n.NoteType == sc.Name {
			n.Fields[name] = ""
		}
	}
	s.writes++
	return nil
}

func (s *Store) RemoveField(_ context.Context, id int64, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc, err := s.schema(id)
	if err != nil {
		return err
	}
	i := slices.Index(sc.Fields, name)
	if i < 0 {
		return fmt.Errorf("memstore: no field %q", name)
	}
	sc.Fields = slices.Delete(sc.Fields, i, i+1)
	if sc.SortField >= len(sc.Fields) {
		sc.SortField = 0
	}
	for _, n := range s.notes {
		if n.NoteType == sc.Name {
			delete(n.Fields, name)
		}
	}
	s.writes++
	return nil
}

func (s *Store) RepositionField(_ context.Context, id int64, name string, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc, err := s.schema(id)
	if err != nil {
		return err
	}
	i := slices.Index(sc.Fields, name)
	if i < 0 {
		return fmt.Errorf("memstore: no field %q", name)
	}
	if index < 0 || index >= len(sc.Fields) {
		return fmt.Errorf("memstore: position %d out of range", index)
	}
	sc.Fields = slices.Delete(sc.Fields, i, i+1)
	sc.Fields = slices.Insert(sc.Fields, index, name)
	s.writes++
	return nil
}

func (s *Store) SetSortField(_ context.Context, id int64, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc, err := s.schema(id)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(sc.Fields) {
		return fmt.Errorf("memstore: sort field %d out of range", index)
	}
	sc.SortField = index
	s.writes++
	return nil
}

func (s *Store) AddTemplate(_ context.Context, id int64, tmpl notetype.Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc, err := s.schema(id)
	if err != nil {
		return err
	}
	if _, ok := sc.Template(tmpl.Name); ok {
		return fmt.Errorf("memstore: template %q exists", tmpl.Name)
	}
	sc.Templates = append(sc.Templates, tmpl)
	s.writes++
	return nil
}

func (s *Store) RemoveTemplate(_ context.Context, id int64, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc, err := s.schema(id)
	if err != nil {
		return err
	}
	i := slices.IndexFunc(sc.Templates, func(t notetype.Template) bool { return t.Name == name })
	if i < 0 {
		return fmt.Errorf("memstore: no template %q", name)
	}
	if len(sc.Templates) == 1 {
		return fmt.Errorf("memstore: cannot remove the last template of %q", sc.Name)
	}
	sc.Templates = slices.Delete(sc.Templates, i, i+1)
	s.writes++
	return nil
}

func (s *Store) UpdateTemplates(_ context.Context, id int64, tmpls []notetype.Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc, err := s.schema(id)
	if err != nil {
		return err
	}
	for _, t := range tmpls {
		i := slices.IndexFunc(sc.Templates, func(x notetype.Template) bool { return x.Name == t.Name })
		if i < 0 {
			return fmt.Errorf("memstore: no template %q", t.Name)
		}
		sc.Templates[i] = t
	}
	s.writes++
	return nil
}

func (s *Store) SetStyle(_ context.Context, id int64, css string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc, err := s.schema(id)
	if err != nil {
		return err
	}
	sc.Style = css
	s.writes++
	return nil
}

func (s *Store) CreateDeck(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.decks[name] {
		s.decks[name] = true
		s.writes++
	}
	return nil
}

func (s *Store) FindNotes(_ context.Context, query string) ([]int64, error) {
	terms, err := parseQuery(query)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []int64
	for id, n := range s.notes {
		if matchesAll(n, terms) {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids, nil
}

func (s *Store) NotesInfo(_ context.Context, ids []int64) ([]cards.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]cards.Note, 0, len(ids))
	for _, id := range ids {
		n, ok := s.notes[id]
		if !ok {
			continue
		}
		out = append(out, copyNote(n))
	}
	return out, nil
}

func (s *Store) AddNote(_ context.Context, note cards.Note) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var sc *notetype.Schema
	for _, x := range s.schemas {
		if x.Name == note.NoteType {
			sc = x
		}
	}
	if sc == nil {
		return 0, fmt.Errorf("memstore: no note type %q", note.NoteType)
	}
	if !s.decks[note.Deck] {
		return 0, fmt.Errorf("memstore: no deck %q", note.Deck)
	}
	fields := map[string]string{}
	for _, f := range sc.Fields {
		fields[f] = note.Fields[f]
	}
	for k := range note.Fields {
		if !sc.HasField(k) {
			return 0, fmt.Errorf("memstore: note type %q has no field %q", sc.Name, k)
		}
	}
	note.ID = s.id()
	note.Fields = fields
	cp := copyNote(&note)
	s.notes[note.ID] = &cp
	s.writes++
	return note.ID, nil
}

func (s *Store) UpdateNoteFields(_ context.Context, id int64, fields map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notes[id]
	if !ok {
		return fmt.Errorf("memstore: no note %d", id)
	}
	for k, v := range fields {
		if _, ok := n.Fields[k]; !ok {
			return fmt.Errorf("memstore: note %d has no field %q", id, k)
		}
		n.Fields[k] = v
	}
	s.writes++
	return nil
}

func (s *Store) DeleteNotes(_ context.Context, ids []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.notes, id)
	}
	s.writes++
	return nil
}

func copyNote(n *cards.Note) cards.Note {
	cp := *n
	cp.Fields = make(map[string]string, len(n.Fields))
	for k, v := range n.Fields {
		cp.Fields[k] = v
	}
	cp.Tags = slices.Clone(n.Tags)
	return cp
}

type term struct {
	key   string
	value string
}

// parseQuery understands the subset of Anki search syntax used by this tool:
// space separated `key:value` terms, optionally quoted, ANDed together.
func parseQuery(q string) ([]term, error) {
	var (
		terms   []term
		cur     strings.Builder
		quoted  bool
		escaped bool
		pending bool
	)
	flush := func() error {
		if !pending {
			return nil
		}
		raw := cur.String()
		cur.Reset()
		pending = false
		key, value, ok := strings.Cut(raw, ":")
		if !ok || key == "" {
			return fmt.Errorf("memstore: unsupported search term %q", raw)
		}
		terms = append(terms, term{key: key, value: value})
		return nil
	}

	for _, r := range q {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
			pending = true
		case r == '"':
			quoted = !quoted
			pending = true
		case r == ' ' && !quoted:
			if err := flush(); err != nil {
				return nil, err
			}
		default:
			cur.WriteRune(r)
			pending = true
		}
	}
	if quoted {
		return nil, fmt.Errorf("memstore: unterminated quote in %q", q)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return terms, nil
}

func matchesAll(n *cards.Note, terms []term) bool {
	for _, t := range terms {
		if strings.EqualFold(t.key, "deck") {
			if n.Deck != t.value && !strings.HasPrefix(n.Deck, t.value+"::") {
				return false
			}
			continue
		}
		found := false
		for name, v := range n.Fields {
			if strings.EqualFold(name, t.key) && strings.EqualFold(v, t.value) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
