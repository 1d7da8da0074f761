package notetype

import "context"

// Store is the note type side of a flashcard collection.
type Store interface {
	ListSchemas(ctx context.Context) ([]Schema, error)
	// SchemaByName returns nil, nil when no note type has the name.
	SchemaByName(ctx context.Context, name string) (*Schema, error)
	// CreateSchema stores a new note type and returns it with its ID set.
	CreateSchema(ctx context.Context, schema Schema) (Schema, error)

	AddField(ctx context.Context, id int64, name string) error
	RemoveField(ctx context.Context, id int64, name string) error
	RepositionField(ctx context.Context, id int64, name string, index int) error

	AddTemplate(ctx context.Context, id int64, tmpl Template) error
	RemoveTemplate(ctx context.Context, id int64, name string) error
	UpdateTemplates(ctx context.Context, id int64, tmpls []Template) error
	SetStyle(ctx context.Context, id int64, css string) error
}

// SortFieldSetter is implemented by stores that can change the field a note
// type sorts by. Against other stores the sort field is left as it is and
// never reported as a difference.
type SortFieldSetter interface {
	SetSortField(ctx context.Context, id int64, index int) error
}
