package notetype

import "fmt"

// SchemaIntegrityError marks a note type that cannot be reconciled
// automatically. No write is attempted for it.
type SchemaIntegrityError struct {
	Schema Schema
	Reason string
}

func (e *SchemaIntegrityError) Error() string {
	return fmt.Sprintf("note type %q needs manual attention: %s", e.Schema.Name, e.Reason)
}
