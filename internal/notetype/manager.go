package notetype

import (
	"context"
	"fmt"
	"slices"

	"github.com/kpauljoseph/sonaveeb-anki/pkg/logger"
)

// Manager reconciles the note types in a store with the catalogue.
type Manager struct {
	store     Store
	catalogue *Catalogue
	logger    *logger.Logger
}

func NewManager(store Store, catalogue *Catalogue, log *logger.Logger) *Manager {
	if log == nil {
		log = logger.Discard()
	}
	return &Manager{
		store:     store,
		catalogue: catalogue,
		logger:    log.Named("notetype"),
	}
}

func (m *Manager) Catalogue() *Catalogue {
	return m.catalogue
}

// EnsureDefaultsExist creates every preset missing from the store and returns
// the names it created. Running it again creates nothing.
func (m *Manager) EnsureDefaultsExist(ctx context.Context) ([]string, error) {
	var created []string
	for _, p := range m.catalogue.Presets {
		existing, err := m.store.SchemaByName(ctx, p.Name)
		if err != nil {
			return created, fmt.Errorf("notetype: look up %q: %w", p.Name, err)
		}
		if existing != nil {
			continue
		}
		if _, err := m.store.CreateSchema(ctx, m.catalogue.NewSchema(p)); err != nil {
			return created, fmt.Errorf("notetype: create %q: %w", p.Name, err)
		}
		m.logger.Info("Created note type %q", p.Name)
		created = append(created, p.Name)
	}
	return created, nil
}

// ListValid returns marked note types whose fields match exactly, in order.
func (m *Manager) ListValid(ctx context.Context) ([]Schema, error) {
	intended, err := m.ListIntended(ctx)
	if err != nil {
		return nil, err
	}
	valid := make([]Schema, 0, len(intended))
	for _, s := range intended {
		if slices.Equal(s.Fields, m.catalogue.Fields) {
			valid = append(valid, s)
		}
	}
	return valid, nil
}

// ListIntended returns every marked note type, including outdated ones.
func (m *Manager) ListIntended(ctx context.Context) ([]Schema, error) {
	all, err := m.store.ListSchemas(ctx)
	if err != nil {
		return nil, fmt.Errorf("notetype: list: %w", err)
	}
	intended := make([]Schema, 0, len(all))
	for _, s := range all {
		if s.Marked {
			intended = append(intended, s)
		}
	}
	return intended, nil
}

// PendingUpdate diffs a note type against its target. Presets are compared in
// full; other marked note types only by fields, since their templates belong
// to the user.
func (m *Manager) PendingUpdate(s Schema) (Diff, error) {
	if err := m.catalogue.Check(s); err != nil {
		return Diff{}, err
	}
	return Compute(s, m.target(s)), nil
}

// target is the catalogue target for s, keeping the current sort field when
// the store cannot change it.
func (m *Manager) target(s Schema) Target {
	t := m.catalogue.Target(s.Name)
	if _, ok := m.store.(SortFieldSetter); !ok {
		t.SortField = s.SortField
	}
	return t
}

// ApplyUpdate brings a note type in line with its target and reports whether
// anything was written. Fields go first because templates may refer to
// fields that are being added.
func (m *Manager) ApplyUpdate(ctx context.Context, s Schema) (bool, error) {
	diff, err := m.PendingUpdate(s)
	if err != nil {
		return false, err
	}
	if diff.IsEmpty() {
		return false, nil
	}
	target := m.target(s)

	wrote, err := m.updateFields(ctx, s, target, diff)
	if err != nil {
		return wrote, fmt.Errorf("notetype: update fields of %q: %w", s.Name, err)
	}
	if target.Layout != nil {
		changed, err := m.updateTemplates(ctx, s, target.Layout, diff)
		wrote = wrote || changed
		if err != nil {
			return wrote, fmt.Errorf("notetype: update templates of %q: %w", s.Name, err)
		}
		if diff.StyleChanged {
			if err := m.store.SetStyle(ctx, s.ID, target.Layout.Style); err != nil {
				return wrote, fmt.Errorf("notetype: update style of %q: %w", s.Name, err)
			}
			wrote = true
		}
	}
	if wrote {
		m.logger.Info("Updated note type %q", s.Name)
	}
	return wrote, nil
}

func (m *Manager) updateFields(ctx context.Context, s Schema, target Target, diff Diff) (bool, error) {
	fields := slices.Clone(s.Fields)
	wrote := false

	for _, f := range diff.FieldsToAdd {
		m.logger.Debug("%s: add field %q", s.Name, f)
		if err := m.store.AddField(ctx, s.ID, f); err != nil {
			return wrote, err
		}
		wrote = true
		fields = append(fields, f)
	}
	for _, f := range diff.FieldsToRemove {
		m.logger.Debug("%s: remove field %q", s.Name, f)
		if err := m.store.RemoveField(ctx, s.ID, f); err != nil {
			return wrote, err
		}
		wrote = true
		fields = slices.DeleteFunc(fields, func(x string) bool { return x == f })
	}

	for want, f := range target.Fields {
		have := slices.Index(fields, f)
		if have == want {
			continue
		}
		m.logger.Debug("%s: move field %q from %d to %d", s.Name, f, have, want)
		if err := m.store.RepositionField(ctx, s.ID, f, want); err != nil {
			return wrote, err
		}
		wrote = true
		fields = slices.Delete(fields, have, have+1)
		fields = slices.Insert(fields, want, f)
	}

	if diff.SortFieldChanged {
		setter, ok := m.store.(SortFieldSetter)
		if !ok {
			return wrote, nil
		}
		m.logger.Debug("%s: sort by field %d", s.Name, target.SortField)
		if err := setter.SetSortField(ctx, s.ID, target.SortField); err != nil {
			return wrote, err
		}
		wrote = true
	}
	return wrote, nil
}

func (m *Manager) updateTemplates(ctx context.Context, s Schema, layout *Layout, diff Diff) (bool, error) {
	wrote := false
	if len(diff.TemplatesToUpdate) > 0 {
		var changed []Template
		for _, t := range layout.Templates {
			if slices.Contains(diff.TemplatesToUpdate, t.Name) {
				changed = append(changed, t)
			}
		}
		if err := m.store.UpdateTemplates(ctx, s.ID, changed); err != nil {
			return wrote, err
		}
		wrote = true
	}
	for _, t := range layout.Templates {
		if !slices.Contains(diff.TemplatesToAdd, t.Name) {
			continue
		}
		if err := m.store.AddTemplate(ctx, s.ID, t); err != nil {
			return wrote, err
		}
		wrote = true
	}
	for _, name := range diff.TemplatesToRemove {
		if err := m.store.RemoveTemplate(ctx, s.ID, name); err != nil {
			return wrote, err
		}
		wrote = true
	}
	return wrote, nil
}
