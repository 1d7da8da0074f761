package notetype

import (
	"context"
	"errors"
	"fmt"
)

// PlanItem is the pending update of one note type.
type PlanItem struct {
	Schema Schema
	Diff   Diff
}

// Plan collects the pending updates of every marked note type.
type Plan struct {
	Items []PlanItem
	// Blocked note types are never written to.
	Blocked []*SchemaIntegrityError
}

func (p *Plan) Required() bool {
	for _, it := range p.Items {
		if it.Diff.IsRequired() {
			return true
		}
	}
	return false
}

func (p *Plan) Consequential() bool {
	for _, it := range p.Items {
		if it.Diff.IsConsequential() {
			return true
		}
	}
	return false
}

func (p *Plan) Empty() bool {
	for _, it := range p.Items {
		if !it.Diff.IsEmpty() {
			return false
		}
	}
	return true
}

// Describe lists the changes per note type, skipping those without any.
func (p *Plan) Describe() []string {
	var lines []string
	for _, it := range p.Items {
		if it.Diff.IsEmpty() {
			continue
		}
		lines = append(lines, it.Schema.Name+":")
		for _, l := range it.Diff.Lines() {
			lines = append(lines, "  "+l)
		}
	}
	return lines
}

// PlanUpdates computes pending updates for all marked note types. Schemas
// failing the integrity check end up in Blocked.
func (m *Manager) PlanUpdates(ctx context.Context) (*Plan, error) {
	intended, err := m.ListIntended(ctx)
	if err != nil {
		return nil, err
	}
	plan := &Plan{}
	for _, s := range intended {
		diff, err := m.PendingUpdate(s)
		var integrity *SchemaIntegrityError
		switch {
		case errors.As(err, &integrity):
			m.logger.Warn("%v", integrity)
			plan.Blocked = append(plan.Blocked, integrity)
		case err != nil:
			return nil, err
		default:
			plan.Items = append(plan.Items, PlanItem{Schema: s, Diff: diff})
		}
	}
	return plan, nil
}

// ApplyPlan applies every non-empty item and returns how many note types
// were written.
func (m *Manager) ApplyPlan(ctx context.Context, plan *Plan) (int, error) {
	updated := 0
	for _, it := range plan.Items {
		if it.Diff.IsEmpty() {
			continue
		}
		changed, err := m.ApplyUpdate(ctx, it.Schema)
		if err != nil {
			return updated, err
		}
		if changed {
			updated++
		}
	}
	return updated, nil
}

// Confirm is asked before consequential changes are applied.
type Confirm func(plan *Plan) (bool, error)

// SyncResult is the outcome of Sync.
type SyncResult struct {
	Created  []string
	Plan     *Plan
	Applied  int
	Declined bool
	// Valid is what can be used for new notes afterwards.
	Valid []Schema
}

// Sync creates missing presets and brings all marked note types up to date.
// Cosmetic-only changes (template markup and style) are applied silently;
// consequential ones go through confirm. Declining a required update leaves no usable note types,
// declining an optional one keeps the current ones.
func (m *Manager) Sync(ctx context.Context, confirm Confirm) (*SyncResult, error) {
	created, err := m.EnsureDefaultsExist(ctx)
	if err != nil {
		return nil, err
	}
	plan, err := m.PlanUpdates(ctx)
	if err != nil {
		return nil, err
	}
	res := &SyncResult{Created: created, Plan: plan}

	if plan.Consequential() {
		ok, err := confirm(plan)
		if err != nil {
			return nil, fmt.Errorf("notetype: confirm update: %w", err)
		}
		if !ok {
			res.Declined = true
			if plan.Required() {
				m.logger.Warn("Required note type update declined")
				res.Valid = []Schema{}
				return res, nil
			}
			res.Valid = schemas(plan.Items)
			return res, nil
		}
	}

	if res.Applied, err = m.ApplyPlan(ctx, plan); err != nil {
		return nil, err
	}
	if res.Valid, err = m.ListValid(ctx); err != nil {
		return nil, err
	}
	return res, nil
}

func schemas(items []PlanItem) []Schema {
	out := make([]Schema, 0, len(items))
	for _, it := range items {
		out = append(out, it.Schema)
	}
	return out
}
