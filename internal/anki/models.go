package anki

import (
	"context"
	"fmt"
	"sort"

	"github.com/kpauljoseph/sonaveeb-anki/internal/notetype"
)

type modelField struct {
	Name string `json:"name"`
	Ord  int    `json:"ord"`
}

type modelTemplate struct {
	Name string `json:"name"`
	Ord  int    `json:"ord"`
	Qfmt string `json:"qfmt"`
	Afmt string `json:"afmt"`
}

type model struct {
	ID    int64           `json:"id"`
	Name  string          `json:"name"`
	Flds  []modelField    `json:"flds"`
	Tmpls []modelTemplate `json:"tmpls"`
	CSS   string          `json:"css"`
	Sortf int             `json:"sortf"`
}

func (m model) schema(marked bool) notetype.Schema {
	sort.Slice(m.Flds, func(i, j int) bool { return m.Flds[i].Ord < m.Flds[j].Ord })
	sort.Slice(m.Tmpls, func(i, j int) bool { return m.Tmpls[i].Ord < m.Tmpls[j].Ord })

	s := notetype.Schema{
		ID:        m.ID,
		Name:      m.Name,
		SortField: m.Sortf,
		Style:     m.CSS,
		Marked:    marked,
		Fields:    make([]string, 0, len(m.Flds)),
		Templates: make([]notetype.Template, 0, len(m.Tmpls)),
	}
	for _, f := range m.Flds {
		s.Fields = append(s.Fields, f.Name)
	}
	for _, t := range m.Tmpls {
		s.Templates = append(s.Templates, notetype.Template{Name: t.Name, Front: t.Qfmt, Back: t.Afmt})
	}
	return s
}

func (c *Client) modelNamesAndIDs(ctx context.Context) (map[string]int64, error) {
	var ids map[string]int64
	if err := c.call(ctx, "modelNamesAndIds", nil, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

func (c *Client) modelName(ctx context.Context, id int64) (string, error) {
	ids, err := c.modelNamesAndIDs(ctx)
	if err != nil {
		return "", err
	}
	for name, mid := range ids {
		if mid == id {
			return name, nil
		}
	}
	return "", fmt.Errorf("anki: no note type with id %d", id)
}

func (c *Client) findModels(ctx context.Context, names []string) ([]notetype.Schema, error) {
	if len(names) == 0 {
		return []notetype.Schema{}, nil
	}
	var models []model
	if err := c.call(ctx, "findModelsByName", map[string]interface{}{"modelNames": names}, &models); err != nil {
		return nil, err
	}
	marked, err := c.markers.Marked(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]notetype.Schema, 0, len(models))
	for _, m := range models {
		out = append(out, m.schema(marked[m.ID]))
	}
	return out, nil
}

func (c *Client) ListSchemas(ctx context.Context) ([]notetype.Schema, error) {
	ids, err := c.modelNamesAndIDs(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(ids))
	for name := range ids {
		names = append(names, name)
	}
	sort.Strings(names)
	return c.findModels(ctx, names)
}

func (c *Client) SchemaByName(ctx context.Context, name string) (*notetype.Schema, error) {
	ids, err := c.modelNamesAndIDs(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := ids[name]; !ok {
		return nil, nil
	}
	found, err := c.findModels(ctx, []string{name})
	if err != nil || len(found) == 0 {
		return nil, err
	}
	return &found[0], nil
}

func (c *Client) CreateSchema(ctx context.Context, s notetype.Schema) (notetype.Schema, error) {
	templates := make([]map[string]string, 0, len(s.Templates))
	for _, t := range s.Templates {
		templates = append(templates, map[string]string{"Name": t.Name, "Front": t.Front, "Back": t.Back})
	}

	var created model
	err := c.call(ctx, "createModel", map[string]interface{}{
		"modelName":     s.Name,
		"inOrderFields": s.Fields,
		"css":           s.Style,
		"isCloze":       false,
		"cardTemplates": templates,
	}, &created)
	if err != nil {
		return notetype.Schema{}, fmt.Errorf("failed to create model: %w", err)
	}
	c.logger.Info("Created note type %q (id %d)", s.Name, created.ID)

	if s.Marked {
		if err := c.markers.Mark(ctx, created.ID, s.Name); err != nil {
			return notetype.Schema{}, err
		}
	}
	s.ID = created.ID
	return s, nil
}

func (c *Client) AddField(ctx context.Context, id int64, name string) error {
	modelName, err := c.modelName(ctx, id)
	if err != nil {
		return err
	}
	return c.call(ctx, "modelFieldAdd", map[string]interface{}{
		"modelName": modelName,
		"fieldName": name,
	}, nil)
}

func (c *Client) RemoveField(ctx context.Context, id int64, name string) error {
	modelName, err := c.modelName(ctx, id)
	if err != nil {
		return err
	}
	return c.call(ctx, "modelFieldRemove", map[string]interface{}{
		"modelName": modelName,
		"fieldName": name,
	}, nil)
}

func (c *Client) RepositionField(ctx context.Context, id int64, name string, index int) error {
	modelName, err := c.modelName(ctx, id)
	if err != nil {
		return err
	}
	return c.call(ctx, "modelFieldReposition", map[string]interface{}{
		"modelName": modelName,
		"fieldName": name,
		"index":     index,
	}, nil)
}

func (c *Client) AddTemplate(ctx context.Context, id int64, tmpl notetype.Template) error {
	modelName, err := c.modelName(ctx, id)
	if err != nil {
		return err
	}
	return c.call(ctx, "modelTemplateAdd", map[string]interface{}{
		"modelName": modelName,
		"template": map[string]string{
			"Name":  tmpl.Name,
			"Front": tmpl.Front,
			"Back":  tmpl.Back,
		},
	}, nil)
}

func (c *Client) RemoveTemplate(ctx context.Context, id int64, name string) error {
	modelName, err := c.modelName(ctx, id)
	if err != nil {
		return err
	}
	return c.call(ctx, "modelTemplateRemove", map[string]interface{}{
		"modelName":    modelName,
		"templateName": name,
	}, nil)
}

func (c *Client) UpdateTemplates(ctx context.Context, id int64, tmpls []notetype.Template) error {
	modelName, err := c.modelName(ctx, id)
	if err != nil {
		return err
	}
	templates := map[string]map[string]string{}
	for _, t := range tmpls {
		templates[t.Name] = map[string]string{"Front": t.Front, "Back": t.Back}
	}
	return c.call(ctx, "updateModelTemplates", map[string]interface{}{
		"model": map[string]interface{}{
			"name":      modelName,
			"templates": templates,
		},
	}, nil)
}

func (c *Client) SetStyle(ctx context.Context, id int64, css string) error {
	modelName, err := c.modelName(ctx, id)
	if err != nil {
		return err
	}
	return c.call(ctx, "updateModelStyling", map[string]interface{}{
		"model": map[string]interface{}{
			"name": modelName,
			"css":  css,
		},
	}, nil)
}
