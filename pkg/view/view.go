package view

import (
	"context"
	"io"
	"maps"

	"github.com/a-h/templ"
)

// View is a named template bound to its data. It implements templ.Component
// so handlers can return it directly.
type View struct {
	engine *Engine
	name   string
	data   map[string]any
}

var _ templ.Component = (*View)(nil)

// New binds name and data to engine. A nil data map is treated as empty.
func New(engine *Engine, name string, data map[string]any) *View {
	if data == nil {
		data = make(map[string]any)
	}
	return &View{engine: engine, name: name, data: data}
}

func (v *View) Name() string {
	return v.name
}

// Data returns a copy of the template data.
func (v *View) Data() map[string]any {
	return maps.Clone(v.data)
}

// Set stores a template variable.
func (v *View) Set(key string, value any) *View {
	v.data[key] = value
	return v
}

// Render writes the rendered template to w.
func (v *View) Render(ctx context.Context, w io.Writer) error {
	if v.engine == nil {
		return ErrNoEngine
	}
	return v.engine.Render(ctx, w, v.name, v.data)
}

// RenderString renders into a string.
func (v *View) RenderString(ctx context.Context) (string, error) {
	if v.engine == nil {
		return "", ErrNoEngine
	}
	return v.engine.RenderString(ctx, v.name, v.data)
}

// String renders the view, returning "" if rendering fails.
// Use RenderString when the error matters.
func (v *View) String() string {
	s, err := v.RenderString(context.Background())
	if err != nil {
		return ""
	}
	return s
}
