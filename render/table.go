package render

import (
	"fmt"
	"sort"

	"github.com/a-h/templ"

	"github.com/foomo/contentserver-pages/service/vo"
)

// RenderFunc turns the fields of one section into a renderable component. It
// must tolerate missing fields.
type RenderFunc func(fields vo.Fields) templ.Component

// Resolution is the outcome of a dispatch: either a renderer for a known kind or
// the explicit unknown branch carrying the raw kind.
type Resolution struct {
	Kind   vo.Kind
	Render RenderFunc
	Known  bool
}

// Table maps section kinds to renderers. It is built once and never mutated, so
// concurrent renders share it without locking.
type Table struct {
	renderers map[vo.Kind]RenderFunc
}

// Entry binds a kind to its renderer.
type Entry struct {
	Kind   vo.Kind
	Render RenderFunc
}

// NewTable builds a dispatch table. Duplicate kinds and nil renderers are errors.
func NewTable(entries ...Entry) (*Table, error) {
	t := &Table{renderers: make(map[vo.Kind]RenderFunc, len(entries))}
	for _, entry := range entries {
		if entry.Kind == "" {
			return nil, fmt.Errorf("render: kind is required")
		}
		if entry.Render == nil {
			return nil, fmt.Errorf("render: renderer for %q is required", entry.Kind)
		}
		if _, exists := t.renderers[entry.Kind]; exists {
			return nil, fmt.Errorf("render: renderer %q already registered", entry.Kind)
		}
		t.renderers[entry.Kind] = entry.Render
	}
	return t, nil
}

// Resolve dispatches kind. Unknown kinds resolve with Known == false.
func (t *Table) Resolve(kind vo.Kind) Resolution {
	render, ok := t.renderers[kind]
	if !ok {
		return Resolution{Kind: kind}
	}
	return Resolution{Kind: kind, Render: render, Known: true}
}

// Kinds returns a sorted list of dispatchable kinds.
func (t *Table) Kinds() []vo.Kind {
	kinds := make([]vo.Kind, 0, len(t.renderers))
	for kind := range t.renderers {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
