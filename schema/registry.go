package schema

import (
	"fmt"
	"strings"

	"github.com/foomo/contentserver-pages/service/vo"
)

// Entry registers the fields a section of one kind carries.
type Entry struct {
	Kind   vo.Kind
	Fields []Field
}

// Registry enumerates the known section kinds and their field selectors. It is
// read-only once constructed and safe to share between renders.
type Registry struct {
	kinds  []vo.Kind
	fields map[vo.Kind][]Field
}

// NewRegistry builds a registry preserving entry order.
func NewRegistry(entries ...Entry) (*Registry, error) {
	r := &Registry{
		kinds:  make([]vo.Kind, 0, len(entries)),
		fields: make(map[vo.Kind][]Field, len(entries)),
	}
	for _, entry := range entries {
		kind := vo.Kind(strings.TrimSpace(string(entry.Kind)))
		if kind == "" {
			return nil, fmt.Errorf("schema: kind is required")
		}
		if _, exists := r.fields[kind]; exists {
			return nil, fmt.Errorf("schema: kind %q already registered", kind)
		}
		fields := make([]Field, len(entry.Fields))
		copy(fields, entry.Fields)
		r.kinds = append(r.kinds, kind)
		r.fields[kind] = fields
	}
	return r, nil
}

// Kinds returns the registered kinds in registration order.
func (r *Registry) Kinds() []vo.Kind {
	kinds := make([]vo.Kind, len(r.kinds))
	copy(kinds, r.kinds)
	return kinds
}

// Has reports whether kind is registered.
func (r *Registry) Has(kind vo.Kind) bool {
	_, ok := r.fields[kind]
	return ok
}

// Fields returns the selectors of kind, nil for unknown kinds.
func (r *Registry) Fields(kind vo.Kind) []Field {
	fields, ok := r.fields[kind]
	if !ok {
		return nil
	}
	out := make([]Field, len(fields))
	copy(out, fields)
	return out
}

// Describe renders the selectors of kind in GROQ syntax, e.g. for diagnostics.
func (r *Registry) Describe(kind vo.Kind) string {
	fields, ok := r.fields[kind]
	if !ok {
		return ""
	}
	return groqObject(fields)
}
