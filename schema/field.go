package schema

import (
	"strconv"
	"strings"
)

const (
	// TypeField carries the section kind on every item
	TypeField = "_type"
	// KeyField carries the stable item key
	KeyField = "_key"
)

// Field selects one value of a document. Children narrow objects and list items,
// Path fetches the value from another location (e.g. "asset->url") and stores it
// under Name.
type Field struct {
	Name     string
	Path     string
	List     bool
	Deref    bool
	Children []Field
}

// F selects a scalar or an opaque value.
func F(name string) Field {
	return Field{Name: name}
}

// As selects the value at path and projects it as name.
func As(name, path string) Field {
	return Field{Name: name, Path: path}
}

// Obj selects an object and narrows it to children.
func Obj(name string, children ...Field) Field {
	return Field{Name: name, Children: children}
}

// List selects an ordered list and narrows every object in it to children.
func List(name string, children ...Field) Field {
	return Field{Name: name, List: true, Children: children}
}

// Ref selects a reference resolved by the store and narrows the target.
func Ref(name string, children ...Field) Field {
	return Field{Name: name, Deref: true, Children: children}
}

// groq renders the selector in GROQ projection syntax.
func (f Field) groq() string {
	var b strings.Builder
	switch {
	case f.Path != "":
		b.WriteString(strconv.Quote(f.Name))
		b.WriteString(": ")
		b.WriteString(f.Path)
	case len(f.Children) == 0:
		b.WriteString(f.Name)
	default:
		b.WriteString(f.Name)
		if f.List {
			b.WriteString("[]")
		}
		if f.Deref {
			b.WriteString("->")
		}
		b.WriteString(groqObject(f.Children))
	}
	return b.String()
}

func groqObject(fields []Field) string {
	parts := make([]string, len(fields))
	for i, field := range fields {
		parts[i] = field.groq()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// project applies fields to raw and returns only the selected values. Missing
// values stay missing.
func project(raw map[string]any, fields []Field) map[string]any {
	out := make(map[string]any, len(fields))
	for _, field := range fields {
		value, ok := lookup(raw, field)
		if !ok {
			continue
		}
		out[field.Name] = field.narrow(value)
	}
	return out
}

func lookup(raw map[string]any, field Field) (any, bool) {
	if value, ok := raw[field.Name]; ok && value != nil {
		return value, true
	}
	if field.Path == "" {
		return nil, false
	}
	var current any = raw
	for _, segment := range splitPath(field.Path) {
		obj, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = obj[segment]
		if !ok || current == nil {
			return nil, false
		}
	}
	return current, true
}

func splitPath(path string) []string {
	return strings.FieldsFunc(path, func(r rune) bool {
		return r == '.' || r == '-' || r == '>'
	})
}

func (f Field) narrow(value any) any {
	if len(f.Children) == 0 {
		return value
	}
	switch v := value.(type) {
	case map[string]any:
		return project(v, f.Children)
	case []any:
		items := make([]any, 0, len(v))
		for _, item := range v {
			if obj, ok := item.(map[string]any); ok {
				items = append(items, project(obj, f.Children))
				continue
			}
			items = append(items, item)
		}
		return items
	}
	return value
}
