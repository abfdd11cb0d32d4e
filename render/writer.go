package render

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Writer emits markup and keeps the first write error, so renderers can be
// written top to bottom and check Err once.
type Writer struct {
	w   io.Writer
	err error
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Raw writes trusted markup as is.
func (w *Writer) Raw(markup string) {
	if w.err != nil {
		return
	}
	_, w.err = io.WriteString(w.w, markup)
}

// Text writes escaped text.
func (w *Writer) Text(s string) {
	w.Raw(templ.EscapeString(s))
}

// Attr writes ` name="value"` with value escaped. Empty values are skipped.
func (w *Writer) Attr(name, value string) {
	if value == "" {
		return
	}
	w.Raw(" " + name + `="` + templ.EscapeString(value) + `"`)
}

// URL writes a sanitized URL attribute.
func (w *Writer) URL(name, href string) {
	if href == "" {
		return
	}
	w.Attr(name, string(templ.URL(href)))
}

// Element writes <tag attrs>text</tag> unless text is empty.
func (w *Writer) Element(tag, class, text string) {
	if text == "" {
		return
	}
	w.Raw("<" + tag)
	w.Attr("class", class)
	w.Raw(">")
	w.Text(text)
	w.Raw("</" + tag + ">")
}

// Component renders a nested component into the same stream.
func (w *Writer) Component(ctx context.Context, c templ.Component) {
	if w.err != nil || c == nil {
		return
	}
	w.err = c.Render(ctx, w.w)
}

func (w *Writer) Err() error {
	return w.err
}

// Component adapts a writer callback to templ.Component.
func Component(fn func(ctx context.Context, w *Writer)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := NewWriter(out)
		fn(ctx, w)
		return w.Err()
	})
}
