package render

import (
	"context"

	"github.com/a-h/templ"
)

// Page renders the html document around an assembled block sequence. Hero
// blocks go into <header>, sections into <main>, the footer after it.
func Page(title string, blocks []Block) templ.Component {
	return Component(func(ctx context.Context, w *Writer) {
		w.Raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		w.Raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		w.Raw("<title>")
		w.Text(title)
		w.Raw("</title></head><body>")

		mainOpen := false
		for _, block := range blocks {
			switch block.Role {
			case RoleHero:
				w.Raw("<header>")
				w.Component(ctx, block.Component)
				w.Raw("</header>")
			case RoleSection:
				if !mainOpen {
					w.Raw("<main>")
					mainOpen = true
				}
				w.Raw("<div")
				w.Attr("data-kind", string(block.Kind))
				w.Attr("data-key", block.Key)
				w.Raw(">")
				w.Component(ctx, block.Component)
				w.Raw("</div>")
			case RoleFooter:
				if mainOpen {
					w.Raw("</main>")
					mainOpen = false
				}
				w.Component(ctx, block.Component)
			}
		}
		if mainOpen {
			w.Raw("</main>")
		}
		w.Raw("</body></html>")
	})
}

// NotFound renders the page shown for unknown or gated slugs.
func NotFound(footer templ.Component) templ.Component {
	blocks := []Block{{
		Key:  "not-found",
		Role: RoleSection,
		Component: Component(func(_ context.Context, w *Writer) {
			w.Element("h1", "not-found", "Page not found")
		}),
	}}
	if footer != nil {
		blocks = append(blocks, Block{Key: "footer", Role: RoleFooter, Component: footer})
	}
	return Page("Page not found", blocks)
}
