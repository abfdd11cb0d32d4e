package section

import (
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foomo/contentserver-pages/render"
	"github.com/foomo/contentserver-pages/service/vo"
)

func renderString(t *testing.T, c templ.Component) string {
	t.Helper()
	var b strings.Builder
	require.NoError(t, c.Render(context.Background(), &b))
	return b.String()
}

func TestCatalogRegistryAndTableStayInLockstep(t *testing.T) {
	catalog := Default()

	registry, err := catalog.Registry()
	require.NoError(t, err)
	table, err := catalog.Table()
	require.NoError(t, err)

	for _, kind := range registry.Kinds() {
		assert.True(t, table.Resolve(kind).Known, "kind %s has no renderer", kind)
	}
	assert.Len(t, table.Kinds(), len(registry.Kinds()))
}

func TestCatalogRejectsDuplicateKinds(t *testing.T) {
	catalog := NewCatalog(
		Definition{Kind: KindFAQ, Render: FAQ},
		Definition{Kind: KindFAQ, Render: FAQ},
	)

	_, err := catalog.Registry()
	require.Error(t, err)
	_, err = catalog.Table()
	require.Error(t, err)
}

func TestCatalogProjection(t *testing.T) {
	projection, err := Default().Projection()
	require.NoError(t, err)

	query := projection.PageQuery()
	for _, definition := range Default().Definitions() {
		assert.Contains(t, query, `_type == "`+string(definition.Kind)+`"`)
	}
	assert.Contains(t, query, `formConfig->{"id": _id, name, title, description, type, additionalFields[]{name, label, type, required, options}}`)
}

func TestRenderersTolerateMissingFields(t *testing.T) {
	for _, definition := range Default().Definitions() {
		t.Run(string(definition.Kind), func(t *testing.T) {
			assert.NotPanics(t, func() {
				renderString(t, definition.Render(nil))
				renderString(t, definition.Render(vo.Fields{}))
			})
		})
	}
}

func TestFAQ(t *testing.T) {
	html := renderString(t, FAQ(vo.Fields{
		"heading": "FAQ",
		"faqs": []any{
			map[string]any{"question": "Q1", "answer": "A1"},
			map[string]any{"question": "<i>Q2</i>", "answer": "<script>alert(1)</script><b>ok</b>"},
		},
	}))

	assert.Contains(t, html, `<h2 class="faq-heading">FAQ</h2>`)
	assert.Contains(t, html, "<dt>Q1</dt><dd>A1</dd>")
	assert.Contains(t, html, "&lt;i&gt;Q2&lt;/i&gt;")
	assert.Contains(t, html, "<b>ok</b>")
	assert.NotContains(t, html, "<script")
}

func TestCTA(t *testing.T) {
	html := renderString(t, CTA(vo.Fields{
		"title": "Start today",
		"buttons": []any{
			map[string]any{"label": "Book a call", "href": "/book"},
			map[string]any{"label": "Bad", "href": "javascript:alert(1)"},
		},
		"backgroundImage": map[string]any{"url": "https://cdn.example.com/bg.png", "alt": "bg"},
	}))

	assert.Contains(t, html, `<a class="button" href="/book">Book a call</a>`)
	assert.Contains(t, html, `src="https://cdn.example.com/bg.png" alt="bg"`)
	assert.NotContains(t, html, "javascript:")
	assert.NotContains(t, html, "cta-subtitle")
}

func TestTestimonialsStatsFeaturesLogos(t *testing.T) {
	testimonials := renderString(t, Testimonials(vo.Fields{
		"testimonials": []any{map[string]any{"quote": "Great", "author": "Sam", "company": "Acme"}},
	}))
	assert.Contains(t, testimonials, "<blockquote>Great</blockquote><figcaption>Sam @ Acme</figcaption>")

	stats := renderString(t, Stats(vo.Fields{"stats": []any{map[string]any{"value": "98%", "label": "retention"}}}))
	assert.Contains(t, stats, "<dt>retention</dt><dd>98%</dd>")

	features := renderString(t, FeatureGrid(vo.Fields{"features": []any{map[string]any{"title": "Fast", "icon": "bolt"}}}))
	assert.Contains(t, features, `<li data-icon="bolt"><h3>Fast</h3></li>`)

	logos := renderString(t, LogoCloud(vo.Fields{"logos": []any{
		map[string]any{"name": "Acme", "href": "https://acme.test", "image": map[string]any{"url": "https://cdn.example.com/acme.svg"}},
	}}))
	assert.Contains(t, logos, `<a href="https://acme.test"><img class="logo" src="https://cdn.example.com/acme.svg" alt="Acme" loading="lazy"></a>`)
}

func TestRichTextSanitizes(t *testing.T) {
	html := renderString(t, RichText(vo.Fields{"body": `<p onclick="x()">Hello <a href="https://example.com">there</a></p>`}))

	assert.Contains(t, html, "Hello")
	assert.NotContains(t, html, "onclick")
}

func TestHero(t *testing.T) {
	html := renderString(t, Hero(&vo.HeroBlock{
		Title: "Hire engineers",
		CTAs:  []vo.CTA{{Label: "Start", Href: "/start", Variant: "primary"}},
		Screenshots: []vo.Screenshot{
			{Image: vo.Image{URL: "https://cdn.example.com/s.png", Alt: "dashboard"}, Caption: "Dashboard"},
		},
		FormConfig: &vo.FormConfig{
			ID:   "form-1",
			Name: "lead",
			Type: "contact",
			AdditionalFields: []vo.FormField{
				{Name: "budget", Type: "select", Options: []string{"<5k", "5k+"}, Required: true},
				{Name: "notes", Type: "textarea"},
			},
		},
	}))

	assert.Contains(t, html, `<h1 class="hero-title">Hire engineers</h1>`)
	assert.NotContains(t, html, "hero-subtitle")
	assert.Contains(t, html, `<a class="button button-primary" href="/start">Start</a>`)
	assert.Contains(t, html, `<figcaption>Dashboard</figcaption>`)
	assert.Contains(t, html, `data-form-id="form-1"`)
	assert.Contains(t, html, `<select name="budget" required><option value="&lt;5k">&lt;5k</option>`)
	assert.Contains(t, html, `<textarea name="notes"></textarea>`)

	assert.Empty(t, renderString(t, Hero(nil)))
}

func TestFooter(t *testing.T) {
	html := renderString(t, Footer(FooterContent{
		Text:  "© Example",
		Links: []Link{{Label: "Imprint", Href: "/imprint"}},
	}))
	assert.Equal(t, `<footer class="site-footer"><nav><a class="footer-link" href="/imprint">Imprint</a></nav><p class="footer-text">© Example</p></footer>`, html)

	inline := renderString(t, InlineFooter(vo.Fields{"text": "old footer"}))
	assert.Contains(t, inline, "old footer")
}

func TestExampleScenarioEndToEnd(t *testing.T) {
	catalog := Default()
	projection, err := catalog.Projection()
	require.NoError(t, err)
	table, err := catalog.Table()
	require.NoError(t, err)

	doc := projection.Page(map[string]any{
		"title": "X",
		"hero":  nil,
		"sections": []any{
			map[string]any{"_type": "faqSection", "_key": "a", "heading": "FAQ", "faqs": []any{
				map[string]any{"question": "Q1", "answer": "A1"},
			}},
			map[string]any{"_type": "mysteryType", "_key": "b"},
			map[string]any{"_type": "footerSection", "_key": "c", "text": "old footer"},
		},
	})
	require.NotNil(t, doc)

	assembler := render.NewAssembler(table, Hero, Footer(FooterContent{Text: "global footer"}))
	blocks := assembler.Assemble(doc, render.Options{Exclude: []vo.Kind{KindFooter}})
	html := renderString(t, render.Page(doc.Title, blocks))

	assert.Contains(t, html, "<dt>Q1</dt><dd>A1</dd>")
	assert.Equal(t, 1, strings.Count(html, "<footer"))
	assert.Contains(t, html, "global footer")
	assert.NotContains(t, html, "old footer")
	assert.NotContains(t, html, "<header>")
}
