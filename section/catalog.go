// Package section is the single source of truth for section kinds: every
// definition names the fields fetched for a kind and the renderer dispatched for
// it. The schema registry and the dispatch table are both derived from here.
package section

import (
	"fmt"

	"github.com/foomo/contentserver-pages/render"
	"github.com/foomo/contentserver-pages/schema"
	"github.com/foomo/contentserver-pages/service/vo"
)

const (
	KindFAQ         vo.Kind = "faqSection"
	KindCTA         vo.Kind = "ctaSection"
	KindTestimonial vo.Kind = "testimonialSection"
	KindFeatureGrid vo.Kind = "featureGridSection"
	KindStats       vo.Kind = "statsSection"
	KindLogoCloud   vo.Kind = "logoCloudSection"
	KindRichText    vo.Kind = "richTextSection"
	KindFooter      vo.Kind = "footerSection"
)

type Definition struct {
	Kind   vo.Kind
	Fields []schema.Field
	Render render.RenderFunc
}

type Catalog struct {
	definitions []Definition
}

func NewCatalog(definitions ...Definition) *Catalog {
	c := &Catalog{definitions: make([]Definition, len(definitions))}
	copy(c.definitions, definitions)
	return c
}

func image(name string) schema.Field {
	return schema.Obj(name, schema.As("url", "asset->url"), schema.F("alt"))
}

// Default returns the built-in landing page sections.
func Default() *Catalog {
	return NewCatalog(
		Definition{
			Kind: KindFAQ,
			Fields: []schema.Field{
				schema.F("heading"),
				schema.List("faqs", schema.F("question"), schema.F("answer")),
			},
			Render: FAQ,
		},
		Definition{
			Kind: KindCTA,
			Fields: []schema.Field{
				schema.F("title"),
				schema.F("subtitle"),
				schema.List("buttons", schema.F("label"), schema.F("href")),
				image("backgroundImage"),
			},
			Render: CTA,
		},
		Definition{
			Kind: KindTestimonial,
			Fields: []schema.Field{
				schema.F("heading"),
				schema.List("testimonials",
					schema.F("quote"), schema.F("author"), schema.F("role"), schema.F("company"), image("avatar"),
				),
			},
			Render: Testimonials,
		},
		Definition{
			Kind: KindFeatureGrid,
			Fields: []schema.Field{
				schema.F("heading"),
				schema.F("subheading"),
				schema.List("features", schema.F("title"), schema.F("description"), schema.F("icon")),
			},
			Render: FeatureGrid,
		},
		Definition{
			Kind: KindStats,
			Fields: []schema.Field{
				schema.F("heading"),
				schema.List("stats", schema.F("value"), schema.F("label")),
			},
			Render: Stats,
		},
		Definition{
			Kind: KindLogoCloud,
			Fields: []schema.Field{
				schema.F("heading"),
				schema.List("logos", schema.F("name"), schema.F("href"), image("image")),
			},
			Render: LogoCloud,
		},
		Definition{
			Kind: KindRichText,
			Fields: []schema.Field{
				schema.F("heading"),
				schema.F("body"),
			},
			Render: RichText,
		},
		Definition{
			Kind: KindFooter,
			Fields: []schema.Field{
				schema.F("text"),
				schema.List("links", schema.F("label"), schema.F("href")),
			},
			Render: InlineFooter,
		},
	)
}

// HeroFields selects the hero block, resolving the form reference in the store.
func HeroFields() []schema.Field {
	return []schema.Field{
		schema.F("title"),
		schema.F("subtitle"),
		schema.List("ctas", schema.F("label"), schema.F("href"), schema.F("variant")),
		schema.List("screenshots", image("image"), schema.F("caption")),
		schema.Ref("formConfig",
			schema.As("id", "_id"),
			schema.F("name"),
			schema.F("title"),
			schema.F("description"),
			schema.F("type"),
			schema.List("additionalFields",
				schema.F("name"), schema.F("label"), schema.F("type"), schema.F("required"), schema.F("options"),
			),
		),
	}
}

func (c *Catalog) Definitions() []Definition {
	definitions := make([]Definition, len(c.definitions))
	copy(definitions, c.definitions)
	return definitions
}

// Registry derives the content schema registry.
func (c *Catalog) Registry() (*schema.Registry, error) {
	entries := make([]schema.Entry, len(c.definitions))
	for i, definition := range c.definitions {
		entries[i] = schema.Entry{Kind: definition.Kind, Fields: definition.Fields}
	}
	registry, err := schema.NewRegistry(entries...)
	if err != nil {
		return nil, fmt.Errorf("section catalog: %w", err)
	}
	return registry, nil
}

// Table derives the dispatch table.
func (c *Catalog) Table() (*render.Table, error) {
	entries := make([]render.Entry, len(c.definitions))
	for i, definition := range c.definitions {
		entries[i] = render.Entry{Kind: definition.Kind, Render: definition.Render}
	}
	table, err := render.NewTable(entries...)
	if err != nil {
		return nil, fmt.Errorf("section catalog: %w", err)
	}
	return table, nil
}

// Projection derives the page projection including the hero block.
func (c *Catalog) Projection() (schema.Projection, error) {
	registry, err := c.Registry()
	if err != nil {
		return schema.Projection{}, err
	}
	return schema.BuildProjection(registry, HeroFields()), nil
}
