package schema

import (
	"strconv"
	"strings"

	"github.com/foomo/contentserver-pages/service/vo"
)

// PageType is the document type holding landing pages in the store.
const PageType = "page"

// Projection selects, for every item of a heterogeneous section list, the
// discriminant and key plus the fields registered for the item's kind. Unknown
// kinds select only the discriminant and key.
type Projection struct {
	registry *Registry
	hero     []Field
}

func BuildProjection(registry *Registry, hero []Field) Projection {
	return Projection{registry: registry, hero: hero}
}

// Sections renders the per-kind conditional projection in GROQ syntax.
func (p Projection) Sections() string {
	parts := []string{TypeField, KeyField}
	for _, kind := range p.registry.kinds {
		fields := p.registry.fields[kind]
		if len(fields) == 0 {
			continue
		}
		parts = append(parts, TypeField+" == "+strconv.Quote(string(kind))+" => "+groqObject(fields))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// PageQuery renders the single query that fetches a page by the $slug parameter.
func (p Projection) PageQuery() string {
	var b strings.Builder
	b.WriteString(`*[_type == "`)
	b.WriteString(PageType)
	b.WriteString(`" && slug.current == $slug][0]{title`)
	if len(p.hero) > 0 {
		b.WriteString(", hero")
		b.WriteString(groqObject(p.hero))
	}
	b.WriteString(", sections[]")
	b.WriteString(p.Sections())
	b.WriteString("}")
	return b.String()
}

// Apply projects one raw section in application code, mirroring Sections for
// stores without conditional projections.
func (p Projection) Apply(raw map[string]any) vo.Section {
	kind, _ := raw[TypeField].(string)
	key, _ := raw[KeyField].(string)
	section := vo.Section{Kind: vo.Kind(kind), Key: key}
	if fields, ok := p.registry.fields[section.Kind]; ok && len(fields) > 0 {
		section.Fields = vo.Fields(project(raw, fields))
	}
	return section
}

// Page decodes a raw page document. A nil raw document yields nil.
func (p Projection) Page(raw map[string]any) *vo.PageDocument {
	if raw == nil {
		return nil
	}
	doc := &vo.PageDocument{Sections: []vo.Section{}}
	doc.Title, _ = raw["title"].(string)
	if hero, ok := raw["hero"].(map[string]any); ok {
		if len(p.hero) > 0 {
			hero = project(hero, p.hero)
		}
		doc.Hero = decodeHero(hero)
	}
	if sections, ok := raw["sections"].([]any); ok {
		for _, item := range sections {
			obj, ok := item.(map[string]any)
			if !ok {
				continue
			}
			doc.Sections = append(doc.Sections, p.Apply(obj))
		}
	}
	return doc
}

func decodeHero(raw vo.Fields) *vo.HeroBlock {
	hero := &vo.HeroBlock{
		Title:    raw.String("title"),
		Subtitle: raw.String("subtitle"),
	}
	for _, cta := range raw.List("ctas") {
		hero.CTAs = append(hero.CTAs, vo.CTA{
			Label:   cta.String("label"),
			Href:    cta.String("href"),
			Variant: cta.String("variant"),
		})
	}
	for _, shot := range raw.List("screenshots") {
		image := shot.Object("image")
		hero.Screenshots = append(hero.Screenshots, vo.Screenshot{
			Image:   vo.Image{URL: image.String("url"), Alt: image.String("alt")},
			Caption: shot.String("caption"),
		})
	}
	if form := raw.Object("formConfig"); form != nil {
		hero.FormConfig = decodeFormConfig(form)
	}
	return hero
}

func decodeFormConfig(raw vo.Fields) *vo.FormConfig {
	config := &vo.FormConfig{
		ID:          raw.String("id"),
		Name:        raw.String("name"),
		Title:       raw.String("title"),
		Description: raw.String("description"),
		Type:        raw.String("type"),
	}
	for _, field := range raw.List("additionalFields") {
		required, _ := field["required"].(bool)
		formField := vo.FormField{
			Name:     field.String("name"),
			Label:    field.String("label"),
			Type:     field.String("type"),
			Required: required,
		}
		if options, ok := field["options"].([]any); ok {
			for _, option := range options {
				if s, ok := option.(string); ok {
					formField.Options = append(formField.Options, s)
				}
			}
		}
		config.AdditionalFields = append(config.AdditionalFields, formField)
	}
	return config
}
