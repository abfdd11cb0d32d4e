package section

import (
	"context"

	"github.com/a-h/templ"

	"github.com/foomo/contentserver-pages/render"
	"github.com/foomo/contentserver-pages/service/vo"
)

// Hero is the fixed, non dispatched hero renderer.
func Hero(hero *vo.HeroBlock) templ.Component {
	return render.Component(func(_ context.Context, w *render.Writer) {
		if hero == nil {
			return
		}
		w.Raw(`<section class="hero">`)
		w.Element("h1", "hero-title", hero.Title)
		w.Element("p", "hero-subtitle", hero.Subtitle)
		if len(hero.CTAs) > 0 {
			w.Raw(`<div class="hero-ctas">`)
			for _, cta := range hero.CTAs {
				class := "button"
				if cta.Variant != "" {
					class += " button-" + cta.Variant
				}
				writeLink(w, cta.Label, cta.Href, class)
			}
			w.Raw("</div>")
		}
		for _, shot := range hero.Screenshots {
			w.Raw("<figure>")
			writeImage(w, vo.Fields{"url": shot.Image.URL, "alt": shot.Image.Alt}, "screenshot")
			w.Element("figcaption", "", shot.Caption)
			w.Raw("</figure>")
		}
		if hero.FormConfig != nil {
			writeForm(w, hero.FormConfig)
		}
		w.Raw("</section>")
	})
}

// writeForm renders the lead form markup; submissions are handled elsewhere.
func writeForm(w *render.Writer, form *vo.FormConfig) {
	w.Raw(`<form class="lead-form" method="post"`)
	w.Attr("data-form-id", form.ID)
	w.Attr("data-form-name", form.Name)
	w.Attr("data-form-type", form.Type)
	w.Raw(">")
	w.Element("h2", "lead-form-title", form.Title)
	w.Element("p", "lead-form-description", form.Description)
	writeInput(w, vo.FormField{Name: "name", Label: "Name", Type: "text", Required: true})
	writeInput(w, vo.FormField{Name: "email", Label: "Email", Type: "email", Required: true})
	for _, field := range form.AdditionalFields {
		writeInput(w, field)
	}
	w.Raw(`<button type="submit">Submit</button></form>`)
}

func writeInput(w *render.Writer, field vo.FormField) {
	if field.Name == "" {
		return
	}
	label := field.Label
	if label == "" {
		label = field.Name
	}
	w.Raw("<label>")
	w.Text(label)
	switch field.Type {
	case "textarea":
		w.Raw("<textarea")
		w.Attr("name", field.Name)
		writeRequired(w, field.Required)
		w.Raw("></textarea>")
	case "select":
		w.Raw("<select")
		w.Attr("name", field.Name)
		writeRequired(w, field.Required)
		w.Raw(">")
		for _, option := range field.Options {
			w.Raw("<option")
			w.Attr("value", option)
			w.Raw(">")
			w.Text(option)
			w.Raw("</option>")
		}
		w.Raw("</select>")
	default:
		inputType := field.Type
		if inputType == "" {
			inputType = "text"
		}
		w.Raw("<input")
		w.Attr("type", inputType)
		w.Attr("name", field.Name)
		writeRequired(w, field.Required)
		w.Raw(">")
	}
	w.Raw("</label>")
}

func writeRequired(w *render.Writer, required bool) {
	if required {
		w.Raw(" required")
	}
}
