package section

import (
	"context"
	"sync"

	"github.com/a-h/templ"
	"github.com/microcosm-cc/bluemonday"

	"github.com/foomo/contentserver-pages/render"
	"github.com/foomo/contentserver-pages/service/vo"
)

var (
	richTextOnce   sync.Once
	richTextPolicy *bluemonday.Policy
)

// richText sanitizes author supplied markup.
func richText() *bluemonday.Policy {
	richTextOnce.Do(func() {
		richTextPolicy = bluemonday.UGCPolicy()
	})
	return richTextPolicy
}

func open(w *render.Writer, class string) {
	w.Raw(`<section`)
	w.Attr("class", class)
	w.Raw(">")
}

func writeImage(w *render.Writer, img vo.Fields, class string) {
	url := img.String("url")
	if url == "" {
		return
	}
	w.Raw("<img")
	w.Attr("class", class)
	w.URL("src", url)
	w.Raw(` alt="`)
	w.Text(img.String("alt"))
	w.Raw(`" loading="lazy">`)
}

func writeLink(w *render.Writer, label, href, class string) {
	if label == "" {
		return
	}
	w.Raw("<a")
	w.Attr("class", class)
	w.URL("href", href)
	w.Raw(">")
	w.Text(label)
	w.Raw("</a>")
}

func FAQ(fields vo.Fields) templ.Component {
	return render.Component(func(_ context.Context, w *render.Writer) {
		open(w, "faq")
		w.Element("h2", "faq-heading", fields.String("heading"))
		faqs := fields.List("faqs")
		if len(faqs) > 0 {
			w.Raw("<dl>")
			for _, faq := range faqs {
				w.Raw("<dt>")
				w.Text(faq.String("question"))
				w.Raw("</dt><dd>")
				w.Raw(richText().Sanitize(faq.String("answer")))
				w.Raw("</dd>")
			}
			w.Raw("</dl>")
		}
		w.Raw("</section>")
	})
}

func CTA(fields vo.Fields) templ.Component {
	return render.Component(func(_ context.Context, w *render.Writer) {
		open(w, "cta")
		writeImage(w, fields.Object("backgroundImage"), "cta-background")
		w.Element("h2", "cta-title", fields.String("title"))
		w.Element("p", "cta-subtitle", fields.String("subtitle"))
		buttons := fields.List("buttons")
		if len(buttons) > 0 {
			w.Raw(`<div class="cta-buttons">`)
			for _, button := range buttons {
				writeLink(w, button.String("label"), button.String("href"), "button")
			}
			w.Raw("</div>")
		}
		w.Raw("</section>")
	})
}

func Testimonials(fields vo.Fields) templ.Component {
	return render.Component(func(_ context.Context, w *render.Writer) {
		open(w, "testimonials")
		w.Element("h2", "testimonials-heading", fields.String("heading"))
		for _, testimonial := range fields.List("testimonials") {
			w.Raw("<figure>")
			writeImage(w, testimonial.Object("avatar"), "avatar")
			w.Element("blockquote", "", testimonial.String("quote"))
			author := testimonial.String("author")
			if author != "" {
				w.Raw("<figcaption>")
				w.Text(author)
				if role := testimonial.String("role"); role != "" {
					w.Raw(", ")
					w.Text(role)
				}
				if company := testimonial.String("company"); company != "" {
					w.Raw(" @ ")
					w.Text(company)
				}
				w.Raw("</figcaption>")
			}
			w.Raw("</figure>")
		}
		w.Raw("</section>")
	})
}

func FeatureGrid(fields vo.Fields) templ.Component {
	return render.Component(func(_ context.Context, w *render.Writer) {
		open(w, "features")
		w.Element("h2", "features-heading", fields.String("heading"))
		w.Element("p", "features-subheading", fields.String("subheading"))
		features := fields.List("features")
		if len(features) > 0 {
			w.Raw("<ul>")
			for _, feature := range features {
				w.Raw("<li")
				w.Attr("data-icon", feature.String("icon"))
				w.Raw(">")
				w.Element("h3", "", feature.String("title"))
				w.Element("p", "", feature.String("description"))
				w.Raw("</li>")
			}
			w.Raw("</ul>")
		}
		w.Raw("</section>")
	})
}

func Stats(fields vo.Fields) templ.Component {
	return render.Component(func(_ context.Context, w *render.Writer) {
		open(w, "stats")
		w.Element("h2", "stats-heading", fields.String("heading"))
		stats := fields.List("stats")
		if len(stats) > 0 {
			w.Raw("<dl>")
			for _, stat := range stats {
				w.Raw("<div><dt>")
				w.Text(stat.String("label"))
				w.Raw("</dt><dd>")
				w.Text(stat.String("value"))
				w.Raw("</dd></div>")
			}
			w.Raw("</dl>")
		}
		w.Raw("</section>")
	})
}

func LogoCloud(fields vo.Fields) templ.Component {
	return render.Component(func(_ context.Context, w *render.Writer) {
		open(w, "logos")
		w.Element("h2", "logos-heading", fields.String("heading"))
		logos := fields.List("logos")
		if len(logos) > 0 {
			w.Raw("<ul>")
			for _, logo := range logos {
				img := logo.Object("image")
				if img != nil && img.String("alt") == "" {
					img = vo.Fields{"url": img.String("url"), "alt": logo.String("name")}
				}
				w.Raw("<li>")
				if href := logo.String("href"); href != "" {
					w.Raw("<a")
					w.URL("href", href)
					w.Raw(">")
					writeImage(w, img, "logo")
					w.Raw("</a>")
				} else {
					writeImage(w, img, "logo")
				}
				w.Raw("</li>")
			}
			w.Raw("</ul>")
		}
		w.Raw("</section>")
	})
}

func RichText(fields vo.Fields) templ.Component {
	return render.Component(func(_ context.Context, w *render.Writer) {
		open(w, "rich-text")
		w.Element("h2", "rich-text-heading", fields.String("heading"))
		if body := fields.String("body"); body != "" {
			w.Raw(`<div class="rich-text-body">`)
			w.Raw(richText().Sanitize(body))
			w.Raw("</div>")
		}
		w.Raw("</section>")
	})
}
