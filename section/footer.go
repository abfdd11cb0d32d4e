package section

import (
	"context"

	"github.com/a-h/templ"

	"github.com/foomo/contentserver-pages/render"
	"github.com/foomo/contentserver-pages/service/vo"
)

type Link struct {
	Label string `yaml:"label" json:"label"`
	Href  string `yaml:"href" json:"href"`
}

// FooterContent is the site wide footer rendered once per page.
type FooterContent struct {
	Text  string `yaml:"text" json:"text"`
	Links []Link `yaml:"links" json:"links"`
}

func Footer(content FooterContent) templ.Component {
	return render.Component(func(_ context.Context, w *render.Writer) {
		writeFooter(w, content)
	})
}

// InlineFooter renders a footer section placed inside the page body. Routes that
// render the global footer exclude this kind.
func InlineFooter(fields vo.Fields) templ.Component {
	content := FooterContent{Text: fields.String("text")}
	for _, link := range fields.List("links") {
		content.Links = append(content.Links, Link{Label: link.String("label"), Href: link.String("href")})
	}
	return Footer(content)
}

func writeFooter(w *render.Writer, content FooterContent) {
	w.Raw(`<footer class="site-footer">`)
	if len(content.Links) > 0 {
		w.Raw("<nav>")
		for _, link := range content.Links {
			writeLink(w, link.Label, link.Href, "footer-link")
		}
		w.Raw("</nav>")
	}
	w.Element("p", "footer-text", content.Text)
	w.Raw("</footer>")
}
