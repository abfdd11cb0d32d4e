package markdown

import (
	"bytes"
	"fmt"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/net/html"

	"github.com/foomo/contentserver-pages/service/vo"
)

type Summary struct {
	Title    string   `json:"title"`
	Headings []string `json:"headings,omitempty"`
}

// Convert turns a rendered page into markdown. An empty selector converts the
// whole body.
func Convert(page []byte, selector string) (vo.Markdown, *Summary, error) {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return "", nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	if selector == "" {
		selector = "body"
	}
	selectedNode, err := findNode(doc, selector)
	if err != nil {
		return "", nil, fmt.Errorf("failed to extract node with selector '%s': %w", selector, err)
	}
	markdownBytes, err := htmltomarkdown.ConvertNode(selectedNode)
	if err != nil {
		return "", nil, fmt.Errorf("failed to convert HTML to markdown: %w", err)
	}
	summary := &Summary{
		Title:    extractTitle(doc),
		Headings: extractHeadings(selectedNode),
	}
	return vo.Markdown(markdownBytes), summary, nil
}
