package markdown

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// findNode supports the selectors the page layout needs: #id, .class and tag.
func findNode(doc *html.Node, selector string) (*html.Node, error) {
	var match func(*html.Node) bool
	switch {
	case strings.HasPrefix(selector, "#"):
		id := strings.TrimPrefix(selector, "#")
		match = func(n *html.Node) bool { return attr(n, "id") == id }
	case strings.HasPrefix(selector, "."):
		class := strings.TrimPrefix(selector, ".")
		match = func(n *html.Node) bool {
			for _, c := range strings.Fields(attr(n, "class")) {
				if c == class {
					return true
				}
			}
			return false
		}
	default:
		match = func(n *html.Node) bool { return n.Data == selector }
	}
	if n := walk(doc, match); n != nil {
		return n, nil
	}
	return nil, fmt.Errorf("element matching %q not found", selector)
}

func walk(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := walk(c, match); found != nil {
			return found
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return strings.TrimSpace(b.String())
}

func extractTitle(doc *html.Node) string {
	if n := walk(doc, func(n *html.Node) bool { return n.Data == "title" }); n != nil {
		return textContent(n)
	}
	return ""
}

// extractHeadings collects h1 and h2 texts in document order.
func extractHeadings(doc *html.Node) []string {
	var headings []string
	var find func(*html.Node)
	find = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "h1" || n.Data == "h2") {
			if text := textContent(n); text != "" {
				headings = append(headings, text)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			find(c)
		}
	}
	find(doc)
	return headings
}
