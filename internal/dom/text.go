package dom

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// TextContent concatenates every descendant text node of n
func TextContent(n *html.Node) string {
	return Select(n).Text()
}

// RenderedText approximates the text a browser would display for n.
// Script, style and template contents and hidden elements are skipped, line
// breaks become spaces and whitespace runs are collapsed.
func RenderedText(n *html.Node) string {
	if n == nil {
		return ""
	}
	if n.Type == html.TextNode {
		return strings.Join(strings.Fields(n.Data), " ")
	}
	var sb strings.Builder
	collectText(n, &sb)
	return strings.Join(strings.Fields(sb.String()), " ")
}

// DirectText returns the trimmed contents of n's direct text children
func DirectText(n *html.Node) []string {
	var parts []string
	Select(n).Contents().Each(func(_ int, c *goquery.Selection) {
		if c.Nodes[0].Type == html.TextNode {
			parts = append(parts, strings.TrimSpace(c.Text()))
		}
	})
	return parts
}

// collectText writes the displayed text below n. goquery's Text has no
// notion of hidden elements or block boundaries.
func collectText(n *html.Node, sb *strings.Builder) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			sb.WriteString(c.Data)
		case html.ElementNode:
			if hiddenElement(c) {
				continue
			}
			if c.DataAtom == atom.Br {
				sb.WriteByte(' ')
				continue
			}
			collectText(c, sb)
			if blockElement(c) {
				sb.WriteByte(' ')
			}
		}
	}
}

func hiddenElement(n *html.Node) bool {
	switch n.DataAtom {
	case atom.Script, atom.Style, atom.Noscript, atom.Template, atom.Head:
		return true
	}
	if _, ok := Attr(n, "hidden"); ok {
		return true
	}
	style, _ := Attr(n, "style")
	style = strings.ReplaceAll(strings.ToLower(style), " ", "")
	return strings.Contains(style, "display:none")
}

func blockElement(n *html.Node) bool {
	switch n.DataAtom {
	case atom.Div, atom.P, atom.Li, atom.Tr, atom.Td, atom.Th, atom.Dd, atom.Dt,
		atom.Section, atom.Article, atom.Header, atom.Footer, atom.H1, atom.H2,
		atom.H3, atom.H4, atom.H5, atom.H6, atom.Ul, atom.Ol, atom.Table:
		return true
	}
	return false
}
