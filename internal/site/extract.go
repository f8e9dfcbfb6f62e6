package site

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"sjsage522/pricecontext/internal/dom"
)

// minDirectTextLength is the length direct text must exceed to be preferred
// over the element's rendered text
const minDirectTextLength = 5

// Source tells where extracted text came from
type Source int

const (
	// SourceOwn is text owned by the element itself: a leaf's contents, its
	// direct text nodes or a dedicated price child
	SourceOwn Source = iota
	// SourceRendered is the rendered text of the element's whole subtree,
	// which a nested candidate may already cover
	SourceRendered
)

// Extractor yields the text of a candidate element that should be parsed
type Extractor interface {
	Extract(n *html.Node) (string, Source)
}

// genericExtractor prefers cheap raw text on leaf elements and the element's
// own text nodes on containers
type genericExtractor struct{}

func (genericExtractor) Extract(n *html.Node) (string, Source) {
	if n == nil {
		return "", SourceOwn
	}

	var text string
	source := SourceOwn
	children := dom.ElementChildren(n)
	if len(children) == 0 || (len(children) == 1 && children[0].DataAtom == atom.Br) {
		text = dom.TextContent(n)
	} else {
		direct := strings.Join(dom.DirectText(n), " ")
		if utf8.RuneCountInString(direct) > minDirectTextLength {
			text = direct
		} else {
			text = renderedOrRaw(n)
			source = SourceRendered
		}
	}

	return finish(n, text), source
}

// offscreenExtractor reads hosts that keep a clean copy of the price in a
// visually hidden child of the price container
type offscreenExtractor struct {
	clean     cascadia.Selector
	container cascadia.Selector
	text      cascadia.Selector
}

func newOffscreenExtractor(def offscreenDef) (*offscreenExtractor, error) {
	clean, err := cascadia.Compile(def.Clean)
	if err != nil {
		return nil, err
	}
	container, err := cascadia.Compile(def.Container)
	if err != nil {
		return nil, err
	}
	text, err := cascadia.Compile(def.Text)
	if err != nil {
		return nil, err
	}
	return &offscreenExtractor{clean: clean, container: container, text: text}, nil
}

func (e *offscreenExtractor) Extract(n *html.Node) (string, Source) {
	if n == nil {
		return "", SourceOwn
	}

	var text string
	source := SourceOwn
	switch {
	case e.clean.Match(n):
		text = dom.TextContent(n)
	case e.container.Match(n):
		if hidden := dom.Select(n).FindMatcher(e.text).First(); hidden.Length() > 0 && hidden.Text() != "" {
			text = hidden.Text()
		} else {
			text = ownText(n)
		}
	default:
		text = renderedOrRaw(n)
		source = SourceRendered
	}

	return finish(n, text), source
}

// ownText joins direct text nodes and child elements, skipping annotations
func ownText(n *html.Node) string {
	var sb strings.Builder
	dom.Select(n).Contents().Not("." + AnnotationClass).Each(func(_ int, c *goquery.Selection) {
		sb.WriteString(c.Text())
	})
	return sb.String()
}

func renderedOrRaw(n *html.Node) string {
	if text := dom.RenderedText(n); text != "" {
		return text
	}
	return dom.TextContent(n)
}

func finish(n *html.Node, text string) string {
	if text == "" {
		text = dom.TextContent(n)
	}
	return strings.TrimSpace(text)
}
