// Package annotator decides which candidate elements hold a price and appends
// a work-time / reference-item annotation to them.
package annotator

import (
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"sjsage522/pricecontext/internal/currency"
	"sjsage522/pricecontext/internal/dom"
	"sjsage522/pricecontext/internal/resolver"
	"sjsage522/pricecontext/internal/site"
	"sjsage522/pricecontext/logger"
)

// Classification thresholds, in characters of extracted text
const (
	maxTextLength       = 150
	shortTextLength     = 70
	veryShortTextLength = 40
	maxChildElements    = 5
)

// View is the engine state the annotator reads
type View struct {
	Enabled bool
	Config  resolver.ResolvedConfig
	Rates   currency.RateTable
	Parser  *currency.Parser
	Profile site.Profile
}

// CanAnnotate reports whether any annotation may be produced under this state
func (v View) CanAnnotate() bool {
	if !v.Enabled {
		return false
	}
	if v.Profile.RequiresSalary && !v.Config.HasValidSalary {
		return false
	}
	if !v.Config.CanShowWorkTime() && !v.Config.CanShowReferenceItem() {
		return false
	}
	return !v.Rates.Empty() && v.Parser != nil && v.Config.DisplayCurrency != ""
}

// Source provides read access to the current engine state
type Source interface {
	View() View
}

// Annotator annotates price elements of one document
type Annotator struct {
	doc    *dom.Document
	sites  *site.Table
	source Source
}

// New creates an annotator for doc
func New(doc *dom.Document, sites *site.Table, source Source) *Annotator {
	return &Annotator{
		doc:    doc,
		sites:  sites,
		source: source,
	}
}

// Annotate evaluates every candidate below node and returns the number of
// annotations injected
func (a *Annotator) Annotate(node *html.Node) int {
	view := a.source.View()
	if !view.CanAnnotate() {
		return 0
	}

	// Candidates whose text is their whole rendered subtree go last and
	// innermost first, so only the deepest one showing a price is annotated.
	type candidate struct {
		el   *html.Node
		text string
	}
	injected := 0
	var deferred []candidate
	for _, el := range site.Scan(node, view.Profile) {
		text, source := view.Profile.Extract(el)
		if source == site.SourceRendered {
			deferred = append(deferred, candidate{el: el, text: text})
			continue
		}
		if a.evaluate(el, text, view) {
			injected++
		}
	}
	for i := len(deferred) - 1; i >= 0; i-- {
		c := deferred[i]
		if dom.DescendantWithClass(c.el, site.AnnotationClass) != nil {
			continue
		}
		if a.evaluate(c.el, c.text, view) {
			injected++
		}
	}

	if injected > 0 {
		logger.ForAnnotator().Debug().
			Int("injected", injected).
			Str("profile", view.Profile.Name).
			Msg("Annotated price elements")
	}
	return injected
}

func (a *Annotator) evaluate(el *html.Node, text string, view View) bool {
	sel := dom.Select(el)
	if sel.HasClass(site.ProcessedClass) {
		return false
	}
	if sel.Closest("."+site.AnnotationClass).Length() > 0 {
		return false
	}
	if sel.ChildrenFiltered("."+site.AnnotationClass).Length() > 0 {
		return false
	}

	if text == "" {
		return false
	}
	textLen := utf8.RuneCountInString(text)
	if textLen >= maxTextLength {
		return false
	}

	parsed, ok := view.Parser.Parse(text)
	if !ok {
		return false
	}
	converted, ok := currency.Convert(parsed.Amount, parsed.Currency, view.Config.DisplayCurrency, view.Rates)
	if !ok || converted <= 0 {
		return false
	}

	if !a.likelyPriceContainer(sel, textLen) {
		return false
	}
	if !acceptsChildren(el) {
		return false
	}

	display := Compose(converted, view.Config)
	if display == "" {
		sel.AddClass(site.ProcessedClass)
		return false
	}

	span := dom.NewElement("span", "class", site.AnnotationClass)
	span.AppendChild(dom.NewText(display))
	a.doc.AppendChild(el, span)
	sel.AddClass(site.ProcessedClass)
	return true
}

func (a *Annotator) likelyPriceContainer(sel *goquery.Selection, textLen int) bool {
	children := sel.Children().Length()
	if children < maxChildElements && textLen < shortTextLength {
		return true
	}
	if a.sites != nil && a.sites.IsPriceish(sel.Get(0)) {
		return true
	}
	return children == 0 && textLen < veryShortTextLength
}

// acceptsChildren rejects form controls and void elements
func acceptsChildren(el *html.Node) bool {
	switch el.DataAtom {
	case atom.Input, atom.Textarea, atom.Select, atom.Option, atom.Button,
		atom.Img, atom.Br, atom.Hr, atom.Meta, atom.Link, atom.Area, atom.Base,
		atom.Col, atom.Embed, atom.Source, atom.Track, atom.Wbr, atom.Iframe:
		return false
	}
	return true
}

// ClearAll removes every annotation and processed marker from doc and
// returns the number of annotations removed
func ClearAll(doc *dom.Document) int {
	annotation := "." + site.AnnotationClass
	annotations := doc.Find(annotation).Not(annotation + " " + annotation)
	for _, n := range annotations.Nodes {
		doc.RemoveChild(n)
	}
	doc.Find("." + site.ProcessedClass).RemoveClass(site.ProcessedClass)
	return annotations.Length()
}

// Count returns the number of annotations currently in doc
func Count(doc *dom.Document) int {
	return doc.Find("." + site.AnnotationClass).Length()
}
