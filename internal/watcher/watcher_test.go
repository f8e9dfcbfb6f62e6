package watcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"sjsage522/pricecontext/internal/annotator"
	"sjsage522/pricecontext/internal/currency"
	"sjsage522/pricecontext/internal/dom"
	"sjsage522/pricecontext/internal/resolver"
	"sjsage522/pricecontext/internal/site"
	"sjsage522/pricecontext/services/settings"
)

type staticSource struct {
	view annotator.View
}

func (s *staticSource) View() annotator.View {
	return s.view
}

type panicSource struct{}

func (panicSource) View() annotator.View {
	panic("state unavailable")
}

func newFixture(t *testing.T, body string) (*dom.Document, *annotator.Annotator, *Watcher, *staticSource) {
	t.Helper()

	rates := currency.NewRateTable(map[string]float64{"TWD": 1, "USD": 30, "JPY": 0.22})
	hours := settings.Number(8)
	cfg := resolver.Resolve(
		&settings.Salary{Amount: 60000, SalaryType: settings.SalaryMonthly, Currency: "TWD"},
		&hours, nil, rates,
	)
	sites, err := site.DefaultTable()
	require.NoError(t, err)

	source := &staticSource{view: annotator.View{
		Enabled: true,
		Config:  cfg,
		Rates:   rates,
		Parser:  currency.NewParser(rates),
		Profile: sites.Select("shop.example.com"),
	}}

	doc, err := dom.ParseString("<html><body>" + body + "</body></html>")
	require.NoError(t, err)

	a := annotator.New(doc, sites, source)
	return doc, a, New(doc, a, source), source
}

func priceSpan(text string) *html.Node {
	span := dom.NewElement("span")
	span.AppendChild(dom.NewText(text))
	return span
}

func TestWatcherIgnoresOwnAnnotations(t *testing.T) {
	doc, a, w, _ := newFixture(t, `<span id="p">$10</span>`)

	w.Start()
	require.Equal(t, 1, a.Annotate(doc.Body()))
	require.Equal(t, 1, doc.Pending(), "the injected node is observed")

	doc.Flush()
	assert.Equal(t, 0, w.Injected())
	assert.Equal(t, 1, annotator.Count(doc))

	// A batch made only of the injected node triggers nothing
	el := doc.Find("#p").Get(0)
	span := dom.ChildWithClass(el, site.AnnotationClass)
	require.NotNil(t, span)
	injected := w.HandleBatch([]dom.MutationRecord{
		{Type: dom.ChildList, Target: el, AddedNodes: []*html.Node{span}},
		{Type: dom.CharacterData, Target: span.FirstChild},
		{Type: dom.ChildList, Target: span, AddedNodes: []*html.Node{span.FirstChild}},
	})
	assert.Equal(t, 0, injected)
	assert.Equal(t, 1, annotator.Count(doc))
}

func TestWatcherAnnotatesInsertedElements(t *testing.T) {
	doc, _, w, _ := newFixture(t, `<div id="list"></div>`)
	w.Start()

	doc.AppendChild(doc.Find("#list").Get(0), priceSpan("$20"))
	doc.Flush()

	assert.Equal(t, 1, w.Injected())
	assert.Equal(t, 1, annotator.Count(doc))
	assert.Equal(t, 0, doc.Pending())
}

func TestWatcherAnnotatesParentOfInsertedText(t *testing.T) {
	doc, _, w, _ := newFixture(t, `<p id="e"></p>`)
	w.Start()

	doc.AppendChild(doc.Find("#e").Get(0), dom.NewText("NT$ 1,234.50"))
	doc.Flush()

	assert.Equal(t, 1, annotator.Count(doc))
	assert.Equal(t, 1, w.Injected())
}

func TestWatcherCharacterData(t *testing.T) {
	doc, _, w, _ := newFixture(t, `<span id="p">loading</span>`)
	w.Start()

	el := doc.Find("#p").Get(0)
	doc.SetData(el.FirstChild, "$10")
	doc.Flush()
	assert.Equal(t, 1, annotator.Count(doc))
	assert.True(t, dom.HasClass(el, site.ProcessedClass))

	// Processed parents are not re-scanned
	doc.SetData(el.FirstChild, "$30")
	doc.Flush()
	assert.Equal(t, 1, annotator.Count(doc))
	assert.Equal(t, 1, w.Injected())
}

func TestWatcherRespectsGating(t *testing.T) {
	doc, _, w, source := newFixture(t, `<div id="list"></div>`)
	w.Start()

	source.view.Enabled = false
	doc.AppendChild(doc.Find("#list").Get(0), priceSpan("$20"))
	doc.Flush()
	assert.Equal(t, 0, annotator.Count(doc))
	assert.True(t, w.Observing(), "gating does not pause observation")

	source.view.Enabled = true
	doc.AppendChild(doc.Find("#list").Get(0), priceSpan("$30"))
	doc.Flush()
	assert.Equal(t, 1, annotator.Count(doc))
}

func TestWatcherStopAndRestart(t *testing.T) {
	doc, _, w, _ := newFixture(t, `<div id="list"></div>`)
	list := doc.Find("#list").Get(0)

	w.Start()
	assert.True(t, w.Observing())
	w.Stop()
	assert.False(t, w.Observing())
	w.Stop()

	doc.AppendChild(list, priceSpan("$20"))
	doc.Flush()
	assert.Equal(t, 0, annotator.Count(doc))

	w.Start()
	w.Start()
	doc.AppendChild(list, priceSpan("$30"))
	doc.Flush()
	assert.Equal(t, 1, annotator.Count(doc))
}

func TestWatcherRecoversFromFailures(t *testing.T) {
	doc, err := dom.ParseString(`<html><body><span>$10</span></body></html>`)
	require.NoError(t, err)
	sites, err := site.DefaultTable()
	require.NoError(t, err)

	w := New(doc, annotator.New(doc, sites, panicSource{}), panicSource{})
	w.Start()

	assert.NotPanics(t, func() {
		doc.AppendChild(doc.Body(), priceSpan("$20"))
		doc.Flush()
	})
	assert.Equal(t, 0, w.Injected())
}
