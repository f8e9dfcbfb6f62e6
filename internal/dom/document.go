// Package dom provides a live, observable HTML document built on x/net/html.
//
// Every structural or text change made through a Document is recorded and
// delivered to registered observers when Flush is called. A Document is not
// safe for concurrent use; each page session owns exactly one.
package dom

import (
	"bytes"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"sjsage522/pricecontext/pkg/errors"
)

// maxFlushRounds bounds the number of delivery rounds per Flush.
// Records still queued afterwards are dropped.
const maxFlushRounds = 100

// Document is a parsed HTML tree whose mutations can be observed
type Document struct {
	root      *html.Node
	observers []*Observer
}

// Parse reads an HTML document
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, errors.NewParsing("dom", "HTML parsing error", err)
	}
	return &Document{root: root}, nil
}

// ParseString is Parse over a string
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// Root returns the document node
func (d *Document) Root() *html.Node {
	return d.root
}

// Body returns the body element, or the document node when there is none
func (d *Document) Body() *html.Node {
	if body := findElement(d.root, atom.Body); body != nil {
		return body
	}
	return d.root
}

// Selection wraps the document for goquery lookups
func (d *Document) Selection() *goquery.Selection {
	return goquery.NewDocumentFromNode(d.root).Selection
}

// Find runs a goquery selector over the whole document
func (d *Document) Find(selector string) *goquery.Selection {
	return d.Selection().Find(selector)
}

// AppendChild appends child to parent, detaching it from its current parent first
func (d *Document) AppendChild(parent, child *html.Node) {
	if child.Parent != nil {
		d.RemoveChild(child)
	}
	parent.AppendChild(child)
	d.record(MutationRecord{Type: ChildList, Target: parent, AddedNodes: []*html.Node{child}})
}

// InsertBefore inserts child into parent before ref. A nil ref appends.
func (d *Document) InsertBefore(parent, child, ref *html.Node) {
	if ref == nil {
		d.AppendChild(parent, child)
		return
	}
	if child.Parent != nil {
		d.RemoveChild(child)
	}
	parent.InsertBefore(child, ref)
	d.record(MutationRecord{Type: ChildList, Target: parent, AddedNodes: []*html.Node{child}})
}

// RemoveChild detaches n from its parent
func (d *Document) RemoveChild(n *html.Node) {
	parent := n.Parent
	if parent == nil {
		return
	}
	d.record(MutationRecord{Type: ChildList, Target: parent, RemovedNodes: []*html.Node{n}})
	parent.RemoveChild(n)
}

// SetData changes the contents of a text node
func (d *Document) SetData(n *html.Node, data string) {
	if n.Type != html.TextNode {
		return
	}
	n.Data = data
	d.record(MutationRecord{Type: CharacterData, Target: n})
}

// SetText replaces all children of n with a single text node
func (d *Document) SetText(n *html.Node, text string) {
	if n.Type == html.TextNode {
		d.SetData(n, text)
		return
	}
	var nodes []*html.Node
	if text != "" {
		nodes = append(nodes, NewText(text))
	}
	d.ReplaceChildren(n, nodes...)
}

// ReplaceChildren swaps every child of parent for nodes, as one mutation
func (d *Document) ReplaceChildren(parent *html.Node, nodes ...*html.Node) {
	var removed []*html.Node
	for c := parent.FirstChild; c != nil; {
		next := c.NextSibling
		parent.RemoveChild(c)
		removed = append(removed, c)
		c = next
	}

	added := make([]*html.Node, 0, len(nodes))
	for _, n := range nodes {
		if n.Parent != nil {
			d.RemoveChild(n)
		}
		parent.AppendChild(n)
		added = append(added, n)
	}

	if len(removed) == 0 && len(added) == 0 {
		return
	}
	d.record(MutationRecord{Type: ChildList, Target: parent, AddedNodes: added, RemovedNodes: removed})
}

// Flush delivers queued records to observers until none remain.
// It returns the number of records delivered.
func (d *Document) Flush() int {
	delivered := 0
	for round := 0; round < maxFlushRounds; round++ {
		progressed := false
		observers := append([]*Observer(nil), d.observers...)
		for _, o := range observers {
			records := o.TakeRecords()
			if len(records) == 0 || !o.active {
				continue
			}
			progressed = true
			delivered += len(records)
			o.callback(records, o)
		}
		if !progressed {
			return delivered
		}
	}

	for _, o := range d.observers {
		o.pending = nil
	}
	return delivered
}

// Pending returns the number of records waiting for delivery
func (d *Document) Pending() int {
	total := 0
	for _, o := range d.observers {
		total += len(o.pending)
	}
	return total
}

// Render writes the document as HTML
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

// HTML returns the document serialized as a string
func (d *Document) HTML() string {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}

func (d *Document) record(rec MutationRecord) {
	for _, o := range d.observers {
		if o.wants(rec) {
			o.pending = append(o.pending, rec)
		}
	}
}

func (d *Document) removeObserver(target *Observer) {
	for i, o := range d.observers {
		if o == target {
			d.observers = append(d.observers[:i], d.observers[i+1:]...)
			return
		}
	}
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}
