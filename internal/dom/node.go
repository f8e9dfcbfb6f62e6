package dom

import (
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// NewElement creates a detached element. attrs are key/value pairs.
func NewElement(tag string, attrs ...string) *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	return n
}

// NewText creates a detached text node
func NewText(text string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: text}
}

// Select wraps n in a goquery selection. A nil node yields an empty selection.
// Changes made through the selection are not recorded.
func Select(n *html.Node) *goquery.Selection {
	if n == nil {
		return &goquery.Selection{}
	}
	return goquery.NewDocumentFromNode(n).Selection
}

// IsElement reports whether n is an element node
func IsElement(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode
}

// Contains reports whether n is ancestor or one of its descendants
func Contains(ancestor, n *html.Node) bool {
	if ancestor == nil || n == nil {
		return false
	}
	return ancestor == n || Select(ancestor).Contains(n)
}

// Closest returns the nearest inclusive ancestor element of n with class
func Closest(n *html.Node, class string) *html.Node {
	return first(Select(n).Closest("." + class))
}

// ParentElement returns the parent of n if it is an element
func ParentElement(n *html.Node) *html.Node {
	if n == nil || !IsElement(n.Parent) {
		return nil
	}
	return n.Parent
}

// Attr returns the value of an attribute
func Attr(n *html.Node, key string) (string, bool) {
	return Select(n).Attr(key)
}

// HasClass reports whether an element carries class
func HasClass(n *html.Node, class string) bool {
	return IsElement(n) && Select(n).HasClass(class)
}

// AddClass adds class to an element. Attribute changes are not recorded.
func AddClass(n *html.Node, class string) {
	if IsElement(n) {
		Select(n).AddClass(class)
	}
}

// RemoveClass removes class from an element, dropping the attribute once it
// is empty. Attribute changes are not recorded.
func RemoveClass(n *html.Node, class string) {
	if HasClass(n, class) {
		Select(n).RemoveClass(class)
	}
}

// ElementChildren returns the element children of n
func ElementChildren(n *html.Node) []*html.Node {
	return Select(n).Children().Nodes
}

// ChildWithClass returns the first element child of n carrying class
func ChildWithClass(n *html.Node, class string) *html.Node {
	return first(Select(n).ChildrenFiltered("." + class))
}

// DescendantWithClass returns the first descendant element of n carrying class
func DescendantWithClass(n *html.Node, class string) *html.Node {
	return first(Select(n).Find("." + class))
}

func first(s *goquery.Selection) *html.Node {
	if s.Length() == 0 {
		return nil
	}
	return s.Nodes[0]
}
