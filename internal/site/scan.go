package site

import (
	"golang.org/x/net/html"

	"sjsage522/pricecontext/internal/dom"
	"sjsage522/pricecontext/logger"
)

// Scan returns the candidate elements of the subtree at root, root included,
// in document order. A text node root is scanned through its parent element.
// Any failure while matching yields no candidates.
func Scan(root *html.Node, profile Profile) (candidates []*html.Node) {
	defer func() {
		if r := recover(); r != nil {
			logger.ForAnnotator().Debug().
				Interface("panic", r).
				Str("profile", profile.Name).
				Msg("Candidate scan failed")
			candidates = nil
		}
	}()

	if root == nil {
		return nil
	}
	if root.Type == html.TextNode {
		root = dom.ParentElement(root)
		if root == nil {
			return nil
		}
	}
	if root.Type != html.ElementNode && root.Type != html.DocumentNode {
		return nil
	}
	if profile.candidates == nil {
		return nil
	}

	if root.Type == html.ElementNode {
		return profile.candidates.MatchAll(root)
	}
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		candidates = append(candidates, profile.candidates.MatchAll(c)...)
	}
	return candidates
}
