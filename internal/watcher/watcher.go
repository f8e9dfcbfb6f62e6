// Package watcher keeps annotations live while a document changes.
package watcher

import (
	"golang.org/x/net/html"

	"sjsage522/pricecontext/internal/annotator"
	"sjsage522/pricecontext/internal/dom"
	"sjsage522/pricecontext/internal/site"
	"sjsage522/pricecontext/logger"
)

// Watcher re-runs the annotator on regions of a document that change.
// It is either stopped or observing.
type Watcher struct {
	doc       *dom.Document
	annotator *annotator.Annotator
	source    annotator.Source
	observer  *dom.Observer
	injected  int
}

// New creates a stopped watcher
func New(doc *dom.Document, a *annotator.Annotator, source annotator.Source) *Watcher {
	return &Watcher{
		doc:       doc,
		annotator: a,
		source:    source,
	}
}

// Start begins observing the document body. Starting an observing watcher
// restarts it.
func (w *Watcher) Start() {
	if w.observer != nil {
		w.observer.Disconnect()
	}
	w.observer = w.doc.Observe(w.doc.Body(), dom.Options{
		ChildList:     true,
		CharacterData: true,
		Subtree:       true,
	}, w.handle)
	logger.ForWatcher().Debug().Msg("Watcher observing")
}

// Stop detaches the watcher and drops undelivered records
func (w *Watcher) Stop() {
	if w.observer == nil {
		return
	}
	w.observer.Disconnect()
	w.observer = nil
	logger.ForWatcher().Debug().Msg("Watcher stopped")
}

// Observing reports whether the watcher is attached
func (w *Watcher) Observing() bool {
	return w.observer != nil && w.observer.Active()
}

// Injected returns the number of annotations added by mutation batches
func (w *Watcher) Injected() int {
	return w.injected
}

// HandleBatch processes one batch of records and returns the number of
// annotations injected. No failure escapes it.
func (w *Watcher) HandleBatch(records []dom.MutationRecord) (injected int) {
	defer func() {
		if r := recover(); r != nil {
			logger.ForWatcher().Error().
				Interface("panic", r).
				Int("records", len(records)).
				Msg("Recovered from failure in mutation batch")
		}
		w.injected += injected
	}()

	if !w.source.View().CanAnnotate() {
		return 0
	}

	for _, rec := range records {
		if insideAnnotation(rec.Target) {
			continue
		}

		switch rec.Type {
		case dom.ChildList:
			for _, added := range rec.AddedNodes {
				switch added.Type {
				case html.ElementNode:
					if !insideAnnotation(added) {
						injected += w.annotator.Annotate(added)
					}
				case html.TextNode:
					parent := dom.ParentElement(added)
					if parent != nil && !insideAnnotation(parent) {
						injected += w.annotator.Annotate(parent)
					}
				}
			}
		case dom.CharacterData:
			parent := dom.ParentElement(rec.Target)
			if parent == nil {
				continue
			}
			if dom.HasClass(parent, site.ProcessedClass) ||
				dom.ChildWithClass(parent, site.AnnotationClass) != nil ||
				insideAnnotation(parent) {
				continue
			}
			injected += w.annotator.Annotate(parent)
		}
	}

	return injected
}

func (w *Watcher) handle(records []dom.MutationRecord, _ *dom.Observer) {
	w.HandleBatch(records)
}

// insideAnnotation reports whether n is, or is nested in, an annotation node
func insideAnnotation(n *html.Node) bool {
	return dom.Closest(n, site.AnnotationClass) != nil
}
