package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/net/html"

	"sjsage522/pricecontext/helpers"
	"sjsage522/pricecontext/internal"
	"sjsage522/pricecontext/internal/engine"
	"sjsage522/pricecontext/services/publisher"
	"sjsage522/pricecontext/services/settings"
)

// Session keeps one page annotated. All document access happens on the
// goroutine running Run.
type Session struct {
	url             string
	deps            internal.Dependencies
	logger          helpers.LoggerInterface
	refreshInterval time.Duration

	controller *engine.Controller

	mu        sync.Mutex
	published int
	last      publisher.PageSnapshot
}

// NewSession creates a session for pageURL
func NewSession(pageURL string, deps internal.Dependencies, logger helpers.LoggerInterface, refreshInterval time.Duration) *Session {
	return &Session{
		url:             pageURL,
		deps:            deps,
		logger:          logger,
		refreshInterval: refreshInterval,
	}
}

// URL returns the page URL
func (s *Session) URL() string {
	return s.url
}

// Run starts the engine for the page and keeps it current until ctx is done
func (s *Session) Run(ctx context.Context) {
	changes, err := s.deps.Settings.Subscribe(ctx)
	if err != nil {
		s.logger.LogError(s.source(), err)
		changes = nil
	}

	if err := s.start(ctx); err != nil {
		s.logger.LogError(s.source(), err)
	}
	defer s.stop()

	ticker := time.NewTicker(s.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.refresh(ctx); err != nil {
				s.logger.LogError(s.source(), err)
			}
		case change, ok := <-changes:
			if !ok {
				changes = nil
				continue
			}
			s.handleChange(ctx, change)
		}
	}
}

// Published returns the number of snapshots published and the latest one
func (s *Session) Published() (int, publisher.PageSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.published, s.last
}

// start fetches the page, runs the initial annotation pass and publishes it
func (s *Session) start(ctx context.Context) error {
	doc, err := s.deps.Fetcher.Fetch(ctx, s.url)
	if err != nil {
		return err
	}

	controller := engine.NewController(doc, s.url, s.deps.Settings, s.deps.Rates, s.deps.Sites)
	if err := controller.Start(ctx); err != nil {
		return err
	}
	s.controller = controller

	return s.publish()
}

// refresh re-fetches the page and swaps its body into the live document.
// The swap is observed like any other page mutation.
func (s *Session) refresh(ctx context.Context) error {
	if s.controller == nil {
		return s.start(ctx)
	}

	fresh, err := s.deps.Fetcher.Fetch(ctx, s.url)
	if err != nil {
		return err
	}

	var nodes []*html.Node
	for c := fresh.Body().FirstChild; c != nil; c = c.NextSibling {
		nodes = append(nodes, c)
	}

	live := s.controller.Document()
	live.ReplaceChildren(live.Body(), nodes...)
	live.Flush()

	if err := s.publish(); err != nil {
		return err
	}
	return s.deps.Publisher.TrimStreams()
}

func (s *Session) handleChange(ctx context.Context, change settings.Change) {
	if s.controller == nil {
		return
	}
	if !change.AffectsConfig() && !change.AffectsEnabled() {
		return
	}

	s.controller.HandleChange(ctx, change)
	s.controller.Document().Flush()

	if err := s.publish(); err != nil {
		s.logger.LogError(s.source(), err)
	}
}

func (s *Session) publish() error {
	state := s.controller.State()
	snapshot := publisher.PageSnapshot{
		PageID:      state.PageID().String(),
		URL:         s.url,
		Hostname:    state.Hostname(),
		Annotations: s.controller.Annotations(),
		HTML:        s.controller.Document().HTML(),
		RenderedAt:  time.Now().UTC(),
	}

	data, err := snapshot.Encode()
	if err != nil {
		return err
	}
	if err := s.deps.Publisher.Publish(snapshot.PageID, data); err != nil {
		return err
	}

	s.mu.Lock()
	s.published++
	s.last = snapshot
	s.mu.Unlock()
	return nil
}

func (s *Session) stop() {
	if s.controller != nil {
		s.controller.Stop()
	}
}

func (s *Session) source() string {
	return fmt.Sprintf("Session(%s)", s.url)
}

