// Package engine owns the lifecycle of price annotation for one page.
package engine

import (
	"context"
	"net/url"
	"strings"

	"sjsage522/pricecontext/internal/annotator"
	"sjsage522/pricecontext/internal/currency"
	"sjsage522/pricecontext/internal/dom"
	"sjsage522/pricecontext/internal/resolver"
	"sjsage522/pricecontext/internal/site"
	"sjsage522/pricecontext/internal/watcher"
	"sjsage522/pricecontext/logger"
	"sjsage522/pricecontext/pkg/errors"
	"sjsage522/pricecontext/services/settings"
)

// RateLoader provides the rate table for a page load
type RateLoader interface {
	Load(ctx context.Context) (currency.RateTable, error)
}

// Controller runs the initial annotation pass, keeps the watcher attached and
// reacts to settings changes
type Controller struct {
	doc       *dom.Document
	pageURL   string
	store     settings.Store
	rates     RateLoader
	sites     *site.Table
	state     *State
	annotator *annotator.Annotator
	watcher   *watcher.Watcher
	log       *logger.Logger
}

// NewController creates a controller for a parsed page
func NewController(doc *dom.Document, pageURL string, store settings.Store, rates RateLoader, sites *site.Table) *Controller {
	state := newState()
	a := annotator.New(doc, sites, state)

	return &Controller{
		doc:       doc,
		pageURL:   pageURL,
		store:     store,
		rates:     rates,
		sites:     sites,
		state:     state,
		annotator: a,
		watcher:   watcher.New(doc, a, state),
		log:       logger.ForPage(state.PageID().String(), pageURL),
	}
}

// Start loads rates and settings, annotates the whole document and starts
// watching it. Missing data only disables features; Start fails only when
// the context is done.
func (c *Controller) Start(ctx context.Context) error {
	table, err := c.rates.Load(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("Exchange rates unavailable, conversions disabled")
		table = currency.NewRateTable(nil)
	}
	c.state.setRates(table)

	hostname, err := hostnameOf(c.pageURL)
	if err != nil {
		c.log.Warn().Err(err).Msg("Using generic site profile")
	}
	profile := c.sites.Select(hostname)
	c.state.setPage(hostname, profile)

	c.state.setEnabled(c.readEnabled(ctx))
	c.state.setConfig(c.resolve(ctx))

	if err := ctx.Err(); err != nil {
		return err
	}

	injected := c.Refresh()
	c.log.Info().
		Str("hostname", hostname).
		Str("profile", profile.Name).
		Bool("enabled", c.state.Enabled()).
		Int("annotations", injected).
		Msg("Engine started")
	return nil
}

// HandleChange reacts to a settings change notification
func (c *Controller) HandleChange(ctx context.Context, change settings.Change) {
	needsRefresh := false

	if change.AffectsConfig() {
		c.state.setConfig(c.resolve(ctx))
		needsRefresh = true
	}
	if change.AffectsEnabled() {
		c.state.setEnabled(c.readEnabled(ctx))
		needsRefresh = true
	}

	if !needsRefresh {
		return
	}

	injected := c.Refresh()
	c.log.Info().
		Str("namespace", change.Namespace).
		Strs("keys", change.Keys).
		Int("annotations", injected).
		Msg("Settings changed, page refreshed")
}

// Refresh clears every annotation and re-annotates the document with the
// watcher detached. It returns the number of annotations injected.
func (c *Controller) Refresh() int {
	c.watcher.Stop()
	defer c.watcher.Start()

	annotator.ClearAll(c.doc)
	if !c.state.View().CanAnnotate() {
		return 0
	}
	return c.annotator.Annotate(c.doc.Body())
}

// Stop detaches the watcher
func (c *Controller) Stop() {
	c.watcher.Stop()
}

// Document returns the live document
func (c *Controller) Document() *dom.Document {
	return c.doc
}

// State returns the engine state
func (c *Controller) State() *State {
	return c.state
}

// Annotations returns the number of annotations in the document
func (c *Controller) Annotations() int {
	return annotator.Count(c.doc)
}

// Observing reports whether the watcher is attached
func (c *Controller) Observing() bool {
	return c.watcher.Observing()
}

func (c *Controller) readEnabled(ctx context.Context) bool {
	enabled, found, err := c.store.Enabled(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("Failed to read enabled flag, assuming enabled")
		return true
	}
	if !found {
		return true
	}
	return enabled
}

func (c *Controller) resolve(ctx context.Context) resolver.ResolvedConfig {
	raw, err := c.store.Sync(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("Failed to read settings, using defaults")
		raw = settings.RawSettings{}
	}
	return resolver.ResolveSettings(raw, c.state.rateTable())
}

func hostnameOf(pageURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(pageURL))
	if err != nil {
		return "", errors.NewHost("engine", "cannot parse page URL", err)
	}
	if u.Hostname() == "" {
		return "", errors.NewHost("engine", "page URL has no host", nil)
	}
	return strings.ToLower(u.Hostname()), nil
}
