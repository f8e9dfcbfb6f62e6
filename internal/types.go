package internal

import (
	"context"

	"sjsage522/pricecontext/internal/dom"
	"sjsage522/pricecontext/internal/engine"
	"sjsage522/pricecontext/internal/site"
	"sjsage522/pricecontext/services/cache"
	"sjsage522/pricecontext/services/publisher"
	"sjsage522/pricecontext/services/settings"
)

// PageFetcher downloads a page and parses it into a live document
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*dom.Document, error)
}

// Dependencies holds all service dependencies
type Dependencies struct {
	Cache     cache.CacheService
	Publisher publisher.Publisher
	Settings  settings.Store
	Fetcher   PageFetcher
	Rates     engine.RateLoader
	Sites     *site.Table
}
