// Package fetcher downloads pages and parses them into live documents.
package fetcher

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/url"
	"time"

	"sjsage522/pricecontext/helpers"
	"sjsage522/pricecontext/internal/dom"
	"sjsage522/pricecontext/logger"
	"sjsage522/pricecontext/pkg/errors"
	"sjsage522/pricecontext/services/cache"
)

// FetchFunc retrieves a UTF-8 page body
type FetchFunc func(ctx context.Context, url string) (io.Reader, error)

// Fetcher downloads pages, backing off from hosts that rate limit it
type Fetcher struct {
	CacheSvc  cache.CacheService
	BlockTime time.Duration
	fetch     FetchFunc
}

// New creates a fetcher that blocks a host for blockTime after it rate limits
func New(cacheSvc cache.CacheService, blockTime time.Duration) *Fetcher {
	return &Fetcher{
		CacheSvc:  cacheSvc,
		BlockTime: blockTime,
		fetch:     helpers.FetchWithRandomHeaders,
	}
}

// Fetch downloads pageURL and parses it
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (*dom.Document, error) {
	body, err := f.fetchWithCache(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	return f.createDocument(body)
}

// fetchWithCache fetches a URL unless its host is currently blocked
func (f *Fetcher) fetchWithCache(ctx context.Context, pageURL string) (io.Reader, error) {
	key := blockKey(pageURL)

	// Check if the host is rate limited
	if f.CacheSvc != nil {
		if _, err := f.CacheSvc.Get(key); err == nil {
			return nil, errors.NewRateLimit("fetcher", f.BlockTime)
		}
	}

	body, err := f.fetch(ctx, pageURL)
	if err != nil {
		if stderrors.Is(err, helpers.ErrRateLimited) {
			if f.CacheSvc != nil && f.BlockTime > 0 {
				marker := []byte(fmt.Sprintf("%d", f.BlockTime/time.Second))
				if cacheErr := f.CacheSvc.Set(key, marker, f.BlockTime); cacheErr != nil {
					logger.ForCache().Warn().Err(cacheErr).Str("key", key).Msg("Failed to store block marker")
				}
			}
			return nil, errors.NewRateLimit("fetcher", f.BlockTime)
		}
		return nil, errors.NewNetwork("fetcher", "failed to fetch "+pageURL, err)
	}

	return body, nil
}

// createDocument parses a page body
func (f *Fetcher) createDocument(reader io.Reader) (*dom.Document, error) {
	doc, err := dom.Parse(reader)
	if err != nil {
		return nil, errors.NewParsing("fetcher", "HTML parsing error", err)
	}
	return doc, nil
}

func blockKey(pageURL string) string {
	host := pageURL
	if u, err := url.Parse(pageURL); err == nil && u.Host != "" {
		host = u.Host
	}
	return "fetch_block:" + host
}
