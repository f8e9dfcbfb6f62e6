package engine

import (
	"sync"

	"github.com/google/uuid"

	"sjsage522/pricecontext/internal/annotator"
	"sjsage522/pricecontext/internal/currency"
	"sjsage522/pricecontext/internal/resolver"
	"sjsage522/pricecontext/internal/site"
)

// State is the single engine state of one page load. Only the Controller
// writes it; the annotator and watcher read it through View.
type State struct {
	mu       sync.RWMutex
	enabled  bool
	config   resolver.ResolvedConfig
	rates    currency.RateTable
	parser   *currency.Parser
	profile  site.Profile
	hostname string
	pageID   uuid.UUID
}

func newState() *State {
	return &State{
		enabled: true,
		rates:   currency.NewRateTable(nil),
		pageID:  uuid.New(),
	}
}

// View implements annotator.Source
func (s *State) View() annotator.View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return annotator.View{
		Enabled: s.enabled,
		Config:  s.config,
		Rates:   s.rates,
		Parser:  s.parser,
		Profile: s.profile,
	}
}

// Hostname returns the hostname of the page
func (s *State) Hostname() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hostname
}

// PageID identifies this page load
func (s *State) PageID() uuid.UUID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pageID
}

// Enabled returns the global enable flag
func (s *State) Enabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.enabled
}

// Config returns the resolved configuration
func (s *State) Config() resolver.ResolvedConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

func (s *State) setRates(table currency.RateTable) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rates = table
	s.parser = currency.NewParser(table)
}

func (s *State) setPage(hostname string, profile site.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hostname = hostname
	s.profile = profile
}

func (s *State) setEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = enabled
}

func (s *State) setConfig(cfg resolver.ResolvedConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config = cfg
}

func (s *State) rateTable() currency.RateTable {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rates
}
