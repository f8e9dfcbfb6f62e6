// Package site selects per-host price markup conventions and finds candidate
// elements in a document.
package site

import (
	_ "embed"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"gopkg.in/yaml.v3"

	"sjsage522/pricecontext/pkg/errors"
)

// Classes used to mark engine-owned state in a document
const (
	ProcessedClass  = "price-context-processed"
	AnnotationClass = "price-context-display"
)

//go:embed profiles.yaml
var defaultProfiles []byte

// Kind distinguishes the two profile variants
type Kind string

const (
	// KindGeneric scans common inline and block tags plus price-like hints
	KindGeneric Kind = "generic"
	// KindNarrow scans only a host's known price markup
	KindNarrow Kind = "narrow"
)

// Profile is a candidate-selection strategy paired with a text-extraction strategy
type Profile struct {
	Name           string
	Kind           Kind
	HostContains   []string
	RequiresSalary bool
	candidates     cascadia.Selector
	extractor      Extractor
}

// Extract returns the text to feed the price parser for a candidate and
// where that text came from
func (p Profile) Extract(n *html.Node) (string, Source) {
	if p.extractor == nil {
		return "", SourceOwn
	}
	return p.extractor.Extract(n)
}

type offscreenDef struct {
	Clean     string `yaml:"clean"`
	Container string `yaml:"container"`
	Text      string `yaml:"text"`
}

type profileDef struct {
	Name           string        `yaml:"name"`
	HostContains   []string      `yaml:"host_contains"`
	RequiresSalary bool          `yaml:"requires_salary"`
	Selectors      []string      `yaml:"selectors"`
	Offscreen      *offscreenDef `yaml:"offscreen"`
}

type tableDef struct {
	PriceishSelectors []string     `yaml:"priceish_selectors"`
	Generic           profileDef   `yaml:"generic"`
	Profiles          []profileDef `yaml:"profiles"`
}

// Table holds the compiled site profiles
type Table struct {
	generic  Profile
	narrow   []Profile
	priceish cascadia.Selector
}

// DefaultTable compiles the embedded profile table
func DefaultTable() (*Table, error) {
	return LoadTable(defaultProfiles)
}

// LoadTable compiles a YAML profile table
func LoadTable(data []byte) (*Table, error) {
	var def tableDef
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, errors.NewConfiguration("invalid site profile table", err)
	}

	priceish, err := compileGroup(def.PriceishSelectors)
	if err != nil {
		return nil, errors.NewConfiguration("invalid price-ish selectors", err)
	}

	generic, err := compileProfile(def.Generic, KindGeneric)
	if err != nil {
		return nil, err
	}
	if generic.Name == "" {
		generic.Name = string(KindGeneric)
	}

	table := &Table{generic: generic, priceish: priceish}
	for _, pd := range def.Profiles {
		if len(pd.HostContains) == 0 {
			return nil, errors.NewConfiguration("site profile "+pd.Name+" has no host_contains", nil)
		}
		profile, err := compileProfile(pd, KindNarrow)
		if err != nil {
			return nil, err
		}
		table.narrow = append(table.narrow, profile)
	}

	return table, nil
}

func compileProfile(pd profileDef, kind Kind) (Profile, error) {
	candidates, err := compileGroup(pd.Selectors)
	if err != nil {
		return Profile{}, errors.NewConfiguration("invalid selectors for site profile "+pd.Name, err)
	}

	profile := Profile{
		Name:           pd.Name,
		Kind:           kind,
		HostContains:   pd.HostContains,
		RequiresSalary: pd.RequiresSalary,
		candidates:     candidates,
		extractor:      genericExtractor{},
	}

	if pd.Offscreen != nil {
		extractor, err := newOffscreenExtractor(*pd.Offscreen)
		if err != nil {
			return Profile{}, errors.NewConfiguration("invalid offscreen selectors for site profile "+pd.Name, err)
		}
		profile.extractor = extractor
	}

	return profile, nil
}

func compileGroup(selectors []string) (cascadia.Selector, error) {
	if len(selectors) == 0 {
		return nil, errors.NewValidation("site", "empty selector list")
	}
	return cascadia.Compile(strings.Join(selectors, ", "))
}

// Select returns the profile for a hostname. An empty hostname gets the generic profile.
func (t *Table) Select(hostname string) Profile {
	host := strings.ToLower(strings.TrimSpace(hostname))
	if host == "" {
		return t.generic
	}
	for _, p := range t.narrow {
		for _, fragment := range p.HostContains {
			if strings.Contains(host, strings.ToLower(fragment)) {
				return p
			}
		}
	}
	return t.generic
}

// Generic returns the fallback profile
func (t *Table) Generic() Profile {
	return t.generic
}

// IsPriceish reports whether n carries a common price class or attribute
func (t *Table) IsPriceish(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode && t.priceish.Match(n)
}
