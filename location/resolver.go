// Package location turns free-text incident locations into gazetteer municipalities.
package location

import (
	"strings"
	"time"
	"unicode/utf8"

	gocache "github.com/patrickmn/go-cache"

	"go-patrol/gazetteer"
	"go-patrol/textnorm"
	"go-patrol/types"
)

const (
	// Tokens shorter than this are ignored; "de", "la" and the like match everywhere.
	minTokenLength = 3

	cacheTTL             = 30 * time.Minute
	cacheCleanupInterval = time.Hour
)

// genericTokens carry no place information on their own.
var genericTokens = map[string]bool{
	"city":         true,
	"municipality": true,
	"district":     true,
}

// Resolution is the outcome of resolving one location string.
type Resolution struct {
	Municipality string `json:"municipality"`
	District     string `json:"district"`
	Matched      bool   `json:"matched"`
}

// Resolver is safe for concurrent use. Results are memoized per normalized input.
type Resolver struct {
	gaz      *gazetteer.Gazetteer
	suffixes []string
	memo     *gocache.Cache
}

// New creates a resolver over g.
func New(g *gazetteer.Gazetteer) *Resolver {
	suffixes := []string{",", ".", "-", "_", " ", " city", " district"}
	if region := textnorm.Fold(strings.TrimSpace(g.Region())); region != "" {
		suffixes = append(suffixes, " "+region)
	}
	return &Resolver{
		gaz:      g,
		suffixes: suffixes,
		memo:     gocache.New(cacheTTL, cacheCleanupInterval),
	}
}

// DetectAreas returns every candidate area mentioned in location, in candidate order.
// An area is mentioned when one of its tokens, followed by a punctuation or
// suffix variant, appears in the lower-cased text.
func (r *Resolver) DetectAreas(loc string, candidates []string) []string {
	detected := []string{}
	text := normalize(loc)
	if text == "" {
		return detected
	}
	// Trailing space lets a token that ends the text match its " " variant.
	text += " "

	seen := make(map[string]bool, len(candidates))
	for _, area := range candidates {
		if seen[area] {
			continue
		}
		if r.mentions(text, area) {
			seen[area] = true
			detected = append(detected, area)
		}
	}
	return detected
}

func (r *Resolver) mentions(text, area string) bool {
	for _, tok := range strings.Fields(textnorm.Fold(area)) {
		if utf8.RuneCountInString(tok) < minTokenLength || genericTokens[tok] {
			continue
		}
		for _, suffix := range r.suffixes {
			if strings.Contains(text, tok+suffix) {
				return true
			}
		}
	}
	return false
}

// Resolve picks the first gazetteer entry whose name or alias occurs in
// location. Unmatched input resolves to the gazetteer fallback.
func (r *Resolver) Resolve(loc string) Resolution {
	text := normalize(loc)
	if text == "" {
		return r.fallback()
	}
	if cached, ok := r.memo.Get(text); ok {
		return cached.(Resolution)
	}

	res := r.fallback()
	for _, e := range r.gaz.Entries() {
		if containsName(text, e) {
			res = Resolution{Municipality: e.Municipality, District: e.District, Matched: true}
			break
		}
	}
	r.memo.SetDefault(text, res)
	return res
}

// ResolveRecord keeps a municipality the operator already set when the
// gazetteer knows it, and otherwise resolves the free-text location.
func (r *Resolver) ResolveRecord(rec types.IncidentRecord) Resolution {
	if e, ok := r.gaz.Lookup(rec.Municipality); ok {
		return Resolution{Municipality: e.Municipality, District: e.District, Matched: true}
	}
	return r.Resolve(rec.Location)
}

// Areas is the full candidate set, in gazetteer order.
func (r *Resolver) Areas() []string {
	return r.gaz.Municipalities()
}

// Gazetteer exposes the table the resolver was built on.
func (r *Resolver) Gazetteer() *gazetteer.Gazetteer {
	return r.gaz
}

func (r *Resolver) fallback() Resolution {
	fb := r.gaz.Fallback()
	return Resolution{Municipality: fb.Municipality, District: fb.District}
}

func containsName(text string, e gazetteer.Entry) bool {
	if strings.Contains(text, textnorm.Fold(e.Municipality)) {
		return true
	}
	for _, alias := range e.Aliases {
		if strings.Contains(text, textnorm.Fold(alias)) {
			return true
		}
	}
	return false
}

func normalize(s string) string {
	return textnorm.Fold(strings.TrimSpace(s))
}
