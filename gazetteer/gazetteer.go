// Package gazetteer holds the static municipality to district table for the province.
package gazetteer

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed bataan.yaml
var bataanYAML []byte

// Entry maps one municipality to its parent district.
type Entry struct {
	Municipality string   `yaml:"municipality" json:"municipality"`
	District     string   `yaml:"district" json:"district"`
	Aliases      []string `yaml:"aliases,omitempty" json:"aliases,omitempty"`
}

type file struct {
	Region   string  `yaml:"region"`
	Fallback Entry   `yaml:"fallback"`
	Entries  []Entry `yaml:"entries"`
}

// Gazetteer is read-only after Load returns and safe for concurrent use.
type Gazetteer struct {
	region    string
	fallback  Entry
	entries   []Entry
	byName    map[string]int // lower-cased municipality or alias -> entry index
	districts []string
}

var (
	defaultGazetteer *Gazetteer
	defaultOnce      sync.Once
)

// Default returns the embedded provincial table, parsed once per process.
func Default() *Gazetteer {
	defaultOnce.Do(func() {
		g, err := Load(bataanYAML)
		if err != nil {
			panic(fmt.Sprintf("embedded gazetteer is invalid: %v", err))
		}
		defaultGazetteer = g
	})
	return defaultGazetteer
}

// Load parses a gazetteer YAML document.
func Load(data []byte) (*Gazetteer, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse gazetteer: %w", err)
	}
	if len(f.Entries) == 0 {
		return nil, fmt.Errorf("gazetteer has no entries")
	}
	if f.Fallback.Municipality == "" || f.Fallback.District == "" {
		return nil, fmt.Errorf("gazetteer fallback must name a municipality and a district")
	}

	g := &Gazetteer{
		region:   f.Region,
		fallback: f.Fallback,
		entries:  f.Entries,
		byName:   make(map[string]int, len(f.Entries)),
	}
	seenDistrict := make(map[string]bool)
	for i, e := range f.Entries {
		if e.Municipality == "" || e.District == "" {
			return nil, fmt.Errorf("gazetteer entry %d is incomplete", i)
		}
		key := strings.ToLower(e.Municipality)
		if _, dup := g.byName[key]; dup {
			return nil, fmt.Errorf("duplicate municipality %q", e.Municipality)
		}
		g.byName[key] = i
		for _, alias := range e.Aliases {
			g.byName[strings.ToLower(alias)] = i
		}
		if !seenDistrict[e.District] {
			seenDistrict[e.District] = true
			g.districts = append(g.districts, e.District)
		}
	}
	return g, nil
}

// Region is the province name, used as a location suffix.
func (g *Gazetteer) Region() string {
	return g.region
}

// Fallback is the pair assigned when a location matches nothing.
func (g *Gazetteer) Fallback() Entry {
	return g.fallback
}

// Entries returns a copy of the table in file order.
func (g *Gazetteer) Entries() []Entry {
	out := make([]Entry, len(g.entries))
	copy(out, g.entries)
	return out
}

// Municipalities lists municipality names in table order.
func (g *Gazetteer) Municipalities() []string {
	out := make([]string, 0, len(g.entries))
	for _, e := range g.entries {
		out = append(out, e.Municipality)
	}
	return out
}

// Districts lists districts in order of first appearance.
func (g *Gazetteer) Districts() []string {
	out := make([]string, len(g.districts))
	copy(out, g.districts)
	return out
}

// Lookup finds an entry by municipality name or alias, ignoring case.
func (g *Gazetteer) Lookup(name string) (Entry, bool) {
	i, ok := g.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Entry{}, false
	}
	return g.entries[i], true
}

// IsDistrict reports whether d is one of the table's districts.
func (g *Gazetteer) IsDistrict(d string) bool {
	for _, known := range g.districts {
		if known == d {
			return true
		}
	}
	return false
}

// DistrictOf returns the district for a municipality.
func (g *Gazetteer) DistrictOf(municipality string) (string, bool) {
	e, ok := g.Lookup(municipality)
	if !ok {
		return "", false
	}
	return e.District, true
}
