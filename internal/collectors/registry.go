package collectors

import (
	"fmt"
	"sort"

	"github.com/ternarybob/augur/internal/interfaces"
)

// Entry places a collector in a batch wave. Wave 1 is fundamental data,
// wave 2 assets and reports, wave 3 news and sentiment.
type Entry struct {
	Collector interfaces.Collector
	Wave      int
}

// Registry holds every collector in batch order
type Registry struct {
	entries []Entry
	byName  map[string]interfaces.Collector
}

// NewRegistry builds the standard collector set
func NewRegistry(deps *Deps) *Registry {
	r := &Registry{byName: make(map[string]interfaces.Collector)}

	r.add(1, NewWeatherCollector(deps))
	r.add(1, NewMacroCollector(deps))

	r.add(2, NewRealEstateCollector(deps))
	r.add(2, NewCommercialAreaCollector(deps))
	r.add(2, NewHiringCollector(deps))
	r.add(2, NewOnbidCollector(deps))
	r.add(2, NewCryptoOnchainCollector(deps))
	r.add(2, NewPDFReportCollector(deps))
	r.add(2, NewSearchReportCollector(deps))
	r.add(2, NewIPOCollector(deps))
	r.add(2, NewGlobalIPOCollector(deps))

	r.add(3, NewNewsCollector(deps))
	r.add(3, NewAINewsCollector(deps))
	r.add(3, NewCommunityCollector(deps))
	r.add(3, NewEmailCollector(deps))
	r.add(3, NewGuruCollector(deps))

	return r
}

func (r *Registry) add(wave int, c interfaces.Collector) {
	r.entries = append(r.entries, Entry{Collector: c, Wave: wave})
	r.byName[c.Name()] = c
}

// Entries returns the collectors ordered by wave, then registration order
func (r *Registry) Entries() []Entry {
	entries := append([]Entry(nil), r.entries...)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Wave < entries[j].Wave
	})
	return entries
}

// Get returns the named collector
func (r *Registry) Get(name string) (interfaces.Collector, error) {
	c, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("unknown collector %q", name)
	}
	return c, nil
}

// Names returns collector names in batch order
func (r *Registry) Names() []string {
	entries := r.Entries()
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Collector.Name()
	}
	return names
}
