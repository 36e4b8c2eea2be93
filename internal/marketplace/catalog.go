// Package marketplace exposes the catalog of available agents with
// subscription tier and pricing metadata. Priority drives the pipeline
// run order; billing itself happens elsewhere.
package marketplace

import (
	"sort"

	"agents-backend/internal/agents"
)

// Entry is the commercial metadata attached to one agent key.
type Entry struct {
	Tier            string  `json:"tier"`
	PricingModel    string  `json:"pricingModel"`
	MonthlyPriceUSD float64 `json:"monthlyPriceUsd"`
	Priority        int     `json:"priority"`
}

// Listing joins an agent's metadata with its catalog entry.
type Listing struct {
	agents.Metadata
	Entry
}

// DefaultEntries is the stock catalog for the built-in agents.
func DefaultEntries() map[string]Entry {
	return map[string]Entry{
		"bizhealth":   {Tier: "basic", PricingModel: "subscription", MonthlyPriceUSD: 99, Priority: 1},
		"maintenance": {Tier: "professional", PricingModel: "subscription", MonthlyPriceUSD: 299, Priority: 2},
		"pricing":     {Tier: "professional", PricingModel: "subscription", MonthlyPriceUSD: 249, Priority: 3},
		"success":     {Tier: "professional", PricingModel: "subscription", MonthlyPriceUSD: 249, Priority: 4},
		"contracts":   {Tier: "enterprise", PricingModel: "subscription", MonthlyPriceUSD: 399, Priority: 5},
		"esg":         {Tier: "enterprise", PricingModel: "subscription", MonthlyPriceUSD: 349, Priority: 6},
	}
}

// Catalog lists registered agents with their entries. Agents without an
// entry get a default professional listing after the cataloged ones.
type Catalog struct {
	registry *agents.Registry
	entries  map[string]Entry
}

func NewCatalog(registry *agents.Registry, entries map[string]Entry) *Catalog {
	if entries == nil {
		entries = DefaultEntries()
	}
	return &Catalog{registry: registry, entries: entries}
}

func (c *Catalog) entry(key string) Entry {
	if e, ok := c.entries[key]; ok {
		return e
	}
	return Entry{Tier: "professional", PricingModel: "subscription", Priority: len(c.entries) + 1}
}

// Get returns the listing for one agent key.
func (c *Catalog) Get(key string) (Listing, bool) {
	agent, ok := c.registry.Get(key)
	if !ok {
		return Listing{}, false
	}
	return Listing{Metadata: agent.Meta(), Entry: c.entry(key)}, true
}

// Listings returns all registered agents sorted by priority, then key.
func (c *Catalog) Listings() []Listing {
	keys := c.registry.Keys()
	out := make([]Listing, 0, len(keys))
	for _, key := range keys {
		if l, ok := c.Get(key); ok {
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// Priority satisfies pipeline.PriorityFunc.
func (c *Catalog) Priority(key string) int {
	return c.entry(key).Priority
}
