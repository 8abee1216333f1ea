// Package generator defines purchasable generators and their owned counts.
// This package is PURE and must NOT import any infrastructure packages.
package generator

import "github.com/MRamiBalles/ContentCollapse/internal/domain/rules"

// Flow is a per-owned-unit, per-second amount of a resource.
type Flow struct {
	ResourceID string  `json:"resource_id" yaml:"resource"`
	Amount     float64 `json:"amount" yaml:"amount"`
}

// Config is the static definition of a generator.
type Config struct {
	ID          string  `json:"id" yaml:"id"`
	Name        string  `json:"name" yaml:"name"`
	Description string  `json:"description,omitempty" yaml:"description"`
	BaseCost    float64 `json:"base_cost" yaml:"base_cost"`
	GrowthRate  float64 `json:"growth_rate" yaml:"growth_rate"` // > 1
	Inputs      []Flow  `json:"inputs,omitempty" yaml:"inputs"`
	Outputs     []Flow  `json:"outputs,omitempty" yaml:"outputs"`
}

// Generator is a Config plus how many units the player owns.
type Generator struct {
	Config
	Owned int `json:"owned"`
}

// Cost is the price of the next unit given the current owned count.
func (g Generator) Cost() float64 {
	return rules.GeneratorCost(g.BaseCost, g.GrowthRate, g.Owned)
}

// Wallet is the part of the resource ledger a purchase needs.
type Wallet interface {
	Spend(amount float64) bool
}

// Catalog keeps generators in declaration order. Generators are never removed.
type Catalog struct {
	order []*Generator
	byID  map[string]*Generator
}

// NewCatalog builds a catalog with every generator at zero owned. Duplicate IDs keep the first entry.
func NewCatalog(configs []Config) *Catalog {
	c := &Catalog{byID: make(map[string]*Generator, len(configs))}
	for _, cfg := range configs {
		if _, dup := c.byID[cfg.ID]; dup {
			continue
		}
		g := &Generator{Config: cfg}
		c.order = append(c.order, g)
		c.byID[cfg.ID] = g
	}
	return c
}

// Get returns a copy of a generator.
func (c *Catalog) Get(id string) (Generator, bool) {
	g, ok := c.byID[id]
	if !ok {
		return Generator{}, false
	}
	return *g, true
}

// All returns copies of every generator in catalog order.
func (c *Catalog) All() []Generator {
	out := make([]Generator, 0, len(c.order))
	for _, g := range c.order {
		out = append(out, *g)
	}
	return out
}

// Owned returns the owned count, 0 for unknown IDs.
func (c *Catalog) Owned(id string) int {
	if g, ok := c.byID[id]; ok {
		return g.Owned
	}
	return 0
}

// Cost returns the price of the next unit, 0 for unknown IDs.
func (c *Catalog) Cost(id string) float64 {
	g, ok := c.byID[id]
	if !ok {
		return 0
	}
	return g.Cost()
}

// Purchase buys exactly one unit. The cost is taken from the pre-purchase
// owned count and ownership only changes after the wallet accepted the spend.
func (c *Catalog) Purchase(id string, w Wallet) bool {
	g, ok := c.byID[id]
	if !ok {
		return false
	}
	if !w.Spend(g.Cost()) {
		return false
	}
	g.Owned++
	return true
}

// SetOwned overwrites an owned count. Used when restoring a save.
func (c *Catalog) SetOwned(id string, owned int) bool {
	g, ok := c.byID[id]
	if !ok || owned < 0 {
		return false
	}
	g.Owned = owned
	return true
}

// ResetAll sets every owned count back to 0.
func (c *Catalog) ResetAll() {
	for _, g := range c.order {
		g.Owned = 0
	}
}

// OwnedMap returns {id -> owned} for every generator.
func (c *Catalog) OwnedMap() map[string]int {
	out := make(map[string]int, len(c.order))
	for _, g := range c.order {
		out[g.ID] = g.Owned
	}
	return out
}
