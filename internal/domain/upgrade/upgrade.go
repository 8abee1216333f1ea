// Package upgrade defines one-time purchasable modifiers.
// This package is PURE and must NOT import any infrastructure packages.
package upgrade

// EffectType selects what an upgrade multiplies.
type EffectType string

const (
	EffectProductionMultiplier EffectType = "production_multiplier" // One generator
	EffectGlobalMultiplier     EffectType = "global_multiplier"     // All production
)

// Requirement gates an upgrade on a minimum owned count of a generator.
type Requirement struct {
	GeneratorID string `json:"generator_id" yaml:"generator"`
	MinOwned    int    `json:"min_owned" yaml:"min_owned"`
}

// Config is the static definition of an upgrade.
type Config struct {
	ID              string        `json:"id" yaml:"id"`
	Name            string        `json:"name" yaml:"name"`
	Description     string        `json:"description,omitempty" yaml:"description"`
	Cost            float64       `json:"cost" yaml:"cost"`
	TargetGenerator string        `json:"target_generator,omitempty" yaml:"target"` // Empty for global effects
	EffectType      EffectType    `json:"effect_type" yaml:"effect"`
	EffectValue     float64       `json:"effect_value" yaml:"value"` // > 0
	Requirements    []Requirement `json:"requirements,omitempty" yaml:"requirements"`
}

// Upgrade is a Config plus its purchased flag.
type Upgrade struct {
	Config
	Purchased bool `json:"is_purchased"`
}

// Wallet is the part of the resource ledger a purchase needs.
type Wallet interface {
	CanAfford(amount float64) bool
	Spend(amount float64) bool
}

// Ownership reports how many units of a generator are owned.
type Ownership interface {
	Owned(generatorID string) int
}

// Catalog keeps upgrades in declaration order.
type Catalog struct {
	order      []*Upgrade
	byID       map[string]*Upgrade
	generators Ownership
}

// NewCatalog builds a catalog with nothing purchased. Duplicate IDs keep the first entry.
func NewCatalog(configs []Config, generators Ownership) *Catalog {
	c := &Catalog{
		byID:       make(map[string]*Upgrade, len(configs)),
		generators: generators,
	}
	for _, cfg := range configs {
		if _, dup := c.byID[cfg.ID]; dup {
			continue
		}
		u := &Upgrade{Config: cfg}
		c.order = append(c.order, u)
		c.byID[cfg.ID] = u
	}
	return c
}

// Get returns a copy of an upgrade.
func (c *Catalog) Get(id string) (Upgrade, bool) {
	u, ok := c.byID[id]
	if !ok {
		return Upgrade{}, false
	}
	return *u, true
}

// All returns copies of every upgrade in catalog order.
func (c *Catalog) All() []Upgrade {
	out := make([]Upgrade, 0, len(c.order))
	for _, u := range c.order {
		out = append(out, *u)
	}
	return out
}

// RequirementsMet is true iff every requirement holds (vacuously true with none).
func (c *Catalog) RequirementsMet(id string) bool {
	u, ok := c.byID[id]
	if !ok {
		return false
	}
	for _, r := range u.Requirements {
		if c.generators.Owned(r.GeneratorID) < r.MinOwned {
			return false
		}
	}
	return true
}

// CanPurchase checks not-yet-purchased, affordability and requirements.
func (c *Catalog) CanPurchase(id string, w Wallet) bool {
	u, ok := c.byID[id]
	if !ok || u.Purchased {
		return false
	}
	return w.CanAfford(u.Cost) && c.RequirementsMet(id)
}

// Purchase re-validates CanPurchase, then spends and marks the upgrade purchased.
func (c *Catalog) Purchase(id string, w Wallet) bool {
	if !c.CanPurchase(id, w) {
		return false
	}
	u := c.byID[id]
	if !w.Spend(u.Cost) {
		return false
	}
	u.Purchased = true
	return true
}

// GeneratorMultiplier is the product of purchased production multipliers targeting a generator.
func (c *Catalog) GeneratorMultiplier(generatorID string) float64 {
	m := 1.0
	for _, u := range c.order {
		if u.Purchased && u.EffectType == EffectProductionMultiplier && u.TargetGenerator == generatorID {
			m *= u.EffectValue
		}
	}
	return m
}

// GlobalMultiplier is the product of purchased global multipliers.
func (c *Catalog) GlobalMultiplier() float64 {
	m := 1.0
	for _, u := range c.order {
		if u.Purchased && u.EffectType == EffectGlobalMultiplier {
			m *= u.EffectValue
		}
	}
	return m
}

// MarkPurchased sets the purchased flag without spending. Used when restoring a save.
func (c *Catalog) MarkPurchased(id string) bool {
	u, ok := c.byID[id]
	if !ok {
		return false
	}
	u.Purchased = true
	return true
}

// ResetAll clears every purchased flag.
func (c *Catalog) ResetAll() {
	for _, u := range c.order {
		u.Purchased = false
	}
}

// PurchasedIDs lists purchased upgrades in catalog order.
func (c *Catalog) PurchasedIDs() []string {
	ids := make([]string, 0)
	for _, u := range c.order {
		if u.Purchased {
			ids = append(ids, u.ID)
		}
	}
	return ids
}
