// Package content holds the static game catalogs: resources, generators,
// upgrades and narrative events. Catalogs ship built in and can be replaced
// by a YAML file.
package content

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/MRamiBalles/ContentCollapse/internal/domain/generator"
	"github.com/MRamiBalles/ContentCollapse/internal/domain/narrative"
	"github.com/MRamiBalles/ContentCollapse/internal/domain/resource"
	"github.com/MRamiBalles/ContentCollapse/internal/domain/upgrade"
)

// Catalog is every static definition a game needs.
type Catalog struct {
	Primary    string                `yaml:"primary"`
	Resources  []resource.Definition `yaml:"resources"`
	Generators []generator.Config    `yaml:"generators"`
	Upgrades   []upgrade.Config      `yaml:"upgrades"`
	Events     []narrative.Event     `yaml:"events"`
}

// Load reads and validates a YAML catalog file.
func Load(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML catalog.
func Parse(data []byte) (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Catalog{}, fmt.Errorf("parse catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Catalog{}, err
	}
	return c, nil
}

// Validate checks IDs are unique and every cross reference resolves.
func (c Catalog) Validate() error {
	var errs []error
	if c.Primary == "" {
		errs = append(errs, errors.New("primary resource is required"))
	}

	resources := map[string]bool{c.Primary: true}
	for _, r := range c.Resources {
		if r.ID == "" {
			errs = append(errs, errors.New("resource with empty id"))
			continue
		}
		if resources[r.ID] && r.ID != c.Primary {
			errs = append(errs, fmt.Errorf("duplicate resource %q", r.ID))
		}
		if r.DecayRate < 0 || r.DecayRate > 1 {
			errs = append(errs, fmt.Errorf("resource %q: decay rate must be in [0,1]", r.ID))
		}
		if r.Max != nil && *r.Max < 0 {
			errs = append(errs, fmt.Errorf("resource %q: max must be non-negative", r.ID))
		}
		resources[r.ID] = true
	}

	generators := map[string]bool{}
	for _, g := range c.Generators {
		if g.ID == "" || generators[g.ID] {
			errs = append(errs, fmt.Errorf("generator id %q empty or duplicated", g.ID))
		}
		generators[g.ID] = true
		if g.BaseCost <= 0 {
			errs = append(errs, fmt.Errorf("generator %q: base cost must be positive", g.ID))
		}
		if g.GrowthRate <= 1 {
			errs = append(errs, fmt.Errorf("generator %q: growth rate must be > 1", g.ID))
		}
		for _, f := range append(append([]generator.Flow{}, g.Inputs...), g.Outputs...) {
			if !resources[f.ResourceID] {
				errs = append(errs, fmt.Errorf("generator %q: unknown resource %q", g.ID, f.ResourceID))
			}
			if f.Amount <= 0 {
				errs = append(errs, fmt.Errorf("generator %q: flow amounts must be positive", g.ID))
			}
		}
	}

	upgrades := map[string]bool{}
	for _, u := range c.Upgrades {
		if u.ID == "" || upgrades[u.ID] {
			errs = append(errs, fmt.Errorf("upgrade id %q empty or duplicated", u.ID))
		}
		upgrades[u.ID] = true
		if u.Cost < 0 {
			errs = append(errs, fmt.Errorf("upgrade %q: cost must be non-negative", u.ID))
		}
		if u.EffectValue <= 0 {
			errs = append(errs, fmt.Errorf("upgrade %q: effect value must be positive", u.ID))
		}
		switch u.EffectType {
		case upgrade.EffectProductionMultiplier:
			if !generators[u.TargetGenerator] {
				errs = append(errs, fmt.Errorf("upgrade %q: unknown target %q", u.ID, u.TargetGenerator))
			}
		case upgrade.EffectGlobalMultiplier:
		default:
			errs = append(errs, fmt.Errorf("upgrade %q: unknown effect %q", u.ID, u.EffectType))
		}
		for _, r := range u.Requirements {
			if !generators[r.GeneratorID] {
				errs = append(errs, fmt.Errorf("upgrade %q: requirement on unknown generator %q", u.ID, r.GeneratorID))
			}
		}
	}

	events := map[string]bool{}
	for _, e := range c.Events {
		if e.ID == "" || events[e.ID] {
			errs = append(errs, fmt.Errorf("event id %q empty or duplicated", e.ID))
		}
		events[e.ID] = true
		if !e.TriggerType.Valid() {
			errs = append(errs, fmt.Errorf("event %q: unknown trigger %q", e.ID, e.TriggerType))
		}
	}

	return errors.Join(errs...)
}
