package engine

import (
	"github.com/MRamiBalles/ContentCollapse/internal/domain/resource"
	"github.com/MRamiBalles/ContentCollapse/internal/domain/rules"
)

// PrestigeSystem tracks the prestige level. The multiplier and threshold are
// derived from the level and never stored.
// The reset protocol itself lives in Engine.Prestige because it spans every catalog.
type PrestigeSystem struct {
	level int
}

// NewPrestigeSystem creates a prestige system at level 0.
func NewPrestigeSystem() *PrestigeSystem {
	return &PrestigeSystem{}
}

// Level returns the current prestige level.
func (p *PrestigeSystem) Level() int { return p.level }

// Multiplier is 1.25^level.
func (p *PrestigeSystem) Multiplier() float64 { return rules.PrestigeMultiplier(p.level) }

// NextMultiplier is the multiplier after one more prestige.
func (p *PrestigeSystem) NextMultiplier() float64 { return rules.PrestigeMultiplier(p.level + 1) }

// Threshold is 1000 * 10^level.
func (p *PrestigeSystem) Threshold() float64 { return rules.PrestigeThreshold(p.level) }

// CanPrestige reports whether the primary currency reaches the threshold.
func (p *PrestigeSystem) CanPrestige(ledger *resource.Ledger) bool {
	return ledger.Current() >= p.Threshold()
}

// SetLevel overwrites the level. Negative values clamp to 0.
func (p *PrestigeSystem) SetLevel(level int) {
	if level < 0 {
		level = 0
	}
	p.level = level
}

// advance increments the level and returns the previous one.
func (p *PrestigeSystem) advance() int {
	old := p.level
	p.level++
	return old
}
