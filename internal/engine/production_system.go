package engine

import (
	"time"

	"github.com/MRamiBalles/ContentCollapse/internal/domain/generator"
	"github.com/MRamiBalles/ContentCollapse/internal/domain/resource"
	"github.com/MRamiBalles/ContentCollapse/internal/domain/rules"
	"github.com/MRamiBalles/ContentCollapse/internal/domain/upgrade"
)

// ProductionReport is the per-second outcome of one production pass.
type ProductionReport struct {
	PerSecond map[string]float64 // Signed net delta per resource
	Stalled   []string           // Owned generators that lacked inputs
}

// Rate returns the per-second delta of one resource.
func (r ProductionReport) Rate(resourceID string) float64 {
	return r.PerSecond[resourceID]
}

// ProductionSystem turns owned generators into resource deltas.
// It holds no state; every call reads the ledger and catalogs it is given.
type ProductionSystem struct{}

// NewProductionSystem creates the production system.
func NewProductionSystem() *ProductionSystem {
	return &ProductionSystem{}
}

// Compute derives the net per-second delta of every resource without mutating anything.
func (ps *ProductionSystem) Compute(ledger *resource.Ledger, gens *generator.Catalog, ups *upgrade.Catalog, prestigeMultiplier float64) ProductionReport {
	report := ProductionReport{PerSecond: make(map[string]float64)}

	for _, g := range gens.All() {
		if g.Owned <= 0 {
			continue
		}
		if !canOperate(ledger, g) {
			report.Stalled = append(report.Stalled, g.ID)
			continue
		}

		rate := float64(g.Owned) * ups.GeneratorMultiplier(g.ID)
		for _, in := range g.Inputs {
			report.PerSecond[in.ResourceID] -= in.Amount * rate
		}
		for _, out := range g.Outputs {
			report.PerSecond[out.ResourceID] += out.Amount * rate
		}
	}

	// Consumption is never multiplied.
	boost := ups.GlobalMultiplier() * prestigeMultiplier
	for id, delta := range report.PerSecond {
		if delta > 0 {
			report.PerSecond[id] = delta * boost
		}
	}
	return report
}

// Apply scales the per-second report by dt and writes it to the ledger.
func (ps *ProductionSystem) Apply(ledger *resource.Ledger, report ProductionReport, dt time.Duration) {
	if dt <= 0 {
		return
	}
	seconds := dt.Seconds()

	for id, delta := range report.PerSecond {
		switch {
		case delta > 0:
			ledger.AddResource(id, delta*seconds)
		case delta < 0:
			ledger.Consume(id, -delta*seconds)
		}
	}
}

// canOperate requires one operating window's worth of every input for the whole stack.
func canOperate(ledger *resource.Ledger, g generator.Generator) bool {
	for _, in := range g.Inputs {
		need := in.Amount * float64(g.Owned) * rules.OperatingWindow
		if !ledger.CanAffordResource(in.ResourceID, need) {
			return false
		}
	}
	return true
}
