// Package rules contains the pure calculation logic for the economy.
// This package is PURE and must NOT import any infrastructure packages.
package rules

import "math"

const (
	// PrestigeBaseThreshold is the currency needed for the first prestige.
	PrestigeBaseThreshold = 1000.0
	// PrestigeThresholdGrowth scales the threshold per prestige level.
	PrestigeThresholdGrowth = 10.0
	// PrestigeMultiplierBase is the permanent production boost per prestige level.
	PrestigeMultiplierBase = 1.25

	// OperatingWindow is one tick's worth of input (100ms) a generator must have on hand to run.
	OperatingWindow = 0.1
)

// GeneratorCost returns floor(baseCost * growthRate^owned).
func GeneratorCost(baseCost, growthRate float64, owned int) float64 {
	if owned < 0 {
		owned = 0
	}
	return math.Floor(baseCost * math.Pow(growthRate, float64(owned)))
}

// PrestigeThreshold returns 1000 * 10^level.
func PrestigeThreshold(level int) float64 {
	return PrestigeBaseThreshold * math.Pow(PrestigeThresholdGrowth, float64(level))
}

// PrestigeMultiplier returns 1.25^level.
func PrestigeMultiplier(level int) float64 {
	return math.Pow(PrestigeMultiplierBase, float64(level))
}

// ClampStability keeps the societal stability score inside [0, 100].
func ClampStability(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}
