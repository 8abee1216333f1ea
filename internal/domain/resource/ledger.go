// Package resource owns resource quantities and their mutation primitives.
// This package is PURE and must NOT import any infrastructure packages.
package resource

import "math"

// Definition is the static description of a resource.
type Definition struct {
	ID         string   `json:"id" yaml:"id"`
	Name       string   `json:"name" yaml:"name"`
	Max        *float64 `json:"max,omitempty" yaml:"max,omitempty"`
	Depletable bool     `json:"is_depletable" yaml:"depletable"`
	DecayRate  float64  `json:"decay_rate" yaml:"decay_rate"` // Fraction lost per tick when depletable
}

// State is a resource definition plus its current quantity.
type State struct {
	Definition
	Current float64 `json:"current"`
}

// Ledger holds every resource of a game. One resource is the primary currency,
// which is what generators and upgrades are paid with.
//
// No operation may drive a quantity negative, and quantities are clamped to Max when defined.
type Ledger struct {
	primary  string
	order    []string
	states   map[string]*State
	lifetime map[string]float64
}

// NewLedger creates a ledger for the given resources. The primary resource is
// added automatically if it is missing from defs.
func NewLedger(primary string, defs []Definition) *Ledger {
	l := &Ledger{
		primary:  primary,
		states:   make(map[string]*State, len(defs)+1),
		lifetime: make(map[string]float64, len(defs)+1),
	}
	for _, d := range defs {
		if _, dup := l.states[d.ID]; dup {
			continue
		}
		l.order = append(l.order, d.ID)
		l.states[d.ID] = &State{Definition: d}
	}
	if _, ok := l.states[primary]; !ok {
		l.order = append([]string{primary}, l.order...)
		l.states[primary] = &State{Definition: Definition{ID: primary, Name: primary}}
	}
	return l
}

// Primary returns the ID of the primary currency.
func (l *Ledger) Primary() string { return l.primary }

// Current returns the primary currency amount.
func (l *Ledger) Current() float64 { return l.Amount(l.primary) }

// Lifetime returns the lifetime total of the primary currency.
func (l *Ledger) Lifetime() float64 { return l.lifetime[l.primary] }

// LifetimeOf returns the lifetime total of any resource.
func (l *Ledger) LifetimeOf(id string) float64 { return l.lifetime[id] }

// Amount returns the current quantity of a resource, or 0 if unknown.
func (l *Ledger) Amount(id string) float64 {
	if s, ok := l.states[id]; ok {
		return s.Current
	}
	return 0
}

// Has reports whether the resource exists in this ledger.
func (l *Ledger) Has(id string) bool {
	_, ok := l.states[id]
	return ok
}

// Add credits the primary currency. Fractional amounts are allowed.
func (l *Ledger) Add(amount float64) {
	l.AddResource(l.primary, amount)
}

// AddResource credits a resource and its lifetime total. Non-positive amounts
// and unknown resources are ignored.
func (l *Ledger) AddResource(id string, amount float64) {
	s, ok := l.states[id]
	if !ok || !(amount > 0) {
		return
	}
	before := s.Current
	s.Current = l.clamp(s, s.Current+amount)
	l.lifetime[id] += s.Current - before
}

// CanAfford reports whether the primary currency covers amount (exact amounts are affordable).
func (l *Ledger) CanAfford(amount float64) bool {
	return l.CanAffordResource(l.primary, amount)
}

// CanAffordResource is CanAfford for any resource.
func (l *Ledger) CanAffordResource(id string, amount float64) bool {
	s, ok := l.states[id]
	if !ok || amount < 0 {
		return false
	}
	return s.Current >= amount
}

// Spend debits the primary currency iff it covers amount.
func (l *Ledger) Spend(amount float64) bool {
	return l.SpendResource(l.primary, amount)
}

// SpendResource debits a resource iff it covers amount. The check and the
// debit happen together; a failed spend leaves the ledger untouched.
func (l *Ledger) SpendResource(id string, amount float64) bool {
	if !l.CanAffordResource(id, amount) {
		return false
	}
	s := l.states[id]
	s.Current -= amount
	return true
}

// Consume removes up to amount from a resource, flooring at 0, and returns
// how much was actually removed. Used for production inputs.
func (l *Ledger) Consume(id string, amount float64) float64 {
	s, ok := l.states[id]
	if !ok || !(amount > 0) {
		return 0
	}
	taken := math.Min(s.Current, amount)
	s.Current -= taken
	return taken
}

// ApplyDecay removes decayRate * current from every depletable resource.
func (l *Ledger) ApplyDecay() {
	for _, id := range l.order {
		s := l.states[id]
		if !s.Depletable || s.DecayRate <= 0 {
			continue
		}
		s.Current = math.Max(0, s.Current-s.Current*s.DecayRate)
	}
}

// Reset zeroes every current quantity and preserves lifetime totals.
func (l *Ledger) Reset() {
	for _, s := range l.states {
		s.Current = 0
	}
}

// Wipe zeroes current quantities and lifetime totals.
func (l *Ledger) Wipe() {
	l.Reset()
	for id := range l.lifetime {
		delete(l.lifetime, id)
	}
}

// Set overwrites a resource quantity (clamped). Used when restoring a save.
func (l *Ledger) Set(id string, amount float64) {
	s, ok := l.states[id]
	if !ok {
		return
	}
	s.Current = l.clamp(s, amount)
}

// SetLifetime overwrites a lifetime total. Used when restoring a save.
func (l *Ledger) SetLifetime(id string, amount float64) {
	if _, ok := l.states[id]; !ok {
		return
	}
	l.lifetime[id] = math.Max(0, amount)
}

// States returns a copy of every resource in declaration order.
func (l *Ledger) States() []State {
	out := make([]State, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, *l.states[id])
	}
	return out
}

func (l *Ledger) clamp(s *State, v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if s.Max != nil && v > *s.Max {
		return *s.Max
	}
	return v
}
