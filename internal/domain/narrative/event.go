// Package narrative holds the story-beat catalog and the trigger state machine
// that reacts to economic milestones.
// This package is PURE and must NOT import any infrastructure packages.
package narrative

// TriggerType is the signal an event listens for.
type TriggerType string

const (
	TriggerGameStart         TriggerType = "gameStart"
	TriggerContentUnits      TriggerType = "contentUnits"
	TriggerGeneratorPurchase TriggerType = "generatorPurchase"
	TriggerUpgrade           TriggerType = "upgrade"
	TriggerPrestige          TriggerType = "prestige"
	TriggerTimeElapsed       TriggerType = "timeElapsed" // Value in seconds since game start
)

// Valid reports whether t is one of the known trigger types.
func (t TriggerType) Valid() bool {
	switch t {
	case TriggerGameStart, TriggerContentUnits, TriggerGeneratorPurchase,
		TriggerUpgrade, TriggerPrestige, TriggerTimeElapsed:
		return true
	}
	return false
}

// Event is a one-shot story beat. Viewed only ever goes false -> true.
type Event struct {
	ID               string      `json:"id" yaml:"id"`
	Title            string      `json:"title" yaml:"title"`
	Text             string      `json:"text,omitempty" yaml:"text"`
	TriggerType      TriggerType `json:"trigger_type" yaml:"trigger"`
	TriggerValue     *float64    `json:"trigger_value,omitempty" yaml:"value,omitempty"`         // Satisfied when observed >= value
	TriggerCondition string      `json:"trigger_condition,omitempty" yaml:"condition,omitempty"` // Exact match
	Priority         int         `json:"priority" yaml:"priority"`
	StabilityImpact  float64     `json:"societal_stability_impact" yaml:"stability_impact"`
	Viewed           bool        `json:"is_viewed" yaml:"-"`
}

// Signal is one observation fed to CheckTrigger.
type Signal struct {
	Type      TriggerType
	Value     float64
	HasValue  bool
	Condition string
}

// On starts a signal of the given type with no value and no condition.
func On(t TriggerType) Signal {
	return Signal{Type: t}
}

// WithValue attaches an observed numeric value.
func (s Signal) WithValue(v float64) Signal {
	s.Value = v
	s.HasValue = true
	return s
}

// WithCondition attaches an exact-match key such as a generator or upgrade ID.
func (s Signal) WithCondition(c string) Signal {
	s.Condition = c
	return s
}

// matches applies the value and condition gates of an event to a signal.
func (e *Event) matches(s Signal) bool {
	if e.Viewed || e.TriggerType != s.Type {
		return false
	}
	if e.TriggerValue != nil && (!s.HasValue || s.Value < *e.TriggerValue) {
		return false
	}
	if e.TriggerCondition != "" && s.Condition != e.TriggerCondition {
		return false
	}
	return true
}
