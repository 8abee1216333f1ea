// Package save defines the persisted game snapshot and the gateway contract
// for whatever medium stores it. The gateway absorbs every failure into a
// boolean or absent result; nothing here is fatal to the game.
package save

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Version tags the snapshot schema.
const Version = "1.2.0"

// ErrInvalidSnapshot is returned by Decode for structurally bad payloads.
var ErrInvalidSnapshot = errors.New("invalid snapshot")

// GeneratorState is the persisted per-generator state.
type GeneratorState struct {
	Owned int `json:"owned"`
}

// NarrativeState is the persisted narrative progress. Pending events are not saved.
type NarrativeState struct {
	ViewedEvents      []string `json:"viewedEvents"`
	SocietalStability float64  `json:"societalStability"`
	GameStartTime     int64    `json:"gameStartTime"` // Epoch millis
}

// Snapshot is the serialized form of all core state.
type Snapshot struct {
	Version               string                    `json:"version"`
	Timestamp             int64                     `json:"timestamp"` // Epoch millis
	ContentUnits          float64                   `json:"contentUnits"`
	LifetimeContentUnits  float64                   `json:"lifetimeContentUnits"`
	PrestigeLevel         int                       `json:"prestigeLevel"`
	PrestigeMultiplier    float64                   `json:"prestigeMultiplier,omitempty"` // Derived; written for readers
	Generators            map[string]GeneratorState `json:"generators"`
	PurchasedUpgrades     []string                  `json:"purchasedUpgrades"`
	Narrative             NarrativeState            `json:"narrative"`
	HasTriggeredGameStart bool                      `json:"hasTriggeredGameStart"`
	TaskStartTime         int64                     `json:"taskStartTime"` // Epoch millis
	LastContentUnitsCheck float64                   `json:"lastContentUnitsCheck"`
	Resources             map[string]float64        `json:"resources,omitempty"`         // Non-primary resources
	LifetimeResources     map[string]float64        `json:"lifetimeResources,omitempty"` // Non-primary lifetime totals
}

// Metadata is the cheap header of a stored snapshot.
type Metadata struct {
	Version   string `json:"version"`
	Timestamp int64  `json:"timestamp"`
}

// Gateway is the persistence contract. Implementations return false/absent
// when the medium is unavailable or the stored payload fails validation.
type Gateway interface {
	Save(ctx context.Context, snap Snapshot) bool
	Load(ctx context.Context) (Snapshot, bool)
	HasSave(ctx context.Context) bool
	Clear(ctx context.Context) bool
	Metadata(ctx context.Context) (Metadata, bool)
}

// Encode serializes a snapshot.
func Encode(s Snapshot) ([]byte, error) {
	return json.Marshal(s)
}

// wire mirrors Snapshot with pointers so required and optional fields can be told apart.
type wire struct {
	Version               *string                    `json:"version"`
	Timestamp             *int64                     `json:"timestamp"`
	ContentUnits          *float64                   `json:"contentUnits"`
	LifetimeContentUnits  *float64                   `json:"lifetimeContentUnits"`
	PrestigeLevel         *int                       `json:"prestigeLevel"`
	PrestigeMultiplier    *float64                   `json:"prestigeMultiplier"`
	Generators            map[string]*GeneratorState `json:"generators"`
	PurchasedUpgrades     []string                   `json:"purchasedUpgrades"`
	Narrative             *wireNarrative             `json:"narrative"`
	HasTriggeredGameStart *bool                      `json:"hasTriggeredGameStart"`
	TaskStartTime         *int64                     `json:"taskStartTime"`
	LastContentUnitsCheck *float64                   `json:"lastContentUnitsCheck"`
	Resources             map[string]float64         `json:"resources"`
	LifetimeResources     map[string]float64         `json:"lifetimeResources"`
}

type wireNarrative struct {
	ViewedEvents      []string `json:"viewedEvents"`
	SocietalStability *float64 `json:"societalStability"`
	GameStartTime     *int64   `json:"gameStartTime"`
}

// Decode parses and validates a snapshot. Missing optional fields default:
// hasTriggeredGameStart to false, lastContentUnitsCheck to 0, taskStartTime to now.
func Decode(data []byte, now time.Time) (Snapshot, error) {
	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}

	switch {
	case w.Version == nil || *w.Version == "":
		return Snapshot{}, fmt.Errorf("%w: missing version", ErrInvalidSnapshot)
	case w.Timestamp == nil || *w.Timestamp < 0:
		return Snapshot{}, fmt.Errorf("%w: bad timestamp", ErrInvalidSnapshot)
	case w.ContentUnits == nil || *w.ContentUnits < 0:
		return Snapshot{}, fmt.Errorf("%w: bad contentUnits", ErrInvalidSnapshot)
	case w.LifetimeContentUnits == nil || *w.LifetimeContentUnits < 0:
		return Snapshot{}, fmt.Errorf("%w: bad lifetimeContentUnits", ErrInvalidSnapshot)
	case w.PrestigeLevel == nil || *w.PrestigeLevel < 0:
		return Snapshot{}, fmt.Errorf("%w: bad prestigeLevel", ErrInvalidSnapshot)
	case w.PrestigeMultiplier != nil && *w.PrestigeMultiplier < 1:
		return Snapshot{}, fmt.Errorf("%w: prestigeMultiplier below 1", ErrInvalidSnapshot)
	case w.Generators == nil:
		return Snapshot{}, fmt.Errorf("%w: missing generators", ErrInvalidSnapshot)
	case w.LastContentUnitsCheck != nil && *w.LastContentUnitsCheck < 0:
		return Snapshot{}, fmt.Errorf("%w: bad lastContentUnitsCheck", ErrInvalidSnapshot)
	case w.TaskStartTime != nil && *w.TaskStartTime < 0:
		return Snapshot{}, fmt.Errorf("%w: bad taskStartTime", ErrInvalidSnapshot)
	}

	s := Snapshot{
		Version:              *w.Version,
		Timestamp:            *w.Timestamp,
		ContentUnits:         *w.ContentUnits,
		LifetimeContentUnits: *w.LifetimeContentUnits,
		PrestigeLevel:        *w.PrestigeLevel,
		Generators:           make(map[string]GeneratorState, len(w.Generators)),
		PurchasedUpgrades:    append([]string{}, w.PurchasedUpgrades...),
		TaskStartTime:        now.UnixMilli(),
		Narrative: NarrativeState{
			ViewedEvents:      []string{},
			SocietalStability: 100,
			GameStartTime:     now.UnixMilli(),
		},
	}
	if w.PrestigeMultiplier != nil {
		s.PrestigeMultiplier = *w.PrestigeMultiplier
	}

	for id, g := range w.Generators {
		if g == nil || g.Owned < 0 {
			return Snapshot{}, fmt.Errorf("%w: bad generator %q", ErrInvalidSnapshot, id)
		}
		s.Generators[id] = *g
	}

	if w.Narrative != nil {
		if w.Narrative.ViewedEvents != nil {
			s.Narrative.ViewedEvents = append([]string{}, w.Narrative.ViewedEvents...)
		}
		if st := w.Narrative.SocietalStability; st != nil {
			if *st < 0 || *st > 100 {
				return Snapshot{}, fmt.Errorf("%w: societalStability out of range", ErrInvalidSnapshot)
			}
			s.Narrative.SocietalStability = *st
		}
		if gs := w.Narrative.GameStartTime; gs != nil {
			if *gs < 0 {
				return Snapshot{}, fmt.Errorf("%w: bad gameStartTime", ErrInvalidSnapshot)
			}
			s.Narrative.GameStartTime = *gs
		}
	}

	if w.HasTriggeredGameStart != nil {
		s.HasTriggeredGameStart = *w.HasTriggeredGameStart
	}
	if w.TaskStartTime != nil {
		s.TaskStartTime = *w.TaskStartTime
	}
	if w.LastContentUnitsCheck != nil {
		s.LastContentUnitsCheck = *w.LastContentUnitsCheck
	}
	if len(w.Resources) > 0 {
		s.Resources = make(map[string]float64, len(w.Resources))
		for id, v := range w.Resources {
			if v < 0 {
				return Snapshot{}, fmt.Errorf("%w: negative resource %q", ErrInvalidSnapshot, id)
			}
			s.Resources[id] = v
		}
	}
	if len(w.LifetimeResources) > 0 {
		s.LifetimeResources = make(map[string]float64, len(w.LifetimeResources))
		for id, v := range w.LifetimeResources {
			if v < 0 {
				return Snapshot{}, fmt.Errorf("%w: negative lifetime for %q", ErrInvalidSnapshot, id)
			}
			s.LifetimeResources[id] = v
		}
	}

	return s, nil
}
