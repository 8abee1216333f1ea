package save

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func sample() Snapshot {
	return Snapshot{
		Version:              Version,
		Timestamp:            now.UnixMilli(),
		ContentUnits:         123.5,
		LifetimeContentUnits: 9000,
		PrestigeLevel:        2,
		PrestigeMultiplier:   1.5625,
		Generators:           map[string]GeneratorState{"basicAdBotFarm": {Owned: 7}},
		PurchasedUpgrades:    []string{"u1"},
		Narrative: NarrativeState{
			ViewedEvents:      []string{"intro", "first-farm"},
			SocietalStability: 64,
			GameStartTime:     now.Add(-time.Hour).UnixMilli(),
		},
		HasTriggeredGameStart: true,
		TaskStartTime:         now.Add(-10 * time.Second).UnixMilli(),
		LastContentUnitsCheck: 123,
		Resources:             map[string]float64{"computeCycles": 4},
		LifetimeResources:     map[string]float64{"computeCycles": 250},
	}
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	in := sample()
	data, err := Encode(in)
	require.NoError(t, err)

	out, err := Decode(data, now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestDecode_DefaultsOptionalFields(t *testing.T) {
	raw := `{"version":"1.0.0","timestamp":1,"contentUnits":5,"lifetimeContentUnits":5,"prestigeLevel":0,"generators":{}}`

	s, err := Decode([]byte(raw), now)
	require.NoError(t, err)

	assert.False(t, s.HasTriggeredGameStart)
	assert.Equal(t, 0.0, s.LastContentUnitsCheck)
	assert.Equal(t, now.UnixMilli(), s.TaskStartTime)
	assert.Equal(t, 100.0, s.Narrative.SocietalStability)
	assert.Empty(t, s.PurchasedUpgrades)
}

func TestDecode_RejectsMalformed(t *testing.T) {
	cases := map[string]string{
		"not json":             `{{{`,
		"missing version":      `{"timestamp":1,"contentUnits":0,"lifetimeContentUnits":0,"prestigeLevel":0,"generators":{}}`,
		"negative currency":    `{"version":"1","timestamp":1,"contentUnits":-1,"lifetimeContentUnits":0,"prestigeLevel":0,"generators":{}}`,
		"negative level":       `{"version":"1","timestamp":1,"contentUnits":0,"lifetimeContentUnits":0,"prestigeLevel":-2,"generators":{}}`,
		"multiplier below 1":   `{"version":"1","timestamp":1,"contentUnits":0,"lifetimeContentUnits":0,"prestigeLevel":0,"prestigeMultiplier":0.5,"generators":{}}`,
		"missing generators":   `{"version":"1","timestamp":1,"contentUnits":0,"lifetimeContentUnits":0,"prestigeLevel":0}`,
		"generator wrong type": `{"version":"1","timestamp":1,"contentUnits":0,"lifetimeContentUnits":0,"prestigeLevel":0,"generators":{"a":{"owned":"many"}}}`,
		"negative owned":       `{"version":"1","timestamp":1,"contentUnits":0,"lifetimeContentUnits":0,"prestigeLevel":0,"generators":{"a":{"owned":-1}}}`,
		"stability range":      `{"version":"1","timestamp":1,"contentUnits":0,"lifetimeContentUnits":0,"prestigeLevel":0,"generators":{},"narrative":{"societalStability":140}}`,
		"negative lifetime":    `{"version":"1","timestamp":1,"contentUnits":0,"lifetimeContentUnits":0,"prestigeLevel":0,"generators":{},"lifetimeResources":{"computeCycles":-3}}`,
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(raw), now)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidSnapshot))
		})
	}
}
