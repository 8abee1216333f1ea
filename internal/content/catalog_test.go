package content

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MRamiBalles/ContentCollapse/internal/domain/narrative"
)

func TestDefault_IsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())

	assert.Equal(t, ContentUnits, c.Primary)
	assert.Equal(t, "basicAdBotFarm", c.Generators[0].ID)
	assert.Equal(t, 10.0, c.Generators[0].BaseCost)
	assert.Equal(t, 1.15, c.Generators[0].GrowthRate)
}

const sampleYAML = `
primary: gold
resources:
  - id: gold
    name: Gold
  - id: mana
    name: Mana
    max: 50
    depletable: true
    decay_rate: 0.1
generators:
  - id: mine
    name: Mine
    base_cost: 5
    growth_rate: 1.2
    outputs:
      - resource: gold
        amount: 2
upgrades:
  - id: pickaxe
    name: Pickaxe
    cost: 20
    target: mine
    effect: production_multiplier
    value: 2
    requirements:
      - generator: mine
        min_owned: 3
events:
  - id: rich
    title: Rich
    trigger: contentUnits
    value: 100
    priority: 5
    stability_impact: -4
`

func TestParse_YAML(t *testing.T) {
	c, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	require.Len(t, c.Resources, 2)
	require.NotNil(t, c.Resources[1].Max)
	assert.Equal(t, 50.0, *c.Resources[1].Max)
	assert.True(t, c.Resources[1].Depletable)

	require.Len(t, c.Upgrades, 1)
	assert.Equal(t, "mine", c.Upgrades[0].Requirements[0].GeneratorID)

	require.Len(t, c.Events, 1)
	assert.Equal(t, narrative.TriggerContentUnits, c.Events[0].TriggerType)
	require.NotNil(t, c.Events[0].TriggerValue)
	assert.Equal(t, 100.0, *c.Events[0].TriggerValue)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "gold", c.Primary)
}

func TestValidate_RejectsBadCatalog(t *testing.T) {
	c := Default()
	c.Generators[0].GrowthRate = 1
	c.Upgrades[0].TargetGenerator = "ghost"
	c.Events[0].TriggerType = "whenever"

	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "growth rate")
	assert.Contains(t, err.Error(), "ghost")
	assert.Contains(t, err.Error(), "whenever")
}
