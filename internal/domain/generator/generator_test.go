package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MRamiBalles/ContentCollapse/internal/domain/resource"
)

func testCatalog() *Catalog {
	return NewCatalog([]Config{
		{ID: "basicAdBotFarm", Name: "Basic Ad-Bot Farm", BaseCost: 10, GrowthRate: 1.15,
			Outputs: []Flow{{ResourceID: "contentUnits", Amount: 1}}},
		{ID: "clickbaitMill", Name: "Clickbait Mill", BaseCost: 100, GrowthRate: 1.15},
	})
}

func TestPurchase_ExactFundsSucceeds(t *testing.T) {
	c := testCatalog()
	l := resource.NewLedger("contentUnits", nil)
	l.Add(10)

	require.True(t, c.Purchase("basicAdBotFarm", l))

	assert.Equal(t, 0.0, l.Current())
	assert.Equal(t, 1, c.Owned("basicAdBotFarm"))
	assert.Equal(t, 11.0, c.Cost("basicAdBotFarm"))
}

func TestPurchase_InsufficientFundsChangesNothing(t *testing.T) {
	c := testCatalog()
	l := resource.NewLedger("contentUnits", nil)
	l.Add(9.99)

	assert.False(t, c.Purchase("basicAdBotFarm", l))
	assert.Equal(t, 9.99, l.Current())
	assert.Equal(t, 0, c.Owned("basicAdBotFarm"))
}

func TestPurchase_DebitsPrePurchaseCost(t *testing.T) {
	c := testCatalog()
	l := resource.NewLedger("contentUnits", nil)
	l.Add(1000)

	for i := 0; i < 5; i++ {
		before := l.Current()
		cost := c.Cost("basicAdBotFarm")
		owned := c.Owned("basicAdBotFarm")

		require.True(t, c.Purchase("basicAdBotFarm", l))
		assert.Equal(t, owned+1, c.Owned("basicAdBotFarm"))
		assert.Equal(t, before-cost, l.Current())
	}
}

func TestUnknownGenerator(t *testing.T) {
	c := testCatalog()
	l := resource.NewLedger("contentUnits", nil)
	l.Add(1e9)

	assert.False(t, c.Purchase("nope", l))
	assert.Equal(t, 0.0, c.Cost("nope"))
	assert.Equal(t, 0, c.Owned("nope"))
	assert.Equal(t, 1e9, l.Current())
}

func TestResetAllAndRestore(t *testing.T) {
	c := testCatalog()
	require.True(t, c.SetOwned("clickbaitMill", 4))
	assert.False(t, c.SetOwned("clickbaitMill", -1))

	c.ResetAll()
	assert.Equal(t, map[string]int{"basicAdBotFarm": 0, "clickbaitMill": 0}, c.OwnedMap())
}

func TestAll_PreservesOrderAndCopies(t *testing.T) {
	c := testCatalog()
	all := c.All()
	require.Len(t, all, 2)
	assert.Equal(t, "basicAdBotFarm", all[0].ID)

	all[0].Owned = 99
	assert.Equal(t, 0, c.Owned("basicAdBotFarm"))
}
