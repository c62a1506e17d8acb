package spreads_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"tarot-readings-backend/internal/spreads"
)

func TestGetSpreadConfig_KnownTypes(t *testing.T) {
	single, ok := spreads.GetSpreadConfig(spreads.TypeSingle)
	assert.True(t, ok)
	assert.Equal(t, 1, single.CardCount)
	assert.Equal(t, int64(500), single.Price)

	threeCard, ok := spreads.GetSpreadConfig(spreads.TypeThreeCard)
	assert.True(t, ok)
	assert.Equal(t, 3, threeCard.CardCount)
	assert.Equal(t, int64(1200), threeCard.Price)

	fiveCard, ok := spreads.GetSpreadConfig(spreads.TypeFiveCard)
	assert.True(t, ok)
	assert.Equal(t, 5, fiveCard.CardCount)
	assert.Equal(t, int64(2500), fiveCard.Price)
}

func TestGetSpreadConfig_UnknownType(t *testing.T) {
	_, ok := spreads.GetSpreadConfig("TEN_CARD")
	assert.False(t, ok)

	// Lookup is case sensitive on the type key.
	_, ok = spreads.GetSpreadConfig("single")
	assert.False(t, ok)
}

func TestListSpreadConfigs_Order(t *testing.T) {
	configs := spreads.ListSpreadConfigs()

	assert.Len(t, configs, 3)
	assert.Equal(t, spreads.TypeSingle, configs[0].Type)
	assert.Equal(t, spreads.TypeThreeCard, configs[1].Type)
	assert.Equal(t, spreads.TypeFiveCard, configs[2].Type)
}

func TestSymbolsForCard(t *testing.T) {
	symbols := spreads.SymbolsForCard("The Sun")
	assert.Contains(t, symbols, "sun")
	assert.Contains(t, symbols, "sunflowers")

	assert.Nil(t, spreads.SymbolsForCard("Ace of Cups"))
	assert.Nil(t, spreads.SymbolsForCard(""))
}
