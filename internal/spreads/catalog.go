// Package spreads holds the static spread catalog and the card symbol
// table. Both are immutable reference data defined once per deployment.
package spreads

// Spread type keys accepted by the API.
const (
	TypeSingle    = "SINGLE"
	TypeThreeCard = "THREE_CARD"
	TypeFiveCard  = "FIVE_CARD"
)

type SpreadConfig struct {
	Type        string
	Label       string
	CardCount   int
	Price       int64 // minor currency units
	Description string
}

var catalog = map[string]SpreadConfig{
	TypeSingle: {
		Type:        TypeSingle,
		Label:       "Single Card",
		CardCount:   1,
		Price:       500,
		Description: "One card pulled for a focused answer to a single question.",
	},
	TypeThreeCard: {
		Type:        TypeThreeCard,
		Label:       "Three Card Spread",
		CardCount:   3,
		Price:       1200,
		Description: "Past, present and future positions around your topic.",
	},
	TypeFiveCard: {
		Type:        TypeFiveCard,
		Label:       "Five Card Spread",
		CardCount:   5,
		Price:       2500,
		Description: "A deeper layout covering situation, obstacle, guidance, influences and outcome.",
	},
}

// ordering for listings; map iteration order is not stable
var catalogOrder = []string{TypeSingle, TypeThreeCard, TypeFiveCard}

// GetSpreadConfig looks up a spread by its type key. The second return is
// false for unknown types; callers must treat that as a validation error
// before any money or document operation happens.
func GetSpreadConfig(spreadType string) (SpreadConfig, bool) {
	cfg, ok := catalog[spreadType]
	return cfg, ok
}

// ListSpreadConfigs returns the full catalog in display order.
func ListSpreadConfigs() []SpreadConfig {
	configs := make([]SpreadConfig, 0, len(catalogOrder))
	for _, key := range catalogOrder {
		configs = append(configs, catalog[key])
	}
	return configs
}
