package spreads

// cardSymbols maps a card name to the symbols it carries. Fulfilled cards
// are annotated from this table and the symbols feed the requester's
// occurrence counters.
var cardSymbols = map[string][]string{
	"The Fool":             {"cliff", "white rose", "dog", "sun"},
	"The Magician":         {"infinity", "wand", "altar", "red roses"},
	"The High Priestess":   {"moon", "pillars", "scroll", "pomegranate"},
	"The Empress":          {"wheat", "venus", "crown", "forest"},
	"The Emperor":          {"throne", "ram", "mountains", "armor"},
	"The Hierophant":       {"keys", "pillars", "crown", "blessing"},
	"The Lovers":           {"angel", "sun", "tree", "serpent"},
	"The Chariot":          {"sphinxes", "stars", "armor", "city"},
	"Strength":             {"lion", "infinity", "garland", "mountain"},
	"The Hermit":           {"lantern", "staff", "mountain", "star"},
	"Wheel of Fortune":     {"wheel", "sphinx", "serpent", "clouds"},
	"Justice":              {"scales", "sword", "crown", "pillars"},
	"The Hanged Man":       {"tree", "halo", "rope", "crossed legs"},
	"Death":                {"skeleton", "white rose", "sunrise", "river"},
	"Temperance":           {"angel", "cups", "water", "path"},
	"The Devil":            {"chains", "horns", "torch", "pentagram"},
	"The Tower":            {"lightning", "crown", "flames", "falling figures"},
	"The Star":             {"star", "water", "ibis", "pool"},
	"The Moon":             {"moon", "dog", "wolf", "crayfish", "towers"},
	"The Sun":              {"sun", "sunflowers", "child", "white horse"},
	"Judgement":            {"angel", "trumpet", "graves", "mountains"},
	"The World":            {"wreath", "dancer", "four creatures", "wands"},
}

// SymbolsForCard returns the symbol list for a card name, or nil for
// cards without a table entry.
func SymbolsForCard(name string) []string {
	return cardSymbols[name]
}
