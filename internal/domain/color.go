package domain

// Color is the symbol printed on the face of a card. Two cards match when
// their colors are equal.
type Color string

// Palette colors.
const (
	Cyan   Color = "cyan"
	Mint   Color = "mint"
	Orange Color = "orange"
	Pink   Color = "pink"
	Indigo Color = "indigo"
	Purple Color = "purple"
	Yellow Color = "yellow"
	Teal   Color = "teal"
	Red    Color = "red"
	Brown  Color = "brown"

	// White is the default odd color. It appears once per deck and can never
	// be matched.
	White Color = "white"
)

// DefaultPalette lists the paired colors in the order decks draw them.
// A deck of k pairs uses the first k entries.
var DefaultPalette = []Color{Cyan, Mint, Orange, Pink, Indigo, Purple, Yellow, Teal, Red, Brown}

// DefaultOddColor is the color of the unmatched card in every default deck.
const DefaultOddColor = White

// DefaultPairCount is the number of pairs in a standard game.
const DefaultPairCount = 4
