package category

// DefaultMinReviews filters out places with too few ratings to rank fairly.
const DefaultMinReviews = 100

// Default returns the built-in catalog for the Kanton Zürich canvass:
// gastronomy and trades, with German keyword tables.
func Default() *Catalog {
	return &Catalog{Categories: []Category{
		{
			Key:          "gastro",
			Display:      "Gastronomie",
			MinReviews:   DefaultMinReviews,
			DefaultLabel: "Restaurant",
			Queries: []QuerySpec{
				{Text: "Restaurant", TypeHint: "restaurant"},
				{Text: "Bar", TypeHint: "bar"},
				{Text: "Café Cafeteria", TypeHint: "cafe"},
				{Text: "Takeaway Imbiss", TypeHint: "meal_takeaway"},
				{Text: "Bäckerei Konditorei", TypeHint: "bakery"},
			},
			TypeRules: []TypeRule{
				{ProviderType: "restaurant", Label: "Restaurant"},
				{ProviderType: "bar", Label: "Bar"},
				{ProviderType: "cafe", Label: "Café"},
				{ProviderType: "meal_takeaway", Label: "Takeaway"},
				{ProviderType: "bakery", Label: "Bäckerei"},
			},
			Rules: []Rule{
				{Label: "Restaurant", Keywords: []string{"restaurant", "ristorante", "gasth", "wirtschaft", "beiz"}},
				{Label: "Bar", Keywords: []string{"bar", "lounge", "pub", "club", "cocktail"}},
				{Label: "Café", Keywords: []string{"café", "cafe", "coffee", "kaffee", "cafeteria"}},
				{Label: "Takeaway", Keywords: []string{"takeaway", "take away", "imbiss", "kebab", "pizza", "sushi", "thai", "döner"}},
				{Label: "Bäckerei", Keywords: []string{"bäcker", "konditor", "bakery", "brot", "pâtisserie", "confiserie"}},
			},
		},
		{
			Key:          "handwerker",
			Display:      "Handwerker",
			MinReviews:   DefaultMinReviews,
			DefaultLabel: "Sonstige",
			Queries: []QuerySpec{
				{Text: "Elektriker Elektroinstallateur Zürich", TypeHint: "electrician"},
				{Text: "Gipser Verputzer Zürich", TypeHint: "general_contractor"},
				{Text: "Maler Malergeschäft Zürich", TypeHint: "painter"},
				{Text: "Bodenleger Parkett Zürich", TypeHint: "general_contractor"},
				{Text: "Schreiner Schreinerei Zürich", TypeHint: "general_contractor"},
				{Text: "Sanitär Sanitärinstallateur Zürich", TypeHint: "plumber"},
				{Text: "Dachdecker Spengler Zürich", TypeHint: "roofing_contractor"},
				{Text: "Schlosser Metallbau Zürich", TypeHint: "locksmith"},
				{Text: "Heizung Lüftung Klima Zürich", TypeHint: "general_contractor"},
				{Text: "Gartenbau Landschaftsgärtner Zürich", TypeHint: "general_contractor"},
			},
			Rules: []Rule{
				{Label: "Elektriker", Keywords: []string{"elektr", "electric", "elektro"}},
				{Label: "Gipser", Keywords: []string{"gips", "verputz", "stuck"}},
				{Label: "Maler", Keywords: []string{"maler", "malerei", "anstrich", "paint"}},
				{Label: "Bodenleger", Keywords: []string{"boden", "parkett", "laminat", "floor"}},
				{Label: "Schreiner", Keywords: []string{"schrein", "carpent", "holz", "möbel", "tischler"}},
				{Label: "Sanitär", Keywords: []string{"sanitär", "sanitar", "plumb", "rohrleitun"}},
				{Label: "Dachdecker", Keywords: []string{"dach", "spengler", "roof", "bedachung"}},
				{Label: "Schlosser", Keywords: []string{"schloss", "metall", "locksmith", "stahl"}},
				{Label: "Heizung/Klima", Keywords: []string{"heiz", "lüftung", "klima", "hvac", "wärme"}},
				{Label: "Gartenbau", Keywords: []string{"garten", "landschaft", "garden", "grün", "pflanz"}},
			},
		},
	}}
}
