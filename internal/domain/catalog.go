package domain

// Entry maps a listing key to the vocabulary category that translates it.
type Entry struct {
	Key      string `toml:"key"`
	Category string `toml:"category"`
}

// Catalog holds the key tables that drive the amenities and house-rules topics.
type Catalog struct {
	Amenities         []Entry  `toml:"amenities"`
	Suitability       []Entry  `toml:"suitability"`
	SuitabilityIgnore []string `toml:"suitability_ignore"`
}

// CategoryFor returns the category configured for key in entries.
func CategoryFor(entries []Entry, key string) (string, bool) {
	for _, e := range entries {
		if e.Key == key {
			return e.Category, true
		}
	}
	return "", false
}
