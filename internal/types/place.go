package types

// SubPlace is a single suggested spot inside a district, e.g. the Clock Tower
// inside Konak. Immutable once the corpus is loaded.
type SubPlace struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

// PlaceEntry is one district of the corpus. Categories maps a category label
// ("historical sites", "beaches", ...) to its ordered sub-place list.
// Entries are created at load time and never mutated afterwards.
type PlaceEntry struct {
	Name        string                `json:"name"`
	Coordinates [2]float64            `json:"coordinates"` // lat, lng
	Transport   string                `json:"transport"`
	Description string                `json:"description"`
	Categories  map[string][]SubPlace `json:"categories"`
}

// WeatherReport is the per-place forecast piece of an itinerary.
type WeatherReport struct {
	Place     string  `json:"place"`
	Date      string  `json:"date"`
	Condition string  `json:"condition"`
	AvgTempC  float64 `json:"avg_temp_c"`
}
